package semob

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"autuacao-mobile/internal/config"
	"autuacao-mobile/internal/model"
)

// Client talks to the SEMOB backend. Lookup endpoints use a fixed basic-auth
// credential; login and protocol endpoints do not.
type Client struct {
	baseURL   string
	basicAuth string
	http      *http.Client
	log       zerolog.Logger
}

func NewClient(cfg config.SemobConfig, log zerolog.Logger) *Client {
	basic := ""
	if cfg.BasicUser != "" {
		raw := cfg.BasicUser + ":" + cfg.BasicPass
		basic = "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		basicAuth: basic,
		http:      &http.Client{Timeout: cfg.Timeout},
		log:       log.With().Str("component", "semob").Logger(),
	}
}

// MD5Hex is the password digest the backend expects: uppercase MD5 hex.
func MD5Hex(password string) string {
	sum := md5.Sum([]byte(password))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

type LoginResult struct {
	IDUsuario int
}

type loginResponse struct {
	Mensagem  string `json:"mensagem"`
	Message   string `json:"message"`
	IDUsuario int    `json:"id_usuario"`
}

func (c *Client) Login(ctx context.Context, username, senha string) (LoginResult, error) {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"senha":    MD5Hex(senha),
	})
	if err != nil {
		return LoginResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/valida-md5/validar", bytes.NewReader(body))
	if err != nil {
		return LoginResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return LoginResult{}, classifyTransportError(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return LoginResult{}, ErrInvalidCredentials
	case http.StatusForbidden:
		return LoginResult{}, ErrForbidden
	}

	var decoded loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return LoginResult{}, &APIError{Status: resp.StatusCode}
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return LoginResult{}, &APIError{Status: resp.StatusCode, Message: decoded.Message}
	}
	if decoded.Mensagem != "Acesso permitido" {
		if decoded.Message != "" {
			return LoginResult{}, &APIError{Status: resp.StatusCode, Message: decoded.Message}
		}
		return LoginResult{}, ErrInvalidCredentials
	}

	return LoginResult{IDUsuario: decoded.IDUsuario}, nil
}

func (c *Client) UpdatePassword(ctx context.Context, username, novaSenha string) error {
	body, err := json.Marshal(map[string]string{
		"username":  username,
		"novaSenha": MD5Hex(novaSenha),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/valida-md5/update", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.decodeAPIError(resp)
	}
	return nil
}

func (c *Client) FuncionarioDetails(ctx context.Context, userID int) ([]model.FuncionarioDetalhe, error) {
	var out []model.FuncionarioDetalhe
	err := c.getJSON(ctx, fmt.Sprintf("/funcionario/%d", userID), &out)
	return out, err
}

func (c *Client) Operadoras(ctx context.Context, date string) ([]model.Operadora, error) {
	var out []model.Operadora
	err := c.getJSON(ctx, "/operadoras/"+url.PathEscape(date), &out)
	return out, err
}

func (c *Client) Veiculos(ctx context.Context) ([]model.Veiculo, error) {
	var out []model.Veiculo
	err := c.getJSON(ctx, "/veiculo", &out)
	return out, err
}

func (c *Client) Linhas(ctx context.Context, sigla, date string) ([]model.Linha, error) {
	var out []model.Linha
	err := c.getJSON(ctx, "/linhas/"+url.PathEscape(sigla)+"/"+url.PathEscape(date), &out)
	return out, err
}

func (c *Client) Prepostos(ctx context.Context, sigla string) ([]model.Preposto, error) {
	var out []model.Preposto
	err := c.getJSON(ctx, "/preposto/"+url.PathEscape(sigla), &out)
	return out, err
}

func (c *Client) Infracoes(ctx context.Context) ([]model.Infracao, error) {
	var out []model.Infracao
	err := c.getJSON(ctx, "/infracao", &out)
	return out, err
}

func (c *Client) Localidades(ctx context.Context) ([]model.Localidade, error) {
	var out []model.Localidade
	err := c.getJSON(ctx, "/localidades", &out)
	return out, err
}

func (c *Client) PreAutoCount(ctx context.Context, userID int) (int, error) {
	var out struct {
		Quantidade int `json:"quantidade"`
	}
	err := c.getJSON(ctx, fmt.Sprintf("/funcionario/preautos/%d", userID), &out)
	return out.Quantidade, err
}

// Arquivo is the single attachment sent with a protocol request.
type Arquivo struct {
	Name        string
	ContentType string
	Content     []byte
}

type CreateAutoResult struct {
	Message         string `json:"message"`
	NumeroDocumento string `json:"numeroDocumento"`
}

func (c *Client) CreateAuto(ctx context.Context, preAutos []PreAuto, documento Documento, arquivo Arquivo) (CreateAutoResult, error) {
	docJSON, err := json.Marshal(documento)
	if err != nil {
		return CreateAutoResult{}, err
	}
	preAutosJSON, err := json.Marshal(preAutos)
	if err != nil {
		return CreateAutoResult{}, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("documento", string(docJSON)); err != nil {
		return CreateAutoResult{}, err
	}
	if err := writer.WriteField("preAutos", string(preAutosJSON)); err != nil {
		return CreateAutoResult{}, err
	}
	part, err := writer.CreateFormFile("arquivo", arquivo.Name)
	if err != nil {
		return CreateAutoResult{}, err
	}
	if _, err := part.Write(arquivo.Content); err != nil {
		return CreateAutoResult{}, err
	}
	if err := writer.Close(); err != nil {
		return CreateAutoResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/criar/autos", &buf)
	if err != nil {
		return CreateAutoResult{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return CreateAutoResult{}, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return CreateAutoResult{}, c.decodeAPIError(resp)
	}

	var result CreateAutoResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return CreateAutoResult{}, fmt.Errorf("decode create auto response: %w", err)
	}
	return result, nil
}

func (c *Client) SendToSEI(ctx context.Context, idFuncionario int) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/criar/autos/enviar/%d", c.baseURL, idFuncionario), strings.NewReader("{}"))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.decodeAPIError(resp)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	if c.basicAuth != "" {
		req.Header.Set("Authorization", c.basicAuth)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil {
		var decoded struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &decoded) == nil {
			apiErr.Message = decoded.Message
		}
	}
	c.log.Warn().Int("status", resp.StatusCode).Str("url", resp.Request.URL.Path).Msg("backend request failed")
	return apiErr
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return ErrTimeout
		}
		return ErrUnreachable
	}
	return err
}
