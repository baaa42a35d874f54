package semob

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autuacao-mobile/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(config.SemobConfig{
		BaseURL:   srv.URL,
		BasicUser: "semob",
		BasicPass: "secret",
		Timeout:   5 * time.Second,
	}, zerolog.Nop())
	return client, srv
}

func TestMD5Hex(t *testing.T) {
	assert.Equal(t, "900150983CD24FB0D6963F7D28E17F72", MD5Hex("abc"))
}

func TestLoginSendsDigestAndParsesResult(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/valida-md5/validar", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "fiscal01", body["username"])
		assert.Equal(t, MD5Hex("senha123"), body["senha"])

		json.NewEncoder(w).Encode(map[string]any{
			"mensagem":   "Acesso permitido",
			"id_usuario": 42,
		})
	}))

	result, err := client.Login(context.Background(), "fiscal01", "senha123")
	require.NoError(t, err)
	assert.Equal(t, 42, result.IDUsuario)
}

func TestLoginStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, `{}`, ErrInvalidCredentials},
		{"forbidden", http.StatusForbidden, `{}`, ErrForbidden},
		{"access denied message", http.StatusOK, `{"mensagem":"Acesso negado"}`, ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))

			_, err := client.Login(context.Background(), "fiscal01", "x")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLookupsSendBasicAuth(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "semob", user)
		assert.Equal(t, "secret", pass)

		require.Equal(t, "/operadoras/2025-10-03", r.URL.Path)
		io.WriteString(w, `[{"idPermissao":1,"nomeOperadora":"Viação Planalto","siglaServico":"VPL"}]`)
	}))

	operadoras, err := client.Operadoras(context.Background(), "2025-10-03")
	require.NoError(t, err)
	require.Len(t, operadoras, 1)
	assert.Equal(t, "VPL", operadoras[0].SiglaServico)
}

func TestLookupErrorCarriesStatus(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"message":"erro interno"}`)
	}))

	_, err := client.Infracoes(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "erro interno", apiErr.Message)
}

func TestPreAutoCount(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/funcionario/preautos/17", r.URL.Path)
		io.WriteString(w, `{"quantidade":3}`)
	}))

	count, err := client.PreAutoCount(context.Background(), 17)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestCreateAutoMultipart(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/criar/autos", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		var documento Documento
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("documento")), &documento))
		assert.Equal(t, 42, documento.IDUsuario)

		var preAutos []PreAuto
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("preAutos")), &preAutos))
		require.Len(t, preAutos, 1)
		assert.Equal(t, "ABC1D23", preAutos[0].Placa)

		file, header, err := r.FormFile("arquivo")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "foto.jpg", header.Filename)
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, []byte("jpeg-bytes"), content)

		json.NewEncoder(w).Encode(map[string]string{
			"message":         "pre auto cadastrado",
			"numeroDocumento": "2025099",
		})
	}))

	result, err := client.CreateAuto(context.Background(),
		[]PreAuto{{Placa: "ABC1D23"}},
		Documento{IDUsuario: 42, UsuarioWeb: "fiscal01"},
		Arquivo{Name: "foto.jpg", ContentType: "image/jpeg", Content: []byte("jpeg-bytes")},
	)
	require.NoError(t, err)
	assert.Equal(t, "2025099", result.NumeroDocumento)
}

func TestSendToSEI(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/criar/autos/enviar/17", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))

	assert.NoError(t, client.SendToSEI(context.Background(), 17))
}

func TestUnreachableBackend(t *testing.T) {
	client := NewClient(config.SemobConfig{
		BaseURL: "http://127.0.0.1:1",
		Timeout: time.Second,
	}, zerolog.Nop())

	_, err := client.Operadoras(context.Background(), "2025-10-03")
	assert.ErrorIs(t, err, ErrUnreachable)
}
