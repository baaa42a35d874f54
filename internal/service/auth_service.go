package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"autuacao-mobile/internal/auth"
	"autuacao-mobile/internal/model"
	"autuacao-mobile/internal/semob"
	"autuacao-mobile/internal/store"
)

var ErrFuncionarioMissing = errors.New("dados do funcionário não encontrados")

// LoginAPI is the slice of the backend client the auth flow needs.
type LoginAPI interface {
	Login(ctx context.Context, username, senha string) (semob.LoginResult, error)
	FuncionarioDetails(ctx context.Context, userID int) ([]model.FuncionarioDetalhe, error)
	UpdatePassword(ctx context.Context, username, novaSenha string) error
}

// AuthService logs the inspector in against the backend, persists the
// identity locally and issues the shell's session token.
type AuthService struct {
	api      LoginAPI
	identity *store.IdentityRepository
	tokens   *auth.Tokens
	log      zerolog.Logger
}

func NewAuthService(api LoginAPI, identity *store.IdentityRepository, tokens *auth.Tokens, log zerolog.Logger) *AuthService {
	return &AuthService{
		api:      api,
		identity: identity,
		tokens:   tokens,
		log:      log.With().Str("component", "auth").Logger(),
	}
}

func (s *AuthService) Login(ctx context.Context, username, senha string) (model.Principal, string, error) {
	result, err := s.api.Login(ctx, username, senha)
	if err != nil {
		return model.Principal{}, "", err
	}

	details, err := s.api.FuncionarioDetails(ctx, result.IDUsuario)
	if err != nil {
		return model.Principal{}, "", err
	}
	if len(details) == 0 {
		return model.Principal{}, "", ErrFuncionarioMissing
	}

	principal := model.Principal{
		IDUsuario:       result.IDUsuario,
		IDFuncionario:   details[0].IDFuncionario,
		NomeFuncionario: details[0].NomeFuncionario,
		Username:        username,
		Sigla:           strings.ToUpper(username),
	}

	if err := s.identity.Set(ctx, principal); err != nil {
		return model.Principal{}, "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	token, err := s.tokens.Issue(principal)
	if err != nil {
		return model.Principal{}, "", err
	}

	s.log.Info().Int("id_usuario", principal.IDUsuario).Msg("inspector logged in")
	return principal, token, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.identity.Clear(ctx)
}

// Restore returns the identity persisted on device, for session recovery
// without network access.
func (s *AuthService) Restore(ctx context.Context) (model.Principal, error) {
	principal, err := s.identity.Get(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNoIdentity) {
			return model.Principal{}, ErrUnauthenticated
		}
		return model.Principal{}, err
	}
	return principal, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, username, novaSenha string) error {
	return s.api.UpdatePassword(ctx, username, novaSenha)
}
