package semob

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("usuário ou senha inválidos")
	ErrForbidden          = errors.New("acesso não permitido, entre em contato com o administrador")
	ErrTimeout            = errors.New("tempo limite da conexão esgotado, verifique sua rede")
	ErrUnreachable        = errors.New("erro de conexão, verifique sua conexão com a internet")
)

// APIError carries a message produced by the backend itself. Callers prefer
// this text over a generic failure message when presenting errors.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("erro no servidor: %d", e.Status)
}
