package service

import (
	"errors"
	"strings"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrSessionNotFound = errors.New("form session not found")
	ErrBusy            = errors.New("operation already in progress")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrStorage         = errors.New("local storage failure")
	ErrInvalidInput    = errors.New("invalid input")
)

// ValidationError names the fields that block a submission. It is raised
// before any network call is made.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "campos obrigatórios ausentes: " + strings.Join(e.Missing, ", ")
}
