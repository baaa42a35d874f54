package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"autuacao-mobile/internal/model"
)

type Claims struct {
	IDUsuario       int    `json:"uid"`
	IDFuncionario   int    `json:"fid"`
	NomeFuncionario string `json:"nome"`
	Username        string `json:"username"`
	Sigla           string `json:"sigla"`
	jwt.RegisteredClaims
}

// Tokens issues and parses the local session tokens handed to the shell
// after a successful backend login.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl}
}

func (t *Tokens) Issue(p model.Principal) (string, error) {
	now := time.Now()
	claims := Claims{
		IDUsuario:       p.IDUsuario,
		IDFuncionario:   p.IDFuncionario,
		NomeFuncionario: p.NomeFuncionario,
		Username:        p.Username,
		Sigla:           p.Sigla,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *Tokens) Parse(tokenStr string) (model.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil {
		return model.Principal{}, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return model.Principal{}, jwt.ErrTokenInvalidClaims
	}

	return model.Principal{
		IDUsuario:       claims.IDUsuario,
		IDFuncionario:   claims.IDFuncionario,
		NomeFuncionario: claims.NomeFuncionario,
		Username:        claims.Username,
		Sigla:           claims.Sigla,
	}, nil
}
