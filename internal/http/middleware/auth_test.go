package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autuacao-mobile/internal/auth"
	"autuacao-mobile/internal/model"
)

func newProtectedRouter(tokens *auth.Tokens) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", Auth(tokens), func(c *gin.Context) {
		principal, ok := MustPrincipal(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "principal missing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": principal.Username})
	})
	return router
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	tokens := auth.NewTokens("test-secret", time.Hour)
	token, err := tokens.Issue(model.Principal{IDUsuario: 42, Username: "fiscal01"})
	require.NoError(t, err)

	router := newProtectedRouter(tokens)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fiscal01")
}

func TestAuthRejectsBadHeaders(t *testing.T) {
	tokens := auth.NewTokens("test-secret", time.Hour)
	router := newProtectedRouter(tokens)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
