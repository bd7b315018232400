// Package static verifica un único token configurado (AUTH_TOKEN).
package static

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/cockroachdb/errors"

	"vet-registry/internal/ports/auth"
)

var (
	ErrTokenEmpty    = errors.New("token is empty")
	ErrInvalidToken  = errors.New("invalid token")
	ErrNotConfigured = errors.New("static verifier not configured")
)

// Verifier implementa auth.AuthVerifier comparando contra Token.
type Verifier struct {
	user  string
	token []byte
}

func NewVerifier(user, token string) *Verifier {
	return &Verifier{
		user:  strings.TrimSpace(user),
		token: []byte(strings.TrimSpace(token)),
	}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || len(v.token) == 0 || v.user == "" {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}
	if subtle.ConstantTimeCompare([]byte(token), v.token) != 1 {
		return auth.Claims{}, ErrInvalidToken
	}
	return auth.Claims{UserID: v.user, DisplayName: v.user}, nil
}
