package middleware

import (
	"context"
	"net/http"
	"strings"

	"vet-registry/internal/ports/auth"
)

type ctxKey string

const (
	claimsKey ctxKey = "claims"

	// DebugUserHeader nombra al actor en desarrollo local, sin token.
	DebugUserHeader = "X-Debug-User-ID"
)

// AuthContext deja en el contexto los claims del usuario, si los hay.
// Con verifier se toman del Bearer token; sin verifier sólo del header de
// debug, y únicamente si debugHeader está habilitado. Un request sin claims
// sigue de largo y audita con el actor por defecto.
func AuthContext(verifier auth.AuthVerifier, debugHeader bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c, ok := claimsFrom(r, verifier, debugHeader); ok {
				r = r.WithContext(context.WithValue(r.Context(), claimsKey, c))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func claimsFrom(r *http.Request, verifier auth.AuthVerifier, debugHeader bool) (auth.Claims, bool) {
	if verifier == nil {
		uid := strings.TrimSpace(r.Header.Get(DebugUserHeader))
		if !debugHeader || uid == "" {
			return auth.Claims{}, false
		}
		return auth.Claims{UserID: uid}, true
	}

	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return auth.Claims{}, false
	}
	c, err := verifier.Verify(r.Context(), token)
	if err != nil {
		return auth.Claims{}, false
	}
	return c, true
}

// RequireAuth responde 401 si AuthContext no resolvió un usuario.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Actor(r.Context(), "") == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(auth.Claims)
	return c, ok
}

// Actor es el usuario que firma las entradas de auditoría.
func Actor(ctx context.Context, fallback string) string {
	if c, ok := GetClaims(ctx); ok {
		if uid := strings.TrimSpace(c.UserID); uid != "" {
			return uid
		}
	}
	return fallback
}

func bearerToken(h string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
