// Package auth define el puerto de autenticación del API. Hoy lo implementa
// un token estático (adapters/auth/static).
package auth

import "context"

// Claims es la identidad autenticada. UserID se usa como actor de auditoría.
type Claims struct {
	UserID      string
	DisplayName string
}

// AuthVerifier valida un bearer token. Un error significa request anónimo.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
