package session

import "context"

// TokenKey es la key fija bajo la cual se persiste el bearer token.
const TokenKey = "authToken"

// TokenStore persiste el token de sesión del usuario del dashboard.
// Token devuelve "" (sin error) si no hay sesión.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}
