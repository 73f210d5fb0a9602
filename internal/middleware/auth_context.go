package middleware

import (
	"net/http"
	"strings"

	"medication-dashboard/internal/ports/session"

	"go.uber.org/zap"
)

// SessionBootstrap:
// - Si viene Bearer token y es distinto del guardado => lo persiste en el store.
// - Sin token el request sigue igual; el transport usa lo que haya guardado.
// - Un error del store no corta el request.
func SessionBootstrap(tokens session.TokenStore, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" || tokens == nil {
				next.ServeHTTP(w, r)
				return
			}

			current, err := tokens.Token(r.Context())
			if err != nil {
				log.Warn("read session token failed", zap.Error(err))
			}
			if current != token {
				if err := tokens.SetToken(r.Context(), token); err != nil {
					log.Warn("store session token failed", zap.Error(err))
				} else {
					log.Debug("session token stored")
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
