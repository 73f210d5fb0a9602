package router

import (
	"encoding/json"
	"net/http"
	"strings"

	"medication-dashboard/internal/platform/querycache"
	"medication-dashboard/internal/platform/respond"
	"medication-dashboard/internal/platform/validate"
	"medication-dashboard/internal/ports/session"

	"github.com/go-chi/chi/v5"
)

type tokenRequest struct {
	Token string `json:"token"`
}

func registerSessionRoutes(r chi.Router, tokens session.TokenStore, store *querycache.Store, rs *respond.Responder) {
	r.Get("/login", loginHandler())
	r.Post("/session", createSessionHandler(tokens, rs))
	r.Delete("/session", deleteSessionHandler(tokens, store, rs))
}

// @Summary Entrada de login
// @Description Destino de la redirección cuando el API responde 401.
// @Tags session
// @Produce json
// @Success 200 {object} object
// @Router /login [get]
func loginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{
			"message": "session required: POST /session with {\"token\": \"...\"}",
		})
	}
}

// @Summary Guardar token de sesión
// @Tags session
// @Accept json
// @Param payload body tokenRequest true "Bearer token"
// @Success 204
// @Failure 400 {object} object "token vacío"
// @Router /session [post]
func createSessionHandler(tokens session.TokenStore, rs *respond.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Token) == "" {
			rs.Error(w, r, validate.Errors{{Field: "token", Message: "is required"}})
			return
		}
		if err := tokens.SetToken(r.Context(), req.Token); err != nil {
			rs.Error(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// @Summary Cerrar sesión
// @Description Borra el token y descarta el cache del usuario.
// @Tags session
// @Success 204
// @Router /session [delete]
func deleteSessionHandler(tokens session.TokenStore, store *querycache.Store, rs *respond.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := tokens.ClearToken(r.Context()); err != nil {
			rs.Error(w, r, err)
			return
		}
		store.Reset()
		w.WriteHeader(http.StatusNoContent)
	}
}
