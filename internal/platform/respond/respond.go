// Package respond traduce resultados y errores del dashboard a respuestas HTTP.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"medication-dashboard/internal/platform/httpclient"
	"medication-dashboard/internal/platform/validate"

	"go.uber.org/zap"
)

const DefaultLoginURL = "/login"

type Responder struct {
	LoginURL string
	Log      *zap.Logger
}

func New(loginURL string, log *zap.Logger) *Responder {
	if loginURL == "" {
		loginURL = DefaultLoginURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Responder{LoginURL: loginURL, Log: log}
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error  string                `json:"error"`
	Fields []validate.FieldError `json:"fields,omitempty"`
	Body   any                   `json:"body,omitempty"`
}

// Error mapea:
//   - validación → 400 con los campos
//   - 401 del API → 303 al login
//   - otro HTTPError → mismo status con el body parseado
//   - timeout → 504, red → 502
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	var he *httpclient.HTTPError

	switch {
	case errors.Is(err, validate.ErrInvalidInput):
		JSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Fields: validate.Fields(err)})

	case errors.As(err, &he) && he.StatusCode == http.StatusUnauthorized:
		http.Redirect(w, r, rs.LoginURL, http.StatusSeeOther)

	case errors.As(err, &he):
		JSON(w, he.StatusCode, errorBody{Error: he.Message(), Body: he.Body})

	case httpclient.IsTimeout(err):
		JSON(w, http.StatusGatewayTimeout, errorBody{Error: err.Error()})

	case httpclient.IsNetwork(err):
		JSON(w, http.StatusBadGateway, errorBody{Error: err.Error()})

	default:
		rs.Log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		JSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}
