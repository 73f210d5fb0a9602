package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrNilClient = errors.New("httpclient: nil client")

// RequestInfo es el resumen del request que viaja en los errores (diagnóstico).
// El header Authorization se guarda redactado.
type RequestInfo struct {
	Method  string
	URL     string
	Headers map[string]string
}

// HTTPError representa una respuesta no-2xx.
// Body es el JSON de error parseado; si no era JSON, {"message": <status text>}.
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
	Request    RequestInfo
	Body       any
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

// Message devuelve body.message si el servidor lo mandó, si no el status text.
func (e *HTTPError) Message() string {
	if m, ok := e.Body.(map[string]any); ok {
		if s, ok := m["message"].(string); ok && s != "" {
			return s
		}
	}
	return e.Status
}

// TimeoutError: el request no terminó dentro de la ventana configurada.
type TimeoutError struct {
	URL     string
	Request RequestInfo
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout after %s: %s %s", e.Timeout, e.Request.Method, e.URL)
}

func (e *TimeoutError) Unwrap() error { return context.DeadlineExceeded }

// NetworkError: no hubo respuesta (conectividad, DNS, request cancelado...).
type NetworkError struct {
	URL     string
	Request RequestInfo
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// StatusCode devuelve el status de un *HTTPError en la cadena, o 0.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}

func statusText(code int) string {
	if s := http.StatusText(code); s != "" {
		return s
	}
	return fmt.Sprintf("status %d", code)
}
