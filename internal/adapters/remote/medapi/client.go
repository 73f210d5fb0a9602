// Package medapi implementa los repositorios de dominio contra el API remoto
// de medicación. Cada función arma el path, llama al transport y decodifica;
// los errores del transport se devuelven sin envolver.
package medapi

import (
	"errors"
	"net/url"
	"strings"

	"medication-dashboard/internal/platform/httpclient"
)

var ErrMissingID = errors.New("medapi: missing id")

type Client struct {
	http *httpclient.Client
}

func New(c *httpclient.Client) *Client {
	return &Client{http: c}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http.IsConfigured()
}

// path une segmentos escapando cada id.
func path(segments ...string) (string, error) {
	var b strings.Builder
	for i, s := range segments {
		if i%2 == 1 {
			s = strings.TrimSpace(s)
			if s == "" {
				return "", ErrMissingID
			}
			s = url.PathEscape(s)
		}
		b.WriteString("/")
		b.WriteString(s)
	}
	return b.String(), nil
}
