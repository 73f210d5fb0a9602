package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"medication-dashboard/internal/platform/keycase"
	"medication-dashboard/internal/ports/session"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	DefaultTimeout      = 10 * time.Second
	DefaultAPIKeyHeader = "X-API-Key"
)

// Config del transport hacia el API remoto.
// BaseURL y APIKey normalmente vienen de config (env).
type Config struct {
	BaseURL string
	APIKey  string

	// Si está vacío, se usa "X-API-Key".
	APIKeyHeader string

	// Timeout por defecto de cada request (cada llamada puede sobreescribirlo).
	Timeout time.Duration

	DefaultHeaders map[string]string

	// Opcional: de acá sale el bearer token. Un 401 lo borra.
	Tokens session.TokenStore

	// Opcional: se invoca después de un 401 (redirigir al login).
	OnUnauthorized func()

	Logger *zap.Logger

	// Opcional: permite inyectar un RoundTripper (p.ej. para tests).
	HTTPTransport http.RoundTripper
}

// Client envuelve un *resty.Client con el contrato del dashboard:
// timeout propio, errores normalizados y keys de respuesta en camelCase.
type Client struct {
	rc             *resty.Client
	baseURL        string
	apiKey         string
	apiKeyHeader   string
	timeout        time.Duration
	defaultHeaders map[string]string
	tokens         session.TokenStore
	onUnauthorized func()
	log            *zap.Logger
}

func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL != "" {
		if _, err := url.ParseRequestURI(baseURL); err != nil {
			return nil, fmt.Errorf("invalid base url: %w", err)
		}
	}

	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = DefaultAPIKeyHeader
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	hc := &http.Client{}
	if cfg.HTTPTransport != nil {
		hc.Transport = cfg.HTTPTransport
	}
	// Sin reintentos: el caller decide.
	rc := resty.NewWithClient(hc).
		SetRetryCount(0).
		SetLogger(log.Sugar())

	defaults := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	for k, v := range cfg.DefaultHeaders {
		if strings.TrimSpace(k) == "" {
			continue
		}
		defaults[k] = v
	}

	return &Client{
		rc:             rc,
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         strings.TrimSpace(cfg.APIKey),
		apiKeyHeader:   h,
		timeout:        timeout,
		defaultHeaders: defaults,
		tokens:         cfg.Tokens,
		onUnauthorized: cfg.OnUnauthorized,
		log:            log,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.baseURL != ""
}

// Request describe una llamada.
// - Params solo se usan en GET; los valores nil se omiten.
// - Body: valores comunes se serializan a JSON; *Multipart, []byte e io.Reader pasan tal cual.
// - Timeout 0 => el default del Client.
type Request struct {
	Method  string
	Body    any
	Headers map[string]string
	Params  map[string]any
	Timeout time.Duration
}

// Response es una respuesta 2xx. Las keys del JSON se convierten a camelCase al decodificar.
type Response struct {
	StatusCode int
	Header     http.Header
	raw        []byte
}

// Raw devuelve el body tal cual llegó (keys sin transformar).
func (r *Response) Raw() []byte { return r.raw }

// Tree decodifica el body a un árbol genérico con keys en camelCase.
// Body vacío => nil.
func (r *Response) Tree() (any, error) {
	if len(bytes.TrimSpace(r.raw)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(r.raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("httpclient: unmarshal json: %w", err)
	}
	return keycase.ToCamel(v)
}

// JSON decodifica el body (ya en camelCase) sobre out.
func (r *Response) JSON(out any) error {
	tree, err := r.Tree()
	if err != nil {
		return err
	}
	if tree == nil || out == nil {
		return nil
	}
	if p, ok := out.(*any); ok {
		*p = tree
		return nil
	}
	b, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("httpclient: re-marshal json: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("httpclient: unmarshal json: %w", err)
	}
	return nil
}

// Do ejecuta el request. Errores posibles: *HTTPError, *TimeoutError, *NetworkError.
// No reintenta.
func (c *Client) Do(ctx context.Context, endpoint string, in Request) (*Response, error) {
	if c == nil || c.rc == nil {
		return nil, ErrNilClient
	}

	method := strings.ToUpper(strings.TrimSpace(in.Method))
	if method == "" {
		method = http.MethodGet
	}

	var params map[string]any
	if method == http.MethodGet {
		params = in.Params
	}
	fullURL, err := c.buildURL(endpoint, params)
	if err != nil {
		return nil, err
	}

	headers := c.buildHeaders(ctx, in.Headers)

	req := c.rc.R()
	if in.Body != nil && method != http.MethodGet {
		if err := setBody(req, headers, in.Body); err != nil {
			return nil, err
		}
	}
	req.SetHeaders(headers)

	info := RequestInfo{Method: method, URL: fullURL, Headers: redact(headers)}

	timeout := in.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}

	c.log.Debug("api request", zap.String("method", method), zap.String("url", fullURL))

	resp, timedOut, err := raceTimeout(ctx, timeout, func(runCtx context.Context) (*resty.Response, error) {
		return req.SetContext(runCtx).Execute(method, fullURL)
	})
	if timedOut {
		c.log.Warn("api request timeout",
			zap.String("method", method),
			zap.String("url", fullURL),
			zap.Duration("timeout", timeout),
		)
		return nil, &TimeoutError{URL: fullURL, Request: info, Timeout: timeout}
	}
	if err != nil {
		c.log.Warn("api network error",
			zap.String("method", method),
			zap.String("url", fullURL),
			zap.Error(err),
		)
		return nil, &NetworkError{URL: fullURL, Request: info, Err: err}
	}

	code := resp.StatusCode()
	if code < 200 || code >= 300 {
		return nil, c.handleHTTPError(ctx, code, resp.Body(), fullURL, info)
	}

	return &Response{
		StatusCode: code,
		Header:     resp.Header(),
		raw:        resp.Body(),
	}, nil
}

// DoJSON hace un request JSON y decodifica la respuesta (camelCase) en out.
// - in: body a enviar (opcional). Si nil => no body.
// - out: donde decodificar JSON (opcional). Si nil => ignora body.
func (c *Client) DoJSON(ctx context.Context, method, endpoint string, in, out any) error {
	resp, err := c.Do(ctx, endpoint, Request{Method: method, Body: in})
	if err != nil {
		return err
	}
	return resp.JSON(out)
}

func (c *Client) Get(ctx context.Context, endpoint string, params map[string]any) (*Response, error) {
	return c.Do(ctx, endpoint, Request{Method: http.MethodGet, Params: params})
}

func (c *Client) Post(ctx context.Context, endpoint string, body any) (*Response, error) {
	return c.Do(ctx, endpoint, Request{Method: http.MethodPost, Body: body})
}

func (c *Client) Put(ctx context.Context, endpoint string, body any) (*Response, error) {
	return c.Do(ctx, endpoint, Request{Method: http.MethodPut, Body: body})
}

func (c *Client) Patch(ctx context.Context, endpoint string, body any) (*Response, error) {
	return c.Do(ctx, endpoint, Request{Method: http.MethodPatch, Body: body})
}

func (c *Client) Delete(ctx context.Context, endpoint string) (*Response, error) {
	return c.Do(ctx, endpoint, Request{Method: http.MethodDelete})
}

func (c *Client) handleHTTPError(ctx context.Context, code int, raw []byte, fullURL string, info RequestInfo) error {
	status := statusText(code)

	// Intentar parsear el body de error; si no es JSON, {"message": status text}.
	var body any
	if err := json.Unmarshal(raw, &body); err != nil || body == nil {
		body = map[string]any{"message": status}
	}

	he := &HTTPError{
		StatusCode: code,
		Status:     status,
		URL:        fullURL,
		Request:    info,
		Body:       body,
	}

	switch code {
	case http.StatusUnauthorized:
		c.log.Warn("session expired", zap.String("url", fullURL))
		if c.tokens != nil {
			if err := c.tokens.ClearToken(ctx); err != nil {
				c.log.Error("clear session token failed", zap.Error(err))
			}
		}
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
	case http.StatusForbidden:
		c.log.Warn("access denied", zap.String("url", fullURL))
	default:
		c.log.Warn("api error", zap.Int("status", code), zap.String("url", fullURL))
	}

	return he
}

func (c *Client) buildURL(endpoint string, params map[string]any) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", errors.New("httpclient: empty url")
	}

	var full string
	switch {
	case strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://"):
		full = endpoint
	case c.baseURL == "":
		return "", errors.New("httpclient: relative path requires BaseURL")
	default:
		if !strings.HasPrefix(endpoint, "/") {
			endpoint = "/" + endpoint
		}
		full = c.baseURL + endpoint
	}

	if len(params) == 0 {
		return full, nil
	}

	u, err := url.Parse(full)
	if err != nil {
		return "", fmt.Errorf("httpclient: parse url: %w", err)
	}
	q := u.Query()

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := params[k]
		if isNil(v) {
			continue
		}
		q.Add(k, fmt.Sprint(deref(v)))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) buildHeaders(ctx context.Context, custom map[string]string) map[string]string {
	h := make(map[string]string, len(c.defaultHeaders)+len(custom)+2)
	for k, v := range c.defaultHeaders {
		h[k] = v
	}
	if c.apiKey != "" {
		h[c.apiKeyHeader] = c.apiKey
	}
	for k, v := range custom {
		if strings.TrimSpace(k) == "" {
			continue
		}
		h[k] = v
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			c.log.Warn("read session token failed", zap.Error(err))
		} else if token != "" {
			h["Authorization"] = "Bearer " + token
		}
	}
	return h
}

func setBody(req *resty.Request, headers map[string]string, body any) error {
	switch b := body.(type) {
	case *Multipart:
		// El boundary lo arma resty; un Content-Type explícito lo rompería.
		deleteHeader(headers, "Content-Type")
		b.apply(req)
	case []byte:
		req.SetBody(b)
	case io.Reader:
		req.SetBody(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("httpclient: marshal json: %w", err)
		}
		req.SetBody(raw)
	}
	return nil
}

func deleteHeader(h map[string]string, name string) {
	for k := range h {
		if strings.EqualFold(k, name) {
			delete(h, k)
		}
	}
}

func redact(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if strings.EqualFold(k, "Authorization") {
			v = "Bearer [redacted]"
		}
		out[k] = v
	}
	return out
}
