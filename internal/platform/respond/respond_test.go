package respond_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"medication-dashboard/internal/platform/httpclient"
	"medication-dashboard/internal/platform/respond"
	"medication-dashboard/internal/platform/validate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestError_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{
			name:   "validation",
			err:    validate.Errors{{Field: "name", Message: "is required"}},
			status: http.StatusBadRequest,
			msg:    "invalid input: name: is required",
		},
		{
			name:   "api error keeps status and message",
			err:    fmt.Errorf("create: %w", &httpclient.HTTPError{StatusCode: 404, Status: "Not Found", Body: map[string]any{"message": "patient not found"}}),
			status: http.StatusNotFound,
			msg:    "patient not found",
		},
		{
			name:   "timeout",
			err:    &httpclient.TimeoutError{URL: "http://api/x", Timeout: time.Second},
			status: http.StatusGatewayTimeout,
		},
		{
			name:   "network",
			err:    &httpclient.NetworkError{URL: "http://api/x", Err: errors.New("connection refused")},
			status: http.StatusBadGateway,
		},
		{
			name:   "unknown",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			msg:    "internal error",
		},
	}

	rs := respond.New("", zap.NewNop())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			rs.Error(rec, httptest.NewRequest(http.MethodGet, "/x", nil), tc.err)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body struct {
				Error  string                `json:"error"`
				Fields []validate.FieldError `json:"fields"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tc.msg != "" {
				assert.Equal(t, tc.msg, body.Error)
			}
			if tc.status == http.StatusBadRequest {
				assert.Equal(t, []validate.FieldError{{Field: "name", Message: "is required"}}, body.Fields)
			}
		})
	}
}

func TestError_UnauthorizedRedirectsToLogin(t *testing.T) {
	rs := respond.New("/entrar", nil)
	rec := httptest.NewRecorder()

	rs.Error(rec, httptest.NewRequest(http.MethodGet, "/patients", nil), &httpclient.HTTPError{StatusCode: 401, Status: "Unauthorized"})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/entrar", rec.Header().Get("Location"))
}

func TestError_LogsOnlyUnexpected(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	rs := respond.New("", zap.New(core))

	rs.Error(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/a", nil), validate.Errors{{Field: "x", Message: "bad"}})
	rs.Error(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/b", nil), errors.New("boom"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "request failed", entry.Message)
	assert.Equal(t, "/b", entry.ContextMap()["path"])
}
