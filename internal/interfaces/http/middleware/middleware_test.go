package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapkiduki/apnacart/internal/infrastructure/logging"
	"github.com/hapkiduki/apnacart/pkg/logger"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
})

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Error.Code
}

func TestRequestIDGeneratesAndPropagates(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestRequestIDKeepsIncomingHeader(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "upstream-42", seen)
	assert.Equal(t, "upstream-42", rec.Header().Get(RequestIDHeader))
}

func TestLoggerWritesRequestLine(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logger.MustNew(logger.Config{Output: &buf}))

	h := RequestID(Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/vegetables/9", nil))

	entry := map[string]any{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "/api/vegetables/9", entry["path"])
	assert.EqualValues(t, http.StatusNotFound, entry["status"])
	assert.NotEmpty(t, entry["request_id"])
}

func TestCartContext(t *testing.T) {
	var cartID string
	r := chi.NewRouter()
	r.With(CartContext).Get("/carts/{cartID}", func(w http.ResponseWriter, r *http.Request) {
		cartID, _ = r.Context().Value(logger.CartIDKey).(string)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/carts/abc", nil))
	assert.Equal(t, "abc", cartID)
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(logging.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, rec))
}

func TestRateLimiter(t *testing.T) {
	h := RateLimiter(RateLimiterConfig{RequestsPerSecond: 1, Burst: 2})(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSecureHeadersAndVersion(t *testing.T) {
	h := SecureHeaders(APIVersion("v1")(okHandler))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "v1", rec.Header().Get("X-API-Version"))
}

func TestContentTypeJSON(t *testing.T) {
	h := ContentTypeJSON(okHandler)

	tests := []struct {
		name        string
		method      string
		body        string
		contentType string
		want        int
	}{
		{name: "json with charset", method: http.MethodPost, body: `{}`, contentType: "application/json; charset=utf-8", want: http.StatusOK},
		{name: "plain text", method: http.MethodPut, body: `{}`, contentType: "text/plain", want: http.StatusUnsupportedMediaType},
		{name: "empty post", method: http.MethodPost, want: http.StatusOK},
		{name: "get", method: http.MethodGet, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, "/", strings.NewReader(tt.body))
			} else {
				req = httptest.NewRequest(tt.method, "/", nil)
			}
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestTimeout(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	rec := httptest.NewRecorder()
	Timeout(10*time.Millisecond)(slow).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, "TIMEOUT", errorCode(t, rec))

	rec = httptest.NewRecorder()
	Timeout(time.Second)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRealIP(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"192.0.2.1", "10.0.0.0/8"})
	require.NoError(t, err)

	var addr string
	h := RealIP(trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr = ClientIP(r)
	}))

	tests := []struct {
		name   string
		remote string
		xff    string
		xrip   string
		want   string
	}{
		{name: "untrusted peer keeps its address", remote: "198.51.100.9:4000", xff: "203.0.113.7", want: "198.51.100.9"},
		{name: "untrusted peer cannot set X-Real-IP", remote: "198.51.100.9:4000", xrip: "203.0.113.7", want: "198.51.100.9"},
		{name: "trusted proxy forwards client", remote: "192.0.2.1:4000", xff: "203.0.113.7", want: "203.0.113.7"},
		{name: "spoofed leading hop is skipped", remote: "192.0.2.1:4000", xff: "1.2.3.4, 203.0.113.7, 10.0.0.5", want: "203.0.113.7"},
		{name: "all hops trusted", remote: "192.0.2.1:4000", xff: "10.0.0.7, 10.0.0.5", want: "10.0.0.7"},
		{name: "garbage hop stops the walk", remote: "192.0.2.1:4000", xff: "203.0.113.7, junk", want: "192.0.2.1"},
		{name: "trusted proxy X-Real-IP", remote: "192.0.2.1:4000", xrip: "198.51.100.2", want: "198.51.100.2"},
		{name: "no headers", remote: "192.0.2.1:4000", want: "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xrip != "" {
				req.Header.Set("X-Real-IP", tt.xrip)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.want, addr)
		})
	}
}

func TestRealIPKeepsRateLimitPerClient(t *testing.T) {
	limits := DefaultRateLimiterConfig()
	limits.RequestsPerSecond = 0.001
	limits.Burst = 1

	h := RealIP(nil)(RateLimiter(limits)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	send := func(xff string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "198.51.100.9:4000"
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, send("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.2"))
}

func TestParseTrustedProxies(t *testing.T) {
	prefixes, err := ParseTrustedProxies([]string{"127.0.0.1", " ::1 ", "", "10.1.2.3/8"})
	require.NoError(t, err)
	require.Len(t, prefixes, 3)
	assert.Equal(t, "10.0.0.0/8", prefixes[2].String())

	_, err = ParseTrustedProxies([]string{"not-an-ip"})
	assert.Error(t, err)
}

func TestMaxBodySize(t *testing.T) {
	h := MaxBodySize(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var maxErr *http.MaxBytesError
		if _, err := io.ReadAll(r.Body); errors.As(err, &maxErr) {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
		}
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("012")))
	assert.Equal(t, http.StatusOK, rec.Code)
}
