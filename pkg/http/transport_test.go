package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(expiresAt.Add(-15 * time.Minute)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret-32-characters-long!"))
	require.NoError(t, err)
	return token
}

func TestBearerTransport_SetsHeaders(t *testing.T) {
	var gotAuth, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get(RequestIDHeader)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	token := signedToken(t, time.Now().Add(time.Hour))
	client := &http.Client{Transport: NewBearerTransport(token, nil)}

	req, err := http.NewRequest(http.MethodGet, server.URL+"/users", nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer "+token, gotAuth)
	_, err = uuid.Parse(gotRequestID)
	assert.NoError(t, err, "request id should be a uuid")
	assert.Empty(t, req.Header.Get("Authorization"), "caller request must not be modified")
}

func TestBearerTransport_OpaqueTokenPassesThrough(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer server.Close()

	client := &http.Client{Transport: NewBearerTransport("opaque-api-key", nil)}
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer opaque-api-key", gotAuth)
}

func TestBearerTransport_ExpiredTokenFailsFast(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	token := signedToken(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	transport := NewBearerTransport(token, nil)
	transport.now = func() time.Time { return time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC) }

	_, err := (&http.Client{Transport: transport}).Get(server.URL)

	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.False(t, called)
}

func TestBearerTransport_KeepsCallerRequestID(t *testing.T) {
	var gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get(RequestIDHeader)
	}))
	defer server.Close()

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	resp, err := (&http.Client{Transport: NewBearerTransport("", nil)}).Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "fixed-id", gotRequestID)
}

func TestLoggingTransport_RedactsSensitiveQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client := NewClient("", 5*time.Second, logger)

	resp, err := client.Get(server.URL + "/users?search_term=x&email=a@x.com")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Contains(t, buf.String(), `"path":"/users?[REDACTED]"`)
	assert.NotContains(t, buf.String(), "a@x.com")
	assert.Contains(t, buf.String(), `"status":200`)
}
