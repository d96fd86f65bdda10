package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	pkglogger "github.com/BradenHooton/vigil/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request correlation ID
const RequestIDHeader = "X-Request-ID"

// ErrTokenExpired is returned before sending when the bearer token has expired
var ErrTokenExpired = errors.New("bearer token has expired")

// BearerTransport authenticates outgoing requests with a bearer credential
// and tags each one with a request ID. The credential is supplied by the
// caller; this transport never stores or refreshes it.
type BearerTransport struct {
	Token string
	Base  http.RoundTripper

	// now is overridable in tests
	now func() time.Time
}

// NewBearerTransport wraps base (http.DefaultTransport when nil).
func NewBearerTransport(token string, base http.RoundTripper) *BearerTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &BearerTransport{Token: token, Base: base, now: time.Now}
}

// RoundTrip implements http.RoundTripper
func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	now := time.Now
	if t.now != nil {
		now = t.now
	}
	if t.Token != "" && tokenExpired(t.Token, now()) {
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, ErrTokenExpired
	}

	// RoundTrippers must not modify the caller's request
	r := req.Clone(req.Context())
	if t.Token != "" {
		r.Header.Set("Authorization", "Bearer "+t.Token)
	}
	if r.Header.Get(RequestIDHeader) == "" {
		r.Header.Set(RequestIDHeader, uuid.New().String())
	}

	return t.Base.RoundTrip(r)
}

// tokenExpired reports whether a JWT bearer token carries an exp claim in the
// past. The signature is not checked; opaque tokens are never considered expired.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}

// LoggingTransport logs every outgoing request with sensitive query redaction
type LoggingTransport struct {
	Base   http.RoundTripper
	Logger *slog.Logger
}

// RoundTrip implements http.RoundTripper
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.Base.RoundTrip(req)
	duration := time.Since(start)

	path := req.URL.Path
	if pkglogger.SanitizeQueryString(req.URL.RawQuery) {
		path = path + "?[REDACTED]"
	} else if req.URL.RawQuery != "" {
		path = req.URL.Path + "?" + req.URL.RawQuery
	}

	attrs := []slog.Attr{
		slog.String("method", req.Method),
		slog.String("path", path),
		slog.String("duration", duration.String()),
	}

	if resp != nil {
		attrs = append(attrs, slog.Int("status", resp.StatusCode))
		if resp.Request != nil {
			attrs = append(attrs, slog.String("request_id", resp.Request.Header.Get(RequestIDHeader)))
		}
	}

	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
		t.Logger.LogAttrs(context.Background(), slog.LevelWarn, "http_request_failed", attrs...)
		return nil, err
	}

	t.Logger.LogAttrs(context.Background(), slog.LevelDebug, "http_request", attrs...)
	return resp, nil
}

// NewClient builds an authenticated HTTP client. The timeout applies to each
// request as a whole.
func NewClient(token string, timeout time.Duration, logger *slog.Logger) *http.Client {
	var rt http.RoundTripper = NewBearerTransport(token, nil)
	if logger != nil {
		rt = &LoggingTransport{Base: rt, Logger: logger}
	}
	return &http.Client{
		Transport: rt,
		Timeout:   timeout,
	}
}
