package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizedEmail(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"user@example.com", "u***@*******.com"},
		{"a@x.org", "a@*.org"},
		{"not-an-email", "[invalid-email]"},
		{"a@b@c.com", "[invalid-email]"},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizedEmail(tt.email))
		})
	}
}

func TestSanitizeQueryString(t *testing.T) {
	assert.False(t, SanitizeQueryString(""))
	assert.False(t, SanitizeQueryString("role=admin&sort_by=username"))
	assert.True(t, SanitizeQueryString("search_term=jdoe"))
	assert.True(t, SanitizeQueryString("Email=a%40x.com"))
	assert.True(t, SanitizeQueryString("a=%zz"))
	// parameter values are not inspected
	assert.False(t, SanitizeQueryString("role=password"))
}

func TestAuditLogger_LogAccountAction(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)), "development")

	al.LogAccountAction(context.Background(), AccountEvent{
		Action:  ActionUserUpdate,
		UserID:  42,
		Email:   "user@example.com",
		Fields:  []string{"email", "is_active"},
		Success: true,
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "user_update", entry["event_type"])
	assert.Equal(t, "42", entry["user_id"])
	assert.Equal(t, "u***@*******.com", entry["email"])
	assert.Equal(t, []any{"email", "is_active"}, entry["fields"])
}

func TestAuditLogger_RedactsInProduction(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)), "production")

	al.LogAccountAction(context.Background(), AccountEvent{
		Action:        ActionUserCreate,
		Email:         "user@example.com",
		FailureReason: "Username already registered",
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "[REDACTED]", entry["email"])
	assert.Equal(t, "Username already registered", entry["failure_reason"])
}

func TestAuditLogger_LogBulkAction(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)), "development")

	al.LogBulkAction(context.Background(), ActionBulkDelete, 3, 2, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, float64(3), entry["total_attempted"])
	assert.Equal(t, float64(1), entry["failed"])
}
