package logger

import (
	"context"
	"log/slog"
	"strconv"
	"time"
)

// Account actions recorded by the client
const (
	ActionUserCreate = "user_create"
	ActionUserUpdate = "user_update"
	ActionUserDelete = "user_delete"
	ActionBulkCreate = "bulk_create"
	ActionBulkDelete = "bulk_delete"
)

// AccountEvent describes one account mutation submitted by an operator
type AccountEvent struct {
	Action        string
	UserID        int64
	Email         string
	Fields        []string
	Success       bool
	FailureReason string
}

// AuditLogger records account mutations issued from this client
type AuditLogger struct {
	logger *slog.Logger
	env    string
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger, env string) *AuditLogger {
	return &AuditLogger{
		logger: logger,
		env:    env,
	}
}

// LogAccountAction logs a single-record mutation
func (al *AuditLogger) LogAccountAction(ctx context.Context, event AccountEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "account"),
		slog.String("event_type", event.Action),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.UserID != 0 {
		attrs = append(attrs, slog.String("user_id", strconv.FormatInt(event.UserID, 10)))
	}
	if event.Email != "" {
		attrs = append(attrs, RedactedAttr("email", SanitizedEmail(event.Email), al.env))
	}
	if len(event.Fields) > 0 {
		attrs = append(attrs, slog.Any("fields", event.Fields))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(ctx, level, "audit", attrs...)
}

// LogBulkAction logs the aggregate outcome of a bulk operation
func (al *AuditLogger) LogBulkAction(ctx context.Context, action string, attempted, successful, failed int) {
	attrs := []slog.Attr{
		slog.String("audit_type", "bulk"),
		slog.String("event_type", action),
		slog.Int("total_attempted", attempted),
		slog.Int("successful", successful),
		slog.Int("failed", failed),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	level := slog.LevelInfo
	if failed > 0 {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(ctx, level, "audit", attrs...)
}
