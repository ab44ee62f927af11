// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"
)

// Logger is the logger used by RepoLogger and WSLogger. Bootstrap replaces it
// with the context-aware application logger.
var Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

// EnableRepoLogging toggles debug logging of repository writes.
var EnableRepoLogging = true

// SetLogger swaps the package logger.
func SetLogger(l *slog.Logger) {
	if l != nil {
		Logger = l
	}
}

// RepoLogger provides structured logging for repository operations.
type RepoLogger struct {
	tableName string
}

// NewRepoLogger creates a new RepoLogger for the given table.
func NewRepoLogger(tableName string) *RepoLogger {
	return &RepoLogger{tableName: tableName}
}

// LogWrite logs a create, update or delete on the table.
func (l *RepoLogger) LogWrite(ctx context.Context, operation string, attrs ...slog.Attr) {
	if !EnableRepoLogging {
		return
	}
	args := []any{
		slog.String("table", l.tableName),
		slog.String("operation", operation),
	}
	for _, a := range attrs {
		args = append(args, a)
	}
	Logger.DebugContext(ctx, "repository write", args...)
}

// LogError logs a repository error.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	Logger.ErrorContext(ctx, "repository error",
		slog.String("table", l.tableName),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// ServiceLogger logs side effects a service tolerates failing, such as
// removing stored objects after the owning row is gone.
type ServiceLogger struct {
	service string
}

// NewServiceLogger creates a new ServiceLogger for the named service.
func NewServiceLogger(service string) *ServiceLogger {
	return &ServiceLogger{service: service}
}

// LogDegraded logs a failed best-effort step at warn level.
func (l *ServiceLogger) LogDegraded(ctx context.Context, err error, operation string, attrs ...slog.Attr) {
	args := []any{
		slog.String("service", l.service),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	}
	for _, a := range attrs {
		args = append(args, a)
	}
	Logger.WarnContext(ctx, "best-effort step failed", args...)
}

// WSLogger provides structured logging for WebSocket hubs.
type WSLogger struct {
	hubName string
}

// NewWSLogger creates a new WSLogger for the given hub.
func NewWSLogger(hubName string) *WSLogger {
	return &WSLogger{hubName: hubName}
}

// LogConnect logs a WebSocket connection event.
func (l *WSLogger) LogConnect(ctx context.Context, userID string) {
	Logger.InfoContext(ctx, "websocket connected",
		slog.String("hub", l.hubName),
		slog.String("user_id", userID),
	)
}

// LogDisconnect logs a WebSocket disconnection event.
func (l *WSLogger) LogDisconnect(ctx context.Context, userID, reason string) {
	Logger.InfoContext(ctx, "websocket disconnected",
		slog.String("hub", l.hubName),
		slog.String("user_id", userID),
		slog.String("reason", reason),
	)
}

// LogError logs a WebSocket error event.
func (l *WSLogger) LogError(ctx context.Context, err error, eventType string) {
	Logger.ErrorContext(ctx, "websocket error",
		slog.String("hub", l.hubName),
		slog.String("event_type", eventType),
		slog.String("error", err.Error()),
	)
}
