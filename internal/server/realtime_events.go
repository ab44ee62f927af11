package server

import (
	"context"
	"log/slog"

	"pulse/internal/middleware"
	"pulse/internal/notifications"
	"pulse/internal/observability"
)

// publishFeedEvent fans an event out to stream clients. With Redis the event
// reaches this instance's hub through the subscription like any other
// instance; without it, or when publishing fails, the local hub is fed
// directly.
func (s *Server) publishFeedEvent(ctx context.Context, eventType string, payload interface{}) {
	if s.hub == nil {
		return
	}

	message, err := notifications.EncodeEvent(eventType, payload)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to encode feed event",
			slog.String("event", eventType),
			slog.String("error", err.Error()),
		)
		return
	}
	observability.WebSocketEventsTotal.WithLabelValues(eventType).Inc()

	if s.notifier.Enabled() {
		err := s.notifier.PublishFeed(context.WithoutCancel(ctx), message)
		if err == nil {
			return
		}
		middleware.Logger.WarnContext(ctx, "failed to publish feed event, broadcasting locally",
			slog.String("event", eventType),
			slog.String("error", err.Error()),
		)
	}
	s.hub.BroadcastAll(message)
}
