package notify

import (
	"context"
	"log/slog"
)

// Sender delivers a notification to a user. Delivery is best-effort and
// fire-and-forget; callers ignore the error beyond logging it.
type Sender interface {
	Send(ctx context.Context, userID, title, body string) error
}

// LogSender writes notifications to the structured log. It stands in for a
// push-delivery channel, which lives outside this service.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, userID, title, body string) error {
	s.logger.InfoContext(ctx, "notification sent",
		slog.String("user_id", userID),
		slog.String("title", title),
		slog.String("body", body),
	)
	return nil
}

var _ Sender = (*LogSender)(nil)
