package notification

import (
	"context"
	"log/slog"
)

const (
	// KindVerificationCode indicates a phone verification code delivery.
	KindVerificationCode = "verification_code"
)

// Message describes an outbound delivery payload.
type Message struct {
	Kind        string
	Destination string
	Body        string
}

// Sender delivers messages to a downstream channel. A real SMS gateway would
// implement this; the service itself only depends on the seam.
type Sender interface {
	Send(ctx context.Context, message Message) error
}

// LoggerSender is a stand-in implementation that writes deliveries to the
// structured logger instead of an SMS provider.
type LoggerSender struct {
	logger *slog.Logger
}

// NewLoggerSender constructs a logging delivery stand-in.
func NewLoggerSender(logger *slog.Logger) *LoggerSender {
	return &LoggerSender{logger: logger}
}

// Send writes the message to the logger.
func (s *LoggerSender) Send(_ context.Context, message Message) error {
	if s == nil || s.logger == nil {
		return nil
	}
	s.logger.Info("notification", "kind", message.Kind, "destination", message.Destination, "body", message.Body)
	return nil
}
