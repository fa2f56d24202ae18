// Package notify defines the interface for notification delivery backends.
package notify

import (
	"context"

	"github.com/andros-ua/smtp2tg/internal/email"
)

// Notifier is the interface that notification backends must implement.
// Each backend turns an extracted message into an outbound notification
// (e.g., a Telegram chat message, or stdout for dry runs).
type Notifier interface {
	// Send delivers a notification for the given message.
	// It returns an error if the delivery fails.
	Send(ctx context.Context, msg *email.Message) error

	// Name returns the human-readable name of this backend.
	Name() string
}
