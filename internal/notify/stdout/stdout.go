// Package stdout implements a Notifier that prints messages to standard
// output, for dry runs without Telegram credentials.
package stdout

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andros-ua/smtp2tg/internal/email"
)

// Notifier prints messages to stdout in a human-readable format.
type Notifier struct {
	// writer is the output destination, defaulting to os.Stdout.
	writer io.Writer
}

// New creates a new stdout Notifier that writes to os.Stdout.
func New() *Notifier {
	return &Notifier{writer: os.Stdout}
}

// NewWithWriter creates a new stdout Notifier that writes to the given
// writer. This is useful for testing.
func NewWithWriter(w io.Writer) *Notifier {
	return &Notifier{writer: w}
}

// Send prints the message to stdout in a readable format.
// It always returns nil (success).
func (n *Notifier) Send(_ context.Context, msg *email.Message) error {
	var b strings.Builder

	b.WriteString("========================================\n")
	b.WriteString(fmt.Sprintf("Subject: %s\n", msg.Subject))
	b.WriteString("Body:\n")
	b.WriteString(msg.Body + "\n")
	b.WriteString("========================================\n")

	// A write error to stdout is not a delivery failure worth reporting.
	fmt.Fprint(n.writer, b.String())

	return nil
}

// Name returns the backend name.
func (n *Notifier) Name() string {
	return "stdout"
}
