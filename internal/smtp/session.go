package smtp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"

	"github.com/andros-ua/smtp2tg/internal/notify"
	"github.com/andros-ua/smtp2tg/internal/parser"
)

// Envelope states. The state only ever advances within a connection; it is
// never reset, see handleData.
const (
	stateInitial = iota
	stateSenderSet
	stateRecipientSet
)

// Session represents a single SMTP client connection and manages the
// envelope state machine.
type Session struct {
	conn     net.Conn
	reader   *bufio.Reader
	writer   *bufio.Writer
	state    int
	notifier notify.Notifier
	hostname string
}

// NewSession creates a new SMTP session for the given connection.
func NewSession(conn net.Conn, notifier notify.Notifier, hostname string) *Session {
	return &Session{
		conn:     conn,
		reader:   bufio.NewReader(conn),
		writer:   bufio.NewWriter(conn),
		state:    stateInitial,
		notifier: notifier,
		hostname: hostname,
	}
}

// Handle runs the SMTP session, processing commands until the client quits
// or disconnects. End-of-stream ends the session silently, with no reply.
func (s *Session) Handle(ctx context.Context) {
	defer s.conn.Close()

	s.writeLine("220 %s ready", s.hostname)

	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				slog.Debug("connection read error", "error", err)
			}
			return
		}

		cmd := strings.TrimRight(line, "\r\n")

		slog.Debug("SMTP command", "cmd", cmd)

		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			s.writeLine("250 %s", s.hostname)

		case strings.HasPrefix(cmd, "MAIL FROM:"):
			s.state = stateSenderSet
			s.writeLine("250 OK")

		case strings.HasPrefix(cmd, "RCPT TO:"):
			if s.state < stateSenderSet {
				s.writeLine("503 MAIL first")
			} else {
				s.state = stateRecipientSet
				s.writeLine("250 OK")
			}

		case strings.EqualFold(cmd, "DATA"):
			if s.state < stateRecipientSet {
				s.writeLine("503 Need MAIL and RCPT")
			} else {
				s.handleData(ctx)
			}

		case strings.EqualFold(cmd, "QUIT"):
			s.writeLine("221 Bye")
			return

		default:
			s.writeLine("502 Command not supported")
		}
	}
}

// handleData runs data-capture mode: raw lines are collected until the
// end-of-data marker or end-of-stream, the message is extracted and handed
// to the notifier, and the client gets 250 regardless of delivery outcome.
//
// The envelope state is left at RecipientSet afterwards, so a client may
// issue DATA again without a fresh MAIL/RCPT. That matches the observed
// behavior of the system this replaces; intent is undefined either way.
func (s *Session) handleData(ctx context.Context) {
	s.writeLine("354 End with <CR><LF>.<CR><LF>")

	var lines []string
	for {
		line, err := s.reader.ReadString('\n')
		trimmed := strings.TrimRight(line, " \t\r\n")
		if trimmed == "." {
			break
		}
		if line != "" {
			lines = append(lines, trimmed)
		}
		if err != nil {
			// End-of-stream terminates capture; what arrived still counts.
			break
		}
	}

	msg := parser.Extract(lines)

	slog.Debug("message extracted",
		"subject", msg.Subject,
		"body_len", len(msg.Body),
	)

	if err := s.notifier.Send(ctx, msg); err != nil {
		slog.Warn("notification delivery failed",
			"notifier", s.notifier.Name(),
			"error", err,
		)
	} else {
		slog.Debug("notification sent", "notifier", s.notifier.Name())
	}

	// Delivery failure is invisible to the SMTP client.
	s.writeLine("250 Message accepted")
}

// writeLine writes a formatted line to the client, followed by \r\n.
func (s *Session) writeLine(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	if _, err := s.writer.WriteString(line + "\r\n"); err != nil {
		slog.Debug("failed to write to client", "error", err)
		return
	}
	if err := s.writer.Flush(); err != nil {
		slog.Debug("failed to flush to client", "error", err)
	}
}
