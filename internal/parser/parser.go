// Package parser turns a captured DATA block into a notification message.
//
// The extraction rule is deliberately line-level rather than a full RFC 5322
// parse: the first blank line ends the header block, the first Subject header
// wins, and every other header is discarded.
package parser

import (
	"strings"

	"github.com/andros-ua/smtp2tg/internal/email"
)

const subjectPrefix = "subject:"

// Extract consumes the lines of one DATA block and produces the message to
// notify about. Lines are expected without their terminators; a line equal to
// "." ends the block early, mirroring the wire-level end-of-data marker.
//
// While in the header block, a blank line switches to body mode and a
// case-insensitive "Subject:" line sets the subject (first occurrence only).
// If the block ends without any blank line, the input had no header block and
// the captured lines become the body, minus a consumed Subject line. The
// subject falls back to email.NoSubject and the body is trimmed of
// surrounding whitespace.
func Extract(lines []string) *email.Message {
	var (
		subject    string
		body       strings.Builder
		pending    []string
		subjectIdx = -1
		inHeaders  = true
	)

	for _, raw := range lines {
		line := strings.TrimRight(raw, " \t\r\n")
		if line == "." {
			break
		}

		if inHeaders {
			if line == "" {
				inHeaders = false
				continue
			}
			if subject == "" && strings.HasPrefix(strings.ToLower(line), subjectPrefix) {
				subject = strings.TrimSpace(line[len(subjectPrefix):])
				subjectIdx = len(pending)
			}
			pending = append(pending, line)
			continue
		}

		body.WriteString(line)
		body.WriteByte('\n')
	}

	if inHeaders {
		// No header/body separator: treat the whole capture as the body.
		for i, line := range pending {
			if i == subjectIdx {
				continue
			}
			body.WriteString(line)
			body.WriteByte('\n')
		}
	}

	if subject == "" {
		subject = email.NoSubject
	}

	return &email.Message{
		Subject: subject,
		Body:    strings.TrimSpace(body.String()),
	}
}
