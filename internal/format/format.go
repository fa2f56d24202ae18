// Package format renders extracted messages as Telegram-safe notification
// text in either the MarkdownV2 or the HTML dialect.
package format

import "strings"

// markdownV2Reserved is the set of characters Telegram requires escaped in
// MarkdownV2 text.
const markdownV2Reserved = "()[]{}<>`#+-=|.!*_\\"

// emoji prefixes every notification.
const emoji = "\U0001F4E8"

// collapseAfter is the number of quoted lines shown before Telegram's
// expandable-quote rendering collapses the rest.
const collapseAfter = 3

// Render builds the outbound notification text for the given parse mode.
// Any mode other than "HTML" renders MarkdownV2, matching the default.
func Render(parseMode, subject, body string) string {
	if parseMode == "HTML" {
		return HTML(subject, body)
	}
	return MarkdownV2(subject, body)
}

// MarkdownV2 renders the subject in bold followed by the body as an
// expandable block quote.
func MarkdownV2(subject, body string) string {
	return emoji + " *" + EscapeMarkdownV2(subject) + "*\n" + expandableQuote(body)
}

// HTML renders the subject in bold followed by the body in an expandable
// blockquote, using Telegram's native tags.
func HTML(subject, body string) string {
	return emoji + " <b>" + EscapeHTML(subject) + "</b>\n" +
		"<blockquote expandable>" + EscapeHTML(body) + "</blockquote>"
}

// EscapeMarkdownV2 prefixes every MarkdownV2-reserved character with a
// backslash. It is applied exactly once per message; re-escaping already
// escaped text is not idempotent.
func EscapeMarkdownV2(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(markdownV2Reserved, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// EscapeHTML escapes the four characters Telegram's HTML parse mode
// requires: < > & ". All other characters pass through unchanged.
func EscapeHTML(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '&':
			b.WriteString("&amp;")
		case '"':
			b.WriteString("&quot;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// expandableQuote renders the body as a MarkdownV2 block quote. The first
// line opens with a bold quote marker, an empty quote line after the third
// line triggers Telegram's collapsed rendering for longer bodies, and the
// final line carries the closing spoiler marker.
func expandableQuote(body string) string {
	if body == "" {
		return ""
	}

	lines := strings.Split(body, "\n")
	quoted := make([]string, 0, len(lines)+1)
	for i, line := range lines {
		escaped := EscapeMarkdownV2(line)
		if i == 0 {
			quoted = append(quoted, "**> "+escaped)
		} else {
			quoted = append(quoted, "> "+escaped)
		}
	}

	if len(quoted) > collapseAfter {
		rest := append([]string{"> "}, quoted[collapseAfter:]...)
		quoted = append(quoted[:collapseAfter], rest...)
	}

	quoted[len(quoted)-1] += "||"

	return strings.Join(quoted, "\n")
}
