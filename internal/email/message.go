// Package email defines the message model shared between the SMTP session
// and the notification backends.
package email

// NoSubject is the placeholder used when a message carries no Subject header.
const NoSubject = "[No Subject]"

// Message is the content extracted from one DATA block: the first Subject
// header value (or NoSubject) and the plain-text body.
type Message struct {
	Subject string
	Body    string
}
