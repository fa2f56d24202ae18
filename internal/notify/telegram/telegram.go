// Package telegram implements a Notifier that posts messages to a chat via
// the Telegram Bot API sendMessage method.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/andros-ua/smtp2tg/internal/email"
	"github.com/andros-ua/smtp2tg/internal/format"
)

// requestTimeout bounds a single sendMessage call.
const requestTimeout = 30 * time.Second

// maxIdleConnsPerHost sizes the shared connection pool; every SMTP session
// reuses this one client.
const maxIdleConnsPerHost = 10

// maxErrorBodyLen caps how much of an API error response ends up in logs.
const maxErrorBodyLen = 512

// Config holds the settings for creating a Notifier.
type Config struct {
	// Token is the bot token used in the request path.
	Token string

	// ChatID is the destination chat identifier.
	ChatID string

	// ParseMode selects the outbound text dialect ("MarkdownV2" or "HTML").
	ParseMode string

	// APIURL is the Bot API base URL. Defaults to the public endpoint;
	// overridable for self-hosted API servers and tests.
	APIURL string
}

// Notifier sends notifications through the Telegram Bot API. It is safe for
// concurrent use; the underlying HTTP client pools connections internally.
type Notifier struct {
	chatID     string
	parseMode  string
	sendURL    string
	httpClient *http.Client
}

// sendMessageRequest is the JSON payload of the sendMessage method.
type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// New creates a Notifier with its own pooled HTTP client.
func New(cfg Config) *Notifier {
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = "https://api.telegram.org"
	}

	return &Notifier{
		chatID:    cfg.ChatID,
		parseMode: cfg.ParseMode,
		sendURL:   fmt.Sprintf("%s/bot%s/sendMessage", apiURL, cfg.Token),
		httpClient: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: maxIdleConnsPerHost,
			},
		},
	}
}

// Send formats the message for the configured parse mode and posts it to the
// chat. Any transport error or non-2xx response is returned as an error; the
// caller decides whether that failure matters.
func (n *Notifier) Send(ctx context.Context, msg *email.Message) error {
	text := format.Render(n.parseMode, msg.Subject, msg.Body)

	payload, err := json.Marshal(sendMessageRequest{
		ChatID:    n.chatID,
		Text:      text,
		ParseMode: n.parseMode,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal sendMessage payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.sendURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sendMessage request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return fmt.Errorf("telegram API returned %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// Name returns the backend name.
func (n *Notifier) Name() string {
	return "telegram"
}
