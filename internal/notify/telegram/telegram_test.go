package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andros-ua/smtp2tg/internal/email"
	"github.com/andros-ua/smtp2tg/internal/format"
)

func TestSend_PostsSendMessage(t *testing.T) {
	t.Parallel()

	var (
		gotPath        string
		gotContentType string
		gotBody        []byte
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := New(Config{
		Token:     "123:abc",
		ChatID:    "-42",
		ParseMode: "MarkdownV2",
		APIURL:    srv.URL,
	})

	msg := &email.Message{Subject: "Test", Body: "hello"}
	if err := n.Send(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/bot123:abc/sendMessage" {
		t.Errorf("path: got %q, want %q", gotPath, "/bot123:abc/sendMessage")
	}
	if gotContentType != "application/json" {
		t.Errorf("content type: got %q, want application/json", gotContentType)
	}

	var payload struct {
		ChatID    string `json:"chat_id"`
		Text      string `json:"text"`
		ParseMode string `json:"parse_mode"`
	}
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("failed to parse request body: %v", err)
	}
	if payload.ChatID != "-42" {
		t.Errorf("chat_id: got %q, want %q", payload.ChatID, "-42")
	}
	if payload.ParseMode != "MarkdownV2" {
		t.Errorf("parse_mode: got %q, want %q", payload.ParseMode, "MarkdownV2")
	}
	if want := format.MarkdownV2("Test", "hello"); payload.Text != want {
		t.Errorf("text: got %q, want %q", payload.Text, want)
	}
}

func TestSend_HTMLMode(t *testing.T) {
	t.Parallel()

	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(Config{Token: "t", ChatID: "1", ParseMode: "HTML", APIURL: srv.URL})

	msg := &email.Message{Subject: "<b>", Body: "body"}
	if err := n.Send(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(string(gotBody), `&lt;b&gt;`) {
		t.Errorf("subject markup must arrive escaped, got %s", gotBody)
	}
}

func TestSend_NonSuccessStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	n := New(Config{Token: "t", ChatID: "1", ParseMode: "MarkdownV2", APIURL: srv.URL})

	err := n.Send(context.Background(), &email.Message{Subject: "s", Body: "b"})
	if err == nil {
		t.Fatal("expected error for 400 response, got nil")
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("error should mention status code, got %v", err)
	}
	if !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("error should include response body, got %v", err)
	}
}

func TestSend_TransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	n := New(Config{Token: "t", ChatID: "1", ParseMode: "MarkdownV2", APIURL: srv.URL})

	err := n.Send(context.Background(), &email.Message{Subject: "s", Body: "b"})
	if err == nil {
		t.Fatal("expected error for closed server, got nil")
	}
}

func TestSend_ContextCancelled(t *testing.T) {
	t.Parallel()

	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer srv.Close()
	defer close(blocked)

	n := New(Config{Token: "t", ChatID: "1", ParseMode: "MarkdownV2", APIURL: srv.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := n.Send(ctx, &email.Message{Subject: "s", Body: "b"})
	if err == nil {
		t.Fatal("expected error for cancelled context, got nil")
	}
}

func TestName(t *testing.T) {
	t.Parallel()

	n := New(Config{Token: "t", ChatID: "1"})
	if n.Name() != "telegram" {
		t.Errorf("Name: got %q, want %q", n.Name(), "telegram")
	}
}
