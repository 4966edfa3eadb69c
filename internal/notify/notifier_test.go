package notify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type stubSender struct {
	name string
	err  error
	sent []string
}

func (s *stubSender) Send(_ context.Context, _, message string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, message)
	return nil
}

func (s *stubSender) Name() string { return s.name }

func TestDispatcherFansOut(t *testing.T) {
	a := &stubSender{name: "a"}
	b := &stubSender{name: "b"}
	d := NewDispatcher([]Sender{a, b}, nil)

	if err := d.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(a.sent) != 1 || len(b.sent) != 1 {
		t.Errorf("deliveries = %d/%d, want 1/1", len(a.sent), len(b.sent))
	}
}

func TestDispatcherContinuesPastFailures(t *testing.T) {
	bad := &stubSender{name: "bad", err: errors.New("boom")}
	good := &stubSender{name: "good"}
	d := NewDispatcher([]Sender{bad, good}, nil)

	err := d.Send(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected combined error")
	}
	if !strings.Contains(err.Error(), "bad: boom") {
		t.Errorf("error = %v", err)
	}
	if len(good.sent) != 1 {
		t.Error("healthy sender skipped after a failure")
	}
}

func TestDispatcherWithoutSendersIsNoOp(t *testing.T) {
	d := NewDispatcher(nil, nil)
	if err := d.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func TestDiscordSenderPostsWebhook(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := NewDiscordSender(srv.URL)
	if err := s.Send(context.Background(), "hoodbot", "order placed"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.Contains(gotBody, "**hoodbot**") || !strings.Contains(gotBody, "order placed") {
		t.Errorf("body = %s", gotBody)
	}
}

func TestDiscordSenderRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewDiscordSender(srv.URL)
	if err := s.Send(context.Background(), "hoodbot", "order placed"); err == nil {
		t.Fatal("expected error")
	}
}

func TestTelegramSenderPostsMessage(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotPath = r.URL.Path
		gotBody = string(body)
	}))
	defer srv.Close()

	s := NewTelegramSender("tok", "chat42")
	s.apiHost = srv.URL
	if err := s.Send(context.Background(), "hoodbot", "order placed"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotPath != "/bottok/sendMessage" {
		t.Errorf("path = %q", gotPath)
	}
	if !strings.Contains(gotBody, `"chat_id":"chat42"`) {
		t.Errorf("body = %s", gotBody)
	}
}
