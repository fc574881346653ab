package notifiers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/daniacca/epidyn/internal/epidemic"
)

func testEvent(step int) epidemic.StepEvent {
	return epidemic.NewStepEvent("run-1", epidemic.NewRow(step, epidemic.Counts{Susceptible: 9, Infectious: 1}))
}

func TestWebhookNotifier(t *testing.T) {
	var got epidemic.StepEvent
	var header, contentType, stepHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		header = r.Header.Get("X-Run")
		contentType = r.Header.Get("Content-Type")
		stepHeader = r.Header.Get(HeaderStep)
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("invalid body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	notifier := NewWebhookNotifier("test-webhook", srv.URL)
	notifier.SetHeader("X-Run", "abc")

	if notifier.ID() != "test-webhook" {
		t.Errorf("Expected ID 'test-webhook', got '%s'", notifier.ID())
	}
	if notifier.Type() != "webhook" {
		t.Errorf("Expected type 'webhook', got '%s'", notifier.Type())
	}

	if err := notifier.Notify(context.Background(), testEvent(3)); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if got.RunID != "run-1" || got.Step != 3 || got.Row.Counts.Infectious != 1 {
		t.Errorf("unexpected payload %+v", got)
	}
	if header != "abc" {
		t.Errorf("Expected custom header, got %q", header)
	}
	if stepHeader != "3" {
		t.Errorf("Expected step header 3, got %q", stepHeader)
	}
	if contentType != "application/json" {
		t.Errorf("Expected JSON content type, got %q", contentType)
	}

	if err := notifier.Close(); err != nil {
		t.Errorf("Close should not return error: %v", err)
	}
}

func TestWebhookNotifier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "try later", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	notifier := NewWebhookNotifierWithClient("hook", srv.URL, srv.Client())
	err := notifier.Notify(context.Background(), testEvent(1))
	if err == nil {
		t.Fatal("Expected error for 503 response")
	}
	if !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "try later") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestWebhookNotifier_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	notifier := NewWebhookNotifier("hook", url)
	if err := notifier.Notify(context.Background(), testEvent(1)); err == nil {
		t.Error("Expected error with no server running")
	}
}
