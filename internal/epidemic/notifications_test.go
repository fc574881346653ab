package epidemic

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// mockNotifier is a test implementation of Notifier
type mockNotifier struct {
	id          string
	notifyFunc  func(context.Context, StepEvent) error
	closeFunc   func() error
	notifyCount int
	mu          sync.Mutex
}

func (m *mockNotifier) ID() string   { return m.id }
func (m *mockNotifier) Type() string { return "mock" }
func (m *mockNotifier) Notify(ctx context.Context, event StepEvent) error {
	m.mu.Lock()
	m.notifyCount++
	m.mu.Unlock()
	if m.notifyFunc != nil {
		return m.notifyFunc(ctx, event)
	}
	return nil
}
func (m *mockNotifier) Close() error {
	if m.closeFunc != nil {
		return m.closeFunc()
	}
	return nil
}

func (m *mockNotifier) getNotifyCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifyCount
}

func testEvent(step int) StepEvent {
	return NewStepEvent("run-1", NewRow(step, Counts{Susceptible: 3, Infectious: 1}))
}

func TestStepEvent_JSON(t *testing.T) {
	data, err := testEvent(4).JSON()
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["run_id"] != "run-1" || decoded["step"] != float64(4) {
		t.Errorf("unexpected event %s", data)
	}
	row, ok := decoded["row"].(map[string]any)
	if !ok || row["infectious"] != 0.25 {
		t.Errorf("unexpected row %s", data)
	}
}

func TestNotificationManager_RegisterNotifier(t *testing.T) {
	nm := NewNotificationManager()
	defer nm.Close()

	if err := nm.RegisterNotifier(&mockNotifier{id: "test-1"}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if err := nm.RegisterNotifier(&mockNotifier{id: "test-1"}); err == nil {
		t.Error("Expected error for duplicate registration")
	}
	if err := nm.RegisterNotifier(nil); err == nil {
		t.Error("Expected error for nil notifier")
	}
	if err := nm.RegisterNotifier(&mockNotifier{id: ""}); err == nil {
		t.Error("Expected error for empty ID")
	}

	nm.RegisterNotifier(&mockNotifier{id: "test-2"})
	if got := len(nm.ListNotifiers()); got != 2 {
		t.Errorf("Expected 2 notifiers, got %d", got)
	}
	if _, ok := nm.GetNotifier("test-2"); !ok {
		t.Error("Expected to find test-2")
	}
}

func TestNotificationManager_UnregisterNotifier(t *testing.T) {
	nm := NewNotificationManager()
	defer nm.Close()

	if err := nm.UnregisterNotifier("missing"); err == nil {
		t.Error("Expected error for non-existent notifier")
	}

	closed := false
	nm.RegisterNotifier(&mockNotifier{id: "test-1", closeFunc: func() error {
		closed = true
		return nil
	}})
	if err := nm.UnregisterNotifier("test-1"); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if !closed {
		t.Error("Expected notifier to be closed on unregister")
	}
	if _, ok := nm.GetNotifier("test-1"); ok {
		t.Error("Expected notifier to be removed")
	}
}

func TestNotificationManager_Enqueue(t *testing.T) {
	nm := NewNotificationManager()
	a := &mockNotifier{id: "a"}
	b := &mockNotifier{id: "b"}
	nm.RegisterNotifier(a)
	nm.RegisterNotifier(b)

	for step := range 5 {
		nm.Enqueue(testEvent(step), []string{"a"})
	}
	nm.Enqueue(testEvent(5), nil)
	if err := nm.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	if a.getNotifyCount() != 5 {
		t.Errorf("Expected 5 notifications, got %d", a.getNotifyCount())
	}
	if b.getNotifyCount() != 0 {
		t.Errorf("Expected no notifications for b, got %d", b.getNotifyCount())
	}

	// dropped silently once closed
	nm.Enqueue(testEvent(6), []string{"a"})
	if err := nm.Close(); err != nil {
		t.Errorf("second Close returned error: %v", err)
	}
}

func TestNotificationManager_Retry(t *testing.T) {
	nm := NewNotificationManager()
	nm.backoff = time.Millisecond

	failing := &mockNotifier{id: "flaky"}
	failing.notifyFunc = func(context.Context, StepEvent) error {
		if failing.notifyCount < 3 {
			return errors.New("temporary failure")
		}
		return nil
	}
	dead := &mockNotifier{id: "dead", notifyFunc: func(context.Context, StepEvent) error {
		return errors.New("down")
	}}
	nm.RegisterNotifier(failing)
	nm.RegisterNotifier(dead)

	nm.Enqueue(testEvent(1), []string{"flaky", "dead", "unknown"})
	nm.Close()

	if failing.getNotifyCount() != 3 {
		t.Errorf("Expected success on third attempt, got %d attempts", failing.getNotifyCount())
	}
	if dead.getNotifyCount() != nm.maxRetries+1 {
		t.Errorf("Expected %d attempts, got %d", nm.maxRetries+1, dead.getNotifyCount())
	}
}

func TestNotificationManager_Notify(t *testing.T) {
	nm := NewNotificationManager()
	defer nm.Close()

	ok := &mockNotifier{id: "ok"}
	bad := &mockNotifier{id: "bad", notifyFunc: func(context.Context, StepEvent) error {
		return errors.New("boom")
	}}
	nm.RegisterNotifier(ok)
	nm.RegisterNotifier(bad)

	if err := nm.Notify(context.Background(), testEvent(1), []string{"ok"}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	err := nm.Notify(context.Background(), testEvent(1), []string{"ok", "bad", "missing"})
	if err == nil {
		t.Fatal("Expected error")
	}
	if !strings.Contains(err.Error(), "boom") || !strings.Contains(err.Error(), "missing not found") {
		t.Errorf("unexpected error %v", err)
	}
	if ok.getNotifyCount() != 2 {
		t.Errorf("Expected 2 notifications, got %d", ok.getNotifyCount())
	}
}

func TestNotificationManager_CloseErrors(t *testing.T) {
	nm := NewNotificationManager()
	nm.RegisterNotifier(&mockNotifier{id: "x", closeFunc: func() error { return errors.New("stuck") }})
	err := nm.Close()
	if err == nil || !strings.Contains(err.Error(), "stuck") {
		t.Errorf("expected close error, got %v", err)
	}
	if len(nm.ListNotifiers()) != 0 {
		t.Error("Expected notifiers cleared after Close")
	}
}
