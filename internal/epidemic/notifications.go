package epidemic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

// StepEvent is published once per collected time-series row.
type StepEvent struct {
	RunID     string `json:"run_id"`
	Step      int    `json:"step"`
	Timestamp int64  `json:"timestamp"`
	Row       Row    `json:"row"`
}

// NewStepEvent stamps a row with the run id and the wall clock.
func NewStepEvent(runID string, row Row) StepEvent {
	return StepEvent{
		RunID:     runID,
		Step:      row.Step,
		Timestamp: time.Now().Unix(),
		Row:       row,
	}
}

// JSON returns the event as JSON bytes
func (e StepEvent) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// Notifier receives step events.
type Notifier interface {
	ID() string
	// Type names the channel, e.g. "webhook" or "websocket".
	Type() string
	// Notify delivers one event. ctx bounds the delivery.
	Notify(ctx context.Context, event StepEvent) error
	Close() error
}

const (
	eventQueueSize  = 1024
	deliveryTimeout = 30 * time.Second
)

// delivery is one queued event and the notifiers it goes to.
type delivery struct {
	event StepEvent
	to    []string
}

// NotificationManager fans step events out to registered notifiers. Queued
// events are delivered in order by a single worker, so a slow sink delays
// the stream but never the model.
type NotificationManager struct {
	mu        sync.RWMutex
	notifiers map[string]Notifier
	queue     chan delivery
	closed    bool
	done      sync.WaitGroup
	logger    Logger

	maxRetries int
	backoff    time.Duration
}

// NewNotificationManager creates a manager with a no-op logger.
func NewNotificationManager() *NotificationManager {
	return NewNotificationManagerWithLogger(nil)
}

// NewNotificationManagerWithLogger creates a manager that reports delivery
// failures to logger.
func NewNotificationManagerWithLogger(logger Logger) *NotificationManager {
	if logger == nil {
		logger = NewNoOpLogger()
	}
	nm := &NotificationManager{
		notifiers:  make(map[string]Notifier),
		queue:      make(chan delivery, eventQueueSize),
		logger:     logger,
		maxRetries: 3,
		backoff:    100 * time.Millisecond,
	}
	nm.done.Add(1)
	go nm.drain()
	return nm
}

// RegisterNotifier adds n under its ID. IDs must be unique.
func (nm *NotificationManager) RegisterNotifier(n Notifier) error {
	if n == nil {
		return errors.New("notifier cannot be nil")
	}
	id := n.ID()
	if id == "" {
		return errors.New("notifier ID cannot be empty")
	}

	nm.mu.Lock()
	defer nm.mu.Unlock()
	if _, dup := nm.notifiers[id]; dup {
		return fmt.Errorf("notifier with ID %s already exists", id)
	}
	nm.notifiers[id] = n
	return nil
}

// UnregisterNotifier removes the notifier and closes it.
func (nm *NotificationManager) UnregisterNotifier(id string) error {
	nm.mu.Lock()
	n, ok := nm.notifiers[id]
	delete(nm.notifiers, id)
	nm.mu.Unlock()

	if !ok {
		return fmt.Errorf("notifier with ID %s not found", id)
	}
	if err := n.Close(); err != nil {
		return fmt.Errorf("closing notifier %s: %w", id, err)
	}
	return nil
}

func (nm *NotificationManager) GetNotifier(id string) (Notifier, bool) {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	n, ok := nm.notifiers[id]
	return n, ok
}

// ListNotifiers returns the registered IDs in sorted order.
func (nm *NotificationManager) ListNotifiers() []string {
	nm.mu.RLock()
	ids := make([]string, 0, len(nm.notifiers))
	for id := range nm.notifiers {
		ids = append(ids, id)
	}
	nm.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// Enqueue hands event to the worker for the notifiers in to. It never
// blocks: a full queue drops the event with a warning, and a closed manager
// ignores it.
func (nm *NotificationManager) Enqueue(event StepEvent, to []string) {
	if len(to) == 0 {
		return
	}
	// the read lock keeps Close from closing the queue under the send
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	if nm.closed {
		return
	}
	select {
	case nm.queue <- delivery{event: event, to: to}:
	default:
		nm.logger.Warnf("notification queue full, dropping step event: run_id=%s step=%d", event.RunID, event.Step)
	}
}

func (nm *NotificationManager) drain() {
	defer nm.done.Done()
	for d := range nm.queue {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		for _, id := range d.to {
			nm.deliverWithRetry(ctx, id, d.event)
		}
		cancel()
	}
}

// deliverWithRetry retries a failing notifier with exponential backoff and
// logs the final failure. Unknown IDs are logged once.
func (nm *NotificationManager) deliverWithRetry(ctx context.Context, id string, event StepEvent) {
	n, ok := nm.GetNotifier(id)
	if !ok {
		nm.logger.Errorf("notification failed: notifier=%s error=notifier not found", id)
		return
	}

	wait := nm.backoff
	for attempt := 1; ; attempt++ {
		err := n.Notify(ctx, event)
		if err == nil {
			return
		}
		nm.logger.Warnf("notification failed: notifier=%s step=%d attempt=%d error=%v", id, event.Step, attempt, err)
		if attempt > nm.maxRetries {
			nm.logger.Errorf("notification dropped after %d attempts: notifier=%s step=%d", attempt, id, event.Step)
			return
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		wait *= 2
	}
}

// Notify delivers event synchronously, once per notifier, and joins every
// failure into the returned error.
func (nm *NotificationManager) Notify(ctx context.Context, event StepEvent, to []string) error {
	var errs []error
	for _, id := range to {
		n, ok := nm.GetNotifier(id)
		if !ok {
			errs = append(errs, fmt.Errorf("notifier %s not found", id))
			continue
		}
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("notifier %s failed: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// Close delivers what is still queued, then closes and forgets every
// notifier. Later calls are no-ops.
func (nm *NotificationManager) Close() error {
	nm.mu.Lock()
	if nm.closed {
		nm.mu.Unlock()
		return nil
	}
	nm.closed = true
	close(nm.queue)
	nm.mu.Unlock()

	nm.done.Wait()

	nm.mu.Lock()
	notifiers := nm.notifiers
	nm.notifiers = make(map[string]Notifier)
	nm.mu.Unlock()

	var errs []error
	for id, n := range notifiers {
		if err := n.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing notifier %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}
