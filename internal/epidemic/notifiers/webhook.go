package notifiers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/daniacca/epidyn/internal/epidemic"
)

// Headers set on every webhook request besides the custom ones.
const (
	HeaderRunID = "X-Epidyn-Run"
	HeaderStep  = "X-Epidyn-Step"
)

// WebhookNotifier POSTs every step event as JSON to a URL.
type WebhookNotifier struct {
	id      string
	url     string
	client  *http.Client
	headers http.Header
}

// NewWebhookNotifier creates a webhook notifier with a 5s request timeout.
func NewWebhookNotifier(id, url string) *WebhookNotifier {
	return NewWebhookNotifierWithClient(id, url, &http.Client{Timeout: 5 * time.Second})
}

// NewWebhookNotifierWithClient sends requests through client.
func NewWebhookNotifierWithClient(id, url string, client *http.Client) *WebhookNotifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebhookNotifier{id: id, url: url, client: client, headers: make(http.Header)}
}

// SetHeader adds a header sent with every request, replacing any previous
// value for key.
func (wn *WebhookNotifier) SetHeader(key, value string) {
	wn.headers.Set(key, value)
}

func (wn *WebhookNotifier) ID() string   { return wn.id }
func (wn *WebhookNotifier) Type() string { return "webhook" }

// Notify posts the event. Any status outside 2xx is an error carrying the
// start of the response body.
func (wn *WebhookNotifier) Notify(ctx context.Context, event epidemic.StepEvent) error {
	body, err := event.JSON()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wn.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range wn.headers {
		req.Header[key] = values
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderRunID, event.RunID)
	req.Header.Set(HeaderStep, strconv.Itoa(event.Step))

	resp, err := wn.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Close is a no-op for webhooks
func (wn *WebhookNotifier) Close() error {
	return nil
}
