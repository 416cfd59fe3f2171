package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/quotient-crm/approval-engine/internal/application/dispatcher"
	"github.com/quotient-crm/approval-engine/internal/domain/event"
)

// WebhookNotifier POSTs workflow events as JSON to a configured URL.
// Retries and durable delivery are the receiver's problem; the notifier
// reports failures to its logger and moves on.
type WebhookNotifier struct {
	url    string
	client *http.Client
	logger dispatcher.Logger
}

// NewWebhookNotifier creates a webhook notifier
func NewWebhookNotifier(url string, timeout time.Duration, logger dispatcher.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Handle implements dispatcher.Handler
func (w *WebhookNotifier) Handle(ctx context.Context, evt *event.Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", evt.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post event %s to webhook: %w", evt.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d for event %s", resp.StatusCode, evt.ID)
	}

	w.logger.Info("Event delivered to webhook",
		"event_id", evt.ID,
		"event_type", evt.Type,
	)
	return nil
}

// Register subscribes the notifier to every workflow event type
func (w *WebhookNotifier) Register(d dispatcher.Dispatcher) {
	for _, t := range []event.Type{
		event.TypeRequested,
		event.TypeApproved,
		event.TypeRejected,
		event.TypeEscalated,
	} {
		d.SubscribeNamed(t, "webhook-notifier", w.Handle)
	}
}
