package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"invoicing-cloud/internal/observability/metrics"
)

const defaultWebhookTimeout = 10 * time.Second

// WebhookNotifier posts status events as JSON.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier constructs a notifier. A zero timeout uses 10s.
func NewWebhookNotifier(url string, timeout time.Duration) (*WebhookNotifier, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("webhook notifier: empty url")
	}
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}, nil
}

// Notify sends the event.
func (n *WebhookNotifier) Notify(ctx context.Context, event StatusEvent) (err error) {
	if n == nil || n.url == "" {
		return errors.New("webhook notifier: empty url")
	}
	defer func() {
		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultError
		}
		metrics.IncWebhookDelivery(result)
	}()
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Invoicing-Event", event.Event)
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook notifier: http %d", resp.StatusCode)
	}
	return nil
}
