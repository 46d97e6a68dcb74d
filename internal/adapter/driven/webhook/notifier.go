// Package webhook implements the Notifier port as a plain JSON POST.
package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ericfisherdev/residentwelcome/internal/domain/model"
	"github.com/ericfisherdev/residentwelcome/internal/domain/port/driven"
)

// maxResponseBody caps how much of the webhook's answer is kept for logging.
const maxResponseBody = 1 << 20

// Compile-time interface satisfaction check.
var _ driven.Notifier = (*Notifier)(nil)

// Notifier POSTs resident payloads to a single webhook URL.
type Notifier struct {
	httpClient *http.Client
	url        string
}

// NewNotifier creates a Notifier whose requests are bounded by timeout.
func NewNotifier(url string, timeout time.Duration) *Notifier {
	return &Notifier{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
	}
}

// NewNotifierWithHTTPClient creates a Notifier with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewNotifierWithHTTPClient(httpClient *http.Client, url string) *Notifier {
	return &Notifier{httpClient: httpClient, url: url}
}

// Notify sends payload unchanged as the request body. The returned result
// carries the response status and body text whatever the status is; an error
// is returned only when no response was received.
func (n *Notifier) Notify(ctx context.Context, payload []byte) (model.NotifyResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return model.NotifyResult{}, fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return model.NotifyResult{}, fmt.Errorf("post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		// The endpoint answered; a truncated body does not change the outcome.
		return model.NotifyResult{StatusCode: resp.StatusCode}, nil
	}

	return model.NotifyResult{
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}, nil
}
