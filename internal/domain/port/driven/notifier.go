package driven

import (
	"context"

	"github.com/ericfisherdev/residentwelcome/internal/domain/model"
)

// Notifier defines the driven port for delivering a resident payload to the
// welcome webhook. A non-2xx answer is a result, not an error; only failures
// to reach the endpoint are returned as errors.
type Notifier interface {
	Notify(ctx context.Context, payload []byte) (model.NotifyResult, error)
}
