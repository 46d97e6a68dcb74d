package application

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ericfisherdev/residentwelcome/internal/domain/model"
	"github.com/ericfisherdev/residentwelcome/internal/domain/port/driven"
)

// Outcome describes a completed insert-and-notify run. Notify is the zero
// value when the webhook could not be reached.
type Outcome struct {
	RunID    string
	Resident model.InsertedResident
	Notify   model.NotifyResult
}

// WelcomeService stores a new resident and forwards the stored row to the
// welcome webhook. It depends only on port interfaces.
type WelcomeService struct {
	store    driven.ResidentStore
	notifier driven.Notifier
	logger   *slog.Logger
	newRunID func() string
}

// NewWelcomeService creates a new WelcomeService with the required dependencies.
func NewWelcomeService(store driven.ResidentStore, notifier driven.Notifier, logger *slog.Logger) *WelcomeService {
	return &WelcomeService{
		store:    store,
		notifier: notifier,
		logger:   logger,
		newRunID: uuid.NewString,
	}
}

// InsertAndNotify inserts resident as a single-record batch, takes the first
// returned row, and POSTs that row's JSON unchanged to the webhook.
//
// An insert failure returns *InsertError and the webhook is not called. A
// failure to reach the webhook returns *NotifyError alongside the Outcome for
// the row that was stored. Any HTTP status from the webhook, including 4xx and
// 5xx, is logged and treated as success.
func (s *WelcomeService) InsertAndNotify(ctx context.Context, resident model.NewResident) (*Outcome, error) {
	runID := s.newRunID()
	log := s.logger.With("run_id", runID)

	rows, err := s.store.Insert(ctx, resident)
	if err != nil {
		log.Error("insert failed", "email", resident.Email, "error", err)
		return nil, &InsertError{Err: err}
	}
	if len(rows) == 0 {
		log.Error("insert failed", "email", resident.Email, "error", ErrNoRowsReturned)
		return nil, &InsertError{Err: ErrNoRowsReturned}
	}

	inserted := rows[0]
	log.Info("resident inserted",
		"id", inserted.ID,
		"email", inserted.Email,
		"created_at", inserted.CreatedAt,
	)

	outcome := &Outcome{RunID: runID, Resident: inserted}

	result, err := s.notifier.Notify(ctx, inserted.Raw)
	if err != nil {
		log.Error("webhook notify failed", "id", inserted.ID, "error", err)
		return outcome, &NotifyError{ResidentID: inserted.ID, Err: err}
	}
	outcome.Notify = result

	if !result.OK() {
		log.Warn("webhook returned non-success status", "status", result.StatusCode, "body", result.Body)
	}
	log.Info("webhook response", "status", result.StatusCode, "body", result.Body)

	return outcome, nil
}
