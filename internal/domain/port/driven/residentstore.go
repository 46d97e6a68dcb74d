// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/residentwelcome/internal/domain/model"
)

// Sentinel errors returned by ResidentStore implementations.
var (
	// ErrDuplicateResident indicates the insert violated a unique constraint.
	ErrDuplicateResident = errors.New("resident already exists")
)

// ResidentStore defines the driven port for resident persistence.
// Insert writes every given record and returns the rows as the store
// persisted them, including server-assigned id and created_at. The insert is
// atomic: either all records are stored or an error is returned.
type ResidentStore interface {
	Insert(ctx context.Context, residents ...model.NewResident) ([]model.InsertedResident, error)
}
