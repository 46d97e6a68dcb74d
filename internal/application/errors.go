package application

import (
	"errors"
	"fmt"
)

// ErrNoRowsReturned is wrapped in an InsertError when the store accepted the
// insert but returned an empty row set, leaving nothing to forward.
var ErrNoRowsReturned = errors.New("insert returned no rows")

// InsertError reports that the resident could not be stored. The webhook is
// never called after an InsertError.
type InsertError struct {
	Err error
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("insert resident: %v", e.Err)
}

func (e *InsertError) Unwrap() error { return e.Err }

// NotifyError reports that the webhook endpoint could not be reached. The
// resident row has already been committed when this is returned.
type NotifyError struct {
	ResidentID string
	Err        error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("notify webhook for resident %s: %v", e.ResidentID, e.Err)
}

func (e *NotifyError) Unwrap() error { return e.Err }
