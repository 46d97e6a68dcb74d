package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// NewResident holds the caller-supplied fields of a resident record before the
// store assigns an identifier and insertion timestamp.
type NewResident struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Address  string `json:"address"`
}

// IsEmpty reports whether no field has been set.
func (r NewResident) IsEmpty() bool {
	return r.FullName == "" && r.Email == "" && r.Address == ""
}

// Resident is a row of the new_residents table as returned by the store.
// ID is kept as a string because hosted tables may use bigint or uuid keys.
type Resident struct {
	ID        string
	FullName  string
	Email     string
	Address   string
	CreatedAt time.Time
}

// InsertedResident pairs a decoded row with the exact JSON object the store
// returned for it. Raw is what gets forwarded to the webhook.
type InsertedResident struct {
	Resident
	Raw json.RawMessage
}

// residentJSON is the wire shape shared by every store backend.
type residentJSON struct {
	ID        json.RawMessage `json:"id"`
	FullName  string          `json:"full_name"`
	Email     string          `json:"email"`
	Address   string          `json:"address"`
	CreatedAt *string         `json:"created_at"`
}

// MarshalJSON renders the row using the table's column names. Integral IDs are
// emitted as JSON numbers, anything else as a string.
func (r Resident) MarshalJSON() ([]byte, error) {
	var id json.RawMessage
	switch {
	case r.ID == "":
		id = json.RawMessage("null")
	case isJSONInteger(r.ID):
		id = json.RawMessage(r.ID)
	default:
		quoted, err := json.Marshal(r.ID)
		if err != nil {
			return nil, err
		}
		id = quoted
	}

	var createdAt *string
	if !r.CreatedAt.IsZero() {
		s := r.CreatedAt.UTC().Format(time.RFC3339Nano)
		createdAt = &s
	}

	return json.Marshal(residentJSON{
		ID:        id,
		FullName:  r.FullName,
		Email:     r.Email,
		Address:   r.Address,
		CreatedAt: createdAt,
	})
}

// UnmarshalJSON accepts a numeric or string id and any of the timestamp
// renderings produced by Postgres, PostgREST and SQLite. It fails on any
// field DecodeResident could not read.
func (r *Resident) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeResident(data)
	if err != nil {
		return err
	}
	*r = decoded
	return nil
}

// DecodeResident reads a stored row field by field. Fields that are missing
// or fail to decode are left zero and reported together in the returned
// error, so callers holding the raw row can still use what was readable.
func DecodeResident(data []byte) (Resident, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Resident{}, fmt.Errorf("decode resident: %w", err)
	}

	var (
		r    Resident
		errs []error
	)

	id, err := decodeID(fields["id"])
	if err != nil {
		errs = append(errs, fmt.Errorf("decode id: %w", err))
	}
	r.ID = id

	for name, dst := range map[string]*string{
		"full_name": &r.FullName,
		"email":     &r.Email,
		"address":   &r.Address,
	} {
		if err := decodeText(fields[name], dst); err != nil {
			errs = append(errs, fmt.Errorf("decode %s: %w", name, err))
		}
	}

	var createdAt string
	if err := decodeText(fields["created_at"], &createdAt); err != nil {
		errs = append(errs, fmt.Errorf("decode created_at: %w", err))
	} else if createdAt != "" {
		if r.CreatedAt, err = ParseTimestamp(createdAt); err != nil {
			errs = append(errs, fmt.Errorf("decode created_at: %w", err))
		}
	}

	return r, errors.Join(errs...)
}

// decodeText reads a JSON string into dst. Absent and null values leave dst empty.
func decodeText(raw json.RawMessage, dst *string) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// isJSONInteger reports whether s is a valid JSON integer literal: an
// optional minus sign followed by digits without a leading zero.
func isJSONInteger(s string) bool {
	digits := strings.TrimPrefix(s, "-")
	if digits == "" || (len(digits) > 1 && digits[0] == '0') {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
	}
	return true
}

// ParseTimestamp tries the datetime formats emitted by Postgres text output,
// PostgREST JSON and SQLite. Values without a zone are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02 15:04:05-07",
		"2006-01-02T15:04:05-07",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
