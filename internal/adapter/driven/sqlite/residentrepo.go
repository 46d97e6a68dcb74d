package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ericfisherdev/residentwelcome/internal/domain/model"
	"github.com/ericfisherdev/residentwelcome/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ResidentStore = (*ResidentRepo)(nil)

// ResidentRepo is the SQLite implementation of the ResidentStore port interface.
type ResidentRepo struct {
	db    *DB
	table string
}

// NewResidentRepo creates a new ResidentRepo writing to table.
func NewResidentRepo(db *DB, table string) *ResidentRepo {
	return &ResidentRepo{db: db, table: table}
}

// Insert stores every resident in one transaction and returns the stored rows
// in input order. A duplicate email rolls back the whole batch and returns
// driven.ErrDuplicateResident.
func (r *ResidentRepo) Insert(ctx context.Context, residents ...model.NewResident) ([]model.InsertedResident, error) {
	query := `INSERT INTO ` + quoteIdent(r.table) + ` (full_name, email, address) VALUES (?, ?, ?)
		RETURNING id, full_name, email, address, created_at`

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted := make([]model.InsertedResident, 0, len(residents))
	for _, nr := range residents {
		var (
			res       model.Resident
			id        int64
			createdAt string
		)
		err := tx.QueryRowContext(ctx, query, nr.FullName, nr.Email, nr.Address).
			Scan(&id, &res.FullName, &res.Email, &res.Address, &createdAt)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint") {
				return nil, fmt.Errorf("insert resident %s: %w", nr.Email, driven.ErrDuplicateResident)
			}
			return nil, fmt.Errorf("insert resident %s: %w", nr.Email, err)
		}

		res.ID = strconv.FormatInt(id, 10)
		res.CreatedAt, err = model.ParseTimestamp(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for resident %d: %w", id, err)
		}

		raw, err := json.Marshal(res)
		if err != nil {
			return nil, fmt.Errorf("encode resident %d: %w", id, err)
		}

		inserted = append(inserted, model.InsertedResident{Resident: res, Raw: raw})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit insert: %w", err)
	}

	return inserted, nil
}

// Count returns the number of rows in the resident table.
func (r *ResidentRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+quoteIdent(r.table)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count residents: %w", err)
	}
	return n, nil
}

// quoteIdent wraps name in double quotes, doubling embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
