// Package postgres implements the ResidentStore port directly against a
// Postgres database (for example the one behind a Supabase project).
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ericfisherdev/residentwelcome/internal/domain/model"
	"github.com/ericfisherdev/residentwelcome/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ResidentStore = (*ResidentRepo)(nil)

// Open creates a small connection pool for the given URL and verifies it.
// One-shot runs never need more than a couple of connections.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// ResidentRepo is the Postgres implementation of the ResidentStore port interface.
type ResidentRepo struct {
	db    *sql.DB
	query string
}

// NewResidentRepo creates a ResidentRepo writing to table, which may be
// schema-qualified ("public.new_residents").
func NewResidentRepo(db *sql.DB, table string) *ResidentRepo {
	return &ResidentRepo{db: db, query: insertQuery(table)}
}

// Insert stores every resident in one transaction and returns the rows as
// written, using INSERT ... RETURNING.
func (r *ResidentRepo) Insert(ctx context.Context, residents ...model.NewResident) ([]model.InsertedResident, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted := make([]model.InsertedResident, 0, len(residents))
	for _, nr := range residents {
		var res model.Resident
		err := tx.QueryRowContext(ctx, r.query, nr.FullName, nr.Email, nr.Address).
			Scan(&res.ID, &res.FullName, &res.Email, &res.Address, &res.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert resident %s: %w", nr.Email, mapError(err))
		}

		raw, err := json.Marshal(res)
		if err != nil {
			return nil, fmt.Errorf("encode resident %s: %w", res.ID, err)
		}
		inserted = append(inserted, model.InsertedResident{Resident: res, Raw: raw})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit insert: %w", mapError(err))
	}

	return inserted, nil
}

func insertQuery(table string) string {
	return `INSERT INTO ` + sanitizeTable(table) + ` (full_name, email, address)
		VALUES ($1, $2, $3)
		RETURNING id::text, full_name, email, address, created_at`
}

// sanitizeTable quotes each dot-separated part of table.
func sanitizeTable(table string) string {
	return pgx.Identifier(strings.Split(table, ".")).Sanitize()
}

// mapError translates unique violations into the port sentinel while keeping
// the driver error in the chain for logging.
func mapError(err error) error {
	if isUniqueViolation(err) {
		return errors.Join(driven.ErrDuplicateResident, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
