// Package corpus persists raw records in PostgreSQL and streams them back
// out as a record source for index builds.
package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/arjun-mahar/recordsearch/internal/indexer"
	apperrors "github.com/arjun-mahar/recordsearch/pkg/errors"
	"github.com/arjun-mahar/recordsearch/pkg/postgres"
)

// Store reads and writes the records table.
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

// NewStore creates a Store on the given Postgres client.
func NewStore(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "corpus-store"),
	}
}

// Save inserts a record. External ids are unique; a duplicate returns
// ErrRecordExists without modifying the stored record.
func (s *Store) Save(ctx context.Context, rec indexer.Record) error {
	res, err := s.db.DB.ExecContext(ctx,
		`INSERT INTO records (external_id, author, body)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (external_id) DO NOTHING`,
		rec.ExternalID, rec.Author, rec.Text,
	)
	if err != nil {
		return fmt.Errorf("inserting record %s: %w", rec.ExternalID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking insert result: %w", err)
	}
	if rows == 0 {
		return apperrors.Newf(apperrors.ErrRecordExists, 409, "record %s already stored", rec.ExternalID)
	}
	s.logger.Debug("record stored", "external_id", rec.ExternalID)
	return nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// Source streams all records in insertion order, so internal document ids
// assigned during a build stay positional across rebuilds.
func (s *Store) Source(ctx context.Context) (indexer.RecordSource, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT external_id, author, body FROM records ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	return &rowsSource{rows: rows}, nil
}

// rowsSource adapts sql.Rows to indexer.RecordSource.
type rowsSource struct {
	rows *sql.Rows
}

// Next implements indexer.RecordSource. The rows are closed on EOF or
// error.
func (r *rowsSource) Next(ctx context.Context) (indexer.Record, error) {
	if err := ctx.Err(); err != nil {
		r.rows.Close()
		return indexer.Record{}, err
	}
	if !r.rows.Next() {
		defer r.rows.Close()
		if err := r.rows.Err(); err != nil {
			return indexer.Record{}, err
		}
		return indexer.Record{}, io.EOF
	}
	var rec indexer.Record
	var author, body sql.NullString
	if err := r.rows.Scan(&rec.ExternalID, &author, &body); err != nil {
		r.rows.Close()
		return indexer.Record{}, fmt.Errorf("scanning record row: %w", err)
	}
	rec.Author = author.String
	rec.Text = body.String
	return rec, nil
}
