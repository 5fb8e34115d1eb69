// Package store persists translation pairs in PostgreSQL. Calls run through
// a circuit breaker so an unhealthy database fails fast.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation"
	apperrors "github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/resilience"
)

const schema = `CREATE TABLE IF NOT EXISTS phonetics_pairs (
    id           BIGSERIAL PRIMARY KEY,
    input        TEXT NOT NULL,
    output       TEXT NOT NULL,
    in_notation  VARCHAR(16) NOT NULL,
    out_notation VARCHAR(16) NOT NULL,
    warning      BOOLEAN NOT NULL DEFAULT FALSE,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const schemaIndex = `CREATE INDEX IF NOT EXISTS phonetics_pairs_created_at_idx
    ON phonetics_pairs (created_at DESC)`

// DB is the subset of pkg/postgres.Client the store needs.
type DB interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// SchemaApplier is implemented by pkg/postgres.Client.
type SchemaApplier interface {
	EnsureSchema(ctx context.Context, statements ...string) error
}

// Store reads and writes phonetics_pairs rows.
type Store struct {
	db      DB
	breaker *resilience.CircuitBreaker
	logger  *slog.Logger
}

// New creates a Store over db guarded by breaker.
func New(db DB, breaker *resilience.CircuitBreaker) *Store {
	return &Store{
		db:      db,
		breaker: breaker,
		logger:  slog.Default().With("component", "pair-store"),
	}
}

// Migrate creates the pairs table if it does not exist.
func Migrate(ctx context.Context, db SchemaApplier) error {
	if err := db.EnsureSchema(ctx, schema, schemaIndex); err != nil {
		return fmt.Errorf("migrating phonetics_pairs: %w", err)
	}
	return nil
}

// Save inserts pair and returns it with ID and CreatedAt filled in.
func (s *Store) Save(ctx context.Context, pair translation.Pair) (translation.Pair, error) {
	err := s.execute(func() error {
		return s.db.QueryRowContext(ctx,
			`INSERT INTO phonetics_pairs (input, output, in_notation, out_notation, warning)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at`,
			pair.Input, pair.Output, pair.InNotation, pair.OutNotation, pair.Warning,
		).Scan(&pair.ID, &pair.CreatedAt)
	})
	if err != nil {
		return translation.Pair{}, fmt.Errorf("saving pair: %w", err)
	}
	s.logger.Debug("pair saved", "id", pair.ID)
	return pair, nil
}

// Get returns the pair with the given ID.
func (s *Store) Get(ctx context.Context, id int64) (translation.Pair, error) {
	var pair translation.Pair
	var notFound bool
	err := s.execute(func() error {
		err := s.db.QueryRowContext(ctx,
			`SELECT id, input, output, in_notation, out_notation, warning, created_at
			FROM phonetics_pairs WHERE id = $1`, id,
		).Scan(&pair.ID, &pair.Input, &pair.Output, &pair.InNotation, &pair.OutNotation, &pair.Warning, &pair.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			notFound = true
			return nil
		}
		return err
	})
	if err != nil {
		return translation.Pair{}, fmt.Errorf("loading pair %d: %w", id, err)
	}
	if notFound {
		return translation.Pair{}, apperrors.Newf(apperrors.ErrPairNotFound, http.StatusNotFound, "pair %d not found", id)
	}
	return pair, nil
}

// List returns up to limit pairs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]translation.Pair, error) {
	var pairs []translation.Pair
	err := s.execute(func() error {
		rows, err := s.db.QueryContext(ctx,
			`SELECT id, input, output, in_notation, out_notation, warning, created_at
			FROM phonetics_pairs ORDER BY created_at DESC, id DESC LIMIT $1`, limit,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		pairs = pairs[:0]
		for rows.Next() {
			var p translation.Pair
			if err := rows.Scan(&p.ID, &p.Input, &p.Output, &p.InNotation, &p.OutNotation, &p.Warning, &p.CreatedAt); err != nil {
				return fmt.Errorf("scanning pair row: %w", err)
			}
			pairs = append(pairs, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("listing pairs: %w", err)
	}
	return pairs, nil
}

// execute runs fn through the breaker and maps an open circuit to
// ErrUnavailable.
func (s *Store) execute(fn func() error) error {
	err := s.breaker.Execute(fn)
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return apperrors.New(apperrors.ErrUnavailable, http.StatusServiceUnavailable, err.Error())
	}
	return err
}
