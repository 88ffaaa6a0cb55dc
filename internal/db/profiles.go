package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
	CREATE TABLE IF NOT EXISTS mood_profiles (
		position    INTEGER PRIMARY KEY,
		label       TEXT NOT NULL,
		triggers    TEXT NOT NULL DEFAULT '',
		conditions  TEXT NOT NULL DEFAULT '',
		pattern     TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		quotes      TEXT NOT NULL DEFAULT '',
		import_id   UUID NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// ProfileRepository handles mood profile row storage.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// EnsureSchema creates the mood_profiles table if it does not exist.
func (r *ProfileRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating mood_profiles table: %w", err)
	}
	return nil
}

// List retrieves every stored row ordered by position.
func (r *ProfileRepository) List(ctx context.Context) ([]ProfileRow, error) {
	query := `
		SELECT position, label, triggers, conditions, pattern, description, quotes, import_id, updated_at
		FROM mood_profiles
		ORDER BY position
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying mood profiles: %w", err)
	}
	defer rows.Close()

	var result []ProfileRow
	for rows.Next() {
		var p ProfileRow
		if err := rows.Scan(
			&p.Position,
			&p.Label,
			&p.Triggers,
			&p.Conditions,
			&p.Pattern,
			&p.Description,
			&p.Quotes,
			&p.ImportID,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning mood profile: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// Rows returns the stored rows as raw tabular fields in position order.
// It implements catalog.RowSource.
func (r *ProfileRepository) Rows(ctx context.Context) ([][]string, error) {
	stored, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, len(stored))
	for i, p := range stored {
		rows[i] = p.Fields()
	}
	return rows, nil
}

// Get retrieves the first row whose label matches, ignoring case.
func (r *ProfileRepository) Get(ctx context.Context, label string) (*ProfileRow, error) {
	query := `
		SELECT position, label, triggers, conditions, pattern, description, quotes, import_id, updated_at
		FROM mood_profiles
		WHERE lower(label) = $1
		ORDER BY position
		LIMIT 1
	`
	var p ProfileRow
	err := r.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(label))).Scan(
		&p.Position,
		&p.Label,
		&p.Triggers,
		&p.Conditions,
		&p.Pattern,
		&p.Description,
		&p.Quotes,
		&p.ImportID,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying mood profile: %w", err)
	}
	return &p, nil
}

// ReplaceAll swaps the stored catalog for rows in a single transaction.
// Every row must have the full field count; nothing is written otherwise.
// Returns the import ID stamped on the new rows.
func (r *ProfileRepository) ReplaceAll(ctx context.Context, rows [][]string) (uuid.UUID, error) {
	records := make([]ProfileRow, len(rows))
	for i, fields := range rows {
		rec, err := RowFromFields(i, fields)
		if err != nil {
			return uuid.Nil, err
		}
		records[i] = rec
	}

	importID := uuid.New()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM mood_profiles`); err != nil {
		return uuid.Nil, fmt.Errorf("clearing mood profiles: %w", err)
	}

	if len(records) > 0 {
		insertQuery := `
			INSERT INTO mood_profiles (position, label, triggers, conditions, pattern, description, quotes, import_id)
			SELECT p, l, t, c, pt, d, q, $8
			FROM unnest($1::int[], $2::text[], $3::text[], $4::text[], $5::text[], $6::text[], $7::text[])
				AS r(p, l, t, c, pt, d, q)
		`
		cols := columnsOf(records)
		_, err = tx.Exec(ctx, insertQuery,
			cols.positions,
			cols.labels,
			cols.triggers,
			cols.conditions,
			cols.patterns,
			cols.descriptions,
			cols.quotes,
			importID,
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("inserting mood profiles: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("committing transaction: %w", err)
	}
	return importID, nil
}

// profileColumns holds rows split into parallel arrays for unnest.
type profileColumns struct {
	positions    []int32
	labels       []string
	triggers     []string
	conditions   []string
	patterns     []string
	descriptions []string
	quotes       []string
}

func columnsOf(records []ProfileRow) profileColumns {
	n := len(records)
	cols := profileColumns{
		positions:    make([]int32, n),
		labels:       make([]string, n),
		triggers:     make([]string, n),
		conditions:   make([]string, n),
		patterns:     make([]string, n),
		descriptions: make([]string, n),
		quotes:       make([]string, n),
	}
	for i, r := range records {
		cols.positions[i] = int32(r.Position)
		cols.labels[i] = r.Label
		cols.triggers[i] = r.Triggers
		cols.conditions[i] = r.Conditions
		cols.patterns[i] = r.Pattern
		cols.descriptions[i] = r.Description
		cols.quotes[i] = r.Quotes
	}
	return cols
}
