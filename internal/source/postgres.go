package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// PGSource serves line text from a shared PostgreSQL strings database,
// used when a team keeps its translations in one place instead of
// per-language CSV files.
type PGSource struct {
	pool *pgxpool.Pool
}

// NewPGSource connects to the database at databaseURL and ensures the
// schema exists.
func NewPGSource(ctx context.Context, databaseURL string) (*PGSource, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}

	s := &PGSource{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info().Msg("Connected to PostgreSQL strings database")
	return s, nil
}

// Close releases the connection pool.
func (s *PGSource) Close() {
	s.pool.Close()
}

func (s *PGSource) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS lines (
			line_id TEXT NOT NULL,
			language TEXT NOT NULL,
			text TEXT NOT NULL,
			PRIMARY KEY (line_id, language)
		)`,
		`CREATE TABLE IF NOT EXISTS line_substitutions (
			line_id TEXT NOT NULL,
			idx INT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (line_id, idx)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// RawText looks up one line's text in one language.
func (s *PGSource) RawText(ctx context.Context, lineID, languageCode string) (string, bool, error) {
	var text string
	err := s.pool.QueryRow(ctx,
		`SELECT text FROM lines WHERE line_id = $1 AND language = $2`,
		lineID, languageCode).Scan(&text)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query line %s: %w", lineID, err)
	}
	return text, true, nil
}

// Substitutions returns the line's stored substitution values in index order.
func (s *PGSource) Substitutions(ctx context.Context, lineID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT value FROM line_substitutions WHERE line_id = $1 ORDER BY idx`, lineID)
	if err != nil {
		return nil, fmt.Errorf("query substitutions %s: %w", lineID, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan substitution: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// LineIDs lists every distinct line ID in the database.
func (s *PGSource) LineIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT line_id FROM lines ORDER BY line_id`)
	if err != nil {
		return nil, fmt.Errorf("query line ids: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan line id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// UpsertLine inserts or replaces one line's text for a language.
func (s *PGSource) UpsertLine(ctx context.Context, lineID, languageCode, text string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO lines (line_id, language, text) VALUES ($1, $2, $3)
		 ON CONFLICT (line_id, language) DO UPDATE SET text = EXCLUDED.text`,
		lineID, languageCode, text)
	if err != nil {
		return fmt.Errorf("upsert line %s: %w", lineID, err)
	}
	return nil
}
