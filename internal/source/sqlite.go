package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// SQLiteSource serves line text from a local strings database file, the
// offline counterpart of PGSource.
type SQLiteSource struct {
	db *sql.DB
	sq sq.StatementBuilderType
}

// OpenSQLiteSource opens (or creates) the strings database at dbPath.
func OpenSQLiteSource(dbPath string) (*SQLiteSource, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("make db dir: %w", err)
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA journal_mode = WAL;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma %q: %w", pragma, err)
		}
	}

	s := &SQLiteSource{db: db, sq: sq.StatementBuilder.PlaceholderFormat(sq.Question)}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info().Str("path", dbPath).Msg("Opened SQLite strings database")
	return s, nil
}

// Close closes the underlying database.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

func (s *SQLiteSource) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS lines (
			line_id TEXT NOT NULL,
			language TEXT NOT NULL,
			text TEXT NOT NULL,
			PRIMARY KEY (line_id, language)
		)`,
		`CREATE TABLE IF NOT EXISTS line_substitutions (
			line_id TEXT NOT NULL,
			idx INTEGER NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (line_id, idx)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// RawText looks up one line's text in one language.
func (s *SQLiteSource) RawText(ctx context.Context, lineID, languageCode string) (string, bool, error) {
	q := s.sq.Select("text").From("lines").
		Where(sq.Eq{"line_id": lineID, "language": languageCode})
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build query: %w", err)
	}

	var text string
	err = s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query line %s: %w", lineID, err)
	}
	return text, true, nil
}

// Substitutions returns the line's stored substitution values in index order.
func (s *SQLiteSource) Substitutions(ctx context.Context, lineID string) ([]string, error) {
	q := s.sq.Select("value").From("line_substitutions").
		Where(sq.Eq{"line_id": lineID}).OrderBy("idx")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
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
func (s *SQLiteSource) LineIDs(ctx context.Context) ([]string, error) {
	q := s.sq.Select("DISTINCT line_id").From("lines").OrderBy("line_id")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
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
func (s *SQLiteSource) UpsertLine(ctx context.Context, lineID, languageCode, text string) error {
	q := s.sq.Insert("lines").Columns("line_id", "language", "text").
		Values(lineID, languageCode, text).
		Suffix("ON CONFLICT(line_id, language) DO UPDATE SET text = excluded.text")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("upsert line %s: %w", lineID, err)
	}
	return nil
}

// SetSubstitutions replaces the stored substitution values for a line.
func (s *SQLiteSource) SetSubstitutions(ctx context.Context, lineID string, values []string) error {
	del := s.sq.Delete("line_substitutions").Where(sq.Eq{"line_id": lineID})
	sqlStr, args, err := del.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("clear substitutions %s: %w", lineID, err)
	}
	for i, v := range values {
		ins := s.sq.Insert("line_substitutions").Columns("line_id", "idx", "value").Values(lineID, i, v)
		sqlStr, args, err := ins.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
			return fmt.Errorf("insert substitution %s[%d]: %w", lineID, i, err)
		}
	}
	return nil
}
