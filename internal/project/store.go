package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Store reads and writes the project localization record as a JSON file.
// Writes are atomic: the commit either fully replaces the file or leaves
// the previous record authoritative.
type Store struct {
	path string
}

// NewStore creates a Store for the record at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted record. A missing file yields an empty record
// with no base language, which callers treat as a fresh project.
func (s *Store) Load() (Data, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return NewData(""), nil
	}
	if err != nil {
		return Data{}, fmt.Errorf("read project record: %w", err)
	}

	var d Data
	if err := json.Unmarshal(b, &d); err != nil {
		return Data{}, fmt.Errorf("decode project record: %w", err)
	}
	if d.Localizations == nil {
		d.Localizations = make(map[string]Info)
	}
	return d, nil
}

// Save writes the record, replacing the previous file only once the new
// content is fully on disk.
func (s *Store) Save(d Data) error {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode project record: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create record directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write project record: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace project record: %w", err)
	}

	log.Info().
		Str("path", s.path).
		Str("base", d.BaseLanguage).
		Int("languages", len(d.Localizations)).
		Msg("Project record saved")
	return nil
}
