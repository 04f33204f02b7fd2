package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"locline/internal/pathref"
	"locline/internal/project"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
)

// record is one loaded strings-table row.
type record struct {
	text          string
	substitutions []string
}

// TableSource serves line text from in-memory strings tables, one per
// language, loaded from CSV files. Lookup falls back across language tags
// (fr-CA falls back to fr) using the standard matcher.
type TableSource struct {
	baseLanguage string
	tables       map[string]map[string]record
	tags         []language.Tag
	tagCodes     []string
	matcher      language.Matcher
}

// NewTableSource creates an empty source whose base language is
// baseLanguage.
func NewTableSource(baseLanguage string) *TableSource {
	return &TableSource{
		baseLanguage: baseLanguage,
		tables:       make(map[string]map[string]record),
	}
}

// LoadTable parses one CSV strings table and registers it under
// languageCode. Expected columns: id, text, and optionally substitutions
// (pipe-separated). A repeated load for the same language replaces the table.
func (s *TableSource) LoadTable(languageCode string, r io.Reader) error {
	table, err := parseStringsTable(r)
	if err != nil {
		return fmt.Errorf("strings table %s: %w", languageCode, err)
	}
	s.tables[languageCode] = table
	s.rebuildMatcher()

	log.Info().Str("language", languageCode).Int("lines", len(table)).Msg("Strings table loaded")
	return nil
}

// LoadTableFile loads a strings table from a CSV file on disk.
func (s *TableSource) LoadTableFile(languageCode, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open strings table: %w", err)
	}
	defer f.Close()
	return s.LoadTable(languageCode, bufio.NewReader(f))
}

// LoadProject loads the strings table of every localization in the project
// record. A broken stored path marks that language as present but unloadable
// and is reported in the returned map rather than aborting the load.
func (s *TableSource) LoadProject(data project.Data, projectRoot string, resolver *pathref.Resolver) map[string]error {
	broken := make(map[string]error)
	for lang, info := range data.Localizations {
		if lang == data.BaseLanguage || info.StringsPath == "" {
			continue
		}
		path, err := resolver.ToReference(info.StringsPath, projectRoot)
		if err != nil {
			log.Warn().Err(err).Str("language", lang).Msg("Strings table path is broken")
			broken[lang] = err
			continue
		}
		if err := s.LoadTableFile(lang, path); err != nil {
			log.Warn().Err(err).Str("language", lang).Msg("Strings table failed to load")
			broken[lang] = err
		}
	}
	return broken
}

// RawText looks up a line in the best-matching table for languageCode.
func (s *TableSource) RawText(_ context.Context, lineID, languageCode string) (string, bool, error) {
	table, ok := s.table(languageCode)
	if !ok {
		return "", false, nil
	}
	rec, ok := table[lineID]
	if !ok {
		return "", false, nil
	}
	return rec.text, true, nil
}

// Substitutions returns the stored substitution values from the base table.
func (s *TableSource) Substitutions(_ context.Context, lineID string) ([]string, error) {
	if table, ok := s.tables[s.baseLanguage]; ok {
		if rec, ok := table[lineID]; ok {
			return rec.substitutions, nil
		}
	}
	return nil, nil
}

// LineIDs lists the IDs of the base-language table, sorted for stable output.
func (s *TableSource) LineIDs(_ context.Context) ([]string, error) {
	table, ok := s.tables[s.baseLanguage]
	if !ok {
		return nil, nil
	}
	ids := make([]string, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// table picks the loaded table best matching languageCode: exact code first,
// then tag matching so regional variants fall back to their parent.
func (s *TableSource) table(languageCode string) (map[string]record, bool) {
	if t, ok := s.tables[languageCode]; ok {
		return t, true
	}
	if s.matcher == nil {
		return nil, false
	}
	want, err := language.Parse(languageCode)
	if err != nil {
		return nil, false
	}
	_, idx, conf := s.matcher.Match(want)
	if conf == language.No || idx >= len(s.tagCodes) {
		return nil, false
	}
	t, ok := s.tables[s.tagCodes[idx]]
	return t, ok
}

func (s *TableSource) rebuildMatcher() {
	s.tags = s.tags[:0]
	s.tagCodes = s.tagCodes[:0]
	codes := make([]string, 0, len(s.tables))
	for code := range s.tables {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		tag, err := language.Parse(code)
		if err != nil {
			continue
		}
		s.tags = append(s.tags, tag)
		s.tagCodes = append(s.tagCodes, code)
	}
	if len(s.tags) > 0 {
		s.matcher = language.NewMatcher(s.tags)
	} else {
		s.matcher = nil
	}
}

func parseStringsTable(r io.Reader) (map[string]record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = stripBOM(header[0])
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	idIdx, ok := idx["id"]
	if !ok {
		return nil, errors.New("missing 'id' column")
	}
	textIdx, ok := idx["text"]
	if !ok {
		return nil, errors.New("missing 'text' column")
	}
	subsIdx := -1
	if i, ok := idx["substitutions"]; ok {
		subsIdx = i
	}

	table := make(map[string]record)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		id := strings.TrimSpace(rec[idIdx])
		if id == "" {
			continue
		}
		row := record{text: rec[textIdx]}
		if subsIdx >= 0 && subsIdx < len(rec) && rec[subsIdx] != "" {
			row.substitutions = strings.Split(rec[subsIdx], "|")
		}
		table[id] = row
	}
	return table, nil
}

func stripBOM(s string) string {
	return string(bytes.TrimPrefix([]byte(s), []byte{0xEF, 0xBB, 0xBF}))
}
