package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"locline/internal/interpolation"
	"locline/internal/line"
	"locline/internal/source"
	"locline/internal/textutil"

	"github.com/rs/zerolog/log"
)

// Exporter writes a language's lines as a strings CSV plus a companion
// metadata CSV with per-line tags. The strings file round-trips through
// external translation tools; the lock column marks which base text each
// row was produced from.
type Exporter struct {
	source source.Source
}

// New creates an Exporter over the given source.
func New(src source.Source) *Exporter {
	return &Exporter{source: src}
}

// WriteStrings writes one row per line ID: id, text, lock.
func (e *Exporter) WriteStrings(ctx context.Context, languageCode string, w io.Writer) (int, error) {
	ids, err := e.source.LineIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list line ids: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "text", "lock"}); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	count := 0
	for _, id := range ids {
		text, ok, err := e.source.RawText(ctx, id, languageCode)
		if err != nil {
			return count, fmt.Errorf("read line %s: %w", id, err)
		}
		if !ok {
			log.Warn().Str("id", id).Str("language", languageCode).Msg("Skipping line with no text")
			continue
		}
		if err := cw.Write([]string{id, text, textutil.Lock(text)}); err != nil {
			return count, fmt.Errorf("write line %s: %w", id, err)
		}
		count++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return count, fmt.Errorf("flush strings csv: %w", err)
	}

	log.Info().Int("lines", count).Str("language", languageCode).Msg("Strings exported")
	return count, nil
}

// WriteMetadata writes the companion file: id, character, tags. Tags mark
// lines needing special handling downstream, currently substitution arity.
func (e *Exporter) WriteMetadata(ctx context.Context, languageCode string, w io.Writer) error {
	ids, err := e.source.LineIDs(ctx)
	if err != nil {
		return fmt.Errorf("list line ids: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "character", "tags"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, id := range ids {
		text, ok, err := e.source.RawText(ctx, id, languageCode)
		if err != nil {
			return fmt.Errorf("read line %s: %w", id, err)
		}
		if !ok {
			continue
		}

		character := ""
		var tags []string
		if l, err := line.New(id, text, nil); err == nil {
			if name, ok := l.CharacterName(); ok {
				character = name
			}
		} else {
			tags = append(tags, "invalid_markup")
		}
		if n := interpolation.MaxIndex(text); n >= 0 {
			tags = append(tags, fmt.Sprintf("substitutions:%d", n+1))
		}

		if err := cw.Write([]string{id, character, strings.Join(tags, "|")}); err != nil {
			return fmt.Errorf("write metadata %s: %w", id, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush metadata csv: %w", err)
	}
	return nil
}
