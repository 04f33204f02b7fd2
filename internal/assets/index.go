package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// SupportedExtensions lists asset file types indexed per line.
var SupportedExtensions = map[string]bool{
	".wav": true,
	".ogg": true,
	".mp3": true,
	".png": true,
	".jpg": true,
}

// Index maps line IDs to per-line localized asset files found in a
// language's assets folder. Files are matched by base name: the asset for
// line "ch1_greeting" is any supported file named "ch1_greeting.*".
type Index struct {
	byID map[string]string
}

// BuildIndex walks the assets folder rooted at dir and indexes every
// supported file by its base name. Duplicate base names keep the first
// file found and log the rest.
func BuildIndex(dir string) (*Index, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve assets folder: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat assets folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("assets path is not a folder: %s", abs)
	}

	idx := &Index{byID: make(map[string]string)}
	err = filepath.Walk(abs, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking assets folder")
			return nil
		}
		if info.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !SupportedExtensions[ext] {
			return nil
		}
		id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if prev, dup := idx.byID[id]; dup {
			log.Warn().Str("id", id).Str("kept", prev).Str("ignored", path).Msg("Duplicate asset for line")
			return nil
		}
		idx.byID[id] = path
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk assets folder: %w", err)
	}

	log.Info().Int("assets", len(idx.byID)).Str("folder", abs).Msg("Indexed assets folder")
	return idx, nil
}

// Lookup returns the asset file for a line ID, if one was indexed.
func (i *Index) Lookup(lineID string) (string, bool) {
	path, ok := i.byID[lineID]
	return path, ok
}

// Len returns the number of indexed assets.
func (i *Index) Len() int {
	return len(i.byID)
}
