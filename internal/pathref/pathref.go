package pathref

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Placeholder is the project-root token used in stored paths for targets
// that allow absolute references outside the project tree.
const Placeholder = "<PROJECT_ROOT>"

var (
	// ErrOutsideProject is returned by ToStored when the resolver requires
	// root-relative paths and the reference lies outside the project root.
	ErrOutsideProject = errors.New("path is outside the project root")

	// ErrReferenceNotFound is returned by ToReference when a stored path no
	// longer resolves to an existing file or folder. Callers must treat this
	// as "entry present but broken", not as an entry to drop.
	ErrReferenceNotFound = errors.New("stored path does not resolve to an existing reference")
)

// Mode selects which stored-path forms the target environment supports.
type Mode int

const (
	// RelativeOnly stores root-relative paths and rejects references outside
	// the project root.
	RelativeOnly Mode = iota
	// AllowPlaceholder stores root-relative paths inside the project and
	// placeholder-prefixed paths for references outside it, so no reference
	// is unresolvable.
	AllowPlaceholder
)

// Resolver converts file and folder references to portable stored paths and
// back. Stored paths are stable across machines as long as the reference
// stays inside the project tree.
type Resolver struct {
	mode Mode
}

// NewResolver creates a Resolver for the given mode.
func NewResolver(mode Mode) *Resolver {
	return &Resolver{mode: mode}
}

// ToStored converts an absolute reference path into its stored form relative
// to projectRoot. References inside the project become forward-slash relative
// paths; in AllowPlaceholder mode, references outside it keep their absolute
// form behind the placeholder token.
func (r *Resolver) ToStored(reference, projectRoot string) (string, error) {
	if reference == "" {
		return "", nil
	}

	absRef, err := filepath.Abs(reference)
	if err != nil {
		return "", fmt.Errorf("resolve reference path: %w", err)
	}
	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return "", fmt.Errorf("resolve project root: %w", err)
	}

	rel, err := filepath.Rel(absRoot, absRef)
	if err == nil && !strings.HasPrefix(rel, "..") && rel != ".." {
		if rel == "." {
			rel = ""
		}
		return filepath.ToSlash(rel), nil
	}

	if r.mode == RelativeOnly {
		return "", fmt.Errorf("%w: %s", ErrOutsideProject, absRef)
	}
	return Placeholder + "/" + filepath.ToSlash(absRef), nil
}

// ToReference converts a stored path back to an absolute filesystem path,
// verifying that the target still exists.
func (r *Resolver) ToReference(stored, projectRoot string) (string, error) {
	if stored == "" {
		return "", nil
	}

	var abs string
	if rest, ok := strings.CutPrefix(stored, Placeholder+"/"); ok {
		abs = filepath.FromSlash(rest)
	} else {
		absRoot, err := filepath.Abs(projectRoot)
		if err != nil {
			return "", fmt.Errorf("resolve project root: %w", err)
		}
		abs = filepath.Join(absRoot, filepath.FromSlash(stored))
	}

	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("%w: %s", ErrReferenceNotFound, stored)
	}
	return abs, nil
}

// IsPlaceholder reports whether a stored path uses the project-root
// placeholder form. Consumers must accept both forms when reading.
func IsPlaceholder(stored string) bool {
	return strings.HasPrefix(stored, Placeholder+"/")
}
