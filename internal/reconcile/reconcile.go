package reconcile

import (
	"fmt"

	"locline/internal/pathref"
	"locline/internal/project"

	"github.com/rs/zerolog/log"
)

// Request carries one commit of the editing working set against the
// previously persisted record.
type Request struct {
	// WorkingSet is the user-editable collection of localization rows.
	// Order carries no meaning; identity is the language ID.
	WorkingSet []project.Entry
	// NewBaseLanguage is the base language selected at commit time.
	NewBaseLanguage string
	// Previous is the persisted record the working set is reconciled against.
	Previous project.Data
	// Modified holds the language IDs whose fields the user touched since
	// the last commit.
	Modified map[string]struct{}
	// BaseLanguageChanged is true when NewBaseLanguage differs from the base
	// language the edit session started with.
	BaseLanguageChanged bool
	// ProjectRoot anchors path resolution for stored path fields.
	ProjectRoot string
}

// Result is the outcome of a commit.
type Result struct {
	// Data is the reconciled record for the caller to persist.
	Data project.Data
	// NeedsBaseEntry is true when no working-set row matches the new base
	// language; the caller should insert a fresh empty row for it into the
	// editing surface (not into the persisted record).
	NeedsBaseEntry bool
}

// Engine diffs a working set against the persisted record and produces the
// record to commit. It holds no state between commits; a commit runs to
// completion and assumes exclusive access to the record for its duration.
type Engine struct {
	resolver *pathref.Resolver
}

// NewEngine creates an Engine resolving paths with the given resolver.
func NewEngine(resolver *pathref.Resolver) *Engine {
	return &Engine{resolver: resolver}
}

// Commit reconciles the working set with the previous record.
//
// Languages missing from the working set are removed first. A row is then
// materialized into the result only when it was modified, or when it used to
// be the base language and a base-language change demoted it: its strings
// file, previously ignored, must now be written even if the user never
// touched the row. All other rows pass through unchanged. A base-language
// record carrying no data is pruned from the result.
//
// On error nothing has been persisted; the previous record stays
// authoritative.
func (e *Engine) Commit(req Request) (Result, error) {
	if err := project.ValidateWorkingSet(req.WorkingSet); err != nil {
		return Result{}, err
	}

	out := req.Previous.Clone()

	present := make(map[string]struct{}, len(req.WorkingSet))
	for _, entry := range req.WorkingSet {
		present[entry.LanguageID] = struct{}{}
	}

	// Removal runs before forced materialization: a row that simultaneously
	// loses base status and leaves the working set stays removed.
	for lang := range out.Localizations {
		if _, ok := present[lang]; !ok {
			delete(out.Localizations, lang)
			log.Debug().Str("language", lang).Msg("Localization removed")
		}
	}

	for _, entry := range req.WorkingSet {
		_, touched := req.Modified[entry.LanguageID]
		demotedBase := req.BaseLanguageChanged && entry.LanguageID == req.Previous.BaseLanguage
		if !touched && !demotedBase {
			continue
		}

		info, err := e.resolve(entry, req.ProjectRoot)
		if err != nil {
			return Result{}, fmt.Errorf("commit %s: %w", entry.LanguageID, err)
		}
		out.Localizations[entry.LanguageID] = info
	}

	out.BaseLanguage = req.NewBaseLanguage

	// A base-language record with no strings override and no assets carries
	// nothing: the base script text is authoritative.
	if info, ok := out.Localizations[out.BaseLanguage]; ok && info.Empty() {
		delete(out.Localizations, out.BaseLanguage)
	}

	_, baseInSet := present[req.NewBaseLanguage]
	return Result{Data: out, NeedsBaseEntry: !baseInSet}, nil
}

func (e *Engine) resolve(entry project.Entry, root string) (project.Info, error) {
	var info project.Info
	var err error

	if entry.StringsFile != "" {
		info.StringsPath, err = e.resolver.ToStored(entry.StringsFile, root)
		if err != nil {
			return project.Info{}, fmt.Errorf("strings file: %w", err)
		}
	}
	if entry.AssetsFolder != "" {
		info.AssetsPath, err = e.resolver.ToStored(entry.AssetsFolder, root)
		if err != nil {
			return project.Info{}, fmt.Errorf("assets folder: %w", err)
		}
	}
	return info, nil
}

// EnsureBaseEntry appends a fresh empty row for the base language when the
// working set has none, returning the possibly extended set. The edit surface
// always shows a base-language row.
func EnsureBaseEntry(workingSet []project.Entry, baseLanguage string) ([]project.Entry, bool) {
	for _, e := range workingSet {
		if e.LanguageID == baseLanguage {
			return workingSet, false
		}
	}
	return append(workingSet, project.Entry{LanguageID: baseLanguage}), true
}
