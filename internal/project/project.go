package project

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
)

// ErrDuplicateLanguage is returned when a working set carries the same
// language ID more than once. Commit behavior on duplicates is undefined,
// so callers must validate before committing.
var ErrDuplicateLanguage = errors.New("duplicate language in working set")

// Entry is one user-editable localization row in the working set.
// StringsFile and AssetsFolder are absolute reference paths; empty means
// absent. The strings file of the base-language entry is ignored even when
// present, since the base script text is authoritative.
type Entry struct {
	LanguageID   string
	StringsFile  string
	AssetsFolder string
}

// Info is the persisted source record for one language. Path fields use
// either a root-relative or a placeholder-prefixed stored form.
type Info struct {
	StringsPath string `json:"stringsPath,omitempty"`
	AssetsPath  string `json:"assetsPath,omitempty"`
}

// Empty reports whether the record carries no useful data.
func (i Info) Empty() bool {
	return i.StringsPath == "" && i.AssetsPath == ""
}

// Data is the persisted localization record for a project: the base
// language plus one Info per localized language.
type Data struct {
	BaseLanguage  string          `json:"baseLanguage"`
	Localizations map[string]Info `json:"localizations"`
}

// NewData creates an empty record for the given base language.
func NewData(baseLanguage string) Data {
	return Data{
		BaseLanguage:  baseLanguage,
		Localizations: make(map[string]Info),
	}
}

// Clone returns a deep copy so a commit can build its result without
// mutating the previous record.
func (d Data) Clone() Data {
	out := Data{
		BaseLanguage:  d.BaseLanguage,
		Localizations: make(map[string]Info, len(d.Localizations)),
	}
	for k, v := range d.Localizations {
		out.Localizations[k] = v
	}
	return out
}

// ValidateWorkingSet rejects working sets with duplicate language IDs and
// language IDs that are not valid culture identifiers.
func ValidateWorkingSet(entries []Entry) error {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.LanguageID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateLanguage, e.LanguageID)
		}
		seen[e.LanguageID] = struct{}{}
		if _, err := language.Parse(e.LanguageID); err != nil {
			return fmt.Errorf("invalid language %q: %w", e.LanguageID, err)
		}
	}
	return nil
}
