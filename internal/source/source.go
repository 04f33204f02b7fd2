package source

import "context"

// Source supplies localized content for lines by stable ID.
type Source interface {
	// RawText returns the text of a line in the given language. ok is false
	// when the line has no entry for that language.
	RawText(ctx context.Context, lineID, languageCode string) (text string, ok bool, err error)
	// Substitutions returns the line's stored substitution values, or nil
	// when it has none.
	Substitutions(ctx context.Context, lineID string) ([]string, error)
	// LineIDs lists every line ID the source knows about.
	LineIDs(ctx context.Context) ([]string, error)
}

// AudioSource is the optional capability of resolving a per-line localized
// audio asset. The returned reference is a file path or URL; empty means the
// line has no asset in that language.
type AudioSource interface {
	AudioAsset(ctx context.Context, lineID, languageCode string) (string, error)
}
