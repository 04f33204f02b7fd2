package line

import (
	"fmt"

	"locline/internal/interpolation"
	"locline/internal/markup"
)

// Status tracks the delivery lifecycle of a line. The presentation layer
// advances it; this package only initializes it.
type Status int

const (
	// Pending means the line has been resolved but not yet presented.
	Pending Status = iota
	// Delivering means the line is currently being presented.
	Delivering
	// Delivered means presentation has finished.
	Delivered
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Delivering:
		return "delivering"
	case Delivered:
		return "delivered"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Asset is the optional audio/visual extension attached to a line by an
// asset-aware provider. Exactly one of Path and URL is set.
type Asset struct {
	Path string
	URL  string
}

// Line is one fully localized, ready-to-present line. Lines are recreated
// per request and never persisted.
type Line struct {
	// ID is the stable line identifier.
	ID string
	// Substitutions are the positional values interpolated into RawText.
	Substitutions []string
	// RawText is the localized text before substitution and markup parsing.
	RawText string
	// Status is the delivery state, owned by the consumer after creation.
	Status Status
	// Text is RawText with substitutions expanded and markup parsed out.
	Text markup.Result
	// Asset is set when an asset-aware provider resolved one for this line.
	Asset *Asset
}

// New builds a line from its raw localized text and substitution values.
func New(id, rawText string, substitutions []string) (*Line, error) {
	parsed, err := markup.Parse(interpolation.Expand(rawText, substitutions))
	if err != nil {
		return nil, fmt.Errorf("parse line %s: %w", id, err)
	}
	return &Line{
		ID:            id,
		Substitutions: substitutions,
		RawText:       rawText,
		Status:        Pending,
		Text:          parsed,
	}, nil
}

// CharacterName returns the speaking character's name when the line carries
// a character attribute, e.g. `[character name="Amy"]Amy:[/character]`.
func (l *Line) CharacterName() (string, bool) {
	attr, ok := l.Text.AttributeNamed(markup.CharacterAttribute)
	if !ok {
		return "", false
	}
	v, ok := attr.Properties[markup.CharacterNameProperty]
	if !ok {
		return "", false
	}
	return v.Text(), true
}

// TextWithoutCharacterName returns the parsed text with the character
// attribute's span removed, or the text unchanged when the line has none.
func (l *Line) TextWithoutCharacterName() markup.Result {
	attr, ok := l.Text.AttributeNamed(markup.CharacterAttribute)
	if !ok {
		return l.Text
	}
	return l.Text.DeleteRange(attr)
}
