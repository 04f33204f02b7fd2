package markup

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Names of the attribute and property that mark an embedded character name
// in a line, e.g. `[character name="Amy"]Amy:[/character] Hello!`.
const (
	CharacterAttribute    = "character"
	CharacterNameProperty = "name"
)

// ValueKind discriminates the typed payload of a property value.
type ValueKind int

const (
	StringValue ValueKind = iota
	IntegerValue
	FloatValue
	BoolValue
)

// Value is one typed property value on an attribute.
type Value struct {
	Kind    ValueKind
	String  string
	Integer int
	Float   float64
	Bool    bool
}

// Text renders the value for display regardless of kind.
func (v Value) Text() string {
	switch v.Kind {
	case IntegerValue:
		return strconv.Itoa(v.Integer)
	case FloatValue:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case BoolValue:
		return strconv.FormatBool(v.Bool)
	default:
		return v.String
	}
}

// Attribute is one markup span over the plain text: a name, a rune range,
// and its properties.
type Attribute struct {
	Name       string
	Position   int
	Length     int
	Properties map[string]Value
}

// Result is the immutable parsed representation of one line's display text:
// the plain text with all markup removed, plus the attribute spans found in
// it. Positions and lengths are in runes over the plain text.
type Result struct {
	Text       string
	Attributes []Attribute
}

// AttributeNamed returns the first attribute with the given name.
func (r Result) AttributeNamed(name string) (Attribute, bool) {
	for _, a := range r.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// DeleteRange produces a new Result with the given attribute's text range
// removed. Attributes entirely inside the deleted range are dropped,
// attributes after it shift left, and attributes straddling it are
// truncated. The deleted attribute itself is removed.
func (r Result) DeleteRange(deleted Attribute) Result {
	start := deleted.Position
	end := deleted.Position + deleted.Length

	runes := []rune(r.Text)
	if start < 0 {
		start = 0
	}
	if end > len(runes) {
		end = len(runes)
	}
	out := Result{Text: string(runes[:start]) + string(runes[end:])}
	removed := end - start

	for _, a := range r.Attributes {
		if a.Name == deleted.Name && a.Position == deleted.Position && a.Length == deleted.Length {
			continue
		}
		aStart, aEnd := a.Position, a.Position+a.Length
		switch {
		case aEnd <= start:
			// Entirely before the hole.
		case aStart >= end:
			a.Position -= removed
		case aStart >= start && aEnd <= end:
			// Swallowed by the hole.
			continue
		case aStart < start && aEnd > end:
			a.Length -= removed
		case aStart < start:
			a.Length = start - aStart
		default:
			a.Length = aEnd - end
			a.Position = start
		}
		out.Attributes = append(out.Attributes, a)
	}
	return out
}

type openTag struct {
	name     string
	position int
	props    map[string]Value
}

// Parse reads bracket markup of the form `[name prop="v"]...[/name]` and
// `[name prop="v"/]` out of input, returning the plain text and the
// attribute spans. Unterminated or mismatched tags are an error; input with
// no markup parses to itself with no attributes.
func Parse(input string) (Result, error) {
	var plain strings.Builder
	var attrs []Attribute
	var stack []openTag

	pos := 0 // rune offset into the plain text
	i := 0
	for i < len(input) {
		r, size := utf8.DecodeRuneInString(input[i:])
		if r != '[' {
			plain.WriteRune(r)
			pos++
			i += size
			continue
		}

		end := strings.IndexRune(input[i:], ']')
		if end < 0 {
			return Result{}, fmt.Errorf("unterminated markup tag at rune %d", pos)
		}
		tag := input[i+1 : i+end]
		i += end + 1

		switch {
		case strings.HasPrefix(tag, "/"):
			name := strings.TrimSpace(tag[1:])
			if len(stack) == 0 || stack[len(stack)-1].name != name {
				return Result{}, fmt.Errorf("unexpected closing tag [/%s]", name)
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			attrs = append(attrs, Attribute{
				Name:       open.name,
				Position:   open.position,
				Length:     pos - open.position,
				Properties: open.props,
			})
		case strings.HasSuffix(tag, "/"):
			name, props, err := parseTag(strings.TrimSuffix(tag, "/"))
			if err != nil {
				return Result{}, err
			}
			attrs = append(attrs, Attribute{Name: name, Position: pos, Length: 0, Properties: props})
		default:
			name, props, err := parseTag(tag)
			if err != nil {
				return Result{}, err
			}
			stack = append(stack, openTag{name: name, position: pos, props: props})
		}
	}

	if len(stack) > 0 {
		return Result{}, fmt.Errorf("unclosed markup tag [%s]", stack[len(stack)-1].name)
	}
	return Result{Text: plain.String(), Attributes: attrs}, nil
}

func parseTag(tag string) (string, map[string]Value, error) {
	fields, err := splitTag(strings.TrimSpace(tag))
	if err != nil {
		return "", nil, err
	}
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("empty markup tag")
	}

	name := fields[0]
	var props map[string]Value
	for _, f := range fields[1:] {
		eq := strings.Index(f, "=")
		if eq < 0 {
			return "", nil, fmt.Errorf("markup property %q in [%s] has no value", f, name)
		}
		if props == nil {
			props = make(map[string]Value)
		}
		props[f[:eq]] = parseValue(f[eq+1:])
	}
	return name, props, nil
}

// splitTag splits a tag body on spaces, keeping quoted values intact.
func splitTag(tag string) ([]string, error) {
	var fields []string
	var cur strings.Builder
	inQuote := false
	escaped := false

	for _, r := range tag {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && inQuote:
			escaped = true
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
		case r == ' ' && !inQuote:
			if cur.Len() > 0 {
				fields = append(fields, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quote in markup tag %q", tag)
	}
	if cur.Len() > 0 {
		fields = append(fields, cur.String())
	}
	return fields, nil
}

func parseValue(raw string) Value {
	if strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`) && len(raw) >= 2 {
		unquoted := raw[1 : len(raw)-1]
		unquoted = strings.ReplaceAll(unquoted, `\"`, `"`)
		unquoted = strings.ReplaceAll(unquoted, `\\`, `\`)
		return Value{Kind: StringValue, String: unquoted}
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return Value{Kind: IntegerValue, Integer: n}
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return Value{Kind: FloatValue, Float: f}
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return Value{Kind: BoolValue, Bool: b}
	}
	return Value{Kind: StringValue, String: raw}
}
