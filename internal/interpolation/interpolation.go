package interpolation

import (
	"regexp"
	"strconv"
	"strings"
)

// placeholderPattern matches positional substitution markers: {0}, {1}, ...
var placeholderPattern = regexp.MustCompile(`\{([0-9]+)\}`)

// Expand replaces each positional placeholder in text with the matching
// substitution value. Placeholders with no matching value are left intact so
// missing substitutions stay visible rather than silently disappearing.
func Expand(text string, substitutions []string) string {
	if len(substitutions) == 0 || !strings.Contains(text, "{") {
		return text
	}
	return placeholderPattern.ReplaceAllStringFunc(text, func(m string) string {
		idx, err := strconv.Atoi(m[1 : len(m)-1])
		if err != nil || idx < 0 || idx >= len(substitutions) {
			return m
		}
		return substitutions[idx]
	})
}

// Indices returns the distinct placeholder indices referenced by text, in
// first-appearance order.
func Indices(text string) []int {
	matches := placeholderPattern.FindAllStringSubmatch(text, -1)
	if matches == nil {
		return nil
	}
	seen := make(map[int]struct{}, len(matches))
	var out []int
	for _, m := range matches {
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		out = append(out, idx)
	}
	return out
}

// MaxIndex returns the highest placeholder index in text, or -1 when text
// has none. A line needs MaxIndex+1 substitution values to fully expand.
func MaxIndex(text string) int {
	max := -1
	for _, idx := range Indices(text) {
		if idx > max {
			max = idx
		}
	}
	return max
}
