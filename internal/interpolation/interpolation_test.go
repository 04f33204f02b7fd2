package interpolation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"locline/internal/interpolation"
)

func TestExpand(t *testing.T) {
	tests := []struct {
		name string
		text string
		subs []string
		want string
	}{
		{"no placeholders", "Hello there.", []string{"x"}, "Hello there."},
		{"single", "Hello, {0}!", []string{"Amy"}, "Hello, Amy!"},
		{"multiple", "{0} gave {1} to {0}.", []string{"Amy", "a sword"}, "Amy gave a sword to Amy."},
		{"missing value stays visible", "Hello, {0} and {1}!", []string{"Amy"}, "Hello, Amy and {1}!"},
		{"no substitutions", "Hello, {0}!", nil, "Hello, {0}!"},
		{"non-numeric braces untouched", "a {b} c {0}", []string{"X"}, "a {b} c X"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, interpolation.Expand(tt.text, tt.subs))
		})
	}
}

func TestIndices(t *testing.T) {
	assert.Nil(t, interpolation.Indices("plain"))
	assert.Equal(t, []int{1, 0}, interpolation.Indices("{1} then {0} then {1}"))
}

func TestMaxIndex(t *testing.T) {
	assert.Equal(t, -1, interpolation.MaxIndex("plain"))
	assert.Equal(t, 2, interpolation.MaxIndex("{0} {2} {1}"))
}
