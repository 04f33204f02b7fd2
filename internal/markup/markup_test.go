package markup_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locline/internal/markup"
)

func TestParsePlainText(t *testing.T) {
	r, err := markup.Parse("Hello there.")
	require.NoError(t, err)
	assert.Equal(t, "Hello there.", r.Text)
	assert.Empty(t, r.Attributes)
}

func TestParseCharacterAttribute(t *testing.T) {
	r, err := markup.Parse(`[character name="Amy"]Amy:[/character] Hello!`)
	require.NoError(t, err)
	assert.Equal(t, "Amy: Hello!", r.Text)

	attr, ok := r.AttributeNamed("character")
	require.True(t, ok)
	assert.Equal(t, 0, attr.Position)
	assert.Equal(t, 4, attr.Length)
	assert.Equal(t, "Amy", attr.Properties["name"].String)
}

func TestParsePropertyKinds(t *testing.T) {
	r, err := markup.Parse(`[wave size=3 speed=1.5 loop=true label="hi there"]wobble[/wave]`)
	require.NoError(t, err)

	attr, ok := r.AttributeNamed("wave")
	require.True(t, ok)
	assert.Equal(t, markup.IntegerValue, attr.Properties["size"].Kind)
	assert.Equal(t, 3, attr.Properties["size"].Integer)
	assert.Equal(t, markup.FloatValue, attr.Properties["speed"].Kind)
	assert.InDelta(t, 1.5, attr.Properties["speed"].Float, 1e-9)
	assert.Equal(t, markup.BoolValue, attr.Properties["loop"].Kind)
	assert.True(t, attr.Properties["loop"].Bool)
	assert.Equal(t, "hi there", attr.Properties["label"].String)
}

func TestParseSelfClosingTag(t *testing.T) {
	r, err := markup.Parse(`Wait[pause ms=500/] what?`)
	require.NoError(t, err)
	assert.Equal(t, "Wait what?", r.Text)

	attr, ok := r.AttributeNamed("pause")
	require.True(t, ok)
	assert.Equal(t, 4, attr.Position)
	assert.Equal(t, 0, attr.Length)
	assert.Equal(t, 500, attr.Properties["ms"].Integer)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated tag", "Hello [wave"},
		{"unclosed tag", "[wave]Hello"},
		{"mismatched close", "[wave]Hello[/shake]"},
		{"property without value", "[wave size]x[/wave]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := markup.Parse(tt.input)
			require.Error(t, err)
		})
	}
}

func TestDeleteRangeRemovesSpan(t *testing.T) {
	r, err := markup.Parse(`[character name="Amy"]Amy: [/character]Hello [b]world[/b]`)
	require.NoError(t, err)
	assert.Equal(t, "Amy: Hello world", r.Text)

	attr, ok := r.AttributeNamed("character")
	require.True(t, ok)

	out := r.DeleteRange(attr)
	assert.Equal(t, "Hello world", out.Text)

	_, ok = out.AttributeNamed("character")
	assert.False(t, ok)

	b, ok := out.AttributeNamed("b")
	require.True(t, ok)
	assert.Equal(t, 6, b.Position)
	assert.Equal(t, 5, b.Length)
}

func TestDeleteRangeDropsSwallowedAttributes(t *testing.T) {
	r, err := markup.Parse(`[a][b]xx[/b]yy[/a]zz`)
	require.NoError(t, err)

	outer, ok := r.AttributeNamed("a")
	require.True(t, ok)

	out := r.DeleteRange(outer)
	assert.Equal(t, "zz", out.Text)
	_, ok = out.AttributeNamed("b")
	assert.False(t, ok)
}

func TestDeleteRangeMultibyteText(t *testing.T) {
	r, err := markup.Parse(`[character name="アキ"]アキ:[/character] こんにちは`)
	require.NoError(t, err)

	attr, ok := r.AttributeNamed("character")
	require.True(t, ok)
	assert.Equal(t, 3, attr.Length)

	out := r.DeleteRange(attr)
	assert.Equal(t, " こんにちは", out.Text)
}
