package source_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locline/internal/source"
)

const baseCSV = `id,text,substitutions
ch1_1,"Hello, {0}!",stranger
ch1_2,Goodbye.,
`

const frCSV = `id,text
ch1_1,"Bonjour, {0}!"
`

func newLoadedSource(t *testing.T) *source.TableSource {
	t.Helper()
	s := source.NewTableSource("en")
	require.NoError(t, s.LoadTable("en", strings.NewReader(baseCSV)))
	require.NoError(t, s.LoadTable("fr", strings.NewReader(frCSV)))
	return s
}

func TestRawTextExactLanguage(t *testing.T) {
	s := newLoadedSource(t)

	text, ok, err := s.RawText(context.Background(), "ch1_1", "fr")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Bonjour, {0}!", text)
}

func TestRawTextRegionalFallback(t *testing.T) {
	s := newLoadedSource(t)

	text, ok, err := s.RawText(context.Background(), "ch1_1", "fr-CA")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Bonjour, {0}!", text)
}

func TestRawTextUnknownLine(t *testing.T) {
	s := newLoadedSource(t)

	_, ok, err := s.RawText(context.Background(), "nope", "fr")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSubstitutionsFromBaseTable(t *testing.T) {
	s := newLoadedSource(t)

	subs, err := s.Substitutions(context.Background(), "ch1_1")
	require.NoError(t, err)
	assert.Equal(t, []string{"stranger"}, subs)

	subs, err = s.Substitutions(context.Background(), "ch1_2")
	require.NoError(t, err)
	assert.Nil(t, subs)
}

func TestLineIDsSorted(t *testing.T) {
	s := newLoadedSource(t)

	ids, err := s.LineIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ch1_1", "ch1_2"}, ids)
}

func TestLoadTableMissingColumns(t *testing.T) {
	s := source.NewTableSource("en")
	err := s.LoadTable("en", strings.NewReader("key,value\nx,y\n"))
	require.Error(t, err)
}

func TestLoadTableStripsBOM(t *testing.T) {
	s := source.NewTableSource("en")
	require.NoError(t, s.LoadTable("en", strings.NewReader("\xEF\xBB\xBFid,text\nch1_1,Hi\n")))

	text, ok, err := s.RawText(context.Background(), "ch1_1", "en")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Hi", text)
}
