package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locline/internal/export"
	"locline/internal/source"
	"locline/internal/textutil"
)

const exportCSV = `id,text,substitutions
ch1_1,"[character name=""Amy""]Amy:[/character] Hello, {0}!",stranger
ch1_2,Goodbye.,
`

func newExportSource(t *testing.T) *source.TableSource {
	t.Helper()
	s := source.NewTableSource("en")
	require.NoError(t, s.LoadTable("en", strings.NewReader(exportCSV)))
	return s
}

func TestWriteStrings(t *testing.T) {
	var buf bytes.Buffer
	count, err := export.New(newExportSource(t)).WriteStrings(context.Background(), "en", &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "text", "lock"}, rows[0])

	assert.Equal(t, "ch1_1", rows[1][0])
	assert.Equal(t, textutil.Lock(rows[1][1]), rows[1][2])
	assert.Equal(t, "ch1_2", rows[2][0])
	assert.Equal(t, "Goodbye.", rows[2][1])
}

func TestWriteMetadata(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.New(newExportSource(t)).WriteMetadata(context.Background(), "en", &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "character", "tags"}, rows[0])

	// ch1_1 speaks through Amy and needs one substitution value.
	assert.Equal(t, []string{"ch1_1", "Amy", "substitutions:1"}, rows[1])
	assert.Equal(t, []string{"ch1_2", "", ""}, rows[2])
}

func TestWriteStringsSkipsMissingLanguage(t *testing.T) {
	var buf bytes.Buffer
	count, err := export.New(newExportSource(t)).WriteStrings(context.Background(), "fr", &buf)
	require.NoError(t, err)
	assert.Zero(t, count)
}
