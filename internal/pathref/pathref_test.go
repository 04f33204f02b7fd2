package pathref_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locline/internal/pathref"
)

func TestToStoredInsideProject(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "loc", "fr.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o755))
	require.NoError(t, os.WriteFile(target, []byte("id,text\n"), 0o644))

	for _, mode := range []pathref.Mode{pathref.RelativeOnly, pathref.AllowPlaceholder} {
		r := pathref.NewResolver(mode)
		stored, err := r.ToStored(target, root)
		require.NoError(t, err)
		assert.Equal(t, "loc/fr.csv", stored)
		assert.False(t, pathref.IsPlaceholder(stored))
	}
}

func TestToStoredOutsideProject(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(t.TempDir(), "shared.csv")
	require.NoError(t, os.WriteFile(outside, []byte("id,text\n"), 0o644))

	_, err := pathref.NewResolver(pathref.RelativeOnly).ToStored(outside, root)
	require.ErrorIs(t, err, pathref.ErrOutsideProject)

	stored, err := pathref.NewResolver(pathref.AllowPlaceholder).ToStored(outside, root)
	require.NoError(t, err)
	assert.True(t, pathref.IsPlaceholder(stored))
}

func TestToStoredEmptyReference(t *testing.T) {
	stored, err := pathref.NewResolver(pathref.RelativeOnly).ToStored("", t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestRoundTrip(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "voice")
	require.NoError(t, os.MkdirAll(target, 0o755))

	r := pathref.NewResolver(pathref.AllowPlaceholder)
	stored, err := r.ToStored(target, root)
	require.NoError(t, err)

	back, err := r.ToReference(stored, root)
	require.NoError(t, err)
	assert.Equal(t, target, back)
}

func TestRoundTripPlaceholder(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(t.TempDir(), "shared.csv")
	require.NoError(t, os.WriteFile(outside, []byte("id,text\n"), 0o644))

	r := pathref.NewResolver(pathref.AllowPlaceholder)
	stored, err := r.ToStored(outside, root)
	require.NoError(t, err)

	back, err := r.ToReference(stored, root)
	require.NoError(t, err)
	assert.Equal(t, outside, back)
}

func TestToReferenceBrokenPath(t *testing.T) {
	r := pathref.NewResolver(pathref.AllowPlaceholder)
	_, err := r.ToReference("loc/missing.csv", t.TempDir())
	require.ErrorIs(t, err, pathref.ErrReferenceNotFound)
}
