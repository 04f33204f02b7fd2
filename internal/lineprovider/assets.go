package lineprovider

import (
	"context"
	"fmt"

	"locline/internal/assets"
	"locline/internal/line"
)

// LocalAssets resolves per-line assets from indexed per-language folders.
type LocalAssets struct {
	indexes map[string]*assets.Index
}

// NewLocalAssets creates an empty local resolver.
func NewLocalAssets() *LocalAssets {
	return &LocalAssets{indexes: make(map[string]*assets.Index)}
}

// AddLanguage registers the indexed assets folder for one language.
func (a *LocalAssets) AddLanguage(languageCode string, idx *assets.Index) {
	a.indexes[languageCode] = idx
}

// Resolve returns the local asset for a line. Languages with no assets
// folder resolve to no asset; a configured folder missing the line is a
// per-line failure.
func (a *LocalAssets) Resolve(_ context.Context, lineID, languageCode string) (*line.Asset, error) {
	idx, ok := a.indexes[languageCode]
	if !ok {
		return nil, nil
	}
	path, ok := idx.Lookup(lineID)
	if !ok {
		return nil, fmt.Errorf("no %s asset for line %s", languageCode, lineID)
	}
	return &line.Asset{Path: path}, nil
}

// RemoteAssets resolves per-line assets hosted behind a base URL,
// verifying availability during prepare.
type RemoteAssets struct {
	checker *assets.RemoteChecker
	ext     string
}

// NewRemoteAssets creates a remote resolver for assets with the given file
// extension, e.g. ".ogg".
func NewRemoteAssets(checker *assets.RemoteChecker, ext string) *RemoteAssets {
	return &RemoteAssets{checker: checker, ext: ext}
}

// Resolve checks the asset's URL and returns it when reachable.
func (a *RemoteAssets) Resolve(ctx context.Context, lineID, languageCode string) (*line.Asset, error) {
	url, err := a.checker.Check(ctx, lineID, languageCode, a.ext)
	if err != nil {
		return nil, err
	}
	return &line.Asset{URL: url}, nil
}
