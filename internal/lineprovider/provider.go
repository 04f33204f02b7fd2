package lineprovider

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"locline/internal/interpolation"
	"locline/internal/line"
	"locline/internal/markup"
	"locline/internal/source"
	"locline/internal/worker"

	"github.com/rs/zerolog/log"
)

var (
	// ErrNotReady is returned by LocalizedLine before the most recent
	// prepare call has finished resolving.
	ErrNotReady = errors.New("requested lines are not ready")

	// ErrUnknownLine is returned by LocalizedLine for an ID that was not
	// part of the most recently prepared set or does not exist in the
	// localization source.
	ErrUnknownLine = errors.New("line is not in the prepared set")
)

// Provider prepares and serves localized lines. PrepareForLines never
// blocks; consumers poll LinesAvailable and only then call LocalizedLine.
type Provider interface {
	PrepareForLines(ctx context.Context, ids []string)
	LinesAvailable() bool
	LocalizedLine(id string) (*line.Line, error)
}

// AssetResolver resolves the optional per-line localized asset. Returning
// an error marks the line as degraded without failing the batch.
type AssetResolver interface {
	Resolve(ctx context.Context, lineID, languageCode string) (*line.Asset, error)
}

// Config carries the knobs shared by the provider variants.
type Config struct {
	// Language is the active language lines are served in.
	Language string
	// BaseLanguage is the fallback when the active language has no text
	// for a line.
	BaseLanguage string
	// Workers bounds resolution concurrency. Zero means one.
	Workers int
	// Assets, when set, resolves per-line assets during prepare.
	Assets AssetResolver
}

// Cache is the caching Provider implementation: each PrepareForLines call
// resolves its ID set on background workers and supersedes any prepare
// still in flight. Results of a superseded call are discarded, never
// exposed.
type Cache struct {
	source source.Source
	cfg    Config

	mu         sync.Mutex
	generation uint64
	ready      bool
	override   string
	prepared   map[string]*line.Line
	failures   map[string]error
	lastSubs   map[string][]string
}

// NewTextProvider creates a text-only provider.
func NewTextProvider(src source.Source, cfg Config) *Cache {
	cfg.Assets = nil
	return newCache(src, cfg)
}

// NewAudioProvider creates a provider that additionally resolves per-line
// audio assets during prepare.
func NewAudioProvider(src source.Source, assets AssetResolver, cfg Config) *Cache {
	cfg.Assets = assets
	return newCache(src, cfg)
}

func newCache(src source.Source, cfg Config) *Cache {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Cache{
		source:   src,
		cfg:      cfg,
		lastSubs: make(map[string][]string),
	}
}

// SetLanguageOverride serves subsequent prepares in code instead of the
// active language. An empty code clears the override. Takes effect on the
// next PrepareForLines call.
func (c *Cache) SetLanguageOverride(code string) {
	c.mu.Lock()
	c.override = code
	c.mu.Unlock()
}

// SetSubstitutions records the substitution values to interpolate into a
// line the next time it is prepared.
func (c *Cache) SetSubstitutions(lineID string, values []string) {
	c.mu.Lock()
	c.lastSubs[lineID] = values
	c.mu.Unlock()
}

// PrepareForLines begins resolving localized content for exactly this ID
// set. It returns immediately; readiness for any previous request is
// invalidated and any in-flight prepare is superseded.
func (c *Cache) PrepareForLines(ctx context.Context, ids []string) {
	unique := dedupe(ids)

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.ready = false
	lang := c.cfg.Language
	if c.override != "" {
		lang = c.override
	}
	subs := make(map[string][]string, len(unique))
	for _, id := range unique {
		if v, ok := c.lastSubs[id]; ok {
			subs[id] = v
		}
	}
	c.mu.Unlock()

	go c.resolveBatch(ctx, gen, unique, lang, subs)
}

func (c *Cache) resolveBatch(ctx context.Context, gen uint64, ids []string, lang string, subs map[string][]string) {
	pool := worker.NewPool(c.cfg.Workers, func(ctx context.Context, id string) (resolved, error) {
		return c.resolveOne(ctx, id, lang, subs[id])
	})
	outcomes := pool.Run(ctx, ids)

	prepared := make(map[string]*line.Line, len(outcomes))
	failures := make(map[string]error)
	for _, o := range outcomes {
		if o.Err != nil {
			// The line is not in the source at all, or the batch was
			// cancelled. Either way it stays out of the prepared set.
			failures[o.Input] = o.Err
			continue
		}
		prepared[o.Input] = o.Result.line
		if o.Result.degraded != nil {
			failures[o.Input] = o.Result.degraded
			log.Warn().Err(o.Result.degraded).Str("id", o.Input).Str("language", lang).Msg("Line resolved degraded")
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		log.Debug().Uint64("generation", gen).Msg("Discarding superseded prepare results")
		return
	}
	c.prepared = prepared
	c.failures = failures
	c.ready = true
}

// resolved carries one line plus its per-line degradation, if any.
type resolved struct {
	line     *line.Line
	degraded error
}

func (c *Cache) resolveOne(ctx context.Context, id, lang string, subs []string) (resolved, error) {
	var degraded error

	raw, ok, err := c.source.RawText(ctx, id, lang)
	if err != nil {
		degraded = fmt.Errorf("text lookup: %w", err)
		raw = ""
	} else if !ok {
		if lang != c.cfg.BaseLanguage && c.cfg.BaseLanguage != "" {
			base, baseOK, baseErr := c.source.RawText(ctx, id, c.cfg.BaseLanguage)
			if baseErr == nil && baseOK {
				raw = base
				degraded = fmt.Errorf("no %s text for %s, using base language", lang, id)
			} else {
				return resolved{}, fmt.Errorf("line %s does not exist in source", id)
			}
		} else {
			return resolved{}, fmt.Errorf("line %s does not exist in source", id)
		}
	}

	if subs == nil {
		stored, err := c.source.Substitutions(ctx, id)
		if err == nil {
			subs = stored
		}
	}
	if subs == nil {
		subs = []string{}
	}

	l, err := line.New(id, raw, subs)
	if err != nil {
		// Malformed markup still yields a presentable line; the markup is
		// just left unparsed.
		if degraded == nil {
			degraded = err
		}
		l = &line.Line{
			ID:            id,
			Substitutions: subs,
			RawText:       raw,
			Status:        line.Pending,
			Text:          markup.Result{Text: interpolation.Expand(raw, subs)},
		}
	}

	if c.cfg.Assets != nil {
		asset, err := c.cfg.Assets.Resolve(ctx, id, lang)
		if err != nil {
			if degraded == nil {
				degraded = fmt.Errorf("asset lookup: %w", err)
			}
		} else {
			l.Asset = asset
		}
	}

	return resolved{line: l, degraded: degraded}, nil
}

// LinesAvailable reports whether the most recently requested ID set has
// finished resolving with no newer request superseding it.
func (c *Cache) LinesAvailable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// LocalizedLine returns the prepared line for id. It must only be called
// once LinesAvailable is true; the returned line is a fresh copy with
// status Pending, owned by the caller.
func (c *Cache) LocalizedLine(id string) (*line.Line, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready {
		return nil, fmt.Errorf("%w: %s", ErrNotReady, id)
	}
	l, ok := c.prepared[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLine, id)
	}
	out := *l
	out.Status = line.Pending
	return &out, nil
}

// ResolveError returns the per-line failure recorded during the last
// prepare, or nil. Degraded lines are still served by LocalizedLine.
func (c *Cache) ResolveError(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready {
		return nil
	}
	return c.failures[id]
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
