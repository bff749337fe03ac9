package app

import (
	"context"
	"fmt"

	"winter-stage/internal/media"

	"github.com/rs/zerolog/log"
)

type assetEntry struct {
	anim    *media.Animation
	err     error
	loading bool
}

type assetResult struct {
	source string
	anim   *media.Animation
	err    error
}

// Assets loads and decodes actor images off the UI goroutine. Results are
// only applied by Drain, which runs on the UI goroutine.
type Assets struct {
	fetcher *media.Fetcher
	refs    *media.RefStore
	maxSide int

	entries map[string]*assetEntry
	results chan assetResult
}

// NewAssets returns an empty cache. Decoded frames are bounded to maxSide
// pixels on their longer edge.
func NewAssets(fetcher *media.Fetcher, refs *media.RefStore, maxSide int) *Assets {
	return &Assets{
		fetcher: fetcher,
		refs:    refs,
		maxSide: maxSide,
		entries: map[string]*assetEntry{},
		results: make(chan assetResult, 8),
	}
}

// Request starts loading source unless it is cached or already loading.
func (a *Assets) Request(ctx context.Context, source string) {
	if _, ok := a.entries[source]; ok {
		return
	}
	a.entries[source] = &assetEntry{loading: true}

	local := media.IsRef(source)
	var data []byte
	if local {
		b, err := a.refs.Open(source)
		if err != nil {
			a.entries[source] = &assetEntry{err: err}
			return
		}
		data = b
	}
	go func() {
		res := assetResult{source: source}
		res.anim, res.err = a.load(ctx, source, data, local)
		select {
		case a.results <- res:
		case <-ctx.Done():
		}
	}()
}

func (a *Assets) load(ctx context.Context, source string, data []byte, local bool) (*media.Animation, error) {
	if !local {
		b, err := a.fetcher.Fetch(ctx, source)
		if err != nil {
			return nil, err
		}
		data = b
	}
	anim, err := media.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", source, err)
	}
	return anim.Bound(a.maxSide), nil
}

// Drain applies finished loads without blocking.
func (a *Assets) Drain() {
	for {
		select {
		case res := <-a.results:
			e, ok := a.entries[res.source]
			if !ok {
				// Forgotten while loading.
				continue
			}
			e.loading = false
			e.anim, e.err = res.anim, res.err
			if res.err != nil {
				log.Error().Err(res.err).Str("source", res.source).Msg("actor failed to load")
				continue
			}
			w, h := res.anim.Size()
			log.Info().Str("source", res.source).Str("format", res.anim.Format).
				Int("frames", len(res.anim.Frames)).Int("w", w).Int("h", h).Msg("actor loaded")
		default:
			return
		}
	}
}

// Lookup returns the decoded animation for source. ready is false while the
// load is in flight; a non-nil error means the load failed.
func (a *Assets) Lookup(source string) (anim *media.Animation, ready bool, err error) {
	e, ok := a.entries[source]
	if !ok || e.loading {
		return nil, false, nil
	}
	return e.anim, true, e.err
}

// Forget drops source from the cache.
func (a *Assets) Forget(source string) {
	delete(a.entries, source)
}

// Sources lists every cached or loading source.
func (a *Assets) Sources() []string {
	out := make([]string, 0, len(a.entries))
	for s := range a.entries {
		out = append(out, s)
	}
	return out
}
