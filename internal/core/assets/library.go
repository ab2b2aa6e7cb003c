package assets

import (
	"context"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/verdant-games/gecko/internal/core/observability/log"
	"github.com/verdant-games/gecko/pkg/concurrent"
	"github.com/verdant-games/gecko/pkg/sequence"
)

// Library caches visuals in front of a Loader. Cache keys are xxhash digests
// of the asset path, so repeated loads of the same path share one Visual.
type Library struct {
	mu       sync.RWMutex
	lg       log.Log
	loader   Loader
	cache    map[uint64]*Visual
	progress Progress
}

type LibraryOption func(*Library)

// WithProgress installs a progress callback invoked as paths resolve.
func WithProgress(p Progress) LibraryOption {
	return func(l *Library) { l.progress = p }
}

func NewLibrary(loader Loader, lg log.Log, opts ...LibraryOption) *Library {
	if lg == nil {
		lg = log.Provide()
	}
	l := &Library{
		lg:     lg,
		loader: loader,
		cache:  make(map[uint64]*Visual),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load resolves one path, serving from cache when possible.
func (l *Library) Load(ctx context.Context, path string) (*Visual, error) {
	key := xxhash.Sum64String(path)

	l.mu.RLock()
	v, ok := l.cache[key]
	l.mu.RUnlock()
	if ok {
		l.report(path, 1)
		return v, nil
	}

	v, err := l.loader.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", path, err)
	}

	l.mu.Lock()
	l.cache[key] = v
	l.mu.Unlock()

	l.report(path, 1)
	return v, nil
}

// LoadAll resolves paths concurrently and returns visuals keyed by path. The
// first load error aborts the batch.
func (l *Library) LoadAll(ctx context.Context, paths []string) (map[string]*Visual, error) {
	var mu sync.Mutex
	out := make(map[string]*Visual, len(paths))

	err := concurrent.Concurrent(sequence.From(paths), func(path string) error {
		v, err := l.Load(ctx, path)
		if err != nil {
			return err
		}
		mu.Lock()
		out[path] = v
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Size reports the number of cached visuals.
func (l *Library) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.cache)
}

func (l *Library) report(path string, fraction float64) {
	if l.progress != nil {
		l.progress(path, fraction)
	}
}
