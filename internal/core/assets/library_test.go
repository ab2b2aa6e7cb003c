package assets

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verdant-games/gecko/internal/core/engine/headless"
	"github.com/verdant-games/gecko/internal/core/observability/log"
)

// countingLoader wraps Procedural and counts real loads.
type countingLoader struct {
	mu    sync.Mutex
	inner Loader
	calls map[string]int
}

func newCountingLoader() *countingLoader {
	return &countingLoader{
		inner: NewProcedural(headless.Engine{}),
		calls: map[string]int{},
	}
}

func (c *countingLoader) Load(ctx context.Context, path string) (*Visual, error) {
	c.mu.Lock()
	c.calls[path]++
	c.mu.Unlock()
	return c.inner.Load(ctx, path)
}

func TestLibraryCachesByPath(t *testing.T) {
	loader := newCountingLoader()
	lib := NewLibrary(loader, log.Nop())

	first, err := lib.Load(context.Background(), "models/gecko.glb")
	require.NoError(t, err)
	second, err := lib.Load(context.Background(), "models/gecko.glb")
	require.NoError(t, err)

	require.Same(t, first, second)
	require.Equal(t, 1, loader.calls["models/gecko.glb"])
	require.Equal(t, 1, lib.Size())
}

func TestLibraryWrapsLoadErrors(t *testing.T) {
	p := NewProcedural(headless.Engine{})
	p.Fail = map[string]bool{"models/broken.glb": true}
	lib := NewLibrary(p, log.Nop())

	_, err := lib.Load(context.Background(), "models/broken.glb")
	require.ErrorIs(t, err, ErrMissingVisual)
	require.Contains(t, err.Error(), "models/broken.glb")
	require.Equal(t, 0, lib.Size())
}

func TestLibraryReportsProgress(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]float64{}
	lib := NewLibrary(newCountingLoader(), log.Nop(), WithProgress(func(path string, fraction float64) {
		mu.Lock()
		seen[path] = fraction
		mu.Unlock()
	}))

	_, err := lib.Load(context.Background(), "models/gecko.glb")
	require.NoError(t, err)
	require.Equal(t, 1.0, seen["models/gecko.glb"])
}

func TestLibraryLoadAll(t *testing.T) {
	loader := newCountingLoader()
	lib := NewLibrary(loader, log.Nop())

	paths := []string{"models/gecko.glb", "models/terrain.glb", "models/scan_beacon.glb"}
	out, err := lib.LoadAll(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for _, p := range paths {
		require.NotNil(t, out[p])
	}
	require.Equal(t, 3, lib.Size())
}

func TestLoadAllAbortsOnError(t *testing.T) {
	p := NewProcedural(headless.Engine{})
	p.Fail = map[string]bool{"models/broken.glb": true}
	lib := NewLibrary(p, log.Nop())

	_, err := lib.LoadAll(context.Background(), []string{"models/gecko.glb", "models/broken.glb"})
	require.Error(t, err)
}

func TestProceduralVisualShape(t *testing.T) {
	v, err := NewProcedural(headless.Engine{}).Load(context.Background(), "models/scan_beacon.glb")
	require.NoError(t, err)
	require.Equal(t, "scan_beacon", v.Name)

	walk, ok := v.Animation("walk")
	require.True(t, ok)
	require.Positive(t, walk.Duration)

	node, err := v.Instantiate()
	require.NoError(t, err)
	require.Equal(t, "scan_beacon", node.Name())
}

func TestNilVisualInstantiateFails(t *testing.T) {
	var v *Visual
	_, err := v.Instantiate()
	require.ErrorIs(t, err, ErrMissingVisual)

	_, ok := v.Animation("walk")
	require.False(t, ok)
}

func TestManifestRoundTrip(t *testing.T) {
	m, err := LoadManifest(strings.NewReader(`
visuals:
  avatar: models/gecko.glb
  marker: models/scan_beacon.glb
`))
	require.NoError(t, err)
	require.Equal(t, "models/gecko.glb", m.Visuals["avatar"])
	require.ElementsMatch(t,
		[]string{"models/gecko.glb", "models/scan_beacon.glb"},
		m.Paths(),
	)
}

func TestManifestRejectsGarbage(t *testing.T) {
	_, err := LoadManifest(strings.NewReader("visuals: [not, a, map]"))
	require.Error(t, err)
}
