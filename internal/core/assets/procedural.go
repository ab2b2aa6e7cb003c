package assets

import (
	"context"
	"strings"

	"github.com/verdant-games/gecko/internal/core/engine"
)

// Procedural is a Loader producing primitive visuals without touching disk.
// It keeps headless sessions and tests independent of real asset files.
type Procedural struct {
	nodes func(name string) engine.Node
	// Fail lists paths that should report a load failure, for exercising
	// degraded-visual paths in tests.
	Fail map[string]bool
}

func NewProcedural(render engine.RenderEngine) *Procedural {
	return &Procedural{nodes: render.NewNode}
}

func (p *Procedural) Load(_ context.Context, path string) (*Visual, error) {
	if p.Fail[path] {
		return nil, ErrMissingVisual
	}
	name := strings.TrimSuffix(path, ".glb")
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return NewVisual(name, map[string]Animation{
		"idle": {Name: "idle", Duration: 1.0, Loop: true},
		"walk": {Name: "walk", Duration: 0.8, Loop: true},
	}, p.nodes), nil
}
