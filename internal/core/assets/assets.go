// Package assets specifies the asset-loading collaborator at its interface
// and provides a cached library in front of it. Real decoding lives outside
// the runtime core; the procedural loader stands in for it.
package assets

import (
	"context"
	"errors"

	"github.com/verdant-games/gecko/internal/core/engine"
)

// ErrMissingVisual is returned when a path resolves to no usable visual.
var ErrMissingVisual = errors.New("assets: visual not available")

// Animation describes one named animation clip of a visual.
type Animation struct {
	Name     string
	Duration float64
	Loop     bool
}

// Visual is a loaded, instantiable asset: mesh plus animation set.
type Visual struct {
	Name       string
	Animations map[string]Animation

	factory func(name string) engine.Node
}

// NewVisual builds a Visual around a node factory. Loaders call this; the
// factory is how the excluded mesh-construction glue plugs in.
func NewVisual(name string, animations map[string]Animation, factory func(string) engine.Node) *Visual {
	return &Visual{Name: name, Animations: animations, factory: factory}
}

// Instantiate creates a fresh scene node for this visual.
func (v *Visual) Instantiate() (engine.Node, error) {
	if v == nil || v.factory == nil {
		return nil, ErrMissingVisual
	}
	return v.factory(v.Name), nil
}

// Animation returns the named clip, or false when the visual has none.
func (v *Visual) Animation(name string) (Animation, bool) {
	if v == nil {
		return Animation{}, false
	}
	a, ok := v.Animations[name]
	return a, ok
}

// Loader resolves an asset path into a Visual. Implementations may block on
// IO and decoding; callers pass a context and await completion before an
// entity built from the visual is published anywhere.
type Loader interface {
	Load(ctx context.Context, path string) (*Visual, error)
}

// Progress reports loading progress for host UI, per path in [0,1].
type Progress func(path string, fraction float64)
