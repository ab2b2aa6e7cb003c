// Package headless is the reference render engine. It keeps a flat node
// list, records draw calls and tracks freed resources, which is all the
// render system needs outside of a real GPU surface.
package headless

import (
	"sync"

	"github.com/verdant-games/gecko/internal/core/engine"
	"github.com/verdant-games/gecko/internal/core/mathx"
)

// Engine implements engine.RenderEngine.
type Engine struct{}

func (Engine) NewRenderer(width, height int) engine.Renderer {
	return &renderer{width: width, height: height}
}

func (Engine) NewScene() engine.Scene {
	return &scene{}
}

func (Engine) NewCamera(fovDegrees, aspect float64) engine.Camera {
	return &camera{fov: fovDegrees, aspect: aspect}
}

func (Engine) NewNode(name string) engine.Node {
	return NewNode(name)
}

type renderer struct {
	mu            sync.Mutex
	width, height int
	draws         int
	freed         bool
}

func (r *renderer) Draw(s engine.Scene, c engine.Camera) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.freed {
		return
	}
	r.draws++
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = width, height
}

func (r *renderer) Free() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.freed = true
}

// DrawCount reports issued draw calls, for tests.
func (r *renderer) DrawCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.draws
}

// Size reports the current render target size, for tests.
func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

type scene struct {
	mu    sync.Mutex
	nodes []engine.Node
}

func (s *scene) Add(n engine.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = append(s.nodes, n)
}

func (s *scene) Remove(n engine.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cur := range s.nodes {
		if cur == n {
			s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
			return
		}
	}
}

func (s *scene) Nodes() []engine.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]engine.Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

func (s *scene) FreeAll() {
	s.mu.Lock()
	nodes := s.nodes
	s.nodes = nil
	s.mu.Unlock()
	for _, n := range nodes {
		n.Free()
	}
}

// NewNode builds a scene node. Node construction belongs to asset/visual
// glue, not to the systems, so it is exported from the engine package
// directly rather than hanging off the scene.
func NewNode(name string) engine.Node {
	return &node{name: name, rotation: mathx.QuatIdentity, visible: true}
}

type node struct {
	name        string
	translation mathx.Vec3
	rotation    mathx.Quat
	visible     bool
	freed       bool
}

func (n *node) Name() string { return n.name }

func (n *node) Translation() mathx.Vec3     { return n.translation }
func (n *node) SetTranslation(v mathx.Vec3) { n.translation = v }

func (n *node) Rotation() mathx.Quat     { return n.rotation }
func (n *node) SetRotation(q mathx.Quat) { n.rotation = q }

func (n *node) Visible() bool     { return n.visible && !n.freed }
func (n *node) SetVisible(v bool) { n.visible = v }

func (n *node) Free() { n.freed = true }

type camera struct {
	fov         float64
	aspect      float64
	translation mathx.Vec3
	target      mathx.Vec3
}

func (c *camera) Translation() mathx.Vec3     { return c.translation }
func (c *camera) SetTranslation(v mathx.Vec3) { c.translation = v }

func (c *camera) Target() mathx.Vec3 { return c.target }
func (c *camera) LookAt(v mathx.Vec3) {
	c.target = v
}

func (c *camera) SetAspect(aspect float64) { c.aspect = aspect }
