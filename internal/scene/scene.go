// Package scene provides the synthetic geometry the depth sensor observes.
package scene

import (
	"errors"
	"fmt"
	"sort"

	"github.com/unixpickle/model3d/model3d"

	pmath "github.com/Faultbox/depthmesh/pkg/math"
)

var (
	// ErrUnknownPart is returned when toggling a part that does not exist.
	ErrUnknownPart = errors.New("unknown scene part")
	// ErrUnknownScene is returned by New for unregistered names.
	ErrUnknownScene = errors.New("unknown scene")
)

// Source is geometry that can be ray cast by a sensor.
type Source interface {
	Name() string
	// Collider returns the visible geometry, or nil when nothing is visible.
	Collider() model3d.Collider
	// Bounds returns the box around the visible geometry.
	Bounds() (min, max pmath.Vec3, ok bool)
}

// Toggleable is implemented by sources whose named parts can be hidden.
type Toggleable interface {
	Parts() []string
	PartVisible(id string) bool
	SetPartVisible(id string, visible bool) error
}

// Part is a named group of triangles.
type Part struct {
	Name      string
	Triangles []*model3d.Triangle
	Visible   bool
}

// Composite is a Toggleable source made of named parts.
type Composite struct {
	name  string
	parts []*Part
	index map[string]*Part

	collider model3d.Collider
	mesh     *model3d.Mesh
	dirty    bool
}

// NewComposite creates a source from parts. Part names must be unique.
func NewComposite(name string, parts ...*Part) (*Composite, error) {
	c := &Composite{name: name, index: make(map[string]*Part, len(parts)), dirty: true}
	for _, p := range parts {
		if _, dup := c.index[p.Name]; dup {
			return nil, fmt.Errorf("scene %s: duplicate part %q", name, p.Name)
		}
		c.index[p.Name] = p
		c.parts = append(c.parts, p)
	}
	return c, nil
}

// Name returns the scene name.
func (c *Composite) Name() string {
	return c.name
}

// Parts returns the part names in sorted order.
func (c *Composite) Parts() []string {
	names := make([]string, 0, len(c.parts))
	for _, p := range c.parts {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

// SetPartVisible shows or hides a part.
func (c *Composite) SetPartVisible(id string, visible bool) error {
	p, ok := c.index[id]
	if !ok {
		return fmt.Errorf("scene %s: %w %q", c.name, ErrUnknownPart, id)
	}
	if p.Visible != visible {
		p.Visible = visible
		c.dirty = true
	}
	return nil
}

// PartVisible reports whether a part is shown.
func (c *Composite) PartVisible(id string) bool {
	p, ok := c.index[id]
	return ok && p.Visible
}

// Collider returns a collider over the visible parts.
func (c *Composite) Collider() model3d.Collider {
	c.rebuild()
	return c.collider
}

// Bounds returns the bounding box of the visible parts.
func (c *Composite) Bounds() (pmath.Vec3, pmath.Vec3, bool) {
	c.rebuild()
	if c.mesh == nil {
		return pmath.Vec3{}, pmath.Vec3{}, false
	}
	return fromCoord(c.mesh.Min()), fromCoord(c.mesh.Max()), true
}

func (c *Composite) rebuild() {
	if !c.dirty {
		return
	}
	c.dirty = false

	var tris []*model3d.Triangle
	for _, p := range c.parts {
		if p.Visible {
			tris = append(tris, p.Triangles...)
		}
	}
	if len(tris) == 0 {
		c.mesh, c.collider = nil, nil
		return
	}
	c.mesh = model3d.NewMeshTriangles(tris)
	c.collider = model3d.MeshToCollider(c.mesh)
}

// Static is a source with fixed geometry and no toggleable parts.
type Static struct {
	name     string
	mesh     *model3d.Mesh
	collider model3d.Collider
}

// NewStatic creates a fixed source from triangles.
func NewStatic(name string, tris []*model3d.Triangle) *Static {
	s := &Static{name: name}
	if len(tris) > 0 {
		s.mesh = model3d.NewMeshTriangles(tris)
		s.collider = model3d.MeshToCollider(s.mesh)
	}
	return s
}

// Name returns the scene name.
func (s *Static) Name() string {
	return s.name
}

// Collider returns the scene collider.
func (s *Static) Collider() model3d.Collider {
	return s.collider
}

// Bounds returns the scene bounding box.
func (s *Static) Bounds() (pmath.Vec3, pmath.Vec3, bool) {
	if s.mesh == nil {
		return pmath.Vec3{}, pmath.Vec3{}, false
	}
	return fromCoord(s.mesh.Min()), fromCoord(s.mesh.Max()), true
}

// BoundsWithout returns the bounds of src with the named parts hidden, when
// src supports hiding them. The previous visibility is restored.
func BoundsWithout(src Source, hide ...string) (pmath.Vec3, pmath.Vec3, bool) {
	c, ok := src.(Toggleable)
	if !ok {
		return src.Bounds()
	}
	var restore []string
	for _, id := range hide {
		if c.PartVisible(id) {
			_ = c.SetPartVisible(id, false)
			restore = append(restore, id)
		}
	}
	defer func() {
		for _, id := range restore {
			_ = c.SetPartVisible(id, true)
		}
	}()
	return src.Bounds()
}

func fromCoord(c model3d.Coord3D) pmath.Vec3 {
	return pmath.Vec3{X: c.X, Y: c.Y, Z: c.Z}
}

func toCoord(v pmath.Vec3) model3d.Coord3D {
	return model3d.XYZ(v.X, v.Y, v.Z)
}
