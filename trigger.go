package tscnscene

import (
	"fmt"

	"github.com/jakecoffman/cp"
)

const typeCollisionShape = "CollisionShape2D"

// Trigger is a rectangular zone that fires once, the first time a tracked
// point lands inside it. Containment includes the boundary.
type Trigger struct {
	Name        string
	Center      Vec2
	HalfExtents Vec2

	box     cp.BB
	fired   bool
	onEnter func()
}

// NewRectTrigger builds a zone centered on center with the given full size.
func NewRectTrigger(name string, center, size Vec2, onEnter func()) *Trigger {
	half := size.Scale(0.5)
	return &Trigger{
		Name:        name,
		Center:      center,
		HalfExtents: half,
		box: cp.BB{
			L: center.X - half.X,
			B: center.Y - half.Y,
			R: center.X + half.X,
			T: center.Y + half.Y,
		},
		onEnter: onEnter,
	}
}

// NewTrigger builds the zone of the node at path. The rectangle comes from the
// node's own shape property or, failing that, from its first CollisionShape2D
// child; the zone is centered on the absolute position of the shape's node.
func NewTrigger(res *ParseResult, path string, onEnter func()) (*Trigger, error) {
	n := res.Node(path)
	if n == nil {
		return nil, fmt.Errorf("trigger %q: no such node", path)
	}
	shapeNode := n
	shape, ok := n.Properties.Get("shape")
	if !ok {
		for _, c := range n.Children() {
			if v, has := c.Properties.Get("shape"); has && c.Type == typeCollisionShape {
				shapeNode, shape, ok = c, v, true
				break
			}
		}
	}
	if !ok {
		return nil, fmt.Errorf("trigger %q: %w", path, ErrNoTriggerShape)
	}
	size, err := rectangleSize(res.Resources, shape)
	if err != nil {
		return nil, fmt.Errorf("trigger %q: %w", path, err)
	}
	return NewRectTrigger(n.Name, shapeNode.AbsolutePosition(), size, onEnter), nil
}

// rectangleSize reads the full size of a RectangleShape2D. Godot 3 stores
// half extents instead.
func rectangleSize(table *ResourceTable, shape Value) (Vec2, error) {
	decl, err := table.ResolveValue(shape)
	if err != nil {
		return Vec2{}, err
	}
	if v, ok := decl.Properties.Get("size"); ok {
		return v.Vector2()
	}
	if v, ok := decl.Properties.Get("extents"); ok {
		ext, err := v.Vector2()
		return ext.Scale(2), err
	}
	return Vec2{}, fmt.Errorf("%w: %s %s has no size", ErrNoTriggerShape, decl.Type, decl.ID)
}

// Contains reports whether p lies inside the zone or on its edge.
func (t *Trigger) Contains(p Vec2) bool {
	return t.box.ContainsVect(cp.Vector{X: p.X, Y: p.Y})
}

// Update is called once per tick with the tracked position. It returns true
// on the tick the zone fires; after that it never fires again.
func (t *Trigger) Update(p Vec2) bool {
	if t.fired || !t.Contains(p) {
		return false
	}
	t.fired = true
	if t.onEnter != nil {
		t.onEnter()
	}
	return true
}

func (t *Trigger) Fired() bool {
	return t.fired
}
