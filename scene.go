package tscnscene

import (
	"fmt"
	"strings"
)

// RootPath is the path of the scene root; children of the root name it as parent.
const RootPath = "."

// Node is one scene graph node. A parent owns its children; the parent
// pointer is a back reference used for ancestor walks only.
type Node struct {
	Name       string
	Type       string
	Groups     []string
	Position   Vec2 // local offset from the parent
	Attrs      *Properties
	Properties *Properties
	Pos        Position

	path     string
	parent   *Node
	children []*Node
}

func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) Children() []*Node {
	return n.children
}

// Path is "." for the root and the slash-joined chain of names below it otherwise.
func (n *Node) Path() string {
	return n.path
}

// ParentPath is the path of the resolved parent node ("" for the root).
func (n *Node) ParentPath() string {
	if n.parent == nil {
		return ""
	}
	return n.parent.path
}

// AbsolutePosition sums the local positions of the node and all its ancestors.
func (n *Node) AbsolutePosition() Vec2 {
	var p Vec2
	for cur := n; cur != nil; cur = cur.parent {
		p = p.Add(cur.Position)
	}
	return p
}

// Instance returns the packed scene this node instantiates, if any.
func (n *Node) Instance() (ResourceRef, bool) {
	v, ok := n.Attrs.Get("instance")
	if !ok {
		return ResourceRef{}, false
	}
	ref, err := v.Ref()
	return ref, err == nil
}

func (n *Node) Child(name string) *Node {
	for _, c := range n.children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Find resolves a slash-delimited path relative to n. "." and "" return n.
func (n *Node) Find(path string) *Node {
	if path == "" || path == RootPath {
		return n
	}
	cur := n
	for _, name := range strings.Split(path, "/") {
		if cur = cur.Child(name); cur == nil {
			return nil
		}
	}
	return cur
}

// Walk visits n and its descendants depth first in declaration order.
// Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Connection is a [connection] section wiring a signal between two nodes.
type Connection struct {
	Signal string `json:"signal" yaml:"signal"`
	From   string `json:"from" yaml:"from"`
	To     string `json:"to" yaml:"to"`
	Method string `json:"method" yaml:"method"`
	Flags  int    `json:"flags,omitempty" yaml:"flags,omitempty"`
}

// sceneBuilder assembles the node tree in file order. Godot writes parents
// before their children, so a parent that is not yet known is an error.
type sceneBuilder struct {
	root        *Node
	byPath      map[string]*Node
	connections []Connection
}

// BuildSceneGraph builds the node tree and collects signal connections.
// A document without nodes (a .tres resource) yields a nil root.
func BuildSceneGraph(sections []Section) (*Node, []Connection, error) {
	b := &sceneBuilder{byPath: make(map[string]*Node)}
	for i := range sections {
		sec := &sections[i]
		switch sec.Tag {
		case TagNode:
			if err := b.addNode(sec); err != nil {
				return nil, nil, err
			}
		case TagConnection:
			b.addConnection(sec)
		}
	}
	log.Debugf("scene graph: %d nodes, %d connections", len(b.byPath), len(b.connections))
	return b.root, b.connections, nil
}

func (b *sceneBuilder) addNode(sec *Section) error {
	name := sec.Attr("name")
	if name == "" {
		return malformedAt(sec.Pos, "[node] without name")
	}
	n := &Node{
		Name:       name,
		Type:       sec.Attr("type"),
		Attrs:      sec.Attrs,
		Properties: sec.properties(),
		Pos:        sec.Pos,
	}
	if v, ok := n.Properties.Get("position"); ok {
		p, err := v.Vector2()
		if err != nil {
			return errorAt(sec.Pos, fmt.Errorf("node %q position: %w", name, err))
		}
		n.Position = p
	}
	if v, ok := sec.Attrs.Get("groups"); ok {
		items, err := v.Array()
		if err != nil {
			return errorAt(sec.Pos, fmt.Errorf("node %q groups: %w", name, err))
		}
		for _, item := range items {
			g, err := item.Text()
			if err != nil {
				return errorAt(sec.Pos, fmt.Errorf("node %q groups: %w", name, err))
			}
			n.Groups = append(n.Groups, g)
		}
	}

	parentPath, hasParent := sec.Attrs.Get("parent")
	if !hasParent {
		if b.root != nil {
			return malformedAt(sec.Pos, "second root node %q (root is %q)", name, b.root.Name)
		}
		n.path = RootPath
		b.root = n
		b.byPath[RootPath] = n
		return nil
	}

	pp, err := parentPath.Text()
	if err != nil {
		return errorAt(sec.Pos, fmt.Errorf("node %q parent: %w", name, err))
	}
	parent, ok := b.byPath[pp]
	if !ok {
		return errorAt(sec.Pos, fmt.Errorf("%w: node %q names parent %q", ErrUnresolvedParent, name, pp))
	}
	n.path = name
	if parent != b.root {
		n.path = parent.path + "/" + name
	}
	if _, dup := b.byPath[n.path]; dup {
		return malformedAt(sec.Pos, "duplicate node path %q", n.path)
	}
	n.parent = parent
	parent.children = append(parent.children, n)
	b.byPath[n.path] = n
	return nil
}

func (b *sceneBuilder) addConnection(sec *Section) {
	c := Connection{
		Signal: sec.Attr("signal"),
		From:   sec.Attr("from"),
		To:     sec.Attr("to"),
		Method: sec.Attr("method"),
	}
	if v, ok := sec.Attrs.Get("flags"); ok {
		if f, err := v.Int(); err == nil {
			c.Flags = int(f)
		}
	}
	b.connections = append(b.connections, c)
}
