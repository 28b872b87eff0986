package tscnscene

import (
	"fmt"
	"sort"
)

// ResourceKind distinguishes external resource declarations from embedded ones.
type ResourceKind string

const (
	KindExtResource ResourceKind = TagExtResource
	KindSubResource ResourceKind = TagSubResource
)

// ResourceKey identifies a declaration; ids are unique per kind.
type ResourceKey struct {
	Kind ResourceKind
	ID   string
}

// ResourceDeclaration is one [ext_resource] or [sub_resource] block.
// Declarations are owned by their ResourceTable and must not be modified.
type ResourceDeclaration struct {
	Kind       ResourceKind
	ID         string
	Type       string
	Path       string // ext_resource only
	UID        string
	Properties *Properties
	Pos        Position
}

func (d *ResourceDeclaration) Key() ResourceKey {
	return ResourceKey{Kind: d.Kind, ID: d.ID}
}

// ResourceTable indexes every declaration of a document by (kind, id). It
// stores no pointers between declarations; references are looked up by key.
type ResourceTable struct {
	decls []*ResourceDeclaration
	index map[ResourceKey]int
	main  *ResourceDeclaration
}

// BuildResourceTable collects every resource declaration of a document.
// References between resources are not followed here, so a resource may
// name another that is declared further down the file.
func BuildResourceTable(sections []Section) (*ResourceTable, error) {
	t := &ResourceTable{index: make(map[ResourceKey]int)}
	var docType string
	for i := range sections {
		sec := &sections[i]
		switch sec.Tag {
		case TagResourceDoc:
			docType = sec.Attr("type")
		case TagResource:
			t.main = &ResourceDeclaration{
				Kind:       TagResource,
				Type:       docType,
				Properties: sec.properties(),
				Pos:        sec.Pos,
			}
		case TagExtResource, TagSubResource:
			decl, err := newDeclaration(sec)
			if err != nil {
				return nil, err
			}
			key := decl.Key()
			if prev, ok := t.index[key]; ok {
				return nil, errorAt(sec.Pos, fmt.Errorf("%w: %s %q already declared at %s",
					ErrDuplicateResourceID, key.Kind, key.ID, t.decls[prev].Pos))
			}
			t.index[key] = len(t.decls)
			t.decls = append(t.decls, decl)
		}
	}
	log.Debugf("resource table: %d declarations", len(t.decls))
	return t, nil
}

func newDeclaration(sec *Section) (*ResourceDeclaration, error) {
	idVal, ok := sec.Attrs.Get("id")
	if !ok {
		return nil, malformedAt(sec.Pos, "[%s] without id", sec.Tag)
	}
	id, err := identifierText(idVal)
	if err != nil {
		return nil, errorAt(sec.Pos, err)
	}
	return &ResourceDeclaration{
		Kind:       ResourceKind(sec.Tag),
		ID:         id,
		Type:       sec.Attr("type"),
		Path:       sec.Attr("path"),
		UID:        sec.Attr("uid"),
		Properties: sec.properties(),
		Pos:        sec.Pos,
	}, nil
}

func (t *ResourceTable) Lookup(kind ResourceKind, id string) (*ResourceDeclaration, bool) {
	i, ok := t.index[ResourceKey{Kind: kind, ID: id}]
	if !ok {
		return nil, false
	}
	return t.decls[i], true
}

func (t *ResourceTable) Resolve(ref ResourceRef) (*ResourceDeclaration, bool) {
	return t.Lookup(ref.Kind, ref.ID)
}

// ResolveValue follows a property holding an ExtResource/SubResource reference.
func (t *ResourceTable) ResolveValue(v Value) (*ResourceDeclaration, error) {
	ref, err := v.Ref()
	if err != nil {
		return nil, err
	}
	decl, ok := t.Resolve(ref)
	if !ok {
		return nil, fmt.Errorf("unresolved %s", ref)
	}
	return decl, nil
}

// OfType returns declarations with the given type in file order.
func (t *ResourceTable) OfType(typ string) []*ResourceDeclaration {
	var out []*ResourceDeclaration
	for _, d := range t.decls {
		if d.Type == typ {
			out = append(out, d)
		}
	}
	return out
}

// All returns every declaration in file order.
func (t *ResourceTable) All() []*ResourceDeclaration {
	return append([]*ResourceDeclaration(nil), t.decls...)
}

func (t *ResourceTable) Len() int {
	return len(t.decls)
}

// Main returns the [resource] block of a .tres document, or nil for scenes.
func (t *ResourceTable) Main() *ResourceDeclaration {
	return t.main
}

// Keys returns all keys sorted by kind then id.
func (t *ResourceTable) Keys() []ResourceKey {
	keys := make([]ResourceKey, 0, len(t.index))
	for k := range t.index {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Kind != keys[j].Kind {
			return keys[i].Kind < keys[j].Kind
		}
		return keys[i].ID < keys[j].ID
	})
	return keys
}
