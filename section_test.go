package tscnscene

import (
	"errors"
	"math"
	"testing"
)

func TestReadSectionsHeadersAndBodies(t *testing.T) {
	src := `[gd_scene load_steps=2 format=3]

; a comment line
[sub_resource type="TileSet" id="TileSet_1"]
tile_size = Vector2i(32, 32)
sources/0 = SubResource("TileSetAtlasSource_1")

[node name="Root" type="Node2D"]
metadata/_edit_lock_ = true
`
	sections, err := ReadSections("test.tscn", []byte(src))
	if err != nil {
		t.Fatalf("ReadSections: %v", err)
	}
	if len(sections) != 3 {
		t.Fatalf("len(sections) = %d, want 3", len(sections))
	}

	tags := []string{TagScene, TagSubResource, TagNode}
	for i, want := range tags {
		if sections[i].Tag != want {
			t.Errorf("sections[%d].Tag = %q, want %q", i, sections[i].Tag, want)
		}
	}
	if got := sections[1].Attr("id"); got != "TileSet_1" {
		t.Errorf("id = %q, want %q", got, "TileSet_1")
	}
	if sections[1].Pos.Line != 4 {
		t.Errorf("sub_resource line = %d, want 4", sections[1].Pos.Line)
	}
	body := sections[1].Body
	if len(body) != 2 || body[1].Key != "sources/0" {
		t.Fatalf("body = %+v, want tile_size and sources/0", body)
	}
	if body[1].Pos.Line != 6 {
		t.Errorf("sources/0 line = %d, want 6", body[1].Pos.Line)
	}
	if sections[2].Body[0].Key != "metadata/_edit_lock_" {
		t.Errorf("key = %q, want metadata/_edit_lock_", sections[2].Body[0].Key)
	}
}

func TestReadSectionsMultilineValues(t *testing.T) {
	src := `[node name="Root" type="Node2D"]
points = PackedVector2Array(0, 0,
	16, 0,
	16, 16)
data = {
"speed": 12.5,
"tags": ["a", "b"]
}
text = "first line
second line"
after = 1
`
	sections, err := ReadSections("multi.tscn", []byte(src))
	if err != nil {
		t.Fatalf("ReadSections: %v", err)
	}
	props := sections[0].properties()
	if got := props.Keys(); len(got) != 4 {
		t.Fatalf("Keys() = %v, want 4 keys", got)
	}

	v, _ := props.Get("points")
	pts, err := v.Vectors()
	if err != nil || len(pts) != 3 || pts[2] != (Vec2{16, 16}) {
		t.Errorf("points = %v, %v", pts, err)
	}
	v, _ = props.Get("data")
	entries, err := v.Dictionary()
	if err != nil || len(entries) != 2 {
		t.Fatalf("data = %v, %v", entries, err)
	}
	if f, _ := entries[0].Value.Float(); f != 12.5 {
		t.Errorf("speed = %v, want 12.5", f)
	}
	v, _ = props.Get("text")
	if s, _ := v.Text(); s != "first line\nsecond line" {
		t.Errorf("text = %q", s)
	}
	v, _ = props.Get("after")
	if n, _ := v.Int(); n != 1 {
		t.Errorf("after = %v, want 1", n)
	}
}

func TestParseValueLiterals(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
		text  string
	}{
		{`42`, KindInt, "42"},
		{`-7`, KindInt, "-7"},
		{`1.5`, KindFloat, "1.5"},
		{`1e-05`, KindFloat, "1e-05"},
		{`-inf`, KindFloat, "-inf"},
		{`true`, KindBool, "true"},
		{`null`, KindNil, "null"},
		{`"a\"b"`, KindString, `"a\"b"`},
		{`&"idle"`, KindStringName, `&"idle"`},
		{`^"Path/To"`, KindNodePath, `NodePath("Path/To")`},
		{`NodePath("A/B")`, KindNodePath, `NodePath("A/B")`},
		{`Vector2(1, -2.5)`, KindVector2, "Vector2(1, -2.5)"},
		{`Vector2i(3, 4)`, KindVector2i, "Vector2i(3, 4)"},
		{`Rect2(0, 0, 8, 8)`, KindRect2, "Rect2(0, 0, 8, 8)"},
		{`Color(1, 0, 0)`, KindColor, "Color(1, 0, 0, 1)"},
		{`PackedInt32Array(0, 65536, -1)`, KindPackedInt32, "PackedInt32Array(0, 65536, -1)"},
		{`PoolIntArray( 1, 2, 3 )`, KindPackedInt32, "PackedInt32Array(1, 2, 3)"},
		{`PackedByteArray("AAEC")`, KindPackedInt64, "PackedInt64Array(0, 1, 2)"},
		{`ExtResource("1_abc")`, KindResourceRef, `ExtResource("1_abc")`},
		{`SubResource( 3 )`, KindResourceRef, `SubResource("3")`},
		{`Array[int]([1, 2])`, KindArray, "[1, 2]"},
		{`PackedStringArray("a", "b")`, KindArray, `["a", "b"]`},
		{`Transform2D(1, 0, 0, 1, 0, 0)`, KindConstructor, "Transform2D(1, 0, 0, 1, 0, 0)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := newScanner("v", []byte(tt.input))
			v, err := s.parseValue()
			if err != nil {
				t.Fatalf("parseValue: %v", err)
			}
			if v.Kind() != tt.kind {
				t.Errorf("Kind = %v, want %v", v.Kind(), tt.kind)
			}
			if v.String() != tt.text {
				t.Errorf("String = %q, want %q", v.String(), tt.text)
			}
		})
	}
}

func TestParseValueNaN(t *testing.T) {
	v, err := newScanner("v", []byte("nan")).parseValue()
	if err != nil {
		t.Fatalf("parseValue: %v", err)
	}
	f, _ := v.Float()
	if !math.IsNaN(f) {
		t.Errorf("Float = %v, want NaN", f)
	}
}

func TestParseValueObjectArguments(t *testing.T) {
	v, err := newScanner("v", []byte(`Object(InputEventKey, "resource_local_to_scene": false, "keycode": 65)`)).parseValue()
	if err != nil {
		t.Fatalf("parseValue: %v", err)
	}
	name, args, err := v.Constructor()
	if err != nil {
		t.Fatalf("Constructor: %v", err)
	}
	if name != "Object" || len(args) != 2 {
		t.Fatalf("Object args = %v", args)
	}
	if args[0].Kind() != KindStringName {
		t.Errorf("args[0].Kind = %v, want StringName", args[0].Kind())
	}
	if entries, err := args[1].Dictionary(); err != nil || len(entries) != 2 {
		t.Errorf("args[1] = %v, %v", entries, err)
	}
}

func TestReadSectionsMalformed(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"empty", "", 1},
		{"assignment before header", "a = 1\n", 1},
		{"unterminated header", "[node name=\"A\"\n", 2},
		{"unterminated string", "[node name=\"A\"]\ntext = \"abc\n", 2},
		{"missing equals", "[node name=\"A\"]\nposition Vector2(1, 2)\n", 2},
		{"unclosed array", "[node name=\"A\"]\ndata = PackedInt32Array(1, 2\n", 3},
		{"trailing garbage", "[node name=\"A\"]\nx = 1 2\n", 2},
		{"int32 overflow", "[node name=\"A\"]\nx = PackedInt32Array(4294967296)\n", 2},
		{"vector arity", "[node name=\"A\"]\nposition = Vector2(1)\n", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSections("bad.tscn", []byte(tt.src))
			if !errors.Is(err, ErrMalformedDocument) {
				t.Fatalf("err = %v, want ErrMalformedDocument", err)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("err = %T, want *ParseError", err)
			}
			if pe.Pos.Line != tt.line {
				t.Errorf("Line = %d, want %d (%v)", pe.Pos.Line, tt.line, err)
			}
		})
	}
}
