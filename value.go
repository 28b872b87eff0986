package tscnscene

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind tags the shape held by a Value.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindStringName
	KindNodePath
	KindVector2
	KindVector2i
	KindRect2
	KindColor
	KindArray
	KindDictionary
	KindPackedInt32
	KindPackedInt64
	KindPackedFloat
	KindPackedVector2
	KindResourceRef
	KindConstructor
)

var kindNames = [...]string{
	KindNil:           "Nil",
	KindBool:          "Bool",
	KindInt:           "Int",
	KindFloat:         "Float",
	KindString:        "String",
	KindStringName:    "StringName",
	KindNodePath:      "NodePath",
	KindVector2:       "Vector2",
	KindVector2i:      "Vector2i",
	KindRect2:         "Rect2",
	KindColor:         "Color",
	KindArray:         "Array",
	KindDictionary:    "Dictionary",
	KindPackedInt32:   "PackedInt32Array",
	KindPackedInt64:   "PackedInt64Array",
	KindPackedFloat:   "PackedFloat64Array",
	KindPackedVector2: "PackedVector2Array",
	KindResourceRef:   "ResourceRef",
	KindConstructor:   "Constructor",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ResourceRef points at an ExtResource or SubResource by identifier.
type ResourceRef struct {
	Kind ResourceKind
	ID   string
}

func (r ResourceRef) String() string {
	if r.Kind == KindExtResource {
		return fmt.Sprintf("ExtResource(%q)", r.ID)
	}
	return fmt.Sprintf("SubResource(%q)", r.ID)
}

// DictEntry is one key/value pair of a Dictionary value, kept in source order.
type DictEntry struct {
	Key   Value
	Value Value
}

// Value is a typed literal read from a document. The zero Value is Nil.
type Value struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	s     string
	nums  []float64
	i32   []int32
	i64   []int64
	items []Value
	dict  []DictEntry
	ref   ResourceRef
}

// Constructors for building values in code.

func NilValue() Value { return Value{} }
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }
func StringValue(s string) Value { return Value{kind: KindString, s: s} }
func StringNameValue(s string) Value { return Value{kind: KindStringName, s: s} }
func NodePathValue(s string) Value { return Value{kind: KindNodePath, s: s} }
func Vector2Value(x, y float64) Value {
	return Value{kind: KindVector2, nums: []float64{x, y}}
}
func Vector2iValue(x, y int) Value {
	return Value{kind: KindVector2i, nums: []float64{float64(x), float64(y)}}
}
func ArrayValue(items ...Value) Value { return Value{kind: KindArray, items: items} }
func DictionaryValue(entries ...DictEntry) Value { return Value{kind: KindDictionary, dict: entries} }
func PackedInt32Value(words ...int32) Value { return Value{kind: KindPackedInt32, i32: words} }
func RefValue(kind ResourceKind, id string) Value {
	return Value{kind: KindResourceRef, ref: ResourceRef{Kind: kind, ID: id}}
}
func ConstructorValue(name string, args ...Value) Value {
	return Value{kind: KindConstructor, s: name, items: args}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNil() bool { return v.kind == KindNil }

func (v Value) mismatch(want Kind) error {
	return &TypeMismatchError{Want: want, Got: v.kind}
}

func (v Value) Bool() (bool, error) {
	if v.kind != KindBool {
		return false, v.mismatch(KindBool)
	}
	return v.b, nil
}

func (v Value) Int() (int64, error) {
	if v.kind != KindInt {
		return 0, v.mismatch(KindInt)
	}
	return v.i, nil
}

// Float accepts Int as well; numeric widening is the only conversion Value does.
func (v Value) Float() (float64, error) {
	switch v.kind {
	case KindFloat:
		return v.f, nil
	case KindInt:
		return float64(v.i), nil
	}
	return 0, v.mismatch(KindFloat)
}

// Text returns the payload of a String, StringName or NodePath.
func (v Value) Text() (string, error) {
	switch v.kind {
	case KindString, KindStringName, KindNodePath:
		return v.s, nil
	}
	return "", v.mismatch(KindString)
}

// Vector2 accepts Vector2 and Vector2i.
func (v Value) Vector2() (Vec2, error) {
	if v.kind != KindVector2 && v.kind != KindVector2i {
		return Vec2{}, v.mismatch(KindVector2)
	}
	return Vec2{X: v.nums[0], Y: v.nums[1]}, nil
}

func (v Value) Vector2i() (Vec2i, error) {
	if v.kind != KindVector2i {
		return Vec2i{}, v.mismatch(KindVector2i)
	}
	return Vec2i{X: int(v.nums[0]), Y: int(v.nums[1])}, nil
}

func (v Value) Rect2() (Rect2, error) {
	if v.kind != KindRect2 {
		return Rect2{}, v.mismatch(KindRect2)
	}
	return Rect2{
		Position: Vec2{X: v.nums[0], Y: v.nums[1]},
		Size:     Vec2{X: v.nums[2], Y: v.nums[3]},
	}, nil
}

// Color returns r, g, b, a components.
func (v Value) Color() ([4]float64, error) {
	if v.kind != KindColor {
		return [4]float64{}, v.mismatch(KindColor)
	}
	return [4]float64{v.nums[0], v.nums[1], v.nums[2], v.nums[3]}, nil
}

// Int32s returns the words of a PackedInt32Array without copying.
func (v Value) Int32s() ([]int32, error) {
	if v.kind != KindPackedInt32 {
		return nil, v.mismatch(KindPackedInt32)
	}
	return v.i32, nil
}

// Ints widens PackedInt32Array and returns PackedInt64Array/PackedByteArray data.
func (v Value) Ints() ([]int64, error) {
	switch v.kind {
	case KindPackedInt64:
		return v.i64, nil
	case KindPackedInt32:
		out := make([]int64, len(v.i32))
		for i, w := range v.i32 {
			out[i] = int64(w)
		}
		return out, nil
	}
	return nil, v.mismatch(KindPackedInt64)
}

func (v Value) Floats() ([]float64, error) {
	if v.kind != KindPackedFloat {
		return nil, v.mismatch(KindPackedFloat)
	}
	return v.nums, nil
}

func (v Value) Vectors() ([]Vec2, error) {
	if v.kind != KindPackedVector2 {
		return nil, v.mismatch(KindPackedVector2)
	}
	out := make([]Vec2, len(v.nums)/2)
	for i := range out {
		out[i] = Vec2{X: v.nums[2*i], Y: v.nums[2*i+1]}
	}
	return out, nil
}

func (v Value) Array() ([]Value, error) {
	if v.kind != KindArray {
		return nil, v.mismatch(KindArray)
	}
	return v.items, nil
}

func (v Value) Dictionary() ([]DictEntry, error) {
	if v.kind != KindDictionary {
		return nil, v.mismatch(KindDictionary)
	}
	return v.dict, nil
}

func (v Value) Ref() (ResourceRef, error) {
	if v.kind != KindResourceRef {
		return ResourceRef{}, v.mismatch(KindResourceRef)
	}
	return v.ref, nil
}

// Constructor returns the name and arguments of a constructor call the
// reader has no dedicated shape for, e.g. Transform2D(...).
func (v Value) Constructor() (string, []Value, error) {
	if v.kind != KindConstructor {
		return "", nil, v.mismatch(KindConstructor)
	}
	return v.s, v.items, nil
}

// Interface converts the value to plain Go data suitable for JSON or YAML encoding.
func (v Value) Interface() any {
	switch v.kind {
	case KindNil:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		if math.IsInf(v.f, 0) || math.IsNaN(v.f) {
			return formatFloat(v.f)
		}
		return v.f
	case KindString, KindStringName, KindNodePath:
		return v.s
	case KindVector2:
		return Vec2{X: v.nums[0], Y: v.nums[1]}
	case KindVector2i:
		return Vec2i{X: int(v.nums[0]), Y: int(v.nums[1])}
	case KindRect2:
		r, _ := v.Rect2()
		return r
	case KindColor, KindPackedFloat:
		return v.nums
	case KindPackedInt32:
		return v.i32
	case KindPackedInt64:
		return v.i64
	case KindPackedVector2:
		vs, _ := v.Vectors()
		return vs
	case KindArray:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	case KindDictionary:
		out := make(map[string]any, len(v.dict))
		for _, e := range v.dict {
			key := e.Key.s
			if e.Key.kind != KindString && e.Key.kind != KindStringName {
				key = e.Key.String()
			}
			out[key] = e.Value.Interface()
		}
		return out
	case KindResourceRef:
		return v.ref.String()
	case KindConstructor:
		return v.String()
	}
	return nil
}

// String renders the value close to its document spelling.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindString:
		return strconv.Quote(v.s)
	case KindStringName:
		return "&" + strconv.Quote(v.s)
	case KindNodePath:
		return "NodePath(" + strconv.Quote(v.s) + ")"
	case KindVector2:
		return "Vector2(" + joinFloats(v.nums) + ")"
	case KindVector2i:
		return "Vector2i(" + joinFloats(v.nums) + ")"
	case KindRect2:
		return "Rect2(" + joinFloats(v.nums) + ")"
	case KindColor:
		return "Color(" + joinFloats(v.nums) + ")"
	case KindPackedFloat:
		return "PackedFloat64Array(" + joinFloats(v.nums) + ")"
	case KindPackedVector2:
		return "PackedVector2Array(" + joinFloats(v.nums) + ")"
	case KindPackedInt32:
		parts := make([]string, len(v.i32))
		for i, w := range v.i32 {
			parts[i] = strconv.FormatInt(int64(w), 10)
		}
		return "PackedInt32Array(" + strings.Join(parts, ", ") + ")"
	case KindPackedInt64:
		parts := make([]string, len(v.i64))
		for i, w := range v.i64 {
			parts[i] = strconv.FormatInt(w, 10)
		}
		return "PackedInt64Array(" + strings.Join(parts, ", ") + ")"
	case KindArray:
		parts := make([]string, len(v.items))
		for i, item := range v.items {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindDictionary:
		parts := make([]string, len(v.dict))
		for i, e := range v.dict {
			parts[i] = e.Key.String() + ": " + e.Value.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindResourceRef:
		return v.ref.String()
	case KindConstructor:
		parts := make([]string, len(v.items))
		for i, item := range v.items {
			parts[i] = item.String()
		}
		return v.s + "(" + strings.Join(parts, ", ") + ")"
	}
	return "?"
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func joinFloats(nums []float64) string {
	parts := make([]string, len(nums))
	for i, f := range nums {
		parts[i] = formatFloat(f)
	}
	return strings.Join(parts, ", ")
}

// Properties is an ordered property bag. Assigning a key twice keeps the
// first position and the last value.
type Properties struct {
	keys   []string
	values map[string]Value
}

func newProperties() *Properties {
	return &Properties{values: make(map[string]Value)}
}

func (p *Properties) set(key string, v Value) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = v
}

func (p *Properties) Get(key string) (Value, bool) {
	if p == nil {
		return Value{}, false
	}
	v, ok := p.values[key]
	return v, ok
}

// Keys returns property names in declaration order.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.keys...)
}

func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Map converts the bag to plain Go data for encoding.
func (p *Properties) Map() map[string]any {
	if p.Len() == 0 {
		return nil
	}
	out := make(map[string]any, len(p.keys))
	for _, k := range p.keys {
		out[k] = p.values[k].Interface()
	}
	return out
}
