package tscnscene

import (
	"bytes"
	"encoding/base64"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// scanner walks a document byte by byte, tracking line and column.
type scanner struct {
	file string
	src  []byte
	off  int
	line int
	col  int
}

func newScanner(file string, src []byte) *scanner {
	s := &scanner{file: file, src: src, line: 1, col: 1}
	if bytes.HasPrefix(src, []byte("\xef\xbb\xbf")) {
		s.off = 3
	}
	return s
}

func (s *scanner) pos() Position {
	return Position{File: s.file, Offset: s.off, Line: s.line, Column: s.col}
}

func (s *scanner) eof() bool {
	return s.off >= len(s.src)
}

func (s *scanner) peek() byte {
	return s.peekAt(0)
}

func (s *scanner) peekAt(n int) byte {
	if s.off+n >= len(s.src) {
		return 0
	}
	return s.src[s.off+n]
}

func (s *scanner) next() byte {
	if s.eof() {
		return 0
	}
	c := s.src[s.off]
	s.off++
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return c
}

// skipBlank skips spaces and tabs on the current line.
func (s *scanner) skipBlank() {
	for {
		switch s.peek() {
		case ' ', '\t', '\r':
			s.next()
		default:
			return
		}
	}
}

// skipSpace skips all whitespace including line breaks.
func (s *scanner) skipSpace() {
	for {
		switch s.peek() {
		case ' ', '\t', '\r', '\n':
			s.next()
		default:
			return
		}
	}
}

func (s *scanner) skipLine() {
	for !s.eof() && s.peek() != '\n' {
		s.next()
	}
}

func (s *scanner) expect(c byte) error {
	if s.peek() != c {
		return s.unexpected("expected %q", c)
	}
	s.next()
	return nil
}

func (s *scanner) unexpected(format string, args ...any) error {
	if s.eof() {
		return malformedAt(s.pos(), format+", got end of input", args...)
	}
	r, _ := utf8.DecodeRune(s.src[s.off:])
	return malformedAt(s.pos(), format+", got %q", append(args, r)...)
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (s *scanner) readIdent() string {
	start := s.off
	for isIdentPart(s.peek()) {
		s.next()
	}
	return string(s.src[start:s.off])
}

func (s *scanner) readString() (string, error) {
	start := s.pos()
	if err := s.expect('"'); err != nil {
		return "", err
	}
	var sb strings.Builder
	for {
		if s.eof() {
			return "", malformedAt(start, "unterminated string")
		}
		c := s.next()
		switch c {
		case '"':
			return sb.String(), nil
		case '\\':
			if err := s.readEscape(&sb); err != nil {
				return "", err
			}
		default:
			sb.WriteByte(c)
		}
	}
}

func (s *scanner) readEscape(sb *strings.Builder) error {
	pos := s.pos()
	c := s.next()
	switch c {
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case '"', '\\', '\'', '/':
		sb.WriteByte(c)
	case 'u', 'U':
		n := 4
		if c == 'U' {
			n = 6
		}
		if s.off+n > len(s.src) {
			return malformedAt(pos, "short unicode escape")
		}
		code, err := strconv.ParseUint(string(s.src[s.off:s.off+n]), 16, 32)
		if err != nil {
			return malformedAt(pos, "bad unicode escape")
		}
		for i := 0; i < n; i++ {
			s.next()
		}
		sb.WriteRune(rune(code))
	default:
		return malformedAt(pos, "unknown escape \\%c", c)
	}
	return nil
}

// parseValue reads one literal. Values may span lines.
func (s *scanner) parseValue() (Value, error) {
	return s.parseValueIn(false)
}

func (s *scanner) parseValueIn(inArgs bool) (Value, error) {
	s.skipSpace()
	c := s.peek()
	switch {
	case c == '"':
		str, err := s.readString()
		return StringValue(str), err
	case c == '&' && s.peekAt(1) == '"':
		s.next()
		str, err := s.readString()
		return StringNameValue(str), err
	case c == '^' && s.peekAt(1) == '"':
		s.next()
		str, err := s.readString()
		return NodePathValue(str), err
	case c == '[':
		return s.parseArray()
	case c == '{':
		return s.parseDictionary()
	case c == '-' || c == '+' || c == '.' || isDigit(c):
		return s.parseNumber()
	case isIdentStart(c):
		return s.parseIdentValue(inArgs)
	}
	return Value{}, s.unexpected("expected a value")
}

func (s *scanner) parseNumber() (Value, error) {
	pos := s.pos()
	start := s.off
	if c := s.peek(); c == '-' || c == '+' {
		s.next()
	}
	if isIdentStart(s.peek()) {
		word := s.readIdent()
		if word != "inf" {
			return Value{}, malformedAt(pos, "bad number %q", string(s.src[start:s.off]))
		}
		if s.src[start] == '-' {
			return FloatValue(math.Inf(-1)), nil
		}
		return FloatValue(math.Inf(1)), nil
	}
	isFloat := false
	for {
		c := s.peek()
		switch {
		case isDigit(c):
		case c == '.':
			isFloat = true
		case c == 'e' || c == 'E':
			isFloat = true
			s.next()
			if n := s.peek(); n == '-' || n == '+' {
				s.next()
			}
			continue
		default:
			text := string(s.src[start:s.off])
			if isFloat {
				f, err := strconv.ParseFloat(text, 64)
				if err != nil {
					return Value{}, malformedAt(pos, "bad number %q", text)
				}
				return FloatValue(f), nil
			}
			i, err := strconv.ParseInt(text, 10, 64)
			if err != nil {
				return Value{}, malformedAt(pos, "bad number %q", text)
			}
			return IntValue(i), nil
		}
		s.next()
	}
}

func (s *scanner) parseArray() (Value, error) {
	if err := s.expect('['); err != nil {
		return Value{}, err
	}
	items := []Value{}
	for {
		s.skipSpace()
		if s.peek() == ']' {
			s.next()
			return ArrayValue(items...), nil
		}
		v, err := s.parseValue()
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
		s.skipSpace()
		switch s.peek() {
		case ',':
			s.next()
		case ']':
		default:
			return Value{}, s.unexpected("expected ',' or ']' in array")
		}
	}
}

func (s *scanner) parseDictionary() (Value, error) {
	if err := s.expect('{'); err != nil {
		return Value{}, err
	}
	entries := []DictEntry{}
	for {
		s.skipSpace()
		if s.peek() == '}' {
			s.next()
			return DictionaryValue(entries...), nil
		}
		key, err := s.parseValue()
		if err != nil {
			return Value{}, err
		}
		s.skipSpace()
		if err := s.expect(':'); err != nil {
			return Value{}, err
		}
		val, err := s.parseValue()
		if err != nil {
			return Value{}, err
		}
		entries = append(entries, DictEntry{Key: key, Value: val})
		s.skipSpace()
		switch s.peek() {
		case ',':
			s.next()
		case '}':
		default:
			return Value{}, s.unexpected("expected ',' or '}' in dictionary")
		}
	}
}

func (s *scanner) parseIdentValue(inArgs bool) (Value, error) {
	pos := s.pos()
	name := s.readIdent()
	switch name {
	case "true":
		return BoolValue(true), nil
	case "false":
		return BoolValue(false), nil
	case "null", "nil":
		return NilValue(), nil
	case "inf":
		return FloatValue(math.Inf(1)), nil
	case "inf_neg":
		return FloatValue(math.Inf(-1)), nil
	case "nan":
		return FloatValue(math.NaN()), nil
	}
	s.skipBlank()
	typed := false
	if s.peek() == '[' && (name == "Array" || name == "Dictionary") {
		if err := s.skipBalanced('[', ']'); err != nil {
			return Value{}, err
		}
		typed = true
	}
	if s.peek() != '(' {
		if inArgs && !typed {
			return StringNameValue(name), nil
		}
		return Value{}, s.unexpected("expected '(' after %s", name)
	}
	args, err := s.parseArgs()
	if err != nil {
		return Value{}, err
	}
	if typed {
		if len(args) != 1 {
			return Value{}, malformedAt(pos, "%s expects one argument", name)
		}
		return args[0], nil
	}
	return buildConstructor(pos, name, args)
}

// skipBalanced skips a bracketed group such as the element type of Array[int].
func (s *scanner) skipBalanced(open, close byte) error {
	start := s.pos()
	depth := 0
	for !s.eof() {
		switch s.next() {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return nil
			}
		}
	}
	return malformedAt(start, "unbalanced %q", open)
}

// parseArgs reads a parenthesised argument list. `"key": value` pairs, as
// written by Object(...), are gathered into one Dictionary argument.
func (s *scanner) parseArgs() ([]Value, error) {
	if err := s.expect('('); err != nil {
		return nil, err
	}
	args := []Value{}
	var pairs []DictEntry
	for {
		s.skipSpace()
		if s.peek() == ')' {
			s.next()
			break
		}
		v, err := s.parseValueIn(true)
		if err != nil {
			return nil, err
		}
		s.skipSpace()
		if s.peek() == ':' {
			s.next()
			val, err := s.parseValue()
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, DictEntry{Key: v, Value: val})
			s.skipSpace()
		} else {
			args = append(args, v)
		}
		switch s.peek() {
		case ',':
			s.next()
		case ')':
		default:
			return nil, s.unexpected("expected ',' or ')' in argument list")
		}
	}
	if pairs != nil {
		args = append(args, DictionaryValue(pairs...))
	}
	return args, nil
}

func buildConstructor(pos Position, name string, args []Value) (Value, error) {
	switch name {
	case "Vector2":
		nums, err := floatArgs(pos, name, args, 2)
		return Value{kind: KindVector2, nums: nums}, err
	case "Vector2i":
		nums, err := intArgs(pos, name, args, 2)
		return Value{kind: KindVector2i, nums: nums}, err
	case "Rect2", "Rect2i":
		nums, err := floatArgs(pos, name, args, 4)
		return Value{kind: KindRect2, nums: nums}, err
	case "Color":
		if len(args) == 3 {
			args = append(args, FloatValue(1))
		}
		nums, err := floatArgs(pos, name, args, 4)
		return Value{kind: KindColor, nums: nums}, err
	case "PackedInt32Array", "PoolIntArray":
		words := make([]int32, len(args))
		for i, a := range args {
			n, err := a.Int()
			if err != nil {
				return Value{}, errorAt(pos, err)
			}
			if n < math.MinInt32 || n > math.MaxInt32 {
				return Value{}, malformedAt(pos, "%s element %d out of 32-bit range: %d", name, i, n)
			}
			words[i] = int32(n)
		}
		return PackedInt32Value(words...), nil
	case "PackedInt64Array":
		ints, err := int64Args(pos, args)
		return Value{kind: KindPackedInt64, i64: ints}, err
	case "PackedByteArray", "PoolByteArray":
		if len(args) == 1 && args[0].kind == KindString {
			raw, err := base64.StdEncoding.DecodeString(args[0].s)
			if err != nil {
				return Value{}, malformedAt(pos, "bad base64 in %s: %v", name, err)
			}
			ints := make([]int64, len(raw))
			for i, b := range raw {
				ints[i] = int64(b)
			}
			return Value{kind: KindPackedInt64, i64: ints}, nil
		}
		ints, err := int64Args(pos, args)
		return Value{kind: KindPackedInt64, i64: ints}, err
	case "PackedFloat32Array", "PackedFloat64Array", "PoolRealArray":
		nums, err := floatArgs(pos, name, args, -1)
		return Value{kind: KindPackedFloat, nums: nums}, err
	case "PackedVector2Array", "PoolVector2Array":
		if len(args)%2 != 0 {
			return Value{}, malformedAt(pos, "%s needs an even number of components", name)
		}
		nums, err := floatArgs(pos, name, args, -1)
		return Value{kind: KindPackedVector2, nums: nums}, err
	case "PackedStringArray", "PoolStringArray":
		for _, a := range args {
			if _, err := a.Text(); err != nil {
				return Value{}, errorAt(pos, err)
			}
		}
		return ArrayValue(args...), nil
	case "ExtResource", "SubResource":
		if len(args) != 1 {
			return Value{}, malformedAt(pos, "%s expects one identifier", name)
		}
		id, err := identifierText(args[0])
		if err != nil {
			return Value{}, errorAt(pos, err)
		}
		kind := KindSubResource
		if name == "ExtResource" {
			kind = KindExtResource
		}
		return RefValue(kind, id), nil
	case "NodePath", "StringName":
		if len(args) != 1 {
			return Value{}, malformedAt(pos, "%s expects one string", name)
		}
		text, err := args[0].Text()
		if err != nil {
			return Value{}, errorAt(pos, err)
		}
		if name == "NodePath" {
			return NodePathValue(text), nil
		}
		return StringNameValue(text), nil
	}
	return ConstructorValue(name, args...), nil
}

// identifierText normalizes format 2 integer ids and format 3 string ids.
func identifierText(v Value) (string, error) {
	if v.kind == KindInt {
		return strconv.FormatInt(v.i, 10), nil
	}
	return v.Text()
}

func floatArgs(pos Position, name string, args []Value, want int) ([]float64, error) {
	if want >= 0 && len(args) != want {
		return nil, malformedAt(pos, "%s expects %d components, got %d", name, want, len(args))
	}
	nums := make([]float64, len(args))
	for i, a := range args {
		f, err := a.Float()
		if err != nil {
			return nil, errorAt(pos, err)
		}
		nums[i] = f
	}
	return nums, nil
}

func intArgs(pos Position, name string, args []Value, want int) ([]float64, error) {
	if len(args) != want {
		return nil, malformedAt(pos, "%s expects %d components, got %d", name, want, len(args))
	}
	nums := make([]float64, len(args))
	for i, a := range args {
		n, err := a.Int()
		if err != nil {
			return nil, errorAt(pos, err)
		}
		nums[i] = float64(n)
	}
	return nums, nil
}

func int64Args(pos Position, args []Value) ([]int64, error) {
	ints := make([]int64, len(args))
	for i, a := range args {
		n, err := a.Int()
		if err != nil {
			return nil, errorAt(pos, err)
		}
		ints[i] = n
	}
	return ints, nil
}
