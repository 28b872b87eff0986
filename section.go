package tscnscene

import "strings"

// Section tags that carry meaning for the builders.
const (
	TagScene       = "gd_scene"
	TagResourceDoc = "gd_resource"
	TagExtResource = "ext_resource"
	TagSubResource = "sub_resource"
	TagResource    = "resource"
	TagNode        = "node"
	TagConnection  = "connection"
	TagEditable    = "editable"
)

// Assignment is one `key = value` line (or group of lines) of a section body.
type Assignment struct {
	Key   string
	Value Value
	Pos   Position
}

// Section is a bracketed header plus the assignments that follow it.
type Section struct {
	Tag   string
	Attrs *Properties
	Body  []Assignment
	Pos   Position
}

// Attr returns a header attribute as text, or "" when absent or not textual.
func (s *Section) Attr(key string) string {
	v, ok := s.Attrs.Get(key)
	if !ok {
		return ""
	}
	text, err := identifierText(v)
	if err != nil {
		return ""
	}
	return text
}

// properties folds the body into an ordered property bag.
func (s *Section) properties() *Properties {
	props := newProperties()
	for _, a := range s.Body {
		props.set(a.Key, a.Value)
	}
	return props
}

// ReadSections splits a document into its ordered sections.
func ReadSections(file string, src []byte) ([]Section, error) {
	s := newScanner(file, src)
	var sections []Section
	cur := -1
	for {
		s.skipSpace()
		if s.eof() {
			break
		}
		switch s.peek() {
		case ';', '#':
			s.skipLine()
			continue
		case '[':
			sec, err := s.readHeader()
			if err != nil {
				return nil, err
			}
			sections = append(sections, sec)
			cur = len(sections) - 1
			continue
		}
		if cur < 0 {
			return nil, malformedAt(s.pos(), "assignment before the first section header")
		}
		a, err := s.readAssignment()
		if err != nil {
			return nil, err
		}
		sections[cur].Body = append(sections[cur].Body, a)
	}
	if len(sections) == 0 {
		return nil, malformedAt(s.pos(), "no sections")
	}
	return sections, nil
}

func (s *scanner) readHeader() (Section, error) {
	sec := Section{Pos: s.pos(), Attrs: newProperties()}
	s.next()
	s.skipBlank()
	sec.Tag = s.readIdent()
	if sec.Tag == "" {
		return Section{}, s.unexpected("expected section tag")
	}
	for {
		s.skipSpace()
		if s.peek() == ']' {
			s.next()
			break
		}
		if !isIdentStart(s.peek()) {
			return Section{}, s.unexpected("expected attribute name in [%s]", sec.Tag)
		}
		key := s.readIdent()
		s.skipBlank()
		if err := s.expect('='); err != nil {
			return Section{}, err
		}
		v, err := s.parseValue()
		if err != nil {
			return Section{}, err
		}
		sec.Attrs.set(key, v)
	}
	if err := s.endOfLine(); err != nil {
		return Section{}, err
	}
	return sec, nil
}

func (s *scanner) readAssignment() (Assignment, error) {
	a := Assignment{Pos: s.pos()}
	if s.peek() == '"' {
		key, err := s.readString()
		if err != nil {
			return Assignment{}, err
		}
		a.Key = key
		s.skipBlank()
	} else {
		start := s.off
		for !s.eof() && s.peek() != '=' && s.peek() != '\n' {
			s.next()
		}
		a.Key = strings.TrimSpace(string(s.src[start:s.off]))
	}
	if a.Key == "" {
		return Assignment{}, malformedAt(a.Pos, "empty property name")
	}
	if err := s.expect('='); err != nil {
		return Assignment{}, err
	}
	v, err := s.parseValue()
	if err != nil {
		return Assignment{}, err
	}
	a.Value = v
	return a, s.endOfLine()
}

// endOfLine accepts trailing blanks and a comment before the line break.
func (s *scanner) endOfLine() error {
	s.skipBlank()
	switch s.peek() {
	case 0, '\n':
		return nil
	case ';':
		s.skipLine()
		return nil
	}
	return s.unexpected("expected end of line")
}
