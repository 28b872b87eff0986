package tscnscene

import (
	"errors"
	"fmt"
)

// Fatal structural errors. Everything else a document can get wrong is
// reported through Report and never aborts a parse.
var (
	ErrMalformedDocument   = errors.New("malformed document")
	ErrDuplicateResourceID = errors.New("duplicate resource id")
	ErrUnresolvedParent    = errors.New("unresolved parent")
	ErrMalformedTileData   = errors.New("malformed tile data")
	ErrTypeMismatch        = errors.New("type mismatch")
	ErrNoTriggerShape      = errors.New("no rectangle shape")
)

// ParseError attaches a document position to a fatal error.
type ParseError struct {
	Pos Position
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Pos, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func errorAt(pos Position, err error) error {
	return &ParseError{Pos: pos, Err: err}
}

func malformedAt(pos Position, format string, args ...any) error {
	return &ParseError{Pos: pos, Err: fmt.Errorf("%w: "+format, append([]any{ErrMalformedDocument}, args...)...)}
}

// TypeMismatchError is returned by Value accessors asked for the wrong shape.
type TypeMismatchError struct {
	Want Kind
	Got  Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: want %s, got %s", e.Want, e.Got)
}

func (e *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}
