package lifecycle

import (
	"io"

	"github.com/wippyai/rescue/errors"
)

// Cell is a deferred-drop wrapper: it holds a value whose default
// destruction is suppressed until Take extracts it by value, exactly once.
//
// Cells exist for generated finalizers; ordinary member code never sees
// one, so a field's absence is never observable before extraction.
type Cell[T any] struct {
	value T
	taken bool
}

// NewCell wraps a value in a deferred-drop cell.
func NewCell[T any](v T) *Cell[T] {
	return &Cell[T]{value: v}
}

// Take moves the value out. The second and any later call fails and
// returns the zero value.
func (c *Cell[T]) Take() (T, error) {
	var zero T
	if c.taken {
		return zero, errors.Taken(nil)
	}
	v := c.value
	c.value = zero
	c.taken = true
	return v, nil
}

// Taken reports whether the value has already been moved out.
func (c *Cell[T]) Taken() bool {
	return c.taken
}

// Drop destroys the held value in place if it was never taken.
// Implements Dropper so an abandoned cell still releases its contents.
func (c *Cell[T]) Drop() {
	if c.taken {
		return
	}
	v, _ := c.Take()
	Release(v)
}

// Release destroys a value in place using its own cleanup, if any.
// Dropper takes precedence over io.Closer; close errors are discarded,
// matching drop semantics.
func Release(v any) {
	switch x := v.(type) {
	case Dropper:
		x.Drop()
	case io.Closer:
		_ = x.Close()
	}
}
