package emit

import (
	"bytes"
	"fmt"
)

// Emitter builds Go source text line by line with tracked indentation.
type Emitter struct {
	buf    bytes.Buffer
	indent int
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Linef appends one indented line.
func (e *Emitter) Linef(format string, args ...any) *Emitter {
	for i := 0; i < e.indent; i++ {
		e.buf.WriteByte('\t')
	}
	if len(args) > 0 {
		fmt.Fprintf(&e.buf, format, args...)
	} else {
		e.buf.WriteString(format)
	}
	e.buf.WriteByte('\n')
	return e
}

// Blank appends an empty line.
func (e *Emitter) Blank() *Emitter {
	e.buf.WriteByte('\n')
	return e
}

// In increases the indent level.
func (e *Emitter) In() *Emitter {
	e.indent++
	return e
}

// Out decreases the indent level.
func (e *Emitter) Out() *Emitter {
	if e.indent > 0 {
		e.indent--
	}
	return e
}

// Len returns the number of buffered bytes.
func (e *Emitter) Len() int {
	return e.buf.Len()
}

// Bytes returns the buffered source.
func (e *Emitter) Bytes() []byte {
	return e.buf.Bytes()
}

// String returns the buffered source as a string.
func (e *Emitter) String() string {
	return e.buf.String()
}

// Reset clears the buffer and indentation.
func (e *Emitter) Reset() {
	e.buf.Reset()
	e.indent = 0
}
