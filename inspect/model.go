package inspect

import (
	"go/ast"
	"go/token"
	"go/types"
)

// DropKind says how a non-rescuable field is destroyed in place.
type DropKind uint8

const (
	// DropNone means the field has no cleanup of its own.
	DropNone DropKind = iota
	// DropCloser means the field implements io.Closer.
	DropCloser
	// DropDropper means the field implements lifecycle.Dropper.
	DropDropper
)

func (k DropKind) String() string {
	switch k {
	case DropNone:
		return "none"
	case DropCloser:
		return "closer"
	case DropDropper:
		return "dropper"
	}
	return "unknown"
}

// Field is one struct field in declaration order.
type Field struct {
	Type      types.Type
	Name      string
	TypeStr   string
	Line      int
	Drop      DropKind
	Rescuable bool
	Embedded  bool
	// Nilable means the field can hold nil and in-place cleanup calls
	// must be guarded (pointer and interface types).
	Nilable bool
}

// Struct is an annotated struct type discovered by Scan.
type Struct struct {
	Named       *types.Named
	Name        string
	File        string
	Line        int
	FuncName    string // rescue function ("" until declared)
	CleanupName string // cleanup method ("" when the type has none)
	Finalizer   string // generated entry point, default "Destroy"
	Fields      []Field
	CleanupErr  bool // cleanup method returns error
	RescueErr   bool // rescue function returns error
}

// Rescuable returns the marked fields in declaration order.
func (s *Struct) Rescuable() []Field {
	var out []Field
	for _, f := range s.Fields {
		if f.Rescuable {
			out = append(out, f)
		}
	}
	return out
}

// Package is the scan result for one Go package.
type Package struct {
	Name    string
	Path    string
	Dir     string
	Structs []*Struct
}

// Source is the raw material Scan works on. Load builds one per
// package; tests can assemble one from parsed and type-checked files
// directly.
type Source struct {
	Fset  *token.FileSet
	Types *types.Package
	Info  *types.Info
	Files []*ast.File
	Dir   string
}
