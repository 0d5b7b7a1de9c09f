package inspect

import (
	"go/ast"
	"go/token"
	"go/types"
	"sort"
	"strings"

	"github.com/wippyai/rescue/errors"
	"github.com/wippyai/rescue/inspect/internal/directive"
)

// Scan walks a package's syntax and collects every struct carrying
// rescue directives. Malformed directives become findings; the struct is
// still reported so later diagnostics have something to attach to.
func Scan(src *Source) (*Package, []errors.Finding) {
	p := &Package{
		Name: src.Types.Name(),
		Path: src.Types.Path(),
		Dir:  src.Dir,
	}

	var findings []errors.Finding
	for _, file := range src.Files {
		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				st, ok := ts.Type.(*ast.StructType)
				if !ok {
					continue
				}

				doc := ts.Doc
				if doc == nil && len(gd.Specs) == 1 {
					doc = gd.Doc
				}

				s, fs := scanStruct(src, ts, st, doc)
				findings = append(findings, fs...)
				if s != nil {
					p.Structs = append(p.Structs, s)
				}
			}
		}
	}

	// Deterministic output regardless of file order
	sort.Slice(p.Structs, func(i, j int) bool {
		return p.Structs[i].Name < p.Structs[j].Name
	})

	return p, findings
}

// scanStruct returns nil when the struct carries no rescue directives.
func scanStruct(src *Source, ts *ast.TypeSpec, st *ast.StructType, doc *ast.CommentGroup) (*Struct, []errors.Finding) {
	name := ts.Name.Name
	s := &Struct{Name: name}
	var findings []errors.Finding
	annotated := false

	fail := func(err *errors.Error) {
		findings = append(findings, errors.Finding{Struct: name, Err: err})
	}

	pos := src.Fset.Position(ts.Pos())
	s.File = pos.Filename
	s.Line = pos.Line

	if obj, ok := src.Info.Defs[ts.Name]; ok {
		if named, ok := obj.Type().(*types.Named); ok {
			s.Named = named
		}
	}

	// Type-level directives
	seen := map[directive.Kind]bool{}
	for _, d := range parseComments(src, doc, name, &findings) {
		annotated = true
		if d.Kind == directive.Field {
			fail(errors.DirectiveInvalid([]string{name}, "rescue:field must be attached to a field"))
			continue
		}
		if seen[d.Kind] {
			fail(errors.DirectiveInvalid([]string{name}, "duplicate rescue:"+d.Kind.String()))
			continue
		}
		seen[d.Kind] = true
		switch d.Kind {
		case directive.Func:
			s.FuncName = d.Arg
		case directive.Cleanup:
			s.CleanupName = d.Arg
		case directive.Finalizer:
			s.Finalizer = d.Arg
		}
	}

	// Fields in declaration order
	for _, field := range st.Fields.List {
		marked := false
		for _, cg := range []*ast.CommentGroup{field.Doc, field.Comment} {
			for _, d := range parseComments(src, cg, name, &findings) {
				annotated = true
				if d.Kind != directive.Field {
					fail(errors.DirectiveInvalid([]string{name}, "rescue:"+d.Kind.String()+" must be attached to the type"))
					continue
				}
				if marked {
					fail(errors.FieldDuplicate([]string{name}, fieldLabel(field)))
					continue
				}
				marked = true
			}
		}

		ftype := src.Info.TypeOf(field.Type)
		fpos := src.Fset.Position(field.Pos())

		if len(field.Names) == 0 {
			if marked {
				fail(errors.Unsupported(errors.PhaseCheck, "rescue:field on embedded field "+fieldLabel(field)))
			}
			s.Fields = append(s.Fields, Field{
				Name:     fieldLabel(field),
				Type:     ftype,
				TypeStr:  typeStr(src, ftype),
				Line:     fpos.Line,
				Drop:     dropKind(ftype),
				Embedded: true,
				Nilable:  nilable(ftype),
			})
			continue
		}

		for _, id := range field.Names {
			s.Fields = append(s.Fields, Field{
				Name:      id.Name,
				Type:      ftype,
				TypeStr:   typeStr(src, ftype),
				Line:      fpos.Line,
				Drop:      dropKind(ftype),
				Rescuable: marked,
				Nilable:   nilable(ftype),
			})
		}
	}

	if !annotated {
		return nil, findings
	}
	return s, findings
}

// parseComments extracts rescue directives from a comment group,
// recording malformed ones as findings.
func parseComments(src *Source, cg *ast.CommentGroup, structName string, findings *[]errors.Finding) []*directive.Directive {
	if cg == nil {
		return nil
	}
	var out []*directive.Directive
	for _, c := range cg.List {
		if !strings.HasPrefix(c.Text, "//") {
			continue
		}
		line := src.Fset.Position(c.Pos()).Line
		d, ok, err := directive.Parse(c.Text[2:], line)
		if err != nil {
			*findings = append(*findings, errors.Finding{
				Struct: structName,
				Err:    errors.DirectiveInvalid([]string{structName}, err.Error()),
			})
			continue
		}
		if ok {
			out = append(out, d)
		}
	}
	return out
}

func fieldLabel(field *ast.Field) string {
	if len(field.Names) > 0 {
		return field.Names[0].Name
	}
	// Embedded: use the type's printed form
	switch t := field.Type.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		if id, ok := t.X.(*ast.Ident); ok {
			return id.Name
		}
	case *ast.SelectorExpr:
		return t.Sel.Name
	}
	return "embedded"
}

func typeStr(src *Source, t types.Type) string {
	if t == nil {
		return "invalid"
	}
	return types.TypeString(t, types.RelativeTo(src.Types))
}

var errorType = types.Universe.Lookup("error").Type()

func nilable(t types.Type) bool {
	if t == nil {
		return false
	}
	switch t.Underlying().(type) {
	case *types.Pointer, *types.Interface:
		return true
	}
	return false
}

// dropKind reports how a field value can be destroyed in place.
// Pointer-receiver methods count: fields are reached through the
// finalizer's pointer receiver, so they are addressable.
func dropKind(t types.Type) DropKind {
	if t == nil {
		return DropNone
	}

	ms := types.NewMethodSet(t)
	switch t.Underlying().(type) {
	case *types.Pointer, *types.Interface:
	default:
		ms = types.NewMethodSet(types.NewPointer(t))
	}

	if sel := ms.Lookup(nil, "Drop"); sel != nil {
		if sig, ok := sel.Obj().Type().(*types.Signature); ok &&
			sig.Params().Len() == 0 && sig.Results().Len() == 0 {
			return DropDropper
		}
	}
	if sel := ms.Lookup(nil, "Close"); sel != nil {
		if sig, ok := sel.Obj().Type().(*types.Signature); ok &&
			sig.Params().Len() == 0 && sig.Results().Len() == 1 &&
			types.Identical(sig.Results().At(0).Type(), errorType) {
			return DropCloser
		}
	}
	return DropNone
}
