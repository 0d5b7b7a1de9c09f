package gen

import (
	"go/format"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/rescue/errors"
	"github.com/wippyai/rescue/gen/internal/emit"
	"github.com/wippyai/rescue/inspect"
)

// DefaultFilename is the generated file name within each package.
const DefaultFilename = "rescue_gen.go"

const header = "// Code generated by rescuegen. DO NOT EDIT."

// Options configures generation.
type Options struct {
	// Filename overrides DefaultFilename.
	Filename string
}

// Eligible reports whether a scanned struct gets a finalizer: it needs
// a rescue binding and at least one marked field. Structs that failed
// Check never reach this point.
func Eligible(s *inspect.Struct) bool {
	return s.FuncName != "" && len(s.Rescuable()) > 0
}

// File renders the generated source for one package. Returns nil when
// the package has nothing to generate.
func File(p *inspect.Package) ([]byte, error) {
	var structs []*inspect.Struct
	for _, s := range p.Structs {
		if Eligible(s) {
			structs = append(structs, s)
		}
	}
	if len(structs) == 0 {
		return nil, nil
	}

	e := emit.NewEmitter()
	e.Linef(header)
	e.Blank()
	e.Linef("package %s", p.Name)

	for _, s := range structs {
		e.Blank()
		emitFinalizer(e, s)
	}

	out, err := format.Source(e.Bytes())
	if err != nil {
		// The emitter produced something gofmt rejects; nothing gets written.
		return nil, errors.New(errors.PhaseGenerate, errors.KindInvalidData).
			Path(p.Name).
			Detail("format generated source").
			Cause(err).
			Build()
	}

	Logger().Debug("generated source",
		zap.String("package", p.Name),
		zap.Int("structs", len(structs)),
		zap.Int("bytes", len(out)))

	return out, nil
}

// Write renders the package's generated file and writes it next to the
// sources. Returns the written path, or "" when there was nothing to
// generate.
func Write(p *inspect.Package, opts Options) (string, error) {
	content, err := File(p)
	if err != nil {
		return "", err
	}
	if content == nil {
		return "", nil
	}

	name := opts.Filename
	if name == "" {
		name = DefaultFilename
	}
	path := filepath.Join(p.Dir, name)

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", errors.WriteFailed(path, err)
	}
	return path, nil
}

// emitFinalizer writes one finalizer in the fixed drop-then-rescue
// order: cleanup, in-place drops, extraction, single rescue call.
func emitFinalizer(e *emit.Emitter, s *inspect.Struct) {
	recv := receiverName(s)
	rescuable := s.Rescuable()
	errVar := pick("err", rescuable, recv)

	names := make([]string, len(rescuable))
	for i, f := range rescuable {
		names[i] = f.Name
	}

	returnsErr := s.CleanupErr || s.RescueErr

	verb := "is"
	if len(names) > 1 {
		verb = "are"
	}
	e.Linef("// %s finalizes the %s. The cleanup routine runs first with full", s.Finalizer, s.Name)
	e.Linef("// access to the instance, remaining fields are destroyed in place, and")
	e.Linef("// %s %s moved out and handed to %s in a single call.", strings.Join(names, ", "), verb, s.FuncName)

	sig := "func (" + recv + " *" + s.Name + ") " + s.Finalizer + "()"
	if returnsErr {
		sig += " error"
	}
	e.Linef("%s {", sig)
	e.In()

	// Step 1: cleanup with the instance still fully intact
	switch {
	case s.CleanupName != "" && s.CleanupErr:
		e.Linef("%s := %s.%s()", errVar, recv, s.CleanupName)
	case s.CleanupName != "":
		e.Linef("%s.%s()", recv, s.CleanupName)
	}

	// Step 2: non-rescuable fields dropped in declaration order
	dropped := false
	for _, f := range s.Fields {
		if f.Rescuable || f.Drop == inspect.DropNone {
			continue
		}
		if !dropped && s.CleanupName != "" {
			e.Blank()
		}
		dropped = true
		emitDrop(e, recv, f)
	}

	// Step 3: rescuable fields moved out, then the instance goes inert
	if s.CleanupName != "" || dropped {
		e.Blank()
	}
	for _, f := range rescuable {
		e.Linef("%s := %s.%s", f.Name, recv, f.Name)
	}
	e.Linef("*%s = %s{}", recv, s.Name)

	// Step 4: the rescue call, exactly once
	e.Blank()
	call := s.FuncName + "(" + strings.Join(names, ", ") + ")"
	switch {
	case s.RescueErr && s.CleanupErr:
		rerrVar := pick("rerr", rescuable, recv)
		e.Linef("if %s := %s; %s == nil {", rerrVar, call, errVar)
		e.In()
		e.Linef("%s = %s", errVar, rerrVar)
		e.Out()
		e.Linef("}")
		e.Linef("return %s", errVar)
	case s.RescueErr:
		e.Linef("return %s", call)
	case s.CleanupErr:
		e.Linef("%s", call)
		e.Linef("return %s", errVar)
	default:
		e.Linef("%s", call)
	}

	e.Out()
	e.Linef("}")
}

func emitDrop(e *emit.Emitter, recv string, f inspect.Field) {
	target := recv + "." + f.Name
	var call string
	switch f.Drop {
	case inspect.DropDropper:
		call = target + ".Drop()"
	case inspect.DropCloser:
		call = "_ = " + target + ".Close()"
	default:
		return
	}

	if f.Nilable {
		e.Linef("if %s != nil {", target)
		e.In()
		e.Linef("%s", call)
		e.Out()
		e.Linef("}")
		return
	}
	e.Linef("%s", call)
}

// receiverName picks the conventional single-letter receiver, stepping
// aside when a field already owns that name.
func receiverName(s *inspect.Struct) string {
	candidate := strings.ToLower(s.Name[:1])
	for _, f := range s.Fields {
		if f.Name == candidate {
			return "recv"
		}
	}
	return candidate
}

// pick returns the first variable name not shadowed by an extracted
// field or the receiver.
func pick(base string, fields []inspect.Field, recv string) string {
	name := base
	for taken(name, fields, recv) {
		name = "_" + name
	}
	return name
}

func taken(name string, fields []inspect.Field, recv string) bool {
	if name == recv {
		return true
	}
	for _, f := range fields {
		if f.Name == name {
			return true
		}
	}
	return false
}
