package inspect

import (
	"go/types"

	"github.com/wippyai/rescue/errors"
)

const defaultFinalizer = "Destroy"
const defaultCleanup = "cleanup"

// Check runs the definition-time validation over scanned structs: the
// rescue function must accept the marked fields' types by value, in
// declaration order, and the cleanup/finalizer bindings must resolve.
// Every violation is reported; none aborts the walk.
func Check(src *Source, p *Package) []errors.Finding {
	var findings []errors.Finding
	for _, s := range p.Structs {
		findings = append(findings, checkStruct(src, s)...)
	}
	return findings
}

func checkStruct(src *Source, s *Struct) []errors.Finding {
	var findings []errors.Finding
	fail := func(err *errors.Error) {
		findings = append(findings, errors.Finding{Struct: s.Name, Err: err})
	}

	if s.Named != nil && s.Named.TypeParams().Len() > 0 {
		fail(errors.Unsupported(errors.PhaseCheck, "type parameters on "+s.Name))
		return findings
	}

	rescuable := s.Rescuable()
	if len(rescuable) > 0 && s.FuncName == "" {
		fail(errors.NoRescueFunc(s.Name))
	}
	if s.FuncName != "" && len(rescuable) == 0 {
		fail(errors.NoRescueFields(s.Name, s.FuncName))
	}

	if s.FuncName != "" && len(rescuable) > 0 {
		findings = append(findings, checkRescueFunc(src, s, rescuable)...)
	}

	findings = append(findings, checkCleanup(src, s)...)
	findings = append(findings, checkFinalizer(src, s)...)
	return findings
}

func checkRescueFunc(src *Source, s *Struct, rescuable []Field) []errors.Finding {
	var findings []errors.Finding
	fail := func(err *errors.Error) {
		findings = append(findings, errors.Finding{Struct: s.Name, Err: err})
	}

	obj := src.Types.Scope().Lookup(s.FuncName)
	if obj == nil {
		fail(errors.NotFound(errors.PhaseCheck, "rescue function", s.FuncName))
		return findings
	}
	fn, ok := obj.(*types.Func)
	if !ok {
		fail(errors.New(errors.PhaseCheck, errors.KindInvalidInput).
			Path(s.Name).
			Detail("%s is not a function", s.FuncName).
			Build())
		return findings
	}

	sig := fn.Type().(*types.Signature)
	if sig.Variadic() {
		fail(errors.Unsupported(errors.PhaseCheck, "variadic rescue function "+s.FuncName))
		return findings
	}

	if sig.Params().Len() != len(rescuable) {
		fail(errors.New(errors.PhaseCheck, errors.KindSignatureMismatch).
			Path(s.Name, s.FuncName).
			Detail("%s takes %d parameter(s), %d field(s) are marked",
				s.FuncName, sig.Params().Len(), len(rescuable)).
			Build())
		return findings
	}

	for i, f := range rescuable {
		param := sig.Params().At(i).Type()
		if f.Type == nil || !types.Identical(param, f.Type) {
			fail(errors.SignatureMismatch(
				[]string{s.Name, f.Name},
				typeStr(src, param),
				f.TypeStr,
			))
		}
	}

	switch sig.Results().Len() {
	case 0:
	case 1:
		if !types.Identical(sig.Results().At(0).Type(), errorType) {
			fail(errors.New(errors.PhaseCheck, errors.KindSignatureMismatch).
				Path(s.Name, s.FuncName).
				GotType(typeStr(src, sig.Results().At(0).Type())).
				WantType("error").
				Detail("result type").
				Build())
		} else {
			s.RescueErr = true
		}
	default:
		fail(errors.New(errors.PhaseCheck, errors.KindSignatureMismatch).
			Path(s.Name, s.FuncName).
			Detail("%s returns %d values, want 0 or 1 error", s.FuncName, sig.Results().Len()).
			Build())
	}

	return findings
}

func checkCleanup(src *Source, s *Struct) []errors.Finding {
	var findings []errors.Finding

	name := s.CleanupName
	explicit := name != ""
	if !explicit {
		name = defaultCleanup
	}

	sig := methodSig(src, s, name)
	if sig == nil {
		if explicit {
			findings = append(findings, errors.Finding{Struct: s.Name, Err: errors.New(errors.PhaseCheck, errors.KindNotFound).
				Path(s.Name).
				Detail("cleanup method %q not found", name).
				Build()})
		}
		s.CleanupName = ""
		return findings
	}

	if sig.Params().Len() != 0 || sig.Results().Len() > 1 ||
		(sig.Results().Len() == 1 && !types.Identical(sig.Results().At(0).Type(), errorType)) {
		findings = append(findings, errors.Finding{Struct: s.Name, Err: errors.New(errors.PhaseCheck, errors.KindInvalidInput).
			Path(s.Name, name).
			Detail("cleanup method must be func() or func() error").
			Build()})
		s.CleanupName = ""
		return findings
	}

	s.CleanupName = name
	s.CleanupErr = sig.Results().Len() == 1
	return findings
}

func checkFinalizer(src *Source, s *Struct) []errors.Finding {
	if s.Finalizer == "" {
		s.Finalizer = defaultFinalizer
	}
	if methodSig(src, s, s.Finalizer) != nil {
		return []errors.Finding{{Struct: s.Name, Err: errors.DirectiveInvalid(
			[]string{s.Name},
			"finalizer "+s.Finalizer+" collides with an existing method",
		)}}
	}
	return nil
}

// methodSig resolves a method on *T, or nil when absent.
func methodSig(src *Source, s *Struct, name string) *types.Signature {
	if s.Named == nil {
		return nil
	}
	ms := types.NewMethodSet(types.NewPointer(s.Named))
	sel := ms.Lookup(src.Types, name)
	if sel == nil {
		return nil
	}
	sig, _ := sel.Obj().Type().(*types.Signature)
	return sig
}
