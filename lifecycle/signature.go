package lifecycle

import (
	"reflect"

	"github.com/wippyai/rescue/errors"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// CheckSignature validates a rescue function against the rescuable field
// types, in declaration order, before any instance is created.
//
// The function must accept exactly the field types by value and return
// nothing or a single error. This is the runtime counterpart of the
// generator's definition-time check, for hand-written implementations
// that register instances with a Table directly.
func CheckSignature(fn any, fieldTypes ...reflect.Type) error {
	if fn == nil {
		return errors.InvalidInput(errors.PhaseCheck, "rescue function is nil")
	}

	t := reflect.TypeOf(fn)
	if t.Kind() != reflect.Func {
		return errors.New(errors.PhaseCheck, errors.KindInvalidInput).
			GotType(t.String()).
			WantType("func").
			Build()
	}

	if t.IsVariadic() {
		return errors.Unsupported(errors.PhaseCheck, "variadic rescue function")
	}

	if t.NumIn() != len(fieldTypes) {
		return errors.New(errors.PhaseCheck, errors.KindSignatureMismatch).
			Detail("rescue function takes %d parameter(s), %d field(s) are marked", t.NumIn(), len(fieldTypes)).
			Build()
	}

	for i, want := range fieldTypes {
		if got := t.In(i); got != want {
			return errors.New(errors.PhaseCheck, errors.KindSignatureMismatch).
				GotType(got.String()).
				WantType(want.String()).
				Detail("parameter %d", i).
				Build()
		}
	}

	switch t.NumOut() {
	case 0:
	case 1:
		if t.Out(0) != errType {
			return errors.New(errors.PhaseCheck, errors.KindSignatureMismatch).
				GotType(t.Out(0).String()).
				WantType("error").
				Detail("result type").
				Build()
		}
	default:
		return errors.New(errors.PhaseCheck, errors.KindSignatureMismatch).
			Detail("rescue function returns %d values, want 0 or 1 error", t.NumOut()).
			Build()
	}

	return nil
}
