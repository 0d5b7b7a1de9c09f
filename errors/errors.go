package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse    Phase = "parse"    // directive parsing
	PhaseCheck    Phase = "check"    // definition-time validation
	PhaseGenerate Phase = "generate" // source generation
	PhaseRuntime  Phase = "runtime"  // lifecycle table operations
	PhaseLoad     Phase = "load"     // package loading
)

// Kind categorizes the error
type Kind string

const (
	KindSignatureMismatch Kind = "signature_mismatch"
	KindDirectiveInvalid  Kind = "directive_invalid"
	KindFieldUnknown      Kind = "field_unknown"
	KindFieldDuplicate    Kind = "field_duplicate"
	KindNoRescueFunc      Kind = "no_rescue_func"
	KindNoRescueFields    Kind = "no_rescue_fields"
	KindNotFound          Kind = "not_found"
	KindInvalidInput      Kind = "invalid_input"
	KindInvalidData       Kind = "invalid_data"
	KindUnsupported       Kind = "unsupported"
	KindState             Kind = "state"
	KindTaken             Kind = "taken"
	KindClosed            Kind = "closed"
	KindWriteFailed       Kind = "write_failed"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	GotType  string
	WantType string
	Detail   string
	Path     []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GotType != "" || e.WantType != "" {
		b.WriteString(": ")
		if e.GotType != "" && e.WantType != "" {
			b.WriteString("got ")
			b.WriteString(e.GotType)
			b.WriteString(", want ")
			b.WriteString(e.WantType)
		} else if e.GotType != "" {
			b.WriteString("got ")
			b.WriteString(e.GotType)
		} else {
			b.WriteString("want ")
			b.WriteString(e.WantType)
		}
	}

	if e.Detail != "" {
		if e.GotType != "" || e.WantType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the struct/field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GotType sets the type that was found
func (b *Builder) GotType(t string) *Builder {
	b.err.GotType = t
	return b
}

// WantType sets the type that was expected
func (b *Builder) WantType(t string) *Builder {
	b.err.WantType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// SignatureMismatch creates an error for a rescue function whose parameter
// list does not match the marked fields.
func SignatureMismatch(path []string, gotType, wantType string) *Error {
	return &Error{
		Phase:    PhaseCheck,
		Kind:     KindSignatureMismatch,
		Path:     path,
		GotType:  gotType,
		WantType: wantType,
	}
}

// DirectiveInvalid creates an error for a malformed directive comment
func DirectiveInvalid(path []string, detail string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindDirectiveInvalid,
		Path:   path,
		Detail: detail,
	}
}

// FieldUnknown creates an unknown field error
func FieldUnknown(path []string, fieldName string) *Error {
	return &Error{
		Phase:  PhaseCheck,
		Kind:   KindFieldUnknown,
		Path:   path,
		Detail: fmt.Sprintf("unknown field %q", fieldName),
	}
}

// FieldDuplicate creates a duplicate marker error
func FieldDuplicate(path []string, fieldName string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindFieldDuplicate,
		Path:   path,
		Detail: fmt.Sprintf("field %q marked more than once", fieldName),
	}
}

// NoRescueFunc creates an error for marked fields without a rescue binding
func NoRescueFunc(structName string) *Error {
	return &Error{
		Phase:  PhaseCheck,
		Kind:   KindNoRescueFunc,
		Path:   []string{structName},
		Detail: "fields marked rescuable but no rescue function declared",
	}
}

// NoRescueFields creates an error for a rescue binding with nothing to rescue
func NoRescueFields(structName, funcName string) *Error {
	return &Error{
		Phase:  PhaseCheck,
		Kind:   KindNoRescueFields,
		Path:   []string{structName},
		Detail: fmt.Sprintf("rescue function %q declared but no fields are marked", funcName),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Unsupported creates an unsupported construct error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// State creates an invalid lifecycle transition error
func State(path []string, got, want string) *Error {
	return &Error{
		Phase:    PhaseRuntime,
		Kind:     KindState,
		Path:     path,
		GotType:  got,
		WantType: want,
	}
}

// Taken creates an error for extracting an already-taken cell
func Taken(path []string) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindTaken,
		Path:   path,
		Detail: "value already taken",
	}
}

// Closed creates an error for operations on a closed table
func Closed() *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindClosed,
		Detail: "table closed",
	}
}

// Load creates a package loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// WriteFailed creates a generation output error
func WriteFailed(path string, cause error) *Error {
	return &Error{
		Phase:  PhaseGenerate,
		Kind:   KindWriteFailed,
		Detail: fmt.Sprintf("write %s", path),
		Cause:  cause,
	}
}

// Finding is a single definition-time diagnostic tied to a struct
type Finding struct {
	Struct string // e.g., "Session"
	Err    *Error
}

// CheckError is returned when definition-time validation fails.
// It aggregates all findings so a single run reports every violation.
type CheckError struct {
	Findings []Finding
}

// NewCheckError creates an aggregate error from per-struct findings
func NewCheckError(findings []Finding) *CheckError {
	return &CheckError{Findings: findings}
}

func (e *CheckError) Error() string {
	if len(e.Findings) == 0 {
		return "[check] no findings specified"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d definition-time violation(s):\n", len(e.Findings)))

	// Group by struct for cleaner output
	byStruct := make(map[string][]*Error)
	var order []string
	for _, f := range e.Findings {
		if _, exists := byStruct[f.Struct]; !exists {
			order = append(order, f.Struct)
		}
		byStruct[f.Struct] = append(byStruct[f.Struct], f.Err)
	}

	for _, name := range order {
		b.WriteString("\n  ")
		b.WriteString(name)
		b.WriteString(":\n")
		for _, err := range byStruct[name] {
			b.WriteString("    - ")
			b.WriteString(err.Error())
			b.WriteByte('\n')
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Is reports whether target matches this error type
func (e *CheckError) Is(target error) bool {
	_, ok := target.(*CheckError)
	return ok
}
