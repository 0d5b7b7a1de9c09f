package directive

import (
	"strings"
	"unicode"
)

// Kind identifies a directive verb.
type Kind int

const (
	Field     Kind = iota // //rescue:field      marks a rescuable field
	Func                  // //rescue:func F     names the rescue function
	Cleanup               // //rescue:cleanup m  names the cleanup method
	Finalizer             // //rescue:finalizer  names the generated entry point
)

func (k Kind) String() string {
	switch k {
	case Field:
		return "field"
	case Func:
		return "func"
	case Cleanup:
		return "cleanup"
	case Finalizer:
		return "finalizer"
	}
	return "unknown"
}

// Directive is one parsed rescue directive comment.
type Directive struct {
	Kind Kind
	Arg  string
	Line int
}

const prefix = "rescue:"

// Error is a directive syntax error with the offending line.
type Error struct {
	Detail string
	Line   int
}

func (e *Error) Error() string {
	return e.Detail
}

// Parse reads a single comment's text. The leading "//" must already be
// stripped. Returns ok=false when the comment is not a rescue directive
// at all; a malformed rescue directive is an error.
//
// Directive comments follow the Go toolchain convention: no space after
// "//", so "// rescue:field" is prose, not a directive.
func Parse(text string, line int) (*Directive, bool, error) {
	if !strings.HasPrefix(text, prefix) {
		return nil, false, nil
	}
	rest := text[len(prefix):]

	verb, arg := scan(rest)
	if verb == "" {
		return nil, false, &Error{Line: line, Detail: "missing directive verb"}
	}

	var kind Kind
	wantArg := true
	switch verb {
	case "field":
		kind = Field
		wantArg = false
	case "func":
		kind = Func
	case "cleanup":
		kind = Cleanup
	case "finalizer":
		kind = Finalizer
	default:
		return nil, false, &Error{Line: line, Detail: "unknown directive rescue:" + verb}
	}

	if wantArg {
		if arg == "" {
			return nil, false, &Error{Line: line, Detail: "rescue:" + verb + " requires an identifier"}
		}
		if !isIdent(arg) {
			return nil, false, &Error{Line: line, Detail: "rescue:" + verb + ": " + arg + " is not an identifier"}
		}
	} else if arg != "" {
		return nil, false, &Error{Line: line, Detail: "rescue:" + verb + " takes no argument"}
	}

	return &Directive{Kind: kind, Arg: arg, Line: line}, true, nil
}

// scan splits the directive body into the verb and the remaining
// argument text, trimming surrounding space.
func scan(s string) (verb, arg string) {
	i := 0
	for i < len(s) && !unicode.IsSpace(rune(s[i])) {
		i++
	}
	return s[:i], strings.TrimSpace(s[i:])
}

func isIdent(s string) bool {
	for i, r := range s {
		if unicode.IsLetter(r) || r == '_' {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return len(s) > 0
}
