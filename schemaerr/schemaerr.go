// Package schemaerr defines the closed set of error kinds a Builder can
// report (spec.md §7). It plays the role the teacher's reporter package
// plays for protocompile's diagnostics, minus source-position tracking:
// there is no text source backing a JSON- or parser-supplied descriptor, so
// an *Error carries a fully-qualified name instead of a line/column.
package schemaerr

import "fmt"

// Kind is one of the error kinds enumerated in spec.md §7.
type Kind int

const (
	_ Kind = iota
	IllegalNamespace
	DuplicateFieldID
	IllegalOptions
	IllegalOneOf
	IllegalExtensionRange
	ExtendedNotDefined
	InvalidDefinition
	UnresolvableType
	IllegalKeyType
	SyntaxMismatch
	ImportMissing
	ImportRootUnknown
	Reentrant
)

var kindMessages = map[Kind]string{
	IllegalNamespace:      "illegal namespace",
	DuplicateFieldID:      "duplicate field id",
	IllegalOptions:        "illegal options",
	IllegalOneOf:          "illegal oneof",
	IllegalExtensionRange: "illegal extended field id",
	ExtendedNotDefined:    "extended message not defined",
	InvalidDefinition:     "not a valid definition",
	UnresolvableType:      "unresolvable type",
	IllegalKeyType:        "illegal key type",
	SyntaxMismatch:        "syntax mismatch",
	ImportMissing:         "import missing",
	ImportRootUnknown:     "import root unknown",
	Reentrant:             "concurrent or reentrant call",
}

func (k Kind) String() string {
	if s, ok := kindMessages[k]; ok {
		return s
	}
	return fmt.Sprintf("schemaerr.Kind(%d)", int(k))
}

// Error is a fatal, synchronous builder error (spec.md §7: "All errors are
// synchronous and fatal to the current call").
type Error struct {
	Kind   Kind
	Name   string // the offending fully-qualified or dotted name, if any
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Name != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Name)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is supports errors.Is(err, schemaerr.Sentinel(schemaerr.IllegalOneOf))-style
// checks: a target *Error matches when its Kind equals e's Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New constructs an *Error of the given kind, naming the offending element.
func New(kind Kind, name string, detailFormat string, args ...any) *Error {
	return &Error{Kind: kind, Name: name, Detail: fmt.Sprintf(detailFormat, args...)}
}

// Wrap constructs an *Error of the given kind, wrapping an underlying cause
// (used when a collaborator, e.g. the resource loader, itself failed).
func Wrap(kind Kind, name string, cause error) *Error {
	return &Error{Kind: kind, Name: name, Cause: cause}
}

// Sentinel returns a comparable *Error value for use with errors.Is, e.g.
// errors.Is(err, schemaerr.Sentinel(schemaerr.DuplicateFieldID)).
func Sentinel(kind Kind) *Error {
	return &Error{Kind: kind}
}
