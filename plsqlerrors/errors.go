// Package plsqlerrors defines the error taxonomy used across the
// transformer pipeline (spec §7). Every kind is a distinct Go type so
// callers can switch on it with errors.As; none of them are used for
// routine-internal control flow (spec §9: "no control-flow exception
// is used across routine boundaries").
package plsqlerrors

import "fmt"

// Kind identifies one of the error rows from spec §7.
type Kind string

const (
	KindMalformedSource         Kind = "malformed_source"
	KindUnterminatedRoutine     Kind = "unterminated_routine"
	KindParseError               Kind = "parse_error"
	KindUnknownReference         Kind = "unknown_reference"
	KindUnsupportedConstruct     Kind = "unsupported_construct"
	KindTransformInconsistency   Kind = "transform_inconsistency"
	KindStorageMiss              Kind = "storage_miss"
)

// MalformedSourceError is raised by the cleaner when a string or
// comment literal is never closed. Fatal for the compilation unit
// being cleaned; other units continue.
type MalformedSourceError struct {
	Line, Col int
}

func (e *MalformedSourceError) Error() string {
	return fmt.Sprintf("malformed source at line %d, col %d: unterminated string or comment", e.Line, e.Col)
}

func (e *MalformedSourceError) Kind() Kind { return KindMalformedSource }

// UnterminatedRoutineError is raised by the boundary scanner when a
// routine's body or signature parens never close before EOF.
type UnterminatedRoutineError struct {
	Routine string
}

func (e *UnterminatedRoutineError) Error() string {
	return fmt.Sprintf("unterminated routine %q: reached end of source before closing body", e.Routine)
}

func (e *UnterminatedRoutineError) Kind() Kind { return KindUnterminatedRoutine }

// ParseError wraps a rejection from the grammar parser against a stub
// or a single routine's full source. Fatal for that routine only.
type ParseError struct {
	Routine string
	Offset  int
	Msg     string
}

func (e *ParseError) Error() string {
	if e.Routine != "" {
		return fmt.Sprintf("parse error in %s at offset %d: %s", e.Routine, e.Offset, e.Msg)
	}
	return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Msg)
}

func (e *ParseError) Kind() Kind { return KindParseError }

// UnknownReferenceError records a column/alias/type that could not be
// resolved while rewriting. Non-fatal: the caller passes the
// identifier through unchanged and records this as a warning.
type UnknownReferenceError struct {
	RefKind string // "column", "alias", "type", "synonym"
	Name    string
	Routine string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("unresolved %s %q in %s", e.RefKind, e.Name, e.Routine)
}

func (e *UnknownReferenceError) Kind() Kind { return KindUnknownReference }

// UnsupportedConstructError is raised for constructs with no
// representable PostgreSQL form (spec §1 Non-goals, §4.7.2). Fatal for
// the routine; carries a remediation hint.
type UnsupportedConstructError struct {
	Construct string
	Hint      string
	Routine   string
}

func (e *UnsupportedConstructError) Error() string {
	msg := fmt.Sprintf("unsupported construct %q in %s", e.Construct, e.Routine)
	if e.Hint != "" {
		msg += ": " + e.Hint
	}
	return msg
}

func (e *UnsupportedConstructError) Kind() Kind { return KindUnsupportedConstruct }

// TransformInconsistencyError reports an internal invariant breach
// detected post-visit (e.g. nested block depth / END mismatches).
type TransformInconsistencyError struct {
	Routine string
	Detail  string
}

func (e *TransformInconsistencyError) Error() string {
	return fmt.Sprintf("internal invariant breach in %s: %s", e.Routine, e.Detail)
}

func (e *TransformInconsistencyError) Kind() Kind { return KindTransformInconsistency }

// StorageMissError indicates transform_routine was invoked for a
// routine not present in the RoutineStore: out-of-order invocation.
type StorageMissError struct {
	Qualified string
}

func (e *StorageMissError) Error() string {
	return fmt.Sprintf("routine %q not found in routine store", e.Qualified)
}

func (e *StorageMissError) Kind() Kind { return KindStorageMiss }
