package plsqlerrors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKinds_MatchTheirErrorType(t *testing.T) {
	cases := []struct {
		err  interface{ Kind() Kind }
		kind Kind
	}{
		{&MalformedSourceError{Line: 3, Col: 7}, KindMalformedSource},
		{&UnterminatedRoutineError{Routine: "bump"}, KindUnterminatedRoutine},
		{&ParseError{Routine: "bump", Offset: 12, Msg: "unexpected token"}, KindParseError},
		{&UnknownReferenceError{RefKind: "column", Name: "dept_id", Routine: "bump"}, KindUnknownReference},
		{&UnsupportedConstructError{Construct: "BULK COLLECT", Routine: "bump"}, KindUnsupportedConstruct},
		{&TransformInconsistencyError{Routine: "bump", Detail: "unbalanced END"}, KindTransformInconsistency},
		{&StorageMissError{Qualified: "hr.emp_pkg.bump"}, KindStorageMiss},
	}
	for _, c := range cases {
		assert.Equal(t, c.kind, c.err.Kind())
	}
}

func TestParseError_MessageIncludesRoutineAndOffset(t *testing.T) {
	err := &ParseError{Routine: "hr.emp_pkg.bump", Offset: 42, Msg: "unexpected END"}
	assert.Contains(t, err.Error(), "hr.emp_pkg.bump")
	assert.Contains(t, err.Error(), "42")
	assert.Contains(t, err.Error(), "unexpected END")
}

func TestParseError_OmitsRoutineWhenAbsent(t *testing.T) {
	err := &ParseError{Offset: 5, Msg: "bad token"}
	assert.NotContains(t, err.Error(), " in ")
}

func TestUnsupportedConstructError_IncludesHintWhenPresent(t *testing.T) {
	withHint := &UnsupportedConstructError{Construct: "FORALL", Routine: "bump", Hint: "rewrite as a loop"}
	assert.Contains(t, withHint.Error(), "rewrite as a loop")

	withoutHint := &UnsupportedConstructError{Construct: "FORALL", Routine: "bump"}
	assert.NotContains(t, withoutHint.Error(), ":")
}
