package scanner

import (
	"testing"

	"github.com/ora2pg/plsqlcore/metadata"
	"github.com/ora2pg/plsqlcore/plsqlerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanRoutines_SimpleProcedure(t *testing.T) {
	src := `
PROCEDURE greet(p_name IN VARCHAR2) IS
BEGIN
  NULL;
END greet;
`
	segs, err := ScanRoutines(src)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, "greet", segs[0].Name)
	assert.Equal(t, metadata.KindProcedure, segs[0].Kind)
	assert.Contains(t, segs[0].Body(src), "NULL;")
}

func TestScanRoutines_ForwardDeclarationDiscarded(t *testing.T) {
	src := `
FUNCTION fib(n IN NUMBER) RETURN NUMBER;

FUNCTION fib(n IN NUMBER) RETURN NUMBER IS
BEGIN
  IF n <= 1 THEN
    RETURN n;
  END IF;
  RETURN fib(n-1) + fib(n-2);
END fib;
`
	segs, err := ScanRoutines(src)
	require.NoError(t, err)
	require.Len(t, segs, 1, "forward declaration must not produce a segment")
	assert.Equal(t, "fib", segs[0].Name)
}

func TestScanRoutines_EndIfLoopCaseDoNotCloseBody(t *testing.T) {
	src := `
PROCEDURE p1 IS
BEGIN
  FOR i IN 1..10 LOOP
    IF i = 1 THEN
      CASE i
        WHEN 1 THEN NULL;
        ELSE NULL;
      END CASE;
    END IF;
  END LOOP;
END p1;
`
	segs, err := ScanRoutines(src)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, "p1", segs[0].Name)
	assert.Contains(t, segs[0].Body(src), "END LOOP")
}

func TestScanRoutines_NestedBeginEnd(t *testing.T) {
	src := `
PROCEDURE outer_proc IS
BEGIN
  BEGIN
    NULL;
  END;
  NULL;
END outer_proc;
`
	segs, err := ScanRoutines(src)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, "outer_proc", segs[0].Name)
}

func TestScanRoutines_MultipleSegmentsNonOverlapping(t *testing.T) {
	src := `
PROCEDURE p1 IS
BEGIN
  NULL;
END p1;

FUNCTION f1 RETURN NUMBER IS
BEGIN
  RETURN 1;
END f1;
`
	segs, err := ScanRoutines(src)
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, "p1", segs[0].Name)
	assert.Equal(t, "f1", segs[1].Name)
	assert.LessOrEqual(t, segs[0].End, segs[1].Start, "segments must not overlap")
}

func TestScanRoutines_Overloads(t *testing.T) {
	src := `
FUNCTION area(side IN NUMBER) RETURN NUMBER IS
BEGIN
  RETURN side * side;
END area;

FUNCTION area(w IN NUMBER, h IN NUMBER) RETURN NUMBER IS
BEGIN
  RETURN w * h;
END area;
`
	segs, err := ScanRoutines(src)
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, 0, segs[0].Overload)
	assert.Equal(t, 1, segs[1].Overload)
}

func TestScanRoutines_UnterminatedBody(t *testing.T) {
	src := `
PROCEDURE broken IS
BEGIN
  NULL;
`
	_, err := ScanRoutines(src)
	require.Error(t, err)
	var uerr *plsqlerrors.UnterminatedRoutineError
	require.ErrorAs(t, err, &uerr)
}

func TestScanRoutines_StringLiteralOpaqueToKeywords(t *testing.T) {
	src := `
PROCEDURE p1 IS
  v VARCHAR2(40) := 'BEGIN END IF LOOP CASE';
BEGIN
  NULL;
END p1;
`
	segs, err := ScanRoutines(src)
	require.NoError(t, err)
	require.Len(t, segs, 1)
}

func TestScanMethods_MemberAndStaticAndConstructor(t *testing.T) {
	src := `
MEMBER FUNCTION get_salary RETURN NUMBER IS
BEGIN
  RETURN 100;
END get_salary;

STATIC PROCEDURE reset_counter IS
BEGIN
  NULL;
END reset_counter;

CONSTRUCTOR FUNCTION employee_type(id IN NUMBER) RETURN SELF AS RESULT IS
BEGIN
  RETURN;
END;
`
	segs, err := ScanMethods(src, "employee_type")
	require.NoError(t, err)
	require.Len(t, segs, 3)
	assert.Equal(t, metadata.KindMemberFunction, segs[0].Kind)
	assert.Equal(t, metadata.KindStaticProcedure, segs[1].Kind)
	assert.Equal(t, metadata.KindConstructor, segs[2].Kind)
	assert.Equal(t, "employee_type", segs[2].Name)
}
