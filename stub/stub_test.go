package stub

import (
	"strings"
	"testing"

	"github.com/ora2pg/plsqlcore/metadata"
	"github.com/ora2pg/plsqlcore/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_FunctionStubReturnsNull(t *testing.T) {
	seg := scanner.Segment{Name: "fib", Kind: metadata.KindFunction}
	out := Generate(seg, "FUNCTION fib(n IN NUMBER) RETURN NUMBER IS", true)
	assert.Contains(t, out, "RETURN NULL;")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "END fib;"))
}

func TestGenerate_ProcedureStubReturnsBare(t *testing.T) {
	seg := scanner.Segment{Name: "greet", Kind: metadata.KindProcedure}
	out := Generate(seg, "PROCEDURE greet(p_name IN VARCHAR2) IS", false)
	assert.Contains(t, out, "RETURN;")
	assert.NotContains(t, out, "RETURN NULL;")
}

func TestReduce_ExcisesRoutineRangesPreservingOffsets(t *testing.T) {
	src := "PACKAGE BODY p IS\nPROCEDURE q IS\nBEGIN\n  NULL;\nEND q;\nx NUMBER;\nEND p;\n"
	segs, err := scanner.ScanRoutines(src)
	require.NoError(t, err)
	require.Len(t, segs, 1)

	reduced := Reduce(src, segs)
	require.Equal(t, len(src), len(reduced))
	assert.NotContains(t, reduced, "BEGIN")
	assert.Contains(t, reduced, "x NUMBER;")
}
