package oracleparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoutine_ProcedureWithDML(t *testing.T) {
	src := `PROCEDURE bump IS
BEGIN
  UPDATE emp SET salary = salary * 1.1 WHERE dept_id = 10;
END bump;`

	sig, block, err := ParseRoutine(src, "bump")
	require.NoError(t, err)
	assert.Equal(t, "bump", sig.Name)
	assert.Equal(t, "PROCEDURE", sig.Kind)
	assert.Nil(t, sig.ReturnType)
	require.Len(t, block.Body, 1)
}

func TestParseRoutine_FunctionWithParamsAndReturn(t *testing.T) {
	src := `FUNCTION get_salary(emp_id NUMBER) RETURN NUMBER IS
BEGIN
  RETURN emp_id;
END get_salary;`

	sig, block, err := ParseRoutine(src, "get_salary")
	require.NoError(t, err)
	assert.Equal(t, "get_salary", sig.Name)
	require.NotNil(t, sig.ReturnType)
	assert.Equal(t, "NUMBER", sig.ReturnType.Name)
	require.Len(t, sig.Params, 1)
	assert.Equal(t, "emp_id", sig.Params[0].Name)
	require.Len(t, block.Body, 1)
}

func TestParseRoutine_RejectsUnterminatedBlock(t *testing.T) {
	src := `PROCEDURE bump IS
BEGIN
  NULL;`
	_, _, err := ParseRoutine(src, "bump")
	assert.Error(t, err)
}

func TestParseStub_ParsesSignatureOnly(t *testing.T) {
	src := `PROCEDURE bump IS
BEGIN
  RETURN;
END bump;
`
	sig, err := ParseStub(src, "bump")
	require.NoError(t, err)
	assert.Equal(t, "bump", sig.Name)
}

func TestParseReducedBody_ReturnsPackageLevelDeclarations(t *testing.T) {
	src := `invalid_salary EXCEPTION;
PRAGMA EXCEPTION_INIT(invalid_salary, -20001);
`
	decls, err := ParseReducedBody(src, "emp_pkg")
	require.NoError(t, err)
	require.Len(t, decls, 2)
}
