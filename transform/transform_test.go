package transform

import (
	"testing"

	"github.com/ora2pg/plsqlcore/metadata"
	"github.com/ora2pg/plsqlcore/oracleparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hrIndex() *metadata.Index {
	rows := metadata.DictionaryRows{
		Columns: []metadata.ColumnRow{
			{Owner: "hr", TableName: "emp", ColumnName: "salary", DataType: "NUMBER"},
			{Owner: "hr", TableName: "emp", ColumnName: "dept_id", DataType: "NUMBER"},
			{Owner: "hr", TableName: "langtable", ColumnName: "nr", DataType: "NUMBER"},
			{Owner: "hr", TableName: "langtable", ColumnName: "langy", DataType: "LANGY_TYPE"},
		},
		Objects: []metadata.ObjectRow{
			{Owner: "hr", ObjectName: "langy_type", ObjectType: "TYPE"},
		},
		TypeAttrs: []metadata.TypeAttributeRow{
			{Owner: "hr", TypeName: "langy_type", AttributeName: "de", AttributeType: "VARCHAR2"},
			{Owner: "hr", TypeName: "langy_type", AttributeName: "en", AttributeType: "VARCHAR2"},
		},
	}
	return metadata.Build(rows)
}

// S1 (cursor attribute + DML).
func TestTransform_S1_CursorAttributeAndDML(t *testing.T) {
	idx := hrIndex()
	src := `PROCEDURE bump IS
BEGIN
  UPDATE emp SET salary = salary * 1.1 WHERE dept_id = 10;
  IF SQL%FOUND THEN
    RETURN SQL%ROWCOUNT;
  END IF;
END bump;
`
	_, block, err := oracleparse.ParseRoutine(src, "bump")
	require.NoError(t, err)

	ctx := NewContext("hr", "bump", idx)
	out, err := TransformRoutine(ctx, nil, block)
	require.NoError(t, err)

	assert.Contains(t, out, "UPDATE hr.emp SET salary = salary * 1.1 WHERE dept_id = 10;")
	assert.Contains(t, out, "GET DIAGNOSTICS sql__rowcount = ROW_COUNT;")
	assert.Contains(t, out, "IF (sql__rowcount > 0) THEN")
	assert.Contains(t, out, "RETURN sql__rowcount;")
	assert.NotContains(t, out, "%FOUND")
	assert.NotContains(t, out, "%ROWCOUNT")
}

// §4.7.2/testable property 4: SELECT ... INTO is a DML-equivalent
// implicit cursor, so it must inject GET DIAGNOSTICS exactly like
// INSERT/UPDATE/DELETE do.
func TestTransform_SelectIntoInjectsDiagnostics(t *testing.T) {
	idx := hrIndex()
	src := `PROCEDURE bump IS
  v_salary emp.salary%TYPE;
BEGIN
  SELECT salary INTO v_salary FROM emp WHERE dept_id = 10;
  IF SQL%NOTFOUND THEN
    NULL;
  END IF;
END bump;
`
	_, block, err := oracleparse.ParseRoutine(src, "bump")
	require.NoError(t, err)

	ctx := NewContext("hr", "bump", idx)
	out, err := TransformRoutine(ctx, nil, block)
	require.NoError(t, err)

	assert.Contains(t, out, "SELECT salary INTO v_salary FROM hr.emp WHERE dept_id = 10;")
	assert.Contains(t, out, "GET DIAGNOSTICS sql__rowcount = ROW_COUNT;")
	assert.NotContains(t, out, "%NOTFOUND")
}

// S2 (object field access). The SELECT is written as a cursor
// declaration so the parser's full SELECT grammar (FROM/alias/column
// list) runs without needing a bare top-level SELECT entrypoint.
func TestTransform_S2_ObjectFieldAccess(t *testing.T) {
	idx := hrIndex()
	src := `PROCEDURE q IS
  CURSOR c IS SELECT nr, l.langy.de AS lgde, l.langy.en FROM langtable l;
BEGIN
  NULL;
END q;
`
	_, block, err := oracleparse.ParseRoutine(src, "q")
	require.NoError(t, err)

	ctx := NewContext("hr", "q", idx)
	out, err := TransformRoutine(ctx, nil, block)
	require.NoError(t, err)

	assert.Contains(t, out, "(l.langy).de AS lgde")
	assert.Contains(t, out, "(l.langy).en")
	assert.Contains(t, out, "FROM hr.langtable l")
}

// S3 (user-defined exception).
func TestTransform_S3_UserDefinedException(t *testing.T) {
	idx := metadata.Build(metadata.DictionaryRows{})
	src := `PROCEDURE p IS
  invalid_salary EXCEPTION;
  PRAGMA EXCEPTION_INIT(invalid_salary, -20001);
BEGIN
  RAISE invalid_salary;
EXCEPTION
  WHEN invalid_salary THEN
    NULL;
END p;
`
	_, block, err := oracleparse.ParseRoutine(src, "p")
	require.NoError(t, err)

	ctx := NewContext("hr", "p", idx)
	out, err := TransformRoutine(ctx, nil, block)
	require.NoError(t, err)

	assert.Contains(t, out, "RAISE EXCEPTION 'invalid_salary' USING ERRCODE = 'P0001';")
	assert.Contains(t, out, "WHEN SQLSTATE 'P0001' THEN")
}

// S4 (constructor + method call).
func TestTransform_S4_ConstructorAndMethodCall(t *testing.T) {
	idx := metadata.Build(metadata.DictionaryRows{
		Objects: []metadata.ObjectRow{
			{Owner: "hr", ObjectName: "employee_type", ObjectType: "TYPE"},
		},
	})
	src := `PROCEDURE p IS
  v employee_type;
  s NUMBER;
BEGIN
  v := employee_type(1, 'john');
  s := v.get_salary();
END p;
`
	_, block, err := oracleparse.ParseRoutine(src, "p")
	require.NoError(t, err)

	ctx := NewContext("hr", "p", idx)
	out, err := TransformRoutine(ctx, nil, block)
	require.NoError(t, err)

	assert.Contains(t, out, "v := employee_type__new(1, 'john');")
	assert.Contains(t, out, "s := employee_type__get_salary(v);")
}

// §4.7.6 "method chaining": a.m().n() unflattens into intermediate
// temporaries rather than nested calls.
func TestTransform_MethodChain_UnflattensIntoTemporaries(t *testing.T) {
	idx := metadata.Build(metadata.DictionaryRows{
		Objects: []metadata.ObjectRow{
			{Owner: "hr", ObjectName: "employee_type", ObjectType: "TYPE"},
			{Owner: "hr", ObjectName: "manager_type", ObjectType: "TYPE"},
		},
		TypeMethods: []metadata.TypeMethodRow{
			{Owner: "hr", TypeName: "employee_type", MethodName: "get_manager", MethodType: "MEMBER", MethodNo: 1},
			{Owner: "hr", TypeName: "manager_type", MethodName: "get_name", MethodType: "MEMBER", MethodNo: 1},
		},
		MethodResults: []metadata.MethodResultRow{
			{Owner: "hr", TypeName: "employee_type", MethodName: "get_manager", MethodNo: 1, ResultType: "MANAGER_TYPE"},
			{Owner: "hr", TypeName: "manager_type", MethodName: "get_name", MethodNo: 1, ResultType: "VARCHAR2"},
		},
	})
	src := `PROCEDURE p IS
  v employee_type;
  s VARCHAR2(100);
BEGIN
  s := v.get_manager().get_name();
END p;
`
	_, block, err := oracleparse.ParseRoutine(src, "p")
	require.NoError(t, err)

	ctx := NewContext("hr", "p", idx)
	out, err := TransformRoutine(ctx, nil, block)
	require.NoError(t, err)

	assert.Contains(t, out, "tmp1 := employee_type__get_manager(v);")
	assert.Contains(t, out, "tmp2 := manager_type__get_name(tmp1);")
	assert.Contains(t, out, "s := tmp2;")
	assert.Contains(t, out, "tmp1 manager_type;")
	assert.NotContains(t, out, "manager_type__get_name(employee_type__get_manager(v))")
}

func TestErrCodeFor(t *testing.T) {
	assert.Equal(t, "P0001", ErrCodeFor(-20001))
	assert.Equal(t, "P0042", ErrCodeFor(-20042))
}
