package emit

import (
	"strings"
	"testing"

	"github.com/ora2pg/plsqlcore/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitRoutine_FunctionWrapsBodyInDollarQuote(t *testing.T) {
	u := RoutineUnit{
		Name:       metadata.NewQualifiedName("hr", "get_salary", ""),
		IsFunction: true,
		Params:     []metadata.ParamSig{{Name: "emp_id", Mode: "IN", Type: "numeric"}},
		ReturnType: "numeric",
		Body:       "BEGIN\n  RETURN emp_id;\nEND;\n",
	}
	var b strings.Builder
	require.NoError(t, EmitRoutine(&b, u))
	out := b.String()
	assert.Contains(t, out, "CREATE OR REPLACE FUNCTION hr.get_salary(emp_id numeric)")
	assert.Contains(t, out, "RETURNS numeric")
	assert.Contains(t, out, "LANGUAGE plpgsql")
	assert.Contains(t, out, "AS $$\nBEGIN\n  RETURN emp_id;\nEND;\n$$;\n")
}

func TestEmitRoutine_ProcedureOmitsReturns(t *testing.T) {
	u := RoutineUnit{
		Name:   metadata.NewQualifiedName("hr", "bump", ""),
		Params: []metadata.ParamSig{{Name: "dept", Mode: "IN", Type: "numeric"}},
		Body:   "BEGIN\n  NULL;\nEND;\n",
	}
	var b strings.Builder
	require.NoError(t, EmitRoutine(&b, u))
	out := b.String()
	assert.Contains(t, out, "CREATE OR REPLACE PROCEDURE hr.bump(dept numeric)")
	assert.NotContains(t, out, "RETURNS")
}

func TestEmitType_RendersCompositeFields(t *testing.T) {
	tu := TypeUnit{
		Name: metadata.NewQualifiedName("hr", "langy_type", ""),
		Fields: []TypeField{
			{Name: "de", Type: "varchar"},
			{Name: "en", Type: "varchar"},
		},
	}
	var b strings.Builder
	require.NoError(t, EmitType(&b, tu))
	out := b.String()
	assert.Contains(t, out, "CREATE TYPE hr.langy_type AS (")
	assert.Contains(t, out, "de varchar,")
	assert.Contains(t, out, "en varchar\n")
}

func TestEmitView_RendersCreateOrReplace(t *testing.T) {
	v := ViewUnit{
		Name:   metadata.NewQualifiedName("hr", "emp_view", ""),
		Select: "SELECT emp_id, salary FROM hr.emp",
	}
	var b strings.Builder
	require.NoError(t, EmitView(&b, v))
	assert.Equal(t, "CREATE OR REPLACE VIEW hr.emp_view AS\nSELECT emp_id, salary FROM hr.emp;\n", b.String())
}

func TestEmissionOrder_TypeBeforeRoutineBeforeView(t *testing.T) {
	typ := TypeUnit{Name: metadata.NewQualifiedName("hr", "langy_type", "")}
	routine := RoutineUnit{
		Name:      metadata.NewQualifiedName("hr", "get_lang", ""),
		DependsOn: []metadata.QualifiedName{typ.Name},
	}
	view := ViewUnit{
		Name:      metadata.NewQualifiedName("hr", "lang_view", ""),
		DependsOn: []metadata.QualifiedName{routine.Name},
	}
	ordered, err := EmissionOrder([]Unit{view, routine, typ})
	require.NoError(t, err)
	require.Len(t, ordered, 3)
	assert.Equal(t, typ.Name, ordered[0].QualifiedName())
	assert.Equal(t, routine.Name, ordered[1].QualifiedName())
	assert.Equal(t, view.Name, ordered[2].QualifiedName())
}

func TestEmissionOrder_DetectsCycle(t *testing.T) {
	a := RoutineUnit{Name: metadata.NewQualifiedName("hr", "a", "")}
	b := RoutineUnit{Name: metadata.NewQualifiedName("hr", "b", "")}
	a.DependsOn = []metadata.QualifiedName{b.Name}
	b.DependsOn = []metadata.QualifiedName{a.Name}
	_, err := EmissionOrder([]Unit{a, b})
	assert.Error(t, err)
}

func TestCompatSchemaDDL_ContainsHelperNamespace(t *testing.T) {
	ddl := CompatSchemaDDL()
	assert.Contains(t, ddl, "CREATE SCHEMA IF NOT EXISTS oracle_compat;")
	assert.Contains(t, ddl, "oracle_compat.dbms_output__put_line")
	assert.Contains(t, ddl, "oracle_compat.sqlcode")
	assert.Contains(t, ddl, "oracle_compat.raise_application_error__errcode")
}
