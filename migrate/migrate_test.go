package migrate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ora2pg/plsqlcore/cleaner"
	"github.com/ora2pg/plsqlcore/emit"
	"github.com/ora2pg/plsqlcore/metadata"
	"github.com/ora2pg/plsqlcore/store"
	"github.com/ora2pg/plsqlcore/transform"
)

func hrIndex() *metadata.Index {
	rows := metadata.DictionaryRows{
		Columns: []metadata.ColumnRow{
			{Owner: "hr", TableName: "emp", ColumnName: "salary", DataType: "NUMBER"},
			{Owner: "hr", TableName: "emp", ColumnName: "dept_id", DataType: "NUMBER"},
		},
	}
	return metadata.Build(rows)
}

const pkgBody = `PACKAGE BODY emp_pkg IS
  PROCEDURE bump IS
  BEGIN
    UPDATE emp SET salary = salary * 1.1 WHERE dept_id = 10;
  END bump;

  FUNCTION get_salary(emp_id NUMBER) RETURN NUMBER IS
  BEGIN
    RETURN emp_id;
  END get_salary;
END emp_pkg;
`

// End-to-end: segment_and_store -> transform_routine -> emit, the
// full pipeline the top-level library surface wires together.
func TestEndToEnd_SegmentTransformEmit(t *testing.T) {
	idx := hrIndex()
	s := store.New()
	container := metadata.NewQualifiedName("hr", "emp_pkg", "")

	cleaned, err := cleaner.Clean(pkgBody)
	require.NoError(t, err)

	segs, err := SegmentAndStore(s, container, cleaned, false)
	require.NoError(t, err)
	require.Len(t, segs, 2)

	report := NewReport("hr")

	var units []emit.Unit
	for _, seg := range segs {
		qname := RoutineQualifiedName(container, seg)
		body, sig, err := TransformRoutine(idx, s, "hr", qname, report)
		require.NoError(t, err)
		units = append(units, BuildRoutineUnit(qname, sig, body, nil))
	}

	assert.Empty(t, report.RoutineErrors)
	assert.Len(t, report.Emitted, 2)

	ordered, err := emit.EmissionOrder(units)
	require.NoError(t, err)
	require.Len(t, ordered, 2)

	for _, u := range ordered {
		ru := u.(emit.RoutineUnit)
		if ru.Name.SubName == "BUMP" {
			assert.False(t, ru.IsFunction)
			assert.Contains(t, ru.Body, "UPDATE hr.emp SET salary = salary * 1.1 WHERE dept_id = 10;")
		} else {
			assert.True(t, ru.IsFunction)
			assert.Equal(t, "numeric", ru.ReturnType)
			require.Len(t, ru.Params, 1)
			assert.Equal(t, "numeric", ru.Params[0].Type)
		}
	}
}

func TestTransformRoutine_StorageMissReturnsError(t *testing.T) {
	idx := hrIndex()
	s := store.New()
	report := NewReport("hr")
	qname := metadata.NewQualifiedName("hr", "emp_pkg", "nope")

	_, _, err := TransformRoutine(idx, s, "hr", qname, report)
	require.Error(t, err)
	assert.Contains(t, report.RoutineErrors, qname.String())
}

func TestClearRoutineStorage_EmptiesStore(t *testing.T) {
	s := store.New()
	container := metadata.NewQualifiedName("hr", "emp_pkg", "")
	cleaned, err := cleaner.Clean(pkgBody)
	require.NoError(t, err)
	_, err = SegmentAndStore(s, container, cleaned, false)
	require.NoError(t, err)

	ClearRoutineStorage(s)

	_, err = s.Get(metadata.NewQualifiedName("hr", "emp_pkg", "bump"))
	assert.Error(t, err)
}

func TestParseRoutinesPool_CollectsPerNameErrors(t *testing.T) {
	names := []metadata.QualifiedName{
		metadata.NewQualifiedName("hr", "emp_pkg", "bump"),
		metadata.NewQualifiedName("hr", "emp_pkg", "get_salary"),
		metadata.NewQualifiedName("hr", "emp_pkg", "broken"),
	}
	errs := ParseRoutinesPool(names, 2, func(n metadata.QualifiedName) error {
		if n.SubName == "BROKEN" {
			return assertErr
		}
		return nil
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs, names[2].String())
}

var assertErr = &fakeErr{}

type fakeErr struct{}

func (*fakeErr) Error() string { return "boom" }

func TestLoadConfig_MergesExceptionOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exceptions.yaml")
	require.NoError(t, os.WriteFile(path, []byte("overrides:\n  custom_err: unique_violation\n"), 0o600))

	cfg := Config{ExceptionOverridesPath: path}
	require.NoError(t, LoadConfig(cfg))

	assert.Equal(t, "unique_violation", transform.StandardExceptionRewrites["custom_err"])
}
