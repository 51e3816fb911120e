package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() DictionaryRows {
	return DictionaryRows{
		Columns: []ColumnRow{
			{Owner: "hr", TableName: "langtable", ColumnName: "nr", DataType: "NUMBER", Precision: 10},
			{Owner: "hr", TableName: "langtable", ColumnName: "langy", DataType: "LANGY_TYPE"},
		},
		Objects: []ObjectRow{
			{Owner: "hr", ObjectName: "langy_type", ObjectType: "TYPE"},
		},
		TypeAttrs: []TypeAttributeRow{
			{Owner: "hr", TypeName: "langy_type", AttributeName: "de", AttributeType: "VARCHAR2"},
			{Owner: "hr", TypeName: "langy_type", AttributeName: "en", AttributeType: "VARCHAR2"},
		},
		Synonyms: []SynonymRow{
			{Owner: "PUBLIC", SynonymName: "emp_syn", TableOwner: "hr", TableName: "emp"},
		},
		TypeMethods: []TypeMethodRow{
			{Owner: "hr", TypeName: "employee_type", MethodName: "get_salary", MethodType: "MEMBER", MethodNo: 1},
			{Owner: "hr", TypeName: "employee_type", MethodName: "employee_type", MethodType: "CONSTRUCTOR", MethodNo: 2},
		},
		MethodParams: []MethodParamRow{
			{Owner: "hr", TypeName: "employee_type", MethodName: "employee_type", MethodNo: 2, ParamName: "id", ParamType: "NUMBER", ParamMode: "IN"},
			{Owner: "hr", TypeName: "employee_type", MethodName: "employee_type", MethodNo: 2, ParamName: "name", ParamType: "VARCHAR2", ParamMode: "IN"},
		},
		MethodResults: []MethodResultRow{
			{Owner: "hr", TypeName: "employee_type", MethodName: "get_salary", MethodNo: 1, ResultType: "NUMBER"},
		},
	}
}

func TestIndex_ObjectFieldLookup_CaseInsensitive(t *testing.T) {
	idx := Build(sampleRows())
	langy := NewQualifiedName("hr", "langy_type", "")
	assert.True(t, idx.IsObjectType(langy))

	ft, ok := idx.GetFieldType(langy, "DE")
	require.True(t, ok)
	assert.Equal(t, "VARCHAR2", ft)

	ft, ok = idx.GetFieldType(langy, "en")
	require.True(t, ok)
	assert.Equal(t, "VARCHAR2", ft)
}

func TestIndex_QualifyTypeName_ProbesCurrentSchemaThenPublicThenSys(t *testing.T) {
	idx := Build(sampleRows())
	assert.Equal(t, "HR.LANGY_TYPE", idx.QualifyTypeName("langy_type", "hr"))
	assert.Equal(t, "UNKNOWN_TYPE", idx.QualifyTypeName("unknown_type", "hr"))
}

func TestIndex_ResolveSynonym(t *testing.T) {
	idx := Build(sampleRows())
	target, ok := idx.ResolveSynonym("emp_syn", "hr")
	require.True(t, ok)
	assert.Equal(t, NewQualifiedName("hr", "emp", ""), target)
}

func TestIndex_LookupMethod_ConstructorByDigest(t *testing.T) {
	idx := Build(sampleRows())
	typ := NewQualifiedName("hr", "employee_type", "")

	sig, ok := idx.LookupMethod(typ, "employee_type", ArgDigest([]ParamSig{{Type: "NUMBER"}, {Type: "VARCHAR2"}}))
	require.True(t, ok)
	assert.Equal(t, KindConstructor, sig.Kind)

	single, ok := idx.LookupMethod(typ, "get_salary", "")
	require.True(t, ok)
	assert.Equal(t, "NUMBER", single.ReturnType)
}

func TestMapColumnType_LOBPolicyClosure(t *testing.T) {
	cases := map[string]string{
		"BLOB": "oid", "CLOB": "oid", "NCLOB": "oid",
		"BFILE": "text", "LONG": "text", "LONG RAW": "bytea",
	}
	for oracle, want := range cases {
		assert.Equal(t, want, MapColumnType(oracle, 0, 0, 0), oracle)
	}

	// Closure: no other mapping produces oid.
	others := []string{"NUMBER", "VARCHAR2", "DATE", "RAW", "CHAR", "INTEGER", "XMLTYPE"}
	for _, oracle := range others {
		assert.NotEqual(t, "oid", MapColumnType(oracle, 10, 0, 0), oracle)
	}
}

func TestIsLOBOIDType(t *testing.T) {
	assert.True(t, IsLOBOIDType("blob"))
	assert.True(t, IsLOBOIDType("CLOB"))
	assert.False(t, IsLOBOIDType("BFILE"))
	assert.False(t, IsLOBOIDType("VARCHAR2"))
}

func TestFormatNumericDefault_RoundsToColumnScale(t *testing.T) {
	assert.Equal(t, "10.50", FormatNumericDefault("NUMBER", "10.5", 2))
	assert.Equal(t, "3.14", FormatNumericDefault("NUMBER", "3.14159", 2))
	assert.Equal(t, "7", FormatNumericDefault("NUMBER", "7", 0))
}

func TestFormatNumericDefault_PassesThroughNonNumericOrNonLiteral(t *testing.T) {
	assert.Equal(t, "SYSDATE", FormatNumericDefault("DATE", "SYSDATE", 0))
	assert.Equal(t, "SYSDATE", FormatNumericDefault("NUMBER", "SYSDATE", 2))
	assert.Equal(t, "'ACTIVE'", FormatNumericDefault("VARCHAR2", "'ACTIVE'", 0))
}

func TestIndex_GetColumnDefault(t *testing.T) {
	idx := Build(DictionaryRows{
		Columns: []ColumnRow{
			{Owner: "hr", TableName: "emp", ColumnName: "salary", DataType: "NUMBER", Scale: 2, DataDefault: "0"},
			{Owner: "hr", TableName: "emp", ColumnName: "hired_at", DataType: "DATE"},
		},
	})

	def, ok := idx.GetColumnDefault(NewQualifiedName("hr", "emp", ""), "salary")
	require.True(t, ok)
	assert.Equal(t, "0.00", def)

	_, ok = idx.GetColumnDefault(NewQualifiedName("hr", "emp", ""), "hired_at")
	assert.False(t, ok)
}
