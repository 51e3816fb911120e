package metadata

// The types below are the typed records the metadata/dictionary
// extraction collaborator yields (spec §6: "Metadata input... read as
// typed records"). The core never issues SQL against the catalog
// itself; it only consumes these rows.

// SourceRow mirrors one row of ALL_SOURCE: owner, object name, object
// type, line number and text. `Type` is one of PACKAGE, PACKAGE BODY,
// TYPE, TYPE BODY, FUNCTION, PROCEDURE, VIEW.
type SourceRow struct {
	Owner string
	Name  string
	Type  string
	Line  int
	Text  string
}

// ColumnRow mirrors one row of ALL_TAB_COLUMNS.
type ColumnRow struct {
	Owner       string
	TableName   string
	ColumnName  string
	DataType    string
	Length      int
	Precision   int
	Scale       int
	Nullable    bool
	DataDefault string // raw DATA_DEFAULT text, empty when the column has none
}

// ObjectRow mirrors one row of ALL_OBJECTS, used to tell object types
// apart from tables/views when qualifying a bare name.
type ObjectRow struct {
	Owner      string
	ObjectName string
	ObjectType string // TABLE, VIEW, TYPE, PACKAGE, ...
}

// SynonymRow mirrors one row of ALL_SYNONYMS.
type SynonymRow struct {
	Owner      string // owning schema of the synonym, or PUBLIC
	SynonymName string
	TableOwner string
	TableName  string
}

// TypeMethodRow mirrors one row of ALL_TYPE_METHODS.
type TypeMethodRow struct {
	Owner      string
	TypeName   string
	MethodName string
	MethodType string // MEMBER, STATIC, CONSTRUCTOR, MAP, ORDER
	MethodNo   int
}

// MethodParamRow mirrors one row of ALL_METHOD_PARAMS.
type MethodParamRow struct {
	Owner      string
	TypeName   string
	MethodName string
	MethodNo   int
	ParamName  string
	ParamType  string
	ParamMode  string // IN, OUT, IN OUT
}

// MethodResultRow mirrors one row of ALL_METHOD_RESULTS.
type MethodResultRow struct {
	Owner      string
	TypeName   string
	MethodName string
	MethodNo   int
	ResultType string
}

// TypeAttributeRow is the object-type-field equivalent of ALL_TAB_COLUMNS
// (Oracle exposes this via ALL_TYPE_ATTRS for object types).
type TypeAttributeRow struct {
	Owner         string
	TypeName      string
	AttributeName string
	AttributeType string
}

// DictionaryRows is the full set of typed records the collaborator
// hands to build_indices (spec §6 build_indices(metadata_rows)).
type DictionaryRows struct {
	Source        []SourceRow
	Columns       []ColumnRow
	Objects       []ObjectRow
	Synonyms      []SynonymRow
	TypeMethods   []TypeMethodRow
	MethodParams  []MethodParamRow
	MethodResults []MethodResultRow
	TypeAttrs     []TypeAttributeRow
}
