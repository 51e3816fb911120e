package metadata

import "strings"

// Index is MetadataIndex from spec §3/§4.5: built once per migration
// from dictionary rows plus source-scanned private routines, and
// treated as immutable after Build returns (spec §5, §9).
//
// Grounded on the teacher's storage/dialects.go SQLDialect interface
// shape (a small set of resolution methods consulted by the visitor
// pipeline) and storage/mapper.go's map-of-maps lookup style.
type Index struct {
	// table -> column -> dictionary column row (raw Oracle type, scale, default)
	columns map[string]map[string]ColumnRow
	// schema -> set of table names present (is_table_in_schema)
	tablesBySchema map[string]map[string]bool
	// qualified object type name -> ObjectType
	objectTypes map[string]*ObjectType
	// (schema, synonym name) -> target qualified name
	synonyms map[string]QualifiedName
	// owning type -> method name (lower) -> []TypeMethodSig (overloads)
	methods map[string]map[string][]TypeMethodSig
	// privateRoutines: schema.container.routine -> true, populated by
	// the migration driver from scanned package/type bodies (spec §4.5
	// "source-derived private routines"), not from Build.
	privateRoutines map[string]bool
}

// Build constructs an Index from dictionary rows (spec §6
// build_indices(metadata_rows)). Every name recorded by any index is
// upper-cased (spec §3 TransformationIndices invariant).
func Build(rows DictionaryRows) *Index {
	idx := &Index{
		columns:         make(map[string]map[string]ColumnRow),
		tablesBySchema:  make(map[string]map[string]bool),
		objectTypes:     make(map[string]*ObjectType),
		synonyms:        make(map[string]QualifiedName),
		methods:         make(map[string]map[string][]TypeMethodSig),
		privateRoutines: make(map[string]bool),
	}

	for _, c := range rows.Columns {
		tableKey := qualTableKey(c.Owner, c.TableName)
		if idx.columns[tableKey] == nil {
			idx.columns[tableKey] = make(map[string]ColumnRow)
		}
		idx.columns[tableKey][strings.ToUpper(c.ColumnName)] = c

		schema := strings.ToUpper(c.Owner)
		if idx.tablesBySchema[schema] == nil {
			idx.tablesBySchema[schema] = make(map[string]bool)
		}
		idx.tablesBySchema[schema][strings.ToUpper(c.TableName)] = true
	}

	for _, o := range rows.Objects {
		if strings.ToUpper(o.ObjectType) == "TYPE" {
			q := NewQualifiedName(o.Owner, o.ObjectName, "")
			if idx.objectTypes[q.String()] == nil {
				idx.objectTypes[q.String()] = newObjectType(q)
			}
		}
	}
	for _, a := range rows.TypeAttrs {
		q := NewQualifiedName(a.Owner, a.TypeName, "")
		ot, ok := idx.objectTypes[q.String()]
		if !ok {
			ot = newObjectType(q)
			idx.objectTypes[q.String()] = ot
		}
		ot.addField(a.AttributeName, a.AttributeType)
	}

	for _, s := range rows.Synonyms {
		key := qualTableKey(s.Owner, s.SynonymName)
		idx.synonyms[key] = NewQualifiedName(s.TableOwner, s.TableName, "")
	}

	paramsByMethod := make(map[string][]ParamSig)
	for _, p := range rows.MethodParams {
		key := methodRowKey(p.Owner, p.TypeName, p.MethodName, p.MethodNo)
		paramsByMethod[key] = append(paramsByMethod[key], ParamSig{
			Name: p.ParamName, Mode: strings.ToUpper(p.ParamMode), Type: p.ParamType,
		})
	}
	resultByMethod := make(map[string]string)
	for _, r := range rows.MethodResults {
		key := methodRowKey(r.Owner, r.TypeName, r.MethodName, r.MethodNo)
		resultByMethod[key] = r.ResultType
	}
	for _, m := range rows.TypeMethods {
		key := methodRowKey(m.Owner, m.TypeName, m.MethodName, m.MethodNo)
		params := paramsByMethod[key]
		sig := TypeMethodSig{
			OwningType: NewQualifiedName(m.Owner, m.TypeName, ""),
			Name:       strings.ToUpper(m.MethodName),
			Kind:       classifyMethodKind(m.MethodType),
			Params:     params,
			ReturnType: resultByMethod[key],
			ArgDigest:  ArgDigest(params),
		}
		typeKey := NewQualifiedName(m.Owner, m.TypeName, "").String()
		if idx.methods[typeKey] == nil {
			idx.methods[typeKey] = make(map[string][]TypeMethodSig)
		}
		nameKey := strings.ToLower(m.MethodName)
		idx.methods[typeKey][nameKey] = append(idx.methods[typeKey][nameKey], sig)
	}

	return idx
}

func classifyMethodKind(raw string) MethodKind {
	switch strings.ToUpper(raw) {
	case "STATIC METHOD", "STATIC":
		return KindStaticProcedure
	case "MAP METHOD", "MAP":
		return KindMapFunction
	case "ORDER METHOD", "ORDER":
		return KindOrderFunction
	case "CONSTRUCTOR METHOD", "CONSTRUCTOR":
		return KindConstructor
	default:
		return KindMemberFunction
	}
}

func qualTableKey(owner, name string) string {
	return strings.ToUpper(owner) + "." + strings.ToUpper(name)
}

func methodRowKey(owner, typeName, method string, methodNo int) string {
	return strings.ToUpper(owner) + "." + strings.ToUpper(typeName) + "." + strings.ToUpper(method) + "#" + itoa(methodNo)
}

// AddPrivateMethod registers a private (non-dictionary) method or
// routine discovered by source scanning (spec §4.2/§4.4), so
// LookupMethod stays accurate for package/type-body private symbols
// that never reach the dictionary. It does not affect IsObjectType.
func (idx *Index) AddPrivateMethod(sig TypeMethodSig) {
	typeKey := sig.OwningType.String()
	if idx.methods[typeKey] == nil {
		idx.methods[typeKey] = make(map[string][]TypeMethodSig)
	}
	nameKey := strings.ToLower(sig.Name)
	idx.methods[typeKey][nameKey] = append(idx.methods[typeKey][nameKey], sig)
}

// AddPrivateRoutine marks a schema-qualified routine as known-private,
// discovered only by source scanning (never by the dictionary).
func (idx *Index) AddPrivateRoutine(q QualifiedName) {
	idx.privateRoutines[q.String()] = true
}

// IsPrivateRoutine reports whether q was recorded via AddPrivateRoutine.
func (idx *Index) IsPrivateRoutine(q QualifiedName) bool {
	return idx.privateRoutines[q.String()]
}

// GetColumnType returns the raw Oracle type of table.col (spec §4.5
// get_column_type).
func (idx *Index) GetColumnType(table QualifiedName, col string) (string, bool) {
	cols, ok := idx.columns[qualTableKey(table.Schema, table.Object)]
	if !ok {
		return "", false
	}
	row, ok := cols[strings.ToUpper(col)]
	return row.DataType, ok
}

// GetColumnDefault returns table.col's DDL default, formatted by
// FormatNumericDefault when the column is a NUMBER (spec §3's
// metadata-carried NUMBER precision/default handling).
func (idx *Index) GetColumnDefault(table QualifiedName, col string) (string, bool) {
	cols, ok := idx.columns[qualTableKey(table.Schema, table.Object)]
	if !ok {
		return "", false
	}
	row, ok := cols[strings.ToUpper(col)]
	if !ok || row.DataDefault == "" {
		return "", false
	}
	return FormatNumericDefault(row.DataType, row.DataDefault, row.Scale), true
}

// IsTableInSchema reports whether schema.table is a known table
// (spec §4.5 is_table_in_schema).
func (idx *Index) IsTableInSchema(schema, table string) bool {
	tables, ok := idx.tablesBySchema[strings.ToUpper(schema)]
	if !ok {
		return false
	}
	return tables[strings.ToUpper(table)]
}

// ResolveSynonym resolves name to its target qualified name by probing
// the given schema then PUBLIC (spec §4.5 resolve_synonym).
func (idx *Index) ResolveSynonym(name, currentSchema string) (QualifiedName, bool) {
	if target, ok := idx.synonyms[qualTableKey(currentSchema, name)]; ok {
		return target, true
	}
	if target, ok := idx.synonyms[qualTableKey("PUBLIC", name)]; ok {
		return target, true
	}
	return QualifiedName{}, false
}

// IsObjectType reports whether q was built from a dictionary
// object-type row (spec §3 TransformationIndices invariant).
func (idx *Index) IsObjectType(q QualifiedName) bool {
	_, ok := idx.objectTypes[q.String()]
	return ok
}

// ObjectTypeOf returns the ObjectType for q, if known.
func (idx *Index) ObjectTypeOf(q QualifiedName) (*ObjectType, bool) {
	ot, ok := idx.objectTypes[q.String()]
	return ot, ok
}

// GetFieldType returns the dictionary-recorded raw type of a field on
// an object type. Callers must QualifyTypeName the result before
// further field lookup (spec §3).
func (idx *Index) GetFieldType(q QualifiedName, field string) (string, bool) {
	ot, ok := idx.objectTypes[q.String()]
	if !ok {
		return "", false
	}
	return ot.FieldType(field)
}

// QualifyTypeName resolves an unqualified type name to schema.name by
// probing currentSchema, then PUBLIC, then SYS in order (spec §3, §4.5
// qualify_type_name; GLOSSARY "Qualify"). Returns the first qualified
// form known as an object type, else the upper-cased bare name.
func (idx *Index) QualifyTypeName(name, currentSchema string) string {
	for _, schema := range []string{currentSchema, "PUBLIC", "SYS"} {
		q := NewQualifiedName(schema, name, "")
		if idx.IsObjectType(q) {
			return q.String()
		}
	}
	return strings.ToUpper(name)
}

// LookupMethod returns the type method matching name and argDigest on
// owning type q, if any (spec §4.5 lookup_method). When argDigest is
// empty and exactly one overload exists, that overload is returned.
func (idx *Index) LookupMethod(q QualifiedName, name, argDigest string) (TypeMethodSig, bool) {
	byName, ok := idx.methods[q.String()]
	if !ok {
		return TypeMethodSig{}, false
	}
	overloads, ok := byName[strings.ToLower(name)]
	if !ok || len(overloads) == 0 {
		return TypeMethodSig{}, false
	}
	if argDigest == "" {
		if len(overloads) == 1 {
			return overloads[0], true
		}
		return TypeMethodSig{}, false
	}
	for _, sig := range overloads {
		if sig.ArgDigest == argDigest {
			return sig, true
		}
	}
	return TypeMethodSig{}, false
}
