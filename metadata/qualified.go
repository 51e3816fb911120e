// Package metadata builds the in-memory indices over dictionary rows
// (tables, columns, object types, type methods, package signatures,
// synonyms) plus source-derived private routines (spec §3, §4.5).
package metadata

import "strings"

// QualifiedName is (schema, object_name, [sub_name]) case-folded to
// upper, per spec §3. Equality is case-insensitive by construction:
// all three fields are stored upper-cased.
type QualifiedName struct {
	Schema  string
	Object  string
	SubName string
}

// NewQualifiedName upper-folds schema/object/sub into a QualifiedName.
func NewQualifiedName(schema, object, sub string) QualifiedName {
	return QualifiedName{
		Schema:  strings.ToUpper(schema),
		Object:  strings.ToUpper(object),
		SubName: strings.ToUpper(sub),
	}
}

// String renders schema.object[.sub] for diagnostics and map keys.
func (q QualifiedName) String() string {
	s := q.Schema + "." + q.Object
	if q.SubName != "" {
		s += "." + q.SubName
	}
	return s
}

// Less gives a deterministic total order, used to make emission order
// stable across runs when no other ordering constraint applies
// (spec §5: "routines are emitted in source order (stable across runs)").
func (q QualifiedName) Less(o QualifiedName) bool {
	if q.Schema != o.Schema {
		return q.Schema < o.Schema
	}
	if q.Object != o.Object {
		return q.Object < o.Object
	}
	return q.SubName < o.SubName
}
