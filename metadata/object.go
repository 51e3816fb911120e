package metadata

import "strings"

// ObjectType is (qualified_name, [(field_name, field_type)]) with
// case-insensitive field lookup (spec §3). Field types are the raw
// dictionary type string; they may themselves be unqualified object
// type names, qualified on access via Index.QualifyTypeName.
type ObjectType struct {
	Name   QualifiedName
	fields map[string]string // upper(field name) -> raw field type
	order  []string          // field names in declaration order
}

func newObjectType(name QualifiedName) *ObjectType {
	return &ObjectType{Name: name, fields: make(map[string]string)}
}

func (ot *ObjectType) addField(name, rawType string) {
	key := strings.ToUpper(name)
	if _, exists := ot.fields[key]; !exists {
		ot.order = append(ot.order, key)
	}
	ot.fields[key] = rawType
}

// FieldType returns the raw declared type of a field, case-insensitively.
func (ot *ObjectType) FieldType(field string) (string, bool) {
	t, ok := ot.fields[strings.ToUpper(field)]
	return t, ok
}

// Fields returns field names in declaration order.
func (ot *ObjectType) Fields() []string {
	out := make([]string, len(ot.order))
	copy(out, ot.order)
	return out
}

// MethodKind enumerates the routine kinds a RoutineSegment or
// TypeMethodSig can carry (spec §3 RoutineSegment.kind).
type MethodKind string

const (
	KindFunction         MethodKind = "FUNCTION"
	KindProcedure        MethodKind = "PROCEDURE"
	KindMemberFunction   MethodKind = "MEMBER_FUNCTION"
	KindMemberProcedure  MethodKind = "MEMBER_PROCEDURE"
	KindStaticFunction   MethodKind = "STATIC_FUNCTION"
	KindStaticProcedure  MethodKind = "STATIC_PROCEDURE"
	KindMapFunction      MethodKind = "MAP_FUNCTION"
	KindOrderFunction    MethodKind = "ORDER_FUNCTION"
	KindConstructor      MethodKind = "CONSTRUCTOR"
)

// TypeMethodSig is (owning_type, method_name, kind, params, return_type)
// per spec §3. Public methods originate from the dictionary; private
// methods originate from scanned type bodies (spec §4.6, §4.7.6).
type TypeMethodSig struct {
	OwningType QualifiedName
	Name       string
	Kind       MethodKind
	Params     []ParamSig
	ReturnType string // raw type, empty for procedures
	ArgDigest  string // deterministic parameter-type digest (spec §9 "overloading identity")
}

// ParamSig is one parameter of a TypeMethodSig or RoutineSig.
type ParamSig struct {
	Name string
	Mode string // IN, OUT, IN OUT
	Type string
}

// MethodKey returns "name_digest", the overload-disambiguating key
// used by RoutineStore and by generated function names (spec §3
// RoutineRecord "method key").
func (s TypeMethodSig) MethodKey() string {
	if s.ArgDigest == "" {
		return strings.ToLower(s.Name)
	}
	return strings.ToLower(s.Name) + "_" + s.ArgDigest
}

// ArgDigest computes a short, deterministic digest of a parameter
// type list, used to disambiguate overloads without relying on the
// identity of any source-language method object (spec §9).
func ArgDigest(params []ParamSig) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('_')
		}
		t := strings.ToUpper(strings.TrimSpace(p.Type))
		t = strings.Map(func(r rune) rune {
			switch {
			case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
				return r
			default:
				return -1
			}
		}, t)
		b.WriteString(strings.ToLower(t))
	}
	if b.Len() == 0 {
		return ""
	}
	return b.String()
}
