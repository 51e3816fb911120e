// Package emit implements ImplementationEmitter (spec §4.8): renders
// routine, view, and object-type units produced by transform into
// PostgreSQL DDL text, and orders that emission by dependency.
//
// Grounded on the teacher's storage/generator.go Generator interface
// (GenerateInterfaces/GenerateModels/GenerateBackend, each taking a
// spec plus io.Writer and returning error) — this package keeps the
// same "interface-first, write to an io.Writer" shape for each emitted
// unit kind instead of one monolithic string-building function.
package emit

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ora2pg/plsqlcore/metadata"
)

// RoutineUnit is one transformed routine ready for DDL emission.
type RoutineUnit struct {
	Name       metadata.QualifiedName
	IsFunction bool
	Params     []metadata.ParamSig
	ReturnType string // PostgreSQL type text; empty for a procedure
	Body       string // PL/pgSQL text from transform.TransformRoutine (DECLARE...BEGIN...END;)
	DependsOn  []metadata.QualifiedName
}

// ViewUnit is one transformed view ready for DDL emission.
type ViewUnit struct {
	Name      metadata.QualifiedName
	Select    string // already-rendered SELECT text, supplied by the caller
	DependsOn []metadata.QualifiedName
}

// TypeUnit is one object type ready for DDL emission as a composite type.
type TypeUnit struct {
	Name   metadata.QualifiedName
	Fields []TypeField
}

// TypeField is one field of a TypeUnit, already schema/PG-typed.
type TypeField struct {
	Name string
	Type string
}

// SQLExecutor is the minimal submission collaborator ImplementationEmitter
// targets: one method, shaped after pgx.Tx.Exec, so that emission can be
// wired to a real transaction without this package importing pgx
// itself (submission is an out-of-core collaborator per spec §1/§6).
type SQLExecutor interface {
	Exec(ctx context.Context, sql string) error
}

// EmitType writes a CREATE TYPE statement for an object type (spec §6
// PostgreSQL output conventions: composite types back Oracle object types).
func EmitType(w io.Writer, t TypeUnit) error {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TYPE %s AS (\n", qname(t.Name))
	for i, f := range t.Fields {
		comma := ","
		if i == len(t.Fields)-1 {
			comma = ""
		}
		fmt.Fprintf(&b, "  %s %s%s\n", strings.ToLower(f.Name), f.Type, comma)
	}
	b.WriteString(");\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// EmitRoutine writes a CREATE OR REPLACE FUNCTION/PROCEDURE statement
// wrapping the routine's already-transformed PL/pgSQL body (spec §6:
// "CREATE OR REPLACE per routine").
func EmitRoutine(w io.Writer, u RoutineUnit) error {
	var b strings.Builder
	kw := "PROCEDURE"
	if u.IsFunction {
		kw = "FUNCTION"
	}
	fmt.Fprintf(&b, "CREATE OR REPLACE %s %s(", kw, qname(u.Name))
	var params []string
	for _, p := range u.Params {
		mode := ""
		if p.Mode != "" && p.Mode != "IN" {
			mode = p.Mode + " "
		}
		params = append(params, mode+strings.ToLower(p.Name)+" "+p.Type)
	}
	b.WriteString(strings.Join(params, ", "))
	b.WriteString(")\n")
	if u.IsFunction {
		fmt.Fprintf(&b, "RETURNS %s\n", u.ReturnType)
	}
	b.WriteString("LANGUAGE plpgsql\nAS $$\n")
	b.WriteString(u.Body)
	b.WriteString("$$;\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// EmitView writes a CREATE OR REPLACE VIEW statement (SPEC_FULL.md §4
// supplemented views feature).
func EmitView(w io.Writer, v ViewUnit) error {
	_, err := fmt.Fprintf(w, "CREATE OR REPLACE VIEW %s AS\n%s;\n", qname(v.Name), v.Select)
	return err
}

func qname(q metadata.QualifiedName) string {
	return strings.ToLower(q.Schema) + "." + strings.ToLower(q.Object)
}

// Unit is any emittable unit carrying its own dependency edges, used
// by EmissionOrder to build the dependency graph.
type Unit interface {
	QualifiedName() metadata.QualifiedName
	Dependencies() []metadata.QualifiedName
}

func (t TypeUnit) QualifiedName() metadata.QualifiedName    { return t.Name }
func (t TypeUnit) Dependencies() []metadata.QualifiedName    { return nil }
func (u RoutineUnit) QualifiedName() metadata.QualifiedName  { return u.Name }
func (u RoutineUnit) Dependencies() []metadata.QualifiedName { return u.DependsOn }
func (v ViewUnit) QualifiedName() metadata.QualifiedName     { return v.Name }
func (v ViewUnit) Dependencies() []metadata.QualifiedName    { return v.DependsOn }

// EmissionOrder topologically sorts units so that every unit is
// emitted after everything it depends on (spec §5 "explicit
// dependency-graph topological walk for emission order"), breaking
// ties by QualifiedName.Less for a stable, source-order-independent
// result across runs (spec §5 "routines emitted in source order...
// stable across runs" generalised to all emittable kinds).
func EmissionOrder(units []Unit) ([]Unit, error) {
	byName := make(map[string]Unit, len(units))
	for _, u := range units {
		byName[u.QualifiedName().String()] = u
	}

	var ordered []Unit
	visited := make(map[string]int) // 0 unvisited, 1 in-progress, 2 done
	var visit func(key string) error
	visit = func(key string) error {
		switch visited[key] {
		case 2:
			return nil
		case 1:
			return fmt.Errorf("emit: dependency cycle involving %s", key)
		}
		u, ok := byName[key]
		if !ok {
			return nil // dependency outside this emission batch (e.g. a base table): ignore
		}
		visited[key] = 1
		deps := append([]metadata.QualifiedName{}, u.Dependencies()...)
		sort.Slice(deps, func(i, j int) bool { return deps[i].Less(deps[j]) })
		for _, d := range deps {
			if err := visit(d.String()); err != nil {
				return err
			}
		}
		visited[key] = 2
		ordered = append(ordered, u)
		return nil
	}

	keys := make([]string, 0, len(units))
	for _, u := range units {
		keys = append(keys, u.QualifiedName().String())
	}
	sort.Slice(keys, func(i, j int) bool {
		return byName[keys[i]].QualifiedName().Less(byName[keys[j]].QualifiedName())
	})
	for _, k := range keys {
		if err := visit(k); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

// CompatSchemaDDL renders the oracle_compat helper namespace (spec §6
// "oracle_compat helper namespace", SPEC_FULL.md §6 supplement): a
// companion script providing dbms_output.put_line/sqlcode equivalents
// and the runtime error-number-to-SQLSTATE helper used when a
// RAISE_APPLICATION_ERROR number is only known at runtime.
func CompatSchemaDDL() string {
	return `CREATE SCHEMA IF NOT EXISTS oracle_compat;

CREATE OR REPLACE FUNCTION oracle_compat.dbms_output__put_line(msg text)
RETURNS void
LANGUAGE plpgsql
AS $$
BEGIN
  RAISE NOTICE '%', msg;
END;
$$;

CREATE OR REPLACE FUNCTION oracle_compat.sqlcode()
RETURNS int
LANGUAGE plpgsql
AS $$
BEGIN
  RETURN 0;
END;
$$;

CREATE OR REPLACE FUNCTION oracle_compat.raise_application_error__errcode(code int)
RETURNS text
LANGUAGE plpgsql
AS $$
DECLARE
  n int := abs(code) - 20000;
BEGIN
  IF n < 0 THEN
    n := 0;
  END IF;
  RETURN 'P' || lpad((n % 10000)::text, 4, '0');
END;
$$;
`
}
