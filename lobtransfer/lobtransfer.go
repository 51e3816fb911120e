// Package lobtransfer implements the LOB/staging transfer contract
// (spec §4.7.7, S6): given a target table with one or more oid-typed
// columns (the destination of Oracle BLOB/CLOB/NCLOB per the
// metadata.MapColumnType LOB policy), it generates the staging-column
// DDL/DML sequence a bulk-load collaborator executes around the actual
// byte transfer, which itself stays out of core (spec §1).
//
// Grounded on the teacher's storage/ensemble_mapper.go multi-step
// pipeline shape (a fixed ordered sequence of passes over one input,
// each contributing part of a larger result) — narrowed here from a
// multi-strategy scoring pipeline to a fixed seven-step DDL/DML
// sequence, since the LOB transfer steps have a mandated order (spec
// §4.7.7 items 1-7), not a best-match selection.
package lobtransfer

import (
	"fmt"
	"strings"

	"github.com/ora2pg/plsqlcore/metadata"
)

// OIDColumn is one column of a target table whose PostgreSQL type is
// oid (an Oracle BLOB/CLOB/NCLOB destination).
type OIDColumn struct {
	Name    string
	NotNull bool
}

// DetectOIDColumns walks a table's dictionary columns and returns the
// subset that map to oid under the LOB policy (metadata.IsLOBOIDType),
// in declaration order, preserving each column's NOT NULL-ness.
func DetectOIDColumns(idx *metadata.Index, table metadata.QualifiedName, columns []ColumnDecl) []OIDColumn {
	var out []OIDColumn
	for _, c := range columns {
		if metadata.IsLOBOIDType(c.OracleType) {
			out = append(out, OIDColumn{Name: c.Name, NotNull: c.NotNull})
		}
	}
	return out
}

// ColumnDecl is the minimal column shape DetectOIDColumns needs from a
// table's dictionary row set.
type ColumnDecl struct {
	Name       string
	OracleType string
	NotNull    bool
}

// Plan is the ordered sequence of SQL statements that implement spec
// §4.7.7's seven-step contract for one table, one statement per slice
// element so a caller can run them inside its own transaction
// boundary (steps 2-6 per the spec must share one transaction; step 1
// is detection, already performed by DetectOIDColumns, and is not a
// SQL statement).
type Plan struct {
	Table   metadata.QualifiedName
	Columns []OIDColumn
	Steps   []string
}

// BuildPlan renders the staging transfer statements for table given
// its already-detected oid columns (spec §4.7.7 steps 2-7; step 4,
// "perform bulk load into staging columns", is the out-of-core data
// transfer itself and is represented here only as a comment marking
// where it belongs in sequence, per spec §1's scope boundary).
func BuildPlan(table metadata.QualifiedName, columns []OIDColumn) Plan {
	tname := strings.ToLower(table.Schema) + "." + strings.ToLower(table.Object)
	var steps []string

	for _, c := range columns {
		if c.NotNull {
			steps = append(steps, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL;", tname, c.Name))
		}
	}
	for _, c := range columns {
		steps = append(steps, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s BYTEA;", tname, stagingName(c.Name)))
	}

	steps = append(steps, "-- bulk load into staging columns happens here (out-of-core collaborator, spec §1)")

	for _, c := range columns {
		steps = append(steps, fmt.Sprintf(
			"UPDATE %s SET %s = lo_from_bytea(0, %s) WHERE %s IS NOT NULL;",
			tname, c.Name, stagingName(c.Name), stagingName(c.Name)))
	}
	for _, c := range columns {
		if c.NotNull {
			steps = append(steps, fmt.Sprintf(
				"ALTER TABLE %s ALTER COLUMN %s SET NOT NULL;", tname, c.Name))
		}
	}
	for _, c := range columns {
		steps = append(steps, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", tname, stagingName(c.Name)))
	}

	return Plan{Table: table, Columns: columns, Steps: steps}
}

func stagingName(col string) string {
	return strings.ToLower(col) + "_staging"
}
