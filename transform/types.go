package transform

import (
	"strings"

	"github.com/ora2pg/plsqlcore/metadata"
	"github.com/ora2pg/plsqlcore/oracleast"
)

// pgType renders a parsed Oracle DataType as a PostgreSQL type name,
// delegating scalar mapping to metadata.MapColumnType (the same LOB
// policy used for table columns applies to PL/SQL variables).
func pgType(dt oracleast.DataType) string {
	if dt.RowType {
		return strings.ToLower(dt.Name) + "%ROWTYPE" // passed through unchanged
	}
	if dt.AnchorOf != "" {
		return strings.ToLower(dt.AnchorOf) + "%TYPE"
	}
	return metadata.MapColumnType(dt.Name, dt.Length, dt.Precision, dt.Scale)
}

// PGType exports pgType for callers assembling emit.RoutineUnit
// signatures outside this package (migrate's driver), so a routine's
// emitted parameter/return types are computed by the exact same rule
// used to render its body's local declarations.
func PGType(dt oracleast.DataType) string { return pgType(dt) }
