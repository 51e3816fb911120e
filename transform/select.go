package transform

import (
	"strings"

	"github.com/ora2pg/plsqlcore/metadata"
	"github.com/ora2pg/plsqlcore/oracleast"
)

// renderSelect renders a SELECT statement, schema-qualifying its FROM
// items and binding aliases into ctx.Aliases before rendering columns
// so that object-field rewriting (S2) can resolve them.
func renderSelect(ctx *Context, sel *oracleast.SelectStatement) string {
	if sel == nil {
		return ""
	}
	var from []string
	for _, item := range sel.From {
		qualified := qualifyTable(ctx, item.Table)
		if item.Alias != "" {
			ctx.Aliases[strings.ToLower(item.Alias)] = qualified
			from = append(from, lowerQualified(qualified)+" "+strings.ToLower(item.Alias))
		} else {
			ctx.Aliases[strings.ToLower(qualified.Object)] = qualified
			from = append(from, lowerQualified(qualified))
		}
	}

	var cols []string
	for _, c := range sel.Columns {
		if c.Star {
			cols = append(cols, "*")
			continue
		}
		rendered := renderExpr(ctx, c.Expr)
		if c.Alias != "" {
			rendered += " AS " + strings.ToLower(c.Alias)
		}
		cols = append(cols, rendered)
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(cols, ", "))
	if len(from) > 0 {
		b.WriteString(" FROM ")
		b.WriteString(strings.Join(from, ", "))
	}
	if sel.Where != nil {
		b.WriteString(" WHERE ")
		b.WriteString(renderExpr(ctx, sel.Where))
	}
	if len(sel.GroupBy) > 0 {
		var gb []string
		for _, e := range sel.GroupBy {
			gb = append(gb, renderExpr(ctx, e))
		}
		b.WriteString(" GROUP BY " + strings.Join(gb, ", "))
	}
	if sel.Having != nil {
		b.WriteString(" HAVING " + renderExpr(ctx, sel.Having))
	}
	if len(sel.OrderBy) > 0 {
		var ob []string
		for _, e := range sel.OrderBy {
			ob = append(ob, renderExpr(ctx, e))
		}
		b.WriteString(" ORDER BY " + strings.Join(ob, ", "))
	}
	if sel.ForUpdate {
		b.WriteString(" FOR UPDATE")
	}
	return b.String()
}

func lowerQualified(q metadata.QualifiedName) string {
	return strings.ToLower(q.Schema) + "." + strings.ToLower(q.Object)
}

// qualifyTable resolves a bare or schema-qualified table reference to
// its fully qualified form, probing synonyms then the table's own
// schema (spec §4.5 resolve_synonym, S2 "langtable" -> "hr.langtable").
func qualifyTable(ctx *Context, t oracleast.ObjectName) metadata.QualifiedName {
	if t.Schema != "" {
		return metadata.NewQualifiedName(t.Schema, t.Name, "")
	}
	if resolved, ok := ctx.Index.ResolveSynonym(t.Name, ctx.Schema); ok {
		return resolved
	}
	return metadata.NewQualifiedName(ctx.Schema, t.Name, "")
}
