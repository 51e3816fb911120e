package transform

import (
	"strings"

	"github.com/ora2pg/plsqlcore/oracleast"
)

// cursorTracker is Tracker (spec glossary, §4.7.4): a per-routine
// record of which cursors need tracking variables, driving
// declaration and maintenance-statement injection. A cursor is
// tracked when some expression references c%... and also whenever
// the routine opens, fetches or closes it, so a cursor that is only
// opened, fetched and closed still gets its tracking variables
// declared and maintained.
//
// Grounded on tsqlruntime/cursor.go's CursorManager map-based
// tracking, narrowed from a runtime registry of live cursor handles to
// a compile-time record of which attributes a routine's source text
// actually touches.
type cursorTracker struct {
	declared map[string]bool // cursor name (lower) -> explicitly DECLAREd
	used     map[string]bool // cursor name (lower) -> %attr referenced, or opened/fetched/closed
	implicit bool            // SQL%... referenced anywhere in the routine
}

func newCursorTracker() *cursorTracker {
	return &cursorTracker{declared: map[string]bool{}, used: map[string]bool{}}
}

func (t *cursorTracker) declare(name string) { t.declared[strings.ToLower(name)] = true }

func (t *cursorTracker) markUsed(cursor string) {
	if strings.EqualFold(cursor, "SQL") {
		t.implicit = true
		return
	}
	t.used[strings.ToLower(cursor)] = true
}

// declarations renders the tracking-variable DECLARE lines for every
// tracked cursor (spec §4.7.4: c__found,
// c__rowcount, c__isopen; sql__rowcount for the implicit cursor).
func (t *cursorTracker) declarations() string {
	var b strings.Builder
	if t.implicit {
		b.WriteString("  sql__rowcount INTEGER := 0;\n")
	}
	names := make([]string, 0, len(t.used))
	for n := range t.used {
		names = append(names, n)
	}
	sortStrings(names)
	for _, n := range names {
		b.WriteString("  " + n + "__found BOOLEAN := FALSE;\n")
		b.WriteString("  " + n + "__rowcount INTEGER := 0;\n")
		b.WriteString("  " + n + "__isopen BOOLEAN := FALSE;\n")
	}
	return b.String()
}

func sortStrings(ss []string) {
	for i := 1; i < len(ss); i++ {
		for j := i; j > 0 && ss[j-1] > ss[j]; j-- {
			ss[j-1], ss[j] = ss[j], ss[j-1]
		}
	}
}

// prescanBlock walks the whole routine body once before rendering to
// populate the tracker with every cursor attribute reference, so that
// declarations() can be emitted up front in the DECLARE section
// (spec §9: scope state lives outside the AST, acquired deterministically
// around the routine).
func prescanBlock(t *cursorTracker, block *oracleast.Block) {
	for _, s := range block.Body {
		prescanStmt(t, s)
	}
	for _, h := range block.Handlers {
		for _, s := range h.Body {
			prescanStmt(t, s)
		}
	}
}

func prescanStmt(t *cursorTracker, s oracleast.Statement) {
	switch v := s.(type) {
	case *oracleast.IfStatement:
		prescanExpr(t, v.Cond)
		for _, st := range v.Then {
			prescanStmt(t, st)
		}
		for _, ei := range v.ElsIfs {
			prescanExpr(t, ei.Cond)
			for _, st := range ei.Body {
				prescanStmt(t, st)
			}
		}
		for _, st := range v.Else {
			prescanStmt(t, st)
		}
	case *oracleast.LoopStatement:
		prescanExpr(t, v.Cond)
		for _, st := range v.Body {
			prescanStmt(t, st)
		}
	case *oracleast.ReturnStatement:
		prescanExpr(t, v.Value)
	case *oracleast.Assignment:
		prescanExpr(t, v.Value)
	case *oracleast.CallStatement:
		for _, a := range v.Call.Args {
			prescanExpr(t, a)
		}
	case *oracleast.NestedBlock:
		prescanBlock(t, v.Block)
	case *oracleast.InsertStatement:
		for _, e := range v.Values {
			prescanExpr(t, e)
		}
	case *oracleast.UpdateStatement:
		for _, sc := range v.Sets {
			prescanExpr(t, sc.Value)
		}
		prescanExpr(t, v.Where)
	case *oracleast.DeleteStatement:
		prescanExpr(t, v.Where)
	case *oracleast.SelectIntoStatement:
		prescanExpr(t, v.Select.Where)
	}
}

func prescanExpr(t *cursorTracker, e oracleast.Expression) {
	switch v := e.(type) {
	case nil:
		return
	case *oracleast.CursorAttribute:
		t.markUsed(v.Cursor)
	case *oracleast.BinaryExpr:
		prescanExpr(t, v.Left)
		prescanExpr(t, v.Right)
	case *oracleast.UnaryExpr:
		prescanExpr(t, v.Operand)
	case *oracleast.FunctionCall:
		prescanExpr(t, v.Name)
		for _, a := range v.Args {
			prescanExpr(t, a)
		}
	}
}
