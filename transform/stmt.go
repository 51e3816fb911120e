package transform

import (
	"strings"

	"github.com/ora2pg/plsqlcore/oracleast"
	"github.com/ora2pg/plsqlcore/plsqlerrors"
)

func renderStatement(ctx *Context, b *strings.Builder, s oracleast.Statement, ind string) error {
	switch v := s.(type) {
	case *oracleast.NullStatement:
		b.WriteString(ind + "NULL;\n")

	case *oracleast.IfStatement:
		b.WriteString(ind + "IF " + renderExpr(ctx, v.Cond) + " THEN\n")
		if err := renderStatements(ctx, b, v.Then, depthOf(ind)+1); err != nil {
			return err
		}
		for _, ei := range v.ElsIfs {
			b.WriteString(ind + "ELSIF " + renderExpr(ctx, ei.Cond) + " THEN\n")
			if err := renderStatements(ctx, b, ei.Body, depthOf(ind)+1); err != nil {
				return err
			}
		}
		if v.HasElse {
			b.WriteString(ind + "ELSE\n")
			if err := renderStatements(ctx, b, v.Else, depthOf(ind)+1); err != nil {
				return err
			}
		}
		b.WriteString(ind + "END IF;\n")

	case *oracleast.LoopStatement:
		return renderLoop(ctx, b, v, ind)

	case *oracleast.ExitStatement:
		if v.When != nil {
			b.WriteString(ind + "EXIT WHEN " + renderExpr(ctx, v.When) + ";\n")
		} else {
			b.WriteString(ind + "EXIT;\n")
		}

	case *oracleast.ReturnStatement:
		if v.Value != nil {
			var val string
			if mc, ok := isChainedMethodCall(v.Value); ok {
				val = renderMethodCallChain(ctx, b, ind, mc)
			} else {
				val = renderExpr(ctx, v.Value)
			}
			b.WriteString(ind + "RETURN " + val + ";\n")
		} else {
			b.WriteString(ind + "RETURN;\n")
		}

	case *oracleast.RaiseStatement:
		return renderRaise(ctx, b, v, ind)

	case *oracleast.RaiseApplicationError:
		b.WriteString(ind + "RAISE EXCEPTION " + renderExpr(ctx, v.Message) + ";\n")

	case *oracleast.OpenStatement:
		ctx.cursors.markUsed(v.Cursor)
		name := cursorVarName(v.Cursor)
		var args []string
		for _, a := range v.Args {
			args = append(args, renderExpr(ctx, a))
		}
		openArgs := ""
		if len(args) > 0 {
			openArgs = "(" + strings.Join(args, ", ") + ")"
		}
		b.WriteString(ind + "OPEN " + name + openArgs + ";\n")
		b.WriteString(ind + name + "__isopen := TRUE;\n")
		b.WriteString(ind + name + "__rowcount := 0;\n")

	case *oracleast.FetchStatement:
		ctx.cursors.markUsed(v.Cursor)
		name := cursorVarName(v.Cursor)
		var into []string
		for _, t := range v.Into {
			into = append(into, strings.ToLower(t))
		}
		b.WriteString(ind + "FETCH " + name + " INTO " + strings.Join(into, ", ") + ";\n")
		b.WriteString(ind + name + "__found := FOUND;\n")
		b.WriteString(ind + "IF " + name + "__found THEN " + name + "__rowcount := " + name + "__rowcount + 1; END IF;\n")

	case *oracleast.CloseStatement:
		ctx.cursors.markUsed(v.Cursor)
		name := cursorVarName(v.Cursor)
		b.WriteString(ind + "CLOSE " + name + ";\n")
		b.WriteString(ind + name + "__isopen := FALSE;\n")

	case *oracleast.NestedBlock:
		inner, err := TransformRoutine(ctx, &oracleast.RoutineSig{}, v.Block)
		if err != nil {
			return err
		}
		for _, line := range strings.Split(strings.TrimRight(inner, "\n"), "\n") {
			b.WriteString(ind + line + "\n")
		}

	case *oracleast.Assignment:
		var val string
		if mc, ok := isChainedMethodCall(v.Value); ok {
			val = renderMethodCallChain(ctx, b, ind, mc)
		} else {
			val = renderExpr(ctx, v.Value)
		}
		b.WriteString(ind + renderExpr(ctx, v.Target) + " := " + val + ";\n")

	case *oracleast.CallStatement:
		b.WriteString(ind + "PERFORM " + renderExpr(ctx, v.Call) + ";\n")

	case *oracleast.InsertStatement:
		renderInsert(ctx, b, v, ind)

	case *oracleast.UpdateStatement:
		renderUpdate(ctx, b, v, ind)

	case *oracleast.DeleteStatement:
		renderDelete(ctx, b, v, ind)

	case *oracleast.SelectIntoStatement:
		var into []string
		for _, t := range v.Into {
			into = append(into, strings.ToLower(t))
		}
		sel := renderSelect(ctx, v.Select)
		selectKw := "SELECT "
		rest := strings.TrimPrefix(sel, selectKw)
		b.WriteString(ind + selectKw + rest[:indexOfFrom(rest)] + " INTO " + strings.Join(into, ", ") + rest[indexOfFrom(rest):] + ";\n")
		injectDiagnostics(ctx, b, ind)

	default:
		return &plsqlerrors.UnsupportedConstructError{Construct: "unknown statement", Routine: ctx.Routine}
	}
	return nil
}

func indexOfFrom(s string) int {
	i := strings.Index(s, " FROM ")
	if i < 0 {
		return len(s)
	}
	return i
}

func depthOf(ind string) int { return len(ind) / 2 }

func renderLoop(ctx *Context, b *strings.Builder, v *oracleast.LoopStatement, ind string) error {
	switch v.Kind {
	case "WHILE":
		b.WriteString(ind + "WHILE " + renderExpr(ctx, v.Cond) + " LOOP\n")
	case "FOR":
		switch {
		case v.ForCursor != nil:
			b.WriteString(ind + "FOR " + strings.ToLower(v.ForVar) + " IN " + renderSelect(ctx, v.ForCursor) + " LOOP\n")
		default:
			dir := ""
			if v.ForReverse {
				dir = "REVERSE "
			}
			b.WriteString(ind + "FOR " + strings.ToLower(v.ForVar) + " IN " + dir + renderExpr(ctx, v.ForLow) + ".." + renderExpr(ctx, v.ForHigh) + " LOOP\n")
		}
	default:
		b.WriteString(ind + "LOOP\n")
	}
	if err := renderStatements(ctx, b, v.Body, depthOf(ind)+1); err != nil {
		return err
	}
	b.WriteString(ind + "END LOOP;\n")
	return nil
}

// renderRaise implements S3's RAISE half: a user exception registered
// via PRAGMA EXCEPTION_INIT is rewritten to RAISE EXCEPTION ... USING
// ERRCODE = 'Pnnnn' (spec §4.7.5, testable property 6); a standard
// Oracle exception is rewritten to its PostgreSQL condition name; a
// bare RAISE (re-raise) passes through unchanged.
func renderRaise(ctx *Context, b *strings.Builder, v *oracleast.RaiseStatement, ind string) error {
	if v.ExceptionName == "" {
		b.WriteString(ind + "RAISE;\n")
		return nil
	}
	lname := strings.ToLower(v.ExceptionName)
	if errno, ok := ctx.Exceptions[lname]; ok {
		b.WriteString(ind + "RAISE EXCEPTION '" + lname + "' USING ERRCODE = '" + ErrCodeFor(errno) + "';\n")
		return nil
	}
	if pg, ok := StandardExceptionRewrites[lname]; ok && pg != "OTHERS" {
		b.WriteString(ind + "RAISE EXCEPTION USING ERRCODE = '" + pg + "';\n")
		return nil
	}
	ctx.warn(&plsqlerrors.UnknownReferenceError{RefKind: "exception", Name: v.ExceptionName, Routine: ctx.Routine})
	b.WriteString(ind + "RAISE EXCEPTION '" + lname + "';\n")
	return nil
}

// injectDiagnostics writes the GET DIAGNOSTICS line used to back the
// implicit SQL%ROWCOUNT/%FOUND/%NOTFOUND cursor (S1), emitted after
// every DML statement once the routine is known to reference SQL%...
// anywhere (testable property 4's "same scope" soundness condition).
func injectDiagnostics(ctx *Context, b *strings.Builder, ind string) {
	if ctx.cursors.implicit {
		b.WriteString(ind + "GET DIAGNOSTICS sql__rowcount = ROW_COUNT;\n")
	}
}

func renderInsert(ctx *Context, b *strings.Builder, v *oracleast.InsertStatement, ind string) {
	table := qualifyTable(ctx, v.Table)
	b.WriteString(ind + "INSERT INTO " + lowerQualified(table))
	if len(v.Columns) > 0 {
		var cols []string
		for _, c := range v.Columns {
			cols = append(cols, strings.ToLower(c))
		}
		b.WriteString(" (" + strings.Join(cols, ", ") + ")")
	}
	if v.Select != nil {
		b.WriteString(" " + renderSelect(ctx, v.Select))
	} else {
		var vals []string
		for _, e := range v.Values {
			vals = append(vals, renderExpr(ctx, e))
		}
		b.WriteString(" VALUES (" + strings.Join(vals, ", ") + ")")
	}
	b.WriteString(";\n")
	injectDiagnostics(ctx, b, ind)
}

func renderUpdate(ctx *Context, b *strings.Builder, v *oracleast.UpdateStatement, ind string) {
	table := qualifyTable(ctx, v.Table)
	b.WriteString(ind + "UPDATE " + lowerQualified(table) + " SET ")
	var sets []string
	for _, sc := range v.Sets {
		sets = append(sets, strings.ToLower(sc.Column)+" = "+renderExpr(ctx, sc.Value))
	}
	b.WriteString(strings.Join(sets, ", "))
	if v.Where != nil {
		b.WriteString(" WHERE " + renderExpr(ctx, v.Where))
	}
	b.WriteString(";\n")
	injectDiagnostics(ctx, b, ind)
}

func renderDelete(ctx *Context, b *strings.Builder, v *oracleast.DeleteStatement, ind string) {
	table := qualifyTable(ctx, v.Table)
	b.WriteString(ind + "DELETE FROM " + lowerQualified(table))
	if v.Where != nil {
		b.WriteString(" WHERE " + renderExpr(ctx, v.Where))
	}
	b.WriteString(";\n")
	injectDiagnostics(ctx, b, ind)
}
