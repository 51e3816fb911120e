package transform

import (
	"strings"

	"github.com/ora2pg/plsqlcore/metadata"
	"github.com/ora2pg/plsqlcore/oracleast"
	"github.com/ora2pg/plsqlcore/plsqlerrors"
)

func renderExpr(ctx *Context, e oracleast.Expression) string {
	if e == nil {
		return ""
	}
	switch v := e.(type) {
	case *oracleast.Literal:
		switch v.Kind {
		case "STRING":
			return "'" + strings.ReplaceAll(v.Value, "'", "''") + "'"
		default:
			return v.Value
		}
	case *oracleast.Identifier:
		return strings.ToLower(v.Name)
	case *oracleast.DottedName:
		return renderDottedName(ctx, v.Parts)
	case *oracleast.CursorAttribute:
		return renderCursorAttribute(ctx, v)
	case *oracleast.BinaryExpr:
		return renderBinary(ctx, v)
	case *oracleast.UnaryExpr:
		return renderUnary(ctx, v)
	case *oracleast.FunctionCall:
		return renderCall(ctx, v)
	case *oracleast.MethodCall:
		return renderMethodCall(ctx, v)
	case *oracleast.ConstructorCall:
		return renderConstructorCall(ctx, v)
	case *oracleast.ExistsExpr:
		return "EXISTS (" + renderSelect(ctx, v.Select) + ")"
	case *oracleast.SubqueryExpr:
		return "(" + renderSelect(ctx, v.Select) + ")"
	default:
		ctx.warn(&plsqlerrors.UnsupportedConstructError{Construct: "unknown expression", Routine: ctx.Routine})
		return ""
	}
}

// renderCursorAttribute implements spec §4.7.4/testable property 5:
// every %FOUND|%NOTFOUND|%ROWCOUNT|%ISOPEN token is rewritten to a
// tracking-variable reference, closing off the raw attribute syntax
// entirely. SQL%ISOPEN is always FALSE (spec §9 open question:
// implicit cursors are assumed auto-closed).
func renderCursorAttribute(ctx *Context, v *oracleast.CursorAttribute) string {
	if strings.EqualFold(v.Cursor, "SQL") {
		ctx.cursors.markUsed("SQL")
		switch strings.ToUpper(v.Attr) {
		case "FOUND":
			return "(sql__rowcount > 0)"
		case "NOTFOUND":
			return "(sql__rowcount = 0)"
		case "ROWCOUNT":
			return "sql__rowcount"
		case "ISOPEN":
			return "FALSE"
		}
	}
	ctx.cursors.markUsed(v.Cursor)
	name := cursorVarName(v.Cursor)
	switch strings.ToUpper(v.Attr) {
	case "FOUND":
		return name + "__found"
	case "NOTFOUND":
		return "(NOT " + name + "__found)"
	case "ROWCOUNT":
		return name + "__rowcount"
	case "ISOPEN":
		return name + "__isopen"
	}
	ctx.warn(&plsqlerrors.UnsupportedConstructError{Construct: v.Cursor + "%" + v.Attr, Routine: ctx.Routine})
	return name + "__" + strings.ToLower(v.Attr)
}

// renderDottedName implements object field access rewriting (spec
// §4.7.6, S2): a.b.c[.d...] becomes (a.b).c[.d...] whenever the
// resolved root column's type is a known object type; otherwise the
// dotted chain is passed through unchanged (testable property 9,
// "object-field transform locality").
func renderDottedName(ctx *Context, parts []string) string {
	lower := make([]string, len(parts))
	for i, p := range parts {
		lower[i] = strings.ToLower(p)
	}
	if len(parts) < 3 {
		return strings.Join(lower, ".")
	}

	table, ok := ctx.Aliases[strings.ToLower(parts[0])]
	if !ok {
		if resolved, ok2 := ctx.Index.ResolveSynonym(parts[0], ctx.Schema); ok2 {
			table = resolved
		} else if ctx.Index.IsTableInSchema(ctx.Schema, parts[0]) {
			table = metadata.NewQualifiedName(ctx.Schema, parts[0], "")
		} else {
			// Root is not a known alias/table: leave verbatim.
			return strings.Join(lower, ".")
		}
	}

	colType, ok := ctx.Index.GetColumnType(table, parts[1])
	if !ok {
		return strings.Join(lower, ".")
	}
	qualified := ctx.Index.QualifyTypeName(colType, ctx.Schema)
	q := metadata.NewQualifiedName("", "", "")
	if i := strings.LastIndex(qualified, "."); i >= 0 {
		q = metadata.NewQualifiedName(qualified[:i], qualified[i+1:], "")
	}
	if !ctx.Index.IsObjectType(q) {
		// Root's column type is not an object type: preserve verbatim.
		return strings.Join(lower, ".")
	}

	expr := "(" + lower[0] + "." + lower[1] + ")." + lower[2]
	for _, field := range lower[3:] {
		expr = "(" + expr + ")." + field
	}
	return expr
}

func renderBinary(ctx *Context, v *oracleast.BinaryExpr) string {
	if v.Op == "BETWEEN" {
		right := v.Right.(*oracleast.BinaryExpr)
		return renderExpr(ctx, v.Left) + " BETWEEN " + renderExpr(ctx, right.Left) + " AND " + renderExpr(ctx, right.Right)
	}
	return renderExpr(ctx, v.Left) + " " + v.Op + " " + renderExpr(ctx, v.Right)
}

func renderUnary(ctx *Context, v *oracleast.UnaryExpr) string {
	switch v.Op {
	case "IS NULL", "IS NOT NULL":
		return renderExpr(ctx, v.Operand) + " " + v.Op
	case "NOT":
		return "NOT " + renderExpr(ctx, v.Operand)
	default:
		return v.Op + renderExpr(ctx, v.Operand)
	}
}

func renderCall(ctx *Context, v *oracleast.FunctionCall) string {
	// The parser folds v.m(args) into a call named by the dotted name;
	// when v is a declared variable of an object type, it is a method call.
	if dn, ok := v.Name.(*oracleast.DottedName); ok && len(dn.Parts) == 2 {
		if t, ok := ctx.VarTypes[strings.ToLower(dn.Parts[0])]; ok && ctx.Index.IsObjectType(qualifyObjectType(ctx, t)) {
			return renderMethodCall(ctx, &oracleast.MethodCall{Receiver: &oracleast.Identifier{Name: dn.Parts[0]}, Method: dn.Parts[1], Args: v.Args})
		}
	}

	var args []string
	for _, a := range v.Args {
		args = append(args, renderExpr(ctx, a))
	}

	rawName := ""
	switch n := v.Name.(type) {
	case *oracleast.Identifier:
		rawName = n.Name
	case *oracleast.DottedName:
		rawName = n.Parts[len(n.Parts)-1]
	}

	// Oracle object-type constructors are ordinary calls syntactically
	// (NEW is optional and rarely written); a call whose name is a
	// known object type is therefore a constructor invocation (S4),
	// not a built-in function call.
	q := qualifyObjectType(ctx, rawName)
	if ctx.Index.IsObjectType(q) {
		return strings.ToLower(rawName) + "__new(" + strings.Join(args, ", ") + ")"
	}

	return renameFunction(rawName) + "(" + strings.Join(args, ", ") + ")"
}

// renderMethodCall implements S4's method-call half: v.get_salary()
// becomes employee_type__get_salary(v), resolved through the
// receiver's declared object-type name (spec §4.7.7).
func renderMethodCall(ctx *Context, v *oracleast.MethodCall) string {
	var args []string
	args = append(args, renderExpr(ctx, v.Receiver))
	for _, a := range v.Args {
		args = append(args, renderExpr(ctx, a))
	}
	typeName := receiverTypeName(ctx, v.Receiver)
	if typeName == "" {
		ctx.warn(&plsqlerrors.UnknownReferenceError{RefKind: "type", Name: v.Method, Routine: ctx.Routine})
		return strings.ToLower(v.Method) + "(" + strings.Join(args, ", ") + ")"
	}
	return strings.ToLower(typeName) + "__" + strings.ToLower(v.Method) + "(" + strings.Join(args, ", ") + ")"
}

// renderConstructorCall implements S4's constructor half:
// employee_type(1, 'john') becomes employee_type__new(1, 'john').
func renderConstructorCall(ctx *Context, v *oracleast.ConstructorCall) string {
	var args []string
	for _, a := range v.Args {
		args = append(args, renderExpr(ctx, a))
	}
	name := ""
	switch n := v.Type.(type) {
	case *oracleast.Identifier:
		name = n.Name
	case *oracleast.DottedName:
		name = n.Parts[len(n.Parts)-1]
	}
	return strings.ToLower(name) + "__new(" + strings.Join(args, ", ") + ")"
}

// receiverTypeName best-effort resolves the object type name of a
// method-call receiver from the declared variable types tracked on
// the context (populated as VarDecls are rendered). Only a bare
// identifier receiver is resolved; any other receiver yields "".
func receiverTypeName(ctx *Context, e oracleast.Expression) string {
	if id, ok := e.(*oracleast.Identifier); ok {
		if t, ok := ctx.VarTypes[strings.ToLower(id.Name)]; ok {
			return t
		}
	}
	return ""
}

// qualifyObjectType resolves a bare type name (as written at the call
// site) to its dictionary-qualified QualifiedName, the shape
// IsObjectType/LookupMethod key on.
func qualifyObjectType(ctx *Context, rawName string) metadata.QualifiedName {
	qualified := ctx.Index.QualifyTypeName(rawName, ctx.Schema)
	if i := strings.LastIndex(qualified, "."); i >= 0 {
		return metadata.NewQualifiedName(qualified[:i], qualified[i+1:], "")
	}
	return metadata.QualifiedName{}
}

// isChainedMethodCall reports whether e is a method call whose own
// receiver is itself a method call (a.m().n()), the shape spec §4.7.6
// "method chaining" unflattens into temporaries.
func isChainedMethodCall(e oracleast.Expression) (*oracleast.MethodCall, bool) {
	mc, ok := e.(*oracleast.MethodCall)
	if !ok {
		return nil, false
	}
	if _, ok := mc.Receiver.(*oracleast.MethodCall); !ok {
		return nil, false
	}
	return mc, true
}

// renderMethodCallChain implements spec §4.7.6's "method chaining":
// a.m().n() is unflattened into one temporary per link (tmp1 :=
// T1__m(a); tmp2 := T2__n(tmp1);) rather than nested calls, returning
// the name of the temporary holding the chain's final result. Every
// link's receiver and return type must resolve through the method
// index; if any step can't be typed, the whole chain is reported and
// passed through nested instead (spec's documented fallback), matching
// renderMethodCall's own single-call behavior.
func renderMethodCallChain(ctx *Context, b *strings.Builder, ind string, v *oracleast.MethodCall) string {
	var links []*oracleast.MethodCall
	for cur := v; ; {
		links = append([]*oracleast.MethodCall{cur}, links...)
		inner, ok := cur.Receiver.(*oracleast.MethodCall)
		if !ok {
			break
		}
		cur = inner
	}

	type step struct {
		typeName string
		retType  string
	}
	steps := make([]step, len(links))
	typeName := receiverTypeName(ctx, links[0].Receiver)
	for i, link := range links {
		if typeName == "" {
			return chainFallback(ctx, v, link.Method, "receiver type could not be resolved")
		}
		sig, ok := ctx.Index.LookupMethod(qualifyObjectType(ctx, typeName), link.Method, "")
		if !ok {
			return chainFallback(ctx, v, link.Method, "return type could not be resolved")
		}
		steps[i] = step{typeName: typeName, retType: sig.ReturnType}
		typeName = sig.ReturnType
	}

	receiverExpr := renderExpr(ctx, links[0].Receiver)
	for i, link := range links {
		var args []string
		args = append(args, receiverExpr)
		for _, a := range link.Args {
			args = append(args, renderExpr(ctx, a))
		}
		callExpr := strings.ToLower(steps[i].typeName) + "__" + strings.ToLower(link.Method) + "(" + strings.Join(args, ", ") + ")"
		tmp := ctx.newTemp(metadata.MapColumnType(steps[i].retType, 0, 0, 0))
		b.WriteString(ind + tmp + " := " + callExpr + ";\n")
		receiverExpr = tmp
	}
	return receiverExpr
}

func chainFallback(ctx *Context, v *oracleast.MethodCall, step, reason string) string {
	ctx.warn(&plsqlerrors.UnsupportedConstructError{
		Construct: "method chain step " + step,
		Routine:   ctx.Routine,
		Hint:      reason + "; chain rendered as nested calls instead of temporaries",
	})
	return renderMethodCall(ctx, v)
}
