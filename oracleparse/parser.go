package oracleparse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ora2pg/plsqlcore/oracleast"
	"github.com/ora2pg/plsqlcore/plsqlerrors"
)

type parser struct {
	lex     *lexer
	tok     token
	peeked  *token
	routine string
}

func newParser(src, routine string) (*parser, error) {
	p := &parser{lex: newLexer(src), routine: routine}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) advance() error {
	if p.peeked != nil {
		p.tok = *p.peeked
		p.peeked = nil
		return nil
	}
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) peek() (token, error) {
	if p.peeked == nil {
		t, err := p.lex.next()
		if err != nil {
			return token{}, err
		}
		p.peeked = &t
	}
	return *p.peeked, nil
}

func (p *parser) errf(format string, args ...any) error {
	return &plsqlerrors.ParseError{Routine: p.routine, Offset: p.tok.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) isIdent(text string) bool {
	return p.tok.kind == tokIdent && strings.EqualFold(p.tok.text, text)
}

func (p *parser) isPunct(text string) bool {
	return p.tok.kind == tokPunct && p.tok.text == text
}

func (p *parser) expectPunct(text string) error {
	if !p.isPunct(text) {
		return p.errf("expected %q, got %q", text, p.tok.text)
	}
	return p.advance()
}

func (p *parser) expectIdent(text string) error {
	if !p.isIdent(text) {
		return p.errf("expected %q, got %q", text, p.tok.text)
	}
	return p.advance()
}

// --- Public entrypoints ---

// ParseRoutine parses one routine's full text (signature + body) as
// produced by scanner.Segment.Text, returning its signature and body
// block.
func ParseRoutine(src, routineName string) (*oracleast.RoutineSig, *oracleast.Block, error) {
	p, err := newParser(src, routineName)
	if err != nil {
		return nil, nil, err
	}
	sig, err := p.parseSig()
	if err != nil {
		return nil, nil, err
	}
	if err := p.skipToBody(); err != nil {
		return nil, nil, err
	}
	block, err := p.parseBlockBody()
	if err != nil {
		return nil, nil, err
	}
	return sig, block, nil
}

// ParseStub parses just a routine's signature (as produced by
// stub.Generate), returning its RoutineSig without a body.
func ParseStub(src, routineName string) (*oracleast.RoutineSig, error) {
	p, err := newParser(src, routineName)
	if err != nil {
		return nil, err
	}
	return p.parseSig()
}

// ParseReducedBody parses a package/type body with routine ranges
// excised, returning the surviving package-level declarations (spec
// §4.3 BodyReducer output): variables, cursors, exceptions.
func ParseReducedBody(src, unitName string) ([]oracleast.Declaration, error) {
	p, err := newParser(src, unitName)
	if err != nil {
		return nil, err
	}
	var decls []oracleast.Declaration
	for p.tok.kind != tokEOF {
		if p.isIdent("FUNCTION") || p.isIdent("PROCEDURE") || p.isIdent("BEGIN") || p.isIdent("END") {
			// Excised routine markers or unit terminator: stop.
			break
		}
		d, ok, err := p.tryParseDeclaration()
		if err != nil {
			return nil, err
		}
		if !ok {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		decls = append(decls, d)
	}
	return decls, nil
}

// --- Signature ---

func (p *parser) parseSig() (*oracleast.RoutineSig, error) {
	kind := ""
	for _, m := range []string{"MEMBER", "STATIC", "MAP", "ORDER", "CONSTRUCTOR"} {
		if p.isIdent(m) {
			kind = m
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	isFunc := false
	switch {
	case p.isIdent("FUNCTION"):
		isFunc = true
		if kind == "" {
			kind = "FUNCTION"
		} else {
			kind = kind + " FUNCTION"
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	case p.isIdent("PROCEDURE"):
		if kind == "" {
			kind = "PROCEDURE"
		} else {
			kind = kind + " PROCEDURE"
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	default:
		return nil, p.errf("expected FUNCTION or PROCEDURE, got %q", p.tok.text)
	}

	if p.tok.kind != tokIdent {
		return nil, p.errf("expected routine name, got %q", p.tok.text)
	}
	name := p.tok.text
	if err := p.advance(); err != nil {
		return nil, err
	}

	var params []oracleast.ParamDef
	if p.isPunct("(") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		for !p.isPunct(")") {
			pd, err := p.parseParamDef()
			if err != nil {
				return nil, err
			}
			params = append(params, pd)
			if p.isPunct(",") {
				if err := p.advance(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
	}

	var ret *oracleast.DataType
	if isFunc && p.isIdent("RETURN") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.isIdent("SELF") {
			// RETURN SELF AS RESULT: constructor return clause, no
			// ordinary data type to record.
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.isIdent("AS") {
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
			if p.isIdent("RESULT") {
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
		} else {
			dt, err := p.parseDataType()
			if err != nil {
				return nil, err
			}
			ret = &dt
		}
	}

	return &oracleast.RoutineSig{Name: name, Kind: kind, Params: params, ReturnType: ret}, nil
}

func (p *parser) parseParamDef() (oracleast.ParamDef, error) {
	if p.tok.kind != tokIdent {
		return oracleast.ParamDef{}, p.errf("expected parameter name, got %q", p.tok.text)
	}
	name := p.tok.text
	if err := p.advance(); err != nil {
		return oracleast.ParamDef{}, err
	}
	mode := "IN"
	switch {
	case p.isIdent("IN"):
		if err := p.advance(); err != nil {
			return oracleast.ParamDef{}, err
		}
		if p.isIdent("OUT") {
			mode = "IN OUT"
			if err := p.advance(); err != nil {
				return oracleast.ParamDef{}, err
			}
		}
	case p.isIdent("OUT"):
		mode = "OUT"
		if err := p.advance(); err != nil {
			return oracleast.ParamDef{}, err
		}
	}
	dt, err := p.parseDataType()
	if err != nil {
		return oracleast.ParamDef{}, err
	}
	var def oracleast.Expression
	if p.isPunct(":=") || p.isIdent("DEFAULT") {
		if err := p.advance(); err != nil {
			return oracleast.ParamDef{}, err
		}
		def, err = p.parseExpr()
		if err != nil {
			return oracleast.ParamDef{}, err
		}
	}
	return oracleast.ParamDef{Name: name, Mode: mode, Type: dt, Default: def}, nil
}

func (p *parser) parseDataType() (oracleast.DataType, error) {
	if p.tok.kind != tokIdent {
		return oracleast.DataType{}, p.errf("expected type name, got %q", p.tok.text)
	}
	name := p.tok.text
	if err := p.advance(); err != nil {
		return oracleast.DataType{}, err
	}
	for p.isPunct(".") {
		if err := p.advance(); err != nil {
			return oracleast.DataType{}, err
		}
		if p.tok.kind != tokIdent {
			return oracleast.DataType{}, p.errf("expected identifier after '.', got %q", p.tok.text)
		}
		name = name + "." + p.tok.text
		if err := p.advance(); err != nil {
			return oracleast.DataType{}, err
		}
	}
	if p.isPunct("%") {
		if err := p.advance(); err != nil {
			return oracleast.DataType{}, err
		}
		if p.isIdent("ROWTYPE") {
			if err := p.advance(); err != nil {
				return oracleast.DataType{}, err
			}
			return oracleast.DataType{Name: name, RowType: true}, nil
		}
		if p.isIdent("TYPE") {
			if err := p.advance(); err != nil {
				return oracleast.DataType{}, err
			}
			return oracleast.DataType{AnchorOf: name}, nil
		}
	}
	dt := oracleast.DataType{Name: name}
	if p.isPunct("(") {
		if err := p.advance(); err != nil {
			return oracleast.DataType{}, err
		}
		nums, err := p.parseIntList()
		if err != nil {
			return oracleast.DataType{}, err
		}
		if len(nums) > 0 {
			dt.Length = nums[0]
			dt.Precision = nums[0]
		}
		if len(nums) > 1 {
			dt.Scale = nums[1]
		}
		if err := p.expectPunct(")"); err != nil {
			return oracleast.DataType{}, err
		}
	}
	return dt, nil
}

func (p *parser) parseIntList() ([]int, error) {
	var nums []int
	for {
		if p.tok.kind != tokNumber {
			break
		}
		n, _ := strconv.Atoi(p.tok.text)
		nums = append(nums, n)
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return nums, nil
}

// skipToBody advances to the IS/AS that opens the routine body and
// consumes it, tolerating RETURN SELF AS RESULT already consumed by
// parseSig.
func (p *parser) skipToBody() error {
	for !p.isIdent("IS") && !p.isIdent("AS") {
		if p.tok.kind == tokEOF {
			return p.errf("expected IS/AS before routine body")
		}
		if err := p.advance(); err != nil {
			return err
		}
	}
	return p.advance()
}

func (p *parser) tryParseDeclaration() (oracleast.Declaration, bool, error) {
	switch {
	case p.isIdent("PRAGMA"):
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		if err := p.expectIdent("EXCEPTION_INIT"); err != nil {
			return nil, false, err
		}
		if err := p.expectPunct("("); err != nil {
			return nil, false, err
		}
		if p.tok.kind != tokIdent {
			return nil, false, p.errf("expected exception name, got %q", p.tok.text)
		}
		name := p.tok.text
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		if err := p.expectPunct(","); err != nil {
			return nil, false, err
		}
		neg := false
		if p.isPunct("-") {
			neg = true
			if err := p.advance(); err != nil {
				return nil, false, err
			}
		}
		if p.tok.kind != tokNumber {
			return nil, false, p.errf("expected error number, got %q", p.tok.text)
		}
		n, _ := strconv.Atoi(p.tok.text)
		if neg {
			n = -n
		}
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, false, err
		}
		if err := p.expectPunct(";"); err != nil {
			return nil, false, err
		}
		return &oracleast.PragmaExceptionInit{ExceptionName: name, ErrorNumber: n}, true, nil

	case p.isIdent("CURSOR"):
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		if p.tok.kind != tokIdent {
			return nil, false, p.errf("expected cursor name, got %q", p.tok.text)
		}
		name := p.tok.text
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		var params []oracleast.ParamDef
		if p.isPunct("(") {
			if err := p.advance(); err != nil {
				return nil, false, err
			}
			for !p.isPunct(")") {
				pd, err := p.parseParamDef()
				if err != nil {
					return nil, false, err
				}
				params = append(params, pd)
				if p.isPunct(",") {
					if err := p.advance(); err != nil {
						return nil, false, err
					}
					continue
				}
				break
			}
			if err := p.expectPunct(")"); err != nil {
				return nil, false, err
			}
		}
		if err := p.expectIdent("IS"); err != nil {
			return nil, false, err
		}
		sel, err := p.parseSelect()
		if err != nil {
			return nil, false, err
		}
		if err := p.expectPunct(";"); err != nil {
			return nil, false, err
		}
		return &oracleast.CursorDecl{Name: name, Params: params, Select: sel}, true, nil

	case p.tok.kind == tokIdent:
		// var_name TYPE [NOT NULL] [:= expr | EXCEPTION];
		name := p.tok.text
		savedLex, savedTok, savedPeek := *p.lex, p.tok, p.peeked
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		if p.isIdent("EXCEPTION") {
			if err := p.advance(); err != nil {
				return nil, false, err
			}
			if err := p.expectPunct(";"); err != nil {
				return nil, false, err
			}
			return &oracleast.ExceptionDecl{Name: name}, true, nil
		}
		if p.tok.kind != tokIdent {
			// Not a declaration (e.g. a label or statement keyword);
			// rewind and let the caller treat it as non-declaration.
			*p.lex, p.tok, p.peeked = savedLex, savedTok, savedPeek
			return nil, false, nil
		}
		dt, err := p.parseDataType()
		if err != nil {
			return nil, false, err
		}
		notNull := false
		if p.isIdent("NOT") {
			if err := p.advance(); err != nil {
				return nil, false, err
			}
			if err := p.expectIdent("NULL"); err != nil {
				return nil, false, err
			}
			notNull = true
		}
		var def oracleast.Expression
		if p.isPunct(":=") || p.isIdent("DEFAULT") {
			if err := p.advance(); err != nil {
				return nil, false, err
			}
			def, err = p.parseExpr()
			if err != nil {
				return nil, false, err
			}
		}
		if err := p.expectPunct(";"); err != nil {
			return nil, false, err
		}
		return &oracleast.VarDecl{Name: name, Type: dt, NotNull: notNull, Default: def}, true, nil
	}
	return nil, false, nil
}

// parseBlockBody parses [DECLARE decls] BEGIN stmts [EXCEPTION
// handlers] END [name] ; — the cursor is positioned just past IS/AS
// (having been consumed by skipToBody) or at DECLARE/BEGIN for a
// nested block.
func (p *parser) parseBlockBody() (*oracleast.Block, error) {
	block := &oracleast.Block{}
	if p.isIdent("DECLARE") {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	for !p.isIdent("BEGIN") {
		if p.tok.kind == tokEOF {
			return nil, p.errf("expected BEGIN")
		}
		d, ok, err := p.tryParseDeclaration()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, p.errf("unexpected token %q in declare section", p.tok.text)
		}
		block.Declarations = append(block.Declarations, d)
	}
	if err := p.expectIdent("BEGIN"); err != nil {
		return nil, err
	}
	stmts, err := p.parseStatements("EXCEPTION", "END")
	if err != nil {
		return nil, err
	}
	block.Body = stmts
	if p.isIdent("EXCEPTION") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		for p.isIdent("WHEN") {
			h, err := p.parseExceptionHandler()
			if err != nil {
				return nil, err
			}
			block.Handlers = append(block.Handlers, h)
		}
	}
	if err := p.expectIdent("END"); err != nil {
		return nil, err
	}
	if p.tok.kind == tokIdent && !p.isPunct(";") {
		if err := p.advance(); err != nil { // optional trailing label/name
			return nil, err
		}
	}
	if p.isPunct(";") {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return block, nil
}

func (p *parser) parseExceptionHandler() (oracleast.ExceptionHandler, error) {
	if err := p.expectIdent("WHEN"); err != nil {
		return oracleast.ExceptionHandler{}, err
	}
	var names []string
	for {
		if p.tok.kind != tokIdent {
			return oracleast.ExceptionHandler{}, p.errf("expected exception name, got %q", p.tok.text)
		}
		names = append(names, p.tok.text)
		if err := p.advance(); err != nil {
			return oracleast.ExceptionHandler{}, err
		}
		if p.isIdent("OR") {
			if err := p.advance(); err != nil {
				return oracleast.ExceptionHandler{}, err
			}
			continue
		}
		break
	}
	if err := p.expectIdent("THEN"); err != nil {
		return oracleast.ExceptionHandler{}, err
	}
	stmts, err := p.parseStatements("WHEN", "END")
	if err != nil {
		return oracleast.ExceptionHandler{}, err
	}
	return oracleast.ExceptionHandler{Names: names, Body: stmts}, nil
}

// parseStatements parses statements until one of the stop words is
// seen at this nesting level (checked only when no statement matched,
// i.e. stop words are never valid statement leaders here).
func (p *parser) parseStatements(stopWords ...string) ([]oracleast.Statement, error) {
	var stmts []oracleast.Statement
	for {
		for _, w := range stopWords {
			if p.isIdent(w) {
				return stmts, nil
			}
		}
		if p.tok.kind == tokEOF {
			return stmts, nil
		}
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
}

func (p *parser) parseStatement() (oracleast.Statement, error) {
	switch {
	case p.isIdent("NULL"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		return p.finishStmt(&oracleast.NullStatement{})

	case p.isIdent("IF"):
		return p.parseIf()

	case p.isIdent("LOOP"), p.isIdent("WHILE"), p.isIdent("FOR"):
		return p.parseLoop("")

	case p.isIdent("EXIT"):
		return p.parseExit()

	case p.isIdent("RETURN"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.isPunct(";") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			return &oracleast.ReturnStatement{}, nil
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return p.finishStmt(&oracleast.ReturnStatement{Value: val})

	case p.isIdent("RAISE"):
		return p.parseRaise()

	case p.isIdent("OPEN"):
		return p.parseOpen()

	case p.isIdent("FETCH"):
		return p.parseFetch()

	case p.isIdent("CLOSE"):
		return p.parseClose()

	case p.isIdent("BEGIN"):
		blk, err := p.parseBlockBody()
		if err != nil {
			return nil, err
		}
		return &oracleast.NestedBlock{Block: blk}, nil

	case p.isIdent("DECLARE"):
		blk, err := p.parseBlockBody()
		if err != nil {
			return nil, err
		}
		return &oracleast.NestedBlock{Block: blk}, nil

	case p.isIdent("INSERT"):
		return p.parseInsert()

	case p.isIdent("UPDATE"):
		return p.parseUpdate()

	case p.isIdent("DELETE"):
		return p.parseDelete()

	case p.isIdent("SELECT"):
		return p.parseSelectIntoStatement()

	default:
		return p.parseExprStatement()
	}
}

func (p *parser) finishStmt(s oracleast.Statement) (oracleast.Statement, error) {
	if p.isPunct(";") {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (p *parser) parseIf() (oracleast.Statement, error) {
	if err := p.expectIdent("IF"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectIdent("THEN"); err != nil {
		return nil, err
	}
	then, err := p.parseStatements("ELSIF", "ELSE", "END")
	if err != nil {
		return nil, err
	}
	stmt := &oracleast.IfStatement{Cond: cond, Then: then}
	for p.isIdent("ELSIF") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		c, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectIdent("THEN"); err != nil {
			return nil, err
		}
		body, err := p.parseStatements("ELSIF", "ELSE", "END")
		if err != nil {
			return nil, err
		}
		stmt.ElsIfs = append(stmt.ElsIfs, oracleast.ElsIfBranch{Cond: c, Body: body})
	}
	if p.isIdent("ELSE") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		stmt.HasElse = true
		body, err := p.parseStatements("END")
		if err != nil {
			return nil, err
		}
		stmt.Else = body
	}
	if err := p.expectIdent("END"); err != nil {
		return nil, err
	}
	if err := p.expectIdent("IF"); err != nil {
		return nil, err
	}
	return p.finishStmt(stmt)
}

func (p *parser) parseLoop(label string) (oracleast.Statement, error) {
	stmt := &oracleast.LoopStatement{Label: label, Kind: "PLAIN"}
	switch {
	case p.isIdent("WHILE"):
		stmt.Kind = "WHILE"
		if err := p.advance(); err != nil {
			return nil, err
		}
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Cond = cond
		if err := p.expectIdent("LOOP"); err != nil {
			return nil, err
		}

	case p.isIdent("FOR"):
		stmt.Kind = "FOR"
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind != tokIdent {
			return nil, p.errf("expected FOR loop variable, got %q", p.tok.text)
		}
		stmt.ForVar = p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expectIdent("IN"); err != nil {
			return nil, err
		}
		if p.isIdent("REVERSE") {
			stmt.ForReverse = true
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if p.isPunct("(") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			sel, err := p.parseSelect()
			if err != nil {
				return nil, err
			}
			stmt.ForCursor = sel
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
		} else if p.isIdent("SELECT") {
			sel, err := p.parseSelect()
			if err != nil {
				return nil, err
			}
			stmt.ForCursor = sel
		} else {
			low, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			stmt.ForLow = low
			if err := p.expectPunct(".."); err != nil {
				return nil, err
			}
			high, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			stmt.ForHigh = high
		}
		if err := p.expectIdent("LOOP"); err != nil {
			return nil, err
		}

	default: // bare LOOP
		if err := p.expectIdent("LOOP"); err != nil {
			return nil, err
		}
	}

	body, err := p.parseStatements("END")
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	if err := p.expectIdent("END"); err != nil {
		return nil, err
	}
	if err := p.expectIdent("LOOP"); err != nil {
		return nil, err
	}
	if p.tok.kind == tokIdent && !p.isPunct(";") {
		if err := p.advance(); err != nil { // optional trailing label
			return nil, err
		}
	}
	return p.finishStmt(stmt)
}

func (p *parser) parseExit() (oracleast.Statement, error) {
	if err := p.expectIdent("EXIT"); err != nil {
		return nil, err
	}
	stmt := &oracleast.ExitStatement{}
	if p.tok.kind == tokIdent && !p.isIdent("WHEN") {
		stmt.Label = p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if p.isIdent("WHEN") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.When = cond
	}
	return p.finishStmt(stmt)
}

func (p *parser) parseRaise() (oracleast.Statement, error) {
	if err := p.expectIdent("RAISE"); err != nil {
		return nil, err
	}
	if p.isIdent("APPLICATION_ERROR") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expectPunct("("); err != nil {
			return nil, err
		}
		num, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(","); err != nil {
			return nil, err
		}
		msg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		keep := false
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.isIdent("TRUE") {
				keep = true
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return p.finishStmt(&oracleast.RaiseApplicationError{ErrorNumber: num, Message: msg, KeepErrStack: keep})
	}
	name := ""
	if p.tok.kind == tokIdent && !p.isPunct(";") {
		name = p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return p.finishStmt(&oracleast.RaiseStatement{ExceptionName: name})
}

func (p *parser) parseOpen() (oracleast.Statement, error) {
	if err := p.expectIdent("OPEN"); err != nil {
		return nil, err
	}
	if p.tok.kind != tokIdent {
		return nil, p.errf("expected cursor name, got %q", p.tok.text)
	}
	name := p.tok.text
	if err := p.advance(); err != nil {
		return nil, err
	}
	var args []oracleast.Expression
	if p.isPunct("(") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		for !p.isPunct(")") {
			a, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.isPunct(",") {
				if err := p.advance(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
	}
	return p.finishStmt(&oracleast.OpenStatement{Cursor: name, Args: args})
}

func (p *parser) parseFetch() (oracleast.Statement, error) {
	if err := p.expectIdent("FETCH"); err != nil {
		return nil, err
	}
	if p.tok.kind != tokIdent {
		return nil, p.errf("expected cursor name, got %q", p.tok.text)
	}
	name := p.tok.text
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expectIdent("INTO"); err != nil {
		return nil, err
	}
	var into []string
	for {
		if p.tok.kind != tokIdent {
			return nil, p.errf("expected variable name, got %q", p.tok.text)
		}
		into = append(into, p.tok.text)
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return p.finishStmt(&oracleast.FetchStatement{Cursor: name, Into: into})
}

func (p *parser) parseClose() (oracleast.Statement, error) {
	if err := p.expectIdent("CLOSE"); err != nil {
		return nil, err
	}
	if p.tok.kind != tokIdent {
		return nil, p.errf("expected cursor name, got %q", p.tok.text)
	}
	name := p.tok.text
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.finishStmt(&oracleast.CloseStatement{Cursor: name})
}

func (p *parser) parseObjectName() (oracleast.ObjectName, error) {
	if p.tok.kind != tokIdent {
		return oracleast.ObjectName{}, p.errf("expected table name, got %q", p.tok.text)
	}
	first := p.tok.text
	if err := p.advance(); err != nil {
		return oracleast.ObjectName{}, err
	}
	if p.isPunct(".") {
		if err := p.advance(); err != nil {
			return oracleast.ObjectName{}, err
		}
		if p.tok.kind != tokIdent {
			return oracleast.ObjectName{}, p.errf("expected table name after '.', got %q", p.tok.text)
		}
		second := p.tok.text
		if err := p.advance(); err != nil {
			return oracleast.ObjectName{}, err
		}
		return oracleast.ObjectName{Schema: first, Name: second}, nil
	}
	return oracleast.ObjectName{Name: first}, nil
}

func (p *parser) parseInsert() (oracleast.Statement, error) {
	if err := p.expectIdent("INSERT"); err != nil {
		return nil, err
	}
	if err := p.expectIdent("INTO"); err != nil {
		return nil, err
	}
	table, err := p.parseObjectName()
	if err != nil {
		return nil, err
	}
	stmt := &oracleast.InsertStatement{Table: table}
	if p.isPunct("(") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		for !p.isPunct(")") {
			if p.tok.kind != tokIdent {
				return nil, p.errf("expected column name, got %q", p.tok.text)
			}
			stmt.Columns = append(stmt.Columns, p.tok.text)
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.isPunct(",") {
				if err := p.advance(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
	}
	if p.isIdent("VALUES") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expectPunct("("); err != nil {
			return nil, err
		}
		for !p.isPunct(")") {
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			stmt.Values = append(stmt.Values, v)
			if p.isPunct(",") {
				if err := p.advance(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
	} else if p.isIdent("SELECT") {
		sel, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		stmt.Select = sel
	}
	return p.finishStmt(stmt)
}

func (p *parser) parseUpdate() (oracleast.Statement, error) {
	if err := p.expectIdent("UPDATE"); err != nil {
		return nil, err
	}
	table, err := p.parseObjectName()
	if err != nil {
		return nil, err
	}
	if err := p.expectIdent("SET"); err != nil {
		return nil, err
	}
	stmt := &oracleast.UpdateStatement{Table: table}
	for {
		if p.tok.kind != tokIdent {
			return nil, p.errf("expected column name, got %q", p.tok.text)
		}
		col := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expectPunct("="); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Sets = append(stmt.Sets, oracleast.SetClause{Column: col, Value: val})
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if p.isIdent("WHERE") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		w, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = w
	}
	return p.finishStmt(stmt)
}

func (p *parser) parseDelete() (oracleast.Statement, error) {
	if err := p.expectIdent("DELETE"); err != nil {
		return nil, err
	}
	if p.isIdent("FROM") {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	table, err := p.parseObjectName()
	if err != nil {
		return nil, err
	}
	stmt := &oracleast.DeleteStatement{Table: table}
	if p.isIdent("WHERE") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		w, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = w
	}
	return p.finishStmt(stmt)
}

func (p *parser) parseSelectIntoStatement() (oracleast.Statement, error) {
	sel, into, err := p.parseSelectWithOptionalInto()
	if err != nil {
		return nil, err
	}
	return p.finishStmt(&oracleast.SelectIntoStatement{Select: sel, Into: into})
}

// parseSelectWithOptionalInto parses a SELECT ... INTO var[, var...]
// ... statement, returning the select shape and the INTO targets.
func (p *parser) parseSelectWithOptionalInto() (*oracleast.SelectStatement, []string, error) {
	if err := p.expectIdent("SELECT"); err != nil {
		return nil, nil, err
	}
	sel := &oracleast.SelectStatement{}
	for {
		if p.isPunct("*") {
			sel.Columns = append(sel.Columns, oracleast.SelectColumn{Star: true})
			if err := p.advance(); err != nil {
				return nil, nil, err
			}
		} else {
			e, err := p.parseExpr()
			if err != nil {
				return nil, nil, err
			}
			col := oracleast.SelectColumn{Expr: e}
			if p.isIdent("AS") {
				if err := p.advance(); err != nil {
					return nil, nil, err
				}
			}
			if p.tok.kind == tokIdent && !p.isIdent("INTO") && !p.isIdent("FROM") {
				col.Alias = p.tok.text
				if err := p.advance(); err != nil {
					return nil, nil, err
				}
			}
			sel.Columns = append(sel.Columns, col)
		}
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, nil, err
			}
			continue
		}
		break
	}
	var into []string
	if p.isIdent("INTO") {
		if err := p.advance(); err != nil {
			return nil, nil, err
		}
		for {
			if p.tok.kind != tokIdent {
				return nil, nil, p.errf("expected variable name, got %q", p.tok.text)
			}
			into = append(into, p.tok.text)
			if err := p.advance(); err != nil {
				return nil, nil, err
			}
			if p.isPunct(",") {
				if err := p.advance(); err != nil {
					return nil, nil, err
				}
				continue
			}
			break
		}
	}
	if err := p.expectIdent("FROM"); err != nil {
		return nil, nil, err
	}
	for {
		item, err := p.parseFromItem()
		if err != nil {
			return nil, nil, err
		}
		sel.From = append(sel.From, item)
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, nil, err
			}
			continue
		}
		break
	}
	if p.isIdent("WHERE") {
		if err := p.advance(); err != nil {
			return nil, nil, err
		}
		w, err := p.parseExpr()
		if err != nil {
			return nil, nil, err
		}
		sel.Where = w
	}
	if p.isIdent("GROUP") {
		if err := p.advance(); err != nil {
			return nil, nil, err
		}
		if err := p.expectIdent("BY"); err != nil {
			return nil, nil, err
		}
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, nil, err
			}
			sel.GroupBy = append(sel.GroupBy, e)
			if p.isPunct(",") {
				if err := p.advance(); err != nil {
					return nil, nil, err
				}
				continue
			}
			break
		}
	}
	if p.isIdent("ORDER") {
		if err := p.advance(); err != nil {
			return nil, nil, err
		}
		if err := p.expectIdent("BY"); err != nil {
			return nil, nil, err
		}
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, nil, err
			}
			sel.OrderBy = append(sel.OrderBy, e)
			if p.isPunct(",") {
				if err := p.advance(); err != nil {
					return nil, nil, err
				}
				continue
			}
			break
		}
	}
	if p.isIdent("FOR") {
		if err := p.advance(); err != nil {
			return nil, nil, err
		}
		if err := p.expectIdent("UPDATE"); err != nil {
			return nil, nil, err
		}
		sel.ForUpdate = true
	}
	return sel, into, nil
}

func (p *parser) parseSelect() (*oracleast.SelectStatement, error) {
	sel, _, err := p.parseSelectWithOptionalInto()
	return sel, err
}

func (p *parser) parseFromItem() (oracleast.FromItem, error) {
	name, err := p.parseObjectName()
	if err != nil {
		return oracleast.FromItem{}, err
	}
	item := oracleast.FromItem{Table: name}
	if p.tok.kind == tokIdent &&
		!p.isIdent("WHERE") && !p.isIdent("GROUP") && !p.isIdent("ORDER") &&
		!p.isIdent("FOR") && !p.isPunct(",") {
		item.Alias = p.tok.text
		if err := p.advance(); err != nil {
			return oracleast.FromItem{}, err
		}
	}
	return item, nil
}

// parseExprStatement covers assignment ("x := expr;") and bare
// procedure/function calls used as statements.
func (p *parser) parseExprStatement() (oracleast.Statement, error) {
	target, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.isPunct(":=") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return p.finishStmt(&oracleast.Assignment{Target: target, Value: val})
	}
	if call, ok := target.(*oracleast.FunctionCall); ok {
		return p.finishStmt(&oracleast.CallStatement{Call: call})
	}
	return p.finishStmt(&oracleast.CallStatement{Call: &oracleast.FunctionCall{Name: target}})
}

// --- Expressions (precedence climbing) ---

func (p *parser) parseExpr() (oracleast.Expression, error) { return p.parseOr() }

func (p *parser) parseOr() (oracleast.Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.isIdent("OR") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &oracleast.BinaryExpr{Op: "OR", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (oracleast.Expression, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.isIdent("AND") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &oracleast.BinaryExpr{Op: "AND", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (oracleast.Expression, error) {
	if p.isIdent("NOT") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &oracleast.UnaryExpr{Op: "NOT", Operand: operand}, nil
	}
	return p.parseComparison()
}

var comparisonOps = []string{"=", "<>", "!=", "<=", ">=", "<", ">"}

func (p *parser) parseComparison() (oracleast.Expression, error) {
	left, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	if p.isIdent("IS") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		not := false
		if p.isIdent("NOT") {
			not = true
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if err := p.expectIdent("NULL"); err != nil {
			return nil, err
		}
		op := "IS NULL"
		if not {
			op = "IS NOT NULL"
		}
		return &oracleast.UnaryExpr{Op: op, Operand: left}, nil
	}
	if p.isIdent("BETWEEN") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		low, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		if err := p.expectIdent("AND"); err != nil {
			return nil, err
		}
		high, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		return &oracleast.BinaryExpr{Op: "BETWEEN", Left: left, Right: &oracleast.BinaryExpr{Op: "AND", Left: low, Right: high}}, nil
	}
	for p.tok.kind == tokPunct {
		matched := ""
		for _, op := range comparisonOps {
			if p.tok.text == op {
				matched = op
				break
			}
		}
		if matched == "" {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		left = &oracleast.BinaryExpr{Op: matched, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseConcat() (oracleast.Expression, error) {
	left, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	for p.isPunct("||") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		left = &oracleast.BinaryExpr{Op: "||", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAdd() (oracleast.Expression, error) {
	left, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for p.isPunct("+") || p.isPunct("-") {
		op := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		left = &oracleast.BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseMul() (oracleast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.isPunct("*") || p.isPunct("/") {
		op := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &oracleast.BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (oracleast.Expression, error) {
	if p.isPunct("-") || p.isPunct("+") {
		op := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &oracleast.UnaryExpr{Op: op, Operand: operand}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (oracleast.Expression, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		if p.isPunct("%") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.tok.kind != tokIdent {
				return nil, p.errf("expected cursor attribute, got %q", p.tok.text)
			}
			attr := p.tok.text
			if err := p.advance(); err != nil {
				return nil, err
			}
			cursorName := ""
			if id, ok := e.(*oracleast.Identifier); ok {
				cursorName = id.Name
			} else if dn, ok := e.(*oracleast.DottedName); ok {
				cursorName = strings.Join(dn.Parts, ".")
			}
			e = &oracleast.CursorAttribute{Cursor: cursorName, Attr: strings.ToUpper(attr)}
			continue
		}
		if p.isPunct(".") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.tok.kind != tokIdent {
				return nil, p.errf("expected identifier after '.', got %q", p.tok.text)
			}
			part := p.tok.text
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.isPunct("(") {
				args, err := p.parseArgs()
				if err != nil {
					return nil, err
				}
				e = &oracleast.MethodCall{Receiver: e, Method: part, Args: args}
				continue
			}
			switch v := e.(type) {
			case *oracleast.Identifier:
				e = &oracleast.DottedName{Parts: []string{v.Name, part}}
			case *oracleast.DottedName:
				e = &oracleast.DottedName{Parts: append(append([]string{}, v.Parts...), part)}
			default:
				e = &oracleast.MethodCall{Receiver: e, Method: part}
			}
			continue
		}
		break
	}
	return e, nil
}

func (p *parser) parseArgs() ([]oracleast.Expression, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var args []oracleast.Expression
	for !p.isPunct(")") {
		a, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) parsePrimary() (oracleast.Expression, error) {
	switch {
	case p.isPunct("("):
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.isIdent("SELECT") {
			sel, err := p.parseSelect()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			return &oracleast.SubqueryExpr{Select: sel}, nil
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return e, nil

	case p.isIdent("EXISTS"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expectPunct("("); err != nil {
			return nil, err
		}
		sel, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return &oracleast.ExistsExpr{Select: sel}, nil

	case p.isIdent("NEW"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		name, err := p.parseNameExpr()
		if err != nil {
			return nil, err
		}
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return &oracleast.ConstructorCall{Type: name, Args: args}, nil

	case p.isIdent("NULL"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &oracleast.Literal{Kind: "NULL", Value: "NULL"}, nil

	case p.isIdent("TRUE"), p.isIdent("FALSE"):
		v := strings.ToUpper(p.tok.text)
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &oracleast.Literal{Kind: "BOOL", Value: v}, nil

	case p.tok.kind == tokNumber:
		v := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &oracleast.Literal{Kind: "NUMBER", Value: v}, nil

	case p.tok.kind == tokString:
		v := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &oracleast.Literal{Kind: "STRING", Value: v}, nil

	case p.tok.kind == tokIdent:
		return p.parseIdentOrCall()

	default:
		return nil, p.errf("unexpected token %q in expression", p.tok.text)
	}
}

// parseNameExpr parses a dotted name without trailing call arguments.
func (p *parser) parseNameExpr() (oracleast.Expression, error) {
	if p.tok.kind != tokIdent {
		return nil, p.errf("expected identifier, got %q", p.tok.text)
	}
	first := p.tok.text
	if err := p.advance(); err != nil {
		return nil, err
	}
	parts := []string{first}
	for p.isPunct(".") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind != tokIdent {
			return nil, p.errf("expected identifier after '.', got %q", p.tok.text)
		}
		parts = append(parts, p.tok.text)
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if len(parts) == 1 {
		return &oracleast.Identifier{Name: parts[0]}, nil
	}
	return &oracleast.DottedName{Parts: parts}, nil
}

func (p *parser) parseIdentOrCall() (oracleast.Expression, error) {
	name, err := p.parseNameExpr()
	if err != nil {
		return nil, err
	}
	if p.isPunct("(") {
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return &oracleast.FunctionCall{Name: name, Args: args}, nil
	}
	return name, nil
}
