// Package oracleparse is the grammar library for this module: a
// small recursive-descent parser over PL/SQL text that has already
// been through cleaner.Clean and scanner segmentation. It is
// deliberately scoped to the constructs transform/ needs to visit
// (spec §4.2's parser-integration budget note: the parser is a small
// fraction of total effort because full-unit parsing is avoided by
// design), not a complete Oracle PL/SQL grammar.
//
// Modeled on the teacher's use of github.com/ha1tch/tsqlparser: a
// separate ast package, a Parse entrypoint that returns (ast, error),
// and internal lexer/parser types that never leak out.
package oracleparse

import (
	"strings"

	"github.com/ora2pg/plsqlcore/plsqlerrors"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	pos  int
	line int
}

type lexer struct {
	src  string
	pos  int
	line int
}

func newLexer(src string) *lexer { return &lexer{src: src, line: 1} }

func (l *lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) advance() byte {
	b := l.src[l.pos]
	l.pos++
	if b == '\n' {
		l.line++
	}
	return b
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		b := l.peekByte()
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f' {
			l.advance()
			continue
		}
		break
	}
}

var multiCharPuncts = []string{":=", "<>", "!=", "<=", ">=", "**", "..", "||"}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos, line: l.line}, nil
	}
	startPos, startLine := l.pos, l.line
	b := l.peekByte()

	switch {
	case isIdentStart(b):
		start := l.pos
		for l.pos < len(l.src) && isIdentChar(l.peekByte()) {
			l.advance()
		}
		return token{kind: tokIdent, text: l.src[start:l.pos], pos: startPos, line: startLine}, nil

	case b >= '0' && b <= '9':
		start := l.pos
		for l.pos < len(l.src) && (isDigit(l.peekByte()) || l.peekByte() == '.') {
			if l.peekByte() == '.' && strings.HasPrefix(l.src[l.pos:], "..") {
				break // range operator, as in FOR i IN 1..10
			}
			l.advance()
		}
		return token{kind: tokNumber, text: l.src[start:l.pos], pos: startPos, line: startLine}, nil

	case b == '\'':
		l.advance()
		var sb strings.Builder
		for {
			if l.pos >= len(l.src) {
				return token{}, &plsqlerrors.ParseError{Offset: startPos, Msg: "unterminated string literal"}
			}
			c := l.advance()
			if c == '\'' {
				if l.peekByte() == '\'' {
					l.advance()
					sb.WriteByte('\'')
					continue
				}
				break
			}
			sb.WriteByte(c)
		}
		return token{kind: tokString, text: sb.String(), pos: startPos, line: startLine}, nil

	case b == 'q' || b == 'Q':
		// q-quoted string literal q'[...]' etc: not a supported
		// construct. Unreachable in practice: 'q'/'Q' is already lexed
		// as an identifier by the isIdentStart case above.
		fallthrough

	default:
		for _, mp := range multiCharPuncts {
			if strings.HasPrefix(l.src[l.pos:], mp) {
				l.pos += len(mp)
				return token{kind: tokPunct, text: mp, pos: startPos, line: startLine}, nil
			}
		}
		l.advance()
		return token{kind: tokPunct, text: string(b), pos: startPos, line: startLine}, nil
	}
}

func isIdentStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}

func isIdentChar(b byte) bool {
	return isIdentStart(b) || isDigit(b) || b == '$' || b == '#'
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
