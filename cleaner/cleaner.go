// Package cleaner implements SourceCleaner (spec §4.1): stripping
// PL/SQL comments while treating single-quoted string literals as
// opaque, preserving character offsets so downstream scanning can
// trust relative positions.
//
// The approach mirrors the line/block comment walk in the teacher
// transpiler's comment extractor (quote-parity tracking to decide
// whether a comment marker is "really" a comment or sits inside a
// string), but runs as a single forward pass over the whole source
// rather than per line, since `--` comments can follow an opened
// multi-line block and offsets must stay exact across line breaks.
package cleaner

import "github.com/ora2pg/plsqlcore/plsqlerrors"

// Clean removes `--`-to-end-of-line and non-nesting /* ... */ comments
// from src, preserving '' escaped quotes inside string literals.
// Comment bytes are replaced with spaces (newlines inside block
// comments are preserved as newlines) so that every remaining
// character keeps its original offset and line number.
func Clean(src string) (string, error) {
	out := make([]byte, len(src))
	copy(out, src)

	const (
		stTop = iota
		stLineComment
		stBlockComment
		stString
	)

	state := stTop
	line, col := 1, 1
	startLine, startCol := 1, 1

	advance := func(c byte) {
		if c == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}

	i := 0
	for i < len(src) {
		c := src[i]
		switch state {
		case stTop:
			switch {
			case c == '-' && i+1 < len(src) && src[i+1] == '-':
				state = stLineComment
				startLine, startCol = line, col
				out[i], out[i+1] = ' ', ' '
				advance(c)
				i++
				advance(src[i])
				i++
				continue
			case c == '/' && i+1 < len(src) && src[i+1] == '*':
				state = stBlockComment
				startLine, startCol = line, col
				out[i], out[i+1] = ' ', ' '
				advance(c)
				i++
				advance(src[i])
				i++
				continue
			case c == '\'':
				state = stString
				startLine, startCol = line, col
			}
		case stLineComment:
			if c == '\n' {
				state = stTop
				advance(c)
				i++
				continue
			}
			out[i] = ' '
		case stBlockComment:
			if c == '*' && i+1 < len(src) && src[i+1] == '/' {
				out[i], out[i+1] = ' ', ' '
				advance(c)
				i++
				advance(src[i])
				i++
				state = stTop
				continue
			}
			if c != '\n' {
				out[i] = ' '
			}
		case stString:
			if c == '\'' {
				if i+1 < len(src) && src[i+1] == '\'' {
					// Escaped quote inside the literal; stays in stString.
					advance(c)
					i++
					advance(src[i])
					i++
					continue
				}
				state = stTop
			}
		}
		advance(c)
		i++
	}

	switch state {
	case stBlockComment:
		return "", &plsqlerrors.MalformedSourceError{Line: startLine, Col: startCol}
	case stString:
		return "", &plsqlerrors.MalformedSourceError{Line: startLine, Col: startCol}
	}

	return string(out), nil
}
