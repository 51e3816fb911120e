package scanner

import "strings"

// isIdentChar reports whether b can appear inside an Oracle
// identifier (letters, digits, underscore, $ and # are all legal
// in unquoted PL/SQL identifiers).
func isIdentChar(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '_' || b == '$' || b == '#':
		return true
	}
	return false
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

// matchKeyword reports whether one of kws occurs at src[i:], matched
// case-insensitively with strict word boundaries (no identifier
// character immediately before or after), per spec §4.2. Returns the
// matched keyword (in its canonical given case) and its length.
func matchKeyword(src string, i int, kws ...string) (string, bool) {
	if i > 0 && isIdentChar(src[i-1]) {
		return "", false
	}
	for _, kw := range kws {
		end := i + len(kw)
		if end > len(src) {
			continue
		}
		if !strings.EqualFold(src[i:end], kw) {
			continue
		}
		if end < len(src) && isIdentChar(src[end]) {
			continue
		}
		return kw, true
	}
	return "", false
}

// skipSpace advances i past whitespace.
func skipSpace(src string, i int) int {
	for i < len(src) && isSpace(src[i]) {
		i++
	}
	return i
}

// skipString advances past a single-quoted string literal starting at
// src[i] == '\''. '' inside the literal is an embedded quote, not a
// terminator (spec §4.1/§4.2 "Any state: ' -> InString").
func skipString(src string, i int) int {
	i++ // past opening quote
	for i < len(src) {
		if src[i] == '\'' {
			if i+1 < len(src) && src[i+1] == '\'' {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return i // unterminated; caller treats as EOF
}

// readIdentifier reads a plain identifier starting at i, returning the
// identifier text and the index just past it.
func readIdentifier(src string, i int) (string, int) {
	start := i
	for i < len(src) && isIdentChar(src[i]) {
		i++
	}
	return src[start:i], i
}
