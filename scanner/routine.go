// Package scanner implements BoundaryScanner (spec §4.2): a state
// machine that segments large PL/SQL compilation units into
// per-routine fragments without invoking a full grammar parser on the
// whole unit. Two variants share the same underlying state machine:
// ScanRoutines for package bodies, ScanMethods for type bodies.
//
// Grounded on the teacher's storage/detector.go depth-tracking walk
// (there, over an already-parsed AST; here, over raw cleaned text,
// since a full parse of a multi-thousand-line body is the exact cost
// this scanner exists to avoid) and on the nested-block depth
// bookkeeping in other_examples' go-plsql-statement-splitter listener
// (EnterX/ExitX depth increments/decrements), adapted from parse-tree
// callbacks into explicit state transitions over a byte scan.
package scanner

import (
	"github.com/ora2pg/plsqlcore/metadata"
	"github.com/ora2pg/plsqlcore/plsqlerrors"
)

type scanState int

const (
	stTopLevel scanState = iota
	stInKeyword
	stInSignature
	stInBody
)

// ScanRoutines segments a cleaned package-body source into routine
// segments (spec §4.2 "Routine (package-body) scanner"). src must
// already have comments stripped (cleaner.Clean) so that keyword
// matching and string-literal skipping never see a comment.
func ScanRoutines(src string) ([]Segment, error) {
	return scan(src, false)
}

// ScanMethods segments a cleaned type-body source into method
// segments (spec §4.2 "Type-body scanner"), additionally recognising
// the MEMBER/STATIC/MAP/ORDER/CONSTRUCTOR modifiers and the
// "RETURN SELF AS RESULT" constructor return clause.
func ScanMethods(src string, typeName string) ([]Segment, error) {
	segs, err := scan(src, true)
	if err != nil {
		return nil, err
	}
	for i := range segs {
		if segs[i].Kind == metadata.KindConstructor {
			segs[i].Name = typeName
		}
	}
	return segs, nil
}

func scan(src string, typeBody bool) ([]Segment, error) {
	var segs []Segment
	overloadCount := map[string]int{}

	state := stTopLevel
	i := 0
	n := len(src)

	var (
		segStart      int
		segName       string
		segKind       metadata.MethodKind
		isConstructor bool
		bodyStart     int
		sigParenDepth int
		bodyDepth     int
	)

	for i < n {
		c := src[i]

		// Any state: a string literal is opaque.
		if c == '\'' {
			i = skipString(src, i)
			continue
		}

		switch state {
		case stTopLevel:
			kws := []string{"FUNCTION", "PROCEDURE"}
			if typeBody {
				kws = append(kws, "CONSTRUCTOR")
			}
			if kw, ok := matchKeyword(src, i, kws...); ok {
				segStart = i
				isConstructor = false
				switch kw {
				case "FUNCTION":
					segKind = metadata.KindFunction
					if typeBody {
						segKind = metadata.KindMemberFunction
					}
				case "PROCEDURE":
					segKind = metadata.KindProcedure
					if typeBody {
						segKind = metadata.KindMemberProcedure
					}
				case "CONSTRUCTOR":
					segKind = metadata.KindConstructor
					isConstructor = true
				}
				i += len(kw)
				state = stInKeyword
				segName = ""
				continue
			}
			if typeBody {
				if kw, ok := matchKeyword(src, i, "MEMBER", "STATIC", "MAP", "ORDER"); ok {
					mod := kw
					i = skipSpace(src, i+len(kw))
					// MAP/ORDER may be followed by MEMBER (spec §4.2).
					if mod == "MAP" || mod == "ORDER" {
						if kw2, ok := matchKeyword(src, i, "MEMBER"); ok {
							i = skipSpace(src, i+len(kw2))
						}
					}
					if kw2, ok := matchKeyword(src, i, "FUNCTION"); ok {
						segStart = segStartForModifier(src, i, kw2)
						segKind = modifierKind(mod, metadata.KindFunction)
						i += len(kw2)
						state = stInKeyword
						segName = ""
						continue
					}
					if kw2, ok := matchKeyword(src, i, "PROCEDURE"); ok {
						segStart = segStartForModifier(src, i, kw2)
						segKind = modifierKind(mod, metadata.KindProcedure)
						i += len(kw2)
						state = stInKeyword
						segName = ""
						continue
					}
					// Modifier not followed by FUNCTION/PROCEDURE: not a
					// routine header after all: fall through one byte.
				}
			}
			i++

		case stInKeyword:
			i = skipSpace(src, i)
			if segName == "" {
				id, next := readIdentifier(src, i)
				segName = id
				i = next
				continue
			}
			i = skipSpace(src, i)
			sigParenDepth = 0
			state = stInSignature

		case stInSignature:
			switch {
			case c == '(':
				sigParenDepth++
				i++
			case c == ')':
				sigParenDepth--
				i++
			case sigParenDepth == 0:
				if kw, ok := matchKeyword(src, i, "SELF"); ok && isConstructor {
					// "RETURN SELF AS RESULT" tolerated as part of the
					// return clause; its AS does not open the body.
					i = skipSpace(src, i+len(kw))
					if kw2, ok := matchKeyword(src, i, "AS"); ok {
						i = skipSpace(src, i+len(kw2))
						if kw3, ok := matchKeyword(src, i, "RESULT"); ok {
							i += len(kw3)
						}
					}
					continue
				}
				if kw, ok := matchKeyword(src, i, "IS", "AS"); ok {
					i += len(kw)
					bodyStart = i
					bodyDepth = 0
					state = stInBody
					continue
				}
				if c == ';' {
					// Forward declaration: discard tentative segment.
					i++
					state = stTopLevel
					continue
				}
				i++
			default:
				i++
			}

		case stInBody:
			if kw, ok := matchKeyword(src, i, "BEGIN"); ok {
				bodyDepth++
				i += len(kw)
				continue
			}
			if kw, ok := matchKeyword(src, i, "END"); ok {
				after := skipSpace(src, i+len(kw))
				if kw2, ok := matchKeyword(src, after, "IF", "LOOP", "CASE"); ok {
					// END IF / END LOOP / END CASE close a compound
					// statement, not a block; they do not pair with
					// BEGIN and must not change bodyDepth.
					i = after + len(kw2)
					continue
				}
				bodyDepth--
				i += len(kw)
				i = skipSpace(src, i)
				// Optional trailing label/name after END.
				if isIdentChar(byteAt(src, i)) {
					_, next := readIdentifier(src, i)
					i = skipSpace(src, next)
				}
				if bodyDepth == 0 {
					if byteAt(src, i) == ';' {
						i++
					}
					seg := Segment{
						Name:      segName,
						Kind:      segKind,
						Start:     segStart,
						End:       i,
						BodyStart: bodyStart,
						BodyEnd:   findBodyEndBeforeEnd(src, segStart, i),
						Overload:  overloadCount[upper(segName)],
					}
					overloadCount[upper(segName)]++
					segs = append(segs, seg)
					state = stTopLevel
				}
				continue
			}
			i++
		}
	}

	if state != stTopLevel {
		return nil, &plsqlerrors.UnterminatedRoutineError{Routine: segName}
	}

	return segs, nil
}

// segStartForModifier walks back from a FUNCTION/PROCEDURE keyword
// position to the start of the preceding MEMBER/STATIC/MAP/ORDER
// modifier token(s), e.g. "MAP MEMBER FUNCTION" or "STATIC PROCEDURE".
func segStartForModifier(src string, functionKeywordPos int, _ string) int {
	// Walk back over the (single) whitespace-separated modifier
	// token(s) immediately preceding the FUNCTION/PROCEDURE keyword.
	i := functionKeywordPos
	i = skipBackSpace(src, i)
	i = skipBackIdent(src, i)
	j := skipBackSpace(src, i)
	if matchKeywordEndsAt(src, j, "MAP") || matchKeywordEndsAt(src, j, "ORDER") {
		i = skipBackIdent(src, j) // second modifier word, e.g. "MAP MEMBER"
	}
	return i
}

func skipBackSpace(src string, i int) int {
	for i > 0 && isSpace(src[i-1]) {
		i--
	}
	return i
}

func skipBackIdent(src string, i int) int {
	for i > 0 && isIdentChar(src[i-1]) {
		i--
	}
	return i
}

func modifierKind(mod string, base metadata.MethodKind) metadata.MethodKind {
	switch mod {
	case "STATIC":
		if base == metadata.KindFunction {
			return metadata.KindStaticFunction
		}
		return metadata.KindStaticProcedure
	case "MAP":
		return metadata.KindMapFunction
	case "ORDER":
		return metadata.KindOrderFunction
	default: // MEMBER
		if base == metadata.KindFunction {
			return metadata.KindMemberFunction
		}
		return metadata.KindMemberProcedure
	}
}

func matchKeywordEndsAt(src string, end int, kw string) bool {
	start := end - len(kw)
	if start < 0 {
		return false
	}
	if start > 0 && isIdentChar(src[start-1]) {
		return false
	}
	return equalFold(src[start:end], kw)
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'a' && ca <= 'z' {
			ca -= 32
		}
		if cb >= 'a' && cb <= 'z' {
			cb -= 32
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 32
		}
	}
	return string(b)
}

func byteAt(src string, i int) byte {
	if i < 0 || i >= len(src) {
		return 0
	}
	return src[i]
}

// findBodyEndBeforeEnd returns the offset of the closing END keyword
// of the outermost block (with or without a trailing label), so the
// body runs up to the whitespace before that END. routineEnd is the
// segment's End (one past the terminating ';').
func findBodyEndBeforeEnd(src string, segStart, routineEnd int) int {
	i := routineEnd
	// Walk back over optional trailing ';'.
	for i > segStart && isSpace(src[i-1]) {
		i--
	}
	if i > segStart && src[i-1] == ';' {
		i--
	}
	if matchKeywordEndsAt(src, i, "END") {
		return i - 3
	}
	// Walk back over optional label identifier.
	j := i
	for j > segStart && isIdentChar(src[j-1]) {
		j--
	}
	k := skipBackSpace(src, j)
	if matchKeywordEndsAt(src, k, "END") {
		return k - 3
	}
	return i
}
