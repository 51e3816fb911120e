// Package stub implements StubGenerator and BodyReducer (spec §4.3):
// given a routine's signature text, produce a minimal parseable stub
// body; given a compilation unit's cleaned text and the segments
// found in it, produce the reduced body (declarations only, routine
// ranges excised) used to resolve package/type-level state without
// reparsing every routine body.
package stub

import (
	"sort"
	"strings"

	"github.com/ora2pg/plsqlcore/scanner"
)

// Generate returns a minimal compilable stub for a routine: its
// signature text followed by a body that does nothing but satisfy the
// return-type contract ("RETURN NULL;" for functions, "RETURN;" for
// procedures and constructors already closed by their own clause).
//
// Grounded on the teacher's zeroValueForType/buildReturnStatement
// (transpiler/transpiler.go): there, a real return statement is
// synthesized from the declared return type when a procedure falls
// through without one; here the same "manufacture a trivially valid
// return" idea produces a stub body instead of a real statement.
func Generate(sig scanner.Segment, sigText string, isFunction bool) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(sigText, " \t\n\r"))
	if !strings.HasSuffix(strings.TrimSpace(sigText), "IS") && !strings.HasSuffix(strings.TrimSpace(sigText), "AS") {
		b.WriteString(" IS")
	}
	b.WriteString("\nBEGIN\n")
	if isFunction {
		b.WriteString("  RETURN NULL;\n")
	} else {
		b.WriteString("  RETURN;\n")
	}
	b.WriteString("END ")
	b.WriteString(sig.Name)
	b.WriteString(";\n")
	return b.String()
}

// Reduce returns cleaned with every segment's [Start,End) byte range
// replaced by whitespace (preserving offsets so declarations before
// and after routines keep their positions relative to the original
// unit), leaving only package/type-level declarations, cursors, and
// exceptions for ParseReducedBody to consume.
func Reduce(cleaned string, segs []scanner.Segment) string {
	sorted := append([]scanner.Segment(nil), segs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var b strings.Builder
	b.Grow(len(cleaned))
	pos := 0
	for _, seg := range sorted {
		if seg.Start < pos {
			continue // overlapping/duplicate segment, already covered
		}
		b.WriteString(cleaned[pos:seg.Start])
		for i := seg.Start; i < seg.End; i++ {
			if cleaned[i] == '\n' {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		pos = seg.End
	}
	b.WriteString(cleaned[pos:])
	return b.String()
}
