package scanner

import "github.com/ora2pg/plsqlcore/metadata"

// Segment is RoutineSegment from spec §3: a byte range in cleaned
// source text delimiting exactly one routine. Invariant:
// Start <= BodyStart < BodyEnd <= End; End is one past the terminating
// ';' of the routine.
type Segment struct {
	Name      string
	Kind      metadata.MethodKind
	Start     int
	End       int
	BodyStart int
	BodyEnd   int
	// Overload is the ordinal (0-based) among segments sharing Name in
	// this scan, recorded before any type information is available;
	// the real overload-disambiguating digest is computed later once
	// the stub has been parsed for parameter types.
	Overload int
}

// Text returns the full source text of the segment.
func (s Segment) Text(cleaned string) string { return cleaned[s.Start:s.End] }

// Body returns the segment's body text (between BodyStart and BodyEnd).
func (s Segment) Body(cleaned string) string { return cleaned[s.BodyStart:s.BodyEnd] }
