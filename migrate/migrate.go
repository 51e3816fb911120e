package migrate

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/ora2pg/plsqlcore/emit"
	"github.com/ora2pg/plsqlcore/metadata"
	"github.com/ora2pg/plsqlcore/oracleast"
	"github.com/ora2pg/plsqlcore/oracleparse"
	"github.com/ora2pg/plsqlcore/plsqlerrors"
	"github.com/ora2pg/plsqlcore/scanner"
	"github.com/ora2pg/plsqlcore/store"
	"github.com/ora2pg/plsqlcore/stub"
	"github.com/ora2pg/plsqlcore/transform"
)

// BuildIndices is spec §6's build_indices(metadata_rows): constructs
// the MetadataIndex a migration run consults for the rest of its
// steps. A thin wrapper kept at this layer so the library surface
// named in spec §6 exists as literal, callable functions rather than
// only as metadata.Build.
func BuildIndices(rows metadata.DictionaryRows) *metadata.Index {
	return metadata.Build(rows)
}

// SegmentAndStore is spec §6's segment_and_store(unit_name, cleaned_source):
// segments one already-cleaned package-body or type-body source into
// routine/method fragments, generates each one's stub and the unit's
// reduced body, and populates s so transform_routine and the emitter
// can later look routines up by qualified name.
//
// container names the owning package or type (Schema+Object); typeBody
// selects ScanMethods over ScanRoutines (spec §4.2's two scanner
// variants).
func SegmentAndStore(s *store.Store, container metadata.QualifiedName, cleanedSrc string, typeBody bool) ([]scanner.Segment, error) {
	var segs []scanner.Segment
	var err error
	if typeBody {
		segs, err = scanner.ScanMethods(cleanedSrc, container.Object)
	} else {
		segs, err = scanner.ScanRoutines(cleanedSrc)
	}
	if err != nil {
		return nil, err
	}

	reduced := stub.Reduce(cleanedSrc, segs)

	for _, seg := range segs {
		sigText := cleanedSrc[seg.Start:seg.BodyStart]
		stubText := stub.Generate(seg, sigText, isFunctionKind(seg.Kind))
		qname := RoutineQualifiedName(container, seg)
		s.Put(qname, store.Record{
			Kind:        seg.Kind,
			FullText:    seg.Text(cleanedSrc),
			StubText:    stubText,
			ReducedBody: reduced,
		})
	}
	return segs, nil
}

// RoutineQualifiedName is the qualified-name convention SegmentAndStore
// and TransformRoutine agree on: container's schema/object with the
// segment's name plus its overload ordinal as sub-name, so two
// overloads of the same routine name never collide in the store (spec
// §9 "overloading identity" — RoutineStore keys must be unique before
// the real ArgDigest is known, which only stub+parse can compute).
func RoutineQualifiedName(container metadata.QualifiedName, seg scanner.Segment) metadata.QualifiedName {
	sub := seg.Name
	if seg.Overload > 0 {
		sub = seg.Name + "$" + strconv.Itoa(seg.Overload)
	}
	return metadata.NewQualifiedName(container.Schema, container.Object, sub)
}

func isFunctionKind(k metadata.MethodKind) bool {
	switch k {
	case metadata.KindFunction, metadata.KindMemberFunction, metadata.KindStaticFunction,
		metadata.KindMapFunction, metadata.KindOrderFunction:
		return true
	default:
		return false
	}
}

// TransformRoutine is spec §6's transform_routine(qualified_name):
// parses the routine's full text out of s and runs it through the
// transform visitor pipeline, recording the outcome on report (spec
// §7: "errors at routine granularity do not abort the migration" — a
// parse or transform failure here is returned to the caller *and*
// recorded, but does not touch any other routine's state).
func TransformRoutine(idx *metadata.Index, s *store.Store, schema string, qname metadata.QualifiedName, report *Report) (string, *oracleast.RoutineSig, error) {
	rec, err := s.Get(qname)
	if err != nil {
		report.Fail(qname, err)
		return "", nil, err
	}

	sig, block, perr := oracleparse.ParseRoutine(rec.FullText, qname.String())
	if perr != nil {
		werr := &plsqlerrors.ParseError{Routine: qname.String(), Msg: perr.Error()}
		report.Fail(qname, werr)
		return "", nil, werr
	}
	report.Trace("parsed-sig", sig)

	ctx := transform.NewContext(schema, qname.String(), idx)
	body, terr := transform.TransformRoutine(ctx, sig, block)
	for _, w := range ctx.Warnings {
		report.Warn(w)
	}
	if terr != nil {
		report.Fail(qname, terr)
		return "", nil, terr
	}
	report.Succeed(qname)
	return body, sig, nil
}

// ClearRoutineStorage is spec §6's clear_routine_storage(): empties
// RoutineStore once a migration run's emission pass is done (spec §5
// "RoutineStore: append-only during segmentation, cleared once after
// emission").
func ClearRoutineStorage(s *store.Store) {
	s.ClearAll()
}

// BuildRoutineUnit assembles an emit.RoutineUnit from a parsed
// signature and its already-transformed body, computing parameter and
// return types with the same rule TransformRoutine's own DECLARE
// rendering uses (transform.PGType), so a routine's signature and its
// body agree on every type name.
func BuildRoutineUnit(qname metadata.QualifiedName, sig *oracleast.RoutineSig, body string, dependsOn []metadata.QualifiedName) emit.RoutineUnit {
	u := emit.RoutineUnit{
		Name:      qname,
		Body:      body,
		DependsOn: dependsOn,
	}
	for _, p := range sig.Params {
		u.Params = append(u.Params, metadata.ParamSig{
			Name: p.Name,
			Mode: p.Mode,
			Type: transform.PGType(p.Type),
		})
	}
	if sig.ReturnType != nil {
		u.IsFunction = true
		u.ReturnType = transform.PGType(*sig.ReturnType)
	}
	return u
}

// ParseRoutinesPool runs fn once per name across a bounded pool of
// workers (spec §5's optional worker-pool parse parallelism), fanning
// out over names and fanning errors back in as a name-indexed map.
// Grounded on tsqlruntime/cursor.go's CursorManager sync.RWMutex
// guarded map, adapted here to a guarded error map filled by a
// fixed-size worker pool reading from one
// shared channel (fan-out/fan-in over RoutineStore keys rather than
// over cursor handles).
func ParseRoutinesPool(names []metadata.QualifiedName, workers int, fn func(metadata.QualifiedName) error) map[string]error {
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan metadata.QualifiedName)
	errs := make(map[string]error)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range jobs {
				if err := fn(n); err != nil {
					mu.Lock()
					errs[n.String()] = fmt.Errorf("routine %s: %w", n, err)
					mu.Unlock()
				}
			}
		}()
	}

	for _, n := range names {
		jobs <- n
	}
	close(jobs)
	wg.Wait()

	return errs
}
