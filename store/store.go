// Package store implements RoutineStore (spec §3/§4.4): a
// process-lifetime, concurrency-safe map from a routine's qualified
// name to its three source forms (full text, stub, reduced body),
// populated once by segment_and_store and read many times by
// transform_routine and the emitter.
//
// Grounded on tsqlruntime/cursor.go's CursorManager: a
// sync.RWMutex-guarded map with case-normalized keys and small
// get/put accessors. RoutineStore follows the same shape, generalized
// from cursor handles to routine source records.
package store

import (
	"strings"
	"sync"

	"github.com/ora2pg/plsqlcore/metadata"
	"github.com/ora2pg/plsqlcore/plsqlerrors"
)

// Record holds the three source forms spec §3 RoutineStore keeps per
// routine: the full original text, the generated stub, and the
// container's reduced body (the unit with every routine range
// excised, the same text for all routines of one container).
type Record struct {
	Qualified   metadata.QualifiedName
	Kind        metadata.MethodKind
	FullText    string
	StubText    string
	ReducedBody string
}

// Store is RoutineStore.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record
}

// New returns an empty Store.
func New() *Store {
	return &Store{records: make(map[string]Record)}
}

func key(q metadata.QualifiedName) string {
	return strings.ToUpper(q.String())
}

// Put inserts or replaces the record for q.
func (s *Store) Put(q metadata.QualifiedName, rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.Qualified = q
	s.records[key(q)] = rec
}

// Get returns the record for q, or a StorageMissError if absent.
func (s *Store) Get(q metadata.QualifiedName) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key(q)]
	if !ok {
		return Record{}, &plsqlerrors.StorageMissError{Qualified: q.String()}
	}
	return rec, nil
}

// Stubs returns the stub text of every routine belonging to
// container (a package or type, matched on Schema+Object), in
// deterministic (sorted) order, for building a forward-declaration
// preamble the parser can resolve sibling calls against.
func (s *Store) Stubs(container metadata.QualifiedName) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var names []string
	for k, rec := range s.records {
		if rec.Qualified.Schema == container.Schema && rec.Qualified.Object == container.Object {
			names = append(names, k)
		}
	}
	sortStrings(names)
	stubs := make([]string, 0, len(names))
	for _, n := range names {
		stubs = append(stubs, s.records[n].StubText)
	}
	return stubs
}

// ReducedBody returns the reduced body text last stored for any
// routine of container (every routine sharing one container stores
// the same reduced unit; the last write wins and all writes agree by
// construction, since segment_and_store reduces the unit once).
func (s *Store) ReducedBody(container metadata.QualifiedName) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if rec.Qualified.Schema == container.Schema && rec.Qualified.Object == container.Object {
			return rec.ReducedBody, true
		}
	}
	return "", false
}

// ClearAll empties the store (spec §6 clear_routine_storage).
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]Record)
}

func sortStrings(ss []string) {
	for i := 1; i < len(ss); i++ {
		for j := i; j > 0 && ss[j-1] > ss[j]; j-- {
			ss[j-1], ss[j] = ss[j], ss[j-1]
		}
	}
}
