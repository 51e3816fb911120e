package store

import (
	"testing"

	"github.com/ora2pg/plsqlcore/metadata"
	"github.com/ora2pg/plsqlcore/plsqlerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGet_RoundTrips(t *testing.T) {
	s := New()
	q := metadata.NewQualifiedName("hr", "emp_pkg", "bump")
	s.Put(q, Record{FullText: "PROCEDURE bump IS BEGIN NULL; END bump;"})

	rec, err := s.Get(q)
	require.NoError(t, err)
	assert.Equal(t, q, rec.Qualified)
	assert.Contains(t, rec.FullText, "bump")
}

func TestGet_MissingReturnsStorageMissError(t *testing.T) {
	s := New()
	_, err := s.Get(metadata.NewQualifiedName("hr", "emp_pkg", "nope"))
	require.Error(t, err)
	var missErr *plsqlerrors.StorageMissError
	assert.ErrorAs(t, err, &missErr)
}

func TestGet_IsCaseInsensitive(t *testing.T) {
	s := New()
	s.Put(metadata.NewQualifiedName("HR", "EMP_PKG", "BUMP"), Record{FullText: "x"})
	_, err := s.Get(metadata.NewQualifiedName("hr", "emp_pkg", "bump"))
	assert.NoError(t, err)
}

func TestStubs_ReturnsSortedStubsForContainer(t *testing.T) {
	s := New()
	container := metadata.NewQualifiedName("hr", "emp_pkg", "")
	s.Put(metadata.NewQualifiedName("hr", "emp_pkg", "zeta"), Record{StubText: "zeta stub"})
	s.Put(metadata.NewQualifiedName("hr", "emp_pkg", "alpha"), Record{StubText: "alpha stub"})
	s.Put(metadata.NewQualifiedName("hr", "other_pkg", "beta"), Record{StubText: "beta stub"})

	stubs := s.Stubs(container)
	require.Len(t, stubs, 2)
	assert.Equal(t, "alpha stub", stubs[0])
	assert.Equal(t, "zeta stub", stubs[1])
}

func TestReducedBody_ReturnsSharedContainerBody(t *testing.T) {
	s := New()
	container := metadata.NewQualifiedName("hr", "emp_pkg", "")
	s.Put(metadata.NewQualifiedName("hr", "emp_pkg", "bump"), Record{ReducedBody: "reduced"})

	body, ok := s.ReducedBody(container)
	require.True(t, ok)
	assert.Equal(t, "reduced", body)

	_, ok = s.ReducedBody(metadata.NewQualifiedName("hr", "absent_pkg", ""))
	assert.False(t, ok)
}

func TestClearAll_EmptiesStore(t *testing.T) {
	s := New()
	q := metadata.NewQualifiedName("hr", "emp_pkg", "bump")
	s.Put(q, Record{FullText: "x"})
	s.ClearAll()
	_, err := s.Get(q)
	assert.Error(t, err)
}
