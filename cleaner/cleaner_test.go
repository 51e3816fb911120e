package cleaner

import (
	"testing"

	"github.com/ora2pg/plsqlcore/plsqlerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean_LineComment(t *testing.T) {
	out, err := Clean("SELECT 1 -- trailing comment\nFROM dual;")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1                    \nFROM dual;", out)
}

func TestClean_BlockComment_PreservesNewlines(t *testing.T) {
	out, err := Clean("SELECT /* a\nb */ 1 FROM dual;")
	require.NoError(t, err)
	assert.Equal(t, "SELECT     \n     1 FROM dual;", out)
}

func TestClean_StringLiteralOpaque(t *testing.T) {
	src := "v := 'not -- a comment and /* not a block */ either';"
	out, err := Clean(src)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestClean_EscapedQuoteInString(t *testing.T) {
	src := "v := 'it''s -- still a string';"
	out, err := Clean(src)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestClean_UnterminatedBlockComment(t *testing.T) {
	_, err := Clean("SELECT 1 /* never closed")
	require.Error(t, err)
	var malformed *plsqlerrors.MalformedSourceError
	require.ErrorAs(t, err, &malformed)
}

func TestClean_UnterminatedString(t *testing.T) {
	_, err := Clean("v := 'never closed")
	require.Error(t, err)
	var malformed *plsqlerrors.MalformedSourceError
	require.ErrorAs(t, err, &malformed)
}

func TestClean_PreservesOffsets(t *testing.T) {
	src := "BEGIN\n  -- comment\n  NULL;\nEND;"
	out, err := Clean(src)
	require.NoError(t, err)
	assert.Equal(t, len(src), len(out))
	assert.Contains(t, out, "NULL;")
}
