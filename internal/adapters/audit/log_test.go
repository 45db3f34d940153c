package audit_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/internal/adapters/audit"
)

func TestFileLog_AppendContains(t *testing.T) {
	t.Parallel()

	l := audit.NewFileLog(filepath.Join(t.TempDir(), "audit.log"))

	require.NoError(t, l.Append("run-1"))
	require.NoError(t, l.Append("run-2"))

	ok, err := l.Contains("run-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Contains("run-3")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileLog_MissingFile(t *testing.T) {
	t.Parallel()

	l := audit.NewFileLog(filepath.Join(t.TempDir(), "audit.log"))

	ok, err := l.Contains("run-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileLog_CreatesParentDir(t *testing.T) {
	t.Parallel()

	l := audit.NewFileLog(filepath.Join(t.TempDir(), "nested", "dir", "audit.log"))

	require.NoError(t, l.Append("run-1"))
	ok, err := l.Contains("run-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFileLog_NoPrefixMatch(t *testing.T) {
	t.Parallel()

	l := audit.NewFileLog(filepath.Join(t.TempDir(), "audit.log"))
	require.NoError(t, l.Append("run-10"))

	ok, err := l.Contains("run-1")
	require.NoError(t, err)
	assert.False(t, ok, "identifiers match whole tokens only")
}
