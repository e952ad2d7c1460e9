package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/codearena.net/internal/static/errs"
)

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session")
	s := NewFileStore(path)

	_, err := s.Load()
	assert.ErrorIs(t, err, errs.ErrNoSession)

	require.NoError(t, s.Save("tok-123"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	token, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())
	_, err = s.Load()
	assert.ErrorIs(t, err, errs.ErrNoSession)
}

func TestFileStore_BlankFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))

	_, err := NewFileStore(path).Load()
	assert.ErrorIs(t, err, errs.ErrNoSession)
}
