package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tokens.toml")

	require.NoError(t, writeFileAtomic(path, []byte("first")))
	_, err := os.Stat(path + ".bak")
	assert.True(t, os.IsNotExist(err), "no backup for a new file")

	require.NoError(t, os.Chmod(path, 0o600))
	require.NoError(t, writeFileAtomic(path, []byte("second")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	backup, err := os.ReadFile(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, "first", string(backup))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temp files must not be left behind")
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	err := writeFileAtomic(filepath.Join(t.TempDir(), "missing", "tokens.toml"), []byte("x"))
	assert.Error(t, err)
}
