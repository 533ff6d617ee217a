package treehash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, files map[string]string) (names []string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o666))
		names = append(names, path)
	}
	return names
}

func TestFilesOrderAndDuplicates(t *testing.T) {
	t.Parallel()

	names := writeFiles(t, map[string]string{"a": "A", "b": "B"})
	h1, err := Files(names)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(h1, "h1:"), h1)

	reversed := []string{names[1], names[0], names[1]}
	h2, err := Files(reversed)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestFilesContentChange(t *testing.T) {
	t.Parallel()

	names := writeFiles(t, map[string]string{"a": "A"})
	before, err := Files(names)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(names[0], []byte("changed"), 0o666))
	after, err := Files(names)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestFilesMissing(t *testing.T) {
	t.Parallel()

	_, err := Files([]string{filepath.Join(t.TempDir(), "nope")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
