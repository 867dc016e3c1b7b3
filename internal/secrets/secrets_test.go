package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingDirectory(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadReadsKeyFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, KeySearch), []byte("tvly-123\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, KeyModel), []byte("  sk-456  "), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("skip"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty"), []byte("  \n"), 0o600))

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		KeySearch: "tvly-123",
		KeyModel:  "sk-456",
	}, got)
}

func TestResolvePrecedence(t *testing.T) {
	loaded := map[string]string{KeySearch: "from-file"}
	t.Setenv("POSITION_FINDER_TEST_KEY", "from-env")

	assert.Equal(t, "from-flag", Resolve("from-flag", loaded, KeySearch, "POSITION_FINDER_TEST_KEY"))
	assert.Equal(t, "from-file", Resolve("", loaded, KeySearch, "POSITION_FINDER_TEST_KEY"))
	assert.Equal(t, "from-env", Resolve("", nil, KeySearch, "POSITION_FINDER_TEST_KEY"))
	assert.Equal(t, "", Resolve("", nil, KeySearch, "POSITION_FINDER_TEST_UNSET"))
}
