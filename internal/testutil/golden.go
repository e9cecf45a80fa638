package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// UpdateGoldenEnv rewrites golden files instead of comparing when set.
const UpdateGoldenEnv = "DAYTASK_UPDATE_GOLDEN"

// Golden compares got with testdata/<name>.golden.
func Golden(t *testing.T, name string, got []byte) {
	t.Helper()

	path := filepath.Join("testdata", name+".golden")
	if os.Getenv(UpdateGoldenEnv) != "" {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, got, 0o644))
		return
	}

	want, err := os.ReadFile(path)
	require.NoError(t, err, "reading golden file %s; got:\n%s", path, got)
	assert.Equal(t, string(want), string(got), "output mismatch for %s", name)
}

// GoldenString is Golden for string output.
func GoldenString(t *testing.T, name string, got string) {
	t.Helper()
	Golden(t, name, []byte(got))
}
