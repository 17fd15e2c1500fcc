package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeKeyFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "key.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadAPIKey(t *testing.T) {
	key, err := readAPIKey(writeKeyFile(t, "  AIzaTestKey \nsecond line\n"))
	require.NoError(t, err)
	assert.Equal(t, "AIzaTestKey", key)
}

func TestReadAPIKey_Empty(t *testing.T) {
	_, err := readAPIKey(writeKeyFile(t, ""))
	require.Error(t, err)

	_, err = readAPIKey(writeKeyFile(t, "   \n"))
	require.Error(t, err)
}

func TestReadAPIKey_Missing(t *testing.T) {
	_, err := readAPIKey(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestRootCmd_RequiresTwoArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"only-one"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	require.Error(t, cmd.Execute())
}
