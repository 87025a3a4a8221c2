package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, base string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(base, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("{}\n"), 0o644))
	}
}

func TestFileScannerScan(t *testing.T) {
	tempDir := t.TempDir()
	writeFiles(t, tempDir,
		"family/2024.jsonl",
		"family/2023.JSONL",
		"friends/nested/trip.jsonl",
		"notes.txt",
		"photos/img.json",
		".trash/old.jsonl",
	)

	files, err := NewFileScanner(tempDir).Scan()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(tempDir, "family/2023.JSONL"),
		filepath.Join(tempDir, "family/2024.jsonl"),
		filepath.Join(tempDir, "friends/nested/trip.jsonl"),
	}, files)
}

func TestFileScannerEmptyAndMissing(t *testing.T) {
	files, err := NewFileScanner(t.TempDir()).Scan()
	require.NoError(t, err)
	assert.Empty(t, files)

	files, err = NewFileScanner("/path/that/does/not/exist").Scan()
	require.NoError(t, err, "missing directory is not an error")
	assert.Empty(t, files)
}
