package loader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nand2tetris-go/jackc/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDiscover_SingleFile(t *testing.T) {
	dir := t.TempDir()
	f := writeTemp(t, dir, "Main.jack", "class Main {}")

	files, err := loader.Discover(f, loader.SourceExt)
	require.NoError(t, err)
	assert.Equal(t, []string{f}, files)
}

func TestDiscover_DirectoryIsNonRecursiveAndSorted(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, dir, "Zeta.jack", "class Zeta {}")
	writeTemp(t, dir, "Alpha.jack", "class Alpha {}")
	writeTemp(t, dir, "notes.txt", "ignored")

	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o750))
	writeTemp(t, sub, "Hidden.jack", "class Hidden {}")

	files, err := loader.Discover(dir, loader.SourceExt)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(dir, "Alpha.jack"), files[0])
	assert.Equal(t, filepath.Join(dir, "Zeta.jack"), files[1])
}

func TestOutputPath_ReplacesExtension(t *testing.T) {
	assert.Equal(t, "/src/Main.vm", loader.OutputPath("/src/Main.jack", ".vm"))
}

func TestReadLines_SplitsOnNewlines(t *testing.T) {
	dir := t.TempDir()
	f := writeTemp(t, dir, "Main.jack", "line one\r\nline two\nline three")

	lines, err := loader.ReadLines(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"line one", "line two", "line three"}, lines)
}
