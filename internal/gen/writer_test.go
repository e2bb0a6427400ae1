package gen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()

	units := []GeneratedUnit{
		{Name: "A", Filename: "a_mapping_gen.go", Dir: filepath.Join(dir, "one"), Content: []byte("package one\n")},
		{Name: "B", Filename: "b_mapping_gen.go", Dir: filepath.Join(dir, "two"), Content: []byte("package two\n")},
	}

	written, err := WriteFiles(units)
	require.NoError(t, err)
	assert.Equal(t, []string{units[0].Path(), units[1].Path()}, written)

	data, err := os.ReadFile(units[1].Path())
	require.NoError(t, err)
	assert.Equal(t, "package two\n", string(data))

	assert.Empty(t, Stale(units))

	written, err = WriteFiles(units)
	require.NoError(t, err)
	assert.Empty(t, written, "unchanged files are not rewritten")

	units[0].Content = []byte("package one\n\nvar x = 1\n")
	stale := Stale(units)
	require.Len(t, stale, 1)
	assert.Equal(t, "A", stale[0].Name)
}

func TestWriteFiles_DuplicatePath(t *testing.T) {
	dir := t.TempDir()

	units := []GeneratedUnit{
		{Name: "A", Filename: "line_mapping_gen.go", Dir: dir, Content: []byte("package one\n")},
		{Name: "B", Filename: "line_mapping_gen.go", Dir: dir + "/.", Content: []byte("package two\n")},
	}

	written, err := WriteFiles(units)
	require.ErrorIs(t, err, ErrDuplicatePath)
	assert.Empty(t, written)

	_, err = os.Stat(units[0].Path())
	assert.True(t, os.IsNotExist(err), "nothing is written")
}

func TestWriteFiles_Error(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, filePerm))

	_, err := WriteFiles([]GeneratedUnit{{Filename: "x.go", Dir: filepath.Join(blocker, "sub")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating output directory")
}
