package filestore

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveAndOpen(t *testing.T) {
	store := New(t.TempDir())

	path, err := store.Save("assignments/7/100_abc.pdf", strings.NewReader("submission body"))
	require.NoError(t, err)

	f, err := store.Open(path)
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.Equal(t, "submission body", string(data))
}

func TestSaveRejectsEscapingPath(t *testing.T) {
	store := New(t.TempDir())

	_, err := store.Save("../outside.txt", strings.NewReader("x"))
	require.Error(t, err)
}

func TestOpenRejectsForeignPath(t *testing.T) {
	store := New(t.TempDir())

	_, err := store.Open("/etc/passwd")
	require.Error(t, err)
}

func TestRemoveMissingFileIsNoError(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)

	require.NoError(t, store.Remove(dir+"/never-written.txt"))
}
