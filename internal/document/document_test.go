package document

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestOpen_Directory(t *testing.T) {
	_, err := Open(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}

func TestReader_IndependentOffsets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 body"), 0o644))

	doc, err := Open(path)
	require.NoError(t, err)
	defer doc.Close()

	assert.Equal(t, "a.pdf", doc.Name())
	assert.Equal(t, int64(13), doc.Size())

	r1 := doc.Reader()
	buf := make([]byte, 4)
	_, err = io.ReadFull(r1, buf)
	require.NoError(t, err)

	all, err := io.ReadAll(doc.Reader())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(all))
}

func TestClose_ReleasesHandle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.pdf")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	doc, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, doc.Close())
	assert.Error(t, doc.Close())
}
