package tempstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBatchSaveAndRemove(t *testing.T) {
	t.Parallel()

	store, err := New(t.TempDir())
	require.NoError(t, err)

	batch, err := store.NewBatch("batch-1")
	require.NoError(t, err)

	path, err := batch.Save("clip.wav", strings.NewReader("audio-bytes"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "audio-bytes", string(data))

	require.NoError(t, batch.Remove())
	_, err = os.Stat(batch.Dir())
	require.True(t, os.IsNotExist(err))
}

func TestBatchesDoNotCollide(t *testing.T) {
	t.Parallel()

	store, err := New(t.TempDir())
	require.NoError(t, err)

	a, err := store.NewBatch("batch-a")
	require.NoError(t, err)
	b, err := store.NewBatch("batch-b")
	require.NoError(t, err)

	pathA, err := a.Save("clip.wav", strings.NewReader("from-a"))
	require.NoError(t, err)
	pathB, err := b.Save("clip.wav", strings.NewReader("from-b"))
	require.NoError(t, err)

	require.NotEqual(t, pathA, pathB)

	dataA, err := os.ReadFile(pathA)
	require.NoError(t, err)
	require.Equal(t, "from-a", string(dataA))
}

func TestSaveRejectsTraversal(t *testing.T) {
	t.Parallel()

	store, err := New(t.TempDir())
	require.NoError(t, err)

	batch, err := store.NewBatch("batch-1")
	require.NoError(t, err)

	path, err := batch.Save("../../etc/passwd", strings.NewReader("nope"))
	require.NoError(t, err)
	require.Equal(t, batch.Dir(), filepath.Dir(path))
	require.Equal(t, "passwd", filepath.Base(path))
}

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	require.Equal(t, "clip.wav", SanitizeFilename("clip.wav"))
	require.Equal(t, "my_talk.mp3", SanitizeFilename("my talk.mp3"))
	require.Equal(t, "clip.wav", SanitizeFilename("/tmp/evil/../clip.wav"))
	require.Equal(t, "clip.wav", SanitizeFilename(`C:\Users\x\clip.wav`))
	require.Equal(t, "", SanitizeFilename("../.."))
	require.Equal(t, "", SanitizeFilename(""))
}
