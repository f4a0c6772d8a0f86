package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	for _, name := range []string{"chain.json", "chain.json.xz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			src := newTestSession(t)
			_, err := src.Train(context.Background(), strings.NewReader("one fish two fish.\nred fish blue fish.\n"))
			require.NoError(t, err)
			require.NoError(t, src.SaveSnapshot(path))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, isCompressed(path), !bytes.HasPrefix(data, []byte("{")))

			dst := newTestSession(t)
			dst.Parse("something else entirely")
			require.NoError(t, dst.LoadSnapshot(path))

			assert.Equal(t, src.Stats(), dst.Stats())
			assert.Equal(t, src.chain.Edges(), dst.chain.Edges())

			sentence, err := dst.ComposeFrom("red", 0)
			require.NoError(t, err)
			assert.Contains(t, sentence, "red")
		})
	}
}

func TestLoadSnapshotErrorsKeepChain(t *testing.T) {
	dir := t.TempDir()
	session := newTestSession(t)
	session.Parse("keep me")
	before := session.Stats()

	assert.Error(t, session.LoadSnapshot(filepath.Join(dir, "missing.json")))

	corrupt := filepath.Join(dir, "corrupt.json.xz")
	require.NoError(t, os.WriteFile(corrupt, []byte("not xz at all"), 0o644))
	assert.Error(t, session.LoadSnapshot(corrupt))

	assert.Equal(t, before, session.Stats())
}

func TestStoreSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	session := newTestStoreSession(t, "poems")

	// A chain that was never saved loads as empty.
	require.NoError(t, session.Load(ctx))
	assert.Equal(t, 0, session.Stats().Edges)

	session.Parse("Mary had a little lamb")
	require.NoError(t, session.Save(ctx))

	session.Parse("something new")
	require.NoError(t, session.Load(ctx))
	assert.Equal(t, 6, session.Stats().Edges)

	sentence, err := session.ComposeFrom("lamb", 0)
	require.NoError(t, err)
	assert.Equal(t, "Mary had a little lamb", sentence)
}

func TestTrainFilesSkipsUnreadable(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	require.NoError(t, os.WriteFile(good, []byte("a b\n\nc d\n"), 0o644))

	session := newTestSession(t)
	lines := session.TrainFiles(context.Background(), []string{filepath.Join(dir, "missing.txt"), good})
	assert.Equal(t, 2, lines)
	assert.Equal(t, 6, session.Stats().Edges)
}
