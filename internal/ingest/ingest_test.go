package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestFindDocuments(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.pdf"), "b")
	touch(t, filepath.Join(root, "a.PDF"), "a")
	touch(t, filepath.Join(root, "notes.txt"), "x")
	touch(t, filepath.Join(root, "sub", "c.pdf"), "c")
	touch(t, filepath.Join(root, ".hidden", "d.pdf"), "d")
	touch(t, filepath.Join(root, ".e.pdf"), "e")

	paths, failures, stats, err := FindDocuments(context.Background(), root, true)
	require.NoError(t, err)
	assert.Empty(t, failures)
	assert.Equal(t, []string{
		filepath.Join(root, "a.PDF"),
		filepath.Join(root, "b.pdf"),
		filepath.Join(root, "sub", "c.pdf"),
	}, paths)
	assert.Equal(t, uint32(3), stats.Matched)

	all, _, _, err := FindDocuments(context.Background(), root, false)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestFindDocuments_Errors(t *testing.T) {
	_, _, _, err := FindDocuments(context.Background(), "  ", true)
	assert.Error(t, err)

	_, _, _, err = FindDocuments(context.Background(), filepath.Join(t.TempDir(), "missing"), true)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, _, err = FindDocuments(ctx, t.TempDir(), true)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden("/x/.git"))
	assert.False(t, IsHidden("/x/inv.pdf"))
	assert.False(t, IsHidden("."))
}

func TestSeen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.pdf")
	touch(t, path, "v1")
	s := NewSeen()

	changed, err := s.Changed(path)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.Changed(path)
	require.NoError(t, err)
	assert.False(t, changed)

	touch(t, path, "v2")
	changed, err = s.Changed(path)
	require.NoError(t, err)
	assert.True(t, changed)

	s.Forget(path)
	changed, err = s.Changed(path)
	require.NoError(t, err)
	assert.True(t, changed)

	_, err = s.Changed(filepath.Join(t.TempDir(), "gone.pdf"))
	assert.Error(t, err)
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.pdf")
	touch(t, path, "abc")
	sum, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sum)
}

func receive(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case p, ok := <-ch:
		require.True(t, ok, "watcher closed early")
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher event")
		return ""
	}
}

func TestStartWatcher(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "existing.pdf")
	touch(t, existing, "x")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{root},
		InitialScan: true,
		SkipHidden:  true,
		Debounce:    20 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Equal(t, existing, receive(t, events))

	touch(t, filepath.Join(root, "ignored.txt"), "x")
	fresh := filepath.Join(root, "fresh.pdf")
	touch(t, fresh, "y")
	assert.Equal(t, fresh, receive(t, events))

	cancel()
	for range events {
	}
}

func TestStartWatcher_DirectoryMovedIn(t *testing.T) {
	root := t.TempDir()
	staging := filepath.Join(t.TempDir(), "batch")
	touch(t, filepath.Join(staging, "a.pdf"), "a")
	touch(t, filepath.Join(staging, "sub", "b.pdf"), "b")
	touch(t, filepath.Join(staging, "readme.txt"), "x")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := StartWatcher(ctx, WatchConfig{
		Roots:      []string{root},
		SkipHidden: true,
		Debounce:   20 * time.Millisecond,
	})
	require.NoError(t, err)

	moved := filepath.Join(root, "batch")
	require.NoError(t, os.Rename(staging, moved))
	assert.Equal(t, filepath.Join(moved, "a.pdf"), receive(t, events))
	assert.Equal(t, filepath.Join(moved, "sub", "b.pdf"), receive(t, events))

	// the moved tree is watched from now on
	later := filepath.Join(moved, "sub", "c.pdf")
	touch(t, later, "c")
	assert.Equal(t, later, receive(t, events))

	cancel()
	for range events {
	}
}

func TestStartWatcher_NoRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{})
	assert.Error(t, err)
}
