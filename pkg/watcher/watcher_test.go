package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextEvent(t *testing.T, ch <-chan ChangeEvent) ChangeEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change event")
		return ChangeEvent{}
	}
}

func TestFileWatcher_Directory(t *testing.T) {
	root := t.TempDir()
	pkgDir := filepath.Join(root, "com", "acme")
	require.NoError(t, os.MkdirAll(pkgDir, 0o755))

	fw, err := NewFileWatcher(root)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fw.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "notes.txt"), []byte("x"), 0o644))
	class := filepath.Join(pkgDir, "App.class")
	require.NoError(t, os.WriteFile(class, []byte{0xca, 0xfe}, 0o644))

	ev := nextEvent(t, fw.Events())
	assert.Equal(t, ChangeClass, ev.Type)
	assert.Contains(t, ev.Paths, class)
	assert.NotContains(t, ev.Paths, filepath.Join(pkgDir, "notes.txt"))

	cancel()
	for range fw.Events() {
	}
}

func TestFileWatcher_Archive(t *testing.T) {
	dir := t.TempDir()
	jar := filepath.Join(dir, "app.jar")
	require.NoError(t, os.WriteFile(jar, []byte("PK"), 0o644))

	fw, err := NewFileWatcher(jar)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fw.Start(ctx))

	// a sibling archive is not the watched one
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.jar"), []byte("PK"), 0o644))
	require.NoError(t, os.WriteFile(jar, []byte("PK2"), 0o644))

	ev := nextEvent(t, fw.Events())
	assert.Equal(t, ChangeArchive, ev.Type)
	for _, p := range ev.Paths {
		assert.Equal(t, jar, p)
	}
}

func TestFileWatcher_MissingTarget(t *testing.T) {
	fw, err := NewFileWatcher(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Error(t, fw.Start(context.Background()))
}

func TestDebouncer_MergesBurst(t *testing.T) {
	in := make(chan ChangeEvent)
	d := NewDebouncer(in, 50*time.Millisecond, time.Second)
	d.Start(context.Background())

	in <- ChangeEvent{Type: ChangeClass, Paths: []string{"a/A.class"}}
	in <- ChangeEvent{Type: ChangeArchive, Paths: []string{"lib.jar"}}
	in <- ChangeEvent{Type: ChangeClass, Paths: []string{"a/A.class", "b/B.class"}}

	ev := nextEvent(t, d.Output())
	assert.Equal(t, ChangeArchive, ev.Type)
	assert.Equal(t, []string{"a/A.class", "lib.jar", "b/B.class"}, ev.Paths)

	close(in)
	_, ok := <-d.Output()
	assert.False(t, ok)
}

func TestDebouncer_MaxWait(t *testing.T) {
	in := make(chan ChangeEvent)
	d := NewDebouncer(in, time.Hour, 50*time.Millisecond)
	d.Start(context.Background())
	defer close(in)

	in <- ChangeEvent{Type: ChangeClass, Paths: []string{"A.class"}}

	ev := nextEvent(t, d.Output())
	assert.Equal(t, []string{"A.class"}, ev.Paths)
}

func TestDebouncer_FlushOnClose(t *testing.T) {
	in := make(chan ChangeEvent, 1)
	d := NewDebouncer(in, time.Hour, time.Hour)

	in <- ChangeEvent{Type: ChangeClass, Paths: []string{"A.class"}}
	close(in)
	d.Start(context.Background())

	ev := nextEvent(t, d.Output())
	assert.Equal(t, []string{"A.class"}, ev.Paths)
}
