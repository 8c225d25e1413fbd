package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/surf/internal/config"
)

func TestNewWatcherRequiresCallback(t *testing.T) {
	_, err := NewWatcher(time.Millisecond, nil, nil, nil)
	assert.ErrorIs(t, err, os.ErrInvalid)
}

func TestNewWatcherRejectsBadPattern(t *testing.T) {
	_, err := NewWatcher(time.Millisecond, []string{"[broken"}, nil, func([]string) {})
	assert.Error(t, err)
}

func TestWatcherRelevant(t *testing.T) {
	w, err := NewWatcher(time.Millisecond, DefaultWatchExcludes, config.DefaultHeaderPatterns, func([]string) {})
	require.NoError(t, err)
	defer w.Close()

	cases := map[string]bool{
		"/p/main.surf":          true,
		"/p/surf.yaml":          true,
		"/p/lib/heap.hpp":       true,
		"/p/lib/heap.hpp.yaml":  true,
		"/p/notes.txt":          false,
		"/p/other.yaml":         false,
		"/p/.git":               false,
		"/p/node_modules":       false,
		"/p/.surf-cache":        false,
		"/p/lib/heap.hpp.swp":   false,
		"/p/lib/heap.hpp.yaml~": false,
	}
	for path, want := range cases {
		assert.Equal(t, want, w.relevant(path), path)
	}
}

func TestWatcherDebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))

	changes := make(chan []string, 4)
	w, err := NewWatcher(200*time.Millisecond, DefaultWatchExcludes, config.DefaultHeaderPatterns, func(paths []string) {
		changes <- paths
	})
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch([]string{dir}))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "HEAD"), []byte("x"), 0o644))
	a := filepath.Join(dir, "a.surf")
	b := filepath.Join(dir, "b.surf")
	require.NoError(t, os.WriteFile(a, []byte("fun main() {}"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("fun helper() {}"), 0o644))

	select {
	case paths := <-changes:
		assert.Equal(t, []string{a, b}, paths)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}

	select {
	case paths := <-changes:
		t.Fatalf("unexpected second notification: %v", paths)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	dir := t.TempDir()

	changes := make(chan []string, 4)
	w, err := NewWatcher(50*time.Millisecond, DefaultWatchExcludes, config.DefaultHeaderPatterns, func(paths []string) {
		changes <- paths
	})
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch([]string{dir}))

	sub := filepath.Join(dir, "lib")
	require.NoError(t, os.Mkdir(sub, 0o755))
	// give the event loop time to register the new directory
	time.Sleep(100 * time.Millisecond)
	target := filepath.Join(sub, "util.surf")
	require.NoError(t, os.WriteFile(target, []byte("fun helper() {}"), 0o644))

	deadline := time.After(2 * time.Second)
	for {
		select {
		case paths := <-changes:
			if assert.NotEmpty(t, paths) && paths[len(paths)-1] == target {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for change in new directory")
		}
	}
}
