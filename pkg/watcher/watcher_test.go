package watcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchReportsDebouncedChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "part.step")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	fw, err := New(50*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	changed := make(chan string, 4)
	require.NoError(t, fw.Watch([]string{path}, func(file string) { changed <- file }))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- fw.Run(ctx) }()

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("changed"), 0o644))
	}

	select {
	case file := <-changed:
		abs, _ := filepath.Abs(path)
		assert.Equal(t, abs, file)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case file := <-changed:
		t.Errorf("expected a single callback, got another for %s", file)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestUnwatchedSiblingIsIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "part.step")
	other := filepath.Join(dir, "other.step")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	fw, err := New(10*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	changed := make(chan string, 4)
	require.NoError(t, fw.Watch([]string{path}, func(file string) { changed <- file }))
	require.NoError(t, fw.Unwatch(path))
	require.NoError(t, fw.Watch([]string{path}, func(file string) { changed <- file }))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fw.Run(ctx)

	require.NoError(t, os.WriteFile(other, []byte("b"), 0o644))

	select {
	case file := <-changed:
		t.Errorf("unexpected change for %s", file)
	case <-time.After(200 * time.Millisecond):
	}
}
