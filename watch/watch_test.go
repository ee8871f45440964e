package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

var photoExts = []string{"png", "jpg", "jpeg", "heic"}

func startWatch(t *testing.T, ctx context.Context, dir string, job Job) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, photoExts, 50*time.Millisecond, zap.NewNop(), job)
	}()
	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)
	return done
}

func TestWatch_RunsAfterPhotoChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())

	runs := make(chan struct{}, 10)
	done := startWatch(t, ctx, dir, func(context.Context) error {
		runs <- struct{}{}
		return nil
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	select {
	case <-runs:
		t.Fatal("non-photo file must not trigger a run")
	case <-time.After(300 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ANNA_LEE.png"), []byte("x"), 0644))
	select {
	case <-runs:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a run after adding a photo")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatch_JobErrorStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	boom := errors.New("storage failure")

	done := startWatch(t, context.Background(), dir, func(context.Context) error {
		return boom
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("x"), 0644))

	select {
	case err := <-done:
		assert.ErrorIs(t, err, boom)
	case <-time.After(3 * time.Second):
		t.Fatal("watch should return the job error")
	}
}

func TestWatch_MissingDir(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing"), photoExts, 0, zap.NewNop(), nil)
	assert.Error(t, err)
}
