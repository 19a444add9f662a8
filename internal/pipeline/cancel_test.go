package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancelWatcherDetectsFileCreation(t *testing.T) {
	dir := t.TempDir()
	cancelPath := filepath.Join(dir, "cancel")

	w := NewCancelWatcher(cancelPath, nil)
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	w.Start(ctx)

	require.NoError(t, os.WriteFile(cancelPath, []byte(""), 0o644))

	select {
	case <-w.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("cancel watcher did not observe cancel file")
	}
	assert.True(t, w.Cancelled())
}

func TestCancelWatcherClearsStaleMarkerOnConstruction(t *testing.T) {
	dir := t.TempDir()
	cancelPath := filepath.Join(dir, "cancel")
	require.NoError(t, os.WriteFile(cancelPath, []byte(""), 0o644))

	NewCancelWatcher(cancelPath, nil)

	_, err := os.Stat(cancelPath)
	assert.True(t, os.IsNotExist(err))
}
