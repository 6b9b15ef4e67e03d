package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetGlobalConfig(t *testing.T) {
	t.Cleanup(func() {
		configMu.Lock()
		globalConfig = nil
		configMu.Unlock()
	})
}

func TestWatchBlocksUntilCancelled(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CREDSTORE_CONFIG_PATH", dir)
	resetGlobalConfig(t)
	require.NoError(t, Reload())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx) }()

	// Watch holds its goroutine for the life of the context. A caller that
	// invokes it inline never gets control back, so the server command must
	// start it in the background.
	select {
	case err := <-done:
		t.Fatalf("watch returned before cancellation: %v", err)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}

func TestWatchReloadsOnFileChange(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CREDSTORE_CONFIG_PATH", dir)
	resetGlobalConfig(t)
	require.NoError(t, Reload())
	require.Equal(t, 30, Get().SessionTTLMinutes)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = Watch(ctx) }()

	// Let the watcher register the directory before touching the file.
	time.Sleep(200 * time.Millisecond)

	yml := []byte("session_ttl_minutes: 7\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), yml, 0o600))

	assert.Eventually(t, func() bool {
		return Get().SessionTTLMinutes == 7
	}, 3*time.Second, 50*time.Millisecond)
}
