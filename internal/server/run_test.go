package server

import (
	"context"
	"time"

	"testing"

	"github.com/allaspectsdev/flowcache/internal/testutil"
)

func TestRun_StartsAndStopsOnContextCancel(t *testing.T) {
	cfg := testutil.NewTestConfig(t)
	cfg.Server.InspectorAddr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	if err := Run(ctx, cfg, false); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if IsRunning(cfg.Cache.DataDir) {
		t.Error("PID file should be removed after Run returns")
	}
}

func TestRun_AlreadyRunning(t *testing.T) {
	cfg := testutil.NewTestConfig(t)

	if err := WritePID(cfg.Cache.DataDir); err != nil {
		t.Fatalf("WritePID: %v", err)
	}
	t.Cleanup(func() { RemovePID(cfg.Cache.DataDir) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := Run(ctx, cfg, false)
	if err == nil {
		t.Fatal("expected error when flowcache is already running")
	}
}
