package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"

	"Storefront/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		Port:           "0",
		StorageBackend: config.BackendRedis,
		DeviceID:       "test",
		CatalogBackend: config.BackendMemory,
		WriteTimeout:   time.Second,
		Appearance:     "light",
	}
}

func TestRun_StartupErrorIsReturned(t *testing.T) {
	cfg := testConfig()
	cfg.RedisURL = "redis://127.0.0.1:1"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, cfg, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "init storage") {
		t.Fatalf("err=%v want init storage error", err)
	}
}

func TestRun_ReleasesResourcesOnShutdown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	cfg := testConfig()
	cfg.RedisURL = "redis://" + mr.Addr()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := run(ctx, cfg, zap.NewNop()); err != nil {
		t.Fatalf("run: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for mr.CurrentConnectionCount() > 0 {
		if time.Now().After(deadline) {
			t.Fatalf("redis connections still open after run returned: %d", mr.CurrentConnectionCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
