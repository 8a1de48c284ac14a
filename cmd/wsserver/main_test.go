package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[relay\nport = "), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("VOLCTL_CONFIG", path)

	err := run(context.Background())
	if err == nil {
		t.Fatal("expected an error for an unparsable config")
	}
	if !strings.Contains(err.Error(), "failed to load config") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	t.Setenv("VOLCTL_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("PORT", "0")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := run(ctx); err != nil {
		t.Errorf("run returned %v after cancel", err)
	}
}
