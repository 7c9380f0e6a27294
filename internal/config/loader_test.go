package config

import (
	"os"
	"path/filepath"
	"testing"
)

const baseYAML = "version: \"1\"\ndevnode_filter:\n  blacklist:\n    - \"^loop\"\n"

func writeConfig(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestStoreAcquireReleaseOutstanding(t *testing.T) {
	path := writeConfig(t, t.TempDir(), baseYAML)
	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if store.Outstanding() != 0 {
		t.Fatalf("expected 0 outstanding handles initially")
	}

	h := store.Acquire()
	if store.Outstanding() != 1 {
		t.Fatalf("expected 1 outstanding handle after Acquire")
	}
	if !h.Config().Devnode.Accepts("sdb") {
		t.Fatalf("expected sdb to be accepted")
	}

	h.Release()
	if store.Outstanding() != 0 {
		t.Fatalf("expected 0 outstanding handles after Release")
	}

	// Release must be idempotent.
	h.Release()
	if store.Outstanding() != 0 {
		t.Fatalf("expected a second Release to be a no-op")
	}
}

func TestStoreReloadSwapsSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, baseYAML)
	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	var reloaded *RuleConfig
	store.OnChange(func(cfg *RuleConfig) { reloaded = cfg })

	writeConfig(t, dir, "version: \"2\"\n")
	if _, err := store.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	h := store.Acquire()
	defer h.Release()
	if h.Config().Version != "2" {
		t.Fatalf("expected reloaded version 2, got %q", h.Config().Version)
	}
	if reloaded == nil || reloaded.Version != "2" {
		t.Fatalf("expected OnChange callback fired with the new snapshot")
	}
}

func TestStoreReloadKeepsPreviousOnInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, baseYAML)
	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	writeConfig(t, dir, "devnode_filter:\n  blacklist:\n    - \"^loop\"\n") // missing version
	if _, err := store.Reload(); err == nil {
		t.Fatalf("expected Reload to reject a config missing version")
	}

	h := store.Acquire()
	defer h.Release()
	if h.Config().Version != "1" {
		t.Fatalf("expected previous snapshot retained, got version %q", h.Config().Version)
	}
}
