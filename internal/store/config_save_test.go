package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestLoadConfig_MissingFileIsEmpty(t *testing.T) {
	t.Setenv("COURSEKIT_CONFIG_DIR", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.CurrentCourse != "" {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
	if got := cfg.AutosaveDebounce(); got != DefaultAutosaveDebounce {
		t.Fatalf("expected default debounce, got %v", got)
	}
	if got := cfg.HistoryLimitOrDefault(); got != DefaultHistoryLimit {
		t.Fatalf("expected default history limit, got %d", got)
	}
}

func TestSaveConfig_RoundTripAndBackup(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("COURSEKIT_CONFIG_DIR", dir)

	if err := SaveConfig(&GlobalConfig{CurrentCourse: "c-1", AutosaveDebounceMs: 250}); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	if err := SaveConfig(&GlobalConfig{CurrentCourse: "c-2"}); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.CurrentCourse != "c-2" {
		t.Fatalf("expected c-2, got %q", cfg.CurrentCourse)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "config.json.bak"))
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	var prev GlobalConfig
	if err := json.Unmarshal(raw, &prev); err != nil {
		t.Fatalf("backup unparseable: %v", err)
	}
	if prev.CurrentCourse != "c-1" || prev.AutosaveDebounce() != 250*time.Millisecond {
		t.Fatalf("unexpected backup contents: %+v", prev)
	}
}

func TestSaveConfig_ConcurrentWriters_DoesNotCorruptConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("COURSEKIT_CONFIG_DIR", dir)

	const n = 32
	var wg sync.WaitGroup
	errCh := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := SaveConfig(&GlobalConfig{HistoryLimit: i + 1}); err != nil {
				errCh <- err
			}
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Errorf("concurrent SaveConfig: %v", err)
	}

	if _, err := LoadConfig(); err != nil {
		t.Fatalf("config corrupted: %v", err)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range ents {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("leftover temp file: %s", e.Name())
		}
	}
}
