package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultAutosaveDebounce = 1500 * time.Millisecond
	DefaultHistoryLimit     = 100
)

type GlobalConfig struct {
	// CurrentCourse is used when --course is not passed.
	CurrentCourse string `json:"currentCourse,omitempty"`

	AutosaveDebounceMs int `json:"autosaveDebounceMs,omitempty"`
	HistoryLimit       int `json:"historyLimit,omitempty"`

	// GenerationURL and ResourceURL point at the content- and resource-generation services.
	GenerationURL string `json:"generationUrl,omitempty"`
	ResourceURL   string `json:"resourceUrl,omitempty"`

	// GradeLevel is the default grade sent with resource-generation requests.
	GradeLevel string `json:"gradeLevel,omitempty"`
}

func (c *GlobalConfig) AutosaveDebounce() time.Duration {
	if c == nil || c.AutosaveDebounceMs <= 0 {
		return DefaultAutosaveDebounce
	}
	return time.Duration(c.AutosaveDebounceMs) * time.Millisecond
}

func (c *GlobalConfig) HistoryLimitOrDefault() int {
	if c == nil || c.HistoryLimit <= 0 {
		return DefaultHistoryLimit
	}
	return c.HistoryLimit
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.coursekit).
	if v := strings.TrimSpace(os.Getenv("COURSEKIT_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".coursekit"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func LoadConfig() (*GlobalConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GlobalConfig{}, nil
		}
		return nil, err
	}
	var cfg GlobalConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *GlobalConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// Keep the previous config around; a failed backup must not block the write.
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.json.bak.*.tmp", path+".bak", prev, 0o644)
	}
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}
