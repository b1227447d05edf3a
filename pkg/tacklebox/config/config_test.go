package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "config.yaml", `
listen: ":9000"
db_path: /tmp/gear.db
timeout_seconds: 6
error_limit: 10
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":9000" || cfg.DBPath != "/tmp/gear.db" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Timeout() != 6*time.Second {
		t.Errorf("Timeout = %v, want 6s", cfg.Timeout())
	}
}

func TestLoadConfigDefaultsFillGaps(t *testing.T) {
	path := writeFile(t, "config.yaml", `listen: ":9000"`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := Default()
	if cfg.DBPath != def.DBPath || cfg.TimeoutSeconds != def.TimeoutSeconds || cfg.ErrorLimit != def.ErrorLimit {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing file should error")
	}
}
