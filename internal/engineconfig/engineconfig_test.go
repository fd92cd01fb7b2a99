package engineconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.GRPCAddress != "0.0.0.0:9090" {
		t.Errorf("GRPCAddress = %q, want default", cfg.Server.GRPCAddress)
	}
	if cfg.ResourceManager.InactivityThreshold != 5*time.Minute {
		t.Errorf("InactivityThreshold = %v, want 5m default", cfg.ResourceManager.InactivityThreshold)
	}
	if cfg.Audit.Enabled {
		t.Error("Audit.Enabled should default to false")
	}
	if cfg.Worker.MaxConcurrent != 256 {
		t.Errorf("Worker.MaxConcurrent = %d, want 256 default", cfg.Worker.MaxConcurrent)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := []byte("resource_manager:\n  inactivity_threshold: 1m\naudit:\n  enabled: true\n  path: /tmp/audit.db\n")
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ResourceManager.InactivityThreshold != time.Minute {
		t.Errorf("InactivityThreshold = %v, want 1m", cfg.ResourceManager.InactivityThreshold)
	}
	if !cfg.Audit.Enabled || cfg.Audit.Path != "/tmp/audit.db" {
		t.Errorf("Audit = %+v, want enabled with path", cfg.Audit)
	}
}

func TestValidateRejectsAuditEnabledWithoutPath(t *testing.T) {
	cfg := Config{}
	cfg.ResourceManager.InactivityThreshold = time.Minute
	cfg.Worker.MaxConcurrent = 1
	cfg.Audit.Enabled = true
	cfg.Audit.Path = ""

	if err := cfg.Validate(); err == nil {
		t.Error("expected error when audit enabled without a path")
	}
}

func TestValidateRejectsNonPositiveThreshold(t *testing.T) {
	cfg := Config{}
	cfg.ResourceManager.InactivityThreshold = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero inactivity threshold")
	}
}
