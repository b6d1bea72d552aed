package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	werrors "github.com/DanielSallander/Pdf-Viewer/pkg/errors"
)

// -----------------------------------------------------------------------------
// Load Tests with Structured Errors
// -----------------------------------------------------------------------------

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/to/pdfviewer.yaml")
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}

	verr, ok := err.(*werrors.ViewerError)
	if !ok {
		t.Fatalf("expected *werrors.ViewerError, got %T", err)
	}
	if verr.Code != werrors.ErrConfigNotFound {
		t.Errorf("expected code %q, got %q", werrors.ErrConfigNotFound, verr.Code)
	}

	foundInit := false
	for _, s := range verr.Suggestions {
		if strings.Contains(s, "-init") {
			foundInit = true
		}
	}
	if !foundInit {
		t.Error("expected suggestion to mention '-init'")
	}
}

func TestLoad_YAMLParseError(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	invalidYAML := "viewer:\n  show_header: true\n    broken_indent\n"
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	_, err := Load(configPath)
	verr, ok := err.(*werrors.ViewerError)
	if !ok {
		t.Fatalf("expected *werrors.ViewerError, got %T", err)
	}
	if verr.Code != werrors.ErrConfigParseFailed {
		t.Errorf("expected code %q, got %q", werrors.ErrConfigParseFailed, verr.Code)
	}
	if verr.Context["path"] != configPath {
		t.Errorf("expected path context %q, got %q", configPath, verr.Context["path"])
	}
	if verr.Cause == nil {
		t.Error("expected cause to be set")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"unknown engine", "engine:\n  name: ghostscript\n", "engine.name"},
		{"unknown provider", "license:\n  provider: ldap\n", "license.provider"},
		{"empty keyword", "license:\n  plan_keyword: \"\"\n", "license.plan_keyword"},
		{"zero scale", "viewer:\n  oversample_scale: 0\n", "viewer.oversample_scale"},
		{"bad port", "server:\n  port: 70000\n", "server.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "pdfviewer.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !werrors.IsCode(err, werrors.ErrConfigInvalid) {
				t.Fatalf("expected CONFIG_INVALID, got %v", err)
			}
			verr, _ := werrors.AsViewerError(err)
			if verr.Context["field"] != tt.field {
				t.Errorf("field = %q, want %q", verr.Context["field"], tt.field)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// Defaults and Round Trip
// -----------------------------------------------------------------------------

func TestDefault(t *testing.T) {
	cfg := Default()

	if !cfg.Viewer.ShowHeader || !cfg.Viewer.ScrollOverflow || !cfg.Viewer.ShowExportButton {
		t.Error("all viewer toggles default to true")
	}
	if cfg.Viewer.OversampleScale != 3 {
		t.Errorf("OversampleScale = %v, want 3", cfg.Viewer.OversampleScale)
	}
	if cfg.License.PlanKeyword != "pdfviewer_plan" {
		t.Errorf("PlanKeyword = %q", cfg.License.PlanKeyword)
	}
	if cfg.License.MeasureNotifyDelay != 5*time.Second || cfg.License.ExportNotifyDelay != 3*time.Second {
		t.Error("unexpected notification delays")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_PartialOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdfviewer.yaml")
	yaml := "engine:\n  name: pdfium\nlicense:\n  measure_notify_delay: 2s\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Engine.Name != "pdfium" {
		t.Errorf("Engine.Name = %q", cfg.Engine.Name)
	}
	if cfg.License.MeasureNotifyDelay != 2*time.Second {
		t.Errorf("MeasureNotifyDelay = %v", cfg.License.MeasureNotifyDelay)
	}
	if cfg.License.ExportNotifyDelay != 3*time.Second {
		t.Error("untouched fields keep defaults")
	}
}

func TestSaveAndInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pdfviewer.yaml")

	if err := InitConfig(path); err != nil {
		t.Fatalf("InitConfig() error: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() after init: %v", err)
	}
	if cfg.Server.Port != Default().Server.Port {
		t.Errorf("Port = %d", cfg.Server.Port)
	}

	// A second init leaves the file alone.
	cfg.Engine.Name = "pdfium"
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	if err := InitConfig(path); err != nil {
		t.Fatal(err)
	}
	again, _ := Load(path)
	if again.Engine.Name != "pdfium" {
		t.Error("InitConfig overwrote an existing file")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	if err != nil || cfg == nil {
		t.Fatalf("LoadOrDefault(\"\") = %v, %v", cfg, err)
	}
	cfg, err = LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil || cfg.Engine.Name != "preview" {
		t.Fatalf("LoadOrDefault(missing) = %v, %v", cfg, err)
	}
}
