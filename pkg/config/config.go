// Package config handles PDF viewer configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	werrors "github.com/DanielSallander/Pdf-Viewer/pkg/errors"
)

// Config is the root configuration structure.
type Config struct {
	Viewer  ViewerConfig  `yaml:"viewer"`
	Engine  EngineConfig  `yaml:"engine"`
	License LicenseConfig `yaml:"license"`
	Server  ServerConfig  `yaml:"server"`
	Export  ExportConfig  `yaml:"export"`
}

// ViewerConfig holds view defaults applied when the host sends nothing.
type ViewerConfig struct {
	ShowHeader       bool `yaml:"show_header"`
	ScrollOverflow   bool `yaml:"scroll_overflow"`
	ShowExportButton bool `yaml:"show_export_button"`

	// Initial viewport used by the shell and before the first host update.
	ViewportWidth  float64 `yaml:"viewport_width"`
	ViewportHeight float64 `yaml:"viewport_height"`

	// OversampleScale is the render resolution multiplier.
	OversampleScale float64 `yaml:"oversample_scale"`
}

// EngineConfig selects the PDF engine.
type EngineConfig struct {
	// Name is "pdfium" or "preview".
	Name    string        `yaml:"name"`
	Pdfium  PdfiumConfig  `yaml:"pdfium"`
	Preview PreviewConfig `yaml:"preview"`
}

// PdfiumConfig holds the WebAssembly pdfium pool settings.
type PdfiumConfig struct {
	MinIdle         int           `yaml:"min_idle"`
	MaxIdle         int           `yaml:"max_idle"`
	MaxTotal        int           `yaml:"max_total"`
	InstanceTimeout time.Duration `yaml:"instance_timeout"`
}

// PreviewConfig holds settings for the pure-Go text preview engine.
type PreviewConfig struct {
	// MaxTextRuns caps the number of text runs drawn per page.
	MaxTextRuns int `yaml:"max_text_runs"`
}

// LicenseConfig selects where service plans come from.
type LicenseConfig struct {
	// Provider is one of "static", "token", "http", "postgres", "mysql".
	Provider    string `yaml:"provider"`
	PlanKeyword string `yaml:"plan_keyword"`

	MeasureNotifyDelay time.Duration `yaml:"measure_notify_delay"`
	ExportNotifyDelay  time.Duration `yaml:"export_notify_delay"`

	Static   []PlanConfig   `yaml:"static"`
	Token    TokenConfig    `yaml:"token"`
	HTTP     HTTPConfig     `yaml:"http"`
	Postgres DatabaseConfig `yaml:"postgres"`
	MySQL    DatabaseConfig `yaml:"mysql"`
	Cache    CacheConfig    `yaml:"cache"`
}

// PlanConfig is a statically configured service plan.
type PlanConfig struct {
	Identifier string `yaml:"identifier"`
	State      string `yaml:"state"`
}

// TokenConfig holds signed license token settings.
type TokenConfig struct {
	Token         string `yaml:"token"`
	TokenFile     string `yaml:"token_file"`
	PublicKeyFile string `yaml:"public_key_file"`
}

// HTTPConfig points at a plan lookup endpoint.
type HTTPConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// DatabaseConfig holds a plan store connection.
type DatabaseConfig struct {
	DSN    string `yaml:"dsn"`
	Tenant string `yaml:"tenant"`
}

// CacheConfig enables redis caching of plan lookups.
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// ServerConfig holds host API settings.
type ServerConfig struct {
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	CORSOrigins   []string      `yaml:"cors_origins"`
	EnableLogging bool          `yaml:"enable_logging"`
}

// ExportConfig holds settings for the local download service.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Viewer: ViewerConfig{
			ShowHeader:       true,
			ScrollOverflow:   true,
			ShowExportButton: true,
			ViewportWidth:    800,
			ViewportHeight:   600,
			OversampleScale:  3,
		},
		Engine: EngineConfig{
			Name: "preview",
			Pdfium: PdfiumConfig{
				MinIdle:         1,
				MaxIdle:         1,
				MaxTotal:        1,
				InstanceTimeout: 30 * time.Second,
			},
			Preview: PreviewConfig{
				MaxTextRuns: 4000,
			},
		},
		License: LicenseConfig{
			Provider:           "static",
			PlanKeyword:        "pdfviewer_plan",
			MeasureNotifyDelay: 5 * time.Second,
			ExportNotifyDelay:  3 * time.Second,
			HTTP: HTTPConfig{
				Timeout: 10 * time.Second,
			},
			Cache: CacheConfig{
				Addr: "localhost:6379",
				TTL:  time.Hour,
			},
		},
		Server: ServerConfig{
			Host:          "localhost",
			Port:          8082,
			ReadTimeout:   15 * time.Second,
			WriteTimeout:  15 * time.Second,
			IdleTimeout:   60 * time.Second,
			CORSOrigins:   []string{"http://localhost:5173"},
			EnableLogging: true,
		},
		Export: ExportConfig{
			Dir: "./exports",
		},
	}
}

// Validate checks values the viewer cannot run with.
func (c *Config) Validate() error {
	switch c.Engine.Name {
	case "pdfium", "preview":
	default:
		return werrors.AttachSuggestions(werrors.ConfigErrorf(werrors.ErrConfigInvalid,
			"unknown engine %q", c.Engine.Name).WithContext("field", "engine.name"))
	}
	switch c.License.Provider {
	case "static", "token", "http", "postgres", "mysql":
	default:
		return werrors.ConfigErrorf(werrors.ErrConfigInvalid,
			"unknown license provider %q", c.License.Provider).WithContext("field", "license.provider")
	}
	if c.License.PlanKeyword == "" {
		return werrors.ConfigError(werrors.ErrConfigInvalid, "license plan keyword must not be empty").
			WithContext("field", "license.plan_keyword")
	}
	if c.Viewer.OversampleScale <= 0 {
		return werrors.ConfigError(werrors.ErrConfigInvalid, "oversample scale must be positive").
			WithContext("field", "viewer.oversample_scale")
	}
	if c.Viewer.ViewportWidth <= 0 || c.Viewer.ViewportHeight <= 0 {
		return werrors.ConfigError(werrors.ErrConfigInvalid, "viewport must have a positive size").
			WithContext("field", "viewer.viewport_width/viewport_height")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return werrors.ConfigErrorf(werrors.ErrConfigInvalid, "port %d out of range", c.Server.Port).
			WithContext("field", "server.port")
	}
	return nil
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, werrors.AttachSuggestions(werrors.WrapConfig(err, werrors.ErrConfigNotFound,
				"configuration file not found").WithContext("path", path))
		}
		return nil, werrors.WrapConfig(err, werrors.ErrConfigReadFailed, "failed to read config").
			WithContext("path", path)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, werrors.AttachSuggestions(werrors.WrapConfig(err, werrors.ErrConfigParseFailed,
			"failed to parse config").WithContext("path", path))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads config from path, or returns default if not found.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	return Load(path)
}

// Save saves configuration to a file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return werrors.WrapConfig(err, werrors.ErrConfigWriteFailed, "failed to create config directory").
			WithContext("path", dir)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return werrors.AttachSuggestions(werrors.WrapConfig(err, werrors.ErrConfigWriteFailed,
			"failed to write config file").WithContext("path", path))
	}
	return nil
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	if _, err := os.Stat("pdfviewer.yaml"); err == nil {
		return "pdfviewer.yaml"
	}
	if _, err := os.Stat("config/pdfviewer.yaml"); err == nil {
		return "config/pdfviewer.yaml"
	}
	return "pdfviewer.yaml"
}

// InitConfig creates a default config file if it doesn't exist.
func InitConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil // Already exists
	}

	return Default().Save(path)
}
