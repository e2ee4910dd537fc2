package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir string `toml:"work_dir"`
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Tools contains external conversion tool configuration.
type Tools struct {
	Blender        string `toml:"blender"`
	GltfPipeline   string `toml:"gltf_pipeline"`
	USDConverter   string `toml:"usd_converter"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Pipeline contains conversion pipeline tuning.
type Pipeline struct {
	WorkerCount          int `toml:"worker_count"`
	QueueCapacity        int `toml:"queue_capacity"`
	RetentionHours       int `toml:"retention_hours"`
	SweepIntervalMinutes int `toml:"sweep_interval_minutes"`
	DracoCompression     int `toml:"draco_compression"`
	QuantizePositionBits int `toml:"quantize_position_bits"`
}

// Publish contains shareable link and QR code settings.
type Publish struct {
	BaseURL           string `toml:"base_url"`
	ShortLinkAttempts int    `toml:"short_link_attempts"`
	QRCodeSize        int    `toml:"qr_code_size"`
}

// S3 contains object storage credentials and addressing.
type S3 struct {
	Bucket        string `toml:"bucket"`
	Region        string `toml:"region"`
	Endpoint      string `toml:"endpoint"`
	AccessKey     string `toml:"access_key"`
	SecretKey     string `toml:"secret_key"`
	PublicBaseURL string `toml:"public_base_url"`
	UsePathStyle  bool   `toml:"use_path_style"`
}

// Storage selects and configures the artifact storage backend.
type Storage struct {
	Backend   string `toml:"backend"` // "s3" or "local"
	PublicDir string `toml:"public_dir"`
	S3        S3     `toml:"s3"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for arforge.
//
// Configuration sections by subsystem:
//   - Paths: working directory root, data directory, and log directory
//   - Tools: external conversion tool binaries and timeout
//   - Pipeline: worker pool sizing, job retention, and Draco tuning
//   - Publish: shareable AR link base URL and QR code rendering
//   - Storage: artifact storage backend (S3 or local filesystem)
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Tools    Tools    `toml:"tools"`
	Pipeline Pipeline `toml:"pipeline"`
	Publish  Publish  `toml:"publish"`
	Storage  Storage  `toml:"storage"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/arforge/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and environment overrides applied.
func Load(path string) (*Config, string, bool, error) {
	// Credentials may live in a .env alongside the service in development.
	_ = godotenv.Load()

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("arforge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for service operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Storage.Backend == "local" && strings.TrimSpace(c.Storage.PublicDir) != "" {
		if err := os.MkdirAll(c.Storage.PublicDir, 0o755); err != nil {
			return fmt.Errorf("create public directory %q: %w", c.Storage.PublicDir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// SampleConfig returns the embedded sample configuration text.
func SampleConfig() string {
	return sampleConfig
}
