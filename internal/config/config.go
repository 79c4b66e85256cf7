package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Project contains the storage roots the pipeline operates on.
type Project struct {
	Root        string `toml:"root"`
	LocalRoot   string `toml:"local_root"`
	PipelineDir string `toml:"pipeline_dir"`
	ConfigName  string `toml:"config_name"`
}

// User identifies the artist writing versions.
type User struct {
	Name string `toml:"name"`
}

// Documents selects the on-disk format for pipeline documents.
type Documents struct {
	Format string `toml:"format"`
}

// Versioning contains version-number conventions.
type Versioning struct {
	Padding       int    `toml:"padding"`
	Lowest        int    `toml:"lowest"`
	ShotCamFormat string `toml:"shotcam_format"`
}

// Locking contains lockfile wait tuning.
type Locking struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
	RetryDelayMS   int `toml:"retry_delay_ms"`
}

// Logging contains log output configuration.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Dir    string `toml:"dir"`
}

// Config is the root configuration object.
type Config struct {
	Project    Project    `toml:"project"`
	User       User       `toml:"user"`
	Documents  Documents  `toml:"documents"`
	Versioning Versioning `toml:"versioning"`
	Locking    Locking    `toml:"locking"`
	Logging    Logging    `toml:"logging"`
}

// DefaultPath returns the conventional config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "slate", "config.toml"), nil
}

// Load reads the configuration at path, or the default location when path is
// empty. A missing file yields defaults; exists reports whether the file was
// present. The returned path is the resolved location that was consulted.
func Load(path string) (cfg *Config, resolved string, exists bool, err error) {
	resolved = strings.TrimSpace(path)
	if resolved == "" {
		resolved, err = DefaultPath()
		if err != nil {
			return nil, "", false, err
		}
	}
	if resolved, err = expandPath(resolved); err != nil {
		return nil, "", false, fmt.Errorf("config path: %w", err)
	}

	value := Default()
	data, readErr := os.ReadFile(resolved)
	switch {
	case readErr == nil:
		exists = true
		if err := toml.Unmarshal(data, &value); err != nil {
			return nil, resolved, true, fmt.Errorf("parse %s: %w", resolved, err)
		}
	case errors.Is(readErr, fs.ErrNotExist):
		exists = false
	default:
		return nil, resolved, false, fmt.Errorf("read %s: %w", resolved, readErr)
	}

	if err := value.normalize(); err != nil {
		return nil, resolved, exists, err
	}
	if err := value.validate(); err != nil {
		return nil, resolved, exists, err
	}
	return &value, resolved, exists, nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// DocExtension returns the document filename extension implied by the
// configured format, including the leading dot.
func (c *Config) DocExtension() string {
	if c.Documents.Format == "json" {
		return ".json"
	}
	return ".yml"
}

// VersionFormat formats a version number using the configured padding.
func (c *Config) VersionFormat(num int) string {
	return fmt.Sprintf("v%0*d", c.Versioning.Padding, num)
}

// PipelineConfigPath returns the project pipeline document location.
func (c *Config) PipelineConfigPath() string {
	name := c.Project.ConfigName
	if name == "" {
		name = "pipeline" + c.DocExtension()
	}
	return filepath.Join(c.Project.Root, c.Project.PipelineDir, name)
}

// UseLocal reports whether a per-user local root is configured.
func (c *Config) UseLocal() bool {
	return strings.TrimSpace(c.Project.LocalRoot) != ""
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
