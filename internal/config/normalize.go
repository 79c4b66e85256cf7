package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeProject(); err != nil {
		return err
	}
	c.normalizeUser()
	c.normalizeDocuments()
	c.normalizeVersioning()
	c.normalizeLocking()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizeProject() error {
	var err error
	if c.Project.Root == "" {
		if value, ok := os.LookupEnv("SLATE_PROJECT_ROOT"); ok {
			c.Project.Root = strings.TrimSpace(value)
		}
	}
	if c.Project.Root != "" {
		if c.Project.Root, err = expandPath(c.Project.Root); err != nil {
			return fmt.Errorf("project.root: %w", err)
		}
	}
	if c.Project.LocalRoot != "" {
		if c.Project.LocalRoot, err = expandPath(c.Project.LocalRoot); err != nil {
			return fmt.Errorf("project.local_root: %w", err)
		}
	}
	c.Project.PipelineDir = strings.Trim(strings.TrimSpace(c.Project.PipelineDir), "/")
	if c.Project.PipelineDir == "" {
		c.Project.PipelineDir = defaultPipelineDir
	}
	c.Project.ConfigName = strings.TrimSpace(c.Project.ConfigName)
	if c.Project.ConfigName == "" {
		if value, ok := os.LookupEnv("SLATE_PROJECT_CONFIG_NAME"); ok {
			c.Project.ConfigName = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeUser() {
	c.User.Name = strings.TrimSpace(c.User.Name)
	if c.User.Name == "" {
		if value, ok := os.LookupEnv("SLATE_USER"); ok {
			c.User.Name = strings.TrimSpace(value)
		}
	}
	if c.User.Name == "" {
		if value, ok := os.LookupEnv("USER"); ok {
			c.User.Name = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeDocuments() {
	c.Documents.Format = strings.ToLower(strings.TrimSpace(c.Documents.Format))
	switch c.Documents.Format {
	case "", "yml", "yaml":
		c.Documents.Format = "yaml"
	case "json":
	default:
		c.Documents.Format = defaultDocumentFormat
	}
}

func (c *Config) normalizeVersioning() {
	if c.Versioning.Padding <= 0 {
		c.Versioning.Padding = defaultVersionPadding
	}
	if c.Versioning.Lowest <= 0 {
		c.Versioning.Lowest = defaultLowestVersion
	}
	c.Versioning.ShotCamFormat = strings.ToLower(strings.TrimSpace(c.Versioning.ShotCamFormat))
	if c.Versioning.ShotCamFormat == "" {
		c.Versioning.ShotCamFormat = defaultShotCamFormat
	}
	if !strings.HasPrefix(c.Versioning.ShotCamFormat, ".") {
		c.Versioning.ShotCamFormat = "." + c.Versioning.ShotCamFormat
	}
}

func (c *Config) normalizeLocking() {
	if c.Locking.TimeoutSeconds <= 0 {
		c.Locking.TimeoutSeconds = defaultLockTimeoutSeconds
	}
	if c.Locking.RetryDelayMS <= 0 {
		c.Locking.RetryDelayMS = defaultLockRetryDelayMS
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Dir != "" {
		var err error
		if c.Logging.Dir, err = expandPath(c.Logging.Dir); err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
	}
	return nil
}
