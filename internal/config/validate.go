package config

import (
	"errors"
	"fmt"
)

func (c *Config) validate() error {
	if err := c.validateProject(); err != nil {
		return err
	}
	if err := c.validateVersioning(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateProject() error {
	if c.Project.Root == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			defaultPath = "~/.config/slate/config.toml"
		}
		return fmt.Errorf("project.root is required. Set SLATE_PROJECT_ROOT or edit %s (create with 'slate config init')", defaultPath)
	}
	if c.Project.LocalRoot != "" && c.Project.LocalRoot == c.Project.Root {
		return errors.New("project.local_root must differ from project.root")
	}
	return nil
}

func (c *Config) validateVersioning() error {
	if c.Versioning.Padding > 9 {
		return errors.New("versioning.padding must be at most 9")
	}
	return nil
}
