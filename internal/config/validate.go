package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validatePublish(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		return errors.New("paths.work_dir must be set")
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateTools() error {
	if c.Tools.Blender == "" {
		return errors.New("tools.blender must be set")
	}
	if c.Tools.GltfPipeline == "" {
		return errors.New("tools.gltf_pipeline must be set")
	}
	if c.Tools.USDConverter == "" {
		return errors.New("tools.usd_converter must be set")
	}
	return nil
}

func (c *Config) validatePublish() error {
	if c.Publish.BaseURL == "" {
		return errors.New("publish.base_url must be set")
	}
	parsed, err := url.Parse(c.Publish.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("publish.base_url %q must be an absolute URL", c.Publish.BaseURL)
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case "local":
		if strings.TrimSpace(c.Storage.PublicDir) == "" {
			return errors.New("storage.public_dir must be set for the local backend")
		}
	case "s3":
		if strings.TrimSpace(c.Storage.S3.Bucket) == "" {
			return errors.New("storage.s3.bucket must be set for the s3 backend")
		}
		if strings.TrimSpace(c.Storage.S3.Region) == "" && strings.TrimSpace(c.Storage.S3.Endpoint) == "" {
			return errors.New("storage.s3 requires a region or endpoint")
		}
	default:
		return fmt.Errorf("storage.backend %q must be \"s3\" or \"local\"", c.Storage.Backend)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be \"console\" or \"json\"", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn, or error", c.Logging.Level)
	}
	return nil
}
