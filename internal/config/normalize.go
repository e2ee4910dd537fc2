package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizePipeline()
	c.normalizePublish()
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if env := os.Getenv("ARFORGE_WORK_DIR"); env != "" {
		c.Paths.WorkDir = env
	}
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	if env := os.Getenv("ARFORGE_BLENDER"); env != "" {
		c.Tools.Blender = env
	}
	if env := os.Getenv("ARFORGE_GLTF_PIPELINE"); env != "" {
		c.Tools.GltfPipeline = env
	}
	if env := os.Getenv("ARFORGE_USD_CONVERTER"); env != "" {
		c.Tools.USDConverter = env
	}
	c.Tools.Blender = strings.TrimSpace(c.Tools.Blender)
	c.Tools.GltfPipeline = strings.TrimSpace(c.Tools.GltfPipeline)
	c.Tools.USDConverter = strings.TrimSpace(c.Tools.USDConverter)
	if c.Tools.TimeoutSeconds <= 0 {
		c.Tools.TimeoutSeconds = defaultToolTimeoutSeconds
	}
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.WorkerCount <= 0 {
		c.Pipeline.WorkerCount = defaultWorkerCount
	}
	if c.Pipeline.QueueCapacity <= 0 {
		c.Pipeline.QueueCapacity = defaultQueueCapacity
	}
	if c.Pipeline.RetentionHours <= 0 {
		c.Pipeline.RetentionHours = defaultRetentionHours
	}
	if c.Pipeline.SweepIntervalMinutes <= 0 {
		c.Pipeline.SweepIntervalMinutes = defaultSweepIntervalMinutes
	}
	if c.Pipeline.DracoCompression <= 0 {
		c.Pipeline.DracoCompression = defaultDracoCompression
	}
	if c.Pipeline.QuantizePositionBits <= 0 {
		c.Pipeline.QuantizePositionBits = defaultQuantizePositionBits
	}
}

func (c *Config) normalizePublish() {
	if env := os.Getenv("ARFORGE_BASE_URL"); env != "" {
		c.Publish.BaseURL = env
	}
	c.Publish.BaseURL = strings.TrimRight(strings.TrimSpace(c.Publish.BaseURL), "/")
	if c.Publish.ShortLinkAttempts <= 0 {
		c.Publish.ShortLinkAttempts = defaultShortLinkAttempts
	}
	if c.Publish.QRCodeSize <= 0 {
		c.Publish.QRCodeSize = defaultQRCodeSize
	}
}

func (c *Config) normalizeStorage() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaultStorageBackend
	}
	var err error
	if c.Storage.PublicDir, err = expandPath(c.Storage.PublicDir); err != nil {
		return fmt.Errorf("storage.public_dir: %w", err)
	}
	if c.Storage.S3.AccessKey == "" {
		c.Storage.S3.AccessKey = os.Getenv("AWS_ACCESS_KEY_ID")
	}
	if c.Storage.S3.SecretKey == "" {
		c.Storage.S3.SecretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	if c.Storage.S3.Region == "" {
		c.Storage.S3.Region = os.Getenv("AWS_DEFAULT_REGION")
	}
	c.Storage.S3.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.Storage.S3.PublicBaseURL), "/")
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
