package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables that override the file.
const (
	EnvLogLevel  = "SLIDESHOW_LOG_LEVEL"
	EnvLogFormat = "SLIDESHOW_LOG_FORMAT"
	EnvFFmpeg    = "SLIDESHOW_FFMPEG"
	EnvFFprobe   = "SLIDESHOW_FFPROBE"
	EnvWorkers   = "SLIDESHOW_WORKERS"
	EnvStaging   = "SLIDESHOW_STAGING_DIR"
)

func (c *Config) normalize() error {
	if err := c.applyEnv(); err != nil {
		return err
	}

	var err error
	if c.Paths.StagingDir, err = expandHome(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}

	c.Video.Codec = strings.TrimSpace(c.Video.Codec)
	if c.Video.Codec == "" {
		c.Video.Codec = defaultCodec
	}
	c.Video.PixelFormat = strings.TrimSpace(c.Video.PixelFormat)
	if c.Video.PixelFormat == "" {
		c.Video.PixelFormat = defaultPixelFormat
	}
	if strings.TrimSpace(c.Video.Output) == "" {
		c.Video.Output = defaultOutput
	}
	if strings.TrimSpace(c.Tools.FFmpeg) == "" {
		c.Tools.FFmpeg = defaultFFmpeg
	}
	if strings.TrimSpace(c.Tools.FFprobe) == "" {
		c.Tools.FFprobe = defaultFFprobe
	}
	if strings.TrimSpace(c.Metrics.Namespace) == "" {
		c.Metrics.Namespace = defaultNamespace
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	return nil
}

func (c *Config) applyEnv() error {
	if value, ok := os.LookupEnv(EnvLogLevel); ok && value != "" {
		c.Logging.Level = value
	}
	if value, ok := os.LookupEnv(EnvLogFormat); ok && value != "" {
		c.Logging.Format = value
	}
	if value, ok := os.LookupEnv(EnvFFmpeg); ok && value != "" {
		c.Tools.FFmpeg = value
	}
	if value, ok := os.LookupEnv(EnvFFprobe); ok && value != "" {
		c.Tools.FFprobe = value
	}
	if value, ok := os.LookupEnv(EnvStaging); ok && value != "" {
		c.Paths.StagingDir = value
	}
	if value, ok := os.LookupEnv(EnvWorkers); ok && value != "" {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Images.Workers = n
	}
	return nil
}
