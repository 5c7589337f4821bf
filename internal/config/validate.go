package config

import (
	"errors"
	"fmt"
	"slices"
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"console", "json"}
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateImages(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateVideo() error {
	if c.Video.FrameRate < 1 {
		return fmt.Errorf("video.frame_rate must be positive, got %d", c.Video.FrameRate)
	}
	if c.Video.Threads < 0 {
		return errors.New("video.threads must not be negative")
	}
	return nil
}

func (c *Config) validateImages() error {
	if c.Images.Workers < 1 {
		return fmt.Errorf("images.workers must be at least 1, got %d", c.Images.Workers)
	}
	if c.Images.JPEGQuality < 1 || c.Images.JPEGQuality > 100 {
		return fmt.Errorf("images.jpeg_quality must be between 1 and 100, got %d", c.Images.JPEGQuality)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !slices.Contains(validLogLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level must be one of %v, got %q", validLogLevels, c.Logging.Level)
	}
	if !slices.Contains(validLogFormats, c.Logging.Format) {
		return fmt.Errorf("logging.format must be one of %v, got %q", validLogFormats, c.Logging.Format)
	}
	return nil
}
