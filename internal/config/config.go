// Package config loads slideshow settings from a TOML file, applies
// environment overrides, and validates the result.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Video contains output video settings.
type Video struct {
	FrameRate   int    `toml:"frame_rate"`
	Codec       string `toml:"codec"`
	PixelFormat string `toml:"pixel_format"`
	Threads     int    `toml:"threads"`
	Output      string `toml:"output"`
}

// Images contains image transform settings.
type Images struct {
	Workers     int `toml:"workers"`
	JPEGQuality int `toml:"jpeg_quality"`
}

// Tools names the external binaries.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Paths contains directory configuration.
type Paths struct {
	// StagingDir is the parent of per-run staging directories. Empty means the
	// system temp directory.
	StagingDir string `toml:"staging_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Metrics controls EMF run metrics.
type Metrics struct {
	Enabled   bool   `toml:"enabled"`
	Namespace string `toml:"namespace"`
}

// Config encapsulates all configuration values for the slideshow builder.
type Config struct {
	Video   Video   `toml:"video"`
	Images  Images  `toml:"images"`
	Tools   Tools   `toml:"tools"`
	Paths   Paths   `toml:"paths"`
	Logging Logging `toml:"logging"`
	Metrics Metrics `toml:"metrics"`
}

// DefaultConfigPath returns the absolute path of the per-user config file.
func DefaultConfigPath() (string, error) {
	return expandHome(defaultConfigPath)
}

// Load builds the configuration from defaults, the config file and the
// environment. An explicit path must name an existing file. Without one the
// per-user file is tried, then ./slideshow.toml; when neither exists the
// defaults apply. The returned path is the file that was read, empty if none.
func Load(path string) (*Config, string, error) {
	cfg := Default()

	file, err := locate(path)
	if err != nil {
		return nil, "", err
	}
	if file != "" {
		if err := decodeFile(file, &cfg); err != nil {
			return nil, "", err
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, file, nil
}

// decodeFile overlays the TOML file at path onto cfg. Unknown keys are errors
// so a misspelt setting is not silently ignored.
func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func locate(explicit string) (string, error) {
	if explicit != "" {
		path, err := expandHome(explicit)
		if err != nil {
			return "", err
		}
		if !isFile(path) {
			return "", fmt.Errorf("config file %s does not exist or is not a regular file", path)
		}
		return path, nil
	}

	for _, candidate := range []string{defaultConfigPath, projectConfigName} {
		path, err := expandHome(candidate)
		if err != nil {
			return "", err
		}
		if isFile(path) {
			return path, nil
		}
	}
	return "", nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// expandHome resolves a leading ~/ and makes path absolute. Empty stays empty.
func expandHome(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, rest)
	}
	return filepath.Abs(path)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
