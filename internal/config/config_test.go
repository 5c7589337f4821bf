package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Video.FrameRate != 25 {
		t.Errorf("FrameRate = %d, want 25", cfg.Video.FrameRate)
	}
	if cfg.Video.Output != "slideshow.mp4" {
		t.Errorf("Output = %q, want slideshow.mp4", cfg.Video.Output)
	}
	if cfg.Images.Workers != runtime.NumCPU() {
		t.Errorf("Workers = %d, want %d", cfg.Images.Workers, runtime.NumCPU())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
[video]
frame_rate = 30
codec = "libx265"

[images]
workers = 3
jpeg_quality = 80

[logging]
level = "DEBUG"
format = "json"

[metrics]
enabled = true
`)

	cfg, resolved, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if resolved != path {
		t.Errorf("Load() resolved %q, want %q", resolved, path)
	}
	if cfg.Video.FrameRate != 30 || cfg.Video.Codec != "libx265" {
		t.Errorf("video = %+v", cfg.Video)
	}
	if cfg.Video.PixelFormat != "yuv420p" {
		t.Errorf("PixelFormat = %q, want default yuv420p", cfg.Video.PixelFormat)
	}
	if cfg.Images.Workers != 3 || cfg.Images.JPEGQuality != 80 {
		t.Errorf("images = %+v", cfg.Images)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Namespace != defaultNamespace {
		t.Errorf("metrics = %+v", cfg.Metrics)
	}
}

func TestLoad_MissingExplicitPath(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Load() of a missing explicit path should fail")
	}
	if _, _, err := Load(t.TempDir()); err == nil {
		t.Error("Load() of a directory should fail")
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, resolved, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if resolved != "" {
		t.Errorf("Load() read %q in an empty home", resolved)
	}
	if cfg.Video.FrameRate != defaultFrameRate {
		t.Errorf("FrameRate = %d, want %d", cfg.Video.FrameRate, defaultFrameRate)
	}
}

func TestLoad_ProjectFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, "slideshow.toml"), []byte("[video]\nframe_rate = 12\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if filepath.Base(resolved) != "slideshow.toml" || cfg.Video.FrameRate != 12 {
		t.Errorf("Load() read %q with frame_rate=%d, want slideshow.toml and 12", resolved, cfg.Video.FrameRate)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "[logging]\nlevel = \"info\"\n")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvWorkers, "7")
	t.Setenv(EnvFFmpeg, "/opt/ffmpeg/bin/ffmpeg")

	cfg, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %q, want warn", cfg.Logging.Level)
	}
	if cfg.Images.Workers != 7 {
		t.Errorf("Workers = %d, want 7", cfg.Images.Workers)
	}
	if cfg.Tools.FFmpeg != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("FFmpeg = %q", cfg.Tools.FFmpeg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"zero fps", "[video]\nframe_rate = 0\n", "video.frame_rate"},
		{"quality", "[images]\njpeg_quality = 101\n", "images.jpeg_quality"},
		{"workers", "[images]\nworkers = 0\n", "images.workers"},
		{"level", "[logging]\nlevel = \"loud\"\n", "logging.level"},
		{"format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"unknown key", "[video]\nfps = 30\n", "parse config"},
		{"bad toml", "[video\n", "parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("Load() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestCreateSample_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample() error = %v", err)
	}

	cfg, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load(sample) error = %v", err)
	}
	if cfg.Video.Codec != defaultCodec || cfg.Images.JPEGQuality != defaultJPEGQuality {
		t.Errorf("sample config differs from defaults: %+v", cfg)
	}
}
