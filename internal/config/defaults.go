package config

import "runtime"

const (
	defaultConfigPath  = "~/.config/slideshow/config.toml"
	projectConfigName  = "slideshow.toml"
	defaultFrameRate   = 25
	defaultCodec       = "libx264"
	defaultPixelFormat = "yuv420p"
	defaultOutput      = "slideshow.mp4"
	defaultJPEGQuality = 95
	defaultFFmpeg      = "ffmpeg"
	defaultFFprobe     = "ffprobe"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
	defaultNamespace   = "PhotoSlideshow"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Video: Video{
			FrameRate:   defaultFrameRate,
			Codec:       defaultCodec,
			PixelFormat: defaultPixelFormat,
			Threads:     runtime.NumCPU(),
			Output:      defaultOutput,
		},
		Images: Images{
			Workers:     runtime.NumCPU(),
			JPEGQuality: defaultJPEGQuality,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpeg,
			FFprobe: defaultFFprobe,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Metrics: Metrics{
			Namespace: defaultNamespace,
		},
	}
}
