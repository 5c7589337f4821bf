package logging

import (
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StartupLogger collects version, tool and configuration details, then emits
// a single structured zerolog event summarising how the run was set up.
type StartupLogger struct {
	name       string
	version    string
	configPath string
	loadTime   time.Duration

	tools    map[string]string
	features map[string]bool
	config   map[string]string
}

// NewStartupLogger creates a StartupLogger for the named command.
func NewStartupLogger(name string) *StartupLogger {
	return &StartupLogger{
		name:     name,
		tools:    make(map[string]string),
		features: make(map[string]bool),
		config:   make(map[string]string),
	}
}

// Version sets the build version.
func (s *StartupLogger) Version(v string) *StartupLogger {
	s.version = v
	return s
}

// ConfigFile records the config file in use, empty when defaults apply.
func (s *StartupLogger) ConfigFile(path string) *StartupLogger {
	s.configPath = path
	return s
}

// Tool registers an external binary.
func (s *StartupLogger) Tool(label, path string) *StartupLogger {
	s.tools[label] = path
	return s
}

// Feature registers a boolean feature flag (e.g. "shuffle", "metrics").
func (s *StartupLogger) Feature(name string, enabled bool) *StartupLogger {
	s.features[name] = enabled
	return s
}

// Config registers a configuration key-value pair.
func (s *StartupLogger) Config(key, value string) *StartupLogger {
	s.config[key] = value
	return s
}

// LoadDuration records how long configuration loading took.
func (s *StartupLogger) LoadDuration(d time.Duration) *StartupLogger {
	s.loadTime = d
	return s
}

// Log emits a single structured event at debug level with all collected information.
func (s *StartupLogger) Log() {
	evt := log.Debug()

	app := zerolog.Dict().
		Str("name", s.name).
		Str("goVersion", runtime.Version()).
		Str("arch", runtime.GOARCH).
		Int("cpus", runtime.NumCPU())
	if s.version != "" {
		app = app.Str("version", s.version)
	}
	if s.configPath != "" {
		app = app.Str("configFile", s.configPath)
	}
	evt = evt.Dict("app", app)

	if len(s.tools) > 0 {
		evt = evt.Dict("tools", dictFromMap(s.tools))
	}

	if len(s.features) > 0 {
		d := zerolog.Dict()
		for k, v := range s.features {
			d = d.Bool(k, v)
		}
		evt = evt.Dict("features", d)
	}

	if len(s.config) > 0 {
		evt = evt.Dict("config", dictFromMap(s.config))
	}

	if s.loadTime > 0 {
		evt = evt.Dur("loadDuration", s.loadTime)
	}

	evt.Msg("slideshow starting")
}

// dictFromMap converts a map[string]string into a zerolog.Event (Dict).
func dictFromMap(m map[string]string) *zerolog.Event {
	d := zerolog.Dict()
	for k, v := range m {
		d = d.Str(k, v)
	}
	return d
}
