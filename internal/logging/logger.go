// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options controls Init.
type Options struct {
	// Level is one of debug, info, warn, error. Anything else means info.
	Level string
	// Format is "console" or "json".
	Format string
	// Out defaults to os.Stderr.
	Out io.Writer
}

// Init initializes the global logger. Console output is colored only when
// writing to a terminal.
func Init(opts Options) {
	zerolog.SetGlobalLevel(ParseLevel(opts.Level))

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	if strings.EqualFold(opts.Format, "json") {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
		return
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:     out,
		NoColor: !isTerminal(out),
	})
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
