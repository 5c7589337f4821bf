// Package jobs names slideshow runs.
package jobs

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateID creates a new random run ID with the given prefix.
// The prefix should include a trailing dash, e.g. "run-".
func GenerateID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Short returns the first eight characters after the prefix, for file names
// and log lines where the full ID is noise.
func Short(id, prefix string) string {
	rest := strings.TrimPrefix(id, prefix)
	if len(rest) > 8 {
		rest = rest[:8]
	}
	return prefix + rest
}
