package filehandler

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// ScanOptions configures directory scanning behavior.
type ScanOptions struct {
	// MaxDepth limits recursion depth. 0 = unlimited, 1 = top-level only.
	MaxDepth int

	// Limit caps the number of images returned. 0 = unlimited.
	Limit int
}

// ScanImages scans a directory for decodable image files and returns their
// absolute paths sorted alphabetically.
// Symlinks to files are followed; symlinks to directories are skipped to prevent infinite loops.
func ScanImages(dirPath string, opts ScanOptions) ([]string, error) {
	log.Debug().
		Str("path", dirPath).
		Int("max_depth", opts.MaxDepth).
		Int("limit", opts.Limit).
		Msg("Scanning directory for images")

	info, err := os.Stat(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory not found: %s", dirPath)
		}
		return nil, fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dirPath)
	}

	// Absolute path for consistent depth calculation
	absPath, err := filepath.Abs(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	baseDepth := strings.Count(absPath, string(os.PathSeparator))

	var paths []string
	limitReached := false

	err = filepath.WalkDir(absPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error accessing path, skipping")
			return nil
		}

		if opts.MaxDepth > 0 && d.IsDir() {
			currentDepth := strings.Count(path, string(os.PathSeparator)) - baseDepth
			if currentDepth >= opts.MaxDepth {
				return fs.SkipDir
			}
		}

		if d.IsDir() {
			return nil
		}

		if !IsImage(filepath.Ext(d.Name())) {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			targetInfo, err := os.Stat(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("Failed to stat symlink target, skipping")
				return nil
			}
			if targetInfo.IsDir() {
				log.Debug().Str("path", path).Msg("Skipping symlink to directory")
				return nil
			}
		}

		if opts.Limit > 0 && len(paths) >= opts.Limit {
			limitReached = true
			return fs.SkipAll
		}

		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Strings(paths)

	logEvent := log.Info().
		Int("total_images", len(paths)).
		Str("directory", dirPath)
	if limitReached {
		logEvent.Bool("limit_reached", true)
	}
	logEvent.Msg("Directory scan complete")

	return paths, nil
}
