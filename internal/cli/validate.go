package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fpang/photo-slideshow/internal/filehandler"
	"github.com/fpang/photo-slideshow/internal/slideshow"
	"github.com/rs/zerolog/log"
)

// ExpandInputs checks the soundtrack argument and expands the image arguments
// into an ordered list of image paths. A directory argument contributes its
// images sorted by path; a file argument is kept as given, even when it does
// not exist, so the transform stage can report and skip it.
func ExpandInputs(audio string, args []string, opts filehandler.ScanOptions) (string, []string, error) {
	audio, err := resolveAudio(audio)
	if err != nil {
		return "", nil, err
	}
	if len(args) == 0 {
		return "", nil, fmt.Errorf("%w: at least one image or directory is required", slideshow.ErrInvalidArgument)
	}

	var images []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			if abs, absErr := filepath.Abs(arg); absErr == nil {
				arg = abs
			}
			if !filehandler.IsImage(filepath.Ext(arg)) {
				log.Warn().Str("path", arg).Msg("File does not have a known image extension")
			}
			images = append(images, arg)
			continue
		}

		found, err := filehandler.ScanImages(arg, opts)
		if err != nil {
			return "", nil, fmt.Errorf("failed to scan %s: %w", arg, err)
		}
		if len(found) == 0 {
			log.Warn().Str("path", arg).Msg("No images found in directory")
		}
		images = append(images, found...)
	}

	if len(images) == 0 {
		return "", nil, fmt.Errorf("%w: no images found", slideshow.ErrInvalidArgument)
	}
	return audio, images, nil
}

func resolveAudio(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: an audio file is required", slideshow.ErrInvalidArgument)
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: audio file not found: %s", slideshow.ErrInvalidArgument, path)
		}
		return "", fmt.Errorf("failed to access audio file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: audio path is a directory: %s", slideshow.ErrInvalidArgument, path)
	}
	if !filehandler.IsAudio(filepath.Ext(path)) {
		log.Warn().Str("path", path).Msg("Audio file has an unrecognised extension, letting ffprobe decide")
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path, nil
}

// CheckOutput refuses to overwrite an existing file unless force is set, and
// makes sure the output's directory exists.
func CheckOutput(path string, force bool) error {
	if path == "" {
		return fmt.Errorf("%w: output path is empty", slideshow.ErrInvalidArgument)
	}
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return fmt.Errorf("%w: output path is a directory: %s", slideshow.ErrInvalidArgument, path)
	case err == nil && !force:
		return fmt.Errorf("%w: %s already exists (use --force to overwrite)", slideshow.ErrInvalidArgument, path)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("failed to access output path: %w", err)
	}

	dir := filepath.Dir(path)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: output directory does not exist: %s", slideshow.ErrInvalidArgument, dir)
	}
	return nil
}
