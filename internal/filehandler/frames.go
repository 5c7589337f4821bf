package filehandler

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultJPEGQuality is the quality processed frames are written at.
const DefaultJPEGQuality = 95

// FrameExt is the extension of letterboxed frames, which are always JPEG.
const FrameExt = ".jpg"

// SequenceExt returns the extension ffmpeg's image2 demuxer maps to a decoder
// for files like path, or "" when it recognises none. ffmpeg picks the decoder
// of a file sequence from the extension alone, so staged files must carry one.
func SequenceExt(path string) string {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".jpg", ".jpeg":
		return ".jpg"
	case ".tif", ".tiff":
		return ".tif"
	case ".png", ".gif", ".webp", ".bmp":
		return ext
	}
	return ""
}

// ProcessedName returns the staging file name for the 1-based input position.
func ProcessedName(position int, ext string) string {
	return fmt.Sprintf("pic-%04d%s", position, ext)
}

// FramePattern is the printf-style pattern the encoder reads frames through.
func FramePattern(ext string) string {
	return "frame%d" + ext
}

// FrameName returns the staging link name for the 0-based output frame index.
func FrameName(index int, ext string) string {
	return fmt.Sprintf(FramePattern(ext), index)
}

// WriteJPEG encodes img as a JPEG file at path. The file is written in full or
// not left behind at all.
func WriteJPEG(path string, img image.Image, quality int) (err error) {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create frame %s: %w", filepath.Base(path), err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close frame %s: %w", filepath.Base(path), cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("failed to encode frame %s: %w", filepath.Base(path), err)
	}
	return nil
}

// LinkFile makes link refer to target. A symbolic link is tried first; when the
// filesystem refuses symlinks a hard link is made instead.
func LinkFile(target, link string) error {
	err := os.Symlink(target, link)
	if err == nil {
		return nil
	}
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("failed to link %s: %w", filepath.Base(link), err)
	}

	log.Debug().
		Err(err).
		Str("link", link).
		Msg("Symlink refused, falling back to hard link")

	if herr := os.Link(target, link); herr != nil {
		return fmt.Errorf("failed to link %s: %w", filepath.Base(link), errors.Join(err, herr))
	}
	return nil
}
