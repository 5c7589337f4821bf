package filehandler

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"os"
	"sync"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// ErrUnreadable marks an image that could not be opened or decoded.
var ErrUnreadable = errors.New("unreadable image")

// SourceImage is an input image. Dimensions and orientation are read on first
// use and cached; a SourceImage is safe for concurrent use.
type SourceImage struct {
	Path string

	once        sync.Once
	width       int
	height      int
	orientation int
	err         error
}

// NewSourceImage returns a SourceImage for path without touching the file.
func NewSourceImage(path string) *SourceImage {
	return &SourceImage{Path: path}
}

func (s *SourceImage) load() {
	s.once.Do(func() {
		s.width, s.height, s.err = decodeSize(s.Path)
		if s.err == nil {
			s.orientation = ReadOrientation(s.Path)
		}
	})
}

func decodeSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Size returns the stored pixel dimensions (before orientation correction).
func (s *SourceImage) Size() (int, int, error) {
	s.load()
	return s.width, s.height, s.err
}

// Orientation returns the EXIF orientation tag, 1 when absent.
func (s *SourceImage) Orientation() int {
	s.load()
	if s.err != nil {
		return 1
	}
	return s.orientation
}

// ReadOrientation returns the EXIF orientation tag (1-8) of the image at path.
// Any failure, or a missing or out-of-range tag, yields 1.
func ReadOrientation(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return 1
	}
	defer f.Close()
	return readOrientation(f)
}

func readOrientation(r io.ReadSeeker) int {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 1
	}

	// imagemeta reads only the metadata segment, not the pixel data
	exifData, err := imagemeta.Decode(r)
	if err != nil {
		log.Debug().Err(err).Msg("No EXIF metadata, assuming upright orientation")
		return 1
	}

	tag := int(exifData.Orientation)
	if tag < 1 || tag > 8 {
		return 1
	}
	return tag
}

// DecodeImage opens and fully decodes the image at path, returning it together
// with its EXIF orientation tag. Open and decode failures wrap ErrUnreadable.
func DecodeImage(path string) (image.Image, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 1, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, 1, fmt.Errorf("%w: failed to decode %s: %v", ErrUnreadable, path, err)
	}

	orientation := readOrientation(f)

	log.Debug().
		Str("path", path).
		Str("format", format).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Int("orientation", orientation).
		Msg("Image decoded")

	return img, orientation, nil
}
