// Package geometry resolves the output canvas size for a slideshow.
//
// A canvas is either an explicit WxH size, the largest width and height found
// across the input images ("auto"), or the pass-through sentinel None, which
// disables resizing altogether.
package geometry

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

var (
	// ErrInvalid is returned for a malformed geometry string.
	ErrInvalid = errors.New("invalid geometry")

	// ErrProbe is returned when "auto" cannot read the dimensions of an input image.
	ErrProbe = errors.New("geometry probe failed")
)

// Geometry is a canvas size in pixels. The zero value is the pass-through sentinel.
type Geometry struct {
	Width  int
	Height int
}

// None means pass-through: images are linked, not resized.
var None = Geometry{}

// Default is the canvas used when no geometry is requested.
var Default = Geometry{Width: 1920, Height: 1080}

// IsNone reports whether g is the pass-through sentinel.
func (g Geometry) IsNone() bool {
	return g.Width <= 0 || g.Height <= 0
}

func (g Geometry) String() string {
	if g.IsNone() {
		return "none"
	}
	return fmt.Sprintf("%dx%d", g.Width, g.Height)
}

// ModeKind identifies how a Geometry is obtained.
type ModeKind int

const (
	ModeDefault ModeKind = iota
	ModeExplicit
	ModeAuto
	ModeNone
)

// Mode is a parsed --geometry value. Size is only set for ModeExplicit.
type Mode struct {
	Kind ModeKind
	Size Geometry
}

func (m Mode) String() string {
	switch m.Kind {
	case ModeExplicit:
		return m.Size.String()
	case ModeAuto:
		return "auto"
	case ModeNone:
		return "none"
	default:
		return "default"
	}
}

var sizePattern = regexp.MustCompile(`^(\d+)x(\d+)$`)

// ParseMode parses "WxH", "auto", "none" or "" (default canvas).
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return Mode{Kind: ModeDefault}, nil
	case "auto":
		return Mode{Kind: ModeAuto}, nil
	case "none":
		return Mode{Kind: ModeNone}, nil
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return Mode{}, fmt.Errorf("%w: %q (expected WxH, auto or none)", ErrInvalid, s)
	}
	w, err := strconv.Atoi(matches[1])
	if err != nil {
		return Mode{}, fmt.Errorf("%w: bad width in %q: %v", ErrInvalid, s, err)
	}
	h, err := strconv.Atoi(matches[2])
	if err != nil {
		return Mode{}, fmt.Errorf("%w: bad height in %q: %v", ErrInvalid, s, err)
	}
	if w <= 0 || h <= 0 {
		return Mode{}, fmt.Errorf("%w: %q must have positive dimensions", ErrInvalid, s)
	}
	return Mode{Kind: ModeExplicit, Size: Geometry{Width: w, Height: h}}, nil
}

// Resolve turns a Mode into a concrete Geometry. ModeAuto opens every path and
// fails on the first unreadable one, since the maximum needs all of them.
func Resolve(mode Mode, paths []string) (Geometry, error) {
	switch mode.Kind {
	case ModeExplicit:
		return mode.Size, nil
	case ModeNone:
		return None, nil
	case ModeAuto:
		return detect(paths)
	default:
		return Default, nil
	}
}

// detect returns the maximum width and maximum height across paths, reading
// only image headers.
func detect(paths []string) (Geometry, error) {
	if len(paths) == 0 {
		return Geometry{}, fmt.Errorf("%w: no images to inspect", ErrProbe)
	}

	var g Geometry
	for _, path := range paths {
		w, h, err := Dimensions(path)
		if err != nil {
			return Geometry{}, fmt.Errorf("%w: %s: %v", ErrProbe, path, err)
		}
		g.Width = max(g.Width, w)
		g.Height = max(g.Height, h)
	}

	log.Debug().
		Int("images", len(paths)).
		Str("geometry", g.String()).
		Msg("Auto-detected canvas geometry")

	return g, nil
}

// Dimensions reads the pixel size of an image without decoding its pixels.
func Dimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
