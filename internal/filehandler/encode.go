package filehandler

// encode.go assembles a staging directory of numbered frames and a soundtrack
// into the final video with ffmpeg.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrEncodeFailed marks a non-zero exit from the encoder.
var ErrEncodeFailed = errors.New("encode failed")

// Encoder defaults.
const (
	DefaultCodec       = "libx264"
	DefaultPixelFormat = "yuv420p"
)

// EncodeRequest describes one encoder invocation.
type EncodeRequest struct {
	FrameDir string
	// FrameExt is the extension of the frame links; empty means FrameExt.
	FrameExt    string
	FrameRate   int
	AudioPath   string
	Codec       string
	PixelFormat string
	// Threads is a hint passed through to ffmpeg; 0 lets ffmpeg decide.
	Threads    int
	OutputPath string
}

// Encoder turns a staging directory plus soundtrack into a video.
type Encoder interface {
	Encode(ctx context.Context, req EncodeRequest) error
}

// FFmpegEncoder runs ffmpeg.
type FFmpegEncoder struct {
	// Path is the ffmpeg binary. Empty means "ffmpeg" looked up in PATH.
	Path string
}

var _ Encoder = (*FFmpegEncoder)(nil)

// CheckFFmpegAvailable checks if ffmpeg is available at bin, or in PATH when
// bin is empty. Returns nil if ffmpeg is available, or an error describing the issue.
func CheckFFmpegAvailable(bin string) error {
	if bin == "" {
		bin = "ffmpeg"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return fmt.Errorf("ffmpeg not found (%s): videos cannot be encoded. Install FFmpeg with: brew install ffmpeg (macOS) or apt install ffmpeg (Linux)", bin)
	}
	log.Debug().Str("path", path).Msg("ffmpeg found")
	return nil
}

// Encode runs ffmpeg to completion. The call blocks until ffmpeg exits or ctx
// is cancelled.
func (e *FFmpegEncoder) Encode(ctx context.Context, req EncodeRequest) error {
	bin := e.Path
	if bin == "" {
		bin = "ffmpeg"
	}
	ffmpegPath, err := exec.LookPath(bin)
	if err != nil {
		return fmt.Errorf("%w: ffmpeg not found: %v", ErrEncodeFailed, err)
	}

	args := BuildEncoderArgs(req)

	log.Info().
		Str("frame_dir", req.FrameDir).
		Str("audio", filepath.Base(req.AudioPath)).
		Str("output", req.OutputPath).
		Int("fps", req.FrameRate).
		Str("codec", req.Codec).
		Msg("Encoding slideshow")
	log.Debug().Strs("args", args).Msg("Running ffmpeg")

	start := time.Now()
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	output, err := cmd.CombinedOutput()
	elapsed := time.Since(start)
	if err != nil {
		log.Warn().
			Err(err).
			Str("ffmpeg_output", string(output)).
			Dur("duration", elapsed).
			Msg("ffmpeg exited with an error")
		return fmt.Errorf("%w: %v\nOutput: %s", ErrEncodeFailed, err, string(output))
	}

	info, err := os.Stat(req.OutputPath)
	if err != nil {
		return fmt.Errorf("%w: output video not found after encoding: %v", ErrEncodeFailed, err)
	}

	log.Info().
		Str("output", req.OutputPath).
		Int64("size_bytes", info.Size()).
		Dur("encode_time", elapsed).
		Msg("Encoding complete")

	return nil
}

// BuildEncoderArgs constructs the ffmpeg argument list for req:
//   - input 0: the frame links as an image2 sequence starting at frame0
//   - input 1: the soundtrack
//   - video from input 0, audio from input 1 copied verbatim
//   - output path last, overwriting
func BuildEncoderArgs(req EncodeRequest) []string {
	codec := req.Codec
	if codec == "" {
		codec = DefaultCodec
	}
	pixFmt := req.PixelFormat
	if pixFmt == "" {
		pixFmt = DefaultPixelFormat
	}

	ext := req.FrameExt
	if ext == "" {
		ext = FrameExt
	}

	args := []string{
		"-f", "image2",
		"-framerate", strconv.Itoa(req.FrameRate),
		"-start_number", "0",
		"-i", filepath.Join(req.FrameDir, FramePattern(ext)),
		"-i", req.AudioPath,
		"-map", "0:v",
		"-map", "1:a",
		"-c:v", codec,
		"-pix_fmt", pixFmt,
		"-c:a", "copy",
	}
	if req.Threads > 0 {
		args = append(args, "-threads", strconv.Itoa(req.Threads))
	}
	args = append(args, "-y", req.OutputPath)
	return args
}
