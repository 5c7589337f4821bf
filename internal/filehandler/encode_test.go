package filehandler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestCheckFFmpegAvailable(t *testing.T) {
	// Passes whether or not FFmpeg is installed
	if err := CheckFFmpegAvailable(""); err != nil {
		t.Logf("FFmpeg not available (expected in some environments): %v", err)
	} else {
		t.Log("FFmpeg is available")
	}
}

func TestCheckFFmpegAvailable_MissingBinary(t *testing.T) {
	if err := CheckFFmpegAvailable("definitely-not-ffmpeg-xyz"); err == nil {
		t.Error("CheckFFmpegAvailable() = nil for a missing binary, want error")
	}
}

func TestBuildEncoderArgs(t *testing.T) {
	args := BuildEncoderArgs(EncodeRequest{
		FrameDir:   "/tmp/stage",
		FrameRate:  25,
		AudioPath:  "song.mp3",
		Codec:      "libx264",
		Threads:    4,
		OutputPath: "out.mp4",
	})

	assertContains(t, args, "-framerate", "25")
	assertContains(t, args, "-start_number", "0")
	assertContains(t, args, "-f", "image2")
	assertContains(t, args, "-i", filepath.Join("/tmp/stage", "frame%d.jpg"))
	assertContains(t, args, "-c:v", "libx264")
	assertContains(t, args, "-c:a", "copy")
	assertContains(t, args, "-pix_fmt", DefaultPixelFormat)
	assertContains(t, args, "-threads", "4")
	assertContains(t, args, "-map", "0:v")

	if got := args[len(args)-1]; got != "out.mp4" {
		t.Errorf("last arg = %q, want output path", got)
	}

	// audio is the second input
	var inputs []string
	for i, a := range args {
		if a == "-i" && i+1 < len(args) {
			inputs = append(inputs, args[i+1])
		}
	}
	if len(inputs) != 2 || inputs[1] != "song.mp3" {
		t.Errorf("inputs = %v, want frames then song.mp3", inputs)
	}
}

func TestBuildEncoderArgs_Defaults(t *testing.T) {
	args := BuildEncoderArgs(EncodeRequest{FrameDir: "d", FrameRate: 30, AudioPath: "a.wav", OutputPath: "o.mp4"})

	assertContains(t, args, "-c:v", DefaultCodec)
	assertContains(t, args, "-framerate", "30")
	assertNotContains(t, args, "-threads")
}

// ffmpeg's image2 demuxer chooses the decoder from the extension of the
// pattern, so the frame input must end in an image extension it knows.
func TestBuildEncoderArgs_FramePatternHasImageExtension(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{"", "frame%d.jpg"},
		{FrameExt, "frame%d.jpg"},
		{SequenceExt("a.PNG"), "frame%d.png"},
		{SequenceExt("a.tiff"), "frame%d.tif"},
	}
	for _, tt := range tests {
		args := BuildEncoderArgs(EncodeRequest{FrameDir: "d", FrameExt: tt.ext, FrameRate: 25, AudioPath: "a.wav", OutputPath: "o.mp4"})

		var input string
		for i, a := range args {
			if a == "-i" {
				input = args[i+1]
				break
			}
		}
		if filepath.Base(input) != tt.want {
			t.Errorf("frame input for ext %q = %q, want %q", tt.ext, filepath.Base(input), tt.want)
		}
		if !IsImage(filepath.Ext(input)) {
			t.Errorf("frame input %q has no image extension", input)
		}
	}
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "fake-ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFFmpegEncoder_NonZeroExit(t *testing.T) {
	enc := &FFmpegEncoder{Path: writeScript(t, "echo boom >&2\nexit 3\n")}

	err := enc.Encode(context.Background(), EncodeRequest{
		FrameDir:   t.TempDir(),
		FrameRate:  25,
		AudioPath:  "a.wav",
		OutputPath: filepath.Join(t.TempDir(), "out.mp4"),
	})
	if !errors.Is(err, ErrEncodeFailed) {
		t.Fatalf("Encode() error = %v, want ErrEncodeFailed", err)
	}
}

func TestFFmpegEncoder_Success(t *testing.T) {
	// writes an empty file at the last argument
	enc := &FFmpegEncoder{Path: writeScript(t, "for a; do last=$a; done\n: > \"$last\"\n")}
	out := filepath.Join(t.TempDir(), "out.mp4")

	err := enc.Encode(context.Background(), EncodeRequest{
		FrameDir:   t.TempDir(),
		FrameRate:  25,
		AudioPath:  "a.wav",
		OutputPath: out,
	})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output not created: %v", err)
	}
}

// Helper functions

func assertContains(t *testing.T, args []string, key, value string) {
	t.Helper()
	for i, arg := range args {
		if arg == key && i+1 < len(args) && args[i+1] == value {
			return
		}
	}
	t.Errorf("Expected args to contain %s %s, got: %v", key, value, args)
}

func assertNotContains(t *testing.T, args []string, key string) {
	t.Helper()
	for _, arg := range args {
		if arg == key {
			t.Errorf("Expected args NOT to contain %s, but it was found", key)
			return
		}
	}
}
