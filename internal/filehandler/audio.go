package filehandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-audio/wav"
	"github.com/rs/zerolog/log"
)

// ErrAudioProbe marks a soundtrack whose duration could not be determined.
var ErrAudioProbe = errors.New("audio probe failed")

// AudioProber reports the duration of an audio file in whole seconds.
type AudioProber interface {
	DurationSeconds(ctx context.Context, path string) (int, error)
}

// AudioMetadata contains what the slideshow needs to know about a soundtrack.
//
// WAV files are read in pure Go with go-audio/wav. Everything else goes
// through ffprobe, which understands every container ffmpeg can mux from.
type AudioMetadata struct {
	Duration   time.Duration
	Codec      string
	SampleRate int
	Channels   int
	BitRate    int64
}

// Seconds returns the duration truncated to whole seconds.
func (m *AudioMetadata) Seconds() int {
	return int(m.Duration / time.Second)
}

// FFprobeProber probes audio files. WAV is decoded natively; other formats
// shell out to ffprobe.
type FFprobeProber struct {
	// Path is the ffprobe binary. Empty means "ffprobe" looked up in PATH.
	Path string
}

var _ AudioProber = (*FFprobeProber)(nil)

// DurationSeconds implements AudioProber.
func (p *FFprobeProber) DurationSeconds(ctx context.Context, path string) (int, error) {
	meta, err := p.Probe(ctx, path)
	if err != nil {
		return 0, err
	}
	return meta.Seconds(), nil
}

// Probe returns the metadata of the audio file at path.
func (p *FFprobeProber) Probe(ctx context.Context, path string) (*AudioMetadata, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		meta, err := ProbeWAV(path)
		if err == nil {
			return meta, nil
		}
		log.Debug().Err(err).Str("path", path).Msg("Native WAV probe failed, trying ffprobe")
	}
	return p.probeFFprobe(ctx, path)
}

// ProbeWAV reads the duration and format of a WAV file without decoding samples.
func ProbeWAV(path string) (*AudioMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAudioProbe, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: %s is not a valid WAV file", ErrAudioProbe, filepath.Base(path))
	}

	dur, err := dec.Duration()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAudioProbe, err)
	}

	meta := &AudioMetadata{
		Duration:   dur,
		Codec:      "pcm",
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitRate:    int64(dec.AvgBytesPerSec) * 8,
	}

	log.Debug().
		Str("path", path).
		Dur("duration", meta.Duration).
		Int("sample_rate", meta.SampleRate).
		Int("channels", meta.Channels).
		Msg("WAV metadata read")

	return meta, nil
}

// CheckFFprobeAvailable checks if ffprobe is available at bin, or in PATH when
// bin is empty.
func CheckFFprobeAvailable(bin string) error {
	if bin == "" {
		bin = "ffprobe"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return fmt.Errorf("ffprobe not found (%s): audio durations cannot be probed. Install FFmpeg with: brew install ffmpeg (macOS) or apt install ffmpeg (Linux)", bin)
	}
	log.Debug().Str("path", path).Msg("ffprobe found")
	return nil
}

// ffprobeOutput represents the JSON structure from ffprobe.
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

type ffprobeStream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Duration   string `json:"duration"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

func (p *FFprobeProber) probeFFprobe(ctx context.Context, path string) (*AudioMetadata, error) {
	bin := p.Path
	if bin == "" {
		bin = "ffprobe"
	}
	ffprobePath, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("%w: ffprobe not found: %v", ErrAudioProbe, err)
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: ffprobe failed on %s: %v", ErrAudioProbe, filepath.Base(path), err)
	}

	meta, err := parseFFprobeAudio(output)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("path", path).
		Dur("duration", meta.Duration).
		Str("codec", meta.Codec).
		Int("sample_rate", meta.SampleRate).
		Msg("Audio metadata extracted via ffprobe")

	return meta, nil
}

// parseFFprobeAudio extracts audio metadata from ffprobe's JSON output. The
// container duration wins; the first audio stream's duration is the fallback.
func parseFFprobeAudio(output []byte) (*AudioMetadata, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("%w: failed to parse ffprobe output: %v", ErrAudioProbe, err)
	}

	meta := &AudioMetadata{}
	if probe.Format.BitRate != "" {
		meta.BitRate, _ = strconv.ParseInt(probe.Format.BitRate, 10, 64)
	}

	seconds := parseSeconds(probe.Format.Duration)
	hasAudio := false
	for _, stream := range probe.Streams {
		if stream.CodecType != "audio" || hasAudio {
			continue
		}
		hasAudio = true
		meta.Codec = stream.CodecName
		meta.Channels = stream.Channels
		meta.SampleRate, _ = strconv.Atoi(stream.SampleRate)
		if seconds <= 0 {
			seconds = parseSeconds(stream.Duration)
		}
	}

	if !hasAudio {
		return nil, fmt.Errorf("%w: no audio stream", ErrAudioProbe)
	}
	if seconds <= 0 {
		return nil, fmt.Errorf("%w: duration unknown", ErrAudioProbe)
	}

	meta.Duration = time.Duration(seconds * float64(time.Second))
	return meta, nil
}

func parseSeconds(value string) float64 {
	if value == "" || value == "N/A" {
		return 0
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return v
}
