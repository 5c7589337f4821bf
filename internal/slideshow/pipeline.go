package slideshow

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fpang/photo-slideshow/internal/filehandler"
	"github.com/fpang/photo-slideshow/internal/geometry"
	"github.com/fpang/photo-slideshow/internal/jobs"
	"github.com/fpang/photo-slideshow/internal/metrics"
	"github.com/rs/zerolog/log"
)

// DefaultFrameRate is the output frame rate when none is configured.
const DefaultFrameRate = 25

// Job is one slideshow request.
type Job struct {
	AudioPath  string
	Images     []string
	Geometry   geometry.Mode
	Shuffle    bool
	OutputPath string
}

// Result summarises a finished run.
type Result struct {
	RunID           string
	OutputPath      string
	Geometry        geometry.Geometry
	AudioSeconds    int
	Frames          int
	ImagesIn        int
	ImagesProcessed int
	ImagesSkipped   int
	TransformTime   time.Duration
	EncodeTime      time.Duration
}

// Pipeline sequences audio probing, image transformation, frame allocation
// and encoding around a scoped staging directory.
type Pipeline struct {
	Prober  filehandler.AudioProber
	Encoder filehandler.Encoder
	Runner  *Runner

	// FrameRate of the output video. 0 means DefaultFrameRate.
	FrameRate   int
	Codec       string
	PixelFormat string
	Threads     int

	// StagingDir is the parent of the per-run staging directory. Empty means
	// the system temp directory.
	StagingDir string

	// Rand shuffles images when Job.Shuffle is set. nil uses the global source.
	Rand *rand.Rand

	// Metrics, when non-nil, receives the run's metrics and is flushed at the end.
	Metrics *metrics.Recorder
}

func (p *Pipeline) frameRate() int {
	if p.FrameRate > 0 {
		return p.FrameRate
	}
	return DefaultFrameRate
}

func (p *Pipeline) codec() string {
	if p.Codec != "" {
		return p.Codec
	}
	return filehandler.DefaultCodec
}

// prepared holds everything known before any state is created.
type prepared struct {
	images       []string
	audioSeconds int
	frames       int
	geometry     geometry.Geometry
	frameExt     string
}

// prepare probes the soundtrack, checks that every image can get at least one
// frame, applies the shuffle and resolves the canvas.
func (p *Pipeline) prepare(ctx context.Context, job Job) (*prepared, error) {
	if len(job.Images) == 0 {
		return nil, fmt.Errorf("%w: no images given", ErrInvalidArgument)
	}

	seconds, err := p.Prober.DurationSeconds(ctx, job.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read duration of %s: %w", filepath.Base(job.AudioPath), err)
	}
	frames := seconds * p.frameRate()

	log.Info().
		Str("audio", job.AudioPath).
		Int("seconds", seconds).
		Int("fps", p.frameRate()).
		Int("frames", frames).
		Msg("Audio probed")

	if len(job.Images) > frames {
		return nil, fmt.Errorf("%w: %d images but only %d frames (%ds at %d fps)",
			ErrInvalidArgument, len(job.Images), frames, seconds, p.frameRate())
	}

	images := slices.Clone(job.Images)
	if job.Shuffle {
		swap := func(i, j int) { images[i], images[j] = images[j], images[i] }
		if p.Rand != nil {
			p.Rand.Shuffle(len(images), swap)
		} else {
			rand.Shuffle(len(images), swap)
		}
		log.Debug().Strs("order", images).Msg("Images shuffled")
	}

	geom, err := geometry.Resolve(job.Geometry, images)
	if err != nil {
		return nil, err
	}

	frameExt := filehandler.FrameExt
	if geom.IsNone() {
		if frameExt, err = passThroughExt(images); err != nil {
			return nil, err
		}
	}

	return &prepared{
		images:       images,
		audioSeconds: seconds,
		frames:       frames,
		geometry:     geom,
		frameExt:     frameExt,
	}, nil
}

// passThroughExt returns the one sequence extension shared by images. Linked
// sources reach ffmpeg as a single image2 sequence, which has one decoder.
func passThroughExt(images []string) (string, error) {
	var ext, first string
	for _, path := range images {
		e := filehandler.SequenceExt(path)
		if e == "" {
			return "", fmt.Errorf("%w: geometry none cannot pass %s to the encoder as a sequence image",
				ErrInvalidArgument, filepath.Base(path))
		}
		if ext == "" {
			ext, first = e, path
			continue
		}
		if e != ext {
			return "", fmt.Errorf("%w: geometry none needs images of a single type, got %s and %s",
				ErrInvalidArgument, filepath.Base(first), filepath.Base(path))
		}
	}
	return ext, nil
}

// Run builds the slideshow described by job.
//
// Argument problems are reported before the staging directory exists. The
// staging directory is removed on every return path; a failure to remove it
// is logged and does not change the outcome.
func (p *Pipeline) Run(ctx context.Context, job Job) (*Result, error) {
	runID := jobs.GenerateID("run-")
	logger := log.With().Str("run_id", runID).Logger()

	prep, err := p.prepare(ctx, job)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:        runID,
		OutputPath:   job.OutputPath,
		Geometry:     prep.geometry,
		AudioSeconds: prep.audioSeconds,
		Frames:       prep.frames,
		ImagesIn:     len(prep.images),
	}

	stage, err := os.MkdirTemp(p.StagingDir, "slideshow-"+jobs.Short(runID, "run-")+"-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	logger.Debug().Str("dir", stage).Msg("Staging directory created")
	defer func() {
		if err := os.RemoveAll(stage); err != nil {
			logger.Warn().Err(err).Str("dir", stage).Msg("Failed to remove staging directory")
		} else {
			logger.Debug().Str("dir", stage).Msg("Staging directory removed")
		}
	}()

	transformStart := time.Now()
	processed, err := p.Runner.Transform(ctx, prep.images, prep.geometry, stage)
	result.TransformTime = time.Since(transformStart)
	if err != nil {
		p.recordFailure(result, "transform")
		return nil, fmt.Errorf("transform failed: %w", err)
	}

	survivors := make([]string, 0, len(processed))
	for _, path := range processed {
		if _, err := os.Stat(path); err == nil {
			survivors = append(survivors, path)
		}
	}
	result.ImagesProcessed = len(survivors)
	result.ImagesSkipped = len(processed) - len(survivors)

	if result.ImagesSkipped > 0 {
		logger.Warn().
			Int("skipped", result.ImagesSkipped).
			Int("processed", result.ImagesProcessed).
			Msg("Some images were skipped")
	}

	runs, err := Allocate(len(survivors), prep.frames)
	if err != nil {
		p.recordFailure(result, "allocate")
		return nil, err
	}
	if err := LinkFrames(stage, survivors, runs, prep.frameExt); err != nil {
		p.recordFailure(result, "link")
		return nil, fmt.Errorf("failed to lay out frames: %w", err)
	}

	logger.Info().
		Int("images", len(survivors)).
		Int("frames", prep.frames).
		Msg("Frames allocated")

	encodeStart := time.Now()
	err = p.Encoder.Encode(ctx, filehandler.EncodeRequest{
		FrameDir:    stage,
		FrameExt:    prep.frameExt,
		FrameRate:   p.frameRate(),
		AudioPath:   job.AudioPath,
		Codec:       p.codec(),
		PixelFormat: p.PixelFormat,
		Threads:     p.Threads,
		OutputPath:  job.OutputPath,
	})
	result.EncodeTime = time.Since(encodeStart)
	if err != nil {
		p.recordFailure(result, "encode")
		return nil, err
	}

	p.record(result)

	logger.Info().
		Str("output", result.OutputPath).
		Int("frames", result.Frames).
		Int("images", result.ImagesProcessed).
		Dur("transform_time", result.TransformTime).
		Dur("encode_time", result.EncodeTime).
		Msg("Slideshow complete")

	return result, nil
}

func (p *Pipeline) record(r *Result) {
	if p.Metrics == nil {
		return
	}
	p.Metrics.
		Dimension("Codec", p.codec()).
		Duration("TransformMs", r.TransformTime).
		Duration("EncodeMs", r.EncodeTime).
		Metric("ImagesProcessed", float64(r.ImagesProcessed), metrics.UnitCount).
		Metric("ImagesSkipped", float64(r.ImagesSkipped), metrics.UnitCount).
		Metric("FramesAllocated", float64(r.Frames), metrics.UnitCount).
		Metric("AudioSeconds", float64(r.AudioSeconds), metrics.UnitSeconds).
		Property("runId", r.RunID).
		Property("geometry", r.Geometry.String()).
		Count("Runs").
		Flush()
}

func (p *Pipeline) recordFailure(r *Result, stage string) {
	if p.Metrics == nil {
		return
	}
	p.Metrics.
		Dimension("Codec", p.codec()).
		Duration("TransformMs", r.TransformTime).
		Property("runId", r.RunID).
		Property("failedStage", stage).
		Count("RunErrors").
		Flush()
}
