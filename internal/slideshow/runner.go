package slideshow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/fpang/photo-slideshow/internal/filehandler"
	"github.com/fpang/photo-slideshow/internal/geometry"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Progress receives transform progress.
type Progress interface {
	// Dispatched is called after the n-th of total tasks has been handed to a worker.
	Dispatched(n, total int)
	// Finish is called once every task has been dispatched and awaited.
	Finish()
}

type nopProgress struct{}

func (nopProgress) Dispatched(int, int) {}
func (nopProgress) Finish()             {}

// Runner transforms source images into processed frames with a bounded pool
// of workers.
type Runner struct {
	// Workers bounds concurrent transforms. 0 means runtime.NumCPU().
	Workers int
	// JPEGQuality of processed frames. 0 means filehandler.DefaultJPEGQuality.
	JPEGQuality int
	// Progress may be nil.
	Progress Progress
}

func (r *Runner) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return runtime.NumCPU()
}

func (r *Runner) progress() Progress {
	if r.Progress == nil {
		return nopProgress{}
	}
	return r.Progress
}

// Transform processes paths into dir and returns the target path of every
// input in input order, pic-0001 first.
//
// With pass-through geometry each target is a link to the absolute source
// path and keeps the source's image extension. Otherwise each image is decoded, upright-corrected, letterboxed onto
// geom and written as a JPEG. An image that cannot be opened or decoded is
// logged and skipped: its entry is still returned but the file never exists.
//
// Any other failure cancels the remaining work and is returned.
func (r *Runner) Transform(ctx context.Context, paths []string, geom geometry.Geometry, dir string) ([]string, error) {
	targets := make([]string, len(paths))
	for i, src := range paths {
		ext := filehandler.FrameExt
		if geom.IsNone() {
			ext = filehandler.SequenceExt(src)
		}
		targets[i] = filepath.Join(dir, filehandler.ProcessedName(i+1, ext))
	}

	log.Info().
		Int("images", len(paths)).
		Int("workers", r.workers()).
		Str("geometry", geom.String()).
		Msg("Transforming images")

	start := time.Now()
	progress := r.progress()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())

dispatch:
	for i, src := range paths {
		select {
		case <-gctx.Done():
			break dispatch
		default:
		}

		target := targets[i]
		g.Go(func() (err error) {
			defer func() {
				if v := recover(); v != nil {
					err = fmt.Errorf("transform of %s panicked: %v", filepath.Base(src), v)
				}
			}()
			return r.transformOne(gctx, src, target, geom)
		})
		progress.Dispatched(i+1, len(paths))
	}

	err := g.Wait()
	progress.Finish()
	if err != nil {
		log.Error().Err(err).Msg("Transform aborted")
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Info().
		Int("images", len(paths)).
		Dur("elapsed", time.Since(start)).
		Msg("Transform complete")

	return targets, nil
}

func (r *Runner) transformOne(ctx context.Context, src, target string, geom geometry.Geometry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if geom.IsNone() {
		return linkSource(src, target)
	}

	img, orientation, err := filehandler.DecodeImage(src)
	if err != nil {
		if errors.Is(err, filehandler.ErrUnreadable) {
			log.Warn().Err(err).Str("image", src).Msg("Skipping unreadable image")
			return nil
		}
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	img = filehandler.Orient(img, orientation)
	img = filehandler.Letterbox(img, geom)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := filehandler.WriteJPEG(target, img, r.JPEGQuality); err != nil {
		return err
	}

	log.Debug().
		Str("image", filepath.Base(src)).
		Str("frame", filepath.Base(target)).
		Int("orientation", orientation).
		Msg("Image processed")
	return nil
}

// linkSource links target to the absolute path of src. A source that cannot
// be opened is skipped like an undecodable image.
func linkSource(src, target string) error {
	abs, err := filepath.Abs(src)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", src, err)
	}
	f, err := os.Open(abs)
	if err != nil {
		log.Warn().Err(err).Str("image", src).Msg("Skipping unreadable image")
		return nil
	}
	f.Close()

	return filehandler.LinkFile(abs, target)
}
