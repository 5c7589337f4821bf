package slideshow

import (
	"context"
	"time"

	"github.com/fpang/photo-slideshow/internal/filehandler"
	"github.com/fpang/photo-slideshow/internal/geometry"
)

// PlanEntry is the expected timing of one image.
type PlanEntry struct {
	Position    int
	Source      *filehandler.SourceImage
	Run         Run
	ShownFor    time.Duration
	Width       int
	Height      int
	Orientation int
	// Err is set when the image could not be read; a real run would skip it.
	Err error
}

// Plan is what Run would do for a job, assuming every image is readable.
type Plan struct {
	Geometry     geometry.Geometry
	AudioSeconds int
	FrameRate    int
	Frames       int
	Codec        string
	Entries      []PlanEntry
}

// Plan runs every check Run performs before creating state and returns the
// frame allocation without touching the filesystem.
func (p *Pipeline) Plan(ctx context.Context, job Job) (*Plan, error) {
	prep, err := p.prepare(ctx, job)
	if err != nil {
		return nil, err
	}

	runs, err := Allocate(len(prep.images), prep.frames)
	if err != nil {
		return nil, err
	}

	frameDur := time.Second / time.Duration(p.frameRate())
	entries := make([]PlanEntry, len(prep.images))
	for i, path := range prep.images {
		src := filehandler.NewSourceImage(path)
		w, h, err := src.Size()
		entries[i] = PlanEntry{
			Position:    i + 1,
			Source:      src,
			Run:         runs[i],
			ShownFor:    time.Duration(runs[i].Len()) * frameDur,
			Width:       w,
			Height:      h,
			Orientation: src.Orientation(),
			Err:         err,
		}
	}

	return &Plan{
		Geometry:     prep.geometry,
		AudioSeconds: prep.audioSeconds,
		FrameRate:    p.frameRate(),
		Frames:       prep.frames,
		Codec:        p.codec(),
		Entries:      entries,
	}, nil
}
