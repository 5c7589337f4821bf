package slideshow

import (
	"fmt"
	"math/big"
	"path/filepath"

	"github.com/fpang/photo-slideshow/internal/filehandler"
	"github.com/rs/zerolog/log"
)

// Run is the half-open range [Start, End) of output frame indices shown for
// one image.
type Run struct {
	Start int
	End   int
}

// Len returns the number of frames in the run.
func (r Run) Len() int {
	return r.End - r.Start
}

// Allocate distributes frames output frames over n images in order.
//
// Each image gets frames/n frames on average. The cursor advances by exactly
// frames/n as a rational and every run is [floor(start), floor(start+frames/n)),
// so consecutive runs share their boundary and the last one ends at frames.
// Every run is non-empty because frames/n >= 1.
func Allocate(n, frames int) ([]Run, error) {
	if n < 1 {
		return nil, ErrNoImages
	}
	if frames < n {
		return nil, fmt.Errorf("%w: %d images need at least %d frames, only %d available",
			ErrInvalidArgument, n, n, frames)
	}

	perPic := big.NewRat(int64(frames), int64(n))
	start := new(big.Rat)
	end := new(big.Rat)

	runs := make([]Run, n)
	for i := range runs {
		end.Add(start, perPic)
		runs[i] = Run{Start: floor(start), End: floor(end)}
		start.Set(end)
	}
	return runs, nil
}

// floor returns the floor of a non-negative rational.
func floor(r *big.Rat) int {
	q := new(big.Int).Quo(r.Num(), r.Denom())
	return int(q.Int64())
}

// LinkFrames creates frame<i><ext> in dir for every index i of runs[k], linked
// to processed[k]. ext must match the content of every processed file.
func LinkFrames(dir string, processed []string, runs []Run, ext string) error {
	if len(processed) != len(runs) {
		return fmt.Errorf("%d processed frames but %d runs", len(processed), len(runs))
	}

	for k, run := range runs {
		target := processed[k]
		if !filepath.IsAbs(target) {
			abs, err := filepath.Abs(target)
			if err != nil {
				return fmt.Errorf("failed to resolve %s: %w", target, err)
			}
			target = abs
		}
		for i := run.Start; i < run.End; i++ {
			if err := filehandler.LinkFile(target, filepath.Join(dir, filehandler.FrameName(i, ext))); err != nil {
				return err
			}
		}
		log.Debug().
			Str("image", filepath.Base(processed[k])).
			Int("start", run.Start).
			Int("end", run.End).
			Msg("Frames linked")
	}
	return nil
}
