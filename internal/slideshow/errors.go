// Package slideshow turns an ordered list of images and a soundtrack into a
// fixed frame-rate video.
//
// The work happens in three stages:
//   - Runner.Transform upright-corrects and letterboxes every image in parallel
//     into a staging directory, skipping images that cannot be read.
//   - Allocate spreads the video's frames over the surviving images with exact
//     rational arithmetic, and LinkFrames lays the result out as numbered links.
//   - Pipeline.Run sequences the stages around a scoped staging directory and
//     hands the frame sequence to an Encoder.
package slideshow

import "errors"

var (
	// ErrInvalidArgument is returned when the request cannot be satisfied as
	// given, before any work is done. Its message starts with "invalid argument"
	// so the CLI renders it as a usage error.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNoImages is returned when no image survived the transform stage.
	ErrNoImages = errors.New("no images left to allocate frames to")
)
