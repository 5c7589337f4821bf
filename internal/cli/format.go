package cli

import "fmt"

// FormatLength describes a slideshow's running time together with the frame
// count that fills it, e.g. "3:07 (187s, 4675 frames at 25 fps)".
func FormatLength(seconds, frames, fps int) string {
	return fmt.Sprintf("%s (%ds, %d frames at %d fps)", clock(seconds), seconds, frames, fps)
}

// clock renders whole seconds as M:SS, or H:MM:SS from an hour up.
func clock(seconds int) string {
	h, m, s := seconds/3600, seconds%3600/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
