package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// NewProgress returns a transform progress reporter writing to w: a progress
// bar on a terminal, a running count otherwise.
func NewProgress(w io.Writer) *Progress {
	return &Progress{out: w, bar: IsTerminal(w)}
}

// Progress reports how many images have been handed to the transform workers.
type Progress struct {
	out     io.Writer
	bar     bool
	pb      *progressbar.ProgressBar
	printed bool
}

// Dispatched records that n of total images have been dispatched.
func (p *Progress) Dispatched(n, total int) {
	if !p.bar {
		fmt.Fprintf(p.out, "%d ", n)
		p.printed = true
		return
	}
	if p.pb == nil {
		p.pb = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription("Transforming"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetRenderBlankState(true),
		)
	}
	_ = p.pb.Set(n)
}

// Finish terminates the progress line.
func (p *Progress) Finish() {
	if p.pb != nil {
		_ = p.pb.Finish()
		fmt.Fprintln(p.out)
		return
	}
	if p.printed {
		fmt.Fprintln(p.out)
	}
}
