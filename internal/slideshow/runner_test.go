package slideshow

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fpang/photo-slideshow/internal/filehandler"
	"github.com/fpang/photo-slideshow/internal/geometry"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func writeGarbage(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("this is not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
}

// explodingMagic starts files whose registered decoder panics.
const explodingMagic = "EXPLODING-IMAGE"

func init() {
	boom := func(io.Reader) (image.Image, error) { panic("decoder crashed") }
	boomConfig := func(io.Reader) (image.Config, error) { panic("decoder crashed") }
	image.RegisterFormat("exploding", explodingMagic, boom, boomConfig)
}

func writeExploding(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(explodingMagic+" payload"), 0o644); err != nil {
		t.Fatal(err)
	}
}

// fixtures writes one PNG per size into a fresh directory. A nil size writes
// an undecodable file instead.
func fixtures(t *testing.T, sizes ...[]int) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(sizes))
	for i, size := range sizes {
		paths[i] = filepath.Join(dir, fmt.Sprintf("img-%02d.png", i))
		if size == nil {
			writeGarbage(t, paths[i])
		} else {
			writePNG(t, paths[i], size[0], size[1])
		}
	}
	return paths
}

type recordingProgress struct {
	mu         sync.Mutex
	dispatched []int
	finished   int
}

func (p *recordingProgress) Dispatched(n, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dispatched = append(p.dispatched, n)
}

func (p *recordingProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finished++
}

func TestTransform_LetterboxesAndSkipsUnreadable(t *testing.T) {
	paths := fixtures(t, []int{64, 36}, nil, []int{10, 40}, []int{50, 50})
	dir := t.TempDir()
	progress := &recordingProgress{}
	r := &Runner{Workers: 2, Progress: progress}

	canvas := geometry.Geometry{Width: 32, Height: 18}
	got, err := r.Transform(context.Background(), paths, canvas, dir)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	if len(got) != len(paths) {
		t.Fatalf("Transform() returned %d paths, want %d", len(got), len(paths))
	}
	for i, p := range got {
		if want := filepath.Join(dir, filehandler.ProcessedName(i+1, filehandler.FrameExt)); p != want {
			t.Errorf("Transform()[%d] = %q, want %q", i, p, want)
		}
	}

	if _, err := os.Stat(got[1]); !os.IsNotExist(err) {
		t.Errorf("unreadable image should leave no frame, stat err = %v", err)
	}

	for _, i := range []int{0, 2, 3} {
		f, err := os.Open(got[i])
		if err != nil {
			t.Fatalf("frame %d missing: %v", i, err)
		}
		img, err := jpeg.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("frame %d is not a JPEG: %v", i, err)
		}
		if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 18 {
			t.Errorf("frame %d size = %v, want 32x18", i, img.Bounds().Size())
		}
	}

	if len(progress.dispatched) != len(paths) {
		t.Errorf("Dispatched called %d times, want %d", len(progress.dispatched), len(paths))
	}
	for i, n := range progress.dispatched {
		if n != i+1 {
			t.Errorf("Dispatched call %d reported %d", i, n)
		}
	}
	if progress.finished != 1 {
		t.Errorf("Finish called %d times, want 1", progress.finished)
	}
}

func TestTransform_PassThroughLinks(t *testing.T) {
	paths := fixtures(t, []int{7, 3}, []int{3, 7})
	missing := filepath.Join(t.TempDir(), "gone.png")
	paths = append(paths, missing)
	dir := t.TempDir()

	got, err := (&Runner{Workers: 1}).Transform(context.Background(), paths, geometry.None, dir)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	for i := 0; i < 2; i++ {
		if filepath.Ext(got[i]) != ".png" {
			t.Errorf("link %d = %q, want the source's .png extension", i, filepath.Base(got[i]))
		}
		info, err := os.Lstat(got[i])
		if err != nil {
			t.Fatalf("link %d missing: %v", i, err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			target, err := os.Readlink(got[i])
			if err != nil {
				t.Fatal(err)
			}
			if !filepath.IsAbs(target) || target != paths[i] {
				t.Errorf("link %d -> %q, want %q", i, target, paths[i])
			}
		}
	}
	if _, err := os.Lstat(got[2]); !os.IsNotExist(err) {
		t.Errorf("missing source should leave no link, lstat err = %v", err)
	}
}

func TestTransform_WorkerFaultAborts(t *testing.T) {
	paths := fixtures(t, []int{8, 8}, []int{8, 8}, []int{8, 8})
	dir := filepath.Join(t.TempDir(), "does-not-exist")

	got, err := (&Runner{Workers: 2}).Transform(context.Background(), paths, geometry.Geometry{Width: 4, Height: 4}, dir)
	if err == nil {
		t.Fatal("Transform() into a missing directory should fail")
	}
	if errors.Is(err, filehandler.ErrUnreadable) {
		t.Errorf("write failure reported as unreadable source: %v", err)
	}
	if got != nil {
		t.Errorf("Transform() returned %v on failure, want nil", got)
	}
}

func TestTransform_PanickingDecoderAborts(t *testing.T) {
	paths := fixtures(t, []int{8, 8}, []int{8, 8})
	boom := filepath.Join(filepath.Dir(paths[0]), "boom.png")
	writeExploding(t, boom)
	paths = append(paths, boom)

	got, err := (&Runner{Workers: 2}).Transform(context.Background(), paths, geometry.Geometry{Width: 4, Height: 4}, t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "panicked") {
		t.Fatalf("Transform() error = %v, want a recovered panic", err)
	}
	if got != nil {
		t.Errorf("Transform() returned %v on failure, want nil", got)
	}
}

func TestTransform_CancelledContext(t *testing.T) {
	paths := fixtures(t, []int{8, 8}, []int{8, 8})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&Runner{Workers: 1}).Transform(ctx, paths, geometry.Default, t.TempDir())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Transform() error = %v, want context.Canceled", err)
	}
}
