package filehandler

import (
	"image"
	"image/color"
	"math/big"

	"github.com/fpang/photo-slideshow/internal/geometry"
	"golang.org/x/image/draw"
)

// FitSize returns the largest size with the exact aspect ratio of w x h that
// fits inside canvasW x canvasH. The aspect comparison is done on rationals;
// the derived side is floored and never drops below 1.
func FitSize(w, h, canvasW, canvasH int) (int, int) {
	aspect := big.NewRat(int64(w), int64(h))
	target := big.NewRat(int64(canvasW), int64(canvasH))

	if aspect.Cmp(target) < 0 {
		// narrower than the canvas: height-bound
		fw := floorMul(canvasH, w, h)
		return max(fw, 1), canvasH
	}
	fh := floorMul(canvasW, h, w)
	return canvasW, max(fh, 1)
}

// floorMul returns floor(a * num / den) without overflow.
func floorMul(a, num, den int) int {
	n := new(big.Int).Mul(big.NewInt(int64(a)), big.NewInt(int64(num)))
	return int(n.Quo(n, big.NewInt(int64(den))).Int64())
}

// Letterbox scales img to the largest aspect-preserving size inside canvas and
// centres it on an opaque black canvas of exactly that size. A pass-through
// canvas returns img unchanged.
func Letterbox(img image.Image, canvas geometry.Geometry) image.Image {
	if canvas.IsNone() {
		return img
	}

	bounds := img.Bounds()
	origWidth, origHeight := bounds.Dx(), bounds.Dy()
	newWidth, newHeight := FitSize(origWidth, origHeight, canvas.Width, canvas.Height)

	scaled := img
	if newWidth != origWidth || newHeight != origHeight {
		resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Src, nil)
		scaled = resized
	}

	if newWidth == canvas.Width && newHeight == canvas.Height {
		return scaled
	}

	dst := image.NewRGBA(image.Rect(0, 0, canvas.Width, canvas.Height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	x := (canvas.Width - newWidth) / 2
	y := (canvas.Height - newHeight) / 2
	sb := scaled.Bounds()
	draw.Draw(dst, image.Rect(x, y, x+newWidth, y+newHeight), scaled, sb.Min, draw.Over)

	return dst
}
