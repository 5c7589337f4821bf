package filehandler

import (
	"image"

	"github.com/disintegration/imaging"
)

// Orient returns img transposed so that it displays upright for the given EXIF
// orientation tag. Rotations are counter-clockwise:
//
//	2: flip horizontal
//	3: rotate 180
//	4: flip vertical
//	5: flip vertical, then rotate 270 (transpose)
//	6: rotate 270
//	7: flip horizontal, then rotate 270 (transverse)
//	8: rotate 90
//
// Tag 1 and anything unrecognised return img unchanged.
func Orient(img image.Image, tag int) image.Image {
	switch tag {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
