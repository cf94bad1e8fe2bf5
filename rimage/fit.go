package rimage

import (
	"image"

	"github.com/disintegration/imaging"
)

// FitToDisparity brings a color image to the disparity resolution. The image is first shrunk by
// the integer factor ceil(iw/w) with box averaging and then, if the sizes still differ, resampled
// to exactly w x h.
func FitToDisparity(img image.Image, w, h int) *image.NRGBA {
	iw, ih := img.Bounds().Dx(), img.Bounds().Dy()
	if w <= 0 || h <= 0 {
		return imaging.Clone(img)
	}
	ds := (iw + w - 1) / w

	var out *image.NRGBA
	if ds > 1 {
		out = imaging.Resize(img, iw/ds, ih/ds, imaging.Box)
	} else {
		out = imaging.Clone(img)
	}
	if b := out.Bounds(); b.Dx() != w || b.Dy() != h {
		out = imaging.Resize(out, w, h, imaging.Linear)
	}
	return out
}
