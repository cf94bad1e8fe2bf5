package rimage

import (
	"image"
	"image/color"
	"testing"

	"go.viam.com/test"
)

func splitImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.SetNRGBA(x, y, color.NRGBA{200, 0, 0, 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{0, 0, 200, 255})
			}
		}
	}
	return img
}

func TestFitToDisparityHalves(t *testing.T) {
	out := FitToDisparity(splitImage(8, 4), 4, 2)
	test.That(t, out.Bounds().Dx(), test.ShouldEqual, 4)
	test.That(t, out.Bounds().Dy(), test.ShouldEqual, 2)
	test.That(t, out.NRGBAAt(0, 0), test.ShouldResemble, color.NRGBA{200, 0, 0, 255})
	test.That(t, out.NRGBAAt(3, 1), test.ShouldResemble, color.NRGBA{0, 0, 200, 255})
}

func TestFitToDisparityExactResample(t *testing.T) {
	// ceil(10/4) = 3 gives 3x2, which still needs a resample to 4x3
	out := FitToDisparity(splitImage(10, 6), 4, 3)
	test.That(t, out.Bounds().Dx(), test.ShouldEqual, 4)
	test.That(t, out.Bounds().Dy(), test.ShouldEqual, 3)
}

func TestFitToDisparitySameSize(t *testing.T) {
	in := splitImage(4, 2)
	out := FitToDisparity(in, 4, 2)
	test.That(t, out.Pix, test.ShouldResemble, in.Pix)
}
