package rimage

import (
	"image/color"
	"testing"

	"go.viam.com/test"
)

func TestDecodeColorMono8(t *testing.T) {
	img := &RawImage{
		Width: 2, Height: 2, XPadding: 2, Format: Mono8,
		Data: []byte{10, 20, 0xEE, 0xEE, 30, 40},
	}
	out, err := DecodeColor(img)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.Bounds().Dx(), test.ShouldEqual, 2)
	test.That(t, out.NRGBAAt(0, 0), test.ShouldResemble, color.NRGBA{10, 10, 10, 255})
	test.That(t, out.NRGBAAt(1, 1), test.ShouldResemble, color.NRGBA{40, 40, 40, 255})
}

func TestDecodeColorRGB8(t *testing.T) {
	img := &RawImage{Width: 2, Height: 1, Format: RGB8, Data: []byte{1, 2, 3, 4, 5, 6}}
	out, err := DecodeColor(img)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.NRGBAAt(1, 0), test.ShouldResemble, color.NRGBA{4, 5, 6, 255})
}

func TestDecodeColorYCbCr411(t *testing.T) {
	// two rows of four pixels; second row has a pure gray group
	img := &RawImage{
		Width: 4, Height: 2, XPadding: 1, Format: YCbCr411_8,
		Data: []byte{
			50, 100, 90, 150, 200, 240, 0,
			128, 128, 128, 128, 128, 128,
		},
	}
	out, err := DecodeColor(img)
	test.That(t, err, test.ShouldBeNil)

	lumas := []uint8{50, 100, 150, 200}
	for x, luma := range lumas {
		r, g, b := color.YCbCrToRGB(luma, 90, 240)
		test.That(t, out.NRGBAAt(x, 0), test.ShouldResemble, color.NRGBA{r, g, b, 255})
	}
	for x := 0; x < 4; x++ {
		test.That(t, out.NRGBAAt(x, 1), test.ShouldResemble, color.NRGBA{128, 128, 128, 255})
	}
}

func TestDecodeColorUnsupported(t *testing.T) {
	img := &RawImage{Width: 1, Height: 1, Format: Coord3D_C16, Data: []byte{0, 0}}
	_, err := DecodeColor(img)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "Coord3D_C16")
}
