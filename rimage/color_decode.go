package rimage

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// DecodeColor converts an intensity image into RGB. Mono8 becomes gray; YCbCr411_8 is expanded
// with the JFIF conversion, sharing each chroma pair across a group of four pixels.
func DecodeColor(img *RawImage) (*image.NRGBA, error) {
	if err := img.CheckValid(); err != nil {
		return nil, err
	}
	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	stride := img.Stride()

	switch img.Format {
	case Mono8:
		for y := 0; y < img.Height; y++ {
			row := img.Data[y*stride:]
			dst := out.Pix[y*out.Stride:]
			for x := 0; x < img.Width; x++ {
				v := row[x]
				dst[4*x], dst[4*x+1], dst[4*x+2], dst[4*x+3] = v, v, v, 0xff
			}
		}
	case RGB8:
		for y := 0; y < img.Height; y++ {
			row := img.Data[y*stride:]
			dst := out.Pix[y*out.Stride:]
			for x := 0; x < img.Width; x++ {
				dst[4*x], dst[4*x+1], dst[4*x+2], dst[4*x+3] = row[3*x], row[3*x+1], row[3*x+2], 0xff
			}
		}
	case YCbCr411_8:
		for y := 0; y < img.Height; y++ {
			row := img.Data[y*stride:]
			dst := out.Pix[y*out.Stride:]
			for g := 0; g < img.Width/4; g++ {
				// Y0 Y1 Cb Y2 Y3 Cr
				group := row[6*g : 6*g+6]
				cb, cr := group[2], group[5]
				for i, luma := range [4]byte{group[0], group[1], group[3], group[4]} {
					r, gg, b := color.YCbCrToRGB(luma, cb, cr)
					p := 4 * (4*g + i)
					dst[p], dst[p+1], dst[p+2], dst[p+3] = r, gg, b, 0xff
				}
			}
		}
	default:
		return nil, errors.Errorf("cannot decode %v as color", img.Format)
	}
	return out, nil
}
