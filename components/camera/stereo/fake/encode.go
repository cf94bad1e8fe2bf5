package fake

import (
	"encoding/binary"
	"image/color"
	"math"

	"github.com/pkg/errors"

	"go.viam.com/stereomesh/rimage"
)

// intensityScale is how much larger the intensity image is than the disparity image.
const intensityScale = 2

func (s scene) encodeDisparity(frame int, timestamp uint64, scale float64) *rimage.RawImage {
	img := &rimage.RawImage{
		Width:     s.width,
		Height:    s.height,
		Format:    rimage.Coord3D_C16,
		Timestamp: timestamp,
		Data:      make([]byte, 2*s.width*s.height),
	}
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			// 0 is the invalid code
			var raw uint16
			if d, ok := s.disparity(x, y, frame); ok {
				raw = uint16(math.Round(d / scale))
			}
			binary.LittleEndian.PutUint16(img.Data[2*(y*s.width+x):], raw)
		}
	}
	return img
}

func (s scene) encodeConfidence(timestamp uint64) *rimage.RawImage {
	img := &rimage.RawImage{
		Width:     s.width,
		Height:    s.height,
		Format:    rimage.Mono8,
		Timestamp: timestamp,
		Data:      make([]byte, s.width*s.height),
	}
	for i := range img.Data {
		img.Data[i] = 0xff
	}
	return img
}

func (s scene) encodeIntensity(frame int, timestamp uint64, pf rimage.PixelFormat) (*rimage.RawImage, error) {
	img := &rimage.RawImage{
		Width:     s.width * intensityScale,
		Height:    s.height * intensityScale,
		Format:    pf,
		Timestamp: timestamp,
	}
	img.Data = make([]byte, img.Stride()*img.Height)
	at := func(x, y int) (uint8, uint8, uint8) {
		return s.color(x/intensityScale, y/intensityScale, frame)
	}

	switch pf {
	case rimage.Mono8:
		for y := 0; y < img.Height; y++ {
			for x := 0; x < img.Width; x++ {
				r, g, b := at(x, y)
				img.Data[y*img.Stride()+x] = color.GrayModel.Convert(color.RGBA{r, g, b, 0xff}).(color.Gray).Y
			}
		}
	case rimage.RGB8:
		for y := 0; y < img.Height; y++ {
			for x := 0; x < img.Width; x++ {
				r, g, b := at(x, y)
				copy(img.Data[y*img.Stride()+3*x:], []byte{r, g, b})
			}
		}
	case rimage.YCbCr411_8:
		for y := 0; y < img.Height; y++ {
			row := img.Data[y*img.Stride():]
			for gx := 0; gx < img.Width/4; gx++ {
				var lumas [4]uint8
				var cbSum, crSum int
				for i := 0; i < 4; i++ {
					r, g, b := at(4*gx+i, y)
					yy, cb, cr := color.RGBToYCbCr(r, g, b)
					lumas[i] = yy
					cbSum += int(cb)
					crSum += int(cr)
				}
				copy(row[6*gx:], []byte{lumas[0], lumas[1], uint8(cbSum / 4), lumas[2], lumas[3], uint8(crSum / 4)})
			}
		}
	default:
		return nil, errors.Errorf("fake device cannot produce %v", pf)
	}
	return img, nil
}
