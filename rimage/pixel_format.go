package rimage

import (
	"fmt"

	"github.com/pkg/errors"
)

// PixelFormat is a GenICam PFNC pixel format code.
type PixelFormat uint32

// The pixel formats a stereo device delivers.
const (
	Mono8       = PixelFormat(0x01080001)
	Mono16      = PixelFormat(0x01100007)
	RGB8        = PixelFormat(0x02180014)
	YCbCr411_8  = PixelFormat(0x020C005A) //nolint:revive,stylecheck
	Coord3D_C16 = PixelFormat(0x011000B8) //nolint:revive,stylecheck
)

// BitsPerPixel is the effective pixel size encoded in bits 16-23 of the PFNC code.
func (pf PixelFormat) BitsPerPixel() int {
	return int((pf >> 16) & 0xff)
}

func (pf PixelFormat) String() string {
	switch pf {
	case Mono8:
		return "Mono8"
	case Mono16:
		return "Mono16"
	case RGB8:
		return "RGB8"
	case YCbCr411_8:
		return "YCbCr411_8"
	case Coord3D_C16:
		return "Coord3D_C16"
	default:
		return fmt.Sprintf("PixelFormat(0x%08x)", uint32(pf))
	}
}

// ParsePixelFormat maps a PixelFormat enum entry name to its code.
func ParsePixelFormat(name string) (PixelFormat, error) {
	for _, pf := range []PixelFormat{Mono8, Mono16, RGB8, YCbCr411_8, Coord3D_C16} {
		if pf.String() == name {
			return pf, nil
		}
	}
	return 0, errors.Errorf("unknown pixel format %q", name)
}
