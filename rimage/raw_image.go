package rimage

import (
	"github.com/pkg/errors"
)

// RawImage is one image part exactly as the device delivered it. It is treated as immutable
// once captured.
type RawImage struct {
	Width    int
	Height   int
	XPadding int
	Format   PixelFormat
	// BigEndian applies to multi-byte pixel formats.
	BigEndian bool
	// Timestamp is the capture time in nanoseconds on the camera clock.
	Timestamp uint64
	Data      []byte
}

// Stride is the number of bytes from the start of one row to the next.
func (img *RawImage) Stride() int {
	if img.Format == YCbCr411_8 {
		return img.Width/4*6 + img.XPadding
	}
	return (img.Width*img.Format.BitsPerPixel()+7)/8 + img.XPadding
}

// CheckValid makes sure the buffer is large enough for the declared geometry.
func (img *RawImage) CheckValid() error {
	if img == nil {
		return errors.New("no image")
	}
	if img.Width <= 0 || img.Height <= 0 {
		return errors.Errorf("invalid image size (%d, %d)", img.Width, img.Height)
	}
	if img.XPadding < 0 {
		return errors.Errorf("invalid row padding %d", img.XPadding)
	}
	if img.Format == YCbCr411_8 && img.Width%4 != 0 {
		return errors.Errorf("%v width must be a multiple of 4, got %d", img.Format, img.Width)
	}
	if img.Format.BitsPerPixel() == 0 {
		return errors.Errorf("unsupported pixel format %v", img.Format)
	}
	if need := img.Stride()*(img.Height-1) + img.Stride() - img.XPadding; len(img.Data) < need {
		return errors.Errorf("image buffer too short: have %d bytes, need %d", len(img.Data), need)
	}
	return nil
}
