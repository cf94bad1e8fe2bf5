package testutils

import (
	"encoding/binary"

	"go.viam.com/stereomesh/rimage"
)

// NewDisparityImage encodes a little-endian Coord3D_C16 image from raw values given row by row.
func NewDisparityImage(timestamp uint64, width int, raw ...uint16) *rimage.RawImage {
	img := &rimage.RawImage{
		Width:     width,
		Height:    len(raw) / width,
		Format:    rimage.Coord3D_C16,
		Timestamp: timestamp,
		Data:      make([]byte, 2*len(raw)),
	}
	for i, v := range raw {
		binary.LittleEndian.PutUint16(img.Data[2*i:], v)
	}
	return img
}

// NewMono8Image returns a uniformly gray intensity image.
func NewMono8Image(timestamp uint64, width, height int, gray uint8) *rimage.RawImage {
	img := &rimage.RawImage{
		Width:     width,
		Height:    height,
		Format:    rimage.Mono8,
		Timestamp: timestamp,
		Data:      make([]byte, width*height),
	}
	for i := range img.Data {
		img.Data[i] = gray
	}
	return img
}
