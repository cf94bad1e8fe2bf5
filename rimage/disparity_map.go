package rimage

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// DisparityMap holds decoded disparities in pixels. Invalid pixels are +Inf.
type DisparityMap struct {
	width  int
	height int

	data []float32
}

// NewEmptyDisparityMap returns a map with every pixel invalid.
func NewEmptyDisparityMap(width, height int) *DisparityMap {
	dm := &DisparityMap{width: width, height: height, data: make([]float32, width*height)}
	inf := float32(math.Inf(1))
	for i := range dm.data {
		dm.data[i] = inf
	}
	return dm
}

func (dm *DisparityMap) Width() int {
	return dm.width
}

func (dm *DisparityMap) Height() int {
	return dm.height
}

// Get returns the disparity at (x, y).
func (dm *DisparityMap) Get(x, y int) float32 {
	return dm.data[y*dm.width+x]
}

// Set sets the disparity at (x, y).
func (dm *DisparityMap) Set(x, y int, d float32) {
	dm.data[y*dm.width+x] = d
}

// IsValid reports whether (x, y) holds a measured disparity.
func (dm *DisparityMap) IsValid(x, y int) bool {
	return IsValidDisparity(dm.Get(x, y))
}

// ValidCount is the number of measured pixels.
func (dm *DisparityMap) ValidCount() int {
	n := 0
	for _, d := range dm.data {
		if IsValidDisparity(d) {
			n++
		}
	}
	return n
}

// IsValidDisparity is false for the +Inf marker.
func IsValidDisparity(d float32) bool {
	return !math.IsInf(float64(d), 1)
}

// DecodeDisparity reads a 16 bit disparity image. Pixels equal to invalid become +Inf, all others
// become v*scale + offset.
func DecodeDisparity(img *RawImage, scale, offset float64, invalid int64) (*DisparityMap, error) {
	if err := img.CheckValid(); err != nil {
		return nil, err
	}
	if img.Format.BitsPerPixel() != 16 {
		return nil, errors.Errorf("disparity must be a 16 bit format, got %v", img.Format)
	}

	var order binary.ByteOrder = binary.LittleEndian
	if img.BigEndian {
		order = binary.BigEndian
	}

	dm := NewEmptyDisparityMap(img.Width, img.Height)
	stride := img.Stride()
	for y := 0; y < img.Height; y++ {
		row := img.Data[y*stride:]
		for x := 0; x < img.Width; x++ {
			v := order.Uint16(row[2*x:])
			if int64(v) == invalid {
				continue
			}
			dm.data[y*img.Width+x] = float32(float64(v)*scale + offset)
		}
	}
	return dm, nil
}
