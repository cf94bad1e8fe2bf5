package transform

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// minDisparity bounds the scale factor t/d for near-zero disparities.
const minDisparity = 0.1

// ErrNoCalibration is returned when the stereo calibration is unusable.
var ErrNoCalibration = errors.New("stereo calibration is not available")

// StereoParameters is the calibration snapshot a disparity image is decoded and back-projected
// with. All values come from the device parameter registry.
type StereoParameters struct {
	// FocalLengthFactor is the focal length divided by the image width.
	FocalLengthFactor float64 `json:"focal_length_factor"`
	// Baseline is the camera baseline in meters.
	Baseline float64 `json:"baseline"`

	DisparityScale   float64 `json:"disparity_scale"`
	DisparityOffset  float64 `json:"disparity_offset"`
	InvalidDisparity int64   `json:"invalid_disparity"`
}

// CheckValid makes sure back-projection with these parameters is well defined.
func (p *StereoParameters) CheckValid() error {
	if p == nil {
		return ErrNoCalibration
	}
	if p.FocalLengthFactor <= 0 || math.IsNaN(p.FocalLengthFactor) {
		return errors.Wrap(ErrNoCalibration, fmt.Sprintf("invalid focal length factor %v", p.FocalLengthFactor))
	}
	if p.Baseline <= 0 || math.IsNaN(p.Baseline) {
		return errors.Wrap(ErrNoCalibration, fmt.Sprintf("invalid baseline %v", p.Baseline))
	}
	if p.DisparityScale == 0 || math.IsNaN(p.DisparityScale) {
		return errors.Wrap(ErrNoCalibration, fmt.Sprintf("invalid disparity scale %v", p.DisparityScale))
	}
	return nil
}

// Intrinsics is the pinhole model of a width x height disparity image. The principal point is
// the image center and both focal lengths are FocalLengthFactor*width.
func (p *StereoParameters) Intrinsics(width, height int) *PinholeCameraIntrinsics {
	f := p.FocalLengthFactor * float64(width)
	return &PinholeCameraIntrinsics{
		Width:  width,
		Height: height,
		Fx:     f,
		Fy:     f,
		Ppx:    float64(width)/2 - 0.5,
		Ppy:    float64(height)/2 - 0.5,
	}
}

// BackProjection is the reconstruction of a single disparity pixel.
type BackProjection struct {
	Point r3.Vector
	// FootprintSize is twice the distance covered by half a pixel at Point's depth.
	FootprintSize float64
	// DepthUncertainty is how much closer the point would be with half a pixel more disparity.
	DepthUncertainty float64
}

// PixelToPoint back-projects pixel (x, y) with disparity d using intrinsics from Intrinsics.
func (p *StereoParameters) PixelToPoint(intr *PinholeCameraIntrinsics, x, y int, d float32) BackProjection {
	disp := float64(d)
	s := p.Baseline / math.Max(disp, minDisparity)
	z := intr.Fx * s

	px, py, pz := intr.PixelToPoint(float64(x), float64(y), z)
	hx, hy, _ := intr.PixelToPoint(float64(x)+0.5, float64(y)+0.5, z)

	return BackProjection{
		Point:            r3.Vector{X: px, Y: py, Z: pz},
		FootprintSize:    2 * math.Hypot(hx-px, hy-py),
		DepthUncertainty: pz - intr.Fx*p.Baseline/(disp+0.5),
	}
}
