package transform

import (
	"errors"
	"math"
	"testing"

	"go.viam.com/test"

	"go.viam.com/stereomesh/rimage"
)

func testParams() StereoParameters {
	return StereoParameters{
		FocalLengthFactor: 0.8,
		Baseline:          0.25,
		DisparityScale:    0.0625,
		InvalidDisparity:  0,
	}
}

func TestStereoParametersCheckValid(t *testing.T) {
	p := testParams()
	test.That(t, p.CheckValid(), test.ShouldBeNil)

	var nilParams *StereoParameters
	test.That(t, errors.Is(nilParams.CheckValid(), ErrNoCalibration), test.ShouldBeTrue)

	bad := testParams()
	bad.Baseline = 0
	test.That(t, errors.Is(bad.CheckValid(), ErrNoCalibration), test.ShouldBeTrue)

	bad = testParams()
	bad.FocalLengthFactor = math.NaN()
	test.That(t, bad.CheckValid(), test.ShouldNotBeNil)

	bad = testParams()
	bad.DisparityScale = 0
	test.That(t, bad.CheckValid(), test.ShouldNotBeNil)
}

func TestIntrinsics(t *testing.T) {
	p := testParams()
	intr := p.Intrinsics(640, 480)
	test.That(t, intr.CheckValid(), test.ShouldBeNil)
	test.That(t, intr.Fx, test.ShouldEqual, 512.)
	test.That(t, intr.Fy, test.ShouldEqual, 512.)
	test.That(t, intr.Ppx, test.ShouldEqual, 319.5)
	test.That(t, intr.Ppy, test.ShouldEqual, 239.5)
}

func TestPixelToPoint(t *testing.T) {
	p := testParams()
	// a 4x4 image has its principal point at (1.5, 1.5)
	intr := p.Intrinsics(4, 4)
	fp := 0.8 * 4

	bp := p.PixelToPoint(intr, 1, 1, 2)
	s := 0.25 / 2
	test.That(t, bp.Point.X, test.ShouldAlmostEqual, -0.5*s)
	test.That(t, bp.Point.Y, test.ShouldAlmostEqual, -0.5*s)
	test.That(t, bp.Point.Z, test.ShouldAlmostEqual, fp*s)
	test.That(t, bp.FootprintSize, test.ShouldAlmostEqual, math.Sqrt2*s)
	test.That(t, bp.DepthUncertainty, test.ShouldAlmostEqual, fp*s-fp*0.25/2.5)

	// depth is inversely proportional to disparity
	far := p.PixelToPoint(intr, 1, 1, 1)
	test.That(t, far.Point.Z, test.ShouldAlmostEqual, 2*bp.Point.Z)
	test.That(t, far.DepthUncertainty, test.ShouldBeGreaterThan, bp.DepthUncertainty)
}

func TestPixelToPointClampsSmallDisparity(t *testing.T) {
	p := testParams()
	intr := p.Intrinsics(4, 4)
	zero := p.PixelToPoint(intr, 3, 0, 0)
	tiny := p.PixelToPoint(intr, 3, 0, 0.05)
	test.That(t, zero.Point, test.ShouldResemble, tiny.Point)
	test.That(t, math.IsInf(zero.Point.Z, 0), test.ShouldBeFalse)
}

func TestPointToPixelRoundTrip(t *testing.T) {
	p := testParams()
	intr := p.Intrinsics(64, 48)
	bp := p.PixelToPoint(intr, 10, 40, 7.5)
	x, y := intr.pointToPixel(bp.Point.X, bp.Point.Y, bp.Point.Z)
	test.That(t, x, test.ShouldEqual, 10.)
	test.That(t, y, test.ShouldEqual, 40.)

	x, y = intr.pointToPixel(1, 1, 0)
	test.That(t, x, test.ShouldEqual, -1.)
	test.That(t, y, test.ShouldEqual, -1.)
}

func TestPinholeCheckValid(t *testing.T) {
	var intr *PinholeCameraIntrinsics
	test.That(t, errors.Is(intr.CheckValid(), ErrNoIntrinsics), test.ShouldBeTrue)
	intr = &PinholeCameraIntrinsics{Width: 4, Height: 4, Fx: 0, Fy: 1}
	test.That(t, intr.CheckValid(), test.ShouldNotBeNil)
}

func TestStereoPairCheckValid(t *testing.T) {
	pair := &StereoPair{
		Intensity: &rimage.RawImage{Width: 4, Height: 1, Format: rimage.Mono8, Data: make([]byte, 4)},
		Disparity: &rimage.RawImage{Width: 2, Height: 1, Format: rimage.Coord3D_C16, Data: make([]byte, 4)},
		Params:    testParams(),
	}
	test.That(t, pair.CheckValid(), test.ShouldBeNil)

	pair.Disparity.Data = nil
	err := pair.CheckValid()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "disparity")
}
