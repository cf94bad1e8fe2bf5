package modeler

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/stereomesh/rimage"
	"go.viam.com/stereomesh/rimage/transform"
	rtestutils "go.viam.com/stereomesh/testutils"
)

var testParams = transform.StereoParameters{
	FocalLengthFactor: 0.8,
	Baseline:          0.12,
	DisparityScale:    0.0625,
}

func testPair(width int, raw ...uint16) *transform.StereoPair {
	disparity := rtestutils.NewDisparityImage(2000, width, raw...)
	return &transform.StereoPair{
		Intensity: rtestutils.NewMono8Image(1000, 2*width, 2*disparity.Height, 80),
		Disparity: disparity,
		Params:    testParams,
	}
}

func TestBuildMeshSinglePixel(t *testing.T) {
	// disparity 10 at the center of a 3x3 map
	mesh, err := BuildMesh(testPair(3, 0, 0, 0, 0, 160, 0, 0, 0, 0), DefaultDepthStep)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mesh.CheckValid(), test.ShouldBeNil)
	test.That(t, len(mesh.Vertices), test.ShouldEqual, 1)
	test.That(t, mesh.Triangles, test.ShouldBeEmpty)
	test.That(t, mesh.IntensityTimestamp, test.ShouldEqual, 1000)
	test.That(t, mesh.DisparityTimestamp, test.ShouldEqual, 2000)

	v := mesh.Vertices[0]
	const d, w = 10., 3.
	z := testParams.FocalLengthFactor * w * testParams.Baseline / d
	test.That(t, v.Position.X, test.ShouldAlmostEqual, 0)
	test.That(t, v.Position.Y, test.ShouldAlmostEqual, 0)
	test.That(t, v.Position.Z, test.ShouldAlmostEqual, z)
	test.That(t, v.FootprintSize, test.ShouldAlmostEqual, math.Sqrt2*testParams.Baseline/d)
	test.That(t, v.DepthUncertainty, test.ShouldAlmostEqual, z-testParams.FocalLengthFactor*w*testParams.Baseline/(d+0.5))
	test.That(t, float64(v.Color.R), test.ShouldAlmostEqual, 80, 1)
	test.That(t, v.Color.R, test.ShouldEqual, v.Color.G)
	test.That(t, v.Color.A, test.ShouldEqual, 255)

	test.That(t, mesh.Normals, test.ShouldResemble, []r3.Vector{{}})
	test.That(t, mesh.Home.Point(), test.ShouldResemble, r3.Vector{})
}

func TestBuildMeshPlane(t *testing.T) {
	mesh, err := BuildMesh(testPair(2, 160, 160, 160, 160), DefaultDepthStep)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(mesh.Vertices), test.ShouldEqual, 4)
	test.That(t, len(mesh.Triangles), test.ShouldEqual, 2)

	// both triangles face the camera
	for i := range mesh.Triangles {
		n := mesh.Triangle(i).Normal()
		test.That(t, n.Z, test.ShouldAlmostEqual, -1)
	}
	for _, n := range mesh.Normals {
		test.That(t, n.X, test.ShouldAlmostEqual, 0)
		test.That(t, n.Y, test.ShouldAlmostEqual, 0)
		test.That(t, n.Z, test.ShouldAlmostEqual, -1)
	}
	for _, v := range mesh.Vertices {
		test.That(t, v.Position.Z, test.ShouldAlmostEqual, 0.8*2*0.12/10)
	}
	test.That(t, mesh.Vertices[1].Position.X, test.ShouldBeGreaterThan, mesh.Vertices[0].Position.X)
	test.That(t, mesh.Vertices[2].Position.Y, test.ShouldBeGreaterThan, mesh.Vertices[0].Position.Y)
}

func TestBuildMeshDepthStep(t *testing.T) {
	// disparities 10, 10, 10 and 12.5
	pair := testPair(2, 160, 160, 160, 200)
	mesh, err := BuildMesh(pair, DefaultDepthStep)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(mesh.Vertices), test.ShouldEqual, 4)
	test.That(t, mesh.Triangles, test.ShouldBeEmpty)

	mesh, err = BuildMesh(pair, 3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(mesh.Triangles), test.ShouldEqual, 2)
}

func TestBuildMeshOffsetAndInvalidCode(t *testing.T) {
	pair := testPair(2, 7, 160, 160, 160)
	pair.Params.InvalidDisparity = 7
	pair.Params.DisparityOffset = 1
	mesh, err := BuildMesh(pair, DefaultDepthStep)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(mesh.Vertices), test.ShouldEqual, 3)
	test.That(t, mesh.Triangles, test.ShouldResemble, [][3]int{{1, 2, 0}})
	test.That(t, mesh.Vertices[0].Position.Z, test.ShouldAlmostEqual, 0.8*2*0.12/11)
}

func TestBuildMeshErrors(t *testing.T) {
	_, err := BuildMesh(nil, DefaultDepthStep)
	test.That(t, err, test.ShouldNotBeNil)

	pair := testPair(2, 160, 160, 160, 160)
	pair.Params.Baseline = 0
	_, err = BuildMesh(pair, DefaultDepthStep)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "baseline")

	pair = testPair(2, 160, 160, 160, 160)
	pair.Disparity = rtestutils.NewMono8Image(0, 2, 2, 1)
	_, err = BuildMesh(pair, DefaultDepthStep)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "decoding disparity")

	pair = testPair(2, 160, 160, 160, 160)
	pair.Intensity.Format = rimage.Mono16
	pair.Intensity.Data = make([]byte, 2*len(pair.Intensity.Data))
	_, err = BuildMesh(pair, DefaultDepthStep)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "decoding intensity")
}
