package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// Pose is a rigid transform: a 3x3 rotation followed by a translation.
type Pose struct {
	point    r3.Vector
	rotation *mat.Dense
}

// NewZeroPose is the identity pose.
func NewZeroPose() Pose {
	return Pose{rotation: identity3()}
}

// NewPose creates a pose from a rotation matrix and a translation. The matrix is copied.
func NewPose(point r3.Vector, rotation mat.Matrix) Pose {
	if r, c := rotation.Dims(); r != 3 || c != 3 {
		panic(mat.ErrShape)
	}
	return Pose{point: point, rotation: mat.DenseCopyOf(rotation)}
}

func identity3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
}

// Point is the translation of the pose.
func (p Pose) Point() r3.Vector {
	return p.point
}

// Rotation returns a copy of the rotation matrix.
func (p Pose) Rotation() *mat.Dense {
	if p.rotation == nil {
		return identity3()
	}
	return mat.DenseCopyOf(p.rotation)
}

// Transform applies the pose to v.
func (p Pose) Transform(v r3.Vector) r3.Vector {
	if p.rotation == nil {
		return v.Add(p.point)
	}
	var out mat.VecDense
	out.MulVec(p.rotation, mat.NewVecDense(3, []float64{v.X, v.Y, v.Z}))
	return r3.Vector{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}.Add(p.point)
}
