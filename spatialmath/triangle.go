package spatialmath

import (
	"github.com/golang/geo/r3"
)

// Triangle is three points and the unit normal given by their winding.
type Triangle struct {
	p0 r3.Vector
	p1 r3.Vector
	p2 r3.Vector

	normal r3.Vector
}

// NewTriangle creates a triangle. The normal follows the right-hand rule on p0, p1, p2.
func NewTriangle(p0, p1, p2 r3.Vector) *Triangle {
	return &Triangle{
		p0:     p0,
		p1:     p1,
		p2:     p2,
		normal: PlaneNormal(p0, p1, p2),
	}
}

func (t *Triangle) Normal() r3.Vector {
	return t.normal
}

// AreaNormal is the cross product of two edges: perpendicular to the triangle with a length of
// twice its area.
func (t *Triangle) AreaNormal() r3.Vector {
	return areaNormal(t.p0, t.p1, t.p2)
}

func (t *Triangle) Area() float64 {
	return 0.5 * t.AreaNormal().Norm()
}

func areaNormal(p0, p1, p2 r3.Vector) r3.Vector {
	return p1.Sub(p0).Cross(p2.Sub(p0))
}

// PlaneNormal returns the unit normal of the plane through three points, or the zero vector if
// they are collinear.
func PlaneNormal(p0, p1, p2 r3.Vector) r3.Vector {
	n := areaNormal(p0, p1, p2)
	if n.Norm2() < floatEpsilon*floatEpsilon {
		return r3.Vector{}
	}
	return n.Normalize()
}
