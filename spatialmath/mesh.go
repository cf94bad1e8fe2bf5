package spatialmath

import (
	"image/color"

	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Vertex is one back-projected pixel of a mesh.
type Vertex struct {
	Position         r3.Vector
	Color            color.NRGBA
	FootprintSize    float64
	DepthUncertainty float64
}

// Mesh is a colored triangle mesh built from one stereo observation.
type Mesh struct {
	ID uuid.UUID

	// Camera timestamps of the two source images, in nanoseconds.
	IntensityTimestamp uint64
	DisparityTimestamp uint64

	Vertices  []Vertex
	Triangles [][3]int
	// Normals holds one unit normal per vertex once RecalculateNormals has run.
	Normals []r3.Vector
	// Home is the viewpoint the mesh was captured from.
	Home Pose
}

// NewMesh creates a mesh with a fresh ID, viewed from the identity pose.
func NewMesh(vertices []Vertex, triangles [][3]int) *Mesh {
	return &Mesh{
		ID:        uuid.New(),
		Vertices:  vertices,
		Triangles: triangles,
		Home:      NewZeroPose(),
	}
}

// Triangle returns the geometry of triangle i.
func (m *Mesh) Triangle(i int) *Triangle {
	tri := m.Triangles[i]
	return NewTriangle(m.Vertices[tri[0]].Position, m.Vertices[tri[1]].Position, m.Vertices[tri[2]].Position)
}

// SurfaceArea is the summed area of all triangles.
func (m *Mesh) SurfaceArea() float64 {
	var area float64
	for i := range m.Triangles {
		area += m.Triangle(i).Area()
	}
	return area
}

// CheckValid makes sure every triangle refers to existing vertices.
func (m *Mesh) CheckValid() error {
	for i, tri := range m.Triangles {
		for _, idx := range tri {
			if idx < 0 || idx >= len(m.Vertices) {
				return errors.Errorf("triangle %d refers to vertex %d of %d", i, idx, len(m.Vertices))
			}
		}
	}
	return nil
}

// RecalculateNormals sets each vertex normal to the normalized, area weighted sum of the normals
// of the triangles using it. Unused vertices get a zero normal.
func (m *Mesh) RecalculateNormals() {
	normals := make([]r3.Vector, len(m.Vertices))
	for _, tri := range m.Triangles {
		n := areaNormal(m.Vertices[tri[0]].Position, m.Vertices[tri[1]].Position, m.Vertices[tri[2]].Position)
		for _, idx := range tri {
			normals[idx] = normals[idx].Add(n)
		}
	}
	for i, n := range normals {
		if n.Norm2() > 0 {
			normals[i] = n.Normalize()
		}
	}
	m.Normals = normals
}
