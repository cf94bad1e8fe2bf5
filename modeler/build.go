package modeler

import (
	"github.com/pkg/errors"

	"go.viam.com/stereomesh/rimage"
	"go.viam.com/stereomesh/rimage/transform"
	"go.viam.com/stereomesh/spatialmath"
	"go.viam.com/stereomesh/utils"
)

// BuildMesh reconstructs a colored mesh from a matched pair. The intensity image is scaled to the
// disparity resolution and colors the vertex of the pixel under it.
func BuildMesh(pair *transform.StereoPair, depthStep float64) (*spatialmath.Mesh, error) {
	if err := pair.CheckValid(); err != nil {
		return nil, err
	}
	params := pair.Params
	dm, err := rimage.DecodeDisparity(pair.Disparity, params.DisparityScale, params.DisparityOffset, params.InvalidDisparity)
	if err != nil {
		return nil, errors.Wrap(err, "decoding disparity")
	}
	colors, err := rimage.DecodeColor(pair.Intensity)
	if err != nil {
		return nil, errors.Wrap(err, "decoding intensity")
	}
	colors = rimage.FitToDisparity(colors, dm.Width(), dm.Height())

	intr := params.Intrinsics(dm.Width(), dm.Height())
	pixels, triangles := Triangulate(dm, depthStep)
	vertices := make([]spatialmath.Vertex, len(pixels))
	err = utils.GroupWorkParallel(len(pixels), func(_, from, to int) {
		for i := from; i < to; i++ {
			px := pixels[i]
			bp := params.PixelToPoint(intr, px.X, px.Y, dm.Get(px.X, px.Y))
			vertices[i] = spatialmath.Vertex{
				Position:         bp.Point,
				Color:            colors.NRGBAAt(px.X, px.Y),
				FootprintSize:    bp.FootprintSize,
				DepthUncertainty: bp.DepthUncertainty,
			}
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "back-projecting")
	}

	mesh := spatialmath.NewMesh(vertices, triangles)
	mesh.IntensityTimestamp = pair.Intensity.Timestamp
	mesh.DisparityTimestamp = pair.Disparity.Timestamp
	if err := mesh.CheckValid(); err != nil {
		return nil, err
	}
	mesh.RecalculateNormals()
	return mesh, nil
}
