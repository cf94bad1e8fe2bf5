package modeler

import (
	"image"

	"go.viam.com/stereomesh/rimage"
)

// Triangulate turns the valid pixels of dm into mesh vertices and connects them. Vertices are
// numbered in raster order and returned as their pixel positions. Every 2x2 block with at least
// three valid corners whose disparities differ by no more than depthStep yields one triangle, or
// two if all four corners are valid. Corners are visited top-left, bottom-left, bottom-right,
// top-right so all triangles share one winding.
func Triangulate(dm *rimage.DisparityMap, depthStep float64) ([]image.Point, [][3]int) {
	w, h := dm.Width(), dm.Height()
	pixels := make([]image.Point, 0, dm.ValidCount())
	var triangles [][3]int

	prev := make([]int, w)
	cur := make([]int, w)
	var corners [4]int
	var disps [4]float32
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cur[x] = -1
			if dm.IsValid(x, y) {
				cur[x] = len(pixels)
				pixels = append(pixels, image.Point{X: x, Y: y})
			}
		}

		for x := 1; y > 0 && x < w; x++ {
			n := 0
			for _, c := range [4]struct {
				idx  int
				x, y int
			}{
				{prev[x-1], x - 1, y - 1},
				{cur[x-1], x - 1, y},
				{cur[x], x, y},
				{prev[x], x, y - 1},
			} {
				if c.idx < 0 {
					continue
				}
				corners[n] = c.idx
				disps[n] = dm.Get(c.x, c.y)
				n++
			}
			if n < 3 || !withinStep(disps[:n], depthStep) {
				continue
			}
			triangles = append(triangles, [3]int{corners[0], corners[1], corners[2]})
			if n == 4 {
				triangles = append(triangles, [3]int{corners[2], corners[3], corners[0]})
			}
		}
		prev, cur = cur, prev
	}
	return pixels, triangles
}

func withinStep(disps []float32, depthStep float64) bool {
	lo, hi := disps[0], disps[0]
	for _, d := range disps[1:] {
		if d < lo {
			lo = d
		}
		if d > hi {
			hi = d
		}
	}
	return float64(hi-lo) <= depthStep
}
