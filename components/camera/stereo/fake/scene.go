package fake

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Disparities of the synthetic scene, in pixels.
const (
	farDisparity  = 2.0
	nearDisparity = 16.0
	boxDisparity  = 24.0
)

// scene is a ground plane under a strip of sky, with a box sliding back and forth in front of it.
// Coordinates are disparity pixels.
type scene struct {
	width  int
	height int
}

func (s scene) horizon() int {
	return s.height / 4
}

// boxLeft bounces the left edge of the box across the middle of the view.
func (s scene) boxLeft(frame int) int {
	span := s.width / 2
	if span == 0 {
		return 0
	}
	p := frame % (2 * span)
	if p >= span {
		p = 2*span - p
	}
	return s.width/8 + p
}

func (s scene) inBox(x, y, frame int) bool {
	left := s.boxLeft(frame)
	return x >= left && x < left+s.width/4 && y >= s.height/2 && y < s.height*3/4
}

// disparity is false for sky pixels, which have no measurement.
func (s scene) disparity(x, y, frame int) (float64, bool) {
	if y < s.horizon() {
		return 0, false
	}
	if s.inBox(x, y, frame) {
		return boxDisparity, true
	}
	return farDisparity + (nearDisparity-farDisparity)*float64(y-s.horizon())/float64(s.height-s.horizon()), true
}

func (s scene) color(x, y, frame int) (uint8, uint8, uint8) {
	var c colorful.Color
	switch {
	case y < s.horizon():
		c = colorful.Hsv(210, 0.35, 0.95)
	case s.inBox(x, y, frame):
		c = colorful.Hsv(25, 0.8, 0.9)
	default:
		checker := (x/8 + y/8) % 2
		c = colorful.Hsv(100, 0.6, 0.45+0.25*float64(checker))
	}
	return c.RGB255()
}
