package transform

import (
	"github.com/pkg/errors"

	"go.viam.com/stereomesh/rimage"
)

// StereoPair is an intensity image and a disparity image captured close enough in time to be
// treated as one observation, together with the calibration they were taken under.
type StereoPair struct {
	Intensity *rimage.RawImage
	Disparity *rimage.RawImage
	Params    StereoParameters
}

// CheckValid verifies both images and the calibration.
func (sp *StereoPair) CheckValid() error {
	if sp == nil {
		return errors.New("no stereo pair")
	}
	if err := sp.Intensity.CheckValid(); err != nil {
		return errors.Wrap(err, "intensity")
	}
	if err := sp.Disparity.CheckValid(); err != nil {
		return errors.Wrap(err, "disparity")
	}
	return sp.Params.CheckValid()
}
