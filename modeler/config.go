package modeler

import (
	"math"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

// Defaults used when a Config field is unset.
const (
	DefaultDepthStep   = 1.0
	DefaultStatsWindow = 50
)

// Config tunes the mesh reconstructor.
type Config struct {
	// DepthStep is the largest disparity spread a 2x2 pixel block may have and still be
	// triangulated. Larger spreads are treated as depth discontinuities.
	DepthStep *float64 `json:"depth_step,omitempty"`
	// StatsWindow is how many recent build times the median build time covers.
	StatsWindow int `json:"stats_window,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if conf.DepthStep != nil && (*conf.DepthStep < 0 || math.IsNaN(*conf.DepthStep)) {
		return goutils.NewConfigValidationError(path, errors.Errorf("depth_step must be non-negative, got %v", *conf.DepthStep))
	}
	if conf.StatsWindow < 0 {
		return goutils.NewConfigValidationError(path, errors.Errorf("stats_window must be non-negative, got %d", conf.StatsWindow))
	}
	return nil
}

func (conf *Config) depthStep() float64 {
	if conf.DepthStep == nil {
		return DefaultDepthStep
	}
	return *conf.DepthStep
}

func (conf *Config) statsWindow() int {
	if conf.StatsWindow == 0 {
		return DefaultStatsWindow
	}
	return conf.StatsWindow
}
