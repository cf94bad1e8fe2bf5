package receiver

import (
	"time"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

// Defaults used when a Config field is unset.
const (
	DefaultIntensityCapacity  = 100
	DefaultDisparityCapacity  = 25
	DefaultGrabTimeout        = 500 * time.Millisecond
	DefaultAlternateTolerance = 100 * time.Millisecond
	DefaultKeepAliveParameter = "DeviceID"
)

// Config tunes the stream synchronizer. Durations are strings accepted by time.ParseDuration.
type Config struct {
	IntensityCapacity int `json:"intensity_capacity,omitempty"`
	DisparityCapacity int `json:"disparity_capacity,omitempty"`

	GrabTimeout string `json:"grab_timeout,omitempty"`
	// IdleTimeout ends acquisition when no pair matched for this long. Unset or "0s" waits forever.
	IdleTimeout string `json:"idle_timeout,omitempty"`
	// AlternateTolerance is the match window while the camera runs in alternate exposure mode.
	AlternateTolerance string `json:"alternate_tolerance,omitempty"`

	KeepAliveParameter string `json:"keep_alive_parameter,omitempty"`
	// SkipDevicePreparation leaves pixel format, component and acquisition settings untouched.
	SkipDevicePreparation bool `json:"skip_device_preparation,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if conf.IntensityCapacity < 0 {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("intensity_capacity must be non-negative, got %d", conf.IntensityCapacity))
	}
	if conf.DisparityCapacity < 0 {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("disparity_capacity must be non-negative, got %d", conf.DisparityCapacity))
	}
	for field, s := range map[string]string{
		"grab_timeout":        conf.GrabTimeout,
		"idle_timeout":        conf.IdleTimeout,
		"alternate_tolerance": conf.AlternateTolerance,
	} {
		if s == "" {
			continue
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return goutils.NewConfigValidationError(path, errors.Wrapf(err, "invalid %s", field))
		}
		if d < 0 {
			return goutils.NewConfigValidationError(path, errors.Errorf("%s must be non-negative, got %v", field, d))
		}
	}
	if conf.GrabTimeout != "" && conf.grabTimeout() == 0 {
		return goutils.NewConfigValidationError(path, errors.New("grab_timeout must be positive"))
	}
	return nil
}

func durationOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

func (conf *Config) intensityCapacity() int {
	if conf.IntensityCapacity == 0 {
		return DefaultIntensityCapacity
	}
	return conf.IntensityCapacity
}

func (conf *Config) disparityCapacity() int {
	if conf.DisparityCapacity == 0 {
		return DefaultDisparityCapacity
	}
	return conf.DisparityCapacity
}

func (conf *Config) grabTimeout() time.Duration {
	return durationOr(conf.GrabTimeout, DefaultGrabTimeout)
}

func (conf *Config) idleTimeout() time.Duration {
	return durationOr(conf.IdleTimeout, 0)
}

func (conf *Config) alternateTolerance() time.Duration {
	return durationOr(conf.AlternateTolerance, DefaultAlternateTolerance)
}

func (conf *Config) keepAliveParameter() string {
	if conf.KeepAliveParameter == "" {
		return DefaultKeepAliveParameter
	}
	return conf.KeepAliveParameter
}
