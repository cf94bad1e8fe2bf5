// Package config defines the configuration file of the stereo mesh pipeline.
package config

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/stereomesh/components/camera/stereo/fake"
	"go.viam.com/stereomesh/logging"
	"go.viam.com/stereomesh/modeler"
	"go.viam.com/stereomesh/receiver"
)

// Config is the whole pipeline configuration.
type Config struct {
	// ConfigFilePath is the file the config was read from, if any.
	ConfigFilePath string `json:"-"`

	Receiver receiver.Config `json:"receiver"`
	Modeler  modeler.Config  `json:"modeler"`
	Fake     fake.Config     `json:"fake"`

	// Debug forces debug logging regardless of LogLevel.
	Debug     bool                          `json:"debug,omitempty"`
	LogLevel  string                        `json:"log_level,omitempty"`
	LogConfig []logging.LoggerPatternConfig `json:"log,omitempty"`
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	err := multierr.Combine(
		c.Receiver.Validate("receiver"),
		c.Modeler.Validate("modeler"),
		c.Fake.Validate("fake"),
	)
	if c.LogLevel != "" {
		if _, lvlErr := logging.LevelFromString(c.LogLevel); lvlErr != nil {
			err = multierr.Append(err, errors.Wrap(lvlErr, "log_level"))
		}
	}
	for i, lpc := range c.LogConfig {
		if _, lvlErr := logging.LevelFromString(lpc.Level); lvlErr != nil {
			err = multierr.Append(err, errors.Wrapf(lvlErr, "log.%d", i))
		}
	}
	return err
}

// Level is the level the root logger should run at.
func (c *Config) Level() logging.Level {
	if c.Debug {
		return logging.DEBUG
	}
	if level, err := logging.LevelFromString(c.LogLevel); err == nil && c.LogLevel != "" {
		return level
	}
	return logging.INFO
}

// ApplyLogging sets the level of logger and then applies the per logger patterns to every
// registered logger, including subloggers created later.
func (c *Config) ApplyLogging(logger logging.Logger) error {
	logger.SetLevel(c.Level())
	return logging.UpdateLoggerLevelsWithCfg(c.LogConfig)
}
