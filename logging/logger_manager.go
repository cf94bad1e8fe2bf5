package logging

import (
	"regexp"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

type loggerRegistry struct {
	mu      sync.RWMutex
	loggers map[string]Logger
	// patterns from the last config, also applied to loggers registered later
	patterns []levelPattern
}

type levelPattern struct {
	matcher *regexp.Regexp
	level   Level
}

var loggerManager = newLoggerManager()

func newLoggerManager() *loggerRegistry {
	return &loggerRegistry{
		loggers: make(map[string]Logger),
	}
}

func (lr *loggerRegistry) registerLogger(name string, logger Logger) {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	lr.loggers[name] = logger
	for _, p := range lr.patterns {
		if p.matcher.MatchString(name) {
			logger.SetLevel(p.level)
		}
	}
}

func (lr *loggerRegistry) loggerNamed(name string) (logger Logger, ok bool) {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	logger, ok = lr.loggers[name]
	return
}

func (lr *loggerRegistry) updateLoggerLevel(name string, level Level) error {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	logger, ok := lr.loggers[name]
	if !ok {
		return errors.Errorf("logger named %s not recognized", name)
	}
	logger.SetLevel(level)
	return nil
}

// applyPatterns sets the level of every registered logger matching one of cfgs and keeps cfgs
// for loggers registered afterwards. Later entries win over earlier ones.
func (lr *loggerRegistry) applyPatterns(cfgs []LoggerPatternConfig) error {
	patterns := make([]levelPattern, 0, len(cfgs))
	for _, lpc := range cfgs {
		r, err := regexp.Compile(buildRegexFromPattern(lpc.Pattern))
		if err != nil {
			return err
		}
		level, err := LevelFromString(lpc.Level)
		if err != nil {
			return err
		}
		patterns = append(patterns, levelPattern{matcher: r, level: level})
	}

	lr.mu.Lock()
	defer lr.mu.Unlock()
	lr.patterns = patterns
	for _, p := range patterns {
		for name, logger := range lr.loggers {
			if p.matcher.MatchString(name) {
				logger.SetLevel(p.level)
			}
		}
	}
	return nil
}

func (lr *loggerRegistry) getRegisteredLoggerNames() []string {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	registeredNames := make([]string, 0, len(lr.loggers))
	for name := range lr.loggers {
		registeredNames = append(registeredNames, name)
	}
	sort.Strings(registeredNames)
	return registeredNames
}

func registerLogger(name string, logger Logger) {
	loggerManager.registerLogger(name, logger)
}

// RegisterLogger registers a new logger with a given name.
func RegisterLogger(name string, logger Logger) {
	registerLogger(name, logger)
}

// LoggerNamed returns logger with specified name if exists.
func LoggerNamed(name string) (logger Logger, ok bool) {
	return loggerManager.loggerNamed(name)
}

// UpdateLoggerLevel assigns level to appropriate logger in the registry.
func UpdateLoggerLevel(name string, level Level) error {
	return loggerManager.updateLoggerLevel(name, level)
}

// UpdateLoggerLevelsWithCfg applies every pattern config to the registered loggers and to the
// ones registered from now on. An empty cfgs forgets earlier patterns.
func UpdateLoggerLevelsWithCfg(cfgs []LoggerPatternConfig) error {
	for _, lpc := range cfgs {
		if !validatePattern(lpc.Pattern) {
			return errors.Errorf("invalid logger pattern %q", lpc.Pattern)
		}
	}
	return loggerManager.applyPatterns(cfgs)
}

// GetRegisteredLoggerNames returns the names of all loggers in the registry.
func GetRegisteredLoggerNames() []string {
	return loggerManager.getRegisteredLoggerNames()
}
