package logging

import (
	"fmt"
	"testing"

	"go.viam.com/test"
)

func mockRegistry() *loggerRegistry {
	manager := newLoggerManager()
	loggerManager = manager
	return manager
}

func TestLoggersRegisteredOnCreation(t *testing.T) {
	manager := mockRegistry()

	newLogger := NewLogger("new")
	logger, ok := manager.loggerNamed("new")
	test.That(t, logger, test.ShouldEqual, newLogger)
	test.That(t, ok, test.ShouldBeTrue)

	blankLogger := NewBlankLogger("blank")
	logger, ok = manager.loggerNamed("blank")
	test.That(t, logger, test.ShouldEqual, blankLogger)
	test.That(t, ok, test.ShouldBeTrue)

	sublogger := blankLogger.Sublogger("sublogger-1")
	logger, ok = manager.loggerNamed(fmt.Sprintf("%s.%s", "blank", "sublogger-1"))
	test.That(t, logger, test.ShouldEqual, sublogger)
	test.That(t, ok, test.ShouldBeTrue)

	_, ok = manager.loggerNamed("sublogger-2")
	test.That(t, ok, test.ShouldBeFalse)
}

func TestUpdateLogLevel(t *testing.T) {
	mockRegistry()
	NewBlankLogger("logger-1")

	err := UpdateLoggerLevel("logger-1", ERROR)
	test.That(t, err, test.ShouldBeNil)

	logger1, ok := LoggerNamed("logger-1")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, logger1.GetLevel(), test.ShouldEqual, ERROR)

	err = UpdateLoggerLevel("slogger-1", DEBUG)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestGetRegisteredNames(t *testing.T) {
	mockRegistry()
	NewBlankLogger("b")
	NewBlankLogger("a")
	test.That(t, GetRegisteredLoggerNames(), test.ShouldResemble, []string{"a", "b"})
}

func TestPatternsApplyToLaterLoggers(t *testing.T) {
	mockRegistry()
	early := NewBlankLogger("cam")
	early.SetLevel(INFO)

	err := UpdateLoggerLevelsWithCfg([]LoggerPatternConfig{{Pattern: "cam.*", Level: "warn"}})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, early.GetLevel(), test.ShouldEqual, INFO)

	sub := early.Sublogger("receiver")
	test.That(t, sub.GetLevel(), test.ShouldEqual, WARN)

	test.That(t, UpdateLoggerLevelsWithCfg(nil), test.ShouldBeNil)
	test.That(t, early.Sublogger("modeler").GetLevel(), test.ShouldEqual, INFO)
}
