package utils

import (
	"testing"

	"go.viam.com/test"
)

type (
	someStruct struct{}
	someIfc    interface{ Do() }
)

func TestNewUnexpectedTypeError(t *testing.T) {
	test.That(t, NewUnexpectedTypeError[string](1).Error(), test.ShouldEqual, "expected string but got int")
	test.That(t, NewUnexpectedTypeError[float64]("x").Error(), test.ShouldEqual, "expected float64 but got string")
	test.That(t, NewUnexpectedTypeError[*someStruct](2).Error(), test.ShouldEqual, "expected *utils.someStruct but got int")
	test.That(t, NewUnexpectedTypeError[someIfc](3).Error(), test.ShouldEqual, "expected utils.someIfc but got int")
	test.That(t, NewUnexpectedTypeError[interface{}](nil).Error(), test.ShouldEqual,
		"expected <unknown (empty interface)> but got <nil>")
}

func TestAssertType(t *testing.T) {
	f, err := AssertType[float64](2.5)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, f, test.ShouldEqual, 2.5)

	_, err = AssertType[int64]("DeviceID")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "expected int64 but got string")

	var s fmtStringer = named("cam")
	_, err = AssertType[fmtStringer](s)
	test.That(t, err, test.ShouldBeNil)
}

type fmtStringer interface{ String() string }

type named string

func (n named) String() string { return string(n) }
