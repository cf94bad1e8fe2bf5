package utils

import (
	"testing"

	"go.viam.com/test"
)

func TestRollingWindow(t *testing.T) {
	rw := NewRollingWindow(3)
	test.That(t, rw.Values(), test.ShouldBeEmpty)

	rw.Add(1)
	rw.Add(2)
	test.That(t, rw.Values(), test.ShouldResemble, []float64{1, 2})
	rw.Add(3)
	test.That(t, rw.Values(), test.ShouldResemble, []float64{1, 2, 3})
	rw.Add(4)
	rw.Add(5)
	test.That(t, rw.Values(), test.ShouldResemble, []float64{3, 4, 5})

	empty := NewRollingWindow(0)
	empty.Add(1)
	test.That(t, empty.Values(), test.ShouldBeEmpty)
}
