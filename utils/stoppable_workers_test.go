package utils

import (
	"context"
	"testing"

	"go.uber.org/atomic"
	"go.viam.com/test"
)

func TestStoppableWorkers(t *testing.T) {
	var ran atomic.Int64
	sw := NewStoppableWorkers(func(ctx context.Context) {
		ran.Inc()
		<-ctx.Done()
	})
	sw.AddWorkers(func(ctx context.Context) {
		ran.Inc()
		<-ctx.Done()
	})
	sw.Stop()
	test.That(t, ran.Load(), test.ShouldEqual, 2)
	test.That(t, sw.Context().Err(), test.ShouldNotBeNil)
	<-sw.Done()

	// no-op after stop
	sw.AddWorkers(func(ctx context.Context) { ran.Inc() })
	sw.Stop()
	test.That(t, ran.Load(), test.ShouldEqual, 2)
}

func TestStoppableWorkersParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	exited := make(chan struct{})
	sw := NewStoppableWorkersWithContext(parent, func(ctx context.Context) {
		<-ctx.Done()
		close(exited)
	})
	cancel()
	<-exited
	sw.Stop()
}

func TestStoppableWorkersPanic(t *testing.T) {
	sw := NewStoppableWorkers(func(ctx context.Context) {
		panic("boom")
	})
	sw.Stop()
	<-sw.Done()
}
