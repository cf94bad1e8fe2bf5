package utils

import (
	"context"
	"sync"

	goutils "go.viam.com/utils"
)

// StoppableWorkers is a group of goroutines sharing one cancelable context.
type StoppableWorkers interface {
	AddWorkers(...func(context.Context))
	Stop()
	Context() context.Context
	// Done is closed once Stop has run and every worker has returned.
	Done() <-chan struct{}
}

// stoppableWorkersImpl is only handed out through the interface so the WaitGroup is never copied.
type stoppableWorkersImpl struct {
	mu        sync.Mutex
	ctx       context.Context
	cancel    func()
	active    sync.WaitGroup
	stopped   bool
	doneCh    chan struct{}
	closeOnce sync.Once
}

// NewStoppableWorkers runs the functions in separate goroutines. They can be stopped later.
func NewStoppableWorkers(funcs ...func(context.Context)) StoppableWorkers {
	return NewStoppableWorkersWithContext(context.Background(), funcs...)
}

// NewStoppableWorkersWithContext is like NewStoppableWorkers but the workers also stop when
// parent is canceled.
func NewStoppableWorkersWithContext(parent context.Context, funcs ...func(context.Context)) StoppableWorkers {
	ctx, cancel := context.WithCancel(parent)
	sw := &stoppableWorkersImpl{ctx: ctx, cancel: cancel, doneCh: make(chan struct{})}
	sw.AddWorkers(funcs...)
	return sw
}

// AddWorkers starts one goroutine per function. Nothing is started after Stop. A panicking worker
// is logged and counted as returned.
func (sw *stoppableWorkersImpl) AddWorkers(funcs ...func(context.Context)) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.stopped {
		return
	}

	sw.active.Add(len(funcs))
	for _, f := range funcs {
		f := f
		goutils.PanicCapturingGo(func() {
			defer sw.active.Done()
			f(sw.ctx)
		})
	}
}

// Stop cancels the shared context and waits for every worker to return.
func (sw *stoppableWorkersImpl) Stop() {
	sw.mu.Lock()
	sw.stopped = true
	sw.cancel()
	sw.mu.Unlock()

	sw.active.Wait()
	sw.closeOnce.Do(func() { close(sw.doneCh) })
}

func (sw *stoppableWorkersImpl) Context() context.Context {
	return sw.ctx
}

func (sw *stoppableWorkersImpl) Done() <-chan struct{} {
	return sw.doneCh
}
