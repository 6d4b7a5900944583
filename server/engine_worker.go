package server

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Quantum-Kayak/Skive/vm"
)

// ErrWorkerStopped is returned by Do once Stop has been called.
var ErrWorkerStopped = errors.New("server: engine worker stopped")

// job is one closure waiting for the engine goroutine.
type job struct {
	fn    func(*vm.Engine) any
	reply chan jobResult
}

type jobResult struct {
	value any
	err   error
}

// EngineWorker owns a scratch engine on its own goroutine. Editor requests
// arrive concurrently; the engine only ever sees one of them at a time.
type EngineWorker struct {
	engine *vm.Engine
	jobs   chan job

	stopOnce sync.Once
	stopped  chan struct{}
}

// NewEngineWorker starts a worker around e.
func NewEngineWorker(e *vm.Engine) *EngineWorker {
	w := &EngineWorker{
		engine:  e,
		jobs:    make(chan job),
		stopped: make(chan struct{}),
	}
	go w.serve()
	return w
}

func (w *EngineWorker) serve() {
	for {
		select {
		case j := <-w.jobs:
			j.reply <- w.call(j.fn)
		case <-w.stopped:
			return
		}
	}
}

// call runs fn, turning a panic into an error so one bad run does not take
// the server down.
func (w *EngineWorker) call(fn func(*vm.Engine) any) (res jobResult) {
	defer func() {
		if r := recover(); r != nil {
			res.err = fmt.Errorf("server: engine panic: %v", r)
		}
	}()
	res.value = fn(w.engine)
	return res
}

// Do runs fn on the engine goroutine and waits for its result. After Stop
// it returns ErrWorkerStopped without running fn.
func (w *EngineWorker) Do(fn func(*vm.Engine) any) (any, error) {
	j := job{fn: fn, reply: make(chan jobResult, 1)}
	select {
	case w.jobs <- j:
	case <-w.stopped:
		return nil, ErrWorkerStopped
	}
	select {
	case res := <-j.reply:
		return res.value, res.err
	case <-w.stopped:
		return nil, ErrWorkerStopped
	}
}

// Stop ends the worker. It is safe to call more than once.
func (w *EngineWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stopped) })
}
