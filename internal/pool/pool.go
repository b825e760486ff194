// Package pool implements a fixed-size worker pool whose shutdown barrier
// is safe for tasks that submit more tasks.
package pool

import (
	"errors"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"
)

// ErrClosed is returned by Submit once shutdown has begun. Submitting after
// shutdown is a lifecycle bug in the caller, not a retryable condition.
var ErrClosed = errors.New("pool: closed")

// Task is a unit of work executed by one worker.
type Task func()

// Pool runs submitted tasks on a fixed set of persistent worker goroutines.
//
// The pool tracks an outstanding-work counter covering both queued and
// currently executing tasks. Shutdown waits on that counter, not on queue
// emptiness: a transiently empty queue says nothing while a running task may
// still enqueue more work.
type Pool struct {
	logger *zap.Logger

	mu          sync.Mutex
	ready       *sync.Cond // queue activity or shutdown
	idle        *sync.Cond // outstanding dropped to zero
	queue       []Task
	outstanding int
	closing     bool

	workers sync.WaitGroup
}

// New starts a pool with the given number of workers.
func New(workers int, logger *zap.Logger) (*Pool, error) {
	if workers < 1 {
		return nil, errors.New("pool: worker count must be >= 1")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pool{logger: logger}
	p.ready = sync.NewCond(&p.mu)
	p.idle = sync.NewCond(&p.mu)
	p.workers.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p, nil
}

// Submit enqueues a task for execution by some worker. It never blocks.
// Tasks may call Submit themselves; the shutdown barrier accounts for work
// they add.
func (p *Pool) Submit(task Task) error {
	if task == nil {
		return errors.New("pool: nil task")
	}
	p.mu.Lock()
	if p.closing {
		p.mu.Unlock()
		return ErrClosed
	}
	p.queue = append(p.queue, task)
	p.outstanding++
	p.mu.Unlock()
	p.ready.Signal()
	return nil
}

// Outstanding reports queued plus currently executing tasks.
func (p *Pool) Outstanding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outstanding
}

// Shutdown blocks until every task submitted so far, including tasks
// submitted by other still-running tasks, has completed, then stops and
// joins all workers. It is idempotent.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	for p.outstanding > 0 {
		p.idle.Wait()
	}
	p.closing = true
	p.mu.Unlock()
	p.ready.Broadcast()
	p.workers.Wait()
}

func (p *Pool) worker() {
	defer p.workers.Done()
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closing {
			p.ready.Wait()
		}
		if len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		task := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		p.run(task)

		p.mu.Lock()
		p.outstanding--
		if p.outstanding == 0 {
			p.idle.Broadcast()
		}
		p.mu.Unlock()
	}
}

// run executes one task, containing panics so a bad task never takes down a
// worker or wedges the outstanding counter.
func (p *Pool) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("task panicked",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()
	task()
}
