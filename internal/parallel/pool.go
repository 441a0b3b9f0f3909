// Package parallel runs independent build tasks on a bounded set of
// goroutines.
package parallel

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a fixed set of goroutines executing submitted work.
//
// Every worker owns a queue and steals from the other queues when its own
// is empty, so a few slow builds (a large surface next to many small
// sphere sets) do not leave workers idle.
//
// WorkerPool is safe for concurrent use. Work must not submit to the pool
// it runs on and then wait for that work.
type WorkerPool struct {
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
	next    atomic.Uint32

	// closing is held for reading while submitting so that Close cannot
	// stop the workers between the running check and the send.
	closing sync.RWMutex
}

// NewWorkerPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	depth := max(workers*4, 8)

	p := &WorkerPool{
		queues: make([]chan func(), workers),
		done:   make(chan struct{}),
	}
	for i := range p.queues {
		p.queues[i] = make(chan func(), depth)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.loop(i)
	}
	return p
}

func (p *WorkerPool) loop(id int) {
	defer p.wg.Done()
	own := p.queues[id]
	for {
		select {
		case fn := <-own:
			fn()
			continue
		case <-p.done:
			p.drain(own)
			return
		default:
		}
		if fn := p.steal(id); fn != nil {
			fn()
			continue
		}
		select {
		case fn := <-own:
			fn()
		case <-p.done:
			p.drain(own)
			return
		}
	}
}

func (p *WorkerPool) drain(q chan func()) {
	for {
		select {
		case fn := <-q:
			fn()
		default:
			return
		}
	}
}

func (p *WorkerPool) steal(id int) func() {
	for i := 1; i < len(p.queues); i++ {
		select {
		case fn := <-p.queues[(id+i)%len(p.queues)]:
			return fn
		default:
		}
	}
	return nil
}

// submit queues fn round-robin. It returns false when the pool is closed.
func (p *WorkerPool) submit(fn func()) bool {
	p.closing.RLock()
	defer p.closing.RUnlock()
	if !p.running.Load() {
		return false
	}
	p.queues[int(p.next.Add(1)%uint32(len(p.queues)))] <- fn
	return true
}

// ExecuteAll runs every item and waits for all of them. Items that cannot
// be queued because the pool is closed run on the calling goroutine.
func (p *WorkerPool) ExecuteAll(work []func()) {
	var wg sync.WaitGroup
	wg.Add(len(work))
	for _, fn := range work {
		item := func() {
			defer wg.Done()
			fn()
		}
		if !p.submit(item) {
			item()
		}
	}
	wg.Wait()
}

// Run executes tasks and waits for all of them. The context handed to the
// tasks is cancelled as soon as one task fails or ctx is done. Run returns
// the first task error, or ctx's error if ctx ended before the tasks
// finished cleanly.
func (p *WorkerPool) Run(ctx context.Context, tasks ...func(context.Context) error) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var (
		once  sync.Once
		first error
	)
	work := make([]func(), len(tasks))
	for i, task := range tasks {
		work[i] = func() {
			if ctx.Err() != nil {
				return
			}
			if err := task(ctx); err != nil {
				once.Do(func() {
					first = err
					cancel(err)
				})
			}
		}
	}
	p.ExecuteAll(work)

	if first != nil {
		return first
	}
	return context.Cause(ctx)
}

// Close stops the pool after running queued work. It is safe to call more
// than once.
func (p *WorkerPool) Close() {
	p.closing.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.closing.Unlock()
		return
	}
	close(p.done)
	p.closing.Unlock()
	p.wg.Wait()
}

// Workers returns the number of workers.
func (p *WorkerPool) Workers() int { return len(p.queues) }

// IsRunning reports whether the pool accepts work.
func (p *WorkerPool) IsRunning() bool { return p.running.Load() }
