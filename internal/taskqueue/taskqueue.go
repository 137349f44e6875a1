// Package taskqueue implements the single-threaded, posted-task runner the
// system's concurrency model is built on: each logical "thread"
// (decoder, poll, worker) is really one goroutine draining a channel of
// closures in order, so no shared-mutable state crosses a thread boundary
// except through PostTask.
package taskqueue

import "sync"

// Runner executes posted tasks one at a time, in post order, on a single
// goroutine.
type Runner struct {
	tasks chan func()
	done  chan struct{}
	wg    sync.WaitGroup
}

// New starts a Runner with the given pending-task buffer depth.
func New(buffer int) *Runner {
	r := &Runner{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
	r.wg.Add(1)
	go r.loop()
	return r
}

func (r *Runner) loop() {
	defer r.wg.Done()
	for {
		select {
		case task := <-r.tasks:
			task()
		case <-r.done:
			// drain whatever was already posted before shutting down.
			for {
				select {
				case task := <-r.tasks:
					task()
				default:
					return
				}
			}
		}
	}
}

// PostTask enqueues task for execution on the runner's goroutine. It is
// a no-op once Stop has been called.
func (r *Runner) PostTask(task func()) {
	select {
	case r.tasks <- task:
	case <-r.done:
	}
}

// PostTaskAndWait enqueues task and blocks until it has run.
func (r *Runner) PostTaskAndWait(task func()) {
	var wg sync.WaitGroup
	wg.Add(1)
	r.PostTask(func() {
		defer wg.Done()
		task()
	})
	wg.Wait()
}

// Stop flushes any already-posted tasks, runs them, then joins the
// goroutine. Tasks posted after Stop is called are dropped.
func (r *Runner) Stop() {
	select {
	case <-r.done:
		return
	default:
		close(r.done)
	}
	r.wg.Wait()
}
