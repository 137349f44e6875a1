package component

import (
	"go.uber.org/zap"

	"github.com/projectceladon/v4l2-codec2/internal/codec"
	"github.com/projectceladon/v4l2-codec2/internal/metrics"
)

// Drain implements drain(mode): it asks VDA to flush, and with
// DrainWithEOS the tail pending work is flagged EOS when that flush
// completes, so exactly one reported work carries the EOS flag.
func (c *Component) Drain(mode DrainMode) error {
	c.mu.Lock()
	if c.parentState != Running {
		c.mu.Unlock()
		return codec.NewError(codec.IllegalState, "component.Drain", nil)
	}
	c.internal = stateDraining
	c.mu.Unlock()

	if mode == DrainWithEOS {
		c.worker.PostTask(func() { c.eosPending = true })
	}
	c.worker.PostTask(func() { c.vda.Flush() })
	return nil
}

// Flush resets VDA's input/output pipelines and returns every currently
// pending work to the caller, since none of them will complete normally.
func (c *Component) Flush() ([]*codec.Work, error) {
	c.mu.Lock()
	if c.parentState != Running {
		c.mu.Unlock()
		return nil, codec.NewError(codec.IllegalState, "component.Flush", nil)
	}
	c.internal = stateFlushing
	done := make(chan struct{})
	c.flushDone = done
	c.mu.Unlock()

	var flushed []*codec.Work
	c.worker.PostTaskAndWait(func() {
		flushed = c.pending
		c.pending = nil
		c.vda.Reset()
	})
	waitGroup(
		func() error { <-done; return nil },
		func() error { c.worker.PostTaskAndWait(func() {}); return nil },
	)

	c.mu.Lock()
	c.internal = stateStarted
	c.mu.Unlock()
	return flushed, nil
}

// Stop resets and destroys VDA, then transitions the parent state to
// Loaded. Reset is specified as identical to Stop.
func (c *Component) Stop() error {
	c.mu.Lock()
	if c.parentState != Running && c.parentState != ComponentError {
		c.mu.Unlock()
		return codec.NewError(codec.IllegalState, "component.Stop", nil)
	}
	c.internal = stateStopping
	done := make(chan struct{})
	c.stopDone = done
	c.mu.Unlock()

	c.worker.PostTask(func() { c.vda.Reset() })
	waitGroup(
		func() error { <-done; return nil },
		func() error { c.worker.PostTaskAndWait(func() {}); return nil },
	)

	c.vda.Destroy()

	c.mu.Lock()
	c.internal = stateUninitialized
	c.parentState = Loaded
	c.pending = nil
	c.blocks = nil
	c.mu.Unlock()
	return nil
}

// Reset behaves identically to Stop: nothing distinguishes the two at
// this component boundary, so reset collapses onto stop rather than
// resuming Running.
func (c *Component) Reset() error {
	return c.Stop()
}

// NotifyFlushDone implements vda.Client, completing whichever of
// Drain/Flush is currently outstanding.
func (c *Component) NotifyFlushDone() {
	c.worker.PostTask(func() {
		c.mu.Lock()
		switch c.internal {
		case stateDraining:
			c.internal = stateStarted
			if c.eosPending && len(c.pending) > 0 {
				tail := c.pending[len(c.pending)-1]
				tail.Input.Flags |= codec.WorkFlagEOS
				for i := range tail.Worklets {
					tail.Worklets[i].EOS = true
				}
			}
			c.eosPending = false
		case stateFlushing:
			metrics.RecordFlush()
			if c.flushDone != nil {
				close(c.flushDone)
				c.flushDone = nil
			}
		}
		c.mu.Unlock()
		c.reportFinishedHeadWorks()
	})
}

// NotifyResetDone implements vda.Client, completing an outstanding Stop or
// Flush (Flush resets VDA).
func (c *Component) NotifyResetDone() {
	metrics.RecordReset()
	c.mu.Lock()
	if c.internal == stateFlushing && c.flushDone != nil {
		metrics.RecordFlush()
		close(c.flushDone)
		c.flushDone = nil
	}
	if c.stopDone != nil {
		close(c.stopDone)
		c.stopDone = nil
	}
	c.mu.Unlock()
}

// NotifyError implements vda.Client: the parent-visible state machine
// absorbs into Error and the listener is told once.
func (c *Component) NotifyError(kind codec.ErrorKind) {
	c.mu.Lock()
	already := c.parentState == ComponentError
	c.parentState = ComponentError
	c.mu.Unlock()
	if already {
		return
	}
	c.logger.Error("component entering error state", zap.String("kind", kind.String()))
	if c.listener != nil {
		c.listener.OnError(kind)
	}
}
