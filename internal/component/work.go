package component

import (
	"github.com/projectceladon/v4l2-codec2/internal/codec"
	"github.com/projectceladon/v4l2-codec2/internal/metrics"
)

// Listener receives Work completions and fatal errors from a Component.
// The Adaptor implements this to forward them across its boundary.
type Listener interface {
	OnWorkDone(w *codec.Work)
	OnError(kind codec.ErrorKind)
}

// SetListener installs the completion/error sink. Must be called before
// Start.
func (c *Component) SetListener(l Listener) {
	c.worker.PostTaskAndWait(func() { c.listener = l })
}

// Queue enqueues works on the worker thread and dispatches each work's
// input buffer to VDA, maintaining FIFO order per work.
func (c *Component) Queue(works []*codec.Work) error {
	c.mu.Lock()
	running := c.parentState == Running
	c.mu.Unlock()
	if !running {
		return codec.NewError(codec.IllegalState, "component.Queue", nil)
	}

	c.worker.PostTask(func() {
		for _, w := range works {
			c.pending = append(c.pending, w)
			c.dispatchInput(w)
		}
		metrics.SetDecodeQueueDepth(len(c.pending))
	})
	return nil
}

// dispatchInput sends a work's single linear input buffer to VDA; the
// bitstream id is the low 31 bits of the work's frame index.
func (c *Component) dispatchInput(w *codec.Work) {
	if w.Input.Flags&codec.WorkFlagEmptyOutput != 0 && len(w.Input.Buffers) == 0 {
		w.WorkletsProcessed = 1
		c.reportFinishedHeadWorks()
		return
	}
	bitstreamID := int32(w.Input.FrameIndex & 0x7fffffff)
	var buf codec.Buffer
	if len(w.Input.Buffers) > 0 {
		buf = w.Input.Buffers[0]
	}
	c.vda.Decode(&codec.BitstreamBuffer{
		ID:     bitstreamID,
		DmaBuf: buf.DmaBuf,
		Offset: buf.Offset,
		Size:   buf.Size,
	})
}

// reportFinishedHeadWorks reports and dequeues finished works in strict
// input order: a finished work buried behind an unfinished one waits.
func (c *Component) reportFinishedHeadWorks() {
	for len(c.pending) > 0 && c.pending[0].Finished() {
		w := c.pending[0]
		c.pending = c.pending[1:]
		if c.listener != nil {
			c.listener.OnWorkDone(w)
		}
	}
	metrics.SetDecodeQueueDepth(len(c.pending))
}
