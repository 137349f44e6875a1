package vda

import (
	"github.com/projectceladon/v4l2-codec2/internal/codec"
	"github.com/projectceladon/v4l2-codec2/v4l2"
)

// Flush pushes the flush sentinel onto the input queue and marks the
// decoder flushing. Completion is signalled asynchronously via
// Client.NotifyFlushDone once the kernel reports V4L2_BUF_FLAG_LAST.
func (v *VDA) Flush() {
	v.decoderThread.PostTask(func() {
		if v.state == StateError || v.state == StateUninitialized {
			return
		}
		v.decoderFlushing = true
		v.delayID = -1
		v.decoderInputQ = append(v.decoderInputQ, &codec.BitstreamBuffer{ID: codec.FlushBufferID})
		v.scheduleInput()
	})
}

// maybeFinishFlush implements the flush-completion predicate: input queue
// drained of non-delayed buffers, nothing mid-flight, and the
// end-of-flush CAPTURE buffer has arrived. Both queues are bounced
// (STREAMOFF/STREAMON) before NotifyFlushDone since some drivers require
// it to keep decoding afterward.
func (v *VDA) maybeFinishFlush() {
	if !v.decoderFlushing {
		return
	}
	if len(v.decoderInputQ) > 0 || len(v.inputReady) > 0 || v.inputSlotsInFlight() > 0 || v.awaitingLast {
		return
	}

	v.decoderFlushing = false
	v.delayID = -1

	fd := v.dev.Fd()
	if v.inputStreaming {
		v4l2.StreamOffType(fd, v4l2.BufTypeVideoOutputMPlane)
		v4l2.StreamOnType(fd, v4l2.BufTypeVideoOutputMPlane)
	}
	if v.outputStreaming {
		v4l2.StreamOffType(fd, v4l2.BufTypeVideoCaptureMPlane)
		v4l2.StreamOnType(fd, v4l2.BufTypeVideoCaptureMPlane)
	}

	if v.client != nil {
		v.client.NotifyFlushDone()
	}
}

// Reset runs the reset sequence synchronously within one posted task,
// since every ioctl involved is synchronous: drop the pending input queue
// (returning each buffer via NotifyEndOfBitstreamBuffer), drain any
// pending source-change event, bounce both queues off, free all in-flight
// input slots, and return to Initialized.
func (v *VDA) Reset() {
	v.decoderThread.PostTask(func() {
		if v.state == StateUninitialized {
			return
		}
		v.resetting = true
		v.delayID = -1

		for _, b := range v.decoderInputQ {
			if b != nil && !b.IsFlush() && v.client != nil {
				v.client.NotifyEndOfBitstreamBuffer(b.ID)
			}
		}
		v.decoderInputQ = nil

		fd := v.dev.Fd()
		if v.outputStreaming {
			v4l2.StreamOffType(fd, v4l2.BufTypeVideoCaptureMPlane)
			v.outputStreaming = false
		}

		if pending, err := v.dev.Poll(false); err == nil && pending {
			if ev, err := v.dev.DequeueEvent(); err == nil && ev.GetType() == v4l2.EventSourceChange {
				v.startResolutionChange()
			}
		}

		if v.inputStreaming {
			v4l2.StreamOffType(fd, v4l2.BufTypeVideoOutputMPlane)
			v.inputStreaming = false
		}

		if v.decoderFlushing {
			v.decoderFlushing = false
			v.awaitingLast = false
		}

		for i := range v.inputRecords {
			if v.inputRecords[i].AtDevice || v.inputRecords[i].Buffer != nil {
				v.inputRecords[i] = codec.InputRecord{}
				v.freeInputSlots = append(v.freeInputSlots, i)
			}
		}
		v.inputReady = nil
		v.resetting = false
		v.state = StateInitialized

		if v.client != nil {
			v.client.NotifyResetDone()
		}
	})
}
