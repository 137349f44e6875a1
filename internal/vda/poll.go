package vda

import (
	"errors"

	sys "golang.org/x/sys/unix"

	"github.com/projectceladon/v4l2-codec2/internal/codec"
	"github.com/projectceladon/v4l2-codec2/v4l2"
)

// devicePollTask is the poll thread's sole task: block in device.Poll,
// hand the result to the decoder thread as serviceDevice, then re-post
// itself.
func (v *VDA) devicePollTask() {
	if v.destroyed {
		return
	}
	eventPending, err := v.dev.Poll(true)
	if err != nil {
		v.decoderThread.PostTask(func() { v.fail(codec.PlatformFailure, "vda.devicePollTask", err) })
		return
	}
	v.decoderThread.PostTaskAndWait(func() { v.serviceDevice(eventPending) })
	v.dev.ClearDevicePollInterrupt()
	if !v.destroyed {
		v.pollThread.PostTask(v.devicePollTask)
	}
}

// serviceDevice drains both queues' completed buffers and handles a
// pending source-change event. Runs exclusively on the decoder thread.
func (v *VDA) serviceDevice(eventPending bool) {
	if v.state == StateError || v.state == StateUninitialized {
		return
	}

	if eventPending {
		if ev, err := v.dev.DequeueEvent(); err == nil && ev.GetType() == v4l2.EventSourceChange {
			v.startResolutionChange()
			return
		}
	}

	v.drainInputCompletions()
	v.drainOutputCompletions()

	if v.codedSize.Empty() && (v.state == StateInitialized || v.state == StateDecoding || v.state == StateChangingResolution) {
		v.discoverFormat()
	}

	v.scheduleInput()
	v.maybeFinishFlush()
}

// drainInputCompletions dequeues every ready OUTPUT-queue buffer: the
// compressed input has been consumed, so its slot is freed and the client
// is told via NotifyEndOfBitstreamBuffer.
func (v *VDA) drainInputCompletions() {
	for {
		buf, err := v4l2.DequeueMPlaneBuffer(v.dev.Fd(), v4l2.BufTypeVideoOutputMPlane, v4l2.StreamTypeDMABuf, 1)
		if err != nil {
			if errors.Is(err, sys.EAGAIN) {
				return
			}
			v.fail(codec.PlatformFailure, "vda.drainInputCompletions", err)
			return
		}
		rec := &v.inputRecords[buf.Index]
		var id int32
		if rec.Buffer != nil {
			id = rec.Buffer.ID
		}
		rec.AtDevice = false
		rec.Buffer = nil
		v.freeInputSlots = append(v.freeInputSlots, int(buf.Index))
		if v.client != nil {
			v.client.NotifyEndOfBitstreamBuffer(id)
		}
	}
}

// drainOutputCompletions dequeues every ready CAPTURE-queue buffer. A
// non-zero payload is a decoded picture; V4L2_BUF_FLAG_LAST marks the end
// of a flush, at which point V4L2_DEC_CMD_START resumes decoding.
func (v *VDA) drainOutputCompletions() {
	for {
		buf, err := v4l2.DequeueMPlaneBuffer(v.dev.Fd(), v4l2.BufTypeVideoCaptureMPlane, v4l2.StreamTypeDMABuf, v4l2.MaxPlanes)
		if err != nil {
			if errors.Is(err, sys.EAGAIN) {
				return
			}
			if errors.Is(err, sys.EPIPE) {
				// last output already dequeued; benign.
				return
			}
			v.fail(codec.PlatformFailure, "vda.drainOutputCompletions", err)
			return
		}

		if buf.Flags&v4l2.BufFlagLast != 0 {
			v.awaitingLast = false
			if err := v4l2.DecoderCmd(v.dev.Fd(), v4l2.DecoderCmdStart, 0); err != nil {
				v.fail(codec.PlatformFailure, "vda.drainOutputCompletions: resume", err)
				return
			}
			continue
		}

		var total uint32
		for _, p := range buf.Planes {
			total += p.BytesUsed
		}
		if total == 0 {
			v.outputRecords[buf.Index].State = codec.OutputFree
			continue
		}

		if int(buf.Index) < len(v.outputRecords) {
			v.outputRecords[buf.Index].State = codec.OutputAtClient
		}
		if v.client != nil {
			v.client.PictureReady(codec.Picture{
				PictureID:   int32(buf.Index),
				BitstreamID: int32(buf.TimestampSec),
				VisibleRect: v.visibleRect,
			})
		}
	}
}
