package vda

import (
	"github.com/projectceladon/v4l2-codec2/internal/codec"
	"github.com/projectceladon/v4l2-codec2/v4l2"
)

// Decode posts a decode_task for b. A handle with Size == 0 that is not
// the flush sentinel is dropped silently.
func (v *VDA) Decode(b *codec.BitstreamBuffer) {
	v.decoderThread.PostTask(func() { v.decodeTask(b) })
}

func (v *VDA) decodeTask(b *codec.BitstreamBuffer) {
	if v.state == StateError {
		return
	}
	if !b.IsFlush() && b.ID < 0 {
		v.fail(codec.InvalidArgument, "vda.Decode: negative bitstream id", nil)
		return
	}
	if b.Size == 0 && !b.IsFlush() {
		return
	}
	v.decoderInputQ = append(v.decoderInputQ, b)
	v.scheduleInput()
}

// scheduleInput drains decoderInputQ into kernel input slots, honoring the
// delay_id hold: while resetting or flushing, buffers at or after the id
// that triggered the hold wait in the queue.
func (v *VDA) scheduleInput() {
	for len(v.decoderInputQ) > 0 {
		b := v.decoderInputQ[0]
		if (v.resetting || v.decoderFlushing) && !b.IsFlush() {
			if v.delayID < 0 {
				v.delayID = b.ID
			}
			if b.ID >= v.delayID {
				break
			}
		}
		if !v.trySubmitInputFrame(b) {
			break
		}
		v.decoderInputQ = v.decoderInputQ[1:]
	}
	v.enqueueInputs()
}

// trySubmitInputFrame pops a free input slot, takes ownership of b in its
// InputRecord, and pushes the slot to inputReady. A flush sentinel
// instead waits for the kernel input queue to fully drain, then is
// dispatched as V4L2_DEC_CMD_STOP.
func (v *VDA) trySubmitInputFrame(b *codec.BitstreamBuffer) bool {
	if b.IsFlush() {
		if len(v.inputReady) > 0 || v.inputSlotsInFlight() > 0 {
			return false
		}
		v.issueDecoderStop()
		return true
	}
	if len(v.freeInputSlots) == 0 {
		return false
	}
	slot := v.freeInputSlots[len(v.freeInputSlots)-1]
	v.freeInputSlots = v.freeInputSlots[:len(v.freeInputSlots)-1]
	v.inputRecords[slot] = codec.InputRecord{Buffer: b}
	v.inputReady = append(v.inputReady, slot)
	return true
}

func (v *VDA) inputSlotsInFlight() int {
	n := 0
	for _, rec := range v.inputRecords {
		if rec.AtDevice {
			n++
		}
	}
	return n
}

// enqueueInputs QBUFs every ready input slot, lazily STREAMONs the OUTPUT
// queue, and arms the poll interrupt on the first enqueue since empty.
func (v *VDA) enqueueInputs() {
	if len(v.inputReady) == 0 {
		return
	}
	wasEmpty := !v.inputStreaming

	for _, slot := range v.inputReady {
		rec := &v.inputRecords[slot]
		b := rec.Buffer
		plane := v4l2.MPlanePayload{
			BytesUsed:  uint32(b.Offset + b.Size),
			Length:     v.inputBufferSize,
			DataOffset: uint32(b.Offset),
			FD:         int32(b.DmaBuf),
		}
		if _, err := v4l2.QueueMPlaneBuffer(v.dev.Fd(), v4l2.BufTypeVideoOutputMPlane, uint32(slot), int64(b.ID), []v4l2.MPlanePayload{plane}); err != nil {
			v.fail(codec.PlatformFailure, "vda.enqueueInputs", err)
			return
		}
		rec.AtDevice = true
	}
	v.inputReady = nil

	if wasEmpty {
		if err := v.dev.SetDevicePollInterrupt(); err != nil {
			v.fail(codec.PlatformFailure, "vda.enqueueInputs: poll interrupt", err)
			return
		}
		if err := v4l2.StreamOnType(v.dev.Fd(), v4l2.BufTypeVideoOutputMPlane); err != nil {
			v.fail(codec.PlatformFailure, "vda.enqueueInputs: streamon output", err)
			return
		}
		v.inputStreaming = true
	}
}

// issueDecoderStop sends V4L2_DEC_CMD_STOP once the input queue has
// drained, per the flush protocol.
func (v *VDA) issueDecoderStop() {
	if err := v4l2.DecoderCmd(v.dev.Fd(), v4l2.DecoderCmdStop, 0); err != nil {
		v.fail(codec.PlatformFailure, "vda.issueDecoderStop", err)
		return
	}
	v.awaitingLast = true
}
