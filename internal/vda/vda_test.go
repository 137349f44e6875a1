package vda

import (
	"testing"

	"github.com/projectceladon/v4l2-codec2/internal/codec"
	"github.com/projectceladon/v4l2-codec2/internal/taskqueue"
)

// newTestVDA builds a VDA bound to dev/client without calling Initialize,
// since Initialize issues a real REQBUFS ioctl against dev.Fd() that a fake
// device cannot satisfy. Callers set state and any other fields the test
// needs directly.
func newTestVDA(dev *fakeDevice, client *fakeClient) *VDA {
	v := New(dev, codec.H264High)
	v.client = client
	v.state = StateInitialized
	return v
}

func TestDecodeTask_ErrorStateIsNoop(t *testing.T) {
	v := newTestVDA(&fakeDevice{}, newFakeClient())
	v.state = StateError

	v.decodeTask(&codec.BitstreamBuffer{ID: 1, Size: 10})

	if len(v.decoderInputQ) != 0 {
		t.Fatalf("decoderInputQ = %d entries, want 0", len(v.decoderInputQ))
	}
}

func TestDecodeTask_NegativeIDFails(t *testing.T) {
	client := newFakeClient()
	v := newTestVDA(&fakeDevice{}, client)

	v.decodeTask(&codec.BitstreamBuffer{ID: -1, Size: 10})

	if v.state != StateError {
		t.Fatalf("state = %v, want StateError", v.state)
	}
	if len(client.errorKinds) != 1 || client.errorKinds[0] != codec.InvalidArgument {
		t.Fatalf("errorKinds = %v, want [InvalidArgument]", client.errorKinds)
	}
	if len(v.decoderInputQ) != 0 {
		t.Fatalf("decoderInputQ = %d entries, want 0", len(v.decoderInputQ))
	}
}

func TestDecodeTask_ZeroSizeDropped(t *testing.T) {
	v := newTestVDA(&fakeDevice{}, newFakeClient())

	v.decodeTask(&codec.BitstreamBuffer{ID: 1, Size: 0})

	if len(v.decoderInputQ) != 0 {
		t.Fatalf("decoderInputQ = %d entries, want 0", len(v.decoderInputQ))
	}
	if v.state != StateInitialized {
		t.Fatalf("state = %v, want unchanged StateInitialized", v.state)
	}
}

func TestDecodeTask_QueuedWithoutFreeSlots(t *testing.T) {
	v := newTestVDA(&fakeDevice{}, newFakeClient())
	// No Initialize means freeInputSlots is nil: trySubmitInputFrame can
	// never pop a slot, so the buffer sits in decoderInputQ and
	// enqueueInputs no-ops rather than touching the device.
	v.decodeTask(&codec.BitstreamBuffer{ID: 1, Size: 10})

	if len(v.decoderInputQ) != 1 {
		t.Fatalf("decoderInputQ = %d entries, want 1", len(v.decoderInputQ))
	}
	if len(v.inputReady) != 0 {
		t.Fatalf("inputReady = %d entries, want 0", len(v.inputReady))
	}
}

func TestScheduleInput_DelayHoldBreaksBeforeSubmit(t *testing.T) {
	v := newTestVDA(&fakeDevice{}, newFakeClient())
	v.resetting = true
	v.delayID = -1
	held := &codec.BitstreamBuffer{ID: 5, Size: 10}
	v.decoderInputQ = []*codec.BitstreamBuffer{held}

	v.scheduleInput()

	if v.delayID != 5 {
		t.Fatalf("delayID = %d, want 5 (set from held buffer's id)", v.delayID)
	}
	if len(v.decoderInputQ) != 1 || v.decoderInputQ[0] != held {
		t.Fatalf("decoderInputQ modified, want held buffer untouched")
	}
	if len(v.inputReady) != 0 {
		t.Fatalf("inputReady = %d entries, want 0", len(v.inputReady))
	}
}

func TestMaybeFinishFlush_NotFlushingIsNoop(t *testing.T) {
	client := newFakeClient()
	v := newTestVDA(&fakeDevice{}, client)

	v.maybeFinishFlush()

	if client.flushDoneCalls != 0 {
		t.Fatalf("flushDoneCalls = %d, want 0", client.flushDoneCalls)
	}
}

func TestMaybeFinishFlush_PendingWorkBlocks(t *testing.T) {
	client := newFakeClient()
	v := newTestVDA(&fakeDevice{}, client)
	v.decoderFlushing = true
	v.decoderInputQ = []*codec.BitstreamBuffer{{ID: 1, Size: 10}}

	v.maybeFinishFlush()

	if !v.decoderFlushing {
		t.Fatalf("decoderFlushing = false, want still true (input queue non-empty)")
	}
	if client.flushDoneCalls != 0 {
		t.Fatalf("flushDoneCalls = %d, want 0", client.flushDoneCalls)
	}
}

func TestMaybeFinishFlush_CompletesWithoutStreaming(t *testing.T) {
	client := newFakeClient()
	v := newTestVDA(&fakeDevice{}, client)
	v.decoderFlushing = true

	v.maybeFinishFlush()

	if v.decoderFlushing {
		t.Fatalf("decoderFlushing = true, want false")
	}
	if v.delayID != -1 {
		t.Fatalf("delayID = %d, want -1", v.delayID)
	}
	if client.flushDoneCalls != 1 {
		t.Fatalf("flushDoneCalls = %d, want 1", client.flushDoneCalls)
	}
}

func TestReset_WithoutStreamingDrainsAndCompletes(t *testing.T) {
	client := newFakeClient()
	v := newTestVDA(&fakeDevice{}, client)
	v.decoderThread = taskqueue.New(4)
	defer v.decoderThread.Stop()

	v.decoderInputQ = []*codec.BitstreamBuffer{{ID: 7, Size: 10}}

	v.Reset()
	v.decoderThread.PostTaskAndWait(func() {}) // barrier: Reset's task runs first (FIFO)

	if v.state != StateInitialized {
		t.Fatalf("state = %v, want StateInitialized", v.state)
	}
	if v.resetting {
		t.Fatalf("resetting = true, want false")
	}
	if len(v.decoderInputQ) != 0 {
		t.Fatalf("decoderInputQ = %d entries, want 0", len(v.decoderInputQ))
	}
	if len(client.endOfBitstream) != 1 || client.endOfBitstream[0] != 7 {
		t.Fatalf("endOfBitstream = %v, want [7]", client.endOfBitstream)
	}
	if client.resetDoneCalls != 1 {
		t.Fatalf("resetDoneCalls = %d, want 1", client.resetDoneCalls)
	}
}

func TestReset_UninitializedIsNoop(t *testing.T) {
	client := newFakeClient()
	v := newTestVDA(&fakeDevice{}, client)
	v.decoderThread = taskqueue.New(4)
	defer v.decoderThread.Stop()
	v.state = StateUninitialized

	v.Reset()
	v.decoderThread.PostTaskAndWait(func() {})

	if client.resetDoneCalls != 0 {
		t.Fatalf("resetDoneCalls = %d, want 0 (Reset on uninitialized VDA should no-op)", client.resetDoneCalls)
	}
}

func TestStartResolutionChange_WithoutStreaming(t *testing.T) {
	client := newFakeClient()
	v := newTestVDA(&fakeDevice{}, client)
	v.outputRecords = []codec.OutputRecord{
		{State: codec.OutputAtDevice, PictureID: 0, DmaBufFDs: []int{10, 11}},
		{State: codec.OutputFree, PictureID: 1},
	}
	v.codedSize = codec.CodedSize{Width: 1920, Height: 1080}

	v.startResolutionChange()

	if v.state != StateChangingResolution {
		t.Fatalf("state = %v, want StateChangingResolution", v.state)
	}
	if v.outputRecords != nil {
		t.Fatalf("outputRecords = %v, want nil", v.outputRecords)
	}
	if !v.codedSize.Empty() {
		t.Fatalf("codedSize = %v, want empty", v.codedSize)
	}
	if len(client.dismissedPictures) != 2 || client.dismissedPictures[0] != 0 || client.dismissedPictures[1] != 1 {
		t.Fatalf("dismissedPictures = %v, want [0 1] (every assigned record, imported or not)", client.dismissedPictures)
	}
}

func TestFail_IsIdempotentAfterFirstError(t *testing.T) {
	client := newFakeClient()
	v := newTestVDA(&fakeDevice{}, client)

	v.fail(codec.PlatformFailure, "op1", nil)
	v.fail(codec.UnreadableInput, "op2", nil)

	if v.state != StateError {
		t.Fatalf("state = %v, want StateError", v.state)
	}
	if len(client.errorKinds) != 1 || client.errorKinds[0] != codec.PlatformFailure {
		t.Fatalf("errorKinds = %v, want [PlatformFailure] (second fail must not re-notify)", client.errorKinds)
	}
}

func TestFail_UninitializedDoesNotNotify(t *testing.T) {
	client := newFakeClient()
	v := newTestVDA(&fakeDevice{}, client)
	v.state = StateUninitialized

	v.fail(codec.PlatformFailure, "op", nil)

	if v.state != StateUninitialized {
		t.Fatalf("state = %v, want unchanged StateUninitialized", v.state)
	}
	if len(client.errorKinds) != 0 {
		t.Fatalf("errorKinds = %v, want none", client.errorKinds)
	}
}

func TestDestroy_IsIdempotent(t *testing.T) {
	client := newFakeClient()
	v := newTestVDA(&fakeDevice{}, client)
	v.decoderThread = taskqueue.New(1)
	v.pollThread = taskqueue.New(1)

	v.Destroy()
	v.Destroy()

	if v.client != nil {
		t.Fatalf("client = %v, want nil after Destroy", v.client)
	}
}
