package vda

import (
	"github.com/projectceladon/v4l2-codec2/internal/codec"
	"github.com/projectceladon/v4l2-codec2/internal/taskqueue"
	"github.com/projectceladon/v4l2-codec2/v4l2"
)

// Device is the subset of device.Device that VDA drives. Declared as an
// interface so the state machine can be exercised against a fake kernel
// device in tests.
type Device interface {
	Fd() uintptr
	Poll(waitForDevice bool) (eventPending bool, err error)
	SetDevicePollInterrupt() error
	ClearDevicePollInterrupt() error
	SubscribeSourceChangeEvent() error
	DequeueEvent() (*v4l2.Event, error)
}

// VDA drives a single memory-to-memory decode device through the state
// machine. Initialize runs on the caller's goroutine and starts both
// threads; every other public entry point posts onto the decoder thread and
// returns immediately, except Destroy which blocks until both threads
// have joined.
type VDA struct {
	dev     Device
	client  Client
	profile codec.Profile

	decoderThread *taskqueue.Runner
	pollThread    *taskqueue.Runner

	state State

	inputRecords    []codec.InputRecord
	freeInputSlots  []int
	inputReady      []int
	decoderInputQ   []*codec.BitstreamBuffer
	currentInput    *codec.BitstreamBuffer
	delayID         int32
	decoderFlushing bool
	resetting       bool
	awaitingLast    bool
	outputStreaming bool
	inputStreaming  bool

	outputRecords []codec.OutputRecord
	freeOutputs   []int

	codedSize   codec.CodedSize
	visibleRect codec.Rect
	pixelFormat codec.PixelFormat

	inputBufferSize uint32

	errored   bool
	destroyed bool
}

const defaultInputPoolSize = 8

// New constructs a VDA bound to dev and profile, not yet initialized.
func New(dev Device, profile codec.Profile) *VDA {
	return &VDA{
		dev:             dev,
		profile:         profile,
		state:           StateUninitialized,
		inputBufferSize: 1 << 20,
	}
}

// Initialize sizes the input pool, subscribes to source-change events, and
// transitions Uninitialized -> Initialized.
func (v *VDA) Initialize(client Client) error {
	if v.state != StateUninitialized {
		return codec.NewError(codec.IllegalState, "vda.Initialize", nil)
	}
	v.client = client

	if _, err := v4l2.InitMPlaneBuffers(v.dev.Fd(), v4l2.BufTypeVideoOutputMPlane, defaultInputPoolSize); err != nil {
		return v.fail(codec.PlatformFailure, "vda.Initialize: reqbufs output", err)
	}
	v.inputRecords = make([]codec.InputRecord, defaultInputPoolSize)
	v.freeInputSlots = make([]int, defaultInputPoolSize)
	for i := range v.freeInputSlots {
		v.freeInputSlots[i] = defaultInputPoolSize - 1 - i
	}

	if err := v.dev.SubscribeSourceChangeEvent(); err != nil {
		return v.fail(codec.PlatformFailure, "vda.Initialize: subscribe event", err)
	}

	v.decoderThread = taskqueue.New(64)
	v.pollThread = taskqueue.New(4)
	v.state = StateInitialized

	v.pollThread.PostTask(v.devicePollTask)
	return nil
}

// fail transitions VDA to the absorbing Error state and emits exactly one
// NotifyError, honoring the "once Error, no further NotifyError" rule.
func (v *VDA) fail(kind codec.ErrorKind, op string, cause error) error {
	err := codec.NewError(kind, op, cause)
	if v.state == StateError || v.state == StateUninitialized {
		return err
	}
	v.state = StateError
	v.errored = true
	if v.client != nil {
		v.client.NotifyError(kind)
	}
	return err
}

// Destroy invalidates outstanding callbacks and joins both threads. Safe
// to call more than once.
func (v *VDA) Destroy() {
	if v.destroyed {
		return
	}
	v.destroyed = true
	v.client = nil
	if v.pollThread != nil {
		v.pollThread.Stop()
	}
	if v.decoderThread != nil {
		v.decoderThread.Stop()
	}
}
