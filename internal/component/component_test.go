package component

import (
	"testing"
	"time"

	"github.com/projectceladon/v4l2-codec2/internal/bufferpool"
	"github.com/projectceladon/v4l2-codec2/internal/codec"
	"github.com/projectceladon/v4l2-codec2/internal/taskqueue"
)

func TestLoad_TransitionsUnloadedToLoaded(t *testing.T) {
	c := New(&fakeVDA{}, bufferpool.New(nil), codec.H264High, nil)

	if err := c.Load(); err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}
	if c.parentState != Loaded {
		t.Fatalf("parentState = %v, want Loaded", c.parentState)
	}
}

func TestLoad_RejectsDoubleLoad(t *testing.T) {
	c := New(&fakeVDA{}, bufferpool.New(nil), codec.H264High, nil)
	if err := c.Load(); err != nil {
		t.Fatalf("first Load() = %v, want nil", err)
	}

	if err := c.Load(); err == nil {
		t.Fatalf("second Load() = nil, want IllegalState error")
	}
}

func TestStart_RequiresLoaded(t *testing.T) {
	c := New(&fakeVDA{}, bufferpool.New(nil), codec.H264High, nil)

	if err := c.Start(); err == nil {
		t.Fatalf("Start() on Unloaded component = nil, want IllegalState error")
	}
}

func TestStart_InitializeErrorEntersComponentError(t *testing.T) {
	fv := &fakeVDA{initErr: codec.NewError(codec.PlatformFailure, "init", nil)}
	c := New(fv, bufferpool.New(nil), codec.H264High, nil)
	if err := c.Load(); err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if err := c.Start(); err == nil {
		t.Fatalf("Start() = nil, want the Initialize error")
	}
	if c.parentState != ComponentError {
		t.Fatalf("parentState = %v, want ComponentError", c.parentState)
	}
}

func TestStart_Success(t *testing.T) {
	c := New(&fakeVDA{}, bufferpool.New(nil), codec.H264High, nil)
	if err := c.Load(); err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if err := c.Start(); err != nil {
		t.Fatalf("Start() = %v, want nil", err)
	}
	if c.parentState != Running {
		t.Fatalf("parentState = %v, want Running", c.parentState)
	}
}

func TestQueue_RequiresRunning(t *testing.T) {
	c := New(&fakeVDA{}, bufferpool.New(nil), codec.H264High, nil)

	if err := c.Queue(nil); err == nil {
		t.Fatalf("Queue() on Unloaded component = nil, want IllegalState error")
	}
}

func TestStop_ResetsDestroysAndReturnsToLoaded(t *testing.T) {
	fv := &fakeVDA{}
	c := New(fv, bufferpool.New(nil), codec.H264High, nil)
	fv.onReset = func() { c.NotifyResetDone() }
	if err := c.Load(); err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}
	if err := c.Start(); err != nil {
		t.Fatalf("Start() = %v, want nil", err)
	}

	if err := c.Stop(); err != nil {
		t.Fatalf("Stop() = %v, want nil", err)
	}
	if c.parentState != Loaded {
		t.Fatalf("parentState = %v, want Loaded", c.parentState)
	}
	if fv.resetCalls != 1 {
		t.Fatalf("resetCalls = %d, want 1", fv.resetCalls)
	}
	if !fv.destroyed {
		t.Fatalf("Destroy not called")
	}
	if c.pending != nil || c.blocks != nil {
		t.Fatalf("pending/blocks not cleared after Stop")
	}
}

func TestNotifyError_NotifiesListenerExactlyOnce(t *testing.T) {
	c := New(&fakeVDA{}, bufferpool.New(nil), codec.H264High, nil)
	if err := c.Load(); err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}
	listener := &fakeListener{}
	c.SetListener(listener)

	c.NotifyError(codec.PlatformFailure)
	c.NotifyError(codec.PlatformFailure)

	if c.parentState != ComponentError {
		t.Fatalf("parentState = %v, want ComponentError", c.parentState)
	}
	if len(listener.errors) != 1 {
		t.Fatalf("listener notified %d times, want 1", len(listener.errors))
	}
}

func TestQueue_EmptyOutputWithNoBuffersFinishesImmediately(t *testing.T) {
	fv := &fakeVDA{}
	c := New(fv, bufferpool.New(nil), codec.H264High, nil)
	if err := c.Load(); err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}
	if err := c.Start(); err != nil {
		t.Fatalf("Start() = %v, want nil", err)
	}
	listener := &fakeListener{}
	c.SetListener(listener)

	w := &codec.Work{Input: codec.WorkInput{Flags: codec.WorkFlagEmptyOutput, FrameIndex: 1}}
	if err := c.Queue([]*codec.Work{w}); err != nil {
		t.Fatalf("Queue() = %v, want nil", err)
	}
	c.worker.PostTaskAndWait(func() {}) // barrier: wait for the posted dispatch task

	if len(fv.decoded) != 0 {
		t.Fatalf("Decode called %d times, want 0 (empty output with no buffers never reaches VDA)", len(fv.decoded))
	}
	if len(listener.done) != 1 || listener.done[0] != w {
		t.Fatalf("listener.done = %v, want [w]", listener.done)
	}
}

func TestReportFinishedHeadWorks_StopsAtFirstUnfinished(t *testing.T) {
	c := New(&fakeVDA{}, bufferpool.New(nil), codec.H264High, nil)
	listener := &fakeListener{}
	c.listener = listener

	now := time.Unix(1000, 0)
	finished := &codec.Work{WorkletsProcessed: 1, Input: codec.WorkInput{Timestamp: now}}
	unfinished := &codec.Work{Input: codec.WorkInput{Timestamp: now, Buffers: []codec.Buffer{{Size: 4}}}}
	alsoFinished := &codec.Work{WorkletsProcessed: 1, Input: codec.WorkInput{Timestamp: now}}
	c.pending = []*codec.Work{finished, unfinished, alsoFinished}

	c.reportFinishedHeadWorks()

	if len(listener.done) != 1 || listener.done[0] != finished {
		t.Fatalf("listener.done = %v, want [finished]", listener.done)
	}
	if len(c.pending) != 2 || c.pending[0] != unfinished || c.pending[1] != alsoFinished {
		t.Fatalf("pending = %v, want [unfinished, alsoFinished] (head-of-line blocking)", c.pending)
	}
}

func TestProvidePictureBuffers_ImportsEveryFetchedBlock(t *testing.T) {
	fv := &fakeVDA{}
	c := New(fv, bufferpool.New(nil), codec.H264High, nil)
	c.worker = taskqueue.New(4)
	defer c.worker.Stop()

	coded := codec.CodedSize{Width: 64, Height: 64}
	c.ProvidePictureBuffers(2, codec.PixelFormatNV12, coded)
	c.worker.PostTaskAndWait(func() {})

	if len(c.blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(c.blocks))
	}
	if len(fv.assignedBuffers) != 2 {
		t.Fatalf("assignedBuffers = %d, want 2", len(fv.assignedBuffers))
	}
	for i, b := range fv.assignedBuffers {
		if b.ID != int32(i) || b.Size != coded {
			t.Fatalf("assignedBuffers[%d] = %+v, want {ID:%d Size:%v}", i, b, i, coded)
		}
	}
	if len(fv.imported) != 2 {
		t.Fatalf("imported = %d calls, want 2", len(fv.imported))
	}
	for i, info := range c.blocks {
		if info.State != OwnedByAccelerator {
			t.Fatalf("blocks[%d].State = %v, want OwnedByAccelerator", i, info.State)
		}
	}
}
