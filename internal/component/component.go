// Package component implements the Component contract: it binds the
// external "work" queue to VDA, owns the GraphicBlockInfo table and a
// block pool, and drives the parent-visible
// Unloaded -> Loaded -> Running -> {Loaded|Error} state machine over an
// internal Uninitialized -> Started <-> {Draining, Flushing, Stopping}
// sequence.
package component

import (
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/projectceladon/v4l2-codec2/internal/bufferpool"
	"github.com/projectceladon/v4l2-codec2/internal/codec"
	"github.com/projectceladon/v4l2-codec2/internal/taskqueue"
	"github.com/projectceladon/v4l2-codec2/internal/vda"
)

// ParentState is the state machine visible to the Adaptor.
type ParentState int

const (
	Unloaded ParentState = iota
	Loaded
	Running
	ComponentError
)

func (s ParentState) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loaded:
		return "loaded"
	case Running:
		return "running"
	case ComponentError:
		return "error"
	default:
		return "unknown"
	}
}

// internalState tracks the Started sub-states a running Component cycles
// through while servicing drain/flush/stop requests.
type internalState int

const (
	stateUninitialized internalState = iota
	stateStarted
	stateDraining
	stateFlushing
	stateStopping
)

// DrainMode mirrors the two drain variants.
type DrainMode int

const (
	DrainWithoutEOS DrainMode = iota
	DrainWithEOS
)

// vdaDriver is the subset of *vda.VDA that Component drives; declared as
// an interface so Component can be exercised against a fake accelerator in
// tests.
type vdaDriver interface {
	Initialize(client vda.Client) error
	Decode(b *codec.BitstreamBuffer)
	AssignPictureBuffers(buffers []codec.PictureBuffer)
	ImportBufferForPicture(id int32, fds []int, planeOffsets []int)
	ReusePictureBuffer(id int32)
	Flush()
	Reset()
	Destroy()
}

// Component binds queued Work items to a VDA instance.
type Component struct {
	mu          sync.Mutex // guards parent/internal state
	parentState ParentState
	internal    internalState

	vda     vdaDriver
	pool    *bufferpool.BufferPool
	profile codec.Profile

	worker *taskqueue.Runner

	blocks  []GraphicBlockInfo
	pending []*codec.Work // FIFO, head-of-queue reporting order

	eosPending bool
	listener   Listener

	drainDone chan struct{} // not used: Drain does not wait; NotifyFlushDone finishes a drain
	flushDone chan struct{} // closed by NotifyResetDone (or NotifyFlushDone) while internal == stateFlushing
	stopDone  chan struct{} // closed by NotifyResetDone while internal == stateStopping

	logger *zap.Logger
}

// New constructs a Component bound to vda and pool, in the Unloaded state.
// A nil logger falls back to zap.NewProduction.
func New(v vdaDriver, pool *bufferpool.BufferPool, profile codec.Profile, logger *zap.Logger) *Component {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &Component{
		vda:         v,
		pool:        pool,
		profile:     profile,
		parentState: Unloaded,
		logger:      logger,
	}
}

// Load transitions Unloaded -> Loaded, starting the worker task runner.
func (c *Component) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.parentState != Unloaded {
		return codec.NewError(codec.IllegalState, "component.Load", nil)
	}
	c.worker = taskqueue.New(64)
	c.parentState = Loaded
	return nil
}

// Start implements the start entry point: pre-state Loaded, calls
// VDA.Initialize, post-state Running.
func (c *Component) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.parentState != Loaded {
		return codec.NewError(codec.IllegalState, "component.Start", nil)
	}
	if err := c.vda.Initialize(c); err != nil {
		c.parentState = ComponentError
		return err
	}
	c.internal = stateStarted
	c.parentState = Running
	c.logger.Info("component started", zap.String("profile", c.profile.String()))
	return nil
}

// waitGroup runs fns concurrently and returns the first error, using
// errgroup to coordinate the worker thread's completion waits. Most
// drain/flush/reset calls wait on exactly one VDA callback; this helper
// generalizes to the rare case where more than one wait is needed at once,
// e.g. draining input while also waiting for a resolution change to settle.
func waitGroup(fns ...func() error) error {
	var g errgroup.Group
	for _, fn := range fns {
		fn := fn
		g.Go(fn)
	}
	return g.Wait()
}
