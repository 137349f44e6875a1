package codec

import "time"

// WorkFlags mark special handling for a Work item.
type WorkFlags uint32

const (
	WorkFlagNone WorkFlags = 0
	// WorkFlagEmptyOutput marks a work that produces no picture (e.g. a
	// dropped frame or config-only access unit); it is finished once its
	// input buffer reference is dropped.
	WorkFlagEmptyOutput WorkFlags = 1 << iota
	// WorkFlagEOS marks the single work emitted at the tail of a
	// DRAIN_COMPONENT_WITH_EOS drain.
	WorkFlagEOS
)

// Buffer is one linear input buffer attached to a Work's input.
type Buffer struct {
	DmaBuf int
	Offset int
	Size   int
}

// WorkInput is the external input side of a Work.
type WorkInput struct {
	Flags      WorkFlags
	Timestamp  time.Time
	FrameIndex uint64
	Buffers    []Buffer
}

// Worklet is one output slot of a Work; a picture is attached to it when
// decoding completes.
type Worklet struct {
	Timestamp time.Time
	Picture   *OutputBlockHandle
	EOS       bool
}

// OutputBlockHandle is a client-visible handle on a decoded graphic block.
// Its Release method is called exactly once, by the owner, when the client
// drops its reference; that is the moment the Component calls
// VDA.ReusePictureBuffer.
type OutputBlockHandle struct {
	BlockID int32
	Release func()
}

// Work is the external unit of work queued to a Component.
type Work struct {
	Input             WorkInput
	Worklets          []Worklet
	WorkletsProcessed uint32
}

// Finished reports whether w is complete: at least one worklet processed,
// the (first) worklet's timestamp is >= the input timestamp, and the input
// no longer holds any buffer references.
func (w *Work) Finished() bool {
	if w.WorkletsProcessed == 0 {
		return false
	}
	if len(w.Input.Buffers) != 0 {
		return false
	}
	if len(w.Worklets) == 0 {
		return true
	}
	return !w.Worklets[0].Timestamp.Before(w.Input.Timestamp)
}
