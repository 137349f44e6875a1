package bufferpool

import (
	"time"

	"github.com/projectceladon/v4l2-codec2/internal/codec"
)

// Producer is the external graphics surface producer (the "BufferQueue")
// that BufferPool brokers output graphic surfaces with, in surface mode
//. Slots are producer-assigned integers in [0, 64).
type Producer interface {
	// UniqueID identifies this producer instance; a new id signals a
	// producer switch to BufferPool.
	UniqueID() int64

	// Dequeue requests a free slot sized w x h in format, for the given
	// gralloc usage flags.
	Dequeue(w, h int, format codec.PixelFormat, usage uint64) (slot int, needsRealloc bool, fence Fence, err error)

	// RequestBuffer materialises the graphic buffer backing slot.
	RequestBuffer(slot int) (GraphicBuffer, error)

	// CancelBuffer returns a dequeued slot to the producer's free queue
	// without submitting content.
	CancelBuffer(slot int) error

	// QueueBuffer submits slot's content back to the producer.
	QueueBuffer(slot int) error

	// AttachBuffer binds an externally-constructed graphic buffer to slot
	// on this producer (used during producer-switch migration).
	AttachBuffer(slot int, buf GraphicBuffer) error

	// DetachBuffer releases this producer's claim on slot.
	DetachBuffer(slot int) error

	// SetMaxDequeuedBufferCount bounds how many slots may be dequeued
	// concurrently.
	SetMaxDequeuedBufferCount(n int) error

	// AllowAllocation enables or disables the producer handing out slots
	// that require a fresh allocation.
	AllowAllocation(allow bool) error
}

// Fence represents the producer's acquire fence for a dequeued slot: the
// slot's previous content is not yet guaranteed visible until the fence
// signals.
type Fence interface {
	// Wait blocks up to timeout for the fence to signal.
	Wait(timeout time.Duration) error
}

// GraphicBuffer is an opaque producer-allocated graphic surface handle.
// DmaBufFDs/PlaneOffsets are populated by the producer for surfaces backed
// by importable dmabuf memory, which is what the CAPTURE queue requires
//; they are left empty for a byte-buffer-mode allocation.
type GraphicBuffer struct {
	Generation   uint64
	Usage        uint64
	Width        int
	Height       int
	Format       codec.PixelFormat
	DmaBufFDs    []int
	PlaneOffsets []int
}
