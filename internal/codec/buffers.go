package codec

// BitstreamBuffer is one compressed access unit handed from the client to
// the decoder. A size of zero is a silently-dropped no-op; an id of
// FlushBufferID with no handle is the flush sentinel.
type BitstreamBuffer struct {
	ID     int32
	DmaBuf int // owned dma-buf fd holding the access unit
	Offset int
	Size   int
}

// IsFlush reports whether b is the reserved empty flush token.
func (b BitstreamBuffer) IsFlush() bool {
	return b.ID == FlushBufferID
}

// PictureBuffer is one output (decoded) buffer descriptor, with an id
// assigned densely by the Component in [0, N).
type PictureBuffer struct {
	ID   int32
	Size CodedSize
}

// InputRecord tracks one kernel OUTPUT-queue slot.
type InputRecord struct {
	AtDevice bool
	Buffer   *BitstreamBuffer
}

// OutputState is the lifecycle state of one kernel CAPTURE-queue slot.
type OutputState int

const (
	OutputFree OutputState = iota
	OutputAtDevice
	OutputAtClient
)

func (s OutputState) String() string {
	switch s {
	case OutputFree:
		return "free"
	case OutputAtDevice:
		return "at_device"
	case OutputAtClient:
		return "at_client"
	default:
		return "unknown"
	}
}

// OutputRecord tracks one kernel CAPTURE-queue slot.
type OutputRecord struct {
	State        OutputState
	PictureID    int32
	Cleared      bool
	DmaBufFDs    []int
	PlaneOffsets []int
}

// Picture is what VDA reports to its client on a completed CAPTURE dequeue.
type Picture struct {
	PictureID   int32
	BitstreamID int32
	VisibleRect Rect
}
