package bufferpool

import (
	"errors"

	"github.com/projectceladon/v4l2-codec2/internal/codec"
)

// fakeProducer is a hand-written in-package fake Producer (the teacher
// pack never imports a mocking framework). It hands out monotonically
// increasing slots and records every call so tests can assert on the
// sequence of producer interactions.
type fakeProducer struct {
	id int64

	nextSlot    int
	dequeueSeq  []int // if non-empty, overrides nextSlot for scripted sequences
	dequeueErr  error
	attached    map[int]GraphicBuffer
	cancelled   []int
	detached    []int
	queued      []int
	maxDequeued int
	allocationAllowed bool
}

func newFakeProducer(id int64) *fakeProducer {
	return &fakeProducer{id: id, attached: make(map[int]GraphicBuffer)}
}

func (p *fakeProducer) UniqueID() int64 { return p.id }

func (p *fakeProducer) Dequeue(w, h int, format codec.PixelFormat, usage uint64) (int, bool, Fence, error) {
	if p.dequeueErr != nil {
		return 0, false, nil, p.dequeueErr
	}
	if len(p.dequeueSeq) > 0 {
		slot := p.dequeueSeq[0]
		p.dequeueSeq = p.dequeueSeq[1:]
		return slot, true, nil, nil
	}
	slot := p.nextSlot
	p.nextSlot++
	return slot, true, nil, nil
}

func (p *fakeProducer) RequestBuffer(slot int) (GraphicBuffer, error) {
	return GraphicBuffer{
		Width: 1920, Height: 1080, Format: codec.PixelFormatNV12,
		DmaBufFDs: []int{100 + slot}, PlaneOffsets: []int{0},
	}, nil
}

func (p *fakeProducer) CancelBuffer(slot int) error {
	p.cancelled = append(p.cancelled, slot)
	return nil
}

func (p *fakeProducer) QueueBuffer(slot int) error {
	p.queued = append(p.queued, slot)
	return nil
}

func (p *fakeProducer) AttachBuffer(slot int, buf GraphicBuffer) error {
	p.attached[slot] = buf
	return nil
}

func (p *fakeProducer) DetachBuffer(slot int) error {
	p.detached = append(p.detached, slot)
	return nil
}

func (p *fakeProducer) SetMaxDequeuedBufferCount(n int) error {
	p.maxDequeued = n
	return nil
}

func (p *fakeProducer) AllowAllocation(allow bool) error {
	p.allocationAllowed = allow
	return nil
}

var errFakeDequeue = errors.New("fake producer: dequeue failed")
