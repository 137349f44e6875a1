// Package bufferpool brokers output graphic surfaces between the decode
// pipeline and an external surface producer, handling producer-switch
// buffer migration and (when no producer is configured) a plain
// sync.Pool-backed byte-buffer allocator.
package bufferpool

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/projectceladon/v4l2-codec2/internal/codec"
	"github.com/projectceladon/v4l2-codec2/internal/metrics"
)

var (
	// errTimedOut mirrors the "TIMED_OUT" fetch result: retry later.
	errTimedOut = errors.New("bufferpool: timed out")
	// errBadState mirrors "BAD_STATE": the producer was switched out from
	// under the pool; the caller must run its block-refresh pass.
	errBadState = errors.New("bufferpool: bad state, producer changed")
	// errBlocking mirrors "BLOCKING": the allocation mutex timed out.
	errBlocking = errors.New("bufferpool: allocation busy")
)

const (
	fenceWaitTimeout   = 10 * time.Millisecond
	allocMutexTimeout  = 500 * time.Millisecond
	spareDelayMin      = 500 * time.Microsecond
	spareDelayMax      = 16384 * time.Microsecond
	maxSlots           = 64
)

// slotAllocation is the pool's bookkeeping for one dequeued, not-yet-freed
// slot (the slot->allocation map entry).
type slotAllocation struct {
	block *GraphicBlock
}

// BufferPool mediates between "N output surfaces of a given shape" and an
// external producer. With no producer configured it falls back to a plain
// byte-buffer allocator.
type BufferPool struct {
	producer   Producer
	producerID int64

	allocMu *semaphore.Weighted

	slots           map[int]*slotAllocation
	requested       int
	buffersInClient int
	spareSlot       int
	spareDelay      time.Duration

	producerSwitched  bool
	badState          bool
	producerChangeMap map[int]int // old slot -> new slot

	bytePool      *bytePool
	width, height int
	format        codec.PixelFormat
	usage         uint64

	logger *zap.Logger
}

// New creates a pool with no producer configured (byte-buffer mode). Call
// SetProducer to switch into surface mode. A nil logger falls back to
// zap.NewProduction.
func New(logger *zap.Logger) *BufferPool {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &BufferPool{
		allocMu:    semaphore.NewWeighted(1),
		slots:      make(map[int]*slotAllocation),
		spareSlot:  -1,
		spareDelay: spareDelayMin,
		bytePool:   newBytePool(1 << 20),
		logger:     logger,
	}
}

// SetProducer wires in (or switches to) a surface producer. A producer
// with an id different from the currently-configured one triggers
// switchProducer migration; the first-ever SetProducer call is a plain
// configure, not a switch.
func (p *BufferPool) SetProducer(producer Producer, width, height int, format codec.PixelFormat, usage uint64) error {
	p.width, p.height, p.format, p.usage = width, height, format, usage

	if p.producer == nil {
		p.producer = producer
		p.producerID = producer.UniqueID()
		return nil
	}
	if producer.UniqueID() == p.producerID {
		p.producer = producer
		return nil
	}
	return p.switchProducer(producer)
}

// RequestNewBufferSet implements requestNewBufferSet(N): acquire the
// allocation mutex (500 ms bound), reclaim stray slots if the producer was
// just switched, widen max-dequeued, drop all held allocations, and open
// the gate for fresh allocation.
func (p *BufferPool) RequestNewBufferSet(ctx context.Context, n int) error {
	ctx, cancel := context.WithTimeout(ctx, allocMutexTimeout)
	defer cancel()
	if err := p.allocMu.Acquire(ctx, 1); err != nil {
		return errBlocking
	}
	defer p.allocMu.Release(1)

	if p.producer == nil {
		p.requested = n
		return nil
	}

	if p.producerSwitched {
		for slot := 0; slot < maxSlots; slot++ {
			if _, owned := p.slots[slot]; owned {
				continue
			}
			p.producer.DetachBuffer(slot)
		}
		p.producerSwitched = false
	}

	stillDequeued := len(p.slots)
	if err := p.producer.SetMaxDequeuedBufferCount(n + stillDequeued + 1); err != nil {
		return codec.NewError(codec.PlatformFailure, "bufferpool.RequestNewBufferSet", err)
	}

	p.slots = make(map[int]*slotAllocation)
	p.producerChangeMap = nil
	p.badState = false
	p.requested = n
	p.spareSlot = -1
	p.spareDelay = spareDelayMin

	return p.producer.AllowAllocation(true)
}

// FetchGraphicBlock implements the per-fetch protocol. In byte-buffer mode
// it is unconditional; in surface mode it runs the dequeue/fence/spare/
// attach sequence against the producer.
func (p *BufferPool) FetchGraphicBlock() (*GraphicBlock, error) {
	if p.producer == nil {
		buf := p.bytePool.get(p.width * p.height * 3 / 2)
		block := newGraphicBlock(p, -1, 0, GraphicBuffer{Width: p.width, Height: p.height, Format: p.format})
		block.Bytes = buf
		return block, nil
	}

	if p.badState {
		return nil, errBadState
	}

	slot, needsRealloc, fence, err := p.producer.Dequeue(p.width, p.height, p.format, p.usage)
	if err != nil {
		return nil, codec.NewError(codec.PlatformFailure, "bufferpool.FetchGraphicBlock: dequeue", err)
	}

	if fence != nil {
		if err := fence.Wait(fenceWaitTimeout); err != nil {
			p.producer.CancelBuffer(slot)
			return nil, errTimedOut
		}
	}

	if p.isSpareSlot(slot) {
		p.producer.CancelBuffer(slot)
		metrics.RecordSpareWait()
		time.Sleep(p.spareDelay)
		p.spareDelay *= 2
		if p.spareDelay > spareDelayMax {
			p.spareDelay = spareDelayMax
		}
		return nil, errTimedOut
	}

	if len(p.slots) >= p.requested && p.slots[slot] == nil {
		p.producer.DetachBuffer(slot)
		return nil, errTimedOut
	}

	var buf GraphicBuffer
	if needsRealloc {
		buf, err = p.producer.RequestBuffer(slot)
		if err != nil {
			return nil, codec.NewError(codec.PlatformFailure, "bufferpool.FetchGraphicBlock: request", err)
		}
	}

	block := newGraphicBlock(p, slot, p.producerID, buf)
	p.slots[slot] = &slotAllocation{block: block}
	p.spareDelay = spareDelayMin

	if len(p.slots) == p.requested {
		if err := p.allocateSpare(); err != nil {
			return nil, err
		}
	}

	return block, nil
}

func (p *BufferPool) isSpareSlot(slot int) bool {
	return p.spareSlot >= 0 && slot == p.spareSlot
}

// allocateSpare implements the "spare" step: one extra buffer is dequeued
// and immediately cancelled so it sits in the producer's free queue,
// guaranteeing progress, then fresh allocation is disabled.
func (p *BufferPool) allocateSpare() error {
	slot, _, fence, err := p.producer.Dequeue(p.width, p.height, p.format, p.usage)
	if err != nil {
		return codec.NewError(codec.PlatformFailure, "bufferpool.allocateSpare", err)
	}
	if fence != nil {
		fence.Wait(fenceWaitTimeout)
	}
	p.producer.CancelBuffer(slot)
	p.spareSlot = slot
	return p.producer.AllowAllocation(false)
}

// detachSlot is the blockOwner callback a GraphicBlock's finalizer invokes
// when it is garbage-collected without having been marked shared.
func (p *BufferPool) detachSlot(slot int) {
	if slot < 0 || p.producer == nil {
		return
	}
	delete(p.slots, slot)
	p.producer.DetachBuffer(slot)
}

// releaseBytes returns a byte-mode allocation to the backing sync.Pool.
func (p *BufferPool) releaseBytes(buf []byte) {
	p.bytePool.put(buf)
}

// MarkBlockAsShared clears a block's destructor-side detach.
func (p *BufferPool) MarkBlockAsShared(b *GraphicBlock) error {
	return b.markShared()
}
