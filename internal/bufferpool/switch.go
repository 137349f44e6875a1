package bufferpool

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/projectceladon/v4l2-codec2/internal/codec"
)

// switchProducer migrates the existing buffer set onto a newly-appeared
// producer. On any failure the producer-change map is left empty so the
// next FetchGraphicBlock reports errBadState, telling the caller to
// abandon its held blocks. Each migration attempt is tagged with a random
// id purely to correlate its log lines, since two switches could otherwise
// interleave if the pool were reused across sessions.
func (p *BufferPool) switchProducer(newProducer Producer) error {
	migrationID := uuid.NewString()
	p.logger.Info("buffer pool producer switch starting",
		zap.String("migration_id", migrationID),
		zap.Int64("old_producer_id", p.producerID),
		zap.Int64("new_producer_id", newProducer.UniqueID()),
	)
	upperBound := 2*p.requested + 1
	if err := newProducer.SetMaxDequeuedBufferCount(upperBound); err != nil {
		return p.failSwitch(err)
	}
	if err := newProducer.AllowAllocation(true); err != nil {
		return p.failSwitch(err)
	}

	spareSlot, _, fence, err := newProducer.Dequeue(p.width, p.height, p.format, p.usage)
	if err != nil {
		return p.failSwitch(err)
	}
	if fence != nil {
		fence.Wait(fenceWaitTimeout)
	}
	newProducer.CancelBuffer(spareSlot)

	changeMap := make(map[int]int, len(p.slots))
	for oldSlot, alloc := range p.slots {
		newBuf := GraphicBuffer{
			Generation: alloc.block.Buffer.Generation + 1,
			Usage:      p.usage,
			Width:      p.width,
			Height:     p.height,
			Format:     p.format,
		}
		newSlot, _, fence, err := newProducer.Dequeue(p.width, p.height, p.format, p.usage)
		if err != nil {
			return p.failSwitch(err)
		}
		if fence != nil {
			fence.Wait(fenceWaitTimeout)
		}
		if err := newProducer.AttachBuffer(newSlot, newBuf); err != nil {
			return p.failSwitch(err)
		}
		changeMap[oldSlot] = newSlot
	}

	if err := newProducer.AllowAllocation(false); err != nil {
		return p.failSwitch(err)
	}

	for oldSlot := range p.slots {
		p.producer.DetachBuffer(oldSlot)
	}

	p.producer = newProducer
	p.producerID = newProducer.UniqueID()
	p.spareSlot = spareSlot
	p.producerChangeMap = changeMap
	p.producerSwitched = true
	p.badState = true
	p.logger.Info("buffer pool producer switch complete", zap.String("migration_id", migrationID))
	return nil
}

func (p *BufferPool) failSwitch(err error) error {
	p.producerChangeMap = nil
	p.badState = true
	p.logger.Warn("buffer pool producer switch failed", zap.Error(err))
	return codec.NewError(codec.PlatformFailure, "bufferpool.switchProducer", err)
}

// UpdateGraphicBlock implements updateGraphicBlock(oldSlot, willCancel),
// called by the caller after observing errBadState from a fetch.
// willCancel is true for blocks currently held by the client (they are
// simply cancelled on the new producer); false for component-owned
// blocks, which are rebuilt as live GraphicBlocks.
func (p *BufferPool) UpdateGraphicBlock(oldSlot int, willCancel bool) (*GraphicBlock, error) {
	newSlot, ok := p.producerChangeMap[oldSlot]
	if !ok {
		return nil, errBadState
	}
	delete(p.producerChangeMap, oldSlot)

	if willCancel {
		p.producer.CancelBuffer(newSlot)
		p.buffersInClient++
	} else {
		buf, err := p.producer.RequestBuffer(newSlot)
		if err != nil {
			return nil, codec.NewError(codec.PlatformFailure, "bufferpool.UpdateGraphicBlock: request", err)
		}
		block := newGraphicBlock(p, newSlot, p.producerID, buf)
		p.slots[newSlot] = &slotAllocation{block: block}
	}

	if len(p.producerChangeMap) == 0 {
		n := len(p.slots) + p.buffersInClient + 1
		if err := p.producer.SetMaxDequeuedBufferCount(n); err != nil {
			return nil, codec.NewError(codec.PlatformFailure, "bufferpool.UpdateGraphicBlock", err)
		}
		p.badState = false
	}

	if willCancel {
		return nil, nil
	}
	return p.slots[newSlot].block, nil
}

// IsBadState reports whether err is the sentinel returned by
// FetchGraphicBlock when the producer has been switched out from under
// the pool.
func IsBadState(err error) bool { return err == errBadState }

// IsTimedOut reports whether err is the sentinel returned by
// FetchGraphicBlock on a transient timeout (fence wait, spare slot,
// over-quota dequeue).
func IsTimedOut(err error) bool { return err == errTimedOut }
