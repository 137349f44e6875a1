package bufferpool

import "runtime"

// blockOwner is the narrow interface a GraphicBlock's deferred-detach
// finalizer calls back into. It is satisfied by *BufferPool; GraphicBlock
// only ever sees this interface, never the concrete pool, which keeps the
// coupling one-directional even though Go has no first-class weak pointer
// to express cyclic/weak references cleanly.
type blockOwner interface {
	detachSlot(slot int)
	releaseBytes(buf []byte)
}

// GraphicBlock is a client-visible handle on one output graphic surface.
// Unless markShared has been called on it, a GraphicBlock that becomes
// unreachable detaches its slot from the owning producer, implemented
// with a finalizer since the block may legitimately outlive the pool.
type GraphicBlock struct {
	Slot       int
	ProducerID int64
	Buffer     GraphicBuffer
	// Bytes holds the backing allocation in byte-buffer mode (no producer
	// configured); empty in surface mode.
	Bytes []byte

	owner  blockOwner
	shared bool
}

func newGraphicBlock(owner blockOwner, slot int, producerID int64, buf GraphicBuffer) *GraphicBlock {
	b := &GraphicBlock{Slot: slot, ProducerID: producerID, Buffer: buf, owner: owner}
	runtime.SetFinalizer(b, finalizeBlock)
	return b
}

func finalizeBlock(b *GraphicBlock) {
	if b.shared || b.owner == nil {
		return
	}
	if b.Slot < 0 {
		b.owner.releaseBytes(b.Bytes)
		return
	}
	b.owner.detachSlot(b.Slot)
}

// markShared clears the destructor-side detach; used when a block crosses
// an IPC boundary and a remote peer now shares ownership. It is an error
// to call this twice on the same block.
func (b *GraphicBlock) markShared() error {
	if b.shared {
		return errBadState
	}
	b.shared = true
	runtime.SetFinalizer(b, nil)
	return nil
}
