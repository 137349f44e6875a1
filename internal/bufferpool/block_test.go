package bufferpool

import "testing"

type recordingOwner struct {
	detachedSlot int
	detachCalled bool
	releasedBuf  []byte
	releaseCalled bool
}

func (o *recordingOwner) detachSlot(slot int) {
	o.detachedSlot = slot
	o.detachCalled = true
}

func (o *recordingOwner) releaseBytes(buf []byte) {
	o.releasedBuf = buf
	o.releaseCalled = true
}

func TestMarkBlockAsSharedClearsFinalizer(t *testing.T) {
	owner := &recordingOwner{}
	block := newGraphicBlock(owner, 3, 1, GraphicBuffer{})

	if err := block.markShared(); err != nil {
		t.Fatalf("markShared() error = %v", err)
	}
	if !block.shared {
		t.Error("block.shared should be true after markShared")
	}
}

func TestMarkBlockAsSharedTwiceFails(t *testing.T) {
	owner := &recordingOwner{}
	block := newGraphicBlock(owner, 3, 1, GraphicBuffer{})

	if err := block.markShared(); err != nil {
		t.Fatalf("first markShared() error = %v", err)
	}
	if err := block.markShared(); !IsBadState(err) {
		t.Errorf("second markShared() error = %v, want errBadState", err)
	}
}

func TestFinalizeBlockDetachesSlot(t *testing.T) {
	owner := &recordingOwner{}
	block := &GraphicBlock{Slot: 5, owner: owner}

	finalizeBlock(block)

	if !owner.detachCalled || owner.detachedSlot != 5 {
		t.Errorf("finalizeBlock did not detach slot 5 on the owner")
	}
}

func TestFinalizeBlockReleasesBytesInByteMode(t *testing.T) {
	owner := &recordingOwner{}
	buf := []byte{1, 2, 3}
	block := &GraphicBlock{Slot: -1, owner: owner, Bytes: buf}

	finalizeBlock(block)

	if !owner.releaseCalled {
		t.Error("finalizeBlock did not release byte-mode backing buffer")
	}
}

func TestFinalizeBlockSkipsSharedBlock(t *testing.T) {
	owner := &recordingOwner{}
	block := &GraphicBlock{Slot: 5, owner: owner, shared: true}

	finalizeBlock(block)

	if owner.detachCalled {
		t.Error("finalizeBlock must not detach a block marked shared")
	}
}
