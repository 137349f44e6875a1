package bufferpool

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/projectceladon/v4l2-codec2/internal/codec"
)

func TestFetchGraphicBlockByteMode(t *testing.T) {
	pool := New(zap.NewNop())
	pool.width, pool.height, pool.format = 640, 480, codec.PixelFormatNV12

	block, err := pool.FetchGraphicBlock()
	if err != nil {
		t.Fatalf("FetchGraphicBlock() error = %v", err)
	}
	if block.Slot != -1 {
		t.Errorf("byte-mode block.Slot = %d, want -1", block.Slot)
	}
	if len(block.Bytes) != 640*480*3/2 {
		t.Errorf("byte-mode block.Bytes len = %d, want %d", len(block.Bytes), 640*480*3/2)
	}
}

func TestFetchGraphicBlockSurfaceModeRequestedCount(t *testing.T) {
	pool := New(zap.NewNop())
	producer := newFakeProducer(1)
	if err := pool.SetProducer(producer, 1920, 1080, codec.PixelFormatNV12, 0); err != nil {
		t.Fatalf("SetProducer() error = %v", err)
	}
	if err := pool.RequestNewBufferSet(context.Background(), 2); err != nil {
		t.Fatalf("RequestNewBufferSet() error = %v", err)
	}

	b1, err := pool.FetchGraphicBlock()
	if err != nil {
		t.Fatalf("fetch 1: %v", err)
	}
	if b1.Slot != 0 {
		t.Errorf("fetch 1 slot = %d, want 0", b1.Slot)
	}

	// The second fetch hits the requested count, which also triggers the
	// spare-slot allocation (§4.2 OQ3): one extra slot is dequeued and
	// immediately cancelled.
	b2, err := pool.FetchGraphicBlock()
	if err != nil {
		t.Fatalf("fetch 2: %v", err)
	}
	if b2.Slot != 1 {
		t.Errorf("fetch 2 slot = %d, want 1", b2.Slot)
	}
	if pool.spareSlot != 2 {
		t.Errorf("spareSlot = %d, want 2 (allocated after hitting requested count)", pool.spareSlot)
	}
	if producer.allocationAllowed {
		t.Error("allocation should be disabled once the spare slot is set")
	}
}

func TestFetchGraphicBlockSpareSlotIsTimedOut(t *testing.T) {
	pool := New(zap.NewNop())
	producer := newFakeProducer(1)
	// Script: slot 0, slot 1 (requested), slot 2 (spare, auto-cancelled by
	// allocateSpare), then slot 2 again — simulating the producer handing
	// the spare slot straight back out, which FetchGraphicBlock must
	// recognize and report as a transient timeout rather than a new block.
	producer.dequeueSeq = []int{0, 1, 2, 2}

	if err := pool.SetProducer(producer, 1920, 1080, codec.PixelFormatNV12, 0); err != nil {
		t.Fatalf("SetProducer() error = %v", err)
	}
	if err := pool.RequestNewBufferSet(context.Background(), 2); err != nil {
		t.Fatalf("RequestNewBufferSet() error = %v", err)
	}

	if _, err := pool.FetchGraphicBlock(); err != nil {
		t.Fatalf("fetch 1: %v", err)
	}
	if _, err := pool.FetchGraphicBlock(); err != nil {
		t.Fatalf("fetch 2: %v", err)
	}

	_, err := pool.FetchGraphicBlock()
	if !IsTimedOut(err) {
		t.Errorf("fetch of the spare slot: err = %v, want errTimedOut", err)
	}
}

func TestFetchGraphicBlockBadState(t *testing.T) {
	pool := New(zap.NewNop())
	pool.producer = newFakeProducer(1)
	pool.badState = true

	_, err := pool.FetchGraphicBlock()
	if !IsBadState(err) {
		t.Errorf("err = %v, want errBadState", err)
	}
}
