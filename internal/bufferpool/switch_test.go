package bufferpool

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/projectceladon/v4l2-codec2/internal/codec"
)

func setUpTwoBlockPool(t *testing.T) (*BufferPool, *fakeProducer) {
	t.Helper()
	pool := New(zap.NewNop())
	producer := newFakeProducer(1)
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
	return pool, producer
}

func TestProducerSwitchAndUpdateGraphicBlock(t *testing.T) {
	pool, _ := setUpTwoBlockPool(t)

	newProducer := newFakeProducer(2)
	if err := pool.SetProducer(newProducer, 1920, 1080, codec.PixelFormatNV12, 0); err != nil {
		t.Fatalf("SetProducer() (switch) error = %v", err)
	}

	if !pool.badState {
		t.Fatal("badState should be set immediately after a producer switch")
	}
	if len(pool.producerChangeMap) != 2 {
		t.Fatalf("producerChangeMap has %d entries, want 2", len(pool.producerChangeMap))
	}

	if _, err := pool.FetchGraphicBlock(); !IsBadState(err) {
		t.Errorf("FetchGraphicBlock during bad state: err = %v, want errBadState", err)
	}

	// Component-owned block (slot 0): rebuilt as a live GraphicBlock.
	block, err := pool.UpdateGraphicBlock(0, false)
	if err != nil {
		t.Fatalf("UpdateGraphicBlock(0, false) error = %v", err)
	}
	if block == nil {
		t.Fatal("UpdateGraphicBlock(0, false) returned a nil block")
	}
	if len(block.Buffer.DmaBufFDs) == 0 {
		t.Error("rebuilt block has no dmabuf fds; UpdateGraphicBlock must re-request a fully populated buffer")
	}

	// Client-held block (slot 1): simply cancelled on the new producer.
	block, err = pool.UpdateGraphicBlock(1, true)
	if err != nil {
		t.Fatalf("UpdateGraphicBlock(1, true) error = %v", err)
	}
	if block != nil {
		t.Errorf("UpdateGraphicBlock(1, true) returned a non-nil block, want nil")
	}
	if pool.buffersInClient != 1 {
		t.Errorf("buffersInClient = %d, want 1", pool.buffersInClient)
	}

	if pool.badState {
		t.Error("badState should clear once every old slot has been migrated")
	}
	if len(newProducer.cancelled) == 0 {
		t.Error("expected the client-held slot's migrated slot to be cancelled on the new producer")
	}
}

func TestUpdateGraphicBlockUnknownSlot(t *testing.T) {
	pool, _ := setUpTwoBlockPool(t)

	newProducer := newFakeProducer(2)
	if err := pool.SetProducer(newProducer, 1920, 1080, codec.PixelFormatNV12, 0); err != nil {
		t.Fatalf("SetProducer() (switch) error = %v", err)
	}

	if _, err := pool.UpdateGraphicBlock(99, false); !IsBadState(err) {
		t.Errorf("UpdateGraphicBlock(unknown slot): err = %v, want errBadState", err)
	}
}

func TestProducerSwitchSameIDIsNotASwitch(t *testing.T) {
	pool, producer := setUpTwoBlockPool(t)

	if err := pool.SetProducer(producer, 1920, 1080, codec.PixelFormatNV12, 0); err != nil {
		t.Fatalf("SetProducer() (same id) error = %v", err)
	}
	if pool.badState {
		t.Error("re-setting the same producer id must not trigger the bad-state switch path")
	}
	if pool.producerChangeMap != nil {
		t.Error("re-setting the same producer id must not populate a change map")
	}
}

func TestProducerSwitchFailurePropagates(t *testing.T) {
	pool, _ := setUpTwoBlockPool(t)

	failing := newFakeProducer(2)
	failing.dequeueErr = errFakeDequeue

	err := pool.SetProducer(failing, 1920, 1080, codec.PixelFormatNV12, 0)
	if err == nil {
		t.Fatal("expected SetProducer to propagate the failing producer's dequeue error")
	}
	if !pool.badState {
		t.Error("a failed switch must still leave the pool in bad state")
	}
	if pool.producerChangeMap != nil {
		t.Error("a failed switch must clear the change map")
	}
}
