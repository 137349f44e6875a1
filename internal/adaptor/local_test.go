package adaptor

import (
	"testing"

	"github.com/projectceladon/v4l2-codec2/internal/codec"
)

func TestLocalInitialize_RejectsProfileMismatch(t *testing.T) {
	driver := &fakeDriver{}
	l := NewLocal(driver, codec.H264High)

	err := l.Initialize(codec.VP8, false, &fakeClient{})

	if err == nil {
		t.Fatalf("Initialize() = nil, want profile-mismatch error")
	}
	if driver.initClient != nil {
		t.Fatalf("driver.Initialize was called, want it skipped on mismatch")
	}
}

func TestLocalInitialize_RejectsSecureDecode(t *testing.T) {
	driver := &fakeDriver{}
	l := NewLocal(driver, codec.H264High)

	err := l.Initialize(codec.H264High, true, &fakeClient{})

	if err == nil {
		t.Fatalf("Initialize() = nil, want secure-decode error")
	}
	if driver.initClient != nil {
		t.Fatalf("driver.Initialize was called, want it skipped for secure decode")
	}
}

func TestLocalInitialize_WrapsClientAndTracksCodedSize(t *testing.T) {
	driver := &fakeDriver{}
	l := NewLocal(driver, codec.H264High)
	client := &fakeClient{}

	if err := l.Initialize(codec.H264High, false, client); err != nil {
		t.Fatalf("Initialize() = %v, want nil", err)
	}
	if driver.initClient == nil {
		t.Fatalf("driver.Initialize was not called")
	}

	driver.initClient.ProvidePictureBuffers(4, codec.PixelFormatNV12, codec.CodedSize{Width: 1920, Height: 1080})

	if len(client.providedCounts) != 1 || client.providedCounts[0] != 4 {
		t.Fatalf("wrapped client saw counts %v, want [4] (passthrough)", client.providedCounts)
	}
	if l.lastCodedSize != (codec.CodedSize{Width: 1920, Height: 1080}) {
		t.Fatalf("lastCodedSize = %v, want {1920 1080}", l.lastCodedSize)
	}
}

func TestLocalAssignPictureBuffers_UsesLastCodedSize(t *testing.T) {
	driver := &fakeDriver{}
	l := NewLocal(driver, codec.H264High)
	l.lastCodedSize = codec.CodedSize{Width: 640, Height: 480}

	l.AssignPictureBuffers(3)

	if len(driver.assigned) != 3 {
		t.Fatalf("assigned = %d buffers, want 3", len(driver.assigned))
	}
	for i, b := range driver.assigned {
		if b.ID != int32(i) || b.Size != l.lastCodedSize {
			t.Fatalf("assigned[%d] = %+v, want {ID:%d Size:%v}", i, b, i, l.lastCodedSize)
		}
	}
}

func TestLocalImportBufferForPicture_RepeatsFDPerPlane(t *testing.T) {
	driver := &fakeDriver{}
	l := NewLocal(driver, codec.H264High)

	l.ImportBufferForPicture(7, codec.PixelFormatNV12, 42, []codec.VideoFramePlane{
		{Offset: 0, Stride: 1920, Size: 2073600},
		{Offset: 2073600, Stride: 1920, Size: 1036800},
	})

	if len(driver.imported) != 1 {
		t.Fatalf("imported %d calls, want 1", len(driver.imported))
	}
	got := driver.imported[0]
	if got.id != 7 {
		t.Fatalf("id = %d, want 7", got.id)
	}
	if len(got.fds) != 2 || got.fds[0] != 42 || got.fds[1] != 42 {
		t.Fatalf("fds = %v, want [42 42] (one real fd shared across planes)", got.fds)
	}
	if len(got.offsets) != 2 || got.offsets[0] != 0 || got.offsets[1] != 2073600 {
		t.Fatalf("offsets = %v, want [0 2073600]", got.offsets)
	}
}

func TestLocalPassthroughs(t *testing.T) {
	driver := &fakeDriver{}
	l := NewLocal(driver, codec.H264High)

	l.Decode(3, 9, 10, 100)
	l.ReusePictureBuffer(2)
	l.Flush()
	l.Reset()
	l.Destroy()

	if len(driver.decoded) != 1 || driver.decoded[0].ID != 3 || driver.decoded[0].DmaBuf != 9 {
		t.Fatalf("decoded = %v, want one buffer with id 3, fd 9", driver.decoded)
	}
	if len(driver.reused) != 1 || driver.reused[0] != 2 {
		t.Fatalf("reused = %v, want [2]", driver.reused)
	}
	if driver.flushCalls != 1 || driver.resetCalls != 1 || !driver.destroyed {
		t.Fatalf("flushCalls=%d resetCalls=%d destroyed=%v, want 1 1 true", driver.flushCalls, driver.resetCalls, driver.destroyed)
	}
}
