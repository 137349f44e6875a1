package component

import (
	"github.com/projectceladon/v4l2-codec2/internal/codec"
	"github.com/projectceladon/v4l2-codec2/internal/vda"
)

// fakeVDA is a hand-written in-package fake of vdaDriver, recording every
// call Component makes and letting a test synchronously simulate the
// asynchronous vda.Client callback a real accelerator would eventually
// deliver (onReset/onFlush run on the same goroutine that calls
// Reset/Flush, exactly as the decoder thread would call back inline).
type fakeVDA struct {
	initErr error

	decoded []*codec.BitstreamBuffer

	assignedBuffers []codec.PictureBuffer
	imported        []importCall
	reused          []int32

	flushCalls int
	resetCalls int
	destroyed  bool

	onFlush func()
	onReset func()
}

type importCall struct {
	id           int32
	fds          []int
	planeOffsets []int
}

func (v *fakeVDA) Initialize(client vda.Client) error { return v.initErr }

func (v *fakeVDA) Decode(b *codec.BitstreamBuffer) {
	v.decoded = append(v.decoded, b)
}

func (v *fakeVDA) AssignPictureBuffers(buffers []codec.PictureBuffer) {
	v.assignedBuffers = buffers
}

func (v *fakeVDA) ImportBufferForPicture(id int32, fds []int, planeOffsets []int) {
	v.imported = append(v.imported, importCall{id: id, fds: fds, planeOffsets: planeOffsets})
}

func (v *fakeVDA) ReusePictureBuffer(id int32) {
	v.reused = append(v.reused, id)
}

func (v *fakeVDA) Flush() {
	v.flushCalls++
	if v.onFlush != nil {
		v.onFlush()
	}
}

func (v *fakeVDA) Reset() {
	v.resetCalls++
	if v.onReset != nil {
		v.onReset()
	}
}

func (v *fakeVDA) Destroy() { v.destroyed = true }

var _ vdaDriver = (*fakeVDA)(nil)

// fakeListener is a hand-written in-package fake of Listener.
type fakeListener struct {
	done   []*codec.Work
	errors []codec.ErrorKind
}

func (l *fakeListener) OnWorkDone(w *codec.Work) { l.done = append(l.done, w) }

func (l *fakeListener) OnError(kind codec.ErrorKind) { l.errors = append(l.errors, kind) }

var _ Listener = (*fakeListener)(nil)
