// Package vda implements the V4L2 video decode accelerator state machine:
// the decoder thread and poll thread driving a memory-to-memory kernel
// device's two queues, the input/output buffer records, resolution-change
// handling, flush and reset.
package vda

import "github.com/projectceladon/v4l2-codec2/internal/codec"

// Client receives the asynchronous callbacks VDA emits (the callback
// half of the Adaptor contract). Component implements this.
type Client interface {
	ProvidePictureBuffers(count int, format codec.PixelFormat, coded codec.CodedSize)
	DismissPictureBuffer(pictureID int32)
	PictureReady(pic codec.Picture)
	NotifyEndOfBitstreamBuffer(bitstreamID int32)
	NotifyFlushDone()
	NotifyResetDone()
	NotifyError(kind codec.ErrorKind)
}
