package adaptor

import (
	"github.com/projectceladon/v4l2-codec2/internal/codec"
	"github.com/projectceladon/v4l2-codec2/internal/vda"
)

// fakeDriver is a hand-written in-package fake of vdaDriver.
type fakeDriver struct {
	initErr error

	initClient vda.Client
	decoded    []*codec.BitstreamBuffer
	assigned   []codec.PictureBuffer
	imported   []importCall

	reused     []int32
	flushCalls int
	resetCalls int
	destroyed  bool
}

type importCall struct {
	id      int32
	fds     []int
	offsets []int
}

func (d *fakeDriver) Initialize(client vda.Client) error {
	d.initClient = client
	return d.initErr
}

func (d *fakeDriver) Decode(b *codec.BitstreamBuffer) { d.decoded = append(d.decoded, b) }

func (d *fakeDriver) AssignPictureBuffers(buffers []codec.PictureBuffer) { d.assigned = buffers }

func (d *fakeDriver) ImportBufferForPicture(id int32, fds []int, planeOffsets []int) {
	d.imported = append(d.imported, importCall{id: id, fds: fds, offsets: planeOffsets})
}

func (d *fakeDriver) ReusePictureBuffer(id int32) { d.reused = append(d.reused, id) }
func (d *fakeDriver) Flush()                      { d.flushCalls++ }
func (d *fakeDriver) Reset()                      { d.resetCalls++ }
func (d *fakeDriver) Destroy()                    { d.destroyed = true }

var _ vdaDriver = (*fakeDriver)(nil)

// fakeClient is a hand-written in-package fake of vda.Client, recording
// every callback PictureBuffers/pictures arrive through.
type fakeClient struct {
	providedCounts []int
	providedSizes  []codec.CodedSize
}

func (c *fakeClient) ProvidePictureBuffers(count int, format codec.PixelFormat, coded codec.CodedSize) {
	c.providedCounts = append(c.providedCounts, count)
	c.providedSizes = append(c.providedSizes, coded)
}

func (c *fakeClient) DismissPictureBuffer(pictureID int32)          {}
func (c *fakeClient) PictureReady(pic codec.Picture)                {}
func (c *fakeClient) NotifyEndOfBitstreamBuffer(bitstreamID int32)  {}
func (c *fakeClient) NotifyFlushDone()                              {}
func (c *fakeClient) NotifyResetDone()                              {}
func (c *fakeClient) NotifyError(kind codec.ErrorKind)              {}

var _ vda.Client = (*fakeClient)(nil)
