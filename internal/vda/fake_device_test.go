package vda

import (
	"github.com/projectceladon/v4l2-codec2/internal/codec"
	"github.com/projectceladon/v4l2-codec2/v4l2"
)

// fakeDevice is a hand-written in-package fake of the Device interface.
// It never performs a real ioctl; VDA's buffer-queue operations (QBUF,
// DQBUF, STREAMON/OFF, REQBUFS, S_FMT) are free functions in the v4l2
// package that take a raw fd and therefore cannot be faked this way —
// tests below stick to state-machine paths that do not require a real
// kernel device, and exercise the Device-interface surface (poll,
// interrupt, event subscription) directly.
type fakeDevice struct {
	fd uintptr

	pollEventPending bool
	pollErr          error

	subscribeErr error

	interruptSet   bool
	interruptClear bool

	dequeueEventErr error
}

func (d *fakeDevice) Fd() uintptr { return d.fd }

func (d *fakeDevice) Poll(waitForDevice bool) (bool, error) {
	return d.pollEventPending, d.pollErr
}

func (d *fakeDevice) SetDevicePollInterrupt() error {
	d.interruptSet = true
	return nil
}

func (d *fakeDevice) ClearDevicePollInterrupt() error {
	d.interruptClear = true
	return nil
}

func (d *fakeDevice) SubscribeSourceChangeEvent() error {
	return d.subscribeErr
}

func (d *fakeDevice) DequeueEvent() (*v4l2.Event, error) {
	if d.dequeueEventErr != nil {
		return nil, d.dequeueEventErr
	}
	return &v4l2.Event{}, nil
}

// fakeClient is a hand-written in-package fake of the Client interface,
// recording every callback it receives.
type fakeClient struct {
	providePictureBuffersCalls int
	lastFormat                 codec.PixelFormat
	lastCodedSize              codec.CodedSize

	dismissedPictures []int32
	picturesReady     []codec.Picture
	endOfBitstream    []int32

	flushDoneCalls int
	resetDoneCalls int
	errorKinds     []codec.ErrorKind
}

func newFakeClient() *fakeClient { return &fakeClient{} }

func (c *fakeClient) ProvidePictureBuffers(count int, format codec.PixelFormat, coded codec.CodedSize) {
	c.providePictureBuffersCalls += count
	c.lastFormat = format
	c.lastCodedSize = coded
}

func (c *fakeClient) DismissPictureBuffer(pictureID int32) {
	c.dismissedPictures = append(c.dismissedPictures, pictureID)
}

func (c *fakeClient) PictureReady(pic codec.Picture) {
	c.picturesReady = append(c.picturesReady, pic)
}

func (c *fakeClient) NotifyEndOfBitstreamBuffer(bitstreamID int32) {
	c.endOfBitstream = append(c.endOfBitstream, bitstreamID)
}

func (c *fakeClient) NotifyFlushDone() { c.flushDoneCalls++ }
func (c *fakeClient) NotifyResetDone() { c.resetDoneCalls++ }

func (c *fakeClient) NotifyError(kind codec.ErrorKind) {
	c.errorKinds = append(c.errorKinds, kind)
}

var (
	_ Device = (*fakeDevice)(nil)
	_ Client = (*fakeClient)(nil)
)
