package remote

import (
	"sync"

	"github.com/projectceladon/v4l2-codec2/internal/adaptor"
	"github.com/projectceladon/v4l2-codec2/internal/codec"
	"github.com/projectceladon/v4l2-codec2/internal/vda"
)

// fakeAdaptor is a hand-written in-package fake of adaptor.Adaptor, the
// backend a Server hosts per connection.
type fakeAdaptor struct {
	mu sync.Mutex

	initErr    error
	initClient vda.Client

	decoded       []decodeCall
	assignedN     []int
	imported      []importCall
	reused        []int32
	flushCalls    int
	resetCalls    int
	destroyCalled bool
}

type decodeCall struct {
	id               int32
	fd, offset, size int
}

var _ adaptor.Adaptor = (*fakeAdaptor)(nil)

type importCall struct {
	id     int32
	format codec.PixelFormat
	fd     int
	planes []codec.VideoFramePlane
}

func (a *fakeAdaptor) Initialize(profile codec.Profile, secure bool, client vda.Client) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.initClient = client
	return a.initErr
}

func (a *fakeAdaptor) Decode(id int32, fd int, offset, size int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.decoded = append(a.decoded, decodeCall{id: id, fd: fd, offset: offset, size: size})
}

func (a *fakeAdaptor) AssignPictureBuffers(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.assignedN = append(a.assignedN, n)
}

func (a *fakeAdaptor) ImportBufferForPicture(id int32, format codec.PixelFormat, fd int, planes []codec.VideoFramePlane) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.imported = append(a.imported, importCall{id: id, format: format, fd: fd, planes: planes})
}

func (a *fakeAdaptor) ReusePictureBuffer(id int32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reused = append(a.reused, id)
}

func (a *fakeAdaptor) Flush() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.flushCalls++
}

func (a *fakeAdaptor) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resetCalls++
}

func (a *fakeAdaptor) Destroy() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.destroyCalled = true
}

// fakeClient is a hand-written in-package fake of vda.Client, recording
// every callback the Client dispatches to it.
type fakeClient struct {
	mu sync.Mutex

	provided  []providedCall
	dismissed []int32
	pictures  []codec.Picture
	eob       []int32
	flushes   int
	resets    int
	errors    []codec.ErrorKind
}

type providedCall struct {
	count  int
	format codec.PixelFormat
	coded  codec.CodedSize
}

func (c *fakeClient) ProvidePictureBuffers(count int, format codec.PixelFormat, coded codec.CodedSize) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.provided = append(c.provided, providedCall{count: count, format: format, coded: coded})
}

func (c *fakeClient) DismissPictureBuffer(pictureID int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dismissed = append(c.dismissed, pictureID)
}

func (c *fakeClient) PictureReady(pic codec.Picture) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pictures = append(c.pictures, pic)
}

func (c *fakeClient) NotifyEndOfBitstreamBuffer(bitstreamID int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eob = append(c.eob, bitstreamID)
}

func (c *fakeClient) NotifyFlushDone() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushes++
}

func (c *fakeClient) NotifyResetDone() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resets++
}

func (c *fakeClient) NotifyError(kind codec.ErrorKind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, kind)
}

var _ vda.Client = (*fakeClient)(nil)
