// Package adaptor implements the Adaptor contract: the narrow interface
// between Component and a VDA or VDA-proxy. A local, in-process
// implementation lives here; a websocket-proxied remote implementation
// lives in adaptor/remote.
package adaptor

import (
	"github.com/projectceladon/v4l2-codec2/internal/codec"
	"github.com/projectceladon/v4l2-codec2/internal/vda"
)

// Adaptor is the operation set Component drives, all asynchronous except
// Initialize.
type Adaptor interface {
	Initialize(profile codec.Profile, secure bool, client vda.Client) error
	Decode(id int32, fd int, offset, size int)
	AssignPictureBuffers(n int)
	ImportBufferForPicture(id int32, format codec.PixelFormat, fd int, planes []codec.VideoFramePlane)
	ReusePictureBuffer(id int32)
	Flush()
	Reset()
	Destroy()
}

// vdaDriver is the subset of *vda.VDA a local Adaptor drives.
type vdaDriver interface {
	Initialize(client vda.Client) error
	Decode(b *codec.BitstreamBuffer)
	AssignPictureBuffers(buffers []codec.PictureBuffer)
	ImportBufferForPicture(id int32, fds []int, planeOffsets []int)
	ReusePictureBuffer(id int32)
	Flush()
	Reset()
	Destroy()
}

// Local is the direct, in-process Adaptor: it drives a VDA instance
// without any IPC boundary. It remembers the profile and the most recent
// negotiated coded size (learned from ProvidePictureBuffers, which it
// passes through to the wrapped client unmodified) so that
// AssignPictureBuffers(n), which carries only a count, can still build
// VDA's fully-sized PictureBuffer records.
type Local struct {
	driver  vdaDriver
	profile codec.Profile

	lastCodedSize codec.CodedSize
}

// NewLocal constructs a Local adaptor bound to an already-built VDA for
// profile.
func NewLocal(driver vdaDriver, profile codec.Profile) *Local {
	return &Local{driver: driver, profile: profile}
}

// Initialize rejects a profile mismatch as InvalidArgument and secure
// decode as InsufficientResources (secure pipelines are out of this
// module's scope).
func (l *Local) Initialize(profile codec.Profile, secure bool, client vda.Client) error {
	if profile != l.profile {
		return codec.NewError(codec.InvalidArgument, "adaptor.Local.Initialize: profile mismatch", nil)
	}
	if secure {
		return codec.NewError(codec.InsufficientResources, "adaptor.Local.Initialize: secure decode unsupported", nil)
	}
	watcher := &sizeTrackingClient{Client: client, adaptor: l}
	return l.driver.Initialize(watcher)
}

// sizeTrackingClient wraps a vda.Client to record the coded size each
// ProvidePictureBuffers callback carries, purely so a later
// AssignPictureBuffers(n) call can reconstruct full PictureBuffer specs.
type sizeTrackingClient struct {
	vda.Client
	adaptor *Local
}

func (s *sizeTrackingClient) ProvidePictureBuffers(count int, format codec.PixelFormat, coded codec.CodedSize) {
	s.adaptor.lastCodedSize = coded
	s.Client.ProvidePictureBuffers(count, format, coded)
}

func (l *Local) Decode(id int32, fd int, offset, size int) {
	l.driver.Decode(&codec.BitstreamBuffer{ID: id, DmaBuf: fd, Offset: offset, Size: size})
}

func (l *Local) AssignPictureBuffers(n int) {
	buffers := make([]codec.PictureBuffer, n)
	for i := range buffers {
		buffers[i] = codec.PictureBuffer{ID: int32(i), Size: l.lastCodedSize}
	}
	l.driver.AssignPictureBuffers(buffers)
}

func (l *Local) ImportBufferForPicture(id int32, format codec.PixelFormat, fd int, planes []codec.VideoFramePlane) {
	fds := make([]int, len(planes))
	offsets := make([]int, len(planes))
	for i, p := range planes {
		fds[i] = fd
		offsets[i] = p.Offset
	}
	l.driver.ImportBufferForPicture(id, fds, offsets)
}

func (l *Local) ReusePictureBuffer(id int32) { l.driver.ReusePictureBuffer(id) }
func (l *Local) Flush()                      { l.driver.Flush() }
func (l *Local) Reset()                      { l.driver.Reset() }
func (l *Local) Destroy()                    { l.driver.Destroy() }
