// Package device wraps the kernel streaming video m2m device that backs a
// hardware video decoder: ioctl dispatch, poll interruption, event
// subscription, and fourcc/profile discovery.
package device

import (
	sys "golang.org/x/sys/unix"

	"github.com/projectceladon/v4l2-codec2/internal/codec"
	"github.com/projectceladon/v4l2-codec2/v4l2"
)

// Device is a thin wrapper over one /dev/videoN node driving a
// memory-to-memory, multi-planar decode accelerator. It owns the device fd
// and an eventfd used solely to interrupt a blocked poll.
type Device struct {
	path string
	fd   uintptr
	cap  v4l2.Capability

	interruptFD int
	interrupted bool

	config config
}

// Open opens path, verifies it advertises both multi-planar m2m and
// streaming capabilities, and sets the OUTPUT queue's pixel format to
// inputFourCC. All failures here are PlatformFailure.
func Open(path string, inputFourCC v4l2.FourCCType, options ...Option) (*Device, error) {
	fd, err := v4l2.OpenDevice(path, sys.O_RDWR|sys.O_NONBLOCK, 0)
	if err != nil {
		return nil, codec.NewError(codec.PlatformFailure, "device.Open", err)
	}

	d := &Device{path: path, fd: fd, config: config{inputQueueDepth: 8}}
	for _, o := range options {
		o(&d.config)
	}

	c, err := v4l2.GetCapability(fd)
	if err != nil {
		v4l2.CloseDevice(fd)
		return nil, codec.NewError(codec.PlatformFailure, "device.Open: query capability", err)
	}
	d.cap = c

	if !c.IsStreamingSupported || !c.IsVideoM2MMultiplanarSupported {
		v4l2.CloseDevice(fd)
		return nil, codec.NewError(codec.PlatformFailure, "device.Open",
			v4l2.ErrorUnsupportedFeature)
	}

	efd, err := sys.Eventfd(0, sys.EFD_NONBLOCK|sys.EFD_CLOEXEC)
	if err != nil {
		v4l2.CloseDevice(fd)
		return nil, codec.NewError(codec.PlatformFailure, "device.Open: eventfd", err)
	}
	d.interruptFD = efd

	fmt := v4l2.PixFormatMPlane{PixelFormat: inputFourCC, NumPlanes: 1}
	if _, err := v4l2.SetPixFormatMPlane(fd, v4l2.BufTypeVideoOutputMPlane, fmt); err != nil {
		sys.Close(efd)
		v4l2.CloseDevice(fd)
		return nil, codec.NewError(codec.PlatformFailure, "device.Open: set output format", err)
	}

	return d, nil
}

// Close releases the device fd and the interrupt eventfd.
func (d *Device) Close() error {
	sys.Close(d.interruptFD)
	return v4l2.CloseDevice(d.fd)
}

// Name returns the filesystem path this Device was opened from.
func (d *Device) Name() string { return d.path }

// Fd returns the underlying device file descriptor.
func (d *Device) Fd() uintptr { return d.fd }

// Capability returns the capability struct queried at Open time.
func (d *Device) Capability() v4l2.Capability { return d.cap }

// InputQueueDepth is the configured (or default) OUTPUT-queue slot count.
func (d *Device) InputQueueDepth() uint32 { return d.config.inputQueueDepth }

// Ioctl is a transparent pass-through to the underlying ioctl syscall,
// matching "issue ioctls" responsibility for callers (profile
// probing, control queries) that need a raw escape hatch.
func (d *Device) Ioctl(req, arg uintptr) error {
	return v4l2.RawIoctl(d.fd, req, arg)
}

// SetDevicePollInterrupt wakes a blocked Poll call by writing to the
// interrupt eventfd.
func (d *Device) SetDevicePollInterrupt() error {
	d.interrupted = true
	return sys.Write(d.interruptFD, []byte{1, 0, 0, 0, 0, 0, 0, 0})
}

// ClearDevicePollInterrupt drains the interrupt eventfd so a subsequent
// Poll call blocks normally again.
func (d *Device) ClearDevicePollInterrupt() error {
	d.interrupted = false
	buf := make([]byte, 8)
	_, err := sys.Read(d.interruptFD, buf)
	if err != nil && err != sys.EAGAIN {
		return err
	}
	return nil
}

// Poll blocks on the device fd (POLLIN for CAPTURE readiness, POLLOUT for
// OUTPUT room, POLLPRI for a queued v4l2 event) and on the interrupt
// eventfd simultaneously, returning once either is ready. eventPending
// reports whether a v4l2 event (e.g. V4L2_EVENT_SOURCE_CHANGE) is queued.
func (d *Device) Poll(waitForDevice bool) (eventPending bool, err error) {
	fds := []sys.PollFd{
		{Fd: int32(d.fd), Events: sys.POLLPRI},
		{Fd: int32(d.interruptFD), Events: sys.POLLIN},
	}
	if waitForDevice {
		fds[0].Events |= sys.POLLIN | sys.POLLOUT
	}

	for {
		_, err := sys.Poll(fds, -1)
		if err == sys.EINTR {
			continue
		}
		if err != nil {
			return false, codec.NewError(codec.PlatformFailure, "device.Poll", err)
		}
		break
	}

	if fds[1].Revents&sys.POLLIN != 0 {
		return false, nil
	}
	eventPending = fds[0].Revents&sys.POLLPRI != 0
	return eventPending, nil
}

// SupportedDecodeProfiles probes each candidate fourcc by S_FMT'ing the
// OUTPUT queue at 16x16 then at 32768x32768 and reading back the extents
// the driver actually accepted as the min/max decodable resolution.
// A fourcc the driver rejects outright is skipped, not an error.
func (d *Device) SupportedDecodeProfiles(fourccs []v4l2.FourCCType) ([]codec.SupportedProfile, error) {
	var out []codec.SupportedProfile
	for _, fourcc := range fourccs {
		minFmt, err := v4l2.SetPixFormatMPlane(d.fd, v4l2.BufTypeVideoOutputMPlane,
			v4l2.PixFormatMPlane{Width: 16, Height: 16, PixelFormat: fourcc, NumPlanes: 1})
		if err != nil {
			continue
		}
		maxFmt, err := v4l2.SetPixFormatMPlane(d.fd, v4l2.BufTypeVideoOutputMPlane,
			v4l2.PixFormatMPlane{Width: 32768, Height: 32768, PixelFormat: fourcc, NumPlanes: 1})
		if err != nil {
			continue
		}

		profile := codec.ProfileFromFourCC(fourcc)
		if profile == codec.ProfileUnknown {
			continue
		}
		out = append(out, codec.SupportedProfile{
			Profile: profile,
			MinSize: codec.CodedSize{Width: int(minFmt.Width), Height: int(minFmt.Height)},
			MaxSize: codec.CodedSize{Width: int(maxFmt.Width), Height: int(maxFmt.Height)},
		})
	}
	return out, nil
}

// SubscribeSourceChangeEvent subscribes to V4L2_EVENT_SOURCE_CHANGE on the
// CAPTURE queue so a resolution change surfaces as a dequeuable event.
func (d *Device) SubscribeSourceChangeEvent() error {
	return v4l2.SubscribeEvent(d.fd, v4l2.NewEventSubscription(v4l2.EventSourceChange))
}

// DequeueEvent dequeues one pending v4l2 event (VIDIOC_DQEVENT).
func (d *Device) DequeueEvent() (*v4l2.Event, error) {
	return v4l2.DequeueEvent(d.fd)
}
