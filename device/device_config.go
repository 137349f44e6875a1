package device

import (
	"github.com/projectceladon/v4l2-codec2/v4l2"
)

// config holds device configuration parameters, managed by functional options.
type config struct {
	inputQueueDepth uint32
}

// Option configures a Device at Open time.
type Option func(*config)

// WithInputQueueDepth sets the OUTPUT-queue (compressed input) slot count
// reported by Device.InputQueueDepth. The default is 8. The VDA does not
// read this value: its OUTPUT-queue REQBUFS always asks for its own fixed
// pool of 8 buffers.
func WithInputQueueDepth(n uint32) Option {
	return func(c *config) {
		c.inputQueueDepth = n
	}
}

// InputBufferSize returns the OUTPUT-queue sizeimage for a coded size: 1 MiB
// for resolutions at or below 1080p, 4 MiB above.
func InputBufferSize(coded v4l2.PixFormatMPlane) uint32 {
	const oneMiB = 1 << 20
	const fourMiB = 4 << 20
	if coded.Width*coded.Height > 1920*1088 {
		return fourMiB
	}
	return oneMiB
}
