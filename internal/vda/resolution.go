package vda

import (
	"github.com/projectceladon/v4l2-codec2/internal/codec"
	"github.com/projectceladon/v4l2-codec2/v4l2"
)

// startResolutionChange stops the CAPTURE queue, dismisses every
// previously-assigned picture buffer, and re-arms format discovery so the
// next service pass requests new outputs at the new coded size.
func (v *VDA) startResolutionChange() {
	if v.outputStreaming {
		if err := v4l2.StreamOffType(v.dev.Fd(), v4l2.BufTypeVideoCaptureMPlane); err != nil {
			v.fail(codec.PlatformFailure, "vda.startResolutionChange: streamoff capture", err)
			return
		}
		v.outputStreaming = false
	}

	for id := range v.outputRecords {
		v.client.DismissPictureBuffer(int32(id))
	}
	v.outputRecords = nil
	v.freeOutputs = nil
	v.codedSize = codec.CodedSize{}
	v.state = StateChangingResolution
}
