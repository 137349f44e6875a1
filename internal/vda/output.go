package vda

import (
	"errors"

	"github.com/projectceladon/v4l2-codec2/internal/codec"
	"github.com/projectceladon/v4l2-codec2/v4l2"
)

// minDecodedPictureBuffers is a conservative floor for the DPB size used
// when sizing the picture-buffer request; real drivers may require more,
// discovered via V4L2_CID_MIN_BUFFERS_FOR_CAPTURE, but a fixed floor keeps
// this package's device requirements to a small ioctl set.
const minDecodedPictureBuffers = 4

// discoverFormat does G_FMT on CAPTURE; an EINVAL return means "need more
// stream", which is not an error. The visible rectangle comes from
// G_SELECTION(COMPOSE) falling back to G_CROP; a non-zero origin or empty
// rect falls back to the coded rect. Some drivers never emit
// SOURCE_CHANGE, so this is also polled after every CAPTURE DQBUF rather
// than solely on that event.
func (v *VDA) discoverFormat() bool {
	fd := v.dev.Fd()
	fmtMp, err := v4l2.GetPixFormatMPlane(fd, v4l2.BufTypeVideoCaptureMPlane)
	if err != nil {
		if errors.Is(err, v4l2.ErrorBadArgument) {
			return false
		}
		v.fail(codec.PlatformFailure, "vda.discoverFormat", err)
		return false
	}
	if fmtMp.Width == 0 || fmtMp.Height == 0 {
		return false
	}

	coded := codec.CodedSize{Width: int(fmtMp.Width), Height: int(fmtMp.Height)}
	rawRect, err := v4l2.GetVisibleRect(fd, v4l2.BufTypeVideoCaptureMPlane)
	var visible codec.Rect
	if err != nil {
		visible = codec.Rect{Width: coded.Width, Height: coded.Height}
	} else {
		visible = codec.VisibleRect(coded, codec.Rect{
			X: int(rawRect.Left), Y: int(rawRect.Top),
			Width: int(rawRect.Width), Height: int(rawRect.Height),
		})
	}

	v.codedSize = coded
	v.visibleRect = visible
	v.pixelFormat = codec.PixelFormatNV12
	v.state = StateAwaitingPictureBuffers

	count := minDecodedPictureBuffers + 3
	v.client.ProvidePictureBuffers(count, v.pixelFormat, coded)
	return true
}

// AssignPictureBuffers forces the driver to adopt the client's coded size
// via S_FMT if it doesn't already match; a resulting visible-rect change
// is a failure, since the gralloc size must not silently reshape the crop.
func (v *VDA) AssignPictureBuffers(buffers []codec.PictureBuffer) {
	v.decoderThread.PostTask(func() { v.assignPictureBuffersTask(buffers) })
}

func (v *VDA) assignPictureBuffersTask(buffers []codec.PictureBuffer) {
	if v.state == StateError || len(buffers) == 0 {
		return
	}
	first := buffers[0]
	if first.Size != v.codedSize {
		newFmt := v4l2.PixFormatMPlane{
			Width: uint32(first.Size.Width), Height: uint32(first.Size.Height),
			PixelFormat: v4l2.PixelFmtNV12, NumPlanes: 1,
		}
		if _, err := v4l2.SetPixFormatMPlane(v.dev.Fd(), v4l2.BufTypeVideoCaptureMPlane, newFmt); err != nil {
			v.fail(codec.PlatformFailure, "vda.AssignPictureBuffers: s_fmt", err)
			return
		}
		rect, err := v4l2.GetVisibleRect(v.dev.Fd(), v4l2.BufTypeVideoCaptureMPlane)
		if err == nil {
			got := codec.Rect{X: int(rect.Left), Y: int(rect.Top), Width: int(rect.Width), Height: int(rect.Height)}
			if got != v.visibleRect && !got.Empty() {
				v.fail(codec.PlatformFailure, "vda.AssignPictureBuffers: visible rect changed by s_fmt", nil)
				return
			}
		}
		v.codedSize = first.Size
	}

	v.outputRecords = make([]codec.OutputRecord, len(buffers))
	v.freeOutputs = nil
	if _, err := v4l2.InitMPlaneBuffers(v.dev.Fd(), v4l2.BufTypeVideoCaptureMPlane, uint32(len(buffers))); err != nil {
		v.fail(codec.PlatformFailure, "vda.AssignPictureBuffers: reqbufs capture", err)
		return
	}
}

// ImportBufferForPicture records the dmabuf fds and plane offsets for
// picture id, pushes it onto free_output_buffers, and transitions
// AwaitingPictureBuffers -> Decoding on the first import.
func (v *VDA) ImportBufferForPicture(id int32, fds []int, planeOffsets []int) {
	v.decoderThread.PostTask(func() { v.importBufferForPictureTask(id, fds, planeOffsets) })
}

func (v *VDA) importBufferForPictureTask(id int32, fds []int, planeOffsets []int) {
	if v.state == StateError {
		return
	}
	if int(id) < 0 || int(id) >= len(v.outputRecords) {
		v.fail(codec.InvalidArgument, "vda.ImportBufferForPicture: bad id", nil)
		return
	}
	v.outputRecords[id] = codec.OutputRecord{
		State: codec.OutputFree, PictureID: id,
		DmaBufFDs: fds, PlaneOffsets: planeOffsets,
	}
	v.freeOutputs = append(v.freeOutputs, int(id))

	if v.state == StateAwaitingPictureBuffers {
		v.state = StateDecoding
	}
	v.enqueueOutputs()
	v.scheduleInput()
}

// enqueueOutputs QBUFs every free output slot with memory=DMABUF, then
// lazily STREAMONs CAPTURE.
func (v *VDA) enqueueOutputs() {
	if len(v.freeOutputs) == 0 {
		return
	}
	wasStreaming := v.outputStreaming
	for _, slot := range v.freeOutputs {
		rec := &v.outputRecords[slot]
		planes := make([]v4l2.MPlanePayload, len(rec.DmaBufFDs))
		for i, fd := range rec.DmaBufFDs {
			planes[i] = v4l2.MPlanePayload{FD: int32(fd)}
		}
		if _, err := v4l2.QueueMPlaneBuffer(v.dev.Fd(), v4l2.BufTypeVideoCaptureMPlane, uint32(slot), 0, planes); err != nil {
			v.fail(codec.PlatformFailure, "vda.enqueueOutputs", err)
			return
		}
		rec.State = codec.OutputAtDevice
	}
	v.freeOutputs = nil
	if !wasStreaming {
		if err := v4l2.StreamOnType(v.dev.Fd(), v4l2.BufTypeVideoCaptureMPlane); err != nil {
			v.fail(codec.PlatformFailure, "vda.enqueueOutputs: streamon capture", err)
			return
		}
		v.outputStreaming = true
	}
}

// ReusePictureBuffer transitions a picture AtClient -> Free, and re-queues
// the slot to the device.
func (v *VDA) ReusePictureBuffer(id int32) {
	v.decoderThread.PostTask(func() {
		if v.state == StateError || int(id) < 0 || int(id) >= len(v.outputRecords) {
			return
		}
		v.outputRecords[id].State = codec.OutputFree
		v.freeOutputs = append(v.freeOutputs, int(id))
		v.enqueueOutputs()
	})
}
