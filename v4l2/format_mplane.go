package v4l2

/*
#cgo linux CFLAGS: -I ${SRCDIR}/../include/
#include <linux/videodev2.h>
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// Multi-planar pixel formats used by the decode OUTPUT/CAPTURE queues.
// See https://www.kernel.org/doc/html/latest/userspace-api/media/v4l/pixfmt-compressed.html
var (
	// PixelFmtH264Slice is the slice-mode H.264 format some stateless decoders expect.
	PixelFmtH264Slice FourCCType = C.V4L2_PIX_FMT_H264_SLICE
	// PixelFmtVP8 is the VP8 elementary-stream fourcc.
	PixelFmtVP8 FourCCType = C.V4L2_PIX_FMT_VP8
	// PixelFmtVP8Frame is the per-frame VP8 fourcc used by some stateless decoders.
	PixelFmtVP8Frame FourCCType = C.V4L2_PIX_FMT_VP8_FRAME
	// PixelFmtVP9 is the VP9 elementary-stream fourcc.
	PixelFmtVP9 FourCCType = C.V4L2_PIX_FMT_VP9
	// PixelFmtVP9Frame is the per-frame VP9 fourcc used by some stateless decoders.
	PixelFmtVP9Frame FourCCType = C.V4L2_PIX_FMT_VP9_FRAME
	// PixelFmtNV12 is the only supported CAPTURE (decoded output) format.
	PixelFmtNV12 FourCCType = C.V4L2_PIX_FMT_NV12
)

// Multi-planar buffer types (v4l2_buf_type), used by m2m decode devices: the
// compressed access units are the OUTPUT queue, decoded frames the CAPTURE
// queue ( terminology: CAPTURE=device->client, OUTPUT=client->device).
const (
	BufTypeVideoCaptureMPlane BufType = C.V4L2_BUF_TYPE_VIDEO_CAPTURE_MPLANE
	BufTypeVideoOutputMPlane BufType = C.V4L2_BUF_TYPE_VIDEO_OUTPUT_MPLANE
)

// MaxPlanes bounds the number of planes this package will marshal per
// buffer; NV12 uses 1 or 2 depending on driver, compressed formats use 1.
const MaxPlanes = 3

// PlanePixFormat describes one plane of a multi-planar format
// (v4l2_plane_pix_format).
type PlanePixFormat struct {
	SizeImage uint32
	BytesPerLine uint32
}

// PixFormatMPlane mirrors v4l2_pix_format_mplane, the format struct used by
// the CAPTURE queue once a multi-planar pixel format has been negotiated.
type PixFormatMPlane struct {
	Width uint32
	Height uint32
	PixelFormat FourCCType
	Field FieldType
	Colorspace ColorspaceType
	NumPlanes uint8
	PlaneFmt [MaxPlanes]PlanePixFormat
	YcbcrEnc YCbCrEncodingType
	Quantization QuantizationType
	XferFunc XferFunctionType
}

func (f PixFormatMPlane) String() string {
	return fmt.Sprintf("%s [%dx%d] planes=%d", PixelFormats[f.PixelFormat], f.Width, f.Height, f.NumPlanes)
}

// GetPixFormatMPlane retrieves the current multi-planar format for bufType
// (VIDIOC_G_FMT). Drivers return EINVAL here before the input stream has
// produced enough data to determine the CAPTURE geometry; that is
// not treated as an error by this function, only by its caller.
func GetPixFormatMPlane(fd uintptr, bufType BufType) (PixFormatMPlane, error) {
	var v4l2Format C.struct_v4l2_format
	v4l2Format._type = C.uint(bufType)

	if err := send(fd, C.VIDIOC_G_FMT, uintptr(unsafe.Pointer(&v4l2Format))); err != nil {
 return PixFormatMPlane{}, fmt.Errorf("get mplane format: %w", err)
	}

	mp := *(*C.struct_v4l2_pix_format_mplane)(unsafe.Pointer(&v4l2Format.fmt[0]))
	out := PixFormatMPlane{
 Width: uint32(mp.width),
 Height: uint32(mp.height),
 PixelFormat: FourCCType(mp.pixelformat),
 Field: FieldType(mp.field),
 Colorspace: ColorspaceType(mp.colorspace),
 NumPlanes: uint8(mp.num_planes),
 YcbcrEnc: YCbCrEncodingType(mp.ycbcr_enc),
 Quantization: QuantizationType(mp.quantization),
 XferFunc: XferFunctionType(mp.xfer_func),
	}
	for i := 0; i < int(out.NumPlanes) && i < MaxPlanes; i++ {
 out.PlaneFmt[i] = PlanePixFormat{
 SizeImage: uint32(mp.plane_fmt[i].sizeimage),
 BytesPerLine: uint32(mp.plane_fmt[i].bytesperline),
 }
	}
	return out, nil
}

// SetPixFormatMPlane sets the multi-planar format for bufType (VIDIOC_S_FMT).
func SetPixFormatMPlane(fd uintptr, bufType BufType, f PixFormatMPlane) (PixFormatMPlane, error) {
	var v4l2Format C.struct_v4l2_format
	v4l2Format._type = C.uint(bufType)

	mp := (*C.struct_v4l2_pix_format_mplane)(unsafe.Pointer(&v4l2Format.fmt[0]))
	mp.width = C.uint(f.Width)
	mp.height = C.uint(f.Height)
	mp.pixelformat = C.uint(f.PixelFormat)
	mp.field = C.uint(f.Field)
	mp.colorspace = C.uint(f.Colorspace)
	mp.num_planes = C.uchar(f.NumPlanes)
	for i := 0; i < int(f.NumPlanes) && i < MaxPlanes; i++ {
 mp.plane_fmt[i].sizeimage = C.uint(f.PlaneFmt[i].SizeImage)
 mp.plane_fmt[i].bytesperline = C.uint(f.PlaneFmt[i].BytesPerLine)
	}

	if err := send(fd, C.VIDIOC_S_FMT, uintptr(unsafe.Pointer(&v4l2Format))); err != nil {
 return PixFormatMPlane{}, fmt.Errorf("set mplane format: %w", err)
	}
	return GetPixFormatMPlane(fd, bufType)
}

// TryPixFormatMPlane probes a format without committing it (VIDIOC_TRY_FMT).
// S_FMT is destructive, TRY_FMT is not, but some drivers only populate
// accurate frame-size bounds on S_FMT, so profile probing
// (Device.SupportedDecodeProfiles in package device) uses S_FMT, not this.
func TryPixFormatMPlane(fd uintptr, bufType BufType, f PixFormatMPlane) (PixFormatMPlane, error) {
	var v4l2Format C.struct_v4l2_format
	v4l2Format._type = C.uint(bufType)

	mp := (*C.struct_v4l2_pix_format_mplane)(unsafe.Pointer(&v4l2Format.fmt[0]))
	mp.width = C.uint(f.Width)
	mp.height = C.uint(f.Height)
	mp.pixelformat = C.uint(f.PixelFormat)
	mp.num_planes = C.uchar(f.NumPlanes)

	if err := send(fd, C.VIDIOC_TRY_FMT, uintptr(unsafe.Pointer(&v4l2Format))); err != nil {
 return PixFormatMPlane{}, fmt.Errorf("try mplane format: %w", err)
	}

	out := PixFormatMPlane{
 Width: uint32(mp.width),
 Height: uint32(mp.height),
 PixelFormat: FourCCType(mp.pixelformat),
 NumPlanes: uint8(mp.num_planes),
	}
	return out, nil
}
