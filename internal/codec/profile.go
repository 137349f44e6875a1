package codec

import "github.com/projectceladon/v4l2-codec2/v4l2"

// FourCC maps a Profile to the v4l2 pixel format the kernel device expects
// on the OUTPUT queue. The mapping must be bit-exact: H264 family to
// V4L2_PIX_FMT_H264[_SLICE], VP8 family to V4L2_PIX_FMT_VP8[_FRAME], VP9
// profile 0 to V4L2_PIX_FMT_VP9[_FRAME].
func (p Profile) FourCC() v4l2.FourCCType {
	switch {
	case p.IsH264():
		return v4l2.PixelFmtH264
	case p == VP8:
		return v4l2.PixelFmtVP8
	case p == VP9Profile0:
		return v4l2.PixelFmtVP9
	default:
		return 0
	}
}

// SliceFourCC returns the stateless "slice"/"frame" variant fourcc used by
// drivers that require per-slice or per-frame submission instead of a raw
// elementary stream.
func (p Profile) SliceFourCC() v4l2.FourCCType {
	switch {
	case p.IsH264():
		return v4l2.PixelFmtH264Slice
	case p == VP8:
		return v4l2.PixelFmtVP8Frame
	case p == VP9Profile0:
		return v4l2.PixelFmtVP9Frame
	default:
		return 0
	}
}

// ProfileFromFourCC reverses FourCC/SliceFourCC for the subset of formats
// this package understands; it returns ProfileUnknown for anything else.
// VP8/VP9 collapse onto their single supported profile since the kernel
// fourcc does not distinguish finer-grained profile variants.
func ProfileFromFourCC(f v4l2.FourCCType) Profile {
	switch f {
	case v4l2.PixelFmtH264, v4l2.PixelFmtH264Slice:
		return H264High
	case v4l2.PixelFmtVP8, v4l2.PixelFmtVP8Frame:
		return VP8
	case v4l2.PixelFmtVP9, v4l2.PixelFmtVP9Frame:
		return VP9Profile0
	default:
		return ProfileUnknown
	}
}

// SupportedProfile reports one decodable (profile, resolution-range) pair,
// as discovered by Device.SupportedDecodeProfiles.
type SupportedProfile struct {
	Profile Profile
	MinSize CodedSize
	MaxSize CodedSize
}
