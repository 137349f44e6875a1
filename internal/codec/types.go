package codec

import "fmt"

// Profile is a tagged enum over the supported codecs and their profile
// variants. It maps 1:1 to a v4l2 fourcc via FourCC.
type Profile int

const (
	ProfileUnknown Profile = iota

	H264Baseline
	H264Main
	H264Extended
	H264High
	H264High10
	H264High422
	H264High444Predictive

	VP8

	VP9Profile0
)

func (p Profile) String() string {
	switch p {
	case H264Baseline:
		return "h264-baseline"
	case H264Main:
		return "h264-main"
	case H264Extended:
		return "h264-extended"
	case H264High:
		return "h264-high"
	case H264High10:
		return "h264-high10"
	case H264High422:
		return "h264-high422"
	case H264High444Predictive:
		return "h264-high444-predictive"
	case VP8:
		return "vp8"
	case VP9Profile0:
		return "vp9-profile0"
	default:
		return "unknown"
	}
}

// ProfileFromString parses the names produced by Profile.String; it
// returns ProfileUnknown for anything else (used by config validation).
func ProfileFromString(s string) Profile {
	for p := H264Baseline; p <= VP9Profile0; p++ {
		if p.String() == s {
			return p
		}
	}
	return ProfileUnknown
}

// IsH264 reports whether the profile belongs to the H264 family.
func (p Profile) IsH264() bool {
	return p >= H264Baseline && p <= H264High444Predictive
}

// CodedSize is an integer width x height as stored by the hardware,
// which may exceed the VisibleRect.
type CodedSize struct {
	Width  int
	Height int
}

func (s CodedSize) Empty() bool { return s.Width <= 0 || s.Height <= 0 }

func (s CodedSize) String() string { return fmt.Sprintf("%dx%d", s.Width, s.Height) }

// Rect is an axis-aligned rectangle with an (x, y) origin.
type Rect struct {
	X, Y          int
	Width, Height int
}

func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// VisibleRect validates that r sits within coded and that its origin is
// (0, 0). A violation is non-fatal: callers should fall back to the full
// coded rectangle rather than treat it as an error.
func VisibleRect(coded CodedSize, r Rect) Rect {
	if r.Empty() {
		return Rect{Width: coded.Width, Height: coded.Height}
	}
	if r.X != 0 || r.Y != 0 {
		return Rect{Width: coded.Width, Height: coded.Height}
	}
	if r.Width > coded.Width || r.Height > coded.Height {
		return Rect{Width: coded.Width, Height: coded.Height}
	}
	return r
}

// PixelFormat is the negotiated output pixel format. Only NV12 is
// supported by the decode core.
type PixelFormat int

const (
	PixelFormatUnknown PixelFormat = iota
	PixelFormatNV12
)

// VideoFormat is the currently negotiated output shape.
type VideoFormat struct {
	PixelFormat   PixelFormat
	MinNumBuffers int
	CodedSize     CodedSize
	VisibleRect   Rect
}

// VideoFramePlane describes one plane of an imported graphic buffer.
type VideoFramePlane struct {
	Offset int
	Stride int
	Size   int
}

// FlushBufferID is the reserved sentinel bitstream id designating an
// empty flush token.
const FlushBufferID int32 = -2
