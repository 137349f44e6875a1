package codec

import "testing"

func TestProfileStringRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
	}{
		{"h264 baseline", H264Baseline},
		{"h264 main", H264Main},
		{"h264 extended", H264Extended},
		{"h264 high", H264High},
		{"h264 high10", H264High10},
		{"h264 high422", H264High422},
		{"h264 high444 predictive", H264High444Predictive},
		{"vp8", VP8},
		{"vp9 profile0", VP9Profile0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProfileFromString(tt.profile.String())
			if got != tt.profile {
				t.Errorf("ProfileFromString(%q) = %v, want %v", tt.profile.String(), got, tt.profile)
			}
		})
	}
}

func TestProfileFromStringUnknown(t *testing.T) {
	tests := []string{"", "mpeg2", "h264", "H264-High"}
	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			if got := ProfileFromString(s); got != ProfileUnknown {
				t.Errorf("ProfileFromString(%q) = %v, want ProfileUnknown", s, got)
			}
		})
	}
}

func TestProfileIsH264(t *testing.T) {
	tests := []struct {
		profile Profile
		want    bool
	}{
		{H264Baseline, true},
		{H264High444Predictive, true},
		{VP8, false},
		{VP9Profile0, false},
		{ProfileUnknown, false},
	}
	for _, tt := range tests {
		if got := tt.profile.IsH264(); got != tt.want {
			t.Errorf("%v.IsH264() = %v, want %v", tt.profile, got, tt.want)
		}
	}
}

func TestVisibleRect(t *testing.T) {
	coded := CodedSize{Width: 1920, Height: 1088}

	tests := []struct {
		name string
		rect Rect
		want Rect
	}{
		{"empty falls back to coded", Rect{}, Rect{Width: 1920, Height: 1088}},
		{"non-origin falls back to coded", Rect{X: 1, Y: 0, Width: 1920, Height: 1080}, Rect{Width: 1920, Height: 1088}},
		{"oversized falls back to coded", Rect{Width: 4096, Height: 2160}, Rect{Width: 1920, Height: 1088}},
		{"valid rect passes through", Rect{Width: 1920, Height: 1080}, Rect{Width: 1920, Height: 1080}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VisibleRect(coded, tt.rect); got != tt.want {
				t.Errorf("VisibleRect(%v, %v) = %v, want %v", coded, tt.rect, got, tt.want)
			}
		})
	}
}

func TestCodedSizeEmpty(t *testing.T) {
	tests := []struct {
		size CodedSize
		want bool
	}{
		{CodedSize{Width: 0, Height: 0}, true},
		{CodedSize{Width: -1, Height: 10}, true},
		{CodedSize{Width: 16, Height: 16}, false},
	}
	for _, tt := range tests {
		if got := tt.size.Empty(); got != tt.want {
			t.Errorf("%v.Empty() = %v, want %v", tt.size, got, tt.want)
		}
	}
}
