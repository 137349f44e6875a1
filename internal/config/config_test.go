package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v, want nil", err)
	}
}

func TestValidate_TableDriven(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid default", func(c *Config) {}, false},
		{"unknown profile", func(c *Config) { c.Profile = "made-up-codec" }, true},
		{"zero visible width", func(c *Config) { c.VisibleWidth = 0 }, true},
		{"negative visible height", func(c *Config) { c.VisibleHeight = -1 }, true},
		{"max width hint below visible width", func(c *Config) {
			c.VisibleWidth = 1920
			c.MaxWidthHint = 1280
		}, true},
		{"max height hint below visible height", func(c *Config) {
			c.VisibleHeight = 1080
			c.MaxHeightHint = 720
		}, true},
		{"zero max hint is unset, not a violation", func(c *Config) {
			c.MaxWidthHint = 0
			c.MaxHeightHint = 0
		}, false},
		{"negative intra refresh period", func(c *Config) { c.IntraRefreshPeriod = -1 }, true},
		{"negative bitrate", func(c *Config) { c.BitrateBPS = -1 }, true},
		{"zero framerate", func(c *Config) { c.FrameRateFPS = 0 }, true},
		{"negative key frame period", func(c *Config) { c.KeyFramePeriod = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("Validate() = nil, want an error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestLoad_ReadsYAMLAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
profile: vp9-profile0
visible_width: 1280
visible_height: 720
max_width_hint: 1920
max_height_hint: 1080
framerate_fps: 60
key_frame_period: 30
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("WriteFile() = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}
	if cfg.Profile != "vp9-profile0" {
		t.Fatalf("Profile = %q, want vp9-profile0", cfg.Profile)
	}
	if cfg.VisibleWidth != 1280 || cfg.VisibleHeight != 720 {
		t.Fatalf("visible size = %dx%d, want 1280x720", cfg.VisibleWidth, cfg.VisibleHeight)
	}
	if cfg.FrameRateFPS != 60 {
		t.Fatalf("FrameRateFPS = %d, want 60", cfg.FrameRateFPS)
	}
}

func TestLoad_RejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
profile: not-a-real-profile
visible_width: 1280
visible_height: 720
framerate_fps: 30
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("WriteFile() = %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("Load() = nil, want the profile validation error")
	}
}

func TestLoad_MissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("Load() = nil, want a read error")
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
profile: h264-high
visible_width: 1280
visible_height: 720
framerate_fps: 30
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("WriteFile() = %v", err)
	}

	t.Setenv("V4L2CODEC2_FRAMERATE_FPS", "24")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}
	if cfg.FrameRateFPS != 24 {
		t.Fatalf("FrameRateFPS = %d, want 24 (env override)", cfg.FrameRateFPS)
	}
}
