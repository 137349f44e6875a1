// Package config loads and validates the decode session's flat typed
// configuration record: a plain struct with per-field validators rather
// than a dynamic parameter store.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/projectceladon/v4l2-codec2/internal/codec"
)

// Config is the decode session's typed parameter record.
type Config struct {
	Profile            string `mapstructure:"profile" yaml:"profile"`
	VisibleWidth       int    `mapstructure:"visible_width" yaml:"visible_width"`
	VisibleHeight      int    `mapstructure:"visible_height" yaml:"visible_height"`
	MaxWidthHint       int    `mapstructure:"max_width_hint" yaml:"max_width_hint"`
	MaxHeightHint      int    `mapstructure:"max_height_hint" yaml:"max_height_hint"`
	BlockPoolID        int    `mapstructure:"block_pool_id" yaml:"block_pool_id"`
	AllocatorIDs       []int  `mapstructure:"allocator_ids" yaml:"allocator_ids"`
	IntraRefreshPeriod int    `mapstructure:"intra_refresh_period" yaml:"intra_refresh_period"`
	BitrateBPS         int    `mapstructure:"bitrate_bps" yaml:"bitrate_bps"`
	FrameRateFPS       int    `mapstructure:"framerate_fps" yaml:"framerate_fps"`
	KeyFramePeriod     int    `mapstructure:"key_frame_period" yaml:"key_frame_period"`
	RequestKeyFrame    bool   `mapstructure:"request_key_frame" yaml:"request_key_frame"`
}

// Default returns a Config with conservative, always-valid defaults.
func Default() *Config {
	return &Config{
		Profile:        "h264-high",
		VisibleWidth:   1920,
		VisibleHeight:  1080,
		MaxWidthHint:   1920,
		MaxHeightHint:  1080,
		BlockPoolID:    0,
		FrameRateFPS:   30,
		KeyFramePeriod: 0,
	}
}

// Load reads path (YAML) and environment overrides (prefix V4L2CODEC2)
// into a Config seeded with Default.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("V4L2CODEC2")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type validator func(*Config) error

var validators = []validator{
	validateProfile,
	validateVisibleSize,
	validateMaxHint,
	validateIntraRefreshPeriod,
	validateBitrate,
	validateFrameRate,
	validateKeyFramePeriod,
}

// Validate runs every field validator, returning the first failure as an
// InvalidArgument-kind codec.Error.
func (c *Config) Validate() error {
	for _, v := range validators {
		if err := v(c); err != nil {
			return err
		}
	}
	return nil
}

func validateProfile(c *Config) error {
	if codec.ProfileFromString(c.Profile) == codec.ProfileUnknown {
		return codec.NewError(codec.InvalidArgument, "config.Validate: profile", fmt.Errorf("unrecognized profile %q", c.Profile))
	}
	return nil
}

func validateVisibleSize(c *Config) error {
	if c.VisibleWidth <= 0 || c.VisibleHeight <= 0 {
		return codec.NewError(codec.InvalidArgument, "config.Validate: visible size", fmt.Errorf("%dx%d", c.VisibleWidth, c.VisibleHeight))
	}
	return nil
}

func validateMaxHint(c *Config) error {
	if c.MaxWidthHint > 0 && c.MaxWidthHint < c.VisibleWidth {
		return codec.NewError(codec.InvalidArgument, "config.Validate: max_width_hint below visible_width", nil)
	}
	if c.MaxHeightHint > 0 && c.MaxHeightHint < c.VisibleHeight {
		return codec.NewError(codec.InvalidArgument, "config.Validate: max_height_hint below visible_height", nil)
	}
	return nil
}

func validateIntraRefreshPeriod(c *Config) error {
	if c.IntraRefreshPeriod < 0 {
		return codec.NewError(codec.InvalidArgument, "config.Validate: intra_refresh_period", nil)
	}
	return nil
}

func validateBitrate(c *Config) error {
	if c.BitrateBPS < 0 {
		return codec.NewError(codec.InvalidArgument, "config.Validate: bitrate_bps", nil)
	}
	return nil
}

func validateFrameRate(c *Config) error {
	if c.FrameRateFPS <= 0 {
		return codec.NewError(codec.InvalidArgument, "config.Validate: framerate_fps", nil)
	}
	return nil
}

func validateKeyFramePeriod(c *Config) error {
	if c.KeyFramePeriod < 0 {
		return codec.NewError(codec.InvalidArgument, "config.Validate: key_frame_period", nil)
	}
	return nil
}
