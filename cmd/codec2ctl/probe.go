package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/projectceladon/v4l2-codec2/device"
	"github.com/projectceladon/v4l2-codec2/v4l2"
)

// candidateFourCCs lists every fourcc codec.ProfileFromFourCC recognizes;
// probe tries each and reports the ones the device accepts.
var candidateFourCCs = []v4l2.FourCCType{
	v4l2.PixelFmtH264,
	v4l2.PixelFmtH264Slice,
	v4l2.PixelFmtVP8,
	v4l2.PixelFmtVP8Frame,
	v4l2.PixelFmtVP9,
	v4l2.PixelFmtVP9Frame,
}

var probeCmd = &cobra.Command{
	Use:   "probe <device>",
	Short: "List the decode profiles and resolution ranges a device supports",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		dev, err := device.Open(path, v4l2.PixelFmtH264)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer dev.Close()

		profiles, err := dev.SupportedDecodeProfiles(candidateFourCCs)
		if err != nil {
			return fmt.Errorf("probe %s: %w", path, err)
		}

		if len(profiles) == 0 {
			fmt.Fprintf(os.Stdout, "%s: no recognized decode profiles\n", path)
			return nil
		}

		fmt.Fprintf(os.Stdout, "%s: %d supported profile(s)\n", path, len(profiles))
		for _, p := range profiles {
			fmt.Fprintf(os.Stdout, "  %-28s %dx%d.. %dx%d\n",
				p.Profile.String(), p.MinSize.Width, p.MinSize.Height, p.MaxSize.Width, p.MaxSize.Height)
		}
		return nil
	},
}
