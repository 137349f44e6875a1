package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/projectceladon/v4l2-codec2/device"
	"github.com/projectceladon/v4l2-codec2/internal/bufferpool"
	"github.com/projectceladon/v4l2-codec2/internal/codec"
	"github.com/projectceladon/v4l2-codec2/internal/component"
	internalconfig "github.com/projectceladon/v4l2-codec2/internal/config"
	"github.com/projectceladon/v4l2-codec2/internal/vda"
)

var (
	runDevicePath string
	runInputDir   string
	runTimeout    time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run <config.yaml>",
	Short: "Drive a Component end to end against a directory of access units",
	Long: `run loads a decode session configuration, opens a device, and feeds
every file under --input (one pre-segmented bitstream access unit per
file, fed in filename order) through a Component, printing each callback
as it arrives. It does not demux or parse a container: splitting an
elementary stream into access units is the caller's job.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runDevicePath, "device", "/dev/video0", "decode device node")
	runCmd.Flags().StringVar(&runInputDir, "input", "", "directory of access-unit files, fed in filename order")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 30*time.Second, "time to wait for drain to complete")
}

func runRun(cmd *cobra.Command, args []string) error {
	if runInputDir == "" {
		return fmt.Errorf("run: --input is required")
	}

	cfg, err := internalconfig.Load(args[0])
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	profile := codec.ProfileFromString(cfg.Profile)

	logger := newLogger()
	defer logger.Sync()

	dev, err := device.Open(runDevicePath, profile.FourCC())
	if err != nil {
		return fmt.Errorf("open %s: %w", runDevicePath, err)
	}
	defer dev.Close()

	driver := vda.New(dev, profile)
	pool := bufferpool.New(logger)
	comp := component.New(driver, pool, profile, logger)

	if err := comp.Load(); err != nil {
		return fmt.Errorf("component load: %w", err)
	}

	listener := &cliListener{logger: logger, done: make(chan struct{})}
	comp.SetListener(listener)

	if err := comp.Start(); err != nil {
		return fmt.Errorf("component start: %w", err)
	}

	files, err := accessUnitFiles(runInputDir)
	if err != nil {
		return err
	}

	handles := make([]*os.File, 0, len(files))
	defer func() {
		for _, f := range handles {
			f.Close()
		}
	}()

	works := make([]*codec.Work, 0, len(files))
	for i, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return fmt.Errorf("open access unit %s: %w", name, err)
		}
		handles = append(handles, f)

		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("stat access unit %s: %w", name, err)
		}

		works = append(works, &codec.Work{
			Input: codec.WorkInput{
				Timestamp:  time.Now(),
				FrameIndex: uint64(i),
				Buffers: []codec.Buffer{{
					DmaBuf: int(f.Fd()),
					Offset: 0,
					Size:   int(info.Size()),
				}},
			},
		})
	}

	fmt.Fprintf(os.Stdout, "queuing %d access unit(s) from %s\n", len(works), runInputDir)
	if err := comp.Queue(works); err != nil {
		return fmt.Errorf("queue: %w", err)
	}
	if err := comp.Drain(component.DrainWithEOS); err != nil {
		return fmt.Errorf("drain: %w", err)
	}

	select {
	case <-listener.done:
	case <-time.After(runTimeout):
		fmt.Fprintln(os.Stderr, "run: timed out waiting for drain to complete")
	}

	if err := comp.Stop(); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	fmt.Fprintln(os.Stdout, "done")
	return nil
}

// accessUnitFiles lists the regular files directly under dir, sorted by
// name, which fixes the decode order.
func accessUnitFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, filepath.Join(dir, e.Name()))
	}
	sort.Strings(names)
	return names, nil
}

// cliListener implements component.Listener, printing each callback and
// signaling done once it sees the EOS-flagged work that a DrainWithEOS
// produces.
type cliListener struct {
	logger *zap.Logger
	done   chan struct{}
	closed bool
}

func (l *cliListener) OnWorkDone(w *codec.Work) {
	hasPicture := len(w.Worklets) > 0 && w.Worklets[0].Picture != nil
	l.logger.Info("work done",
		zap.Uint64("frame_index", w.Input.FrameIndex),
		zap.Bool("has_picture", hasPicture),
		zap.Bool("eos", w.Input.Flags&codec.WorkFlagEOS != 0),
	)
	if w.Input.Flags&codec.WorkFlagEOS != 0 && !l.closed {
		l.closed = true
		close(l.done)
	}
}

func (l *cliListener) OnError(kind codec.ErrorKind) {
	l.logger.Error("component error", zap.String("kind", kind.String()))
	if !l.closed {
		l.closed = true
		close(l.done)
	}
}
