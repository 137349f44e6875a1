package v4l2

import (
	"context"
	"fmt"
)

// StartStreamLoop issues a streaming request for the device and sets up
// a loop to capture incoming buffers from the device.
func StartStreamLoop(ctx context.Context, dev StreamingDevice) (chan []byte, error) {
	if err := dev.Start(ctx); err != nil {
		return nil, fmt.Errorf("stream loop: driver stream on: %w", err)
	}

	dataChan := make(chan []byte, dev.BufferCount())

	go func() {
		defer close(dataChan)
		for {
			select {
			case frame, ok := <-dev.GetOutput():
				if !ok {
					return
				}
				select {
				case dataChan <- frame:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return dataChan, nil
}

// StopStreamLoop unmaps allocated IO memory and signals the device to stop streaming.
func StopStreamLoop(dev StreamingDevice) error {
	if dev.Buffers() == nil {
		return fmt.Errorf("stop loop: failed to stop loop: buffers uninitialized")
	}
	if err := dev.Stop(); err != nil {
		return fmt.Errorf("stop loop: stream off: %w", err)
	}
	return nil
}
