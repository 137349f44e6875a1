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

// DecoderCommand (v4l2_decoder_cmd.cmd) identifies the in-band command sent
// to a stateful m2m decoder's OUTPUT queue.
type DecoderCommand = uint32

const (
	// DecoderCmdStart resumes decoding after a flush (V4L2_DEC_CMD_START).
	DecoderCmdStart DecoderCommand = C.V4L2_DEC_CMD_START
	// DecoderCmdStop flushes: drains the input queue, then emits a
	// zero-byte CAPTURE buffer flagged BufFlagLast (V4L2_DEC_CMD_STOP).
	DecoderCmdStop DecoderCommand = C.V4L2_DEC_CMD_STOP
)

// DecoderCmdStopFlagImmediately asks the driver to stop without draining
// pending OUTPUT buffers; unused by this package (flush always drains).
const DecoderCmdStopFlagImmediately uint32 = C.V4L2_DEC_CMD_STOP_IMMEDIATELY

// DecoderCmd issues VIDIOC_DECODER_CMD.
func DecoderCmd(fd uintptr, cmd DecoderCommand, flags uint32) error {
	var dc C.struct_v4l2_decoder_cmd
	dc.cmd = C.uint(cmd)
	dc.flags = C.uint(flags)

	if err := send(fd, C.VIDIOC_DECODER_CMD, uintptr(unsafe.Pointer(&dc))); err != nil {
 return fmt.Errorf("decoder cmd %d: %w", cmd, err)
	}
	return nil
}

// TryDecoderCmd issues VIDIOC_TRY_DECODER_CMD, used to probe whether the
// driver supports a command without actually issuing it.
func TryDecoderCmd(fd uintptr, cmd DecoderCommand, flags uint32) error {
	var dc C.struct_v4l2_decoder_cmd
	dc.cmd = C.uint(cmd)
	dc.flags = C.uint(flags)

	if err := send(fd, C.VIDIOC_TRY_DECODER_CMD, uintptr(unsafe.Pointer(&dc))); err != nil {
 return fmt.Errorf("try decoder cmd %d: %w", cmd, err)
	}
	return nil
}
