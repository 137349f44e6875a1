package v4l2

/*
#cgo linux CFLAGS: -I ${SRCDIR}/../include/
#include <linux/videodev2.h>
*/
import "C"

import (
	"fmt"
	"time"
	"unsafe"

	sys "golang.org/x/sys/unix"
)

// BufFlag (v4l2_buffer.flags) reports buffer state and content hints back
// from the driver. The base package never defined these despite the test
// suite referencing them; they are added here because flush
// detection depends directly on BufFlagLast.
type BufFlag = uint32

const (
	BufFlagMapped BufFlag = C.V4L2_BUF_FLAG_MAPPED
	BufFlagQueued BufFlag = C.V4L2_BUF_FLAG_QUEUED
	BufFlagDone BufFlag = C.V4L2_BUF_FLAG_DONE
	BufFlagKeyFrame BufFlag = C.V4L2_BUF_FLAG_KEYFRAME
	BufFlagPFrame BufFlag = C.V4L2_BUF_FLAG_PFRAME
	BufFlagBFrame BufFlag = C.V4L2_BUF_FLAG_BFRAME
	BufFlagError BufFlag = C.V4L2_BUF_FLAG_ERROR
	BufFlagInRequest BufFlag = C.V4L2_BUF_FLAG_IN_REQUEST
	BufFlagTimeCode BufFlag = C.V4L2_BUF_FLAG_TIMECODE
	BufFlagM2MHoldCaptureBuf BufFlag = C.V4L2_BUF_FLAG_M2M_HOLD_CAPTURE_BUF
	BufFlagPrepared BufFlag = C.V4L2_BUF_FLAG_PREPARED
	BufFlagNoCacheInvalidate BufFlag = C.V4L2_BUF_FLAG_NO_CACHE_INVALIDATE
	BufFlagNoCacheClean BufFlag = C.V4L2_BUF_FLAG_NO_CACHE_CLEAN
	// BufFlagLast marks the zero-byte CAPTURE buffer that ends a flush
	//.
	BufFlagLast BufFlag = C.V4L2_BUF_FLAG_LAST
	BufFlagRequestFD BufFlag = C.V4L2_BUF_FLAG_REQUEST_FD
	BufFlagTimestampMask BufFlag = C.V4L2_BUF_FLAG_TIMESTAMP_MASK
	BufFlagTimestampUnknown BufFlag = C.V4L2_BUF_FLAG_TIMESTAMP_UNKNOWN
	BufFlagTimestampMonotonic BufFlag = C.V4L2_BUF_FLAG_TIMESTAMP_MONOTONIC
	BufFlagTimestampCopy BufFlag = C.V4L2_BUF_FLAG_TIMESTAMP_COPY
	BufFlagTimestampSourceMask BufFlag = C.V4L2_BUF_FLAG_TSTAMP_SRC_MASK
	BufFlagTimestampSourceEOF BufFlag = C.V4L2_BUF_FLAG_TSTAMP_SRC_EOF
	BufFlagTimestampSourceSOE BufFlag = C.V4L2_BUF_FLAG_TSTAMP_SRC_SOE
)

// MPlanePayload is one plane of a multi-planar buffer on the wire
// (v4l2_plane, DMABUF memory variant: Info carries the dma-buf fd).
type MPlanePayload struct {
	BytesUsed uint32
	Length uint32
	DataOffset uint32
	FD int32
}

// MPlaneBuffer mirrors the fields of v4l2_buffer this package needs for a
// multi-planar, DMABUF-memory queue: the OUTPUT queue (compressed input)
// and CAPTURE queue (decoded frames) described in.
type MPlaneBuffer struct {
	Index uint32
	Type BufType
	Flags BufFlag
	Field FieldType
	TimestampSec int64 // carries the bitstream id verbatim
	TimestampUsec int64
	Sequence uint32
	Memory StreamType
	Planes []MPlanePayload
	RequestFD int32
}

// QueueMPlaneBuffer issues VIDIOC_QBUF for a multi-planar DMABUF buffer.
// bitstreamID is stashed in timestamp.tv_sec, which the driver copies
// verbatim to the matching CAPTURE buffer ( input-format contract).
func QueueMPlaneBuffer(fd uintptr, bufType BufType, index uint32, bitstreamID int64, planes []MPlanePayload) (MPlaneBuffer, error) {
	return doMPlaneBufIoctl(fd, uintptr(C.VIDIOC_QBUF), bufType, index, bitstreamID, planes)
}

// DequeueMPlaneBuffer issues VIDIOC_DQBUF for bufType, returning the
// dequeued buffer's metadata including the driver-filled plane byte counts
// and the round-tripped bitstream id in TimestampSec.
func DequeueMPlaneBuffer(fd uintptr, bufType BufType, memory StreamType, maxPlanes int) (MPlaneBuffer, error) {
	var v4l2Buf C.struct_v4l2_buffer
	v4l2Buf._type = C.uint(bufType)
	v4l2Buf.memory = C.uint(memory)
	v4l2Buf.length = C.uint(maxPlanes)

	cPlanes := make([]C.struct_v4l2_plane, maxPlanes)
	setBufferPlanesPtr(&v4l2Buf, cPlanes)

	if err := send(fd, C.VIDIOC_DQBUF, uintptr(unsafe.Pointer(&v4l2Buf))); err != nil {
 return MPlaneBuffer{}, fmt.Errorf("dequeue mplane buffer: %w", err)
	}

	out := MPlaneBuffer{
 Index: uint32(v4l2Buf.index),
 Type: uint32(v4l2Buf._type),
 Flags: uint32(v4l2Buf.flags),
 Field: FieldType(v4l2Buf.field),
 TimestampSec: (*(*sys.Timeval)(unsafe.Pointer(&v4l2Buf.timestamp))).Sec,
 Sequence: uint32(v4l2Buf.sequence),
 Memory: uint32(v4l2Buf.memory),
	}
	n := int(v4l2Buf.length)
	if n > maxPlanes {
 n = maxPlanes
	}
	for i := 0; i < n; i++ {
 out.Planes = append(out.Planes, MPlanePayload{
 BytesUsed: uint32(cPlanes[i].bytesused),
 Length: uint32(cPlanes[i].length),
 DataOffset: uint32(cPlanes[i].data_offset),
 })
	}
	return out, nil
}

func doMPlaneBufIoctl(fd uintptr, ioctlReq uintptr, bufType BufType, index uint32, bitstreamID int64, planes []MPlanePayload) (MPlaneBuffer, error) {
	var v4l2Buf C.struct_v4l2_buffer
	v4l2Buf._type = C.uint(bufType)
	v4l2Buf.memory = C.uint(StreamTypeDMABuf)
	v4l2Buf.index = C.uint(index)
	v4l2Buf.length = C.uint(len(planes))
	setTimevalSec(&v4l2Buf, bitstreamID)

	cPlanes := make([]C.struct_v4l2_plane, len(planes))
	for i, p := range planes {
 cPlanes[i].bytesused = C.uint(p.BytesUsed)
 cPlanes[i].length = C.uint(p.Length)
 cPlanes[i].data_offset = C.uint(p.DataOffset)
 setPlaneFD(&cPlanes[i], p.FD)
	}
	setBufferPlanesPtr(&v4l2Buf, cPlanes)

	if err := send(fd, ioctlReq, uintptr(unsafe.Pointer(&v4l2Buf))); err != nil {
 return MPlaneBuffer{}, fmt.Errorf("queue mplane buffer: %w", err)
	}
	return MPlaneBuffer{Index: index, Type: bufType}, nil
}

func setTimevalSec(buf *C.struct_v4l2_buffer, sec int64) {
	tv := (*sys.Timeval)(unsafe.Pointer(&buf.timestamp))
	tv.Sec = sec
}

func setBufferPlanesPtr(buf *C.struct_v4l2_buffer, planes []C.struct_v4l2_plane) {
	if len(planes) == 0 {
 return
	}
	mPtr := (**C.struct_v4l2_plane)(unsafe.Pointer(&buf.m[0]))
	*mPtr = &planes[0]
}

func setPlaneFD(p *C.struct_v4l2_plane, fd int32) {
	mPtr := (*C.int)(unsafe.Pointer(&p.m[0]))
	*mPtr = C.int(fd)
}

// StreamOnType issues VIDIOC_STREAMON for a specific queue (OUTPUT or
// CAPTURE); unlike the base StreamOn this does not assume VideoCapture.
func StreamOnType(fd uintptr, bufType BufType) error {
	t := bufType
	if err := send(fd, C.VIDIOC_STREAMON, uintptr(unsafe.Pointer(&t))); err != nil {
 return fmt.Errorf("stream on (type=%d): %w", bufType, err)
	}
	return nil
}

// StreamOffType issues VIDIOC_STREAMOFF for a specific queue.
func StreamOffType(fd uintptr, bufType BufType) error {
	t := bufType
	if err := send(fd, C.VIDIOC_STREAMOFF, uintptr(unsafe.Pointer(&t))); err != nil {
 return fmt.Errorf("stream off (type=%d): %w", bufType, err)
	}
	return nil
}

// InitMPlaneBuffers issues VIDIOC_REQBUFS for a DMABUF-memory, multi-planar
// queue; the kernel never allocates memory for dma-buf import, this
// only negotiates the slot count.
func InitMPlaneBuffers(fd uintptr, bufType BufType, count uint32) (RequestBuffers, error) {
	var req C.struct_v4l2_requestbuffers
	req.count = C.uint(count)
	req._type = C.uint(bufType)
	req.memory = C.uint(StreamTypeDMABuf)

	if err := send(fd, C.VIDIOC_REQBUFS, uintptr(unsafe.Pointer(&req))); err != nil {
 return RequestBuffers{}, fmt.Errorf("request mplane buffers: %w", err)
	}
	return *(*RequestBuffers)(unsafe.Pointer(&req)), nil
}

func timevalToDuration(sec, usec int64) time.Duration {
	return time.Duration(sec)*time.Second + time.Duration(usec)*time.Microsecond
}
