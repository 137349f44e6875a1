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

// SelectionTarget (v4l2_sel_tgt) identifies which rectangle VIDIOC_G_SELECTION
// reports. uses SelectionTargetCompose to read the decoder's visible
// rectangle, falling back to VIDIOC_G_CROP on drivers that predate selection.
type SelectionTarget = uint32

const (
	SelectionTargetCrop SelectionTarget = C.V4L2_SEL_TGT_CROP
	SelectionTargetCropDefault SelectionTarget = C.V4L2_SEL_TGT_CROP_DEFAULT
	SelectionTargetCropBounds SelectionTarget = C.V4L2_SEL_TGT_CROP_BOUNDS
	SelectionTargetCompose SelectionTarget = C.V4L2_SEL_TGT_COMPOSE
)

// GetSelection issues VIDIOC_G_SELECTION for bufType/target and returns the
// rectangle the driver reports.
func GetSelection(fd uintptr, bufType BufType, target SelectionTarget) (Rect, error) {
	var sel C.struct_v4l2_selection
	sel._type = C.uint(bufType)
	sel.target = C.uint(target)

	if err := send(fd, C.VIDIOC_G_SELECTION, uintptr(unsafe.Pointer(&sel))); err != nil {
 return Rect{}, fmt.Errorf("get selection: %w", err)
	}

	r := *(*C.struct_v4l2_rect)(unsafe.Pointer(&sel.r))
	return Rect{
 Left: int32(r.left),
 Top: int32(r.top),
 Width: uint32(r.width),
 Height: uint32(r.height),
	}, nil
}

// GetCrop issues the legacy VIDIOC_G_CROP for bufType, used as a fallback
// when a driver does not implement VIDIOC_G_SELECTION.
func GetCrop(fd uintptr, bufType BufType) (Rect, error) {
	var crop C.struct_v4l2_crop
	crop._type = C.uint(bufType)

	if err := send(fd, C.VIDIOC_G_CROP, uintptr(unsafe.Pointer(&crop))); err != nil {
 return Rect{}, fmt.Errorf("get crop: %w", err)
	}

	r := *(*C.struct_v4l2_rect)(unsafe.Pointer(&crop.c))
	return Rect{
 Left: int32(r.left),
 Top: int32(r.top),
 Width: uint32(r.width),
 Height: uint32(r.height),
	}, nil
}

// GetVisibleRect reads the decoder's current visible rectangle: it tries
// G_SELECTION(COMPOSE) first and falls back to G_CROP, matching and.
func GetVisibleRect(fd uintptr, bufType BufType) (Rect, error) {
	r, err := GetSelection(fd, bufType, SelectionTargetCompose)
	if err == nil {
 return r, nil
	}
	return GetCrop(fd, bufType)
}
