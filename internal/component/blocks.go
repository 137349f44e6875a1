package component

import (
	"go.uber.org/zap"

	"github.com/projectceladon/v4l2-codec2/internal/bufferpool"
	"github.com/projectceladon/v4l2-codec2/internal/codec"
	"github.com/projectceladon/v4l2-codec2/internal/metrics"
)

// BlockState is a GraphicBlockInfo's position in the block lifecycle.
type BlockState int

const (
	OwnedByComponent BlockState = iota
	OwnedByAccelerator
	OwnedByClient
)

func (s BlockState) String() string {
	switch s {
	case OwnedByComponent:
		return "owned_by_component"
	case OwnedByAccelerator:
		return "owned_by_accelerator"
	case OwnedByClient:
		return "owned_by_client"
	default:
		return "unknown"
	}
}

// GraphicBlockInfo is Component's view of one output buffer.
type GraphicBlockInfo struct {
	BlockID     int32
	State       BlockState
	Block       *bufferpool.GraphicBlock
	PixelFormat codec.PixelFormat
	Planes      []codec.VideoFramePlane
}

// ProvidePictureBuffers implements vda.Client: allocate count blocks from
// the pool, register them as GraphicBlockInfo{OwnedByComponent}, then
// import each into VDA and move it to OwnedByAccelerator.
func (c *Component) ProvidePictureBuffers(count int, format codec.PixelFormat, coded codec.CodedSize) {
	c.worker.PostTask(func() {
		c.blocks = make([]GraphicBlockInfo, 0, count)
		for i := 0; i < count; i++ {
			block, err := c.pool.FetchGraphicBlock()
			if err != nil {
				if bufferpool.IsTimedOut(err) {
					continue // transient; the next provide/resize pass will retry
				}
				if bufferpool.IsBadState(err) {
					c.runBlockRefresh()
					return
				}
				c.logger.Error("fetch graphic block failed", zap.Error(err))
				continue
			}
			id := int32(len(c.blocks))
			c.blocks = append(c.blocks, GraphicBlockInfo{
				BlockID:     id,
				State:       OwnedByComponent,
				Block:       block,
				PixelFormat: format,
			})
		}

		buffers := make([]codec.PictureBuffer, len(c.blocks))
		for i, b := range c.blocks {
			buffers[i] = codec.PictureBuffer{ID: b.BlockID, Size: coded}
		}
		c.vda.AssignPictureBuffers(buffers)

		for i := range c.blocks {
			info := &c.blocks[i]
			c.vda.ImportBufferForPicture(info.BlockID, info.Block.Buffer.DmaBufFDs, info.Block.Buffer.PlaneOffsets)
			info.State = OwnedByAccelerator
		}
	})
}

// DismissPictureBuffer implements vda.Client: drop Component's bookkeeping
// for a block that the accelerator no longer needs (resolution change).
func (c *Component) DismissPictureBuffer(pictureID int32) {
	c.worker.PostTask(func() {
		if int(pictureID) < 0 || int(pictureID) >= len(c.blocks) {
			return
		}
		c.blocks[pictureID] = GraphicBlockInfo{}
	})
}

// PictureReady implements vda.Client: attach the named block to the
// pending work whose bitstream id matches, wrapped in a handle whose
// Release posts returnOutputBuffer, and move the block to OwnedByClient.
func (c *Component) PictureReady(pic codec.Picture) {
	c.worker.PostTask(func() {
		if int(pic.PictureID) < 0 || int(pic.PictureID) >= len(c.blocks) {
			return
		}
		info := &c.blocks[pic.PictureID]
		info.State = OwnedByClient
		metrics.RecordPictureReady()

		w := c.findPendingByBitstreamID(pic.BitstreamID)
		if w == nil {
			return
		}
		pictureID := pic.PictureID
		handle := &codec.OutputBlockHandle{
			BlockID: pictureID,
			Release: func() { c.returnOutputBuffer(pictureID) },
		}
		w.Worklets = append(w.Worklets, codec.Worklet{
			Timestamp: w.Input.Timestamp,
			Picture:   handle,
		})
		w.WorkletsProcessed++
		c.reportFinishedHeadWorks()
	})
}

// returnOutputBuffer sends a client-dropped block back to
// OwnedByComponent and hands it back to VDA, unless the component is mid
// resolution-change, in which case it is dropped silently.
func (c *Component) returnOutputBuffer(pictureID int32) {
	c.worker.PostTask(func() {
		if int(pictureID) < 0 || int(pictureID) >= len(c.blocks) {
			return
		}
		info := &c.blocks[pictureID]
		if info.Block == nil {
			return // dismissed during a resolution change; drop silently
		}
		info.State = OwnedByComponent
		c.vda.ReusePictureBuffer(pictureID)
		info.State = OwnedByAccelerator
	})
}

// NotifyEndOfBitstreamBuffer implements vda.Client: the input buffer
// reference for the matching work has been dropped by the accelerator.
func (c *Component) NotifyEndOfBitstreamBuffer(bitstreamID int32) {
	c.worker.PostTask(func() {
		w := c.findPendingByBitstreamID(bitstreamID)
		if w != nil {
			w.Input.Buffers = nil
			if w.Input.Flags&codec.WorkFlagEmptyOutput != 0 && len(w.Worklets) == 0 {
				w.WorkletsProcessed = 1
			}
		}
		c.reportFinishedHeadWorks()
	})
}

func (c *Component) findPendingByBitstreamID(bitstreamID int32) *codec.Work {
	for _, w := range c.pending {
		if int32(w.Input.FrameIndex&0x7fffffff) == bitstreamID {
			return w
		}
	}
	return nil
}
