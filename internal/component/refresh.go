package component

import "go.uber.org/zap"

// runBlockRefresh implements producer-change handling: once
// FetchGraphicBlock has reported bad state, walk every GraphicBlockInfo,
// ask the pool to migrate its slot onto the new producer, and re-import
// the surviving blocks into VDA. Client-owned blocks are simply cancelled
// on the new producer (willCancel=true); component/accelerator-owned
// blocks are rebuilt as live GraphicBlocks.
func (c *Component) runBlockRefresh() {
	for i := range c.blocks {
		info := &c.blocks[i]
		if info.Block == nil {
			continue
		}
		willCancel := info.State == OwnedByClient
		newBlock, err := c.pool.UpdateGraphicBlock(info.Block.Slot, willCancel)
		if err != nil {
			c.logger.Warn("block refresh failed", zap.Int32("block_id", info.BlockID), zap.Error(err))
			continue
		}
		if willCancel {
			continue // stays in client bookkeeping; no live block to re-import
		}
		info.Block = newBlock
	}

	for i := range c.blocks {
		info := &c.blocks[i]
		if info.Block == nil || info.State == OwnedByClient {
			continue
		}
		c.vda.ImportBufferForPicture(info.BlockID, info.Block.Buffer.DmaBufFDs, info.Block.Buffer.PlaneOffsets)
		info.State = OwnedByAccelerator
	}
}
