// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

// #include <stdlib.h>
// #include <string.h>
// #include <proc.h>
import "C"

import (
	"unsafe"

	"github.com/gviegas/hybrid/driver"
)

// cmdBuffer implements driver.CmdBuffer.
type cmdBuffer struct {
	d     *Driver
	qfam  C.uint32_t
	pool  C.VkCommandPool
	cb    C.VkCommandBuffer
	begun bool
}

// NewCmdBuffer creates a new command buffer.
// Its pool is created using the family of q.
func (d *Driver) NewCmdBuffer(q driver.Queue) (driver.CmdBuffer, error) {
	return d.newCmdBuffer(d.qfam[q])
}

// newCmdBuffer creates a new command buffer.
// The command buffer handle is allocated from an exclusive command pool.
// It must only be submitted to d.ques[qfam].
func (d *Driver) newCmdBuffer(qfam C.uint32_t) (*cmdBuffer, error) {
	var pool C.VkCommandPool
	poolInfo := C.VkCommandPoolCreateInfo{
		sType:            C.VK_STRUCTURE_TYPE_COMMAND_POOL_CREATE_INFO,
		flags:            C.VK_COMMAND_POOL_CREATE_RESET_COMMAND_BUFFER_BIT,
		queueFamilyIndex: qfam,
	}
	err := checkResult(C.vkCreateCommandPool(d.dev, &poolInfo, nil, &pool))
	if err != nil {
		return nil, err
	}
	var cb C.VkCommandBuffer
	cbInfo := C.VkCommandBufferAllocateInfo{
		sType:              C.VK_STRUCTURE_TYPE_COMMAND_BUFFER_ALLOCATE_INFO,
		commandPool:        pool,
		level:              C.VK_COMMAND_BUFFER_LEVEL_PRIMARY,
		commandBufferCount: 1,
	}
	err = checkResult(C.vkAllocateCommandBuffers(d.dev, &cbInfo, &cb))
	if err != nil {
		C.vkDestroyCommandPool(d.dev, pool, nil)
		return nil, err
	}
	return &cmdBuffer{
		d:    d,
		qfam: qfam,
		pool: pool,
		cb:   cb,
	}, nil
}

// Begin prepares the command buffer for recording.
func (cb *cmdBuffer) Begin() error {
	if cb.begun {
		return nil
	}
	info := C.VkCommandBufferBeginInfo{
		sType: C.VK_STRUCTURE_TYPE_COMMAND_BUFFER_BEGIN_INFO,
		flags: C.VK_COMMAND_BUFFER_USAGE_ONE_TIME_SUBMIT_BIT,
	}
	err := checkResult(C.vkBeginCommandBuffer(cb.cb, &info))
	if err != nil {
		return err
	}
	cb.begun = true
	return nil
}

// BeginPass begins a render pass.
func (cb *cmdBuffer) BeginPass(width, height int, color []driver.ColorTarget, ds *driver.DSTarget) {
	info := (*C.VkRenderingInfo)(C.calloc(1, C.sizeof_VkRenderingInfo))
	defer C.free(unsafe.Pointer(info))
	info.sType = C.VK_STRUCTURE_TYPE_RENDERING_INFO
	info.renderArea.extent = C.VkExtent2D{
		width:  C.uint32_t(width),
		height: C.uint32_t(height),
	}
	info.layerCount = 1
	if n := len(color); n > 0 {
		p := (*C.VkRenderingAttachmentInfo)(C.calloc(C.size_t(n), C.sizeof_VkRenderingAttachmentInfo))
		defer C.free(unsafe.Pointer(p))
		s := unsafe.Slice(p, n)
		for i := range color {
			s[i] = C.VkRenderingAttachmentInfo{
				sType:       C.VK_STRUCTURE_TYPE_RENDERING_ATTACHMENT_INFO,
				imageView:   color[i].Color.(*imageView).view,
				imageLayout: C.VK_IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL,
				loadOp:      convLoadOp(color[i].Load),
				storeOp:     convStoreOp(color[i].Store),
			}
			clr := [4]C.float{
				C.float(color[i].Clear[0]),
				C.float(color[i].Clear[1]),
				C.float(color[i].Clear[2]),
				C.float(color[i].Clear[3]),
			}
			raw := (*byte)(unsafe.Pointer(&clr[0]))
			copy(s[i].clearValue[:], unsafe.Slice(raw, unsafe.Sizeof(clr)))
		}
		info.colorAttachmentCount = C.uint32_t(n)
		info.pColorAttachments = p
	}
	if ds != nil {
		p := (*C.VkRenderingAttachmentInfo)(C.calloc(1, C.sizeof_VkRenderingAttachmentInfo))
		defer C.free(unsafe.Pointer(p))
		*p = C.VkRenderingAttachmentInfo{
			sType:       C.VK_STRUCTURE_TYPE_RENDERING_ATTACHMENT_INFO,
			imageView:   ds.DS.(*imageView).view,
			imageLayout: C.VK_IMAGE_LAYOUT_DEPTH_ATTACHMENT_OPTIMAL,
			loadOp:      convLoadOp(ds.Load),
			storeOp:     convStoreOp(ds.Store),
		}
		clr := C.VkClearDepthStencilValue{depth: C.float(ds.Clear)}
		raw := (*byte)(unsafe.Pointer(&clr))
		copy(p.clearValue[:], unsafe.Slice(raw, unsafe.Sizeof(clr)))
		info.pDepthAttachment = p
	}
	C.vkCmdBeginRendering(cb.cb, info)
}

// EndPass ends the current render pass.
func (cb *cmdBuffer) EndPass() {
	C.vkCmdEndRendering(cb.cb)
}

// SetPipeline sets the pipeline.
func (cb *cmdBuffer) SetPipeline(pl driver.Pipeline) {
	var p *pipeline
	switch x := pl.(type) {
	case *pipeline:
		p = x
	case *rayPipeline:
		p = &x.pipeline
	}
	C.vkCmdBindPipeline(cb.cb, p.bp, p.pl)
}

// SetViewport sets the bounds of one or more viewports.
func (cb *cmdBuffer) SetViewport(vp []driver.Viewport) {
	if len(vp) == 0 {
		return
	}
	s := make([]C.VkViewport, len(vp))
	for i := range s {
		s[i] = C.VkViewport{
			x:        C.float(vp[i].X),
			y:        C.float(vp[i].Y),
			width:    C.float(vp[i].Width),
			height:   C.float(vp[i].Height),
			minDepth: C.float(vp[i].Znear),
			maxDepth: C.float(vp[i].Zfar),
		}
	}
	C.vkCmdSetViewport(cb.cb, 0, C.uint32_t(len(s)), &s[0])
}

// SetScissor sets the rectangles of one or more viewport scissors.
func (cb *cmdBuffer) SetScissor(sciss []driver.Scissor) {
	if len(sciss) == 0 {
		return
	}
	s := make([]C.VkRect2D, len(sciss))
	for i := range s {
		s[i] = C.VkRect2D{
			offset: C.VkOffset2D{
				x: C.int32_t(sciss[i].X),
				y: C.int32_t(sciss[i].Y),
			},
			extent: C.VkExtent2D{
				width:  C.uint32_t(sciss[i].Width),
				height: C.uint32_t(sciss[i].Height),
			},
		}
	}
	C.vkCmdSetScissor(cb.cb, 0, C.uint32_t(len(s)), &s[0])
}

// SetVertexBuf sets one or more vertex buffers.
func (cb *cmdBuffer) SetVertexBuf(start int, buf []driver.Buffer, off []int64) {
	if len(buf) == 0 {
		return
	}
	b := make([]C.VkBuffer, len(buf))
	o := make([]C.VkDeviceSize, len(buf))
	for i := range b {
		b[i] = buf[i].(*buffer).buf
		o[i] = C.VkDeviceSize(off[i])
	}
	C.vkCmdBindVertexBuffers(cb.cb, C.uint32_t(start), C.uint32_t(len(b)), &b[0], &o[0])
}

// SetIndexBuf sets the index buffer.
func (cb *cmdBuffer) SetIndexBuf(format driver.IndexFmt, buf driver.Buffer, off int64) {
	C.vkCmdBindIndexBuffer(cb.cb, buf.(*buffer).buf, C.VkDeviceSize(off), convIndexFmt(format))
}

// SetDescTableGraph sets a descriptor table range for graphics pipelines.
func (cb *cmdBuffer) SetDescTableGraph(table driver.DescTable, start int, heapCopy []int) {
	cb.setDescTable(table, start, heapCopy, C.VK_PIPELINE_BIND_POINT_GRAPHICS)
}

// SetDescTableRay sets a descriptor table range for ray tracing pipelines.
func (cb *cmdBuffer) SetDescTableRay(table driver.DescTable, start int, heapCopy []int) {
	cb.setDescTable(table, start, heapCopy, C.VK_PIPELINE_BIND_POINT_RAY_TRACING_KHR)
}

func (cb *cmdBuffer) setDescTable(table driver.DescTable, start int, heapCopy []int, bp C.VkPipelineBindPoint) {
	if len(heapCopy) == 0 {
		return
	}
	desc := table.(*descTable)
	set := make([]C.VkDescriptorSet, len(heapCopy))
	for i := range set {
		set[i] = desc.h[start+i].sets[heapCopy[i]]
	}
	C.vkCmdBindDescriptorSets(cb.cb, bp, desc.layout, C.uint32_t(start), C.uint32_t(len(set)), &set[0], 0, nil)
}

// Draw draws primitives.
func (cb *cmdBuffer) Draw(vertCount, instCount, baseVert, baseInst int) {
	nvert := C.uint32_t(vertCount)
	ninst := C.uint32_t(instCount)
	bvert := C.uint32_t(baseVert)
	binst := C.uint32_t(baseInst)
	C.vkCmdDraw(cb.cb, nvert, ninst, bvert, binst)
}

// DrawIndexed draws indexed primitives.
func (cb *cmdBuffer) DrawIndexed(idxCount, instCount, baseIdx, vertOff, baseInst int) {
	nidx := C.uint32_t(idxCount)
	ninst := C.uint32_t(instCount)
	bidx := C.uint32_t(baseIdx)
	voff := C.int32_t(vertOff)
	binst := C.uint32_t(baseInst)
	C.vkCmdDrawIndexed(cb.cb, nidx, ninst, bidx, voff, binst)
}

// TraceRays dispatches rays.
func (cb *cmdBuffer) TraceRays(st *driver.ShaderTable, width, height, depth int) {
	p := (*C.VkStridedDeviceAddressRegionKHR)(C.malloc(4 * C.sizeof_VkStridedDeviceAddressRegionKHR))
	defer C.free(unsafe.Pointer(p))
	s := unsafe.Slice(p, 4)
	for i, r := range [4]driver.ShaderRegion{st.RayGen, st.Miss, st.Hit, st.Callable} {
		s[i] = C.VkStridedDeviceAddressRegionKHR{
			deviceAddress: C.VkDeviceAddress(r.Addr),
			stride:        C.VkDeviceSize(r.Stride),
			size:          C.VkDeviceSize(r.Size),
		}
	}
	C.vkCmdTraceRaysKHR(cb.cb, &s[0], &s[1], &s[2], &s[3], C.uint32_t(width), C.uint32_t(height), C.uint32_t(depth))
}

// CopyBuffer copies data between buffers.
func (cb *cmdBuffer) CopyBuffer(param *driver.BufferCopy) {
	cpy := C.VkBufferCopy{
		srcOffset: C.VkDeviceSize(param.FromOff),
		dstOffset: C.VkDeviceSize(param.ToOff),
		size:      C.VkDeviceSize(param.Size),
	}
	C.vkCmdCopyBuffer(cb.cb, param.From.(*buffer).buf, param.To.(*buffer).buf, 1, &cpy)
}

// CopyBufToImg copies data from a buffer to an image.
// The image must be in the LCopyDst layout.
func (cb *cmdBuffer) CopyBufToImg(param *driver.BufImgCopy) {
	buf := param.Buf.(*buffer)
	img := param.Img.(*image)
	cpy := C.VkBufferImageCopy{
		bufferOffset:      C.VkDeviceSize(param.BufOff),
		bufferRowLength:   C.uint32_t(param.Stride[0]),
		bufferImageHeight: C.uint32_t(param.Stride[1]),
		imageSubresource: C.VkImageSubresourceLayers{
			aspectMask:     img.subres.aspectMask,
			mipLevel:       C.uint32_t(param.Level),
			baseArrayLayer: C.uint32_t(param.Layer),
			layerCount:     1,
		},
		imageOffset: C.VkOffset3D{
			x: C.int32_t(param.ImgOff.X),
			y: C.int32_t(param.ImgOff.Y),
			z: C.int32_t(param.ImgOff.Z),
		},
		imageExtent: C.VkExtent3D{
			width:  C.uint32_t(param.Size.Width),
			height: C.uint32_t(param.Size.Height),
			depth:  C.uint32_t(max(param.Size.Depth, 1)),
		},
	}
	layout := C.VkImageLayout(C.VK_IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL)
	C.vkCmdCopyBufferToImage(cb.cb, buf.buf, img.img, layout, 1, &cpy)
}

// Fill fills a buffer range with copies of a byte value.
func (cb *cmdBuffer) Fill(buf driver.Buffer, off int64, value byte, size int64) {
	val := C.uint32_t(value)
	val |= val<<24 | val<<16 | val<<8
	C.vkCmdFillBuffer(cb.cb, buf.(*buffer).buf, C.VkDeviceSize(off), C.VkDeviceSize(size), val)
}

// BuildAccel builds an acceleration structure.
func (cb *cmdBuffer) BuildAccel(b *driver.AccelBuild) {
	bi, free := newBuildInfo(b)
	defer free()
	bi.info.mode = C.VK_BUILD_ACCELERATION_STRUCTURE_MODE_BUILD_KHR
	bi.info.dstAccelerationStructure = b.Dst.(*accelStruct).as
	bi.info.scratchData = devAddr(b.Scratch)
	C.vkCmdBuildAccelerationStructuresKHR(cb.cb, 1, bi.info, &bi.ranges)
}

// CopyAccel copies an acceleration structure.
func (cb *cmdBuffer) CopyAccel(from, to driver.AccelStruct, compact bool) {
	info := C.VkCopyAccelerationStructureInfoKHR{
		sType: C.VK_STRUCTURE_TYPE_COPY_ACCELERATION_STRUCTURE_INFO_KHR,
		src:   from.(*accelStruct).as,
		dst:   to.(*accelStruct).as,
		mode:  C.VK_COPY_ACCELERATION_STRUCTURE_MODE_CLONE_KHR,
	}
	if compact {
		info.mode = C.VK_COPY_ACCELERATION_STRUCTURE_MODE_COMPACT_KHR
	}
	C.vkCmdCopyAccelerationStructureKHR(cb.cb, &info)
}

// WriteCompactedSize writes the compacted sizes of acceleration
// structures to a query pool.
func (cb *cmdBuffer) WriteCompactedSize(as []driver.AccelStruct, qp driver.QueryPool, first int) {
	if len(as) == 0 {
		return
	}
	s := make([]C.VkAccelerationStructureKHR, len(as))
	for i := range s {
		s[i] = as[i].(*accelStruct).as
	}
	typ := C.VkQueryType(C.VK_QUERY_TYPE_ACCELERATION_STRUCTURE_COMPACTED_SIZE_KHR)
	C.vkCmdWriteAccelerationStructuresPropertiesKHR(cb.cb, C.uint32_t(len(s)), &s[0], typ, qp.(*queryPool).pool, C.uint32_t(first))
}

// ResetQueries resets queries of a query pool.
func (cb *cmdBuffer) ResetQueries(qp driver.QueryPool, first, count int) {
	C.vkCmdResetQueryPool(cb.cb, qp.(*queryPool).pool, C.uint32_t(first), C.uint32_t(count))
}

// Barrier inserts a number of global barriers in the command buffer.
func (cb *cmdBuffer) Barrier(b []driver.Barrier) {
	if len(b) == 0 {
		return
	}
	p := (*C.VkMemoryBarrier2)(C.calloc(C.size_t(len(b)), C.sizeof_VkMemoryBarrier2))
	defer C.free(unsafe.Pointer(p))
	s := unsafe.Slice(p, len(b))
	for i := range b {
		s[i] = C.VkMemoryBarrier2{
			sType:         C.VK_STRUCTURE_TYPE_MEMORY_BARRIER_2,
			srcStageMask:  convSync(b[i].SyncBefore),
			srcAccessMask: convAccess(b[i].AccessBefore),
			dstStageMask:  convSync(b[i].SyncAfter),
			dstAccessMask: convAccess(b[i].AccessAfter),
		}
	}
	dep := C.VkDependencyInfo{
		sType:              C.VK_STRUCTURE_TYPE_DEPENDENCY_INFO,
		memoryBarrierCount: C.uint32_t(len(b)),
		pMemoryBarriers:    p,
	}
	C.vkCmdPipelineBarrier2(cb.cb, &dep)
}

// Transition inserts a number of image layout transitions in the
// command buffer.
func (cb *cmdBuffer) Transition(t []driver.Transition) {
	if len(t) == 0 {
		return
	}
	p := (*C.VkImageMemoryBarrier2)(C.calloc(C.size_t(len(t)), C.sizeof_VkImageMemoryBarrier2))
	defer C.free(unsafe.Pointer(p))
	s := unsafe.Slice(p, len(t))
	for i := range t {
		v := t[i].IView.(*imageView)
		s[i] = C.VkImageMemoryBarrier2{
			sType:               C.VK_STRUCTURE_TYPE_IMAGE_MEMORY_BARRIER_2,
			srcStageMask:        convSync(t[i].SyncBefore),
			srcAccessMask:       convAccess(t[i].AccessBefore),
			dstStageMask:        convSync(t[i].SyncAfter),
			dstAccessMask:       convAccess(t[i].AccessAfter),
			oldLayout:           convLayout(t[i].LayoutBefore),
			newLayout:           convLayout(t[i].LayoutAfter),
			srcQueueFamilyIndex: C.VK_QUEUE_FAMILY_IGNORED,
			dstQueueFamilyIndex: C.VK_QUEUE_FAMILY_IGNORED,
			image:               v.i.img,
			subresourceRange:    v.subres,
		}
	}
	dep := C.VkDependencyInfo{
		sType:                   C.VK_STRUCTURE_TYPE_DEPENDENCY_INFO,
		imageMemoryBarrierCount: C.uint32_t(len(t)),
		pImageMemoryBarriers:    p,
	}
	C.vkCmdPipelineBarrier2(cb.cb, &dep)
}

// End ends command recording and prepares the command buffer
// for execution.
// If it fails, the command buffer is reset.
func (cb *cmdBuffer) End() error {
	if !cb.begun {
		return nil
	}
	cb.begun = false
	if err := checkResult(C.vkEndCommandBuffer(cb.cb)); err != nil {
		cb.Reset()
		return err
	}
	return nil
}

// Reset discards all recorded commands from the command buffer.
func (cb *cmdBuffer) Reset() error {
	err := checkResult(C.vkResetCommandBuffer(cb.cb, 0))
	if err != nil {
		return err
	}
	cb.begun = false
	return nil
}

// Destroy destroys the command buffer.
func (cb *cmdBuffer) Destroy() {
	if cb == nil {
		return
	}
	if cb.d != nil {
		// The command buffer may still be pending execution.
		cb.d.qmus[cb.qfam].Lock()
		C.vkQueueWaitIdle(cb.d.ques[cb.qfam])
		cb.d.qmus[cb.qfam].Unlock()
		C.vkDestroyCommandPool(cb.d.dev, cb.pool, nil)
	}
	*cb = cmdBuffer{}
}

// convLoadOp converts a driver.LoadOp to a VkAttachmentLoadOp.
func convLoadOp(op driver.LoadOp) C.VkAttachmentLoadOp {
	switch op {
	case driver.LDontCare:
		return C.VK_ATTACHMENT_LOAD_OP_DONT_CARE
	case driver.LClear:
		return C.VK_ATTACHMENT_LOAD_OP_CLEAR
	case driver.LLoad:
		return C.VK_ATTACHMENT_LOAD_OP_LOAD
	}

	// Expected to be unreachable.
	return ^C.VkAttachmentLoadOp(0)
}

// convStoreOp converts a driver.StoreOp to a VkAttachmentStoreOp.
func convStoreOp(op driver.StoreOp) C.VkAttachmentStoreOp {
	switch op {
	case driver.SDontCare:
		return C.VK_ATTACHMENT_STORE_OP_DONT_CARE
	case driver.SStore:
		return C.VK_ATTACHMENT_STORE_OP_STORE
	}

	// Expected to be unreachable.
	return ^C.VkAttachmentStoreOp(0)
}

// convIndexFmt converts a driver.IndexFmt to a VkIndexType.
func convIndexFmt(f driver.IndexFmt) C.VkIndexType {
	switch f {
	case driver.Index16:
		return C.VK_INDEX_TYPE_UINT16
	case driver.Index32:
		return C.VK_INDEX_TYPE_UINT32
	}

	// Expected to be unreachable.
	return ^C.VkIndexType(0)
}

// convSync converts a driver.Sync to a VkPipelineStageFlags2.
func convSync(s driver.Sync) (flags C.VkPipelineStageFlags2) {
	if s == driver.SNone {
		return C.VK_PIPELINE_STAGE_2_NONE
	}
	if s&driver.SAll != 0 {
		return C.VK_PIPELINE_STAGE_2_ALL_COMMANDS_BIT
	}
	if s&driver.SVertexInput != 0 {
		flags |= C.VK_PIPELINE_STAGE_2_VERTEX_INPUT_BIT
	}
	if s&driver.SVertexShading != 0 {
		flags |= C.VK_PIPELINE_STAGE_2_VERTEX_SHADER_BIT
	}
	if s&driver.SFragmentShading != 0 {
		flags |= C.VK_PIPELINE_STAGE_2_FRAGMENT_SHADER_BIT
	}
	if s&driver.SComputeShading != 0 {
		flags |= C.VK_PIPELINE_STAGE_2_COMPUTE_SHADER_BIT
	}
	if s&driver.SColorOutput != 0 {
		flags |= C.VK_PIPELINE_STAGE_2_COLOR_ATTACHMENT_OUTPUT_BIT
	}
	if s&driver.SDSOutput != 0 {
		flags |= C.VK_PIPELINE_STAGE_2_EARLY_FRAGMENT_TESTS_BIT | C.VK_PIPELINE_STAGE_2_LATE_FRAGMENT_TESTS_BIT
	}
	if s&driver.SDraw != 0 {
		flags |= C.VK_PIPELINE_STAGE_2_ALL_GRAPHICS_BIT
	}
	if s&driver.SCopy != 0 {
		flags |= C.VK_PIPELINE_STAGE_2_ALL_TRANSFER_BIT
	}
	if s&driver.SAccelBuild != 0 {
		flags |= C.VK_PIPELINE_STAGE_2_ACCELERATION_STRUCTURE_BUILD_BIT_KHR
	}
	if s&driver.SRayTracing != 0 {
		flags |= C.VK_PIPELINE_STAGE_2_RAY_TRACING_SHADER_BIT_KHR
	}
	return
}

// convAccess converts a driver.Access to a VkAccessFlags2.
func convAccess(a driver.Access) (flags C.VkAccessFlags2) {
	if a&driver.AVertexBufRead != 0 {
		flags |= C.VK_ACCESS_2_VERTEX_ATTRIBUTE_READ_BIT
	}
	if a&driver.AIndexBufRead != 0 {
		flags |= C.VK_ACCESS_2_INDEX_READ_BIT
	}
	if a&driver.AColorRead != 0 {
		flags |= C.VK_ACCESS_2_COLOR_ATTACHMENT_READ_BIT
	}
	if a&driver.AColorWrite != 0 {
		flags |= C.VK_ACCESS_2_COLOR_ATTACHMENT_WRITE_BIT
	}
	if a&driver.ADSRead != 0 {
		flags |= C.VK_ACCESS_2_DEPTH_STENCIL_ATTACHMENT_READ_BIT
	}
	if a&driver.ADSWrite != 0 {
		flags |= C.VK_ACCESS_2_DEPTH_STENCIL_ATTACHMENT_WRITE_BIT
	}
	if a&driver.ACopyRead != 0 {
		flags |= C.VK_ACCESS_2_TRANSFER_READ_BIT
	}
	if a&driver.ACopyWrite != 0 {
		flags |= C.VK_ACCESS_2_TRANSFER_WRITE_BIT
	}
	if a&driver.AShaderRead != 0 {
		flags |= C.VK_ACCESS_2_SHADER_READ_BIT
	}
	if a&driver.AShaderWrite != 0 {
		flags |= C.VK_ACCESS_2_SHADER_WRITE_BIT
	}
	if a&driver.AAccelRead != 0 {
		flags |= C.VK_ACCESS_2_ACCELERATION_STRUCTURE_READ_BIT_KHR
	}
	if a&driver.AAccelWrite != 0 {
		flags |= C.VK_ACCESS_2_ACCELERATION_STRUCTURE_WRITE_BIT_KHR
	}
	if a&driver.AAnyRead != 0 {
		flags |= C.VK_ACCESS_2_MEMORY_READ_BIT
	}
	if a&driver.AAnyWrite != 0 {
		flags |= C.VK_ACCESS_2_MEMORY_WRITE_BIT
	}
	return
}

// convLayout converts a driver.Layout to a VkImageLayout.
func convLayout(l driver.Layout) C.VkImageLayout {
	switch l {
	case driver.LUndefined:
		return C.VK_IMAGE_LAYOUT_UNDEFINED
	case driver.LCommon, driver.LShaderStore:
		return C.VK_IMAGE_LAYOUT_GENERAL
	case driver.LColorTarget:
		return C.VK_IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL
	case driver.LDSTarget:
		return C.VK_IMAGE_LAYOUT_DEPTH_ATTACHMENT_OPTIMAL
	case driver.LDSRead:
		return C.VK_IMAGE_LAYOUT_DEPTH_READ_ONLY_OPTIMAL
	case driver.LCopySrc:
		return C.VK_IMAGE_LAYOUT_TRANSFER_SRC_OPTIMAL
	case driver.LCopyDst:
		return C.VK_IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL
	case driver.LShaderRead:
		return C.VK_IMAGE_LAYOUT_SHADER_READ_ONLY_OPTIMAL
	case driver.LPresent:
		return C.VK_IMAGE_LAYOUT_PRESENT_SRC_KHR
	}

	// Expected to be unreachable.
	return ^C.VkImageLayout(0)
}
