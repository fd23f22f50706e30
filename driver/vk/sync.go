// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

// #include <stdlib.h>
// #include <proc.h>
import "C"

import (
	"errors"
	"unsafe"

	"github.com/gviegas/hybrid/driver"
)

// fence implements driver.Fence.
type fence struct {
	d     *Driver
	fence C.VkFence
}

// NewFence creates a new fence.
func (d *Driver) NewFence(signaled bool) (driver.Fence, error) {
	info := C.VkFenceCreateInfo{
		sType: C.VK_STRUCTURE_TYPE_FENCE_CREATE_INFO,
	}
	if signaled {
		info.flags = C.VK_FENCE_CREATE_SIGNALED_BIT
	}
	f := &fence{d: d}
	if err := checkResult(C.vkCreateFence(d.dev, &info, nil, &f.fence)); err != nil {
		return nil, err
	}
	return f, nil
}

// Wait blocks until the fence is signaled.
func (f *fence) Wait() error {
	return checkResult(C.vkWaitForFences(f.d.dev, 1, &f.fence, C.VK_TRUE, C.UINT64_MAX))
}

// Reset sets the fence to the unsignaled state.
func (f *fence) Reset() error {
	return checkResult(C.vkResetFences(f.d.dev, 1, &f.fence))
}

// Destroy destroys the fence.
func (f *fence) Destroy() {
	if f == nil {
		return
	}
	if f.d != nil {
		C.vkDestroyFence(f.d.dev, f.fence, nil)
	}
	*f = fence{}
}

// semaphore implements driver.Semaphore.
type semaphore struct {
	d   *Driver
	sem C.VkSemaphore
}

// NewSemaphore creates a new binary semaphore.
func (d *Driver) NewSemaphore() (driver.Semaphore, error) {
	info := C.VkSemaphoreCreateInfo{
		sType: C.VK_STRUCTURE_TYPE_SEMAPHORE_CREATE_INFO,
	}
	s := &semaphore{d: d}
	if err := checkResult(C.vkCreateSemaphore(d.dev, &info, nil, &s.sem)); err != nil {
		return nil, err
	}
	return s, nil
}

// Destroy destroys the semaphore.
func (s *semaphore) Destroy() {
	if s == nil {
		return
	}
	if s.d != nil {
		C.vkDestroySemaphore(s.d.dev, s.sem, nil)
	}
	*s = semaphore{}
}

// Submit submits a batch of command buffers to queue q.
// The submission infos are allocated by C since they
// refer to one another.
func (d *Driver) Submit(q driver.Queue, sub []driver.Submission, f driver.Fence) error {
	var fnc C.VkFence
	if f != nil {
		fnc = f.(*fence).fence
	}
	qfam := d.qfam[q]

	var ncb, nsem int
	for i := range sub {
		ncb += len(sub[i].Cmd)
		nsem += len(sub[i].Wait) + len(sub[i].Signal)
		if len(sub[i].Wait) != len(sub[i].WaitAt) {
			return errors.New("vk: mismatched semaphore wait scopes")
		}
		for _, cb := range sub[i].Cmd {
			if cb.(*cmdBuffer).qfam != qfam {
				return errors.New("vk: command buffer submitted to the wrong queue")
			}
		}
	}
	var (
		pinfo *C.VkSubmitInfo2
		pcb   *C.VkCommandBufferSubmitInfo
		psem  *C.VkSemaphoreSubmitInfo
	)
	if n := len(sub); n > 0 {
		pinfo = (*C.VkSubmitInfo2)(C.calloc(C.size_t(n), C.sizeof_VkSubmitInfo2))
		defer C.free(unsafe.Pointer(pinfo))
	}
	if ncb > 0 {
		pcb = (*C.VkCommandBufferSubmitInfo)(C.calloc(C.size_t(ncb), C.sizeof_VkCommandBufferSubmitInfo))
		defer C.free(unsafe.Pointer(pcb))
	}
	if nsem > 0 {
		psem = (*C.VkSemaphoreSubmitInfo)(C.calloc(C.size_t(nsem), C.sizeof_VkSemaphoreSubmitInfo))
		defer C.free(unsafe.Pointer(psem))
	}
	infos := unsafe.Slice(pinfo, len(sub))
	cbs := unsafe.Slice(pcb, ncb)
	sems := unsafe.Slice(psem, nsem)

	for i := range sub {
		infos[i].sType = C.VK_STRUCTURE_TYPE_SUBMIT_INFO_2
		if n := len(sub[i].Wait); n > 0 {
			for j, s := range sub[i].Wait {
				sems[j] = C.VkSemaphoreSubmitInfo{
					sType:     C.VK_STRUCTURE_TYPE_SEMAPHORE_SUBMIT_INFO,
					semaphore: s.(*semaphore).sem,
					stageMask: convSync(sub[i].WaitAt[j]),
				}
			}
			infos[i].waitSemaphoreInfoCount = C.uint32_t(n)
			infos[i].pWaitSemaphoreInfos = &sems[0]
			sems = sems[n:]
		}
		if n := len(sub[i].Cmd); n > 0 {
			for j, cb := range sub[i].Cmd {
				cbs[j] = C.VkCommandBufferSubmitInfo{
					sType:         C.VK_STRUCTURE_TYPE_COMMAND_BUFFER_SUBMIT_INFO,
					commandBuffer: cb.(*cmdBuffer).cb,
				}
			}
			infos[i].commandBufferInfoCount = C.uint32_t(n)
			infos[i].pCommandBufferInfos = &cbs[0]
			cbs = cbs[n:]
		}
		if n := len(sub[i].Signal); n > 0 {
			for j, s := range sub[i].Signal {
				sems[j] = C.VkSemaphoreSubmitInfo{
					sType:     C.VK_STRUCTURE_TYPE_SEMAPHORE_SUBMIT_INFO,
					semaphore: s.(*semaphore).sem,
					stageMask: C.VK_PIPELINE_STAGE_2_ALL_COMMANDS_BIT,
				}
			}
			infos[i].signalSemaphoreInfoCount = C.uint32_t(n)
			infos[i].pSignalSemaphoreInfos = &sems[0]
			sems = sems[n:]
		}
	}

	d.qmus[qfam].Lock()
	defer d.qmus[qfam].Unlock()
	return checkResult(C.vkQueueSubmit2(d.ques[qfam], C.uint32_t(len(sub)), pinfo, fnc))
}
