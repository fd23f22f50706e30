// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

// #include <stdlib.h>
// #include <proc.h>
import "C"

import (
	"log"
	"sync"
	"unsafe"

	"github.com/gviegas/hybrid/driver"
)

// swapchain implements driver.Swapchain.
type swapchain struct {
	d     *Driver
	win   driver.Window
	qfam  C.uint32_t
	sf    C.VkSurfaceKHR
	sc    C.VkSwapchainKHR
	pf    driver.PixelFmt
	usg   driver.Usage
	ext   C.VkExtent2D
	nimg  int
	views []driver.ImageView
	mu    sync.Mutex

	// presInfo contains C-allocated memory used during a call
	// to Present. The pWaitSemaphores, pSwapchains and
	// pImageIndices fields, along with the info structure
	// itself, all refer to C memory. They can hold a single
	// element each.
	presInfo *C.VkPresentInfoKHR
}

// NewSwapchain creates a new swapchain.
// The surface is created by win. If the queue that
// supports presentation to it is not the graphics queue,
// the swapchain images are shared by both queues.
func (d *Driver) NewSwapchain(win driver.Window, imageCount int) (driver.Swapchain, error) {
	if !d.canPresent() || !d.exts[extSwapchain] {
		return nil, driver.ErrCannotPresent
	}
	h, err := win.NewSurface(uintptr(unsafe.Pointer(d.inst)))
	if err != nil {
		return nil, err
	}
	s := &swapchain{
		d:    d,
		win:  win,
		sf:   C.VkSurfaceKHR(unsafe.Pointer(h)),
		nimg: imageCount,
	}
	if s.qfam, err = d.presQueueFor(s.sf); err != nil {
		C.vkDestroySurfaceKHR(d.inst, s.sf, nil)
		return nil, err
	}
	if err = s.initSwapchain(); err != nil {
		C.vkDestroySurfaceKHR(d.inst, s.sf, nil)
		return nil, err
	}
	if err = s.newViews(); err != nil {
		C.vkDestroySwapchainKHR(d.dev, s.sc, nil)
		C.vkDestroySurfaceKHR(d.inst, s.sf, nil)
		return nil, err
	}
	s.presInfo = (*C.VkPresentInfoKHR)(C.malloc(C.sizeof_VkPresentInfoKHR))
	*s.presInfo = C.VkPresentInfoKHR{
		sType:              C.VK_STRUCTURE_TYPE_PRESENT_INFO_KHR,
		waitSemaphoreCount: 1,
		pWaitSemaphores:    (*C.VkSemaphore)(C.malloc(C.sizeof_VkSemaphore)),
		swapchainCount:     1,
		pSwapchains:        (*C.VkSwapchainKHR)(C.malloc(C.sizeof_VkSwapchainKHR)),
		pImageIndices:      (*C.uint32_t)(C.malloc(C.sizeof_uint32_t)),
	}
	return s, nil
}

// initSwapchain creates a new swapchain from s.sf.
// The current swapchain, if any, is retired.
// It sets the sc, pf, usg and ext fields of s.
func (s *swapchain) initSwapchain() error {
	var capab C.VkSurfaceCapabilitiesKHR
	res := C.vkGetPhysicalDeviceSurfaceCapabilitiesKHR(s.d.pdev, s.sf, &capab)
	if err := checkResult(res); err != nil {
		return err
	}

	// Number of backbuffers.
	nimg := C.uint32_t(s.nimg)
	if capab.minImageCount > nimg {
		nimg = capab.minImageCount
	} else if capab.maxImageCount != 0 && capab.maxImageCount < nimg {
		nimg = capab.maxImageCount
	}

	// Image size.
	var extent C.VkExtent2D
	if capab.currentExtent.width == ^C.uint32_t(0) {
		w, h := s.win.Size()
		extent.width = C.uint32_t(max(w, 0))
		extent.height = C.uint32_t(max(h, 0))
	} else {
		extent = capab.currentExtent
	}
	if extent.width == 0 || extent.height == 0 || capab.maxImageExtent.width == 0 {
		return driver.ErrNoExtent
	}

	// Composite alpha.
	calpha := C.VkCompositeAlphaFlagBitsKHR(1)
	for range 32 {
		if C.VkFlags(calpha)&capab.supportedCompositeAlpha != 0 {
			break
		}
		calpha <<= 1
	}

	// Image format and color space.
	var nfmt C.uint32_t
	res = C.vkGetPhysicalDeviceSurfaceFormatsKHR(s.d.pdev, s.sf, &nfmt, nil)
	if err := checkResult(res); err != nil {
		return err
	}
	fmts := make([]C.VkSurfaceFormatKHR, nfmt)
	res = C.vkGetPhysicalDeviceSurfaceFormatsKHR(s.d.pdev, s.sf, &nfmt, unsafe.SliceData(fmts))
	if err := checkResult(res); err != nil {
		return err
	}
	prefFmts := []driver.PixelFmt{
		driver.BGRA8sRGB,
		driver.RGBA8sRGB,
		driver.BGRA8un,
		driver.RGBA8un,
		driver.RGBA16f,
	}
	ifmt := -1
fmtLoop:
	for _, pf := range prefFmts {
		for j := range fmts {
			if convPixelFmt(pf) == fmts[j].format {
				s.pf = pf
				ifmt = j
				break fmtLoop
			}
		}
	}
	if ifmt == -1 {
		if len(fmts) == 0 {
			return driver.ErrCannotPresent
		}
		s.pf = internalFmt(fmts[0].format)
		ifmt = 0
	}

	// Image usage.
	// Rendering into the views and copying to them are
	// both required.
	usage := C.VkFlags(C.VK_IMAGE_USAGE_COLOR_ATTACHMENT_BIT)
	s.usg = driver.URenderTarget
	if capab.supportedUsageFlags&C.VK_IMAGE_USAGE_TRANSFER_DST_BIT != 0 {
		usage |= C.VK_IMAGE_USAGE_TRANSFER_DST_BIT
		s.usg |= driver.UCopyDst
	}
	if capab.supportedUsageFlags&C.VK_IMAGE_USAGE_TRANSFER_SRC_BIT != 0 {
		usage |= C.VK_IMAGE_USAGE_TRANSFER_SRC_BIT
		s.usg |= driver.UCopySrc
	}

	info := C.VkSwapchainCreateInfoKHR{
		sType:            C.VK_STRUCTURE_TYPE_SWAPCHAIN_CREATE_INFO_KHR,
		surface:          s.sf,
		minImageCount:    nimg,
		imageFormat:      fmts[ifmt].format,
		imageColorSpace:  fmts[ifmt].colorSpace,
		imageExtent:      extent,
		imageArrayLayers: 1,
		imageUsage:       usage,
		imageSharingMode: C.VK_SHARING_MODE_EXCLUSIVE,
		preTransform:     capab.currentTransform,
		compositeAlpha:   calpha,
		presentMode:      C.VK_PRESENT_MODE_FIFO_KHR,
		clipped:          C.VK_TRUE,
		oldSwapchain:     s.sc,
	}
	if gfam := s.d.qfam[driver.QGraphics]; gfam != s.qfam {
		fams := (*C.uint32_t)(C.malloc(2 * C.sizeof_uint32_t))
		defer C.free(unsafe.Pointer(fams))
		unsafe.Slice(fams, 2)[0] = gfam
		unsafe.Slice(fams, 2)[1] = s.qfam
		info.imageSharingMode = C.VK_SHARING_MODE_CONCURRENT
		info.queueFamilyIndexCount = 2
		info.pQueueFamilyIndices = fams
	}
	var sc C.VkSwapchainKHR
	res = C.vkCreateSwapchainKHR(s.d.dev, &info, nil, &sc)
	// The old swapchain is retired even if creation fails.
	s.destroyViews()
	C.vkDestroySwapchainKHR(s.d.dev, s.sc, nil)
	if err := checkResult(res); err != nil {
		var null C.VkSwapchainKHR
		s.sc = null
		return err
	}
	s.sc = sc
	s.ext = extent
	return nil
}

// newViews creates new image views from s.sc.
// It sets the views field of s.
// If len(s.views) is not zero, it calls Destroy on each view.
func (s *swapchain) newViews() error {
	s.destroyViews()
	var nimg C.uint32_t
	res := C.vkGetSwapchainImagesKHR(s.d.dev, s.sc, &nimg, nil)
	if err := checkResult(res); err != nil {
		return err
	}
	imgs := make([]C.VkImage, nimg)
	res = C.vkGetSwapchainImagesKHR(s.d.dev, s.sc, &nimg, unsafe.SliceData(imgs))
	if err := checkResult(res); err != nil {
		return err
	}
	s.views = make([]driver.ImageView, nimg)
	for i := range imgs {
		img := &image{
			s:   s,
			img: imgs[i],
			fmt: convPixelFmt(s.pf),
			subres: C.VkImageSubresourceRange{
				aspectMask: C.VK_IMAGE_ASPECT_COLOR_BIT,
				levelCount: 1,
				layerCount: 1,
			},
		}
		view, err := img.NewView(driver.IView2D, 0, 1, 0, 1)
		if err != nil {
			s.views = s.views[:i]
			s.destroyViews()
			return err
		}
		s.views[i] = view
	}
	return nil
}

// destroyViews destroys every view of s along with its
// image.
func (s *swapchain) destroyViews() {
	for _, v := range s.views {
		i := v.(*imageView).i
		v.Destroy()
		i.Destroy()
	}
	s.views = nil
}

// Views returns the list of image views that comprises
// the swapchain.
func (s *swapchain) Views() []driver.ImageView {
	return append([]driver.ImageView(nil), s.views...)
}

// Next returns the index of the next writable image view.
// sem is signaled when the view is ready.
func (s *swapchain) Next(sem driver.Semaphore) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var idx C.uint32_t
	var null C.VkFence
	res := C.vkAcquireNextImageKHR(s.d.dev, s.sc, C.UINT64_MAX, sem.(*semaphore).sem, null, &idx)
	switch res {
	case C.VK_SUCCESS, C.VK_SUBOPTIMAL_KHR:
		// A suboptimal swapchain can still be used, and
		// sem will be signaled. The mismatch is reported
		// by Present.
		return int(idx), nil
	case C.VK_ERROR_OUT_OF_DATE_KHR:
		return -1, driver.ErrSwapchain
	case C.VK_ERROR_SURFACE_LOST_KHR:
		return -1, driver.ErrWindow
	}
	return -1, checkResult(res)
}

// Present presents the image view identified by index.
func (s *swapchain) Present(index int, wait driver.Semaphore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.presInfo.pWaitSemaphores = wait.(*semaphore).sem
	*s.presInfo.pSwapchains = s.sc
	*s.presInfo.pImageIndices = C.uint32_t(index)
	s.d.qmus[s.qfam].Lock()
	res := C.vkQueuePresentKHR(s.d.ques[s.qfam], s.presInfo)
	s.d.qmus[s.qfam].Unlock()
	switch res {
	case C.VK_SUCCESS:
		return nil
	case C.VK_SUBOPTIMAL_KHR, C.VK_ERROR_OUT_OF_DATE_KHR:
		return driver.ErrSwapchain
	case C.VK_ERROR_SURFACE_LOST_KHR:
		return driver.ErrWindow
	}
	return checkResult(res)
}

// Recreate recreates the swapchain.
// If the window has zero area, it returns ErrNoExtent and
// leaves the swapchain as is.
func (s *swapchain) Recreate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, h := s.win.Size(); w <= 0 || h <= 0 {
		return driver.ErrNoExtent
	}
	s.d.qmus[s.qfam].Lock()
	C.vkQueueWaitIdle(s.d.ques[s.qfam])
	s.d.qmus[s.qfam].Unlock()
	if err := s.initSwapchain(); err != nil {
		return err
	}
	return s.newViews()
}

// Extent returns the size of the image views.
func (s *swapchain) Extent() (width, height int) {
	return int(s.ext.width), int(s.ext.height)
}

// Format returns the image views' driver.PixelFmt.
func (s *swapchain) Format() driver.PixelFmt { return s.pf }

// Usage returns the image views' driver.Usage.
func (s *swapchain) Usage() driver.Usage { return s.usg }

// Destroy destroys the swapchain.
func (s *swapchain) Destroy() {
	if s == nil {
		return
	}
	if s.d != nil {
		if err := s.d.WaitIdle(); err != nil {
			log.Printf("[!] vk: swapchain destroy: %v", err)
		}
		if s.presInfo != nil {
			C.free(unsafe.Pointer(s.presInfo.pWaitSemaphores))
			C.free(unsafe.Pointer(s.presInfo.pSwapchains))
			C.free(unsafe.Pointer(s.presInfo.pImageIndices))
			C.free(unsafe.Pointer(s.presInfo))
		}
		s.destroyViews()
		C.vkDestroySwapchainKHR(s.d.dev, s.sc, nil)
		C.vkDestroySurfaceKHR(s.d.inst, s.sf, nil)
	}
	*s = swapchain{}
}

// presQueueFor returns the family of a queue that supports
// presentation to a given surface.
// The graphics family is preferred.
// It returns driver.ErrCannotPresent if none of the queues
// support presentation. If the query function itself fails
// for any reason, its error is returned instead.
func (d *Driver) presQueueFor(sf C.VkSurfaceKHR) (C.uint32_t, error) {
	n := C.uint32_t(len(d.ques))
	e := driver.ErrCannotPresent
	var sup C.VkBool32
	for i := C.uint32_t(0); i < n; i++ {
		qfam := (i + d.qfam[driver.QGraphics]) % n
		err := checkResult(C.vkGetPhysicalDeviceSurfaceSupportKHR(d.pdev, qfam, sf, &sup))
		if err != nil {
			e = err
			continue
		}
		if sup == C.VK_TRUE {
			return qfam, nil
		}
	}
	return ^C.uint32_t(0), e
}
