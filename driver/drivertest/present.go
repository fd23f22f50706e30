// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package drivertest

import (
	"errors"

	"github.com/gviegas/hybrid/driver"
)

// Window implements driver.Window.
// Its size can be changed at any time to simulate resizing.
type Window struct {
	W, H int
}

// Size returns the window size.
func (w *Window) Size() (int, int) { return w.W, w.H }

// SetSize sets the window size.
func (w *Window) SetSize(width, height int) { w.W, w.H = width, height }

// NewSurface returns a dummy surface handle.
func (w *Window) NewSurface(instance uintptr) (uintptr, error) { return 1, nil }

// swapchain implements driver.Swapchain.
type swapchain struct {
	g        *GPU
	win      driver.Window
	width    int
	height   int
	views    []driver.ImageView
	images   []*image
	next     int
	acquired []bool
	presents int
	recreate int
}

// NewSwapchain creates a new swapchain.
func (g *GPU) NewSwapchain(win driver.Window, imageCount int) (driver.Swapchain, error) {
	if imageCount < 1 {
		return nil, errors.New("drivertest: invalid image count")
	}
	w, h := win.Size()
	if w <= 0 || h <= 0 {
		return nil, driver.ErrNoExtent
	}
	s := &swapchain{g: g, win: win, width: w, height: h}
	s.newViews(imageCount)
	return s, nil
}

func (s *swapchain) newViews(n int) {
	s.views = make([]driver.ImageView, n)
	s.images = make([]*image, n)
	s.acquired = make([]bool, n)
	for i := range s.views {
		s.images[i] = &image{
			g:    s.g,
			pf:   driver.BGRA8sRGB,
			size: driver.Dim3D{Width: s.width, Height: s.height, Depth: 1},
			usg:  driver.URenderTarget,
		}
		s.views[i] = &imageView{im: s.images[i]}
	}
}

func (s *swapchain) stale() bool {
	w, h := s.win.Size()
	return w != s.width || h != s.height
}

func (s *swapchain) Views() []driver.ImageView { return s.views }

// Next fails with driver.ErrSwapchain when the window size
// differs from the swapchain extent.
func (s *swapchain) Next(sem driver.Semaphore) (int, error) {
	if s.stale() {
		return 0, driver.ErrSwapchain
	}
	idx := s.next
	if s.acquired[idx] {
		return 0, errors.New("drivertest: all views acquired")
	}
	s.acquired[idx] = true
	s.next = (s.next + 1) % len(s.views)
	sem.(*semaphore).signaled = true
	s.g.mu.Lock()
	s.g.event("acquire %d", idx)
	s.g.mu.Unlock()
	return idx, nil
}

func (s *swapchain) Present(index int, wait driver.Semaphore) error {
	if !s.acquired[index] {
		return errors.New("drivertest: presenting view that was not acquired")
	}
	sem := wait.(*semaphore)
	if !sem.signaled {
		return ErrSemaphoreUnsignaled
	}
	sem.signaled = false
	s.acquired[index] = false
	if s.stale() {
		return driver.ErrSwapchain
	}
	s.presents++
	s.g.mu.Lock()
	s.g.event("present %d", index)
	s.g.mu.Unlock()
	return nil
}

func (s *swapchain) Recreate() error {
	w, h := s.win.Size()
	if w <= 0 || h <= 0 {
		return driver.ErrNoExtent
	}
	s.width, s.height = w, h
	s.next = 0
	s.newViews(len(s.views))
	s.recreate++
	s.g.mu.Lock()
	s.g.event("recreate %dx%d", w, h)
	s.g.mu.Unlock()
	return nil
}

func (s *swapchain) Extent() (int, int) { return s.width, s.height }

func (s *swapchain) Format() driver.PixelFmt { return driver.BGRA8sRGB }

func (s *swapchain) Usage() driver.Usage { return driver.URenderTarget }

func (s *swapchain) Destroy() {}

// Presents returns the number of successful presentations
// made through sc.
func Presents(sc driver.Swapchain) int { return sc.(*swapchain).presents }

// Recreations returns the number of successful calls to
// sc.Recreate.
func Recreations(sc driver.Swapchain) int { return sc.(*swapchain).recreate }
