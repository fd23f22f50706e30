// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

import (
	"errors"
)

// ErrCannotPresent means that the driver and/or device do not
// support presentation.
var ErrCannotPresent = errors.New("driver: presentation not supported")

// ErrWindow represents an error related to a specific window.
// This error usually indicates that a window misconfiguration
// is preventing correct operation. For instance, the driver
// may require a visible window to create a swapchain.
var ErrWindow = errors.New("driver: window-related error")

// ErrSwapchain represents an error related to a specific
// swapchain.
// This error usually indicates that changes to the window or
// compositor made the swapchain unusable.
var ErrSwapchain = errors.New("driver: swapchain-related error")

// ErrNoExtent means that the surface of a window has zero
// area, as is the case when the window is minimized.
// A swapchain cannot be created for such a surface.
var ErrNoExtent = errors.New("driver: surface has zero area")

// Window is the interface that a window must implement
// to be presented to.
type Window interface {
	// Size returns the size of the window's drawable
	// area, in pixels.
	Size() (width, height int)

	// NewSurface creates a presentation surface for the
	// window. instance is the driver-specific instance
	// handle and the return value is the driver-specific
	// surface handle. The driver takes ownership of the
	// surface.
	NewSurface(instance uintptr) (uintptr, error)
}

// Presenter is the interface that a GPU may implement
// to enable presentation on a display.
type Presenter interface {
	// NewSwapchain creates a new swapchain.
	// Only one swapchain can be associated with a specific
	// Window at a time.
	NewSwapchain(win Window, imageCount int) (Swapchain, error)
}

// Swapchain is the interface that defines a n-buffered
// swapchain for presentation.
// To present, one calls Next to obtain the index of an
// image view to target, transitions the view to a valid
// layout (e.g., from LUndefined to LColorTarget),
// records commands as needed, transitions the view to
// the LPresent layout, submits these commands and then
// calls Present to present the image view.
type Swapchain interface {
	Destroyer

	// Views returns the list of image views that
	// comprises the swapchain.
	// This value remains unchanged as long as the
	// swapchain's Destroy or Recreate methods are
	// not called.
	// Swapchain image views are in the LUndefined
	// layout when created/recreated.
	Views() []ImageView

	// Next returns the index of the next writable
	// image view.
	// sem is signaled when the view is ready to be
	// written; submissions that use the view must
	// wait on it.
	// ErrSwapchain is returned if the swapchain no
	// longer matches the window, in which case
	// Recreate must be called.
	Next(sem Semaphore) (int, error)

	// Present presents the image view identified
	// by index once wait is signaled.
	// Before calling this method, the given image
	// view must be transitioned to the LPresent
	// layout in a submission that signals wait.
	Present(index int, wait Semaphore) error

	// Recreate recreates the swapchain.
	// It is meant to be called in response to a
	// ErrSwapchain error. The caller must ensure
	// that the views are no longer in use.
	// If the window has zero area, ErrNoExtent is
	// returned and the swapchain is left as is.
	Recreate() error

	// Extent returns the size of the image views.
	Extent() (width, height int)

	// Format returns the image views' PixelFmt.
	Format() PixelFmt

	// Usage returns the image views' Usage.
	// URenderTarget is guaranteed to be set.
	Usage() Usage
}
