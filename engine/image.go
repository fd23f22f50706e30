// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"github.com/pkg/errors"

	"github.com/gviegas/hybrid/driver"
)

// formatInfo describes how images of a given format are
// used by the renderer.
type formatInfo struct {
	usage driver.Usage
	depth bool
}

// formatClass maps every supported format to its usage.
// HDR formats are written by the pathtracer (storage) or
// the rasterizer (render target) and sampled by the
// tonemap pass.
var formatClass = map[driver.PixelFmt]formatInfo{
	driver.RGBA32f:   {driver.UShaderRead | driver.UShaderWrite | driver.UShaderSample | driver.URenderTarget | driver.UCopySrc, false},
	driver.RGBA16f:   {driver.UShaderRead | driver.UShaderWrite | driver.UShaderSample | driver.URenderTarget | driver.UCopySrc, false},
	driver.RGBA8un:   {driver.UShaderSample | driver.UCopyDst, false},
	driver.RGBA8sRGB: {driver.UShaderSample | driver.UCopyDst, false},
	driver.D32f:      {driver.URenderTarget, true},
	driver.D16un:     {driver.URenderTarget, true},
}

// Image is a 2D GPU image with a single view.
type Image struct {
	img    driver.Image
	view   driver.ImageView
	pf     driver.PixelFmt
	width  int
	height int
	layout driver.Layout
}

// NewImage creates a new image.
// Its usage is determined by the format.
func NewImage(ctx *Context, pf driver.PixelFmt, width, height int) (*Image, error) {
	info, ok := formatClass[pf]
	if !ok {
		return nil, errors.Errorf("engine: unsupported image format %d", pf)
	}
	if width <= 0 || height <= 0 || width > ctx.limits.MaxImage2D || height > ctx.limits.MaxImage2D {
		return nil, errors.Errorf("engine: invalid image size %dx%d", width, height)
	}
	img, err := ctx.gpu.NewImage(pf, driver.Dim3D{Width: width, Height: height, Depth: 1}, 1, 1, 1, info.usage)
	if err != nil {
		return nil, errors.Wrapf(err, "create %dx%d image", width, height)
	}
	view, err := img.NewView(driver.IView2D, 0, 1, 0, 1)
	if err != nil {
		img.Destroy()
		return nil, errors.Wrap(err, "create image view")
	}
	return &Image{
		img:    img,
		view:   view,
		pf:     pf,
		width:  width,
		height: height,
	}, nil
}

// layoutScope returns the synchronization and access
// scopes of images in the given layout.
func layoutScope(l driver.Layout) (driver.Sync, driver.Access) {
	switch l {
	case driver.LColorTarget:
		return driver.SColorOutput, driver.AColorRead | driver.AColorWrite
	case driver.LDSTarget:
		return driver.SDSOutput, driver.ADSRead | driver.ADSWrite
	case driver.LDSRead:
		return driver.SDSOutput, driver.ADSRead
	case driver.LShaderRead:
		return driver.SFragmentShading, driver.AShaderRead
	case driver.LShaderStore:
		return driver.SRayTracing, driver.AShaderRead | driver.AShaderWrite
	case driver.LCopySrc:
		return driver.SCopy, driver.ACopyRead
	case driver.LCopyDst:
		return driver.SCopy, driver.ACopyWrite
	case driver.LCommon:
		return driver.SAll, driver.AAnyRead | driver.AAnyWrite
	}
	// LUndefined and LPresent.
	return driver.SNone, driver.ANone
}

// transition returns the layout transition of view between
// the given layouts.
func transition(view driver.ImageView, from, to driver.Layout) driver.Transition {
	sb, ab := layoutScope(from)
	sa, aa := layoutScope(to)
	return driver.Transition{
		Barrier: driver.Barrier{
			SyncBefore:   sb,
			SyncAfter:    sa,
			AccessBefore: ab,
			AccessAfter:  aa,
		},
		LayoutBefore: from,
		LayoutAfter:  to,
		IView:        view,
	}
}

// Transition records a transition of the image to layout
// to. Nothing is recorded if the image is already in that
// layout.
func (im *Image) Transition(cb driver.CmdBuffer, to driver.Layout) {
	if im.layout == to {
		return
	}
	cb.Transition([]driver.Transition{transition(im.view, im.layout, to)})
	im.layout = to
}

// Invalidate marks the image contents as undefined, so
// that the next transition discards them.
func (im *Image) Invalidate() { im.layout = driver.LUndefined }

// View returns the image view.
func (im *Image) View() driver.ImageView { return im.view }

// Format returns the pixel format.
func (im *Image) Format() driver.PixelFmt { return im.pf }

// Size returns the width and height of the image.
func (im *Image) Size() (width, height int) { return im.width, im.height }

// Layout returns the layout that the image was last
// transitioned to.
func (im *Image) Layout() driver.Layout { return im.layout }

// Destroy destroys the image and its view.
func (im *Image) Destroy() {
	if im.view != nil {
		im.view.Destroy()
	}
	if im.img != nil {
		im.img.Destroy()
	}
	*im = Image{}
}
