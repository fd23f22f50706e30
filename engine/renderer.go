// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/gviegas/hybrid/driver"
	"github.com/gviegas/hybrid/scene"
)

// Formats of the intermediate render targets.
const (
	hdrFormat   = driver.RGBA32f
	depthFormat = driver.D32f
)

func newRendErr(s string) error { return errors.New("renderer: " + s) }

// Renderer renders a scene to a window, either with the
// pathtracer or with the rasterizer, then tonemaps the
// result into the swapchain.
//
// Renderer methods must be called from a single goroutine.
type Renderer struct {
	ctx *Context
	cfg Config
	win driver.Window
	sc  *scene.Scene

	sbuf  *SceneBuffers
	accel *Accel
	swap  driver.Swapchain
	hdr   *Image
	depth *Image
	uni   *uniforms
	pt    *pathtracer
	rast  *rasterizer
	tm    *tonemap
	ring  *frameRing

	usePT    bool
	recreate bool
	// cam is nil when the matrices were set explicitly.
	cam  *scene.Camera
	view mgl32.Mat4
	proj mgl32.Mat4
	// Number of frames accumulated by the pathtracer
	// since the last camera or target change.
	accum uint32
}

// NewRenderer uploads sc, builds its acceleration
// structures and prepares rendering to win.
// It blocks until every upload and build completes.
func NewRenderer(ctx *Context, win driver.Window, sc *scene.Scene, sh *Shaders, cfg Config) (r *Renderer, err error) {
	if win == nil || sc == nil || sh == nil {
		return nil, newRendErr("nil argument in call to NewRenderer")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pres, ok := ctx.gpu.(driver.Presenter)
	if !ok {
		return nil, driver.ErrCannotPresent
	}
	defer ctx.span("renderer.init")()
	r = &Renderer{
		ctx:   ctx,
		cfg:   cfg,
		win:   win,
		sc:    sc,
		usePT: cfg.Pathtracer,
		view:  mgl32.Ident4(),
		proj:  mgl32.Ident4(),
	}
	defer func(x *Renderer) {
		if err != nil {
			x.Destroy()
			r = nil
		}
	}(r)

	if r.uni, err = newUniforms(ctx); err != nil {
		return
	}
	scope, err := NewOneshotScope(ctx)
	if err != nil {
		return
	}
	r.sbuf, err = NewSceneBuffers(ctx, scope, sc)
	if err == nil {
		r.rast, err = newRasterizer(ctx, scope, sh, sc, r.sbuf, r.uni)
	}
	if e := scope.Finish(); err == nil {
		err = e
	}
	if err != nil {
		return nil, errors.Wrap(err, "upload scene")
	}
	if r.accel, err = BuildAccel(ctx, r.sbuf, sc); err != nil {
		return nil, errors.Wrap(err, "build acceleration structures")
	}
	if r.pt, err = newPathtracer(ctx, sh, r.accel, r.sbuf, r.uni); err != nil {
		return
	}

	if r.swap, err = pres.NewSwapchain(win, cfg.ImageCount); err != nil {
		return nil, errors.Wrap(err, "create swapchain")
	}
	if r.tm, err = newTonemap(ctx, sh, r.uni, r.swap.Format()); err != nil {
		return
	}
	if err = r.newTargets(); err != nil {
		return
	}
	if r.ring, err = newFrameRing(ctx); err != nil {
		return
	}
	cam := scene.DefaultCamera()
	if sc.Camera != nil {
		cam = *sc.Camera
	}
	r.SetCamera(cam)
	w, h := r.swap.Extent()
	logger.Noticef("renderer ready (%dx%d, %s)", w, h, r.passName())
	return r, nil
}

// newTargets (re)creates the images whose size matches the
// swapchain extent.
func (r *Renderer) newTargets() error {
	w, h := r.swap.Extent()
	hdr, err := NewImage(r.ctx, hdrFormat, w, h)
	if err != nil {
		return errors.Wrap(err, "create HDR target")
	}
	depth, err := NewImage(r.ctx, depthFormat, w, h)
	if err != nil {
		hdr.Destroy()
		return errors.Wrap(err, "create depth target")
	}
	if r.hdr != nil {
		r.hdr.Destroy()
		r.depth.Destroy()
	}
	r.hdr, r.depth = hdr, depth
	r.pt.setTarget(hdr)
	r.tm.setInput(hdr)
	r.accum = 0
	return nil
}

func (r *Renderer) passName() string {
	if r.usePT {
		return "pathtracer"
	}
	return "rasterizer"
}

// Frame renders and presents a single frame.
//
// If the swapchain needs to be recreated, Frame tries to
// recreate it first. Frames are skipped while the window
// has zero area. Failures to acquire or present a
// swapchain image are not errors; they cause recreation
// to be attempted in the next call. The returned error
// is not recoverable.
func (r *Renderer) Frame() error {
	defer r.ctx.span("frame")()
	// The ring advances even when no work is submitted.
	defer r.ring.advance()

	if r.recreate {
		ok, err := r.Recreate()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	cur := r.ring.Current()
	s := r.ring.slot()
	end := r.ctx.span("frame.wait")
	err := s.inFlight.Wait()
	end()
	if err != nil {
		return errors.Wrap(err, "wait for frame")
	}
	if err := s.inFlight.Reset(); err != nil {
		return errors.Wrap(err, "reset frame fence")
	}

	var flags uint32
	if r.usePT {
		flags |= uniPathtracer
	}
	err = r.uni.write(cur, &frameUniforms{
		view:       r.view,
		proj:       r.proj,
		frame:      r.accum,
		maxBounces: uint32(r.cfg.MaxBounces),
		exposure:   r.cfg.Exposure,
		flags:      flags,
	})
	if err != nil {
		r.release(s)
		return err
	}

	if err := r.render(s, cur); err != nil {
		r.release(s)
		return errors.Wrap(err, "render frame")
	}
	r.accum++

	idx, err := r.swap.Next(s.available)
	if err != nil {
		r.swapchainFailed("acquire", err)
		r.release(s)
		return nil
	}
	if err := r.present(s, cur, idx); err != nil {
		r.release(s)
		return errors.Wrap(err, "tonemap frame")
	}
	if err := r.swap.Present(idx, s.ready); err != nil {
		r.swapchainFailed("present", err)
	}
	return nil
}

// render records and submits the work of the active pass.
func (r *Renderer) render(s *frameSlot, cur int) error {
	defer r.ctx.span("frame.render")()
	cb := s.render
	if err := cb.Begin(); err != nil {
		return err
	}
	if r.usePT {
		r.pt.record(cb, cur, r.hdr)
	} else {
		r.rast.record(cb, cur, r.hdr, r.depth)
	}
	if err := cb.End(); err != nil {
		return err
	}
	return r.ctx.gpu.Submit(driver.QGraphics, []driver.Submission{{Cmd: []driver.CmdBuffer{cb}}}, nil)
}

// present records and submits the tonemap pass into the
// swapchain view idx. The submission signals the slot's
// fence.
func (r *Renderer) present(s *frameSlot, cur, idx int) error {
	defer r.ctx.span("frame.tonemap")()
	cb := s.present
	if err := cb.Begin(); err != nil {
		return err
	}
	w, h := r.swap.Extent()
	r.tm.record(cb, cur, r.hdr, r.swap.Views()[idx], w, h)
	if err := cb.End(); err != nil {
		return err
	}
	return r.ctx.gpu.Submit(driver.QGraphics, []driver.Submission{{
		Cmd:    []driver.CmdBuffer{cb},
		Wait:   []driver.Semaphore{s.available},
		WaitAt: []driver.Sync{driver.SColorOutput},
		Signal: []driver.Semaphore{s.ready},
	}}, s.inFlight)
}

// release signals the slot's fence once the work already
// submitted completes, so the slot can be reused after a
// frame that did not reach the tonemap submission.
func (r *Renderer) release(s *frameSlot) {
	if err := r.ctx.gpu.Submit(driver.QGraphics, nil, s.inFlight); err != nil {
		logger.Errorf("release frame slot: %v", err)
	}
}

func (r *Renderer) swapchainFailed(op string, err error) {
	if errors.Is(err, driver.ErrSwapchain) {
		logger.Infof("swapchain %s: %v", op, err)
	} else {
		logger.Warningf("swapchain %s: %v", op, err)
	}
	r.recreate = true
}

// Recreate waits for the GPU to become idle and recreates
// the swapchain and every size-dependent resource.
// If the window has zero area, nothing is recreated, ok is
// false and the recreation remains pending.
func (r *Renderer) Recreate() (ok bool, err error) {
	if err := r.ctx.gpu.WaitIdle(); err != nil {
		return false, errors.Wrap(err, "wait idle")
	}
	switch err := r.swap.Recreate(); {
	case errors.Is(err, driver.ErrNoExtent):
		logger.Debug("surface has zero area; skipping recreation")
		r.recreate = true
		return false, nil
	case err != nil:
		return false, errors.Wrap(err, "recreate swapchain")
	}
	if err := r.tm.setFormat(r.ctx, r.swap.Format()); err != nil {
		return false, err
	}
	if err := r.newTargets(); err != nil {
		return false, err
	}
	r.recreate = false
	if r.cam != nil {
		r.SetCamera(*r.cam)
	}
	w, h := r.swap.Extent()
	logger.Noticef("swapchain recreated (%dx%d)", w, h)
	return true, nil
}

// SetNeedsRecreate requests recreation of the swapchain
// in the next call to Frame. It is meant to be called
// when the window is resized.
func (r *Renderer) SetNeedsRecreate() { r.recreate = true }

// NeedsRecreate returns whether recreation is pending.
func (r *Renderer) NeedsRecreate() bool { return r.recreate }

// SetCamera sets the camera used from the next frame on.
// Its projection follows the aspect ratio of the swapchain
// across recreations.
func (r *Renderer) SetCamera(cam scene.Camera) {
	w, h := r.swap.Extent()
	r.UpdateCamera(cam.View(), cam.Projection(float32(w)/float32(h)))
	r.cam = &cam
}

// Camera returns the camera set by SetCamera, or nil if
// the matrices were set by UpdateCamera.
func (r *Renderer) Camera() *scene.Camera { return r.cam }

// UpdateCamera sets the view and projection matrices used
// from the next frame on.
func (r *Renderer) UpdateCamera(view, proj mgl32.Mat4) {
	r.cam = nil
	r.view = view
	r.proj = proj
	r.accum = 0
}

// ToggleRenderer switches between the pathtracer and the
// rasterizer.
func (r *Renderer) ToggleRenderer() {
	r.usePT = !r.usePT
	r.accum = 0
	logger.Noticef("switched to %s", r.passName())
}

// UsingPathtracer returns whether the pathtracer is active.
func (r *Renderer) UsingPathtracer() bool { return r.usePT }

// CurrentFrame returns the index of the frame slot that the
// next call to Frame will use.
func (r *Renderer) CurrentFrame() int { return r.ring.Current() }

// Extent returns the size of the swapchain images.
func (r *Renderer) Extent() (width, height int) { return r.swap.Extent() }

// Destroy waits for the GPU to become idle and destroys
// the renderer.
func (r *Renderer) Destroy() {
	if r.ctx == nil {
		return
	}
	if err := r.ctx.gpu.WaitIdle(); err != nil {
		logger.Errorf("wait idle: %v", err)
	}
	if r.ring != nil {
		r.ring.destroy()
	}
	if r.tm != nil {
		r.tm.destroy()
	}
	if r.pt != nil {
		r.pt.destroy()
	}
	if r.rast != nil {
		r.rast.destroy(nil)
	}
	if r.hdr != nil {
		r.hdr.Destroy()
		r.depth.Destroy()
	}
	if r.swap != nil {
		r.swap.Destroy()
	}
	if r.accel != nil {
		r.accel.Destroy()
	}
	if r.sbuf != nil {
		r.sbuf.Destroy()
	}
	if r.uni != nil {
		r.uni.destroy()
	}
	*r = Renderer{}
}
