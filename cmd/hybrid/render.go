// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package main

import (
	"context"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/gviegas/hybrid/config"
	"github.com/gviegas/hybrid/engine"
	"github.com/gviegas/hybrid/internal/stats"
	"github.com/gviegas/hybrid/scene"
	"github.com/gviegas/hybrid/wsi"
)

// Camera orbit speed, in radians per second.
const orbitSpeed = math.Pi / 2

// Interval between stats broadcasts.
const statsInterval = 250 * time.Millisecond

// loadConfig loads the configuration named by the global
// --config flag.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx.GlobalString("config"))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags overrides cfg with the flags of the render
// command.
func applyFlags(ctx *cli.Context, cfg *config.Config) error {
	if w := ctx.Int("width"); w != 0 {
		cfg.Window.Width = w
	}
	if h := ctx.Int("height"); h != 0 {
		cfg.Window.Height = h
	}
	if ctx.Bool("raster") {
		cfg.Renderer.Pathtracer = false
	}
	if s := ctx.String("shaders"); s != "" {
		cfg.Renderer.ShaderDir = s
	}
	if s := ctx.String("stats"); s != "" {
		cfg.Stats.Addr = s
	}
	return cfg.Validate()
}

// sceneCamera returns the camera of sc with the overrides
// of cfg applied.
func sceneCamera(sc *scene.Scene, cfg *config.Config) scene.Camera {
	cam := scene.DefaultCamera()
	if sc.Camera != nil {
		cam = *sc.Camera
	}
	if p := cfg.Camera.Position; len(p) == 3 {
		cam.Position = mgl32.Vec3{p[0], p[1], p[2]}
	}
	if p := cfg.Camera.Target; len(p) == 3 {
		cam.Target = mgl32.Vec3{p[0], p[1], p[2]}
	}
	if cfg.Camera.FovY > 0 {
		cam.FovY = mgl32.DegToRad(cfg.Camera.FovY)
	}
	return cam
}

// Render renders a scene in a window until it is closed.
func Render(ctx *cli.Context) (err error) {
	if ctx.NArg() != 1 {
		return cli.NewExitError("render: expected one scene file", 2)
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if err = applyFlags(ctx, cfg); err != nil {
		return err
	}
	if !cfg.Window.VSync {
		logger.Info("only FIFO presentation is supported; ignoring window.vsync")
	}

	sc, err := loadScene(ctx.Args().First())
	if err != nil {
		return err
	}
	logger.Infof("loaded scene: %d primitives, %d instances, %d triangles", len(sc.Primitives), len(sc.Instances), sc.Triangles())
	sh, err := engine.LoadShaders(cfg.Renderer.ShaderDir)
	if err != nil {
		return err
	}

	ectx, err := engine.Open(cfg.Driver.Name, cfg.DriverOptions())
	if err != nil {
		return err
	}
	defer ectx.Close()

	tr := stats.NewTracer()
	ectx.SetTracer(tr)
	if cfg.Stats.Addr != "" {
		sctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		srv := stats.NewServer(tr, cfg.Window.Title)
		go func() {
			if err := srv.Serve(sctx, cfg.Stats.Addr, statsInterval); err != nil {
				logger.Warningf("stats: %v", err)
			}
		}()
	}

	win, err := wsi.NewWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title)
	if err != nil {
		return errors.Wrap(err, "create window")
	}
	defer wsi.Terminate()

	r, err := engine.NewRenderer(ectx, win, sc, sh, cfg.Engine())
	if err != nil {
		return err
	}
	defer r.Destroy()

	v := newViewer(r, win, sceneCamera(sc, cfg))
	wsi.SetWindowHandler(v)
	wsi.SetKeyboardHandler(v)
	defer func() {
		wsi.SetWindowHandler(nil)
		wsi.SetKeyboardHandler(nil)
	}()

	if err := run(r, v, win, wsi.Dispatch, wsi.Wait); err != nil {
		return err
	}
	report(tr.Report())
	return nil
}

// Time to wait for events while the window has no area.
const idleWait = 100 * time.Millisecond

// framer is the part of engine.Renderer that run drives.
type framer interface {
	Frame() error
	NeedsRecreate() bool
}

// run renders frames until win should close.
// While the renderer cannot recreate its swapchain (e.g.,
// the window is minimized), it blocks in wait instead of
// polling.
func run(f framer, v *viewer, win wsi.Window, poll func(), wait func(time.Duration)) error {
	last := time.Now()
	for !win.ShouldClose() {
		if f.NeedsRecreate() {
			wait(idleWait)
		} else {
			poll()
		}
		now := time.Now()
		v.update(float32(now.Sub(last).Seconds()))
		last = now
		if err := f.Frame(); err != nil {
			return err
		}
	}
	return nil
}

func report(r stats.Report) {
	logger.Noticef("rendered %d frames", r.Frame)
	for _, s := range r.Spans {
		logger.Infof("%-16s mean %-12v max %v", s.Name, s.Mean, s.Max)
	}
}

// view is the part of engine.Renderer that the viewer
// drives.
type view interface {
	ToggleRenderer()
	SetCamera(scene.Camera)
	SetNeedsRecreate()
}

// viewer translates window events into renderer calls.
type viewer struct {
	view view
	win  wsi.Window
	cam  scene.Camera
	// Arrow keys being held: left, right, up, down.
	held [4]bool
}

func newViewer(v view, win wsi.Window, cam scene.Camera) *viewer {
	v.SetCamera(cam)
	return &viewer{view: v, win: win, cam: cam}
}

// update orbits the camera while arrow keys are held.
// dt is the time since the last call, in seconds.
func (v *viewer) update(dt float32) {
	var yaw, pitch float32
	if v.held[0] {
		yaw -= 1
	}
	if v.held[1] {
		yaw += 1
	}
	if v.held[2] {
		pitch -= 1
	}
	if v.held[3] {
		pitch += 1
	}
	if yaw == 0 && pitch == 0 {
		return
	}
	v.cam.Orbit(yaw*orbitSpeed*dt, pitch*orbitSpeed*dt)
	v.view.SetCamera(v.cam)
}

func (v *viewer) WindowClose(wsi.Window) { v.win.SetShouldClose(true) }

func (v *viewer) WindowResize(wsi.Window, int, int) { v.view.SetNeedsRecreate() }

func (v *viewer) KeyboardIn(wsi.Window) {}

// KeyboardOut releases held keys, since their release
// will not be reported.
func (v *viewer) KeyboardOut(wsi.Window) { v.held = [4]bool{} }

func (v *viewer) KeyboardKey(key wsi.Key, pressed bool, _ wsi.Modifier) {
	switch key {
	case wsi.KeyLeft:
		v.held[0] = pressed
	case wsi.KeyRight:
		v.held[1] = pressed
	case wsi.KeyUp:
		v.held[2] = pressed
	case wsi.KeyDown:
		v.held[3] = pressed
	case wsi.KeySpace:
		if pressed {
			v.view.ToggleRenderer()
		}
	case wsi.KeyEsc:
		if pressed {
			v.win.SetShouldClose(true)
		}
	}
}
