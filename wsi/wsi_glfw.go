// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package wsi

import (
	"errors"
	"runtime"
	"time"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
)

var errMissing = errors.New("no wsi implementation")

// GLFW must be used from the thread that initialized it.
func init() {
	runtime.LockOSThread()
}

// initGLFW initializes GLFW on first use.
// It sets platform to GLFW on success and to None
// otherwise.
func initGLFW() error {
	switch platform {
	case GLFW:
		return nil
	case None:
		if glfwFailed {
			return errMissing
		}
	}
	if err := glfw.Init(); err != nil {
		glfwFailed = true
		return errors.Join(errMissing, err)
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		glfwFailed = true
		return errMissing
	}
	platform = GLFW
	return nil
}

var glfwFailed bool

// windowGLFW implements Window.
type windowGLFW struct {
	win    *glfw.Window
	width  int
	height int
	title  string
	mapped bool
}

func newWindowGLFW(width, height int, title string) (Window, error) {
	if err := initGLFW(); err != nil {
		return nil, err
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, err
	}
	w := &windowGLFW{
		win:    win,
		width:  width,
		height: height,
		title:  title,
		mapped: true,
	}
	win.SetCloseCallback(w.onClose)
	win.SetSizeCallback(w.onResize)
	win.SetFocusCallback(w.onFocus)
	win.SetKeyCallback(w.onKey)
	win.SetCursorEnterCallback(w.onCursorEnter)
	win.SetCursorPosCallback(w.onCursorPos)
	win.SetMouseButtonCallback(w.onMouseButton)
	return w, nil
}

// Map makes the window visible.
func (w *windowGLFW) Map() error {
	if !w.mapped {
		w.win.Show()
		w.mapped = true
	}
	return nil
}

// Unmap hides the window.
func (w *windowGLFW) Unmap() error {
	if w.mapped {
		w.win.Hide()
		w.mapped = false
	}
	return nil
}

// Resize resizes the window.
func (w *windowGLFW) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.New("wsi: invalid window size")
	}
	w.win.SetSize(width, height)
	return nil
}

// SetTitle sets the window's title.
func (w *windowGLFW) SetTitle(title string) error {
	w.win.SetTitle(title)
	w.title = title
	return nil
}

// Close closes the window.
func (w *windowGLFW) Close() {
	if w.win == nil {
		return
	}
	w.win.Destroy()
	w.win = nil
	closeWindow(w)
}

func (w *windowGLFW) Width() int     { return w.width }
func (w *windowGLFW) Height() int    { return w.height }
func (w *windowGLFW) Title() string  { return w.title }
func (w *windowGLFW) String() string { return "wsi.Window(" + w.title + ")" }

// ShouldClose reports whether the user requested
// the window to be closed.
func (w *windowGLFW) ShouldClose() bool { return w.win == nil || w.win.ShouldClose() }

// SetShouldClose sets the value returned by ShouldClose.
func (w *windowGLFW) SetShouldClose(close bool) {
	if w.win != nil {
		w.win.SetShouldClose(close)
	}
}

// Size returns the size of the framebuffer in pixels.
// It differs from Width/Height on high-density displays.
func (w *windowGLFW) Size() (width, height int) {
	if w.win == nil {
		return 0, 0
	}
	return w.win.GetFramebufferSize()
}

// NewSurface creates a Vulkan surface for the window.
// instance is a VkInstance handle and the return value
// is a VkSurfaceKHR handle.
func (w *windowGLFW) NewSurface(instance uintptr) (uintptr, error) {
	if w.win == nil {
		return 0, errors.New("wsi: window is closed")
	}
	// GLFW expects a pointer-kinded instance and returns
	// the address of the surface handle.
	inst := (*struct{})(unsafe.Pointer(instance))
	p, err := w.win.CreateWindowSurface(inst, nil)
	if err != nil {
		return 0, err
	}
	return *(*uintptr)(unsafe.Pointer(p)), nil
}

func (w *windowGLFW) onClose(*glfw.Window) {
	if windowHandler != nil {
		windowHandler.WindowClose(w)
	}
}

func (w *windowGLFW) onResize(_ *glfw.Window, width, height int) {
	if width == w.width && height == w.height {
		return
	}
	w.width = width
	w.height = height
	if windowHandler != nil {
		windowHandler.WindowResize(w, width, height)
	}
}

func (w *windowGLFW) onFocus(_ *glfw.Window, focused bool) {
	if keyboardHandler == nil {
		return
	}
	if focused {
		keyboardHandler.KeyboardIn(w)
	} else {
		keyboardHandler.KeyboardOut(w)
	}
}

func (w *windowGLFW) onKey(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
	if keyboardHandler == nil || action == glfw.Repeat {
		return
	}
	keyboardHandler.KeyboardKey(keyFrom(int(key)), action == glfw.Press, modFrom(mods))
}

func (w *windowGLFW) onCursorEnter(_ *glfw.Window, entered bool) {
	if pointerHandler == nil {
		return
	}
	if entered {
		x, y := w.win.GetCursorPos()
		pointerHandler.PointerIn(w, int(x), int(y))
	} else {
		pointerHandler.PointerOut(w)
	}
}

func (w *windowGLFW) onCursorPos(_ *glfw.Window, x, y float64) {
	if pointerHandler != nil {
		pointerHandler.PointerMotion(int(x), int(y))
	}
}

func (w *windowGLFW) onMouseButton(_ *glfw.Window, btn glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
	if pointerHandler == nil {
		return
	}
	x, y := w.win.GetCursorPos()
	pointerHandler.PointerButton(btnFrom(btn), action == glfw.Press, int(x), int(y))
}

func dispatchGLFW() {
	if platform == GLFW {
		glfw.PollEvents()
	}
}

func waitGLFW(timeout time.Duration) {
	if platform == GLFW {
		glfw.WaitEventsTimeout(timeout.Seconds())
	}
}

// Terminate closes all windows and releases GLFW.
func Terminate() {
	for _, w := range Windows() {
		w.Close()
	}
	if platform == GLFW {
		glfw.Terminate()
		platform = None
	}
}

// modFrom converts GLFW modifier bits into a Modifier.
func modFrom(mods glfw.ModifierKey) (m Modifier) {
	if mods&glfw.ModCapsLock != 0 {
		m |= ModCapsLock
	}
	if mods&glfw.ModShift != 0 {
		m |= ModShift
	}
	if mods&glfw.ModControl != 0 {
		m |= ModCtrl
	}
	if mods&glfw.ModAlt != 0 {
		m |= ModAlt
	}
	return
}

func btnFrom(btn glfw.MouseButton) Button {
	switch btn {
	case glfw.MouseButtonLeft:
		return BtnLeft
	case glfw.MouseButtonRight:
		return BtnRight
	case glfw.MouseButtonMiddle:
		return BtnMiddle
	case glfw.MouseButton4:
		return BtnBackward
	case glfw.MouseButton5:
		return BtnForward
	}
	return BtnUnknown
}
