// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package wsi

import (
	"fmt"
	"testing"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func TestKeyFrom(t *testing.T) {
	for _, x := range [...]struct {
		code int
		want Key
	}{
		{int(glfw.KeyUnknown), KeyUnknown},
		{int(glfw.KeySpace), KeySpace},
		{int(glfw.KeyEscape), KeyEsc},
		{int(glfw.KeyLeft), KeyLeft},
		{int(glfw.KeyRight), KeyRight},
		{int(glfw.KeyUp), KeyUp},
		{int(glfw.KeyDown), KeyDown},
		{int(glfw.KeyA), KeyA},
		{int(glfw.KeyKP0), KeyPad0},
		{int(glfw.KeyLast) + 1, KeyUnknown},
		{int(glfw.KeyMenu), KeyUnknown},
	} {
		if k := keyFrom(x.code); k != x.want {
			t.Fatalf("keyFrom(%d)\nhave %d\nwant %d", x.code, k, x.want)
		}
	}
}

func TestModFrom(t *testing.T) {
	mods := glfw.ModShift | glfw.ModControl
	if m := modFrom(mods); m != ModShift|ModCtrl {
		t.Fatalf("modFrom\nhave %x\nwant %x", m, ModShift|ModCtrl)
	}
	if m := modFrom(0); m != 0 {
		t.Fatalf("modFrom\nhave %x\nwant 0", m)
	}
}

func TestBtnFrom(t *testing.T) {
	if b := btnFrom(glfw.MouseButtonLeft); b != BtnLeft {
		t.Fatalf("btnFrom\nhave %d\nwant %d", b, BtnLeft)
	}
	if b := btnFrom(glfw.MouseButton8); b != BtnUnknown {
		t.Fatalf("btnFrom\nhave %d\nwant %d", b, BtnUnknown)
	}
}

func TestWSI(t *testing.T) {
	SetWindowHandler(E{})
	SetKeyboardHandler(E{})
	SetPointerHandler(E{})
	defer func() {
		SetWindowHandler(nil)
		SetKeyboardHandler(nil)
		SetPointerHandler(nil)
	}()
	win, err := NewWindow(480, 360, "My window")
	if err != nil {
		if PlatformInUse() != None {
			t.Fatalf("NewWindow: unexpected error with platform %d: %v", PlatformInUse(), err)
		}
		t.Logf("NewWindow (error): %v", err)
		if n := len(Windows()); n != 0 {
			t.Fatalf("len(Windows())\nhave %v\nwant 0", n)
		}
		// Dispatch does nothing without a platform.
		Dispatch()
		return
	}
	defer Terminate()
	if PlatformInUse() != GLFW {
		t.Fatalf("PlatformInUse\nhave %d\nwant %d", PlatformInUse(), GLFW)
	}
	if n := len(Windows()); n != 1 {
		t.Fatalf("len(Windows())\nhave %v\nwant 1", n)
	}
	if w, h := win.Width(), win.Height(); w != 480 || h != 360 {
		t.Fatalf("Width/Height\nhave %d, %d\nwant 480, 360", w, h)
	}
	if w, h := win.Size(); w <= 0 || h <= 0 {
		t.Fatalf("Size\nhave %d, %d\nwant > 0", w, h)
	}
	if win.ShouldClose() {
		t.Fatal("ShouldClose\nhave true\nwant false")
	}
	win.SetShouldClose(true)
	if !win.ShouldClose() {
		t.Fatal("ShouldClose\nhave false\nwant true")
	}
	win.SetShouldClose(false)
	win.Unmap()
	win.Map()
	for i := 0; i < 10; i++ {
		Dispatch()
		time.Sleep(time.Millisecond * 16)
	}
	if err := win.Resize(0, 300); err == nil {
		t.Fatal("Resize(0, 300)\nhave nil\nwant error")
	}
	win.Resize(600, 300)
	title := time.Now().Format(time.RFC1123)
	win.SetTitle(title)
	if s := win.Title(); s != title {
		t.Fatalf("Title\nhave %s\nwant %s", s, title)
	}
	win.Close()
	if n := len(Windows()); n != 0 {
		t.Fatalf("len(Windows())\nhave %v\nwant 0", n)
	}
	if w, h := win.Size(); w != 0 || h != 0 {
		t.Fatalf("Size after Close\nhave %d, %d\nwant 0, 0", w, h)
	}
	if !win.ShouldClose() {
		t.Fatal("ShouldClose after Close\nhave false\nwant true")
	}
}

type E struct{}

func (E) WindowClose(win Window) {
	fmt.Printf("E.WindowClose: %v\n", win)
}

func (E) WindowResize(win Window, newWidth, newHeight int) {
	fmt.Printf("E.WindowResize: %v, %d, %d\n", win, newWidth, newHeight)
}

func (E) KeyboardIn(win Window) {
	fmt.Printf("E.KeyboardIn: %v\n", win)
}

func (E) KeyboardOut(win Window) {
	fmt.Printf("E.KeyboardOut: %v\n", win)
}

func (E) KeyboardKey(key Key, pressed bool, modMask Modifier) {
	fmt.Printf("E.KeyboardKey: %d, %t, %x\n", key, pressed, modMask)
}

func (E) PointerIn(win Window, x, y int) {
	fmt.Printf("E.PointerIn: %v, %d, %d\n", win, x, y)
}

func (E) PointerOut(win Window) {
	fmt.Printf("E.PointerOut: %v\n", win)
}

func (E) PointerMotion(newX, newY int) {
	fmt.Printf("E.PointerMotion: %d, %d\n", newX, newY)
}

func (E) PointerButton(btn Button, pressed bool, x, y int) {
	fmt.Printf("E.PointerButton: %d, %t, %d, %d\n", btn, pressed, x, y)
}
