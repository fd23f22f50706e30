// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"testing"

	"github.com/gviegas/hybrid/driver"
	"github.com/gviegas/hybrid/driver/drivertest"
)

func TestNewImage(t *testing.T) {
	ctx, _ := newTestContext(t)
	for _, x := range [...]struct {
		pf   driver.PixelFmt
		want driver.Usage
	}{
		{driver.RGBA32f, driver.UShaderRead | driver.UShaderWrite | driver.UShaderSample | driver.URenderTarget | driver.UCopySrc},
		{driver.RGBA8un, driver.UShaderSample | driver.UCopyDst},
		{driver.D32f, driver.URenderTarget},
	} {
		im, err := NewImage(ctx, x.pf, 64, 32)
		if err != nil {
			t.Fatalf("NewImage(%d):\nhave %v\nwant nil", x.pf, err)
		}
		pf, size, usg := drivertest.ImageInfo(im.View())
		if pf != x.pf || size.Width != 64 || size.Height != 32 || size.Depth != 1 {
			t.Fatalf("NewImage: image info\nhave %d %v\nwant %d {64 32 1}", pf, size, x.pf)
		}
		if usg != x.want {
			t.Fatalf("NewImage(%d): usage\nhave %#x\nwant %#x", x.pf, usg, x.want)
		}
		if w, h := im.Size(); w != 64 || h != 32 {
			t.Fatalf("im.Size():\nhave %d, %d\nwant 64, 32", w, h)
		}
		if im.Layout() != driver.LUndefined {
			t.Fatalf("im.Layout():\nhave %d\nwant LUndefined", im.Layout())
		}
		im.Destroy()
	}
	if _, err := NewImage(ctx, driver.BGRA8sRGB, 64, 64); err == nil {
		t.Fatal("NewImage [unsupported format]:\nhave nil\nwant error")
	}
	if _, err := NewImage(ctx, driver.RGBA32f, 0, 64); err == nil {
		t.Fatal("NewImage [zero width]:\nhave nil\nwant error")
	}
}

func TestLayoutScope(t *testing.T) {
	for _, x := range [...]struct {
		l    driver.Layout
		sync driver.Sync
		acc  driver.Access
	}{
		{driver.LUndefined, driver.SNone, driver.ANone},
		{driver.LPresent, driver.SNone, driver.ANone},
		{driver.LShaderStore, driver.SRayTracing, driver.AShaderRead | driver.AShaderWrite},
		{driver.LShaderRead, driver.SFragmentShading, driver.AShaderRead},
		{driver.LColorTarget, driver.SColorOutput, driver.AColorRead | driver.AColorWrite},
		{driver.LDSTarget, driver.SDSOutput, driver.ADSRead | driver.ADSWrite},
	} {
		s, a := layoutScope(x.l)
		if s != x.sync || a != x.acc {
			t.Fatalf("layoutScope(%d):\nhave %#x, %#x\nwant %#x, %#x", x.l, s, a, x.sync, x.acc)
		}
	}
}

func TestImageTransition(t *testing.T) {
	ctx, gpu := newTestContext(t)
	im, err := NewImage(ctx, driver.RGBA32f, 8, 8)
	if err != nil {
		t.Fatal(err)
	}
	defer im.Destroy()
	scope, err := NewOneshotScope(ctx)
	if err != nil {
		t.Fatal(err)
	}
	cb := scope.CmdBuffer()
	im.Transition(cb, driver.LShaderStore)
	im.Transition(cb, driver.LShaderStore)
	im.Transition(cb, driver.LShaderRead)
	if im.Layout() != driver.LShaderRead {
		t.Fatalf("im.Layout():\nhave %d\nwant LShaderRead", im.Layout())
	}
	im.Invalidate()
	if im.Layout() != driver.LUndefined {
		t.Fatalf("im.Invalidate: layout\nhave %d\nwant LUndefined", im.Layout())
	}
	im.Transition(cb, driver.LShaderRead)
	gpu.ClearEvents()
	if err := scope.Finish(); err != nil {
		t.Fatal(err)
	}
	if n := count(gpu.Events(), "exec Transition"); n != 3 {
		t.Fatalf("Image.Transition: recorded transitions\nhave %d\nwant 3", n)
	}
}
