// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

import (
	"runtime"
	"strings"
	"testing"
	"unsafe"
)

func TestOpen(t *testing.T) {
	d := Driver{}
	gpu, err := d.Open()
	defer d.Close()
	t.Logf("d.Open()\n%+v", gpu)
	switch err {
	default:
		if d.inst != nil || d.dev != nil {
			t.Error("d.Open(): Driver\nhave non-zero\nwant Driver{}")
		}
		if gpu != nil {
			t.Error("d.Open(): GPU\nhave non-nil\nwant nil")
		}
	case nil:
		if d.inst == nil {
			t.Error("d.Open(): d.inst\nhave nil\nwant non-nil")
		}
		if d.ivers == 0 {
			t.Error("d.Open(): d.ivers\nhave 0\nwant > 0")
		}
		if d.pdev == nil {
			t.Error("d.Open(): d.pdev\nhave nil\nwant non-nil")
		}
		if d.dvers == 0 {
			t.Error("d.Open(): d.dvers\nhave 0\nwant > 0")
		}
		if d.dev == nil {
			t.Error("d.Open(): d.dev\nhave nil\nwant non-nil")
		}
		if d.ques == nil {
			t.Error("d.Open(): d.ques\nhave nil\nwant non-nil")
		}
		if len(d.mused) == 0 {
			t.Error("d.Open(): len(d.mused)\nhave 0\nwant > 0")
		}
		if gpu == nil {
			t.Error("d.Open(): GPU\nhave nil\nwant non-nil")
		} else if x, ok := gpu.(*Driver); ok {
			if x == nil {
				t.Errorf("d.Open(): GPU\nhave %#v\nwant d", (*Driver)(nil))
			} else if x != &d {
				t.Errorf("d.Open(): GPU\nhave %p\nwant %p", x, &d)
			}
		} else {
			t.Errorf("d.Open(): GPU\nhave %T\nwant %T", gpu, &d)
		}
	}
	// Subsequent calls to Open should return the same GPU and not fail.
	if err == nil {
		if g, e := d.Open(); g != gpu || e != nil {
			t.Errorf("d.Open()\nhave %p, %v\nwant %p, %v", g, e, gpu, err)
		}
	} else {
		t.Log("d.Open failed, cannot test multiple calls on open driver")
	}
}

func TestName(t *testing.T) {
	// Name should not require an open driver.
	d := &Driver{}
	s := d.Name()
	if s == "" {
		t.Error("d.Name()\nhave \"\"\nwant non-empty")
	} else if !strings.HasPrefix(s, "vulkan") {
		t.Errorf("d.Name()\nhave %s\nwant vulkan*", s)
	}
	if d.inst != nil || d.dev != nil {
		t.Errorf("d.Name(): Driver\nhave %v\nwant Driver{}", d)
	}
	// Name should not require a valid driver.
	d = nil
	defer func() {
		if x := recover(); x != nil {
			t.Errorf("unexpected panic: %v", x)
		}
	}()
	if x := d.Name(); x != s {
		t.Errorf("d.Name()\nhave %s\nwant %s (differs from previous call)", x, s)
	}
	// Name should not change for open driver.
	d = &Driver{}
	if _, err := d.Open(); err != nil {
		t.Log("d.Open() failed, cannot test Name method with open driver")
	} else if x := d.Name(); x != s {
		t.Errorf("d.Name()\nhave %s\nwant %s (differs from previous call)", x, s)
	}
}

func TestClose(t *testing.T) {
	// Close should not require an open driver.
	d := Driver{}
	d.Close()
	// Close should set d to the zero value.
	if _, err := d.Open(); err != nil {
		t.Log("d.Open() failed, cannot test Close method with open driver")
	} else {
		d.Close()
		if d.inst != nil || d.dev != nil {
			t.Errorf("d.Close(): Driver\nhave %v\nwant Driver{}", d)
		}
	}
}

func TestDriver(t *testing.T) {
	var d *Driver
	if x, ok := d.Driver().(*Driver); !ok || x != nil {
		t.Errorf("d.Driver()\nhave %#v\nwant %#v", x, (*Driver)(nil))
	}
	d = new(Driver)
	if x := d.Driver(); x != d {
		t.Errorf("d.Driver()\nhave %p\nwant %p", x, d)
	}
}

func TestSelectExts(t *testing.T) {
	surf, swap := extSurface.name(), extSwapchain.name()
	cases := [...]struct {
		info extInfo
		from []string
		want []string
		err  error
	}{
		{extInfo{}, nil, nil, nil},
		{extInfo{required: []extension{extSurface}}, []string{surf}, []string{surf}, nil},
		{extInfo{required: []extension{extSurface}}, []string{swap}, nil, errNoExtension},
		{extInfo{required: []extension{extSurface}}, nil, nil, errNoExtension},
		{extInfo{optional: []extension{extSurface}}, nil, nil, nil},
		{extInfo{optional: []extension{extSurface, extSwapchain}}, []string{swap}, []string{swap}, nil},
		{extInfo{required: []extension{extSwapchain}, optional: []extension{extSurface}}, []string{surf, swap}, []string{swap, surf}, nil},
	}
	for _, c := range cases {
		var d Driver
		names, err := d.selectExts(c.info, c.from)
		if err != c.err {
			t.Errorf("d.selectExts(%v, %v)\nhave _, %v\nwant %v", c.info, c.from, err, c.err)
			continue
		}
		if err != nil {
			continue
		}
		if len(names) != len(c.want) {
			t.Errorf("d.selectExts(%v, %v)\nhave %v\nwant %v", c.info, c.from, names, c.want)
			continue
		}
		for i := range names {
			if names[i] != c.want[i] {
				t.Errorf("d.selectExts(%v, %v)\nhave %v\nwant %v", c.info, c.from, names, c.want)
				break
			}
		}
		for _, e := range append(c.info.required, c.info.optional...) {
			if d.exts[e] != hasExts(c.from, []string{e.name()}) {
				t.Errorf("d.selectExts(%v, %v): d.exts[%s]\nhave %t\nwant %t", c.info, c.from, e.name(), d.exts[e], !d.exts[e])
			}
		}
	}
}

func TestCStrings(t *testing.T) {
	for _, s := range [][]string{nil, {}, {"VK_KHR_surface"}, {"a", "bc", "def"}} {
		names, free := cStrings(s)
		if err := checkCStrings(s, unsafe.Pointer(names)); err != nil {
			t.Error(err)
		}
		free()
	}
}

func TestMemSanity(t *testing.T) {
	d := Driver{}
	if _, err := d.Open(); err != nil {
		t.Error("d.Open() failed, cannot test memory sanity")
		return
	}
	defer d.Close()
	if len(d.mused) != int(d.mprop.memoryHeapCount) {
		t.Errorf("len(d.mused)\nhave %d\nwant %d", len(d.mused), d.mprop.memoryHeapCount)
	}
	for i, n := range d.mused {
		if n != 0 {
			t.Errorf("d.mused[%d]\nhave %d\nwant 0", i, n)
		}
	}
}

func TestExtSanity(t *testing.T) {
	d := Driver{}
	if _, err := d.Open(); err != nil {
		t.Error("d.Open() failed, cannot test extension sanity")
		return
	}
	defer d.Close()

	for _, e := range [...]extension{extAccelStruct, extRayTracing, extDeferredOps} {
		if !d.exts[e] {
			t.Errorf("d.exts[<%s>]\nhave false\nwant true", e.name())
		}
	}
	if !d.canPresent() && d.exts[extSwapchain] {
		t.Error("d.exts[extSwapchain]\nhave true\nwant false")
	}

	var bad []extension
	switch runtime.GOOS {
	default:
		bad = []extension{extAndroidSurface, extWaylandSurface, extWin32Surface}
	case "android":
		bad = []extension{extWaylandSurface, extWin32Surface, extXCBSurface, extXlibSurface}
	case "linux":
		bad = []extension{extAndroidSurface, extWin32Surface}
	case "windows":
		bad = []extension{extAndroidSurface, extWaylandSurface, extXCBSurface, extXlibSurface}
	}
	for _, e := range bad {
		if d.exts[e] {
			t.Errorf("d.exts[<%s>]\nhave true\nwant false", e.name())
		}
	}
}

func TestLimits(t *testing.T) {
	lim := tDrv.Limits()
	if lim.MinScratchAlign <= 0 || lim.MinScratchAlign&(lim.MinScratchAlign-1) != 0 {
		t.Errorf("tDrv.Limits().MinScratchAlign\nhave %d\nwant power of two", lim.MinScratchAlign)
	}
	if lim.ShaderGroupHandleSize <= 0 {
		t.Errorf("tDrv.Limits().ShaderGroupHandleSize\nhave %d\nwant > 0", lim.ShaderGroupHandleSize)
	}
	if lim.ShaderGroupBaseAlign < lim.ShaderGroupHandleAlign {
		t.Errorf("tDrv.Limits().ShaderGroupBaseAlign\nhave %d\nwant >= %d", lim.ShaderGroupBaseAlign, lim.ShaderGroupHandleAlign)
	}
	if lim.MaxRayRecursion < 1 {
		t.Errorf("tDrv.Limits().MaxRayRecursion\nhave %d\nwant >= 1", lim.MaxRayRecursion)
	}
	if lim.MaxDAccel < 1 {
		t.Errorf("tDrv.Limits().MaxDAccel\nhave %d\nwant >= 1", lim.MaxDAccel)
	}
}

func TestVersion(t *testing.T) {
	v := _Ctype_uint32_t(1<<22 | 3<<12 | 204)
	if x := versionMajor(v); x != 1 {
		t.Errorf("versionMajor(%d)\nhave %d\nwant 1", v, x)
	}
	if x := versionMinor(v); x != 3 {
		t.Errorf("versionMinor(%d)\nhave %d\nwant 3", v, x)
	}
	if x := versionPatch(v); x != 204 {
		t.Errorf("versionPatch(%d)\nhave %d\nwant 204", v, x)
	}
	if isVariant(v) {
		t.Errorf("isVariant(%d)\nhave true\nwant false", v)
	}
}
