// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

import (
	"testing"

	"github.com/gviegas/hybrid/driver"
)

func TestCmdBuffer(t *testing.T) {
	zcb := cmdBuffer{}
	for _, q := range [...]driver.Queue{driver.QGraphics, driver.QCompute} {
		call := "tDrv.NewCmdBuffer()"
		cb, err := tDrv.NewCmdBuffer(q)
		if err != nil {
			if cb != nil {
				t.Errorf("%s\nhave %p, %v\nwant nil, %v", call, cb, err, err)
			}
			continue
		}
		if cb == nil {
			t.Errorf("%s\nhave nil, nil\nwant non-nil, nil", call)
			return
		}
		cb := cb.(*cmdBuffer)
		if cb.d != &tDrv {
			t.Errorf("%s: cb.d\nhave %p\nwant %p", call, cb.d, &tDrv)
		}
		if cb.qfam != tDrv.qfam[q] {
			t.Errorf("%s: cb.qfam\nhave %d\nwant %d", call, cb.qfam, tDrv.qfam[q])
		}
		if cb.pool == zcb.pool {
			t.Errorf("%s: cb.pool\nhave %v\nwant valid handle", call, cb.pool)
		}
		if cb.cb == nil {
			t.Errorf("%s: cb.cb\nhave nil\nwant non-nil", call)
		}
		// Begin/End without commands.
		if err := cb.Begin(); err != nil {
			t.Errorf("cb.Begin()\nhave %v\nwant nil", err)
		} else if !cb.begun {
			t.Error("cb.Begin(): cb.begun\nhave false\nwant true")
		}
		if err := cb.End(); err != nil {
			t.Errorf("cb.End()\nhave %v\nwant nil", err)
		} else if cb.begun {
			t.Error("cb.End(): cb.begun\nhave true\nwant false")
		}
		// Destroy.
		cb.Destroy()
		if cb.d != nil || cb.pool != zcb.pool || cb.cb != nil {
			t.Errorf("cb.Destroy(): cb\nhave %v\nwant %v", cb, cmdBuffer{})
		}
	}
}

func TestCmdRecording(t *testing.T) {
	cb, err := tDrv.NewCmdBuffer(driver.QGraphics)
	if err != nil {
		t.Fatalf("NewCmdBuffer failed, cannot test command recording: %v", err)
	}
	defer cb.Destroy()
	src, err := tDrv.NewBuffer(1024, true, driver.UCopySrc)
	if err != nil {
		t.Fatalf("NewBuffer failed, cannot test command recording: %v", err)
	}
	defer src.Destroy()
	dst, err := tDrv.NewBuffer(769, true, driver.UCopyDst)
	if err != nil {
		t.Fatalf("NewBuffer failed, cannot test command recording: %v", err)
	}
	defer dst.Destroy()
	if err = cb.Begin(); err != nil {
		t.Fatalf("cb.Begin()\nhave %v\nwant nil", err)
	}
	cb.Fill(src, 16, 0x2a, 256)
	cb.Barrier([]driver.Barrier{
		{
			SyncBefore:   driver.SCopy,
			SyncAfter:    driver.SCopy,
			AccessBefore: driver.ACopyWrite,
			AccessAfter:  driver.ACopyRead | driver.ACopyWrite,
		},
	})
	cb.CopyBuffer(&driver.BufferCopy{
		From:    src,
		FromOff: 16,
		To:      dst,
		ToOff:   512,
		Size:    256,
	})
	cb.Barrier([]driver.Barrier{
		{
			SyncBefore:   driver.SCopy,
			SyncAfter:    driver.SAll,
			AccessBefore: driver.ACopyWrite,
			AccessAfter:  driver.AAnyRead,
		},
	})
	if err = cb.End(); err != nil {
		t.Fatalf("cb.End()\nhave %v\nwant nil", err)
	}
	if err = tSubmit(cb); err != nil {
		t.Fatalf("tSubmit(cb)\nhave %v\nwant nil", err)
	}
	b := dst.Bytes()
	for i := 512; i < 768; i++ {
		if b[i] != 0x2a {
			t.Fatalf("dst.Bytes()[%d]\nhave %#x\nwant 0x2a", i, b[i])
		}
	}
	if err = cb.Reset(); err != nil {
		t.Errorf("cb.Reset()\nhave %v\nwant nil", err)
	}
}

func TestConvSync(t *testing.T) {
	if x := convSync(driver.SNone); x != 0 {
		t.Errorf("convSync(SNone)\nhave %#x\nwant 0", x)
	}
	syncs := [...]driver.Sync{
		driver.SVertexInput,
		driver.SVertexShading,
		driver.SFragmentShading,
		driver.SComputeShading,
		driver.SColorOutput,
		driver.SDSOutput,
		driver.SDraw,
		driver.SCopy,
		driver.SAccelBuild,
		driver.SRayTracing,
		driver.SAll,
	}
	for _, s := range syncs {
		if x := convSync(s); x == 0 {
			t.Errorf("convSync(%#x)\nhave 0\nwant non-zero", s)
		}
	}
	all := convSync(driver.SAll)
	if x := convSync(driver.SAll | driver.SCopy); x != all {
		t.Errorf("convSync(SAll|SCopy)\nhave %#x\nwant %#x", x, all)
	}
}

func TestConvAccess(t *testing.T) {
	if x := convAccess(0); x != 0 {
		t.Errorf("convAccess(0)\nhave %#x\nwant 0", x)
	}
	accs := [...]driver.Access{
		driver.AVertexBufRead,
		driver.AIndexBufRead,
		driver.AColorRead,
		driver.AColorWrite,
		driver.ADSRead,
		driver.ADSWrite,
		driver.ACopyRead,
		driver.ACopyWrite,
		driver.AShaderRead,
		driver.AShaderWrite,
		driver.AAccelRead,
		driver.AAccelWrite,
		driver.AAnyRead,
		driver.AAnyWrite,
	}
	seen := make(map[_Ctype_VkAccessFlags2]bool)
	for _, a := range accs {
		x := convAccess(a)
		if x == 0 {
			t.Errorf("convAccess(%#x)\nhave 0\nwant non-zero", a)
		}
		if seen[x] {
			t.Errorf("convAccess(%#x)\nhave %#x\nwant distinct value", a, x)
		}
		seen[x] = true
	}
}

func TestConvLayout(t *testing.T) {
	if convLayout(driver.LCommon) != convLayout(driver.LShaderStore) {
		t.Error("convLayout(LCommon) != convLayout(LShaderStore)")
	}
	if x := convLayout(driver.LUndefined); x != 0 {
		t.Errorf("convLayout(LUndefined)\nhave %d\nwant 0", x)
	}
	for _, l := range [...]driver.Layout{driver.LColorTarget, driver.LDSTarget, driver.LDSRead, driver.LCopySrc, driver.LCopyDst, driver.LShaderRead, driver.LPresent} {
		if x := convLayout(l); x == 0 || x == ^_Ctype_VkImageLayout(0) {
			t.Errorf("convLayout(%d)\nhave %d\nwant valid layout", l, x)
		}
	}
}
