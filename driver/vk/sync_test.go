// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

import (
	"testing"

	"github.com/gviegas/hybrid/driver"
)

func TestFence(t *testing.T) {
	for _, signaled := range [...]bool{true, false} {
		f, err := tDrv.NewFence(signaled)
		if err != nil {
			t.Fatalf("tDrv.NewFence(%t)\nhave %v\nwant nil", signaled, err)
		}
		if signaled {
			if err := f.Wait(); err != nil {
				t.Errorf("f.Wait()\nhave %v\nwant nil", err)
			}
			if err := f.Reset(); err != nil {
				t.Errorf("f.Reset()\nhave %v\nwant nil", err)
			}
		}
		// An empty submission must still signal the fence.
		if err := tDrv.Submit(driver.QGraphics, nil, f); err != nil {
			t.Fatalf("tDrv.Submit(QGraphics, nil, f)\nhave %v\nwant nil", err)
		}
		if err := f.Wait(); err != nil {
			t.Errorf("f.Wait()\nhave %v\nwant nil", err)
		}
		x := f.(*fence)
		f.Destroy()
		if x.d != nil {
			t.Errorf("f.Destroy(): f\nhave %v\nwant %v", x, fence{})
		}
	}
}

func TestSemaphore(t *testing.T) {
	cb1, err := tDrv.NewCmdBuffer(driver.QGraphics)
	if err != nil {
		t.Fatal(err)
	}
	defer cb1.Destroy()
	cb2, err := tDrv.NewCmdBuffer(driver.QCompute)
	if err != nil {
		t.Fatal(err)
	}
	defer cb2.Destroy()
	sem, err := tDrv.NewSemaphore()
	if err != nil {
		t.Fatalf("tDrv.NewSemaphore()\nhave %v\nwant nil", err)
	}
	defer sem.Destroy()
	for _, cb := range [...]driver.CmdBuffer{cb1, cb2} {
		if err := cb.Begin(); err != nil {
			t.Fatal(err)
		}
		if err := cb.End(); err != nil {
			t.Fatal(err)
		}
	}
	sub := []driver.Submission{{Cmd: []driver.CmdBuffer{cb1}, Signal: []driver.Semaphore{sem}}}
	if err := tDrv.Submit(driver.QGraphics, sub, nil); err != nil {
		t.Fatalf("tDrv.Submit(QGraphics, <signal>, nil)\nhave %v\nwant nil", err)
	}
	f, err := tDrv.NewFence(false)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Destroy()
	sub = []driver.Submission{{
		Cmd:    []driver.CmdBuffer{cb2},
		Wait:   []driver.Semaphore{sem},
		WaitAt: []driver.Sync{driver.SAll},
	}}
	if err := tDrv.Submit(driver.QCompute, sub, f); err != nil {
		t.Fatalf("tDrv.Submit(QCompute, <wait>, f)\nhave %v\nwant nil", err)
	}
	if err := f.Wait(); err != nil {
		t.Errorf("f.Wait()\nhave %v\nwant nil", err)
	}
}

func TestSubmitMismatch(t *testing.T) {
	sem, err := tDrv.NewSemaphore()
	if err != nil {
		t.Fatal(err)
	}
	defer sem.Destroy()
	sub := []driver.Submission{{Wait: []driver.Semaphore{sem}}}
	if err := tDrv.Submit(driver.QGraphics, sub, nil); err == nil {
		t.Error("tDrv.Submit(<missing WaitAt>)\nhave nil\nwant non-nil")
	}
}
