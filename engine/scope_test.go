// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/gviegas/hybrid/driver"
)

// addBuffers creates n buffers and adds them to rec.
// It returns the destroy events expected for them, in
// order.
func addBuffers(t *testing.T, ctx *Context, rec Recorder, n int) []string {
	t.Helper()
	var evs []string
	for i := 0; i < n; i++ {
		// UDeviceAddr makes Addr match the address in
		// destroy events.
		b, err := NewBuffer(ctx, 64, driver.UCopySrc|driver.UDeviceAddr, HostVisible)
		if err != nil {
			t.Fatal(err)
		}
		evs = append(evs, fmt.Sprintf("destroy buffer %#x", b.Addr()))
		rec.Add(BufferResource(b))
	}
	return evs
}

// destroyEvents filters the destroy events of evs.
func destroyEvents(evs []string) (d []string) {
	for _, e := range evs {
		if strings.HasPrefix(e, "destroy ") {
			d = append(d, e)
		}
	}
	return
}

func TestScopeFinish(t *testing.T) {
	ctx, gpu := newTestContext(t)
	cb, err := ctx.GPU().NewCmdBuffer(driver.QGraphics)
	if err != nil {
		t.Fatal(err)
	}
	defer cb.Destroy()
	scope, err := NewScope(ctx, cb)
	if err != nil {
		t.Fatalf("NewScope:\nhave %v\nwant nil", err)
	}
	if scope.CmdBuffer() != cb {
		t.Fatal("scope.CmdBuffer: command buffer mismatch")
	}
	want := addBuffers(t, ctx, scope, 3)
	gpu.ClearEvents()
	if err := scope.Finish(); err != nil {
		t.Fatalf("scope.Finish:\nhave %v\nwant nil", err)
	}
	evs := gpu.Events()
	if have := destroyEvents(evs); !reflect.DeepEqual(have, want) {
		t.Fatalf("scope.Finish: destroy events\nhave %v\nwant %v", have, want)
	}
	// Resources are destroyed only after the wait.
	if evs[0] != "submit 1" || !strings.HasPrefix(evs[len(evs)-4], "wait fence") {
		t.Fatalf("scope.Finish: unexpected event order\n%v", evs)
	}
	if err := scope.Finish(); !errors.Is(err, ErrScopeFinished) {
		t.Fatalf("scope.Finish [second call]:\nhave %v\nwant %v", err, ErrScopeFinished)
	}
	if len(destroyEvents(gpu.Events())) != 3 {
		t.Fatal("scope.Finish [second call]: resources destroyed again")
	}
}

func TestScopeAddAfterFinish(t *testing.T) {
	ctx, gpu := newTestContext(t)
	scope, err := NewOneshotScope(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := scope.Finish(); err != nil {
		t.Fatal(err)
	}
	gpu.ClearEvents()
	want := addBuffers(t, ctx, scope, 1)
	if have := destroyEvents(gpu.Events()); !reflect.DeepEqual(have, want) {
		t.Fatalf("scope.Add [finished]:\nhave %v\nwant %v", have, want)
	}
}

func TestScopeListResource(t *testing.T) {
	ctx, gpu := newTestContext(t)
	scope, err := NewOneshotScope(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var list []Resource
	var want []string
	for i := 0; i < 2; i++ {
		b, err := NewBuffer(ctx, 16, driver.UDeviceAddr, DeviceLocal)
		if err != nil {
			t.Fatal(err)
		}
		list = append(list, BufferResource(b))
		want = append(want, fmt.Sprintf("destroy buffer %#x", b.Addr()))
	}
	qp, err := NewQueryPool(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	as, err := NewAccelStruct(ctx, driver.ABottom, 512)
	if err != nil {
		t.Fatal(err)
	}
	im, err := NewImage(ctx, driver.RGBA32f, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	scope.Add(ListResource(list...))
	scope.Add(QueryResource(qp))
	scope.Add(AccelResource(as))
	scope.Add(ImageResource(im))
	gpu.ClearEvents()
	if err := scope.Finish(); err != nil {
		t.Fatal(err)
	}
	have := destroyEvents(gpu.Events())
	if len(have) != 6 || !reflect.DeepEqual(have[:2], want) {
		t.Fatalf("scope.Finish: destroy events\nhave %v\nwant %v followed by query, accel and image", have, want)
	}
	for i, k := range [...]string{"query", "accel", "buffer", "image"} {
		if !strings.HasPrefix(have[2+i], "destroy "+k) {
			t.Fatalf("scope.Finish: destroy event %d\nhave %s\nwant destroy %s ...", 2+i, have[2+i], k)
		}
	}
}

func TestScopeSubmitFailure(t *testing.T) {
	ctx, gpu := newTestContext(t)
	scope, err := NewOneshotScope(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := addBuffers(t, ctx, scope, 2)
	errSubmit := errors.New("device lost")
	gpu.FailSubmit(errSubmit)
	defer gpu.FailSubmit(nil)
	gpu.ClearEvents()
	if err := scope.Finish(); !errors.Is(err, errSubmit) {
		t.Fatalf("scope.Finish [failed submission]:\nhave %v\nwant %v", err, errSubmit)
	}
	evs := gpu.Events()
	if len(evs) == 0 || evs[0] != "wait idle" {
		t.Fatalf("scope.Finish [failed submission]: expected wait idle before destruction\n%v", evs)
	}
	if have := destroyEvents(evs); !reflect.DeepEqual(have, want) {
		t.Fatalf("scope.Finish [failed submission]: destroy events\nhave %v\nwant %v", have, want)
	}
	if err := scope.Finish(); !errors.Is(err, ErrScopeFinished) {
		t.Fatalf("scope.Finish [second call]:\nhave %v\nwant %v", err, ErrScopeFinished)
	}
}

func TestFlushableScope(t *testing.T) {
	ctx, gpu := newTestContext(t)
	scope, err := NewFlushableScope(ctx)
	if err != nil {
		t.Fatal(err)
	}
	src, err := NewBufferWithData(ctx, []byte{1, 2, 3, 4}, driver.UCopySrc)
	if err != nil {
		t.Fatal(err)
	}
	dst, err := NewBuffer(ctx, 4, driver.UCopyDst|driver.UDeviceAddr, DeviceLocal)
	if err != nil {
		t.Fatal(err)
	}
	scope.Add(BufferResource(src))
	scope.Add(BufferResource(dst))
	src.RecordCopy(scope.CmdBuffer(), dst, 0, 0, 4)
	gpu.ClearEvents()
	if err := scope.Flush(); err != nil {
		t.Fatalf("scope.Flush:\nhave %v\nwant nil", err)
	}
	if n := count(gpu.Events(), "exec CopyBuffer"); n != 1 {
		t.Fatalf("scope.Flush: executed copies\nhave %d\nwant 1", n)
	}
	if len(destroyEvents(gpu.Events())) != 0 {
		t.Fatal("scope.Flush: resources destroyed")
	}
	// Recording resumes after a flush.
	src.RecordCopy(scope.CmdBuffer(), dst, 0, 0, 2)
	if err := scope.Flush(); err != nil {
		t.Fatalf("scope.Flush [second call]:\nhave %v\nwant nil", err)
	}
	if err := scope.Finish(); err != nil {
		t.Fatalf("scope.Finish:\nhave %v\nwant nil", err)
	}
	if n := count(gpu.Events(), "exec CopyBuffer"); n != 2 {
		t.Fatalf("scope.Finish: executed copies\nhave %d\nwant 2", n)
	}
	if n := len(destroyEvents(gpu.Events())); n != 2 {
		t.Fatalf("scope.Finish: destroy events\nhave %d\nwant 2", n)
	}
	if err := scope.Flush(); !errors.Is(err, ErrScopeFinished) {
		t.Fatalf("scope.Flush [finished]:\nhave %v\nwant %v", err, ErrScopeFinished)
	}
}

func TestFlushableScopeFailure(t *testing.T) {
	ctx, gpu := newTestContext(t)
	scope, err := NewFlushableScope(ctx)
	if err != nil {
		t.Fatal(err)
	}
	addBuffers(t, ctx, scope, 1)
	errSubmit := errors.New("out of memory")
	gpu.FailSubmit(errSubmit)
	if err := scope.Flush(); !errors.Is(err, errSubmit) {
		t.Fatalf("scope.Flush:\nhave %v\nwant %v", err, errSubmit)
	}
	gpu.FailSubmit(nil)
	if err := scope.Flush(); !errors.Is(err, errSubmit) {
		t.Fatalf("scope.Flush [after failure]:\nhave %v\nwant %v", err, errSubmit)
	}
	if err := scope.Finish(); !errors.Is(err, errSubmit) {
		t.Fatalf("scope.Finish [after failure]:\nhave %v\nwant %v", err, errSubmit)
	}
	if n := gpu.Live("buffer"); n != 0 {
		t.Fatalf("gpu.Live(\"buffer\"):\nhave %d\nwant 0", n)
	}
}
