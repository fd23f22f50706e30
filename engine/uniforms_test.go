// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gviegas/hybrid/driver/drivertest"
)

func TestUniforms(t *testing.T) {
	ctx, _ := newTestContext(t)
	un, err := newUniforms(ctx)
	if err != nil {
		t.Fatalf("newUniforms:\nhave %v\nwant nil", err)
	}
	defer un.destroy()
	if un.stride%uniformAlign != 0 || un.stride < uniformSize {
		t.Fatalf("newUniforms: stride %d", un.stride)
	}
	u := frameUniforms{
		view:       mgl32.Translate3D(0, 0, -5),
		proj:       mgl32.Perspective(1, 1.5, 0.1, 100),
		frame:      7,
		maxBounces: 4,
		exposure:   2,
		flags:      uniPathtracer,
	}
	if err := un.write(1, &u); err != nil {
		t.Fatalf("un.write:\nhave %v\nwant nil", err)
	}
	b := drivertest.Contents(un.buf.Driver())[un.stride:]
	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b[off:])) }
	if x := f(uniView + 14*4); x != -5 {
		t.Fatalf("frameUniforms: view[14]\nhave %v\nwant -5", x)
	}
	if x := f(uniViewInv + 14*4); x != 5 {
		t.Fatalf("frameUniforms: viewInv[14]\nhave %v\nwant 5", x)
	}
	if x := binary.LittleEndian.Uint32(b[uniFrame:]); x != 7 {
		t.Fatalf("frameUniforms: frame\nhave %d\nwant 7", x)
	}
	if x := binary.LittleEndian.Uint32(b[uniMaxBounces:]); x != 4 {
		t.Fatalf("frameUniforms: maxBounces\nhave %d\nwant 4", x)
	}
	if x := f(uniExposure); x != 2 {
		t.Fatalf("frameUniforms: exposure\nhave %v\nwant 2", x)
	}
	if x := binary.LittleEndian.Uint32(b[uniFlags:]); x != uniPathtracer {
		t.Fatalf("frameUniforms: flags\nhave %d\nwant %d", x, uniPathtracer)
	}
	// Slot 0 is untouched.
	if x := drivertest.Contents(un.buf.Driver())[uniFrame]; x != 0 {
		t.Fatalf("un.write: slot 0 modified")
	}
}
