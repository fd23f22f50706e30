// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gviegas/hybrid/driver"
	"github.com/gviegas/hybrid/driver/drivertest"
	"github.com/gviegas/hybrid/scene"
)

// newTestContext returns a Context backed by a new fake
// GPU. Every live object is expected to be destroyed by
// the end of the test.
func newTestContext(t *testing.T) (*Context, *drivertest.GPU) {
	t.Helper()
	gpu := drivertest.New()
	t.Cleanup(func() {
		for _, k := range [...]string{"buffer", "image", "accel", "query"} {
			if n := gpu.Live(k); n != 0 {
				t.Errorf("gpu.Live(%q):\nhave %d\nwant 0", k, n)
			}
		}
		for _, err := range gpu.Errors() {
			t.Error(err)
		}
	})
	return NewContext(gpu), gpu
}

// quadScene returns a scene with nprim quad primitives and
// one instance per element of inst, which holds primitive
// indices.
func quadScene(nprim int, inst ...uint32) *scene.Scene {
	sc := &scene.Scene{Materials: []scene.Material{scene.DefaultMaterial()}}
	for i := 0; i < nprim; i++ {
		z := float32(i)
		sc.Vertices = append(sc.Vertices,
			scene.Vertex{Position: [3]float32{-1, -1, z}, Normal: [3]float32{0, 0, 1}},
			scene.Vertex{Position: [3]float32{1, -1, z}, Normal: [3]float32{0, 0, 1}},
			scene.Vertex{Position: [3]float32{1, 1, z}, Normal: [3]float32{0, 0, 1}},
			scene.Vertex{Position: [3]float32{-1, 1, z}, Normal: [3]float32{0, 0, 1}},
		)
		sc.Indices = append(sc.Indices, 0, 1, 2, 2, 3, 0)
		sc.Primitives = append(sc.Primitives, scene.Primitive{
			IndicesOffset:  uint32(6 * i),
			IndexCount:     6,
			VerticesOffset: uint32(4 * i),
			VertexCount:    4,
		})
	}
	for i, p := range inst {
		sc.Instances = append(sc.Instances, scene.Instance{
			PrimitiveIndex: p,
			Transform:      mgl32.Translate3D(float32(3*i), 0, 0),
		})
	}
	return sc
}

// testShaders returns shaders that the fake GPU accepts.
func testShaders() *Shaders {
	code := func() []byte { return spirvHeader(8) }
	return &Shaders{
		RayGen:      code(),
		Miss:        code(),
		ClosestHit:  code(),
		RasterVert:  code(),
		RasterFrag:  code(),
		TonemapVert: code(),
		TonemapFrag: code(),
	}
}

// spirvHeader returns a SPIR-V module of n words with a
// valid magic number.
func spirvHeader(n int) []byte {
	b := make([]byte, 4*n)
	b[0], b[1], b[2], b[3] = 0x03, 0x02, 0x23, 0x07
	return b
}

// uploadScene uploads sc into new scene buffers.
func uploadScene(t *testing.T, ctx *Context, sc *scene.Scene) *SceneBuffers {
	t.Helper()
	scope, err := NewOneshotScope(ctx)
	if err != nil {
		t.Fatalf("NewOneshotScope:\nhave %v\nwant nil", err)
	}
	sb, err := NewSceneBuffers(ctx, scope, sc)
	if err != nil {
		t.Fatalf("NewSceneBuffers:\nhave %v\nwant nil", err)
	}
	if err := scope.Finish(); err != nil {
		t.Fatalf("scope.Finish:\nhave %v\nwant nil", err)
	}
	return sb
}

// count returns the number of events equal to ev.
func count(events []string, ev string) (n int) {
	for _, e := range events {
		if e == ev {
			n++
		}
	}
	return
}

var _ driver.Presenter = (*drivertest.GPU)(nil)
