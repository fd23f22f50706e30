// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/gviegas/hybrid/driver"
	"github.com/gviegas/hybrid/driver/drivertest"
	"github.com/gviegas/hybrid/scene"
)

func TestSceneDesc(t *testing.T) {
	d := SceneDesc{
		Vertices:   0x10000,
		Indices:    0x20100,
		Materials:  0xffffffff00000000,
		Primitives: 1,
	}
	b := EncodeSceneDesc(d)
	if len(b) != SceneDescSize {
		t.Fatalf("EncodeSceneDesc: len\nhave %d\nwant %d", len(b), SceneDescSize)
	}
	if x := binary.LittleEndian.Uint64(b[16:]); x != d.Materials {
		t.Fatalf("EncodeSceneDesc: materials field\nhave %#x\nwant %#x", x, d.Materials)
	}
	have, err := DecodeSceneDesc(b)
	if err != nil || have != d {
		t.Fatalf("DecodeSceneDesc:\nhave %+v, %v\nwant %+v, nil", have, err, d)
	}
	if _, err := DecodeSceneDesc(b[:SceneDescSize-1]); err == nil {
		t.Fatal("DecodeSceneDesc [short]:\nhave nil\nwant error")
	}
}

func TestSceneBuffers(t *testing.T) {
	ctx, _ := newTestContext(t)
	sc := quadScene(2, 0, 1)
	sc.Vertices[1].Texcoord = [2]float32{0.5, 0.25}
	sc.Materials[0].Emission = [3]float32{1, 2, 3}
	sc.Primitives[1].MaterialIndex = 0
	sb := uploadScene(t, ctx, sc)
	defer sb.Destroy()

	// The descriptor read back from device memory must
	// match the addresses it was created from.
	d, err := DecodeSceneDesc(drivertest.Contents(sb.DescBuffer().Driver()))
	if err != nil {
		t.Fatal(err)
	}
	if d != sb.Desc() {
		t.Fatalf("SceneBuffers: uploaded descriptor\nhave %+v\nwant %+v", d, sb.Desc())
	}
	want := SceneDesc{
		Vertices:   sb.Vertices().Addr(),
		Indices:    sb.Indices().Addr(),
		Materials:  sb.Materials().Addr(),
		Primitives: sb.Primitives().Addr(),
	}
	if d != want {
		t.Fatalf("SceneBuffers: descriptor addresses\nhave %+v\nwant %+v", d, want)
	}

	vs := drivertest.Contents(sb.Vertices().Driver())
	if len(vs) != len(sc.Vertices)*VertexSize {
		t.Fatalf("SceneBuffers: vertex data size\nhave %d\nwant %d", len(vs), len(sc.Vertices)*VertexSize)
	}
	f := func(b []byte, off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b[off:])) }
	if x := f(vs, VertexSize+vertexTexcoord+4); x != 0.25 {
		t.Fatalf("SceneBuffers: texcoord.y of vertex 1\nhave %v\nwant 0.25", x)
	}
	if x := f(vs, VertexSize+vertexPosition); x != 1 {
		t.Fatalf("SceneBuffers: position.x of vertex 1\nhave %v\nwant 1", x)
	}
	ms := drivertest.Contents(sb.Materials().Driver())
	if x := f(ms, 16+8); x != 3 {
		t.Fatalf("SceneBuffers: emission.z\nhave %v\nwant 3", x)
	}
	if x := f(ms, 40); x != 1.5 {
		t.Fatalf("SceneBuffers: ior\nhave %v\nwant 1.5", x)
	}
	ps := drivertest.Contents(sb.Primitives().Driver())
	if x := binary.LittleEndian.Uint32(ps[PrimitiveInfoSize:]); x != 6 {
		t.Fatalf("SceneBuffers: indices offset of primitive 1\nhave %d\nwant 6", x)
	}
	if x := binary.LittleEndian.Uint32(ps[PrimitiveInfoSize+4:]); x != 4 {
		t.Fatalf("SceneBuffers: vertices offset of primitive 1\nhave %d\nwant 4", x)
	}
	is := drivertest.Contents(sb.Indices().Driver())
	want32 := []byte{0, 0, 0, 0, 1, 0, 0, 0, 2, 0, 0, 0}
	if !bytes.Equal(is[:12], want32) {
		t.Fatalf("SceneBuffers: indices\nhave %v\nwant %v", is[:12], want32)
	}
	for _, b := range [...]*Buffer{sb.Vertices(), sb.Indices(), sb.Materials(), sb.Primitives()} {
		if drivertest.Usage(b.Driver())&sceneUsage != sceneUsage {
			t.Fatalf("SceneBuffers: usage %#x lacks %#x", drivertest.Usage(b.Driver()), sceneUsage)
		}
	}
	if drivertest.Usage(sb.Vertices().Driver())&driver.UVertexData == 0 {
		t.Fatal("SceneBuffers: vertex buffer lacks UVertexData")
	}
	if drivertest.Usage(sb.Indices().Driver())&driver.UIndexData == 0 {
		t.Fatal("SceneBuffers: index buffer lacks UIndexData")
	}
}

func TestSceneBuffersInvalid(t *testing.T) {
	ctx, gpu := newTestContext(t)
	sc := quadScene(1, 0)
	sc.Instances[0].PrimitiveIndex = 1
	scope, err := NewOneshotScope(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewSceneBuffers(ctx, scope, sc); !errors.Is(err, scene.ErrInvalid) {
		t.Fatalf("NewSceneBuffers [invalid scene]:\nhave %v\nwant %v", err, scene.ErrInvalid)
	}
	if err := scope.Finish(); err != nil {
		t.Fatal(err)
	}
	if n := gpu.Live("buffer"); n != 0 {
		t.Fatalf("gpu.Live(\"buffer\"):\nhave %d\nwant 0", n)
	}
}
