// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package vk

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gviegas/hybrid/driver"
)

// tTriangle creates a buffer holding a single triangle
// followed by its indices.
func tTriangle(t *testing.T) (driver.Buffer, driver.AccelGeometry) {
	buf, err := tDrv.NewBuffer(256, true, driver.UAccelInput|driver.UDeviceAddr)
	if err != nil {
		t.Fatalf("tDrv.NewBuffer: %v", err)
	}
	b := buf.Bytes()
	pos := [...]float32{-1, -1, 0, 1, -1, 0, 0, 1, 0}
	for i, x := range pos {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(x))
	}
	for i := range 3 {
		binary.LittleEndian.PutUint32(b[128+i*4:], uint32(i))
	}
	return buf, driver.AccelGeometry{
		Triangles: &driver.AccelTriangles{
			VertexFmt:    driver.Float32x3,
			VertexAddr:   buf.Addr(),
			VertexStride: 12,
			MaxVertex:    2,
			IndexFmt:     driver.Index32,
			IndexAddr:    buf.Addr() + 128,
			Opaque:       true,
		},
		Range: driver.AccelRange{PrimitiveCount: 1},
	}
}

func TestAccelSizes(t *testing.T) {
	buf, geom := tTriangle(t)
	defer buf.Destroy()
	b := driver.AccelBuild{
		Level:    driver.ABottom,
		Flags:    driver.AFastTrace | driver.AAllowCompaction,
		Geometry: []driver.AccelGeometry{geom},
	}
	s, err := tDrv.AccelSizes(&b)
	if err != nil {
		t.Fatalf("tDrv.AccelSizes(&b)\nhave %v\nwant nil", err)
	}
	if s.Size <= 0 || s.ScratchSize <= 0 {
		t.Errorf("tDrv.AccelSizes(&b)\nhave %+v\nwant positive sizes", s)
	}
	if _, err := tDrv.AccelSizes(&driver.AccelBuild{Level: driver.ABottom}); err == nil {
		t.Error("tDrv.AccelSizes(<no geometry>)\nhave nil\nwant non-nil")
	}
}

func TestNewAccelStruct(t *testing.T) {
	buf, err := tDrv.NewBuffer(1<<16, false, driver.UAccelStorage)
	if err != nil {
		t.Fatalf("tDrv.NewBuffer: %v", err)
	}
	defer buf.Destroy()
	if as, err := tDrv.NewAccelStruct(driver.ABottom, buf, 100, 1024); err == nil {
		as.Destroy()
		t.Error("tDrv.NewAccelStruct(<misaligned>)\nhave nil\nwant non-nil")
	}
	if as, err := tDrv.NewAccelStruct(driver.ABottom, buf, 1<<15, 1<<16); err == nil {
		as.Destroy()
		t.Error("tDrv.NewAccelStruct(<out of bounds>)\nhave nil\nwant non-nil")
	}
	as, err := tDrv.NewAccelStruct(driver.ATop, buf, 256, 4096)
	if err != nil {
		t.Fatalf("tDrv.NewAccelStruct\nhave %v\nwant nil", err)
	}
	if as.Level() != driver.ATop {
		t.Errorf("as.Level()\nhave %d\nwant %d", as.Level(), driver.ATop)
	}
	if as.Addr() == 0 {
		t.Error("as.Addr()\nhave 0\nwant non-zero")
	}
	x := as.(*accelStruct)
	as.Destroy()
	if x.d != nil {
		t.Errorf("as.Destroy(): as\nhave %v\nwant %v", x, accelStruct{})
	}
}

func TestBuildAccel(t *testing.T) {
	vbuf, geom := tTriangle(t)
	defer vbuf.Destroy()
	b := driver.AccelBuild{
		Level:    driver.ABottom,
		Flags:    driver.AFastTrace | driver.AAllowCompaction,
		Geometry: []driver.AccelGeometry{geom},
	}
	sizes, err := tDrv.AccelSizes(&b)
	if err != nil {
		t.Fatal(err)
	}
	align := tDrv.Limits().MinScratchAlign
	scratch, err := tDrv.NewBuffer(sizes.ScratchSize+align, false, driver.UShaderRead|driver.UShaderWrite|driver.UDeviceAddr)
	if err != nil {
		t.Fatal(err)
	}
	defer scratch.Destroy()
	storage, err := tDrv.NewBuffer(sizes.Size, false, driver.UAccelStorage)
	if err != nil {
		t.Fatal(err)
	}
	defer storage.Destroy()
	as, err := tDrv.NewAccelStruct(driver.ABottom, storage, 0, sizes.Size)
	if err != nil {
		t.Fatal(err)
	}
	defer as.Destroy()
	qp, err := tDrv.NewQueryPool(driver.QCompactedSize, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer qp.Destroy()

	cb, err := tDrv.NewCmdBuffer(driver.QGraphics)
	if err != nil {
		t.Fatal(err)
	}
	defer cb.Destroy()
	if err := cb.Begin(); err != nil {
		t.Fatal(err)
	}
	cb.ResetQueries(qp, 0, 1)
	b.Dst = as
	b.Scratch = (scratch.Addr() + uint64(align) - 1) &^ (uint64(align) - 1)
	cb.BuildAccel(&b)
	cb.Barrier([]driver.Barrier{{
		SyncBefore:   driver.SAccelBuild,
		SyncAfter:    driver.SAccelBuild,
		AccessBefore: driver.AAccelWrite,
		AccessAfter:  driver.AAccelRead,
	}})
	cb.WriteCompactedSize([]driver.AccelStruct{as}, qp, 0)
	if err := cb.End(); err != nil {
		t.Fatal(err)
	}
	if err := tSubmit(cb); err != nil {
		t.Fatalf("tSubmit(cb)\nhave %v\nwant nil", err)
	}
	res := make([]uint64, 1)
	if err := qp.Results(0, 1, res); err != nil {
		t.Fatalf("qp.Results\nhave %v\nwant nil", err)
	}
	if res[0] == 0 || int64(res[0]) > sizes.Size {
		t.Errorf("qp.Results: compacted size\nhave %d\nwant in (0, %d]", res[0], sizes.Size)
	}
}

func TestQueryPool(t *testing.T) {
	if _, err := tDrv.NewQueryPool(driver.QCompactedSize, 0); err == nil {
		t.Error("tDrv.NewQueryPool(QCompactedSize, 0)\nhave nil\nwant non-nil")
	}
	qp, err := tDrv.NewQueryPool(driver.QCompactedSize, 4)
	if err != nil {
		t.Fatalf("tDrv.NewQueryPool(QCompactedSize, 4)\nhave %v\nwant nil", err)
	}
	defer qp.Destroy()
	if n := qp.Count(); n != 4 {
		t.Errorf("qp.Count()\nhave %d\nwant 4", n)
	}
	dst := make([]uint64, 4)
	if err := qp.Results(2, 3, dst); err == nil {
		t.Error("qp.Results(2, 3, _)\nhave nil\nwant non-nil")
	}
	if err := qp.Results(0, 4, dst[:2]); err == nil {
		t.Error("qp.Results(0, 4, <short>)\nhave nil\nwant non-nil")
	}
}
