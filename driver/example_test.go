// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver_test

import (
	"encoding/binary"
	"fmt"
	"log"
	"math"

	"github.com/gviegas/hybrid/driver"
	_ "github.com/gviegas/hybrid/driver/drivertest"
)

var (
	// Vertex positions (CCW).
	triPos = [9]float32{
		0, -1, 0,
		-1, 1, 0,
		1, 1, 0,
	}
	triIdx = [3]uint32{0, 1, 2}
)

// openGPU opens the named driver.
func openGPU(name string) (driver.Driver, driver.GPU) {
	drv := findDriver(name)
	if drv == nil {
		log.Fatal("driver.Drivers(): driver not found")
	}
	gpu, err := drv.Open()
	if err != nil {
		log.Fatal(err)
	}
	return drv, gpu
}

// Example_accel builds a bottom-level acceleration structure
// for a single triangle and queries its compacted size.
func Example_accel() {
	drv, gpu := openGPU("drivertest")
	defer drv.Close()

	// Store the triangle's positions followed by its
	// indices in a host-visible buffer.
	geom, err := gpu.NewBuffer(256, true, driver.UAccelInput|driver.UDeviceAddr)
	if err != nil {
		log.Fatal(err)
	}
	defer geom.Destroy()
	p := geom.Bytes()
	for i, x := range triPos {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(x))
	}
	for i, x := range triIdx {
		binary.LittleEndian.PutUint32(p[128+i*4:], x)
	}

	build := driver.AccelBuild{
		Level: driver.ABottom,
		Flags: driver.AFastTrace | driver.AAllowCompaction,
		Geometry: []driver.AccelGeometry{{
			Triangles: &driver.AccelTriangles{
				VertexFmt:    driver.Float32x3,
				VertexAddr:   geom.Addr(),
				VertexStride: 12,
				MaxVertex:    2,
				IndexFmt:     driver.Index32,
				IndexAddr:    geom.Addr() + 128,
				Opaque:       true,
			},
			Range: driver.AccelRange{PrimitiveCount: 1},
		}},
	}
	sizes, err := gpu.AccelSizes(&build)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("size %d, scratch %d\n", sizes.Size, sizes.ScratchSize)

	// The structure and the scratch memory are backed by
	// separate device-local buffers.
	store, err := gpu.NewBuffer(sizes.Size, false, driver.UAccelStorage|driver.UDeviceAddr)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Destroy()
	blas, err := gpu.NewAccelStruct(driver.ABottom, store, 0, sizes.Size)
	if err != nil {
		log.Fatal(err)
	}
	defer blas.Destroy()
	scratch, err := gpu.NewBuffer(sizes.ScratchSize, false, driver.UShaderWrite|driver.UDeviceAddr)
	if err != nil {
		log.Fatal(err)
	}
	defer scratch.Destroy()
	build.Dst = blas
	build.Scratch = scratch.Addr()

	qp, err := gpu.NewQueryPool(driver.QCompactedSize, 1)
	if err != nil {
		log.Fatal(err)
	}
	defer qp.Destroy()

	cb, err := gpu.NewCmdBuffer(driver.QCompute)
	if err != nil {
		log.Fatal(err)
	}
	defer cb.Destroy()
	if err := cb.Begin(); err != nil {
		log.Fatal(err)
	}
	cb.ResetQueries(qp, 0, 1)
	cb.BuildAccel(&build)
	cb.Barrier([]driver.Barrier{{
		SyncBefore:   driver.SAccelBuild,
		SyncAfter:    driver.SAccelBuild,
		AccessBefore: driver.AAccelWrite,
		AccessAfter:  driver.AAccelRead,
	}})
	cb.WriteCompactedSize([]driver.AccelStruct{blas}, qp, 0)
	if err := cb.End(); err != nil {
		log.Fatal(err)
	}

	fence, err := gpu.NewFence(false)
	if err != nil {
		log.Fatal(err)
	}
	defer fence.Destroy()
	if err := gpu.Submit(driver.QCompute, []driver.Submission{{Cmd: []driver.CmdBuffer{cb}}}, fence); err != nil {
		log.Fatal(err)
	}
	if err := fence.Wait(); err != nil {
		log.Fatal(err)
	}
	var compacted [1]uint64
	if err := qp.Results(0, 1, compacted[:]); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("compacted %d (%t)\n", compacted[0], int64(compacted[0]) <= sizes.Size)

	// Output:
	// size 576, scratch 288
	// compacted 552 (true)
}

// Example_fill fills a buffer on the GPU and copies it
// into a host-visible one.
func Example_fill() {
	drv, gpu := openGPU("drivertest")
	defer drv.Close()

	src, err := gpu.NewBuffer(1024, false, driver.UCopySrc|driver.UCopyDst)
	if err != nil {
		log.Fatal(err)
	}
	defer src.Destroy()
	dst, err := gpu.NewBuffer(1024, true, driver.UCopyDst)
	if err != nil {
		log.Fatal(err)
	}
	defer dst.Destroy()

	cb, err := gpu.NewCmdBuffer(driver.QGraphics)
	if err != nil {
		log.Fatal(err)
	}
	defer cb.Destroy()
	if err := cb.Begin(); err != nil {
		log.Fatal(err)
	}
	cb.Fill(src, 256, 0x2a, 512)
	cb.Barrier([]driver.Barrier{{
		SyncBefore:   driver.SCopy,
		SyncAfter:    driver.SCopy,
		AccessBefore: driver.ACopyWrite,
		AccessAfter:  driver.ACopyRead,
	}})
	cb.CopyBuffer(&driver.BufferCopy{
		From: src,
		To:   dst,
		Size: 1024,
	})
	if err := cb.End(); err != nil {
		log.Fatal(err)
	}
	fence, err := gpu.NewFence(false)
	if err != nil {
		log.Fatal(err)
	}
	defer fence.Destroy()
	if err := gpu.Submit(driver.QGraphics, []driver.Submission{{Cmd: []driver.CmdBuffer{cb}}}, fence); err != nil {
		log.Fatal(err)
	}
	if err := fence.Wait(); err != nil {
		log.Fatal(err)
	}
	b := dst.Bytes()
	fmt.Println(b[255], b[256], b[767], b[768])

	// Output:
	// 0 42 42 0
}
