// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"github.com/pkg/errors"

	"github.com/gviegas/hybrid/driver"
	"github.com/gviegas/hybrid/scene"
)

// AccelStruct is an acceleration structure together with
// the buffer that stores it.
type AccelStruct struct {
	as   driver.AccelStruct
	buf  *Buffer
	size int64
}

// NewAccelStruct creates an acceleration structure of the
// given level backed by a new buffer of size bytes.
func NewAccelStruct(ctx *Context, lvl driver.AccelLevel, size int64) (*AccelStruct, error) {
	buf, err := NewBuffer(ctx, size, driver.UAccelStorage|driver.UDeviceAddr, DeviceLocal)
	if err != nil {
		return nil, err
	}
	as, err := ctx.gpu.NewAccelStruct(lvl, buf.buf, 0, size)
	if err != nil {
		buf.Destroy()
		return nil, errors.Wrap(err, "create acceleration structure")
	}
	return &AccelStruct{as: as, buf: buf, size: size}, nil
}

// Addr returns the device address of the structure.
func (a *AccelStruct) Addr() uint64 { return a.as.Addr() }

// Size returns the size of the structure's storage.
func (a *AccelStruct) Size() int64 { return a.size }

// Level returns the level of the structure.
func (a *AccelStruct) Level() driver.AccelLevel { return a.as.Level() }

// Driver returns the underlying driver.AccelStruct.
func (a *AccelStruct) Driver() driver.AccelStruct { return a.as }

// Destroy destroys the structure and then its buffer.
func (a *AccelStruct) Destroy() {
	if a.as != nil {
		a.as.Destroy()
		a.buf.Destroy()
	}
	*a = AccelStruct{}
}

// Accel holds the acceleration structures of a scene:
// one compacted bottom-level structure per primitive and
// a top-level structure over every instance.
type Accel struct {
	TLAS *AccelStruct
	BLAS []*AccelStruct
}

// Destroy destroys the top-level structure and then every
// bottom-level structure, since the former refers to the
// latter.
func (a *Accel) Destroy() {
	if a.TLAS != nil {
		a.TLAS.Destroy()
	}
	for _, b := range a.BLAS {
		b.Destroy()
	}
	*a = Accel{}
}

// SharedScratchSize returns the size of scratch memory that
// can serve every build in sizes, one at a time.
func SharedScratchSize(sizes []driver.AccelSizes, align int64) int64 {
	var n int64
	for _, s := range sizes {
		if s.ScratchSize > n {
			n = s.ScratchSize
		}
	}
	return Align(n, align)
}

// InstanceRecords encodes one top-level instance record per
// instance. blas holds the device address of the
// bottom-level structure of each primitive.
func InstanceRecords(instances []scene.Instance, blas []uint64) ([]byte, error) {
	b := make([]byte, len(instances)*driver.InstanceSize)
	for i := range instances {
		p := instances[i].PrimitiveIndex
		if int(p) >= len(blas) {
			return nil, errors.Errorf("engine: instance %d refers to primitive %d of %d", i, p, len(blas))
		}
		in := driver.AccelInstance{
			Transform:   driver.RowMajor3x4(instances[i].Transform),
			CustomIndex: p,
			Mask:        0xff,
			Flags:       driver.ICullDisable,
			Ref:         blas[p],
		}
		in.Encode(b[i*driver.InstanceSize:])
	}
	return b, nil
}

// triangles returns the geometry of primitive p.
// Vertex positions are read from the start of each vertex
// record, and indices are relative to the primitive's
// first vertex. MaxVertex bounds the primitive's own
// vertex range.
func triangles(sb *SceneBuffers, p *scene.Primitive) driver.AccelGeometry {
	return driver.AccelGeometry{
		Triangles: &driver.AccelTriangles{
			VertexFmt:    driver.Float32x3,
			VertexAddr:   sb.vertices.Addr() + vertexPosition,
			VertexStride: VertexSize,
			MaxVertex:    int(p.VerticesOffset + p.VertexCount - 1),
			IndexFmt:     driver.Index32,
			IndexAddr:    sb.indices.Addr(),
			Opaque:       true,
		},
		Range: driver.AccelRange{
			PrimitiveCount:  p.Triangles(),
			PrimitiveOffset: int64(p.IndicesOffset) * 4,
			FirstVertex:     int(p.VerticesOffset),
		},
	}
}

// newScratch creates a buffer for use as build scratch
// memory and returns it with the aligned address to use.
func newScratch(ctx *Context, size int64) (*Buffer, uint64, error) {
	const usg = driver.UShaderRead | driver.UShaderWrite | driver.UDeviceAddr
	buf, off, err := newAlignedBuffer(ctx, size, ctx.limits.MinScratchAlign, usg, DeviceLocal)
	if err != nil {
		return nil, 0, errors.Wrap(err, "create scratch buffer")
	}
	return buf, buf.Addr() + uint64(off), nil
}

// accelBarrier makes acceleration structure writes visible
// to subsequent builds, copies and queries.
var accelBarrier = driver.Barrier{
	SyncBefore:   driver.SAccelBuild,
	SyncAfter:    driver.SAccelBuild,
	AccessBefore: driver.AAccelWrite,
	AccessAfter:  driver.AAccelRead | driver.AAccelWrite,
}

// BuildAccel builds the acceleration structures of sc,
// whose data must have been uploaded into sb.
// It blocks until the builds complete.
func BuildAccel(ctx *Context, sb *SceneBuffers, sc *scene.Scene) (*Accel, error) {
	defer ctx.span("accel.build")()
	scope, err := NewFlushableScope(ctx)
	if err != nil {
		return nil, err
	}
	acc := new(Accel)
	err = buildAccel(ctx, scope, acc, sb, sc)
	if e := scope.Finish(); err == nil {
		err = e
	}
	if err != nil {
		acc.Destroy()
		return nil, err
	}
	return acc, nil
}

func buildAccel(ctx *Context, scope *FlushableScope, acc *Accel, sb *SceneBuffers, sc *scene.Scene) error {
	gpu := ctx.gpu
	cb := scope.CmdBuffer()
	n := len(sc.Primitives)

	// Size queries.
	geoms := make([]driver.AccelGeometry, n)
	sizes := make([]driver.AccelSizes, n)
	for i := range sc.Primitives {
		geoms[i] = triangles(sb, &sc.Primitives[i])
		s, err := gpu.AccelSizes(&driver.AccelBuild{
			Level:    driver.ABottom,
			Flags:    driver.AFastTrace | driver.AAllowCompaction,
			Geometry: geoms[i : i+1],
		})
		if err != nil {
			return errors.Wrapf(err, "query BLAS %d sizes", i)
		}
		sizes[i] = s
	}

	// One scratch buffer for every bottom-level build.
	// The builds run in sequence and the barrier that
	// follows each one orders scratch reuse.
	scratch, scratchAddr, err := newScratch(ctx, SharedScratchSize(sizes, ctx.limits.MinScratchAlign))
	if err != nil {
		return err
	}
	scope.Add(BufferResource(scratch))
	qp, err := NewQueryPool(ctx, n)
	if err != nil {
		return err
	}
	scope.Add(QueryResource(qp))
	qp.Reset(cb)

	// Uncompacted builds.
	uncompacted := make([]*AccelStruct, n)
	for i := range sc.Primitives {
		as, err := NewAccelStruct(ctx, driver.ABottom, sizes[i].Size)
		if err != nil {
			return errors.Wrapf(err, "create BLAS %d", i)
		}
		scope.Add(AccelResource(as))
		uncompacted[i] = as
		cb.BuildAccel(&driver.AccelBuild{
			Level:    driver.ABottom,
			Flags:    driver.AFastTrace | driver.AAllowCompaction,
			Geometry: geoms[i : i+1],
			Dst:      as.as,
			Scratch:  scratchAddr,
		})
		cb.Barrier([]driver.Barrier{accelBarrier})
		qp.WriteCompactedSizes(cb, []driver.AccelStruct{as.as}, i)
	}
	if err := scope.Flush(); err != nil {
		return errors.Wrap(err, "build BLAS")
	}
	compacted, err := qp.Results()
	if err != nil {
		return errors.Wrap(err, "read BLAS compacted sizes")
	}

	// Compaction.
	var before, after int64
	addrs := make([]uint64, n)
	for i, as := range uncompacted {
		sz := int64(compacted[i])
		if sz <= 0 || sz > as.size {
			return errors.Errorf("engine: BLAS %d: invalid compacted size %d (uncompacted %d)", i, sz, as.size)
		}
		cas, err := NewAccelStruct(ctx, driver.ABottom, sz)
		if err != nil {
			return errors.Wrapf(err, "create compacted BLAS %d", i)
		}
		acc.BLAS = append(acc.BLAS, cas)
		addrs[i] = cas.Addr()
		cb.CopyAccel(as.as, cas.as, true)
		before += as.size
		after += sz
	}
	cb.Barrier([]driver.Barrier{accelBarrier})
	logger.Infof("built %d BLAS, compacted %d bytes into %d", n, before, after)

	// Top-level build.
	recs, err := InstanceRecords(sc.Instances, addrs)
	if err != nil {
		return err
	}
	inst, err := NewBufferWithStagedData(ctx, scope, recs, driver.UAccelInput|driver.UDeviceAddr)
	if err != nil {
		return errors.Wrap(err, "upload instances")
	}
	scope.Add(BufferResource(inst))
	cb.Barrier([]driver.Barrier{{
		SyncBefore:   driver.SCopy,
		SyncAfter:    driver.SAccelBuild,
		AccessBefore: driver.ACopyWrite,
		AccessAfter:  driver.AAccelRead,
	}})
	tbuild := driver.AccelBuild{
		Level: driver.ATop,
		Flags: driver.AFastTrace,
		Geometry: []driver.AccelGeometry{{
			Instances: &driver.AccelInstances{Addr: inst.Addr()},
			Range:     driver.AccelRange{PrimitiveCount: len(sc.Instances)},
		}},
	}
	tsizes, err := gpu.AccelSizes(&tbuild)
	if err != nil {
		return errors.Wrap(err, "query TLAS sizes")
	}
	if acc.TLAS, err = NewAccelStruct(ctx, driver.ATop, tsizes.Size); err != nil {
		return errors.Wrap(err, "create TLAS")
	}
	tscratch, tscratchAddr, err := newScratch(ctx, Align(tsizes.ScratchSize, ctx.limits.MinScratchAlign))
	if err != nil {
		return err
	}
	scope.Add(BufferResource(tscratch))
	tbuild.Dst = acc.TLAS.as
	tbuild.Scratch = tscratchAddr
	cb.BuildAccel(&tbuild)
	cb.Barrier([]driver.Barrier{{
		SyncBefore:   driver.SAccelBuild,
		SyncAfter:    driver.SRayTracing,
		AccessBefore: driver.AAccelWrite,
		AccessAfter:  driver.AAccelRead,
	}})
	logger.Infof("built TLAS over %d instances (%d bytes)", len(sc.Instances), tsizes.Size)
	return nil
}
