// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package drivertest

import (
	"errors"
	"fmt"

	"github.com/gviegas/hybrid/driver"
)

// Size functions of the fake device.
// The compacted size of a bottom-level structure is always
// smaller than its uncompacted size.
func blasSize(tris int) int64      { return 512 + 64*int64(tris) }
func blasScratch(tris int) int64   { return 256 + 32*int64(tris) }
func blasCompacted(tris int) int64 { return 512 + 40*int64(tris) }
func tlasSize(insts int) int64     { return 256 + 64*int64(insts) }
func tlasScratch(insts int) int64  { return 128 + 16*int64(insts) }

func primitiveCount(b *driver.AccelBuild) (n int) {
	for _, g := range b.Geometry {
		n += g.Range.PrimitiveCount
	}
	return
}

// AccelSizes returns deterministic sizes based on the total
// primitive count of b.
func (g *GPU) AccelSizes(b *driver.AccelBuild) (driver.AccelSizes, error) {
	n := primitiveCount(b)
	switch b.Level {
	case driver.ABottom:
		for _, geom := range b.Geometry {
			if geom.Triangles == nil {
				return driver.AccelSizes{}, errors.New("drivertest: bottom-level build requires triangles")
			}
		}
		return driver.AccelSizes{Size: blasSize(n), ScratchSize: blasScratch(n)}, nil
	case driver.ATop:
		for _, geom := range b.Geometry {
			if geom.Instances == nil {
				return driver.AccelSizes{}, errors.New("drivertest: top-level build requires instances")
			}
		}
		return driver.AccelSizes{Size: tlasSize(n), ScratchSize: tlasScratch(n)}, nil
	}
	return driver.AccelSizes{}, errors.New("drivertest: invalid level")
}

// accel implements driver.AccelStruct.
type accel struct {
	g         *GPU
	lvl       driver.AccelLevel
	buf       *buffer
	off       int64
	size      int64
	built     bool
	compact   bool
	compacted int64
	gone      bool
}

// NewAccelStruct creates a new acceleration structure.
func (g *GPU) NewAccelStruct(lvl driver.AccelLevel, buf driver.Buffer, off, size int64) (driver.AccelStruct, error) {
	b := buf.(*buffer)
	switch {
	case b.usg&driver.UAccelStorage == 0:
		return nil, errors.New("drivertest: buffer lacks UAccelStorage")
	case off&255 != 0:
		return nil, errors.New("drivertest: misaligned acceleration structure offset")
	case off+size > b.Cap():
		return nil, errors.New("drivertest: acceleration structure exceeds buffer")
	}
	g.created("accel")
	return &accel{g: g, lvl: lvl, buf: b, off: off, size: size}, nil
}

func (a *accel) Level() driver.AccelLevel { return a.lvl }

func (a *accel) Addr() uint64 { return a.buf.addr + uint64(a.off) }

func (a *accel) Destroy() { a.g.destroyed("accel", &a.gone, a.Addr()) }

// Size returns the size that as was created with.
func Size(as driver.AccelStruct) int64 { return as.(*accel).size }

// buildAccel executes a build.
func (g *GPU) buildAccel(b *driver.AccelBuild) error {
	dst := b.Dst.(*accel)
	sizes, err := g.AccelSizes(b)
	if err != nil {
		return err
	}
	switch {
	case dst.gone || dst.buf.gone:
		return errors.New("drivertest: build into destroyed structure")
	case dst.lvl != b.Level:
		return errors.New("drivertest: level mismatch")
	case dst.size < sizes.Size:
		return fmt.Errorf("drivertest: destination too small (%d < %d)", dst.size, sizes.Size)
	case b.Scratch%uint64(g.lim.MinScratchAlign) != 0:
		return fmt.Errorf("drivertest: misaligned scratch address %#x", b.Scratch)
	}
	scr, err := g.resolve(b.Scratch)
	if err != nil {
		return err
	}
	if int64(len(scr)) < sizes.ScratchSize {
		return fmt.Errorf("drivertest: scratch too small (%d < %d)", len(scr), sizes.ScratchSize)
	}
	bld := Build{
		Level:   b.Level,
		Flags:   b.Flags,
		Dst:     dst.Addr(),
		Scratch: b.Scratch,
	}
	for _, geom := range b.Geometry {
		bld.Primitives = append(bld.Primitives, geom.Range.PrimitiveCount)
		switch {
		case geom.Triangles != nil:
			tri := geom.Triangles
			need := geom.Range.PrimitiveOffset + int64(geom.Range.PrimitiveCount)*3*int64(tri.IndexFmt)
			idx, err := g.resolve(tri.IndexAddr)
			if err != nil {
				return err
			}
			if int64(len(idx)) < need {
				return errors.New("drivertest: index range exceeds buffer")
			}
			vert, err := g.resolve(tri.VertexAddr)
			if err != nil {
				return err
			}
			if int64(len(vert)) < int64(tri.MaxVertex+1)*tri.VertexStride {
				return errors.New("drivertest: vertex range exceeds buffer")
			}
			bld.MaxVertex = append(bld.MaxVertex, tri.MaxVertex)
		case geom.Instances != nil:
			data, err := g.resolve(geom.Instances.Addr + uint64(geom.Range.PrimitiveOffset))
			if err != nil {
				return err
			}
			if len(data) < geom.Range.PrimitiveCount*driver.InstanceSize {
				return errors.New("drivertest: instance range exceeds buffer")
			}
			for i := 0; i < geom.Range.PrimitiveCount; i++ {
				in := driver.DecodeAccelInstance(data[i*driver.InstanceSize:])
				if !g.isAccel(in.Ref, driver.ABottom) {
					return fmt.Errorf("drivertest: instance %d refers to %#x, which is not a built bottom-level structure", i, in.Ref)
				}
				bld.Instances = append(bld.Instances, in)
			}
		}
	}
	dst.built = true
	dst.compact = b.Flags&driver.AAllowCompaction != 0
	if b.Level == driver.ABottom {
		dst.compacted = blasCompacted(primitiveCount(b))
	} else {
		dst.compacted = sizes.Size
	}
	g.mu.Lock()
	g.builds = append(g.builds, bld)
	g.accels = append(g.accels, dst)
	g.mu.Unlock()
	return nil
}

// isAccel checks whether addr identifies a live, built
// structure of the given level.
func (g *GPU) isAccel(addr uint64, lvl driver.AccelLevel) bool {
	for _, a := range g.accels {
		if !a.gone && a.built && a.lvl == lvl && a.Addr() == addr {
			return true
		}
	}
	return false
}

// copyAccel executes a copy.
func (g *GPU) copyAccel(from, to *accel, compact bool) error {
	switch {
	case !from.built || from.gone:
		return errors.New("drivertest: copy from unbuilt structure")
	case to.gone:
		return errors.New("drivertest: copy into destroyed structure")
	case compact && !from.compact:
		return errors.New("drivertest: structure was not built with AAllowCompaction")
	}
	need := from.size
	if compact {
		need = from.compacted
	}
	if to.size < need {
		return fmt.Errorf("drivertest: copy destination too small (%d < %d)", to.size, need)
	}
	to.built = true
	to.compact = false
	to.compacted = from.compacted
	g.mu.Lock()
	defer g.mu.Unlock()
	g.accels = append(g.accels, to)
	if compact {
		g.compacts = append(g.compacts, Compaction{
			From:      from.Addr(),
			To:        to.Addr(),
			FromSize:  from.size,
			ToSize:    to.size,
			Compacted: from.compacted,
		})
	}
	return nil
}

// queryPool implements driver.QueryPool.
type queryPool struct {
	g     *GPU
	res   []uint64
	avail []bool
	reset []bool
	id    uint64
	gone  bool
}

// NewQueryPool creates a new query pool.
func (g *GPU) NewQueryPool(typ driver.QueryType, count int) (driver.QueryPool, error) {
	if typ != driver.QCompactedSize || count <= 0 {
		return nil, errors.New("drivertest: invalid query pool")
	}
	g.created("query")
	return &queryPool{
		g:     g,
		res:   make([]uint64, count),
		avail: make([]bool, count),
		reset: make([]bool, count),
		id:    g.alloc(0),
	}, nil
}

func (p *queryPool) Count() int { return len(p.res) }

func (p *queryPool) Results(first, count int, dst []uint64) error {
	for i := first; i < first+count; i++ {
		if !p.avail[i] {
			return fmt.Errorf("%w: %d", ErrQueryUnavailable, i)
		}
	}
	copy(dst, p.res[first:first+count])
	return nil
}

func (p *queryPool) Destroy() { p.g.destroyed("query", &p.gone, p.id) }
