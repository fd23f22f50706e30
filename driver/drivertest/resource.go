// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package drivertest

import (
	"errors"

	"github.com/gviegas/hybrid/driver"
)

// buffer implements driver.Buffer.
type buffer struct {
	g    *GPU
	data []byte
	vis  bool
	usg  driver.Usage
	addr uint64
	gone bool
}

// NewBuffer creates a new buffer.
// Every buffer is assigned an address range, but Addr
// only reports it when usg includes UDeviceAddr.
func (g *GPU) NewBuffer(size int64, visible bool, usg driver.Usage) (driver.Buffer, error) {
	if size <= 0 {
		return nil, errors.New("drivertest: invalid buffer size")
	}
	b := &buffer{
		g:    g,
		data: make([]byte, size),
		vis:  visible,
		usg:  usg,
		addr: g.alloc(size),
	}
	g.mu.Lock()
	g.bufs = append(g.bufs, b)
	g.mu.Unlock()
	g.created("buffer")
	return b, nil
}

func (b *buffer) Visible() bool { return b.vis }

func (b *buffer) Bytes() []byte {
	if !b.vis {
		return nil
	}
	return b.data
}

func (b *buffer) Cap() int64 { return int64(len(b.data)) }

func (b *buffer) Addr() uint64 {
	if b.usg&driver.UDeviceAddr == 0 {
		return 0
	}
	return b.addr
}

func (b *buffer) Destroy() { b.g.destroyed("buffer", &b.gone, b.addr) }

// Contents returns a copy of the memory of buf, which
// need not be host visible.
func Contents(buf driver.Buffer) []byte {
	return append([]byte(nil), buf.(*buffer).data...)
}

// Usage returns the usage buf was created with.
func Usage(buf driver.Buffer) driver.Usage { return buf.(*buffer).usg }

// image implements driver.Image.
type image struct {
	g    *GPU
	pf   driver.PixelFmt
	size driver.Dim3D
	usg  driver.Usage
	id   uint64
	gone bool
}

var errImage = errors.New("drivertest: invalid image parameters")

// NewImage creates a new image.
func (g *GPU) NewImage(pf driver.PixelFmt, size driver.Dim3D, layers, levels, samples int, usg driver.Usage) (driver.Image, error) {
	if pf == 0 || size.Width <= 0 || size.Height <= 0 || layers <= 0 || levels <= 0 {
		return nil, errImage
	}
	g.created("image")
	return &image{g: g, pf: pf, size: size, usg: usg, id: g.alloc(0)}, nil
}

func (im *image) NewView(typ driver.ViewType, layer, layers, level, levels int) (driver.ImageView, error) {
	return &imageView{im: im}, nil
}

func (im *image) Destroy() { im.g.destroyed("image", &im.gone, im.id) }

// ImageInfo returns the format, size and usage of the
// image that view was created from.
func ImageInfo(view driver.ImageView) (driver.PixelFmt, driver.Dim3D, driver.Usage) {
	im := view.(*imageView).im
	return im.pf, im.size, im.usg
}

// imageView implements driver.ImageView.
type imageView struct {
	im *image
}

func (v *imageView) Destroy() {}

// sampler implements driver.Sampler.
type sampler struct{}

// NewSampler creates a new sampler.
func (g *GPU) NewSampler(spln *driver.Sampling) (driver.Sampler, error) { return sampler{}, nil }

func (sampler) Destroy() {}

// shaderCode implements driver.ShaderCode.
type shaderCode struct {
	data []byte
}

// NewShaderCode creates a new shader code.
// data must be non-empty.
func (g *GPU) NewShaderCode(data []byte) (driver.ShaderCode, error) {
	if len(data) == 0 {
		return nil, errors.New("drivertest: empty shader code")
	}
	return &shaderCode{data}, nil
}

func (s *shaderCode) Destroy() {}

// descHeap implements driver.DescHeap.
type descHeap struct {
	ds    []driver.Descriptor
	count int
	accel map[int][]driver.AccelStruct
}

// NewDescHeap creates a new descriptor heap.
func (g *GPU) NewDescHeap(ds []driver.Descriptor) (driver.DescHeap, error) {
	return &descHeap{ds: append([]driver.Descriptor(nil), ds...), accel: make(map[int][]driver.AccelStruct)}, nil
}

func (h *descHeap) New(n int) error {
	h.count = n
	return nil
}

func (h *descHeap) SetBuffer(cpy, nr, start int, buf []driver.Buffer, off, size []int64) {
	h.check(cpy, nr, driver.DBuffer, driver.DConstant)
}

func (h *descHeap) SetImage(cpy, nr, start int, iv []driver.ImageView) {
	h.check(cpy, nr, driver.DImage, driver.DTexture)
}

func (h *descHeap) SetSampler(cpy, nr, start int, splr []driver.Sampler) {
	h.check(cpy, nr, driver.DSampler, driver.DSampler)
}

func (h *descHeap) SetAccel(cpy, nr, start int, as []driver.AccelStruct) {
	h.check(cpy, nr, driver.DAccel, driver.DAccel)
	h.accel[cpy] = append([]driver.AccelStruct(nil), as...)
}

func (h *descHeap) check(cpy, nr int, t1, t2 driver.DescType) {
	if cpy < 0 || cpy >= h.count {
		panic("drivertest: heap copy out of bounds")
	}
	for _, d := range h.ds {
		if d.Nr == nr {
			if d.Type != t1 && d.Type != t2 {
				panic("drivertest: descriptor type mismatch")
			}
			return
		}
	}
	panic("drivertest: no such descriptor")
}

func (h *descHeap) Count() int { return h.count }

func (h *descHeap) Destroy() {}

// AccelOf returns the acceleration structures last set in
// the given copy of heap.
func AccelOf(heap driver.DescHeap, cpy int) []driver.AccelStruct {
	return heap.(*descHeap).accel[cpy]
}

// descTable implements driver.DescTable.
type descTable struct {
	dh []driver.DescHeap
}

// NewDescTable creates a new descriptor table.
func (g *GPU) NewDescTable(dh []driver.DescHeap) (driver.DescTable, error) {
	return &descTable{append([]driver.DescHeap(nil), dh...)}, nil
}

func (t *descTable) Destroy() {}

// graphPipeline implements driver.Pipeline.
type graphPipeline struct {
	state driver.GraphState
}

func (p *graphPipeline) Destroy() {}

// rayPipeline implements driver.RayPipeline.
type rayPipeline struct {
	g      *GPU
	groups int
}

func (p *rayPipeline) Destroy() {}

// GroupHandles returns one handle per group, each filled
// with the group index plus one.
func (p *rayPipeline) GroupHandles() ([]byte, error) {
	n := p.g.lim.ShaderGroupHandleSize
	h := make([]byte, n*p.groups)
	for i := range h {
		h[i] = byte(i/n + 1)
	}
	return h, nil
}

// NewPipeline creates a new pipeline.
func (g *GPU) NewPipeline(state any) (driver.Pipeline, error) {
	switch s := state.(type) {
	case *driver.GraphState:
		if s.VertFunc.Code == nil || len(s.ColorFmt) > g.lim.MaxColorTargets {
			return nil, errors.New("drivertest: invalid graphics state")
		}
		return &graphPipeline{*s}, nil
	case *driver.RayState:
		if s.RayGen.Code == nil || s.MaxRecursion > g.lim.MaxRayRecursion {
			return nil, errors.New("drivertest: invalid ray tracing state")
		}
		return &rayPipeline{g: g, groups: 1 + len(s.Miss) + len(s.ClosestHit)}, nil
	}
	return nil, errors.New("drivertest: invalid pipeline state")
}
