// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"github.com/pkg/errors"

	"github.com/gviegas/hybrid/driver"
)

// Descriptors of the pathtracer.
const (
	ptTLAS = iota
	ptOutput
	ptUniforms
	ptScene
)

// pathtracer renders the scene by tracing rays against the
// top-level acceleration structure into the HDR target.
type pathtracer struct {
	code  []driver.ShaderCode
	heap  driver.DescHeap
	table driver.DescTable
	pl    driver.Pipeline
	sbt   *Buffer
	st    driver.ShaderTable
}

func newPathtracer(ctx *Context, sh *Shaders, acc *Accel, sb *SceneBuffers, uni *uniforms) (p *pathtracer, err error) {
	if ctx.limits.ShaderGroupHandleSize == 0 {
		return nil, driver.ErrNoRayTracing
	}
	p = new(pathtracer)
	defer func(x *pathtracer) {
		if err != nil {
			x.destroy()
			p = nil
		}
	}(p)
	if p.code, err = newShaderCodes(ctx, sh.RayGen, sh.Miss, sh.ClosestHit); err != nil {
		return
	}
	const all = driver.SRayGen | driver.SMiss | driver.SClosestHit
	p.heap, err = ctx.gpu.NewDescHeap([]driver.Descriptor{
		{Type: driver.DAccel, Stages: driver.SRayGen | driver.SClosestHit, Nr: ptTLAS, Len: 1},
		{Type: driver.DImage, Stages: driver.SRayGen, Nr: ptOutput, Len: 1},
		{Type: driver.DConstant, Stages: all, Nr: ptUniforms, Len: 1},
		{Type: driver.DConstant, Stages: driver.SRayGen | driver.SClosestHit, Nr: ptScene, Len: 1},
	})
	if err != nil {
		return nil, errors.Wrap(err, "create pathtracer heap")
	}
	if err = p.heap.New(FramesInFlight); err != nil {
		return nil, errors.Wrap(err, "create pathtracer heap copies")
	}
	if p.table, err = ctx.gpu.NewDescTable([]driver.DescHeap{p.heap}); err != nil {
		return nil, errors.Wrap(err, "create pathtracer table")
	}
	for i := 0; i < FramesInFlight; i++ {
		p.heap.SetAccel(i, ptTLAS, 0, []driver.AccelStruct{acc.TLAS.as})
		p.heap.SetBuffer(i, ptScene, 0, []driver.Buffer{sb.desc.buf}, []int64{0}, []int64{SceneDescSize})
	}
	uni.setHeap(p.heap, ptUniforms)
	pl, err := ctx.gpu.NewPipeline(&driver.RayState{
		RayGen:       driver.ShaderFunc{Code: p.code[0], Name: shaderEntry},
		Miss:         []driver.ShaderFunc{{Code: p.code[1], Name: shaderEntry}},
		ClosestHit:   []driver.ShaderFunc{{Code: p.code[2], Name: shaderEntry}},
		Desc:         p.table,
		MaxRecursion: 1,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create pathtracer pipeline")
	}
	p.pl = pl
	rpl, ok := pl.(driver.RayPipeline)
	if !ok {
		return nil, errors.New("engine: driver returned a pipeline without shader groups")
	}
	if err = p.newShaderTable(ctx, rpl, 1, 1); err != nil {
		return nil, err
	}
	return p, nil
}

// sbtLayout computes the offsets of the ray generation,
// miss and hit regions of a shader binding table, and the
// record stride. Every region starts at a multiple of
// baseAlign.
func sbtLayout(handleSize, handleAlign, baseAlign, nmiss, nhit int) (stride, missOff, hitOff, size int64) {
	stride = Align(int64(handleSize), int64(handleAlign))
	missOff = Align(stride, int64(baseAlign))
	hitOff = Align(missOff+stride*int64(nmiss), int64(baseAlign))
	size = hitOff + stride*int64(nhit)
	return
}

// newShaderTable creates the shader binding table.
func (p *pathtracer) newShaderTable(ctx *Context, pl driver.RayPipeline, nmiss, nhit int) error {
	lim := ctx.limits
	hs := lim.ShaderGroupHandleSize
	handles, err := pl.GroupHandles()
	if err != nil {
		return errors.Wrap(err, "get shader group handles")
	}
	if len(handles) < hs*(1+nmiss+nhit) {
		return errors.New("engine: missing shader group handles")
	}
	stride, missOff, hitOff, size := sbtLayout(hs, lim.ShaderGroupHandleAlign, lim.ShaderGroupBaseAlign, nmiss, nhit)
	buf, off, err := newAlignedBuffer(ctx, size, int64(lim.ShaderGroupBaseAlign), driver.UShaderTable, HostVisible)
	if err != nil {
		return errors.Wrap(err, "create shader binding table")
	}
	p.sbt = buf
	data := make([]byte, size)
	copy(data, handles[:hs])
	for i := 0; i < nmiss; i++ {
		copy(data[missOff+int64(i)*stride:], handles[(1+i)*hs:(2+i)*hs])
	}
	for i := 0; i < nhit; i++ {
		copy(data[hitOff+int64(i)*stride:], handles[(1+nmiss+i)*hs:(2+nmiss+i)*hs])
	}
	if err := buf.Write(off, data); err != nil {
		return err
	}
	base := buf.Addr() + uint64(off)
	p.st = driver.ShaderTable{
		RayGen: driver.ShaderRegion{Addr: base, Stride: stride, Size: stride},
		Miss:   driver.ShaderRegion{Addr: base + uint64(missOff), Stride: stride, Size: stride * int64(nmiss)},
		Hit:    driver.ShaderRegion{Addr: base + uint64(hitOff), Stride: stride, Size: stride * int64(nhit)},
	}
	return nil
}

// setTarget sets the image that rays are traced into.
func (p *pathtracer) setTarget(hdr *Image) {
	for i := 0; i < FramesInFlight; i++ {
		p.heap.SetImage(i, ptOutput, 0, []driver.ImageView{hdr.view})
	}
}

// record records the tracing of one sample per pixel of
// hdr, which must have been given to setTarget.
func (p *pathtracer) record(cb driver.CmdBuffer, slot int, hdr *Image) {
	hdr.Transition(cb, driver.LShaderStore)
	cb.SetPipeline(p.pl)
	cb.SetDescTableRay(p.table, 0, []int{slot})
	cb.TraceRays(&p.st, hdr.width, hdr.height, 1)
}

func (p *pathtracer) destroy() {
	if p.pl != nil {
		p.pl.Destroy()
	}
	if p.table != nil {
		p.table.Destroy()
	}
	if p.heap != nil {
		p.heap.Destroy()
	}
	for _, c := range p.code {
		c.Destroy()
	}
	if p.sbt != nil {
		p.sbt.Destroy()
	}
	*p = pathtracer{}
}
