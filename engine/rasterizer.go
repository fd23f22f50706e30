// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/gviegas/hybrid/driver"
	"github.com/gviegas/hybrid/scene"
)

// Descriptors of the rasterizer.
const (
	rsUniforms = iota
	rsScene
	rsInstances
)

// Size of the instance records read by the vertex shader:
// the world transform followed by the primitive index.
const instanceInfoSize = 80

func encodeInstanceInfos(in []scene.Instance) []byte {
	b := make([]byte, len(in)*instanceInfoSize)
	for i := range in {
		p := b[i*instanceInfoSize:]
		for j, x := range in[i].Transform {
			binary.LittleEndian.PutUint32(p[j*4:], math.Float32bits(x))
		}
		binary.LittleEndian.PutUint32(p[64:], in[i].PrimitiveIndex)
	}
	return b
}

// rasterizer renders the scene by drawing every instance
// into the HDR target.
type rasterizer struct {
	code  []driver.ShaderCode
	heap  driver.DescHeap
	table driver.DescTable
	pl    driver.Pipeline
	inst  *Buffer
	sc    *scene.Scene
	sb    *SceneBuffers
}

// newRasterizer creates the rasterizer. The upload of
// instance data is recorded into rec.
func newRasterizer(ctx *Context, rec Recorder, sh *Shaders, sc *scene.Scene, sb *SceneBuffers, uni *uniforms) (r *rasterizer, err error) {
	r = &rasterizer{sc: sc, sb: sb}
	defer func(x *rasterizer) {
		if err != nil {
			x.destroy(rec)
			r = nil
		}
	}(r)
	if r.code, err = newShaderCodes(ctx, sh.RasterVert, sh.RasterFrag); err != nil {
		return
	}
	info := encodeInstanceInfos(sc.Instances)
	if r.inst, err = NewBufferWithStagedData(ctx, rec, info, driver.UShaderRead); err != nil {
		return nil, errors.Wrap(err, "upload instance infos")
	}
	const stages = driver.SVertex | driver.SFragment
	r.heap, err = ctx.gpu.NewDescHeap([]driver.Descriptor{
		{Type: driver.DConstant, Stages: stages, Nr: rsUniforms, Len: 1},
		{Type: driver.DConstant, Stages: driver.SFragment, Nr: rsScene, Len: 1},
		{Type: driver.DBuffer, Stages: stages, Nr: rsInstances, Len: 1},
	})
	if err != nil {
		return nil, errors.Wrap(err, "create rasterizer heap")
	}
	if err = r.heap.New(FramesInFlight); err != nil {
		return nil, errors.Wrap(err, "create rasterizer heap copies")
	}
	if r.table, err = ctx.gpu.NewDescTable([]driver.DescHeap{r.heap}); err != nil {
		return nil, errors.Wrap(err, "create rasterizer table")
	}
	for i := 0; i < FramesInFlight; i++ {
		r.heap.SetBuffer(i, rsScene, 0, []driver.Buffer{sb.desc.buf}, []int64{0}, []int64{SceneDescSize})
		r.heap.SetBuffer(i, rsInstances, 0, []driver.Buffer{r.inst.buf}, []int64{0}, []int64{int64(len(info))})
	}
	uni.setHeap(r.heap, rsUniforms)
	r.pl, err = ctx.gpu.NewPipeline(&driver.GraphState{
		VertFunc: driver.ShaderFunc{Code: r.code[0], Name: shaderEntry},
		FragFunc: driver.ShaderFunc{Code: r.code[1], Name: shaderEntry},
		Desc:     r.table,
		// The vertex buffer is bound once per attribute.
		Input: []driver.VertexIn{
			{Format: driver.Float32x3, Stride: VertexSize, Nr: 0, Name: "position"},
			{Format: driver.Float32x3, Stride: VertexSize, Nr: 1, Name: "normal"},
			{Format: driver.Float32x2, Stride: VertexSize, Nr: 2, Name: "texcoord"},
		},
		Topology: driver.TTriangle,
		Raster: driver.RasterState{
			Clockwise: false,
			Cull:      driver.CBack,
			Fill:      driver.FFill,
		},
		Samples: 1,
		DS: driver.DSState{
			DepthTest:  true,
			DepthWrite: true,
			DepthCmp:   driver.CLess,
		},
		WriteMask: driver.CAll,
		ColorFmt:  []driver.PixelFmt{hdrFormat},
		DSFmt:     depthFormat,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create rasterizer pipeline")
	}
	return r, nil
}

// record records the drawing of every instance into hdr.
// The instance index is passed as the base instance, so
// the vertex shader can fetch the instance record.
func (r *rasterizer) record(cb driver.CmdBuffer, slot int, hdr, depth *Image) {
	hdr.Transition(cb, driver.LColorTarget)
	depth.Invalidate()
	depth.Transition(cb, driver.LDSTarget)
	w, h := hdr.width, hdr.height
	cb.BeginPass(w, h,
		[]driver.ColorTarget{{Color: hdr.view, Load: driver.LClear, Store: driver.SStore}},
		&driver.DSTarget{DS: depth.view, Load: driver.LClear, Store: driver.SDontCare, Clear: 1})
	cb.SetPipeline(r.pl)
	cb.SetViewport([]driver.Viewport{{Width: float32(w), Height: float32(h), Zfar: 1}})
	cb.SetScissor([]driver.Scissor{{Width: w, Height: h}})
	cb.SetDescTableGraph(r.table, 0, []int{slot})
	vb := r.sb.vertices.buf
	cb.SetVertexBuf(0, []driver.Buffer{vb, vb, vb}, []int64{vertexPosition, vertexNormal, vertexTexcoord})
	cb.SetIndexBuf(driver.Index32, r.sb.indices.buf, 0)
	for i, in := range r.sc.Instances {
		p := &r.sc.Primitives[in.PrimitiveIndex]
		cb.DrawIndexed(int(p.IndexCount), 1, int(p.IndicesOffset), int(p.VerticesOffset), i)
	}
	cb.EndPass()
}

// destroy destroys the rasterizer. The instance buffer is
// added to rec, if not nil, since a pending upload may
// refer to it.
func (r *rasterizer) destroy(rec Recorder) {
	if r.pl != nil {
		r.pl.Destroy()
	}
	if r.table != nil {
		r.table.Destroy()
	}
	if r.heap != nil {
		r.heap.Destroy()
	}
	for _, c := range r.code {
		c.Destroy()
	}
	if r.inst != nil {
		if rec != nil {
			rec.Add(BufferResource(r.inst))
		} else {
			r.inst.Destroy()
		}
	}
	*r = rasterizer{}
}
