// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"github.com/pkg/errors"

	"github.com/gviegas/hybrid/driver"
)

// Descriptors of the tonemap pass.
const (
	tmInput = iota
	tmSampler
	tmUniforms
)

// tonemap maps the HDR target into a swapchain view by
// drawing a fullscreen triangle.
type tonemap struct {
	code  []driver.ShaderCode
	heap  driver.DescHeap
	table driver.DescTable
	splr  driver.Sampler
	pl    driver.Pipeline
	pf    driver.PixelFmt
}

func newTonemap(ctx *Context, sh *Shaders, uni *uniforms, pf driver.PixelFmt) (t *tonemap, err error) {
	t = new(tonemap)
	defer func(x *tonemap) {
		if err != nil {
			x.destroy()
			t = nil
		}
	}(t)
	if t.code, err = newShaderCodes(ctx, sh.TonemapVert, sh.TonemapFrag); err != nil {
		return
	}
	t.heap, err = ctx.gpu.NewDescHeap([]driver.Descriptor{
		{Type: driver.DTexture, Stages: driver.SFragment, Nr: tmInput, Len: 1},
		{Type: driver.DSampler, Stages: driver.SFragment, Nr: tmSampler, Len: 1},
		{Type: driver.DConstant, Stages: driver.SFragment, Nr: tmUniforms, Len: 1},
	})
	if err != nil {
		return nil, errors.Wrap(err, "create tonemap heap")
	}
	if err = t.heap.New(FramesInFlight); err != nil {
		return nil, errors.Wrap(err, "create tonemap heap copies")
	}
	if t.table, err = ctx.gpu.NewDescTable([]driver.DescHeap{t.heap}); err != nil {
		return nil, errors.Wrap(err, "create tonemap table")
	}
	t.splr, err = ctx.gpu.NewSampler(&driver.Sampling{
		Min:    driver.FNearest,
		Mag:    driver.FNearest,
		Mipmap: driver.FNoMipmap,
		AddrU:  driver.AClamp,
		AddrV:  driver.AClamp,
		AddrW:  driver.AClamp,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create tonemap sampler")
	}
	for i := 0; i < FramesInFlight; i++ {
		t.heap.SetSampler(i, tmSampler, 0, []driver.Sampler{t.splr})
	}
	uni.setHeap(t.heap, tmUniforms)
	if err = t.setFormat(ctx, pf); err != nil {
		return nil, err
	}
	return t, nil
}

// setFormat (re)creates the pipeline for views of the
// given format.
func (t *tonemap) setFormat(ctx *Context, pf driver.PixelFmt) error {
	if t.pl != nil && t.pf == pf {
		return nil
	}
	pl, err := ctx.gpu.NewPipeline(&driver.GraphState{
		VertFunc:  driver.ShaderFunc{Code: t.code[0], Name: shaderEntry},
		FragFunc:  driver.ShaderFunc{Code: t.code[1], Name: shaderEntry},
		Desc:      t.table,
		Topology:  driver.TTriangle,
		Raster:    driver.RasterState{Cull: driver.CNone, Fill: driver.FFill},
		Samples:   1,
		WriteMask: driver.CAll,
		ColorFmt:  []driver.PixelFmt{pf},
	})
	if err != nil {
		return errors.Wrap(err, "create tonemap pipeline")
	}
	if t.pl != nil {
		t.pl.Destroy()
	}
	t.pl = pl
	t.pf = pf
	return nil
}

// setInput sets the HDR image to be sampled.
func (t *tonemap) setInput(hdr *Image) {
	for i := 0; i < FramesInFlight; i++ {
		t.heap.SetImage(i, tmInput, 0, []driver.ImageView{hdr.view})
	}
}

// record records the tonemapping of hdr into view, which
// is left in the LPresent layout.
func (t *tonemap) record(cb driver.CmdBuffer, slot int, hdr *Image, view driver.ImageView, width, height int) {
	hdr.Transition(cb, driver.LShaderRead)
	cb.Transition([]driver.Transition{transition(view, driver.LUndefined, driver.LColorTarget)})
	cb.BeginPass(width, height,
		[]driver.ColorTarget{{Color: view, Load: driver.LDontCare, Store: driver.SStore}}, nil)
	cb.SetPipeline(t.pl)
	cb.SetViewport([]driver.Viewport{{Width: float32(width), Height: float32(height), Zfar: 1}})
	cb.SetScissor([]driver.Scissor{{Width: width, Height: height}})
	cb.SetDescTableGraph(t.table, 0, []int{slot})
	cb.Draw(3, 1, 0, 0)
	cb.EndPass()
	cb.Transition([]driver.Transition{transition(view, driver.LColorTarget, driver.LPresent)})
}

func (t *tonemap) destroy() {
	if t.pl != nil {
		t.pl.Destroy()
	}
	if t.splr != nil {
		t.splr.Destroy()
	}
	if t.table != nil {
		t.table.Destroy()
	}
	if t.heap != nil {
		t.heap.Destroy()
	}
	for _, c := range t.code {
		c.Destroy()
	}
	*t = tonemap{}
}
