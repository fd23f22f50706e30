// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gviegas/hybrid/driver"
)

// Layout of the per-frame constants.
// These must match the shader declarations.
const (
	uniView       = 0
	uniProj       = 64
	uniViewInv    = 128
	uniProjInv    = 192
	uniFrame      = 256
	uniMaxBounces = 260
	uniExposure   = 264
	uniFlags      = 268
	uniformSize   = 272

	// Constant buffer ranges must be aligned to 256 bytes.
	uniformAlign = 256
)

// Uniform flags.
const (
	uniPathtracer = 1 << iota
)

// frameUniforms are the constants of a single frame.
type frameUniforms struct {
	view, proj mgl32.Mat4
	frame      uint32
	maxBounces uint32
	exposure   float32
	flags      uint32
}

func (u *frameUniforms) encode(b []byte) {
	putMat := func(off int, m mgl32.Mat4) {
		for i, x := range m {
			binary.LittleEndian.PutUint32(b[off+i*4:], math.Float32bits(x))
		}
	}
	putMat(uniView, u.view)
	putMat(uniProj, u.proj)
	putMat(uniViewInv, u.view.Inv())
	putMat(uniProjInv, u.proj.Inv())
	binary.LittleEndian.PutUint32(b[uniFrame:], u.frame)
	binary.LittleEndian.PutUint32(b[uniMaxBounces:], u.maxBounces)
	binary.LittleEndian.PutUint32(b[uniExposure:], math.Float32bits(u.exposure))
	binary.LittleEndian.PutUint32(b[uniFlags:], u.flags)
}

// uniforms is a host-visible buffer holding one copy of the
// frame constants per frame in flight.
type uniforms struct {
	buf    *Buffer
	stride int64
}

func newUniforms(ctx *Context) (*uniforms, error) {
	stride := Align(uniformSize, uniformAlign)
	buf, err := NewBuffer(ctx, stride*FramesInFlight, driver.UShaderConst, HostVisible)
	if err != nil {
		return nil, err
	}
	return &uniforms{buf: buf, stride: stride}, nil
}

// write writes u to the copy of the given slot.
func (un *uniforms) write(slot int, u *frameUniforms) error {
	b := make([]byte, uniformSize)
	u.encode(b)
	return un.buf.Write(int64(slot)*un.stride, b)
}

// setHeap sets descriptor nr of every heap copy to the
// copy of the matching slot.
func (un *uniforms) setHeap(heap driver.DescHeap, nr int) {
	for i := 0; i < FramesInFlight; i++ {
		heap.SetBuffer(i, nr, 0, []driver.Buffer{un.buf.buf}, []int64{int64(i) * un.stride}, []int64{uniformSize})
	}
}

func (un *uniforms) destroy() { un.buf.Destroy() }
