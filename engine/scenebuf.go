// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/gviegas/hybrid/driver"
	"github.com/gviegas/hybrid/scene"
)

// Sizes of the records stored in scene buffers.
// These must match the shader declarations.
const (
	VertexSize        = 32
	MaterialSize      = 48
	PrimitiveInfoSize = 12
	SceneDescSize     = 32
)

// Offsets of the vertex attributes within a vertex record.
const (
	vertexPosition = 0
	vertexNormal   = 12
	vertexTexcoord = 24
)

// SceneDesc holds the device addresses of the scene buffers.
// Shaders locate all scene data through it.
type SceneDesc struct {
	Vertices   uint64
	Indices    uint64
	Materials  uint64
	Primitives uint64
}

// EncodeSceneDesc encodes d as it is laid out in device
// memory.
func EncodeSceneDesc(d SceneDesc) []byte {
	b := make([]byte, SceneDescSize)
	binary.LittleEndian.PutUint64(b[0:], d.Vertices)
	binary.LittleEndian.PutUint64(b[8:], d.Indices)
	binary.LittleEndian.PutUint64(b[16:], d.Materials)
	binary.LittleEndian.PutUint64(b[24:], d.Primitives)
	return b
}

// DecodeSceneDesc decodes a SceneDesc encoded by
// EncodeSceneDesc.
func DecodeSceneDesc(b []byte) (SceneDesc, error) {
	if len(b) < SceneDescSize {
		return SceneDesc{}, errors.Errorf("engine: scene descriptor needs %d bytes, got %d", SceneDescSize, len(b))
	}
	return SceneDesc{
		Vertices:   binary.LittleEndian.Uint64(b[0:]),
		Indices:    binary.LittleEndian.Uint64(b[8:]),
		Materials:  binary.LittleEndian.Uint64(b[16:]),
		Primitives: binary.LittleEndian.Uint64(b[24:]),
	}, nil
}

func putFloats(b []byte, fs ...float32) {
	for i, f := range fs {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
	}
}

func encodeVertices(vs []scene.Vertex) []byte {
	b := make([]byte, len(vs)*VertexSize)
	for i := range vs {
		p := b[i*VertexSize:]
		putFloats(p[vertexPosition:], vs[i].Position[:]...)
		putFloats(p[vertexNormal:], vs[i].Normal[:]...)
		putFloats(p[vertexTexcoord:], vs[i].Texcoord[:]...)
	}
	return b
}

func encodeIndices(idx []uint32) []byte {
	b := make([]byte, len(idx)*4)
	for i, x := range idx {
		binary.LittleEndian.PutUint32(b[i*4:], x)
	}
	return b
}

func encodeMaterials(ms []scene.Material) []byte {
	b := make([]byte, len(ms)*MaterialSize)
	for i := range ms {
		p := b[i*MaterialSize:]
		putFloats(p[0:], ms[i].Color[:]...)
		putFloats(p[16:], ms[i].Emission[:]...)
		putFloats(p[28:], ms[i].Roughness, ms[i].Metallic, ms[i].Transmission, ms[i].IOR)
	}
	return b
}

func encodePrimitiveInfos(ps []scene.Primitive) []byte {
	b := make([]byte, len(ps)*PrimitiveInfoSize)
	for i := range ps {
		p := b[i*PrimitiveInfoSize:]
		binary.LittleEndian.PutUint32(p[0:], ps[i].IndicesOffset)
		binary.LittleEndian.PutUint32(p[4:], ps[i].VerticesOffset)
		binary.LittleEndian.PutUint32(p[8:], ps[i].MaterialIndex)
	}
	return b
}

// Usage of the scene data buffers.
const sceneUsage = driver.UDeviceAddr | driver.UAccelInput | driver.UShaderRead

// SceneBuffers holds the scene data in device-local memory.
// It is immutable once created.
type SceneBuffers struct {
	vertices   *Buffer
	indices    *Buffer
	materials  *Buffer
	primitives *Buffer
	desc       *Buffer
	sdesc      SceneDesc
}

// NewSceneBuffers records the upload of sc into rec.
// The buffers must not be used before the scope is flushed
// or finished.
func NewSceneBuffers(ctx *Context, rec Recorder, sc *scene.Scene) (sb *SceneBuffers, err error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	defer ctx.span("scene.upload")()
	sb = new(SceneBuffers)
	defer func(x *SceneBuffers) {
		if err != nil {
			// Pending copies refer to these buffers.
			rec.Add(x.resource())
			sb = nil
		}
	}(sb)
	for _, x := range [...]struct {
		dst  **Buffer
		data []byte
		usg  driver.Usage
		name string
	}{
		{&sb.vertices, encodeVertices(sc.Vertices), sceneUsage | driver.UVertexData, "vertices"},
		{&sb.indices, encodeIndices(sc.Indices), sceneUsage | driver.UIndexData, "indices"},
		{&sb.materials, encodeMaterials(sc.Materials), sceneUsage, "materials"},
		{&sb.primitives, encodePrimitiveInfos(sc.Primitives), sceneUsage, "primitives"},
	} {
		if *x.dst, err = NewBufferWithStagedData(ctx, rec, x.data, x.usg); err != nil {
			return nil, errors.Wrapf(err, "upload scene %s", x.name)
		}
	}
	sb.sdesc = SceneDesc{
		Vertices:   sb.vertices.Addr(),
		Indices:    sb.indices.Addr(),
		Materials:  sb.materials.Addr(),
		Primitives: sb.primitives.Addr(),
	}
	sb.desc, err = NewBufferWithStagedData(ctx, rec, EncodeSceneDesc(sb.sdesc), driver.UShaderConst|driver.UShaderRead|driver.UDeviceAddr)
	if err != nil {
		return nil, errors.Wrap(err, "upload scene descriptor")
	}
	rec.CmdBuffer().Barrier([]driver.Barrier{{
		SyncBefore:   driver.SCopy,
		SyncAfter:    driver.SAccelBuild | driver.SRayTracing | driver.SVertexInput | driver.SVertexShading | driver.SFragmentShading,
		AccessBefore: driver.ACopyWrite,
		AccessAfter:  driver.AAccelRead | driver.AShaderRead | driver.AVertexBufRead | driver.AIndexBufRead,
	}})
	logger.Infof("scene upload: %d vertices, %d indices, %d materials, %d primitives",
		len(sc.Vertices), len(sc.Indices), len(sc.Materials), len(sc.Primitives))
	return sb, nil
}

func (sb *SceneBuffers) resource() Resource {
	var r []Resource
	for _, b := range [...]*Buffer{sb.vertices, sb.indices, sb.materials, sb.primitives, sb.desc} {
		if b != nil {
			r = append(r, BufferResource(b))
		}
	}
	return ListResource(r...)
}

// Vertices returns the vertex buffer.
func (sb *SceneBuffers) Vertices() *Buffer { return sb.vertices }

// Indices returns the index buffer.
func (sb *SceneBuffers) Indices() *Buffer { return sb.indices }

// Materials returns the material buffer.
func (sb *SceneBuffers) Materials() *Buffer { return sb.materials }

// Primitives returns the primitive info buffer.
func (sb *SceneBuffers) Primitives() *Buffer { return sb.primitives }

// DescBuffer returns the buffer holding the encoded
// SceneDesc.
func (sb *SceneBuffers) DescBuffer() *Buffer { return sb.desc }

// Desc returns the CPU copy of the scene descriptor.
func (sb *SceneBuffers) Desc() SceneDesc { return sb.sdesc }

// Destroy destroys every buffer.
func (sb *SceneBuffers) Destroy() {
	sb.resource().Destroy()
	*sb = SceneBuffers{}
}
