// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

import (
	"encoding/binary"
	"math"
)

// AccelLevel is the level of an acceleration structure.
type AccelLevel int

// Acceleration structure levels.
const (
	// Bottom-level structures contain geometry.
	ABottom AccelLevel = iota
	// Top-level structures contain instances of
	// bottom-level structures.
	ATop
)

// AccelFlags is a mask of acceleration structure build
// flags.
type AccelFlags int

// Acceleration structure build flags.
const (
	// Prefer trace performance over build time.
	AFastTrace AccelFlags = 1 << iota
	// Prefer build time over trace performance.
	AFastBuild
	// Allow the structure to be compacted with
	// CmdBuffer.CopyAccel.
	AAllowCompaction
)

// AccelTriangles describes indexed triangle geometry for
// a bottom-level build.
// Vertex and index data are given by device address and
// must be stored in buffers created with UDeviceAddr and
// UAccelInput.
type AccelTriangles struct {
	VertexFmt    VertexFmt
	VertexAddr   uint64
	VertexStride int64
	// Highest vertex index that can be referred to
	// by the index data.
	MaxVertex int
	IndexFmt  IndexFmt
	IndexAddr uint64
	Opaque    bool
}

// AccelInstances describes the instance data of a
// top-level build.
// Addr is the device address of tightly packed
// AccelInstance records in encoded form.
type AccelInstances struct {
	Addr uint64
}

// AccelRange defines the range of geometry data consumed
// by a build.
// PrimitiveOffset is given in bytes. For triangles, it is
// an offset into the index data and FirstVertex is added
// to every index. For instances, PrimitiveCount is the
// number of instance records.
type AccelRange struct {
	PrimitiveCount  int
	PrimitiveOffset int64
	FirstVertex     int
}

// AccelGeometry describes a single geometry of a build.
// Exactly one of Triangles and Instances must be set,
// matching the level of the build.
type AccelGeometry struct {
	Triangles *AccelTriangles
	Instances *AccelInstances
	Range     AccelRange
}

// AccelBuild describes an acceleration structure build.
// Scratch is the device address of scratch memory, which
// must be aligned to Limits.MinScratchAlign.
type AccelBuild struct {
	Level    AccelLevel
	Flags    AccelFlags
	Geometry []AccelGeometry
	Dst      AccelStruct
	Scratch  uint64
}

// AccelSizes describes the memory requirements of an
// acceleration structure build.
type AccelSizes struct {
	Size        int64
	ScratchSize int64
}

// AccelStruct is the interface that defines a ray tracing
// acceleration structure.
type AccelStruct interface {
	Destroyer

	// Level returns the level of the structure.
	Level() AccelLevel

	// Addr returns the device address of the structure.
	// This is the value that AccelInstance.Ref refers
	// to in top-level builds.
	Addr() uint64
}

// InstanceSize is the size in bytes of an encoded
// AccelInstance.
const InstanceSize = 64

// Instance flags.
const (
	// Disable face culling for the instance.
	ICullDisable = 0x1
	// Reverse the facing determination of triangles.
	IFlipFacing = 0x2
	// Treat all geometry as opaque.
	IForceOpaque = 0x4
)

// AccelInstance is an instance of a bottom-level
// acceleration structure in a top-level build.
// Transform is a row-major 3x4 matrix.
// CustomIndex and SBTOffset are 24-bit values.
type AccelInstance struct {
	Transform   [12]float32
	CustomIndex uint32
	Mask        uint8
	SBTOffset   uint32
	Flags       uint8
	Ref         uint64
}

// Encode writes the instance record to b in the layout
// consumed by top-level builds.
// len(b) must be at least InstanceSize.
func (in *AccelInstance) Encode(b []byte) {
	_ = b[InstanceSize-1]
	for i, x := range in.Transform {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(x))
	}
	binary.LittleEndian.PutUint32(b[48:], in.CustomIndex&0xffffff|uint32(in.Mask)<<24)
	binary.LittleEndian.PutUint32(b[52:], in.SBTOffset&0xffffff|uint32(in.Flags)<<24)
	binary.LittleEndian.PutUint64(b[56:], in.Ref)
}

// DecodeAccelInstance decodes an instance record written
// by AccelInstance.Encode.
func DecodeAccelInstance(b []byte) (in AccelInstance) {
	_ = b[InstanceSize-1]
	for i := range in.Transform {
		in.Transform[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	x := binary.LittleEndian.Uint32(b[48:])
	in.CustomIndex = x & 0xffffff
	in.Mask = uint8(x >> 24)
	x = binary.LittleEndian.Uint32(b[52:])
	in.SBTOffset = x & 0xffffff
	in.Flags = uint8(x >> 24)
	in.Ref = binary.LittleEndian.Uint64(b[56:])
	return
}

// RowMajor3x4 converts a column-major 4x4 affine matrix
// into the row-major 3x4 form used by AccelInstance.
// The last row of m is discarded.
func RowMajor3x4(m [16]float32) (r [12]float32) {
	for row := 0; row < 3; row++ {
		for col := 0; col < 4; col++ {
			r[row*4+col] = m[col*4+row]
		}
	}
	return
}
