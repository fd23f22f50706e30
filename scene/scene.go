// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package scene defines the immutable scene snapshot that
// is uploaded to the GPU, along with its on-disk format and
// a glTF importer.
//
// A scene is a flat set of arrays: every primitive refers
// to a range of the shared vertex and index arrays, and
// every instance places a primitive in the world.
package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Vertex is a single vertex of the shared vertex array.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	Texcoord [2]float32
}

// Material describes the surface of a primitive.
type Material struct {
	Color        [4]float32
	Emission     [3]float32
	Roughness    float32
	Metallic     float32
	Transmission float32
	IOR          float32
}

// DefaultMaterial returns the material that is used when
// a primitive does not specify one.
func DefaultMaterial() Material {
	return Material{
		Color:     [4]float32{1, 1, 1, 1},
		Roughness: 1,
		IOR:       1.5,
	}
}

// Primitive is a triangle mesh stored in the shared arrays.
// Indices are relative to VerticesOffset.
type Primitive struct {
	IndicesOffset  uint32
	IndexCount     uint32
	VerticesOffset uint32
	VertexCount    uint32
	MaterialIndex  uint32
}

// Triangles returns the number of triangles in p.
func (p *Primitive) Triangles() int { return int(p.IndexCount / 3) }

// Instance places a primitive in the world.
type Instance struct {
	PrimitiveIndex uint32
	Transform      mgl32.Mat4
}

// Camera is a perspective camera.
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
	// Vertical field of view, in radians.
	FovY      float32
	Near, Far float32
}

// DefaultCamera returns a camera at (0, 0, 5) looking at
// the origin.
func DefaultCamera() Camera {
	return Camera{
		Position: mgl32.Vec3{0, 0, 5},
		Up:       mgl32.Vec3{0, 1, 0},
		FovY:     mgl32.DegToRad(60),
		Near:     0.1,
		Far:      1000,
	}
}

// View returns the view matrix of c.
func (c *Camera) View() mgl32.Mat4 { return mgl32.LookAtV(c.Position, c.Target, c.Up) }

// Projection returns the projection matrix of c for the
// given aspect ratio.
func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// Orbit rotates the camera position around its target by
// yaw radians about the up axis and pitch radians about
// the camera's right axis.
func (c *Camera) Orbit(yaw, pitch float32) {
	off := c.Position.Sub(c.Target)
	right := off.Cross(c.Up).Normalize()
	q := mgl32.QuatRotate(yaw, c.Up).Mul(mgl32.QuatRotate(pitch, right))
	off = q.Rotate(off)
	// Stop short of the poles.
	if n := off.Normalize(); mgl32.Abs(n.Dot(c.Up.Normalize())) > 0.99 {
		return
	}
	c.Position = c.Target.Add(off)
}

// Scene is an immutable snapshot of the data that the
// renderer consumes.
type Scene struct {
	Vertices   []Vertex
	Indices    []uint32
	Materials  []Material
	Primitives []Primitive
	Instances  []Instance
	Camera     *Camera
}

// Triangles returns the total number of triangles across
// all primitives.
func (s *Scene) Triangles() (n int) {
	for i := range s.Primitives {
		n += s.Primitives[i].Triangles()
	}
	return
}

// ErrInvalid means that a scene refers to data that it does
// not contain.
var ErrInvalid = errors.New("scene: invalid scene")

func invalid(format string, args ...any) error {
	return errors.Wrap(ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate checks that every range and reference of s is
// within bounds, and that every primitive is a non-empty
// triangle list.
func (s *Scene) Validate() error {
	if len(s.Primitives) == 0 {
		return invalid("no primitives")
	}
	if len(s.Instances) == 0 {
		return invalid("no instances")
	}
	for i, p := range s.Primitives {
		switch {
		case p.IndexCount == 0 || p.IndexCount%3 != 0:
			return invalid("primitive %d: index count %d is not a positive multiple of 3", i, p.IndexCount)
		case uint64(p.IndicesOffset)+uint64(p.IndexCount) > uint64(len(s.Indices)):
			return invalid("primitive %d: index range out of bounds", i)
		case p.VertexCount == 0 || uint64(p.VerticesOffset)+uint64(p.VertexCount) > uint64(len(s.Vertices)):
			return invalid("primitive %d: vertex range out of bounds", i)
		case int(p.MaterialIndex) >= len(s.Materials):
			return invalid("primitive %d: material %d out of bounds", i, p.MaterialIndex)
		}
		for _, x := range s.Indices[p.IndicesOffset : p.IndicesOffset+p.IndexCount] {
			if x >= p.VertexCount {
				return invalid("primitive %d: index %d out of bounds", i, x)
			}
		}
	}
	for i, in := range s.Instances {
		if int(in.PrimitiveIndex) >= len(s.Primitives) {
			return invalid("instance %d: primitive %d out of bounds", i, in.PrimitiveIndex)
		}
	}
	return nil
}
