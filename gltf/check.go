// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package gltf

import (
	"errors"
)

func newErr(reason string) error {
	return errors.New("gltf: " + reason)
}

func inRange(i *int64, n int) bool { return i == nil || (*i >= 0 && *i < int64(n)) }

// Check checks that every index in f refers to an existing
// object, and that accessors are well formed.
func (f *GLTF) Check() error {
	if !inRange(f.Scene, len(f.Scenes)) {
		return newErr("invalid GLTF.Scene index")
	}
	for i := range f.Accessors {
		if err := f.Accessors[i].Check(f); err != nil {
			return err
		}
	}
	for _, v := range f.BufferViews {
		switch {
		case v.Buffer < 0 || v.Buffer >= int64(len(f.Buffers)):
			return newErr("invalid BufferView.Buffer index")
		case v.ByteOffset < 0 || v.ByteLength < 1:
			return newErr("invalid BufferView range")
		case v.ByteOffset+v.ByteLength > f.Buffers[v.Buffer].ByteLength:
			return newErr("BufferView exceeds Buffer.ByteLength")
		case v.ByteStride != 0 && (v.ByteStride < 4 || v.ByteStride > 252 || v.ByteStride%4 != 0):
			return newErr("invalid BufferView.ByteStride value")
		}
	}
	for _, m := range f.Meshes {
		if len(m.Primitives) == 0 {
			return newErr("Mesh has no primitives")
		}
		for _, p := range m.Primitives {
			if !inRange(p.Indices, len(f.Accessors)) {
				return newErr("invalid Primitive.Indices index")
			}
			if !inRange(p.Material, len(f.Materials)) {
				return newErr("invalid Primitive.Material index")
			}
			for _, a := range p.Attributes {
				if !inRange(&a, len(f.Accessors)) {
					return newErr("invalid Primitive.Attributes index")
				}
			}
		}
	}
	for _, n := range f.Nodes {
		if !inRange(n.Mesh, len(f.Meshes)) {
			return newErr("invalid Node.Mesh index")
		}
		if !inRange(n.Camera, len(f.Cameras)) {
			return newErr("invalid Node.Camera index")
		}
		for _, c := range n.Children {
			if !inRange(&c, len(f.Nodes)) {
				return newErr("invalid Node.Children index")
			}
		}
		if n.Matrix != nil && len(n.Matrix) != 16 {
			return newErr("invalid Node.Matrix length")
		}
	}
	for _, s := range f.Scenes {
		for _, n := range s.Nodes {
			if !inRange(&n, len(f.Nodes)) {
				return newErr("invalid Scene.Nodes index")
			}
		}
	}
	return nil
}

// Check checks that a is valid glTF.accessors' element.
func (a *Accessor) Check(gltf *GLTF) error {
	if !inRange(a.BufferView, len(gltf.BufferViews)) {
		return newErr("invalid Accessor.BufferView index")
	}
	if a.ByteOffset < 0 {
		return newErr("invalid Accessor.ByteOffset value")
	}
	if ComponentSize(a.ComponentType) == 0 {
		return newErr("invalid Accessor.ComponentType value")
	}
	if a.Count < 1 {
		return newErr("invalid Accessor.Count value")
	}
	if Components(a.Type) == 0 {
		return newErr("invalid Accessor.Type value")
	}
	return nil
}

// ComponentSize returns the size in bytes of the given
// component type, or 0 if it is invalid.
func ComponentSize(typ int64) int {
	switch typ {
	case BYTE, UNSIGNED_BYTE:
		return 1
	case SHORT, UNSIGNED_SHORT:
		return 2
	case UNSIGNED_INT, FLOAT:
		return 4
	}
	return 0
}

// Components returns the number of components of the
// given accessor type, or 0 if it is invalid.
func Components(typ string) int {
	switch typ {
	case SCALAR:
		return 1
	case VEC2:
		return 2
	case VEC3:
		return 3
	case VEC4, MAT2:
		return 4
	case MAT3:
		return 9
	case MAT4:
		return 16
	}
	return 0
}
