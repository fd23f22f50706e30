// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package gltf

import (
	"encoding/binary"
	"math"
)

// element returns the byte slices of each element of the
// given accessor, given the contents of every buffer.
func (f *GLTF) element(acc int64, bufs [][]byte) ([][]byte, *Accessor, error) {
	if acc < 0 || acc >= int64(len(f.Accessors)) {
		return nil, nil, newErr("accessor index out of range")
	}
	a := &f.Accessors[acc]
	if a.BufferView == nil {
		return nil, nil, newErr("accessors without buffer view are not supported")
	}
	v := &f.BufferViews[*a.BufferView]
	if v.Buffer >= int64(len(bufs)) {
		return nil, nil, newErr("buffer not loaded")
	}
	size := int64(ComponentSize(a.ComponentType) * Components(a.Type))
	stride := v.ByteStride
	if stride == 0 {
		stride = size
	}
	data := bufs[v.Buffer]
	start := v.ByteOffset + a.ByteOffset
	end := start + stride*(a.Count-1) + size
	if end > v.ByteOffset+v.ByteLength || end > int64(len(data)) {
		return nil, nil, newErr("accessor exceeds buffer view")
	}
	elems := make([][]byte, a.Count)
	for i := range elems {
		off := start + int64(i)*stride
		elems[i] = data[off : off+size]
	}
	return elems, a, nil
}

// ReadFloats reads a FLOAT accessor of type typ.
// It returns the components of every element, tightly
// packed.
func (f *GLTF) ReadFloats(acc int64, typ string, bufs [][]byte) ([]float32, error) {
	elems, a, err := f.element(acc, bufs)
	if err != nil {
		return nil, err
	}
	if a.ComponentType != FLOAT || a.Type != typ {
		return nil, newErr("unexpected accessor format (want " + typ + " of FLOAT)")
	}
	n := Components(typ)
	fs := make([]float32, 0, n*len(elems))
	for _, e := range elems {
		for i := 0; i < n; i++ {
			fs = append(fs, math.Float32frombits(binary.LittleEndian.Uint32(e[i*4:])))
		}
	}
	return fs, nil
}

// ReadIndices reads a SCALAR accessor of unsigned integers.
func (f *GLTF) ReadIndices(acc int64, bufs [][]byte) ([]uint32, error) {
	elems, a, err := f.element(acc, bufs)
	if err != nil {
		return nil, err
	}
	if a.Type != SCALAR {
		return nil, newErr("index accessor must be SCALAR")
	}
	idx := make([]uint32, len(elems))
	for i, e := range elems {
		switch a.ComponentType {
		case UNSIGNED_BYTE:
			idx[i] = uint32(e[0])
		case UNSIGNED_SHORT:
			idx[i] = uint32(binary.LittleEndian.Uint16(e))
		case UNSIGNED_INT:
			idx[i] = binary.LittleEndian.Uint32(e)
		default:
			return nil, newErr("invalid index component type")
		}
	}
	return idx, nil
}
