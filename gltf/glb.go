// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package gltf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// GLB header.
type glbHeader [3]uint32

// Indices in glbHeader.
const (
	headerMagic   = 0
	headerVersion = 1
	headerLength  = 2
)

// GLB chunk.
type glbChunk [2]uint32

// Indices in glbChunk.
const (
	chunkLength = 0
	chunkType   = 1
	// Then payload.
)

const (
	// glbHeader[headerMagic].
	magic = 0x46546c67

	// glbChunk[chunkType].
	typeJSON = 0x4e4f534a
	typeBIN  = 0x004e4942
)

// IsGLB returns whether r refers to a binary glTF (version 2).
// It assumes that r was positioned accordingly.
func IsGLB(r io.Reader) bool {
	var h glbHeader
	err := binary.Read(r, binary.LittleEndian, h[:])
	switch {
	case err != nil, h[headerMagic] != magic, h[headerVersion] != 2:
		return false
	default:
		return true
	}
}

// ReadGLB reads a GLB blob from r.
// It returns the JSON chunk and the binary chunk, which
// is nil when not present.
func ReadGLB(r io.Reader) (js, bin []byte, err error) {
	var h glbHeader
	if err = binary.Read(r, binary.LittleEndian, h[:]); err != nil {
		return
	}
	if h[headerMagic] != magic || h[headerVersion] != 2 {
		err = errors.New("gltf: not a GLB blob")
		return
	}
	rem := int64(h[headerLength]) - 12
	for rem > 0 {
		var c glbChunk
		if err = binary.Read(r, binary.LittleEndian, c[:]); err != nil {
			return
		}
		data := make([]byte, c[chunkLength])
		if _, err = io.ReadFull(r, data); err != nil {
			return
		}
		switch c[chunkType] {
		case typeJSON:
			if js != nil {
				err = errors.New("gltf: duplicate GLB JSON chunk")
				return
			}
			js = data
		case typeBIN:
			if js == nil || bin != nil {
				err = errors.New("gltf: unexpected GLB BIN chunk")
				return
			}
			bin = data
		}
		// Unknown chunks are skipped.
		rem -= 8 + int64(c[chunkLength])
	}
	if js == nil {
		err = errors.New("gltf: GLB has no JSON chunk")
	}
	return
}

// WriteGLB writes a GLB blob to w.
// bin may be nil.
func WriteGLB(w io.Writer, js, bin []byte) error {
	pad := func(b []byte, c byte) []byte {
		for len(b)%4 != 0 {
			b = append(b, c)
		}
		return b
	}
	js = pad(append([]byte(nil), js...), ' ')
	n := 12 + 8 + len(js)
	if bin != nil {
		bin = pad(append([]byte(nil), bin...), 0)
		n += 8 + len(bin)
	}
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, glbHeader{magic, 2, uint32(n)})
	binary.Write(&buf, binary.LittleEndian, glbChunk{uint32(len(js)), typeJSON})
	buf.Write(js)
	if bin != nil {
		binary.Write(&buf, binary.LittleEndian, glbChunk{uint32(len(bin)), typeBIN})
		buf.Write(bin)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
