// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package gltf implements the subset of glTF 2.0 that is
// needed to import static triangle scenes.
package gltf

import (
	"encoding/json"
	"io"
)

// Root glTF object.
type GLTF struct {
	ExtensionsUsed     []string   `json:"extensionsUsed,omitempty"`
	ExtensionsRequired []string   `json:"extensionsRequired,omitempty"`
	Accessors          []Accessor `json:"accessors,omitempty"`
	Asset              struct {
		Generator  string `json:"generator,omitempty"`
		Version    string `json:"version"`
		MinVersion string `json:"minVersion,omitempty"`
	} `json:"asset"`
	Buffers     []Buffer     `json:"buffers,omitempty"`
	BufferViews []BufferView `json:"bufferViews,omitempty"`
	Cameras     []Camera     `json:"cameras,omitempty"`
	Materials   []Material   `json:"materials,omitempty"`
	Meshes      []Mesh       `json:"meshes,omitempty"`
	Nodes       []Node       `json:"nodes,omitempty"`
	Scene       *int64       `json:"scene,omitempty"`
	Scenes      []Scene      `json:"scenes,omitempty"`
}

// glTF.accessors' element.
// Sparse accessors are not supported.
type Accessor struct {
	BufferView    *int64    `json:"bufferView,omitempty"`
	ByteOffset    int64     `json:"byteOffset,omitempty"` // Default is 0.
	ComponentType int64     `json:"componentType"`
	Normalized    bool      `json:"normalized,omitempty"`
	Count         int64     `json:"count"`
	Type          string    `json:"type"`
	Max           []float32 `json:"max,omitempty"`
	Min           []float32 `json:"min,omitempty"`
	Name          string    `json:"name,omitempty"`
}

// accessor.componentType values.
const (
	BYTE           = 5120
	UNSIGNED_BYTE  = 5121
	SHORT          = 5122
	UNSIGNED_SHORT = 5123
	UNSIGNED_INT   = 5125
	FLOAT          = 5126
)

// accessor.type values.
const (
	SCALAR = "SCALAR"
	VEC2   = "VEC2"
	VEC3   = "VEC3"
	VEC4   = "VEC4"
	MAT2   = "MAT2"
	MAT3   = "MAT3"
	MAT4   = "MAT4"
)

// glTF.buffers' element.
type Buffer struct {
	URI        string `json:"uri,omitempty"`
	ByteLength int64  `json:"byteLength"`
	Name       string `json:"name,omitempty"`
}

// glTF.bufferViews' element.
type BufferView struct {
	Buffer     int64  `json:"buffer"`
	ByteOffset int64  `json:"byteOffset,omitempty"` // Default is 0.
	ByteLength int64  `json:"byteLength"`
	ByteStride int64  `json:"byteStride,omitempty"`
	Target     int64  `json:"target,omitempty"`
	Name       string `json:"name,omitempty"`
}

// glTF.cameras' element.
type Camera struct {
	Perspective *Perspective `json:"perspective,omitempty"`
	Type        string       `json:"type"`
	Name        string       `json:"name,omitempty"`
}

// camera.perspective.
type Perspective struct {
	AspectRatio float32 `json:"aspectRatio,omitempty"`
	YFov        float32 `json:"yfov"`
	ZFar        float32 `json:"zfar,omitempty"`
	ZNear       float32 `json:"znear"`
}

// camera.type values.
const (
	PERSPECTIVE  = "perspective"
	ORTHOGRAPHIC = "orthographic"
)

// glTF.materials' element.
type Material struct {
	Name                 string                `json:"name,omitempty"`
	PBRMetallicRoughness *PBRMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	EmissiveFactor       []float32             `json:"emissiveFactor,omitempty"` // Default is [0, 0, 0].
	DoubleSided          bool                  `json:"doubleSided,omitempty"`
	Extensions           *MaterialExtensions   `json:"extensions,omitempty"`
}

// material.pbrMetallicRoughness.
type PBRMetallicRoughness struct {
	BaseColorFactor []float32 `json:"baseColorFactor,omitempty"` // Default is [1, 1, 1, 1].
	MetallicFactor  *float32  `json:"metallicFactor,omitempty"`  // Default is 1.
	RoughnessFactor *float32  `json:"roughnessFactor,omitempty"` // Default is 1.
}

// material.extensions.
type MaterialExtensions struct {
	Transmission *struct {
		TransmissionFactor float32 `json:"transmissionFactor,omitempty"`
	} `json:"KHR_materials_transmission,omitempty"`
	IOR *struct {
		IOR *float32 `json:"ior,omitempty"` // Default is 1.5.
	} `json:"KHR_materials_ior,omitempty"`
	EmissiveStrength *struct {
		EmissiveStrength *float32 `json:"emissiveStrength,omitempty"` // Default is 1.
	} `json:"KHR_materials_emissive_strength,omitempty"`
}

// glTF.meshes' element.
type Mesh struct {
	Primitives []Primitive `json:"primitives"`
	Name       string      `json:"name,omitempty"`
}

// mesh.primitives' element.
type Primitive struct {
	Attributes map[string]int64 `json:"attributes"`
	Indices    *int64           `json:"indices,omitempty"`
	Material   *int64           `json:"material,omitempty"`
	Mode       *int64           `json:"mode,omitempty"` // Default is TRIANGLES.
}

// primitive.mode values.
const (
	POINTS         = 0
	LINES          = 1
	LINE_LOOP      = 2
	LINE_STRIP     = 3
	TRIANGLES      = 4
	TRIANGLE_STRIP = 5
	TRIANGLE_FAN   = 6
)

// glTF.nodes' element.
type Node struct {
	Camera      *int64    `json:"camera,omitempty"`
	Children    []int64   `json:"children,omitempty"`
	Matrix      []float32 `json:"matrix,omitempty"` // Default is identity.
	Mesh        *int64    `json:"mesh,omitempty"`
	Rotation    []float32 `json:"rotation,omitempty"`    // Default is [0, 0, 0, 1].
	Scale       []float32 `json:"scale,omitempty"`       // Default is [1, 1, 1].
	Translation []float32 `json:"translation,omitempty"` // Default is [0, 0, 0].
	Name        string    `json:"name,omitempty"`
}

// glTF.scenes' element.
type Scene struct {
	Nodes []int64 `json:"nodes,omitempty"`
	Name  string  `json:"name,omitempty"`
}

// Encode encodes gltf as JSON and writes it to w.
func Encode(w io.Writer, gltf *GLTF) error {
	return json.NewEncoder(w).Encode(gltf)
}

// Decode reads and decodes JSON data from r.
func Decode(r io.Reader) (*GLTF, error) {
	gltf := new(GLTF)
	if err := json.NewDecoder(r).Decode(gltf); err != nil {
		return nil, err
	}
	return gltf, nil
}
