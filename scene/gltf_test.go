// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package scene

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gviegas/hybrid/gltf"
)

// triangleBuffer holds 3 positions followed by 3 uint16
// indices and 2 bytes of padding.
func triangleBuffer() []byte {
	var b bytes.Buffer
	binary.Write(&b, binary.LittleEndian, [9]float32{0, 0, 0, 1, 0, 0, 0, 1, 0})
	binary.Write(&b, binary.LittleEndian, [4]uint16{0, 1, 2, 0})
	return b.Bytes()
}

func triangleDoc(uri string) string {
	return fmt.Sprintf(`{
	"asset": {"version": "2.0"},
	"scene": 0,
	"scenes": [{"nodes": [0, 2, 3]}],
	"nodes": [
		{"translation": [0, 0, -1], "children": [1]},
		{"mesh": 0, "scale": [2, 2, 2]},
		{"mesh": 0},
		{"camera": 0, "translation": [0, 0, 10]}
	],
	"cameras": [{"type": "perspective", "perspective": {"yfov": 0.8, "znear": 0.5}}],
	"materials": [{
		"pbrMetallicRoughness": {"baseColorFactor": [1, 0, 0, 1], "metallicFactor": 0, "roughnessFactor": 0.25},
		"emissiveFactor": [1, 1, 1],
		"extensions": {"KHR_materials_emissive_strength": {"emissiveStrength": 4}}
	}],
	"meshes": [{"primitives": [
		{"attributes": {"POSITION": 0}, "indices": 1, "material": 0},
		{"attributes": {"POSITION": 0}, "indices": 1}
	]}],
	"buffers": [{"byteLength": 44, "uri": %q}],
	"bufferViews": [
		{"buffer": 0, "byteLength": 36},
		{"buffer": 0, "byteOffset": 36, "byteLength": 6}
	],
	"accessors": [
		{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
		{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
	]
}`, uri)
}

func checkTriangleScene(t *testing.T, s *Scene) {
	t.Helper()
	if n := len(s.Primitives); n != 2 {
		t.Fatalf("len(Primitives):\nhave %d\nwant 2", n)
	}
	// Two mesh nodes, two primitives each.
	if n := len(s.Instances); n != 4 {
		t.Fatalf("len(Instances):\nhave %d\nwant 4", n)
	}
	// The explicit material plus the default one.
	if n := len(s.Materials); n != 2 {
		t.Fatalf("len(Materials):\nhave %d\nwant 2", n)
	}
	m := s.Materials[0]
	if m.Color != [4]float32{1, 0, 0, 1} || m.Metallic != 0 || m.Roughness != 0.25 || m.Emission != [3]float32{4, 4, 4} {
		t.Fatalf("Materials[0]:\nhave %+v\nwant red, metallic 0, roughness 0.25, emission 4", m)
	}
	if p := s.Primitives[1]; p.MaterialIndex != 1 || p.VerticesOffset != 3 || p.IndicesOffset != 3 {
		t.Fatalf("Primitives[1]:\nhave %+v\nwant offsets 3 and material 1", p)
	}
	want := mgl32.Translate3D(0, 0, -1).Mul4(mgl32.Scale3D(2, 2, 2))
	if !s.Instances[0].Transform.ApproxEqual(want) {
		t.Fatalf("Instances[0].Transform:\nhave %v\nwant %v", s.Instances[0].Transform, want)
	}
	if !s.Instances[2].Transform.ApproxEqual(mgl32.Ident4()) {
		t.Fatalf("Instances[2].Transform:\nhave %v\nwant identity", s.Instances[2].Transform)
	}
	// Normals are generated when missing.
	if n := s.Vertices[0].Normal; n != [3]float32{0, 0, 1} {
		t.Fatalf("Vertices[0].Normal:\nhave %v\nwant [0 0 1]", n)
	}
	c := s.Camera
	if c == nil {
		t.Fatal("Camera:\nhave nil\nwant non-nil")
	}
	if c.Position != (mgl32.Vec3{0, 0, 10}) || c.Target != (mgl32.Vec3{0, 0, 9}) || c.FovY != 0.8 || c.Near != 0.5 {
		t.Fatalf("Camera:\nhave %+v\nwant at (0, 0, 10) looking down -Z", c)
	}
}

func TestReadGLTF(t *testing.T) {
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(triangleBuffer())
	s, err := ReadGLTF(strings.NewReader(triangleDoc(uri)), "")
	if err != nil {
		t.Fatalf("ReadGLTF:\nhave %v\nwant nil", err)
	}
	checkTriangleScene(t, s)
}

func TestReadGLB(t *testing.T) {
	js := strings.Replace(triangleDoc(""), `, "uri": ""`, "", 1)
	var buf bytes.Buffer
	if err := gltf.WriteGLB(&buf, []byte(js), triangleBuffer()); err != nil {
		t.Fatal(err)
	}
	s, err := ReadGLTF(bytes.NewReader(buf.Bytes()), "")
	if err != nil {
		t.Fatalf("ReadGLTF(<GLB>):\nhave %v\nwant nil", err)
	}
	checkTriangleScene(t, s)
}

func TestImportGLTF(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tri.bin"), triangleBuffer(), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "tri.gltf")
	if err := os.WriteFile(path, []byte(triangleDoc("tri.bin")), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := ImportGLTF(path)
	if err != nil {
		t.Fatalf("ImportGLTF:\nhave %v\nwant nil", err)
	}
	checkTriangleScene(t, s)

	if _, err := ImportGLTF(filepath.Join(dir, "missing.gltf")); err == nil {
		t.Fatal("ImportGLTF(<missing file>):\nhave nil\nwant error")
	}
	bad := strings.Replace(triangleDoc("tri.bin"), `"mesh": 0}`, `"mesh": 3}`, 1)
	if _, err := ReadGLTF(strings.NewReader(bad), dir); err == nil {
		t.Fatal("ReadGLTF(<bad mesh index>):\nhave nil\nwant error")
	}
}
