// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package scene

import (
	"bytes"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/gviegas/hybrid/gltf"
)

// ImportGLTF imports a .gltf or .glb file.
// External buffers are resolved relative to the file's
// directory.
func ImportGLTF(path string) (*Scene, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "scene: open glTF")
	}
	defer file.Close()
	return ReadGLTF(file, filepath.Dir(path))
}

// ReadGLTF imports glTF data from r, which may hold either
// JSON or GLB.
//
// Every triangle primitive of every mesh becomes a
// Primitive, and every node that refers to a mesh in the
// default scene adds one Instance per mesh primitive, with
// the node's world transform. The first camera node found
// becomes the scene camera.
func ReadGLTF(r io.ReadSeeker, dir string) (*Scene, error) {
	var (
		doc *gltf.GLTF
		bin []byte
		err error
	)
	if gltf.IsGLB(r) {
		if _, err = r.Seek(0, io.SeekStart); err != nil {
			return nil, errors.Wrap(err, "scene: seek glTF")
		}
		var js []byte
		if js, bin, err = gltf.ReadGLB(r); err != nil {
			return nil, errors.Wrap(err, "scene: read GLB")
		}
		doc, err = gltf.Decode(bytes.NewReader(js))
	} else {
		if _, err = r.Seek(0, io.SeekStart); err != nil {
			return nil, errors.Wrap(err, "scene: seek glTF")
		}
		doc, err = gltf.Decode(r)
	}
	if err != nil {
		return nil, errors.Wrap(err, "scene: decode glTF")
	}
	if err := doc.Check(); err != nil {
		return nil, errors.Wrap(err, "scene: check glTF")
	}
	bufs, err := loadBuffers(doc, bin, dir)
	if err != nil {
		return nil, err
	}
	imp := importer{doc: doc, bufs: bufs, sc: new(Scene)}
	if err := imp.run(); err != nil {
		return nil, err
	}
	if err := imp.sc.Validate(); err != nil {
		return nil, err
	}
	logger.Infof("imported glTF: %d primitives, %d instances, %d materials",
		len(imp.sc.Primitives), len(imp.sc.Instances), len(imp.sc.Materials))
	return imp.sc, nil
}

func loadBuffers(doc *gltf.GLTF, bin []byte, dir string) ([][]byte, error) {
	bufs := make([][]byte, len(doc.Buffers))
	for i, b := range doc.Buffers {
		var (
			data []byte
			err  error
		)
		switch {
		case b.URI == "":
			if i != 0 || bin == nil {
				return nil, errors.Errorf("scene: buffer %d has no data", i)
			}
			data = bin
		case strings.HasPrefix(b.URI, "data:"):
			k := strings.Index(b.URI, ";base64,")
			if k < 0 {
				return nil, errors.Errorf("scene: buffer %d: unsupported data URI", i)
			}
			data, err = base64.StdEncoding.DecodeString(b.URI[k+len(";base64,"):])
		default:
			data, err = os.ReadFile(filepath.Join(dir, filepath.FromSlash(b.URI)))
		}
		if err != nil {
			return nil, errors.Wrapf(err, "scene: load buffer %d", i)
		}
		if int64(len(data)) < b.ByteLength {
			return nil, errors.Errorf("scene: buffer %d is shorter than its byteLength", i)
		}
		bufs[i] = data
	}
	return bufs, nil
}

type importer struct {
	doc  *gltf.GLTF
	bufs [][]byte
	sc   *Scene
	// Primitive indices of each mesh.
	meshes [][]uint32
	// Index of the default material, or -1.
	dflMat int
}

func (imp *importer) run() error {
	imp.dflMat = -1
	for i := range imp.doc.Materials {
		imp.sc.Materials = append(imp.sc.Materials, convertMaterial(&imp.doc.Materials[i]))
	}
	imp.meshes = make([][]uint32, len(imp.doc.Meshes))
	for i := range imp.doc.Meshes {
		for j := range imp.doc.Meshes[i].Primitives {
			p := &imp.doc.Meshes[i].Primitives[j]
			if p.Mode != nil && *p.Mode != gltf.TRIANGLES {
				logger.Warningf("mesh %d primitive %d: mode %d is not supported; skipping", i, j, *p.Mode)
				continue
			}
			if err := imp.primitive(p); err != nil {
				return errors.Wrapf(err, "scene: mesh %d primitive %d", i, j)
			}
			imp.meshes[i] = append(imp.meshes[i], uint32(len(imp.sc.Primitives)-1))
		}
	}
	var roots []int64
	switch {
	case imp.doc.Scene != nil:
		roots = imp.doc.Scenes[*imp.doc.Scene].Nodes
	case len(imp.doc.Scenes) > 0:
		roots = imp.doc.Scenes[0].Nodes
	default:
		roots = rootNodes(imp.doc)
	}
	for _, n := range roots {
		if err := imp.node(n, mgl32.Ident4(), 0); err != nil {
			return err
		}
	}
	return nil
}

// primitive appends the geometry of p to the shared arrays.
func (imp *importer) primitive(p *gltf.Primitive) error {
	pa, ok := p.Attributes["POSITION"]
	if !ok {
		return errors.New("missing POSITION attribute")
	}
	pos, err := imp.doc.ReadFloats(pa, gltf.VEC3, imp.bufs)
	if err != nil {
		return errors.Wrap(err, "POSITION")
	}
	nvert := len(pos) / 3
	var norm, uv []float32
	if a, ok := p.Attributes["NORMAL"]; ok {
		if norm, err = imp.doc.ReadFloats(a, gltf.VEC3, imp.bufs); err != nil {
			return errors.Wrap(err, "NORMAL")
		}
	}
	if a, ok := p.Attributes["TEXCOORD_0"]; ok {
		if uv, err = imp.doc.ReadFloats(a, gltf.VEC2, imp.bufs); err != nil {
			return errors.Wrap(err, "TEXCOORD_0")
		}
	}
	var idx []uint32
	if p.Indices != nil {
		if idx, err = imp.doc.ReadIndices(*p.Indices, imp.bufs); err != nil {
			return errors.Wrap(err, "indices")
		}
	} else {
		idx = make([]uint32, nvert)
		for i := range idx {
			idx[i] = uint32(i)
		}
	}
	if len(norm) == 0 {
		norm = flatNormals(pos, idx)
	}
	prim := Primitive{
		IndicesOffset:  uint32(len(imp.sc.Indices)),
		IndexCount:     uint32(len(idx)),
		VerticesOffset: uint32(len(imp.sc.Vertices)),
		VertexCount:    uint32(nvert),
	}
	for i := 0; i < nvert; i++ {
		var v Vertex
		copy(v.Position[:], pos[i*3:])
		if len(norm) >= (i+1)*3 {
			copy(v.Normal[:], norm[i*3:])
		}
		if len(uv) >= (i+1)*2 {
			copy(v.Texcoord[:], uv[i*2:])
		}
		imp.sc.Vertices = append(imp.sc.Vertices, v)
	}
	imp.sc.Indices = append(imp.sc.Indices, idx...)
	if p.Material != nil {
		prim.MaterialIndex = uint32(*p.Material)
	} else {
		if imp.dflMat < 0 {
			imp.dflMat = len(imp.sc.Materials)
			imp.sc.Materials = append(imp.sc.Materials, DefaultMaterial())
		}
		prim.MaterialIndex = uint32(imp.dflMat)
	}
	imp.sc.Primitives = append(imp.sc.Primitives, prim)
	return nil
}

// node visits a node and its descendants.
func (imp *importer) node(n int64, parent mgl32.Mat4, depth int) error {
	if depth > len(imp.doc.Nodes) {
		return errors.New("scene: cycle in glTF node hierarchy")
	}
	nd := &imp.doc.Nodes[n]
	world := parent.Mul4(localTransform(nd))
	if nd.Mesh != nil {
		for _, p := range imp.meshes[*nd.Mesh] {
			imp.sc.Instances = append(imp.sc.Instances, Instance{PrimitiveIndex: p, Transform: world})
		}
	}
	if nd.Camera != nil && imp.sc.Camera == nil {
		if c := imp.doc.Cameras[*nd.Camera]; c.Type == gltf.PERSPECTIVE && c.Perspective != nil {
			imp.sc.Camera = convertCamera(c.Perspective, world)
		}
	}
	for _, c := range nd.Children {
		if err := imp.node(c, world, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// rootNodes returns the nodes that are not children of
// any other node.
func rootNodes(doc *gltf.GLTF) (roots []int64) {
	child := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	for i, c := range child {
		if !c {
			roots = append(roots, int64(i))
		}
	}
	return
}

func localTransform(n *gltf.Node) mgl32.Mat4 {
	if len(n.Matrix) == 16 {
		var m mgl32.Mat4
		copy(m[:], n.Matrix)
		return m
	}
	t := mgl32.Ident4()
	if len(n.Translation) == 3 {
		t = mgl32.Translate3D(n.Translation[0], n.Translation[1], n.Translation[2])
	}
	r := mgl32.Ident4()
	if len(n.Rotation) == 4 {
		q := mgl32.Quat{W: n.Rotation[3], V: mgl32.Vec3{n.Rotation[0], n.Rotation[1], n.Rotation[2]}}
		r = q.Normalize().Mat4()
	}
	s := mgl32.Ident4()
	if len(n.Scale) == 3 {
		s = mgl32.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2])
	}
	return t.Mul4(r).Mul4(s)
}

func convertMaterial(m *gltf.Material) Material {
	mat := DefaultMaterial()
	if pbr := m.PBRMetallicRoughness; pbr != nil {
		if len(pbr.BaseColorFactor) == 4 {
			copy(mat.Color[:], pbr.BaseColorFactor)
		}
		mat.Metallic = 1
		if pbr.MetallicFactor != nil {
			mat.Metallic = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			mat.Roughness = *pbr.RoughnessFactor
		}
	}
	if len(m.EmissiveFactor) == 3 {
		copy(mat.Emission[:], m.EmissiveFactor)
	}
	if ext := m.Extensions; ext != nil {
		if ext.Transmission != nil {
			mat.Transmission = ext.Transmission.TransmissionFactor
		}
		if ext.IOR != nil && ext.IOR.IOR != nil {
			mat.IOR = *ext.IOR.IOR
		}
		if ext.EmissiveStrength != nil && ext.EmissiveStrength.EmissiveStrength != nil {
			k := *ext.EmissiveStrength.EmissiveStrength
			for i := range mat.Emission {
				mat.Emission[i] *= k
			}
		}
	}
	return mat
}

// convertCamera places a camera at the origin of world,
// looking down its -Z axis.
func convertCamera(p *gltf.Perspective, world mgl32.Mat4) *Camera {
	c := DefaultCamera()
	c.Position = world.Col(3).Vec3()
	fwd := world.Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3()
	c.Target = c.Position.Add(fwd.Normalize())
	c.Up = world.Mul4x1(mgl32.Vec4{0, 1, 0, 0}).Vec3().Normalize()
	c.FovY = p.YFov
	c.Near = p.ZNear
	if p.ZFar > 0 {
		c.Far = p.ZFar
	}
	return &c
}

// flatNormals computes per-vertex normals by accumulating
// the face normals of every triangle.
func flatNormals(pos []float32, idx []uint32) []float32 {
	norm := make([]mgl32.Vec3, len(pos)/3)
	at := func(i uint32) mgl32.Vec3 { return mgl32.Vec3{pos[i*3], pos[i*3+1], pos[i*3+2]} }
	for i := 0; i+2 < len(idx); i += 3 {
		a, b, c := idx[i], idx[i+1], idx[i+2]
		if int(a) >= len(norm) || int(b) >= len(norm) || int(c) >= len(norm) {
			continue
		}
		n := at(b).Sub(at(a)).Cross(at(c).Sub(at(a)))
		norm[a] = norm[a].Add(n)
		norm[b] = norm[b].Add(n)
		norm[c] = norm[c].Add(n)
	}
	out := make([]float32, 0, len(pos))
	for _, n := range norm {
		if n.Len() > 0 {
			n = n.Normalize()
		}
		out = append(out, n[0], n[1], n[2])
	}
	return out
}
