package asset

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"model-viewer/internal/geom"
	"model-viewer/internal/scene"
)

// Decode parses a binary glTF file into a scene group.
func Decode(data []byte) (*scene.Node, error) {
	var doc gltf.Document
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("asset: decode glb: %w", err)
	}
	return FromDocument(&doc)
}

// FromDocument converts the default scene of doc into a scene group. Node transforms are
// baked into vertex positions and normals, so every mesh node of the result has an
// identity transform. Only triangle-list primitives are kept.
func FromDocument(doc *gltf.Document) (*scene.Node, error) {
	root := scene.NewGroup("model")
	materials := make(map[int]*scene.Material)

	var roots []int
	switch {
	case doc.Scene != nil && *doc.Scene < len(doc.Scenes):
		roots = doc.Scenes[*doc.Scene].Nodes
	case len(doc.Scenes) > 0:
		roots = doc.Scenes[0].Nodes
	default:
		for i := range doc.Nodes {
			roots = append(roots, i)
		}
	}

	visited := make(map[int]bool)
	var visit func(idx int, parent geom.Mat4) error
	visit = func(idx int, parent geom.Mat4) error {
		if idx < 0 || idx >= len(doc.Nodes) || visited[idx] {
			return nil
		}
		visited[idx] = true
		n := doc.Nodes[idx]
		world := parent.Mul(nodeMatrix(n))
		if n.Mesh != nil && *n.Mesh < len(doc.Meshes) {
			meshes, err := convertMesh(doc, doc.Meshes[*n.Mesh], world, materials)
			if err != nil {
				return fmt.Errorf("asset: node %q: %w", n.Name, err)
			}
			root.Add(meshes...)
		}
		for _, c := range n.Children {
			if err := visit(c, world); err != nil {
				return err
			}
		}
		return nil
	}
	for _, idx := range roots {
		if err := visit(idx, geom.Identity4()); err != nil {
			return nil, err
		}
	}
	if len(root.Children) == 0 {
		return nil, ErrNoGeometry
	}
	return root, nil
}

func nodeMatrix(n *gltf.Node) geom.Mat4 {
	m := n.MatrixOrDefault()
	if m != gltf.DefaultMatrix {
		var out geom.Mat4
		for i, v := range m {
			out[i] = float32(v)
		}
		return out
	}
	t := n.Translation
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	return geom.Compose(
		geom.V3(float32(t[0]), float32(t[1]), float32(t[2])),
		geom.Quat{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])},
		geom.V3(float32(s[0]), float32(s[1]), float32(s[2])),
	)
}

func convertMesh(doc *gltf.Document, m *gltf.Mesh, world geom.Mat4, materials map[int]*scene.Material) ([]*scene.Node, error) {
	normalMat := world.NormalMatrix()
	var out []*scene.Node
	for i, p := range m.Primitives {
		if p.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posIdx, ok := p.Attributes[gltf.POSITION]
		if !ok || posIdx >= len(doc.Accessors) {
			continue
		}
		raw, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("positions: %w", err)
		}
		positions := make([]geom.Vec3, len(raw))
		for j, v := range raw {
			positions[j] = world.MulPoint(geom.V3(v[0], v[1], v[2]))
		}

		var normals []geom.Vec3
		if nIdx, ok := p.Attributes[gltf.NORMAL]; ok && nIdx < len(doc.Accessors) {
			rawN, err := modeler.ReadNormal(doc, doc.Accessors[nIdx], nil)
			if err != nil {
				return nil, fmt.Errorf("normals: %w", err)
			}
			if len(rawN) == len(raw) {
				normals = make([]geom.Vec3, len(rawN))
				for j, v := range rawN {
					normals[j] = normalMat.MulDirection(geom.V3(v[0], v[1], v[2])).Normal()
				}
			}
		}

		var indices []uint32
		if p.Indices != nil && *p.Indices < len(doc.Accessors) {
			indices, err = modeler.ReadIndices(doc, doc.Accessors[*p.Indices], nil)
			if err != nil {
				return nil, fmt.Errorf("indices: %w", err)
			}
			for _, ix := range indices {
				if int(ix) >= len(positions) {
					return nil, fmt.Errorf("index %d out of range (%d vertices)", ix, len(positions))
				}
			}
		}
		if len(indices) == 0 && len(positions) < 3 {
			continue
		}

		name := m.Name
		if name == "" {
			name = "mesh"
		}
		name = fmt.Sprintf("%s.%d", name, i)
		out = append(out, scene.NewMeshNode(name,
			scene.NewGeometry(positions, normals, indices),
			material(doc, p.Material, materials)))
	}
	return out, nil
}

var defaultModelColor = color.RGBA{220, 210, 195, 255}

// material converts a glTF material once per index. Models are double-sided so picking
// works on open meshes.
func material(doc *gltf.Document, idx *int, cache map[int]*scene.Material) *scene.Material {
	key := -1
	if idx != nil {
		key = *idx
	}
	if m, ok := cache[key]; ok {
		return m
	}
	name, c := "default", defaultModelColor
	if key >= 0 && key < len(doc.Materials) {
		gm := doc.Materials[key]
		name = gm.Name
		if pbr := gm.PBRMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
			f := *pbr.BaseColorFactor
			c = color.RGBA{unit8(f[0]), unit8(f[1]), unit8(f[2]), unit8(f[3])}
		}
	}
	m := scene.NewMaterial(name, c)
	m.Side = scene.DoubleSide
	cache[key] = m
	return m
}

func unit8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
