package primitives

import (
	"fmt"
	"image/color"
	"sort"

	"model-viewer/internal/geom"
	"model-viewer/internal/scene"
)

// defaultPrimitiveColor is the albedo for primitives whose definition has no colour.
var defaultPrimitiveColor = color.RGBA{128, 128, 128, 255}

// generator builds the geometry for a definition.
type generator func(def PrimitiveDef) *scene.Geometry

// Registry maps primitive type names to geometry generators. Each Build call creates
// fresh geometry so that disposing one scene never invalidates another.
type Registry struct {
	gens map[string]generator
}

// NewRegistry returns a registry with cube, sphere and cylinder registered.
func NewRegistry() *Registry {
	r := &Registry{gens: make(map[string]generator)}
	r.Register("cube", func(d PrimitiveDef) *scene.Geometry {
		return Cube(orOne(geom.V3(d.Size[0], d.Size[1], d.Size[2])))
	})
	r.Register("sphere", func(d PrimitiveDef) *scene.Geometry {
		radius := d.Size[0]
		if radius == 0 {
			// Radius 0.5 so the diameter matches the unit cube.
			radius = 0.5
		}
		return Sphere(radius, defaultSphereRings, defaultSphereSlices)
	})
	r.Register("cylinder", func(d PrimitiveDef) *scene.Geometry {
		radius, height := d.Size[0], d.Size[1]
		if radius == 0 {
			radius = 0.5
		}
		if height == 0 {
			height = 1
		}
		return Cylinder(radius, height, defaultCylinderSlices)
	})
	return r
}

// Register adds or replaces the generator for typ.
func (r *Registry) Register(typ string, gen func(PrimitiveDef) *scene.Geometry) {
	r.gens[typ] = gen
}

// Types returns the registered type names, sorted.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.gens))
	for k := range r.gens {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Build returns a mesh node for def positioned at def.Position.
func (r *Registry) Build(def PrimitiveDef) (*scene.Node, error) {
	gen, ok := r.gens[def.Type]
	if !ok {
		return nil, fmt.Errorf("primitives: unknown type %q", def.Type)
	}
	c := defaultPrimitiveColor
	if def.Color != "" {
		parsed, err := scene.ParseColor(def.Color)
		if err != nil {
			return nil, fmt.Errorf("primitives: %s: %w", def.Type, err)
		}
		c = parsed
	}
	name := def.Name
	if name == "" {
		name = def.Type
	}
	mat := scene.NewMaterial(name, c)
	mat.Side = scene.DoubleSide
	n := scene.NewMeshNode(name, gen(def), mat)
	n.Position = geom.V3(def.Position[0], def.Position[1], def.Position[2])
	return n, nil
}

func orOne(v geom.Vec3) geom.Vec3 {
	if v.X == 0 {
		v.X = 1
	}
	if v.Y == 0 {
		v.Y = 1
	}
	if v.Z == 0 {
		v.Z = 1
	}
	return v
}
