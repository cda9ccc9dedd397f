package primitives

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"model-viewer/internal/scene"
)

//go:embed placeholder.yaml
var placeholderYAML []byte

// PlaceholderName is the name of the root node returned by Placeholder.
const PlaceholderName = "placeholder"

// LoadPlaceholderDef parses a placeholder definition.
func LoadPlaceholderDef(data []byte) (PlaceholderDef, error) {
	var def PlaceholderDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return PlaceholderDef{}, fmt.Errorf("primitives: placeholder: %w", err)
	}
	if len(def.Profile) < 2 {
		return PlaceholderDef{}, fmt.Errorf("primitives: placeholder: profile needs at least 2 points, got %d", len(def.Profile))
	}
	return def, nil
}

// Placeholder builds the built-in procedural model. The result is deterministic.
func Placeholder() (*scene.Node, error) {
	def, err := LoadPlaceholderDef(placeholderYAML)
	if err != nil {
		return nil, err
	}
	return NewRegistry().BuildPlaceholder(def)
}

// BuildPlaceholder builds a group holding the lathe body and the accents of def.
func (r *Registry) BuildPlaceholder(def PlaceholderDef) (*scene.Node, error) {
	c := defaultPrimitiveColor
	if def.Color != "" {
		parsed, err := scene.ParseColor(def.Color)
		if err != nil {
			return nil, fmt.Errorf("primitives: placeholder: %w", err)
		}
		c = parsed
	}
	mat := scene.NewMaterial("placeholder-body", c)
	mat.Side = scene.DoubleSide

	root := scene.NewGroup(PlaceholderName)
	root.Add(scene.NewMeshNode("placeholder-body", Lathe(def.Profile, def.Segments), mat))
	for _, a := range def.Accents {
		n, err := r.Build(a)
		if err != nil {
			return nil, fmt.Errorf("primitives: placeholder accent %q: %w", a.Name, err)
		}
		root.Add(n)
	}
	return root, nil
}
