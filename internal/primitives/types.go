package primitives

// PrimitiveDef is the YAML definition of one primitive (e.g. a placeholder accent).
// Size is interpreted per type: cube = full extents, sphere = radius in Size[0],
// cylinder = radius in Size[0] and height in Size[1].
type PrimitiveDef struct {
	Name     string     `yaml:"name,omitempty"`
	Type     string     `yaml:"type"`
	Size     [3]float32 `yaml:"size,omitempty"`
	Position [3]float32 `yaml:"position,omitempty"`
	Color    string     `yaml:"color,omitempty"`
}

// PlaceholderDef declares the procedural model shown when no asset is available:
// a lathe-revolved profile plus primitive accents.
type PlaceholderDef struct {
	Name     string         `yaml:"name"`
	Color    string         `yaml:"color"`
	Segments int            `yaml:"segments"`
	Profile  [][2]float32   `yaml:"profile"` // (radius, height) pairs from bottom to top
	Accents  []PrimitiveDef `yaml:"accents"`
}
