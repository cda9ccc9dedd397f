package primitives

import (
	"github.com/chewxy/math32"

	"model-viewer/internal/geom"
	"model-viewer/internal/scene"
)

// Sphere and lathe resolution used when a definition leaves it unset.
const (
	defaultSphereRings    = 16
	defaultSphereSlices   = 16
	defaultCylinderSlices = 16
	defaultLatheSegments  = 32
)

// Cube returns a box centred at the origin with the given full extents and outward faces.
func Cube(size geom.Vec3) *scene.Geometry {
	h := size.MulScalar(0.5)
	faces := []struct{ n, u, v geom.Vec3 }{
		{geom.V3(1, 0, 0), geom.V3(0, 0, -1), geom.V3(0, 1, 0)},
		{geom.V3(-1, 0, 0), geom.V3(0, 0, 1), geom.V3(0, 1, 0)},
		{geom.V3(0, 1, 0), geom.V3(1, 0, 0), geom.V3(0, 0, -1)},
		{geom.V3(0, -1, 0), geom.V3(1, 0, 0), geom.V3(0, 0, 1)},
		{geom.V3(0, 0, 1), geom.V3(1, 0, 0), geom.V3(0, 1, 0)},
		{geom.V3(0, 0, -1), geom.V3(-1, 0, 0), geom.V3(0, 1, 0)},
	}
	positions := make([]geom.Vec3, 0, 24)
	normals := make([]geom.Vec3, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		c := f.n.Mul(h)
		u := f.u.Mul(h)
		v := f.v.Mul(h)
		base := uint32(len(positions))
		positions = append(positions,
			c.Sub(u).Sub(v),
			c.Add(u).Sub(v),
			c.Add(u).Add(v),
			c.Sub(u).Add(v),
		)
		normals = append(normals, f.n, f.n, f.n, f.n)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return scene.NewGeometry(positions, normals, indices)
}

// Sphere returns a UV sphere centred at the origin.
func Sphere(radius float32, rings, slices int) *scene.Geometry {
	if rings < 2 {
		rings = defaultSphereRings
	}
	if slices < 3 {
		slices = defaultSphereSlices
	}
	positions := make([]geom.Vec3, 0, (rings+1)*(slices+1))
	normals := make([]geom.Vec3, 0, (rings+1)*(slices+1))
	for i := 0; i <= rings; i++ {
		theta := float32(i) / float32(rings) * math32.Pi
		st, ct := math32.Sincos(theta)
		for j := 0; j <= slices; j++ {
			phi := float32(j) / float32(slices) * 2 * math32.Pi
			sp, cp := math32.Sincos(phi)
			n := geom.V3(-cp*st, ct, sp*st)
			normals = append(normals, n)
			positions = append(positions, n.MulScalar(radius))
		}
	}
	stride := uint32(slices + 1)
	var indices []uint32
	for i := 0; i < rings; i++ {
		for j := 0; j < slices; j++ {
			a := uint32(i)*stride + uint32(j) + 1
			b := uint32(i)*stride + uint32(j)
			c := uint32(i+1)*stride + uint32(j)
			d := uint32(i+1)*stride + uint32(j) + 1
			if i != 0 {
				indices = append(indices, a, b, d)
			}
			if i != rings-1 {
				indices = append(indices, b, c, d)
			}
		}
	}
	return scene.NewGeometry(positions, normals, indices)
}

// Lathe revolves a (radius, height) profile around the Y axis. Profiles listed from bottom
// to top produce outward-facing triangles.
func Lathe(profile [][2]float32, segments int) *scene.Geometry {
	if segments < 3 {
		segments = defaultLatheSegments
	}
	n := len(profile)
	positions := make([]geom.Vec3, 0, (segments+1)*n)
	for j := 0; j <= segments; j++ {
		phi := float32(j) / float32(segments) * 2 * math32.Pi
		sp, cp := math32.Sincos(phi)
		for _, p := range profile {
			positions = append(positions, geom.V3(p[0]*sp, p[1], p[0]*cp))
		}
	}
	var indices []uint32
	for j := 0; j < segments; j++ {
		for i := 0; i < n-1; i++ {
			a := uint32(j*n + i)
			b := a + uint32(n)
			c := b + 1
			d := a + 1
			indices = append(indices, a, b, d, c, d, b)
		}
	}
	return scene.NewGeometry(positions, nil, indices)
}

// Cylinder returns a capped cylinder of the given radius and height centred at the origin.
func Cylinder(radius, height float32, slices int) *scene.Geometry {
	if slices < 3 {
		slices = defaultCylinderSlices
	}
	h := height / 2
	return Lathe([][2]float32{{0, -h}, {radius, -h}, {radius, h}, {0, h}}, slices)
}
