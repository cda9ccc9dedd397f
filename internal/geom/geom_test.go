package geom

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-4

func assertVec(t *testing.T, want, got Vec3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tol, "x")
	assert.InDelta(t, want.Y, got.Y, tol, "y")
	assert.InDelta(t, want.Z, got.Z, tol, "z")
}

func TestVec3_CrossAndNormal(t *testing.T) {
	x := V3(1, 0, 0)
	y := V3(0, 1, 0)
	assertVec(t, V3(0, 0, 1), x.Cross(y))
	assertVec(t, V3(0.6, 0.8, 0), V3(3, 4, 0).Normal())
	assert.Equal(t, Zero3, Zero3.Normal())
	assert.Equal(t, float32(4), V3(1, 4, 2).MaxComponent())
}

func TestMat4_InverseRoundTrip(t *testing.T) {
	m := Compose(V3(1, 2, 3), QuatAxisAngle(UnitY, 0.7), V3(2, 2, 2))
	inv, ok := m.Inverse()
	require.True(t, ok)
	id := m.Mul(inv)
	for i, v := range Identity4() {
		assert.InDelta(t, v, id[i], tol, "element %d", i)
	}

	_, ok = Mat4{}.Inverse()
	assert.False(t, ok)
}

func TestCompose_TranslateScale(t *testing.T) {
	m := Compose(V3(1, 0, 0), IdentityQuat(), V3(2, 3, 4))
	assertVec(t, V3(3, 3, 4), m.MulPoint(V3(1, 1, 1)))
	assertVec(t, V3(2, 3, 4), m.MulDirection(V3(1, 1, 1)))
}

func TestQuat_Rotate(t *testing.T) {
	q := QuatAxisAngle(UnitY, math32.Pi/2)
	assertVec(t, V3(0, 0, -1), q.Rotate(V3(1, 0, 0)))

	composed := q.Mul(q)
	assertVec(t, V3(-1, 0, 0), composed.Rotate(V3(1, 0, 0)))
}

func TestLookAt_TargetOnNegativeZ(t *testing.T) {
	view := LookAt(V3(0, 0, 5), Zero3, UnitY)
	assertVec(t, V3(0, 0, -5), view.MulPoint(Zero3))
	assertVec(t, V3(0, 1, -5), view.MulPoint(V3(0, 1, 0)))
}

func TestPerspective_NearFarMapToNDC(t *testing.T) {
	p := Perspective(45, 1, 0.1, 100)
	near := p.MulVec4(Vec4{0, 0, -0.1, 1}).PerspDiv()
	far := p.MulVec4(Vec4{0, 0, -100, 1}).PerspDiv()
	assert.InDelta(t, -1, near.Z, tol)
	assert.InDelta(t, 1, far.Z, 1e-3)
}

func TestBox3_TransformAndSize(t *testing.T) {
	b := EmptyBox()
	assert.True(t, b.IsEmpty())
	b.ExpandByPoint(V3(-1, -2, -1))
	b.ExpandByPoint(V3(1, 2, 1))
	assertVec(t, V3(2, 4, 2), b.Size())
	assertVec(t, Zero3, b.Center())

	scaled := b.Transform(Scale4(V3(0.75, 0.75, 0.75)))
	assertVec(t, V3(1.5, 3, 1.5), scaled.Size())

	rotated := b.Transform(Compose(Zero3, QuatAxisAngle(UnitY, math32.Pi/2), V3(1, 1, 1)))
	assertVec(t, V3(2, 4, 2), rotated.Size())
}

func TestRay_IntersectTriangle(t *testing.T) {
	a, b, c := V3(-1, -1, 0), V3(1, -1, 0), V3(0, 1, 0)

	tests := []struct {
		name     string
		ray      Ray
		cullBack bool
		hit      bool
		dist     float32
	}{
		{"front face", Ray{V3(0, 0, 5), V3(0, 0, -1)}, true, true, 5},
		{"back face culled", Ray{V3(0, 0, -5), V3(0, 0, 1)}, true, false, 0},
		{"back face double sided", Ray{V3(0, 0, -5), V3(0, 0, 1)}, false, true, 5},
		{"miss", Ray{V3(3, 3, 5), V3(0, 0, -1)}, false, false, 0},
		{"behind origin", Ray{V3(0, 0, 5), V3(0, 0, 1)}, false, false, 0},
		{"parallel", Ray{V3(0, 0, 5), V3(1, 0, 0)}, false, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := tt.ray.IntersectTriangle(a, b, c, tt.cullBack)
			assert.Equal(t, tt.hit, ok)
			if tt.hit {
				assert.InDelta(t, tt.dist, d, tol)
			}
		})
	}
}

func TestRay_IntersectsBox(t *testing.T) {
	b := Box3{Min: V3(-1, -1, -1), Max: V3(1, 1, 1)}
	assert.True(t, Ray{V3(0, 0, 5), V3(0, 0, -1)}.IntersectsBox(b))
	assert.False(t, Ray{V3(0, 3, 5), V3(0, 0, -1)}.IntersectsBox(b))
	assert.False(t, Ray{V3(0, 0, 5), V3(0, 0, 1)}.IntersectsBox(b))
	assert.False(t, Ray{V3(0, 0, 5), V3(0, 0, -1)}.IntersectsBox(EmptyBox()))
}
