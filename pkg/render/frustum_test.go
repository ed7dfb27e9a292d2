package render

import (
	"math"
	"testing"

	"github.com/taigrr/softrast/pkg/math3d"
)

func TestPlaneDistanceToPoint(t *testing.T) {
	// Plane at Z=0, normal pointing +Z
	plane := Plane{Normal: math3d.V3(0, 0, 1), D: 0}

	tests := []struct {
		name     string
		point    math3d.Vec3
		expected float64
	}{
		{"origin", math3d.V3(0, 0, 0), 0},
		{"in front", math3d.V3(0, 0, 5), 5},
		{"behind", math3d.V3(0, 0, -3), -3},
		{"offset XY", math3d.V3(10, -5, 2), 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dist := plane.DistanceToPoint(tc.point)
			if math.Abs(dist-tc.expected) > 1e-9 {
				t.Errorf("got %v, want %v", dist, tc.expected)
			}
		})
	}
}

func TestPlaneNormalize(t *testing.T) {
	plane := Plane{Normal: math3d.V3(0, 3, 4), D: 10}
	plane.Normalize()

	if length := plane.Normal.Len(); math.Abs(length-1.0) > 1e-9 {
		t.Errorf("normalized normal length = %v, want 1.0", length)
	}
	if math.Abs(plane.Normal.Y-0.6) > 1e-9 || math.Abs(plane.Normal.Z-0.8) > 1e-9 {
		t.Errorf("normal = %v, want (0, 0.6, 0.8)", plane.Normal)
	}
	if math.Abs(plane.D-2.0) > 1e-9 {
		t.Errorf("D = %v, want 2.0", plane.D)
	}
}

func TestAABBTransform(t *testing.T) {
	box := NewAABB(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1))

	moved := box.Transform(math3d.Translate(math3d.V3(10, 0, 0)))
	if moved.Min != math3d.V3(9, -1, -1) || moved.Max != math3d.V3(11, 1, 1) {
		t.Errorf("translated box = %v..%v", moved.Min, moved.Max)
	}
	if c := moved.Center(); c != math3d.V3(10, 0, 0) {
		t.Errorf("center = %v, want (10, 0, 0)", c)
	}

	// A 45 degree turn about Y widens the box to the diagonal.
	turned := box.Transform(math3d.RotateY(math.Pi / 4))
	if math.Abs(turned.Max.X-math.Sqrt2) > 1e-9 {
		t.Errorf("rotated max X = %v, want %v", turned.Max.X, math.Sqrt2)
	}
}

func testFrustum() Frustum {
	mats := BuildTransform(IdentityTransform(), DefaultCamera(), Bitmap{Width: 100, Height: 100})
	return NewFrustumFromMatrix(mats.Projection)
}

func TestFrustumContainsPoint(t *testing.T) {
	f := testFrustum()

	tests := []struct {
		name  string
		point math3d.Vec3
		want  bool
	}{
		{"target", math3d.V3(0, 0, 0), true},
		{"behind camera", math3d.V3(5, 5, 5), false},
		{"inside near plane", math3d.V3(0.9, 0.9, 0.9), false},
		{"beyond far plane", math3d.V3(-100, -100, -100), false},
		{"far off to the side", math3d.V3(10, -10, 0), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.ContainsPoint(tc.point); got != tc.want {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tc.point, got, tc.want)
			}
		})
	}
}

func TestFrustumIntersectAABB(t *testing.T) {
	f := testFrustum()

	tests := []struct {
		name string
		box  AABB
		want bool
	}{
		{"around target", NewAABB(math3d.V3(-0.5, -0.5, -0.5), math3d.V3(0.5, 0.5, 0.5)), true},
		{"enclosing camera", NewAABB(math3d.V3(-10, -10, -10), math3d.V3(10, 10, 10)), true},
		{"behind camera", NewAABB(math3d.V3(4, 4, 4), math3d.V3(6, 6, 6)), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.IntersectAABB(tc.box); got != tc.want {
				t.Errorf("IntersectAABB = %v, want %v", got, tc.want)
			}
		})
	}
}

func BenchmarkFrustumIntersectAABB(b *testing.B) {
	f := testFrustum()
	box := NewAABB(math3d.V3(-0.5, -0.5, -0.5), math3d.V3(0.5, 0.5, 0.5))
	for b.Loop() {
		f.IntersectAABB(box)
	}
}
