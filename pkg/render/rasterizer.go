package render

import (
	"math"

	"github.com/taigrr/softrast/pkg/math3d"
)

// VertexValue is one projected triangle corner.
type VertexValue struct {
	Position math3d.Vec3 // Screen space: pixels in X and Y, depth in Z
	Normal   math3d.Vec3
	TexCoord math3d.Vec3
}

// Triangle is a screen-space triangle ready for rasterization.
type Triangle [3]VertexValue

// FragmentShader returns the 0xRRGGBB color of the triangle at screen point p.
type FragmentShader func(p math3d.Vec3) uint32

// SignedArea returns the Z component of cross(v1-v0, v2-v0). Front faces
// have a positive area in Y-down screen space.
func (t *Triangle) SignedArea() float64 {
	a, b, c := t[0].Position, t[1].Position, t[2].Position
	return b.Sub(a).Cross(c.Sub(a)).Z
}

// Culled reports whether the triangle has zero height or faces away.
func (t *Triangle) Culled() bool {
	a, b, c := t[0].Position, t[1].Position, t[2].Position
	if a.Y == b.Y && b.Y == c.Y {
		return true
	}
	return t.SignedArea() <= 0
}

// sortByY orders the corners by ascending screen Y.
func (t *Triangle) sortByY() {
	if t[0].Position.Y > t[1].Position.Y {
		t[0], t[1] = t[1], t[0]
	}
	if t[1].Position.Y > t[2].Position.Y {
		t[1], t[2] = t[2], t[1]
	}
	if t[0].Position.Y > t[1].Position.Y {
		t[0], t[1] = t[1], t[0]
	}
}

// interpolate returns lo + (hi-lo) * g with g clamped to [0, 1].
func interpolate(lo, hi, g float64) float64 {
	return lo + (hi-lo)*math3d.Clamp(g, 0, 1)
}

// RasterizeTriangle culls, sorts and scan-converts tri, writing every
// covered pixel through the depth test. It returns the number of pixels
// that passed the depth test and whether the triangle survived culling.
func RasterizeTriangle(fb *FrameBuffer, tri Triangle, shade FragmentShader) (int, bool) {
	if tri.Culled() {
		return 0, false
	}
	tri.sortByY()

	p0, p1, p2 := tri[0].Position, tri[1].Position, tri[2].Position

	// Inverse slopes of the two edges leaving the top vertex
	var d01, d02 float64
	if dy := p1.Y - p0.Y; dy > 0 {
		d01 = (p1.X - p0.X) / dy
	}
	if dy := p2.Y - p0.Y; dy > 0 {
		d02 = (p2.X - p0.X) / dy
	}

	h := float64(fb.Height())
	yStart := int(math3d.Clamp(p0.Y, 0, h))
	yEnd := int(math3d.Clamp(p2.Y, 0, h))

	written := 0
	for y := yStart; y <= yEnd; y++ {
		fy := float64(y)
		var pa, pb, pc, pd math3d.Vec3
		switch {
		case fy < p1.Y && d01 > d02:
			pa, pb, pc, pd = p0, p2, p0, p1
		case fy < p1.Y:
			pa, pb, pc, pd = p0, p1, p0, p2
		case d01 > d02:
			pa, pb, pc, pd = p0, p2, p1, p2
		default:
			pa, pb, pc, pd = p1, p2, p0, p2
		}
		written += scanLine(fb, y, pa, pb, pc, pd, shade)
	}
	return written, true
}

// edgeGradient returns how far y lies along the edge a→b, or 1 for a
// horizontal edge.
func edgeGradient(y float64, a, b math3d.Vec3) float64 {
	if a.Y == b.Y {
		return 1
	}
	return (y - a.Y) / (b.Y - a.Y)
}

// scanLine fills row y between edges pa→pb and pc→pd.
func scanLine(fb *FrameBuffer, y int, pa, pb, pc, pd math3d.Vec3, shade FragmentShader) int {
	fy := float64(y)
	g1 := edgeGradient(fy, pa, pb)
	g2 := edgeGradient(fy, pc, pd)

	// Span ends stay in float so far off-screen vertices near the eye do
	// not overflow the int conversion.
	sx := math.Trunc(interpolate(pa.X, pb.X, g1))
	ex := math.Trunc(interpolate(pc.X, pd.X, g2))
	z1 := interpolate(pa.Z, pb.Z, g1)
	z2 := interpolate(pc.Z, pd.Z, g2)
	if sx > ex {
		sx, ex = ex, sx
		z1, z2 = z2, z1
	}

	w := fb.Width()
	xStart := int(math3d.Clamp(sx, 0, float64(w)))
	xEnd := int(math3d.Clamp(ex, 0, float64(w)))

	written := 0
	for x := xStart; x < xEnd; x++ {
		g := (float64(x) - sx) / (ex - sx)
		z := interpolate(z1, z2, g)
		if !fb.nearer(x, y, z) {
			continue
		}
		if fb.DrawPixelDepth(x, y, z, shade(math3d.V3(float64(x), fy, z))) {
			written++
		}
	}
	return written
}

// nearer is an unlocked early depth test used to skip shading for pixels
// that would be rejected anyway. DrawPixelDepth still decides the write.
func (fb *FrameBuffer) nearer(x, y int, z float64) bool {
	return float32(z) < float32(fb.Depth(x, y))
}

// barycentric returns the weights of p with respect to triangle (a, b, c)
// using the dot-product formulation. ok is false when the triangle has no
// area in 2D.
func barycentric(a, b, c, p math3d.Vec2) (w math3d.Vec3, ok bool) {
	v0 := c.Sub(a)
	v1 := b.Sub(a)
	v2 := p.Sub(a)

	dot00 := v0.Dot(v0)
	dot01 := v0.Dot(v1)
	dot02 := v0.Dot(v2)
	dot11 := v1.Dot(v1)
	dot12 := v1.Dot(v2)

	denom := dot00*dot11 - dot01*dot01
	if denom == 0 || math.IsNaN(denom) {
		return math3d.Vec3{}, false
	}
	u := (dot11*dot02 - dot01*dot12) / denom
	v := (dot00*dot12 - dot01*dot02) / denom

	return math3d.V3(1-u-v, v, u), true
}

// nearestCorner returns unit weights selecting the corner of tri closest to p.
func nearestCorner(tri *Triangle, p math3d.Vec2) math3d.Vec3 {
	best, bestD := 0, math.Inf(1)
	for i := range tri {
		if d := math3d.XY(tri[i].Position).Sub(p); d.Dot(d) < bestD {
			best, bestD = i, d.Dot(d)
		}
	}
	w := [3]float64{}
	w[best] = 1
	return math3d.V3(w[0], w[1], w[2])
}
