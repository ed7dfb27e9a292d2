package render

import (
	"math"

	"github.com/taigrr/softrast/pkg/math3d"
)

// Camera is the eye the scene is rendered from.
type Camera struct {
	Position math3d.Vec3
	Target   math3d.Vec3
	Up       math3d.Vec3
	FOV      float64 // Vertical field of view in radians
}

// DefaultCamera looks at the origin from (1, 1, 1) with a 45 degree FOV.
func DefaultCamera() Camera {
	return Camera{
		Position: math3d.V3(1, 1, 1),
		Target:   math3d.V3(0, 0, 0),
		Up:       math3d.Up(),
		FOV:      math.Pi / 4,
	}
}

// Look returns the vector from the target to the camera.
func (c Camera) Look() math3d.Vec3 {
	return c.Position.Sub(c.Target)
}

// Distance returns the distance between the camera and its target.
func (c Camera) Distance() float64 {
	return c.Look().Len()
}

// Orbit rotates the camera position around the target.
func (c *Camera) Orbit(axis math3d.Vec3, angle float64) {
	c.Position = math3d.Rotate(axis, angle).MulVec3(c.Look()).Add(c.Target)
	c.updateUp()
}

// Offset moves the camera along its look vector; positive distances move
// away from the target. The step is scaled by the look vector's largest
// component so the camera never crosses the target in a single call.
func (c *Camera) Offset(distance float64) {
	look := c.Look()
	m := math.Max(math.Abs(look.X), math.Max(math.Abs(look.Y), math.Abs(look.Z)))
	if m == 0 {
		return
	}
	next := c.Position.Add(look.Scale(distance / m))
	if next.Sub(c.Target).Dot(look) <= 0 {
		return
	}
	c.Position = next
}

// CenterOn aims the camera at the middle of the box [min, max] and backs it
// off along the current view direction until the box fits the FOV.
func (c *Camera) CenterOn(min, max math3d.Vec3) {
	center := min.Add(max).Scale(0.5)
	radius := max.Sub(min).Len() / 2
	dir := c.Look().Normalize()
	if dir.LenSq() == 0 {
		dir = math3d.V3(0, 0, 1)
	}
	fov := c.FOV
	if fov <= 0 {
		fov = math.Pi / 4
	}
	dist := math.Max(radius/math.Sin(fov/2), 1e-3)

	c.Target = center
	c.Position = center.Add(dir.Scale(dist))
	c.updateUp()
}

// updateUp re-derives an up vector perpendicular to the look direction.
func (c *Camera) updateUp() {
	look := c.Look().Normalize()
	right := look.Cross(math3d.Up())
	if right.LenSq() < 1e-12 {
		// Looking straight up or down; keep the previous up.
		return
	}
	c.Up = right.Cross(look).Normalize()
}

// Zoom scales the camera's distance to the target by factor. Factors of
// zero or below are ignored.
func (c *Camera) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	c.Position = c.Target.Add(c.Look().Scale(factor))
}
