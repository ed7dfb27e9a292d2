package render

import (
	"github.com/taigrr/softrast/pkg/math3d"
)

// Clip planes of the perspective projection.
const (
	NearPlane = 1.0
	FarPlane  = 100.0
)

// ModelTransform places a mesh in the world. Rotation holds Euler angles in
// radians applied X, then Y, then Z.
type ModelTransform struct {
	Scale       math3d.Vec3
	Rotation    math3d.Vec3
	Translation math3d.Vec3
}

// IdentityTransform leaves the mesh where it is.
func IdentityTransform() ModelTransform {
	return ModelTransform{Scale: math3d.V3(1, 1, 1)}
}

// Matrix returns scale, then rotation X, Y, Z, then translation.
func (m ModelTransform) Matrix() math3d.Mat4 {
	return math3d.Chain(
		math3d.Scale(m.Scale),
		math3d.RotateX(m.Rotation.X),
		math3d.RotateY(m.Rotation.Y),
		math3d.RotateZ(m.Rotation.Z),
		math3d.Translate(m.Translation),
	)
}

// TransformMatrices holds one frame's matrices. View and Projection are
// cumulative: View includes World, and Projection includes View.
type TransformMatrices struct {
	World      math3d.Mat4
	View       math3d.Mat4
	Projection math3d.Mat4
	Viewport   math3d.Mat4
}

// BuildTransform computes the matrices for one frame.
func BuildTransform(model ModelTransform, cam Camera, bm Bitmap) TransformMatrices {
	world := model.Matrix()
	view := math3d.Chain(world, math3d.LookAt(cam.Position, cam.Target, cam.Up))
	proj := math3d.Chain(view, math3d.Perspective(cam.FOV, bm.AspectRatio(), NearPlane, FarPlane))
	return TransformMatrices{
		World:      world,
		View:       view,
		Projection: proj,
		Viewport:   math3d.Viewport(float64(bm.Width), float64(bm.Height)),
	}
}

// ProjectVertex maps a model-space position to screen space. The boolean
// is false when the vertex lies on or behind the eye plane.
func (t TransformMatrices) ProjectVertex(v math3d.Vec4) (math3d.Vec3, bool) {
	clip := t.Projection.MulVec4(v)
	return t.Viewport.MulVec4(clip.PerspectiveDivide()).Vec3(), clip.W > 0
}

// ProjectNormal maps a model-space normal through View and then Viewport,
// both applied as point transforms.
func (t TransformMatrices) ProjectNormal(n math3d.Vec3) math3d.Vec3 {
	return t.Viewport.MulVec3(t.View.MulVec3(n))
}

// projection is the screen-space copy of a mesh's attribute arrays.
type projection struct {
	positions []math3d.Vec3
	visible   []bool
	normals   []math3d.Vec3
}

// resize grows the buffers to hold nPos positions and nNorm normals,
// reusing earlier allocations.
func (p *projection) resize(nPos, nNorm int) {
	if cap(p.positions) < nPos {
		p.positions = make([]math3d.Vec3, nPos)
		p.visible = make([]bool, nPos)
	}
	p.positions = p.positions[:nPos]
	p.visible = p.visible[:nPos]
	if cap(p.normals) < nNorm {
		p.normals = make([]math3d.Vec3, nNorm)
	}
	p.normals = p.normals[:nNorm]
}
