package render

import (
	"github.com/taigrr/softrast/pkg/math3d"
)

// Wireframe draws model-space guide lines (bounds, axes) on top of a
// rendered frame. Lines are not depth tested.
type Wireframe struct {
	fb   *FrameBuffer
	mats TransformMatrices
}

// NewWireframe creates an overlay drawer for the frame described by mats.
func NewWireframe(fb *FrameBuffer, mats TransformMatrices) *Wireframe {
	return &Wireframe{fb: fb, mats: mats}
}

// DrawLine3D projects a model-space segment and draws it. Segments with an
// endpoint behind the eye are skipped.
func (w *Wireframe) DrawLine3D(p1, p2 math3d.Vec3, color uint32) bool {
	s1, vis1 := w.mats.ProjectVertex(math3d.Point(p1))
	s2, vis2 := w.mats.ProjectVertex(math3d.Point(p2))
	if !vis1 || !vis2 {
		return false
	}
	w.fb.DrawLine(math3d.XY(s1), math3d.XY(s2), color)
	return true
}

var boxEdges = [12][2]int{
	// Back face
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	// Front face
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	// Connecting edges
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// DrawBox outlines box.
func (w *Wireframe) DrawBox(box AABB, color uint32) {
	corners := box.Corners()
	for _, e := range boxEdges {
		w.DrawLine3D(corners[e[0]], corners[e[1]], color)
	}
}

// DrawAxes draws the model-space axes from origin in red, green and blue.
func (w *Wireframe) DrawAxes(origin math3d.Vec3, length float64) {
	w.DrawLine3D(origin, origin.Add(math3d.V3(length, 0, 0)), PackRGB(255, 0, 0))
	w.DrawLine3D(origin, origin.Add(math3d.V3(0, length, 0)), PackRGB(0, 255, 0))
	w.DrawLine3D(origin, origin.Add(math3d.V3(0, 0, length)), PackRGB(0, 0, 255))
}
