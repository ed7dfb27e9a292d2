package render

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taigrr/softrast/pkg/math3d"
	"github.com/taigrr/softrast/pkg/models"
)

// RenderMode selects how polygons are drawn.
type RenderMode int

const (
	Undefined RenderMode = iota
	MeshOnly             // Triangle edges, no depth test
	Flat                 // One Lambert color per triangle
	Phong                // Per-pixel Blinn-Phong with vertex normals
	Textures             // Phong with diffuse and normal maps
)

var renderModeNames = [...]string{
	Undefined: "undefined",
	MeshOnly:  "mesh",
	Flat:      "flat",
	Phong:     "phong",
	Textures:  "textures",
}

func (m RenderMode) String() string {
	if m < 0 || int(m) >= len(renderModeNames) {
		return fmt.Sprintf("RenderMode(%d)", int(m))
	}
	return renderModeNames[m]
}

// Valid reports whether the renderer can draw in mode m.
func (m RenderMode) Valid() bool {
	return m >= MeshOnly && m <= Textures
}

// Next cycles through the drawable modes.
func (m RenderMode) Next() RenderMode {
	if m >= Textures || m < MeshOnly {
		return MeshOnly
	}
	return m + 1
}

// ErrUnsupportedRenderMode is returned by Render for modes it cannot draw.
var ErrUnsupportedRenderMode = errors.New("unsupported render mode")

// ErrNoMesh is returned by Render when called without a mesh.
var ErrNoMesh = errors.New("no mesh to render")

// ParseRenderMode accepts a mode name as printed by String.
func ParseRenderMode(s string) (RenderMode, error) {
	for i, name := range renderModeNames {
		if RenderMode(i).Valid() && strings.EqualFold(s, name) {
			return RenderMode(i), nil
		}
	}
	return Undefined, fmt.Errorf("%q: %w", s, ErrUnsupportedRenderMode)
}

// Scene is everything a frame needs besides the mesh. It is read-only
// during Render.
type Scene struct {
	Model    ModelTransform
	Camera   Camera
	Lighting Lighting
	Material Material
	Mode     RenderMode

	FallbackColor Color // Flat base color for polygons without a material
	WireColor     Color // MeshOnly edge color
}

// DefaultScene renders in Phong mode from the default camera with the light
// placed above and behind it.
func DefaultScene() Scene {
	light := DefaultLighting()
	light.Position = math3d.V3(-5, 100, 100)
	return Scene{
		Model:         IdentityTransform(),
		Camera:        DefaultCamera(),
		Lighting:      light,
		Material:      DefaultMaterial(),
		Mode:          Phong,
		FallbackColor: RGB(128, 128, 128),
		WireColor:     RGB(0, 0, 0),
	}
}

// RenderStats reports what happened during one Render call.
type RenderStats struct {
	Triangles  int  // Triangles submitted
	Drawn      int  // Triangles that reached the rasterizer
	Culled     int  // Back-facing, zero-height or behind the eye
	Pixels     int  // Pixel writes that passed the depth test
	MeshCulled bool // The whole mesh was outside the view frustum
	Duration   time.Duration
}

func (s *RenderStats) add(o RenderStats) {
	s.Triangles += o.Triangles
	s.Drawn += o.Drawn
	s.Culled += o.Culled
	s.Pixels += o.Pixels
}

// Renderer owns a frame buffer and draws meshes into it, spreading
// polygons over a fixed set of workers.
type Renderer struct {
	fb    *FrameBuffer
	sched *Scheduler
	proj  projection
	parts []RenderStats
}

// NewRenderer creates a renderer for bm. If workers is 0 or negative,
// runtime.NumCPU() is used.
func NewRenderer(bm Bitmap, workers int) *Renderer {
	return &Renderer{
		fb:    NewFrameBuffer(bm),
		sched: NewScheduler(workers),
	}
}

// FrameBuffer returns the buffer the renderer draws into.
func (r *Renderer) FrameBuffer() *FrameBuffer { return r.fb }

// Workers returns the number of polygon partitions per frame.
func (r *Renderer) Workers() int { return r.sched.Workers() }

// Resize reallocates the frame buffer when bm differs from the current one.
func (r *Renderer) Resize(bm Bitmap) {
	if bm == r.fb.Bitmap() {
		return
	}
	r.fb.Resize(bm.Width, bm.Height, bm.Format)
}

// Render clears the frame buffer and draws mesh with scene. The only
// error conditions are an unsupported render mode and a nil mesh, both
// reported before anything is drawn.
func (r *Renderer) Render(mesh *models.Mesh, scene Scene) (RenderStats, error) {
	if !scene.Mode.Valid() {
		return RenderStats{}, fmt.Errorf("render %v: %w", scene.Mode, ErrUnsupportedRenderMode)
	}
	if mesh == nil {
		return RenderStats{}, ErrNoMesh
	}

	start := time.Now()
	var stats RenderStats
	r.fb.Clear()

	mats := BuildTransform(scene.Model, scene.Camera, r.fb.Bitmap())
	if mesh.BoundsMin != mesh.BoundsMax {
		frustum := NewFrustumFromMatrix(mats.Projection)
		if !frustum.IntersectAABB(NewAABB(mesh.BoundsMin, mesh.BoundsMax)) {
			stats.MeshCulled = true
			stats.Duration = time.Since(start)
			Logger().Debug("mesh outside frustum", "mesh", mesh.Name)
			return stats, nil
		}
	}

	r.project(mesh, mats)

	r.parts = r.parts[:0]
	for range r.sched.Partition(len(mesh.Polygons)) {
		r.parts = append(r.parts, RenderStats{})
	}
	r.sched.Run(len(mesh.Polygons), func(part int, rng Range) {
		r.parts[part] = r.drawPolygons(mesh, mesh.Polygons[rng.Start:rng.End], &scene)
	})
	for _, p := range r.parts {
		stats.add(p)
	}

	stats.Duration = time.Since(start)
	Logger().Debug("frame rendered",
		"mode", scene.Mode,
		"triangles", stats.Triangles,
		"drawn", stats.Drawn,
		"culled", stats.Culled,
		"pixels", stats.Pixels,
		"workers", len(r.parts),
		"duration", stats.Duration)
	return stats, nil
}

// project fills the screen-space attribute buffers. Each index is written
// by exactly one worker.
func (r *Renderer) project(mesh *models.Mesh, mats TransformMatrices) {
	r.proj.resize(len(mesh.Positions), len(mesh.Normals))
	r.sched.Run(len(mesh.Positions), func(_ int, rng Range) {
		for i := rng.Start; i < rng.End; i++ {
			r.proj.positions[i], r.proj.visible[i] = mats.ProjectVertex(mesh.Positions[i])
		}
	})
	r.sched.Run(len(mesh.Normals), func(_ int, rng Range) {
		for i := rng.Start; i < rng.End; i++ {
			r.proj.normals[i] = mats.ProjectNormal(mesh.Normals[i])
		}
	})
}

// triangle gathers the projected attributes of one mesh triangle. ok is
// false when a corner lies behind the eye.
func (r *Renderer) triangle(mesh *models.Mesh, refs [3]models.VertexRef) (tri Triangle, ok bool) {
	for i, ref := range refs {
		if !r.proj.visible[ref.Position] {
			return tri, false
		}
		tri[i].Position = r.proj.positions[ref.Position]
		if ref.Normal >= 0 {
			tri[i].Normal = r.proj.normals[ref.Normal]
		}
		if ref.TexCoord >= 0 {
			tri[i].TexCoord = mesh.TexCoords[ref.TexCoord]
		}
	}
	return tri, true
}

// drawPolygons rasterizes one partition and returns its local counters.
func (r *Renderer) drawPolygons(mesh *models.Mesh, polys []models.Polygon, scene *Scene) RenderStats {
	var st RenderStats
	wire := PackColor(scene.WireColor)
	fallback := ColorVec(scene.FallbackColor)

	for pi := range polys {
		poly := &polys[pi]
		base := fallback
		if poly.Material >= 0 && poly.Material < len(mesh.Materials) {
			if bc := mesh.Materials[poly.Material].BaseColor; bc[3] > 0 {
				base = math3d.V3(bc[0], bc[1], bc[2]).Scale(255)
			}
		}

		for _, refs := range poly.Triangles {
			st.Triangles++
			tri, ok := r.triangle(mesh, refs)
			if !ok {
				st.Culled++
				continue
			}

			if scene.Mode == MeshOnly {
				r.drawEdges(&tri, wire)
				st.Drawn++
				continue
			}

			if tri.Culled() {
				st.Culled++
				continue
			}
			n, _ := RasterizeTriangle(r.fb, tri, shaderFor(&tri, scene, base))
			st.Drawn++
			st.Pixels += n
		}
	}
	return st
}

// drawEdges outlines tri without a depth test.
func (r *Renderer) drawEdges(tri *Triangle, color uint32) {
	for i := range tri {
		a := math3d.XY(tri[i].Position)
		b := math3d.XY(tri[(i+1)%3].Position)
		r.fb.DrawLine(a, b, color)
	}
}
