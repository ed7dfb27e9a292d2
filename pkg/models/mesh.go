// Package models provides the mesh data consumed by the softrast renderer,
// along with OBJ and glTF loaders that produce it.
package models

import (
	"errors"
	"fmt"
	"image"
	"slices"

	"github.com/taigrr/softrast/pkg/math3d"
)

// ErrDegeneratePolygon is returned when a polygon has fewer than three vertices.
var ErrDegeneratePolygon = errors.New("polygon needs at least 3 vertices")

// VertexRef indexes the attribute arrays of a Mesh for one polygon corner.
// TexCoord and Normal are -1 when the corner has no such attribute.
type VertexRef struct {
	Position int
	TexCoord int
	Normal   int
}

// Polygon is an n-gon together with its fan triangulation.
type Polygon struct {
	Vertices  []VertexRef
	Triangles [][3]VertexRef
	Material  int // Index into Mesh.Materials (-1 for no material)
}

// NewPolygon triangulates verts as a fan around the first vertex,
// producing len(verts)-2 triangles.
func NewPolygon(verts []VertexRef) (Polygon, error) {
	if len(verts) < 3 {
		return Polygon{}, fmt.Errorf("%w: got %d", ErrDegeneratePolygon, len(verts))
	}
	p := Polygon{
		Vertices:  verts,
		Triangles: make([][3]VertexRef, 0, len(verts)-2),
		Material:  -1,
	}
	for i := 2; i < len(verts); i++ {
		p.Triangles = append(p.Triangles, [3]VertexRef{verts[0], verts[i-1], verts[i]})
	}
	return p, nil
}

// ReverseWinding flips the orientation of the polygon while keeping the
// fan pivot on its first vertex.
func (p *Polygon) ReverseWinding() {
	slices.Reverse(p.Vertices[1:])
	for i := range p.Triangles {
		p.Triangles[i][1], p.Triangles[i][2] = p.Triangles[i][2], p.Triangles[i][1]
	}
}

// Material carries the surface color a loader found for a group of polygons.
type Material struct {
	Name      string
	BaseColor [4]float64  // RGBA in 0-1 range
	BaseMap   image.Image // Optional base color texture
}

// Mesh is the immutable model data handed to the renderer: homogeneous
// positions, normals, texture coordinates and triangulated polygons.
type Mesh struct {
	Name      string
	Positions []math3d.Vec4
	Normals   []math3d.Vec3
	TexCoords []math3d.Vec3
	Polygons  []Polygon
	Materials []Material

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// AddPolygon triangulates verts and appends the polygon.
func (m *Mesh) AddPolygon(verts []VertexRef) error {
	p, err := NewPolygon(verts)
	if err != nil {
		return err
	}
	m.Polygons = append(m.Polygons, p)
	return nil
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Positions) == 0 {
		return
	}

	m.BoundsMin = m.Positions[0].Vec3()
	m.BoundsMax = m.BoundsMin

	for _, p := range m.Positions[1:] {
		m.BoundsMin = m.BoundsMin.Min(p.Vec3())
		m.BoundsMax = m.BoundsMax.Max(p.Vec3())
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles across all polygons.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, p := range m.Polygons {
		n += len(p.Triangles)
	}
	return n
}

// VertexCount returns the number of positions.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// HasNormals reports whether every polygon corner references a normal.
func (m *Mesh) HasNormals() bool {
	if len(m.Normals) == 0 {
		return false
	}
	for _, p := range m.Polygons {
		for _, v := range p.Vertices {
			if v.Normal < 0 || v.Normal >= len(m.Normals) {
				return false
			}
		}
	}
	return true
}

// CalculateSmoothNormals replaces the normals with one averaged normal per
// position and points every polygon corner at it.
func (m *Mesh) CalculateSmoothNormals() {
	normals := make([]math3d.Vec3, len(m.Positions))

	// Accumulate area-weighted face normals per position
	for _, p := range m.Polygons {
		for _, tri := range p.Triangles {
			v0 := m.Positions[tri[0].Position].Vec3()
			v1 := m.Positions[tri[1].Position].Vec3()
			v2 := m.Positions[tri[2].Position].Vec3()
			n := v1.Sub(v0).Cross(v2.Sub(v0))
			for _, ref := range tri {
				normals[ref.Position] = normals[ref.Position].Add(n)
			}
		}
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	m.Normals = normals

	for pi := range m.Polygons {
		p := &m.Polygons[pi]
		for i := range p.Vertices {
			p.Vertices[i].Normal = p.Vertices[i].Position
		}
		for ti := range p.Triangles {
			for k := range 3 {
				p.Triangles[ti][k].Normal = p.Triangles[ti][k].Position
			}
		}
	}
}

// Transform applies a transformation matrix to all positions and the
// direction part of it to all normals.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i, p := range m.Positions {
		m.Positions[i] = mat.MulVec4(p)
	}
	for i, n := range m.Normals {
		m.Normals[i] = mat.MulVec3Dir(n).Normalize()
	}
	m.CalculateBounds()
}

// Normalize centers the mesh on the origin and scales it so its largest
// dimension equals size.
func (m *Mesh) Normalize(size float64) {
	m.CalculateBounds()
	maxDim := m.Size().MaxComponent()
	if maxDim <= 0 {
		return
	}
	s := size / maxDim
	m.Transform(math3d.Chain(
		math3d.Translate(m.Center().Negate()),
		math3d.Scale(math3d.V3(s, s, s)),
	))
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Positions: append([]math3d.Vec4(nil), m.Positions...),
		Normals:   append([]math3d.Vec3(nil), m.Normals...),
		TexCoords: append([]math3d.Vec3(nil), m.TexCoords...),
		Polygons:  make([]Polygon, len(m.Polygons)),
		Materials: append([]Material(nil), m.Materials...),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	for i, p := range m.Polygons {
		clone.Polygons[i] = Polygon{
			Vertices:  append([]VertexRef(nil), p.Vertices...),
			Triangles: append([][3]VertexRef(nil), p.Triangles...),
			Material:  p.Material,
		}
	}
	return clone
}
