package models

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/softrast/pkg/math3d"
)

// ErrMalformedOBJ is returned for statements that cannot be parsed.
var ErrMalformedOBJ = errors.New("malformed obj statement")

// OBJLoader parses Wavefront OBJ geometry.
type OBJLoader struct {
	// CalculateNormals generates smooth normals when the file has none.
	CalculateNormals bool
}

// NewOBJLoader creates a new OBJ loader with default options.
func NewOBJLoader() *OBJLoader {
	return &OBJLoader{CalculateNormals: true}
}

// LoadOBJ loads an OBJ file with default options.
func LoadOBJ(path string) (*Mesh, error) {
	return NewOBJLoader().Load(path)
}

// Load opens and parses path.
func (l *OBJLoader) Load(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := l.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	mesh.Name = filepath.Base(path)
	return mesh, nil
}

// Parse reads OBJ statements from r. Only v, vt, vn and f are interpreted;
// everything else is skipped.
func (l *OBJLoader) Parse(r io.Reader) (*Mesh, error) {
	mesh := NewMesh("")
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || text[0] == '#' {
			continue
		}

		fields := strings.Fields(text)
		var err error
		switch fields[0] {
		case "v":
			err = parsePosition(mesh, fields[1:])
		case "vt":
			err = parseTexCoord(mesh, fields[1:])
		case "vn":
			err = parseNormal(mesh, fields[1:])
		case "f":
			err = parseFace(mesh, fields[1:])
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	if l.CalculateNormals && !mesh.HasNormals() {
		mesh.CalculateSmoothNormals()
	}
	mesh.CalculateBounds()

	return mesh, nil
}

func parseFloats(fields []string, minN, maxN int) ([]float64, error) {
	if len(fields) < minN || len(fields) > maxN {
		return nil, fmt.Errorf("%w: want %d to %d values, got %d", ErrMalformedOBJ, minN, maxN, len(fields))
	}
	out := make([]float64, len(fields))
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedOBJ, s)
		}
		out[i] = v
	}
	return out, nil
}

func parsePosition(mesh *Mesh, fields []string) error {
	v, err := parseFloats(fields, 3, 4)
	if err != nil {
		return err
	}
	w := 1.0
	if len(v) == 4 {
		w = v[3]
	}
	mesh.Positions = append(mesh.Positions, math3d.V4(v[0], v[1], v[2], w))
	return nil
}

func parseTexCoord(mesh *Mesh, fields []string) error {
	v, err := parseFloats(fields, 1, 3)
	if err != nil {
		return err
	}
	var tc [3]float64
	copy(tc[:], v)
	mesh.TexCoords = append(mesh.TexCoords, math3d.V3(tc[0], tc[1], tc[2]))
	return nil
}

func parseNormal(mesh *Mesh, fields []string) error {
	v, err := parseFloats(fields, 3, 3)
	if err != nil {
		return err
	}
	mesh.Normals = append(mesh.Normals, math3d.V3(v[0], v[1], v[2]))
	return nil
}

// parseFace reads "v", "v/t", "v//n" or "v/t/n" corners. The corner order is
// reversed so counter-clockwise OBJ faces become front-facing on screen.
func parseFace(mesh *Mesh, fields []string) error {
	verts := make([]VertexRef, 0, len(fields))
	for _, field := range fields {
		parts := strings.Split(field, "/")
		if len(parts) > 3 {
			return fmt.Errorf("%w: face corner %q", ErrMalformedOBJ, field)
		}

		ref := VertexRef{TexCoord: -1, Normal: -1}
		var err error
		if ref.Position, err = resolveIndex(parts[0], len(mesh.Positions)); err != nil {
			return err
		}
		if len(parts) >= 2 && parts[1] != "" {
			if ref.TexCoord, err = resolveIndex(parts[1], len(mesh.TexCoords)); err != nil {
				return err
			}
		}
		if len(parts) == 3 && parts[2] != "" {
			if ref.Normal, err = resolveIndex(parts[2], len(mesh.Normals)); err != nil {
				return err
			}
		}
		verts = append(verts, ref)
	}

	// Faces are counter-clockwise; the rasterizer expects the opposite.
	poly, err := NewPolygon(verts)
	if err != nil {
		return err
	}
	poly.ReverseWinding()
	mesh.Polygons = append(mesh.Polygons, poly)
	return nil
}

// resolveIndex converts a 1-based or negative (relative) OBJ index into a
// 0-based slice index.
func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: index %q", ErrMalformedOBJ, s)
	}
	switch {
	case i > 0 && i <= count:
		return i - 1, nil
	case i < 0 && -i <= count:
		return count + i, nil
	default:
		return 0, fmt.Errorf("%w: index %d out of range (have %d)", ErrMalformedOBJ, i, count)
	}
}
