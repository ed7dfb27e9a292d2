package models

import (
	"bytes"
	"fmt"
	"image"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/softrast/pkg/imageio"
	"github.com/taigrr/softrast/pkg/math3d"
)

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// CalculateNormals generates smooth normals when primitives have none.
	CalculateNormals bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{CalculateNormals: true}
}

// LoadGLTF loads a .gltf or .glb file with default options.
func LoadGLTF(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a GLTF or GLB file and returns a Mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.build(doc, filepath.Base(path))
}

func (l *GLTFLoader) build(doc *gltf.Document, name string) (*Mesh, error) {
	mesh := NewMesh(name)
	mesh.Materials = readMaterials(doc)

	for _, m := range doc.Meshes {
		if err := l.processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	if l.CalculateNormals && !mesh.HasNormals() {
		mesh.CalculateSmoothNormals()
	}
	mesh.CalculateBounds()

	return mesh, nil
}

// processMesh appends the triangle primitives of m to mesh.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			// Lines, points and strips are not drawn
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals [][3]float32
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
			if err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs [][2]float32
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
			if err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		var indices []uint32
		if prim.Indices != nil {
			indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		basePos := len(mesh.Positions)
		baseNorm := len(mesh.Normals)
		baseUV := len(mesh.TexCoords)

		for _, p := range positions {
			mesh.Positions = append(mesh.Positions, math3d.V4(float64(p[0]), float64(p[1]), float64(p[2]), 1))
		}
		for _, n := range normals {
			mesh.Normals = append(mesh.Normals, math3d.V3(float64(n[0]), float64(n[1]), float64(n[2])))
		}
		for _, uv := range uvs {
			// GLTF uses top-left origin (V=0 at top), flip V for bottom-left origin
			mesh.TexCoords = append(mesh.TexCoords, math3d.V3(float64(uv[0]), 1-float64(uv[1]), 0))
		}

		material := -1
		if prim.Material != nil {
			material = *prim.Material
		}

		ref := func(i uint32) VertexRef {
			r := VertexRef{Position: basePos + int(i), TexCoord: -1, Normal: -1}
			if int(i) < len(normals) {
				r.Normal = baseNorm + int(i)
			}
			if int(i) < len(uvs) {
				r.TexCoord = baseUV + int(i)
			}
			return r
		}

		// GLTF front faces are CCW; the rasterizer expects them reversed
		// because screen space flips Y.
		for i := 0; i+2 < len(indices); i += 3 {
			if int(indices[i]) >= len(positions) || int(indices[i+1]) >= len(positions) || int(indices[i+2]) >= len(positions) {
				return fmt.Errorf("index out of range at triangle %d", i/3)
			}
			if err := mesh.AddPolygon([]VertexRef{ref(indices[i]), ref(indices[i+2]), ref(indices[i+1])}); err != nil {
				return err
			}
			mesh.Polygons[len(mesh.Polygons)-1].Material = material
		}
	}

	return nil
}

func readMaterials(doc *gltf.Document) []Material {
	materials := make([]Material, len(doc.Materials))
	for i, m := range doc.Materials {
		materials[i] = Material{Name: m.Name, BaseColor: [4]float64{1, 1, 1, 1}}
		if m.PBRMetallicRoughness != nil && m.PBRMetallicRoughness.BaseColorFactor != nil {
			materials[i].BaseColor = *m.PBRMetallicRoughness.BaseColorFactor
		}
	}
	return materials
}

// EmbeddedImage is the encoded data of a glTF image and its type hint:
// the declared MIME type, or the URI's extension for external files.
type EmbeddedImage struct {
	Data     []byte
	MimeType string
}

// LoadGLTFWithTextures loads a GLTF file and extracts embedded textures.
// Returns the mesh and a map of image index to encoded image data.
func LoadGLTFWithTextures(path string) (*Mesh, map[int]EmbeddedImage, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh, err := NewGLTFLoader().build(doc, filepath.Base(path))
	if err != nil {
		return nil, nil, err
	}

	textures := make(map[int]EmbeddedImage)
	for i, img := range doc.Images {
		switch {
		case img.BufferView != nil:
			bv := doc.BufferViews[*img.BufferView]
			buf := doc.Buffers[bv.Buffer]
			if buf.Data != nil {
				start := bv.ByteOffset
				textures[i] = EmbeddedImage{Data: buf.Data[start : start+bv.ByteLength], MimeType: img.MimeType}
			}
		case img.IsEmbeddedResource():
			data, err := img.MarshalData()
			if err != nil {
				logger().Warn("gltf data uri invalid", "model", path, "image", i, "err", err)
				continue
			}
			textures[i] = EmbeddedImage{Data: data, MimeType: img.MimeType}
		case img.URI != "":
			data, err := os.ReadFile(filepath.Join(filepath.Dir(path), img.URI))
			if err != nil {
				logger().Warn("gltf image unreadable", "model", path, "image", i, "err", err)
				continue
			}
			hint := img.MimeType
			if hint == "" {
				hint = filepath.Ext(img.URI)
			}
			textures[i] = EmbeddedImage{Data: data, MimeType: hint}
		}
	}

	return mesh, textures, nil
}

// firstDecodable decodes textures in index order and returns the first
// that succeeds. Failures are logged and skipped.
func firstDecodable(model string, textures map[int]EmbeddedImage) image.Image {
	for _, i := range slices.Sorted(maps.Keys(textures)) {
		t := textures[i]
		if len(t.Data) == 0 {
			continue
		}
		img, _, err := imageio.Decode(bytes.NewReader(t.Data), t.MimeType)
		if err != nil {
			logger().Warn("gltf texture not decodable", "model", model, "image", i, "mime", t.MimeType, "err", err)
			continue
		}
		return img
	}
	return nil
}

// LoadGLBWithTexture loads a GLB file and returns the mesh plus the first
// decodable embedded texture, which may be nil.
func LoadGLBWithTexture(path string) (*Mesh, image.Image, error) {
	mesh, textures, err := LoadGLTFWithTextures(path)
	if err != nil {
		return nil, nil, err
	}
	return mesh, firstDecodable(path, textures), nil
}
