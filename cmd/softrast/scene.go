package main

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/taigrr/softrast/pkg/config"
	"github.com/taigrr/softrast/pkg/models"
	"github.com/taigrr/softrast/pkg/render"
)

var errUnsupportedModel = errors.New("unsupported model format (use .obj, .gltf or .glb)")

// modelSize is the largest dimension models are scaled to.
const modelSize = 2.0

// loadModel loads an OBJ or glTF file and normalizes it around the origin.
// The second result is the first embedded texture of a glTF file, if any.
func loadModel(path string) (*models.Mesh, image.Image, error) {
	var (
		mesh     *models.Mesh
		embedded image.Image
		err      error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".glb", ".gltf":
		mesh, embedded, err = models.LoadGLBWithTexture(path)
	case ".obj":
		mesh, err = models.LoadOBJ(path)
	default:
		return nil, nil, fmt.Errorf("%s: %w", ext, errUnsupportedModel)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load model: %w", err)
	}

	mesh.Normalize(modelSize)
	render.Logger().Info("model loaded",
		"name", mesh.Name,
		"vertices", mesh.VertexCount(),
		"triangles", mesh.TriangleCount())
	return mesh, embedded, nil
}

// viewer bundles what every front end needs to draw a model.
type viewer struct {
	name  string
	cfg   config.Config
	mesh  *models.Mesh
	base  render.Scene // Scene as configured, before user interaction
	scene render.Scene
}

// newViewer loads the model and builds its scene from cfg. Textures come
// from the config when set; otherwise a glTF embedded texture or a checker
// pattern is used for Textures mode.
func newViewer(cfg config.Config, path string) (*viewer, error) {
	mesh, embedded, err := loadModel(path)
	if err != nil {
		return nil, err
	}

	scene, err := cfg.Scene(mesh.BoundsMin, mesh.BoundsMax)
	if err != nil {
		return nil, err
	}

	switch {
	case cfg.DiffuseMap != "":
		if scene.Material.DiffuseMap, err = render.LoadTexture(cfg.DiffuseMap); err != nil {
			return nil, err
		}
	case embedded != nil:
		scene.Material.DiffuseMap = render.TextureFromImage(embedded)
	default:
		scene.Material.DiffuseMap = render.NewCheckerTexture(64, 64, 8,
			render.RGB(200, 200, 200), render.RGB(100, 100, 100))
	}
	if cfg.NormalMap != "" {
		if scene.Material.NormalMap, err = render.LoadTexture(cfg.NormalMap); err != nil {
			return nil, err
		}
	}

	return &viewer{
		name:  filepath.Base(path),
		cfg:   cfg,
		mesh:  mesh,
		base:  scene,
		scene: scene,
	}, nil
}

// reset restores the configured camera, light and mode.
func (v *viewer) reset() {
	v.scene = v.base
}

// bounds returns the model's bounding box.
func (v *viewer) bounds() render.AABB {
	return render.NewAABB(v.mesh.BoundsMin, v.mesh.BoundsMax)
}

// drawOverlay draws the bounding box and axes over the last frame.
func (v *viewer) drawOverlay(fb *render.FrameBuffer) {
	mats := render.BuildTransform(v.scene.Model, v.scene.Camera, fb.Bitmap())
	w := render.NewWireframe(fb, mats)
	w.DrawBox(v.bounds(), render.PackColor(v.scene.WireColor))
	w.DrawAxes(v.bounds().Center(), modelSize/2)
}
