package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/taigrr/softrast/pkg/math3d"
	"github.com/taigrr/softrast/pkg/models"
)

const cubeOBJ = `# unit cube, counter-clockwise faces
v -0.5 -0.5 -0.5
v  0.5 -0.5 -0.5
v  0.5  0.5 -0.5
v -0.5  0.5 -0.5
v -0.5 -0.5  0.5
v  0.5 -0.5  0.5
v  0.5  0.5  0.5
v -0.5  0.5  0.5
vt 0 0
vt 1 0
vt 1 1
vt 0 1
f 5/1 6/2 7/3 8/4
f 2/1 1/2 4/3 3/4
f 6/1 2/2 3/3 7/4
f 1/1 5/2 8/3 4/4
f 8/1 7/2 3/3 4/4
f 1/1 2/2 6/3 5/4
`

func loadCube(t testing.TB) *models.Mesh {
	t.Helper()
	mesh, err := models.NewOBJLoader().Parse(strings.NewReader(cubeOBJ))
	if err != nil {
		t.Fatalf("parse cube: %v", err)
	}
	return mesh
}

// createTestRenderer creates a renderer and a scene framing mesh.
func createTestRenderer(mesh *models.Mesh, workers int) (*Renderer, Scene) {
	r := NewRenderer(Bitmap{Width: 96, Height: 96, Format: FormatRGBA32}, workers)
	scene := DefaultScene()
	scene.Camera.CenterOn(mesh.BoundsMin, mesh.BoundsMax)
	scene.Lighting.Position = scene.Camera.Target.Add(math3d.V3(-5, 100, 100))
	return r, scene
}

func TestRenderUnsupportedMode(t *testing.T) {
	mesh := loadCube(t)
	r, scene := createTestRenderer(mesh, 2)
	r.FrameBuffer().DrawPixel(0, 0, 0x123456)

	for _, mode := range []RenderMode{Undefined, RenderMode(-1), RenderMode(42)} {
		scene.Mode = mode
		_, err := r.Render(mesh, scene)
		if !errors.Is(err, ErrUnsupportedRenderMode) {
			t.Errorf("mode %v: err = %v, want ErrUnsupportedRenderMode", mode, err)
		}
	}
	if r.FrameBuffer().Pixel(0, 0) != 0x123456 {
		t.Error("frame buffer touched by a rejected render")
	}

	scene.Mode = Phong
	if _, err := r.Render(nil, scene); !errors.Is(err, ErrNoMesh) {
		t.Errorf("nil mesh: err = %v, want ErrNoMesh", err)
	}
}

func TestRenderModes(t *testing.T) {
	mesh := loadCube(t)

	for _, mode := range []RenderMode{MeshOnly, Flat, Phong, Textures} {
		t.Run(mode.String(), func(t *testing.T) {
			r, scene := createTestRenderer(mesh, 3)
			scene.Mode = mode
			scene.Material.DiffuseMap = NewCheckerTexture(8, 8, 2, RGB(255, 0, 0), RGB(0, 0, 255))

			stats, err := r.Render(mesh, scene)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if stats.Triangles != 12 {
				t.Errorf("Triangles = %d, want 12", stats.Triangles)
			}
			if stats.Drawn+stats.Culled != stats.Triangles {
				t.Errorf("drawn %d + culled %d != %d", stats.Drawn, stats.Culled, stats.Triangles)
			}
			if changed := countNot(r.FrameBuffer(), DefaultBackground); changed == 0 {
				t.Error("nothing drawn")
			}

			if mode == MeshOnly {
				if stats.Drawn != 12 || stats.Pixels != 0 {
					t.Errorf("mesh mode stats = %+v", stats)
				}
				return
			}
			// Looking at a corner shows three faces.
			if stats.Drawn != 6 || stats.Culled != 6 {
				t.Errorf("drawn %d, culled %d; want 6 and 6", stats.Drawn, stats.Culled)
			}
			if stats.Pixels == 0 {
				t.Error("no pixels written")
			}
			mats := BuildTransform(scene.Model, scene.Camera, r.FrameBuffer().Bitmap())
			for _, pt := range []math3d.Vec3{
				math3d.V3(0.2, 0.1, 0.5), // +Z face
				math3d.V3(0.5, 0.1, 0.2), // +X face
				math3d.V3(0.1, 0.5, 0.2), // +Y face
			} {
				s, _ := mats.ProjectVertex(math3d.Point(pt))
				if p := r.FrameBuffer().Pixel(int(s.X), int(s.Y)); p == DefaultBackground {
					t.Errorf("face point %v at (%d,%d) not covered", pt, int(s.X), int(s.Y))
				}
			}
		})
	}
}

func TestRenderWorkerCountIndependence(t *testing.T) {
	mesh := loadCube(t)

	render := func(workers int) *FrameBuffer {
		r, scene := createTestRenderer(mesh, workers)
		if _, err := r.Render(mesh, scene); err != nil {
			t.Fatalf("Render: %v", err)
		}
		return r.FrameBuffer()
	}

	// Colors along shared edges may come from either face when depths tie,
	// so compare coverage and depth.
	one, many := render(1), render(8)
	for y := range one.Height() {
		for x := range one.Width() {
			covered1 := one.Pixel(x, y) != DefaultBackground
			covered8 := many.Pixel(x, y) != DefaultBackground
			if covered1 != covered8 || one.Depth(x, y) != many.Depth(x, y) {
				t.Fatalf("pixel (%d,%d) differs between 1 and 8 workers", x, y)
			}
		}
	}
}

func TestRenderMeshOutsideFrustum(t *testing.T) {
	mesh := loadCube(t)
	r, scene := createTestRenderer(mesh, 2)
	scene.Camera = Camera{Position: math3d.V3(0, 0, 5), Target: math3d.V3(0, 0, 10), Up: math3d.Up(), FOV: scene.Camera.FOV}

	stats, err := r.Render(mesh, scene)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !stats.MeshCulled || stats.Drawn != 0 {
		t.Errorf("stats = %+v, want mesh culled", stats)
	}
	if countNot(r.FrameBuffer(), DefaultBackground) != 0 {
		t.Error("pixels drawn for a culled mesh")
	}
}

func TestRenderClearsPreviousFrame(t *testing.T) {
	mesh := loadCube(t)
	r, scene := createTestRenderer(mesh, 2)
	if _, err := r.Render(mesh, scene); err != nil {
		t.Fatal(err)
	}
	first := countNot(r.FrameBuffer(), DefaultBackground)

	scene.Camera.Zoom(3)
	if _, err := r.Render(mesh, scene); err != nil {
		t.Fatal(err)
	}
	if second := countNot(r.FrameBuffer(), DefaultBackground); second >= first {
		t.Errorf("zoomed out frame covers %d pixels, first covered %d", second, first)
	}
}

func TestRendererResize(t *testing.T) {
	r := NewRenderer(Bitmap{Width: 10, Height: 10}, 1)
	fb := r.FrameBuffer()
	r.Resize(Bitmap{Width: 20, Height: 5, Format: FormatBGR24})
	if r.FrameBuffer() != fb {
		t.Error("Resize replaced the frame buffer")
	}
	if fb.Width() != 20 || fb.Height() != 5 || fb.Bitmap().Format != FormatBGR24 {
		t.Errorf("bitmap = %+v", fb.Bitmap())
	}
}

func TestParseRenderMode(t *testing.T) {
	tests := []struct {
		in   string
		want RenderMode
		err  bool
	}{
		{"mesh", MeshOnly, false},
		{"Flat", Flat, false},
		{"PHONG", Phong, false},
		{"textures", Textures, false},
		{"undefined", Undefined, true},
		{"gouraud", Undefined, true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseRenderMode(tc.in)
			if (err != nil) != tc.err {
				t.Fatalf("err = %v, want error %v", err, tc.err)
			}
			if tc.err && !errors.Is(err, ErrUnsupportedRenderMode) {
				t.Errorf("err = %v, want ErrUnsupportedRenderMode", err)
			}
			if got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRenderModeNext(t *testing.T) {
	m := MeshOnly
	seen := map[RenderMode]bool{}
	for range 4 {
		seen[m] = true
		m = m.Next()
	}
	if m != MeshOnly || len(seen) != 4 {
		t.Errorf("cycle ended at %v after visiting %d modes", m, len(seen))
	}
}

func BenchmarkRenderCube(b *testing.B) {
	mesh := loadCube(b)
	r, scene := createTestRenderer(mesh, 0)
	for b.Loop() {
		if _, err := r.Render(mesh, scene); err != nil {
			b.Fatal(err)
		}
	}
}
