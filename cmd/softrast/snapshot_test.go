package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taigrr/softrast/pkg/imageio"
	"github.com/taigrr/softrast/pkg/render"
)

const cubeOBJ = `v -0.5 -0.5 -0.5
v  0.5 -0.5 -0.5
v  0.5  0.5 -0.5
v -0.5  0.5 -0.5
v -0.5 -0.5  0.5
v  0.5 -0.5  0.5
v  0.5  0.5  0.5
v -0.5  0.5  0.5
f 5 6 7 8
f 2 1 4 3
f 6 2 3 7
f 1 5 8 4
f 8 7 3 4
f 1 2 6 5
`

func writeCube(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cube.obj")
	if err := os.WriteFile(path, []byte(cubeOBJ), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadModelUnsupported(t *testing.T) {
	_, _, err := loadModel("model.stl")
	if !errors.Is(err, errUnsupportedModel) {
		t.Errorf("err = %v, want errUnsupportedModel", err)
	}
}

func TestLoadModelNormalizes(t *testing.T) {
	mesh, embedded, err := loadModel(writeCube(t))
	if err != nil {
		t.Fatal(err)
	}
	if embedded != nil {
		t.Error("OBJ should not carry an embedded texture")
	}
	size := mesh.BoundsMax.Sub(mesh.BoundsMin)
	if got := size.MaxComponent(); got < modelSize-1e-9 || got > modelSize+1e-9 {
		t.Errorf("largest dimension = %v, want %v", got, modelSize)
	}
}

func TestSnapshotCommand(t *testing.T) {
	tests := []struct {
		name string
		file string
		args []string
	}{
		{"png", "cube.png", nil},
		{"supersampled", "cube.png", []string{"-s", "2"}},
		{"flat with bounds", "cube.png", []string{"-m", "flat", "--bounds", "--yaw", "30"}},
		{"webp", "cube.webp", []string{"--bg", "#202020"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), tt.file)
			args := append([]string{"snapshot", writeCube(t), "-o", out, "--width", "64", "--height", "48"}, tt.args...)

			var stdout bytes.Buffer
			cmd := newRootCmd()
			cmd.SetArgs(args)
			cmd.SetOut(&stdout)
			if err := cmd.Execute(); err != nil {
				t.Fatalf("snapshot: %v", err)
			}
			if !strings.Contains(stdout.String(), "triangles drawn") {
				t.Errorf("output = %q, want a stats line", stdout.String())
			}

			img, _, err := imageio.DecodeFile(out)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
				t.Errorf("size = %v, want 64x48", b.Size())
			}

			// The framed cube covers a good part of the image.
			bg := img.At(0, 0)
			covered := 0
			for y := range 48 {
				for x := range 64 {
					if img.At(x, y) != bg {
						covered++
					}
				}
			}
			if covered < 64*48/10 {
				t.Errorf("%d pixels differ from the background, want a visible cube", covered)
			}
		})
	}
}

func TestSnapshotRejectsUnknownFormat(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"snapshot", writeCube(t), "-o", filepath.Join(t.TempDir(), "cube.gif")})
	cmd.SetOut(&bytes.Buffer{})
	if err := cmd.Execute(); !errors.Is(err, render.ErrUnknownImageFormat) {
		t.Errorf("err = %v, want ErrUnknownImageFormat", err)
	}
}

func TestSnapshotRejectsBadMode(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"snapshot", writeCube(t), "-o", filepath.Join(t.TempDir(), "cube.png"), "-m", "raytrace"})
	cmd.SetOut(&bytes.Buffer{})
	if err := cmd.Execute(); !errors.Is(err, render.ErrUnsupportedRenderMode) {
		t.Errorf("err = %v, want ErrUnsupportedRenderMode", err)
	}
}
