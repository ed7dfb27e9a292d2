package models

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"strings"
	"testing"
)

func TestLoadGLTFInvalidPath(t *testing.T) {
	_, err := LoadGLTF("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadGLBWithTextureInvalidPath(t *testing.T) {
	mesh, img, err := LoadGLBWithTexture("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
	if mesh != nil || img != nil {
		t.Error("Expected nil mesh and image on error")
	}
}

func TestGLTFLoaderCreation(t *testing.T) {
	loader := NewGLTFLoader()
	if loader == nil {
		t.Fatal("NewGLTFLoader returned nil")
	}
	if !loader.CalculateNormals {
		t.Error("CalculateNormals should default to true")
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 0, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFirstDecodable(t *testing.T) {
	var logs bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&logs, nil)))
	defer SetLogger(nil)

	textures := map[int]EmbeddedImage{
		0: {Data: []byte("not an image"), MimeType: "image/png"},
		1: {},
		2: {Data: pngBytes(t), MimeType: "image/png"},
		3: {Data: pngBytes(t), MimeType: ".png"},
	}

	img := firstDecodable("model.glb", textures)
	if img == nil {
		t.Fatal("embedded PNG not decoded")
	}
	if r, g, b, _ := img.At(1, 0).RGBA(); r>>8 != 200 || g>>8 != 100 || b>>8 != 50 {
		t.Errorf("pixel = %d,%d,%d, want 200,100,50", r>>8, g>>8, b>>8)
	}
	if !strings.Contains(logs.String(), "level=WARN") || !strings.Contains(logs.String(), "image=0") {
		t.Errorf("logs = %q, want a warning for image 0", logs.String())
	}
}

func TestFirstDecodableNone(t *testing.T) {
	textures := map[int]EmbeddedImage{0: {Data: []byte{1, 2, 3}}}
	if img := firstDecodable("model.glb", textures); img != nil {
		t.Errorf("decoded %v from garbage", img.Bounds())
	}
	if img := firstDecodable("model.glb", nil); img != nil {
		t.Error("decoded an image from no textures")
	}
}
