package render

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/taigrr/softrast/pkg/imageio"
)

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want ImageFormat
		err  bool
	}{
		{"out.png", ImagePNG, false},
		{"dir/OUT.PNG", ImagePNG, false},
		{"frame.webp", ImageWebP, false},
		{"frame.jpg", "", true},
		{"noext", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			got, err := FormatForPath(tc.path)
			if tc.err {
				if !errors.Is(err, ErrUnknownImageFormat) {
					t.Errorf("err = %v, want ErrUnknownImageFormat", err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Errorf("FormatForPath = %q, %v; want %q", got, err, tc.want)
			}
		})
	}
}

func TestDownscale(t *testing.T) {
	fb := NewFrameBuffer(Bitmap{Width: 40, Height: 20})
	fb.Background = 0x336699
	fb.Clear()

	small := Downscale(fb.ToImage(), 10, 5)
	if small.Bounds().Dx() != 10 || small.Bounds().Dy() != 5 {
		t.Fatalf("bounds = %v", small.Bounds())
	}
	// A uniform image stays uniform.
	c := small.RGBAAt(5, 2)
	if absDiff(c.R, 0x33) > 1 || absDiff(c.G, 0x66) > 1 || absDiff(c.B, 0x99) > 1 {
		t.Errorf("pixel = %v, want about 336699", c)
	}
}

func TestSaveImage(t *testing.T) {
	fb := NewFrameBuffer(Bitmap{Width: 8, Height: 6})
	fb.DrawPixel(3, 2, 0xFF0000)
	img := fb.ToImage()
	dir := t.TempDir()

	for _, name := range []string{"snap.png", "snap.webp"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := SaveImage(path, img); err != nil {
				t.Fatalf("SaveImage: %v", err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			decoded, _, err := imageio.Decode(bytes.NewReader(data), filepath.Ext(path))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if decoded.Bounds().Dx() != 8 || decoded.Bounds().Dy() != 6 {
				t.Errorf("bounds = %v", decoded.Bounds())
			}
			r, g, b, _ := decoded.At(3, 2).RGBA()
			if r>>8 != 0xFF || g>>8 != 0 || b>>8 != 0 {
				t.Errorf("pixel = %d,%d,%d", r>>8, g>>8, b>>8)
			}
		})
	}

	if err := SaveImage(filepath.Join(dir, "snap.gif"), img); !errors.Is(err, ErrUnknownImageFormat) {
		t.Errorf("gif: err = %v", err)
	}
}

func TestEncodePNG(t *testing.T) {
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if err := EncodeImage(&buf, img, ImagePNG); err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Errorf("png decode: %v", err)
	}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
