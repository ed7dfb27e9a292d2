package render

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/taigrr/softrast/pkg/imageio"
	"github.com/taigrr/softrast/pkg/math3d"
)

// Texture holds a 2D image for diffuse and normal mapping. Row 0 is the top
// of the source image.
type Texture struct {
	Width  int
	Height int
	Pixels []Color // Row-major pixel data
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// LoadTexture loads a texture from a PNG, JPEG, TGA, BMP or WebP file.
func LoadTexture(path string) (*Texture, error) {
	img, format, err := imageio.DecodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}
	Logger().Debug("texture loaded", "path", path, "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())

	return TextureFromImage(img), nil
}

// TextureFromImage creates a texture from an image.Image.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	tex := NewTexture(bounds.Dx(), bounds.Dy())
	for y := range tex.Height {
		for x := range tex.Width {
			o := rgba.PixOffset(x, y)
			tex.Pixels[y*tex.Width+x] = Color{R: rgba.Pix[o], G: rgba.Pix[o+1], B: rgba.Pix[o+2], A: rgba.Pix[o+3]}
		}
	}
	return tex
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 Color) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			if (x/checkSize+y/checkSize)%2 == 0 {
				tex.SetPixel(x, y, c1)
			} else {
				tex.SetPixel(x, y, c2)
			}
		}
	}
	return tex
}

// SetPixel sets a pixel in the texture.
func (t *Texture) SetPixel(x, y int, c Color) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// GetPixel returns the pixel at (x, y) with bounds checking.
func (t *Texture) GetPixel(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// GetColor returns the nearest texel at (u, v) as a 0..255 channel vector.
// v=0 addresses the bottom row of the image and v=1 the top row.
func (t *Texture) GetColor(u, v float64) math3d.Vec3 {
	if t == nil || t.Width == 0 || t.Height == 0 {
		return math3d.Vec3{}
	}
	x := int(math.Min(math.Max(u, 0)*float64(t.Width), float64(t.Width-1)))
	y := t.Height - 1 - int(math.Min(math.Max(v, 0)*float64(t.Height), float64(t.Height-1)))
	return ColorVec(t.Pixels[y*t.Width+x])
}

// GetNormal decodes a tangent-free normal map texel at (u, v) into a unit
// vector with channels mapped from [0,255] to [-1,1].
func (t *Texture) GetNormal(u, v float64) math3d.Vec3 {
	c := t.GetColor(u, v)
	return c.Scale(2.0 / 255).Sub(math3d.V3(1, 1, 1)).Normalize()
}
