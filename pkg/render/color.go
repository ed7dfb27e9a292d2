package render

import (
	"image/color"

	"github.com/taigrr/softrast/pkg/math3d"
)

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// RGB creates a color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// PackRGB packs channels as 0xRRGGBB.
func PackRGB(r, g, b uint8) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// PackColor packs c as 0xRRGGBB, dropping alpha.
func PackColor(c Color) uint32 {
	return PackRGB(c.R, c.G, c.B)
}

// PackVec packs a 0..255 channel vector as 0xRRGGBB, clamping each channel.
func PackVec(v math3d.Vec3) uint32 {
	v = v.Clamp(0, 255)
	return PackRGB(uint8(v.X), uint8(v.Y), uint8(v.Z))
}

// Unpack expands a 0xRRGGBB value into an opaque Color.
func Unpack(p uint32) Color {
	return RGB(uint8(p>>16), uint8(p>>8), uint8(p))
}

// ColorVec returns the channels of c as a 0..255 vector.
func ColorVec(c Color) math3d.Vec3 {
	return math3d.V3(float64(c.R), float64(c.G), float64(c.B))
}
