// Package render implements the softrast CPU rasterization pipeline: the
// shared frame buffer, vertex projection, scanline rasterization, flat and
// Blinn-Phong shading, and the partitioned scheduler that drives them.
package render

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sync/atomic"

	"github.com/taigrr/softrast/pkg/math3d"
)

// PixelFormat describes the byte layout of an exported pixel.
type PixelFormat int

const (
	FormatBGRA32 PixelFormat = iota // B, G, R, A
	FormatRGBA32                    // R, G, B, A
	FormatBGR24                     // B, G, R
)

// BytesPerPixel returns the size of one pixel in bytes.
func (f PixelFormat) BytesPerPixel() int {
	if f == FormatBGR24 {
		return 3
	}
	return 4
}

func (f PixelFormat) String() string {
	switch f {
	case FormatBGRA32:
		return "bgra32"
	case FormatRGBA32:
		return "rgba32"
	case FormatBGR24:
		return "bgr24"
	}
	return fmt.Sprintf("PixelFormat(%d)", int(f))
}

// Bitmap describes the render target.
type Bitmap struct {
	Width  int
	Height int
	Format PixelFormat
}

// Stride returns the number of bytes per row.
func (b Bitmap) Stride() int {
	return b.Width * b.Format.BytesPerPixel()
}

// AspectRatio returns width / height.
func (b Bitmap) AspectRatio() float64 {
	if b.Height == 0 {
		return 1
	}
	return float64(b.Width) / float64(b.Height)
}

// ErrShortBuffer is returned by CopyTo when dst cannot hold the frame.
var ErrShortBuffer = errors.New("destination buffer too small")

// DefaultBackground is the color pixels reset to on Clear.
const DefaultBackground uint32 = 0xFFFFFF

// infDepthBits is +Inf depth in the high half of a pixel word.
var infDepthBits = uint64(math.Float32bits(float32(math.Inf(1)))) << 32

// FrameBuffer holds the color and depth of every pixel packed into a single
// 64-bit word: float32 depth bits in the high half, 0xRRGGBB in the low half.
// All per-pixel writes go through compare-and-swap so many goroutines can
// draw into it at once.
type FrameBuffer struct {
	bitmap     Bitmap
	Background uint32 // 0xRRGGBB written by Clear
	cells      []uint64
}

// NewFrameBuffer allocates a frame buffer for bm and clears it.
func NewFrameBuffer(bm Bitmap) *FrameBuffer {
	fb := &FrameBuffer{Background: DefaultBackground}
	fb.Resize(bm.Width, bm.Height, bm.Format)
	return fb
}

// Width returns the width in pixels.
func (fb *FrameBuffer) Width() int { return fb.bitmap.Width }

// Height returns the height in pixels.
func (fb *FrameBuffer) Height() int { return fb.bitmap.Height }

// Bitmap returns the dimensions and pixel format.
func (fb *FrameBuffer) Bitmap() Bitmap { return fb.bitmap }

// Stride returns the number of bytes per exported row.
func (fb *FrameBuffer) Stride() int { return fb.bitmap.Stride() }

// Resize reallocates every buffer and clears it. Not safe to call while drawing.
func (fb *FrameBuffer) Resize(width, height int, format PixelFormat) {
	width, height = max(width, 0), max(height, 0)
	fb.bitmap = Bitmap{Width: width, Height: height, Format: format}
	fb.cells = make([]uint64, width*height)
	fb.Clear()
	Logger().Debug("framebuffer resized", "width", width, "height", height, "format", format)
}

// Clear resets every depth to +Inf and every pixel to Background.
// It must complete before any drawing for the frame starts.
func (fb *FrameBuffer) Clear() {
	n := len(fb.cells)
	if n == 0 {
		return
	}
	// Copy-doubling fill
	fb.cells[0] = infDepthBits | uint64(fb.Background&0xFFFFFF)
	for i := 1; i < n; i *= 2 {
		copy(fb.cells[i:], fb.cells[:i])
	}
}

func (fb *FrameBuffer) index(x, y int) (int, bool) {
	if x < 0 || x >= fb.bitmap.Width || y < 0 || y >= fb.bitmap.Height {
		return 0, false
	}
	return y*fb.bitmap.Width + x, true
}

// DrawPixelDepth writes color at (x, y) if z is strictly nearer than the
// stored depth. It reports whether the write landed; out-of-bounds and
// depth-rejected writes return false.
func (fb *FrameBuffer) DrawPixelDepth(x, y int, z float64, color uint32) bool {
	i, ok := fb.index(x, y)
	if !ok {
		return false
	}
	depth := float32(z)
	next := uint64(math.Float32bits(depth))<<32 | uint64(color&0xFFFFFF)
	cell := &fb.cells[i]
	for {
		old := atomic.LoadUint64(cell)
		if !(depth < math.Float32frombits(uint32(old>>32))) {
			return false
		}
		if atomic.CompareAndSwapUint64(cell, old, next) {
			return true
		}
	}
}

// DrawPixel writes color at (x, y) without a depth test, keeping the stored
// depth. It returns false if (x, y) is out of bounds.
func (fb *FrameBuffer) DrawPixel(x, y int, color uint32) bool {
	i, ok := fb.index(x, y)
	if !ok {
		return false
	}
	cell := &fb.cells[i]
	for {
		old := atomic.LoadUint64(cell)
		next := old&^0xFFFFFFFF | uint64(color&0xFFFFFF)
		if atomic.CompareAndSwapUint64(cell, old, next) {
			return true
		}
	}
}

// DrawLine draws from p0 to p1 with a DDA stepping max(|dx|,|dy|) times.
// Drawing stops at the first step that falls outside the buffer.
func (fb *FrameBuffer) DrawLine(p0, p1 math3d.Vec2, color uint32) {
	d := p1.Sub(p0)
	steps := math.Max(math.Abs(d.X), math.Abs(d.Y))
	if steps == 0 {
		fb.DrawPixel(int(math.Round(p0.X)), int(math.Round(p0.Y)), color)
		return
	}
	inc := d.Scale(1 / steps)
	p := p0
	for i := 0; i <= int(steps); i++ {
		if !fb.DrawPixel(int(math.Round(p.X)), int(math.Round(p.Y)), color) {
			return
		}
		p = p.Add(inc)
	}
}

// Pixel returns the 0xRRGGBB color at (x, y), or 0 if out of bounds.
func (fb *FrameBuffer) Pixel(x, y int) uint32 {
	i, ok := fb.index(x, y)
	if !ok {
		return 0
	}
	return uint32(atomic.LoadUint64(&fb.cells[i])) & 0xFFFFFF
}

// Depth returns the stored depth at (x, y), or +Inf if out of bounds.
func (fb *FrameBuffer) Depth(x, y int) float64 {
	i, ok := fb.index(x, y)
	if !ok {
		return math.Inf(1)
	}
	return float64(math.Float32frombits(uint32(atomic.LoadUint64(&fb.cells[i]) >> 32)))
}

// GetPixel returns the color at (x, y) as an opaque Color.
func (fb *FrameBuffer) GetPixel(x, y int) Color {
	return Unpack(fb.Pixel(x, y))
}

// CopyTo writes the frame into dst using the buffer's pixel format, with
// stride bytes between row starts.
func (fb *FrameBuffer) CopyTo(dst []byte, stride int) error {
	w, h := fb.bitmap.Width, fb.bitmap.Height
	bpp := fb.bitmap.Format.BytesPerPixel()
	if stride < w*bpp {
		return fmt.Errorf("stride %d below row size %d: %w", stride, w*bpp, ErrShortBuffer)
	}
	if h > 0 && len(dst) < (h-1)*stride+w*bpp {
		return fmt.Errorf("need %d bytes, have %d: %w", (h-1)*stride+w*bpp, len(dst), ErrShortBuffer)
	}

	for y := range h {
		row := dst[y*stride:]
		for x := range w {
			c := uint32(fb.cells[y*w+x])
			r, g, b := byte(c>>16), byte(c>>8), byte(c)
			o := x * bpp
			switch fb.bitmap.Format {
			case FormatRGBA32:
				row[o], row[o+1], row[o+2], row[o+3] = r, g, b, 0xFF
			case FormatBGR24:
				row[o], row[o+1], row[o+2] = b, g, r
			default:
				row[o], row[o+1], row[o+2], row[o+3] = b, g, r, 0xFF
			}
		}
	}
	return nil
}

// ToImage converts the frame buffer to a standard Go image.RGBA.
func (fb *FrameBuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.bitmap.Width, fb.bitmap.Height))
	fb.copyRGBA(img.Pix, img.Stride)
	return img
}

func (fb *FrameBuffer) copyRGBA(dst []byte, stride int) {
	w := fb.bitmap.Width
	for y := range fb.bitmap.Height {
		row := dst[y*stride:]
		for x := range w {
			c := uint32(fb.cells[y*w+x])
			row[x*4], row[x*4+1], row[x*4+2], row[x*4+3] = byte(c>>16), byte(c>>8), byte(c), 0xFF
		}
	}
}
