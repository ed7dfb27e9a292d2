package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw presents the frame buffer on a terminal screen using upper half
// blocks: each cell shows two pixel rows, the top one as foreground and the
// bottom one as background. The buffer should be twice as tall as area.
func (fb *FrameBuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1
		if topY >= fb.Height() {
			break
		}

		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width() {
				break
			}
			var bottom color.Color
			if botY < fb.Height() {
				bottom = fb.GetPixel(x, botY)
			}
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: fb.GetPixel(x, topY),
					Bg: bottom,
				},
			})
		}
	}
}

// TerminalBitmap returns the frame buffer size needed to fill a terminal
// area of cols by rows cells.
func TerminalBitmap(cols, rows int) Bitmap {
	return Bitmap{Width: max(cols, 1), Height: max(rows*2, 2), Format: FormatRGBA32}
}
