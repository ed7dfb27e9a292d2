package main

import (
	"fmt"
	"time"

	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/softrast/pkg/render"
)

var (
	hudBase  = lipgloss.NewStyle().Background(lipgloss.Color("#000000"))
	hudFPS   = hudBase.Foreground(lipgloss.Color("#5fff5f"))
	hudTitle = hudBase.Foreground(lipgloss.Color("#ffffff")).Bold(true)
	hudPolys = hudBase.Foreground(lipgloss.Color("#5fffff")).Bold(true)
	hudMode  = hudBase.Foreground(lipgloss.Color("#ffffff"))
	hudHint  = hudBase.Foreground(lipgloss.Color("#ffff5f")).Faint(true)
	hudLight = hudBase.Foreground(lipgloss.Color("#ffff5f")).Bold(true)
)

// HUD renders an overlay with model info and controls
type HUD struct {
	filename  string
	polyCount int
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a new HUD
func NewHUD(filename string, polyCount int) *HUD {
	return &HUD{
		filename:  filename,
		polyCount: polyCount,
		fpsTime:   time.Now(),
	}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// FPS returns the last measured frame rate.
func (h *HUD) FPS() float64 {
	return h.fps
}

// modeLine describes the render mode and the last frame's counters.
func modeLine(scene render.Scene, stats render.RenderStats) string {
	return fmt.Sprintf(" %s  %d/%d tris  %d px  %s ",
		scene.Mode, stats.Drawn, stats.Triangles, stats.Pixels,
		stats.Duration.Round(100*time.Microsecond))
}

// Draw writes the HUD rows over the top and bottom of area.
func (h *HUD) Draw(scr uv.Screen, area uv.Rectangle, scene render.Scene, stats render.RenderStats, state *ViewState) {
	width, height := area.Dx(), area.Dy()
	if width <= 0 || height <= 0 {
		return
	}
	put := func(col, row int, s string) {
		col = max(col, 0)
		w := min(lipgloss.Width(s), width-col)
		if w <= 0 {
			return
		}
		uv.NewStyledString(s).Draw(scr, uv.Rect(area.Min.X+col, area.Min.Y+row, w, 1))
	}

	// Light mode always shows its indicator
	if state.LightMode {
		msg := hudLight.Render(" ◉ LIGHT MODE - Move mouse to position, click to set, Esc to cancel ")
		put((width-lipgloss.Width(msg))/2, height-1, msg)
		return
	}
	if !state.ShowHUD {
		return
	}

	// Top row: FPS, filename, polygon count
	put(0, 0, hudFPS.Render(fmt.Sprintf(" %.0f FPS ", h.fps)))
	title := hudTitle.Render(" " + h.filename + " ")
	put((width-lipgloss.Width(title))/2, 0, title)
	polys := hudPolys.Render(fmt.Sprintf(" %d polys ", h.polyCount))
	put(width-lipgloss.Width(polys), 0, polys)

	// Bottom row: mode and stats, light hint
	put(0, height-1, hudMode.Render(modeLine(scene, stats)))
	hint := hudHint.Render(" L: position light ")
	put(width-lipgloss.Width(hint), height-1, hint)
}
