package main

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"github.com/taigrr/softrast/pkg/render"
)

var hudColor = color.RGBA{0x5f, 0xff, 0x5f, 0xff}

// windowGame drives the renderer from ebiten's game loop.
type windowGame struct {
	v        *viewer
	renderer *render.Renderer
	rotation *RotationState
	state    ViewState
	hud      *HUD
	stats    render.RenderStats

	width, height int
	pixels        []byte
	screen        *ebiten.Image

	lastFrame  time.Time
	dragging   bool
	lastMouseX int
	lastMouseY int
}

func (g *windowGame) Update() error {
	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	now := time.Now()
	dt := min(now.Sub(g.lastFrame).Seconds(), 0.1)
	g.lastFrame = now

	var input torque
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		input.pitch = -torqueStrength
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		input.pitch = torqueStrength
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		input.yaw = -torqueStrength
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		input.yaw = torqueStrength
	}
	if ebiten.IsKeyPressed(ebiten.KeyQ) {
		input.roll = -torqueStrength
	}
	if ebiten.IsKeyPressed(ebiten.KeyE) {
		input.roll = torqueStrength
	}
	input.apply(g.rotation, dt)

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.rotation.RandomImpulse()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.rotation.Reset()
		g.v.reset()
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		g.v.scene.Mode = g.v.scene.Mode.Next()
	case inpututil.IsKeyJustPressed(ebiten.KeyX):
		g.state.toggleWireframe(&g.v.scene)
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		g.state.toggleTextures(&g.v.scene)
	case inpututil.IsKeyJustPressed(ebiten.KeyB):
		g.state.ShowBounds = !g.state.ShowBounds
	case inpututil.IsKeyJustPressed(ebiten.KeySlash):
		g.state.ShowHUD = !g.state.ShowHUD
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd):
		g.v.scene.Camera.Zoom(0.9)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract):
		g.v.scene.Camera.Zoom(1 / 0.9)
	}

	if _, wy := ebiten.Wheel(); wy > 0 {
		g.v.scene.Camera.Zoom(0.9)
	} else if wy < 0 {
		g.v.scene.Camera.Zoom(1 / 0.9)
	}

	x, y := ebiten.CursorPosition()
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.dragging = true
	case !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		g.dragging = false
	case g.dragging:
		g.rotation.ApplyImpulse(float64(y-g.lastMouseY)*0.01, float64(x-g.lastMouseX)*0.01, 0)
	}
	g.lastMouseX, g.lastMouseY = x, y

	g.rotation.Update()
	return g.render()
}

// render draws the current frame into the pixel buffer.
func (g *windowGame) render() error {
	bm := render.Bitmap{Width: g.width, Height: g.height, Format: render.FormatRGBA32}
	if g.renderer.FrameBuffer().Bitmap() != bm || len(g.pixels) != bm.Height*bm.Stride() {
		g.renderer.Resize(bm)
		g.pixels = make([]byte, bm.Height*bm.Stride())
		if g.screen != nil {
			g.screen.Deallocate()
			g.screen = nil
		}
	}

	scene := g.v.scene
	scene.Model.Rotation = g.rotation.Euler()
	stats, err := g.renderer.Render(g.v.mesh, scene)
	if err != nil {
		return err
	}
	g.stats = stats

	fb := g.renderer.FrameBuffer()
	if g.state.ShowBounds {
		shown := *g.v
		shown.scene = scene
		shown.drawOverlay(fb)
	}
	return fb.CopyTo(g.pixels, bm.Stride())
}

func (g *windowGame) Draw(screen *ebiten.Image) {
	if len(g.pixels) == 0 {
		return
	}
	if g.screen == nil {
		g.screen = ebiten.NewImage(g.width, g.height)
	}
	g.screen.WritePixels(g.pixels)
	screen.DrawImage(g.screen, nil)

	g.hud.UpdateFPS()
	if !g.state.ShowHUD {
		return
	}
	face := basicfont.Face7x13
	text.Draw(screen, fmt.Sprintf("%.0f FPS  %s  %d polys", g.hud.FPS(), g.v.name, g.v.mesh.TriangleCount()),
		face, 8, 16, hudColor)
	text.Draw(screen, modeLine(g.v.scene, g.stats), face, 8, g.height-8, hudColor)
}

func (g *windowGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = max(outsideWidth, 1), max(outsideHeight, 1)
	return g.width, g.height
}

func runWindow(opts *options, modelPath string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	v, err := newViewer(cfg, modelPath)
	if err != nil {
		return err
	}
	background, err := cfg.BackgroundColor()
	if err != nil {
		return err
	}

	bm := render.Bitmap{Width: cfg.Width, Height: cfg.Height, Format: render.FormatRGBA32}
	g := &windowGame{
		v:         v,
		renderer:  render.NewRenderer(bm, cfg.Workers),
		rotation:  NewRotationState(targetFPS),
		state:     ViewState{ShowHUD: true, lastMode: v.scene.Mode},
		hud:       NewHUD(v.name, v.mesh.TriangleCount()),
		width:     cfg.Width,
		height:    cfg.Height,
		lastFrame: time.Now(),
	}
	g.renderer.FrameBuffer().Background = background

	ebiten.SetWindowTitle("softrast - " + v.name)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(targetFPS)

	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("run window: %w", err)
	}
	return nil
}
