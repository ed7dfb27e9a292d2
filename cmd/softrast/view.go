package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	xterm "golang.org/x/term"

	"github.com/taigrr/softrast/pkg/math3d"
	"github.com/taigrr/softrast/pkg/render"
)

var errNotTerminal = errors.New("stdout is not a terminal (try the snapshot or window command)")

const targetFPS = 60

// ViewState holds the interactive settings of a viewer session.
type ViewState struct {
	LightMode    bool        // Whether in light positioning mode
	PendingLight math3d.Vec3 // Light position while positioning
	ShowHUD      bool
	ShowBounds   bool
	lastMode     render.RenderMode // Mode to return to when leaving wireframe
}

// toggleWireframe switches between MeshOnly and the previous mode.
func (v *ViewState) toggleWireframe(scene *render.Scene) {
	if scene.Mode == render.MeshOnly {
		scene.Mode = v.lastMode
		return
	}
	v.lastMode = scene.Mode
	scene.Mode = render.MeshOnly
}

// toggleTextures switches between Textures and Phong shading.
func (v *ViewState) toggleTextures(scene *render.Scene) {
	if scene.Mode == render.Textures {
		scene.Mode = render.Phong
	} else {
		scene.Mode = render.Textures
	}
}

// ScreenToLight maps a screen position to a light position on a hemisphere
// of the given radius in front of target.
func ScreenToLight(screenX, screenY, width, height int, target math3d.Vec3, radius float64) math3d.Vec3 {
	// Normalize to [-1, 1]
	nx := (float64(screenX)/float64(max(width, 1)))*2 - 1
	ny := (float64(screenY)/float64(max(height, 1)))*2 - 1

	// Clamp to unit circle
	lenSq := nx*nx + ny*ny
	if lenSq > 1 {
		l := math.Sqrt(lenSq)
		nx /= l
		ny /= l
		lenSq = 1
	}
	nz := math.Sqrt(1 - lenSq)

	return target.Add(math3d.V3(nx, -ny, nz).Normalize().Scale(radius))
}

func runView(ctx context.Context, opts *options, modelPath string) error {
	if !xterm.IsTerminal(int(os.Stdout.Fd())) {
		return errNotTerminal
	}

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

	// Create terminal
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Enable mouse mode
	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Enable any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // Enable SGR extended mouse mode

	renderer := render.NewRenderer(render.TerminalBitmap(width, height), cfg.Workers)
	renderer.FrameBuffer().Background = background

	rotation := NewRotationState(targetFPS)
	state := &ViewState{lastMode: v.scene.Mode}
	hud := NewHUD(v.name, v.mesh.TriangleCount())
	lightRadius := v.scene.Lighting.Position.Distance(v.scene.Camera.Target)

	// Context for clean shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	// Events are forwarded to the render loop so all state lives on one goroutine.
	events := make(chan uv.Event, 64)
	go func() {
		for ev := range term.Events() {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	var (
		input      torque
		mouseDown  bool
		lastMouseX int
		lastMouseY int
	)

	handle := func(ev uv.Event) {
		switch ev := ev.(type) {
		case uv.WindowSizeEvent:
			width, height = ev.Width, ev.Height
			term.Erase()
			term.Resize(width, height)
			renderer.Resize(render.TerminalBitmap(width, height))

		case uv.KeyPressEvent:
			switch {
			case ev.MatchString("escape"):
				if state.LightMode {
					state.LightMode = false
				} else {
					cancel()
				}
			case ev.MatchString("ctrl+c"):
				cancel()
			case ev.MatchString("q"):
				input.roll = -torqueStrength
			case ev.MatchString("e"):
				input.roll = torqueStrength
			case ev.MatchString("w", "up"):
				input.pitch = -torqueStrength
			case ev.MatchString("s", "down"):
				input.pitch = torqueStrength
			case ev.MatchString("a", "left"):
				input.yaw = -torqueStrength
			case ev.MatchString("d", "right"):
				input.yaw = torqueStrength
			case ev.MatchString("space"):
				rotation.RandomImpulse()
			case ev.MatchString("r"):
				rotation.Reset()
				v.reset()
			case ev.MatchString("+", "="):
				v.scene.Camera.Zoom(0.9)
			case ev.MatchString("-", "_"):
				v.scene.Camera.Zoom(1 / 0.9)
			case ev.MatchString("m"):
				v.scene.Mode = v.scene.Mode.Next()
			case ev.MatchString("x"):
				state.toggleWireframe(&v.scene)
			case ev.MatchString("t"):
				state.toggleTextures(&v.scene)
			case ev.MatchString("b"):
				state.ShowBounds = !state.ShowBounds
			case ev.MatchString("l"):
				state.LightMode = true
				state.PendingLight = v.scene.Lighting.Position
			case ev.MatchString("?"), ev.MatchString("shift+/"):
				state.ShowHUD = !state.ShowHUD
			}

		case uv.KeyReleaseEvent:
			switch {
			case ev.MatchString("w"), ev.MatchString("up"), ev.MatchString("s"), ev.MatchString("down"):
				input.pitch = 0
			case ev.MatchString("a"), ev.MatchString("left"), ev.MatchString("d"), ev.MatchString("right"):
				input.yaw = 0
			case ev.MatchString("q"), ev.MatchString("e"):
				input.roll = 0
			}

		case uv.MouseClickEvent:
			if state.LightMode {
				v.scene.Lighting.Position = state.PendingLight
				state.LightMode = false
			} else {
				mouseDown = true
				lastMouseX, lastMouseY = ev.X, ev.Y
			}

		case uv.MouseReleaseEvent:
			mouseDown = false

		case uv.MouseMotionEvent:
			if state.LightMode {
				state.PendingLight = ScreenToLight(ev.X, ev.Y, width, height, v.scene.Camera.Target, lightRadius)
			} else if mouseDown {
				dx := ev.X - lastMouseX
				dy := ev.Y - lastMouseY
				rotation.ApplyImpulse(float64(dy)*0.03, float64(dx)*0.03, 0)
				lastMouseX, lastMouseY = ev.X, ev.Y
			}

		case uv.MouseWheelEvent:
			switch ev.Button {
			case uv.MouseWheelUp:
				v.scene.Camera.Zoom(0.9)
			case uv.MouseWheelDown:
				v.scene.Camera.Zoom(1 / 0.9)
			}
		}
	}

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	targetDuration := time.Second / targetFPS
	lastFrame := time.Now()

	for {
		// Drain pending input
	drain:
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev := <-events:
				handle(ev)
			default:
				break drain
			}
		}

		now := time.Now()
		dt := min(now.Sub(lastFrame).Seconds(), 0.1)
		lastFrame = now

		input.apply(rotation, dt)
		rotation.Update()

		scene := v.scene
		scene.Model.Rotation = rotation.Euler()
		if state.LightMode {
			scene.Lighting.Position = state.PendingLight
		}

		stats, err := renderer.Render(v.mesh, scene)
		if err != nil {
			return err
		}
		fb := renderer.FrameBuffer()
		if state.ShowBounds {
			shown := *v
			shown.scene = scene
			shown.drawOverlay(fb)
		}

		// Display
		area := term.Bounds()
		fb.Draw(term, area)
		hud.UpdateFPS()
		hud.Draw(term, area, scene, stats, state)
		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}

		// Frame timing
		if elapsed := time.Since(now); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
