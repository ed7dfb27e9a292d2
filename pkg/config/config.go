// Package config loads viewer settings from JSON and merges them with
// command-line flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/taigrr/softrast/pkg/math3d"
	"github.com/taigrr/softrast/pkg/render"
)

// ErrInvalidColor is returned for color strings that are not #rgb or #rrggbb.
var ErrInvalidColor = errors.New("invalid color")

// Config holds the render and scene settings shared by every command.
type Config struct {
	// Output
	Width       int `json:"width"`
	Height      int `json:"height"`
	Supersample int `json:"supersample"`
	Workers     int `json:"workers"`

	// Scene
	Mode          string     `json:"mode"`
	FOV           float64    `json:"fov_degrees"`
	Background    string     `json:"background"`
	FallbackColor string     `json:"fallback_color"`
	WireColor     string     `json:"wire_color"`
	CameraOffset  [3]float64 `json:"camera_offset"` // Direction from the model center to the eye
	LightOffset   [3]float64 `json:"light_offset"`  // Light position relative to the model center

	Lighting Lighting `json:"lighting"`

	// Textures
	DiffuseMap string `json:"diffuse_map"`
	NormalMap  string `json:"normal_map"`
}

// Lighting overrides render.DefaultLighting. Zero values keep the default.
type Lighting struct {
	Intensity     float64 `json:"intensity"`
	Ambient       float64 `json:"ambient"`  // Ka
	Diffuse       float64 `json:"diffuse"`  // Kd
	Specular      float64 `json:"specular"` // Ks
	Shininess     float64 `json:"shininess"`
	AmbientColor  string  `json:"ambient_color"`
	DiffuseColor  string  `json:"diffuse_color"`
	SpecularColor string  `json:"specular_color"`
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Width       int
	Height      int
	Supersample int
	Workers     int
	Mode        string
	FOV         float64
	Background  string
	DiffuseMap  string
	NormalMap   string
}

// Default returns a fully resolved configuration.
func Default() Config {
	var c Config
	c.Resolve(Flags{})
	return c
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Supersample > 0 {
		c.Supersample = flags.Supersample
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Mode != "" {
		c.Mode = flags.Mode
	}
	if flags.FOV > 0 {
		c.FOV = flags.FOV
	}
	if flags.Background != "" {
		c.Background = flags.Background
	}
	if flags.DiffuseMap != "" {
		c.DiffuseMap = flags.DiffuseMap
	}
	if flags.NormalMap != "" {
		c.NormalMap = flags.NormalMap
	}

	// Defaults
	if c.Width <= 0 {
		c.Width = 800
	}
	if c.Height <= 0 {
		c.Height = 600
	}
	if c.Supersample <= 0 {
		c.Supersample = 1
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Mode == "" {
		c.Mode = render.Phong.String()
	}
	if c.FOV <= 0 {
		c.FOV = 45
	}
	if c.Background == "" {
		c.Background = "#ffffff"
	}
	if c.FallbackColor == "" {
		c.FallbackColor = "#808080"
	}
	if c.WireColor == "" {
		c.WireColor = "#000000"
	}
	if c.CameraOffset == [3]float64{} {
		c.CameraOffset = [3]float64{1, 1, 1}
	}
	if c.LightOffset == [3]float64{} {
		c.LightOffset = [3]float64{-5, 100, 100}
	}
	c.Lighting.resolve()
}

func (l *Lighting) resolve() {
	def := render.DefaultLighting()
	setDefault(&l.Intensity, def.Intensity)
	setDefault(&l.Ambient, def.AmbientCoeff)
	setDefault(&l.Diffuse, def.DiffuseCoeff)
	setDefault(&l.Specular, def.SpecularCoeff)
	setDefault(&l.Shininess, def.Shininess)
	if l.AmbientColor == "" {
		l.AmbientColor = hexVec(def.AmbientColor)
	}
	if l.DiffuseColor == "" {
		l.DiffuseColor = hexVec(def.DiffuseColor)
	}
	if l.SpecularColor == "" {
		l.SpecularColor = hexVec(def.SpecularColor)
	}
}

func setDefault(v *float64, def float64) {
	if *v <= 0 {
		*v = def
	}
}

func hexVec(v math3d.Vec3) string {
	return fmt.Sprintf("#%02x%02x%02x", uint8(v.X), uint8(v.Y), uint8(v.Z))
}

// ParseColor parses "#rrggbb", "#rgb", or either without the leading '#'.
func ParseColor(s string) (render.Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 4 && len(s) != 7 {
		return render.Color{}, fmt.Errorf("%w %q", ErrInvalidColor, s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return render.Color{}, fmt.Errorf("%w %q: %w", ErrInvalidColor, s, err)
	}
	r, g, b := c.RGB255()
	return render.RGB(r, g, b), nil
}

// Bitmap returns the render target size, scaled by the supersample factor.
func (c Config) Bitmap() render.Bitmap {
	return render.Bitmap{
		Width:  c.Width * c.Supersample,
		Height: c.Height * c.Supersample,
		Format: render.FormatRGBA32,
	}
}

// BackgroundColor returns the parsed background as 0xRRGGBB.
func (c Config) BackgroundColor() (uint32, error) {
	bg, err := ParseColor(c.Background)
	if err != nil {
		return 0, fmt.Errorf("background: %w", err)
	}
	return render.PackColor(bg), nil
}

// Scene builds a render scene that frames the box [min, max]. Texture
// maps are left empty; callers load them from DiffuseMap and NormalMap.
func (c Config) Scene(min, max math3d.Vec3) (render.Scene, error) {
	mode, err := render.ParseRenderMode(c.Mode)
	if err != nil {
		return render.Scene{}, fmt.Errorf("mode: %w", err)
	}

	scene := render.DefaultScene()
	scene.Mode = mode

	if scene.FallbackColor, err = ParseColor(c.FallbackColor); err != nil {
		return render.Scene{}, fmt.Errorf("fallback color: %w", err)
	}
	if scene.WireColor, err = ParseColor(c.WireColor); err != nil {
		return render.Scene{}, fmt.Errorf("wire color: %w", err)
	}

	cam := render.DefaultCamera()
	cam.FOV = c.FOV * math.Pi / 180
	cam.Position = math3d.V3(c.CameraOffset[0], c.CameraOffset[1], c.CameraOffset[2])
	cam.CenterOn(min, max)
	scene.Camera = cam

	light := render.Lighting{
		Position:      cam.Target.Add(math3d.V3(c.LightOffset[0], c.LightOffset[1], c.LightOffset[2])),
		Intensity:     c.Lighting.Intensity,
		AmbientCoeff:  c.Lighting.Ambient,
		DiffuseCoeff:  c.Lighting.Diffuse,
		SpecularCoeff: c.Lighting.Specular,
		Shininess:     c.Lighting.Shininess,
	}
	colors := []struct {
		name string
		src  string
		dst  *math3d.Vec3
	}{
		{"ambient color", c.Lighting.AmbientColor, &light.AmbientColor},
		{"diffuse color", c.Lighting.DiffuseColor, &light.DiffuseColor},
		{"specular color", c.Lighting.SpecularColor, &light.SpecularColor},
	}
	for _, col := range colors {
		parsed, err := ParseColor(col.src)
		if err != nil {
			return render.Scene{}, fmt.Errorf("lighting %s: %w", col.name, err)
		}
		*col.dst = render.ColorVec(parsed)
	}
	scene.Lighting = light

	return scene, nil
}
