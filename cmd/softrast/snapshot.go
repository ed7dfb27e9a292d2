package main

import (
	"fmt"
	"image"
	"math"

	"github.com/spf13/cobra"

	"github.com/taigrr/softrast/pkg/math3d"
	"github.com/taigrr/softrast/pkg/render"
)

type snapshotOptions struct {
	output           string
	yaw, pitch, roll float64 // degrees
	bounds           bool
}

// rotation returns the model rotation in radians.
func (s snapshotOptions) rotation() math3d.Vec3 {
	const deg = math.Pi / 180
	return math3d.V3(s.pitch*deg, s.yaw*deg, s.roll*deg)
}

func runSnapshot(cmd *cobra.Command, opts *options, snap snapshotOptions, modelPath string) error {
	if _, err := render.FormatForPath(snap.output); err != nil {
		return err
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

	renderer := render.NewRenderer(cfg.Bitmap(), cfg.Workers)
	renderer.FrameBuffer().Background = background

	v.scene.Model.Rotation = snap.rotation()
	stats, err := renderer.Render(v.mesh, v.scene)
	if err != nil {
		return err
	}
	fb := renderer.FrameBuffer()
	if snap.bounds {
		v.drawOverlay(fb)
	}

	var img image.Image = fb.ToImage()
	if cfg.Supersample > 1 {
		img = render.Downscale(img, cfg.Width, cfg.Height)
	}
	if err := render.SaveImage(snap.output, img); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d %s, %d/%d triangles drawn, %d culled, %d pixels in %s\n",
		snap.output, cfg.Width, cfg.Height, v.scene.Mode,
		stats.Drawn, stats.Triangles, stats.Culled, stats.Pixels, stats.Duration)
	return nil
}
