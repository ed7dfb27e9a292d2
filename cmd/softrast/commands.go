package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/taigrr/softrast/pkg/config"
	"github.com/taigrr/softrast/pkg/render"
)

// options are the flags shared by every command.
type options struct {
	configPath string
	verbose    bool
	flags      config.Flags
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "softrast <model.obj|model.glb>",
		Short: "Software 3D model viewer",
		Long: "softrast renders OBJ and glTF models on the CPU.\n" +
			"Without a subcommand it opens the interactive terminal viewer.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			setupLogging(opts.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd.Context(), opts, args[0])
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "JSON config file")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")
	pf.IntVar(&opts.flags.Workers, "workers", 0, "rasterizer workers (default: number of CPUs)")
	pf.StringVarP(&opts.flags.Mode, "mode", "m", "", "render mode: mesh, flat, phong, textures")
	pf.Float64Var(&opts.flags.FOV, "fov", 0, "vertical field of view in degrees")
	pf.StringVar(&opts.flags.Background, "bg", "", "background color (#rrggbb)")
	pf.StringVarP(&opts.flags.DiffuseMap, "texture", "t", "", "diffuse texture (PNG, JPEG, TGA, BMP, WebP)")
	pf.StringVar(&opts.flags.NormalMap, "normal-map", "", "normal map texture")

	root.AddCommand(
		newViewCmd(opts),
		newSnapshotCmd(opts),
		newWindowCmd(opts),
	)
	return root
}

func newViewCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "view <model>",
		Short: "Interactive terminal viewer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd.Context(), opts, args[0])
		},
	}
}

func newSnapshotCmd(opts *options) *cobra.Command {
	var snap snapshotOptions
	cmd := &cobra.Command{
		Use:   "snapshot <model>",
		Short: "Render one frame to a PNG or WebP file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(cmd, opts, snap, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&snap.output, "output", "o", "softrast.png", "output file (.png or .webp)")
	f.IntVar(&opts.flags.Width, "width", 0, "image width (default 800)")
	f.IntVar(&opts.flags.Height, "height", 0, "image height (default 600)")
	f.IntVarP(&opts.flags.Supersample, "supersample", "s", 0, "render at N times the size and downscale")
	f.Float64Var(&snap.yaw, "yaw", 0, "model yaw in degrees")
	f.Float64Var(&snap.pitch, "pitch", 0, "model pitch in degrees")
	f.Float64Var(&snap.roll, "roll", 0, "model roll in degrees")
	f.BoolVar(&snap.bounds, "bounds", false, "draw the bounding box")
	return cmd
}

func newWindowCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "window <model>",
		Short: "Interactive desktop window viewer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWindow(opts, args[0])
		},
	}
	cmd.Flags().IntVar(&opts.flags.Width, "width", 0, "window width (default 800)")
	cmd.Flags().IntVar(&opts.flags.Height, "height", 0, "window height (default 600)")
	return cmd
}

// setupLogging routes the render package's logs to stderr when verbose.
func setupLogging(verbose bool) {
	if !verbose {
		return
	}
	render.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))
}

// loadConfig reads the optional config file and applies the flags.
func loadConfig(opts *options) (config.Config, error) {
	var cfg config.Config
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return cfg, err
		}
	}
	cfg.Resolve(opts.flags)
	return cfg, nil
}
