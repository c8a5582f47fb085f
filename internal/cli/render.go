package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/voxelsnap/voxelsnap/pkg/errors"
	"github.com/voxelsnap/voxelsnap/pkg/pipeline"
	"github.com/voxelsnap/voxelsnap/pkg/render"
	"github.com/voxelsnap/voxelsnap/pkg/scene"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	inputDir   string  // directory scanned recursively for schematics
	outputDir  string  // directory receiving rendered PNGs
	tempDir    string  // scratch space for staging worlds and scene files
	configPath string  // optional TOML file overriding scene defaults
	chunkyHome string  // renderer installation directory
	workers    int     // schematics processed concurrently
	threads    int     // render threads per schematic (kept low for parallel runs)
	timeout    time.Duration
	width      int
	height     int
	spp        int
	fov        float64
	margin     float64
	singleView bool
	limit      int
	keepTemp   bool
	check      bool
}

// newRenderCmd creates the render command for batch-rendering schematics.
//
// Default settings:
//   - 4 worker processes, 2 render threads each
//   - 512x512 output at 256 samples per pixel, 70° FOV
//   - all 4 diagonal views per schematic
//   - 5 minute timeout per render
func newRenderCmd() *cobra.Command {
	opts := renderOpts{
		tempDir: "./temp_render",
		workers: 4,
		threads: 2,
		timeout: 5 * time.Minute,
	}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render schematics into 2D images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.inputDir, "input-dir", "i", "", "directory containing schematic files")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "directory to save rendered images")
	cmd.Flags().StringVar(&opts.tempDir, "temp-dir", opts.tempDir, "directory for temporary files")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "TOML file overriding scene defaults")
	cmd.Flags().StringVar(&opts.chunkyHome, "chunky-home", "", "renderer home directory (default ~/.chunky)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", opts.workers, "number of schematics processed in parallel")
	cmd.Flags().IntVar(&opts.threads, "threads", opts.threads, "render threads per schematic")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "timeout per render")
	cmd.Flags().IntVar(&opts.width, "width", 0, "output image width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", 0, "output image height in pixels")
	cmd.Flags().IntVar(&opts.spp, "spp", 0, "samples per pixel for render quality")
	cmd.Flags().Float64Var(&opts.fov, "fov", 0, "camera field of view in degrees")
	cmd.Flags().Float64Var(&opts.margin, "margin", 0, "camera framing margin (1.0 = tight fit)")
	cmd.Flags().BoolVar(&opts.singleView, "single-view", false, "render one view instead of all 4 diagonal views")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "limit the number of schematics to process")
	cmd.Flags().BoolVar(&opts.keepTemp, "keep-temp", false, "keep temporary files after completion")
	cmd.Flags().BoolVar(&opts.check, "check", false, "verify the renderer installation and exit")

	return cmd
}

// sceneConfig merges the defaults, the optional TOML file, and any flags
// the user set explicitly, in that precedence order.
func (o *renderOpts) sceneConfig() (scene.Config, error) {
	cfg, err := scene.LoadConfig(o.configPath)
	if err != nil {
		return scene.Config{}, errors.Wrap(errors.ErrCodeLoad, err, "loading config %q", o.configPath)
	}
	if o.width > 0 {
		cfg.Width = o.width
	}
	if o.height > 0 {
		cfg.Height = o.height
	}
	if o.spp > 0 {
		cfg.SPP = o.spp
	}
	if o.fov > 0 {
		cfg.FOV = o.fov
	}
	return cfg, nil
}

func runRender(cmd *cobra.Command, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	r := render.New(render.Options{
		Home:    opts.chunkyHome,
		Threads: opts.threads,
		Timeout: opts.timeout,
		Logger:  logger,
	})
	if opts.check {
		if err := r.CheckSetup(); err != nil {
			return err
		}
		cmd.Printf("renderer installation at %s is usable\n", r.Home())
		return nil
	}

	if opts.inputDir == "" || opts.outputDir == "" {
		return errors.New(errors.ErrCodeNotFound, "both --input-dir and --output-dir are required")
	}
	if err := r.CheckSetup(); err != nil {
		return err
	}
	cfg, err := opts.sceneConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.New(pipeline.Options{
		InputDir:   opts.inputDir,
		OutputDir:  opts.outputDir,
		TempDir:    opts.tempDir,
		Renderer:   r,
		Scene:      cfg,
		Workers:    opts.workers,
		SingleView: opts.singleView,
		Limit:      opts.limit,
		KeepTemp:   opts.keepTemp,
		Margin:     opts.margin,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	track := newProgress(logger)
	summary, err := p.Run(ctx)
	if err != nil {
		return err
	}
	track.done(fmt.Sprintf("Rendered %d images from %d schematics", summary.ImagesCreated, summary.Processed))

	if summary.Failed > 0 {
		for _, f := range summary.Failures {
			logger.Error("failed", "input", f.Input, "code", f.Code, "err", f.Message)
		}
		return errors.New(summary.Failures[0].Code, "%d of %d schematics failed", summary.Failed, summary.Processed)
	}
	return nil
}
