// Package pipeline orchestrates the schematic-to-image flow: discover
// inputs, stage each structure into a temporary world, derive cameras,
// emit scene descriptors, and drive the external renderer across a worker
// pool.
package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/voxelsnap/voxelsnap/pkg/errors"
	"github.com/voxelsnap/voxelsnap/pkg/geom"
	"github.com/voxelsnap/voxelsnap/pkg/scene"
	"github.com/voxelsnap/voxelsnap/pkg/stage"
	"github.com/voxelsnap/voxelsnap/pkg/voxel"
	"github.com/voxelsnap/voxelsnap/pkg/world"
)

// SceneRenderer renders a prepared scene directory into an output image.
// *render.Renderer is the production implementation.
type SceneRenderer interface {
	Render(ctx context.Context, sceneDir, outputPath string) error
}

// Options configures a batch run.
type Options struct {
	InputDir  string
	OutputDir string
	TempDir   string

	Renderer SceneRenderer
	Scene    scene.Config

	// Workers is the number of schematics processed concurrently.
	Workers int
	// SingleView renders only the first diagonal view instead of all four.
	SingleView bool
	// Limit caps how many discovered schematics are processed. Zero means
	// no cap.
	Limit int
	// KeepTemp leaves the staging worlds and scene files on disk.
	KeepTemp bool
	// Margin is the camera framing margin. Zero selects the default.
	Margin float64

	Logger *log.Logger
}

// Discover finds every supported schematic under dir, recursively. The
// result is sorted so batch runs are deterministic.
func Discover(dir string) ([]string, error) {
	supported := make(map[string]bool, len(world.SupportedFormats))
	for _, ext := range world.SupportedFormats {
		supported[ext] = true
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !supported[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "scanning input directory %q", dir)
	}
	sort.Strings(files)
	return files, nil
}

// processOne runs the full flow for a single schematic and returns the
// number of images produced. A schematic counts as succeeded when at
// least one of its views rendered; individual view failures are logged
// and the remaining views still run.
func (p *Pipeline) processOne(ctx context.Context, input string) (int, error) {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	logger := p.opts.Logger.With("schematic", name)

	s, err := world.Open(input)
	if err != nil {
		return 0, err
	}
	bounds := s.Bounds()
	grid, palette, err := world.Extract(s)
	s.Close()
	if err != nil {
		return 0, err
	}

	// Crop the empty shell so framing and staging see only real blocks.
	cropped, origin := voxel.RemoveAir(grid, palette)
	src := geom.NewBBox(
		bounds.Min[0]+origin[0], bounds.Min[1]+origin[1], bounds.Min[2]+origin[2],
		bounds.Min[0]+origin[0]+cropped.W, bounds.Min[1]+origin[1]+cropped.H, bounds.Min[2]+origin[2]+cropped.D,
	)

	token := uuid.NewString()
	worldDir := filepath.Join(p.opts.TempDir, "worlds", token)
	staged, err := stage.Stage(worldDir, cropped, palette, src, true)
	if err != nil {
		return 0, err
	}
	chunks := geom.ChunksFor(staged.WorldBounds)
	logger.Debug("staged", "bounds", staged.WorldBounds, "chunks", len(chunks))

	views := geom.IsometricViews[:]
	if p.opts.SingleView {
		views = views[:1]
	}

	margin := p.opts.Margin
	if margin <= 0 {
		margin = geom.DefaultMargin
	}

	images := 0
	var viewErr error
	for i, view := range views {
		if ctx.Err() != nil {
			break
		}
		cam := geom.ComputeCamera(staged.WorldBounds, view, p.opts.Scene.FOV, p.opts.Scene.AspectRatio(), margin)
		sceneDir := filepath.Join(p.opts.TempDir, "scenes", fmt.Sprintf("%s_iso_%d", token, i))
		if _, err := scene.Generate(sceneDir, worldDir, cam, chunks, p.opts.Scene); err != nil {
			viewErr = err
			logger.Warn("scene generation failed", "view", i, "err", err)
			continue
		}

		output := filepath.Join(p.opts.OutputDir, fmt.Sprintf("%s_iso_%d.png", name, i))
		if err := p.opts.Renderer.Render(ctx, sceneDir, output); err != nil {
			viewErr = err
			logger.Warn("view failed", "view", i, "err", err)
			continue
		}
		images++
		logger.Debug("view rendered", "view", i, "output", output)
	}

	if images == 0 {
		if viewErr != nil {
			return 0, viewErr
		}
		if err := ctx.Err(); err != nil {
			return 0, errors.Wrap(errors.ErrCodeRenderTimeout, err, "canceled before any view rendered")
		}
		return 0, errors.New(errors.ErrCodeOutputMissing, "no views rendered for %s", name)
	}
	return images, nil
}

// setupDirs creates the output and temp layout a run writes into.
func (p *Pipeline) setupDirs() error {
	for _, dir := range []string{
		p.opts.OutputDir,
		filepath.Join(p.opts.TempDir, "worlds"),
		filepath.Join(p.opts.TempDir, "scenes"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeStoreCreate, err, "creating %q", dir)
		}
	}
	return nil
}
