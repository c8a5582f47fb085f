package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/voxelsnap/voxelsnap/pkg/errors"
	"github.com/voxelsnap/voxelsnap/pkg/world"
)

// Summary aggregates the outcome of a batch run.
type Summary struct {
	Processed     int
	Succeeded     int
	Failed        int
	ImagesCreated int
	Failures      []Failure
}

// Failure records one schematic that produced no images.
type Failure struct {
	Input   string
	Code    errors.Code
	Message string
}

// Pipeline runs batches of schematics through staging and rendering.
type Pipeline struct {
	opts Options
}

// New validates opts and builds a Pipeline.
func New(opts Options) (*Pipeline, error) {
	if opts.Renderer == nil {
		return nil, errors.New(errors.ErrCodeInternal, "pipeline requires a renderer")
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.TempDir == "" {
		opts.TempDir = filepath.Join(os.TempDir(), "voxelsnap")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Pipeline{opts: opts}, nil
}

// itemResult carries one schematic's outcome from a worker to the
// collector.
type itemResult struct {
	input  string
	images int
	err    error
}

// Run processes every discovered schematic and returns the aggregate
// summary. One schematic failing never aborts its siblings; the failure
// is recorded and the run continues. Run itself errors only when the
// batch cannot start at all (no inputs, unusable directories) or the
// context is canceled before completion.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	inputs, err := Discover(p.opts.InputDir)
	if err != nil {
		return Summary{}, err
	}
	if len(inputs) == 0 {
		return Summary{}, errors.New(errors.ErrCodeNotFound,
			"no schematics found in %q (supported: %s)",
			p.opts.InputDir, strings.Join(world.SupportedFormats, ", "))
	}
	if p.opts.Limit > 0 && len(inputs) > p.opts.Limit {
		inputs = inputs[:p.opts.Limit]
	}
	if err := p.setupDirs(); err != nil {
		return Summary{}, err
	}

	logger := p.opts.Logger
	logger.Info("starting batch", "schematics", len(inputs), "workers", p.opts.Workers)

	jobs := make(chan string)
	results := make(chan itemResult)

	var wg sync.WaitGroup
	for i := 0; i < p.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for input := range jobs {
				images, err := p.processOne(ctx, input)
				results <- itemResult{input: input, images: images, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, input := range inputs {
			select {
			case jobs <- input:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	var summary Summary
	for r := range results {
		summary.Processed++
		summary.ImagesCreated += r.images
		if r.err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{
				Input:   r.input,
				Code:    errors.GetCode(r.err),
				Message: r.err.Error(),
			})
			logger.Error("schematic failed", "input", r.input, "err", r.err)
		} else {
			summary.Succeeded++
		}
		logger.Info("progress",
			"done", summary.Processed, "total", len(inputs), "images", summary.ImagesCreated)
	}

	if !p.opts.KeepTemp {
		if err := os.RemoveAll(p.opts.TempDir); err != nil {
			logger.Warn("temp cleanup failed", "dir", p.opts.TempDir, "err", err)
		}
	}

	if err := ctx.Err(); err != nil && summary.Processed < len(inputs) {
		return summary, errors.Wrap(errors.ErrCodeRenderTimeout, err,
			"batch canceled after %d of %d schematics", summary.Processed, len(inputs))
	}

	logger.Info("batch complete",
		"processed", summary.Processed,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"images", summary.ImagesCreated)
	return summary, nil
}
