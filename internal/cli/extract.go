package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voxelsnap/voxelsnap/pkg/errors"
	"github.com/voxelsnap/voxelsnap/pkg/voxel"
	"github.com/voxelsnap/voxelsnap/pkg/world"
)

// extractOpts holds the command-line flags for the extract command.
type extractOpts struct {
	output   string // destination cache file (default: input with .vxc)
	crop     bool   // remove surrounding air before saving
	simplify bool   // collapse block-state variants into base blocks
	size     string // optional "W,H,D" normalization target
}

// newExtractCmd creates the extract command, which converts a schematic
// into the compact voxel cache format used by training pipelines.
func newExtractCmd() *cobra.Command {
	opts := extractOpts{crop: true}

	cmd := &cobra.Command{
		Use:   "extract [schematic]",
		Short: "Convert a schematic into a voxel cache file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input path with "+voxel.CacheExt+")")
	cmd.Flags().BoolVar(&opts.crop, "crop", opts.crop, "crop surrounding air before saving")
	cmd.Flags().BoolVar(&opts.simplify, "simplify", false, "collapse block-state variants into base blocks")
	cmd.Flags().StringVar(&opts.size, "size", "", "normalize to a fixed size, e.g. 32,32,32")

	return cmd
}

// parseSize parses a "W,H,D" flag value.
func parseSize(s string) ([3]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return [3]int{}, fmt.Errorf("size must be W,H,D, got %q", s)
	}
	var out [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n <= 0 {
			return [3]int{}, fmt.Errorf("size component %q must be a positive integer", part)
		}
		out[i] = n
	}
	return out, nil
}

func runExtract(cmd *cobra.Command, input string, opts *extractOpts) error {
	logger := loggerFromContext(cmd.Context())
	track := newProgress(logger)

	g, p, err := world.Load(input)
	if err != nil {
		return err
	}
	logger.Debug("loaded", "input", input,
		"shape", fmt.Sprintf("%dx%dx%d", g.W, g.H, g.D), "palette", p.Len())

	if opts.simplify {
		g, p = voxel.SimplifyPalette(g, p, nil)
	}

	if opts.size != "" {
		target, err := parseSize(opts.size)
		if err != nil {
			return errors.Wrap(errors.ErrCodeSize, err, "invalid --size")
		}
		if g, err = voxel.NormalizeSize(g, target, p, opts.crop); err != nil {
			return err
		}
	} else if opts.crop {
		g, _ = voxel.RemoveAir(g, p)
	}

	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + voxel.CacheExt
	}
	if err := voxel.WriteCache(output, g, p); err != nil {
		return errors.Wrap(errors.ErrCodeStoreSave, err, "writing %q", output)
	}

	track.done(fmt.Sprintf("Extracted %s (%dx%dx%d, %d palette entries)",
		output, g.W, g.H, g.D, p.Len()))
	return nil
}
