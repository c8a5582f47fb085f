package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voxelsnap/voxelsnap/pkg/voxel"
	"github.com/voxelsnap/voxelsnap/pkg/world"
)

// newInfoCmd creates the info command, which prints occupancy statistics
// for a schematic or a voxel cache file.
func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [file]",
		Short: "Print block statistics for a schematic or cache file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, p, err := loadModel(args[0])
			if err != nil {
				return err
			}
			printStats(cmd, voxel.ComputeStats(g, p))
			return nil
		},
	}
}

// loadModel reads either a schematic or a previously extracted cache file,
// dispatching on the extension.
func loadModel(path string) (*voxel.Grid, *voxel.Palette, error) {
	if strings.EqualFold(filepath.Ext(path), voxel.CacheExt) {
		return voxel.ReadCache(path)
	}
	return world.Load(path)
}

func printStats(cmd *cobra.Command, s voxel.Stats) {
	cmd.Printf("shape:         %dx%dx%d\n", s.Shape[0], s.Shape[1], s.Shape[2])
	cmd.Printf("total blocks:  %d\n", s.TotalBlocks)
	cmd.Printf("unique blocks: %d\n", s.UniqueBlocks)
	cmd.Printf("solid blocks:  %d\n", s.SolidBlocks)
	cmd.Printf("air blocks:    %d (%.1f%%)\n", s.AirBlocks, s.AirPercent)
	if len(s.TopBlocks) > 0 {
		cmd.Println("top blocks:")
		for _, b := range s.TopBlocks {
			cmd.Printf("  %-50s %8d (%.1f%%)\n", b.Name, b.Count, b.Percent)
		}
	}
}
