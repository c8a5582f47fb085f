// Package stage places a loaded structure into an empty staging world so
// downstream geometry (camera, chunk enumeration) can operate in absolute
// world coordinates. The staging coordinator is the only code that
// translates between schematic-local and world coordinate spaces.
package stage

import (
	"github.com/voxelsnap/voxelsnap/pkg/errors"
	"github.com/voxelsnap/voxelsnap/pkg/geom"
	"github.com/voxelsnap/voxelsnap/pkg/voxel"
	"github.com/voxelsnap/voxelsnap/pkg/world/anvil"
)

// Result reports where a structure landed in world space.
type Result struct {
	// Offset is the translation applied to every source coordinate.
	Offset [3]int
	// WorldBounds is the absolute bounding box of the pasted structure.
	WorldBounds geom.BBox
}

// Stage creates an empty world at dir, pastes the source model into it,
// persists the world, and returns the paste offset plus the structure's
// absolute bounds. When centerAtOrigin is true the structure's horizontal
// center lands at world X=0, Z=0 while its vertical position is preserved
// unchanged; otherwise the source coordinates are used as-is.
//
// Air cells are skipped during the paste so the void world stays sparse.
// The world handle is released before returning on both success and error
// paths.
func Stage(dir string, g *voxel.Grid, p *voxel.Palette, src geom.BBox, centerAtOrigin bool) (Result, error) {
	var offset [3]int
	if centerAtOrigin {
		size := src.Size()
		offset = [3]int{
			-(src.Min[0] + size[0]/2),
			0, // Y is preserved, not centered
			-(src.Min[2] + size[2]/2),
		}
	}
	res := Result{Offset: offset, WorldBounds: src.Translate(offset)}

	w, err := anvil.Create(dir)
	if err != nil {
		return Result{}, err
	}
	defer w.Close()

	air := make(map[int32]bool)
	for _, id := range p.AirIDs() {
		air[id] = true
	}

	for x := 0; x < g.W; x++ {
		for y := 0; y < g.H; y++ {
			for z := 0; z < g.D; z++ {
				id := g.At(x, y, z)
				if air[id] {
					continue
				}
				name, ok := p.Name(id)
				if !ok {
					return Result{}, errors.New(errors.ErrCodeInternal,
						"grid id %d has no palette entry", id)
				}
				wx := src.Min[0] + x + offset[0]
				wy := src.Min[1] + y + offset[1]
				wz := src.Min[2] + z + offset[2]
				if err := w.SetBlock(wx, wy, wz, name); err != nil {
					return Result{}, err
				}
			}
		}
	}

	if err := w.Save(); err != nil {
		return Result{}, err
	}
	return res, nil
}
