// Package anvil implements a writable void world in the Minecraft Anvil
// format, used as the staging target the external renderer loads chunks
// from. Blocks are held sparsely in memory and flushed to region files plus
// a level.dat on Save.
package anvil

import (
	"os"
	"path/filepath"

	"github.com/voxelsnap/voxelsnap/pkg/errors"
	"github.com/voxelsnap/voxelsnap/pkg/geom"
	"github.com/voxelsnap/voxelsnap/pkg/voxel"
)

// World is an in-memory void world persisted as Anvil region files.
// It implements world.MutableStore. Not safe for concurrent use; each
// render job owns exactly one staging world.
type World struct {
	dir    string
	blocks map[[3]int]string
	min    [3]int
	max    [3]int // inclusive
	closed bool
}

// Create initializes an empty world rooted at dir. The directory tree is
// created immediately so creation failures surface before any staging
// work; block data is only written on Save.
func Create(dir string) (*World, error) {
	if err := os.MkdirAll(filepath.Join(dir, "region"), 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreCreate, err, "creating world at %s", dir)
	}
	return &World{dir: dir, blocks: make(map[[3]int]string)}, nil
}

// Dir returns the world's root directory.
func (w *World) Dir() string { return w.dir }

// Bounds returns the box containing every placed block. An empty world
// yields the zero box.
func (w *World) Bounds() geom.BBox {
	if len(w.blocks) == 0 {
		return geom.BBox{}
	}
	return geom.BBox{
		Min: w.min,
		Max: [3]int{w.max[0] + 1, w.max[1] + 1, w.max[2] + 1},
	}
}

// GetBlock returns the block name at (x, y, z); unset cells are air.
func (w *World) GetBlock(x, y, z int) (string, error) {
	if name, ok := w.blocks[[3]int{x, y, z}]; ok {
		return name, nil
	}
	return voxel.AirName, nil
}

// SetBlock places a block at absolute world coordinates. Setting air
// removes any previous block.
func (w *World) SetBlock(x, y, z int, name string) error {
	c := [3]int{x, y, z}
	if voxel.IsAirName(name) {
		delete(w.blocks, c)
		return nil
	}
	if len(w.blocks) == 0 {
		w.min, w.max = c, c
	} else {
		for i := 0; i < 3; i++ {
			if c[i] < w.min[i] {
				w.min[i] = c[i]
			}
			if c[i] > w.max[i] {
				w.max[i] = c[i]
			}
		}
	}
	w.blocks[c] = name
	return nil
}

// Save flushes the world to durable storage: one region file per 32×32
// chunk area plus a minimal level.dat.
func (w *World) Save() error {
	if err := writeLevelDat(w.dir); err != nil {
		return errors.Wrap(errors.ErrCodeStoreSave, err, "writing level.dat in %s", w.dir)
	}
	if err := writeRegions(filepath.Join(w.dir, "region"), w.blocks); err != nil {
		return errors.Wrap(errors.ErrCodeStoreSave, err, "writing region files in %s", w.dir)
	}
	return nil
}

// Close releases the in-memory block map. Safe to call more than once.
func (w *World) Close() error {
	w.blocks = nil
	w.closed = true
	return nil
}
