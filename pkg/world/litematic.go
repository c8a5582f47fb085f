package world

import (
	"fmt"
	"math/bits"

	"github.com/voxelsnap/voxelsnap/pkg/geom"
	"github.com/voxelsnap/voxelsnap/pkg/voxel"
)

type litematicNBT struct {
	Version              int32                      `nbt:"Version"`
	MinecraftDataVersion int32                      `nbt:"MinecraftDataVersion"`
	Regions              map[string]litematicRegion `nbt:"Regions"`
}

type litematicRegion struct {
	Position          litematicVec    `nbt:"Position"`
	Size              litematicVec    `nbt:"Size"`
	BlockStatePalette []blockStateNBT `nbt:"BlockStatePalette"`
	BlockStates       []int64         `nbt:"BlockStates"`
}

type litematicVec struct {
	X int32 `nbt:"x"`
	Y int32 `nbt:"y"`
	Z int32 `nbt:"z"`
}

type blockStateNBT struct {
	Name       string            `nbt:"Name"`
	Properties map[string]string `nbt:"Properties"`
}

// litRegion is one decoded region placed in the schematic's coordinate
// space. Litematica stores sizes with possibly negative components; min is
// the normalized low corner and ext the absolute extent.
type litRegion struct {
	min    [3]int
	ext    [3]int
	names  []string
	states []int64
	bits   uint
}

type litematicStore struct {
	bounds  geom.BBox
	regions []litRegion
}

func openLitematic(path string) (*litematicStore, error) {
	var s litematicNBT
	if err := readGzippedNBT(path, &s); err != nil {
		return nil, err
	}
	if len(s.Regions) == 0 {
		return nil, fmt.Errorf("litematic has no regions")
	}

	store := &litematicStore{}
	first := true
	var lo, hi [3]int
	for name, r := range s.Regions {
		reg, err := decodeLitRegion(r)
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", name, err)
		}
		for i := 0; i < 3; i++ {
			if first || reg.min[i] < lo[i] {
				lo[i] = reg.min[i]
			}
			if first || reg.min[i]+reg.ext[i] > hi[i] {
				hi[i] = reg.min[i] + reg.ext[i]
			}
		}
		first = false
		store.regions = append(store.regions, reg)
	}

	// Normalize so the schematic's own coordinate space starts at 0.
	for i := range store.regions {
		for axis := 0; axis < 3; axis++ {
			store.regions[i].min[axis] -= lo[axis]
		}
	}
	store.bounds = geom.NewBBox(0, 0, 0, hi[0]-lo[0], hi[1]-lo[1], hi[2]-lo[2])
	return store, nil
}

func decodeLitRegion(r litematicRegion) (litRegion, error) {
	if len(r.BlockStatePalette) == 0 {
		return litRegion{}, fmt.Errorf("empty block state palette")
	}

	reg := litRegion{states: r.BlockStates}
	pos := [3]int{int(r.Position.X), int(r.Position.Y), int(r.Position.Z)}
	size := [3]int{int(r.Size.X), int(r.Size.Y), int(r.Size.Z)}
	for i := 0; i < 3; i++ {
		if size[i] == 0 {
			return litRegion{}, fmt.Errorf("zero-sized region")
		}
		reg.min[i] = pos[i]
		reg.ext[i] = size[i]
		if size[i] < 0 {
			reg.min[i] = pos[i] + size[i] + 1
			reg.ext[i] = -size[i]
		}
	}

	reg.names = make([]string, len(r.BlockStatePalette))
	for i, bs := range r.BlockStatePalette {
		reg.names[i] = formatBlockName(bs.Name, bs.Properties)
	}

	// Litematica packs indices at max(2, bitlen) bits per entry, tightly
	// across long boundaries.
	reg.bits = uint(bits.Len(uint(len(reg.names) - 1)))
	if reg.bits < 2 {
		reg.bits = 2
	}
	total := reg.ext[0] * reg.ext[1] * reg.ext[2]
	needLongs := (total*int(reg.bits) + 63) / 64
	if len(reg.states) < needLongs {
		return litRegion{}, fmt.Errorf("block states truncated: %d longs, need %d", len(reg.states), needLongs)
	}
	return reg, nil
}

func (s *litematicStore) Bounds() geom.BBox { return s.bounds }

func (s *litematicStore) GetBlock(x, y, z int) (string, error) {
	for i := range s.regions {
		r := &s.regions[i]
		lx, ly, lz := x-r.min[0], y-r.min[1], z-r.min[2]
		if lx < 0 || ly < 0 || lz < 0 || lx >= r.ext[0] || ly >= r.ext[1] || lz >= r.ext[2] {
			continue
		}
		idx := (ly*r.ext[2]+lz)*r.ext[0] + lx
		pi := r.paletteIndex(idx)
		if pi >= len(r.names) {
			return "", fmt.Errorf("palette index %d out of range at (%d, %d, %d)", pi, x, y, z)
		}
		return r.names[pi], nil
	}
	return voxel.AirName, nil
}

func (s *litematicStore) Close() error { return nil }

// paletteIndex extracts the tightly-packed palette index for cell idx.
func (r *litRegion) paletteIndex(idx int) int {
	mask := uint64(1)<<r.bits - 1
	startBit := uint64(idx) * uint64(r.bits)
	long := startBit >> 6
	offset := startBit & 63

	value := uint64(r.states[long]) >> offset
	if offset+uint64(r.bits) > 64 {
		value |= uint64(r.states[long+1]) << (64 - offset)
	}
	return int(value & mask)
}
