package anvil

import (
	"bytes"
	"fmt"
	"math/bits"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zlib"
	"github.com/maxsupermanhd/go-vmc/v764/nbt"
	"github.com/maxsupermanhd/go-vmc/v764/save/region"

	"github.com/voxelsnap/voxelsnap/pkg/geom"
	"github.com/voxelsnap/voxelsnap/pkg/voxel"
)

// dataVersion is the chunk format version written to disk (1.19.4),
// matching the platform version the staging world declares in level.dat.
const dataVersion = 3337

// zlibScheme is the Anvil sector compression scheme id for zlib.
const zlibScheme = 2

const sectionHeight = 16

// chunkNBT is the 1.18+ Anvil chunk layout, limited to the fields a
// renderer needs to build its octree.
type chunkNBT struct {
	DataVersion int32        `nbt:"DataVersion"`
	XPos        int32        `nbt:"xPos"`
	YPos        int32        `nbt:"yPos"`
	ZPos        int32        `nbt:"zPos"`
	Status      string       `nbt:"Status"`
	Sections    []sectionNBT `nbt:"sections"`
}

type sectionNBT struct {
	Y           int8           `nbt:"Y"`
	BlockStates blockStatesNBT `nbt:"block_states"`
	Biomes      biomesNBT      `nbt:"biomes"`
}

type blockStatesNBT struct {
	Palette []paletteEntryNBT `nbt:"palette"`
	Data    []int64           `nbt:"data,omitempty"`
}

type paletteEntryNBT struct {
	Name       string            `nbt:"Name"`
	Properties map[string]string `nbt:"Properties,omitempty"`
}

type biomesNBT struct {
	Palette []string `nbt:"palette"`
}

// writeRegions groups the sparse block map into chunks, encodes each chunk
// as zlib-compressed NBT, and writes one region file per 32×32 chunk area.
func writeRegions(dir string, blocks map[[3]int]string) error {
	chunks := make(map[geom.ChunkCoord]map[[3]int]string)
	for c, name := range blocks {
		cc := geom.ChunkCoord{X: floorDiv(c[0], geom.ChunkSize), Z: floorDiv(c[2], geom.ChunkSize)}
		if chunks[cc] == nil {
			chunks[cc] = make(map[[3]int]string)
		}
		chunks[cc][c] = name
	}

	byRegion := make(map[geom.ChunkCoord][]geom.ChunkCoord)
	for cc := range chunks {
		rc := geom.ChunkCoord{X: floorDiv(cc.X, 32), Z: floorDiv(cc.Z, 32)}
		byRegion[rc] = append(byRegion[rc], cc)
	}

	for rc, ccs := range byRegion {
		r, err := region.Create(filepath.Join(dir, fmt.Sprintf("r.%d.%d.mca", rc.X, rc.Z)))
		if err != nil {
			return err
		}
		for _, cc := range ccs {
			sector, err := encodeChunk(cc, chunks[cc])
			if err != nil {
				r.Close()
				return err
			}
			x, z := region.In(cc.X, cc.Z)
			if err := r.WriteSector(x, z, sector); err != nil {
				r.Close()
				return err
			}
		}
		if err := r.Close(); err != nil {
			return err
		}
	}
	return nil
}

// encodeChunk builds the chunk NBT and wraps it in an Anvil sector payload
// (compression scheme byte followed by the zlib stream).
func encodeChunk(cc geom.ChunkCoord, blocks map[[3]int]string) ([]byte, error) {
	c := chunkNBT{
		DataVersion: dataVersion,
		XPos:        int32(cc.X),
		YPos:        -4,
		ZPos:        int32(cc.Z),
		Status:      "full",
	}

	bySection := make(map[int]map[[3]int]string)
	for pos, name := range blocks {
		sy := floorDiv(pos[1], sectionHeight)
		if bySection[sy] == nil {
			bySection[sy] = make(map[[3]int]string)
		}
		bySection[sy][pos] = name
	}

	sections := make([]int, 0, len(bySection))
	for sy := range bySection {
		sections = append(sections, sy)
	}
	sort.Ints(sections)
	for _, sy := range sections {
		c.Sections = append(c.Sections, encodeSection(cc, sy, bySection[sy]))
	}

	raw, err := nbt.Marshal(c)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteByte(zlibScheme)
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeSection packs one 16×16×16 section. Indices use the Anvil cell
// order (y, z, x) at max(4, bitlen) bits per entry without spanning long
// boundaries (the 1.16+ packing).
func encodeSection(cc geom.ChunkCoord, sy int, blocks map[[3]int]string) sectionNBT {
	palette := []paletteEntryNBT{{Name: voxel.AirName}}
	ids := map[string]int{voxel.AirName: 0}

	indices := make([]int, geom.ChunkSize*sectionHeight*geom.ChunkSize)
	for pos, name := range blocks {
		id, ok := ids[name]
		if !ok {
			id = len(palette)
			palette = append(palette, parseBlockName(name))
			ids[name] = id
		}
		lx := pos[0] - cc.X*geom.ChunkSize
		ly := pos[1] - sy*sectionHeight
		lz := pos[2] - cc.Z*geom.ChunkSize
		indices[(ly*geom.ChunkSize+lz)*geom.ChunkSize+lx] = id
	}

	s := sectionNBT{
		Y:           int8(sy),
		BlockStates: blockStatesNBT{Palette: palette},
		Biomes:      biomesNBT{Palette: []string{"minecraft:plains"}},
	}
	if len(palette) > 1 {
		s.BlockStates.Data = packSection(indices, len(palette))
	}
	return s
}

func packSection(indices []int, paletteLen int) []int64 {
	bitsPer := bits.Len(uint(paletteLen - 1))
	if bitsPer < 4 {
		bitsPer = 4
	}
	perLong := 64 / bitsPer

	out := make([]int64, (len(indices)+perLong-1)/perLong)
	for i, v := range indices {
		long := i / perLong
		shift := uint(i%perLong) * uint(bitsPer)
		out[long] |= int64(uint64(v) << shift)
	}
	return out
}

// parseBlockName splits a canonical block name back into its NBT palette
// form, e.g. "minecraft:oak_stairs[facing=north]" into name + properties.
func parseBlockName(name string) paletteEntryNBT {
	open := strings.Index(name, "[")
	if open < 0 || !strings.HasSuffix(name, "]") {
		return paletteEntryNBT{Name: name}
	}
	entry := paletteEntryNBT{Name: name[:open], Properties: make(map[string]string)}
	for _, kv := range strings.Split(name[open+1:len(name)-1], ",") {
		if eq := strings.Index(kv, "="); eq > 0 {
			entry.Properties[kv[:eq]] = kv[eq+1:]
		}
	}
	return entry
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
