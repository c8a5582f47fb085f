package world

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/maxsupermanhd/go-vmc/v764/nbt"

	"github.com/voxelsnap/voxelsnap/pkg/geom"
	"github.com/voxelsnap/voxelsnap/pkg/voxel"
)

// spongeNBT covers both Sponge schematic layouts: version 2 keeps the
// palette and block data at the root, version 3 nests them under a
// "Blocks" compound (and may wrap everything in a "Schematic" compound).
type spongeNBT struct {
	Version   int32            `nbt:"Version"`
	Width     int16            `nbt:"Width"`
	Height    int16            `nbt:"Height"`
	Length    int16            `nbt:"Length"`
	Palette   map[string]int32 `nbt:"Palette"`
	BlockData []byte           `nbt:"BlockData"`
	Blocks    *spongeBlocks    `nbt:"Blocks"`
	Schematic *spongeNBT       `nbt:"Schematic"`
}

type spongeBlocks struct {
	Palette map[string]int32 `nbt:"Palette"`
	Data    []byte           `nbt:"Data"`
}

// spongeStore holds a decoded .schem as a name-indexed dense volume.
type spongeStore struct {
	w, h, d int
	names   []string // palette id -> name
	indices []int32  // x + z*w + y*w*d, Sponge's storage order
}

func openSponge(path string) (*spongeStore, error) {
	var s spongeNBT
	if err := readGzippedNBT(path, &s); err != nil {
		return nil, err
	}
	if s.Schematic != nil {
		s = *s.Schematic
	}

	palette, data := s.Palette, s.BlockData
	if s.Blocks != nil {
		palette, data = s.Blocks.Palette, s.Blocks.Data
	}
	if len(palette) == 0 {
		return nil, fmt.Errorf("sponge schematic has no palette")
	}
	w, h, d := int(s.Width), int(s.Height), int(s.Length)
	if w <= 0 || h <= 0 || d <= 0 {
		return nil, fmt.Errorf("sponge schematic has invalid size %dx%dx%d", w, h, d)
	}

	names := make([]string, len(palette))
	for name, id := range palette {
		if id < 0 || int(id) >= len(names) {
			return nil, fmt.Errorf("palette id %d out of range", id)
		}
		names[id] = name
	}

	indices, err := decodeVarints(data, w*h*d)
	if err != nil {
		return nil, err
	}
	for _, idx := range indices {
		if int(idx) >= len(names) {
			return nil, fmt.Errorf("block index %d exceeds palette size %d", idx, len(names))
		}
	}
	return &spongeStore{w: w, h: h, d: d, names: names, indices: indices}, nil
}

func (s *spongeStore) Bounds() geom.BBox {
	return geom.NewBBox(0, 0, 0, s.w, s.h, s.d)
}

func (s *spongeStore) GetBlock(x, y, z int) (string, error) {
	if x < 0 || y < 0 || z < 0 || x >= s.w || y >= s.h || z >= s.d {
		return voxel.AirName, nil
	}
	return s.names[s.indices[x+z*s.w+y*s.w*s.d]], nil
}

func (s *spongeStore) Close() error { return nil }

// decodeVarints expands Sponge's 7-bit varint block stream into n indices.
func decodeVarints(data []byte, n int) ([]int32, error) {
	out := make([]int32, 0, n)
	var value, shift uint
	for _, b := range data {
		value |= uint(b&0x7F) << shift
		if b&0x80 != 0 {
			shift += 7
			if shift > 28 {
				return nil, fmt.Errorf("varint overflow in block data")
			}
			continue
		}
		out = append(out, int32(value))
		value, shift = 0, 0
	}
	if len(out) != n {
		return nil, fmt.Errorf("block data has %d entries, want %d", len(out), n)
	}
	return out, nil
}

// readGzippedNBT decodes a gzip-compressed NBT file into v.
func readGzippedNBT(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("not gzip-compressed: %w", err)
	}
	defer gz.Close()

	if _, err := nbt.NewDecoder(gz).Decode(v); err != nil {
		return fmt.Errorf("decoding NBT: %w", err)
	}
	return nil
}

// formatBlockName renders a block name with an optional state suffix in
// canonical property order, e.g. "minecraft:oak_stairs[facing=north]".
func formatBlockName(name string, props map[string]string) string {
	if len(props) == 0 {
		return name
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte('[')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(props[k])
	}
	sb.WriteByte(']')
	return sb.String()
}
