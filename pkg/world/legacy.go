package world

import (
	"fmt"

	"github.com/voxelsnap/voxelsnap/pkg/geom"
	"github.com/voxelsnap/voxelsnap/pkg/voxel"
)

// legacyNBT is the MCEdit .schematic layout: numeric block ids with a
// separate 4-bit data value per block.
type legacyNBT struct {
	Width     int16  `nbt:"Width"`
	Height    int16  `nbt:"Height"`
	Length    int16  `nbt:"Length"`
	Materials string `nbt:"Materials"`
	Blocks    []byte `nbt:"Blocks"`
	Data      []byte `nbt:"Data"`
	AddBlocks []byte `nbt:"AddBlocks"`
}

type legacyStore struct {
	w, h, d int
	blocks  []byte
	add     []byte
}

func openLegacy(path string) (*legacyStore, error) {
	var s legacyNBT
	if err := readGzippedNBT(path, &s); err != nil {
		return nil, err
	}
	w, h, d := int(s.Width), int(s.Height), int(s.Length)
	if w <= 0 || h <= 0 || d <= 0 {
		return nil, fmt.Errorf("schematic has invalid size %dx%dx%d", w, h, d)
	}
	if len(s.Blocks) != w*h*d {
		return nil, fmt.Errorf("block array has %d entries, want %d", len(s.Blocks), w*h*d)
	}
	return &legacyStore{w: w, h: h, d: d, blocks: s.Blocks, add: s.AddBlocks}, nil
}

func (s *legacyStore) Bounds() geom.BBox {
	return geom.NewBBox(0, 0, 0, s.w, s.h, s.d)
}

func (s *legacyStore) GetBlock(x, y, z int) (string, error) {
	if x < 0 || y < 0 || z < 0 || x >= s.w || y >= s.h || z >= s.d {
		return voxel.AirName, nil
	}
	idx := (y*s.d+z)*s.w + x
	id := int(s.blocks[idx])
	// AddBlocks holds the high nibble for ids above 255, one nibble per
	// block in index order.
	if s.add != nil && idx/2 < len(s.add) {
		nibble := s.add[idx/2]
		if idx%2 == 0 {
			id |= int(nibble&0x0F) << 8
		} else {
			id |= int(nibble&0xF0) << 4
		}
	}
	return legacyBlockName(id), nil
}

func (s *legacyStore) Close() error { return nil }

// legacyBlockName maps a numeric pre-flattening block id to its modern
// name. Ids absent from the table keep a stable synthetic name so palette
// encoding still works; such blocks will render as missing textures.
func legacyBlockName(id int) string {
	if name, ok := legacyNames[id]; ok {
		return name
	}
	return fmt.Sprintf("minecraft:legacy_%d", id)
}

// legacyNames covers the common pre-1.13 numeric ids found in MCEdit
// schematics. Data-value variants (wool colors, wood species) collapse to
// the base block.
var legacyNames = map[int]string{
	0:   "minecraft:air",
	1:   "minecraft:stone",
	2:   "minecraft:grass_block",
	3:   "minecraft:dirt",
	4:   "minecraft:cobblestone",
	5:   "minecraft:oak_planks",
	6:   "minecraft:oak_sapling",
	7:   "minecraft:bedrock",
	8:   "minecraft:water",
	9:   "minecraft:water",
	10:  "minecraft:lava",
	11:  "minecraft:lava",
	12:  "minecraft:sand",
	13:  "minecraft:gravel",
	14:  "minecraft:gold_ore",
	15:  "minecraft:iron_ore",
	16:  "minecraft:coal_ore",
	17:  "minecraft:oak_log",
	18:  "minecraft:oak_leaves",
	19:  "minecraft:sponge",
	20:  "minecraft:glass",
	21:  "minecraft:lapis_ore",
	22:  "minecraft:lapis_block",
	23:  "minecraft:dispenser",
	24:  "minecraft:sandstone",
	25:  "minecraft:note_block",
	26:  "minecraft:red_bed",
	27:  "minecraft:powered_rail",
	28:  "minecraft:detector_rail",
	29:  "minecraft:sticky_piston",
	30:  "minecraft:cobweb",
	31:  "minecraft:short_grass",
	32:  "minecraft:dead_bush",
	33:  "minecraft:piston",
	35:  "minecraft:white_wool",
	37:  "minecraft:dandelion",
	38:  "minecraft:poppy",
	39:  "minecraft:brown_mushroom",
	40:  "minecraft:red_mushroom",
	41:  "minecraft:gold_block",
	42:  "minecraft:iron_block",
	43:  "minecraft:smooth_stone_slab",
	44:  "minecraft:stone_slab",
	45:  "minecraft:bricks",
	46:  "minecraft:tnt",
	47:  "minecraft:bookshelf",
	48:  "minecraft:mossy_cobblestone",
	49:  "minecraft:obsidian",
	50:  "minecraft:torch",
	51:  "minecraft:fire",
	52:  "minecraft:spawner",
	53:  "minecraft:oak_stairs",
	54:  "minecraft:chest",
	55:  "minecraft:redstone_wire",
	56:  "minecraft:diamond_ore",
	57:  "minecraft:diamond_block",
	58:  "minecraft:crafting_table",
	59:  "minecraft:wheat",
	60:  "minecraft:farmland",
	61:  "minecraft:furnace",
	62:  "minecraft:furnace",
	63:  "minecraft:oak_sign",
	64:  "minecraft:oak_door",
	65:  "minecraft:ladder",
	66:  "minecraft:rail",
	67:  "minecraft:cobblestone_stairs",
	68:  "minecraft:oak_wall_sign",
	69:  "minecraft:lever",
	70:  "minecraft:stone_pressure_plate",
	71:  "minecraft:iron_door",
	72:  "minecraft:oak_pressure_plate",
	73:  "minecraft:redstone_ore",
	74:  "minecraft:redstone_ore",
	75:  "minecraft:redstone_torch",
	76:  "minecraft:redstone_torch",
	77:  "minecraft:stone_button",
	78:  "minecraft:snow",
	79:  "minecraft:ice",
	80:  "minecraft:snow_block",
	81:  "minecraft:cactus",
	82:  "minecraft:clay",
	83:  "minecraft:sugar_cane",
	84:  "minecraft:jukebox",
	85:  "minecraft:oak_fence",
	86:  "minecraft:pumpkin",
	87:  "minecraft:netherrack",
	88:  "minecraft:soul_sand",
	89:  "minecraft:glowstone",
	90:  "minecraft:nether_portal",
	91:  "minecraft:jack_o_lantern",
	95:  "minecraft:white_stained_glass",
	96:  "minecraft:oak_trapdoor",
	97:  "minecraft:infested_stone",
	98:  "minecraft:stone_bricks",
	99:  "minecraft:brown_mushroom_block",
	100: "minecraft:red_mushroom_block",
	101: "minecraft:iron_bars",
	102: "minecraft:glass_pane",
	103: "minecraft:melon",
	106: "minecraft:vine",
	107: "minecraft:oak_fence_gate",
	108: "minecraft:brick_stairs",
	109: "minecraft:stone_brick_stairs",
	110: "minecraft:mycelium",
	111: "minecraft:lily_pad",
	112: "minecraft:nether_bricks",
	113: "minecraft:nether_brick_fence",
	114: "minecraft:nether_brick_stairs",
	116: "minecraft:enchanting_table",
	121: "minecraft:end_stone",
	123: "minecraft:redstone_lamp",
	125: "minecraft:oak_slab",
	126: "minecraft:oak_slab",
	128: "minecraft:sandstone_stairs",
	129: "minecraft:emerald_ore",
	133: "minecraft:emerald_block",
	134: "minecraft:spruce_stairs",
	135: "minecraft:birch_stairs",
	136: "minecraft:jungle_stairs",
	139: "minecraft:cobblestone_wall",
	145: "minecraft:anvil",
	152: "minecraft:redstone_block",
	155: "minecraft:quartz_block",
	156: "minecraft:quartz_stairs",
	159: "minecraft:white_terracotta",
	161: "minecraft:acacia_leaves",
	162: "minecraft:acacia_log",
	163: "minecraft:acacia_stairs",
	164: "minecraft:dark_oak_stairs",
	169: "minecraft:sea_lantern",
	170: "minecraft:hay_block",
	172: "minecraft:terracotta",
	173: "minecraft:coal_block",
	174: "minecraft:packed_ice",
	179: "minecraft:red_sandstone",
	180: "minecraft:red_sandstone_stairs",
	198: "minecraft:end_rod",
	201: "minecraft:purpur_block",
	203: "minecraft:purpur_stairs",
	206: "minecraft:end_stone_bricks",
	208: "minecraft:dirt_path",
	213: "minecraft:magma_block",
	214: "minecraft:nether_wart_block",
	215: "minecraft:red_nether_bricks",
	216: "minecraft:bone_block",
	251: "minecraft:white_concrete",
	252: "minecraft:white_concrete_powder",
}
