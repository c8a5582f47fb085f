package voxel

import "strings"

// AirName is the canonical block name reserved for palette id 0.
const AirName = "minecraft:air"

// Palette is an append-only bijective mapping between block-type ids and
// canonical block names. Ids are assigned in first-seen order; id 0 is
// always AirName and is reserved at construction.
type Palette struct {
	names []string
	ids   map[string]int32
}

// NewPalette creates a palette with id 0 bound to AirName.
func NewPalette() *Palette {
	p := &Palette{ids: make(map[string]int32)}
	p.names = append(p.names, AirName)
	p.ids[AirName] = 0
	return p
}

// Assign returns the id for name, allocating the next id if unseen.
func (p *Palette) Assign(name string) int32 {
	if id, ok := p.ids[name]; ok {
		return id
	}
	id := int32(len(p.names))
	p.names = append(p.names, name)
	p.ids[name] = id
	return id
}

// Lookup returns the id for name, if present.
func (p *Palette) Lookup(name string) (int32, bool) {
	id, ok := p.ids[name]
	return id, ok
}

// Name returns the block name for id, if present.
func (p *Palette) Name(id int32) (string, bool) {
	if id < 0 || int(id) >= len(p.names) {
		return "", false
	}
	return p.names[id], true
}

// Len returns the number of entries in the palette.
func (p *Palette) Len() int {
	return len(p.names)
}

// Names returns the block names in id order.
func (p *Palette) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// AirIDs returns every id whose block name denotes air. Besides plain
// minecraft:air this catches variants like cave_air and void_air.
func (p *Palette) AirIDs() []int32 {
	var ids []int32
	for id, name := range p.names {
		if IsAirName(name) {
			ids = append(ids, int32(id))
		}
	}
	return ids
}

// IsAirName reports whether a block name denotes an empty/air block.
func IsAirName(name string) bool {
	return strings.Contains(strings.ToLower(name), "air")
}

// Clone returns a deep copy of the palette.
func (p *Palette) Clone() *Palette {
	c := &Palette{
		names: make([]string, len(p.names)),
		ids:   make(map[string]int32, len(p.ids)),
	}
	copy(c.names, p.names)
	for k, v := range p.ids {
		c.ids[k] = v
	}
	return c
}
