// Package voxel implements the palette-encoded voxel model and its transforms.
//
// A voxel model is a dense 3D grid of integer block-type ids paired with a
// Palette mapping ids to canonical block names. Id 0 is always reserved for
// air. Grids are laid out x-major (width, height, depth) and all transforms
// in this package are pure: they return new grids and never mutate input.
//
// The package also provides a compressed on-disk cache format (see cache.go)
// so repeated loads of the same schematic can skip the world store entirely.
package voxel

// Grid is a dense 3D block-id grid with axes X (width), Y (height), Z (depth).
// Cells hold palette ids; id 0 denotes air.
type Grid struct {
	W, H, D int
	data    []int32
}

// NewGrid allocates a zero-filled (all-air) grid of the given dimensions.
// It panics if any dimension is not positive; callers construct grids from
// validated bounding boxes.
func NewGrid(w, h, d int) *Grid {
	if w <= 0 || h <= 0 || d <= 0 {
		panic("voxel: grid dimensions must be positive")
	}
	return &Grid{W: w, H: h, D: d, data: make([]int32, w*h*d)}
}

func (g *Grid) index(x, y, z int) int {
	return (x*g.H+y)*g.D + z
}

// At returns the block id at (x, y, z).
func (g *Grid) At(x, y, z int) int32 {
	return g.data[g.index(x, y, z)]
}

// Set writes the block id at (x, y, z).
func (g *Grid) Set(x, y, z int, id int32) {
	g.data[g.index(x, y, z)] = id
}

// Size returns the grid dimensions as (width, height, depth).
func (g *Grid) Size() (int, int, int) {
	return g.W, g.H, g.D
}

// Len returns the total number of cells.
func (g *Grid) Len() int {
	return len(g.data)
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	c := &Grid{W: g.W, H: g.H, D: g.D, data: make([]int32, len(g.data))}
	copy(c.data, g.data)
	return c
}

// Equal reports whether two grids have identical dimensions and contents.
func (g *Grid) Equal(o *Grid) bool {
	if g.W != o.W || g.H != o.H || g.D != o.D {
		return false
	}
	for i, v := range g.data {
		if o.data[i] != v {
			return false
		}
	}
	return true
}
