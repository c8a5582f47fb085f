package voxel

import (
	"math"
	"strings"

	"github.com/voxelsnap/voxelsnap/pkg/errors"
)

// ResampleMethod selects the interpolation used by Resize.
type ResampleMethod int

const (
	// Nearest picks the nearest source cell. This is the default and the
	// only method that never invents ids absent from the source.
	Nearest ResampleMethod = iota
	// Trilinear interpolates between neighboring cells and rounds the
	// result. Only meaningful when ids are ordinal, which block ids are
	// not in general; provided for parity with downstream tooling.
	Trilinear
)

// RemoveAir crops the grid to the minimal bounding box containing any
// non-air cell and returns the cropped grid plus the (x, y, z) offset of
// the crop within the original grid. An all-air grid yields a 1×1×1 air
// grid and offset (0, 0, 0) so downstream size math never sees an empty
// range.
func RemoveAir(g *Grid, p *Palette) (*Grid, [3]int) {
	air := make(map[int32]bool)
	for _, id := range p.AirIDs() {
		air[id] = true
	}

	minC := [3]int{g.W, g.H, g.D}
	maxC := [3]int{-1, -1, -1}
	for x := 0; x < g.W; x++ {
		for y := 0; y < g.H; y++ {
			for z := 0; z < g.D; z++ {
				if air[g.At(x, y, z)] {
					continue
				}
				c := [3]int{x, y, z}
				for i := 0; i < 3; i++ {
					if c[i] < minC[i] {
						minC[i] = c[i]
					}
					if c[i] > maxC[i] {
						maxC[i] = c[i]
					}
				}
			}
		}
	}

	if maxC[0] < 0 {
		return NewGrid(1, 1, 1), [3]int{0, 0, 0}
	}

	out := NewGrid(maxC[0]-minC[0]+1, maxC[1]-minC[1]+1, maxC[2]-minC[2]+1)
	for x := 0; x < out.W; x++ {
		for y := 0; y < out.H; y++ {
			for z := 0; z < out.D; z++ {
				out.Set(x, y, z, g.At(x+minC[0], y+minC[1], z+minC[2]))
			}
		}
	}
	return out, minC
}

// Resize scales each axis independently to the target size.
func Resize(g *Grid, target [3]int, method ResampleMethod) *Grid {
	out := NewGrid(target[0], target[1], target[2])
	sw, sh, sd := float64(g.W)/float64(target[0]), float64(g.H)/float64(target[1]), float64(g.D)/float64(target[2])

	for x := 0; x < out.W; x++ {
		for y := 0; y < out.H; y++ {
			for z := 0; z < out.D; z++ {
				if method == Trilinear {
					out.Set(x, y, z, sampleTrilinear(g, float64(x)*sw, float64(y)*sh, float64(z)*sd))
					continue
				}
				sx := clampIdx(int(float64(x)*sw), g.W)
				sy := clampIdx(int(float64(y)*sh), g.H)
				sz := clampIdx(int(float64(z)*sd), g.D)
				out.Set(x, y, z, g.At(sx, sy, sz))
			}
		}
	}
	return out
}

func clampIdx(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func sampleTrilinear(g *Grid, fx, fy, fz float64) int32 {
	x0, y0, z0 := clampIdx(int(fx), g.W), clampIdx(int(fy), g.H), clampIdx(int(fz), g.D)
	x1, y1, z1 := clampIdx(x0+1, g.W), clampIdx(y0+1, g.H), clampIdx(z0+1, g.D)
	tx, ty, tz := fx-float64(x0), fy-float64(y0), fz-float64(z0)

	lerp := func(a, b, t float64) float64 { return a + (b-a)*t }
	c00 := lerp(float64(g.At(x0, y0, z0)), float64(g.At(x1, y0, z0)), tx)
	c10 := lerp(float64(g.At(x0, y1, z0)), float64(g.At(x1, y1, z0)), tx)
	c01 := lerp(float64(g.At(x0, y0, z1)), float64(g.At(x1, y0, z1)), tx)
	c11 := lerp(float64(g.At(x0, y1, z1)), float64(g.At(x1, y1, z1)), tx)
	return int32(math.Round(lerp(lerp(c00, c10, ty), lerp(c01, c11, ty), tz)))
}

// PadToSize pads the grid to the target size with emptyID. When center is
// true padding is split evenly around the structure, otherwise it is added
// at the trailing edge. Returns a SIZE_EXCEEDED error if any current axis
// is larger than the target; callers must Resize first.
func PadToSize(g *Grid, target [3]int, emptyID int32, center bool) (*Grid, error) {
	cur := [3]int{g.W, g.H, g.D}
	var before [3]int
	for i := 0; i < 3; i++ {
		if cur[i] > target[i] {
			return nil, errors.New(errors.ErrCodeSize,
				"grid size %v exceeds pad target %v; resize first", cur, target)
		}
		if center {
			before[i] = (target[i] - cur[i]) / 2
		}
	}

	out := NewGrid(target[0], target[1], target[2])
	if emptyID != 0 {
		for i := range out.data {
			out.data[i] = emptyID
		}
	}
	for x := 0; x < g.W; x++ {
		for y := 0; y < g.H; y++ {
			for z := 0; z < g.D; z++ {
				out.Set(x+before[0], y+before[1], z+before[2], g.At(x, y, z))
			}
		}
	}
	return out, nil
}

// NormalizeSize crops air (optionally), then brings the grid to the exact
// target size: oversized grids are resized with nearest-neighbor sampling,
// undersized grids are padded centered with air. Resize and pad are mutually
// exclusive per call.
func NormalizeSize(g *Grid, target [3]int, p *Palette, removeAirFirst bool) (*Grid, error) {
	if removeAirFirst {
		g, _ = RemoveAir(g, p)
	}
	if g.W > target[0] || g.H > target[1] || g.D > target[2] {
		return Resize(g, target, Nearest), nil
	}
	return PadToSize(g, target, 0, true)
}

// Rotate90 rotates the grid k×90° about the given axis (0=X, 1=Y, 2=Z).
func Rotate90(g *Grid, axis, k int) *Grid {
	// Rotation planes per axis, matching numpy's rot90 axes convention.
	planes := [3][2]int{
		{1, 2}, // about X: Y-Z plane
		{0, 2}, // about Y: X-Z plane
		{0, 1}, // about Z: X-Y plane
	}
	a, b := planes[axis][0], planes[axis][1]

	out := g.Clone()
	for n := ((k % 4) + 4) % 4; n > 0; n-- {
		out = rotateOnce(out, a, b)
	}
	return out
}

// rotateOnce rotates 90° from axis a toward axis b.
func rotateOnce(g *Grid, a, b int) *Grid {
	size := [3]int{g.W, g.H, g.D}
	newSize := size
	newSize[a], newSize[b] = size[b], size[a]

	out := NewGrid(newSize[0], newSize[1], newSize[2])
	for x := 0; x < out.W; x++ {
		for y := 0; y < out.H; y++ {
			for z := 0; z < out.D; z++ {
				o := [3]int{x, y, z}
				c := o
				c[a] = o[b]
				c[b] = size[b] - 1 - o[a]
				out.Set(x, y, z, g.At(c[0], c[1], c[2]))
			}
		}
	}
	return out
}

// Flip mirrors the grid along the given axis (0=X, 1=Y, 2=Z).
func Flip(g *Grid, axis int) *Grid {
	size := [3]int{g.W, g.H, g.D}
	out := NewGrid(g.W, g.H, g.D)
	for x := 0; x < g.W; x++ {
		for y := 0; y < g.H; y++ {
			for z := 0; z < g.D; z++ {
				c := [3]int{x, y, z}
				c[axis] = size[axis] - 1 - c[axis]
				out.Set(x, y, z, g.At(c[0], c[1], c[2]))
			}
		}
	}
	return out
}

// BaseName strips a bracketed block-state suffix, e.g.
// "minecraft:oak_stairs[facing=north]" → "minecraft:oak_stairs".
// This is the default merge key for SimplifyPalette.
func BaseName(name string) string {
	if i := strings.Index(name, "["); i >= 0 {
		return name[:i]
	}
	return name
}

// SimplifyPalette collapses ids whose names share a merge key into one id
// and returns a remapped grid plus the smaller palette. When mappings is
// nil every name maps to its BaseName; an explicit name→name mapping
// overrides the default rule (names absent from the mapping are kept
// unchanged). New ids are assigned in old-id order, so air stays at 0.
func SimplifyPalette(g *Grid, p *Palette, mappings map[string]string) (*Grid, *Palette) {
	rename := func(name string) string {
		if mappings == nil {
			return BaseName(name)
		}
		if to, ok := mappings[name]; ok {
			return to
		}
		return name
	}

	np := &Palette{ids: make(map[string]int32)}
	idMap := make(map[int32]int32, p.Len())
	for oldID, oldName := range p.names {
		newName := rename(oldName)
		newID, ok := np.ids[newName]
		if !ok {
			newID = int32(len(np.names))
			np.names = append(np.names, newName)
			np.ids[newName] = newID
		}
		idMap[int32(oldID)] = newID
	}

	out := NewGrid(g.W, g.H, g.D)
	for i, v := range g.data {
		out.data[i] = idMap[v]
	}
	return out, np
}

// SplitPatches returns every cubic sub-grid of side patch, scanning X then
// Y then Z with the given stride (stride <= 0 means patch, i.e. disjoint
// patches). Partial trailing patches are dropped.
func SplitPatches(g *Grid, patch, stride int) []*Grid {
	if stride <= 0 {
		stride = patch
	}
	var patches []*Grid
	for x := 0; x+patch <= g.W; x += stride {
		for y := 0; y+patch <= g.H; y += stride {
			for z := 0; z+patch <= g.D; z += stride {
				sub := NewGrid(patch, patch, patch)
				for i := 0; i < patch; i++ {
					for j := 0; j < patch; j++ {
						for k := 0; k < patch; k++ {
							sub.Set(i, j, k, g.At(x+i, y+j, z+k))
						}
					}
				}
				patches = append(patches, sub)
			}
		}
	}
	return patches
}
