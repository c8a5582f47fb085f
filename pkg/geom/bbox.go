// Package geom provides the camera-framing and chunk-enumeration geometry
// used to drive the renderer: axis-aligned bounding boxes, the closed-form
// camera placement that frames a box at a given field of view, and the
// mapping from block coordinates to 16×16 chunk coordinates.
package geom

import "github.com/go-gl/mathgl/mgl64"

// BBox is an axis-aligned box with inclusive minimum and exclusive maximum
// block coordinates. The same type is used for schematic-local (0-based)
// and absolute world coordinates; the staging coordinator is the only code
// that translates between the two.
type BBox struct {
	Min, Max [3]int
}

// NewBBox builds a box from min/max coordinate triples.
func NewBBox(minX, minY, minZ, maxX, maxY, maxZ int) BBox {
	return BBox{Min: [3]int{minX, minY, minZ}, Max: [3]int{maxX, maxY, maxZ}}
}

// Size returns the box extent per axis (max − min).
func (b BBox) Size() [3]int {
	return [3]int{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}

// Center returns the real-valued center point of the box.
func (b BBox) Center() mgl64.Vec3 {
	s := b.Size()
	return mgl64.Vec3{
		float64(b.Min[0]) + float64(s[0])/2,
		float64(b.Min[1]) + float64(s[1])/2,
		float64(b.Min[2]) + float64(s[2])/2,
	}
}

// Translate returns the box shifted by offset.
func (b BBox) Translate(offset [3]int) BBox {
	var out BBox
	for i := 0; i < 3; i++ {
		out.Min[i] = b.Min[i] + offset[i]
		out.Max[i] = b.Max[i] + offset[i]
	}
	return out
}

// Corners returns the eight vertices of the box.
func (b BBox) Corners() [8]mgl64.Vec3 {
	var out [8]mgl64.Vec3
	i := 0
	for _, x := range [2]int{b.Min[0], b.Max[0]} {
		for _, y := range [2]int{b.Min[1], b.Max[1]} {
			for _, z := range [2]int{b.Min[2], b.Max[2]} {
				out[i] = mgl64.Vec3{float64(x), float64(y), float64(z)}
				i++
			}
		}
	}
	return out
}
