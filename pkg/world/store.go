// Package world reads sparse structured-block sources (schematic files) and
// extracts them into palette-encoded voxel models. It defines the world-store
// boundary used by the rest of the pipeline: schematic formats implement the
// read-only Store, and the Anvil staging world (see the anvil subpackage)
// implements MutableStore on top of it.
//
// Supported input formats:
//   - .schem (Sponge schematic, versions 2 and 3)
//   - .schematic (MCEdit legacy format, numeric block ids)
//   - .litematic (Litematica format)
package world

import "github.com/voxelsnap/voxelsnap/pkg/geom"

// Store is a read handle over a bounded block volume. Coordinates are
// absolute within the store's own coordinate space; Bounds reports the
// inclusive-min/exclusive-max box containing every block.
type Store interface {
	Bounds() geom.BBox
	// GetBlock returns the canonical block name at (x, y, z). Coordinates
	// outside Bounds return air.
	GetBlock(x, y, z int) (string, error)
	// Close releases the underlying handle. Safe to call more than once.
	Close() error
}

// MutableStore is a writable world that can be persisted to durable storage.
type MutableStore interface {
	Store
	SetBlock(x, y, z int, name string) error
	Save() error
}
