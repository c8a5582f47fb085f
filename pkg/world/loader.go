package world

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/voxelsnap/voxelsnap/pkg/errors"
	"github.com/voxelsnap/voxelsnap/pkg/voxel"
)

// SupportedFormats lists the recognized schematic file extensions.
var SupportedFormats = []string{".schem", ".schematic", ".litematic"}

// Open opens a schematic file as a read-only Store. It fails with
// NOT_FOUND if the path does not exist, UNSUPPORTED_FORMAT for an
// unrecognized extension, and LOAD_FAILED wrapping any parse error.
func Open(path string) (Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeNotFound, "schematic not found: %s", path)
	}

	var (
		s   Store
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".schem":
		s, err = openSponge(path)
	case ".schematic":
		s, err = openLegacy(path)
	case ".litematic":
		s, err = openLitematic(path)
	default:
		return nil, errors.New(errors.ErrCodeUnsupportedFormat,
			"unsupported format %q (supported: %s)", ext, strings.Join(SupportedFormats, ", "))
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoad, err, "loading %s", path)
	}
	return s, nil
}

// Load reads a schematic into a dense voxel grid plus its palette. Id 0 is
// reserved for air before the scan, ids are assigned in first-seen scan
// order (x-major), and the store handle is released before returning on
// both success and error paths.
func Load(path string) (*voxel.Grid, *voxel.Palette, error) {
	s, err := Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer s.Close()
	return Extract(s)
}

// Extract scans every coordinate in the store's bounds and encodes the
// blocks into a grid sized to the bounds. The caller keeps ownership of
// the store.
func Extract(s Store) (*voxel.Grid, *voxel.Palette, error) {
	b := s.Bounds()
	size := b.Size()
	if size[0] <= 0 || size[1] <= 0 || size[2] <= 0 {
		return nil, nil, errors.New(errors.ErrCodeLoad, "schematic bounds are empty: %v", b)
	}

	g := voxel.NewGrid(size[0], size[1], size[2])
	p := voxel.NewPalette()
	for x := b.Min[0]; x < b.Max[0]; x++ {
		for y := b.Min[1]; y < b.Max[1]; y++ {
			for z := b.Min[2]; z < b.Max[2]; z++ {
				name, err := s.GetBlock(x, y, z)
				if err != nil {
					return nil, nil, errors.Wrap(errors.ErrCodeLoad, err,
						"reading block (%d, %d, %d)", x, y, z)
				}
				g.Set(x-b.Min[0], y-b.Min[1], z-b.Min[2], p.Assign(name))
			}
		}
	}
	return g, p, nil
}
