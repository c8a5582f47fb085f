package voxel

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/voxelsnap/voxelsnap/pkg/errors"
)

// CacheExt is the file extension for cached voxel models.
const CacheExt = ".vxc"

// cacheMagic identifies a voxel cache file. The trailing digit is the
// container version.
var cacheMagic = [4]byte{'V', 'X', 'C', '1'}

// Cache container layout:
//
//	magic (4 bytes) | xxhash64 of payload (8 bytes, LE) | zstd(payload)
//
// payload:
//
//	width, height, depth (uint32 LE each)
//	palette JSON length (uint32 LE) + palette JSON ({"id": "name"})
//	grid cells (int32 LE, x-major)
//
// Palette keys are strings in the persisted form and are converted back to
// integer ids on load.

// Encode writes the grid and palette to w in the cache container format.
func Encode(w io.Writer, g *Grid, p *Palette) error {
	palette := make(map[string]string, p.Len())
	for id, name := range p.names {
		palette[strconv.Itoa(id)] = name
	}
	palJSON, err := json.Marshal(palette)
	if err != nil {
		return err
	}

	var payload bytes.Buffer
	for _, dim := range []int{g.W, g.H, g.D} {
		if err := binary.Write(&payload, binary.LittleEndian, uint32(dim)); err != nil {
			return err
		}
	}
	if err := binary.Write(&payload, binary.LittleEndian, uint32(len(palJSON))); err != nil {
		return err
	}
	payload.Write(palJSON)
	if err := binary.Write(&payload, binary.LittleEndian, g.data); err != nil {
		return err
	}

	if _, err := w.Write(cacheMagic[:]); err != nil {
		return err
	}
	var sum [8]byte
	binary.LittleEndian.PutUint64(sum[:], xxhash.Sum64(payload.Bytes()))
	if _, err := w.Write(sum[:]); err != nil {
		return err
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	compressed := enc.EncodeAll(payload.Bytes(), nil)
	if err := enc.Close(); err != nil {
		return err
	}
	_, err = w.Write(compressed)
	return err
}

// Decode reads a cache container and reconstructs the grid and palette.
func Decode(r io.Reader) (*Grid, *Palette, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	if len(data) < 12 || !bytes.Equal(data[:4], cacheMagic[:]) {
		return nil, nil, fmt.Errorf("not a voxel cache file")
	}
	wantSum := binary.LittleEndian.Uint64(data[4:12])

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, nil, err
	}
	defer dec.Close()
	payload, err := dec.DecodeAll(data[12:], nil)
	if err != nil {
		return nil, nil, err
	}
	if xxhash.Sum64(payload) != wantSum {
		return nil, nil, fmt.Errorf("voxel cache checksum mismatch")
	}

	buf := bytes.NewReader(payload)
	var w, h, d, palLen uint32
	for _, v := range []*uint32{&w, &h, &d, &palLen} {
		if err := binary.Read(buf, binary.LittleEndian, v); err != nil {
			return nil, nil, err
		}
	}

	palJSON := make([]byte, palLen)
	if _, err := io.ReadFull(buf, palJSON); err != nil {
		return nil, nil, err
	}
	var persisted map[string]string
	if err := json.Unmarshal(palJSON, &persisted); err != nil {
		return nil, nil, err
	}
	p, err := paletteFromStringKeys(persisted)
	if err != nil {
		return nil, nil, err
	}

	g := NewGrid(int(w), int(h), int(d))
	if err := binary.Read(buf, binary.LittleEndian, g.data); err != nil {
		return nil, nil, err
	}
	return g, p, nil
}

// paletteFromStringKeys rebuilds a palette from the persisted string-keyed
// form. Ids must be dense starting at 0.
func paletteFromStringKeys(persisted map[string]string) (*Palette, error) {
	names := make([]string, len(persisted))
	for key, name := range persisted {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("palette key %q is not an id: %w", key, err)
		}
		if id < 0 || id >= len(names) {
			return nil, fmt.Errorf("palette id %d out of range (size %d)", id, len(names))
		}
		names[id] = name
	}
	p := &Palette{names: names, ids: make(map[string]int32, len(names))}
	for id, name := range names {
		if name == "" {
			return nil, fmt.Errorf("palette has no entry for id %d", id)
		}
		p.ids[name] = int32(id)
	}
	return p, nil
}

// WriteCache persists the grid and palette to path, creating parent
// directories as needed.
func WriteCache(path string, g *Grid, p *Palette) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, g, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadCache loads a previously persisted grid and palette from path.
func ReadCache(path string) (*Grid, *Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.New(errors.ErrCodeNotFound, "voxel cache not found: %s", path)
		}
		return nil, nil, err
	}
	defer f.Close()

	g, p, err := Decode(f)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeLoad, err, "reading voxel cache %s", path)
	}
	return g, p, nil
}
