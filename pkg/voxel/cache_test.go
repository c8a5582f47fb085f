package voxel

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/voxelsnap/voxelsnap/pkg/errors"
)

func TestCacheRoundTrip(t *testing.T) {
	p := NewPalette()
	stone := p.Assign("minecraft:stone")
	stairs := p.Assign("minecraft:oak_stairs[facing=north]")

	g := NewGrid(3, 4, 5)
	g.Set(0, 0, 0, stone)
	g.Set(2, 3, 4, stairs)
	g.Set(1, 2, 3, stone)

	path := filepath.Join(t.TempDir(), "nested", "castle.vxc")
	if err := WriteCache(path, g, p); err != nil {
		t.Fatalf("WriteCache: %v", err)
	}

	got, gotPal, err := ReadCache(path)
	if err != nil {
		t.Fatalf("ReadCache: %v", err)
	}
	if !got.Equal(g) {
		t.Error("grid did not survive the round trip")
	}
	if gotPal.Len() != p.Len() {
		t.Fatalf("palette size = %d, want %d", gotPal.Len(), p.Len())
	}
	for id := int32(0); int(id) < p.Len(); id++ {
		want, _ := p.Name(id)
		if name, _ := gotPal.Name(id); name != want {
			t.Errorf("palette id %d = %q, want %q", id, name, want)
		}
	}
}

func TestReadCacheMissing(t *testing.T) {
	_, _, err := ReadCache(filepath.Join(t.TempDir(), "nope.vxc"))
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestDecodeRejectsCorruption(t *testing.T) {
	p := NewPalette()
	g := NewGrid(2, 2, 2)
	g.Set(0, 0, 0, 0)

	var buf bytes.Buffer
	if err := Encode(&buf, g, p); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Flip a checksum byte: decode must refuse the payload.
	data := buf.Bytes()
	data[5] ^= 0xFF
	if _, _, err := Decode(bytes.NewReader(data)); err == nil {
		t.Error("Decode should reject a checksum mismatch")
	}

	if _, _, err := Decode(bytes.NewReader([]byte("not a cache"))); err == nil {
		t.Error("Decode should reject a bad magic header")
	}
}
