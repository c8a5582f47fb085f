package geom

import (
	"sort"
	"testing"
)

func sortChunks(cs []ChunkCoord) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].X != cs[j].X {
			return cs[i].X < cs[j].X
		}
		return cs[i].Z < cs[j].Z
	})
}

func TestChunksForCoversBox(t *testing.T) {
	got := ChunksFor(NewBBox(0, 0, 0, 32, 64, 48))
	want := []ChunkCoord{
		{0, 0}, {0, 1}, {0, 2},
		{1, 0}, {1, 1}, {1, 2},
	}
	sortChunks(got)
	if len(got) != len(want) {
		t.Fatalf("chunk count = %d, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestChunksForNegativeCoordinates(t *testing.T) {
	// A 2x2-block box straddling the origin touches all four chunks
	// around it.
	got := ChunksFor(NewBBox(-1, 0, -1, 1, 10, 1))
	want := []ChunkCoord{{-1, -1}, {-1, 0}, {0, -1}, {0, 0}}
	sortChunks(got)
	if len(got) != len(want) {
		t.Fatalf("chunk count = %d, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestChunksForMirrorSymmetry(t *testing.T) {
	b := NewBBox(3, 0, 7, 40, 10, 25)
	mirrored := NewBBox(-40, 0, -25, -3, 10, -7)

	orig := ChunksFor(b)
	mirror := ChunksFor(mirrored)
	if len(orig) != len(mirror) {
		t.Fatalf("mirror count = %d, want %d", len(mirror), len(orig))
	}

	// Negating a chunk coordinate c covers blocks [-16(c+1), -16c), so the
	// mirrored set is {(-x-1, -z-1)}.
	set := make(map[ChunkCoord]bool, len(mirror))
	for _, c := range mirror {
		set[c] = true
	}
	for _, c := range orig {
		m := ChunkCoord{X: -c.X - 1, Z: -c.Z - 1}
		if !set[m] {
			t.Errorf("mirrored set missing %v (from %v)", m, c)
		}
	}
}

func TestChunksForDeduplicated(t *testing.T) {
	got := ChunksFor(NewBBox(-33, 0, -33, 33, 5, 33))
	seen := make(map[ChunkCoord]bool, len(got))
	for _, c := range got {
		if seen[c] {
			t.Fatalf("duplicate chunk %v", c)
		}
		seen[c] = true
	}
	if len(got) != 6*6 {
		t.Errorf("chunk count = %d, want 36", len(got))
	}
}

func TestFloorDiv(t *testing.T) {
	cases := []struct{ a, b, want int }{
		{0, 16, 0},
		{15, 16, 0},
		{16, 16, 1},
		{-1, 16, -1},
		{-16, 16, -1},
		{-17, 16, -2},
	}
	for _, c := range cases {
		if got := floorDiv(c.a, c.b); got != c.want {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}
