package stage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/voxelsnap/voxelsnap/pkg/errors"
	"github.com/voxelsnap/voxelsnap/pkg/geom"
	"github.com/voxelsnap/voxelsnap/pkg/voxel"
)

func testModel(t *testing.T) (*voxel.Grid, *voxel.Palette) {
	t.Helper()
	p := voxel.NewPalette()
	stone := p.Assign("minecraft:stone")

	// 8x4x6 with stone at the two opposite corners.
	g := voxel.NewGrid(8, 4, 6)
	g.Set(0, 0, 0, stone)
	g.Set(7, 3, 5, stone)
	return g, p
}

func TestStageCentersHorizontally(t *testing.T) {
	g, p := testModel(t)
	src := geom.NewBBox(0, 10, 0, 8, 14, 6)

	res, err := Stage(filepath.Join(t.TempDir(), "world"), g, p, src, true)
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}

	// Horizontal center (min + size/2) must land at 0; Y is untouched.
	if res.Offset != [3]int{-4, 0, -3} {
		t.Errorf("offset = %v, want [-4 0 -3]", res.Offset)
	}
	want := geom.NewBBox(-4, 10, -3, 4, 14, 3)
	if res.WorldBounds != want {
		t.Errorf("world bounds = %v, want %v", res.WorldBounds, want)
	}

	// The world center of the returned box sits on the origin column.
	c := res.WorldBounds.Center()
	if c.X() != 0 || c.Z() != 0 {
		t.Errorf("world center = %v, want X=0 Z=0", c)
	}
	if c.Y() != 12 {
		t.Errorf("world center Y = %v, want 12 (preserved)", c.Y())
	}
}

func TestStageWithoutCentering(t *testing.T) {
	g, p := testModel(t)
	src := geom.NewBBox(100, 0, 200, 108, 4, 206)

	res, err := Stage(filepath.Join(t.TempDir(), "world"), g, p, src, false)
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if res.Offset != [3]int{0, 0, 0} {
		t.Errorf("offset = %v, want zero", res.Offset)
	}
	if res.WorldBounds != src {
		t.Errorf("world bounds = %v, want source box %v", res.WorldBounds, src)
	}
}

func TestStagePersistsWorld(t *testing.T) {
	g, p := testModel(t)
	dir := filepath.Join(t.TempDir(), "world")

	if _, err := Stage(dir, g, p, geom.NewBBox(0, 0, 0, 8, 4, 6), true); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "level.dat")); err != nil {
		t.Error("staged world missing level.dat")
	}
	entries, err := os.ReadDir(filepath.Join(dir, "region"))
	if err != nil || len(entries) == 0 {
		t.Error("staged world has no region files")
	}
}

func TestStageCreateFailure(t *testing.T) {
	g, p := testModel(t)
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Stage(filepath.Join(blocker, "world"), g, p, geom.NewBBox(0, 0, 0, 8, 4, 6), true)
	if !errors.Is(err, errors.ErrCodeStoreCreate) {
		t.Fatalf("expected STORE_CREATE, got %v", err)
	}
}
