package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/gzip"
	"github.com/maxsupermanhd/go-vmc/v764/nbt"
	"github.com/spf13/cobra"

	"github.com/voxelsnap/voxelsnap/pkg/errors"
	"github.com/voxelsnap/voxelsnap/pkg/voxel"
)

// writeSchem writes a 3x2x3 fixture: stone floor with a stair on top.
func writeSchem(t *testing.T, path string) {
	t.Helper()
	data := make([]byte, 18)
	for i := 0; i < 9; i++ {
		data[i] = 1 // y=0 floor
	}
	data[9] = 2 // stair at (0,1,0)

	fixture := struct {
		Version   int32            `nbt:"Version"`
		Width     int16            `nbt:"Width"`
		Height    int16            `nbt:"Height"`
		Length    int16            `nbt:"Length"`
		Palette   map[string]int32 `nbt:"Palette"`
		BlockData []byte           `nbt:"BlockData"`
	}{
		Version: 2,
		Width:   3, Height: 2, Length: 3,
		Palette: map[string]int32{
			"minecraft:air":                      0,
			"minecraft:stone":                    1,
			"minecraft:oak_stairs[facing=north]": 2,
		},
		BlockData: data,
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	gz := gzip.NewWriter(f)
	if err := nbt.NewEncoder(gz).Encode(fixture, "Schematic"); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
}

// runCmd executes a command with a quiet logger attached to the context.
func runCmd(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	logger := log.New(os.Stderr)
	logger.SetLevel(log.FatalLevel)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(withLogger(context.Background(), logger))
	return out.String(), err
}

func TestExtractRoundTrip(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "hut.schem")
	writeSchem(t, input)

	output := filepath.Join(dir, "hut.vxc")
	if _, err := runCmd(t, newExtractCmd(), input, "-o", output); err != nil {
		t.Fatalf("extract: %v", err)
	}

	g, p, err := voxel.ReadCache(output)
	if err != nil {
		t.Fatalf("reading extracted cache: %v", err)
	}
	// Cropping trims the empty upper corners but keeps the stair layer.
	if g.W != 3 || g.H != 2 || g.D != 3 {
		t.Errorf("shape = %dx%dx%d, want 3x2x3", g.W, g.H, g.D)
	}
	if _, ok := p.Lookup("minecraft:oak_stairs[facing=north]"); !ok {
		t.Error("block states must survive extraction without --simplify")
	}
}

func TestExtractSimplify(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "hut.schem")
	writeSchem(t, input)

	if _, err := runCmd(t, newExtractCmd(), input, "--simplify"); err != nil {
		t.Fatalf("extract: %v", err)
	}

	_, p, err := voxel.ReadCache(filepath.Join(dir, "hut.vxc"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.Lookup("minecraft:oak_stairs"); !ok {
		t.Error("--simplify should collapse the stair state to its base name")
	}
	if _, ok := p.Lookup("minecraft:oak_stairs[facing=north]"); ok {
		t.Error("state-qualified name survived --simplify")
	}
}

func TestExtractNormalizedSize(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "hut.schem")
	writeSchem(t, input)

	if _, err := runCmd(t, newExtractCmd(), input, "--size", "8,8,8"); err != nil {
		t.Fatalf("extract: %v", err)
	}
	g, _, err := voxel.ReadCache(filepath.Join(dir, "hut.vxc"))
	if err != nil {
		t.Fatal(err)
	}
	if g.W != 8 || g.H != 8 || g.D != 8 {
		t.Errorf("shape = %dx%dx%d, want 8x8x8", g.W, g.H, g.D)
	}
}

func TestParseSize(t *testing.T) {
	if got, err := parseSize("32, 16,8"); err != nil || got != [3]int{32, 16, 8} {
		t.Errorf("parseSize = %v, %v", got, err)
	}
	for _, bad := range []string{"", "32", "32,16", "a,b,c", "0,1,1", "-1,2,3"} {
		if _, err := parseSize(bad); err == nil {
			t.Errorf("parseSize(%q) accepted invalid input", bad)
		}
	}
}

func TestExtractMissingInput(t *testing.T) {
	_, err := runCmd(t, newExtractCmd(), filepath.Join(t.TempDir(), "ghost.schem"))
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestInfoPrintsStats(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "hut.schem")
	writeSchem(t, input)

	out, err := runCmd(t, newInfoCmd(), input)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	for _, want := range []string{"shape:", "3x2x3", "minecraft:stone", "air blocks:"} {
		if !strings.Contains(out, want) {
			t.Errorf("info output missing %q:\n%s", want, out)
		}
	}
}

func TestInfoReadsCacheFiles(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "hut.schem")
	writeSchem(t, input)
	if _, err := runCmd(t, newExtractCmd(), input); err != nil {
		t.Fatal(err)
	}

	out, err := runCmd(t, newInfoCmd(), filepath.Join(dir, "hut.vxc"))
	if err != nil {
		t.Fatalf("info on cache: %v", err)
	}
	if !strings.Contains(out, "total blocks:") {
		t.Errorf("cache info output incomplete:\n%s", out)
	}
}

func TestRenderRequiresDirectories(t *testing.T) {
	// A fake renderer home with a core jar passes CheckSetup only if a JVM
	// exists; the directory check fires first so this stays hermetic.
	_, err := runCmd(t, newRenderCmd(), "--chunky-home", t.TempDir())
	if err == nil {
		t.Fatal("render without --input-dir/--output-dir must fail")
	}
}

func TestRenderCheckMissingInstall(t *testing.T) {
	_, err := runCmd(t, newRenderCmd(), "--check", "--chunky-home", t.TempDir())
	if !errors.Is(err, errors.ErrCodeRendererMissing) {
		t.Fatalf("expected RENDERER_MISSING, got %v", err)
	}
}

func TestSceneConfigFlagOverrides(t *testing.T) {
	opts := renderOpts{width: 1024, spp: 32}
	cfg, err := opts.sceneConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 1024 || cfg.SPP != 32 {
		t.Errorf("overrides lost: width %d spp %d", cfg.Width, cfg.SPP)
	}
	if cfg.Height != 512 || cfg.FOV != 70 {
		t.Errorf("defaults lost: height %d fov %v", cfg.Height, cfg.FOV)
	}
}
