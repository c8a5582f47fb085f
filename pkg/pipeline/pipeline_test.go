package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/gzip"
	"github.com/maxsupermanhd/go-vmc/v764/nbt"

	"github.com/voxelsnap/voxelsnap/pkg/errors"
	"github.com/voxelsnap/voxelsnap/pkg/scene"
)

// writeSchem writes a minimal 2x2x2 stone box fixture.
func writeSchem(t *testing.T, path string) {
	t.Helper()
	fixture := struct {
		Version   int32            `nbt:"Version"`
		Width     int16            `nbt:"Width"`
		Height    int16            `nbt:"Height"`
		Length    int16            `nbt:"Length"`
		Palette   map[string]int32 `nbt:"Palette"`
		BlockData []byte           `nbt:"BlockData"`
	}{
		Version: 2,
		Width:   2, Height: 2, Length: 2,
		Palette: map[string]int32{
			"minecraft:air":   0,
			"minecraft:stone": 1,
		},
		BlockData: []byte{1, 1, 1, 1, 1, 0, 0, 1},
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
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

// fakeRenderer records render calls and writes output files, failing for
// inputs matching failSubstr.
type fakeRenderer struct {
	failSubstr string

	mu    sync.Mutex
	calls []string

	concurrent    atomic.Int32
	maxConcurrent atomic.Int32
}

func (f *fakeRenderer) Render(ctx context.Context, sceneDir, outputPath string) error {
	cur := f.concurrent.Add(1)
	defer f.concurrent.Add(-1)
	for {
		peak := f.maxConcurrent.Load()
		if cur <= peak || f.maxConcurrent.CompareAndSwap(peak, cur) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, sceneDir)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeRenderTimeout, err, "canceled")
	}
	if f.failSubstr != "" && strings.Contains(outputPath, f.failSubstr) {
		return errors.New(errors.ErrCodeRenderProcess, "simulated failure for %s", outputPath)
	}
	return os.WriteFile(outputPath, []byte("png"), 0o644)
}

func quietLogger() *log.Logger {
	logger := log.New(os.Stderr)
	logger.SetLevel(log.FatalLevel)
	return logger
}

func TestDiscoverSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	writeSchem(t, filepath.Join(dir, "b.schem"))
	writeSchem(t, filepath.Join(dir, "nested", "a.schem"))
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("found %d files, want 2: %v", len(files), files)
	}
	if filepath.Base(files[0]) != "b.schem" && filepath.Base(files[1]) != "b.schem" {
		t.Errorf("missing expected file in %v", files)
	}
	for i := 1; i < len(files); i++ {
		if files[i-1] > files[i] {
			t.Errorf("results not sorted: %v", files)
		}
	}
}

func newOptions(t *testing.T, r SceneRenderer) Options {
	t.Helper()
	base := t.TempDir()
	return Options{
		InputDir:  filepath.Join(base, "in"),
		OutputDir: filepath.Join(base, "out"),
		TempDir:   filepath.Join(base, "tmp"),
		Renderer:  r,
		Scene:     scene.DefaultConfig(),
		Workers:   2,
		Logger:    quietLogger(),
	}
}

func TestRunRendersAllViews(t *testing.T) {
	fake := &fakeRenderer{}
	opts := newOptions(t, fake)
	writeSchem(t, filepath.Join(opts.InputDir, "tower.schem"))

	p, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := Summary{Processed: 1, Succeeded: 1, ImagesCreated: 4}
	if summary.Processed != want.Processed || summary.Succeeded != want.Succeeded ||
		summary.Failed != 0 || summary.ImagesCreated != want.ImagesCreated {
		t.Errorf("summary = %+v, want %+v", summary, want)
	}

	for i := 0; i < 4; i++ {
		out := filepath.Join(opts.OutputDir, fmt.Sprintf("tower_iso_%d.png", i))
		if _, err := os.Stat(out); err != nil {
			t.Errorf("missing output image %s", out)
		}
	}

	// Temp staging dirs are removed after a run without KeepTemp.
	if _, err := os.Stat(opts.TempDir); !os.IsNotExist(err) {
		t.Error("temp dir survived a run without KeepTemp")
	}
}

func TestRunSingleView(t *testing.T) {
	fake := &fakeRenderer{}
	opts := newOptions(t, fake)
	opts.SingleView = true
	writeSchem(t, filepath.Join(opts.InputDir, "hut.schem"))

	p, _ := New(opts)
	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.ImagesCreated != 1 {
		t.Errorf("images = %d, want 1", summary.ImagesCreated)
	}
	if _, err := os.Stat(filepath.Join(opts.OutputDir, "hut_iso_0.png")); err != nil {
		t.Error("single view output missing")
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	// 10 schematics, 4 workers, 2 forced failures.
	fake := &fakeRenderer{failSubstr: "bad"}
	opts := newOptions(t, fake)
	opts.Workers = 4
	opts.SingleView = true
	for i := 0; i < 8; i++ {
		writeSchem(t, filepath.Join(opts.InputDir, fmt.Sprintf("ok_%d.schem", i)))
	}
	writeSchem(t, filepath.Join(opts.InputDir, "bad_1.schem"))
	writeSchem(t, filepath.Join(opts.InputDir, "bad_2.schem"))

	p, _ := New(opts)
	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Processed != 10 || summary.Succeeded != 8 || summary.Failed != 2 {
		t.Errorf("summary = %+v, want processed 10 succeeded 8 failed 2", summary)
	}
	if summary.ImagesCreated != 8 {
		t.Errorf("images = %d, want 8", summary.ImagesCreated)
	}
	if len(summary.Failures) != 2 {
		t.Fatalf("failure records = %d, want 2", len(summary.Failures))
	}
	for _, f := range summary.Failures {
		if f.Code != errors.ErrCodeRenderProcess {
			t.Errorf("failure code = %s, want RENDER_PROCESS", f.Code)
		}
		if !strings.Contains(f.Input, "bad") {
			t.Errorf("unexpected failing input %q", f.Input)
		}
	}
	if got := fake.maxConcurrent.Load(); got > 4 {
		t.Errorf("max concurrent renders = %d, want <= 4", got)
	}
}

func TestRunLimit(t *testing.T) {
	fake := &fakeRenderer{}
	opts := newOptions(t, fake)
	opts.SingleView = true
	opts.Limit = 2
	for i := 0; i < 5; i++ {
		writeSchem(t, filepath.Join(opts.InputDir, fmt.Sprintf("s_%d.schem", i)))
	}

	p, _ := New(opts)
	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Processed != 2 {
		t.Errorf("processed = %d, want 2 (limit)", summary.Processed)
	}
}

func TestRunKeepTemp(t *testing.T) {
	fake := &fakeRenderer{}
	opts := newOptions(t, fake)
	opts.SingleView = true
	opts.KeepTemp = true
	writeSchem(t, filepath.Join(opts.InputDir, "keep.schem"))

	p, _ := New(opts)
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	worlds, err := os.ReadDir(filepath.Join(opts.TempDir, "worlds"))
	if err != nil || len(worlds) != 1 {
		t.Errorf("expected one kept staging world, got %v (%v)", worlds, err)
	}
}

func TestRunNoInputs(t *testing.T) {
	opts := newOptions(t, &fakeRenderer{})
	if err := os.MkdirAll(opts.InputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	p, _ := New(opts)
	_, err := p.Run(context.Background())
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND for empty input dir, got %v", err)
	}
}

func TestRunCanceledContext(t *testing.T) {
	fake := &fakeRenderer{}
	opts := newOptions(t, fake)
	opts.SingleView = true
	for i := 0; i < 4; i++ {
		writeSchem(t, filepath.Join(opts.InputDir, fmt.Sprintf("c_%d.schem", i)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, _ := New(opts)
	summary, err := p.Run(ctx)
	if err == nil && summary.Failed == 0 {
		t.Error("canceled run reported clean success")
	}
}

func TestNewRequiresRenderer(t *testing.T) {
	_, err := New(Options{})
	if !errors.Is(err, errors.ErrCodeInternal) {
		t.Fatalf("expected error for missing renderer, got %v", err)
	}
}
