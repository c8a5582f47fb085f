// Package render invokes the external Chunky path tracer as a headless
// subprocess and collects the snapshot it produces.
package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/voxelsnap/voxelsnap/pkg/errors"
	"github.com/voxelsnap/voxelsnap/pkg/scene"
)

// RetryPolicy controls how long to poll for the renderer's snapshot file
// after the process exits. Chunky writes the snapshot asynchronously, so
// a successful exit does not mean the file is on disk yet.
type RetryPolicy struct {
	Interval time.Duration
	MaxWait  time.Duration
}

// DefaultRetryPolicy matches the renderer's observed write latency.
var DefaultRetryPolicy = RetryPolicy{
	Interval: 500 * time.Millisecond,
	MaxWait:  10 * time.Second,
}

// Options configures a Renderer. Zero values fall back to sane defaults.
type Options struct {
	// Home is the renderer's home directory holding lib/ and scenes/.
	// Defaults to ~/.chunky.
	Home string
	// Java is the JVM binary to launch. Defaults to "java" on PATH.
	Java string
	// Threads is the render thread count passed to the renderer.
	Threads int
	// Timeout bounds a single render process. Zero means no limit.
	Timeout time.Duration
	// Poll is the snapshot polling policy.
	Poll RetryPolicy
	// Logger receives per-render progress. Defaults to the standard logger.
	Logger *log.Logger
}

// Renderer runs headless renders against a single renderer installation.
// It is safe for concurrent use; each Render call is independent.
type Renderer struct {
	home    string
	java    string
	threads int
	timeout time.Duration
	poll    RetryPolicy
	logger  *log.Logger
}

// New builds a Renderer from opts.
func New(opts Options) *Renderer {
	r := &Renderer{
		home:    opts.Home,
		java:    opts.Java,
		threads: opts.Threads,
		timeout: opts.Timeout,
		poll:    opts.Poll,
		logger:  opts.Logger,
	}
	if r.home == "" {
		if home, err := os.UserHomeDir(); err == nil {
			r.home = filepath.Join(home, ".chunky")
		}
	}
	if r.java == "" {
		r.java = "java"
	}
	if r.threads <= 0 {
		r.threads = 4
	}
	if r.poll == (RetryPolicy{}) {
		r.poll = DefaultRetryPolicy
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	return r
}

// Home returns the renderer installation directory in use.
func (r *Renderer) Home() string { return r.home }

// CheckSetup verifies the renderer installation is usable: the JVM is on
// PATH and the core jar is present under lib/.
func (r *Renderer) CheckSetup() error {
	if _, err := exec.LookPath(r.java); err != nil {
		return errors.Wrap(errors.ErrCodeRendererMissing, err, "jvm %q not found", r.java)
	}
	if _, err := r.classpath(); err != nil {
		return err
	}
	return nil
}

// classpath collects the renderer jars under <home>/lib. The core jar must
// be present; the remaining jars are its bundled dependencies.
func (r *Renderer) classpath() (string, error) {
	libDir := filepath.Join(r.home, "lib")
	entries, err := os.ReadDir(libDir)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeRendererMissing, err,
			"renderer lib directory %q not readable", libDir)
	}

	var jars []string
	hasCore := false
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jar") {
			continue
		}
		if strings.HasPrefix(e.Name(), "chunky-core") {
			hasCore = true
		}
		jars = append(jars, filepath.Join(libDir, e.Name()))
	}
	if !hasCore {
		return "", errors.New(errors.ErrCodeRendererMissing,
			"chunky-core jar not found in %q", libDir)
	}
	sort.Strings(jars)
	return strings.Join(jars, string(os.PathListSeparator)), nil
}

// Render executes a headless render of the scene in sceneDir and copies
// the resulting snapshot to outputPath. The scene directory must contain
// <name>.json where name is the directory's base name.
//
// The renderer names its snapshot <name>-<sppTarget>.png under
// <home>/scenes/<name>/snapshots. Render polls for that exact file and
// refuses to fall back to any other snapshot, so a stale image from an
// earlier run can never be returned as this run's output.
func (r *Renderer) Render(ctx context.Context, sceneDir, outputPath string) error {
	sceneName := filepath.Base(sceneDir)
	scenePath := filepath.Join(sceneDir, sceneName+".json")
	if _, err := os.Stat(scenePath); err != nil {
		return errors.Wrap(errors.ErrCodeNotFound, err, "scene file %q", scenePath)
	}

	spp, err := scene.ReadTarget(scenePath)
	if err != nil {
		return err
	}
	classpath, err := r.classpath()
	if err != nil {
		return err
	}

	absScene, err := filepath.Abs(scenePath)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "resolving scene path")
	}

	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	args := []string{
		fmt.Sprintf("-Dchunky.home=%s", r.home),
		"-cp", classpath,
		"se.llbit.chunky.main.Chunky",
		"-threads", fmt.Sprint(r.threads),
		"-f",
		"-reload-chunks",
		"-render", absScene,
	}
	cmd := exec.CommandContext(runCtx, r.java, args...)

	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	r.logger.Debug("starting render", "scene", sceneName, "spp", spp, "threads", r.threads)
	started := time.Now()

	if err := cmd.Run(); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return errors.Wrap(errors.ErrCodeRenderTimeout, runCtx.Err(),
				"render of %q exceeded %s", sceneName, r.timeout)
		}
		return errors.Wrap(errors.ErrCodeRenderProcess, err,
			"render of %q failed: %s", sceneName, tail(stderr.String(), 400))
	}

	snapshot := filepath.Join(r.home, "scenes", sceneName, "snapshots",
		fmt.Sprintf("%s-%d.png", sceneName, spp))
	if err := r.awaitSnapshot(ctx, snapshot); err != nil {
		return err
	}

	if info, err := os.Stat(snapshot); err == nil && info.ModTime().Before(started) {
		r.logger.Warn("snapshot predates this render, likely stale",
			"scene", sceneName, "age", time.Since(info.ModTime()).Round(time.Second))
	}

	if err := copyFile(snapshot, outputPath); err != nil {
		return errors.Wrap(errors.ErrCodeStoreSave, err, "copying render output to %q", outputPath)
	}
	r.logger.Debug("render complete", "scene", sceneName,
		"output", outputPath, "elapsed", time.Since(started).Round(time.Millisecond))
	return nil
}

// awaitSnapshot polls until path exists, the policy's deadline passes, or
// ctx is canceled.
func (r *Renderer) awaitSnapshot(ctx context.Context, path string) error {
	deadline := time.Now().Add(r.poll.MaxWait)
	for {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return errors.New(errors.ErrCodeOutputMissing,
				"snapshot %q not written within %s%s", path, r.poll.MaxWait, r.describeSiblings(path))
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(errors.ErrCodeRenderTimeout, ctx.Err(),
				"canceled while waiting for %q", path)
		case <-time.After(r.poll.Interval):
		}
	}
}

// describeSiblings lists what the renderer actually wrote, which makes a
// missing-output failure diagnosable without shelling into the machine.
func (r *Renderer) describeSiblings(path string) string {
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		return "; snapshot directory does not exist"
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return "; snapshot directory is empty"
	}
	return fmt.Sprintf("; snapshot directory contains %v", names)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
