// Testing Strategy Design Decision:
//
// The cmd/ package contains CLI integration tests that exercise the full
// stack: command parsing -> extension dispatch -> loaders -> filesystem.
//
// Some internal packages lean on these tests rather than carrying their
// own: extension wiring, flag parsing, and output formatting are covered
// here end to end. If underlying functionality breaks, the CLI tests fail.

package cmd

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maharshi-gor/tractome/internal/tractogram"
)

var (
	binaryPath string
	buildOnce  sync.Once
	buildErr   error
)

// buildBinary compiles the tractome binary once for all tests.
func buildBinary(t *testing.T) string {
	t.Helper()

	buildOnce.Do(func() {
		tmpDir, err := os.MkdirTemp("", "tractome-test-bin-*")
		if err != nil {
			buildErr = err
			return
		}

		binaryName := "tractome"
		if os.PathSeparator == '\\' {
			binaryName = "tractome.exe"
		}
		binaryPath = filepath.Join(tmpDir, binaryName)

		// Find project root (parent of cmd/)
		wd := mustGetwd()
		projectRoot := filepath.Dir(wd)

		cmd := exec.Command("go", "build", "-o", binaryPath, ".")
		cmd.Dir = projectRoot
		if out, err := cmd.CombinedOutput(); err != nil {
			buildErr = &buildError{err: err, output: string(out)}
			return
		}
	})

	if buildErr != nil {
		t.Fatalf("failed to build binary: %v", buildErr)
	}
	return binaryPath
}

type buildError struct {
	err    error
	output string
}

func (e *buildError) Error() string {
	return e.err.Error() + "\n" + e.output
}

func mustGetwd() string {
	dir, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return dir
}

// testEnv holds test environment state.
type testEnv struct {
	t      *testing.T
	dir    string
	binary string
}

// newTestEnv creates a temporary working directory for a test run.
// HOME is pointed at the directory so global config and the audit log
// never touch the real user home.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	binary := buildBinary(t)
	dir := t.TempDir()

	return &testEnv{t: t, dir: dir, binary: binary}
}

// run executes tractome with the given args and returns combined output.
func (e *testEnv) run(args ...string) string {
	e.t.Helper()
	out, err := e.runErr(args...)
	if err != nil {
		e.t.Fatalf("tractome %v failed: %v\noutput: %s", args, err, out)
	}
	return out
}

// runErr executes tractome and returns combined output and any error.
func (e *testEnv) runErr(args ...string) (string, error) {
	return e.runErrIn(e.dir, args...)
}

// runIn executes tractome from the given working directory. Used where a
// test needs the working directory to differ from HOME, e.g. to separate
// local config from global.
func (e *testEnv) runIn(dir string, args ...string) string {
	e.t.Helper()
	out, err := e.runErrIn(dir, args...)
	if err != nil {
		e.t.Fatalf("tractome %v failed: %v\noutput: %s", args, err, out)
	}
	return out
}

func (e *testEnv) runErrIn(dir string, args ...string) (string, error) {
	e.t.Helper()

	cmd := exec.Command(e.binary, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "HOME="+e.dir)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// contains checks if output contains expected string.
func (e *testEnv) contains(output, expected string) {
	e.t.Helper()
	assert.Contains(e.t, output, expected)
}

// path returns an absolute path inside the test directory.
func (e *testEnv) path(name string) string {
	return filepath.Join(e.dir, name)
}

// writeFile creates a file inside the test directory.
func (e *testEnv) writeFile(name, content string) string {
	e.t.Helper()
	p := e.path(name)
	require.NoError(e.t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(e.t, os.WriteFile(p, []byte(content), 0644))
	return p
}

// writeTrk creates a small TrackVis file inside the test directory.
func (e *testEnv) writeTrk(name string, streamlines []tractogram.Streamline) string {
	e.t.Helper()
	tr, err := tractogram.FromStreamlines(streamlines, tractogram.Reference{
		Affine:     [4][4]float64{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}},
		Dims:       [3]int16{50, 50, 50},
		VoxelSizes: [3]float32{1, 1, 1},
		VoxelOrder: "RAS",
	}, nil)
	require.NoError(e.t, err)

	p := e.path(name)
	require.NoError(e.t, tractogram.Save(tr, p))
	return p
}

// defaultStreamlines returns a small but non-trivial streamline set.
func defaultStreamlines() []tractogram.Streamline {
	return []tractogram.Streamline{
		{{1, 2, 3}, {4, 5, 6}},
		{{7, 8, 9}, {10, 11, 12}, {13, 14, 15}},
	}
}

// jsonLine returns the last non-empty line of output, which holds the
// JSON payload when -o json is used (warnings may precede it).
func jsonLine(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	return lines[len(lines)-1]
}
