package diff

import (
	"strings"
	"testing"
)

func TestCompute(t *testing.T) {
	old := "streamlines  120\npoints  4800\n"
	new := "streamlines  150\npoints  6000\n"

	r := Compute(old, new, "a.trk", "b.trk")

	if r.Old != "a.trk" || r.New != "b.trk" {
		t.Errorf("labels = (%q, %q), want (a.trk, b.trk)", r.Old, r.New)
	}
	if !r.Changed() {
		t.Error("Changed() = false for differing inputs")
	}
	if !strings.Contains(r.Diff, "- ") || !strings.Contains(r.Diff, "+ ") {
		t.Errorf("diff missing add/remove markers:\n%s", r.Diff)
	}
}

func TestComputeIdentical(t *testing.T) {
	content := "vertices  300\nfaces  598\n"
	r := Compute(content, content, "a.obj", "b.obj")

	if r.Changed() {
		t.Errorf("Changed() = true for identical inputs:\n%s", r.Diff)
	}
}

func TestComputeCollapsesLongEqualRuns(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("same line\n")
	}
	old := b.String() + "old tail\n"
	new := b.String() + "new tail\n"

	r := Compute(old, new, "a", "b")
	if !strings.Contains(r.Diff, "  ...\n") {
		t.Errorf("long equal run not collapsed:\n%s", r.Diff)
	}
}

func TestFormatHeader(t *testing.T) {
	r := Result{Old: "a.trk", New: "b.trk", Diff: "- x\n+ y\n"}

	out := r.Format(false)
	if !strings.HasPrefix(out, "--- a.trk\n+++ b.trk\n") {
		t.Errorf("missing header:\n%s", out)
	}
	if strings.Contains(out, "\033[") {
		t.Error("uncoloured output contains ANSI escapes")
	}

	coloured := r.Format(true)
	if !strings.Contains(coloured, "\033[31m") || !strings.Contains(coloured, "\033[32m") {
		t.Error("coloured output missing ANSI escapes")
	}
}

func TestColouriseLeavesContextAlone(t *testing.T) {
	out := Colourise("  unchanged\n- removed\n+ added\n")
	if !strings.Contains(out, "  unchanged\n") {
		t.Errorf("context line altered:\n%s", out)
	}
}
