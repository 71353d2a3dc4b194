package cmd

import (
	"testing"
)

func TestConvert_TrkToTrx(t *testing.T) {
	env := newTestEnv(t)
	env.writeTrk("bundle.trk", defaultStreamlines())

	out := env.run("convert", "bundle.trk", "bundle.trx")
	env.contains(out, "2 streamlines")

	// Converted file summarises identically
	out = env.run("info", "bundle.trx")
	env.contains(out, "2")
}

func TestConvert_RoundTripThroughTck(t *testing.T) {
	env := newTestEnv(t)
	env.writeTrk("bundle.trk", defaultStreamlines())

	env.run("convert", "bundle.trk", "bundle.tck")
	// .tck back to .trk needs spatial metadata; converting without a
	// reference must fail rather than guess
	out, err := env.runErr("convert", "bundle.tck", "back.trk")
	if err == nil {
		t.Fatalf("tck conversion without reference succeeded: %s", out)
	}
	env.contains(out, "reference")
}

func TestConvert_Missing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.runErr("convert", "absent.trk", "out.trx")
	if err == nil {
		t.Error("convert of missing input succeeded")
	}
}

func TestConvert_UnsupportedOutput(t *testing.T) {
	env := newTestEnv(t)
	env.writeTrk("bundle.trk", defaultStreamlines())

	out, err := env.runErr("convert", "bundle.trk", "bundle.vtk")
	if err == nil {
		t.Fatalf("convert to unsupported format succeeded: %s", out)
	}
}

func TestConvert_Quiet(t *testing.T) {
	env := newTestEnv(t)
	env.writeTrk("bundle.trk", defaultStreamlines())

	out := env.run("convert", "bundle.trk", "bundle.trx", "-q")
	if out != "" {
		t.Errorf("quiet convert produced output: %q", out)
	}
}
