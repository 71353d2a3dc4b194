package cmd

import (
	"encoding/json"
	"testing"
)

func TestCSV_SingleFile(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile("points.csv", "x,y,z,val\n1,2,3,0.5\n4,5,6,0.7\n")

	out := env.run("csv", "points.csv")
	env.contains(out, "2 rows, 1 attribute columns")
	env.contains(out, "1, 2, 3, 0.5")
}

func TestCSV_Directory(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile("pts/b.csv", "x,y,z\n4,5,6\n")
	env.writeFile("pts/a.csv", "x,y,z\n1,2,3\n")

	out := env.run("csv", "pts")
	env.contains(out, "2 rows, 0 attribute columns")
	// a.csv sorts before b.csv
	env.contains(out, "1, 2, 3\n4, 5, 6")
}

func TestCSV_DelimiterFlag(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile("semi.csv", "x;y;z\n1;2;3\n")

	out := env.run("csv", "semi.csv", "--delimiter", ";")
	env.contains(out, "1 rows")
}

func TestCSV_NoHeader(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile("raw.csv", "1,2,3\n4,5,6\n")

	out := env.run("csv", "raw.csv", "--no-header")
	env.contains(out, "2 rows")
}

func TestCSV_ConfigDefaults(t *testing.T) {
	env := newTestEnv(t)
	env.run("config", "csv.delimiter", ";")
	env.writeFile("semi.csv", "x;y;z\n1;2;3\n")

	out := env.run("csv", "semi.csv")
	env.contains(out, "1 rows")
}

func TestCSV_JSON(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile("points.csv", "x,y,z\n1,2,3\n")

	out := env.run("csv", "points.csv", "-o", "json")

	var payload struct {
		Rows    int `json:"rows"`
		Attrs   int `json:"attribute_columns"`
	}
	if err := json.Unmarshal([]byte(jsonLine(out)), &payload); err != nil {
		t.Fatalf("invalid JSON output %q: %v", out, err)
	}
	if payload.Rows != 1 || payload.Attrs != 0 {
		t.Errorf("got rows=%d attrs=%d", payload.Rows, payload.Attrs)
	}
}

func TestCSV_Missing(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.runErr("csv", "absent.csv")
	if err == nil {
		t.Fatalf("csv on missing file succeeded: %s", out)
	}
}

func TestCSV_EmptyDirectory(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile("empty/readme.txt", "not csv")

	out, err := env.runErr("csv", "empty")
	if err == nil {
		t.Fatalf("csv on directory without csv files succeeded: %s", out)
	}
	env.contains(out, "no csv files")
}

func TestCSV_NonNumeric(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile("bad.csv", "x,y,z\n1,two,3\n")

	out, err := env.runErr("csv", "bad.csv")
	if err == nil {
		t.Fatalf("csv with non-numeric cell succeeded: %s", out)
	}
}

func TestMerge_Directory(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile("pts/a.csv", "x,y,z\n1,2,3\n")
	env.writeFile("pts/b.csv", "x,y,z\n4,5,6\n")

	out := env.run("merge", "pts", "all.csv")
	env.contains(out, "2 rows")

	// The merged file reads back with the same row count
	out = env.run("csv", "all.csv")
	env.contains(out, "2 rows")
}
