package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAnalyzeBatch_ContinuesPastFailures(t *testing.T) {
	home := isolateHome(t)

	// Two CSV files with the same basename in different directories
	d1 := filepath.Join(home, "d1")
	d2 := filepath.Join(home, "d2")
	for _, d := range []string{d1, d2} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
	csv := "col1,col2\nA,1\nB,2\nC,3\n"
	if err := os.WriteFile(filepath.Join(d1, "metrics.csv"), []byte(csv), 0o644); err != nil {
		t.Fatalf("write p1: %v", err)
	}
	if err := os.WriteFile(filepath.Join(d2, "metrics.csv"), []byte(csv), 0o644); err != nil {
		t.Fatalf("write p2: %v", err)
	}
	broken := filepath.Join(home, "notes.docx")
	if err := os.WriteFile(broken, []byte("x"), 0o644); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	outDir := filepath.Join(home, "reports")

	out, err := execCmd(t, "analyze-batch", filepath.Join(home, "d*", "metrics.csv"), broken, "--output", outDir, "--format", "md")
	if err == nil || !strings.Contains(err.Error(), "1 of 3 files failed") {
		t.Fatalf("expected one failure, got %v", err)
	}
	if !strings.Contains(out, "[3/3] Processing") {
		t.Fatalf("expected progress lines, got:\n%s", out)
	}

	// Same basename and possibly the same second: nothing is overwritten
	reports, _ := filepath.Glob(filepath.Join(outDir, "data_report_metrics_*.md"))
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %v", reports)
	}
	body, err := os.ReadFile(reports[0])
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(body), "[CATEGORICAL]") {
		t.Fatalf("expected categorical section in %s", reports[0])
	}
}

func TestAnalyzeBatch_NoMatches(t *testing.T) {
	home := isolateHome(t)
	if _, err := execCmd(t, "analyze-batch", filepath.Join(home, "*.csv")); err == nil {
		t.Fatalf("expected error when nothing matches")
	}
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b.csv", "a.csv"} {
		if err := os.WriteFile(filepath.Join(dir, n), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	got := expandInputs([]string{filepath.Join(dir, "*.csv"), filepath.Join(dir, "a.csv"), filepath.Join(dir, "missing.csv")})
	want := []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv")}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expandInputs = %v, want %v", got, want)
	}
}
