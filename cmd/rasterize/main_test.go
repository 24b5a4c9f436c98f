package main

import (
	"os"
	"path/filepath"
	"testing"

	"resume-feedback/internal/rasterize"
	"resume-feedback/internal/rasterize/rasterizetest"
)

func TestRunWritesResumePNG(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "resume.pdf")
	if err := os.WriteFile(in, rasterizetest.MinimalPDF(100, 50, "5 5 20 10 re f"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	out := filepath.Join(dir, "out")

	if code := run(in, out, rasterize.EnginePreview, rasterize.Options{}); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	data, err := os.ReadFile(filepath.Join(out, "resume.png"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(data) < 8 || string(data[1:4]) != "PNG" {
		t.Fatalf("output is not a png")
	}
}

func TestRunUnknownEngine(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "resume.pdf")
	if err := os.WriteFile(in, rasterizetest.MinimalPDF(100, 50, ""), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	if code := run(in, dir, "no-such-engine", rasterize.Options{}); code != 3 {
		t.Fatalf("expected exit 3, got %d", code)
	}
}

func TestRunInvalidPDF(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "resume.pdf")
	if err := os.WriteFile(in, []byte("not a pdf"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	if code := run(in, filepath.Join(dir, "out"), rasterize.EnginePreview, rasterize.Options{}); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "resume.png")); !os.IsNotExist(err) {
		t.Fatalf("expected no output file, stat err=%v", err)
	}
}
