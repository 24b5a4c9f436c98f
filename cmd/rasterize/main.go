package main

// Render the first page of a PDF to resume.png:
//   go run ./cmd/rasterize -in resume.pdf -out ./out

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"resume-feedback/internal/rasterize"
	"resume-feedback/internal/shared/config"
	"resume-feedback/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	inPath := flag.String("in", "", "path to the input PDF")
	outDir := flag.String("out", "./out", "directory for resume.png")
	engine := flag.String("engine", cfg.RenderEngine, "rendering engine")
	workers := flag.Int("workers", cfg.RenderWorkers, "engine worker count")
	timeout := flag.Duration("timeout", cfg.RenderWorkerTimeout, "engine worker acquire timeout")
	flag.Parse()

	telemetry.Configure(cfg.LogLevel)
	defer telemetry.Sync()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "-in is required")
		flag.Usage()
		os.Exit(2)
	}

	os.Exit(run(*inPath, *outDir, *engine, rasterize.Options{Workers: *workers, WorkerTimeout: *timeout}))
}

func run(inPath, outDir, engine string, opts rasterize.Options) int {
	f, err := os.Open(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open input: %v\n", err)
		return 1
	}
	defer f.Close()

	r := rasterize.New(engine, opts)
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := r.Convert(ctx, f)
	if err != nil {
		if errors.Is(err, rasterize.ErrPrecondition) {
			fmt.Fprintf(os.Stderr, "renderer unavailable: %v (available: %v)\n", err, rasterize.Engines())
			return 3
		}
		fmt.Fprintf(os.Stderr, "convert: %v\n", err)
		return 1
	}
	if res.File == nil {
		fmt.Fprintf(os.Stderr, "conversion failed at %s: %v\n", res.Stage, res.Err)
		return 1
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		return 1
	}
	outPath := filepath.Join(outDir, res.File.Name)
	if err := os.WriteFile(outPath, res.File.Data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		return 1
	}

	fmt.Printf("OK: wrote %s (%d bytes)\n", outPath, len(res.File.Data))
	return 0
}
