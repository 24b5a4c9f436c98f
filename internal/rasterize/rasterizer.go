package rasterize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"time"

	"github.com/disintegration/imaging"

	"resume-feedback/internal/shared/metrics"
	"resume-feedback/internal/shared/telemetry"
)

const (
	// ScaleFactor multiplies the intrinsic page size to get the output size.
	ScaleFactor = 3
	firstPage   = 1

	// MaxSurfaceSide caps either side of the pixel surface.
	MaxSurfaceSide = 20000
)

// Rasterizer converts documents with a shared engine handle.
type Rasterizer struct {
	engine string
	handle *Handle
	encode func(image.Image) ([]byte, error)
	// precondition is set when the configured engine cannot run here.
	precondition error
}

// New returns a rasterizer for the named engine. An unknown engine does not
// fail here; every Convert call reports ErrPrecondition instead.
func New(engine string, opts Options) *Rasterizer {
	loader, err := Lookup(engine)
	if err != nil {
		return &Rasterizer{engine: engine, precondition: err}
	}
	return &Rasterizer{engine: engine, handle: NewHandle(engine, loader, opts), encode: EncodePNG}
}

// NewWithHandle returns a rasterizer that uses an existing handle.
func NewWithHandle(engine string, h *Handle) *Rasterizer {
	if h == nil {
		return &Rasterizer{engine: engine, precondition: fmt.Errorf("%w: no engine handle", ErrPrecondition)}
	}
	return &Rasterizer{engine: engine, handle: h, encode: EncodePNG}
}

// Engine returns the configured engine name.
func (r *Rasterizer) Engine() string {
	return r.engine
}

// Available reports nil when conversions can run in this process.
func (r *Rasterizer) Available() error {
	return r.precondition
}

// Close releases the shared engine.
func (r *Rasterizer) Close() error {
	if r.handle == nil {
		return nil
	}
	return r.handle.Close()
}

// Convert renders page 1 of src at ScaleFactor into a PNG. Pipeline failures
// yield a Result with a nil File and a nil error; only ErrPrecondition is
// returned as an error.
func (r *Rasterizer) Convert(ctx context.Context, src io.Reader) (Result, error) {
	if r.precondition != nil {
		return Result{Stage: StageUninitialized, Err: r.precondition}, r.precondition
	}
	if ctx == nil {
		ctx = context.Background()
	}

	run := &conversion{engine: r.engine, stage: StageUninitialized, encode: r.encode}
	start := time.Now()
	file, err := run.execute(ctx, r.handle, src)
	elapsed := time.Since(start)

	if err != nil {
		failedAt := run.stage
		run.advance(StageFailed)
		telemetry.Error("rasterize.failed", map[string]any{
			"engine":      r.engine,
			"stage":       string(failedAt),
			"error":       err,
			"duration_ms": elapsed.Milliseconds(),
		})
		metrics.ObserveRasterize(r.engine, "failure", string(failedAt), elapsed)
		return Result{Err: err, Stage: failedAt}, nil
	}

	run.advance(StageDone)
	metrics.ObserveRasterize(r.engine, "success", string(StageDone), elapsed)
	return Result{File: file, Stage: StageDone}, nil
}

// ConvertPDFToImage returns the PNG snapshot of page 1, or nil on any
// pipeline failure. It returns an error only for ErrPrecondition.
func (r *Rasterizer) ConvertPDFToImage(ctx context.Context, src io.Reader) (*File, error) {
	res, err := r.Convert(ctx, src)
	if err != nil {
		return nil, err
	}
	return res.File, nil
}

type conversion struct {
	engine string
	stage  Stage
	encode func(image.Image) ([]byte, error)
}

func (c *conversion) advance(next Stage) {
	telemetry.Debug("rasterize.stage", map[string]any{
		"engine": c.engine,
		"from":   string(c.stage),
		"to":     string(next),
	})
	c.stage = next
}

func (c *conversion) execute(ctx context.Context, h *Handle, src io.Reader) (file *File, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			file = nil
			err = panicError(rec)
		}
	}()

	c.advance(StageLibraryLoading)
	eng, err := h.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("load engine: %w", err)
	}
	c.advance(StageLibraryReady)

	c.advance(StageDocumentDecoding)
	if src == nil {
		return nil, errors.New("read source: nil reader")
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := eng.Open(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			telemetry.Warn("rasterize.document.close_failed", map[string]any{"engine": c.engine, "error": cerr})
		}
	}()
	if doc.NumPages() < firstPage {
		return nil, ErrNoPages
	}
	page, err := doc.Page(ctx, firstPage)
	if err != nil {
		return nil, fmt.Errorf("load page %d: %w", firstPage, err)
	}

	c.advance(StagePageRendering)
	width, height := page.Size()
	surface, err := NewSurface(width, height, ScaleFactor)
	if err != nil {
		return nil, err
	}
	if err := page.Render(ctx, surface, ScaleFactor); err != nil {
		return nil, fmt.Errorf("render page %d: %w", firstPage, err)
	}

	c.advance(StageImageEncoding)
	data, err = c.encode(surface)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	return &File{Name: OutputName, ContentType: OutputType, Data: data}, nil
}

// NewSurface allocates a surface of int(width*scale) by int(height*scale) pixels.
func NewSurface(width, height, scale float64) (*image.RGBA, error) {
	if !(width > 0) || !(height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return nil, fmt.Errorf("%w: %gx%g", ErrInvalidPage, width, height)
	}
	w := int(width * scale)
	h := int(height * scale)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %gx%g at scale %g", ErrInvalidPage, width, height, scale)
	}
	if w > MaxSurfaceSide || h > MaxSurfaceSide {
		return nil, fmt.Errorf("%w: %dx%d", ErrSurfaceTooLong, w, h)
	}
	return image.NewRGBA(image.Rect(0, 0, w, h)), nil
}

// EncodePNG encodes img as PNG. An empty encoding is an error.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	if buf.Len() == 0 {
		return nil, ErrEmptyImage
	}
	return buf.Bytes(), nil
}

func panicError(rec any) error {
	if err, ok := rec.(error); ok {
		return fmt.Errorf("engine panic: %w", err)
	}
	return fmt.Errorf("engine panic: %v", rec)
}
