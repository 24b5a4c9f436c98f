package rasterize

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"
)

// EnginePDFium renders with PDFium compiled to WebAssembly. No cgo needed.
const EnginePDFium = "pdfium"

func init() {
	Register(EnginePDFium, loadPDFium)
}

type pdfiumEngine struct {
	pool    pdfium.Pool
	timeout time.Duration
}

func loadPDFium(_ context.Context, opts Options) (Engine, error) {
	opts = opts.withDefaults()
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  opts.Workers,
		MaxTotal: opts.Workers,
	})
	if err != nil {
		return nil, fmt.Errorf("init pdfium webassembly: %w", err)
	}
	return &pdfiumEngine{pool: pool, timeout: opts.WorkerTimeout}, nil
}

func (e *pdfiumEngine) Name() string { return EnginePDFium }

func (e *pdfiumEngine) Open(ctx context.Context, data []byte) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	instance, err := e.pool.GetInstance(e.timeout)
	if err != nil {
		return nil, fmt.Errorf("get pdfium worker: %w", err)
	}
	doc, err := instance.OpenDocument(&requests.OpenDocument{File: &data})
	if err != nil {
		instance.Close()
		return nil, err
	}
	count, err := instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{Document: doc.Document})
	if err != nil {
		instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: doc.Document})
		instance.Close()
		return nil, fmt.Errorf("page count: %w", err)
	}
	return &pdfiumDocument{instance: instance, doc: doc.Document, pages: count.PageCount}, nil
}

func (e *pdfiumEngine) Close() error {
	if e.pool == nil {
		return nil
	}
	err := e.pool.Close()
	e.pool = nil
	return err
}

// pdfiumDocument holds a pool worker until Close returns it.
type pdfiumDocument struct {
	instance pdfium.Pdfium
	doc      references.FPDF_DOCUMENT
	pages    int
}

func (d *pdfiumDocument) NumPages() int { return d.pages }

func (d *pdfiumDocument) Page(_ context.Context, index int) (Page, error) {
	if index < 1 || index > d.pages {
		return nil, fmt.Errorf("page %d out of range 1..%d", index, d.pages)
	}
	size, err := d.instance.FPDF_GetPageSizeByIndex(&requests.FPDF_GetPageSizeByIndex{
		Document: d.doc,
		Index:    index - 1,
	})
	if err != nil {
		return nil, err
	}
	return &pdfiumPage{doc: d, index: index - 1, width: size.Width, height: size.Height}, nil
}

func (d *pdfiumDocument) Close() error {
	_, err := d.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: d.doc})
	if cerr := d.instance.Close(); err == nil {
		err = cerr
	}
	return err
}

type pdfiumPage struct {
	doc           *pdfiumDocument
	index         int
	width, height float64
}

func (p *pdfiumPage) Size() (float64, float64) { return p.width, p.height }

func (p *pdfiumPage) Render(ctx context.Context, dst *image.RGBA, _ float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bounds := dst.Bounds()
	rendered, err := p.doc.instance.RenderPageInPixels(&requests.RenderPageInPixels{
		Page: requests.Page{
			ByIndex: &requests.PageByIndex{
				Document: p.doc.doc,
				Index:    p.index,
			},
		},
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	})
	if err != nil {
		return err
	}
	defer rendered.Cleanup()
	draw.Draw(dst, bounds, rendered.Result.Image, image.Point{}, draw.Src)
	return nil
}
