package rasterize

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"

	"github.com/gogpu/gg"
	"github.com/ledongthuc/pdf"
)

// EnginePreview draws a layout preview in pure Go: filled rectangles and
// text runs as bars. Glyph outlines are not rendered.
const EnginePreview = "preview"

// Letter size, used when a page has no MediaBox.
const (
	defaultPageWidth  = 612
	defaultPageHeight = 792
)

func init() {
	Register(EnginePreview, loadPreview)
}

type previewEngine struct{}

func loadPreview(_ context.Context, _ Options) (Engine, error) {
	return previewEngine{}, nil
}

func (previewEngine) Name() string { return EnginePreview }

func (previewEngine) Open(ctx context.Context, data []byte) (doc Document, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer func() {
		if rec := recover(); rec != nil {
			doc, err = nil, fmt.Errorf("decode pdf: %v", rec)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return &previewDocument{reader: reader}, nil
}

func (previewEngine) Close() error { return nil }

type previewDocument struct {
	reader *pdf.Reader
}

func (d *previewDocument) NumPages() int { return d.reader.NumPage() }

func (d *previewDocument) Page(_ context.Context, index int) (Page, error) {
	if index < 1 || index > d.reader.NumPage() {
		return nil, fmt.Errorf("page %d out of range 1..%d", index, d.reader.NumPage())
	}
	p := d.reader.Page(index)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d missing", index)
	}
	box := mediaBox(p.V)
	return &previewPage{page: p, box: box}, nil
}

func (d *previewDocument) Close() error { return nil }

type pageBox struct {
	llx, lly, urx, ury float64
}

func (b pageBox) width() float64  { return b.urx - b.llx }
func (b pageBox) height() float64 { return b.ury - b.lly }

// mediaBox reads the MediaBox of a page, following inherited values.
func mediaBox(v pdf.Value) pageBox {
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		box := v.Key("MediaBox")
		if box.Kind() == pdf.Array && box.Len() == 4 {
			b := pageBox{
				llx: box.Index(0).Float64(),
				lly: box.Index(1).Float64(),
				urx: box.Index(2).Float64(),
				ury: box.Index(3).Float64(),
			}
			if b.llx > b.urx {
				b.llx, b.urx = b.urx, b.llx
			}
			if b.lly > b.ury {
				b.lly, b.ury = b.ury, b.lly
			}
			return b
		}
		v = v.Key("Parent")
	}
	return pageBox{urx: defaultPageWidth, ury: defaultPageHeight}
}

type previewPage struct {
	page pdf.Page
	box  pageBox
}

func (p *previewPage) Size() (float64, float64) {
	return p.box.width(), p.box.height()
}

func (p *previewPage) Render(ctx context.Context, dst *image.RGBA, scale float64) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("read page content: %v", rec)
		}
	}()
	content := p.page.Content()

	bounds := dst.Bounds()
	dc := gg.NewContext(bounds.Dx(), bounds.Dy())
	defer dc.Close()
	dc.ClearWithColor(gg.White)

	// PDF space has its origin at the bottom left.
	toX := func(x float64) float64 { return (x - p.box.llx) * scale }
	toY := func(y float64) float64 { return (p.box.ury - y) * scale }

	dc.SetRGB(0.85, 0.85, 0.85)
	for _, r := range content.Rect {
		x0, x1 := minMax(r.Min.X, r.Max.X)
		y0, y1 := minMax(r.Min.Y, r.Max.Y)
		dc.DrawRectangle(toX(x0), toY(y1), (x1-x0)*scale, (y1-y0)*scale)
		if err := dc.Fill(); err != nil {
			return err
		}
	}

	dc.SetRGB(0.2, 0.2, 0.2)
	for _, t := range content.Text {
		if t.W <= 0 || t.FontSize <= 0 {
			continue
		}
		// Bars sit on the baseline and cover most of the x-height.
		height := t.FontSize * 0.6
		dc.DrawRectangle(toX(t.X), toY(t.Y+height), t.W*scale, height*scale)
		if err := dc.Fill(); err != nil {
			return err
		}
	}

	draw.Draw(dst, bounds, dc.Image(), image.Point{}, draw.Src)
	return nil
}

func minMax(a, b float64) (float64, float64) {
	if a > b {
		return b, a
	}
	return a, b
}
