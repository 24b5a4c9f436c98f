//go:build cgo

package rasterize

import (
	"context"
	"fmt"
	"image"
	"image/draw"

	"github.com/gen2brain/go-fitz"
)

// EngineFitz renders with MuPDF. Only registered in cgo builds.
const EngineFitz = "fitz"

func init() {
	Register(EngineFitz, loadFitz)
}

type fitzEngine struct{}

func loadFitz(_ context.Context, _ Options) (Engine, error) {
	return fitzEngine{}, nil
}

func (fitzEngine) Name() string { return EngineFitz }

func (fitzEngine) Open(ctx context.Context, data []byte) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, err
	}
	return &fitzDocument{doc: doc}, nil
}

func (fitzEngine) Close() error { return nil }

type fitzDocument struct {
	doc *fitz.Document
}

func (d *fitzDocument) NumPages() int { return d.doc.NumPage() }

func (d *fitzDocument) Page(_ context.Context, index int) (Page, error) {
	if index < 1 || index > d.doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range 1..%d", index, d.doc.NumPage())
	}
	bound, err := d.doc.Bound(index - 1)
	if err != nil {
		return nil, err
	}
	return &fitzPage{doc: d.doc, index: index - 1, bound: bound}, nil
}

func (d *fitzDocument) Close() error { return d.doc.Close() }

type fitzPage struct {
	doc   *fitz.Document
	index int
	bound image.Rectangle
}

func (p *fitzPage) Size() (float64, float64) {
	return float64(p.bound.Dx()), float64(p.bound.Dy())
}

func (p *fitzPage) Render(ctx context.Context, dst *image.RGBA, scale float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	img, err := p.doc.ImageDPI(p.index, 72*scale)
	if err != nil {
		return err
	}
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	return nil
}
