package rasterize

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"sync"
)

type fakeEngine struct {
	openErr   error
	openPanic any
	pages     []*fakePage
	closed    bool
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Open(_ context.Context, data []byte) (Document, error) {
	if e.openPanic != nil {
		panic(e.openPanic)
	}
	if e.openErr != nil {
		return nil, e.openErr
	}
	if len(data) == 0 {
		return nil, errors.New("empty document")
	}
	return &fakeDocument{pages: e.pages}, nil
}

func (e *fakeEngine) Close() error {
	e.closed = true
	return nil
}

type fakeDocument struct {
	pages  []*fakePage
	closed bool
}

func (d *fakeDocument) NumPages() int { return len(d.pages) }

func (d *fakeDocument) Page(_ context.Context, index int) (Page, error) {
	if index < 1 || index > len(d.pages) {
		return nil, errors.New("out of range")
	}
	return d.pages[index-1], nil
}

func (d *fakeDocument) Close() error {
	d.closed = true
	return nil
}

type fakePage struct {
	width, height float64
	renderErr     error
	fill          color.RGBA

	mu       sync.Mutex
	rendered []image.Rectangle
	scales   []float64
}

func (p *fakePage) Size() (float64, float64) { return p.width, p.height }

func (p *fakePage) Render(_ context.Context, dst *image.RGBA, scale float64) error {
	p.mu.Lock()
	p.rendered = append(p.rendered, dst.Bounds())
	p.scales = append(p.scales, scale)
	p.mu.Unlock()
	if p.renderErr != nil {
		return p.renderErr
	}
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: p.fill}, image.Point{}, draw.Src)
	return nil
}

func staticLoader(eng Engine) Loader {
	return func(context.Context, Options) (Engine, error) {
		return eng, nil
	}
}

func newFakeRasterizer(eng Engine) *Rasterizer {
	return NewWithHandle("fake", NewHandle("fake", staticLoader(eng), Options{}))
}

func onePage(w, h float64) *fakeEngine {
	return &fakeEngine{pages: []*fakePage{{width: w, height: h, fill: color.RGBA{R: 10, G: 20, B: 30, A: 255}}}}
}
