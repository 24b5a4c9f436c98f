package rasterize

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-feedback/internal/rasterize/rasterizetest"
)

func TestPreviewEngineRendersLayout(t *testing.T) {
	r := New(EnginePreview, Options{})
	require.NoError(t, r.Available())

	pdfData := rasterizetest.MinimalPDF(200, 100, "10 10 50 20 re f")
	res, err := r.Convert(context.Background(), bytes.NewReader(pdfData))
	require.NoError(t, err)
	require.NotNil(t, res.File, "conversion failed at %s: %v", res.Stage, res.Err)

	img, err := imaging.Decode(bytes.NewReader(res.File.Data))
	require.NoError(t, err)
	assert.Equal(t, 600, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())

	// Outside the rectangle stays white.
	cr, cg, cb, _ := img.At(3, 3).RGBA()
	assert.Equal(t, []uint32{255, 255, 255}, []uint32{cr >> 8, cg >> 8, cb >> 8})

	// Rectangle spans x 10..60 and y 10..30 in page space; its center maps to (105, 240).
	cr, _, _, _ = img.At(105, 240).RGBA()
	assert.Less(t, cr>>8, uint32(240))
}

func TestPreviewEngineRejectsGarbage(t *testing.T) {
	r := New(EnginePreview, Options{})

	res, err := r.Convert(context.Background(), strings.NewReader("definitely not a pdf"))
	require.NoError(t, err)
	assert.Nil(t, res.File)
	assert.Equal(t, StageDocumentDecoding, res.Stage)
}

func TestPreviewPageSizeFromInheritedMediaBox(t *testing.T) {
	eng := previewEngine{}
	doc, err := eng.Open(context.Background(), rasterizetest.MinimalPDF(300, 400, ""))
	require.NoError(t, err)
	defer doc.Close()

	require.Equal(t, 1, doc.NumPages())
	page, err := doc.Page(context.Background(), 1)
	require.NoError(t, err)
	w, h := page.Size()
	assert.Equal(t, 300.0, w)
	assert.Equal(t, 400.0, h)

	_, err = doc.Page(context.Background(), 2)
	assert.Error(t, err)
}
