package rasterize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertProducesPNGAtThreeTimesPageSize(t *testing.T) {
	eng := onePage(200, 100)
	r := newFakeRasterizer(eng)

	res, err := r.Convert(context.Background(), strings.NewReader("%PDF"))
	require.NoError(t, err)
	require.NotNil(t, res.File)
	assert.Equal(t, StageDone, res.Stage)
	assert.Equal(t, "resume.png", res.File.Name)
	assert.Equal(t, "image/png", res.File.ContentType)

	img, err := imaging.Decode(bytes.NewReader(res.File.Data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 600, 300), img.Bounds())

	r8, g8, b8, _ := img.At(10, 10).RGBA()
	assert.Equal(t, []uint32{10, 20, 30}, []uint32{r8 >> 8, g8 >> 8, b8 >> 8})
	assert.Equal(t, []float64{ScaleFactor}, eng.pages[0].scales)
}

func TestConvertTruncatesFractionalSurface(t *testing.T) {
	eng := onePage(10.5, 7.9)
	r := newFakeRasterizer(eng)

	res, err := r.Convert(context.Background(), strings.NewReader("%PDF"))
	require.NoError(t, err)
	require.NotNil(t, res.File)
	require.Len(t, eng.pages[0].rendered, 1)
	assert.Equal(t, image.Rect(0, 0, 31, 23), eng.pages[0].rendered[0])
}

func TestConvertRendersOnlyFirstPage(t *testing.T) {
	eng := &fakeEngine{pages: []*fakePage{
		{width: 10, height: 10},
		{width: 20, height: 20},
	}}
	r := newFakeRasterizer(eng)

	res, err := r.Convert(context.Background(), strings.NewReader("%PDF"))
	require.NoError(t, err)
	require.NotNil(t, res.File)
	assert.Len(t, eng.pages[0].rendered, 1)
	assert.Empty(t, eng.pages[1].rendered)
}

func TestConvertFailuresYieldNilFile(t *testing.T) {
	cases := []struct {
		name   string
		engine *fakeEngine
		input  string
		stage  Stage
		target error
	}{
		{
			name:   "decode error",
			engine: &fakeEngine{openErr: errors.New("not a pdf")},
			input:  "garbage",
			stage:  StageDocumentDecoding,
		},
		{
			name:   "empty input",
			engine: onePage(10, 10),
			input:  "",
			stage:  StageDocumentDecoding,
		},
		{
			name:   "no pages",
			engine: &fakeEngine{},
			input:  "%PDF",
			stage:  StageDocumentDecoding,
			target: ErrNoPages,
		},
		{
			name:   "zero size page",
			engine: onePage(0, 100),
			input:  "%PDF",
			stage:  StagePageRendering,
			target: ErrInvalidPage,
		},
		{
			name:   "render error",
			engine: &fakeEngine{pages: []*fakePage{{width: 10, height: 10, renderErr: errors.New("boom")}}},
			input:  "%PDF",
			stage:  StagePageRendering,
		},
		{
			name:   "oversized page",
			engine: onePage(MaxSurfaceSide, 10),
			input:  "%PDF",
			stage:  StagePageRendering,
			target: ErrSurfaceTooLong,
		},
		{
			name:   "engine panic",
			engine: &fakeEngine{openPanic: "wasm trap"},
			input:  "%PDF",
			stage:  StageDocumentDecoding,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newFakeRasterizer(tc.engine)

			res, err := r.Convert(context.Background(), strings.NewReader(tc.input))
			require.NoError(t, err)
			assert.Nil(t, res.File)
			assert.False(t, res.OK())
			assert.Equal(t, tc.stage, res.Stage)
			require.Error(t, res.Err)
			if tc.target != nil {
				assert.ErrorIs(t, res.Err, tc.target)
			}
		})
	}
}

func TestConvertReadErrorYieldsNilFile(t *testing.T) {
	r := newFakeRasterizer(onePage(10, 10))

	res, err := r.Convert(context.Background(), iotest.ErrReader(errors.New("disk gone")))
	require.NoError(t, err)
	assert.Nil(t, res.File)
	assert.Equal(t, StageDocumentDecoding, res.Stage)
}

func TestConvertEmptyEncodingYieldsNilFile(t *testing.T) {
	r := newFakeRasterizer(onePage(10, 10))
	r.encode = func(image.Image) ([]byte, error) { return nil, nil }

	res, err := r.Convert(context.Background(), strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.Nil(t, res.File)
	assert.Equal(t, StageImageEncoding, res.Stage)
	assert.ErrorIs(t, res.Err, ErrEmptyImage)
}

func TestConvertClosesDocument(t *testing.T) {
	var opened *fakeDocument
	eng := &openRecorder{fakeEngine: onePage(10, 10), onOpen: func(d *fakeDocument) { opened = d }}
	r := newFakeRasterizer(eng)

	_, err := r.Convert(context.Background(), strings.NewReader("%PDF"))
	require.NoError(t, err)
	require.NotNil(t, opened)
	assert.True(t, opened.closed)
}

type openRecorder struct {
	*fakeEngine
	onOpen func(*fakeDocument)
}

func (e *openRecorder) Open(ctx context.Context, data []byte) (Document, error) {
	doc, err := e.fakeEngine.Open(ctx, data)
	if err == nil {
		e.onOpen(doc.(*fakeDocument))
	}
	return doc, err
}

func TestConvertUnknownEngineIsPrecondition(t *testing.T) {
	r := New("no-such-engine", Options{})

	res, err := r.Convert(context.Background(), strings.NewReader("%PDF"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPrecondition)
	assert.Nil(t, res.File)
	assert.ErrorIs(t, r.Available(), ErrPrecondition)

	file, err := r.ConvertPDFToImage(context.Background(), strings.NewReader("%PDF"))
	assert.ErrorIs(t, err, ErrPrecondition)
	assert.Nil(t, file)
}

func TestConvertRetriesEngineLoadOnNextCall(t *testing.T) {
	calls := 0
	eng := onePage(10, 10)
	loader := func(context.Context, Options) (Engine, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("wasm runtime failed")
		}
		return eng, nil
	}
	r := NewWithHandle("fake", NewHandle("fake", loader, Options{}))

	first, err := r.Convert(context.Background(), strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.Nil(t, first.File)
	assert.Equal(t, StageLibraryLoading, first.Stage)

	second, err := r.Convert(context.Background(), strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.NotNil(t, second.File)
	assert.Equal(t, 2, calls)
}

func TestConvertIsRepeatable(t *testing.T) {
	r := newFakeRasterizer(onePage(40, 20))

	first, err := r.ConvertPDFToImage(context.Background(), strings.NewReader("%PDF"))
	require.NoError(t, err)
	second, err := r.ConvertPDFToImage(context.Background(), strings.NewReader("%PDF"))
	require.NoError(t, err)
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first.Data, second.Data)
}

func TestResultMarshalJSON(t *testing.T) {
	failed, err := json.Marshal(Result{Stage: StageFailed, Err: errors.New("x")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"file":null}`, string(failed))

	ok, err := json.Marshal(Result{File: &File{Name: OutputName, ContentType: OutputType, Data: []byte{1, 2, 3}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"file":{"name":"resume.png","type":"image/png","size":3}}`, string(ok))
}

func TestEncodePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)

	data, err := EncodePNG(img)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}
