package textlayout

import (
	"errors"
	"image"
	"testing"

	"github.com/saraban/pdfstamp/pdfutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

func testFonts() *FontTable {
	return NewFontTable(map[pdfutils.Weight]FontRef{
		pdfutils.Regular: {Data: goregular.TTF},
		pdfutils.Bold:    {Data: gobold.TTF},
	})
}

func testStyle() Style {
	return Style{Weight: pdfutils.Regular, SizePt: 20, Color: pdfutils.DefaultTextColor}
}

// inkLeft returns the leftmost column with any ink between rows y0 and y1.
func inkLeft(img *image.RGBA, y0, y1 int) int {
	b := img.Bounds()
	for x := b.Min.X; x < b.Max.X; x++ {
		for y := y0; y < y1; y++ {
			if img.RGBAAt(x, y).A > 0 {
				return x
			}
		}
	}
	return -1
}

func TestRasterizeMeasured(t *testing.T) {
	r := NewRasterizer(testFonts())
	policy := DefaultPolicy()

	one, err := r.Rasterize("A", testStyle(), policy)
	require.NoError(t, err)
	assert.Equal(t, 1, one.Lines)

	two, err := r.Rasterize("A\nB", testStyle(), policy)
	require.NoError(t, err)
	assert.Equal(t, 2, two.Lines)

	assert.Greater(t, two.Height(), one.Height())
	assert.Greater(t, one.Width(), 2*policy.Padding)
	assert.Greater(t, inkLeft(one.Image, 0, one.Height()), -1)
}

func TestRasterizeFixed(t *testing.T) {
	r := NewRasterizer(testFonts())
	policy := DefaultPolicy()
	policy.HeightMode = Fixed

	g, err := r.Rasterize("A\ny", testStyle(), policy)
	require.NoError(t, err)

	// Two lines of round(20 * 1.3) plus padding on both sides.
	assert.Equal(t, 2*26+2*policy.Padding, g.Height())

	low, err := r.Rasterize("a", testStyle(), policy)
	require.NoError(t, err)
	tall, err := r.Rasterize("Ág", testStyle(), policy)
	require.NoError(t, err)

	assert.Equal(t, low.Height(), tall.Height())
}

func TestRasterizeCenter(t *testing.T) {
	r := NewRasterizer(testFonts())
	policy := DefaultPolicy()
	policy.HeightMode = Fixed

	left, err := r.Rasterize("WWWWWW\ni", testStyle(), policy)
	require.NoError(t, err)

	policy.Align = AlignCenter
	center, err := r.Rasterize("WWWWWW\ni", testStyle(), policy)
	require.NoError(t, err)

	require.Equal(t, left.Image.Bounds(), center.Image.Bounds())

	second := policy.Padding + 26
	assert.Greater(t,
		inkLeft(center.Image, second, center.Height()),
		inkLeft(left.Image, second, left.Height())+20)
}

func TestRasterizeSupersample(t *testing.T) {
	r := NewRasterizer(testFonts())
	policy := DefaultPolicy()
	policy.HeightMode = Fixed

	plain, err := r.Rasterize("Sample", testStyle(), policy)
	require.NoError(t, err)

	policy.Scale = 3
	smooth, err := r.Rasterize("Sample", testStyle(), policy)
	require.NoError(t, err)

	assert.InDelta(t, plain.Height(), smooth.Height(), 2)
	assert.InDelta(t, plain.Width(), smooth.Width(), 6)
}

func TestRasterizeMaxWidth(t *testing.T) {
	fonts := testFonts()
	r := NewRasterizer(fonts)

	face, err := fonts.Face(pdfutils.Regular, 20)
	require.NoError(t, err)
	limit := MeasureText(face, "aaa bbb")

	style := testStyle()
	style.MaxWidthPx = limit

	g, err := r.Rasterize("aaa bbb aaa bbb", style, DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, 2, g.Lines)

	style.MaxWidthPx = MeasureText(face, "mm")
	g, err = r.Rasterize("mmmmmm", style, DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, 3, g.Lines)
}

func TestRasterizeEmpty(t *testing.T) {
	r := NewRasterizer(testFonts())

	_, err := r.Rasterize(" \n\t", testStyle(), DefaultPolicy())
	assert.True(t, errors.Is(err, pdfutils.ErrEmptyContent))
}

func TestFontTable(t *testing.T) {
	fonts := NewFontTable(map[pdfutils.Weight]FontRef{
		pdfutils.Regular: {Data: goregular.TTF},
		pdfutils.Bold:    {Path: "testdata/missing.ttf"},
	})

	f1, err := fonts.Font(pdfutils.Regular)
	require.NoError(t, err)
	f2, err := fonts.Font(pdfutils.Regular)
	require.NoError(t, err)
	assert.Same(t, f1, f2)

	_, err = fonts.Face(pdfutils.Bold, 12)
	assert.True(t, errors.Is(err, pdfutils.ErrFontNotFound))

	_, err = NewFontTable(nil).Face(pdfutils.Regular, 12)
	assert.True(t, errors.Is(err, pdfutils.ErrFontNotFound))

	_, err = NewFontTable(map[pdfutils.Weight]FontRef{
		pdfutils.Regular: {Data: []byte("not a font")},
	}).Font(pdfutils.Regular)
	assert.True(t, errors.Is(err, pdfutils.ErrFontNotFound))

	_, err = NewRasterizer(NewFontTable(nil)).Rasterize("x", testStyle(), DefaultPolicy())
	assert.True(t, errors.Is(err, pdfutils.ErrFontNotFound))
}
