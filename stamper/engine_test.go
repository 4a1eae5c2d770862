package stamper

import (
	"errors"
	"image"
	"image/color"
	"io"
	"math"
	"testing"

	"github.com/saraban/pdfstamp/pdfutils"
	"github.com/saraban/pdfstamp/textlayout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

type fakeDoc struct {
	width  float64
	height float64
	pages  int
	images []pdfutils.PlacementRect
	boxes  []pdfutils.PlacementRect
}

func newFakeDoc(pages int) *fakeDoc {
	return &fakeDoc{width: 600, height: 800, pages: pages}
}

func (d *fakeDoc) PageCount() int { return d.pages }

func (d *fakeDoc) PageSize(page int) (float64, float64, error) {
	if page < 0 || page >= d.pages {
		return 0, 0, pdfutils.ErrPageIndexOutOfRange
	}
	return d.width, d.height, nil
}

func (d *fakeDoc) InsertImage(rect pdfutils.PlacementRect, img image.Image) error {
	d.images = append(d.images, rect)
	return nil
}

func (d *fakeDoc) DrawRectangle(rect pdfutils.PlacementRect, stroke pdfutils.RGB, width float64) error {
	d.boxes = append(d.boxes, rect)
	return nil
}

func (d *fakeDoc) Save(w io.Writer) error { return nil }

func testFonts() *textlayout.FontTable {
	return textlayout.NewFontTable(map[pdfutils.Weight]textlayout.FontRef{
		pdfutils.Regular: {Data: goregular.TTF},
		pdfutils.Bold:    {Data: gobold.TTF},
	})
}

func testImages(t *testing.T) pdfutils.ImageBlobs {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.Black)
		}
	}

	data, err := pdfutils.EncodePNG(img)
	require.NoError(t, err)

	return pdfutils.ImageBlobs{"sig": data}
}

func signatureBlock(key string) *pdfutils.AnnotationRequest {
	return &pdfutils.AnnotationRequest{
		Page: 0, X: 300, Y: 150, Width: 200, Height: 80,
		Kind: pdfutils.Image, Structured: true,
		Components: []pdfutils.Component{
			{Kind: pdfutils.Image, SourceKey: key, Height: 70},
			{Kind: pdfutils.Text, Content: "(Somchai Jaidee)", Role: pdfutils.Name, Weight: pdfutils.Bold, FontSize: 20},
			{Kind: pdfutils.Text, Content: "Director", Role: pdfutils.OrgRole, Weight: pdfutils.Bold, FontSize: 16},
		},
	}
}

func TestRenderSignatureBlock(t *testing.T) {
	doc := newFakeDoc(1)
	e := NewEngine(testFonts(), testImages(t), DefaultOptions(), nil)

	placed, err := e.Render(doc, []*pdfutils.AnnotationRequest{signatureBlock("sig")})
	require.NoError(t, err)
	require.Len(t, placed, 3)
	assert.Equal(t, placed, doc.images)

	// Box center is (300, 650); the cursor starts half a box above it.
	sig := placed[0]
	assert.Equal(t, pdfutils.NewPlacementRect(0, 230, 610, 140, 70), sig)

	name := placed[1]
	assert.Equal(t, 684.0, name.Top)
	assert.InDelta(t, 300, (name.Left+name.Right)/2, 0.5)

	role := placed[2]
	assert.Equal(t, name.Top+math.Max(24, name.Height()), role.Top)
	assert.GreaterOrEqual(t, role.Top, name.Bottom)
}

func TestRenderLegacyOrder(t *testing.T) {
	doc := newFakeDoc(1)
	e := NewEngine(testFonts(), testImages(t), DefaultOptions(), nil)

	sig := &pdfutils.AnnotationRequest{
		X: 40, Y: 100, Kind: pdfutils.Image,
		Components: []pdfutils.Component{{Kind: pdfutils.Image, SourceKey: "sig"}},
	}
	note := &pdfutils.AnnotationRequest{
		X: 40, Y: 100, Kind: pdfutils.Text,
		Components: []pdfutils.Component{{Kind: pdfutils.Text, Content: "Approved", Color: pdfutils.DefaultTextColor}},
	}

	placed, err := e.Render(doc, []*pdfutils.AnnotationRequest{sig, note})
	require.NoError(t, err)
	require.Len(t, placed, 2)

	// Text first, at the flipped anchor, then the image one line advance down.
	assert.Equal(t, 40.0, placed[0].Left)
	assert.Equal(t, 700.0, placed[0].Top)
	assert.Equal(t, 700+math.Max(24, placed[0].Height()), placed[1].Top)
	assert.Equal(t, float64(DefaultSignatureHeight), placed[1].Height())
}

func TestRenderMarkedLinesDoNotOverlap(t *testing.T) {
	doc := newFakeDoc(1)
	e := NewEngine(testFonts(), nil, DefaultOptions(), nil)

	placed, err := e.Render(doc, []*pdfutils.AnnotationRequest{{
		X: 40, Y: 100, Kind: pdfutils.Text, Structured: true,
		Components: []pdfutils.Component{
			{Kind: pdfutils.Text, Content: "ที่ดิน"},
			{Kind: pdfutils.Text, Content: "ที่ดิน"},
			{Kind: pdfutils.Text, Content: "ที่ดิน"},
		},
	}})
	require.NoError(t, err)
	require.Len(t, placed, 3)

	// Marked text is rendered at fixed height: round(20 * 1.3) plus padding.
	assert.Equal(t, 34.0, placed[0].Height())

	for i := 1; i < len(placed); i++ {
		assert.GreaterOrEqual(t, placed[i].Top, placed[i-1].Bottom, "line %d", i)
	}
}

func TestRenderMissingImage(t *testing.T) {
	e := NewEngine(testFonts(), testImages(t), DefaultOptions(), nil)

	doc := newFakeDoc(1)
	placed, err := e.Render(doc, []*pdfutils.AnnotationRequest{signatureBlock("gone")})
	require.NoError(t, err)
	assert.Len(t, placed, 2)

	doc = newFakeDoc(1)
	_, err = e.Render(doc, []*pdfutils.AnnotationRequest{{
		X: 10, Y: 10, Kind: pdfutils.Image,
		Components: []pdfutils.Component{{Kind: pdfutils.Image, SourceKey: "gone"}},
	}})
	assert.True(t, errors.Is(err, pdfutils.ErrMissingImageSource))
	assert.Empty(t, doc.images)
}

func TestRenderErrors(t *testing.T) {
	e := NewEngine(testFonts(), nil, DefaultOptions(), nil)

	_, err := e.Render(newFakeDoc(1), []*pdfutils.AnnotationRequest{{
		Page: 3, X: 10, Y: 10, Kind: pdfutils.Text,
		Components: []pdfutils.Component{{Kind: pdfutils.Text, Content: "x"}},
	}})
	assert.True(t, errors.Is(err, pdfutils.ErrPageIndexOutOfRange))

	_, err = e.Render(newFakeDoc(1), []*pdfutils.AnnotationRequest{{
		Page: 0, X: 10, Y: 10, Width: -1, Kind: pdfutils.Text,
		Components: []pdfutils.Component{{Kind: pdfutils.Text, Content: "x"}},
	}})
	assert.True(t, errors.Is(err, pdfutils.ErrInvalidAnchor))

	blank := []*pdfutils.AnnotationRequest{{
		X: 10, Y: 10, Kind: pdfutils.Text,
		Components: []pdfutils.Component{{Kind: pdfutils.Text, Content: "  "}},
	}}

	_, err = e.Render(newFakeDoc(1), blank)
	assert.True(t, errors.Is(err, pdfutils.ErrEmptyContent))

	opts := DefaultOptions()
	opts.EmptyTextPlaceholder = "-"
	placed, err := NewEngine(testFonts(), nil, opts, nil).Render(newFakeDoc(1), blank)
	require.NoError(t, err)
	assert.Len(t, placed, 1)
}

func TestRenderTextForcesFixedHeightForMarks(t *testing.T) {
	r := textlayout.NewRasterizer(testFonts())
	opts := DefaultOptions()
	style := textlayout.Style{Weight: pdfutils.Regular, SizePt: 20}

	plain, err := renderText(r, opts, "aaaa", style, opts.Policy)
	require.NoError(t, err)
	marked, err := renderText(r, opts, "aิaaa", style, opts.Policy)
	require.NoError(t, err)

	assert.Equal(t, 26+2*opts.Policy.Padding, marked.Height())
	assert.NotEqual(t, plain.Height(), marked.Height())
}

func TestRenderTextWraps(t *testing.T) {
	r := textlayout.NewRasterizer(testFonts())
	opts := DefaultOptions()
	opts.Wrapper.MaxVisible = 4
	style := textlayout.Style{Weight: pdfutils.Regular, SizePt: 20}

	g, err := renderText(r, opts, "abcd efgh\nij", style, opts.Policy)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Lines)
}
