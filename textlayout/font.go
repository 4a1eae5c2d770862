package textlayout

import (
	"os"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"github.com/saraban/pdfstamp/pdfutils"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// FontProvider resolves a weight and size to a face usable for measuring
// and drawing.
type FontProvider interface {
	Face(weight pdfutils.Weight, sizePt float64) (font.Face, error)
}

// FontRef locates a TrueType font either on disk or in memory.
type FontRef struct {
	Path string
	Data []byte
}

// FontTable maps weights to font files. Parsed fonts are cached and may be
// shared between goroutines; faces are not and are built per call.
type FontTable struct {
	mu     sync.Mutex
	refs   map[pdfutils.Weight]FontRef
	parsed map[pdfutils.Weight]*truetype.Font
	dpi    float64
}

func NewFontTable(refs map[pdfutils.Weight]FontRef) *FontTable {
	return &FontTable{
		refs:   refs,
		parsed: map[pdfutils.Weight]*truetype.Font{},
		dpi:    72,
	}
}

func (t *FontTable) Font(weight pdfutils.Weight) (*truetype.Font, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if f, ok := t.parsed[weight]; ok {
		return f, nil
	}

	ref, ok := t.refs[weight]
	if !ok {
		return nil, errors.Wrapf(pdfutils.ErrFontNotFound, "no %s font configured", weight)
	}

	data := ref.Data
	if data == nil {
		b, err := os.ReadFile(ref.Path)
		if err != nil {
			return nil, errors.Wrapf(pdfutils.ErrFontNotFound, "%s: %v", ref.Path, err)
		}
		data = b
	}

	f, err := truetype.Parse(data)
	if err != nil {
		return nil, errors.Wrapf(pdfutils.ErrFontNotFound, "parse %s font: %v", weight, err)
	}

	t.parsed[weight] = f

	return f, nil
}

func (t *FontTable) Face(weight pdfutils.Weight, sizePt float64) (font.Face, error) {
	f, err := t.Font(weight)
	if err != nil {
		return nil, err
	}

	return truetype.NewFace(f, &truetype.Options{
		Size:    sizePt,
		DPI:     t.dpi,
		Hinting: font.HintingFull,
	}), nil
}

// MeasureText returns the advance width of s in pixels.
func MeasureText(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// TextBounds returns the ink box of s relative to a dot at the origin.
func TextBounds(face font.Face, s string) fixed.Rectangle26_6 {
	b, _ := font.BoundString(face, s)
	return b
}
