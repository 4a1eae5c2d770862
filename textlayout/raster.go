package textlayout

import (
	"image"
	"math"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/saraban/pdfstamp/pdfutils"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"
)

type HeightMode int

const (
	// Measured sizes each line by its glyph ink box.
	Measured HeightMode = iota
	// Fixed gives every line round(size * LineHeightRatio) pixels, so lines
	// with and without stacked marks come out the same height.
	Fixed
)

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
)

// LayoutPolicy selects how rendered lines are sized and aligned.
type LayoutPolicy struct {
	HeightMode      HeightMode
	Align           Alignment
	LineHeightRatio float64
	Padding         int
	LineGap         int
	// Scale renders at Scale times the size and downsamples the result.
	Scale int
}

const (
	DefaultLineHeightRatio = 1.3
	DefaultPadding         = 4
	DefaultLineGap         = 2
)

func DefaultPolicy() LayoutPolicy {
	return LayoutPolicy{
		HeightMode:      Measured,
		Align:           AlignLeft,
		LineHeightRatio: DefaultLineHeightRatio,
		Padding:         DefaultPadding,
		LineGap:         DefaultLineGap,
		Scale:           1,
	}
}

type Style struct {
	Weight     pdfutils.Weight
	SizePt     float64
	Color      pdfutils.RGB
	MaxWidthPx int
}

// Glyphs is rendered text on a transparent background.
type Glyphs struct {
	Image *image.RGBA
	Lines int
}

func (g *Glyphs) Width() int  { return g.Image.Bounds().Dx() }
func (g *Glyphs) Height() int { return g.Image.Bounds().Dy() }

type Rasterizer struct {
	fonts FontProvider
}

func NewRasterizer(fonts FontProvider) *Rasterizer {
	return &Rasterizer{fonts: fonts}
}

type lineBox struct {
	text     string
	width    int
	height   int
	baseline int
}

func (r *Rasterizer) Rasterize(text string, style Style, policy LayoutPolicy) (*Glyphs, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.Wrap(pdfutils.ErrEmptyContent, "rasterize")
	}

	scale := policy.Scale
	if scale < 1 {
		scale = 1
	}

	face, err := r.fonts.Face(style.Weight, style.SizePt*float64(scale))
	if err != nil {
		return nil, err
	}
	defer face.Close()

	text = norm.NFC.String(strings.ReplaceAll(text, "\r\n", "\n"))
	lines := strings.Split(text, "\n")

	if style.MaxWidthPx > 0 {
		lines = wrapByWidth(face, lines, style.MaxWidthPx*scale)
	}

	pad := policy.Padding * scale
	gap := policy.LineGap * scale
	metrics := face.Metrics()

	boxes := make([]lineBox, len(lines))
	contentW, contentH := 0, 0

	for i, line := range lines {
		b := TextBounds(face, line)
		box := lineBox{text: line, width: b.Max.X.Ceil()}
		if box.width < 0 {
			box.width = 0
		}

		switch policy.HeightMode {
		case Fixed:
			box.height = int(math.Round(style.SizePt * float64(scale) * policy.LineHeightRatio))
			asc, desc := metrics.Ascent.Ceil(), metrics.Descent.Ceil()
			box.baseline = (box.height-(asc+desc))/2 + asc
		default:
			top, bottom := b.Min.Y.Floor(), b.Max.Y.Ceil()
			if bottom <= top {
				// No ink: blank lines keep the face's natural height.
				top, bottom = -metrics.Ascent.Ceil(), metrics.Descent.Ceil()
			}
			box.height = bottom - top
			box.baseline = -top
		}

		if box.width > contentW {
			contentW = box.width
		}
		contentH += box.height
		if policy.HeightMode == Measured && i > 0 {
			contentH += gap
		}

		boxes[i] = box
	}

	img := image.NewRGBA(image.Rect(0, 0, contentW+2*pad, contentH+2*pad))

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(style.Color.RGBA()),
		Face: face,
	}

	y := pad
	for _, box := range boxes {
		x := pad
		if policy.Align == AlignCenter {
			x += (contentW - box.width) / 2
		}

		d.Dot = fixed.P(x, y+box.baseline)
		d.DrawString(box.text)

		y += box.height
		if policy.HeightMode == Measured {
			y += gap
		}
	}

	if scale > 1 {
		img = downsample(img, scale)
	}

	return &Glyphs{Image: img, Lines: len(boxes)}, nil
}

func downsample(img *image.RGBA, scale int) *image.RGBA {
	b := img.Bounds()
	w := int(math.Round(float64(b.Dx()) / float64(scale)))
	h := int(math.Round(float64(b.Dy()) / float64(scale)))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)

	return dst
}

// wrapByWidth re-breaks lines greedily at spaces so that each fits in
// maxWidth pixels, splitting overlong words between clusters.
func wrapByWidth(face font.Face, lines []string, maxWidth int) []string {
	var out []string

	for _, line := range lines {
		if MeasureText(face, line) <= maxWidth {
			out = append(out, line)
			continue
		}

		cur := ""
		for _, word := range strings.Split(line, " ") {
			candidate := word
			if cur != "" {
				candidate = cur + " " + word
			}

			if MeasureText(face, candidate) <= maxWidth {
				cur = candidate
				continue
			}

			if cur != "" {
				out = append(out, cur)
				cur = ""
			}

			if MeasureText(face, word) <= maxWidth {
				cur = word
				continue
			}

			for _, cl := range clusters(word) {
				if cur != "" && MeasureText(face, cur+cl) > maxWidth {
					out = append(out, cur)
					cur = ""
				}
				cur += cl
			}
		}

		out = append(out, cur)
	}

	return out
}

// clusters splits s into base characters with their trailing marks.
func clusters(s string) []string {
	var out []string

	for _, r := range s {
		if len(out) > 0 && (unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Me, r)) {
			out[len(out)-1] += string(r)
			continue
		}
		out = append(out, string(r))
	}

	return out
}
