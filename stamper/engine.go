package stamper

import (
	"image"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/saraban/pdfstamp/pdfutils"
	"github.com/saraban/pdfstamp/textlayout"
	"github.com/sirupsen/logrus"
)

const (
	DefaultFontSize        = 20
	DefaultSignatureHeight = 70
)

type Options struct {
	Digits      pdfutils.Digits
	Wrapper     textlayout.Wrapper
	Policy      textlayout.LayoutPolicy
	Calibration Calibration
	Gutters     Gutters
	// FontSize and ImageHeight fill in components that leave them zero.
	FontSize    int
	ImageHeight int
	// MaxTextWidthPx re-wraps text by measured width when positive.
	MaxTextWidthPx int
	// EmptyTextPlaceholder replaces blank text components. When empty,
	// blank text fails with ErrEmptyContent.
	EmptyTextPlaceholder string
}

func DefaultOptions() Options {
	return Options{
		Digits:      pdfutils.ThaiDigits,
		Wrapper:     textlayout.Wrapper{Marks: textlayout.ThaiMarks()},
		Policy:      textlayout.DefaultPolicy(),
		Calibration: DefaultCalibration(),
		Gutters:     DefaultGutters(),
		FontSize:    DefaultFontSize,
		ImageHeight: DefaultSignatureHeight,
	}
}

// Engine places annotation requests onto a document. It keeps no state
// between calls to Render.
type Engine struct {
	raster *textlayout.Rasterizer
	images pdfutils.ImageSource
	opts   Options
	log    logrus.FieldLogger
}

func NewEngine(fonts textlayout.FontProvider, images pdfutils.ImageSource, opts Options, log logrus.FieldLogger) *Engine {
	if log == nil {
		discard := logrus.New()
		discard.Out = io.Discard
		log = discard
	}

	if images == nil {
		images = pdfutils.ImageBlobs{}
	}

	return &Engine{
		raster: textlayout.NewRasterizer(fonts),
		images: images,
		opts:   opts,
		log:    log,
	}
}

// Render draws every request onto doc and returns the rects it placed, in
// placement order. On error the document may hold a partial result.
func (e *Engine) Render(doc pdfutils.Document, reqs []*pdfutils.AnnotationRequest) ([]pdfutils.PlacementRect, error) {
	comp := NewCompositor(doc)
	placed := []pdfutils.PlacementRect{}
	ids := map[string]bool{}

	for _, cl := range Group(reqs) {
		if err := cl.Key.Validate(); err != nil {
			return placed, err
		}

		pageWidth, pageHeight, err := doc.PageSize(cl.Key.Page)
		if err != nil {
			return placed, err
		}

		anchor := Resolve(cl.Key, pageHeight, e.opts.Calibration)
		cur := NewCursor(cl.Key.Page, anchor, pageWidth, e.opts.Gutters)

		clog := e.log.WithFields(logrus.Fields{
			"anchor": pdfutils.AnchorID(ids, semantics(anchor), cl.Key.Page, cl.Key.X, cl.Key.Y),
			"page":   cl.Key.Page + 1,
		})
		clog.WithFields(logrus.Fields{
			"x":        anchor.X,
			"y":        anchor.Y,
			"requests": len(cl.Requests),
		}).Debug("cluster resolved")

		for _, req := range cl.Requests {
			for i, c := range req.Components {
				img, lines, err := e.renderComponent(c)
				if errors.Is(err, pdfutils.ErrMissingImageSource) && len(req.Components) > 1 {
					clog.WithField("component", i).WithError(err).Warn("component skipped")
					continue
				}
				if err != nil {
					return placed, errors.Wrapf(err, "page %d anchor (%d,%d) component %d", cl.Key.Page, cl.Key.X, cl.Key.Y, i)
				}

				b := img.Bounds()
				el := Element{
					Kind:         c.Kind,
					Width:        float64(b.Dx()),
					Height:       float64(b.Dy()),
					Lines:        lines,
					CenterOnPage: req.CenterOnPage,
				}

				from := cur.Y()
				rect := cur.Place(el)

				if err := comp.Place(rect, img); err != nil {
					return placed, err
				}
				placed = append(placed, rect)

				elog := clog.WithFields(logrus.Fields{"kind": c.Kind, "rect": rect.String()})
				if c.Kind == pdfutils.Text {
					elog = elog.WithFields(logrus.Fields{
						"role":  c.Role,
						"color": c.Color.Hex(),
						"hue":   pdfutils.ColorCategory(c.Color),
					})
				}
				elog.Debug("element placed")
				clog.WithFields(logrus.Fields{"from": from, "to": cur.Y()}).Debug("cursor advanced")
			}
		}
	}

	for page := 0; page < doc.PageCount(); page++ {
		if u, ok := pdfutils.UnionBounds(page, placed); ok {
			e.log.WithFields(logrus.Fields{"page": page + 1, "extent": u.String()}).Debug("page annotated")
		}
	}

	e.log.WithField("placed", len(placed)).Info("annotations rendered")

	return placed, nil
}

func semantics(a Anchor) string {
	if a.CenterBox {
		return "box"
	}
	return "point"
}

func (e *Engine) renderComponent(c pdfutils.Component) (image.Image, int, error) {
	if c.Kind == pdfutils.Image {
		img, err := e.images.Image(c.SourceKey)
		if err != nil {
			return nil, 0, err
		}
		height := c.Height
		if height <= 0 {
			height = e.opts.ImageHeight
		}
		return pdfutils.ResizeToHeight(img, height), 1, nil
	}

	text := c.Content
	if strings.TrimSpace(text) == "" && e.opts.EmptyTextPlaceholder != "" {
		text = e.opts.EmptyTextPlaceholder
	}

	size := c.FontSize
	if size <= 0 {
		size = e.opts.FontSize
	}

	g, err := renderText(e.raster, e.opts, text, textlayout.Style{
		Weight:     c.Weight,
		SizePt:     float64(size),
		Color:      c.Color,
		MaxWidthPx: e.opts.MaxTextWidthPx,
	}, e.opts.Policy)
	if err != nil {
		return nil, 0, err
	}

	return g.Image, g.Lines, nil
}

// renderText localises digits, wraps by visible length and rasterises.
// Text carrying combining marks always uses fixed line heights.
func renderText(r *textlayout.Rasterizer, opts Options, text string, style textlayout.Style, policy textlayout.LayoutPolicy) (*textlayout.Glyphs, error) {
	text = opts.Digits.String(text)

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		lines = append(lines, opts.Wrapper.Wrap(line)...)
	}
	text = strings.Join(lines, "\n")

	if opts.Wrapper.Marks.Contains(text) {
		policy.HeightMode = textlayout.Fixed
	}

	return r.Rasterize(text, style, policy)
}
