package stamper

import (
	"encoding/json"
	"image"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/saraban/pdfstamp/pdfutils"
	"github.com/saraban/pdfstamp/textlayout"
	"github.com/sirupsen/logrus"
)

type StampKind string

const (
	Registration StampKind = "registration"
	Routing      StampKind = "routing"
)

// Stamp is the content of one rubber-stamp block. A positive Width and
// Height anchor the box by its center; otherwise it sits in the page's
// bottom-left corner.
type Stamp struct {
	Kind         StampKind `json:"kind"`
	Page         int       `json:"page"`
	X            int       `json:"x,omitempty"`
	Y            int       `json:"y,omitempty"`
	Width        int       `json:"width,omitempty"`
	Height       int       `json:"height,omitempty"`
	Org          string    `json:"org"`
	Number       string    `json:"number,omitempty"`
	Subject      string    `json:"subject,omitempty"`
	Assignment   string    `json:"assignment,omitempty"`
	Receiver     string    `json:"receiver,omitempty"`
	Date         string    `json:"date,omitempty"`
	Time         string    `json:"time,omitempty"`
	SignatureKey string    `json:"signature_key,omitempty"`
}

// wireStamp accepts fractional coordinates; they are truncated like
// annotation anchors.
type wireStamp struct {
	Stamp
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

func DecodeStamps(r io.Reader) ([]Stamp, error) {
	var wire []wireStamp
	if err := json.NewDecoder(r).Decode(&wire); err != nil {
		return nil, errors.Wrap(pdfutils.ErrMalformedRequest, err.Error())
	}

	stamps := make([]Stamp, 0, len(wire))
	for i, w := range wire {
		s := w.Stamp
		if s.Kind != Registration && s.Kind != Routing {
			return nil, errors.Wrapf(pdfutils.ErrMalformedRequest, "stamp %d: unknown kind %q", i, s.Kind)
		}
		if s.Page < 0 || w.Width < 0 || w.Height < 0 {
			return nil, errors.Wrapf(pdfutils.ErrInvalidAnchor, "stamp %d", i)
		}
		s.X, s.Y = int(w.X), int(w.Y)
		s.Width, s.Height = int(w.Width), int(w.Height)
		stamps = append(stamps, s)
	}

	return stamps, nil
}

// StampLabels are the fixed captions printed before each field.
type StampLabels struct {
	Number     string `yaml:"number"`
	Subject    string `yaml:"subject"`
	Assignment string `yaml:"assignment"`
	Signed     string `yaml:"signed"`
	Receiver   string `yaml:"receiver"`
	Date       string `yaml:"date"`
	Time       string `yaml:"time"`
	// Placeholder stands in for fields left empty.
	Placeholder string `yaml:"placeholder"`
}

func DefaultStampLabels() StampLabels {
	return StampLabels{
		Number:      "เลขรับที่",
		Subject:     "เรื่อง",
		Assignment:  "เรียน",
		Signed:      "ลงชื่อ",
		Receiver:    "ผู้รับ",
		Date:        "วันที่",
		Time:        "เวลา",
		Placeholder: "..................",
	}
}

type StampLayout struct {
	BoxWidth        float64
	Margin          float64
	Padding         float64
	RowGap          float64
	LabelSpacing    float64
	BorderWidth     float64
	FontSize        float64
	HeaderSize      float64
	SubjectChars    int
	SignatureHeight int
	Color           pdfutils.RGB
	Labels          StampLabels
}

func DefaultStampLayout() StampLayout {
	return StampLayout{
		BoxWidth:        220,
		Margin:          36,
		Padding:         6,
		RowGap:          2,
		LabelSpacing:    6,
		BorderWidth:     1.5,
		FontSize:        16,
		HeaderSize:      18,
		SubjectChars:    40,
		SignatureHeight: 40,
		Color:           pdfutils.DefaultTextColor,
		Labels:          DefaultStampLabels(),
	}
}

// stampRow is a line of the stamp: one item, or a label and an image
// placed side by side as one unit.
type stampRow struct {
	items    []image.Image
	centered bool
	lines    int
}

func (r stampRow) size(spacing float64) (w, h float64) {
	for i, it := range r.items {
		b := it.Bounds()
		w += float64(b.Dx())
		if i > 0 {
			w += spacing
		}
		if float64(b.Dy()) > h {
			h = float64(b.Dy())
		}
	}
	return w, h
}

// Composer draws fixed-format stamps with the same primitives the engine
// uses for annotations.
type Composer struct {
	raster *textlayout.Rasterizer
	images pdfutils.ImageSource
	opts   Options
	layout StampLayout
	log    logrus.FieldLogger
	placed []pdfutils.PlacementRect
}

func NewComposer(fonts textlayout.FontProvider, images pdfutils.ImageSource, opts Options, layout StampLayout, log logrus.FieldLogger) *Composer {
	e := NewEngine(fonts, images, opts, log)

	return &Composer{
		raster: e.raster,
		images: e.images,
		opts:   opts,
		layout: layout,
		log:    e.log,
	}
}

// Avoid records rects already drawn on the document. Stamps covering them
// are still drawn but logged.
func (c *Composer) Avoid(rects []pdfutils.PlacementRect) {
	c.placed = append(c.placed, rects...)
}

// Compose renders every field, sizes the box to fit them and draws the
// box and its rows onto doc. It returns the box rect.
func (c *Composer) Compose(doc pdfutils.Document, s Stamp) (pdfutils.PlacementRect, error) {
	key := AnchorKey{Page: s.Page, X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
	if err := key.Validate(); err != nil {
		return pdfutils.PlacementRect{}, err
	}

	pageWidth, pageHeight, err := doc.PageSize(s.Page)
	if err != nil {
		return pdfutils.PlacementRect{}, err
	}

	rows, err := c.rows(s)
	if err != nil {
		return pdfutils.PlacementRect{}, errors.Wrapf(err, "%s stamp", s.Kind)
	}

	l := c.layout
	boxW := l.BoxWidth
	boxH := 2 * l.Padding

	for i, r := range rows {
		w, h := r.size(l.LabelSpacing)
		if w+2*l.Padding > boxW {
			boxW = w + 2*l.Padding
		}
		boxH += h
		if i > 0 {
			boxH += l.RowGap
		}
	}

	var left, top float64
	if key.CenterBox() {
		a := ResolveStamp(key, pageHeight, c.opts.Calibration)
		left = a.X - boxW/2
		top = a.Y - boxH/2
	} else {
		left = l.Margin
		top = pageHeight - l.Margin - boxH
	}

	box := pdfutils.NewPlacementRect(s.Page, left, top, boxW, boxH)
	if err := doc.DrawRectangle(box, l.Color, l.BorderWidth); err != nil {
		return box, err
	}

	slog := c.log.WithFields(logrus.Fields{"stamp": s.Kind, "page": s.Page + 1, "box": box.String()})
	if box.Right > pageWidth || box.Left < 0 || box.Top < 0 || box.Bottom > pageHeight {
		slog.Warn("stamp extends past page")
	}
	if hits := pdfutils.Overlapping(box, c.placed); len(hits) > 0 {
		slog.WithField("covered", len(hits)).Warn("stamp covers placed annotations")
	}
	c.placed = append(c.placed, box)

	comp := NewCompositor(doc)
	cur := NewCursor(s.Page, Anchor{X: left + l.Padding, Y: top + l.Padding}, pageWidth, Gutters{
		TextGutter:  l.RowGap,
		ImageGutter: l.RowGap,
	})

	for _, r := range rows {
		w, h := r.size(l.LabelSpacing)
		rowTop := cur.Y()

		x := left + l.Padding
		if r.centered {
			x = left + (boxW-w)/2
		}

		for _, it := range r.items {
			b := it.Bounds()
			itemTop := rowTop + (h-float64(b.Dy()))/2
			rect := pdfutils.NewPlacementRect(s.Page, x, itemTop, float64(b.Dx()), float64(b.Dy()))

			if err := comp.Place(rect, it); err != nil {
				return box, err
			}
			slog.WithField("rect", rect.String()).Debug("element placed")

			x += float64(b.Dx()) + l.LabelSpacing
		}

		kind := pdfutils.Text
		if len(r.items) > 1 {
			kind = pdfutils.Image
		}
		cur.Advance(Element{Kind: kind, Height: h, Lines: r.lines})
	}

	slog.Info("stamp composed")

	return box, nil
}

func (c *Composer) rows(s Stamp) ([]stampRow, error) {
	l := c.layout
	lb := l.Labels

	header, err := c.text(s.Org, pdfutils.Bold, l.HeaderSize, textlayout.AlignCenter, 0, "")
	if err != nil {
		return nil, errors.Wrap(err, "org")
	}
	rows := []stampRow{header}

	add := func(label, value string, align textlayout.Alignment, chars int) error {
		r, err := c.text(c.labelled(label, value), pdfutils.Regular, l.FontSize, align, chars, label)
		if err != nil {
			return errors.Wrap(err, label)
		}
		rows = append(rows, r)
		return nil
	}

	switch s.Kind {
	case Registration:
		for _, f := range [][2]string{
			{lb.Number, s.Number},
			{lb.Date, s.Date},
			{lb.Time, s.Time},
			{lb.Receiver, s.Receiver},
		} {
			if err := add(f[0], f[1], textlayout.AlignLeft, 0); err != nil {
				return nil, err
			}
		}
	default:
		if err := add(lb.Subject, s.Subject, textlayout.AlignLeft, l.SubjectChars); err != nil {
			return nil, err
		}
		if err := add(lb.Assignment, s.Assignment, textlayout.AlignLeft, l.SubjectChars); err != nil {
			return nil, err
		}

		signed, err := c.signedRow(s)
		if err != nil {
			return nil, err
		}
		rows = append(rows, signed)

		if err := add(lb.Receiver, s.Receiver, textlayout.AlignCenter, 0); err != nil {
			return nil, err
		}
		if err := add(lb.Date, s.Date, textlayout.AlignCenter, 0); err != nil {
			return nil, err
		}
	}

	return rows, nil
}

func (c *Composer) labelled(label, value string) string {
	value = pdfutils.CondenseSpaces(strings.TrimSpace(value))
	if value == "" {
		value = c.layout.Labels.Placeholder
	}
	return label + " " + value
}

// signedRow pairs the "signed" label with the signature image. A missing
// signature leaves the label and a placeholder in its place.
func (c *Composer) signedRow(s Stamp) (stampRow, error) {
	l := c.layout

	var sig image.Image
	if s.SignatureKey != "" {
		img, err := c.images.Image(s.SignatureKey)
		switch {
		case errors.Is(err, pdfutils.ErrMissingImageSource):
			c.log.WithError(err).Warn("stamp signature skipped")
		case err != nil:
			return stampRow{}, err
		default:
			sig = pdfutils.ResizeToHeight(img, l.SignatureHeight)
		}
	}

	label := l.Labels.Signed
	if sig == nil {
		label = c.labelled(label, "")
	}

	row, err := c.text(label, pdfutils.Regular, l.FontSize, textlayout.AlignLeft, 0, "")
	if err != nil {
		return stampRow{}, errors.Wrap(err, "signed")
	}

	row.centered = true
	if sig != nil {
		row.items = append(row.items, sig)
	}

	return row, nil
}

func (c *Composer) text(text string, weight pdfutils.Weight, size float64, align textlayout.Alignment, chars int, glued string) (stampRow, error) {
	opts := c.opts
	opts.Wrapper.MaxVisible = chars
	if glued != "" {
		opts.Wrapper.GluedPrefixes = append([]string{glued}, opts.Wrapper.GluedPrefixes...)
	}

	policy := c.opts.Policy
	policy.HeightMode = textlayout.Fixed
	policy.Align = align

	g, err := renderText(c.raster, opts, text, textlayout.Style{
		Weight: weight,
		SizePt: size,
		Color:  c.layout.Color,
	}, policy)
	if err != nil {
		return stampRow{}, err
	}

	return stampRow{
		items:    []image.Image{g.Image},
		centered: align == textlayout.AlignCenter,
		lines:    g.Lines,
	}, nil
}
