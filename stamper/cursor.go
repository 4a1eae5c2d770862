package stamper

import (
	"github.com/saraban/pdfstamp/pdfutils"
)

// Gutters controls how far the cursor moves after each element.
type Gutters struct {
	// SingleLineAdvance is the fixed advance after one line of text, raised
	// to the rendered height when the line is taller. Zero advances by the
	// rendered height plus TextGutter instead.
	SingleLineAdvance float64
	TextGutter        float64
	ImageGutter       float64
}

func DefaultGutters() Gutters {
	return Gutters{
		SingleLineAdvance: 24,
		TextGutter:        4,
		ImageGutter:       4,
	}
}

// Element is a rendered item waiting for a position.
type Element struct {
	Kind         pdfutils.Kind
	Width        float64
	Height       float64
	Lines        int
	CenterOnPage bool
}

// Cursor walks down one cluster, handing out rects for its elements.
type Cursor struct {
	page      int
	anchor    Anchor
	pageWidth float64
	gutters   Gutters
	y         float64
}

func NewCursor(page int, anchor Anchor, pageWidth float64, gutters Gutters) *Cursor {
	y := anchor.Y
	if anchor.CenterBox {
		y = anchor.Y - anchor.BoxHeight/2
	}

	return &Cursor{
		page:      page,
		anchor:    anchor,
		pageWidth: pageWidth,
		gutters:   gutters,
		y:         y,
	}
}

func (c *Cursor) Y() float64 {
	return c.y
}

// Place returns the rect for e at the cursor and advances past it.
func (c *Cursor) Place(e Element) pdfutils.PlacementRect {
	var left float64

	switch {
	case c.anchor.CenterBox:
		left = c.anchor.X - e.Width/2
	case e.CenterOnPage:
		left = c.pageWidth/2 - e.Width/2
	default:
		left = c.anchor.X
	}

	rect := pdfutils.NewPlacementRect(c.page, left, c.y, e.Width, e.Height)
	c.Advance(e)

	return rect
}

// Advance moves the cursor past e without placing it.
func (c *Cursor) Advance(e Element) (from, to float64) {
	from = c.y

	switch {
	case e.Kind == pdfutils.Image:
		c.y += e.Height + c.gutters.ImageGutter
	case e.Lines <= 1 && c.gutters.SingleLineAdvance > 0:
		adv := c.gutters.SingleLineAdvance
		if e.Height > adv {
			adv = e.Height
		}
		c.y += adv
	default:
		c.y += e.Height + c.gutters.TextGutter
	}

	return from, c.y
}

// PlaceAll places elements in order from the cursor's current position.
func (c *Cursor) PlaceAll(elems []Element) []pdfutils.PlacementRect {
	rects := make([]pdfutils.PlacementRect, 0, len(elems))
	for _, e := range elems {
		rects = append(rects, c.Place(e))
	}
	return rects
}
