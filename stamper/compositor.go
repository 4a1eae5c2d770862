package stamper

import (
	"image"

	"github.com/pkg/errors"
	"github.com/saraban/pdfstamp/pdfutils"
)

// Compositor inserts rendered images into a document's pages.
type Compositor struct {
	doc pdfutils.Document
}

func NewCompositor(doc pdfutils.Document) *Compositor {
	return &Compositor{doc: doc}
}

func (c *Compositor) Place(rect pdfutils.PlacementRect, img image.Image) error {
	if rect.Page < 0 || rect.Page >= c.doc.PageCount() {
		return errors.Wrapf(pdfutils.ErrPageIndexOutOfRange, "page %d of %d", rect.Page, c.doc.PageCount())
	}

	return c.doc.InsertImage(rect, img)
}
