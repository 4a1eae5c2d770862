package pdfutils

import (
	"fmt"
	"image"
	"io"

	"github.com/mgmeyers/unipdf/v3/contentstream"
	"github.com/mgmeyers/unipdf/v3/core"
	"github.com/mgmeyers/unipdf/v3/creator"
	"github.com/mgmeyers/unipdf/v3/model"
	"github.com/pkg/errors"
)

// Document is an opened, page-indexed PDF that annotations are drawn onto.
type Document interface {
	PageCount() int
	PageSize(page int) (width float64, height float64, err error)
	InsertImage(rect PlacementRect, img image.Image) error
	DrawRectangle(rect PlacementRect, stroke RGB, strokeWidth float64) error
	Save(w io.Writer) error
}

type pageOp func(c *creator.Creator) error

// PDFDocument is a Document backed by unipdf. Images are embedded into
// their page as they are inserted; rectangles are recorded per page and
// drawn when the document is saved.
type PDFDocument struct {
	pages      []*model.PdfPage
	ops        map[int][]pageOp
	isolated   map[int]bool
	imageCount int
}

func OpenPDF(rs io.ReadSeeker) (*PDFDocument, error) {
	pdfReader, err := model.NewPdfReader(rs)
	if err != nil {
		return nil, errors.Wrap(err, "open pdf")
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, errors.Wrap(err, "count pages")
	}

	doc := &PDFDocument{ops: map[int][]pageOp{}, isolated: map[int]bool{}}

	for i := 0; i < numPages; i++ {
		page, err := pdfReader.GetPage(i + 1)
		if err != nil {
			return nil, errors.Wrapf(err, "read page %d", i+1)
		}

		// MediaBox may be inherited from the page tree.
		if page.MediaBox == nil {
			mediaBox, err := page.GetMediaBox()
			if err != nil {
				return nil, errors.Wrapf(err, "media box of page %d", i+1)
			}
			page.MediaBox = mediaBox
		}

		doc.pages = append(doc.pages, page)
	}

	return doc, nil
}

func (d *PDFDocument) PageCount() int {
	return len(d.pages)
}

func (d *PDFDocument) checkPage(page int) error {
	if page < 0 || page >= len(d.pages) {
		return errors.Wrapf(ErrPageIndexOutOfRange, "page %d of %d", page, len(d.pages))
	}
	return nil
}

func (d *PDFDocument) PageSize(page int) (float64, float64, error) {
	if err := d.checkPage(page); err != nil {
		return 0, 0, err
	}

	p := d.pages[page]
	return p.MediaBox.Width(), p.MediaBox.Height(), nil
}

// InsertImage embeds img into the page as an image XObject right away, so
// the raster is not held until Save.
func (d *PDFDocument) InsertImage(rect PlacementRect, img image.Image) error {
	if err := d.checkPage(rect.Page); err != nil {
		return err
	}

	page := d.pages[rect.Page]
	if err := d.isolate(rect.Page); err != nil {
		return err
	}
	if page.Resources == nil {
		page.Resources = model.NewPdfPageResources()
	}

	mimg, err := model.ImageHandling.NewImageFromGoImage(img)
	if err != nil {
		return errors.Wrap(err, "convert image")
	}

	ximg, err := model.NewXObjectImageFromImage(mimg, nil, core.NewFlateEncoder())
	if err != nil {
		return errors.Wrap(err, "encode image")
	}

	name := d.nextImageName(page)
	if err := page.AddImageResource(name, ximg); err != nil {
		return errors.Wrapf(err, "add image to page %d", rect.Page+1)
	}

	// Page space has its origin at the bottom-left of the media box.
	mb := page.MediaBox
	ops := contentstream.NewContentCreator().
		Add_q().
		Add_cm(rect.Width(), 0, 0, rect.Height(), mb.Llx+rect.Left, mb.Ury-rect.Bottom).
		Add_Do(name).
		Add_Q()

	return page.AddContentStreamByString(ops.String())
}

// isolate wraps the page's existing content in q/Q once, so state it
// leaves behind does not leak into inserted images.
func (d *PDFDocument) isolate(page int) error {
	if d.isolated[page] {
		return nil
	}

	p := d.pages[page]
	streams, err := p.GetContentStreams()
	if err != nil {
		return errors.Wrapf(err, "content of page %d", page+1)
	}

	wrapped := append([]string{"q"}, streams...)
	wrapped = append(wrapped, "Q")
	if err := p.SetContentStreams(wrapped, core.NewFlateEncoder()); err != nil {
		return errors.Wrapf(err, "content of page %d", page+1)
	}

	d.isolated[page] = true

	return nil
}

func (d *PDFDocument) nextImageName(page *model.PdfPage) core.PdfObjectName {
	for {
		d.imageCount++
		name := core.PdfObjectName(fmt.Sprintf("Stamp%d", d.imageCount))
		if !page.HasXObjectByName(name) {
			return name
		}
	}
}

func (d *PDFDocument) DrawRectangle(rect PlacementRect, stroke RGB, strokeWidth float64) error {
	if err := d.checkPage(rect.Page); err != nil {
		return err
	}

	d.ops[rect.Page] = append(d.ops[rect.Page], func(c *creator.Creator) error {
		r := c.NewRectangle(rect.Left, rect.Top, rect.Width(), rect.Height())
		r.SetBorderColor(creator.ColorRGBFrom8bit(stroke.R, stroke.G, stroke.B))
		r.SetBorderWidth(strokeWidth)

		return c.Draw(r)
	})

	return nil
}

// Save writes every page with its recorded rectangles drawn. Recorded
// operations are released afterwards.
func (d *PDFDocument) Save(w io.Writer) error {
	c := creator.New()

	for i, page := range d.pages {
		if err := c.AddPage(page); err != nil {
			return errors.Wrapf(err, "add page %d", i+1)
		}

		for _, op := range d.ops[i] {
			if err := op(c); err != nil {
				return errors.Wrapf(err, "draw on page %d", i+1)
			}
		}
	}

	d.ops = map[int][]pageOp{}

	return c.Write(w)
}
