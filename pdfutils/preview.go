package pdfutils

import (
	"image"

	"github.com/gen2brain/go-fitz"
	"github.com/pkg/errors"
)

// RenderPreview rasterises the given zero-based pages of a PDF. An empty
// page list renders every page.
func RenderPreview(pdf []byte, dpi float64, pages []int) ([]image.Image, error) {
	imgDoc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, errors.Wrap(err, "open preview document")
	}

	defer imgDoc.Close()

	if len(pages) == 0 {
		for i := 0; i < imgDoc.NumPage(); i++ {
			pages = append(pages, i)
		}
	}

	imgs := make([]image.Image, 0, len(pages))

	for _, i := range pages {
		if i < 0 || i >= imgDoc.NumPage() {
			return nil, errors.Wrapf(ErrPageIndexOutOfRange, "page %d of %d", i, imgDoc.NumPage())
		}

		pageImg, err := imgDoc.ImageDPI(i, dpi)
		if err != nil {
			return nil, errors.Wrapf(err, "render page %d", i+1)
		}

		imgs = append(imgs, pageImg)
	}

	return imgs, nil
}
