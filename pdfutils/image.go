package pdfutils

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"os"

	"github.com/pkg/errors"
	xdraw "golang.org/x/image/draw"
)

// ImageSource resolves the caller-supplied images referenced by components.
type ImageSource interface {
	Image(key string) (image.Image, error)
}

// ImageBlobs is an ImageSource over raw uploaded bytes keyed by file key.
type ImageBlobs map[string][]byte

func (b ImageBlobs) Image(key string) (image.Image, error) {
	data, ok := b[key]
	if !ok {
		return nil, errors.Wrapf(ErrMissingImageSource, "source key %q", key)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "decode image %q", key)
	}

	return img, nil
}

// LoadImageFiles reads every path into an ImageBlobs keyed like paths.
func LoadImageFiles(paths map[string]string) (ImageBlobs, error) {
	blobs := make(ImageBlobs, len(paths))

	for key, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read image %q", key)
		}
		blobs[key] = data
	}

	return blobs, nil
}

// ResizeToHeight scales img to height pixels, keeping its aspect ratio.
func ResizeToHeight(img image.Image, height int) image.Image {
	b := img.Bounds()
	if height <= 0 || b.Dy() == 0 || b.Dy() == height {
		return img
	}

	ratio := float64(height) / float64(b.Dy())
	width := int(float64(b.Dx()) * ratio)
	if width < 1 {
		width = 1
	}

	return ScaleImage(img, width, height)
}

func ScaleImage(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	return dst
}

func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func WriteImage(img image.Image, name string, format string, quality int) error {
	if format == "jpg" {
		return writeJPGImage(img, name, quality)
	}

	return writePNGImage(img, name)
}

func writeJPGImage(img image.Image, name string, quality int) error {
	fd, err := os.Create(name)
	if err != nil {
		return err
	}

	defer fd.Close()
	return jpeg.Encode(fd, img, &jpeg.Options{Quality: quality})
}

func writePNGImage(img image.Image, name string) error {
	fd, err := os.Create(name)
	if err != nil {
		return err
	}

	defer fd.Close()
	return png.Encode(fd, img)
}
