package main

import (
	"bytes"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/saraban/pdfstamp/pdfutils"
	"github.com/saraban/pdfstamp/stamper"
	"github.com/saraban/pdfstamp/textlayout"
	"github.com/sirupsen/logrus"
)

func endIfErr(e error) {
	if e != nil {
		eLog := log.New(os.Stderr, "", 0)
		eLog.Fatalln(e)
	}
}

func logOutput(out []byte) {
	oLog := log.New(os.Stdout, "", 0)
	oLog.Println(string(out))
}

// job is one document run: annotations and stamps drawn over Input and
// written to Output.
type job struct {
	Input       string            `json:"input"`
	Annotations string            `json:"annotations,omitempty"`
	Stamps      string            `json:"stamps,omitempty"`
	Images      map[string]string `json:"images,omitempty"`
	Output      string            `json:"output"`
}

func runJob(e *env, j job) error {
	jlog := e.log.WithFields(logrus.Fields{
		"run":   uuid.New().String(),
		"input": filepath.Base(j.Input),
	})

	decodeOpts, err := e.cfg.DecodeOptions()
	if err != nil {
		return err
	}

	engineOpts, err := e.cfg.EngineOptions()
	if err != nil {
		return err
	}

	images, err := pdfutils.LoadImageFiles(j.Images)
	if err != nil {
		return err
	}

	f, err := os.Open(j.Input)
	if err != nil {
		return err
	}

	defer f.Close()

	doc, err := pdfutils.OpenPDF(f)
	if err != nil {
		return err
	}

	fonts := e.cfg.FontTable()
	var placed []pdfutils.PlacementRect

	if j.Annotations != "" {
		data, err := os.ReadFile(j.Annotations)
		if err != nil {
			return err
		}

		reqs, err := pdfutils.DecodeAnnotations(bytes.NewReader(data), decodeOpts)
		if err != nil {
			return errors.Wrap(err, j.Annotations)
		}

		engine := stamper.NewEngine(fonts, images, engineOpts, jlog)
		if placed, err = engine.Render(doc, reqs); err != nil {
			return err
		}
	}

	if j.Stamps != "" {
		if err := composeStamps(e, j, doc, fonts, images, engineOpts, placed, jlog); err != nil {
			return err
		}
	}

	return writeOutput(j.Output, doc)
}

func composeStamps(e *env, j job, doc pdfutils.Document, fonts textlayout.FontProvider, images pdfutils.ImageSource, opts stamper.Options, placed []pdfutils.PlacementRect, jlog logrus.FieldLogger) error {
	layout, err := e.cfg.StampLayout()
	if err != nil {
		return err
	}

	f, err := os.Open(j.Stamps)
	if err != nil {
		return err
	}

	defer f.Close()

	stamps, err := stamper.DecodeStamps(f)
	if err != nil {
		return errors.Wrap(err, j.Stamps)
	}

	composer := stamper.NewComposer(fonts, images, opts, layout, jlog)
	composer.Avoid(placed)
	for _, s := range stamps {
		if _, err := composer.Compose(doc, s); err != nil {
			return err
		}
	}

	return nil
}

// writeOutput saves doc through a temporary file next to path so that a
// failed run never leaves a truncated output behind.
func writeOutput(path string, doc pdfutils.Document) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".pdfstamp-*.pdf")
	if err != nil {
		return err
	}

	defer os.Remove(tmp.Name())

	if err := doc.Save(tmp); err != nil {
		tmp.Close()
		return errors.Wrap(err, "save pdf")
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
