package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/saraban/pdfstamp/config"
	"github.com/saraban/pdfstamp/pdfutils"
	"github.com/sirupsen/logrus"
)

var cli struct {
	Config   string `short:"c" type:"path" env:"PDFSTAMP_CONFIG" help:"YAML configuration file"`
	LogLevel string `default:"info" enum:"debug,info,warn,error" env:"PDFSTAMP_LOG_LEVEL" help:"Log level"`
	LogJSON  bool   `env:"PDFSTAMP_LOG_JSON" help:"Emit logs as JSON"`

	Annotate annotateCmd `cmd:"" help:"Overlay text and signature annotations onto a PDF"`
	Stamp    stampCmd    `cmd:"" help:"Draw registration or routing stamps onto a PDF"`
	Localize localizeCmd `cmd:"" help:"Localise the digits of every string in a JSON document"`
	Preview  previewCmd  `cmd:"" help:"Render PDF pages to images"`
	Batch    batchCmd    `cmd:"" help:"Run a manifest of annotate jobs"`
}

type env struct {
	cfg *config.Config
	log *logrus.Logger
}

type annotateCmd struct {
	Annotations string            `short:"a" required:"" type:"existingfile" help:"JSON annotation list"`
	Images      map[string]string `short:"i" help:"Signature images as key=path"`
	Output      string            `short:"o" required:"" type:"path" help:"Output PDF"`

	InputPDF string `arg:"" name:"input" help:"Path to input PDF" type:"existingfile"`
}

func (a *annotateCmd) Run(e *env) error {
	return runJob(e, job{
		Input:       a.InputPDF,
		Annotations: a.Annotations,
		Images:      a.Images,
		Output:      a.Output,
	})
}

type stampCmd struct {
	Stamps string            `short:"s" required:"" type:"existingfile" help:"JSON stamp list"`
	Images map[string]string `short:"i" help:"Signature images as key=path"`
	Output string            `short:"o" required:"" type:"path" help:"Output PDF"`

	InputPDF string `arg:"" name:"input" help:"Path to input PDF" type:"existingfile"`
}

func (s *stampCmd) Run(e *env) error {
	return runJob(e, job{
		Input:  s.InputPDF,
		Stamps: s.Stamps,
		Images: s.Images,
		Output: s.Output,
	})
}

type localizeCmd struct {
	Digits string `short:"d" help:"Digit alphabet; defaults to the configured one"`

	Input string `arg:"" name:"input" help:"JSON document" type:"existingfile"`
}

func (l *localizeCmd) Run(e *env) error {
	name := l.Digits
	if name == "" {
		name = e.cfg.Digits
	}

	digits, ok := pdfutils.DigitsByName(name)
	if !ok {
		return errors.Errorf("unknown digit alphabet %q", name)
	}

	data, err := os.ReadFile(l.Input)
	if err != nil {
		return err
	}

	out, err := digits.LocalizeJSON(data)
	if err != nil {
		return errors.Wrap(err, l.Input)
	}

	logOutput(out)

	return nil
}

type previewCmd struct {
	ImageOutputPath string `short:"o" type:"path" required:"" help:"Output directory of page images"`
	ImageBaseName   string `short:"n" default:"page" help:"Base name of saved images"`
	ImageFormat     string `short:"f" enum:"jpg,png" default:"png" help:"Image format. Supports png and jpg"`
	ImageDPI        int    `short:"d" default:"120" help:"Image DPI"`
	ImageQuality    int    `short:"q" default:"90" help:"Image quality. Only applies to jpg images"`
	Pages           []int  `short:"p" help:"Pages to render, starting at 1. Defaults to all"`

	InputPDF string `arg:"" name:"input" help:"Path to input PDF" type:"existingfile"`
}

func (p *previewCmd) Run(e *env) error {
	data, err := os.ReadFile(p.InputPDF)
	if err != nil {
		return err
	}

	pages := make([]int, 0, len(p.Pages))
	for _, n := range p.Pages {
		pages = append(pages, n-1)
	}

	imgs, err := pdfutils.RenderPreview(data, float64(p.ImageDPI), pages)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(p.ImageOutputPath, os.ModePerm); err != nil {
		return err
	}

	for i, img := range imgs {
		n := i + 1
		if len(pages) > 0 {
			n = pages[i] + 1
		}

		name := filepath.Join(p.ImageOutputPath, fmt.Sprintf("%s-%d.%s", p.ImageBaseName, n, p.ImageFormat))
		if err := pdfutils.WriteImage(img, name, p.ImageFormat, p.ImageQuality); err != nil {
			return err
		}

		e.log.WithField("path", name).Info("page rendered")
	}

	return nil
}

func main() {
	// Optional; the environment may already carry the settings.
	_ = godotenv.Load(".env")

	ctx := kong.Parse(&cli,
		kong.Name("pdfstamp"),
		kong.Description("Place signatures, comments and stamps onto PDF documents."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load(cli.Config)
	endIfErr(err)

	endIfErr(ctx.Run(&env{cfg: cfg, log: newLogger(cli.LogLevel, cli.LogJSON)}))
}

func newLogger(level string, asJSON bool) *logrus.Logger {
	log := logrus.New()
	log.Out = os.Stderr

	if lvl, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
		log.SetLevel(lvl)
	}

	if asJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	return log
}
