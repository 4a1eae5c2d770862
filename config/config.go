// Package config loads the YAML settings that tune rendering and
// placement. Every field has a default, so the file is optional.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/saraban/pdfstamp/pdfutils"
	"github.com/saraban/pdfstamp/stamper"
	"github.com/saraban/pdfstamp/textlayout"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Fonts       FontsConfig       `yaml:"fonts"`
	Digits      string            `yaml:"digits"`
	Text        TextConfig        `yaml:"text"`
	Layout      LayoutConfig      `yaml:"layout"`
	Wrap        WrapConfig        `yaml:"wrap"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Stamp       StampConfig       `yaml:"stamp"`
}

type FontsConfig struct {
	Regular string `yaml:"regular"`
	Bold    string `yaml:"bold"`
}

type TextConfig struct {
	FontSize        int     `yaml:"font_size"`
	SignatureHeight int     `yaml:"signature_height"`
	Darken          float64 `yaml:"darken"`
	Color           []int   `yaml:"color"`
	MaxWidth        int     `yaml:"max_width"`
	Placeholder     string  `yaml:"placeholder"`
}

type LayoutConfig struct {
	HeightMode      string  `yaml:"height_mode"`
	Align           string  `yaml:"align"`
	LineHeightRatio float64 `yaml:"line_height_ratio"`
	Padding         int     `yaml:"padding"`
	LineGap         int     `yaml:"line_gap"`
	Supersample     int     `yaml:"supersample"`
}

type WrapConfig struct {
	MaxVisible    int      `yaml:"max_visible"`
	Lookahead     int      `yaml:"lookahead"`
	Marks         []string `yaml:"marks"`
	GluedPrefixes []string `yaml:"glued_prefixes"`
}

type CalibrationConfig struct {
	DefaultBoxHeight  float64 `yaml:"default_box_height"`
	StampNudge        float64 `yaml:"stamp_nudge"`
	SingleLineAdvance float64 `yaml:"single_line_advance"`
	TextGutter        float64 `yaml:"text_gutter"`
	ImageGutter       float64 `yaml:"image_gutter"`
}

type StampConfig struct {
	BoxWidth        float64             `yaml:"box_width"`
	Margin          float64             `yaml:"margin"`
	Padding         float64             `yaml:"padding"`
	RowGap          float64             `yaml:"row_gap"`
	LabelSpacing    float64             `yaml:"label_spacing"`
	BorderWidth     float64             `yaml:"border_width"`
	FontSize        float64             `yaml:"font_size"`
	HeaderSize      float64             `yaml:"header_size"`
	SubjectChars    int                 `yaml:"subject_chars"`
	SignatureHeight int                 `yaml:"signature_height"`
	Labels          stamper.StampLabels `yaml:"labels"`
}

func Default() *Config {
	gutters := stamper.DefaultGutters()
	stamp := stamper.DefaultStampLayout()

	return &Config{
		Fonts: FontsConfig{
			Regular: "fonts/THSarabunNew.ttf",
			Bold:    "fonts/THSarabunNew Bold.ttf",
		},
		Digits: "thai",
		Text: TextConfig{
			FontSize:        stamper.DefaultFontSize,
			SignatureHeight: stamper.DefaultSignatureHeight,
			Darken:          0.8,
			Color:           []int{2, 53, 139},
		},
		Layout: LayoutConfig{
			HeightMode:      "measured",
			Align:           "left",
			LineHeightRatio: textlayout.DefaultLineHeightRatio,
			Padding:         textlayout.DefaultPadding,
			LineGap:         textlayout.DefaultLineGap,
			Supersample:     1,
		},
		Calibration: CalibrationConfig{
			DefaultBoxHeight:  stamper.DefaultBoxHeight,
			StampNudge:        stamper.StampNudge,
			SingleLineAdvance: gutters.SingleLineAdvance,
			TextGutter:        gutters.TextGutter,
			ImageGutter:       gutters.ImageGutter,
		},
		Stamp: StampConfig{
			BoxWidth:        stamp.BoxWidth,
			Margin:          stamp.Margin,
			Padding:         stamp.Padding,
			RowGap:          stamp.RowGap,
			LabelSpacing:    stamp.LabelSpacing,
			BorderWidth:     stamp.BorderWidth,
			FontSize:        stamp.FontSize,
			HeaderSize:      stamp.HeaderSize,
			SubjectChars:    stamp.SubjectChars,
			SignatureHeight: stamp.SignatureHeight,
			Labels:          stamp.Labels,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}

	return cfg, nil
}

func (c *Config) FontTable() *textlayout.FontTable {
	return textlayout.NewFontTable(map[pdfutils.Weight]textlayout.FontRef{
		pdfutils.Regular: {Path: c.Fonts.Regular},
		pdfutils.Bold:    {Path: c.Fonts.Bold},
	})
}

func (c *Config) TextColor() (pdfutils.RGB, error) {
	v := make([]float64, len(c.Text.Color))
	for i, x := range c.Text.Color {
		v[i] = float64(x)
	}
	return pdfutils.RGBFromTriple(v)
}

func (c *Config) DecodeOptions() (pdfutils.DecodeOptions, error) {
	clr, err := c.TextColor()
	if err != nil {
		return pdfutils.DecodeOptions{}, errors.Wrap(err, "text.color")
	}

	return pdfutils.DecodeOptions{
		DefaultColor: clr,
		Darken:       c.Text.Darken,
		FontSize:     c.Text.FontSize,
		ImageHeight:  c.Text.SignatureHeight,
	}, nil
}

func (c *Config) EngineOptions() (stamper.Options, error) {
	digits, ok := pdfutils.DigitsByName(c.Digits)
	if !ok {
		return stamper.Options{}, errors.Errorf("unknown digit alphabet %q", c.Digits)
	}

	marks := textlayout.ThaiMarks()
	if len(c.Wrap.Marks) > 0 {
		runes, err := parseMarks(c.Wrap.Marks)
		if err != nil {
			return stamper.Options{}, err
		}
		marks = textlayout.NewMarkSet(runes...)
	}

	policy := textlayout.LayoutPolicy{
		HeightMode:      textlayout.Measured,
		Align:           textlayout.AlignLeft,
		LineHeightRatio: c.Layout.LineHeightRatio,
		Padding:         c.Layout.Padding,
		LineGap:         c.Layout.LineGap,
		Scale:           c.Layout.Supersample,
	}

	switch strings.ToLower(c.Layout.HeightMode) {
	case "", "measured":
	case "fixed":
		policy.HeightMode = textlayout.Fixed
	default:
		return stamper.Options{}, errors.Errorf("unknown height mode %q", c.Layout.HeightMode)
	}

	switch strings.ToLower(c.Layout.Align) {
	case "", "left":
	case "center":
		policy.Align = textlayout.AlignCenter
	default:
		return stamper.Options{}, errors.Errorf("unknown alignment %q", c.Layout.Align)
	}

	return stamper.Options{
		Digits: digits,
		Wrapper: textlayout.Wrapper{
			MaxVisible:    c.Wrap.MaxVisible,
			Marks:         marks,
			Lookahead:     c.Wrap.Lookahead,
			GluedPrefixes: c.Wrap.GluedPrefixes,
		},
		Policy: policy,
		Calibration: stamper.Calibration{
			DefaultBoxHeight: c.Calibration.DefaultBoxHeight,
			StampNudge:       c.Calibration.StampNudge,
		},
		Gutters: stamper.Gutters{
			SingleLineAdvance: c.Calibration.SingleLineAdvance,
			TextGutter:        c.Calibration.TextGutter,
			ImageGutter:       c.Calibration.ImageGutter,
		},
		FontSize:             c.Text.FontSize,
		ImageHeight:          c.Text.SignatureHeight,
		MaxTextWidthPx:       c.Text.MaxWidth,
		EmptyTextPlaceholder: c.Text.Placeholder,
	}, nil
}

func (c *Config) StampLayout() (stamper.StampLayout, error) {
	clr, err := c.TextColor()
	if err != nil {
		return stamper.StampLayout{}, errors.Wrap(err, "text.color")
	}

	s := c.Stamp
	return stamper.StampLayout{
		BoxWidth:        s.BoxWidth,
		Margin:          s.Margin,
		Padding:         s.Padding,
		RowGap:          s.RowGap,
		LabelSpacing:    s.LabelSpacing,
		BorderWidth:     s.BorderWidth,
		FontSize:        s.FontSize,
		HeaderSize:      s.HeaderSize,
		SubjectChars:    s.SubjectChars,
		SignatureHeight: s.SignatureHeight,
		Color:           clr,
		Labels:          s.Labels,
	}, nil
}

// parseMarks accepts either a literal character or a "U+0E31" code point.
func parseMarks(marks []string) ([]rune, error) {
	runes := make([]rune, 0, len(marks))

	for _, m := range marks {
		if strings.HasPrefix(strings.ToUpper(m), "U+") {
			v, err := strconv.ParseUint(m[2:], 16, 32)
			if err != nil {
				return nil, errors.Wrapf(err, "mark %q", m)
			}
			runes = append(runes, rune(v))
			continue
		}

		r := []rune(m)
		if len(r) != 1 {
			return nil, errors.Errorf("mark %q is not a single character", m)
		}
		runes = append(runes, r[0])
	}

	return runes, nil
}
