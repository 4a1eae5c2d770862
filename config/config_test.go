package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/saraban/pdfstamp/pdfutils"
	"github.com/saraban/pdfstamp/stamper"
	"github.com/saraban/pdfstamp/textlayout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pdfstamp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	clr, err := cfg.TextColor()
	require.NoError(t, err)
	assert.Equal(t, pdfutils.DefaultTextColor, clr)

	opts, err := cfg.EngineOptions()
	require.NoError(t, err)
	assert.Equal(t, pdfutils.ThaiDigits, opts.Digits)
	assert.Equal(t, stamper.DefaultCalibration(), opts.Calibration)
	assert.Equal(t, stamper.DefaultGutters(), opts.Gutters)
	assert.Equal(t, textlayout.DefaultPolicy(), opts.Policy)
	assert.True(t, opts.Wrapper.Marks.Has(0x0E31))

	dec, err := cfg.DecodeOptions()
	require.NoError(t, err)
	assert.Equal(t, 0.8, dec.Darken)
	assert.Equal(t, stamper.DefaultFontSize, dec.FontSize)

	layout, err := cfg.StampLayout()
	require.NoError(t, err)
	assert.Equal(t, stamper.DefaultStampLayout(), layout)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
digits: none
text:
  color: [0, 0, 0]
  darken: 0
layout:
  height_mode: fixed
  align: center
  supersample: 2
wrap:
  max_visible: 30
  marks: ["U+0E31", "ั", "x"]
calibration:
  stamp_nudge: 12
stamp:
  labels:
    signed: Signed
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	opts, err := cfg.EngineOptions()
	require.NoError(t, err)
	assert.Equal(t, pdfutils.NoDigits, opts.Digits)
	assert.Equal(t, textlayout.Fixed, opts.Policy.HeightMode)
	assert.Equal(t, textlayout.AlignCenter, opts.Policy.Align)
	assert.Equal(t, 2, opts.Policy.Scale)
	assert.Equal(t, 30, opts.Wrapper.MaxVisible)
	assert.Len(t, opts.Wrapper.Marks, 2)
	assert.Equal(t, 12.0, opts.Calibration.StampNudge)
	assert.Equal(t, stamper.DefaultBoxHeight, opts.Calibration.DefaultBoxHeight)

	layout, err := cfg.StampLayout()
	require.NoError(t, err)
	assert.Equal(t, "Signed", layout.Labels.Signed)
	assert.Equal(t, stamper.DefaultStampLabels().Number, layout.Labels.Number)
	assert.Equal(t, pdfutils.RGB{}, layout.Color)
}

func TestLoadRejects(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "digits: [oops"))
	assert.Error(t, err)

	for _, body := range []string{
		"digits: roman",
		"layout:\n  height_mode: auto",
		"layout:\n  align: right",
		"wrap:\n  marks: [\"ab\"]",
		"wrap:\n  marks: [\"U+ZZZZ\"]",
	} {
		cfg, err := Load(writeConfig(t, body))
		require.NoError(t, err)

		_, err = cfg.EngineOptions()
		assert.Error(t, err, body)
	}

	cfg, err := Load(writeConfig(t, "text:\n  color: [1, 2]"))
	require.NoError(t, err)
	_, err = cfg.DecodeOptions()
	assert.Error(t, err)
}

func TestParseMarks(t *testing.T) {
	runes, err := parseMarks([]string{"U+0E48", "u+0e49", "ั"})
	require.NoError(t, err)
	assert.Equal(t, []rune{0x0E48, 0x0E49, 0x0E31}, runes)
}
