package pdfutils

import (
	"encoding/json"
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// DecodeOptions carries the defaults applied while decoding requests.
type DecodeOptions struct {
	DefaultColor RGB
	Darken       float64
	FontSize     int
	ImageHeight  int
}

type wireComponent struct {
	Type        string          `json:"type,omitempty"`
	Text        string          `json:"text,omitempty"`
	FileKey     string          `json:"file_key,omitempty"`
	Color       json.RawMessage `json:"color,omitempty"`
	Role        string          `json:"role,omitempty"`
	FontSize    int             `json:"font_size,omitempty"`
	ImageHeight int             `json:"image_height,omitempty"`
}

type wireAnnotation struct {
	wireComponent
	Page         int             `json:"page"`
	X            *float64        `json:"x"`
	Y            *float64        `json:"y"`
	Width        float64         `json:"width,omitempty"`
	Height       float64         `json:"height,omitempty"`
	CenterOnPage bool            `json:"center_on_page,omitempty"`
	Lines        []wireComponent `json:"lines,omitempty"`
}

// DecodeAnnotations parses a JSON annotation list. Requests without a
// "lines" list are normalised into a single component built from their
// own text or file_key.
func DecodeAnnotations(r io.Reader, opts DecodeOptions) ([]*AnnotationRequest, error) {
	var wire []wireAnnotation
	if err := json.NewDecoder(r).Decode(&wire); err != nil {
		return nil, errors.Wrap(ErrMalformedRequest, err.Error())
	}

	reqs := make([]*AnnotationRequest, 0, len(wire))

	for i, w := range wire {
		req, err := decodeAnnotation(w, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "annotation %d", i)
		}
		reqs = append(reqs, req)
	}

	return reqs, nil
}

func decodeAnnotation(w wireAnnotation, opts DecodeOptions) (*AnnotationRequest, error) {
	if w.X == nil || w.Y == nil {
		return nil, errors.Wrap(ErrMalformedRequest, "missing x or y")
	}

	for _, v := range []float64{*w.X, *w.Y, w.Width, w.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.Wrap(ErrInvalidAnchor, "non-finite coordinate")
		}
	}

	if w.Page < 0 || w.Width < 0 || w.Height < 0 {
		return nil, errors.Wrapf(ErrInvalidAnchor, "page %d box %vx%v", w.Page, w.Width, w.Height)
	}

	req := &AnnotationRequest{
		Page:         w.Page,
		X:            int(*w.X),
		Y:            int(*w.Y),
		Width:        int(w.Width),
		Height:       int(w.Height),
		CenterOnPage: w.CenterOnPage,
	}

	if len(w.Lines) > 0 {
		req.Structured = true
		for i, l := range w.Lines {
			c, err := decodeComponent(l, opts)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", i)
			}
			req.Components = append(req.Components, c)
		}
	} else {
		c, err := decodeComponent(w.wireComponent, opts)
		if err != nil {
			return nil, err
		}
		req.Components = []Component{c}
	}

	req.Kind = req.Components[0].Kind
	if w.Type != "" {
		req.Kind = Kind(strings.ToLower(w.Type))
		if req.Kind != Text && req.Kind != Image {
			return nil, errors.Wrapf(ErrMalformedRequest, "unknown type %q", w.Type)
		}
	}

	return req, nil
}

func decodeComponent(w wireComponent, opts DecodeOptions) (Component, error) {
	switch Kind(strings.ToLower(w.Type)) {
	case Text:
		role := Plain
		if w.Role != "" {
			role = Role(strings.ToLower(w.Role))
			if !knownRoles[role] {
				return Component{}, errors.Wrapf(ErrMalformedRequest, "unknown role %q", w.Role)
			}
		}

		clr, err := decodeColor(w.Color, opts.DefaultColor)
		if err != nil {
			return Component{}, err
		}

		if opts.Darken > 0 {
			clr = clr.Darken(opts.Darken)
		}

		size := w.FontSize
		if size <= 0 {
			size = opts.FontSize
		}

		return Component{
			Kind:     Text,
			Content:  RemoveNul(w.Text),
			Role:     role,
			Color:    clr,
			Weight:   WeightForRole(role),
			FontSize: size,
		}, nil
	case Image:
		if w.FileKey == "" {
			return Component{}, errors.Wrap(ErrMalformedRequest, "image without file_key")
		}

		height := w.ImageHeight
		if height <= 0 {
			height = opts.ImageHeight
		}

		return Component{
			Kind:      Image,
			SourceKey: w.FileKey,
			Height:    height,
		}, nil
	default:
		return Component{}, errors.Wrapf(ErrMalformedRequest, "unknown type %q", w.Type)
	}
}

func decodeColor(raw json.RawMessage, def RGB) (RGB, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return def, nil
	}

	var triple []float64
	if err := json.Unmarshal(raw, &triple); err == nil {
		return RGBFromTriple(triple)
	}

	var hex string
	if err := json.Unmarshal(raw, &hex); err == nil {
		return ParseHexColor(hex)
	}

	return RGB{}, errors.Wrapf(ErrMalformedRequest, "color %s", string(raw))
}
