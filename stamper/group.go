package stamper

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/saraban/pdfstamp/pdfutils"
)

// Calibration offsets for the UI-to-page vertical flip. They were tuned
// against rendered output rather than derived from page geometry.
const (
	DefaultBoxHeight = 60.0
	StampNudge       = 30.0
)

type Calibration struct {
	// DefaultBoxHeight is the box height assumed for top-left anchors.
	DefaultBoxHeight float64
	// StampNudge moves center-box stamps further down the page.
	StampNudge float64
}

func DefaultCalibration() Calibration {
	return Calibration{
		DefaultBoxHeight: DefaultBoxHeight,
		StampNudge:       StampNudge,
	}
}

// AnchorKey identifies a cluster: requests with equal keys share a cursor.
type AnchorKey struct {
	Page   int
	X      int
	Y      int
	Width  int
	Height int
}

func KeyOf(r *pdfutils.AnnotationRequest) AnchorKey {
	return AnchorKey{Page: r.Page, X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

func (k AnchorKey) CenterBox() bool {
	return k.Width > 0 && k.Height > 0
}

func (k AnchorKey) Validate() error {
	if k.Page < 0 || k.Width < 0 || k.Height < 0 {
		return errors.Wrapf(pdfutils.ErrInvalidAnchor, "page %d box %dx%d", k.Page, k.Width, k.Height)
	}
	return nil
}

type Cluster struct {
	Key      AnchorKey
	Requests []*pdfutils.AnnotationRequest
}

func (c *Cluster) structured() bool {
	for _, r := range c.Requests {
		if r.Structured {
			return true
		}
	}
	return false
}

// Group clusters requests by anchor key, in order of first appearance.
// Clusters made only of single-component requests are stably reordered so
// that text comes before images.
func Group(reqs []*pdfutils.AnnotationRequest) []*Cluster {
	index := map[AnchorKey]*Cluster{}
	clusters := []*Cluster{}

	for _, r := range reqs {
		key := KeyOf(r)

		c, ok := index[key]
		if !ok {
			c = &Cluster{Key: key}
			index[key] = c
			clusters = append(clusters, c)
		}

		c.Requests = append(c.Requests, r)
	}

	for _, c := range clusters {
		if !c.structured() {
			sort.Stable(pdfutils.ByKind(c.Requests))
		}
	}

	return clusters
}

// Anchor is a cluster key resolved against a page. For center-box anchors
// X, Y is the box center; otherwise it is the top-left placement origin.
type Anchor struct {
	X         float64
	Y         float64
	CenterBox bool
	BoxWidth  float64
	BoxHeight float64
}

// Resolve flips the anchor from the caller's coordinates into page
// coordinates.
func Resolve(key AnchorKey, pageHeight float64, cal Calibration) Anchor {
	x, y := float64(key.X), float64(key.Y)

	if key.CenterBox() {
		h := float64(key.Height)
		adjustedTop := pageHeight - y - h
		centerY := adjustedTop + h

		return Anchor{
			X:         x,
			Y:         centerY,
			CenterBox: true,
			BoxWidth:  float64(key.Width),
			BoxHeight: h,
		}
	}

	boxHeight := cal.DefaultBoxHeight
	if key.Height > 0 {
		boxHeight = float64(key.Height)
	}

	adjustedTop := pageHeight - y - boxHeight
	adjustedTop += boxHeight

	return Anchor{X: x, Y: adjustedTop}
}

// ResolveStamp resolves a stamp anchor; stamps sit StampNudge lower than
// annotations at the same key.
func ResolveStamp(key AnchorKey, pageHeight float64, cal Calibration) Anchor {
	a := Resolve(key, pageHeight, cal)
	if a.CenterBox {
		a.Y += cal.StampNudge
	}
	return a
}
