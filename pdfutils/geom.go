package pdfutils

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

// PlacementRect locates an element on a page. The origin is the top-left
// corner of the page and Y grows downward.
type PlacementRect struct {
	Page   int
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

func NewPlacementRect(page int, left, top, width, height float64) PlacementRect {
	return PlacementRect{
		Page:   page,
		Left:   left,
		Top:    top,
		Right:  left + width,
		Bottom: top + height,
	}
}

func (r PlacementRect) Width() float64  { return r.Right - r.Left }
func (r PlacementRect) Height() float64 { return r.Bottom - r.Top }

func (r PlacementRect) Bounds() r2.Rect {
	return r2.RectFromPoints(
		r2.Point{X: r.Left, Y: r.Top},
		r2.Point{X: r.Right, Y: r.Bottom},
	)
}

func (r PlacementRect) String() string {
	return fmt.Sprintf("p%d[%.1f,%.1f %.1fx%.1f]", r.Page, r.Left, r.Top, r.Width(), r.Height())
}

func getArea(r r2.Rect) float64 {
	s := r.Size()
	return s.X * s.Y
}

// IsWithinOverlapThresh reports whether at least half of b is covered by a.
func IsWithinOverlapThresh(a r2.Rect, b r2.Rect) bool {
	size := getArea(b)
	if size == 0 {
		return false
	}

	intersect := getArea(a.Intersection(b))

	return intersect/size >= 0.5
}

// Overlapping returns the rects on page that are mostly covered by box.
func Overlapping(box PlacementRect, rects []PlacementRect) []PlacementRect {
	var hits []PlacementRect
	bounds := box.Bounds()

	for _, r := range rects {
		if r.Page != box.Page {
			continue
		}

		b := r.Bounds()
		if !b.IsValid() || b.IsEmpty() {
			continue
		}

		if bounds.Intersects(b) && IsWithinOverlapThresh(bounds, b) {
			hits = append(hits, r)
		}
	}

	return hits
}

// UnionBounds returns the smallest rect containing every rect on page.
func UnionBounds(page int, rects []PlacementRect) (PlacementRect, bool) {
	bound := r2.EmptyRect()
	boundSet := false

	for _, r := range rects {
		if r.Page != page {
			continue
		}

		if !boundSet {
			bound = r.Bounds()
			boundSet = true
		} else {
			b := r.Bounds()
			bound.X.Lo = math.Min(bound.X.Lo, b.X.Lo)
			bound.Y.Lo = math.Min(bound.Y.Lo, b.Y.Lo)
			bound.X.Hi = math.Max(bound.X.Hi, b.X.Hi)
			bound.Y.Hi = math.Max(bound.Y.Hi, b.Y.Hi)
		}
	}

	if !boundSet {
		return PlacementRect{}, false
	}

	return PlacementRect{
		Page:   page,
		Left:   bound.X.Lo,
		Top:    bound.Y.Lo,
		Right:  bound.X.Hi,
		Bottom: bound.Y.Hi,
	}, true
}
