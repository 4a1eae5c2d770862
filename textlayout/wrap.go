package textlayout

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MarkSet holds the code points that attach to the preceding character and
// take no column of their own.
type MarkSet map[rune]struct{}

func NewMarkSet(runes ...rune) MarkSet {
	m := make(MarkSet, len(runes))
	for _, r := range runes {
		m[r] = struct{}{}
	}
	return m
}

// ThaiMarks returns the Thai above/below vowels, tone marks and signs.
func ThaiMarks() MarkSet {
	m := NewMarkSet(0x0E31)
	for r := rune(0x0E34); r <= 0x0E3A; r++ {
		m[r] = struct{}{}
	}
	for r := rune(0x0E47); r <= 0x0E4E; r++ {
		m[r] = struct{}{}
	}
	return m
}

func (m MarkSet) Has(r rune) bool {
	_, ok := m[r]
	return ok
}

// Contains reports whether any rune of s is in the set.
func (m MarkSet) Contains(s string) bool {
	if len(m) == 0 {
		return false
	}
	for _, r := range s {
		if m.Has(r) {
			return true
		}
	}
	return false
}

// VisibleLen counts the runes of s that are not marks.
func (m MarkSet) VisibleLen(s string) int {
	return m.visible([]rune(s))
}

func (m MarkSet) visible(runes []rune) int {
	n := 0
	for _, r := range runes {
		if !m.Has(r) {
			n++
		}
	}
	return n
}

const punctuation = ".!?,:;"

func isBreakAfter(r rune) bool {
	return strings.ContainsRune(punctuation, r)
}

// Wrapper splits text into segments of at most MaxVisible visible runes.
//
// Cuts prefer the last space or punctuation mark before the limit. When a
// token is longer than the limit it is cut at the limit, after any marks
// attached to the last kept character. Lookahead bounds how many visible
// runes a cut may move back to reach a boundary; zero means no bound.
// A text starting with one of GluedPrefixes keeps the prefix and the word
// after it in its first segment even when they exceed the limit.
type Wrapper struct {
	MaxVisible    int
	Marks         MarkSet
	Lookahead     int
	GluedPrefixes []string
}

func (w Wrapper) Wrap(text string) []string {
	text = norm.NFC.String(text)

	if w.MaxVisible <= 0 || w.Marks.VisibleLen(text) <= w.MaxVisible {
		return []string{text}
	}

	runes := []rune(text)
	segments := []string{}
	first := true

	for len(runes) > 0 {
		if w.Marks.visible(runes) <= w.MaxVisible {
			segments = append(segments, strings.TrimRightFunc(string(runes), unicode.IsSpace))
			break
		}

		cut := w.cutIndex(runes)
		end := 0

		if first {
			if g := w.gluedEnd(runes); g > cut {
				end = g
			}
		}

		if end == 0 {
			end = w.boundary(runes, cut)
		}

		if end == 0 {
			end = cut
		}

		seg := strings.TrimRightFunc(string(runes[:end]), unicode.IsSpace)
		if seg != "" {
			segments = append(segments, seg)
		}

		runes = trimLeftSpace(runes[end:])
		first = false
	}

	return segments
}

// cutIndex returns the index of the first visible rune past the limit.
func (w Wrapper) cutIndex(runes []rune) int {
	n := 0
	for i, r := range runes {
		if w.Marks.Has(r) {
			continue
		}
		if n == w.MaxVisible {
			return i
		}
		n++
	}
	return len(runes)
}

// boundary finds the latest cut at or before cut that falls on a space or
// right after punctuation. It returns 0 when there is none.
func (w Wrapper) boundary(runes []rune, cut int) int {
	backed := 0

	for p := cut; p > 0; p-- {
		if w.Lookahead > 0 && backed > w.Lookahead {
			break
		}

		if p < len(runes) && unicode.IsSpace(runes[p]) {
			if strings.TrimSpace(string(runes[:p])) != "" {
				return p
			}
		}

		if isBreakAfter(runes[p-1]) && p < len(runes) && !w.Marks.Has(runes[p]) {
			return p
		}

		if !w.Marks.Has(runes[p-1]) {
			backed++
		}
	}

	return 0
}

// gluedEnd returns the end of the first word following a configured prefix.
func (w Wrapper) gluedEnd(runes []rune) int {
	text := string(runes)

	for _, prefix := range w.GluedPrefixes {
		if prefix == "" || !strings.HasPrefix(text, prefix) {
			continue
		}

		i := len([]rune(prefix))
		for i < len(runes) && unicode.IsSpace(runes[i]) {
			i++
		}
		for i < len(runes) && !unicode.IsSpace(runes[i]) {
			i++
		}
		return i
	}

	return 0
}

func trimLeftSpace(runes []rune) []rune {
	i := 0
	for i < len(runes) && unicode.IsSpace(runes[i]) {
		i++
	}
	return runes[i:]
}
