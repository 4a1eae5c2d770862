package pdfutils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// RemoveNul strips replacement characters and control characters other
// than line breaks, which separate rendered lines.
func RemoveNul(str string) string {
	str = strings.ReplaceAll(str, "\r\n", "\n")

	return strings.Map(func(r rune) rune {
		if r == unicode.ReplacementChar {
			return -1
		}
		if r == '\n' {
			return r
		}
		if r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, str)
}

var nlAndSpace = regexp.MustCompile(`[\n\s]+`)

func CondenseSpaces(str string) string {
	return nlAndSpace.ReplaceAllString(str, " ")
}

// AnchorID names an anchor for log output, disambiguating repeats.
func AnchorID(ids map[string]bool, kind string, pageIndex int, x, y int) string {
	id := fmt.Sprintf("%s-p%dx%dy%d", kind, pageIndex+1, x, y)
	_, ok := ids[id]

	for i := 1; ok; i++ {
		id = fmt.Sprintf("%s-p%dx%dy%d-%d", kind, pageIndex+1, x, y, i)
		_, ok = ids[id]
	}

	ids[id] = true

	return id
}
