package text

import (
	"strings"

	"golang.org/x/text/unicode/bidi"
)

// rtlThreshold is the share of right-to-left characters from which a
// string is treated as right-to-left text.
const rtlThreshold = 0.3

// Bidi returns s in visual order together with its direction. Vertical
// text is returned unchanged as TTB. A string is right-to-left when at
// least 30% of its characters are right-to-left, or when it is at most
// four characters long and contains any.
func Bidi(s string, vertical bool) (string, Dir) {
	if vertical {
		return s, TTB
	}
	n, rtl := 0, 0
	for _, r := range s {
		n++
		p, _ := bidi.LookupRune(r)
		switch p.Class() {
		case bidi.R, bidi.AL, bidi.AN:
			rtl++
		}
	}
	if rtl == 0 {
		return s, LTR
	}

	dir, def := RTL, bidi.RightToLeft
	if float64(rtl)/float64(n) < rtlThreshold && n > 4 {
		dir, def = LTR, bidi.LeftToRight
	}

	var p bidi.Paragraph
	if _, err := p.SetString(s, bidi.DefaultDirection(def)); err != nil {
		return s, dir
	}
	o, err := p.Order()
	if err != nil || o.NumRuns() == 0 {
		return s, dir
	}
	runs := make([]string, o.NumRuns())
	for i := range runs {
		r := o.Run(i)
		str := r.String()
		if r.Direction() == bidi.RightToLeft {
			str = bidi.ReverseString(str)
		}
		runs[i] = str
	}
	if dir == RTL {
		for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
			runs[i], runs[j] = runs[j], runs[i]
		}
	}

	return strings.Join(runs, ""), dir
}
