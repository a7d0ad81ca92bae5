package filter

import "regexp"

// Range is a half-open byte range [Start, End) within a label.
type Range struct {
	Start, End int
}

// Highlighter finds case-insensitive matches of a search term.
// A nil *Highlighter matches nothing.
type Highlighter struct {
	re *regexp.Regexp
}

// NewHighlighter compiles term as a case-insensitive pattern.
// An empty term yields a nil Highlighter and no error.
func NewHighlighter(term string) (*Highlighter, error) {
	if term == "" {
		return nil, nil
	}
	re, err := regexp.Compile("(?i)" + term)
	if err != nil {
		return nil, err
	}
	return &Highlighter{re: re}, nil
}

// Ranges returns the non-overlapping, non-empty matches in target.
func (h *Highlighter) Ranges(target string) []Range {
	if h == nil || target == "" {
		return nil
	}
	var out []Range
	for _, loc := range h.re.FindAllStringIndex(target, -1) {
		if loc[1] > loc[0] {
			out = append(out, Range{Start: loc[0], End: loc[1]})
		}
	}
	return out
}

// Highlight returns the ranges of target matching term. If term does
// not compile as a pattern, it returns nil and the label renders plain.
func Highlight(term, target string) []Range {
	h, err := NewHighlighter(term)
	if err != nil {
		return nil
	}
	return h.Ranges(target)
}
