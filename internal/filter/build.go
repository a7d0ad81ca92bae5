package filter

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Mode selects how search input becomes a predicate.
type Mode int

const (
	// ModeLiteral reproduces the three-clause search, including the
	// text-contains-and-begins-with clause that the first clause subsumes.
	ModeLiteral Mode = iota
	// ModeSimplified drops the subsumed clause.
	ModeSimplified
)

func (m Mode) String() string {
	if m == ModeSimplified {
		return "simplified"
	}
	return "literal"
}

// ParseMode parses a config value. The empty string means literal.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "literal":
		return ModeLiteral, nil
	case "simplified":
		return ModeSimplified, nil
	}
	return ModeLiteral, fmt.Errorf("unknown filter mode %q (want literal or simplified)", s)
}

// Term returns the primary match term for raw: the second
// whitespace-separated token when there are two or more, otherwise raw.
func Term(raw string) string {
	if tokens := strings.Fields(raw); len(tokens) > 1 {
		return tokens[1]
	}
	return raw
}

// Build returns the predicate for raw search input.
//
// An empty string matches everything. Otherwise a record matches when
// text contains the term, or text contains the term and begins with the
// first character of the term or of raw, or subtext contains raw. All
// comparisons ignore case.
func Build(raw string, mode Mode) Predicate {
	if raw == "" {
		return All()
	}
	term := Term(raw)
	textHasTerm := Contains(FieldText, term)
	subtextHasRaw := Contains(FieldSubtext, raw)
	if mode == ModeSimplified {
		return Or(textHasTerm, subtextHasRaw)
	}
	return Or(
		textHasTerm,
		And(
			textHasTerm,
			Or(
				BeginsWith(FieldText, firstChar(term)),
				BeginsWith(FieldText, firstChar(raw)),
			),
		),
		subtextHasRaw,
	)
}

func firstChar(s string) string {
	_, n := utf8.DecodeRuneInString(s)
	return s[:n]
}
