// Package filter turns raw search input into record predicates and
// computes highlight ranges for matched labels.
package filter

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/idilsaglam/names/internal/model"
)

// Field names a searchable record field.
type Field int

const (
	FieldText Field = iota
	FieldSubtext
)

func (f Field) String() string {
	if f == FieldSubtext {
		return "subtext"
	}
	return "text"
}

func (f Field) value(r model.Record) string {
	if f == FieldSubtext {
		return r.Subtext
	}
	return r.Text
}

// Predicate is a boolean filter evaluated per record.
type Predicate interface {
	Match(r model.Record) bool
	String() string
}

// fold case-folds s. cases.Caser keeps state, so one is built per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

type all struct{}

// All matches every record.
func All() Predicate { return all{} }

func (all) Match(model.Record) bool { return true }
func (all) String() string          { return "TRUEPREDICATE" }

// IsAll reports whether p is the match-everything predicate.
func IsAll(p Predicate) bool {
	_, ok := p.(all)
	return p == nil || ok
}

type contains struct {
	field  Field
	value  string
	folded string
}

// Contains matches when field contains value, ignoring case.
func Contains(f Field, value string) Predicate {
	return contains{field: f, value: value, folded: fold(value)}
}

func (c contains) Match(r model.Record) bool {
	return strings.Contains(fold(c.field.value(r)), c.folded)
}

func (c contains) String() string {
	return c.field.String() + " CONTAINS[c] " + quote(c.value)
}

type beginsWith struct {
	field  Field
	value  string
	folded string
}

// BeginsWith matches when field starts with value, ignoring case.
func BeginsWith(f Field, value string) Predicate {
	return beginsWith{field: f, value: value, folded: fold(value)}
}

func (b beginsWith) Match(r model.Record) bool {
	return strings.HasPrefix(fold(b.field.value(r)), b.folded)
}

func (b beginsWith) String() string {
	return b.field.String() + " BEGINSWITH[c] " + quote(b.value)
}

type and []Predicate

// And matches when every operand matches.
func And(ps ...Predicate) Predicate { return and(ps) }

func (a and) Match(r model.Record) bool {
	for _, p := range a {
		if !p.Match(r) {
			return false
		}
	}
	return true
}

func (a and) String() string { return join(a, " AND ") }

type or []Predicate

// Or matches when any operand matches.
func Or(ps ...Predicate) Predicate { return or(ps) }

func (o or) Match(r model.Record) bool {
	for _, p := range o {
		if p.Match(r) {
			return true
		}
	}
	return false
}

func (o or) String() string { return join(o, " OR ") }

func join(ps []Predicate, sep string) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
		switch p.(type) {
		case and, or:
			parts[i] = "(" + parts[i] + ")"
		}
	}
	return strings.Join(parts, sep)
}

var quoter = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func quote(s string) string { return "'" + quoter.Replace(s) + "'" }
