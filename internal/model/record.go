package model

import "errors"

// ErrEmptyField is returned when a name or description is missing.
var ErrEmptyField = errors.New("name and description are required")

// Record is the domain model for a name entry.
// ID is assigned by the store; two records may share the same text.
type Record struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Subtext   string `json:"subtext"`
	Completed bool   `json:"completed"`
}

// Validate applies the add/edit rule: both fields non-empty.
func Validate(text, subtext string) error {
	if text == "" || subtext == "" {
		return ErrEmptyField
	}
	return nil
}

// SameFields reports whether r and o carry the same user-visible values.
func (r Record) SameFields(o Record) bool {
	return r.Text == o.Text && r.Subtext == o.Subtext && r.Completed == o.Completed
}
