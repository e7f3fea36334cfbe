package model

import "strings"

// Laureate is one recipient of a prize. Laureates have no lifecycle of their
// own; they are created, replaced and deleted together with their prize.
type Laureate struct {
	ID         string `json:"id"`
	Firstname  string `json:"firstname"`
	Surname    string `json:"surname,omitempty"`
	Motivation string `json:"motivation,omitempty"`
	Share      string `json:"share,omitempty"`
}

// Prize is one award record for a year and category.
//
// Year is kept as a string and only ever compared for equality. Category is
// stored as given and compared case-insensitively.
type Prize struct {
	Year              string     `json:"year"`
	Category          string     `json:"category"`
	OverallMotivation string     `json:"overallMotivation,omitempty"`
	Laureates         []Laureate `json:"laureates,omitempty"`
}

// Matches reports whether the prize is the one identified by year (exact)
// and category (case-insensitive).
func (p *Prize) Matches(year, category string) bool {
	return p.Year == year && SameCategory(p.Category, category)
}

// Clone returns a deep copy of the prize.
func (p *Prize) Clone() *Prize {
	if p == nil {
		return nil
	}
	c := *p
	if p.Laureates != nil {
		c.Laureates = make([]Laureate, len(p.Laureates))
		copy(c.Laureates, p.Laureates)
	}
	return &c
}

// HasLaureate reports whether any laureate of the prize carries the given
// first name and surname, both compared case-insensitively.
func (p *Prize) HasLaureate(firstname, surname string) bool {
	for _, l := range p.Laureates {
		if strings.EqualFold(l.Firstname, firstname) && strings.EqualFold(l.Surname, surname) {
			return true
		}
	}
	return false
}

// SameCategory compares two category names the way the service does
// everywhere: case-insensitively.
func SameCategory(a, b string) bool {
	return strings.EqualFold(a, b)
}
