// Package query holds the read-side operations over a snapshot of prizes.
// Every function is pure: it never modifies its input and never does I/O.
// Year comparison is exact; category and laureate names compare
// case-insensitively.
package query

import "github.com/alfredjeanlab/nobel/internal/model"

// NoMotivation is returned by Motivation for a prize that exists but has no
// overall motivation.
const NoMotivation = "No general motivation available for this prize."

// All returns the prizes in insertion order.
func All(prizes []*model.Prize) []*model.Prize {
	out := make([]*model.Prize, len(prizes))
	copy(out, prizes)
	return out
}

// ByYear returns the prizes awarded in year.
func ByYear(prizes []*model.Prize, year string) []*model.Prize {
	return filter(prizes, func(p *model.Prize) bool { return p.Year == year })
}

// ByCategory returns the prizes in category.
func ByCategory(prizes []*model.Prize, category string) []*model.Prize {
	return filter(prizes, func(p *model.Prize) bool { return model.SameCategory(p.Category, category) })
}

// Find returns the prize for (year, category), or nil.
func Find(prizes []*model.Prize, year, category string) *model.Prize {
	for _, p := range prizes {
		if p.Matches(year, category) {
			return p
		}
	}
	return nil
}

// Motivation returns the overall motivation of the prize for
// (year, category). found is false when no such prize exists; a prize without
// a motivation yields NoMotivation.
func Motivation(prizes []*model.Prize, year, category string) (text string, found bool) {
	p := Find(prizes, year, category)
	if p == nil {
		return "", false
	}
	if p.OverallMotivation == "" {
		return NoMotivation, true
	}
	return p.OverallMotivation, true
}

// LaureatesOf returns the laureates of the prize for (year, category).
// found reports whether the prize exists, so an existing prize with no
// laureates can be told apart from a missing prize.
func LaureatesOf(prizes []*model.Prize, year, category string) (laureates []model.Laureate, found bool) {
	p := Find(prizes, year, category)
	if p == nil {
		return nil, false
	}
	out := make([]model.Laureate, len(p.Laureates))
	copy(out, p.Laureates)
	return out, true
}

// SearchLaureate returns every prize with at least one laureate named
// firstname surname. A prize is listed once even if several laureates match.
func SearchLaureate(prizes []*model.Prize, firstname, surname string) []*model.Prize {
	return filter(prizes, func(p *model.Prize) bool { return p.HasLaureate(firstname, surname) })
}

func filter(prizes []*model.Prize, keep func(*model.Prize) bool) []*model.Prize {
	var out []*model.Prize
	for _, p := range prizes {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
