package model

import (
	"bytes"
	"encoding/json"
)

// Optional is a tri-state JSON field: absent, explicitly null, or set.
// The zero value is absent. encoding/json only calls UnmarshalJSON for keys
// that are present, which is what makes absence observable.
type Optional[T any] struct {
	Present bool
	Null    bool
	Value   T
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Present: true, Value: v}
}

// Null returns an Optional that is present and explicitly null.
func Null[T any]() Optional[T] {
	return Optional[T]{Present: true, Null: true}
}

// IsSet reports whether the field is present with a non-null value.
func (o Optional[T]) IsSet() bool {
	return o.Present && !o.Null
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON implements json.Marshaler. An absent field still has to encode
// as something, so it encodes as null; use omitzero on the struct field to
// drop it entirely.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Present || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// IsZero lets `omitzero` skip absent fields when marshaling.
func (o Optional[T]) IsZero() bool {
	return !o.Present
}

// PrizeUpdate is a partial update of a prize. Each field is tri-state:
//
//   - absent: left untouched
//   - null: cleared (only allowed for optional fields)
//   - value: replaced; Laureates replaces the whole list
type PrizeUpdate struct {
	Year              Optional[string]     `json:"year,omitzero"`
	Category          Optional[string]     `json:"category,omitzero"`
	OverallMotivation Optional[string]     `json:"overallMotivation,omitzero"`
	Laureates         Optional[[]Laureate] `json:"laureates,omitzero"`
}

// IsEmpty reports whether the update carries no fields at all.
func (u *PrizeUpdate) IsEmpty() bool {
	return !u.Year.Present && !u.Category.Present && !u.OverallMotivation.Present && !u.Laureates.Present
}

// Apply returns a copy of p with the update applied. It does not validate
// the result and does not assign laureate ids.
func (u *PrizeUpdate) Apply(p *Prize) *Prize {
	out := p.Clone()
	if u.Year.IsSet() {
		out.Year = u.Year.Value
	}
	if u.Category.IsSet() {
		out.Category = u.Category.Value
	}
	if u.OverallMotivation.Present {
		out.OverallMotivation = u.OverallMotivation.Value
	}
	if u.Laureates.Present {
		if u.Laureates.Null || len(u.Laureates.Value) == 0 {
			out.Laureates = nil
		} else {
			out.Laureates = make([]Laureate, len(u.Laureates.Value))
			copy(out.Laureates, u.Laureates.Value)
		}
	}
	return out
}

// Changes returns the fields the update touches, keyed by JSON name, for
// event payloads.
func (u *PrizeUpdate) Changes() map[string]any {
	changes := make(map[string]any)
	if u.Year.Present {
		changes["year"] = u.Year
	}
	if u.Category.Present {
		changes["category"] = u.Category
	}
	if u.OverallMotivation.Present {
		changes["overallMotivation"] = u.OverallMotivation
	}
	if u.Laureates.Present {
		changes["laureates"] = u.Laureates
	}
	return changes
}
