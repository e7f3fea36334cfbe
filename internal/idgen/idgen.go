// Package idgen derives laureate identifiers and generates short, URL-safe
// random ids backed by nanoid for laureates whose id cannot be derived.
package idgen

import (
	"fmt"
	"strings"
	"unicode"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultPrefix is prepended to every generated ID.
var DefaultPrefix = "lr-"

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 12

// Generate returns a new unique ID using the default prefix.
func Generate() (string, error) {
	return GenerateWithPrefix(DefaultPrefix)
}

// GenerateWithPrefix returns a new unique ID with the given prefix.
func GenerateWithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}

// Derive builds the deterministic laureate id: firstname, surname and year
// concatenated, lowercased, with all whitespace removed. It returns "" when
// nothing is left.
func Derive(firstname, surname, year string) string {
	raw := firstname + surname + year
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// LaureateID returns Derive(firstname, surname, year), falling back to a
// random id when the derived one is empty.
func LaureateID(firstname, surname, year string) (string, error) {
	if id := Derive(firstname, surname, year); id != "" {
		return id, nil
	}
	return Generate()
}
