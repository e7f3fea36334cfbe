package ui

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// ANSI256 color codes.
const (
	colorAccent = 74  // blue
	colorGold   = 178 // prize header
	colorMuted  = 245 // medium gray
	colorError  = 167 // red
)

var noColor bool

func paint(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string { return paint(colorAccent, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return paint(colorMuted, s) }

// RenderCommand returns a command name in the prize (gold) color.
func RenderCommand(s string) string { return paint(colorGold, s) }

// RenderError returns s in the error (red) color.
func RenderError(s string) string { return paint(colorError, s) }

// RenderPrize formats a prize heading such as "1903 Physics".
func RenderPrize(year, category string) string {
	title := category
	if r, size := utf8.DecodeRuneInString(title); size > 0 {
		title = string(unicode.ToUpper(r)) + title[size:]
	}
	return paint(colorGold, year+" "+title)
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
