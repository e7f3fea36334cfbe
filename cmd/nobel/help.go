package main

import (
	"bytes"
	"regexp"

	"github.com/alfredjeanlab/nobel/internal/ui"
	"github.com/spf13/cobra"
)

// helpRule styles every match of re. render receives the submatches.
type helpRule struct {
	re     *regexp.Regexp
	render func(m []string) string
}

var helpRules = []helpRule{
	// Section headers such as "Prizes:" or "Flags:".
	{regexp.MustCompile(`(?m)^([A-Z][^\n]*:)[ \t]*$`), func(m []string) string {
		return ui.RenderAccent(m[1])
	}},
	// Command names in the command listings.
	{regexp.MustCompile(`(?m)^(  )(\S+)(  )`), func(m []string) string {
		return m[1] + ui.RenderCommand(m[2]) + m[3]
	}},
	// Flag value types, e.g. "--year string".
	{regexp.MustCompile(`(--?\S+\s+)(string|int|duration|stringArray)`), func(m []string) string {
		return m[1] + ui.RenderMuted(m[2])
	}},
	{regexp.MustCompile(`\(default "[^"]*"\)`), func(m []string) string {
		return ui.RenderMuted(m[0])
	}},
}

// colorizedHelpFunc prints cobra's usage text, styled when color is enabled.
func colorizedHelpFunc() func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		if !ui.ShouldUseColor() {
			_ = cmd.Usage()
			return
		}
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		_ = cmd.Usage()
		cmd.SetOut(out)
		_, _ = out.Write([]byte(colorizeHelpOutput(buf.String())))
	}
}

func colorizeHelpOutput(s string) string {
	for _, rule := range helpRules {
		s = rule.re.ReplaceAllStringFunc(s, func(match string) string {
			return rule.render(rule.re.FindStringSubmatch(match))
		})
	}
	return s
}
