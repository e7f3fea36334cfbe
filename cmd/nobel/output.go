package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/alfredjeanlab/nobel/internal/model"
	"github.com/alfredjeanlab/nobel/internal/ui"
)

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func laureateName(l model.Laureate) string {
	return strings.TrimSpace(l.Firstname + " " + l.Surname)
}

func printPrize(p *model.Prize) {
	fmt.Println(ui.RenderPrize(p.Year, p.Category))
	if p.OverallMotivation != "" {
		fmt.Printf("  %s\n", ui.RenderMuted(p.OverallMotivation))
	}
	for _, l := range p.Laureates {
		line := "  - " + laureateName(l)
		if l.Share != "" {
			line += ui.RenderMuted(" (1/" + l.Share + ")")
		}
		fmt.Println(line)
		if l.Motivation != "" {
			fmt.Printf("    %s\n", ui.RenderMuted(l.Motivation))
		}
	}
}

func printPrizeTable(prizes []*model.Prize) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "YEAR\tCATEGORY\tLAUREATES")
	for _, p := range prizes {
		names := make([]string, 0, len(p.Laureates))
		for _, l := range p.Laureates {
			names = append(names, laureateName(l))
		}
		list := strings.Join(names, ", ")
		if len(list) > 60 {
			list = list[:57] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Year, p.Category, list)
	}
	w.Flush()
	fmt.Printf("\n%d prizes\n", len(prizes))
}

func printLaureateTable(laureates []model.Laureate) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSHARE\tMOTIVATION")
	for _, l := range laureates {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", l.ID, laureateName(l), l.Share, l.Motivation)
	}
	w.Flush()
}

func printEventTable(evts []*model.Event) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tTOPIC\tACTOR")
	for _, e := range evts {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Topic, e.Actor)
	}
	w.Flush()
}
