package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/nobel/internal/model"
	"github.com/alfredjeanlab/nobel/internal/query"
)

var prizesCmd = &cobra.Command{
	Use:     "prizes",
	Short:   "List prizes, optionally filtered by year and category",
	GroupID: "prizes",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		year, _ := cmd.Flags().GetString("year")
		category, _ := cmd.Flags().GetString("category")
		ctx := context.Background()

		var (
			prizes []*model.Prize
			err    error
		)
		switch {
		case year != "":
			prizes, err = prizesClient.PrizesByYear(ctx, year)
			if err == nil && category != "" {
				prizes = query.ByCategory(prizes, category)
				if len(prizes) == 0 {
					return fmt.Errorf("no %s prize found for %s", category, year)
				}
			}
		case category != "":
			prizes, err = prizesClient.PrizesByCategory(ctx, category)
		default:
			prizes, err = prizesClient.ListPrizes(ctx)
		}
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(prizes)
		}
		if year != "" && category != "" {
			printPrize(prizes[0])
			return nil
		}
		printPrizeTable(prizes)
		return nil
	},
}

func init() {
	prizesCmd.Flags().String("year", "", "only prizes awarded in this year")
	prizesCmd.Flags().String("category", "", "only prizes in this category (case-insensitive)")
}

var motivationCmd = &cobra.Command{
	Use:     "motivation <year> <category>",
	Short:   "Show the overall motivation of a prize",
	GroupID: "prizes",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := prizesClient.Motivation(context.Background(), args[0], args[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(map[string]string{"year": args[0], "category": args[1], "motivation": text})
		}
		fmt.Println(text)
		return nil
	},
}

var laureatesCmd = &cobra.Command{
	Use:     "laureates <year> <category>",
	Short:   "List the laureates of a prize",
	GroupID: "prizes",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		laureates, err := prizesClient.Laureates(context.Background(), args[0], args[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(laureates)
		}
		printLaureateTable(laureates)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:     "search <firstname> <surname>",
	Short:   "Find the prizes a laureate received",
	GroupID: "prizes",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		prizes, err := prizesClient.SearchLaureate(context.Background(), args[0], args[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(prizes)
		}
		for _, p := range prizes {
			printPrize(p)
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:     "history <year> <category>",
	Short:   "Show the change journal of a prize",
	GroupID: "prizes",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		evts, err := prizesClient.GetEvents(context.Background(), args[0], args[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(evts)
		}
		if len(evts) == 0 {
			fmt.Println("No recorded changes.")
			return nil
		}
		printEventTable(evts)
		return nil
	},
}
