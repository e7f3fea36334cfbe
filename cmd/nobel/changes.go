package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/nobel/internal/model"
	"github.com/alfredjeanlab/nobel/internal/ui"
)

// parseLaureate parses "firstname|surname[|share[|motivation]]".
func parseLaureate(s string) (model.Laureate, error) {
	parts := strings.SplitN(s, "|", 4)
	if len(parts) < 2 {
		return model.Laureate{}, fmt.Errorf("invalid laureate %q (expected firstname|surname[|share[|motivation]])", s)
	}
	l := model.Laureate{
		Firstname: strings.TrimSpace(parts[0]),
		Surname:   strings.TrimSpace(parts[1]),
	}
	if l.Firstname == "" {
		return model.Laureate{}, fmt.Errorf("invalid laureate %q: firstname is required", s)
	}
	if len(parts) > 2 {
		l.Share = strings.TrimSpace(parts[2])
	}
	if len(parts) > 3 {
		l.Motivation = strings.TrimSpace(parts[3])
	}
	return l, nil
}

func parseLaureates(values []string) ([]model.Laureate, error) {
	out := make([]model.Laureate, 0, len(values))
	for _, v := range values {
		l, err := parseLaureate(v)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// readPrizeFile decodes a prize from path, or stdin when path is "-".
func readPrizeFile(path string, stdin io.Reader) (*model.Prize, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var p model.Prize
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &p, nil
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a prize",
	Long: `Create a prize. Laureates are given as firstname|surname[|share[|motivation]];
their ids are derived by the server. Use --file to send a JSON prize instead.`,
	Example: `  nobel -u user create --year 2025 --category peace --laureate "Ada|Lovelace|1"`,
	GroupID: "changes",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		var prize *model.Prize
		if file != "" {
			p, err := readPrizeFile(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			prize = p
		} else {
			year, _ := cmd.Flags().GetString("year")
			category, _ := cmd.Flags().GetString("category")
			motivation, _ := cmd.Flags().GetString("motivation")
			values, _ := cmd.Flags().GetStringArray("laureate")
			laureates, err := parseLaureates(values)
			if err != nil {
				return err
			}
			prize = &model.Prize{Year: year, Category: category, OverallMotivation: motivation, Laureates: laureates}
		}

		created, err := prizesClient.CreatePrize(context.Background(), prize)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(created)
		}
		fmt.Print("Created ")
		printPrize(created)
		return nil
	},
}

func init() {
	createCmd.Flags().String("year", "", "award year")
	createCmd.Flags().String("category", "", "prize category")
	createCmd.Flags().String("motivation", "", "overall motivation")
	createCmd.Flags().StringArray("laureate", nil, "laureate as firstname|surname[|share[|motivation]] (repeatable)")
	createCmd.Flags().String("file", "", "read the prize as JSON from a file (- for stdin)")
}

// buildUpdate turns the flags that were explicitly set into a partial update.
func buildUpdate(cmd *cobra.Command) (*model.PrizeUpdate, error) {
	flags := cmd.Flags()
	var u model.PrizeUpdate
	if flags.Changed("year") {
		v, _ := flags.GetString("year")
		u.Year = model.Some(v)
	}
	if flags.Changed("category") {
		v, _ := flags.GetString("category")
		u.Category = model.Some(v)
	}
	if flags.Changed("motivation") {
		v, _ := flags.GetString("motivation")
		u.OverallMotivation = model.Some(v)
	}
	if set, _ := flags.GetBool("clear-motivation"); set {
		if u.OverallMotivation.Present {
			return nil, fmt.Errorf("--motivation and --clear-motivation are mutually exclusive")
		}
		u.OverallMotivation = model.Null[string]()
	}
	if flags.Changed("laureate") {
		values, _ := flags.GetStringArray("laureate")
		laureates, err := parseLaureates(values)
		if err != nil {
			return nil, err
		}
		u.Laureates = model.Some(laureates)
	}
	if set, _ := flags.GetBool("clear-laureates"); set {
		if u.Laureates.Present {
			return nil, fmt.Errorf("--laureate and --clear-laureates are mutually exclusive")
		}
		u.Laureates = model.Null[[]model.Laureate]()
	}
	if u.IsEmpty() {
		return nil, fmt.Errorf("nothing to update")
	}
	return &u, nil
}

var updateCmd = &cobra.Command{
	Use:   "update <year> <category>",
	Short: "Update fields of a prize",
	Long: `Update a prize. Only the fields given as flags change; --laureate replaces
the whole laureate list.`,
	GroupID: "changes",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		update, err := buildUpdate(cmd)
		if err != nil {
			return err
		}
		updated, err := prizesClient.UpdatePrize(context.Background(), args[0], args[1], update)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(updated)
		}
		fmt.Print("Updated ")
		printPrize(updated)
		return nil
	},
}

func init() {
	addUpdateFlags(updateCmd)
}

func addUpdateFlags(cmd *cobra.Command) {
	cmd.Flags().String("year", "", "new award year")
	cmd.Flags().String("category", "", "new category")
	cmd.Flags().String("motivation", "", "new overall motivation")
	cmd.Flags().Bool("clear-motivation", false, "remove the overall motivation")
	cmd.Flags().StringArray("laureate", nil, "replacement laureate as firstname|surname[|share[|motivation]] (repeatable)")
	cmd.Flags().Bool("clear-laureates", false, "remove all laureates")
}

var deleteCmd = &cobra.Command{
	Use:     "delete <year> <category>",
	Short:   "Delete a prize (admin only)",
	GroupID: "changes",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := prizesClient.DeletePrize(context.Background(), args[0], args[1]); err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(map[string]string{"deleted": args[0] + "/" + args[1]})
		}
		fmt.Printf("Deleted %s\n", ui.RenderPrize(args[0], args[1]))
		return nil
	},
}
