package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/nobel/internal/config"
	"github.com/alfredjeanlab/nobel/internal/seed"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the Nobel prize dataset into the data file",
	Long: `Download the prize dataset (NOBEL_SEED_URL, default the Nobel API v1
prize.json) and write it to the data file. The existing file is replaced only
when the download decodes.`,
	GroupID:           "system",
	Args:              cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		url, _ := cmd.Flags().GetString("source")
		if url == "" {
			url = cfg.SeedURL
		}
		path, _ := cmd.Flags().GetString("out")
		if path == "" {
			path = cfg.DataFile
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		f := seed.Default()
		f.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
		n, err := f.Fetch(ctx, url, path)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(map[string]any{"path": path, "prizes": n})
		}
		fmt.Printf("Wrote %d prizes to %s\n", n, path)
		return nil
	},
}

func init() {
	fetchCmd.Flags().String("source", "", "dataset URL (default NOBEL_SEED_URL)")
	fetchCmd.Flags().StringP("out", "o", "", "output file (default NOBEL_DATA_FILE)")
}
