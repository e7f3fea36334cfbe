package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/nobel/internal/client"
	"github.com/alfredjeanlab/nobel/internal/ui"
)

var (
	serverURL  string
	username   string
	password   string
	jsonOutput bool
	noColor    bool

	prizesClient client.PrizesClient
)

func defaultURL() string {
	if s := os.Getenv("NOBEL_URL"); s != "" {
		return s
	}
	return "http://localhost:8001"
}

var rootCmd = &cobra.Command{
	Use:           "nobel <command>",
	Short:         "Nobel prize records service and client",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor || !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
		opts := []client.Option{}
		if username != "" {
			if password == "" {
				p, err := ui.ReadPassword(fmt.Sprintf("Password for %s: ", username))
				if err != nil && !errors.Is(err, ui.ErrNotTerminal) {
					return fmt.Errorf("reading password: %w", err)
				}
				password = p
			}
			opts = append(opts, client.WithBasicAuth(username, password))
		}
		prizesClient = client.NewHTTPClient(serverURL, opts...)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if prizesClient != nil {
			prizesClient.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "url", defaultURL(), "server URL")
	rootCmd.PersistentFlags().StringVarP(&username, "user", "u", os.Getenv("NOBEL_USER"), "username for changes")
	rootCmd.PersistentFlags().StringVar(&password, "password", os.Getenv("NOBEL_PASSWORD"), "password (prompted when omitted on a terminal)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "prizes", Title: "Prizes:"},
		&cobra.Group{ID: "changes", Title: "Changes:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Prizes
	rootCmd.AddCommand(prizesCmd)
	rootCmd.AddCommand(motivationCmd)
	rootCmd.AddCommand(laureatesCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(historyCmd)

	// Changes
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(watchCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(securityCmd)
	rootCmd.AddCommand(healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.RenderError("Error: ")+err.Error())
		os.Exit(1)
	}
}
