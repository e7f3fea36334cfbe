package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/nobel/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show service status and prize count",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := prizesClient.Status(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(st)
		}
		fmt.Println(ui.RenderAccent("Nobel Prize Service"))
		fmt.Printf("  Status:   %s\n", st.Status)
		fmt.Printf("  Version:  %s\n", st.Version)
		fmt.Printf("  Prizes:   %d\n", st.TotalPrizes)
		fmt.Printf("  Security: %v\n", st.SecurityEnabled)
		fmt.Printf("  %s\n", ui.RenderMuted(st.Message))
		return nil
	},
}

var securityCmd = &cobra.Command{
	Use:     "security",
	Short:   "Show authentication scheme, rate limits and protected routes",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := prizesClient.SecurityInfo(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(info)
		}
		fmt.Printf("Authentication: %s\n", info.Authentication)
		fmt.Println("Rate limits:")
		for _, tier := range sortedKeys(info.RateLimits) {
			fmt.Printf("  %-8s %s\n", tier, info.RateLimits[tier])
		}
		fmt.Println("Protected endpoints:")
		for _, role := range sortedKeys(info.ProtectedEndpoints) {
			for _, route := range info.ProtectedEndpoints[role] {
				fmt.Printf("  %-8s %s\n", role, route)
			}
		}
		if len(info.AdminOnly) > 0 {
			fmt.Println("Admin only:")
			for _, route := range info.AdminOnly {
				fmt.Printf("  %s\n", route)
			}
		}
		return nil
	},
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
