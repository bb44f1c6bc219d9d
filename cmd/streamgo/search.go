package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the local catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}
	searchCmd.Flags().StringP("kind", "k", "", "Filter by kind (movie, series)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	kind, _ := cmd.Flags().GetString("kind")

	client := NewClient(serverURL)
	data, err := client.Search(query, kind)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if jsonOutput {
		printJSON(data)
		return nil
	}

	if len(data.Items) == 0 {
		fmt.Printf("No matches for %q.\n", query)
		return nil
	}

	printTitleTable(data.Items, data.Total)
	return nil
}
