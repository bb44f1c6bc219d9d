package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	titlesCmd := &cobra.Command{
		Use:   "titles",
		Short: "Manage catalog titles",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List titles in the catalog",
		RunE:  runTitlesList,
	}
	listCmd.Flags().StringP("kind", "k", "", "Filter by kind (movie, series)")
	listCmd.Flags().IntP("limit", "l", 50, "Maximum number of items to return")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one title",
		Args:  cobra.ExactArgs(1),
		RunE:  runTitlesShow,
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a title to the catalog",
		RunE:  runTitlesAdd,
	}
	addCmd.Flags().String("title", "", "Title name (required)")
	addCmd.Flags().String("kind", "", "Title kind: movie or series (required)")
	addCmd.Flags().Int("year", 0, "Release year")
	_ = addCmd.MarkFlagRequired("title")
	_ = addCmd.MarkFlagRequired("kind")

	episodesCmd := &cobra.Command{
		Use:   "episodes <series-id>",
		Short: "List episodes of a series",
		Args:  cobra.ExactArgs(1),
		RunE:  runTitlesEpisodes,
	}

	titlesCmd.AddCommand(listCmd)
	titlesCmd.AddCommand(showCmd)
	titlesCmd.AddCommand(addCmd)
	titlesCmd.AddCommand(episodesCmd)
	rootCmd.AddCommand(titlesCmd)

	recentCmd := &cobra.Command{
		Use:   "recent",
		Short: "Show recently added titles",
		RunE:  runRecent,
	}
	recentCmd.Flags().StringP("kind", "k", "movie", "Title kind (movie, series)")
	rootCmd.AddCommand(recentCmd)
}

func runTitlesList(cmd *cobra.Command, args []string) error {
	kind, _ := cmd.Flags().GetString("kind")
	limit, _ := cmd.Flags().GetInt("limit")

	client := NewClient(serverURL)
	data, err := client.Titles(kind, limit)
	if err != nil {
		return fmt.Errorf("failed to list titles: %w", err)
	}

	if jsonOutput {
		printJSON(data)
		return nil
	}

	if len(data.Items) == 0 {
		fmt.Println("No titles in catalog.")
		return nil
	}

	printTitleTable(data.Items, data.Total)
	if data.Total > len(data.Items) {
		fmt.Printf("\n  Showing %d of %d titles. Use --limit to see more.\n", len(data.Items), data.Total)
	}
	return nil
}

func printTitleTable(items []TitleResponse, total int) {
	fmt.Printf("Titles (%d):\n\n", total)
	fmt.Printf("  %-5s %-8s %-42s %-6s %s\n", "ID", "KIND", "TITLE", "YEAR", "TMDB")
	fmt.Println("  " + strings.Repeat("-", 75))

	for i := range items {
		item := &items[i]
		title := item.Title
		if len(title) > 42 {
			title = title[:39] + "..."
		}
		tmdb := "-"
		if item.TMDBID != nil {
			tmdb = strconv.FormatInt(*item.TMDBID, 10)
		}
		fmt.Printf("  %-5d %-8s %-42s %-6d %s\n", item.ID, item.Kind, title, item.Year, tmdb)
	}
}

func runTitlesShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid ID: %s", args[0])
	}

	client := NewClient(serverURL)
	t, err := client.Title(id)
	if err != nil {
		return fmt.Errorf("failed to fetch title: %w", err)
	}

	if jsonOutput {
		printJSON(t)
		return nil
	}

	fmt.Printf("%s (%d)\n", t.Title, t.Year)
	fmt.Printf("  ID:      %d\n", t.ID)
	fmt.Printf("  Kind:    %s\n", t.Kind)
	if t.TMDBID != nil {
		fmt.Printf("  TMDB:    %d\n", *t.TMDBID)
	}
	if t.RuntimeMinutes > 0 {
		fmt.Printf("  Runtime: %dm\n", t.RuntimeMinutes)
	}
	fmt.Printf("  Added:   %s ago\n", formatTimeAgo(t.AddedAt))
	return nil
}

func runTitlesAdd(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	kind, _ := cmd.Flags().GetString("kind")
	year, _ := cmd.Flags().GetInt("year")

	if kind != "movie" && kind != "series" {
		return fmt.Errorf("--kind must be 'movie' or 'series', got: %s", kind)
	}

	client := NewClient(serverURL)
	t, err := client.AddTitle(kind, title, year)
	if err != nil {
		return fmt.Errorf("failed to add title: %w", err)
	}

	if jsonOutput {
		printJSON(t)
		return nil
	}

	fmt.Printf("Added: %s (%d) [ID: %d]\n", t.Title, t.Year, t.ID)
	return nil
}

func runTitlesEpisodes(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid ID: %s", args[0])
	}

	client := NewClient(serverURL)
	data, err := client.Episodes(id)
	if err != nil {
		return fmt.Errorf("failed to list episodes: %w", err)
	}

	if jsonOutput {
		printJSON(data)
		return nil
	}

	if len(data.Items) == 0 {
		fmt.Println("No episodes.")
		return nil
	}

	fmt.Printf("Episodes (%d):\n\n", data.Total)
	for _, ep := range data.Items {
		fmt.Printf("  S%02dE%02d  %s\n", ep.Season, ep.Episode, ep.Title)
	}
	return nil
}

func runRecent(cmd *cobra.Command, args []string) error {
	kind, _ := cmd.Flags().GetString("kind")

	client := NewClient(serverURL)
	data, err := client.Recent(kind)
	if err != nil {
		return fmt.Errorf("failed to fetch recent titles: %w", err)
	}

	if jsonOutput {
		printJSON(data)
		return nil
	}

	if len(data.Items) == 0 {
		fmt.Println("No recent titles.")
		return nil
	}

	printTitleTable(data.Items, data.Total)
	return nil
}
