package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	continueCmd := &cobra.Command{
		Use:   "continue",
		Short: "Show the continue-watching row for a user",
		RunE:  runContinue,
	}
	continueCmd.Flags().Int64P("user", "u", 0, "User ID (required)")
	continueCmd.Flags().StringP("kind", "k", "movie", "Target kind (movie, episode)")
	_ = continueCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(continueCmd)

	popularCmd := &cobra.Command{
		Use:   "popular",
		Short: "Show the most-watched titles",
		RunE:  runPopular,
	}
	popularCmd.Flags().StringP("kind", "k", "movie", "Title kind (movie, series)")
	rootCmd.AddCommand(popularCmd)

	progressCmd := &cobra.Command{
		Use:   "progress",
		Short: "Record a playback position",
		RunE:  runProgress,
	}
	progressCmd.Flags().Int64P("user", "u", 0, "User ID (required)")
	progressCmd.Flags().String("kind", "movie", "Target kind (movie, episode)")
	progressCmd.Flags().Int64("target", 0, "Target ID (required)")
	progressCmd.Flags().Int("elapsed", 0, "Elapsed seconds")
	progressCmd.Flags().Bool("completed", false, "Mark as completed")
	_ = progressCmd.MarkFlagRequired("user")
	_ = progressCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(progressCmd)
}

func runContinue(cmd *cobra.Command, args []string) error {
	userID, _ := cmd.Flags().GetInt64("user")
	kind, _ := cmd.Flags().GetString("kind")

	client := NewClient(serverURL)
	rows, err := client.ContinueWatching(userID, kind)
	if err != nil {
		return fmt.Errorf("failed to fetch continue-watching: %w", err)
	}

	if jsonOutput {
		printJSON(rows)
		return nil
	}

	if len(rows) == 0 {
		fmt.Println("Nothing in progress.")
		return nil
	}

	fmt.Printf("Continue Watching (%d):\n\n", len(rows))
	fmt.Printf("  %-8s %-8s %-10s %-10s %s\n", "TARGET", "KIND", "ELAPSED", "UPDATED", "DONE")
	fmt.Println("  " + strings.Repeat("-", 50))
	for _, p := range rows {
		done := ""
		if p.Completed {
			done = "yes"
		}
		fmt.Printf("  %-8d %-8s %-10s %-10s %s\n",
			p.TargetID, p.TargetKind, formatElapsed(p.ElapsedSeconds), formatTimeAgo(p.UpdatedAt), done)
	}
	return nil
}

func formatElapsed(seconds int) string {
	if seconds < 3600 {
		return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
	}
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

func runPopular(cmd *cobra.Command, args []string) error {
	kind, _ := cmd.Flags().GetString("kind")

	client := NewClient(serverURL)
	data, err := client.Popular(kind)
	if err != nil {
		return fmt.Errorf("failed to fetch popular titles: %w", err)
	}

	if jsonOutput {
		printJSON(data)
		return nil
	}

	if len(data.Items) == 0 {
		fmt.Println("No titles.")
		return nil
	}

	printTitleTable(data.Items, data.Total)
	return nil
}

func runProgress(cmd *cobra.Command, args []string) error {
	userID, _ := cmd.Flags().GetInt64("user")
	kind, _ := cmd.Flags().GetString("kind")
	targetID, _ := cmd.Flags().GetInt64("target")
	elapsed, _ := cmd.Flags().GetInt("elapsed")
	completed, _ := cmd.Flags().GetBool("completed")

	if kind != "movie" && kind != "episode" {
		return fmt.Errorf("--kind must be 'movie' or 'episode', got: %s", kind)
	}

	client := NewClient(serverURL)
	p, err := client.RecordProgress(recordProgressRequest{
		UserID:         userID,
		TargetKind:     kind,
		TargetID:       targetID,
		ElapsedSeconds: elapsed,
		Completed:      completed,
	})
	if err != nil {
		return fmt.Errorf("failed to record progress: %w", err)
	}

	if jsonOutput {
		printJSON(p)
		return nil
	}

	fmt.Printf("Recorded: %s/%d at %s\n", p.TargetKind, p.TargetID, formatElapsed(p.ElapsedSeconds))
	return nil
}
