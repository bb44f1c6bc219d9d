package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show server status",
		RunE:  runStatus,
	}
	rootCmd.AddCommand(statusCmd)

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan library roots for new media files",
		RunE:  runScan,
	}
	rootCmd.AddCommand(scanCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	status, err := client.Status()
	if err != nil {
		return fmt.Errorf("failed to fetch status: %w", err)
	}

	if jsonOutput {
		printJSON(status)
		return nil
	}

	fmt.Printf("Server:   %s (%s)\n", serverURL, status.Status)
	fmt.Printf("Movies:   %d\n", status.Movies)
	fmt.Printf("Series:   %d\n", status.Series)
	fmt.Printf("Resolved: %d\n", status.ResolvedTitles)
	return nil
}

func runScan(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	res, err := client.Scan()
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if jsonOutput {
		printJSON(res)
		return nil
	}

	fmt.Printf("Scan complete: %d titles, %d episodes, %d files added (%d skipped)\n",
		res.TitlesAdded, res.EpisodesAdded, res.FilesAdded, res.Skipped)
	return nil
}
