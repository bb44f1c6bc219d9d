package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	resolveCmd := &cobra.Command{
		Use:   "resolve <title-id> [title-id...]",
		Short: "Resolve external metadata for stored titles",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runResolve,
	}
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID: %s", arg)
		}
		ids = append(ids, id)
	}

	client := NewClient(serverURL)

	if len(ids) == 1 {
		res, err := client.Resolve(ids[0])
		if err != nil {
			return fmt.Errorf("resolve failed: %w", err)
		}
		if jsonOutput {
			printJSON(res)
			return nil
		}
		printResolved(res)
		return nil
	}

	batch, err := client.ResolveBatch(ids)
	if err != nil {
		return fmt.Errorf("resolve failed: %w", err)
	}
	if jsonOutput {
		printJSON(batch)
		return nil
	}
	for i := range batch.Items {
		printResolved(&batch.Items[i])
		fmt.Println()
	}
	return nil
}

func printResolved(r *ResolvedResponse) {
	fmt.Printf("%s [title %d]\n", r.Title, r.TitleID)
	if r.Fallback {
		fmt.Println("  No provider match; title-only fallback.")
		return
	}
	fmt.Printf("  TMDB:       %d\n", r.TMDBID)
	fmt.Printf("  Confidence: %s\n", r.Confidence)
	if r.Overview != "" {
		overview := r.Overview
		if len(overview) > 120 {
			overview = overview[:117] + "..."
		}
		fmt.Printf("  Overview:   %s\n", overview)
	}
	if r.PosterURL != "" {
		fmt.Printf("  Poster:     %s\n", r.PosterURL)
	}
}
