package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vmunix/streamgo/internal/config"
)

func init() {
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter config file",
		Long:  "Writes the default config.toml. Edit it to point at your library roots and set the TMDB API key.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInit,
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	path := "config.toml"
	if len(args) == 1 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	if err := config.WriteDefault(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("Wrote %s\n", path)
	fmt.Println("Set tmdb.api_key (or the TMDB_API_KEY environment variable) and your library roots, then run 'streamgod'.")
	return nil
}
