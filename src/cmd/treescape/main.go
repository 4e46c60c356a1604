// Package main is the entry point for the Treescape application.
// It initializes all components and runs the main program loop.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagConfig string
	flagSource string
	flagPath   string
)

var rootCmd = &cobra.Command{
	Use:   "treescape",
	Short: "Interactive browser for lazily-loaded trees",
	Long: `Treescape browses trees of application data whose children are fetched
on demand from a node source: a SQLite database, a directory on the local
filesystem, or a built-in demo tree.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return bootstrap(flagConfig, flagSource, flagPath)
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "path to the config file")
	rootCmd.Flags().StringVar(&flagSource, "source", "", "node source: demo, sqlite or fs (overrides config)")
	rootCmd.Flags().StringVar(&flagPath, "path", "", "root directory for the fs source (overrides config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "treescape: %v\n", err)
		os.Exit(1)
	}
}
