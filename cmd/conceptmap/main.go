// Package main is the conceptmap CLI: offline layouts and operator helpers.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"brain2-conceptmap/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "conceptmap",
	Short: "Concept map layouts from the command line",
	Long: `conceptmap computes concept map frames from a YAML notes file without
running the HTTP service, and issues development tokens for the API.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: $CONFIG_FILE)")
}

// loadConfig reads the file named by --config, falling back to CONFIG_FILE.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	return config.LoadFile(path)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
