package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var settingsPath string

var rootCmd = &cobra.Command{
	Use:   "sightbox",
	Short: "Sightbox - a point-and-describe camera",
	Long:  `Captures photos, sends them to a vision analysis service, and shows the response on a small paginated display. Runs against a simulated camera.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&settingsPath, "settings", "s", "", "Path to settings.toml (default: ./settings.toml if present)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
}
