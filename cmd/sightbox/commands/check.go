package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sightbox/sightbox/internal/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate settings without starting the device",
	RunE:  checkSettings,
}

func checkSettings(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(settingsPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("settings invalid: %w", err)
	}

	fmt.Printf("settings OK: %d quality modes, %d prompts, archive %q\n",
		len(cfg.Quality), len(cfg.Prompts), cfg.ArchiveDir)

	if err := cfg.RequireCredential(); err != nil {
		fmt.Println("warning:", err)
	} else {
		fmt.Println("credential present")
	}
	return nil
}
