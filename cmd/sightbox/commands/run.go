package commands

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sightbox/sightbox/internal/archive"
	"github.com/sightbox/sightbox/internal/config"
	"github.com/sightbox/sightbox/internal/device"
	"github.com/sightbox/sightbox/internal/simcam"
	"github.com/sightbox/sightbox/internal/vision"
)

var sceneFlag string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the device",
	RunE:  runDevice,
}

func init() {
	runCmd.Flags().StringVar(&sceneFlag, "scene", "", "Image file the simulated camera points at (overrides settings)")
}

func runDevice(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(settingsPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if err := cfg.RequireCredential(); err != nil {
		return err
	}
	if sceneFlag != "" {
		cfg.Scene = sceneFlag
	}

	// The terminal is the display, so logs go to a file.
	logFile, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// No camera means no device.
	camera, err := simcam.Open(cfg.Scene)
	if err != nil {
		return fmt.Errorf("camera unavailable: %w", err)
	}

	// A broken archive directory degrades to a device that cannot persist;
	// everything else keeps working.
	store, err := archive.Open(cfg.ArchiveDir)
	if err != nil {
		logger.Error("archive_disabled", "dir", cfg.ArchiveDir, "error", err)
	}

	var index *archive.Index
	if !store.Disabled() {
		index, err = archive.OpenIndex(cfg.IndexPath())
		if err != nil {
			logger.Warn("caption_index_unavailable", "path", cfg.IndexPath(), "error", err)
			index = nil
		} else {
			defer index.Close()
		}
	}

	client := vision.NewClient(cfg.VisionConfig())

	m, err := device.New(cfg, camera, &simcam.Light{}, store, index, client, logger)
	if err != nil {
		return err
	}

	logger.Info("device_started", "archive", cfg.ArchiveDir, "model", cfg.API.Model)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("device loop: %w", err)
	}
	logger.Info("device_stopped")
	return nil
}
