// Package cmd implements the mydecisionsd command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mydecisions/deskhost/internal/config"
	"github.com/mydecisions/deskhost/internal/daemon/host"
)

var (
	flagDev        bool
	flagForeground bool
	flagHeadless   bool
	flagPort       int
	flagLogLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "mydecisionsd",
	Short: "Run the MyDecisions desktop host",
	Long: `mydecisionsd owns the MyDecisions overlay and dashboard windows, the
system tray icon and the command channel used by window content.

Only one host runs per user session; launching another brings the existing
dashboard forward.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runHost,
}

// Execute runs the host command line.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	rootCmd.Flags().BoolVar(&flagDev, "dev", false, "Load window content from the development servers")
	rootCmd.Flags().BoolVar(&flagForeground, "foreground", false, "Run without the system tray (for development)")
	rootCmd.Flags().BoolVar(&flagHeadless, "headless", false, "Keep windows in memory instead of on a display")
	rootCmd.Flags().IntVar(&flagPort, "port", -1, "Command channel port (0 for dynamic allocation)")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Override log level (debug, info, warn, error)")
}

func runHost(cmd *cobra.Command, args []string) error {
	if err := config.EnsureGlobalDir(); err != nil {
		return fmt.Errorf("failed to create global directory: %w", err)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("dev") {
		settings.DevMode = flagDev
	}
	if flagPort >= 0 {
		settings.Server.Port = flagPort
	}
	if flagLogLevel != "" {
		settings.Log.Level = flagLogLevel
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	level, err := config.NewLevel(settings.Log.Level)
	if err != nil {
		return err
	}
	logger, closer, err := config.OpenLogger(level, settings.Log.File, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	// An explicit --log-level pins the level for the whole run.
	var settingsPath string
	if flagLogLevel == "" {
		if settingsPath, err = config.GlobalSettingsFile(); err != nil {
			return err
		}
	}

	h, err := host.New(host.Options{
		Settings:     settings,
		Tray:         !flagForeground,
		Headless:     flagHeadless,
		SettingsPath: settingsPath,
		LogLevel:     level,
		Logger:       logger,
	})
	if errors.Is(err, host.ErrAlreadyRunning) {
		logger.Info("host already running, activated existing instance")
		return nil
	}
	if err != nil {
		return err
	}

	if flagForeground {
		logger.Info("running in foreground mode (no system tray)")
	}
	return h.Run(context.Background())
}
