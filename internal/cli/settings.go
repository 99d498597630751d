package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mydecisions/deskhost/internal/config"
	"github.com/mydecisions/deskhost/internal/models"
)

var settingsCmd = &cobra.Command{
	Use:     "settings",
	Aliases: []string{"config"},
	Short:   "Show the effective host settings",
	Long: `Show the host settings from ~/.mydecisions/settings.yaml merged over the
defaults. The host reads settings at startup; restart it to apply changes.`,
	Args: cobra.NoArgs,
	RunE: runSettings,
}

var settingsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default settings file if none exists",
	Args:  cobra.NoArgs,
	RunE:  runSettingsInit,
}

func init() {
	settingsCmd.AddCommand(settingsInitCmd)
}

func runSettings(cmd *cobra.Command, args []string) error {
	path, err := config.GlobalSettingsFile()
	if err != nil {
		return err
	}
	settings, err := config.LoadSettingsFrom(path)
	if err != nil {
		return err
	}

	source := path
	if !config.FileExists(path) {
		source = "defaults (" + path + " not found)"
	}
	fmt.Printf("%s %s\n\n", styleLabel.Render("Source:"), styleHint.Render(source))
	return writeSettings(os.Stdout, settings)
}

func writeSettings(w io.Writer, settings *models.Settings) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(settings); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return enc.Close()
}

func runSettingsInit(cmd *cobra.Command, args []string) error {
	path, err := config.GlobalSettingsFile()
	if err != nil {
		return err
	}
	if config.FileExists(path) {
		fmt.Printf("%s %s\n", styleWarning.Render("Settings already exist:"), path)
		return nil
	}
	if err := config.SaveSettings(models.NewSettings()); err != nil {
		return err
	}
	fmt.Printf("%s %s\n", styleSuccess.Render("Wrote"), path)
	return nil
}
