package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systrayctl/systrayctl/internal/config"
	"github.com/systrayctl/systrayctl/internal/models"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, _, err := loadSettings()
		if err != nil {
			return err
		}
		data, err := config.MarshalYAML(newSettingsView(settings))
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.ResolveFile(configPath)
		if err != nil {
			return err
		}
		suffix := ""
		if !config.FileExists(path) {
			suffix = " " + styleHint.Render("(not found, defaults apply)")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", path, suffix)
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and report every problem",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, path, err := loadSettings()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d services)\n",
			styleSuccess.Render("✓"), path, len(settings.Services))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

// settingsView renders durations the way they are written in config.yaml.
type settingsView struct {
	Version         int                   `yaml:"version"`
	Backend         string                `yaml:"backend"`
	Scope           string                `yaml:"scope"`
	PollInterval    string                `yaml:"poll_interval"`
	QueryTimeout    string                `yaml:"query_timeout"`
	ControlTimeout  string                `yaml:"control_timeout"`
	CollapseUnknown bool                  `yaml:"collapse_unknown"`
	Notification    notificationView      `yaml:"notification"`
	Services        []models.ServiceEntry `yaml:"services"`
}

type notificationView struct {
	AppName string `yaml:"app_name"`
	Title   string `yaml:"title"`
	Timeout string `yaml:"timeout"`
}

func newSettingsView(s *models.Settings) settingsView {
	return settingsView{
		Version:         s.Version,
		Backend:         s.Backend,
		Scope:           s.Scope,
		PollInterval:    s.PollInterval.String(),
		QueryTimeout:    s.QueryTimeout.String(),
		ControlTimeout:  s.ControlTimeout.String(),
		CollapseUnknown: s.CollapseUnknown,
		Notification: notificationView{
			AppName: s.Notification.AppName,
			Title:   s.Notification.Title,
			Timeout: s.Notification.Timeout.String(),
		},
		Services: s.Services,
	}
}
