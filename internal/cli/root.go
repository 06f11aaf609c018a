// Package cli implements the systrayctl CLI commands.
package cli

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/systrayctl/systrayctl/internal/config"
	"github.com/systrayctl/systrayctl/internal/models"
)

var (
	configPath string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "systrayctl",
	Short: "Start and stop systemd services from the system tray",
	Long: `Systrayctl keeps a tray menu in sync with a fixed set of systemd units.
It polls each unit's state, offers Start/Stop actions, and notifies you
when an action succeeds or fails.

Running systrayctl without a subcommand is the same as 'systrayctl run'.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLog(os.Stderr)
	},
	Args: cobra.NoArgs,
	RunE: runRun,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $XDG_CONFIG_HOME/systrayctl/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add subcommands (alphabetical)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(newControlCmd(models.ActionStart))
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(newControlCmd(models.ActionStop))
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(versionCmd)
}

// initLog points the global logger at w.
func initLog(w io.Writer) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339})
}

// loadSettings loads the effective settings and returns the resolved config path.
func loadSettings() (*models.Settings, string, error) {
	path, err := config.ResolveFile(configPath)
	if err != nil {
		return nil, "", err
	}
	settings, err := config.LoadSettings(configPath)
	if err != nil {
		return nil, "", err
	}
	return settings, path, nil
}
