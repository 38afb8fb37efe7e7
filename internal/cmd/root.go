// Package cmd wires the CLI surface onto the session manager. Commands map
// user intents (activate, status, refresh, clear) onto Manager calls; the
// unattended periodic trigger reuses `activate` without --force.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"claudewatch/internal/config"
	"claudewatch/internal/format"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "claudewatch",
	Short: "Usage-window tracker for the Claude CLI",
	Long: `Claudewatch tracks the fixed-duration usage windows granted by the
Claude CLI's rate limiting. It records when a window was started, reports
elapsed and remaining time, and starts a new window on demand or whenever
a scheduled trigger finds the previous one expired.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command, rendering any failure as a styled line on
// stderr. The caller maps the returned error onto the exit status.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, format.Fail(err.Error()))
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", fmt.Sprintf("config file (default %s)", config.ConfigFile()))
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/claudewatch")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("CLAUDEWATCH")
	// Replace dots with underscores for nested keys in env vars
	// e.g., CLAUDEWATCH_PROBE_TIMEOUT_SECONDS for probe.timeout_seconds
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
