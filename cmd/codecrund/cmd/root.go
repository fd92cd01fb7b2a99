// Package cmd implements the CLI commands for codecrund.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/codecrun/internal/config"
	"github.com/jmylchreest/codecrun/internal/observability"
	"github.com/jmylchreest/codecrun/internal/version"
)

// daemonViper resolves logging defaults from the environment before any
// subcommand runs; it intentionally only knows about logging.* keys.
// Server/resource-manager/audit configuration loads separately and later,
// via engineconfig.Load in runServe, since that requires the --config flag
// value a persistent pre-run hook can't see for every subcommand.
var daemonViper = viper.New()

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "codecrund",
	Short:   "In-process media codec runtime daemon",
	Version: version.Short(),
	Long: `codecrund hosts the Codec Facade engine as a standalone service: an
in-process WebCodecs-style encode/decode/flush/reset lifecycle exposed to
out-of-process callers over gRPC, with a read-only HTTP admin surface over
the Resource Manager's registry of live codec instances.

Configuration is primarily via environment variables:
  CODECRUN_SERVER_GRPC_ADDRESS           - gRPC listen address
  CODECRUN_SERVER_ADMIN_ADDRESS          - admin HTTP listen address
  CODECRUN_RESOURCE_MANAGER_INACTIVITY_THRESHOLD - idle facade reclamation threshold

Example:
  codecrund serve --config /etc/codecrun/config.yaml`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		return initLogging()
	}

	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "log format (text, json)")
}

// initConfig reads environment variables for daemon configuration.
func initConfig() {
	daemonViper.SetEnvPrefix("CODECRUN")
	daemonViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	daemonViper.AutomaticEnv()
	setDaemonDefaults()
}

func setDaemonDefaults() {
	daemonViper.SetDefault("logging.level", "info")
	daemonViper.SetDefault("logging.format", "json")
}

func initLogging() error {
	level := daemonViper.GetString("logging.level")
	format := daemonViper.GetString("logging.format")

	if rootCmd.PersistentFlags().Changed("log-level") {
		level, _ = rootCmd.PersistentFlags().GetString("log-level")
	}
	if rootCmd.PersistentFlags().Changed("log-format") {
		format, _ = rootCmd.PersistentFlags().GetString("log-format")
	}

	if level == "" {
		level = "info"
	}
	if format == "" {
		format = "json"
	}
	if level == "warning" {
		level = "warn"
	}

	logCfg := config.LoggingConfig{Level: strings.ToLower(level), Format: strings.ToLower(format)}
	logger := observability.NewLoggerWithWriter(logCfg, os.Stderr)
	observability.SetDefault(logger)
	return nil
}
