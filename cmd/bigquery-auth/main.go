package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/moj-analytical-services/dbt-adapters/cmd/bigquery-auth/adc"
	"github.com/moj-analytical-services/dbt-adapters/cmd/bigquery-auth/common"
	"github.com/moj-analytical-services/dbt-adapters/cmd/bigquery-auth/login"
	"github.com/moj-analytical-services/dbt-adapters/cmd/bigquery-auth/token"
	"github.com/moj-analytical-services/dbt-adapters/cmd/bigquery-auth/version"
)

func newRootCmd() *cobra.Command {
	// Create shared flags struct
	flags := &common.Flags{}

	// Create root command
	rootCmd := &cobra.Command{
		Use:   "bigquery-auth",
		Short: "BigQuery credential resolver for dbt connection profiles",
		Long: `bigquery-auth resolves a declarative dbt connection profile into a live
BigQuery credential, supporting OAuth defaults, token secrets, service
account keys, impersonation, and workload identity federation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flags.LogFormat, "log-format", "json", "Log format (json, console)")
	rootCmd.PersistentFlags().StringVar(&flags.ProfileFile, "profile", "", "Path to the connection profile YAML")

	// Add subcommands
	rootCmd.AddCommand(version.NewCommand())
	rootCmd.AddCommand(token.NewCommand(flags))
	rootCmd.AddCommand(adc.NewCommand(flags))
	rootCmd.AddCommand(login.NewCommand(flags))

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
