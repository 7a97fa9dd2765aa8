package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile   string
	outputFormat string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "uptime-dashboard",
		Short: "Network uptime dashboard",
		Long:  `Serves the network uptime dashboard and queries the outage log from the command line.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return useConfigFile(configFile)
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (env: APP_CONFIG_FILE)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(eventsCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// useConfigFile points config.FromEnv at path, which must exist.
func useConfigFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	if err := os.Setenv("APP_CONFIG_FILE", path); err != nil {
		return fmt.Errorf("set APP_CONFIG_FILE: %w", err)
	}
	return nil
}
