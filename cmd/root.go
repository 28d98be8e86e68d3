// Package cmd implements the conversebank CLI using cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crystaldolphin/conversebank/internal/config"
)

const version = "0.1.0"
const logo = "🏦"

var (
	configPath string
	envPath    string
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "conversebank",
	Short: logo + " conversebank: conversational banking on Messenger",
	Long:  logo + " conversebank: a Messenger banking bot backed by an api.ai agent",
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ~/.conversebank/config.json)")
	rootCmd.PersistentFlags().StringVar(&envPath, "env", ".env", "Env file loaded before the config")

	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(gatewayCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(setupCmd)
}

func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.ConfigPath()
}

// loadConfig loads the env file, then the config file with env overrides.
func loadConfig() (*config.Config, error) {
	if err := config.LoadEnv(envPath); err != nil {
		return nil, fmt.Errorf("load env %s: %w", envPath, err)
	}
	cfg, err := config.Load(resolvedConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
