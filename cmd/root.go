// Package cmd provides the command-line interface for velum.
//
// Configuration is layered, highest priority first:
//  1. Command-line flags (--config, --port, ...)
//  2. VELUM_-prefixed environment variables (VELUM_SERVER_PORT, ...)
//  3. A .velum.yml configuration file
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "velum",
	Short: "A minimal web application host with an embedded template engine",
	Long: `Velum serves a handful of HTML pages through a small embedded
templating language: <% statement %> tags for control flow and
assignments, <%= expression %> tags for HTML-escaped output, and
everything else emitted verbatim.

Quick start:
  velum init      Scaffold a new project in the current directory
  velum serve     Start the server with template hot reload
  velum check     Validate every template in the templates directory
  velum render    Render a single template to stdout`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .velum.yml)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".velum")
	}

	viper.SetEnvPrefix("VELUM")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing config file is fine; defaults and env vars apply.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
