// Package cli implements the asana command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alexander-edwards/asana-clone-app-fullstack/config"
	"github.com/alexander-edwards/asana-clone-app-fullstack/logging"
)

// Version is overridden at build time with -ldflags "-X ...cli.Version=...".
var Version = "1.0.0"

var (
	cfgFile string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "asana",
	Short: "Asana clone API server",
	Long: `asana serves the project-management REST API: workspaces, projects,
sections, tasks, comments, attachments and notifications.

Quick start:
  asana migrate up     Apply database migrations
  asana serve          Start the API server`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// initConfig reads the dotenv file, the optional config file and ENV variables.
func initConfig() {
	if err := config.LoadDotEnv(envFile); err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
	}

	v := viper.GetViper()
	config.SetDefaults(v)
	config.BindEnv(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("asana")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Warning: could not read config:", err)
		}
	}
}

// loadConfig decodes the merged configuration and starts the logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if err := logging.InitLogger(cfg.Log); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}
