// Package cli provides the gigspace command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gigspace/gigspace/internal/api"
	"github.com/gigspace/gigspace/internal/config"
	"github.com/gigspace/gigspace/internal/logging"
	"github.com/gigspace/gigspace/internal/session"
)

var (
	configFile string
	jsonOutput bool

	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "gigspace",
	Short:         "Marketplace client with built-in messaging",
	Long:          "gigspace is a terminal client for the gigspace marketplace: browse gigs, track orders, and message other users. Run without arguments to open the messaging interface.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loader := config.NewLoader()
		if configFile != "" {
			loader.SetConfigFile(configFile)
		}
		cfg, err := loader.Load()
		if err != nil {
			return err
		}
		appConfig = cfg

		logCfg := logging.Config{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		}
		if cfg.Logging.File != "" {
			file, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			logCfg.Output = file
		}
		logging.Init(logCfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "machine-readable JSON output")
}

// Execute runs the CLI.
func Execute(version string) error {
	rootCmd.Version = version
	return rootCmd.Execute()
}

// ExecuteUI launches the TUI directly, used when the binary is invoked
// with no arguments.
func ExecuteUI(version string) error {
	rootCmd.Version = version
	rootCmd.SetArgs([]string{"ui"})
	return rootCmd.Execute()
}

// openSession returns the session store for the configured token file.
func openSession() (*session.Store, error) {
	return session.NewStore(appConfig.Session.TokenFile)
}

// newClient builds an API client bound to the cached session. Commands
// that require login should call requireSession first for a friendly
// error.
func newClient(store *session.Store) (*api.Client, error) {
	cfg := api.ClientConfig{
		BaseURL: appConfig.API.BaseURL,
		Timeout: appConfig.API.Timeout,
	}
	if store != nil {
		cfg.Tokens = store
	}
	return api.NewClient(cfg)
}

// requireSession loads the cached session or explains how to log in.
func requireSession(store *session.Store) (*session.Session, error) {
	sess, err := store.Load()
	if err != nil {
		if errors.Is(err, session.ErrNotLoggedIn) {
			return nil, fmt.Errorf("not logged in; run: gigspace login")
		}
		return nil, err
	}
	return sess, nil
}

func printf(format string, args ...any) {
	fmt.Fprintf(os.Stdout, format, args...)
}
