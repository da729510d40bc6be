// Package commands implements the mistctl commands.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/mist/internal/bridge"
	"github.com/GriffinCanCode/mist/internal/infrastructure/config"
)

// version is set at build time via ldflags.
var version = "0.1.0"

var (
	jsonOutput  bool
	showMetrics bool
	helperDir   string
	helperExe   string
	fixturePath string
	logLevel    string
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "print bridge metrics on exit")
	rootCmd.PersistentFlags().StringVar(&helperDir, "helper-dir", "", "directory holding the helper (default $MIST_HELPER_DIR or ./mist)")
	rootCmd.PersistentFlags().StringVar(&helperExe, "helper", "", "helper executable, relative to --helper-dir unless absolute")
	rootCmd.PersistentFlags().StringVar(&fixturePath, "fixture", "", "YAML or TOML fixture for the simulated platform")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("mistctl version {{.Version}}\n")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

var rootCmd = &cobra.Command{
	Use:   "mistctl",
	Short: "Drive a platform services helper from the command line",
	Long: `mistctl starts the helper through the same bridge a host program uses,
issues calls against it and prints replies and queued callbacks.

Configuration comes from MIST_* environment variables; flags override them.`,
	Example: `  # List operations
  mistctl ops

  # Call one operation
  mistctl call apps.get_app_install_dir 480

  # Interactive session
  mistctl shell --fixture testdata/deck.yaml`,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		newPrinter(os.Stdout, os.Stderr, jsonOutput).failure(err)
		return err
	}
	return nil
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if helperDir != "" {
		cfg.Helper.Dir = helperDir
	}
	if helperExe != "" {
		cfg.Helper.Executable = helperExe
	}
	if fixturePath != "" {
		cfg.Helper.Fixture = fixturePath
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

// withBridge starts a helper, runs fn and always stops the helper again.
func withBridge(cmd *cobra.Command, fn func(ctx context.Context, b *bridge.Bridge, p *printer) error) (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	p := newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), jsonOutput)

	b := bridge.New(cfg)
	if err := b.Init(ctx); err != nil {
		return err
	}
	defer func() {
		if derr := b.Deinit(context.Background()); derr != nil && err == nil {
			err = derr
		}
		if showMetrics {
			if merr := b.Metrics().WriteText(cmd.ErrOrStderr()); merr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "writing metrics: %v\n", merr)
			}
		}
	}()

	return fn(ctx, b, p)
}
