package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/andresmejia3/facecrypt/internal/config"
	"github.com/andresmejia3/facecrypt/internal/face"
	"github.com/andresmejia3/facecrypt/internal/logging"
	"github.com/andresmejia3/facecrypt/internal/utils"
)

var (
	// cfg is the merged flag/env/file configuration of the running command
	cfg *config.Config
	// logger is the command-layer logger; the core packages never log
	logger *slog.Logger

	configFile string
)

// Version is the application version.
const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "facecrypt",
	Short:   "Face-aware image previews and password-encrypted image containers",
	Version: Version, // This enables the --version flag
	// Errors are rendered by Execute in the error box.
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v := viper.New()
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return fail("Failed to bind flags", err)
		}

		var err error
		cfg, err = config.Load(v, configFile)
		if err != nil {
			return fail("Configuration Error", err)
		}

		logger, err = logging.New(cfg.LogLevel, os.Stderr)
		if err != nil {
			return fail("Configuration Error", err)
		}
		slog.SetDefault(logger)
		return nil
	},
}

// failure carries the headline shown above the error details.
type failure struct {
	context string
	err     error
}

func (f *failure) Error() string { return f.context + ": " + f.err.Error() }
func (f *failure) Unwrap() error { return f.err }

func fail(context string, err error) error {
	return &failure{context: context, err: err}
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// This tells Cobra not to print the version in the help text, which is cleaner.
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var f *failure
		if errors.As(err, &f) {
			utils.Die(f.context, f.err)
		}
		utils.Die("Command failed", err)
	}
}

// loadCascade reads the face cascade named by --cascade / FACECRYPT_CASCADE.
func loadCascade() (face.Cascade, error) {
	if cfg.Cascade == "" {
		return nil, fail("No face cascade configured", fmt.Errorf("set --cascade or %s_CASCADE to a pigo cascade file", config.EnvPrefix))
	}
	c, err := face.LoadCascade(cfg.Cascade)
	if err != nil {
		return nil, fail("Failed to load face cascade", err)
	}
	logger.Debug("cascade loaded", "component", "cli", "path", cfg.Cascade)
	return c, nil
}

// addDetectFlags registers the detector tuning flags on commands that run detection.
func addDetectFlags(cmd *cobra.Command) {
	d := face.DefaultDetectOptions()
	cmd.Flags().Float64("scale-factor", d.ScaleFactor, "Window growth between detection scales")
	cmd.Flags().Int("min-neighbors", d.MinNeighbors, "Overlapping hits required to accept a face")
	cmd.Flags().Int("min-size", d.MinSize, "Smallest face size in pixels")
	cmd.Flags().Float64("shift-factor", d.ShiftFactor, "Window stride as a fraction of its size")
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("cascade", "", "Path to the pigo face cascade file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringP("output", "o", "output", "Directory artifacts are written to")
}
