// Package cli implements the sleepq command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/YuminosukeSato/sleepq/internal/config"
	"github.com/YuminosukeSato/sleepq/pkg/log"
)

// Build-time variables.
var (
	version = "dev"
	commit  = "unknown"
)

// app carries the state shared by every command of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	stderr  io.Writer
}

// Execute runs the command tree with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New(), stderr: os.Stderr}

	root := &cobra.Command{
		Use:   "sleepq",
		Short: "Predict sleep quality from daily activity",
		Long: `sleepq predicts a sleep-quality label from age, gender, daily steps,
calories burned, activity level and dietary habits.

Predictions come from the best available model: a neural network, a
logistic regression, or a rule-based score against population averages.
Missing or broken model files degrade to the next method instead of failing.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.stderr = cmd.ErrOrStderr()
			return a.init()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./config.yaml or $HOME/.sleepq/config.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error, disabled)")
	flags.StringP("output", "o", config.OutputText, "output format (text, json, yaml)")
	flags.String("artifacts-dir", ".", "directory holding model artifacts")
	flags.String("profile", "full", "cascade profile (full, simple, coarse)")

	_ = a.v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = a.v.BindPFlag(config.KeyOutput, flags.Lookup("output"))
	_ = a.v.BindPFlag(config.KeyArtifactsDir, flags.Lookup("artifacts-dir"))
	_ = a.v.BindPFlag(config.KeyCascadeProfile, flags.Lookup("profile"))

	root.AddCommand(
		newPredictCommand(a),
		newTrainCommand(a),
		newAveragesCommand(a),
		newServeCommand(a),
	)
	return root
}

// init reads configuration and configures logging.
func (a *app) init() error {
	if err := config.Init(a.v, a.cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if err := log.Setup(cfg.LogLevel, a.stderr, cfg.Output == config.OutputText); err != nil {
		return err
	}
	if used := a.v.ConfigFileUsed(); used != "" {
		log.GetLogger().Debug("Using config file", "file", used)
	}
	return nil
}
