// Package cli provides the sqlfrag command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zoobzio/sqlfrag/internal/config"
	"github.com/zoobzio/sqlfrag/internal/logging"
)

// Version is set at build time.
var Version = "dev"

// app carries state resolved before any subcommand runs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string
	a := &app{}

	root := &cobra.Command{
		Use:   "sqlfrag",
		Short: "Render portable SQL fragments for several dialects",
		Long: `sqlfrag renders query documents into dialect-specific SQL.

Aggregates, comments, constant sorts, user statements and XML aggregation are
emitted natively where a dialect supports them and emulated or rejected where
it does not.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logging.New(cmd.ErrOrStderr(), cfg.Verbose)
			if cfg.File != "" {
				a.logger.Debug("loaded config", zap.String("file", cfg.File))
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./sqlfrag.yaml)")
	root.PersistentFlags().StringSliceP("dialect", "d", nil, "dialect to render for (repeatable)")
	root.PersistentFlags().StringP("format", "o", config.FormatText, "output format (text|json)")
	root.PersistentFlags().BoolP("verbose", "v", false, "verbose logging")

	_ = root.RegisterFlagCompletionFunc("dialect", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, 0, len(registry))
		for _, r := range allRenderers() {
			names = append(names, r.Dialect())
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
	_ = root.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.FormatText, config.FormatJSON}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(newRenderCommand(a))
	root.AddCommand(newDialectsCommand(a))
	root.AddCommand(newExecCommand(a))

	return root
}

// Execute runs the root command.
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
