package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mateusmacedo/go-schedule/internal/config"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	logLevel string
	store    string
}

// load lê a configuração e aplica as flags globais por cima do ambiente.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.store != "" {
		cfg.Store = o.store
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "schedule",
		Short:        "Transport schedule service: locations, voyages, tickets and seat availability",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	cmd.PersistentFlags().StringVar(&opts.store, "store", "", "storage backend: postgres or memory (overrides STORE)")

	cmd.AddCommand(serveCmd(opts))
	cmd.AddCommand(summaryCmd(opts))
	cmd.AddCommand(loadCmd(opts))
	cmd.AddCommand(migrateCmd(opts))
	return cmd
}
