package cli

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/mateusmacedo/go-schedule/internal/config"
	"github.com/mateusmacedo/go-schedule/internal/schedule/infrastructure"
)

func migrateCmd(opts *rootOptions) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if cfg.Store != config.StorePostgres {
				return errors.Wrapf(config.ErrInvalidConfig, "migrate needs STORE=%s", config.StorePostgres)
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			store, err := infrastructure.NewGormStore(cfg.DatabaseURL, logger)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.Migrate(cmd.Context()); err != nil {
				return err
			}
			if reset {
				if err := store.Truncate(cmd.Context()); err != nil {
					return err
				}
				cmd.Println("all rows removed")
			}
			cmd.Println("schema up to date")
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "remove every row after migrating")
	return cmd
}
