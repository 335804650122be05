package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soaringjerry/EcoImpact/internal/config"
	"github.com/soaringjerry/EcoImpact/internal/db"
	"github.com/soaringjerry/EcoImpact/internal/logging"
)

func newMigrateCommand(root *rootOptions) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy the JSON state file into a new SQLite database",
		Long: `Copy the JSON state file into a new SQLite database.

Nothing happens when the database already exists or the state file is
missing. Paths default to storage.file_path and storage.sqlite_path.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			if from == "" {
				from = cfg.Storage.FilePath
			}
			if to == "" {
				to = cfg.Storage.SQLitePath
			}
			logger := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Out: cmd.ErrOrStderr()})
			copied, err := db.MigrateFileToSQLite(from, to, cfg.Storage.MigrationsDir, persistedKeys, logging.Component(logger, "migrate"))
			if err != nil {
				return err
			}
			if copied {
				fmt.Fprintf(cmd.OutOrStdout(), "migrated %s -> %s\n", from, to)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to migrate")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "JSON state file")
	cmd.Flags().StringVar(&to, "to", "", "SQLite database file")
	return cmd
}
