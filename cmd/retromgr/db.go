package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/retromgr/internal/db"
)

func newDBCmd(opts *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBMigrateCmd(opts))
	return cmd
}

func newDBMigrateCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the retromgr tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := connectFromConfig(opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Connected to %s database\n", cfg.Database.Driver)
			fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))
			return nil
		},
	}
}
