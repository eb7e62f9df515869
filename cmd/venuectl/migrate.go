package main

import (
	"venue-staff/internal/database/migration"
	"venue-staff/migrations"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending SQL migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		r := migration.Runner{Source: migrations.FS, Logger: e.logger}
		return r.Run(cmd.Context(), e.db.SQLDB())
	},
}
