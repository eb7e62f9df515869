package main

import (
	"venue-staff/internal/database/seeder"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedPassword string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo venue, owner account and application template",
	Long: `Insert demo data. Existing rows are left untouched, so the command can be
run repeatedly. The owner signs in as ` + seeder.DemoOwnerEmail + `.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		r := seeder.Runner{Seeders: seeder.Defaults(seedPassword)}
		if err := r.Run(cmd.Context(), e.db); err != nil {
			return err
		}
		e.logger.Info("seed complete", zap.String("owner", seeder.DemoOwnerEmail), zap.String("venue", seeder.DemoVenueSlug))
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedPassword, "password", "", "password for the demo owner (default password123)")
}
