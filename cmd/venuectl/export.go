package main

import (
	"fmt"
	"os"

	"venue-staff/internal/domain/shift"
	"venue-staff/internal/infrastructure/export"
	"venue-staff/internal/pkg/calendar"
	"venue-staff/internal/repository"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	exportVenue string
	exportMonth string
	exportOut   string
)

var exportScheduleCmd = &cobra.Command{
	Use:   "export-schedule",
	Short: "Write a venue's monthly schedule to an .xlsx file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		venueID, err := uuid.Parse(exportVenue)
		if err != nil {
			return fmt.Errorf("--venue: %w", err)
		}
		m, err := calendar.ParseMonth(exportMonth)
		if err != nil {
			return fmt.Errorf("--month: %w", err)
		}
		out := exportOut
		if out == "" {
			out = fmt.Sprintf("schedule-%s.xlsx", m)
		}

		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		v, err := repository.NewPostgresVenueRepository(e.db).GetByID(cmd.Context(), venueID)
		if err != nil {
			return fmt.Errorf("load venue: %w", err)
		}
		shifts, err := repository.NewPostgresShiftRepository(e.db).List(cmd.Context(), shift.Filter{
			VenueID: venueID,
			From:    m.First(),
			To:      m.Last(),
		})
		if err != nil {
			return fmt.Errorf("list shifts: %w", err)
		}

		data, err := export.NewXLSX().Export(v, m, shifts)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return err
		}
		e.logger.Info("schedule exported",
			zap.String("venue", v.Name),
			zap.String("month", m.String()),
			zap.Int("shifts", len(shifts)),
			zap.String("file", out),
		)
		return nil
	},
}

func init() {
	f := exportScheduleCmd.Flags()
	f.StringVar(&exportVenue, "venue", "", "venue id")
	f.StringVar(&exportMonth, "month", "", "month as YYYY-MM")
	f.StringVar(&exportOut, "out", "", "output file (default schedule-<month>.xlsx)")
	_ = exportScheduleCmd.MarkFlagRequired("venue")
	_ = exportScheduleCmd.MarkFlagRequired("month")
}
