package export

import (
	"fmt"
	"math"
	"sort"

	"venue-staff/internal/domain/shift"
	"venue-staff/internal/domain/venue"
	"venue-staff/internal/pkg/calendar"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const summarySheet = "Hours"

var header = []any{"Date", "Day", "Member", "Start", "End", "Hours", "Note"}

// XLSX renders a month of shifts as a workbook: one sheet listing every shift
// in date order and a per-member hours summary.
type XLSX struct{}

func NewXLSX() XLSX { return XLSX{} }

func (XLSX) Export(v venue.Venue, m calendar.Month, shifts []shift.Shift) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := m.String()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	rows := make([]shift.Shift, 0, len(shifts))
	for _, s := range shifts {
		if m.Contains(s.WorkDate) {
			rows = append(rows, s)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.WorkDate.Equal(b.WorkDate) {
			return a.WorkDate.Before(b.WorkDate)
		}
		if a.StartMinute != b.StartMinute {
			return a.StartMinute < b.StartMinute
		}
		return a.MemberName < b.MemberName
	})

	if err := f.SetSheetRow(sheet, "A1", &[]any{v.Name + " " + sheet}); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A3", &header); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "G3", bold); err != nil {
		return nil, err
	}

	type memberTotal struct {
		name    string
		shifts  int
		minutes int
	}
	totals := make(map[uuid.UUID]*memberTotal)
	sum := 0
	r := 4
	for _, s := range rows {
		span := s.Span()
		mins := span.DurationMinutes()
		sum += mins
		t, ok := totals[s.UserID]
		if !ok {
			t = &memberTotal{name: s.MemberName}
			totals[s.UserID] = t
		}
		t.shifts++
		t.minutes += mins

		cell, _ := excelize.CoordinatesToCellName(1, r)
		end := calendar.FormatClock(s.EndMinute)
		if span.Overnight() {
			end += " (+1)"
		}
		row := []any{
			calendar.FormatDate(s.WorkDate),
			s.WorkDate.Weekday().String()[:3],
			s.MemberName,
			calendar.FormatClock(s.StartMinute),
			end,
			hours(mins),
			s.Note,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
		r++
	}

	totalCell, _ := excelize.CoordinatesToCellName(1, r+1)
	if err := f.SetSheetRow(sheet, totalCell, &[]any{"Total", "", fmt.Sprintf("%d shifts", len(rows)), "", "", hours(sum)}); err != nil {
		return nil, err
	}
	lastCell, _ := excelize.CoordinatesToCellName(7, r+1)
	if err := f.SetCellStyle(sheet, totalCell, lastCell, bold); err != nil {
		return nil, err
	}
	for col, width := range map[string]float64{"A": 12, "B": 6, "C": 24, "D": 8, "E": 11, "F": 8, "G": 40} {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(summarySheet, "A1", &[]any{"Member", "Shifts", "Hours"}); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "C1", bold); err != nil {
		return nil, err
	}
	people := make([]*memberTotal, 0, len(totals))
	for _, t := range totals {
		people = append(people, t)
	}
	sort.Slice(people, func(i, j int) bool { return people[i].name < people[j].name })
	for i, t := range people {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(summarySheet, cell, &[]any{t.name, t.shifts, hours(t.minutes)}); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 24); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func hours(minutes int) float64 {
	return math.Round(float64(minutes)/60*100) / 100
}
