package usecase

import (
	"strings"
	"time"
	"unicode/utf8"

	"venue-staff/internal/pkg/calendar"
)

const (
	MaxShiftMinutes     = 14 * 60
	maxShiftNoteLen     = 200
	maxEntriesPerSubmit = 31
)

// Entry problems reported by shift previews.
const (
	ProblemInvalidDate      = "invalid_date"
	ProblemOutsideMonth     = "outside_month"
	ProblemInPast           = "in_past"
	ProblemInvalidTime      = "invalid_time"
	ProblemZeroLength       = "zero_length"
	ProblemTooLong          = "too_long"
	ProblemNoteTooLong      = "note_too_long"
	ProblemDuplicateDate    = "duplicate_date"
	ProblemOverlapsEntry    = "overlaps_entry"
	ProblemOverlapsExisting = "overlaps_existing"
)

type ShiftEntryInput struct {
	Date  string
	Start string
	End   string
	Note  string
}

// ShiftEntry is one normalised wizard row. Date/Start/End are zero when they
// could not be parsed; Problems is empty when the row is acceptable.
type ShiftEntry struct {
	Date            time.Time
	StartMinute     int
	EndMinute       int
	Note            string
	DurationMinutes int
	Overnight       bool
	Problems        []string
}

func (e ShiftEntry) Span() calendar.Span {
	return calendar.Span{Date: e.Date, Start: e.StartMinute, End: e.EndMinute}
}

type ShiftPreview struct {
	Month        calendar.Month
	Entries      []ShiftEntry
	TotalMinutes int
	Valid        bool
}

// InvalidEntriesError carries the full preview so callers can show every
// problem at once.
type InvalidEntriesError struct {
	Preview ShiftPreview
}

func (e *InvalidEntriesError) Error() string {
	return ErrInvalidShiftEntries.Error()
}

func (e *InvalidEntriesError) Unwrap() error {
	return ErrInvalidShiftEntries
}

// parseShiftTimes checks a single row without context: parseable, non-zero
// and at most MaxShiftMinutes long.
func parseShiftTimes(in ShiftEntryInput) (ShiftEntry, bool) {
	var e ShiftEntry
	dateOK, timeOK := true, true

	d, err := calendar.ParseDate(in.Date)
	if err != nil {
		e.Problems = append(e.Problems, ProblemInvalidDate)
		dateOK = false
	}
	e.Date = d

	start, errStart := calendar.ParseClock(in.Start)
	end, errEnd := calendar.ParseClock(in.End)
	if errStart != nil || errEnd != nil {
		e.Problems = append(e.Problems, ProblemInvalidTime)
		timeOK = false
	} else {
		e.StartMinute, e.EndMinute = start, end
		span := e.Span()
		e.Overnight = span.Overnight()
		e.DurationMinutes = span.DurationMinutes()
		switch {
		case start == end:
			e.Problems = append(e.Problems, ProblemZeroLength)
			e.Overnight = false
			e.DurationMinutes = 0
			timeOK = false
		case e.DurationMinutes > MaxShiftMinutes:
			e.Problems = append(e.Problems, ProblemTooLong)
		}
	}

	e.Note = strings.TrimSpace(in.Note)
	if utf8.RuneCountInString(e.Note) > maxShiftNoteLen {
		e.Problems = append(e.Problems, ProblemNoteTooLong)
	}
	return e, dateOK && timeOK
}

// buildPreview validates a wizard submission for month. today is the current
// date in the venue's zone; existing are the member's pending/approved
// requests and shifts around the month.
func buildPreview(m calendar.Month, today time.Time, inputs []ShiftEntryInput, existing []calendar.Span) ShiftPreview {
	p := ShiftPreview{Month: m, Entries: make([]ShiftEntry, len(inputs))}
	usable := make([]bool, len(inputs))
	seen := make(map[time.Time]struct{}, len(inputs))

	for i, in := range inputs {
		e, ok := parseShiftTimes(in)
		if !e.Date.IsZero() {
			if !m.Contains(e.Date) {
				e.Problems = append(e.Problems, ProblemOutsideMonth)
			}
			if e.Date.Before(today) {
				e.Problems = append(e.Problems, ProblemInPast)
			}
			if _, dup := seen[e.Date]; dup {
				e.Problems = append(e.Problems, ProblemDuplicateDate)
			} else {
				seen[e.Date] = struct{}{}
			}
		}
		p.Entries[i] = e
		usable[i] = ok
	}

	for i := range p.Entries {
		if !usable[i] {
			continue
		}
		a := p.Entries[i].Span()
		for j := range p.Entries {
			if i == j || !usable[j] || p.Entries[i].Date.Equal(p.Entries[j].Date) {
				continue
			}
			if a.Overlaps(p.Entries[j].Span()) {
				p.Entries[i].Problems = append(p.Entries[i].Problems, ProblemOverlapsEntry)
				break
			}
		}
		for _, s := range existing {
			if a.Overlaps(s) {
				p.Entries[i].Problems = append(p.Entries[i].Problems, ProblemOverlapsExisting)
				break
			}
		}
	}

	p.Valid = len(p.Entries) > 0
	for _, e := range p.Entries {
		p.TotalMinutes += e.DurationMinutes
		if len(e.Problems) > 0 {
			p.Valid = false
		}
	}
	return p
}

// checkShiftTimes applies the row rules to a single manager-entered shift.
func checkShiftTimes(in ShiftEntryInput) (ShiftEntry, error) {
	e, ok := parseShiftTimes(in)
	if !ok || len(e.Problems) > 0 {
		return ShiftEntry{}, &InvalidEntriesError{Preview: ShiftPreview{
			Month:   calendar.MonthOf(e.Date),
			Entries: []ShiftEntry{e},
		}}
	}
	return e, nil
}
