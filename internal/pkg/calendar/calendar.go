// Package calendar holds the date arithmetic used by scheduling: months,
// week grids, wall-clock minutes and shifts that run past midnight.
package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"

	MinutesPerDay = 24 * 60
)

var (
	ErrInvalidMonth = errors.New("invalid month")
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidClock = errors.New("invalid clock time")
)

// Month is a calendar month independent of any time zone.
type Month struct {
	Year  int
	Month time.Month
}

func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(s))
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// First returns midnight UTC of the first day.
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (m Month) Last() time.Time {
	return m.Next().First().AddDate(0, 0, -1)
}

func (m Month) Days() int {
	return m.Last().Day()
}

func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

func (m Month) Prev() Month {
	if m.Month == time.January {
		return Month{Year: m.Year - 1, Month: time.December}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}

func (m Month) Contains(date time.Time) bool {
	return date.Year() == m.Year && date.Month() == m.Month
}

func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// ParseDate parses YYYY-MM-DD into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateIn returns the wall-clock date of t in loc as midnight UTC.
func DateIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseClock parses HH:MM into minutes after midnight.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	h, m, ok := strings.Cut(s, ":")
	if !ok || len(m) != 2 || len(h) == 0 || len(h) > 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	hh, err := strconv.Atoi(h)
	if err != nil || hh < 0 || hh > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	mm, err := strconv.Atoi(m)
	if err != nil || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return hh*60 + mm, nil
}

func FormatClock(minute int) string {
	minute = ((minute % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// Span is a shift on a work date. End <= Start means it ends the next day.
type Span struct {
	Date  time.Time
	Start int
	End   int
}

func (s Span) Overnight() bool {
	return s.End <= s.Start
}

func (s Span) DurationMinutes() int {
	return ((s.End-s.Start)%MinutesPerDay + MinutesPerDay) % MinutesPerDay
}

// Bounds returns the absolute start and end in minutes since the Unix epoch.
func (s Span) Bounds() (int64, int64) {
	day := s.Date.Unix() / 86400
	start := day*MinutesPerDay + int64(s.Start)
	return start, start + int64(s.DurationMinutes())
}

func (s Span) Overlaps(o Span) bool {
	as, ae := s.Bounds()
	bs, be := o.Bounds()
	return as < be && bs < ae
}

// GridDay is one cell of a month view.
type GridDay struct {
	Date    time.Time
	InMonth bool
}

// Grid lays out m as full weeks starting on weekStart, padded with days from
// the neighbouring months.
func Grid(m Month, weekStart time.Weekday) [][7]GridDay {
	first := m.First()
	lead := (int(first.Weekday()) - int(weekStart) + 7) % 7
	cursor := first.AddDate(0, 0, -lead)

	cells := lead + m.Days()
	weeks := (cells + 6) / 7

	out := make([][7]GridDay, weeks)
	for w := 0; w < weeks; w++ {
		for d := 0; d < 7; d++ {
			out[w][d] = GridDay{Date: cursor, InMonth: m.Contains(cursor)}
			cursor = cursor.AddDate(0, 0, 1)
		}
	}
	return out
}

// GridBounds returns the first and last dates shown by Grid.
func GridBounds(m Month, weekStart time.Weekday) (time.Time, time.Time) {
	g := Grid(m, weekStart)
	return g[0][0].Date, g[len(g)-1][6].Date
}
