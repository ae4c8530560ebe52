// Package calendar builds the month and week schedule views from the meeting
// collections of several case kinds.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/aldoetobex/council-case-backend/pkg/models"
)

// View is the calendar granularity.
type View string

const (
	ViewMonth View = "month"
	ViewWeek  View = "week"
)

// ParseView defaults to month.
func ParseView(s string) (View, error) {
	switch View(strings.ToLower(strings.TrimSpace(s))) {
	case "", ViewMonth:
		return ViewMonth, nil
	case ViewWeek:
		return ViewWeek, nil
	}
	return "", fmt.Errorf("unknown calendar view %q", s)
}

// Window is an inclusive range of calendar days.
type Window struct {
	View   View      `json:"view"`
	Anchor time.Time `json:"-"`
	Start  time.Time `json:"-"`
	End    time.Time `json:"-"` // last day, inclusive
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MonthWindow covers the month containing d.
func MonthWindow(d time.Time) Window {
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
	return Window{View: ViewMonth, Anchor: dateOnly(d), Start: first, End: first.AddDate(0, 1, -1)}
}

// WeekWindow covers Sunday..Saturday around d.
func WeekWindow(d time.Time) Window {
	d = dateOnly(d)
	start := d.AddDate(0, 0, -int(d.Weekday()))
	return Window{View: ViewWeek, Anchor: d, Start: start, End: start.AddDate(0, 0, 6)}
}

// NewWindow picks the window for a view.
func NewWindow(v View, d time.Time) Window {
	if v == ViewWeek {
		return WeekWindow(d)
	}
	return MonthWindow(d)
}

func (w Window) From() string { return w.Start.Format(models.DateLayout) }
func (w Window) To() string   { return w.End.Format(models.DateLayout) }

// Contains compares ISO date strings, which order lexically.
func (w Window) Contains(date string) bool {
	return date >= w.From() && date <= w.To()
}

// Days lists every date of the window.
func (w Window) Days() []string {
	var out []string
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(models.DateLayout))
	}
	return out
}

// Prev and Next move by one view unit.
func (w Window) Prev() Window {
	if w.View == ViewWeek {
		return WeekWindow(w.Anchor.AddDate(0, 0, -7))
	}
	return MonthWindow(w.Start.AddDate(0, -1, 0))
}

func (w Window) Next() Window {
	if w.View == ViewWeek {
		return WeekWindow(w.Anchor.AddDate(0, 0, 7))
	}
	return MonthWindow(w.Start.AddDate(0, 1, 0))
}

// GridDay is one cell of the month grid.
type GridDay struct {
	Date    string `json:"date"`
	Day     int    `json:"day"`
	InMonth bool   `json:"inMonth"`
	Count   int    `json:"count"`
}

// MonthGrid returns Sunday-first rows covering the whole month of d, padded
// with days of the neighbouring months.
func MonthGrid(d time.Time) [][]GridDay {
	w := MonthWindow(d)
	start := w.Start.AddDate(0, 0, -int(w.Start.Weekday()))
	end := w.End.AddDate(0, 0, 6-int(w.End.Weekday()))

	var rows [][]GridDay
	var row []GridDay
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		row = append(row, GridDay{
			Date:    day.Format(models.DateLayout),
			Day:     day.Day(),
			InMonth: day.Month() == w.Start.Month(),
		})
		if len(row) == 7 {
			rows = append(rows, row)
			row = nil
		}
	}
	return rows
}
