package calendar

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aldoetobex/council-case-backend/pkg/models"
)

// Source is one meeting collection (marriage meetings, reconciliation
// meetings...). Fetch may return more than the window; the aggregator
// filters again.
type Source interface {
	Kind() models.CaseKind
	Fetch(ctx context.Context, w Window) ([]SourceMeeting, error)
}

// Schedule is the aggregated calendar for one window.
type Schedule struct {
	View     View               `json:"view"`
	Anchor   string             `json:"date"`
	From     string             `json:"from"`
	To       string             `json:"to"`
	Prev     string             `json:"prev"`
	Next     string             `json:"next"`
	Days     map[string][]Event `json:"days"`
	Order    []string           `json:"order"` // dates of the window, ascending
	Grid     [][]GridDay        `json:"grid,omitempty"`
	Total    int                `json:"total"`
	Warnings []string           `json:"warnings,omitempty"`
}

// Events flattens the schedule in display order.
func (s *Schedule) Events() []Event {
	out := make([]Event, 0, s.Total)
	for _, d := range s.Order {
		out = append(out, s.Days[d]...)
	}
	return out
}

// Aggregator merges several sources into one schedule.
type Aggregator struct {
	Sources  []Source
	Log      *zap.Logger
	Location *time.Location
}

func NewAggregator(log *zap.Logger, sources ...Source) *Aggregator {
	return &Aggregator{Sources: sources, Log: log, Location: time.UTC}
}

type fetched struct {
	items []SourceMeeting
	err   error
}

// fetchAll runs every source concurrently. A failing source yields an empty
// slot with its error; the others are unaffected.
func (a *Aggregator) fetchAll(ctx context.Context, w Window) []fetched {
	out := make([]fetched, len(a.Sources))
	var g errgroup.Group
	for i, src := range a.Sources {
		g.Go(func() error {
			items, err := src.Fetch(ctx, w)
			if err != nil {
				out[i] = fetched{err: err}
				return nil
			}
			out[i] = fetched{items: items}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Build fetches, normalizes, filters and groups the meetings of the window
// around anchor.
func (a *Aggregator) Build(ctx context.Context, view View, anchor time.Time) *Schedule {
	log := a.Log
	if log == nil {
		log = zap.NewNop()
	}
	loc := a.Location
	if loc == nil {
		loc = time.UTC
	}
	anchor = anchor.In(loc)
	w := NewWindow(view, anchor)

	s := &Schedule{
		View:   w.View,
		Anchor: w.Anchor.Format(models.DateLayout),
		From:   w.From(),
		To:     w.To(),
		Prev:   w.Prev().Anchor.Format(models.DateLayout),
		Next:   w.Next().Anchor.Format(models.DateLayout),
		Days:   map[string][]Event{},
		Order:  w.Days(),
	}
	if w.View == ViewMonth {
		s.Prev = w.Prev().From()
		s.Next = w.Next().From()
	}

	for i, res := range a.fetchAll(ctx, w) {
		kind := a.Sources[i].Kind()
		if res.err != nil {
			log.Warn("schedule source failed", zap.String("source", string(kind)), zap.Error(res.err))
			s.Warnings = append(s.Warnings, fmt.Sprintf("%s meetings unavailable", kind))
			continue
		}
		dropped := 0
		for _, m := range res.items {
			ev, ok := Normalize(kind, m, loc)
			if !ok || !w.Contains(ev.Date) {
				dropped++
				continue
			}
			if w.View == ViewWeek {
				l := WeekLayout(ev)
				ev.Layout = &l
			}
			s.Days[ev.Date] = append(s.Days[ev.Date], ev)
			s.Total++
		}
		if dropped > 0 {
			log.Debug("schedule events dropped", zap.String("source", string(kind)), zap.Int("count", dropped))
		}
	}

	if w.View == ViewMonth {
		s.Grid = MonthGrid(w.Anchor)
		for _, row := range s.Grid {
			for j := range row {
				row[j].Count = len(s.Days[row[j].Date])
			}
		}
	}
	return s
}
