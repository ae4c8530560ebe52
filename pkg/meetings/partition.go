// Package meetings splits a case's meetings into the upcoming and past lists
// shown on the case detail pages.
package meetings

import (
	"sort"
	"strings"
	"time"

	"github.com/aldoetobex/council-case-backend/pkg/models"
)

// StartsAt resolves the meeting's date and optional time in loc.
// ok is false when the date is missing or malformed.
func StartsAt(m models.Meeting, loc *time.Location) (t time.Time, ok bool) {
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation(models.DateLayout, strings.TrimSpace(m.Date), loc)
	if err != nil {
		return time.Time{}, false
	}
	if tm, err := time.Parse(models.TimeLayout, strings.TrimSpace(m.Time)); err == nil {
		d = d.Add(time.Duration(tm.Hour())*time.Hour + time.Duration(tm.Minute())*time.Minute)
	}
	return d, true
}

// IsUpcoming: still scheduled and not yet started.
func IsUpcoming(m models.Meeting, now time.Time) bool {
	if m.Status != models.MeetingScheduled {
		return false
	}
	at, ok := StartsAt(m, now.Location())
	return ok && !at.Before(now)
}

// Partition returns upcoming meetings ascending and everything else
// descending by start time. Equal start times keep their input order.
func Partition(list []models.Meeting, now time.Time) (upcoming, past []models.Meeting) {
	upcoming = make([]models.Meeting, 0, len(list))
	past = make([]models.Meeting, 0, len(list))
	for _, m := range list {
		if IsUpcoming(m, now) {
			upcoming = append(upcoming, m)
		} else {
			past = append(past, m)
		}
	}

	key := func(m models.Meeting) time.Time {
		at, _ := StartsAt(m, now.Location())
		return at
	}
	sort.SliceStable(upcoming, func(i, j int) bool { return key(upcoming[i]).Before(key(upcoming[j])) })
	sort.SliceStable(past, func(i, j int) bool { return key(past[i]).After(key(past[j])) })
	return upcoming, past
}
