package calendar

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aldoetobex/council-case-backend/pkg/models"
	"github.com/aldoetobex/council-case-backend/pkg/workflow"
)

// SourceMeeting is a meeting as delivered by one case collection, flattened
// with the parent case fields the calendar needs.
type SourceMeeting struct {
	ID          uuid.UUID            `json:"id"`
	CaseID      uuid.UUID            `json:"caseId"`
	ReferenceNo string               `json:"referenceNo"`
	CaseStatus  models.CaseStatus    `json:"caseStatus"`
	Date        string               `json:"date"`
	Time        string               `json:"time"`
	Location    string               `json:"location"`
	Notes       string               `json:"notes"`
	Status      models.MeetingStatus `json:"status"`
	PartyA      string               `json:"partyA"` // husband / groom
	PartyB      string               `json:"partyB"` // wife / bride
	ShaykhName  string               `json:"shaykhName,omitempty"`
}

// Event is the common shape every source is normalized into.
type Event struct {
	ID            uuid.UUID            `json:"id"`
	ParentID      uuid.UUID            `json:"parentId"`
	ShortParentID string               `json:"shortParentId"`
	Source        models.CaseKind      `json:"type"`
	Title         string               `json:"title"`
	Date          string               `json:"date"`
	Time          string               `json:"time"`
	StartsAt      time.Time            `json:"startsAt"`
	Location      string               `json:"location"`
	Notes         string               `json:"notes,omitempty"`
	Status        models.MeetingStatus `json:"status"`
	Badge         workflow.Badge       `json:"badge"`
	Shaykh        string               `json:"shaykh,omitempty"`
	Layout        *Layout              `json:"layout,omitempty"`
}

// DefaultTime is used when a meeting has no (valid) time of day.
var DefaultTime = map[models.CaseKind]string{
	models.KindMarriage:       "09:00",
	models.KindReconciliation: "10:00",
}

func defaultTime(kind models.CaseKind) string {
	if t, ok := DefaultTime[kind]; ok {
		return t
	}
	return "09:00"
}

var titlePrefix = map[models.CaseKind]string{
	models.KindMarriage:       "Marriage",
	models.KindReconciliation: "Reconciliation",
	models.KindFatwa:          "Fatwa",
}

func title(kind models.CaseKind, m SourceMeeting) string {
	prefix, ok := titlePrefix[kind]
	if !ok {
		prefix = "Meeting"
	}
	a, b := strings.TrimSpace(m.PartyA), strings.TrimSpace(m.PartyB)
	switch {
	case a != "" && b != "":
		return prefix + ": " + a + " & " + b
	case a != "" || b != "":
		return prefix + ": " + a + b
	case m.ReferenceNo != "":
		return prefix + " " + m.ReferenceNo
	}
	return prefix + " " + models.ShortID(m.CaseID)
}

// Normalize turns a source meeting into an Event in loc. Meetings without a
// usable date are dropped (ok=false).
func Normalize(kind models.CaseKind, m SourceMeeting, loc *time.Location) (Event, bool) {
	if loc == nil {
		loc = time.UTC
	}
	date := strings.TrimSpace(m.Date)
	// Stored dates sometimes carry a time suffix (2024-06-10T00:00:00Z).
	if len(date) > len(models.DateLayout) {
		date = date[:len(models.DateLayout)]
	}
	day, err := time.ParseInLocation(models.DateLayout, date, loc)
	if err != nil {
		return Event{}, false
	}

	hhmm := strings.TrimSpace(m.Time)
	tod, err := time.Parse(models.TimeLayout, hhmm)
	if err != nil {
		hhmm = defaultTime(kind)
		tod, _ = time.Parse(models.TimeLayout, hhmm)
	}
	starts := day.Add(time.Duration(tod.Hour())*time.Hour + time.Duration(tod.Minute())*time.Minute)

	status := m.Status
	if status == "" {
		status = models.MeetingScheduled
	}

	return Event{
		ID:            m.ID,
		ParentID:      m.CaseID,
		ShortParentID: models.ShortID(m.CaseID),
		Source:        kind,
		Title:         title(kind, m),
		Date:          date,
		Time:          hhmm,
		StartsAt:      starts,
		Location:      m.Location,
		Notes:         m.Notes,
		Status:        status,
		Badge:         workflow.MeetingBadge(status),
		Shaykh:        m.ShaykhName,
	}, true
}
