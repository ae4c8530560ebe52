// Package workflow holds the case status machine shared by every case kind.
//
// One table maps a status to the actions it allows and the badge it renders
// with; the predicates below only refine that table where the decision also
// depends on the assigned shaykh.
package workflow

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aldoetobex/council-case-backend/pkg/models"
)

// Action is a user-facing operation on a case.
type Action string

const (
	ActionAssign          Action = "assign"
	ActionScheduleMeeting Action = "schedule-meeting"
	ActionUpdateMeeting   Action = "update-meeting"
	ActionAddNotes        Action = "add-notes"
	ActionComplete        Action = "complete"
	ActionCancel          Action = "cancel"
	ActionFeedback        Action = "feedback"
)

// AllActions lists actions in the order the portals render their buttons.
var AllActions = []Action{
	ActionAssign, ActionScheduleMeeting, ActionUpdateMeeting,
	ActionAddNotes, ActionComplete, ActionCancel, ActionFeedback,
}

var (
	ErrNotLoaded         = errors.New("case not loaded")
	ErrTerminal          = errors.New("case is already closed")
	ErrAssignNotAllowed  = errors.New("a shaykh cannot be assigned in the current status")
	ErrMeetingNotAllowed = errors.New("meetings can only be scheduled on an active, assigned case")
	ErrOutcomeRequired   = errors.New("outcome must be resolved or unresolved")
	ErrReasonRequired    = errors.New("cancellation reason is required")
	ErrNoShaykh          = errors.New("shaykh id is required")
)

// Rule is one row of the transition table.
type Rule struct {
	Actions []Action
	Badge   Badge
}

func (r Rule) allows(a Action) bool {
	for _, x := range r.Actions {
		if x == a {
			return true
		}
	}
	return false
}

var active = []Action{
	ActionAssign, ActionScheduleMeeting, ActionUpdateMeeting,
	ActionAddNotes, ActionComplete, ActionCancel, ActionFeedback,
}

var closed = []Action{ActionAddNotes, ActionFeedback}

var table = map[models.CaseStatus]Rule{
	models.CasePending: {
		Actions: []Action{ActionAssign, ActionAddNotes, ActionComplete, ActionCancel, ActionFeedback},
		Badge:   statusBadges[models.CasePending],
	},
	models.CaseAssigned:   {Actions: active, Badge: statusBadges[models.CaseAssigned]},
	models.CaseInProgress: {Actions: active, Badge: statusBadges[models.CaseInProgress]},
	models.CaseResolved:   {Actions: closed, Badge: statusBadges[models.CaseResolved]},
	models.CaseUnresolved: {Actions: closed, Badge: statusBadges[models.CaseUnresolved]},
	models.CaseCancelled:  {Actions: closed, Badge: statusBadges[models.CaseCancelled]},
}

// RuleFor returns the table row of a status. Unknown statuses allow nothing
// and render the neutral badge.
func RuleFor(s models.CaseStatus) Rule {
	if r, ok := table[s]; ok {
		return r
	}
	return Rule{Badge: neutralBadge(string(s))}
}

/* ============================== Predicates ============================== */

// CanAssignShaykh: never on a closed case, and once past pending only while
// nobody is assigned yet.
func CanAssignShaykh(c *models.Case) bool {
	if c == nil || !RuleFor(c.Status).allows(ActionAssign) {
		return false
	}
	if c.Status != models.CasePending && c.AssignedShaykhID != nil {
		return false
	}
	return true
}

func CanComplete(c *models.Case) bool {
	return c != nil && RuleFor(c.Status).allows(ActionComplete)
}

func CanCancel(c *models.Case) bool {
	return c != nil && RuleFor(c.Status).allows(ActionCancel)
}

// CanAddMeeting is true once the case has left pending and is still open.
func CanAddMeeting(c *models.Case) bool {
	return c != nil && RuleFor(c.Status).allows(ActionScheduleMeeting)
}

func CanUpdateMeeting(c *models.Case) bool {
	return c != nil && RuleFor(c.Status).allows(ActionUpdateMeeting)
}

func CanAddNotes(c *models.Case) bool {
	return c != nil && RuleFor(c.Status).allows(ActionAddNotes)
}

func CanLeaveFeedback(c *models.Case) bool {
	return c != nil && RuleFor(c.Status).allows(ActionFeedback)
}

// Permissions is what the portals use to enable their action buttons.
func Permissions(c *models.Case) map[Action]bool {
	out := make(map[Action]bool, len(AllActions))
	for _, a := range AllActions {
		out[a] = false
	}
	if c == nil {
		return out
	}
	out[ActionAssign] = CanAssignShaykh(c)
	out[ActionScheduleMeeting] = CanAddMeeting(c)
	out[ActionUpdateMeeting] = CanUpdateMeeting(c)
	out[ActionAddNotes] = CanAddNotes(c)
	out[ActionComplete] = CanComplete(c)
	out[ActionCancel] = CanCancel(c)
	out[ActionFeedback] = CanLeaveFeedback(c)
	return out
}

/* ============================== Transitions ============================= */

// Assign sets the shaykh. A pending case becomes assigned; later statuses
// keep their value.
func Assign(c *models.Case, shaykhID uuid.UUID, now time.Time) error {
	if c == nil {
		return ErrNotLoaded
	}
	if shaykhID == uuid.Nil {
		return ErrNoShaykh
	}
	if c.Status.Terminal() {
		return ErrTerminal
	}
	if !CanAssignShaykh(c) {
		return ErrAssignNotAllowed
	}
	id := shaykhID
	c.AssignedShaykhID = &id
	c.AssignedShaykh = nil
	c.AssignedAt = &now
	if c.Status == models.CasePending {
		c.Status = models.CaseAssigned
	}
	return nil
}

// ParseOutcome accepts the two closing outcomes.
func ParseOutcome(s string) (models.CaseStatus, error) {
	switch models.CaseStatus(strings.ToLower(strings.TrimSpace(s))) {
	case models.CaseResolved:
		return models.CaseResolved, nil
	case models.CaseUnresolved:
		return models.CaseUnresolved, nil
	}
	return "", ErrOutcomeRequired
}

// Complete closes the case with the selected outcome.
func Complete(c *models.Case, outcome, details string, now time.Time) error {
	if c == nil {
		return ErrNotLoaded
	}
	if !CanComplete(c) {
		return ErrTerminal
	}
	st, err := ParseOutcome(outcome)
	if err != nil {
		return err
	}
	c.Status = st
	c.Outcome = string(st)
	c.OutcomeDetails = strings.TrimSpace(details)
	c.CompletedAt = &now
	return nil
}

// Cancel closes the case; a free-text reason is mandatory.
func Cancel(c *models.Case, reason string, now time.Time) error {
	if c == nil {
		return ErrNotLoaded
	}
	if !CanCancel(c) {
		return ErrTerminal
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}
	c.Status = models.CaseCancelled
	c.CancellationReason = reason
	c.CancelledAt = &now
	return nil
}

// MeetingScheduled checks the gate for a new meeting and moves an assigned
// case into progress.
func MeetingScheduled(c *models.Case) error {
	if c == nil {
		return ErrNotLoaded
	}
	if !CanAddMeeting(c) {
		return ErrMeetingNotAllowed
	}
	if c.Status == models.CaseAssigned {
		c.Status = models.CaseInProgress
	}
	return nil
}

// ValidMeetingStatus reports whether s is a known meeting status.
func ValidMeetingStatus(s models.MeetingStatus) bool {
	switch s {
	case models.MeetingScheduled, models.MeetingCompleted, models.MeetingCancelled, models.MeetingRescheduled:
		return true
	}
	return false
}
