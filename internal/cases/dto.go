package cases

import (
	"time"

	"github.com/google/uuid"

	"github.com/aldoetobex/council-case-backend/pkg/models"
	"github.com/aldoetobex/council-case-backend/pkg/workflow"
)

// ===== Requests =====

type PartyInput struct {
	Role  models.PartyRole `json:"role" validate:"required,oneof=husband wife groom bride wali witness asker"`
	Name  string           `json:"name" validate:"required,min=2,max=80"`
	Phone string           `json:"phone" validate:"omitempty,phone"`
	Email string           `json:"email" validate:"omitempty,email,max=120"`
}

type CreateCaseRequest struct {
	Parties          []PartyInput    `json:"parties" validate:"max=3,dive"`
	IssueDescription string          `json:"issueDescription" validate:"max=5000"`
	AdditionalInfo   string          `json:"additionalInformation" validate:"max=5000"`
	Question         string          `json:"question" validate:"max=5000"`
	Category         string          `json:"category" validate:"max=60"`
	PreferredDate    string          `json:"preferredDate" validate:"omitempty,isodate"`
	Priority         models.Priority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
}

type AssignRequest struct {
	ShaykhID string          `json:"shaykhId" validate:"required,uuid"`
	Priority models.Priority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
}

type CompleteRequest struct {
	Outcome        string `json:"outcome"`
	OutcomeDetails string `json:"outcomeDetails" validate:"max=5000"`
	Answer         string `json:"answer" validate:"max=20000"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"max=2000"`
}

type NotesRequest struct {
	Notes string `json:"notes" validate:"max=10000"`
}

type FeedbackRequest struct {
	Comment string `json:"comment" validate:"required,max=2000"`
	Rating  int    `json:"rating" validate:"gte=0,lte=5"`
}

type MeetingRequest struct {
	Date     string `json:"date" validate:"required,isodate"`
	Time     string `json:"time" validate:"omitempty,hhmm"`
	Location string `json:"location" validate:"max=200"`
	Notes    string `json:"notes" validate:"max=5000"`
}

// UpdateMeetingRequest is partial: nil fields are left untouched.
type UpdateMeetingRequest struct {
	Date     *string `json:"date" validate:"omitempty,isodate"`
	Time     *string `json:"time" validate:"omitempty,hhmm"`
	Location *string `json:"location" validate:"omitempty,max=200"`
	Notes    *string `json:"notes" validate:"omitempty,max=5000"`
	Status   *string `json:"status" validate:"omitempty,oneof=scheduled completed cancelled rescheduled"`
}

// ===== Responses =====

type CaseListItem struct {
	ID             uuid.UUID         `json:"id"`
	ShortID        string            `json:"shortId"`
	ReferenceNo    string            `json:"referenceNo"`
	Kind           models.CaseKind   `json:"kind"`
	Status         models.CaseStatus `json:"status"`
	Badge          workflow.Badge    `json:"badge"`
	Priority       models.Priority   `json:"priority"`
	PriorityBadge  workflow.Badge    `json:"priorityBadge"`
	Parties        []string          `json:"parties"`
	AssignedShaykh string            `json:"assignedShaykh,omitempty"`
	Preview        string            `json:"preview"`
	Meetings       int               `json:"meetings"`
	CreatedAt      time.Time         `json:"createdAt"`
}

type CaseDetail struct {
	*models.Case
	ShortID       string                   `json:"shortId"`
	Badge         workflow.Badge           `json:"badge"`
	PriorityBadge workflow.Badge           `json:"priorityBadge"`
	Permissions   map[workflow.Action]bool `json:"permissions"`
	Upcoming      []models.Meeting         `json:"upcoming"`
	Past          []models.Meeting         `json:"past"`
	History       []models.CaseHistory     `json:"history,omitempty"`
}
