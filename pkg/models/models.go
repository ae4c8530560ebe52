package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =============================== Enums ================================== */

// Role defines the type of user in the system.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleShaykh Role = "shaykh"
	RoleUser   Role = "user"
)

// CaseKind tells the three council workflows apart.
type CaseKind string

const (
	KindReconciliation CaseKind = "reconciliation"
	KindMarriage       CaseKind = "marriage"
	KindFatwa          CaseKind = "fatwa"
)

// Valid reports whether k is one of the known kinds.
func (k CaseKind) Valid() bool {
	switch k {
	case KindReconciliation, KindMarriage, KindFatwa:
		return true
	}
	return false
}

// CaseStatus defines lifecycle states for a case.
type CaseStatus string

const (
	CasePending    CaseStatus = "pending"
	CaseAssigned   CaseStatus = "assigned"
	CaseInProgress CaseStatus = "in-progress"
	CaseResolved   CaseStatus = "resolved"
	CaseUnresolved CaseStatus = "unresolved"
	CaseCancelled  CaseStatus = "cancelled"
)

// AllCaseStatuses lists statuses in workflow order.
var AllCaseStatuses = []CaseStatus{
	CasePending, CaseAssigned, CaseInProgress, CaseResolved, CaseUnresolved, CaseCancelled,
}

// Terminal reports whether no further workflow action is possible.
func (s CaseStatus) Terminal() bool {
	return s == CaseResolved || s == CaseUnresolved || s == CaseCancelled
}

// MeetingStatus defines lifecycle states for a meeting.
type MeetingStatus string

const (
	MeetingScheduled   MeetingStatus = "scheduled"
	MeetingCompleted   MeetingStatus = "completed"
	MeetingCancelled   MeetingStatus = "cancelled"
	MeetingRescheduled MeetingStatus = "rescheduled"
)

// Priority is an optional triage hint set by admins.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// PartyRole names the position of a person in a case.
type PartyRole string

const (
	PartyHusband PartyRole = "husband"
	PartyWife    PartyRole = "wife"
	PartyGroom   PartyRole = "groom"
	PartyBride   PartyRole = "bride"
	PartyWali    PartyRole = "wali"
	PartyWitness PartyRole = "witness"
	PartyAsker   PartyRole = "asker"
)

// Date and time layouts used by meetings on the wire and in storage.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

/* =============================== Entities =============================== */

// User represents an admin, a shaykh or an end user.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         Role      `gorm:"type:varchar(20);not null;index" json:"role"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	Active       bool      `gorm:"default:true" json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Case is a reconciliation, marriage or fatwa request.
type Case struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Kind        CaseKind   `gorm:"type:varchar(20);not null;index" json:"kind"`
	ReferenceNo string     `gorm:"uniqueIndex;not null" json:"referenceNo"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	Status      CaseStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Priority    Priority   `gorm:"type:varchar(10);default:'medium'" json:"priority"`

	AssignedShaykhID *uuid.UUID `gorm:"type:uuid;index" json:"assignedShaykhId,omitempty"`
	AssignedShaykh   *User      `gorm:"foreignKey:AssignedShaykhID" json:"assignedShaykh,omitempty"`
	User             *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`

	IssueDescription   string `gorm:"type:text" json:"issueDescription"`
	AdditionalInfo     string `gorm:"type:text" json:"additionalInformation"`
	ShaykhNotes        string `gorm:"type:text" json:"shaykhNotes"`
	AdminNotes         string `gorm:"type:text" json:"adminNotes,omitempty"`
	Outcome            string `gorm:"type:varchar(20)" json:"outcome,omitempty"`
	OutcomeDetails     string `gorm:"type:text" json:"outcomeDetails,omitempty"`
	CancellationReason string `gorm:"type:text" json:"cancellationReason,omitempty"`

	// Fatwa
	Question string `gorm:"type:text" json:"question,omitempty"`
	Answer   string `gorm:"type:text" json:"answer,omitempty"`
	Category string `gorm:"type:varchar(60)" json:"category,omitempty"`

	// Marriage
	PreferredDate string `gorm:"type:varchar(10)" json:"preferredDate,omitempty"`

	Parties  []Party    `gorm:"constraint:OnDelete:CASCADE" json:"parties"`
	Meetings []Meeting  `gorm:"constraint:OnDelete:CASCADE" json:"meetings"`
	Feedback []Feedback `gorm:"constraint:OnDelete:CASCADE" json:"feedback"`

	AssignedAt  *time.Time `json:"assignedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// referencePrefix is the human prefix of a case reference number.
var referencePrefix = map[CaseKind]string{
	KindReconciliation: "REC",
	KindMarriage:       "MAR",
	KindFatwa:          "FTW",
}

func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = CasePending
	}
	if c.Priority == "" {
		c.Priority = PriorityMedium
	}
	if c.ReferenceNo == "" {
		c.ReferenceNo = referencePrefix[c.Kind] + "-" + ShortID(c.ID)
	}
	return nil
}

// Party returns the first party with the given role, or nil.
func (c *Case) Party(role PartyRole) *Party {
	for i := range c.Parties {
		if c.Parties[i].Role == role {
			return &c.Parties[i]
		}
	}
	return nil
}

// IsAssignedTo reports whether the case is assigned to the given shaykh.
func (c *Case) IsAssignedTo(userID uuid.UUID) bool {
	return c.AssignedShaykhID != nil && *c.AssignedShaykhID == userID
}

// Party is a person named on a case (spouses, wali, asker...).
type Party struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CaseID uuid.UUID `gorm:"type:uuid;not null;index" json:"caseId"`
	Role   PartyRole `gorm:"type:varchar(20);not null" json:"role"`
	Name   string    `gorm:"not null" json:"name"`
	Phone  string    `json:"phone,omitempty"`
	Email  string    `json:"email,omitempty"`
}

func (p *Party) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Meeting is a scheduled interaction tied to a case.
type Meeting struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	CaseID      uuid.UUID     `gorm:"type:uuid;not null;index" json:"caseId"`
	Date        string        `gorm:"type:varchar(10);index" json:"date"` // YYYY-MM-DD
	Time        string        `gorm:"type:varchar(5)" json:"time"`        // HH:MM, optional
	Location    string        `json:"location"`
	Notes       string        `gorm:"type:text" json:"notes"`
	Status      MeetingStatus `gorm:"type:varchar(20);not null;default:'scheduled'" json:"status"`
	CreatedByID uuid.UUID     `gorm:"type:uuid" json:"createdBy"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`

	Case *Case `gorm:"foreignKey:CaseID" json:"-"`
}

func (m *Meeting) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Status == "" {
		m.Status = MeetingScheduled
	}
	return nil
}

// Feedback is a timestamped comment on a case attributed to a user.
type Feedback struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CaseID    uuid.UUID `gorm:"type:uuid;not null;index" json:"caseId"`
	UserID    uuid.UUID `gorm:"type:uuid;not null" json:"userId"`
	UserName  string    `json:"userName"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	Rating    int       `json:"rating,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// CaseHistory is an audit log entry for important case changes.
type CaseHistory struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CaseID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"caseId"`
	ActorID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"actorId"`
	Action    string     `gorm:"type:varchar(50);not null" json:"action"` // created, assigned, meeting_added, completed, cancelled...
	OldStatus CaseStatus `gorm:"type:varchar(20)" json:"oldStatus"`
	NewStatus CaseStatus `gorm:"type:varchar(20)" json:"newStatus"`
	Reason    string     `gorm:"type:text" json:"reason,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
}

func (h *CaseHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// All returns every entity for AutoMigrate.
func All() []any {
	return []any{
		&User{}, &Case{}, &Party{}, &Meeting{}, &Feedback{}, &CaseHistory{},
	}
}

// ShortID is the display form of an id: first 8 hex chars, upper-cased.
func ShortID(id uuid.UUID) string {
	return strings.ToUpper(id.String()[:8])
}
