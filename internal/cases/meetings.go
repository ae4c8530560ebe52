package cases

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aldoetobex/council-case-backend/internal/auth"
	"github.com/aldoetobex/council-case-backend/pkg/calendar"
	"github.com/aldoetobex/council-case-backend/pkg/models"
	"github.com/aldoetobex/council-case-backend/pkg/sanitize"
	"github.com/aldoetobex/council-case-backend/pkg/validation"
	"github.com/aldoetobex/council-case-backend/pkg/workflow"
)

/* ============================== Mutations =============================== */

// AddMeeting godoc
// @Summary      Schedule a meeting
// @Description  Requires an assigned, open case. The first meeting moves the case to in-progress.
// @Tags         meetings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path string         true "case id (uuid)"
// @Param        payload  body MeetingRequest true "meeting"
// @Success      201  {object}  CaseDetail
// @Failure      409  {object}  models.ErrorResponse
// @Router       /reconciliations/meetings/{id} [post]
func (h *Handler) AddMeeting(c *fiber.Ctx) error {
	var in MeetingRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	actor := auth.MustUserUUID(c)
	m := models.Meeting{
		Date:        in.Date,
		Time:        in.Time,
		Location:    sanitize.Text(in.Location),
		Notes:       sanitize.Text(in.Notes),
		Status:      models.MeetingScheduled,
		CreatedByID: actor,
	}

	return h.mutate(c, fiber.StatusCreated, func(tx *gorm.DB, cs *models.Case) (change, error) {
		if err := workflow.MeetingScheduled(cs); err != nil {
			return change{}, err
		}
		m.CaseID = cs.ID
		if err := tx.Create(&m).Error; err != nil {
			return change{}, err
		}
		return change{action: "meeting_added", reason: strings.TrimSpace(m.Date + " " + m.Time)}, nil
	})
}

// UpdateMeeting godoc
// @Summary      Update a meeting
// @Description  Partial update of date, time, location, notes or status
// @Tags         meetings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id         path string               true "case id (uuid)"
// @Param        meetingId  path string               true "meeting id (uuid)"
// @Param        payload    body UpdateMeetingRequest true "changes"
// @Success      200  {object}  CaseDetail
// @Router       /reconciliations/meetings/{id}/{meetingId} [put]
func (h *Handler) UpdateMeeting(c *fiber.Ctx) error {
	mid, err := uuid.Parse(c.Params("meetingId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid meeting id")
	}
	var in UpdateMeetingRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}

	return h.mutate(c, fiber.StatusOK, func(tx *gorm.DB, cs *models.Case) (change, error) {
		if !workflow.CanUpdateMeeting(cs) {
			return change{}, workflow.ErrMeetingNotAllowed
		}
		var m models.Meeting
		if err := tx.First(&m, "id = ? AND case_id = ?", mid, cs.ID).Error; err != nil {
			return change{}, err
		}
		if in.Date != nil {
			m.Date = *in.Date
		}
		if in.Time != nil {
			m.Time = *in.Time
		}
		if in.Location != nil {
			m.Location = sanitize.Text(*in.Location)
		}
		if in.Notes != nil {
			m.Notes = sanitize.Text(*in.Notes)
		}
		if in.Status != nil {
			m.Status = models.MeetingStatus(*in.Status)
		}
		if err := tx.Omit(clause.Associations).Save(&m).Error; err != nil {
			return change{}, err
		}
		return change{action: "meeting_updated", reason: string(m.Status)}, nil
	})
}

/* ================================ Queries =============================== */

// Scope narrows a meeting query to what one caller may see. The zero value
// sees everything.
type Scope struct {
	ShaykhID *uuid.UUID
	UserID   *uuid.UUID
}

// ScopeFor derives the scope from the authenticated role.
func ScopeFor(c *fiber.Ctx) Scope {
	id := auth.MustUserUUID(c)
	switch auth.MustRole(c) {
	case models.RoleShaykh:
		return Scope{ShaykhID: &id}
	case models.RoleUser:
		return Scope{UserID: &id}
	}
	return Scope{}
}

// partyRoles picks the two names a calendar title shows for a kind.
var partyRoles = map[models.CaseKind][2]models.PartyRole{
	models.KindReconciliation: {models.PartyHusband, models.PartyWife},
	models.KindMarriage:       {models.PartyGroom, models.PartyBride},
	models.KindFatwa:          {models.PartyAsker, ""},
}

func toSource(m models.Meeting) calendar.SourceMeeting {
	out := calendar.SourceMeeting{
		ID:       m.ID,
		CaseID:   m.CaseID,
		Date:     m.Date,
		Time:     m.Time,
		Location: m.Location,
		Notes:    m.Notes,
		Status:   m.Status,
	}
	cs := m.Case
	if cs == nil {
		return out
	}
	out.ReferenceNo = cs.ReferenceNo
	out.CaseStatus = cs.Status
	roles := partyRoles[cs.Kind]
	if p := cs.Party(roles[0]); p != nil {
		out.PartyA = p.Name
	}
	if p := cs.Party(roles[1]); p != nil {
		out.PartyB = p.Name
	}
	if cs.AssignedShaykh != nil {
		out.ShaykhName = cs.AssignedShaykh.Name
	}
	return out
}

// QueryMeetings lists the meetings of one case kind with from <= date <= to
// (either bound may be empty), flattened with their parent case.
func QueryMeetings(ctx context.Context, db *gorm.DB, kind models.CaseKind, from, to string, scope Scope) ([]calendar.SourceMeeting, error) {
	q := db.WithContext(ctx).Model(&models.Meeting{}).
		Joins("JOIN cases ON cases.id = meetings.case_id").
		Where("cases.kind = ?", kind)
	if from != "" {
		q = q.Where("meetings.date >= ?", from)
	}
	if to != "" {
		q = q.Where("meetings.date <= ?", to)
	}
	if scope.ShaykhID != nil {
		q = q.Where("cases.assigned_shaykh_id = ?", *scope.ShaykhID)
	}
	if scope.UserID != nil {
		q = q.Where("cases.user_id = ?", *scope.UserID)
	}

	var rows []models.Meeting
	if err := q.
		Preload("Case.Parties").
		Preload("Case.AssignedShaykh").
		Order("meetings.date ASC, meetings.time ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]calendar.SourceMeeting, 0, len(rows))
	for _, m := range rows {
		out = append(out, toSource(m))
	}
	return out, nil
}

// MeetingSource reads one kind's meetings straight from the database.
type MeetingSource struct {
	DB     *gorm.DB
	Type   models.CaseKind
	Filter Scope
}

func NewMeetingSource(db *gorm.DB, kind models.CaseKind, scope Scope) *MeetingSource {
	return &MeetingSource{DB: db, Type: kind, Filter: scope}
}

func (s *MeetingSource) Kind() models.CaseKind { return s.Type }

func (s *MeetingSource) Fetch(ctx context.Context, w calendar.Window) ([]calendar.SourceMeeting, error) {
	return QueryMeetings(ctx, s.DB, s.Type, w.From(), w.To(), s.Filter)
}

type rangeQuery struct {
	From string `query:"from" json:"from" validate:"omitempty,isodate"`
	To   string `query:"to" json:"to" validate:"omitempty,isodate"`
}

// ListMeetings godoc
// @Summary      Meetings of this case kind
// @Description  Flattened meetings with parent case fields, scoped to the caller
// @Tags         meetings
// @Security     BearerAuth
// @Produce      json
// @Param        from  query string false "YYYY-MM-DD"
// @Param        to    query string false "YYYY-MM-DD"
// @Success      200  {array}  calendar.SourceMeeting
// @Router       /reconciliations/meetings [get]
func (h *Handler) ListMeetings(c *fiber.Ctx) error {
	var in rangeQuery
	if err := c.QueryParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}
	out, err := QueryMeetings(c.UserContext(), h.db, h.kind, in.From, in.To, ScopeFor(c))
	if err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(out)
}
