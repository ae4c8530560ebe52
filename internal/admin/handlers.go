// Package admin serves shaykh management and the dashboard counters.
package admin

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aldoetobex/council-case-backend/internal/auth"
	"github.com/aldoetobex/council-case-backend/pkg/models"
	"github.com/aldoetobex/council-case-backend/pkg/validation"
)

/* ================================ DTOs ================================= */

type CreateShaykhRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=80"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type ActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// Shaykh is a shaykh profile with its open workload.
type Shaykh struct {
	auth.UserProfile
	Active    bool  `json:"active"`
	OpenCases int64 `json:"openCases"`
}

// Stats are the dashboard counters.
type Stats struct {
	Total            int64                                           `json:"total"`
	Unassigned       int64                                           `json:"unassigned"`
	ByKind           map[models.CaseKind]map[models.CaseStatus]int64 `json:"byKind"`
	UpcomingMeetings map[models.CaseKind]int64                       `json:"upcomingMeetings"`
}

/* ============================== Handler ================================= */

type Handler struct {
	db  *gorm.DB
	now func() time.Time
}

func NewHandler(db *gorm.DB, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{db: db, now: func() time.Time { return time.Now().In(loc) }}
}

// Register mounts the admin routes; r must already require an admin.
func (h *Handler) Register(r fiber.Router) {
	r.Get("/shaykhs", h.ListShaykhs)
	r.Post("/shaykhs", h.CreateShaykh)
	r.Put("/shaykhs/:id/active", h.SetActive)
	r.Get("/stats", h.Stats)
}

var openStatuses = []models.CaseStatus{models.CasePending, models.CaseAssigned, models.CaseInProgress}

// ListShaykhs godoc
// @Summary      List shaykhs
// @Description  Shaykhs with their count of open assignments, by name
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  Shaykh
// @Router       /admin/shaykhs [get]
func (h *Handler) ListShaykhs(c *fiber.Ctx) error {
	db := h.db.WithContext(c.UserContext())

	var users []models.User
	if err := db.Where("role = ?", models.RoleShaykh).Order("name ASC").Find(&users).Error; err != nil {
		return fiber.ErrInternalServerError
	}

	var loads []struct {
		AssignedShaykhID uuid.UUID
		N                int64
	}
	if err := db.Model(&models.Case{}).
		Select("assigned_shaykh_id, COUNT(*) AS n").
		Where("assigned_shaykh_id IS NOT NULL AND status IN ?", openStatuses).
		Group("assigned_shaykh_id").
		Scan(&loads).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	open := make(map[uuid.UUID]int64, len(loads))
	for _, l := range loads {
		open[l.AssignedShaykhID] = l.N
	}

	out := make([]Shaykh, 0, len(users))
	for _, u := range users {
		out = append(out, Shaykh{UserProfile: auth.Profile(u), Active: u.Active, OpenCases: open[u.ID]})
	}
	return c.JSON(out)
}

// CreateShaykh godoc
// @Summary      Create a shaykh account
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateShaykhRequest  true  "Shaykh"
// @Success      201  {object}  Shaykh
// @Failure      400  {object}  models.ValidationErrorResponse
// @Failure      409  {object}  models.ErrorResponse  "email already exists"
// @Router       /admin/shaykhs [post]
func (h *Handler) CreateShaykh(c *fiber.Ctx) error {
	var in CreateShaykhRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	in.Email = auth.NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return fiber.ErrInternalServerError
	}
	u := models.User{
		Email:        in.Email,
		PasswordHash: hash,
		Role:         models.RoleShaykh,
		Name:         in.Name,
		Phone:        strings.TrimSpace(in.Phone),
		Active:       true,
	}
	if err := h.db.WithContext(c.UserContext()).Create(&u).Error; err != nil {
		return fiber.NewError(fiber.StatusConflict, "email already exists")
	}
	return c.Status(fiber.StatusCreated).JSON(Shaykh{UserProfile: auth.Profile(u), Active: true})
}

// SetActive godoc
// @Summary      Enable or disable a shaykh
// @Description  Disabled shaykhs cannot log in, receive new assignments or change their cases
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string         true  "shaykh id (uuid)"
// @Param        payload  body  ActiveRequest  true  "active flag"
// @Success      200  {object}  Shaykh
// @Router       /admin/shaykhs/{id}/active [put]
func (h *Handler) SetActive(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid shaykh id")
	}
	var in ActiveRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	db := h.db.WithContext(c.UserContext())
	var u models.User
	if err := db.First(&u, "id = ? AND role = ?", id, models.RoleShaykh).Error; err != nil {
		return fiber.ErrNotFound
	}
	// Update by column so false is written.
	if err := db.Model(&u).Update("active", *in.Active).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(Shaykh{UserProfile: auth.Profile(u), Active: *in.Active})
}

// Stats godoc
// @Summary      Dashboard counters
// @Description  Cases per kind and status, unassigned pending cases, upcoming meetings per kind
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  Stats
// @Router       /admin/stats [get]
func (h *Handler) Stats(c *fiber.Ctx) error {
	db := h.db.WithContext(c.UserContext())
	out := Stats{
		ByKind:           map[models.CaseKind]map[models.CaseStatus]int64{},
		UpcomingMeetings: map[models.CaseKind]int64{},
	}
	for _, k := range []models.CaseKind{models.KindReconciliation, models.KindMarriage, models.KindFatwa} {
		out.ByKind[k] = map[models.CaseStatus]int64{}
		for _, s := range models.AllCaseStatuses {
			out.ByKind[k][s] = 0
		}
		out.UpcomingMeetings[k] = 0
	}

	var counts []struct {
		Kind   models.CaseKind
		Status models.CaseStatus
		N      int64
	}
	if err := db.Model(&models.Case{}).
		Select("kind, status, COUNT(*) AS n").
		Group("kind, status").
		Scan(&counts).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	for _, row := range counts {
		if _, ok := out.ByKind[row.Kind]; !ok {
			continue
		}
		out.ByKind[row.Kind][row.Status] = row.N
		out.Total += row.N
	}

	if err := db.Model(&models.Case{}).
		Where("status = ? AND assigned_shaykh_id IS NULL", models.CasePending).
		Count(&out.Unassigned).Error; err != nil {
		return fiber.ErrInternalServerError
	}

	var upcoming []struct {
		Kind models.CaseKind
		N    int64
	}
	today := h.now().Format(models.DateLayout)
	if err := db.Model(&models.Meeting{}).
		Select("cases.kind AS kind, COUNT(*) AS n").
		Joins("JOIN cases ON cases.id = meetings.case_id").
		Where("meetings.status = ? AND meetings.date >= ?", models.MeetingScheduled, today).
		Group("cases.kind").
		Scan(&upcoming).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	for _, row := range upcoming {
		out.UpcomingMeetings[row.Kind] = row.N
	}
	return c.JSON(out)
}
