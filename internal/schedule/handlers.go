// Package schedule serves the aggregated meeting calendar of the admin and
// shaykh portals.
package schedule

import (
	"bytes"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aldoetobex/council-case-backend/internal/cases"
	"github.com/aldoetobex/council-case-backend/pkg/calendar"
	"github.com/aldoetobex/council-case-backend/pkg/logger"
	"github.com/aldoetobex/council-case-backend/pkg/models"
)

// sourceKinds is the merge order: marriage meetings first, then
// reconciliation meetings.
var sourceKinds = []models.CaseKind{models.KindMarriage, models.KindReconciliation}

type Handler struct {
	db      *gorm.DB
	loc     *time.Location
	now     func() time.Time
	sources func(scope cases.Scope) []calendar.Source
}

func NewHandler(db *gorm.DB, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	h := &Handler{db: db, loc: loc, now: time.Now}
	h.sources = func(scope cases.Scope) []calendar.Source {
		out := make([]calendar.Source, 0, len(sourceKinds))
		for _, k := range sourceKinds {
			out = append(out, cases.NewMeetingSource(db, k, scope))
		}
		return out
	}
	return h
}

// Register mounts the routes; r must already require an admin or a shaykh.
func (h *Handler) Register(r fiber.Router) {
	r.Get("/", h.Get)
	r.Get("/export", h.Export)
}

func (h *Handler) build(c *fiber.Ctx) (*calendar.Schedule, error) {
	view, err := calendar.ParseView(c.Query("view"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "view must be month or week")
	}
	anchor := h.now().In(h.loc)
	if raw := c.Query("date"); raw != "" {
		anchor, err = time.ParseInLocation(models.DateLayout, raw, h.loc)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
	}

	agg := calendar.NewAggregator(logger.Log, h.sources(cases.ScopeFor(c))...)
	agg.Location = h.loc
	return agg.Build(c.UserContext(), view, anchor), nil
}

// Get godoc
// @Summary      Meeting calendar
// @Description  Marriage and reconciliation meetings merged per day for a month or week. A failing source is reported in warnings and the rest still renders.
// @Tags         schedule
// @Security     BearerAuth
// @Produce      json
// @Param        view  query string false "month (default) or week"
// @Param        date  query string false "anchor day, YYYY-MM-DD (default today)"
// @Success      200  {object}  calendar.Schedule
// @Failure      400  {object}  models.ErrorResponse
// @Router       /schedule [get]
func (h *Handler) Get(c *fiber.Ctx) error {
	s, err := h.build(c)
	if err != nil {
		return err
	}
	return c.JSON(s)
}

// Export godoc
// @Summary      Export the calendar
// @Description  Same window as GET /schedule, as an xlsx workbook
// @Tags         schedule
// @Security     BearerAuth
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        view  query string false "month (default) or week"
// @Param        date  query string false "anchor day, YYYY-MM-DD (default today)"
// @Success      200  {file}  file
// @Router       /schedule/export [get]
func (h *Handler) Export(c *fiber.Ctx) error {
	s, err := h.build(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := s.WriteXLSX(&buf); err != nil {
		return fiber.ErrInternalServerError
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Attachment(s.ExportName())
	return c.Send(buf.Bytes())
}
