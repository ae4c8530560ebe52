package cases

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aldoetobex/council-case-backend/internal/auth"
	"github.com/aldoetobex/council-case-backend/pkg/logger"
	"github.com/aldoetobex/council-case-backend/pkg/meetings"
	"github.com/aldoetobex/council-case-backend/pkg/models"
	"github.com/aldoetobex/council-case-backend/pkg/sanitize"
	"github.com/aldoetobex/council-case-backend/pkg/utils"
	"github.com/aldoetobex/council-case-backend/pkg/validation"
	"github.com/aldoetobex/council-case-backend/pkg/workflow"
)

// Handler serves one case kind; the three kinds share every route shape.
type Handler struct {
	db   *gorm.DB
	kind models.CaseKind
	now  func() time.Time
}

func NewHandler(db *gorm.DB, kind models.CaseKind, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{db: db, kind: kind, now: func() time.Time { return time.Now().In(loc) }}
}

// Register mounts the routes on a group that already runs RequireAuth.
// Static paths go before /:id so they are not shadowed.
func (h *Handler) Register(r fiber.Router) {
	admin := auth.RequireRole(models.RoleAdmin)
	user := auth.RequireRole(models.RoleUser)
	shaykh := auth.RequireRole(models.RoleShaykh)
	staff := auth.RequireRole(models.RoleAdmin, models.RoleShaykh)

	r.Post("/", user, h.Create)
	r.Get("/", admin, h.List)
	r.Get("/my-cases", user, h.ListMine)
	r.Get("/my-assignments", shaykh, h.ListAssignments)
	r.Get("/meetings", h.ListMeetings)

	r.Put("/assign/:id", admin, h.Assign)
	r.Put("/complete/:id", staff, h.Complete)
	if h.kind == models.KindFatwa {
		r.Put("/answer/:id", staff, h.Answer)
	}
	r.Put("/cancel/:id", h.Cancel)
	r.Put("/notes/:id", staff, h.Notes)
	r.Post("/feedback/:id", h.Feedback)
	r.Post("/meetings/:id", staff, h.AddMeeting)
	r.Put("/meetings/:id/:meetingId", staff, h.UpdateMeeting)

	r.Get("/:id", h.Get)
}

/* ================================ Create ================================ */

var requiredParties = map[models.CaseKind][]models.PartyRole{
	models.KindReconciliation: {models.PartyHusband, models.PartyWife},
	models.KindMarriage:       {models.PartyGroom, models.PartyBride},
}

var allowedParties = map[models.CaseKind]map[models.PartyRole]bool{
	models.KindReconciliation: {models.PartyHusband: true, models.PartyWife: true, models.PartyWitness: true},
	models.KindMarriage:       {models.PartyGroom: true, models.PartyBride: true, models.PartyWali: true, models.PartyWitness: true},
	models.KindFatwa:          {models.PartyAsker: true},
}

// uniqueParties may appear at most once on a case.
var uniqueParties = map[models.PartyRole]bool{
	models.PartyHusband: true,
	models.PartyWife:    true,
	models.PartyGroom:   true,
	models.PartyBride:   true,
	models.PartyAsker:   true,
}

func (h *Handler) checkCreate(in *CreateCaseRequest) map[string][]string {
	errs := map[string][]string{}
	seen := map[models.PartyRole]bool{}
	for i, p := range in.Parties {
		key := "parties[" + strconv.Itoa(i) + "].role"
		switch {
		case !allowedParties[h.kind][p.Role]:
			errs[key] = []string{"Role is not allowed for a " + string(h.kind) + " case"}
		case seen[p.Role] && uniqueParties[p.Role]:
			errs[key] = []string{"Only one " + string(p.Role) + " is allowed"}
		}
		seen[p.Role] = true
	}
	for _, r := range requiredParties[h.kind] {
		if !seen[r] {
			errs["parties"] = append(errs["parties"], "A "+string(r)+" is required")
		}
	}
	switch h.kind {
	case models.KindReconciliation:
		if in.IssueDescription == "" {
			errs["issueDescription"] = []string{"This field is required"}
		}
	case models.KindFatwa:
		if in.Question == "" {
			errs["question"] = []string{"This field is required"}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Create godoc
// @Summary      Submit a case
// @Description  End user submits a reconciliation, marriage or fatwa request
// @Tags         cases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateCaseRequest  true  "Case payload"
// @Success      201  {object}  map[string]string  "id, referenceNo"
// @Failure      400  {object}  models.ValidationErrorResponse
// @Router       /reconciliations [post]
func (h *Handler) Create(c *fiber.Ctx) error {
	var in CreateCaseRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	for i := range in.Parties {
		p := &in.Parties[i]
		p.Role = models.PartyRole(strings.ToLower(strings.TrimSpace(string(p.Role))))
		p.Name = sanitize.Text(p.Name)
		p.Phone = strings.TrimSpace(p.Phone)
		p.Email = auth.NormalizeEmail(p.Email)
	}
	in.IssueDescription = sanitize.Text(in.IssueDescription)
	in.AdditionalInfo = sanitize.Text(in.AdditionalInfo)
	in.Question = sanitize.Text(in.Question)
	in.Category = sanitize.Text(in.Category)

	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}
	if errs := h.checkCreate(&in); errs != nil {
		return validation.Respond(c, errs)
	}

	userID := auth.MustUserUUID(c)
	cs := models.Case{
		Kind:             h.kind,
		UserID:           userID,
		Status:           models.CasePending,
		Priority:         in.Priority,
		IssueDescription: in.IssueDescription,
		AdditionalInfo:   in.AdditionalInfo,
		Question:         in.Question,
		Category:         in.Category,
		PreferredDate:    in.PreferredDate,
	}
	for _, p := range in.Parties {
		cs.Parties = append(cs.Parties, models.Party{Role: p.Role, Name: p.Name, Phone: p.Phone, Email: p.Email})
	}

	err := h.db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if h.kind == models.KindFatwa && len(cs.Parties) == 0 {
			// the asker defaults to the submitting account
			var u models.User
			if err := tx.First(&u, "id = ?", userID).Error; err != nil {
				return fiber.ErrUnauthorized
			}
			cs.Parties = append(cs.Parties, models.Party{Role: models.PartyAsker, Name: u.Name, Phone: u.Phone, Email: u.Email})
		}
		if err := tx.Create(&cs).Error; err != nil {
			return err
		}
		utils.LogCaseHistory(c.UserContext(), tx, cs.ID, userID, "created", "", cs.Status, "")
		return nil
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": cs.ID, "referenceNo": cs.ReferenceNo})
}

/* ================================ Lists ================================= */

func parsePage(c *fiber.Ctx) (page, size int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	size, _ = strconv.Atoi(c.Query("pageSize", "10"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 50 {
		size = 10
	}
	return
}

func parseStatus(s string) (models.CaseStatus, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, st := range models.AllCaseStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

func listItem(cs models.Case) CaseListItem {
	parties := make([]string, 0, len(cs.Parties))
	for _, p := range cs.Parties {
		parties = append(parties, p.Name)
	}
	text := cs.IssueDescription
	if cs.Kind == models.KindFatwa {
		text = cs.Question
	}
	item := CaseListItem{
		ID:            cs.ID,
		ShortID:       models.ShortID(cs.ID),
		ReferenceNo:   cs.ReferenceNo,
		Kind:          cs.Kind,
		Status:        cs.Status,
		Badge:         workflow.StatusBadge(cs.Status),
		Priority:      cs.Priority,
		PriorityBadge: workflow.PriorityBadge(cs.Priority),
		Parties:       parties,
		Preview:       sanitize.Summary(sanitize.RedactPII(text), 160),
		Meetings:      len(cs.Meetings),
		CreatedAt:     cs.CreatedAt,
	}
	if cs.AssignedShaykh != nil {
		item.AssignedShaykh = cs.AssignedShaykh.Name
	}
	return item
}

// list applies the shared filters (status, q, sort) and pagination to base.
func (h *Handler) list(c *fiber.Ctx, base *gorm.DB) error {
	page, size := parsePage(c)
	q := base.Where("cases.kind = ?", h.kind)

	if raw := c.Query("status"); raw != "" {
		st, ok := parseStatus(raw)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "invalid status filter")
		}
		q = q.Where("cases.status = ?", st)
	}
	if term := strings.TrimSpace(c.Query("q")); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		names := h.db.Model(&models.Party{}).Select("case_id").Where("LOWER(name) LIKE ?", like)
		q = q.Where("LOWER(cases.reference_no) LIKE ? OR cases.id IN (?)", like, names)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Model(&models.Case{}).Count(&total).Error; err != nil {
		return fiber.ErrInternalServerError
	}

	order := "cases.created_at DESC"
	if c.Query("sort") == "oldest" {
		order = "cases.created_at ASC"
	}

	var rows []models.Case
	if err := q.Session(&gorm.Session{}).
		Preload("Parties").
		Preload("Meetings").
		Preload("AssignedShaykh").
		Order(order).
		Offset((page - 1) * size).Limit(size).
		Find(&rows).Error; err != nil {
		return fiber.ErrInternalServerError
	}

	items := make([]CaseListItem, 0, len(rows))
	for _, cs := range rows {
		items = append(items, listItem(cs))
	}
	return c.JSON(models.Page[CaseListItem]{
		Page: page, PageSize: size, Total: total,
		Pages: int(math.Ceil(float64(total) / float64(size))),
		Items: items, // always [] when empty
	})
}

// List godoc
// @Summary      List cases (admin)
// @Tags         cases
// @Security     BearerAuth
// @Produce      json
// @Param        status    query string false "status filter"
// @Param        q         query string false "reference or party name"
// @Param        page      query int    false "page"
// @Param        pageSize  query int    false "pageSize"
// @Success      200  {object}  models.Page[CaseListItem]
// @Router       /reconciliations [get]
func (h *Handler) List(c *fiber.Ctx) error {
	base := h.db.WithContext(c.UserContext()).Model(&models.Case{})
	if sid := c.Query("shaykhId"); sid != "" {
		id, err := uuid.Parse(sid)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid shaykhId")
		}
		base = base.Where("cases.assigned_shaykh_id = ?", id)
	}
	return h.list(c, base)
}

// ListMine returns the cases submitted by the current user.
func (h *Handler) ListMine(c *fiber.Ctx) error {
	base := h.db.WithContext(c.UserContext()).Model(&models.Case{}).
		Where("cases.user_id = ?", auth.MustUserUUID(c))
	return h.list(c, base)
}

// ListAssignments returns the cases assigned to the current shaykh.
func (h *Handler) ListAssignments(c *fiber.Ctx) error {
	base := h.db.WithContext(c.UserContext()).Model(&models.Case{}).
		Where("cases.assigned_shaykh_id = ?", auth.MustUserUUID(c))
	return h.list(c, base)
}

/* ================================ Detail ================================ */

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid case id")
	}
	return id, nil
}

func (h *Handler) load(db *gorm.DB, id uuid.UUID) (*models.Case, error) {
	var cs models.Case
	err := db.
		Preload("Parties").
		Preload("Meetings", func(db *gorm.DB) *gorm.DB { return db.Order("date ASC, time ASC") }).
		Preload("Feedback", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("AssignedShaykh").
		Preload("User").
		First(&cs, "id = ? AND kind = ?", id, h.kind).Error
	if err != nil {
		return nil, err
	}
	if cs.Parties == nil {
		cs.Parties = []models.Party{}
	}
	if cs.Meetings == nil {
		cs.Meetings = []models.Meeting{}
	}
	if cs.Feedback == nil {
		cs.Feedback = []models.Feedback{}
	}
	return &cs, nil
}

// canView: admins see everything, shaykhs their assignments, users their own cases.
func canView(c *fiber.Ctx, cs *models.Case) bool {
	uid := auth.MustUserUUID(c)
	switch auth.MustRole(c) {
	case models.RoleAdmin:
		return true
	case models.RoleShaykh:
		return cs.IsAssignedTo(uid)
	case models.RoleUser:
		return cs.UserID == uid
	}
	return false
}

// permissionsFor narrows the status table to what the caller's role may do.
func permissionsFor(role models.Role, cs *models.Case) map[workflow.Action]bool {
	p := workflow.Permissions(cs)
	switch role {
	case models.RoleShaykh:
		p[workflow.ActionAssign] = false
		p[workflow.ActionCancel] = false
	case models.RoleUser:
		for _, a := range []workflow.Action{
			workflow.ActionAssign, workflow.ActionScheduleMeeting, workflow.ActionUpdateMeeting,
			workflow.ActionAddNotes, workflow.ActionComplete,
		} {
			p[a] = false
		}
	}
	return p
}

func (h *Handler) detail(c *fiber.Ctx, cs *models.Case) CaseDetail {
	role := auth.MustRole(c)
	if role != models.RoleAdmin {
		cs.AdminNotes = ""
	}
	up, past := meetings.Partition(cs.Meetings, h.now())
	d := CaseDetail{
		Case:          cs,
		ShortID:       models.ShortID(cs.ID),
		Badge:         workflow.StatusBadge(cs.Status),
		PriorityBadge: workflow.PriorityBadge(cs.Priority),
		Permissions:   permissionsFor(role, cs),
		Upcoming:      up,
		Past:          past,
	}
	if role == models.RoleAdmin {
		hist, err := utils.CaseHistoryFor(c.UserContext(), h.db, cs.ID)
		if err != nil {
			logger.Log.Warn("case history read failed", zap.String("case_id", cs.ID.String()), zap.Error(err))
		}
		d.History = hist
	}
	return d
}

func (h *Handler) respondDetail(c *fiber.Ctx, status int, id uuid.UUID) error {
	cs, err := h.load(h.db.WithContext(c.UserContext()), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(status).JSON(h.detail(c, cs))
}

// Get godoc
// @Summary      Case detail
// @Description  Case with parties, meetings (upcoming/past), feedback and the caller's permissions
// @Tags         cases
// @Security     BearerAuth
// @Produce      json
// @Param        id   path string true "case id (uuid)"
// @Success      200  {object}  CaseDetail
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /reconciliations/{id} [get]
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	cs, err := h.load(h.db.WithContext(c.UserContext()), id)
	if err != nil {
		return respondErr(c, err)
	}
	if !canView(c, cs) {
		return fiber.ErrForbidden
	}
	return c.JSON(h.detail(c, cs))
}
