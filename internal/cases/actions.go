package cases

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aldoetobex/council-case-backend/internal/auth"
	"github.com/aldoetobex/council-case-backend/pkg/logger"
	"github.com/aldoetobex/council-case-backend/pkg/models"
	"github.com/aldoetobex/council-case-backend/pkg/sanitize"
	"github.com/aldoetobex/council-case-backend/pkg/utils"
	"github.com/aldoetobex/council-case-backend/pkg/validation"
	"github.com/aldoetobex/council-case-backend/pkg/workflow"
)

// change is what a mutation records in the case history.
type change struct {
	action string
	reason string
}

// mutateFunc edits cs in place. It may write related rows through tx only.
type mutateFunc func(tx *gorm.DB, cs *models.Case) (change, error)

// mutate loads the case under a row lock, checks the caller can see it,
// applies fn, saves, logs history and answers with the refreshed detail.
func (h *Handler) mutate(c *fiber.Ctx, status int, fn mutateFunc) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	actor := auth.MustUserUUID(c)
	ctx := c.UserContext()

	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if auth.MustRole(c) == models.RoleShaykh {
			if err := requireActive(tx, actor); err != nil {
				return err
			}
		}
		var cs models.Case
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&cs, "id = ? AND kind = ?", id, h.kind).Error; err != nil {
			return err
		}
		if !canView(c, &cs) {
			return fiber.ErrForbidden
		}
		old := cs.Status
		ch, err := fn(tx, &cs)
		if err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(&cs).Error; err != nil {
			return err
		}
		utils.LogCaseHistory(ctx, tx, cs.ID, actor, ch.action, old, cs.Status, ch.reason)
		return nil
	})
	if err != nil {
		var fe *fiber.Error
		if !errors.As(err, &fe) && !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Log.Debug("case mutation rejected",
				zap.String("case_id", id.String()), zap.String("path", c.Path()), zap.Error(err))
		}
		return respondErr(c, err)
	}
	return h.respondDetail(c, status, id)
}

var errAccountDisabled = fiber.NewError(fiber.StatusForbidden, "account is disabled")

// requireActive rejects staff whose account was disabled after their token
// was issued.
func requireActive(tx *gorm.DB, userID uuid.UUID) error {
	var u models.User
	if err := tx.Select("id", "active").First(&u, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errAccountDisabled
		}
		return err
	}
	if !u.Active {
		return errAccountDisabled
	}
	return nil
}

// bind parses and validates a request body; ok=false means a response has
// already been written (or err is set).
func bind[T any](c *fiber.Ctx, in *T) (bool, error) {
	if err := c.BodyParser(in); err != nil {
		return false, fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return false, validation.Respond(c, errs)
	}
	return true, nil
}

// Assign godoc
// @Summary      Assign a shaykh (admin)
// @Description  Allowed while the case is pending; moves it to assigned
// @Tags         cases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path string        true "case id (uuid)"
// @Param        payload  body AssignRequest true "shaykh id"
// @Success      200  {object}  CaseDetail
// @Failure      409  {object}  models.ErrorResponse
// @Failure      422  {object}  models.ErrorResponse
// @Router       /reconciliations/assign/{id} [put]
func (h *Handler) Assign(c *fiber.Ctx) error {
	var in AssignRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	sid := uuid.MustParse(in.ShaykhID)

	return h.mutate(c, fiber.StatusOK, func(tx *gorm.DB, cs *models.Case) (change, error) {
		var shaykh models.User
		if err := tx.First(&shaykh, "id = ? AND role = ? AND active = ?", sid, models.RoleShaykh, true).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return change{}, fiber.NewError(fiber.StatusUnprocessableEntity, "shaykh not found")
			}
			return change{}, err
		}
		if err := workflow.Assign(cs, sid, h.now()); err != nil {
			return change{}, err
		}
		if in.Priority != "" {
			cs.Priority = in.Priority
		}
		return change{action: "assigned", reason: shaykh.Name}, nil
	})
}

// Complete godoc
// @Summary      Close a case with an outcome
// @Description  Admin or the assigned shaykh marks the case resolved or unresolved
// @Tags         cases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path string          true "case id (uuid)"
// @Param        payload  body CompleteRequest true "outcome"
// @Success      200  {object}  CaseDetail
// @Failure      400  {object}  models.ValidationErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /reconciliations/complete/{id} [put]
func (h *Handler) Complete(c *fiber.Ctx) error {
	var in CompleteRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	return h.complete(c, in)
}

// Answer godoc
// @Summary      Answer a fatwa
// @Description  Stores the answer and resolves the request
// @Tags         cases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path string          true "case id (uuid)"
// @Param        payload  body CompleteRequest true "answer"
// @Success      200  {object}  CaseDetail
// @Router       /fatwas/answer/{id} [put]
func (h *Handler) Answer(c *fiber.Ctx) error {
	var in CompleteRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	in.Outcome = string(models.CaseResolved)
	return h.complete(c, in)
}

func (h *Handler) complete(c *fiber.Ctx, in CompleteRequest) error {
	in.OutcomeDetails = sanitize.Text(in.OutcomeDetails)
	in.Answer = sanitize.Text(in.Answer)
	outcome, err := workflow.ParseOutcome(in.Outcome)
	if err != nil {
		return respondErr(c, err)
	}
	if h.kind == models.KindFatwa && outcome == models.CaseResolved && in.Answer == "" {
		return validation.Field(c, "answer", "An answer is required to resolve a fatwa")
	}

	return h.mutate(c, fiber.StatusOK, func(tx *gorm.DB, cs *models.Case) (change, error) {
		if err := workflow.Complete(cs, in.Outcome, in.OutcomeDetails, h.now()); err != nil {
			return change{}, err
		}
		if in.Answer != "" {
			cs.Answer = in.Answer
		}
		return change{action: "completed", reason: cs.OutcomeDetails}, nil
	})
}

// Cancel godoc
// @Summary      Cancel a case
// @Description  Admin or the submitting user cancels with a mandatory reason
// @Tags         cases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path string        true "case id (uuid)"
// @Param        payload  body CancelRequest true "reason"
// @Success      200  {object}  CaseDetail
// @Failure      400  {object}  models.ValidationErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /reconciliations/cancel/{id} [put]
func (h *Handler) Cancel(c *fiber.Ctx) error {
	if auth.MustRole(c) == models.RoleShaykh {
		return fiber.ErrForbidden
	}
	var in CancelRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	reason := sanitize.Text(in.Reason)
	if reason == "" {
		return respondErr(c, workflow.ErrReasonRequired)
	}

	return h.mutate(c, fiber.StatusOK, func(tx *gorm.DB, cs *models.Case) (change, error) {
		if err := workflow.Cancel(cs, reason, h.now()); err != nil {
			return change{}, err
		}
		return change{action: "cancelled", reason: reason}, nil
	})
}

// Notes godoc
// @Summary      Save notes
// @Description  Admins write admin notes, the assigned shaykh writes shaykh notes
// @Tags         cases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path string       true "case id (uuid)"
// @Param        payload  body NotesRequest true "notes"
// @Success      200  {object}  CaseDetail
// @Router       /reconciliations/notes/{id} [put]
func (h *Handler) Notes(c *fiber.Ctx) error {
	var in NotesRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	notes := sanitize.Text(in.Notes)
	role := auth.MustRole(c)

	return h.mutate(c, fiber.StatusOK, func(tx *gorm.DB, cs *models.Case) (change, error) {
		if !workflow.CanAddNotes(cs) {
			return change{}, workflow.ErrTerminal
		}
		if role == models.RoleAdmin {
			cs.AdminNotes = notes
		} else {
			cs.ShaykhNotes = notes
		}
		return change{action: "notes_updated"}, nil
	})
}

// Feedback godoc
// @Summary      Leave feedback
// @Tags         cases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path string          true "case id (uuid)"
// @Param        payload  body FeedbackRequest true "comment"
// @Success      201  {object}  CaseDetail
// @Router       /reconciliations/feedback/{id} [post]
func (h *Handler) Feedback(c *fiber.Ctx) error {
	var in FeedbackRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	comment := sanitize.Text(in.Comment)
	if comment == "" {
		return validation.Field(c, "comment", "This field is required")
	}
	actor := auth.MustUserUUID(c)

	return h.mutate(c, fiber.StatusCreated, func(tx *gorm.DB, cs *models.Case) (change, error) {
		if !workflow.CanLeaveFeedback(cs) {
			return change{}, workflow.ErrTerminal
		}
		var u models.User
		if err := tx.First(&u, "id = ?", actor).Error; err != nil {
			return change{}, fiber.ErrUnauthorized
		}
		fb := models.Feedback{CaseID: cs.ID, UserID: actor, UserName: u.Name, Comment: comment, Rating: in.Rating}
		if err := tx.Create(&fb).Error; err != nil {
			return change{}, err
		}
		return change{action: "feedback"}, nil
	})
}
