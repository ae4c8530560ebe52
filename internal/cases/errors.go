package cases

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/aldoetobex/council-case-backend/pkg/validation"
	"github.com/aldoetobex/council-case-backend/pkg/workflow"
)

// respondErr maps workflow and storage errors to HTTP responses. Missing
// input becomes a field error; a forbidden transition is a 409.
func respondErr(c *fiber.Ctx, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, workflow.ErrOutcomeRequired):
		return validation.Field(c, "outcome", err.Error())
	case errors.Is(err, workflow.ErrReasonRequired):
		return validation.Field(c, "reason", err.Error())
	case errors.Is(err, workflow.ErrNoShaykh):
		return validation.Field(c, "shaykhId", err.Error())
	case errors.Is(err, workflow.ErrTerminal),
		errors.Is(err, workflow.ErrAssignNotAllowed),
		errors.Is(err, workflow.ErrMeetingNotAllowed):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, workflow.ErrNotLoaded), errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.ErrNotFound
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe
	}
	return err
}
