package utils

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aldoetobex/council-case-backend/pkg/logger"
	"github.com/aldoetobex/council-case-backend/pkg/models"
)

// LogCaseHistory inserts an audit record into case_histories.
// Used to track workflow transitions (assigned, meeting_added, completed...).
// Best-effort: a failed insert is logged and never fails the request.
func LogCaseHistory(
	ctx context.Context,
	db *gorm.DB,
	caseID, actorID uuid.UUID,
	action string,
	oldS, newS models.CaseStatus,
	reason string,
) {
	err := db.WithContext(ctx).Create(&models.CaseHistory{
		CaseID:    caseID,
		ActorID:   actorID,
		Action:    action,
		OldStatus: oldS,
		NewStatus: newS,
		Reason:    reason,
		CreatedAt: time.Now(),
	}).Error
	if err != nil {
		logger.Log.Warn("case history insert failed",
			zap.String("case_id", caseID.String()), zap.String("action", action), zap.Error(err))
	}
}

// CaseHistoryFor lists the audit trail of a case, oldest first.
func CaseHistoryFor(ctx context.Context, db *gorm.DB, caseID uuid.UUID) ([]models.CaseHistory, error) {
	var rows []models.CaseHistory
	err := db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}
