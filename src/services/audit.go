package services

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stock-ledger/src/apperrors"
	"stock-ledger/src/models"
)

// writeHistory appends one audit entry for a workflow transition. Entries are
// never updated or deleted. A nil before snapshot marks a creation.
func writeHistory(tx *gorm.DB, tenantID uuid.UUID, recordType models.RecordType,
	recordID uuid.UUID, action models.HistoryAction, before, after interface{}, operator string) error {

	entry := models.RecordHistory{
		TenantID:   tenantID,
		RecordType: recordType,
		RecordID:   recordID,
		Action:     action,
		Operator:   operator,
		CreatedAt:  time.Now(),
	}

	if before != nil {
		data, err := json.Marshal(before)
		if err != nil {
			return apperrors.Store("marshal history before", err)
		}
		entry.Before = json.RawMessage(data)
	}

	data, err := json.Marshal(after)
	if err != nil {
		return apperrors.Store("marshal history after", err)
	}
	entry.After = json.RawMessage(data)

	if err := tx.Create(&entry).Error; err != nil {
		return apperrors.Store("create history", err)
	}

	return nil
}
