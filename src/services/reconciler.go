package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stock-ledger/src/apperrors"
	"stock-ledger/src/models"
)

// BalanceReconciler is the only component allowed to mutate inventory_balance.
// Everything else reads balances through the repository.
type BalanceReconciler struct{}

// ApplyDelta adds a signed qty/weight delta to the balance row for one
// tenant+category+batch key, creating the row on first delta. Negative
// resulting balances are not rejected here; transient negative windows are
// surfaced by diagnostics instead of being blocked on the write path.
func (br *BalanceReconciler) ApplyDelta(tx *gorm.DB, tenantID uuid.UUID, categoryID uint,
	batchNo string, qtyDelta int64, weightDelta decimal.Decimal) error {

	var balance models.Balance
	err := tx.
		Where("tenant_id = ? AND category_id = ? AND batch_no = ?", tenantID, categoryID, batchNo).
		First(&balance).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		balance = models.Balance{
			TenantID:        tenantID,
			CategoryID:      categoryID,
			BatchNo:         batchNo,
			AvailableQty:    qtyDelta,
			AvailableWeight: weightDelta,
			UpdatedAt:       time.Now(),
		}
		if err := tx.Create(&balance).Error; err != nil {
			return apperrors.Store("create balance", err)
		}
		return nil
	}
	if err != nil {
		return apperrors.Store("load balance", err)
	}

	err = tx.Model(&balance).Updates(map[string]interface{}{
		"available_qty":    gorm.Expr("available_qty + ?", qtyDelta),
		"available_weight": gorm.Expr("available_weight + ?", weightDelta),
		"updated_at":       time.Now(),
	}).Error
	if err != nil {
		return apperrors.Store("update balance", err)
	}

	return nil
}
