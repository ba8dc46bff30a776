package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stock-ledger/src/apperrors"
	"stock-ledger/src/auth"
	"stock-ledger/src/models"
	"stock-ledger/src/repositories"
)

// ============ REQUEST STRUCTS ============
type CreateOutboundInput struct {
	TenantID       uuid.UUID
	InboundID      uuid.UUID
	OutboundQty    int64
	OutboundWeight decimal.Decimal
	OutboundDate   time.Time
	Remarks        *string
}

type OutboundResult struct {
	Movement        *models.OutboundMovement
	RemainingQty    int64
	RemainingWeight decimal.Decimal
}

// ============ OUTBOUND ALLOCATOR ============
// Every shipment draws from one specific approved inbound lot and is capped
// by that lot's remaining qty/weight, not by the tenant-wide pool.
type OutboundService struct {
	DB         *gorm.DB
	Repo       *repositories.LedgerRepository
	Reconciler *BalanceReconciler
	Log        *zap.Logger
}

// Create - Allocate a shipment against a lot. Admin only; outbound movements
// are created in approved status and never edited or reversed.
func (s *OutboundService) Create(actor auth.Actor, in CreateOutboundInput) (*OutboundResult, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	if in.OutboundQty <= 0 {
		return nil, apperrors.Validation("outbound_qty", "must be positive")
	}
	if !in.OutboundWeight.IsPositive() {
		return nil, apperrors.Validation("outbound_weight", "must be positive")
	}

	var result *OutboundResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		lot, err := s.Repo.GetInbound(tx, in.TenantID, in.InboundID)
		if err != nil {
			return err
		}
		if lot.Status != models.StatusApproved {
			return apperrors.ErrNotFound
		}

		usedQty, usedWeight, err := s.Repo.OutboundUsage(tx, lot.ID)
		if err != nil {
			return err
		}

		remainingQty := lot.ActualQty - usedQty
		remainingWeight := lot.ActualWeight.Sub(usedWeight)

		if remainingQty <= 0 || in.OutboundQty > remainingQty || in.OutboundWeight.GreaterThan(remainingWeight) {
			return &apperrors.CapacityError{
				RemainingQty:    remainingQty,
				RemainingWeight: remainingWeight,
			}
		}

		now := time.Now()
		movement := &models.OutboundMovement{
			TenantID:       in.TenantID,
			InboundID:      &lot.ID,
			CategoryID:     lot.CategoryID,
			BatchNo:        lot.BatchNo,
			OutboundQty:    in.OutboundQty,
			OutboundWeight: in.OutboundWeight,
			OutboundDate:   in.OutboundDate,
			Remarks:        in.Remarks,
			Status:         models.StatusApproved,
			CreatedBy:      actor.ID,
			ApprovedBy:     &actor.ID,
			ApprovedAt:     &now,
			CreatedAt:      now,
		}

		if err := tx.Create(movement).Error; err != nil {
			return apperrors.Store("create outbound", err)
		}
		if err := s.Reconciler.ApplyDelta(tx, movement.TenantID, movement.CategoryID,
			movement.BatchNo, -movement.OutboundQty, movement.OutboundWeight.Neg()); err != nil {
			return err
		}
		if err := writeHistory(tx, movement.TenantID, models.RecordTypeOutbound,
			movement.ID, models.ActionCreate, nil, movement, actor.ID); err != nil {
			return err
		}

		result = &OutboundResult{
			Movement:        movement,
			RemainingQty:    remainingQty - movement.OutboundQty,
			RemainingWeight: remainingWeight.Sub(movement.OutboundWeight),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("outbound allocated",
		zap.String("id", result.Movement.ID.String()),
		zap.String("inbound_id", in.InboundID.String()),
		zap.Int64("qty", in.OutboundQty),
		zap.Int64("remaining_qty", result.RemainingQty))

	return result, nil
}
