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
type CreateInboundInput struct {
	TenantID       uuid.UUID
	CategoryID     uint
	BatchNo        string
	SerialNo       *string
	VehicleID      *string
	InboundDate    time.Time
	ActualQty      int64
	ActualWeight   decimal.Decimal
	BrokenBags     int64
	DirtyBags      int64
	WetBags        int64
	Shortage       int64
	ContentPercent *decimal.Decimal
	BillOfLading   *string
	ContractNo     *string
	LoadingMethod  *string
	Remarks        *string
	ImageURL       *string
}

type UpdateInboundInput struct {
	CategoryID     uint
	BatchNo        string
	SerialNo       *string
	VehicleID      *string
	InboundDate    time.Time
	ActualQty      int64
	ActualWeight   decimal.Decimal
	BrokenBags     int64
	DirtyBags      int64
	WetBags        int64
	Shortage       int64
	ContentPercent *decimal.Decimal
	BillOfLading   *string
	ContractNo     *string
	LoadingMethod  *string
	Remarks        *string
	ImageURL       *string
}

// ============ INBOUND WORKFLOW ============
// State machine over pending_review / approved / rejected. Only approved
// movements contribute to balance, exactly once each.
type InboundService struct {
	DB         *gorm.DB
	Repo       *repositories.LedgerRepository
	Reconciler *BalanceReconciler
	Log        *zap.Logger
}

func (s *InboundService) validate(actor auth.Actor, categoryID uint, batchNo string,
	qty int64, weight decimal.Decimal, imageURL *string) error {

	if categoryID == 0 {
		return apperrors.Validation("category_id", "must not be empty")
	}
	if batchNo == "" {
		return apperrors.Validation("batch_no", "must not be empty")
	}
	if qty < 0 {
		return apperrors.Validation("actual_qty", "must not be negative")
	}
	if weight.IsNegative() {
		return apperrors.Validation("actual_weight", "must not be negative")
	}
	if actor.IsAgent() && (imageURL == nil || *imageURL == "") {
		return apperrors.Validation("image_url", "photographic evidence is required for agent submissions")
	}
	return nil
}

// Create - Record a receipt. Admin creations are approved immediately and
// contribute to balance at creation; agent creations enter pending_review.
func (s *InboundService) Create(actor auth.Actor, in CreateInboundInput) (*models.InboundMovement, error) {
	if err := s.validate(actor, in.CategoryID, in.BatchNo, in.ActualQty, in.ActualWeight, in.ImageURL); err != nil {
		return nil, err
	}

	now := time.Now()
	movement := &models.InboundMovement{
		TenantID:       in.TenantID,
		CategoryID:     in.CategoryID,
		BatchNo:        in.BatchNo,
		SerialNo:       in.SerialNo,
		VehicleID:      in.VehicleID,
		InboundDate:    in.InboundDate,
		ActualQty:      in.ActualQty,
		ActualWeight:   in.ActualWeight,
		BrokenBags:     in.BrokenBags,
		DirtyBags:      in.DirtyBags,
		WetBags:        in.WetBags,
		Shortage:       in.Shortage,
		ContentPercent: in.ContentPercent,
		BillOfLading:   in.BillOfLading,
		ContractNo:     in.ContractNo,
		LoadingMethod:  in.LoadingMethod,
		Remarks:        in.Remarks,
		ImageURL:       in.ImageURL,
		Status:         models.StatusPendingReview,
		Source:         models.SourceAgent,
		CreatedBy:      actor.ID,
		CreatedAt:      now,
	}

	if actor.IsAdmin() {
		movement.Status = models.StatusApproved
		movement.Source = models.SourceAdmin
		movement.ApprovedBy = &actor.ID
		movement.ApprovedAt = &now
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(movement).Error; err != nil {
			return apperrors.Store("create inbound", err)
		}
		if err := writeHistory(tx, movement.TenantID, models.RecordTypeInbound,
			movement.ID, models.ActionCreate, nil, movement, actor.ID); err != nil {
			return err
		}
		if movement.Status == models.StatusApproved {
			return s.Reconciler.ApplyDelta(tx, movement.TenantID, movement.CategoryID,
				movement.BatchNo, movement.ActualQty, movement.ActualWeight)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("inbound created",
		zap.String("id", movement.ID.String()),
		zap.String("tenant_id", movement.TenantID.String()),
		zap.String("status", string(movement.Status)),
		zap.String("source", string(movement.Source)))

	return movement, nil
}

// Update - Edit a movement. An admin edit of an approved movement reverses
// the old contribution before applying the new one, old key first, so a
// category/batch change moves the contribution between keys. An agent edit
// demotes the movement to pending_review and never touches balance.
func (s *InboundService) Update(actor auth.Actor, tenantID, id uuid.UUID, in UpdateInboundInput) (*models.InboundMovement, error) {
	if err := s.validate(actor, in.CategoryID, in.BatchNo, in.ActualQty, in.ActualWeight, in.ImageURL); err != nil {
		return nil, err
	}

	var movement *models.InboundMovement
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		existing, err := s.Repo.GetInbound(tx, tenantID, id)
		if err != nil {
			return err
		}
		if actor.IsAgent() && existing.CreatedBy != actor.ID {
			return apperrors.ErrNotFound
		}
		if existing.Status == models.StatusRejected {
			return apperrors.Validation("status", "rejected movements cannot be edited")
		}

		before := *existing
		now := time.Now()

		existing.CategoryID = in.CategoryID
		existing.BatchNo = in.BatchNo
		existing.SerialNo = in.SerialNo
		existing.VehicleID = in.VehicleID
		existing.InboundDate = in.InboundDate
		existing.ActualQty = in.ActualQty
		existing.ActualWeight = in.ActualWeight
		existing.BrokenBags = in.BrokenBags
		existing.DirtyBags = in.DirtyBags
		existing.WetBags = in.WetBags
		existing.Shortage = in.Shortage
		existing.ContentPercent = in.ContentPercent
		existing.BillOfLading = in.BillOfLading
		existing.ContractNo = in.ContractNo
		existing.LoadingMethod = in.LoadingMethod
		existing.Remarks = in.Remarks
		existing.ImageURL = in.ImageURL
		existing.UpdatedAt = now

		if actor.IsAdmin() {
			existing.Status = models.StatusApproved
			existing.ApprovedBy = &actor.ID
			existing.ApprovedAt = &now

			// Old key first, in case category or batch identity changed.
			if before.Status == models.StatusApproved {
				if err := s.Reconciler.ApplyDelta(tx, before.TenantID, before.CategoryID,
					before.BatchNo, -before.ActualQty, before.ActualWeight.Neg()); err != nil {
					return err
				}
			}
			if err := s.Reconciler.ApplyDelta(tx, existing.TenantID, existing.CategoryID,
				existing.BatchNo, existing.ActualQty, existing.ActualWeight); err != nil {
				return err
			}
		} else {
			// Edits by non-admins never silently change live stock: the
			// movement returns to pending_review while any previously
			// applied contribution stays in effect.
			existing.Status = models.StatusPendingReview
		}

		if err := tx.Save(existing).Error; err != nil {
			return apperrors.Store("update inbound", err)
		}
		if err := writeHistory(tx, existing.TenantID, models.RecordTypeInbound,
			existing.ID, models.ActionUpdate, &before, existing, actor.ID); err != nil {
			return err
		}

		movement = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("inbound updated",
		zap.String("id", movement.ID.String()),
		zap.String("status", string(movement.Status)),
		zap.String("operator", actor.ID))

	return movement, nil
}

// Approve - Admin approval of a pending movement. Idempotent: approving an
// already-approved movement reports already=true and applies no delta.
func (s *InboundService) Approve(actor auth.Actor, tenantID, id uuid.UUID) (already bool, err error) {
	if !actor.IsAdmin() {
		return false, apperrors.ErrForbidden
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		existing, err := s.Repo.GetInbound(tx, tenantID, id)
		if err != nil {
			return err
		}
		if existing.Status == models.StatusApproved {
			already = true
			return nil
		}
		if existing.Status == models.StatusRejected {
			return apperrors.Validation("status", "rejected movements cannot be approved")
		}

		before := *existing
		now := time.Now()
		existing.Status = models.StatusApproved
		existing.ApprovedBy = &actor.ID
		existing.ApprovedAt = &now
		existing.UpdatedAt = now

		if err := tx.Save(existing).Error; err != nil {
			return apperrors.Store("approve inbound", err)
		}
		if err := writeHistory(tx, existing.TenantID, models.RecordTypeInbound,
			existing.ID, models.ActionApprove, &before, existing, actor.ID); err != nil {
			return err
		}
		return s.Reconciler.ApplyDelta(tx, existing.TenantID, existing.CategoryID,
			existing.BatchNo, existing.ActualQty, existing.ActualWeight)
	})
	if err != nil {
		return false, err
	}

	s.Log.Info("inbound approved",
		zap.String("id", id.String()),
		zap.Bool("already", already),
		zap.String("approver", actor.ID))

	return already, nil
}

// Reject - Admin rejection of a pending movement. No balance effect, since
// pending movements never contribute. Rejecting twice is a no-op.
func (s *InboundService) Reject(actor auth.Actor, tenantID, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return apperrors.ErrForbidden
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		existing, err := s.Repo.GetInbound(tx, tenantID, id)
		if err != nil {
			return err
		}
		if existing.Status == models.StatusRejected {
			return nil
		}
		if existing.Status == models.StatusApproved {
			return apperrors.Validation("status", "approved movements cannot be rejected")
		}

		before := *existing
		now := time.Now()
		existing.Status = models.StatusRejected
		existing.ApprovedBy = &actor.ID
		existing.ApprovedAt = &now
		existing.UpdatedAt = now

		if err := tx.Save(existing).Error; err != nil {
			return apperrors.Store("reject inbound", err)
		}
		return writeHistory(tx, existing.TenantID, models.RecordTypeInbound,
			existing.ID, models.ActionReject, &before, existing, actor.ID)
	})
	if err != nil {
		return err
	}

	s.Log.Info("inbound rejected",
		zap.String("id", id.String()),
		zap.String("approver", actor.ID))

	return nil
}

// List - Filtered inbound listing. Agents only ever see their own records.
func (s *InboundService) List(actor auth.Actor, tenantID uuid.UUID, f repositories.InboundFilter,
	page, limit int) ([]models.InboundMovement, int64, error) {

	if actor.IsAgent() {
		f.CreatedBy = actor.ID
	}
	return s.Repo.ListInbound(tenantID, f, page, limit)
}

// Get - Load one movement. Agents can only read their own records.
func (s *InboundService) Get(actor auth.Actor, tenantID, id uuid.UUID) (*models.InboundMovement, error) {
	movement, err := s.Repo.GetInbound(s.DB, tenantID, id)
	if err != nil {
		return nil, err
	}
	if actor.IsAgent() && movement.CreatedBy != actor.ID {
		return nil, apperrors.ErrNotFound
	}
	return movement, nil
}

// Import - Admin batch import of historical receipts. Each row enters
// approved and contributes its balance delta, all in one transaction.
func (s *InboundService) Import(actor auth.Actor, tenantID uuid.UUID, rows []CreateInboundInput) ([]uuid.UUID, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	if len(rows) == 0 {
		return nil, apperrors.Validation("records", "must not be empty")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for _, in := range rows {
			if err := s.validate(actor, in.CategoryID, in.BatchNo, in.ActualQty, in.ActualWeight, in.ImageURL); err != nil {
				return err
			}

			now := time.Now()
			movement := &models.InboundMovement{
				TenantID:       tenantID,
				CategoryID:     in.CategoryID,
				BatchNo:        in.BatchNo,
				SerialNo:       in.SerialNo,
				VehicleID:      in.VehicleID,
				InboundDate:    in.InboundDate,
				ActualQty:      in.ActualQty,
				ActualWeight:   in.ActualWeight,
				BrokenBags:     in.BrokenBags,
				DirtyBags:      in.DirtyBags,
				WetBags:        in.WetBags,
				Shortage:       in.Shortage,
				ContentPercent: in.ContentPercent,
				BillOfLading:   in.BillOfLading,
				ContractNo:     in.ContractNo,
				LoadingMethod:  in.LoadingMethod,
				Remarks:        in.Remarks,
				ImageURL:       in.ImageURL,
				Status:         models.StatusApproved,
				Source:         models.SourceAdmin,
				CreatedBy:      actor.ID,
				ApprovedBy:     &actor.ID,
				ApprovedAt:     &now,
				CreatedAt:      now,
			}

			if err := tx.Create(movement).Error; err != nil {
				return apperrors.Store("import inbound", err)
			}
			if err := writeHistory(tx, movement.TenantID, models.RecordTypeInbound,
				movement.ID, models.ActionCreate, nil, movement, actor.ID); err != nil {
				return err
			}
			if err := s.Reconciler.ApplyDelta(tx, movement.TenantID, movement.CategoryID,
				movement.BatchNo, movement.ActualQty, movement.ActualWeight); err != nil {
				return err
			}

			ids = append(ids, movement.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("inbound batch imported",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("count", len(ids)))

	return ids, nil
}
