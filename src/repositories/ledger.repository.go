package repositories

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stock-ledger/src/apperrors"
	"stock-ledger/src/models"
)

type LedgerRepository struct {
	DB *gorm.DB
}

// GetInbound - Load one inbound movement scoped by tenant
func (r *LedgerRepository) GetInbound(tx *gorm.DB, tenantID, id uuid.UUID) (*models.InboundMovement, error) {
	var movement models.InboundMovement
	err := tx.
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&movement).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.Store("get inbound", err)
	}

	return &movement, nil
}

// InboundFilter - Optional filters for inbound listing
type InboundFilter struct {
	Status    string
	Batch     string
	Vehicle   string
	Source    string
	DateFrom  time.Time
	DateTo    time.Time
	CreatedBy string
}

// ListInbound - Get inbound movements with filters and pagination
func (r *LedgerRepository) ListInbound(tenantID uuid.UUID, f InboundFilter,
	page, limit int) ([]models.InboundMovement, int64, error) {

	query := r.DB.Model(&models.InboundMovement{}).
		Where("tenant_id = ?", tenantID)

	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Batch != "" {
		query = query.Where("batch_no LIKE ?", "%"+f.Batch+"%")
	}
	if f.Vehicle != "" {
		query = query.Where("vehicle_id LIKE ?", "%"+f.Vehicle+"%")
	}
	if f.Source != "" {
		query = query.Where("source = ?", f.Source)
	}
	if f.CreatedBy != "" {
		query = query.Where("created_by = ?", f.CreatedBy)
	}
	if !f.DateFrom.IsZero() {
		query = query.Where("inbound_date >= ?", f.DateFrom)
	}
	if !f.DateTo.IsZero() {
		query = query.Where("inbound_date <= ?", f.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Store("count inbound", err)
	}

	var movements []models.InboundMovement
	offset := (page - 1) * limit
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&movements).Error
	if err != nil {
		return nil, 0, apperrors.Store("list inbound", err)
	}

	return movements, total, nil
}

// ApprovedInbound - Get approved lots for a tenant, optionally one category
func (r *LedgerRepository) ApprovedInbound(tx *gorm.DB, tenantID uuid.UUID, categoryID *uint) ([]models.InboundMovement, error) {
	query := tx.
		Where("tenant_id = ? AND status = ?", tenantID, models.StatusApproved)

	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	var movements []models.InboundMovement
	err := query.
		Order("inbound_date ASC, created_at ASC").
		Find(&movements).Error
	if err != nil {
		return nil, apperrors.Store("list approved inbound", err)
	}

	return movements, nil
}

// OutboundUsage - Sum of outbound qty/weight drawn against one lot
func (r *LedgerRepository) OutboundUsage(tx *gorm.DB, inboundID uuid.UUID) (int64, decimal.Decimal, error) {
	var row struct {
		UsedQty    int64
		UsedWeight decimal.Decimal
	}

	err := tx.Model(&models.OutboundMovement{}).
		Select("COALESCE(SUM(outbound_qty), 0) AS used_qty, COALESCE(SUM(outbound_weight), 0) AS used_weight").
		Where("inbound_id = ?", inboundID).
		Scan(&row).Error
	if err != nil {
		return 0, decimal.Zero, apperrors.Store("sum outbound usage", err)
	}

	return row.UsedQty, row.UsedWeight, nil
}

// LotUsage - Aggregated outbound draw per lot
type LotUsage struct {
	InboundID  uuid.UUID
	UsedQty    int64
	UsedWeight decimal.Decimal
}

// UsageByLot - Outbound usage grouped by referenced lot for a tenant
func (r *LedgerRepository) UsageByLot(tx *gorm.DB, tenantID uuid.UUID, categoryID *uint) (map[uuid.UUID]LotUsage, error) {
	query := tx.Model(&models.OutboundMovement{}).
		Select("inbound_id, COALESCE(SUM(outbound_qty), 0) AS used_qty, COALESCE(SUM(outbound_weight), 0) AS used_weight").
		Where("tenant_id = ? AND inbound_id IS NOT NULL", tenantID)

	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	var rows []LotUsage
	if err := query.Group("inbound_id").Scan(&rows).Error; err != nil {
		return nil, apperrors.Store("sum usage by lot", err)
	}

	usage := make(map[uuid.UUID]LotUsage, len(rows))
	for _, row := range rows {
		usage[row.InboundID] = row
	}
	return usage, nil
}

// OutboundsForTenant - Get outbound movements, optionally one category
func (r *LedgerRepository) OutboundsForTenant(tx *gorm.DB, tenantID uuid.UUID, categoryID *uint) ([]models.OutboundMovement, error) {
	query := tx.Where("tenant_id = ?", tenantID)

	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	var movements []models.OutboundMovement
	err := query.
		Order("outbound_date ASC, created_at ASC").
		Find(&movements).Error
	if err != nil {
		return nil, apperrors.Store("list outbound", err)
	}

	return movements, nil
}

// Balances - Get balance rows for a tenant, narrowed by category/batch
func (r *LedgerRepository) Balances(tenantID uuid.UUID, categoryID *uint, batchNo string) ([]models.Balance, error) {
	query := r.DB.Where("tenant_id = ?", tenantID)

	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	if batchNo != "" {
		query = query.Where("batch_no = ?", batchNo)
	}

	var balances []models.Balance
	err := query.
		Order("category_id ASC, batch_no ASC").
		Find(&balances).Error
	if err != nil {
		return nil, apperrors.Store("list balances", err)
	}

	return balances, nil
}

// HistoryFor - Get the audit trail of one record, oldest first
func (r *LedgerRepository) HistoryFor(recordType models.RecordType, recordID uuid.UUID) ([]models.RecordHistory, error) {
	var entries []models.RecordHistory
	err := r.DB.
		Where("record_type = ? AND record_id = ?", recordType, recordID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, apperrors.Store("list history", err)
	}

	return entries, nil
}

// Stats - Tenant-wide totals for the dashboard
type Stats struct {
	TotalRecords   int64           `json:"total_records"`
	PendingCount   int64           `json:"pending_count"`
	ApprovedCount  int64           `json:"approved_count"`
	RejectedCount  int64           `json:"rejected_count"`
	TotalWeight    decimal.Decimal `json:"total_weight"`
	ApprovedWeight decimal.Decimal `json:"approved_weight"`
}

func (r *LedgerRepository) Stats(tenantID uuid.UUID) (*Stats, error) {
	var stats Stats
	err := r.DB.Model(&models.InboundMovement{}).
		Select(`COUNT(*) AS total_records,
			COUNT(*) FILTER (WHERE status = 'pending_review') AS pending_count,
			COUNT(*) FILTER (WHERE status = 'approved') AS approved_count,
			COUNT(*) FILTER (WHERE status = 'rejected') AS rejected_count,
			COALESCE(SUM(actual_weight), 0) AS total_weight,
			COALESCE(SUM(actual_weight) FILTER (WHERE status = 'approved'), 0) AS approved_weight`).
		Where("tenant_id = ?", tenantID).
		Scan(&stats).Error
	if err != nil {
		return nil, apperrors.Store("tenant stats", err)
	}

	return &stats, nil
}
