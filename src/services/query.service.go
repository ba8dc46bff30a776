package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stock-ledger/src/models"
	"stock-ledger/src/repositories"
)

// AvailableLot is one approved inbound with stock left to allocate.
type AvailableLot struct {
	InboundID       uuid.UUID       `json:"inbound_id"`
	CategoryID      uint            `json:"category_id"`
	BatchNo         string          `json:"batch_no"`
	InboundDate     time.Time       `json:"inbound_date"`
	ActualQty       int64           `json:"actual_qty"`
	ActualWeight    decimal.Decimal `json:"actual_weight"`
	RemainingQty    int64           `json:"remaining_qty"`
	RemainingWeight decimal.Decimal `json:"remaining_weight"`
}

// LedgerEntry is one approved lot with everything shipped against it.
type LedgerEntry struct {
	Inbound         models.InboundMovement    `json:"inbound"`
	Outbounds       []models.OutboundMovement `json:"outbounds"`
	UsedQty         int64                     `json:"used_qty"`
	UsedWeight      decimal.Decimal           `json:"used_weight"`
	RemainingQty    int64                     `json:"remaining_qty"`
	RemainingWeight decimal.Decimal           `json:"remaining_weight"`
}

// ============ QUERY SERVICE ============
// Read-side fan-out over the movement store plus the diagnostics pass.
// Availability and ledger views never hard-fail: on store error they return
// an empty result flagged degraded so stock visibility survives bad data.
type QueryService struct {
	DB   *gorm.DB
	Repo *repositories.LedgerRepository
	Diag *Diagnostics
	Log  *zap.Logger
}

// ListAvailable - Approved lots with remaining stock, plus integrity warnings.
func (s *QueryService) ListAvailable(tenantID uuid.UUID, categoryID *uint) ([]AvailableLot, *DiagnosticsReport) {
	report := s.Diag.Run(s.DB, tenantID)

	lots, err := s.Repo.ApprovedInbound(s.DB, tenantID, categoryID)
	if err != nil {
		s.Log.Error("available lots query failed",
			zap.String("trace_id", report.TraceID.String()), zap.Error(err))
		report.warn(WarnQueryFailed, "available lots query failed", 0)
		return []AvailableLot{}, report
	}

	usage, err := s.Repo.UsageByLot(s.DB, tenantID, categoryID)
	if err != nil {
		s.Log.Error("lot usage query failed",
			zap.String("trace_id", report.TraceID.String()), zap.Error(err))
		report.warn(WarnQueryFailed, "lot usage query failed", 0)
		return []AvailableLot{}, report
	}

	available := make([]AvailableLot, 0, len(lots))
	for _, lot := range lots {
		used := usage[lot.ID]
		remainingQty := lot.ActualQty - used.UsedQty
		remainingWeight := lot.ActualWeight.Sub(used.UsedWeight)
		if remainingQty <= 0 {
			continue
		}
		available = append(available, AvailableLot{
			InboundID:       lot.ID,
			CategoryID:      lot.CategoryID,
			BatchNo:         lot.BatchNo,
			InboundDate:     lot.InboundDate,
			ActualQty:       lot.ActualQty,
			ActualWeight:    lot.ActualWeight,
			RemainingQty:    remainingQty,
			RemainingWeight: remainingWeight,
		})
	}

	return available, report
}

// Ledger - Approved lots with their outbound movements and remaining figures.
func (s *QueryService) Ledger(tenantID uuid.UUID, categoryID *uint) ([]LedgerEntry, *DiagnosticsReport) {
	report := s.Diag.Run(s.DB, tenantID)

	lots, err := s.Repo.ApprovedInbound(s.DB, tenantID, categoryID)
	if err != nil {
		s.Log.Error("ledger query failed",
			zap.String("trace_id", report.TraceID.String()), zap.Error(err))
		report.warn(WarnQueryFailed, "ledger query failed", 0)
		return []LedgerEntry{}, report
	}

	outbounds, err := s.Repo.OutboundsForTenant(s.DB, tenantID, categoryID)
	if err != nil {
		s.Log.Error("ledger outbound query failed",
			zap.String("trace_id", report.TraceID.String()), zap.Error(err))
		report.warn(WarnQueryFailed, "ledger outbound query failed", 0)
		return []LedgerEntry{}, report
	}

	byLot := make(map[uuid.UUID][]models.OutboundMovement)
	for _, out := range outbounds {
		if out.InboundID == nil {
			continue
		}
		byLot[*out.InboundID] = append(byLot[*out.InboundID], out)
	}

	entries := make([]LedgerEntry, 0, len(lots))
	for _, lot := range lots {
		entry := LedgerEntry{
			Inbound:    lot,
			Outbounds:  byLot[lot.ID],
			UsedWeight: decimal.Zero,
		}
		if entry.Outbounds == nil {
			entry.Outbounds = []models.OutboundMovement{}
		}
		for _, out := range entry.Outbounds {
			entry.UsedQty += out.OutboundQty
			entry.UsedWeight = entry.UsedWeight.Add(out.OutboundWeight)
		}
		entry.RemainingQty = lot.ActualQty - entry.UsedQty
		entry.RemainingWeight = lot.ActualWeight.Sub(entry.UsedWeight)
		entries = append(entries, entry)
	}

	return entries, report
}

// Balances - Balance rows for a tenant, narrowed by category and batch.
func (s *QueryService) Balances(tenantID uuid.UUID, categoryID *uint, batchNo string) ([]models.Balance, error) {
	return s.Repo.Balances(tenantID, categoryID, batchNo)
}

// History - Audit trail of one record.
func (s *QueryService) History(recordType models.RecordType, recordID uuid.UUID) ([]models.RecordHistory, error) {
	return s.Repo.HistoryFor(recordType, recordID)
}

// Stats - Tenant-wide inbound totals.
func (s *QueryService) Stats(tenantID uuid.UUID) (*repositories.Stats, error) {
	return s.Repo.Stats(tenantID)
}
