package services

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stock-ledger/src/models"
)

// Warning codes attached to query responses.
const (
	WarnNullLotReference   = "null_lot_reference"
	WarnOrphanLotReference = "orphan_lot_reference"
	WarnCrossTenantRef     = "cross_tenant_reference"
	WarnDiagnosticsFailed  = "diagnostics_failed"
	WarnQueryFailed        = "query_failed"
)

type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Count   int64  `json:"count,omitempty"`
}

// DiagnosticsReport carries the outcome of one integrity pass. TraceID ties
// the warnings back to server logs.
type DiagnosticsReport struct {
	TraceID  uuid.UUID `json:"trace_id"`
	Warnings []Warning `json:"warnings"`
	Degraded bool      `json:"degraded"`
}

// Any warning marks the whole response unreliable.
func (r *DiagnosticsReport) warn(code, message string, count int64) {
	r.Warnings = append(r.Warnings, Warning{Code: code, Message: message, Count: count})
	r.Degraded = true
}

// Diagnostics runs read-time integrity checks alongside ledger and
// availability queries. It only ever reads; non-zero counts become warnings
// and internal failures mark the report degraded instead of raising.
type Diagnostics struct {
	Log *zap.Logger
}

// Run executes the integrity checks for one tenant.
func (d *Diagnostics) Run(db *gorm.DB, tenantID uuid.UUID) *DiagnosticsReport {
	report := &DiagnosticsReport{
		TraceID:  uuid.New(),
		Warnings: []Warning{},
	}

	var nullRefs int64
	err := db.Model(&models.OutboundMovement{}).
		Where("tenant_id = ? AND inbound_id IS NULL", tenantID).
		Count(&nullRefs).Error
	if err != nil {
		report.warn(WarnDiagnosticsFailed, "null lot reference check failed", 0)
	} else if nullRefs > 0 {
		report.warn(WarnNullLotReference, "outbound movements without a lot reference", nullRefs)
	}

	var orphans int64
	err = db.Model(&models.OutboundMovement{}).
		Joins("LEFT JOIN inventory_inbound ON inventory_inbound.id = inventory_outbound.inbound_id").
		Where("inventory_outbound.tenant_id = ? AND inventory_outbound.inbound_id IS NOT NULL AND inventory_inbound.id IS NULL", tenantID).
		Count(&orphans).Error
	if err != nil {
		report.warn(WarnDiagnosticsFailed, "orphan lot reference check failed", 0)
	} else if orphans > 0 {
		report.warn(WarnOrphanLotReference, "outbound movements referencing a missing lot", orphans)
	}

	var crossTenant int64
	err = db.Model(&models.OutboundMovement{}).
		Joins("JOIN inventory_inbound ON inventory_inbound.id = inventory_outbound.inbound_id").
		Where("inventory_outbound.tenant_id = ? AND inventory_inbound.tenant_id <> inventory_outbound.tenant_id", tenantID).
		Count(&crossTenant).Error
	if err != nil {
		report.warn(WarnDiagnosticsFailed, "cross tenant reference check failed", 0)
	} else if crossTenant > 0 {
		report.warn(WarnCrossTenantRef, "outbound movements referencing another tenant's lot", crossTenant)
	}

	if len(report.Warnings) > 0 || report.Degraded {
		d.Log.Warn("integrity pass found issues",
			zap.String("trace_id", report.TraceID.String()),
			zap.String("tenant_id", tenantID.String()),
			zap.Int("warnings", len(report.Warnings)),
			zap.Bool("degraded", report.Degraded))
	}

	return report
}
