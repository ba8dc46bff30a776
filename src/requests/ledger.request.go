package requests

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ============ INBOUND ============
type InboundFields struct {
	CategoryID     uint             `json:"category_id" binding:"required"`
	BatchNo        string           `json:"batch_no" binding:"required"`
	SerialNo       *string          `json:"serial_no,omitempty"`
	VehicleID      *string          `json:"vehicle_id,omitempty"`
	InboundDate    time.Time        `json:"inbound_date" binding:"required"`
	ActualQty      int64            `json:"actual_qty" binding:"min=0"`
	ActualWeight   decimal.Decimal  `json:"actual_weight"`
	BrokenBags     int64            `json:"broken_bags"`
	DirtyBags      int64            `json:"dirty_bags"`
	WetBags        int64            `json:"wet_bags"`
	Shortage       int64            `json:"shortage"`
	ContentPercent *decimal.Decimal `json:"content_percent,omitempty"`
	BillOfLading   *string          `json:"bill_of_lading,omitempty"`
	ContractNo     *string          `json:"contract_no,omitempty"`
	LoadingMethod  *string          `json:"loading_method,omitempty"`
	Remarks        *string          `json:"remarks,omitempty"`
	ImageURL       *string          `json:"image_url,omitempty"`
}

type CreateInboundRequest struct {
	TenantID uuid.UUID `json:"tenant_id" binding:"required"`
	InboundFields
}

type UpdateInboundRequest struct {
	TenantID uuid.UUID `json:"tenant_id" binding:"required"`
	InboundFields
}

type ImportInboundRequest struct {
	TenantID uuid.UUID       `json:"tenant_id" binding:"required"`
	Records  []InboundFields `json:"records" binding:"required,min=1"`
}

// ============ OUTBOUND ============
type CreateOutboundRequest struct {
	TenantID       uuid.UUID       `json:"tenant_id" binding:"required"`
	InboundID      uuid.UUID       `json:"inbound_id" binding:"required"`
	OutboundQty    int64           `json:"outbound_qty" binding:"required,min=1"`
	OutboundWeight decimal.Decimal `json:"outbound_weight"`
	OutboundDate   *time.Time      `json:"outbound_date,omitempty"`
	Remarks        *string         `json:"remarks,omitempty"`
}
