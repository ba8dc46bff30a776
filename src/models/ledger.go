package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ============ ENUMS & TYPES ============
type InboundStatus string

const (
	StatusPendingReview InboundStatus = "pending_review"
	StatusApproved      InboundStatus = "approved"
	StatusRejected      InboundStatus = "rejected"
)

type MovementSource string

const (
	SourceAdmin MovementSource = "admin"
	SourceAgent MovementSource = "agent"
)

type RecordType string

const (
	RecordTypeInbound  RecordType = "inbound"
	RecordTypeOutbound RecordType = "outbound"
)

type HistoryAction string

const (
	ActionCreate  HistoryAction = "create"
	ActionUpdate  HistoryAction = "update"
	ActionApprove HistoryAction = "approve"
	ActionReject  HistoryAction = "reject"
)

// ============ TENANT & CATEGORY ============
type Tenant struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Code      string    `gorm:"type:varchar(50);unique;not null" json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

func (Tenant) TableName() string {
	return "tenants"
}

type Category struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_category_tenant_code" json:"tenant_id"`
	Code     string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_category_tenant_code" json:"code"`
	Name     string    `gorm:"type:varchar(200);not null" json:"name"`

	// Optional descriptor for category-specific fields
	FieldSchema json.RawMessage `gorm:"type:jsonb" json:"field_schema,omitempty"`

	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func (Category) TableName() string {
	return "categories"
}

// ============ INBOUND MOVEMENT ============
type InboundMovement struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	TenantID   uuid.UUID `gorm:"type:uuid;not null;index:idx_inbound_tenant_category" json:"tenant_id"`
	CategoryID uint      `gorm:"not null;index:idx_inbound_tenant_category" json:"category_id"`

	// Lot identifier, unique only within tenant+category
	BatchNo string `gorm:"type:varchar(100);not null;index" json:"batch_no"`

	SerialNo    *string   `gorm:"type:varchar(50)" json:"serial_no,omitempty"`
	VehicleID   *string   `gorm:"type:varchar(50)" json:"vehicle_id,omitempty"`
	InboundDate time.Time `gorm:"type:timestamp;not null" json:"inbound_date"`

	ActualQty    int64           `gorm:"not null" json:"actual_qty"`
	ActualWeight decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"actual_weight"`

	// Damage / shortage counters
	BrokenBags int64 `gorm:"not null;default:0" json:"broken_bags"`
	DirtyBags  int64 `gorm:"not null;default:0" json:"dirty_bags"`
	WetBags    int64 `gorm:"not null;default:0" json:"wet_bags"`
	Shortage   int64 `gorm:"not null;default:0" json:"shortage"`

	ContentPercent *decimal.Decimal `gorm:"type:decimal(8,4)" json:"content_percent,omitempty"`
	BillOfLading   *string          `gorm:"type:varchar(100)" json:"bill_of_lading,omitempty"`
	ContractNo     *string          `gorm:"type:varchar(100)" json:"contract_no,omitempty"`
	LoadingMethod  *string          `gorm:"type:varchar(50)" json:"loading_method,omitempty"`
	Remarks        *string          `gorm:"type:text" json:"remarks,omitempty"`

	// Photographic evidence reference, mandatory for agent-created movements
	ImageURL *string `gorm:"type:text" json:"image_url,omitempty"`

	Status InboundStatus  `gorm:"type:varchar(20);not null;index" json:"status"`
	Source MovementSource `gorm:"type:varchar(10);not null" json:"source"`

	CreatedBy  string     `gorm:"type:varchar(100);not null" json:"created_by"`
	ApprovedBy *string    `gorm:"type:varchar(100)" json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (InboundMovement) TableName() string {
	return "inventory_inbound"
}

// ============ OUTBOUND MOVEMENT ============
// Always created in approved status; never edited or reversed.
type OutboundMovement struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	TenantID uuid.UUID `gorm:"type:uuid;not null;index:idx_outbound_tenant_category" json:"tenant_id"`

	// Lot the shipment draws from. Nullable at the schema level so that
	// drifted rows surface through diagnostics instead of breaking reads.
	InboundID *uuid.UUID `gorm:"type:uuid;index" json:"inbound_id"`

	// Denormalized from the referenced inbound for query locality
	CategoryID uint   `gorm:"not null;index:idx_outbound_tenant_category" json:"category_id"`
	BatchNo    string `gorm:"type:varchar(100);not null;index" json:"batch_no"`

	OutboundQty    int64           `gorm:"not null" json:"outbound_qty"`
	OutboundWeight decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"outbound_weight"`
	OutboundDate   time.Time       `gorm:"type:timestamp;not null" json:"outbound_date"`

	Remarks *string `gorm:"type:text" json:"remarks,omitempty"`

	Status     InboundStatus `gorm:"type:varchar(20);not null" json:"status"`
	CreatedBy  string        `gorm:"type:varchar(100);not null" json:"created_by"`
	ApprovedBy *string       `gorm:"type:varchar(100)" json:"approved_by,omitempty"`
	ApprovedAt *time.Time    `json:"approved_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (OutboundMovement) TableName() string {
	return "inventory_outbound"
}

// ============ BALANCE ============
// Derived aggregate per tenant+category+batch, maintained incrementally by
// the reconciler. Never recomputed from history on the write path.
type Balance struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	TenantID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_balance_key" json:"tenant_id"`
	CategoryID uint      `gorm:"not null;uniqueIndex:idx_balance_key" json:"category_id"`
	BatchNo    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_balance_key" json:"batch_no"`

	AvailableQty    int64           `gorm:"not null" json:"available_qty"`
	AvailableWeight decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"available_weight"`

	UpdatedAt time.Time `json:"updated_at"`
}

func (Balance) TableName() string {
	return "inventory_balance"
}

// ============ HISTORY ============
// Append-only audit record, one row per workflow transition.
type RecordHistory struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	TenantID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"tenant_id"`
	RecordType RecordType    `gorm:"type:varchar(10);not null;index:idx_history_record" json:"record_type"`
	RecordID   uuid.UUID     `gorm:"type:uuid;not null;index:idx_history_record" json:"record_id"`
	Action     HistoryAction `gorm:"type:varchar(20);not null" json:"action"`

	Before json.RawMessage `gorm:"type:jsonb" json:"before,omitempty"`
	After  json.RawMessage `gorm:"type:jsonb" json:"after"`

	Operator  string    `gorm:"type:varchar(100);not null" json:"operator"`
	CreatedAt time.Time `json:"created_at"`
}

func (RecordHistory) TableName() string {
	return "record_history"
}
