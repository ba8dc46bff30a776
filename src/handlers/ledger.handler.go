package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"stock-ledger/src/apperrors"
	"stock-ledger/src/auth"
	"stock-ledger/src/models"
	"stock-ledger/src/repositories"
	"stock-ledger/src/requests"
	"stock-ledger/src/services"
)

type LedgerHandler struct {
	Inbound  *services.InboundService
	Outbound *services.OutboundService
	Query    *services.QueryService
	Log      *zap.Logger
}

// writeError maps the engine error taxonomy to HTTP statuses.
func writeError(c *gin.Context, err error) {
	var (
		validationErr *apperrors.ValidationError
		capacityErr   *apperrors.CapacityError
	)

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": validationErr.Field})
	case errors.As(err, &capacityErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":            err.Error(),
			"remaining_qty":    capacityErr.RemainingQty,
			"remaining_weight": capacityErr.RemainingWeight,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func mustActor(c *gin.Context) (auth.Actor, bool) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": apperrors.ErrUnauthenticated.Error()})
	}
	return actor, ok
}

func toCreateInput(tenantID uuid.UUID, f requests.InboundFields) services.CreateInboundInput {
	return services.CreateInboundInput{
		TenantID:       tenantID,
		CategoryID:     f.CategoryID,
		BatchNo:        f.BatchNo,
		SerialNo:       f.SerialNo,
		VehicleID:      f.VehicleID,
		InboundDate:    f.InboundDate,
		ActualQty:      f.ActualQty,
		ActualWeight:   f.ActualWeight,
		BrokenBags:     f.BrokenBags,
		DirtyBags:      f.DirtyBags,
		WetBags:        f.WetBags,
		Shortage:       f.Shortage,
		ContentPercent: f.ContentPercent,
		BillOfLading:   f.BillOfLading,
		ContractNo:     f.ContractNo,
		LoadingMethod:  f.LoadingMethod,
		Remarks:        f.Remarks,
		ImageURL:       f.ImageURL,
	}
}

// ============ INBOUND ============

// CreateInbound - Record a receipt
func (h *LedgerHandler) CreateInbound(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req requests.CreateInboundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	movement, err := h.Inbound.Create(actor, toCreateInput(req.TenantID, req.InboundFields))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":     movement.ID,
		"status": movement.Status,
	})
}

// UpdateInbound - Edit a receipt
func (h *LedgerHandler) UpdateInbound(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req requests.UpdateInboundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := services.UpdateInboundInput{
		CategoryID:     req.CategoryID,
		BatchNo:        req.BatchNo,
		SerialNo:       req.SerialNo,
		VehicleID:      req.VehicleID,
		InboundDate:    req.InboundDate,
		ActualQty:      req.ActualQty,
		ActualWeight:   req.ActualWeight,
		BrokenBags:     req.BrokenBags,
		DirtyBags:      req.DirtyBags,
		WetBags:        req.WetBags,
		Shortage:       req.Shortage,
		ContentPercent: req.ContentPercent,
		BillOfLading:   req.BillOfLading,
		ContractNo:     req.ContractNo,
		LoadingMethod:  req.LoadingMethod,
		Remarks:        req.Remarks,
		ImageURL:       req.ImageURL,
	}

	movement, err := h.Inbound.Update(actor, req.TenantID, id, in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     movement.ID,
		"status": movement.Status,
	})
}

// ApproveInbound - Admin approval
func (h *LedgerHandler) ApproveInbound(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	tenantID, err := uuid.Parse(c.Query("tenant_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tenant_id"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	already, err := h.Inbound.Approve(actor, tenantID, id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"approved": true, "already": already})
}

// RejectInbound - Admin rejection
func (h *LedgerHandler) RejectInbound(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	tenantID, err := uuid.Parse(c.Query("tenant_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tenant_id"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.Inbound.Reject(actor, tenantID, id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rejected": true})
}

// ListInbound - Filtered listing with pagination
func (h *LedgerHandler) ListInbound(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	tenantID, err := uuid.Parse(c.Query("tenant_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tenant_id"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	filter := repositories.InboundFilter{
		Status:  c.Query("status"),
		Batch:   c.Query("batch"),
		Vehicle: c.Query("vehicle"),
		Source:  c.Query("source"),
	}
	if fromStr := c.Query("from_date"); fromStr != "" {
		filter.DateFrom, _ = time.Parse("2006-01-02", fromStr)
	}
	if toStr := c.Query("to_date"); toStr != "" {
		toDate, _ := time.Parse("2006-01-02", toStr)
		filter.DateTo = time.Date(toDate.Year(), toDate.Month(), toDate.Day(), 23, 59, 59, 0, toDate.Location())
	}

	movements, total, err := h.Inbound.List(actor, tenantID, filter, page, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	totalPages := (int(total) + limit - 1) / limit
	c.JSON(http.StatusOK, gin.H{
		"data": movements,
		"meta": gin.H{
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": totalPages,
		},
	})
}

// GetInbound - Load one receipt
func (h *LedgerHandler) GetInbound(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	tenantID, err := uuid.Parse(c.Query("tenant_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tenant_id"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	movement, err := h.Inbound.Get(actor, tenantID, id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, movement)
}

// ImportInbound - Admin batch import of historical receipts
func (h *LedgerHandler) ImportInbound(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req requests.ImportInboundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows := make([]services.CreateInboundInput, 0, len(req.Records))
	for _, record := range req.Records {
		rows = append(rows, toCreateInput(req.TenantID, record))
	}

	ids, err := h.Inbound.Import(actor, req.TenantID, rows)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"imported": len(ids), "ids": ids})
}

// ============ OUTBOUND ============

// CreateOutbound - Allocate a shipment against a lot
func (h *LedgerHandler) CreateOutbound(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req requests.CreateOutboundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outboundDate := time.Now()
	if req.OutboundDate != nil {
		outboundDate = *req.OutboundDate
	}

	result, err := h.Outbound.Create(actor, services.CreateOutboundInput{
		TenantID:       req.TenantID,
		InboundID:      req.InboundID,
		OutboundQty:    req.OutboundQty,
		OutboundWeight: req.OutboundWeight,
		OutboundDate:   outboundDate,
		Remarks:        req.Remarks,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":               result.Movement.ID,
		"remaining_qty":    result.RemainingQty,
		"remaining_weight": result.RemainingWeight,
	})
}

// ============ READ VIEWS ============

func optionalCategoryID(c *gin.Context) (*uint, bool) {
	categoryStr := c.Query("category_id")
	if categoryStr == "" {
		return nil, true
	}
	parsed, err := strconv.ParseUint(categoryStr, 10, 32)
	if err != nil {
		return nil, false
	}
	categoryID := uint(parsed)
	return &categoryID, true
}

// ListAvailable - Lots with remaining stock, with integrity warnings
func (h *LedgerHandler) ListAvailable(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Query("tenant_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tenant_id"})
		return
	}
	categoryID, ok := optionalCategoryID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
		return
	}

	lots, report := h.Query.ListAvailable(tenantID, categoryID)
	c.JSON(http.StatusOK, gin.H{
		"data":     lots,
		"warnings": report.Warnings,
		"degraded": report.Degraded,
		"trace_id": report.TraceID,
	})
}

// GetLedger - Lots with their shipments and remaining figures
func (h *LedgerHandler) GetLedger(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Query("tenant_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tenant_id"})
		return
	}
	categoryID, ok := optionalCategoryID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
		return
	}

	entries, report := h.Query.Ledger(tenantID, categoryID)
	c.JSON(http.StatusOK, gin.H{
		"data":     entries,
		"warnings": report.Warnings,
		"degraded": report.Degraded,
		"trace_id": report.TraceID,
	})
}

// GetBalance - Balance rows per tenant+category+batch
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Query("tenant_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tenant_id"})
		return
	}
	categoryID, ok := optionalCategoryID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
		return
	}

	balances, err := h.Query.Balances(tenantID, categoryID, c.Query("batch_no"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": balances})
}

// GetHistory - Audit trail of one record
func (h *LedgerHandler) GetHistory(c *gin.Context) {
	recordType := models.RecordType(c.Query("record_type"))
	if recordType != models.RecordTypeInbound && recordType != models.RecordTypeOutbound {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record_type"})
		return
	}

	recordID, err := uuid.Parse(c.Query("record_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record_id"})
		return
	}

	entries, err := h.Query.History(recordType, recordID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// GetStats - Tenant-wide totals
func (h *LedgerHandler) GetStats(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Query("tenant_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tenant_id"})
		return
	}

	stats, err := h.Query.Stats(tenantID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
