package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	procapp "github.com/sparesuite/backend/internal/application/procurement"
	"github.com/sparesuite/backend/internal/domain/procurement"
)

// PurchaseOrderHandler handles purchase order API endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orderService *procapp.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orderService *procapp.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orderService: orderService}
}

// CreateOrderItemInput is an item line in the create request body
type CreateOrderItemInput struct {
	ItemName string  `json:"item_name" binding:"required,min=1,max=200"`
	Category string  `json:"category" binding:"required,min=1,max=100"`
	Unit     string  `json:"unit" binding:"required,min=1,max=20"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Rate     float64 `json:"rate" binding:"required,gte=0"`
}

// CreateOrderRequest is the request body for creating a purchase order
type CreateOrderRequest struct {
	SupplierID       string                 `json:"supplier_id" binding:"required,uuid"`
	SupplierName     string                 `json:"supplier_name" binding:"max=200"` // empty = resolve from supplier store
	SupplierCategory string                 `json:"supplier_category" binding:"max=100"`
	Items            []CreateOrderItemInput `json:"items" binding:"required,min=1,dive"`
	Discount         *float64               `json:"discount"`
	TaxRate          *float64               `json:"tax_rate"`
	Freight          *float64               `json:"freight_charges"`
	Packing          *float64               `json:"packing_charges"`
	Other            *float64               `json:"other_charges"`
	Rounding         *float64               `json:"rounding_adjustment"`
	Notes            string                 `json:"notes" binding:"max=2000"`
}

// UpdateOrderRequest is the request body for updating a purchase order
type UpdateOrderRequest struct {
	Status   *string                `json:"status"`
	Items    []CreateOrderItemInput `json:"items" binding:"omitempty,min=1,dive"`
	Discount *float64               `json:"discount"`
	TaxRate  *float64               `json:"tax_rate"`
	Freight  *float64               `json:"freight_charges"`
	Packing  *float64               `json:"packing_charges"`
	Other    *float64               `json:"other_charges"`
	Rounding *float64               `json:"rounding_adjustment"`
	Notes    *string                `json:"notes"`
}

// StatusRequest is the request body for a status change
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CancelRequest is the request body for cancelling an order
type CancelRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// BulkUpdateRequest is the request body for bulk updating orders
type BulkUpdateRequest struct {
	OrderIDs      []string `json:"order_ids" binding:"required,dive,uuid"`
	Status        *string  `json:"status"`
	PaymentStatus *string  `json:"payment_status"`
	Notes         *string  `json:"notes"`
}

// resolveTenant extracts the caller and resolves the tenant the request
// operates on
func (h *PurchaseOrderHandler) resolveTenant(c *gin.Context) (uuid.UUID, bool) {
	ac := getActor(c)
	actor := procapp.Actor{UserID: ac.UserID, TenantID: ac.TenantID, IsAdmin: ac.IsAdmin()}
	tenantID, err := procapp.ResolveTenantScope(actor, c.Query("tenant_id"))
	if err != nil {
		h.HandleError(c, err)
		return uuid.Nil, false
	}
	return tenantID, true
}

// Create handles POST /purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID format")
		return
	}

	items := make([]procapp.CreateOrderItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = procapp.CreateOrderItemInput{
			ItemName: item.ItemName,
			Category: item.Category,
			Unit:     item.Unit,
			Quantity: decimal.NewFromFloat(item.Quantity),
			Rate:     decimal.NewFromFloat(item.Rate),
		}
	}

	userID := getActor(c).UserID
	appReq := procapp.CreateOrderRequest{
		SupplierID:       supplierID,
		SupplierName:     req.SupplierName,
		SupplierCategory: req.SupplierCategory,
		Items:            items,
		Discount:         toDecimalPtr(req.Discount),
		TaxRate:          toDecimalPtr(req.TaxRate),
		Freight:          toDecimalPtr(req.Freight),
		Packing:          toDecimalPtr(req.Packing),
		Other:            toDecimalPtr(req.Other),
		Rounding:         toDecimalPtr(req.Rounding),
		Notes:            req.Notes,
		CreatedBy:        &userID,
	}

	order, err := h.orderService.Create(c.Request.Context(), tenantID, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// List handles GET /purchase-orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	params := procurement.OrderQueryParams{
		Status:     c.Query("status"),
		SupplierID: c.Query("supplier_id"),
		Category:   c.Query("category"),
		DateFrom:   c.Query("date_from"),
		DateTo:     c.Query("date_to"),
		Search:     c.Query("search"),
		Page:       atoiOrZero(c.Query("page")),
		Limit:      atoiOrZero(c.Query("limit")),
	}

	page, err := h.orderService.List(c.Request.Context(), tenantID, params)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get handles GET /purchase-orders/:id
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Update handles PUT /purchase-orders/:id
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var items []procapp.CreateOrderItemInput
	if req.Items != nil {
		items = make([]procapp.CreateOrderItemInput, len(req.Items))
		for i, item := range req.Items {
			items[i] = procapp.CreateOrderItemInput{
				ItemName: item.ItemName,
				Category: item.Category,
				Unit:     item.Unit,
				Quantity: decimal.NewFromFloat(item.Quantity),
				Rate:     decimal.NewFromFloat(item.Rate),
			}
		}
	}

	appReq := procapp.UpdateOrderRequest{
		Status:   req.Status,
		Items:    items,
		Discount: toDecimalPtr(req.Discount),
		TaxRate:  toDecimalPtr(req.TaxRate),
		Freight:  toDecimalPtr(req.Freight),
		Packing:  toDecimalPtr(req.Packing),
		Other:    toDecimalPtr(req.Other),
		Rounding: toDecimalPtr(req.Rounding),
		Notes:    req.Notes,
	}

	order, err := h.orderService.Update(c.Request.Context(), tenantID, orderID, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdateStatus handles PATCH /purchase-orders/:id/status
func (h *PurchaseOrderHandler) UpdateStatus(c *gin.Context) {
	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), tenantID, orderID, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdatePaymentStatus handles PUT /purchase-orders/:id/payment-status
func (h *PurchaseOrderHandler) UpdatePaymentStatus(c *gin.Context) {
	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.SetPaymentStatus(c.Request.Context(), tenantID, orderID, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel handles POST /purchase-orders/:id/cancel
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), tenantID, orderID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Delete handles DELETE /purchase-orders/:id
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), tenantID, orderID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// BulkUpdate handles POST /purchase-orders/bulk-update
func (h *PurchaseOrderHandler) BulkUpdate(c *gin.Context) {
	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	var req BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	orderIDs := make([]uuid.UUID, len(req.OrderIDs))
	for i, raw := range req.OrderIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid order ID format")
			return
		}
		orderIDs[i] = id
	}

	result, err := h.orderService.BulkUpdate(c.Request.Context(), tenantID, procapp.BulkUpdateRequest{
		OrderIDs:      orderIDs,
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
		Notes:         req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func toDecimalPtr(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}

func atoiOrZero(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
