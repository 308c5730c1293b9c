package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sparesuite/backend/internal/domain/procurement"
)

// CreateOrderItemInput is one line item in a create request
type CreateOrderItemInput struct {
	ItemName string
	Category string
	Unit     string
	Quantity decimal.Decimal
	Rate     decimal.Decimal
}

// CreateOrderRequest creates a new draft purchase order. Totals supplied by
// the client are ignored; the aggregate recomputes them.
type CreateOrderRequest struct {
	SupplierID       uuid.UUID
	SupplierName     string
	SupplierCategory string
	Items            []CreateOrderItemInput
	Discount         *decimal.Decimal
	TaxRate          *decimal.Decimal
	Freight          *decimal.Decimal
	Packing          *decimal.Decimal
	Other            *decimal.Decimal
	Rounding         *decimal.Decimal
	Notes            string
	CreatedBy        *uuid.UUID
}

// UpdateOrderRequest mutates a draft order and/or moves its status
type UpdateOrderRequest struct {
	Status   *string
	Discount *decimal.Decimal
	TaxRate  *decimal.Decimal
	Freight  *decimal.Decimal
	Packing  *decimal.Decimal
	Other    *decimal.Decimal
	Rounding *decimal.Decimal
	Notes    *string
	Items    []CreateOrderItemInput // nil = keep, non-nil = replace (draft only)
}

// BulkUpdateRequest applies one patch to a set of orders
type BulkUpdateRequest struct {
	OrderIDs      []uuid.UUID
	Status        *string
	PaymentStatus *string
	Notes         *string
}

// OrderItemResponse is a line item in API responses
type OrderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ItemName  string          `json:"item_name"`
	Category  string          `json:"category"`
	Unit      string          `json:"unit"`
	Quantity  decimal.Decimal `json:"quantity"`
	Rate      decimal.Decimal `json:"rate"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderResponse is the full order view
type OrderResponse struct {
	ID               uuid.UUID           `json:"id"`
	TenantID         uuid.UUID           `json:"tenant_id"`
	OrderNumber      string              `json:"order_number"`
	SupplierID       uuid.UUID           `json:"supplier_id"`
	SupplierName     string              `json:"supplier_name"`
	SupplierCategory string              `json:"supplier_category,omitempty"`
	Items            []OrderItemResponse `json:"items"`
	Subtotal         decimal.Decimal     `json:"subtotal"`
	DiscountAmount   decimal.Decimal     `json:"discount_amount"`
	TaxableAmount    decimal.Decimal     `json:"taxable_amount"`
	TaxRate          decimal.Decimal     `json:"tax_rate"`
	TaxAmount        decimal.Decimal     `json:"tax_amount"`
	FreightCharges   decimal.Decimal     `json:"freight_charges"`
	PackingCharges   decimal.Decimal     `json:"packing_charges"`
	OtherCharges     decimal.Decimal     `json:"other_charges"`
	RoundingAdj      decimal.Decimal     `json:"rounding_adjustment"`
	GrandTotal       decimal.Decimal     `json:"grand_total"`
	Status           string              `json:"status"`
	PaymentStatus    string              `json:"payment_status"`
	OrderDate        time.Time           `json:"order_date"`
	Notes            string              `json:"notes,omitempty"`
	ReceivedAt       *time.Time          `json:"received_at,omitempty"`
	CancelledAt      *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason     string              `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
	Version          int                 `json:"version"`
}

// ToOrderResponse converts the aggregate to its response shape
func ToOrderResponse(order *procurement.PurchaseOrder) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			ID:        item.ID,
			ItemName:  item.ItemName,
			Category:  item.Category,
			Unit:      item.Unit,
			Quantity:  item.Quantity,
			Rate:      item.Rate,
			LineTotal: item.LineTotal,
		}
	}
	return OrderResponse{
		ID:               order.ID,
		TenantID:         order.TenantID,
		OrderNumber:      order.OrderNumber,
		SupplierID:       order.SupplierID,
		SupplierName:     order.SupplierName,
		SupplierCategory: order.SupplierCategory,
		Items:            items,
		Subtotal:         order.Subtotal,
		DiscountAmount:   order.DiscountAmount,
		TaxableAmount:    order.TaxableAmount,
		TaxRate:          order.TaxRate,
		TaxAmount:        order.TaxAmount,
		FreightCharges:   order.FreightCharges,
		PackingCharges:   order.PackingCharges,
		OtherCharges:     order.OtherCharges,
		RoundingAdj:      order.RoundingAdj,
		GrandTotal:       order.GrandTotal,
		Status:           order.Status.String(),
		PaymentStatus:    order.PaymentStatus.String(),
		OrderDate:        order.OrderDate,
		Notes:            order.Notes,
		ReceivedAt:       order.ReceivedAt,
		CancelledAt:      order.CancelledAt,
		CancelReason:     order.CancelReason,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
		Version:          order.Version,
	}
}

// ToOrderResponses converts a slice of aggregates
func ToOrderResponses(orders []procurement.PurchaseOrder) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}
	return responses
}
