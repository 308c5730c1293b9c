package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	procapp "github.com/sparesuite/backend/internal/application/procurement"
	reportapp "github.com/sparesuite/backend/internal/application/report"
	"github.com/sparesuite/backend/internal/domain/procurement"
	"github.com/sparesuite/backend/internal/domain/shared"
)

// AnalyticsHandler handles purchase analytics and export endpoints
type AnalyticsHandler struct {
	BaseHandler
	analyticsService *reportapp.AnalyticsService
	exportService    *reportapp.ExportService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService *reportapp.AnalyticsService, exportService *reportapp.ExportService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		exportService:    exportService,
	}
}

func (h *AnalyticsHandler) resolveTenant(c *gin.Context) (uuid.UUID, bool) {
	ac := getActor(c)
	actor := procapp.Actor{UserID: ac.UserID, TenantID: ac.TenantID, IsAdmin: ac.IsAdmin()}
	tenantID, err := procapp.ResolveTenantScope(actor, c.Query("tenant_id"))
	if err != nil {
		h.HandleError(c, err)
		return uuid.Nil, false
	}
	return tenantID, true
}

// Stats handles GET /reports/purchase-stats
func (h *AnalyticsHandler) Stats(c *gin.Context) {
	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	stats, err := h.analyticsService.GetPurchaseStats(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Analytics handles GET /reports/purchase-analytics?period=month
func (h *AnalyticsHandler) Analytics(c *gin.Context) {
	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	period := c.Query("period")
	if period == "" {
		h.HandleError(c, shared.NewInvalidArgument("Query parameter period is required"))
		return
	}
	analytics, err := h.analyticsService.GetPurchaseAnalytics(c.Request.Context(), tenantID, period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, analytics)
}

// SupplierReport handles GET /reports/suppliers
func (h *AnalyticsHandler) SupplierReport(c *gin.Context) {
	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	startDate, endDate, err := parseWindow(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	reportResp, err := h.analyticsService.GetSupplierReport(c.Request.Context(), tenantID, startDate, endDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reportResp)
}

// CategorySpend handles GET /reports/category-spend
func (h *AnalyticsHandler) CategorySpend(c *gin.Context) {
	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	startDate, endDate, err := parseWindow(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	spend, err := h.analyticsService.GetCategorySpend(c.Request.Context(), tenantID, startDate, endDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, spend)
}

// Export handles POST /reports/export/:format
func (h *AnalyticsHandler) Export(c *gin.Context) {
	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	format := c.Param("format")
	params := procurement.OrderQueryParams{
		Status:     c.Query("status"),
		SupplierID: c.Query("supplier_id"),
		Category:   c.Query("category"),
		DateFrom:   c.Query("date_from"),
		DateTo:     c.Query("date_to"),
		Search:     c.Query("search"),
	}

	result, err := h.exportService.ExportOrders(c.Request.Context(), tenantID, format, params)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// parseWindow reads optional start_date/end_date query parameters. The end
// date is inclusive and pushed to end of day.
func parseWindow(c *gin.Context) (*time.Time, *time.Time, error) {
	var startDate, endDate *time.Time
	if raw := c.Query("start_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, nil, shared.NewInvalidArgument("Invalid start_date format, expected YYYY-MM-DD")
		}
		startDate = &t
	}
	if raw := c.Query("end_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, nil, shared.NewInvalidArgument("Invalid end_date format, expected YYYY-MM-DD")
		}
		eod := t.Add(24*time.Hour - time.Nanosecond)
		endDate = &eod
	}
	return startDate, endDate, nil
}
