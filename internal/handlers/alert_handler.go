package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pedro17pedroo/SGST-sub000/internal/services"
)

// AlertHandler handles HTTP requests for stock-out risk alerts
type AlertHandler struct {
	service *services.RiskService
}

// NewAlertHandler creates a new AlertHandler
func NewAlertHandler(service *services.RiskService) *AlertHandler {
	return &AlertHandler{service: service}
}

// ListAlerts sweeps the active rules and returns current stock-out alerts.
// Alerts are computed on demand, not stored, so every call reflects live
// inventory and the latest forecasts.
// @Summary List stock-out alerts
// @Tags Alerts
// @Produce json
// @Param warehouse_id query string false "Warehouse ID"
// @Success 200 {array} models.StockoutAlert
// @Router /api/v1/alerts [get]
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	warehouseID, ok := optionalUUIDQuery(c, "warehouse_id")
	if !ok {
		return
	}

	alerts, err := h.service.Sweep(c.Request.Context(), tenantID, warehouseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal error occurred"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "total": len(alerts)})
}
