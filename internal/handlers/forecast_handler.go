package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pedro17pedroo/SGST-sub000/internal/repository"
	"github.com/pedro17pedroo/SGST-sub000/internal/services"
)

// ForecastHandler handles HTTP requests for demand forecasts
type ForecastHandler struct {
	service *services.ForecastService
}

// NewForecastHandler creates a new ForecastHandler
func NewForecastHandler(service *services.ForecastService) *ForecastHandler {
	return &ForecastHandler{service: service}
}

// GenerateInput is the request body for a forecast run.
type GenerateInput struct {
	ProductID   uuid.UUID `json:"productId" binding:"required"`
	WarehouseID uuid.UUID `json:"warehouseId" binding:"required"`
	HorizonDays int       `json:"horizonDays"`
}

// Generate runs a forecast for one product and warehouse
// @Summary Generate demand forecast
// @Tags Forecasts
// @Accept json
// @Produce json
// @Param request body GenerateInput true "Forecast Request"
// @Success 201 {array} models.DemandForecast
// @Failure 400 {object} map[string]string
// @Router /api/v1/forecasts/generate [post]
func (h *ForecastHandler) Generate(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	var input GenerateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.HorizonDays == 0 {
		input.HorizonDays = 7
	}

	forecasts, err := h.service.Generate(c.Request.Context(), tenantID, input.ProductID, input.WarehouseID, input.HorizonDays)
	if err != nil {
		if errors.Is(err, services.ErrInvalidHorizon) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal error occurred"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"forecasts": forecasts, "total": len(forecasts)})
}

// Window returns the current forecast window for one product and warehouse
// @Summary Get forecast window
// @Tags Forecasts
// @Produce json
// @Param product_id query string true "Product ID"
// @Param warehouse_id query string true "Warehouse ID"
// @Success 200 {array} models.DemandForecast
// @Router /api/v1/forecasts [get]
func (h *ForecastHandler) Window(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product_id"})
		return
	}
	warehouseID, err := uuid.Parse(c.Query("warehouse_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid warehouse_id"})
		return
	}

	forecasts, err := h.service.Window(c.Request.Context(), tenantID, productID, warehouseID, 7)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal error occurred"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"forecasts": forecasts, "total": len(forecasts)})
}

// ActualInput records observed demand against a forecast.
type ActualInput struct {
	ActualDemand float64 `json:"actualDemand" binding:"min=0"`
}

// RecordActual scores a forecast against observed demand
// @Summary Record actual demand
// @Tags Forecasts
// @Accept json
// @Produce json
// @Param id path string true "Forecast ID"
// @Param request body ActualInput true "Actual Demand"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/forecasts/{id}/actual [post]
func (h *ForecastHandler) RecordActual(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid forecast id"})
		return
	}

	var input ActualInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.RecordActual(c.Request.Context(), id, input.ActualDemand); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "forecast not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal error occurred"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Actual demand recorded"})
}
