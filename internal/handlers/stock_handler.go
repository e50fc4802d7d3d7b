package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pedro17pedroo/SGST-sub000/internal/models"
	"github.com/pedro17pedroo/SGST-sub000/internal/repository"
)

// StockHandler handles HTTP requests for stock snapshots and movements
type StockHandler struct {
	repo repository.StockRepositoryInterface
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(repo repository.StockRepositoryInterface) *StockHandler {
	return &StockHandler{repo: repo}
}

// ListStockLevels lists current stock snapshots
// @Summary List stock levels
// @Tags Stock
// @Produce json
// @Param warehouse_id query string false "Warehouse ID"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {array} models.StockLevel
// @Router /api/v1/stock [get]
func (h *StockHandler) ListStockLevels(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	warehouseID, ok := optionalUUIDQuery(c, "warehouse_id")
	if !ok {
		return
	}
	limit, offset := pagination(c)

	levels, total, err := h.repo.ListStockLevels(c.Request.Context(), tenantID, warehouseID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal error occurred"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stockLevels": levels,
		"total":       total,
		"limit":       limit,
		"offset":      offset,
	})
}

// GetStockLevel retrieves the snapshot for one product and warehouse
// @Summary Get stock level
// @Tags Stock
// @Produce json
// @Param product_id query string true "Product ID"
// @Param warehouse_id query string true "Warehouse ID"
// @Success 200 {object} models.StockLevel
// @Failure 404 {object} map[string]string
// @Router /api/v1/stock/level [get]
func (h *StockHandler) GetStockLevel(c *gin.Context) {
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

	level, err := h.repo.GetStockLevel(c.Request.Context(), tenantID, productID, warehouseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "stock level not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal error occurred"})
		return
	}

	c.JSON(http.StatusOK, level)
}

// MovementInput is the request body for recording a stock movement.
type MovementInput struct {
	ProductID   uuid.UUID  `json:"productId" binding:"required"`
	WarehouseID uuid.UUID  `json:"warehouseId" binding:"required"`
	Direction   string     `json:"direction" binding:"required,oneof=inbound outbound"`
	Quantity    int        `json:"quantity" binding:"required,gt=0"`
	Reference   string     `json:"reference"`
	OccurredAt  *time.Time `json:"occurredAt"`
}

// RecordMovement records an inventory movement and adjusts the snapshot
// @Summary Record stock movement
// @Tags Stock
// @Accept json
// @Produce json
// @Param movement body MovementInput true "Movement"
// @Success 201 {object} models.StockMovement
// @Failure 400 {object} map[string]string
// @Router /api/v1/stock/movements [post]
func (h *StockHandler) RecordMovement(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	var input MovementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	occurredAt := time.Now()
	if input.OccurredAt != nil {
		occurredAt = *input.OccurredAt
	}

	movement := &models.StockMovement{
		TenantID:    tenantID,
		ProductID:   input.ProductID,
		WarehouseID: input.WarehouseID,
		Direction:   input.Direction,
		Quantity:    input.Quantity,
		Reference:   input.Reference,
		OccurredAt:  occurredAt,
	}

	if err := h.repo.RecordMovement(c.Request.Context(), movement); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal error occurred"})
		return
	}

	c.JSON(http.StatusCreated, movement)
}
