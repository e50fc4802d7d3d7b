package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pedro17pedroo/SGST-sub000/internal/models"
	"github.com/pedro17pedroo/SGST-sub000/internal/services"
)

// RuleHandler handles HTTP requests for replenishment rules
type RuleHandler struct {
	service *services.ReplenishmentService
}

// NewRuleHandler creates a new RuleHandler
func NewRuleHandler(service *services.ReplenishmentService) *RuleHandler {
	return &RuleHandler{service: service}
}

// RuleInput is the request body for creating or updating a rule.
type RuleInput struct {
	ProductID             uuid.UUID  `json:"productId" binding:"required"`
	WarehouseID           uuid.UUID  `json:"warehouseId" binding:"required"`
	MinLevel              int        `json:"minLevel"`
	MaxLevel              int        `json:"maxLevel" binding:"required"`
	ReorderPoint          int        `json:"reorderPoint"`
	ReplenishQuantity     int        `json:"replenishQuantity"`
	EconomicOrderQuantity int        `json:"economicOrderQuantity"`
	LeadTimeDays          int        `json:"leadTimeDays" binding:"required"`
	SafetyStock           int        `json:"safetyStock"`
	ABCClassification     string     `json:"abcClassification"`
	VelocityCategory      string     `json:"velocityCategory"`
	UnitCost              string     `json:"unitCost"`
	PreferredSupplierID   *uuid.UUID `json:"preferredSupplierId"`
}

func (in *RuleInput) toModel(tenantID string) (*models.ReplenishmentRule, error) {
	unitCost := decimal.Zero
	if in.UnitCost != "" {
		var err error
		unitCost, err = decimal.NewFromString(in.UnitCost)
		if err != nil {
			return nil, err
		}
	}
	abc := in.ABCClassification
	if abc == "" {
		abc = models.ABCClassC
	}
	velocity := in.VelocityCategory
	if velocity == "" {
		velocity = models.VelocityMedium
	}
	return &models.ReplenishmentRule{
		TenantID:              tenantID,
		ProductID:             in.ProductID,
		WarehouseID:           in.WarehouseID,
		MinLevel:              in.MinLevel,
		MaxLevel:              in.MaxLevel,
		ReorderPoint:          in.ReorderPoint,
		ReplenishQuantity:     in.ReplenishQuantity,
		EconomicOrderQuantity: in.EconomicOrderQuantity,
		LeadTimeDays:          in.LeadTimeDays,
		SafetyStock:           in.SafetyStock,
		ABCClassification:     abc,
		VelocityCategory:      velocity,
		UnitCost:              unitCost,
		PreferredSupplierID:   in.PreferredSupplierID,
	}, nil
}

// CreateRule creates a replenishment rule
// @Summary Create replenishment rule
// @Tags Rules
// @Accept json
// @Produce json
// @Param rule body RuleInput true "Rule"
// @Success 201 {object} models.ReplenishmentRule
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/rules [post]
func (h *RuleHandler) CreateRule(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	var input RuleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule, err := input.toModel(tenantID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid unitCost"})
		return
	}

	if err := h.service.CreateRule(c.Request.Context(), rule); err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidRule):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrDuplicateRule):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal error occurred"})
		}
		return
	}

	c.JSON(http.StatusCreated, rule)
}

// GetRule retrieves a rule by ID
// @Summary Get replenishment rule
// @Tags Rules
// @Produce json
// @Param id path string true "Rule ID"
// @Success 200 {object} models.ReplenishmentRule
// @Failure 404 {object} map[string]string
// @Router /api/v1/rules/{id} [get]
func (h *RuleHandler) GetRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rule id"})
		return
	}

	rule, err := h.service.GetRule(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrRuleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal error occurred"})
		return
	}

	c.JSON(http.StatusOK, rule)
}

// ListRules lists active rules
// @Summary List replenishment rules
// @Tags Rules
// @Produce json
// @Param warehouse_id query string false "Warehouse ID"
// @Success 200 {array} models.ReplenishmentRule
// @Router /api/v1/rules [get]
func (h *RuleHandler) ListRules(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	warehouseID, ok := optionalUUIDQuery(c, "warehouse_id")
	if !ok {
		return
	}

	rules, err := h.service.ListRules(c.Request.Context(), tenantID, warehouseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal error occurred"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rules": rules, "total": len(rules)})
}

// UpdateRule updates a rule's policy values
// @Summary Update replenishment rule
// @Tags Rules
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param rule body RuleInput true "Rule"
// @Success 200 {object} models.ReplenishmentRule
// @Failure 404 {object} map[string]string
// @Router /api/v1/rules/{id} [put]
func (h *RuleHandler) UpdateRule(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rule id"})
		return
	}

	var input RuleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	update, err := input.toModel(tenantID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid unitCost"})
		return
	}

	rule, err := h.service.UpdateRule(c.Request.Context(), id, update)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRuleNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, models.ErrInvalidRule):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal error occurred"})
		}
		return
	}

	c.JSON(http.StatusOK, rule)
}

// DeactivateRule disables a rule
// @Summary Deactivate replenishment rule
// @Tags Rules
// @Produce json
// @Param id path string true "Rule ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/rules/{id} [delete]
func (h *RuleHandler) DeactivateRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rule id"})
		return
	}

	if err := h.service.DeactivateRule(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrRuleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal error occurred"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rule deactivated"})
}

// optionalUUIDQuery parses an optional UUID query parameter, writing a 400
// response and returning ok=false when the value is present but malformed.
func optionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	value := c.Query(name)
	if value == "" {
		return nil, true
	}
	id, err := uuid.Parse(value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return nil, false
	}
	return &id, true
}
