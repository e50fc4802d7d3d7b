package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pedro17pedroo/SGST-sub000/internal/models"
	"github.com/pedro17pedroo/SGST-sub000/internal/repository"
	"github.com/pedro17pedroo/SGST-sub000/internal/services"
)

// OrderHandler handles HTTP requests for purchase orders and approvals
type OrderHandler struct {
	approvals     *services.ApprovalService
	replenishment *services.ReplenishmentService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(approvals *services.ApprovalService, replenishment *services.ReplenishmentService) *OrderHandler {
	return &OrderHandler{
		approvals:     approvals,
		replenishment: replenishment,
	}
}

// orderErrorStatus maps service errors to HTTP statuses.
func orderErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrWorkflowNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrApprovalNotFound),
		errors.Is(err, services.ErrOrderNotPending),
		errors.Is(err, services.ErrOrderNotDraft),
		errors.Is(err, services.ErrOrderNotCancellable),
		errors.Is(err, services.ErrOrderNotApproved),
		errors.Is(err, services.ErrOrderNotReceivable),
		errors.Is(err, repository.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrNoMatchingWorkflow),
		errors.Is(err, services.ErrInvalidDecision),
		errors.Is(err, services.ErrEmptyOrder):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respondOrderError(c *gin.Context, err error) {
	status := orderErrorStatus(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "An internal error occurred"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// GenerateOrdersInput scopes an order generation run.
type GenerateOrdersInput struct {
	WarehouseID *uuid.UUID `json:"warehouseId"`
}

// GenerateOrders creates draft orders for all high and critical alerts
// @Summary Generate replenishment orders
// @Tags Orders
// @Accept json
// @Produce json
// @Param request body GenerateOrdersInput false "Scope"
// @Success 201 {array} models.PurchaseOrder
// @Router /api/v1/orders/generate [post]
func (h *OrderHandler) GenerateOrders(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	requestedBy := currentUserID(c)

	var input GenerateOrdersInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	orders, err := h.replenishment.GenerateOrders(c.Request.Context(), tenantID, input.WarehouseID, requestedBy)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal error occurred"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"orders": orders, "total": len(orders)})
}

// OrderLineInput is one requested line on a manually created order.
type OrderLineInput struct {
	ProductID uuid.UUID       `json:"productId" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unitPrice" binding:"required"`
}

// OrderInput describes an operator-created draft order.
type OrderInput struct {
	WarehouseID uuid.UUID        `json:"warehouseId" binding:"required"`
	SupplierID  *uuid.UUID       `json:"supplierId"`
	Department  string           `json:"department"`
	Priority    string           `json:"priority" binding:"omitempty,oneof=normal high urgent"`
	Notes       string           `json:"notes"`
	Items       []OrderLineInput `json:"items" binding:"required,min=1,dive"`
}

// CreateOrder creates a manual draft purchase order
// @Summary Create a draft purchase order
// @Tags Orders
// @Accept json
// @Produce json
// @Param request body OrderInput true "Order"
// @Success 201 {object} models.PurchaseOrder
// @Failure 400 {object} map[string]string
// @Router /api/v1/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	var input OrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order := &models.PurchaseOrder{
		TenantID:    tenantID,
		WarehouseID: input.WarehouseID,
		SupplierID:  input.SupplierID,
		Department:  input.Department,
		Priority:    input.Priority,
		Notes:       input.Notes,
		RequestedBy: currentUserID(c),
	}
	for _, line := range input.Items {
		order.Items = append(order.Items, models.PurchaseOrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}

	created, err := h.replenishment.CreateManualOrder(c.Request.Context(), order)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListOrders lists purchase orders
// @Summary List purchase orders
// @Tags Orders
// @Produce json
// @Param status query string false "Status filter"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {array} models.PurchaseOrder
// @Router /api/v1/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	limit, offset := pagination(c)

	orders, total, err := h.approvals.ListOrders(c.Request.Context(), tenantID, c.Query("status"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal error occurred"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetOrder retrieves a purchase order with items and approval history
// @Summary Get purchase order
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} models.PurchaseOrder
// @Failure 404 {object} map[string]string
// @Router /api/v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := h.approvals.GetOrder(c.Request.Context(), tenantID, id)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// SubmitOrder submits a draft order for approval
// @Summary Submit order for approval
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} models.PurchaseOrder
// @Failure 409 {object} map[string]string
// @Router /api/v1/orders/{id}/submit [post]
func (h *OrderHandler) SubmitOrder(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := h.approvals.SubmitOrder(c.Request.Context(), tenantID, id)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// DecisionInput is the request body for an approval decision.
type DecisionInput struct {
	Decision string `json:"decision" binding:"required"`
	Comments string `json:"comments"`
}

// SubmitDecision records an approver's decision on an order
// @Summary Submit approval decision
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body DecisionInput true "Decision"
// @Success 200 {object} models.PurchaseOrder
// @Failure 409 {object} map[string]string
// @Router /api/v1/orders/{id}/decision [post]
func (h *OrderHandler) SubmitDecision(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	approverID := currentUserID(c)
	if approverID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user identity is required"})
		return
	}

	var input DecisionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.approvals.SubmitDecision(c.Request.Context(), tenantID, id, *approverID, input.Decision, input.Comments)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// CancelOrder cancels a pre-ordered purchase order
// @Summary Cancel purchase order
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} models.PurchaseOrder
// @Failure 409 {object} map[string]string
// @Router /api/v1/orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := h.approvals.CancelOrder(c.Request.Context(), tenantID, id)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// MarkOrdered records that an approved order was placed with the supplier
// @Summary Mark order as placed
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} models.PurchaseOrder
// @Failure 409 {object} map[string]string
// @Router /api/v1/orders/{id}/mark-ordered [post]
func (h *OrderHandler) MarkOrdered(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := h.approvals.MarkOrdered(c.Request.Context(), tenantID, id)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// ReceiveInput lists the received quantities per order line.
type ReceiveInput struct {
	Items []services.ItemReceipt `json:"items" binding:"required,min=1,dive"`
}

// ReceiveItems records received quantities and books inbound stock
// @Summary Receive order items
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body ReceiveInput true "Receipts"
// @Success 200 {object} models.PurchaseOrder
// @Failure 409 {object} map[string]string
// @Router /api/v1/orders/{id}/receive [post]
func (h *OrderHandler) ReceiveItems(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var input ReceiveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.approvals.ReceiveItems(c.Request.Context(), tenantID, id, input.Items)
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// ListPendingApprovals lists the approvals awaiting the current user
// @Summary List pending approvals
// @Tags Approvals
// @Produce json
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Approval
// @Router /api/v1/approvals/pending [get]
func (h *OrderHandler) ListPendingApprovals(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	approverID := currentUserID(c)
	if approverID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user identity is required"})
		return
	}
	limit, offset := pagination(c)

	approvals, total, err := h.approvals.ListPendingApprovals(c.Request.Context(), tenantID, *approverID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal error occurred"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"approvals": approvals,
		"total":     total,
		"limit":     limit,
		"offset":    offset,
	})
}

// currentUserID parses the authenticated user's ID from the request context.
func currentUserID(c *gin.Context) *uuid.UUID {
	id, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		return nil
	}
	return &id
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
