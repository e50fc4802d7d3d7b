package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/pedro17pedroo/SGST-sub000/internal/models"
	"github.com/pedro17pedroo/SGST-sub000/internal/services"
)

// WorkflowHandler handles HTTP requests for approval workflows
type WorkflowHandler struct {
	service *services.ApprovalService
}

// NewWorkflowHandler creates a new WorkflowHandler
func NewWorkflowHandler(service *services.ApprovalService) *WorkflowHandler {
	return &WorkflowHandler{service: service}
}

// WorkflowInput is the request body for creating or updating a workflow.
type WorkflowInput struct {
	Name        string                `json:"name" binding:"required"`
	DisplayName string                `json:"displayName" binding:"required"`
	Description string                `json:"description"`
	Rules       []models.WorkflowRule `json:"rules" binding:"required"`
	IsActive    *bool                 `json:"isActive"`
}

func (in *WorkflowInput) toModel(tenantID string) (*models.ApprovalWorkflow, error) {
	rules, err := json.Marshal(in.Rules)
	if err != nil {
		return nil, err
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return &models.ApprovalWorkflow{
		TenantID:    tenantID,
		Name:        in.Name,
		DisplayName: in.DisplayName,
		Description: in.Description,
		Rules:       datatypes.JSON(rules),
		IsActive:    active,
	}, nil
}

// CreateWorkflow creates an approval workflow
// @Summary Create approval workflow
// @Tags Workflows
// @Accept json
// @Produce json
// @Param workflow body WorkflowInput true "Workflow"
// @Success 201 {object} models.ApprovalWorkflow
// @Failure 400 {object} map[string]string
// @Router /api/v1/workflows [post]
func (h *WorkflowHandler) CreateWorkflow(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	var input WorkflowInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	workflow, err := input.toModel(tenantID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.CreateWorkflow(c.Request.Context(), workflow); err != nil {
		if errors.Is(err, models.ErrInvalidWorkflow) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal error occurred"})
		return
	}

	c.JSON(http.StatusCreated, workflow)
}

// GetWorkflow retrieves a workflow by ID
// @Summary Get approval workflow
// @Tags Workflows
// @Produce json
// @Param id path string true "Workflow ID"
// @Success 200 {object} models.ApprovalWorkflow
// @Failure 404 {object} map[string]string
// @Router /api/v1/workflows/{id} [get]
func (h *WorkflowHandler) GetWorkflow(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workflow id"})
		return
	}

	workflow, err := h.service.GetWorkflow(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrWorkflowNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal error occurred"})
		return
	}

	c.JSON(http.StatusOK, workflow)
}

// ListWorkflows lists the active workflows visible to the tenant
// @Summary List approval workflows
// @Tags Workflows
// @Produce json
// @Success 200 {array} models.ApprovalWorkflow
// @Router /api/v1/workflows [get]
func (h *WorkflowHandler) ListWorkflows(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	workflows, err := h.service.ListWorkflows(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal error occurred"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"workflows": workflows, "total": len(workflows)})
}

// UpdateWorkflow updates a workflow's rules and metadata
// @Summary Update approval workflow
// @Tags Workflows
// @Accept json
// @Produce json
// @Param id path string true "Workflow ID"
// @Param workflow body WorkflowInput true "Workflow"
// @Success 200 {object} models.ApprovalWorkflow
// @Failure 404 {object} map[string]string
// @Router /api/v1/workflows/{id} [put]
func (h *WorkflowHandler) UpdateWorkflow(c *gin.Context) {
	tenantID := c.GetString("tenant_id")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workflow id"})
		return
	}

	var input WorkflowInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update, err := input.toModel(tenantID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	workflow, err := h.service.UpdateWorkflow(c.Request.Context(), id, update)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrWorkflowNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, models.ErrInvalidWorkflow):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal error occurred"})
		}
		return
	}

	c.JSON(http.StatusOK, workflow)
}
