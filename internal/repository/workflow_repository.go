package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pedro17pedroo/SGST-sub000/internal/models"
)

// WorkflowRepository handles database operations for approval workflows
type WorkflowRepository struct {
	db *gorm.DB
}

// NewWorkflowRepository creates a new WorkflowRepository
func NewWorkflowRepository(db *gorm.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

// CreateWorkflow creates a new workflow
func (r *WorkflowRepository) CreateWorkflow(ctx context.Context, workflow *models.ApprovalWorkflow) error {
	return r.db.WithContext(ctx).Create(workflow).Error
}

// GetWorkflowByID retrieves a workflow by ID
func (r *WorkflowRepository) GetWorkflowByID(ctx context.Context, id uuid.UUID) (*models.ApprovalWorkflow, error) {
	var workflow models.ApprovalWorkflow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&workflow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &workflow, nil
}

// ListActiveWorkflows retrieves active workflows for a tenant, including
// system workflows shared across tenants. Tenant-specific workflows sort
// first so they take precedence during matching.
func (r *WorkflowRepository) ListActiveWorkflows(ctx context.Context, tenantID string) ([]models.ApprovalWorkflow, error) {
	var workflows []models.ApprovalWorkflow
	err := r.db.WithContext(ctx).
		Where("(tenant_id = ? OR tenant_id = 'system') AND is_active = true", tenantID).
		Order("CASE WHEN tenant_id = 'system' THEN 1 ELSE 0 END, created_at ASC").
		Find(&workflows).Error
	return workflows, err
}

// UpdateWorkflow updates a workflow's configuration
func (r *WorkflowRepository) UpdateWorkflow(ctx context.Context, workflow *models.ApprovalWorkflow) error {
	result := r.db.WithContext(ctx).
		Model(workflow).
		Select("display_name", "description", "rules", "is_active", "updated_at").
		Updates(workflow)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
