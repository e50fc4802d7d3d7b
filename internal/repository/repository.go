package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pedro17pedroo/SGST-sub000/internal/models"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrVersionConflict = errors.New("version conflict - record was modified by another request")
)

// RuleRepositoryInterface defines persistence operations for replenishment rules
type RuleRepositoryInterface interface {
	CreateRule(ctx context.Context, rule *models.ReplenishmentRule) error
	GetRuleByID(ctx context.Context, id uuid.UUID) (*models.ReplenishmentRule, error)
	GetRuleByPair(ctx context.Context, tenantID string, productID, warehouseID uuid.UUID) (*models.ReplenishmentRule, error)
	ListActiveRules(ctx context.Context, tenantID string, warehouseID *uuid.UUID) ([]models.ReplenishmentRule, error)
	UpdateRule(ctx context.Context, rule *models.ReplenishmentRule) error
	DeactivateRule(ctx context.Context, id uuid.UUID) error
}

// ForecastRepositoryInterface defines persistence operations for demand forecasts
type ForecastRepositoryInterface interface {
	CreateForecasts(ctx context.Context, forecasts []models.DemandForecast) error
	ListForecastWindow(ctx context.Context, tenantID string, productID, warehouseID uuid.UUID, from time.Time, days int) ([]models.DemandForecast, error)
	RecordActualDemand(ctx context.Context, id uuid.UUID, actual float64) error
}

// WorkflowRepositoryInterface defines persistence operations for approval workflows
type WorkflowRepositoryInterface interface {
	CreateWorkflow(ctx context.Context, workflow *models.ApprovalWorkflow) error
	GetWorkflowByID(ctx context.Context, id uuid.UUID) (*models.ApprovalWorkflow, error)
	ListActiveWorkflows(ctx context.Context, tenantID string) ([]models.ApprovalWorkflow, error)
	UpdateWorkflow(ctx context.Context, workflow *models.ApprovalWorkflow) error
}

// OrderRepositoryInterface defines persistence operations for purchase orders
// and their approval rows
type OrderRepositoryInterface interface {
	CreateOrder(ctx context.Context, order *models.PurchaseOrder) error
	GetOrderByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.PurchaseOrder, error)
	ListOrders(ctx context.Context, tenantID string, statusFilter string, limit, offset int) ([]models.PurchaseOrder, int64, error)
	UpdateOrderStatus(ctx context.Context, order *models.PurchaseOrder, newStatus string) error
	UpdateOrderApprovalState(ctx context.Context, order *models.PurchaseOrder) error

	CreateApprovals(ctx context.Context, approvals []models.Approval) error
	GetApprovalsByLevel(ctx context.Context, orderID uuid.UUID, level int) ([]models.Approval, error)
	UpdateApproval(ctx context.Context, approval *models.Approval) error
	MarkPendingApprovalsMoot(ctx context.Context, orderID uuid.UUID) (int64, error)
	ListPendingApprovalsForUser(ctx context.Context, tenantID string, approverID uuid.UUID, limit, offset int) ([]models.Approval, int64, error)

	UpdateItemReceived(ctx context.Context, item *models.PurchaseOrderItem) error

	WithTransaction(ctx context.Context, fn func(txOrders OrderRepositoryInterface, txStock StockRepositoryInterface) error) error
}

// StockRepositoryInterface exposes the inventory snapshot and demand history
// surfaces consumed by the forecaster and risk evaluator
type StockRepositoryInterface interface {
	GetStockLevel(ctx context.Context, tenantID string, productID, warehouseID uuid.UUID) (*models.StockLevel, error)
	ListStockLevels(ctx context.Context, tenantID string, warehouseID *uuid.UUID, limit, offset int) ([]models.StockLevel, int64, error)
	RecordMovement(ctx context.Context, movement *models.StockMovement) error
	GetDailyDemand(ctx context.Context, tenantID string, productID, warehouseID uuid.UUID, since time.Time) ([]models.DailyDemand, error)
}
