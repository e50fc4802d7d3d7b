package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pedro17pedroo/SGST-sub000/internal/models"
	"github.com/pedro17pedroo/SGST-sub000/internal/repository"
)

// MockRuleRepository is a mock implementation of RuleRepositoryInterface
type MockRuleRepository struct {
	mock.Mock
}

var _ repository.RuleRepositoryInterface = (*MockRuleRepository)(nil)

func (m *MockRuleRepository) CreateRule(ctx context.Context, rule *models.ReplenishmentRule) error {
	args := m.Called(ctx, rule)
	if args.Error(0) == nil && rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockRuleRepository) GetRuleByID(ctx context.Context, id uuid.UUID) (*models.ReplenishmentRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReplenishmentRule), args.Error(1)
}

func (m *MockRuleRepository) GetRuleByPair(ctx context.Context, tenantID string, productID, warehouseID uuid.UUID) (*models.ReplenishmentRule, error) {
	args := m.Called(ctx, tenantID, productID, warehouseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReplenishmentRule), args.Error(1)
}

func (m *MockRuleRepository) ListActiveRules(ctx context.Context, tenantID string, warehouseID *uuid.UUID) ([]models.ReplenishmentRule, error) {
	args := m.Called(ctx, tenantID, warehouseID)
	return args.Get(0).([]models.ReplenishmentRule), args.Error(1)
}

func (m *MockRuleRepository) UpdateRule(ctx context.Context, rule *models.ReplenishmentRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository) DeactivateRule(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockForecastRepository is a mock implementation of ForecastRepositoryInterface
type MockForecastRepository struct {
	mock.Mock
}

var _ repository.ForecastRepositoryInterface = (*MockForecastRepository)(nil)

func (m *MockForecastRepository) CreateForecasts(ctx context.Context, forecasts []models.DemandForecast) error {
	args := m.Called(ctx, forecasts)
	return args.Error(0)
}

func (m *MockForecastRepository) ListForecastWindow(ctx context.Context, tenantID string, productID, warehouseID uuid.UUID, from time.Time, days int) ([]models.DemandForecast, error) {
	args := m.Called(ctx, tenantID, productID, warehouseID, from, days)
	return args.Get(0).([]models.DemandForecast), args.Error(1)
}

func (m *MockForecastRepository) RecordActualDemand(ctx context.Context, id uuid.UUID, actual float64) error {
	args := m.Called(ctx, id, actual)
	return args.Error(0)
}

// MockWorkflowRepository is a mock implementation of WorkflowRepositoryInterface
type MockWorkflowRepository struct {
	mock.Mock
}

var _ repository.WorkflowRepositoryInterface = (*MockWorkflowRepository)(nil)

func (m *MockWorkflowRepository) CreateWorkflow(ctx context.Context, workflow *models.ApprovalWorkflow) error {
	args := m.Called(ctx, workflow)
	return args.Error(0)
}

func (m *MockWorkflowRepository) GetWorkflowByID(ctx context.Context, id uuid.UUID) (*models.ApprovalWorkflow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ApprovalWorkflow), args.Error(1)
}

func (m *MockWorkflowRepository) ListActiveWorkflows(ctx context.Context, tenantID string) ([]models.ApprovalWorkflow, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]models.ApprovalWorkflow), args.Error(1)
}

func (m *MockWorkflowRepository) UpdateWorkflow(ctx context.Context, workflow *models.ApprovalWorkflow) error {
	args := m.Called(ctx, workflow)
	return args.Error(0)
}

// MockOrderRepository is a mock implementation of OrderRepositoryInterface.
// txStock is handed to WithTransaction callbacks as the transaction-scoped
// stock repository; txCalls counts the transactions opened.
type MockOrderRepository struct {
	mock.Mock

	txStock *MockStockRepository
	txCalls int
}

var _ repository.OrderRepositoryInterface = (*MockOrderRepository)(nil)

func (m *MockOrderRepository) CreateOrder(ctx context.Context, order *models.PurchaseOrder) error {
	args := m.Called(ctx, order)
	if args.Error(0) == nil && order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockOrderRepository) GetOrderByID(ctx context.Context, tenantID string, id uuid.UUID) (*models.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseOrder), args.Error(1)
}

func (m *MockOrderRepository) ListOrders(ctx context.Context, tenantID string, statusFilter string, limit, offset int) ([]models.PurchaseOrder, int64, error) {
	args := m.Called(ctx, tenantID, statusFilter, limit, offset)
	return args.Get(0).([]models.PurchaseOrder), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) UpdateOrderStatus(ctx context.Context, order *models.PurchaseOrder, newStatus string) error {
	args := m.Called(ctx, order, newStatus)
	if args.Error(0) == nil {
		order.Status = newStatus
		order.Version++
	}
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateOrderApprovalState(ctx context.Context, order *models.PurchaseOrder) error {
	args := m.Called(ctx, order)
	if args.Error(0) == nil {
		order.Version++
	}
	return args.Error(0)
}

func (m *MockOrderRepository) CreateApprovals(ctx context.Context, approvals []models.Approval) error {
	args := m.Called(ctx, approvals)
	return args.Error(0)
}

func (m *MockOrderRepository) GetApprovalsByLevel(ctx context.Context, orderID uuid.UUID, level int) ([]models.Approval, error) {
	args := m.Called(ctx, orderID, level)
	return args.Get(0).([]models.Approval), args.Error(1)
}

func (m *MockOrderRepository) UpdateApproval(ctx context.Context, approval *models.Approval) error {
	args := m.Called(ctx, approval)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkPendingApprovalsMoot(ctx context.Context, orderID uuid.UUID) (int64, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) ListPendingApprovalsForUser(ctx context.Context, tenantID string, approverID uuid.UUID, limit, offset int) ([]models.Approval, int64, error) {
	args := m.Called(ctx, tenantID, approverID, limit, offset)
	return args.Get(0).([]models.Approval), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) UpdateItemReceived(ctx context.Context, item *models.PurchaseOrderItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// WithTransaction executes the callback with the mock itself, simulating a
// transaction so business logic can be tested without a database.
func (m *MockOrderRepository) WithTransaction(ctx context.Context, fn func(txOrders repository.OrderRepositoryInterface, txStock repository.StockRepositoryInterface) error) error {
	m.txCalls++
	stock := m.txStock
	if stock == nil {
		stock = new(MockStockRepository)
	}
	return fn(m, stock)
}

// MockStockRepository is a mock implementation of StockRepositoryInterface
type MockStockRepository struct {
	mock.Mock
}

var _ repository.StockRepositoryInterface = (*MockStockRepository)(nil)

func (m *MockStockRepository) GetStockLevel(ctx context.Context, tenantID string, productID, warehouseID uuid.UUID) (*models.StockLevel, error) {
	args := m.Called(ctx, tenantID, productID, warehouseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StockLevel), args.Error(1)
}

func (m *MockStockRepository) ListStockLevels(ctx context.Context, tenantID string, warehouseID *uuid.UUID, limit, offset int) ([]models.StockLevel, int64, error) {
	args := m.Called(ctx, tenantID, warehouseID, limit, offset)
	return args.Get(0).([]models.StockLevel), args.Get(1).(int64), args.Error(2)
}

func (m *MockStockRepository) RecordMovement(ctx context.Context, movement *models.StockMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockStockRepository) GetDailyDemand(ctx context.Context, tenantID string, productID, warehouseID uuid.UUID, since time.Time) ([]models.DailyDemand, error) {
	args := m.Called(ctx, tenantID, productID, warehouseID, since)
	return args.Get(0).([]models.DailyDemand), args.Error(1)
}
