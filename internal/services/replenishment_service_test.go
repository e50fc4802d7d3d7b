package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pedro17pedroo/SGST-sub000/internal/models"
	"github.com/pedro17pedroo/SGST-sub000/internal/repository"
)

func newTestReplenishmentService(ruleRepo *MockRuleRepository, orderRepo *MockOrderRepository, risk *RiskService) *ReplenishmentService {
	return &ReplenishmentService{
		ruleRepo:  ruleRepo,
		orderRepo: orderRepo,
		risk:      risk,
		logger:    logrus.New().WithField("component", "replenishment-service"),
	}
}

func TestCreateRule_RejectsInvertedLevels(t *testing.T) {
	service := newTestReplenishmentService(new(MockRuleRepository), nil, nil)

	rule := testRule()
	rule.MinLevel = 100
	rule.ReorderPoint = 50

	err := service.CreateRule(context.Background(), rule)

	assert.ErrorIs(t, err, models.ErrInvalidRule)
}

func TestCreateRule_RejectsDuplicatePair(t *testing.T) {
	ctx := context.Background()

	mockRules := new(MockRuleRepository)
	service := newTestReplenishmentService(mockRules, nil, nil)

	existing := testRule()
	rule := testRule()
	rule.ProductID = existing.ProductID
	rule.WarehouseID = existing.WarehouseID

	mockRules.On("GetRuleByPair", ctx, rule.TenantID, rule.ProductID, rule.WarehouseID).
		Return(existing, nil)

	err := service.CreateRule(ctx, rule)

	assert.ErrorIs(t, err, ErrDuplicateRule)
	mockRules.AssertNotCalled(t, "CreateRule", mock.Anything, mock.Anything)
}

func TestCreateRule_Success(t *testing.T) {
	ctx := context.Background()

	mockRules := new(MockRuleRepository)
	service := newTestReplenishmentService(mockRules, nil, nil)

	rule := testRule()
	rule.ID = uuid.Nil
	mockRules.On("GetRuleByPair", ctx, rule.TenantID, rule.ProductID, rule.WarehouseID).
		Return(nil, repository.ErrNotFound)
	mockRules.On("CreateRule", ctx, rule).Return(nil)

	err := service.CreateRule(ctx, rule)

	assert.NoError(t, err)
	assert.True(t, rule.IsActive)
	mockRules.AssertExpectations(t)
}

func TestBuildDraft_PricesLineFromRule(t *testing.T) {
	service := newTestReplenishmentService(new(MockRuleRepository), nil, nil)

	rule := testRule()
	requestedBy := uuid.New()
	alert := &models.StockoutAlert{
		ProductID:    rule.ProductID,
		WarehouseID:  rule.WarehouseID,
		RuleID:       rule.ID,
		CurrentStock: 15,
		RiskLevel:    models.RiskCritical,
		Message:      "stock 15 is at or below minimum level 20",
		SuggestedAction: &models.SuggestedAction{
			Quantity:   185,
			Urgency:    models.UrgencyImmediate,
			SupplierID: rule.PreferredSupplierID,
		},
	}

	order := service.BuildDraft("tenant-123", alert, rule, &requestedBy)

	assert.Equal(t, models.OrderStatusDraft, order.Status)
	assert.Equal(t, models.PriorityUrgent, order.Priority)
	assert.True(t, order.AutoGenerated)
	assert.Equal(t, rule.PreferredSupplierID, order.SupplierID)
	assert.Len(t, order.Items, 1)
	assert.Equal(t, 185, order.Items[0].Quantity)
	assert.True(t, order.Items[0].UnitPrice.Equal(rule.UnitCost))
	// 185 units at 500 each.
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(92500)))
	assert.Equal(t, &alert.RuleID, order.Items[0].SourceRuleID)
	assert.NotEmpty(t, order.OrderNumber)
}

func TestBuildDraft_NormalUrgencyIsHighPriority(t *testing.T) {
	service := newTestReplenishmentService(new(MockRuleRepository), nil, nil)

	rule := testRule()
	alert := &models.StockoutAlert{
		ProductID:   rule.ProductID,
		WarehouseID: rule.WarehouseID,
		RuleID:      rule.ID,
		RiskLevel:   models.RiskHigh,
		SuggestedAction: &models.SuggestedAction{
			Quantity: 150,
			Urgency:  models.UrgencyNormal,
		},
	}

	order := service.BuildDraft("tenant-123", alert, rule, nil)

	assert.Equal(t, models.PriorityHigh, order.Priority)
}

func TestGenerateOrders_OneDraftPerCriticalAlert(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant-123"

	mockRules := new(MockRuleRepository)
	mockOrders := new(MockOrderRepository)
	mockStock := new(MockStockRepository)
	mockForecasts := new(MockForecastRepository)
	forecasts := newTestForecastService(mockForecasts, mockStock)
	risk := newTestRiskService(mockRules, mockStock, forecasts)
	service := newTestReplenishmentService(mockRules, mockOrders, risk)

	rule := testRule()
	mockRules.On("ListActiveRules", ctx, tenantID, (*uuid.UUID)(nil)).
		Return([]models.ReplenishmentRule{*rule}, nil)
	mockStock.On("GetStockLevel", ctx, tenantID, rule.ProductID, rule.WarehouseID).
		Return(&models.StockLevel{QuantityAvailable: 15}, nil)
	mockForecasts.On("ListForecastWindow", ctx, tenantID, rule.ProductID, rule.WarehouseID, mock.AnythingOfType("time.Time"), 7).
		Return(flatWindow(7, 10), nil)
	mockRules.On("GetRuleByID", ctx, rule.ID).Return(rule, nil)
	mockOrders.On("CreateOrder", ctx, mock.AnythingOfType("*models.PurchaseOrder")).Return(nil)

	orders, err := service.GenerateOrders(ctx, tenantID, nil, nil)

	assert.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, models.OrderStatusDraft, orders[0].Status)
	assert.Equal(t, models.PriorityUrgent, orders[0].Priority)
	mockOrders.AssertExpectations(t)
}

func TestGenerateOrders_SkipsMediumRisk(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant-123"

	mockRules := new(MockRuleRepository)
	mockOrders := new(MockOrderRepository)
	mockStock := new(MockStockRepository)
	mockForecasts := new(MockForecastRepository)
	forecasts := newTestForecastService(mockForecasts, mockStock)
	risk := newTestRiskService(mockRules, mockStock, forecasts)
	service := newTestReplenishmentService(mockRules, mockOrders, risk)

	rule := testRule()
	mockRules.On("ListActiveRules", ctx, tenantID, (*uuid.UUID)(nil)).
		Return([]models.ReplenishmentRule{*rule}, nil)
	// 90 units at 10/day is medium risk: alert only, no order.
	mockStock.On("GetStockLevel", ctx, tenantID, rule.ProductID, rule.WarehouseID).
		Return(&models.StockLevel{QuantityAvailable: 90}, nil)
	mockForecasts.On("ListForecastWindow", ctx, tenantID, rule.ProductID, rule.WarehouseID, mock.AnythingOfType("time.Time"), 7).
		Return(flatWindow(7, 10), nil)

	orders, err := service.GenerateOrders(ctx, tenantID, nil, nil)

	assert.NoError(t, err)
	assert.Empty(t, orders)
	mockOrders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCreateManualOrder_AssignsNumberAndTotals(t *testing.T) {
	ctx := context.Background()

	mockOrders := new(MockOrderRepository)
	service := newTestReplenishmentService(new(MockRuleRepository), mockOrders, nil)

	mockOrders.On("CreateOrder", ctx, mock.AnythingOfType("*models.PurchaseOrder")).
		Return(nil)

	order := &models.PurchaseOrder{
		TenantID:    "tenant-123",
		WarehouseID: uuid.New(),
		Items: []models.PurchaseOrderItem{
			{ProductID: uuid.New(), Quantity: 10, UnitPrice: decimal.NewFromInt(500)},
			{ProductID: uuid.New(), Quantity: 2, UnitPrice: decimal.NewFromInt(1250)},
		},
	}

	created, err := service.CreateManualOrder(ctx, order)

	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusDraft, created.Status)
	assert.Equal(t, models.PriorityNormal, created.Priority)
	assert.False(t, created.AutoGenerated)
	assert.Regexp(t, `^PO-\d{8}-[0-9A-F]{8}$`, created.OrderNumber)
	assert.True(t, created.Items[0].Subtotal.Equal(decimal.NewFromInt(5000)))
	assert.True(t, created.TotalAmount.Equal(decimal.NewFromInt(7500)))
	assert.Equal(t, "tenant-123", created.Items[1].TenantID)
	mockOrders.AssertExpectations(t)
}

func TestCreateManualOrder_RejectsEmptyItems(t *testing.T) {
	mockOrders := new(MockOrderRepository)
	service := newTestReplenishmentService(new(MockRuleRepository), mockOrders, nil)

	_, err := service.CreateManualOrder(context.Background(), &models.PurchaseOrder{
		TenantID:    "tenant-123",
		WarehouseID: uuid.New(),
	})

	assert.ErrorIs(t, err, ErrEmptyOrder)
	mockOrders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}
