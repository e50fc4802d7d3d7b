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

func newTestRiskService(ruleRepo *MockRuleRepository, stockRepo *MockStockRepository, forecasts *ForecastService) *RiskService {
	return &RiskService{
		ruleRepo:  ruleRepo,
		stockRepo: stockRepo,
		forecasts: forecasts,
		logger:    logrus.New().WithField("component", "risk-service"),
	}
}

func testRule() *models.ReplenishmentRule {
	supplierID := uuid.New()
	return &models.ReplenishmentRule{
		ID:                  uuid.New(),
		TenantID:            "tenant-123",
		ProductID:           uuid.New(),
		WarehouseID:         uuid.New(),
		MinLevel:            20,
		MaxLevel:            200,
		ReorderPoint:        60,
		ReplenishQuantity:   100,
		LeadTimeDays:        7,
		UnitCost:            decimal.NewFromInt(500),
		PreferredSupplierID: &supplierID,
		IsActive:            true,
	}
}

// flatWindow builds a forecast window with constant daily demand.
func flatWindow(days int, perDay float64) []models.DemandForecast {
	window := make([]models.DemandForecast, days)
	for i := range window {
		window[i] = models.DemandForecast{PredictedDemand: perDay}
	}
	return window
}

func TestEvaluate_CriticalAtMinLevel(t *testing.T) {
	service := newTestRiskService(nil, nil, nil)
	rule := testRule()

	alert := service.Evaluate(rule, 15, flatWindow(7, 10))

	assert.NotNil(t, alert)
	assert.Equal(t, models.RiskCritical, alert.RiskLevel)
	assert.Equal(t, 15, alert.CurrentStock)
	assert.NotNil(t, alert.SuggestedAction)
	assert.Equal(t, models.UrgencyImmediate, alert.SuggestedAction.Urgency)
	// 200 max level minus 15 on hand, above the 70-unit predicted floor.
	assert.Equal(t, 185, alert.SuggestedAction.Quantity)
	assert.True(t, alert.SuggestedAction.EstimatedCost.Equal(decimal.NewFromInt(92500)))
	assert.Equal(t, rule.PreferredSupplierID, alert.SuggestedAction.SupplierID)
}

func TestEvaluate_HighWithinLeadTime(t *testing.T) {
	service := newTestRiskService(nil, nil, nil)
	rule := testRule()

	// 50 units at 10/day leaves 5 days, below the 7-day lead time.
	alert := service.Evaluate(rule, 50, flatWindow(7, 10))

	assert.NotNil(t, alert)
	assert.Equal(t, models.RiskHigh, alert.RiskLevel)
	assert.Equal(t, 70.0, alert.PredictedDemand)
	assert.Equal(t, 10.0, alert.DailyDemand)
	assert.Equal(t, 5.0, alert.DaysRemaining)
	assert.NotNil(t, alert.SuggestedAction)
	assert.Equal(t, models.UrgencyNormal, alert.SuggestedAction.Urgency)
	assert.Equal(t, 150, alert.SuggestedAction.Quantity)
}

func TestEvaluate_MediumWithinExtendedLeadTime(t *testing.T) {
	service := newTestRiskService(nil, nil, nil)
	rule := testRule()

	// 90 units at 10/day leaves 9 days, inside 1.5x the 7-day lead time.
	alert := service.Evaluate(rule, 90, flatWindow(7, 10))

	assert.NotNil(t, alert)
	assert.Equal(t, models.RiskMedium, alert.RiskLevel)
	assert.Equal(t, 9.0, alert.DaysRemaining)
	assert.Nil(t, alert.SuggestedAction)
}

func TestEvaluate_LowIsNil(t *testing.T) {
	service := newTestRiskService(nil, nil, nil)
	rule := testRule()

	// 150 units at 10/day leaves 15 days, beyond 1.5x lead time.
	alert := service.Evaluate(rule, 150, flatWindow(7, 10))

	assert.Nil(t, alert)
}

func TestEvaluate_ZeroDemandSentinel(t *testing.T) {
	service := newTestRiskService(nil, nil, nil)
	rule := testRule()

	// Zero demand means stock never runs out; only the minimum level floor
	// can still trigger.
	assert.Nil(t, service.Evaluate(rule, 50, flatWindow(7, 0)))

	alert := service.Evaluate(rule, 10, flatWindow(7, 0))
	assert.NotNil(t, alert)
	assert.Equal(t, models.RiskCritical, alert.RiskLevel)
	assert.Equal(t, models.DaysRemainingInfinite, alert.DaysRemaining)
}

func TestEvaluate_QuantityFloorFromPredictedDemand(t *testing.T) {
	service := newTestRiskService(nil, nil, nil)
	rule := testRule()
	rule.MaxLevel = 60
	rule.ReorderPoint = 40
	rule.EconomicOrderQuantity = 0

	// Max level tops up only 10 units; predicted demand of 70 wins.
	alert := service.Evaluate(rule, 50, flatWindow(7, 10))

	assert.NotNil(t, alert)
	assert.Equal(t, models.RiskHigh, alert.RiskLevel)
	assert.Equal(t, 70, alert.SuggestedAction.Quantity)
}

func TestEvaluate_QuantityFloorFromEOQ(t *testing.T) {
	service := newTestRiskService(nil, nil, nil)
	rule := testRule()
	rule.EconomicOrderQuantity = 250

	alert := service.Evaluate(rule, 50, flatWindow(7, 10))

	assert.NotNil(t, alert)
	assert.Equal(t, 250, alert.SuggestedAction.Quantity)
}

func TestSweep_MissingStockTreatedAsEmpty(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant-123"

	mockRules := new(MockRuleRepository)
	mockStock := new(MockStockRepository)
	mockForecasts := new(MockForecastRepository)
	forecasts := newTestForecastService(mockForecasts, mockStock)
	service := newTestRiskService(mockRules, mockStock, forecasts)

	rule := testRule()
	mockRules.On("ListActiveRules", ctx, tenantID, (*uuid.UUID)(nil)).
		Return([]models.ReplenishmentRule{*rule}, nil)
	mockStock.On("GetStockLevel", ctx, tenantID, rule.ProductID, rule.WarehouseID).
		Return(nil, repository.ErrNotFound)
	mockForecasts.On("ListForecastWindow", ctx, tenantID, rule.ProductID, rule.WarehouseID, mock.AnythingOfType("time.Time"), 7).
		Return(flatWindow(7, 10), nil)

	alerts, err := service.Sweep(ctx, tenantID, nil)

	assert.NoError(t, err)
	assert.Len(t, alerts, 1)
	assert.Equal(t, models.RiskCritical, alerts[0].RiskLevel)
	assert.Equal(t, 0, alerts[0].CurrentStock)
	mockRules.AssertExpectations(t)
	mockStock.AssertExpectations(t)
}

func TestSweep_HealthyStockProducesNoAlert(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant-123"

	mockRules := new(MockRuleRepository)
	mockStock := new(MockStockRepository)
	mockForecasts := new(MockForecastRepository)
	forecasts := newTestForecastService(mockForecasts, mockStock)
	service := newTestRiskService(mockRules, mockStock, forecasts)

	rule := testRule()
	mockRules.On("ListActiveRules", ctx, tenantID, (*uuid.UUID)(nil)).
		Return([]models.ReplenishmentRule{*rule}, nil)
	mockStock.On("GetStockLevel", ctx, tenantID, rule.ProductID, rule.WarehouseID).
		Return(&models.StockLevel{QuantityAvailable: 180}, nil)
	mockForecasts.On("ListForecastWindow", ctx, tenantID, rule.ProductID, rule.WarehouseID, mock.AnythingOfType("time.Time"), 7).
		Return(flatWindow(7, 10), nil)

	alerts, err := service.Sweep(ctx, tenantID, nil)

	assert.NoError(t, err)
	assert.Empty(t, alerts)
}
