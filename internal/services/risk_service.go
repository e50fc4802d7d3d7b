package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/pedro17pedroo/SGST-sub000/internal/models"
	"github.com/pedro17pedroo/SGST-sub000/internal/repository"
)

// Forecast days summed when evaluating stock-out risk.
const riskWindowDays = 7

// EventPublisher is the outbound event surface services publish to. A nil
// publisher disables events without changing service behavior.
type EventPublisher interface {
	PublishStockoutAlert(tenantID string, alert *models.StockoutAlert)
	PublishOrderCreated(order *models.PurchaseOrder)
	PublishApprovalRequested(order *models.PurchaseOrder)
	PublishApprovalGranted(order *models.PurchaseOrder, approverID uuid.UUID)
	PublishApprovalRejected(order *models.PurchaseOrder, approverID uuid.UUID, decision string)
	PublishOrderCancelled(order *models.PurchaseOrder)
}

// RiskService classifies stock-out risk for (product, warehouse) pairs covered
// by active replenishment rules. Alerts are derived views and never persisted.
type RiskService struct {
	ruleRepo  repository.RuleRepositoryInterface
	stockRepo repository.StockRepositoryInterface
	forecasts *ForecastService
	publisher EventPublisher
	logger    *logrus.Entry
}

// NewRiskService creates a new RiskService
func NewRiskService(ruleRepo repository.RuleRepositoryInterface, stockRepo repository.StockRepositoryInterface, forecasts *ForecastService, publisher EventPublisher, logger *logrus.Logger) *RiskService {
	if logger == nil {
		logger = logrus.New()
	}
	return &RiskService{
		ruleRepo:  ruleRepo,
		stockRepo: stockRepo,
		forecasts: forecasts,
		publisher: publisher,
		logger:    logger.WithField("component", "risk-service"),
	}
}

// Evaluate classifies a single pair from its rule, current stock and forecast
// window. It returns nil for low risk; no action is needed there.
func (s *RiskService) Evaluate(rule *models.ReplenishmentRule, currentStock int, window []models.DemandForecast) *models.StockoutAlert {
	predicted := 0.0
	days := riskWindowDays
	if len(window) < days {
		days = len(window)
	}
	for _, f := range window[:days] {
		predicted += f.PredictedDemand
	}

	dailyDemand := 0.0
	if days > 0 {
		dailyDemand = predicted / float64(days)
	}

	daysRemaining := models.DaysRemainingInfinite
	if dailyDemand > 0 {
		daysRemaining = float64(currentStock) / dailyDemand
	}

	leadTime := float64(rule.LeadTimeDays)
	var riskLevel, message string
	switch {
	case currentStock <= rule.MinLevel:
		riskLevel = models.RiskCritical
		message = fmt.Sprintf("stock %d is at or below minimum level %d", currentStock, rule.MinLevel)
	case daysRemaining <= leadTime:
		riskLevel = models.RiskHigh
		message = fmt.Sprintf("%.1f days of stock remaining, below lead time of %d days", daysRemaining, rule.LeadTimeDays)
	case daysRemaining <= leadTime*1.5:
		riskLevel = models.RiskMedium
		message = fmt.Sprintf("%.1f days of stock remaining, within 1.5x lead time of %d days", daysRemaining, rule.LeadTimeDays)
	default:
		return nil
	}

	alert := &models.StockoutAlert{
		ProductID:       rule.ProductID,
		WarehouseID:     rule.WarehouseID,
		RuleID:          rule.ID,
		CurrentStock:    currentStock,
		PredictedDemand: predicted,
		DailyDemand:     dailyDemand,
		DaysRemaining:   daysRemaining,
		RiskLevel:       riskLevel,
		Message:         message,
	}
	if riskLevel == models.RiskHigh || riskLevel == models.RiskCritical {
		alert.SuggestedAction = suggestAction(rule, currentStock, predicted)
	}
	return alert
}

// suggestAction sizes a replenishment for a high or critical pair: enough to
// reach maxLevel, but never less than the EOQ (or the predicted demand when no
// EOQ is configured).
func suggestAction(rule *models.ReplenishmentRule, currentStock int, predicted float64) *models.SuggestedAction {
	quantity := rule.MaxLevel - currentStock
	floor := rule.EconomicOrderQuantity
	if floor <= 0 {
		floor = int(math.Ceil(predicted))
	}
	if quantity < floor {
		quantity = floor
	}
	if quantity <= 0 {
		quantity = rule.ReplenishQuantity
	}

	urgency := models.UrgencyNormal
	if currentStock <= rule.MinLevel {
		urgency = models.UrgencyImmediate
	}

	return &models.SuggestedAction{
		Quantity:      quantity,
		Urgency:       urgency,
		EstimatedCost: rule.UnitCost.Mul(decimal.NewFromInt(int64(quantity))),
		SupplierID:    rule.PreferredSupplierID,
	}
}

// Sweep evaluates every active rule in scope against live stock and the latest
// persisted forecasts, generating a fresh forecast run for pairs without
// coverage. Pairs without a stock snapshot are treated as empty.
func (s *RiskService) Sweep(ctx context.Context, tenantID string, warehouseID *uuid.UUID) ([]models.StockoutAlert, error) {
	rules, err := s.ruleRepo.ListActiveRules(ctx, tenantID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list replenishment rules: %w", err)
	}

	alerts := make([]models.StockoutAlert, 0)
	for i := range rules {
		rule := &rules[i]

		currentStock := 0
		level, err := s.stockRepo.GetStockLevel(ctx, tenantID, rule.ProductID, rule.WarehouseID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to load stock level for product %s: %w", rule.ProductID, err)
		}
		if level != nil {
			currentStock = level.QuantityAvailable
		}

		window, err := s.forecasts.Window(ctx, tenantID, rule.ProductID, rule.WarehouseID, riskWindowDays)
		if err != nil {
			return nil, fmt.Errorf("failed to load forecast window for product %s: %w", rule.ProductID, err)
		}

		alert := s.Evaluate(rule, currentStock, window)
		if alert == nil {
			continue
		}
		alerts = append(alerts, *alert)
		if s.publisher != nil && (alert.RiskLevel == models.RiskHigh || alert.RiskLevel == models.RiskCritical) {
			s.publisher.PublishStockoutAlert(tenantID, alert)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"tenantId": tenantID,
		"rules":    len(rules),
		"alerts":   len(alerts),
	}).Info("Stock-out risk sweep completed")

	return alerts, nil
}
