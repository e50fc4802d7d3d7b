package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/pedro17pedroo/SGST-sub000/internal/models"
	"github.com/pedro17pedroo/SGST-sub000/internal/repository"
)

var (
	ErrRuleNotFound  = errors.New("replenishment rule not found")
	ErrDuplicateRule = errors.New("an active rule already exists for this product and warehouse")
	ErrEmptyOrder    = errors.New("order must have at least one item")
)

// ReplenishmentService owns replenishment rules and turns stock-out alerts
// into draft purchase orders. One order is generated per alert; consolidation
// across products or suppliers is left to the operator.
type ReplenishmentService struct {
	ruleRepo  repository.RuleRepositoryInterface
	orderRepo repository.OrderRepositoryInterface
	risk      *RiskService
	publisher EventPublisher
	logger    *logrus.Entry
}

// NewReplenishmentService creates a new ReplenishmentService
func NewReplenishmentService(ruleRepo repository.RuleRepositoryInterface, orderRepo repository.OrderRepositoryInterface, risk *RiskService, publisher EventPublisher, logger *logrus.Logger) *ReplenishmentService {
	if logger == nil {
		logger = logrus.New()
	}
	return &ReplenishmentService{
		ruleRepo:  ruleRepo,
		orderRepo: orderRepo,
		risk:      risk,
		publisher: publisher,
		logger:    logger.WithField("component", "replenishment-service"),
	}
}

// CreateRule validates and persists a new replenishment rule. The (product,
// warehouse) pair must not already carry an active rule.
func (s *ReplenishmentService) CreateRule(ctx context.Context, rule *models.ReplenishmentRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	existing, err := s.ruleRepo.GetRuleByPair(ctx, rule.TenantID, rule.ProductID, rule.WarehouseID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if existing != nil && existing.IsActive {
		return ErrDuplicateRule
	}
	rule.IsActive = true
	if err := s.ruleRepo.CreateRule(ctx, rule); err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"ruleId":      rule.ID,
		"productId":   rule.ProductID,
		"warehouseId": rule.WarehouseID,
	}).Info("Replenishment rule created")
	return nil
}

// GetRule fetches a rule by ID.
func (s *ReplenishmentService) GetRule(ctx context.Context, id uuid.UUID) (*models.ReplenishmentRule, error) {
	rule, err := s.ruleRepo.GetRuleByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRuleNotFound
	}
	return rule, err
}

// ListRules lists active rules, optionally scoped to one warehouse.
func (s *ReplenishmentService) ListRules(ctx context.Context, tenantID string, warehouseID *uuid.UUID) ([]models.ReplenishmentRule, error) {
	return s.ruleRepo.ListActiveRules(ctx, tenantID, warehouseID)
}

// UpdateRule applies new policy values to an existing rule after validation.
func (s *ReplenishmentService) UpdateRule(ctx context.Context, id uuid.UUID, update *models.ReplenishmentRule) (*models.ReplenishmentRule, error) {
	rule, err := s.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}

	rule.MinLevel = update.MinLevel
	rule.MaxLevel = update.MaxLevel
	rule.ReorderPoint = update.ReorderPoint
	rule.ReplenishQuantity = update.ReplenishQuantity
	rule.EconomicOrderQuantity = update.EconomicOrderQuantity
	rule.LeadTimeDays = update.LeadTimeDays
	rule.SafetyStock = update.SafetyStock
	rule.ABCClassification = update.ABCClassification
	rule.VelocityCategory = update.VelocityCategory
	rule.UnitCost = update.UnitCost
	rule.PreferredSupplierID = update.PreferredSupplierID

	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if err := s.ruleRepo.UpdateRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to update rule: %w", err)
	}
	return rule, nil
}

// DeactivateRule soft-disables a rule; orders already generated from it keep
// their SourceRuleID reference.
func (s *ReplenishmentService) DeactivateRule(ctx context.Context, id uuid.UUID) error {
	err := s.ruleRepo.DeactivateRule(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrRuleNotFound
	}
	return err
}

// GenerateOrders runs a risk sweep and persists one draft purchase order per
// high or critical alert. Medium and low risk pairs are skipped; they only
// surface through the alerts endpoint.
func (s *ReplenishmentService) GenerateOrders(ctx context.Context, tenantID string, warehouseID *uuid.UUID, requestedBy *uuid.UUID) ([]models.PurchaseOrder, error) {
	alerts, err := s.risk.Sweep(ctx, tenantID, warehouseID)
	if err != nil {
		return nil, err
	}

	orders := make([]models.PurchaseOrder, 0)
	for i := range alerts {
		alert := &alerts[i]
		if alert.RiskLevel != models.RiskHigh && alert.RiskLevel != models.RiskCritical {
			continue
		}

		rule, err := s.ruleRepo.GetRuleByID(ctx, alert.RuleID)
		if err != nil {
			return nil, fmt.Errorf("failed to load rule %s: %w", alert.RuleID, err)
		}

		order := s.BuildDraft(tenantID, alert, rule, requestedBy)
		if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
			return nil, fmt.Errorf("failed to create draft order: %w", err)
		}
		orders = append(orders, *order)

		if s.publisher != nil {
			s.publisher.PublishOrderCreated(order)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"tenantId": tenantID,
		"alerts":   len(alerts),
		"orders":   len(orders),
	}).Info("Replenishment orders generated")

	return orders, nil
}

// CreateManualOrder persists an operator-created draft order. The caller
// supplies lines and pricing; the order number, subtotals and total are
// assigned here.
func (s *ReplenishmentService) CreateManualOrder(ctx context.Context, order *models.PurchaseOrder) (*models.PurchaseOrder, error) {
	if len(order.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	order.OrderNumber = newOrderNumber()
	order.Status = models.OrderStatusDraft
	order.AutoGenerated = false
	if order.Priority == "" {
		order.Priority = models.PriorityNormal
	}
	for i := range order.Items {
		item := &order.Items[i]
		item.TenantID = order.TenantID
		item.Subtotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
	}
	order.ComputeTotal()

	if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if s.publisher != nil {
		s.publisher.PublishOrderCreated(order)
	}

	s.logger.WithFields(logrus.Fields{
		"orderId":     order.ID,
		"orderNumber": order.OrderNumber,
		"total":       order.TotalAmount,
	}).Info("Manual purchase order created")
	return order, nil
}

// BuildDraft assembles an unpersisted draft order for one alert. The line is
// priced from the rule's standard unit cost.
func (s *ReplenishmentService) BuildDraft(tenantID string, alert *models.StockoutAlert, rule *models.ReplenishmentRule, requestedBy *uuid.UUID) *models.PurchaseOrder {
	action := alert.SuggestedAction
	quantity := action.Quantity
	subtotal := rule.UnitCost.Mul(decimal.NewFromInt(int64(quantity)))

	priority := models.PriorityHigh
	if action.Urgency == models.UrgencyImmediate {
		priority = models.PriorityUrgent
	}

	order := &models.PurchaseOrder{
		TenantID:      tenantID,
		OrderNumber:   newOrderNumber(),
		SupplierID:    action.SupplierID,
		WarehouseID:   alert.WarehouseID,
		Status:        models.OrderStatusDraft,
		Priority:      priority,
		AutoGenerated: true,
		Notes:         alert.Message,
		RequestedBy:   requestedBy,
		Items: []models.PurchaseOrderItem{
			{
				TenantID:     tenantID,
				ProductID:    alert.ProductID,
				Quantity:     quantity,
				UnitPrice:    rule.UnitCost,
				Subtotal:     subtotal,
				SourceRuleID: &alert.RuleID,
			},
		},
	}
	order.ComputeTotal()
	return order
}

// newOrderNumber builds a unique, human-readable order number.
func newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("PO-%s-%s", time.Now().Format("20060102"), suffix)
}
