package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pedro17pedroo/SGST-sub000/internal/models"
)

// RuleRepository handles database operations for replenishment rules
type RuleRepository struct {
	db *gorm.DB
}

// NewRuleRepository creates a new RuleRepository
func NewRuleRepository(db *gorm.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

// CreateRule creates a new replenishment rule
func (r *RuleRepository) CreateRule(ctx context.Context, rule *models.ReplenishmentRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

// GetRuleByID retrieves a rule by ID
func (r *RuleRepository) GetRuleByID(ctx context.Context, id uuid.UUID) (*models.ReplenishmentRule, error) {
	var rule models.ReplenishmentRule
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rule, nil
}

// GetRuleByPair retrieves the active rule for a (product, warehouse) pair
func (r *RuleRepository) GetRuleByPair(ctx context.Context, tenantID string, productID, warehouseID uuid.UUID) (*models.ReplenishmentRule, error) {
	var rule models.ReplenishmentRule
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND warehouse_id = ? AND is_active = true",
			tenantID, productID, warehouseID).
		First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rule, nil
}

// ListActiveRules retrieves active rules for a tenant, optionally scoped to a warehouse
func (r *RuleRepository) ListActiveRules(ctx context.Context, tenantID string, warehouseID *uuid.UUID) ([]models.ReplenishmentRule, error) {
	var rules []models.ReplenishmentRule
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = true", tenantID)
	if warehouseID != nil {
		query = query.Where("warehouse_id = ?", *warehouseID)
	}
	err := query.Order("created_at ASC").Find(&rules).Error
	return rules, err
}

// UpdateRule persists rule policy changes
func (r *RuleRepository) UpdateRule(ctx context.Context, rule *models.ReplenishmentRule) error {
	result := r.db.WithContext(ctx).
		Model(rule).
		Select("min_level", "max_level", "reorder_point", "replenish_quantity",
			"economic_order_quantity", "lead_time_days", "safety_stock",
			"abc_classification", "velocity_category", "unit_cost",
			"preferred_supplier_id", "is_active", "updated_at").
		Updates(rule)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateRule soft-deactivates a rule. Rules referenced by open orders are
// never physically deleted.
func (r *RuleRepository) DeactivateRule(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.ReplenishmentRule{}).
		Where("id = ? AND is_active = true", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
