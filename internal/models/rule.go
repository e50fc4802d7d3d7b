package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ABC classification buckets for replenishment rules
const (
	ABCClassA = "A"
	ABCClassB = "B"
	ABCClassC = "C"
)

// Velocity categories for replenishment rules
const (
	VelocityFast   = "fast"
	VelocityMedium = "medium"
	VelocitySlow   = "slow"
)

var ErrInvalidRule = errors.New("invalid replenishment rule")

// ReplenishmentRule defines the stocking policy for a (product, warehouse) pair.
// Rules are never physically deleted while referenced by open orders; they are
// deactivated via IsActive.
type ReplenishmentRule struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID    string    `gorm:"type:varchar(255);not null;index" json:"tenantId"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rule_product_warehouse" json:"productId"`
	WarehouseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rule_product_warehouse" json:"warehouseId"`

	MinLevel              int `gorm:"not null" json:"minLevel"`
	MaxLevel              int `gorm:"not null" json:"maxLevel"`
	ReorderPoint          int `gorm:"not null" json:"reorderPoint"`
	ReplenishQuantity     int `gorm:"not null" json:"replenishQuantity"`
	EconomicOrderQuantity int `gorm:"default:0" json:"economicOrderQuantity"`
	LeadTimeDays          int `gorm:"not null;default:7" json:"leadTimeDays"`
	SafetyStock           int `gorm:"default:0" json:"safetyStock"`

	ABCClassification string `gorm:"type:varchar(1);default:'C'" json:"abcClassification"`
	VelocityCategory  string `gorm:"type:varchar(20);default:'medium'" json:"velocityCategory"`

	// Standard unit cost, used to price auto-generated order lines and to
	// estimate the cost of suggested replenishment actions.
	UnitCost decimal.Decimal `gorm:"type:decimal(14,2);default:0" json:"unitCost"`

	PreferredSupplierID *uuid.UUID `gorm:"type:uuid" json:"preferredSupplierId,omitempty"`

	IsActive  bool           `gorm:"default:true" json:"isActive"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for ReplenishmentRule
func (ReplenishmentRule) TableName() string {
	return "replenishment_rules"
}

// Validate checks the rule's level invariant and basic sanity before any write.
func (r *ReplenishmentRule) Validate() error {
	if r.MinLevel < 0 || r.MaxLevel < 0 || r.ReorderPoint < 0 {
		return fmt.Errorf("%w: levels must be non-negative", ErrInvalidRule)
	}
	if r.MinLevel > r.ReorderPoint || r.ReorderPoint > r.MaxLevel {
		return fmt.Errorf("%w: minLevel <= reorderPoint <= maxLevel must hold (got %d <= %d <= %d)",
			ErrInvalidRule, r.MinLevel, r.ReorderPoint, r.MaxLevel)
	}
	if r.LeadTimeDays <= 0 {
		return fmt.Errorf("%w: leadTimeDays must be positive", ErrInvalidRule)
	}
	if r.ReplenishQuantity < 0 || r.EconomicOrderQuantity < 0 || r.SafetyStock < 0 {
		return fmt.Errorf("%w: quantities must be non-negative", ErrInvalidRule)
	}
	return nil
}
