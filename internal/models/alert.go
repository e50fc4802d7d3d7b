package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stock-out risk levels, ordered by severity
const (
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// Replenishment urgency for suggested actions
const (
	UrgencyImmediate = "immediate"
	UrgencyNormal    = "normal"
)

// DaysRemainingInfinite is the sentinel days-of-cover value used when daily
// demand is zero, so downstream comparisons stay defined without dividing by
// zero.
const DaysRemainingInfinite = 9999.0

// SuggestedAction is the replenishment recommendation attached to an alert.
type SuggestedAction struct {
	Quantity      int             `json:"quantity"`
	Urgency       string          `json:"urgency"`
	EstimatedCost decimal.Decimal `json:"estimatedCost"`
	SupplierID    *uuid.UUID      `json:"supplierId,omitempty"`
}

// StockoutAlert is a derived view of stock-out risk for a (product, warehouse)
// pair. It is computed on demand from the current rule, forecast window and
// live inventory, and is never persisted.
type StockoutAlert struct {
	ProductID       uuid.UUID        `json:"productId"`
	WarehouseID     uuid.UUID        `json:"warehouseId"`
	RuleID          uuid.UUID        `json:"ruleId"`
	CurrentStock    int              `json:"currentStock"`
	PredictedDemand float64          `json:"predictedDemand"`
	DailyDemand     float64          `json:"dailyDemand"`
	DaysRemaining   float64          `json:"daysRemaining"`
	RiskLevel       string           `json:"riskLevel"`
	Message         string           `json:"message"`
	SuggestedAction *SuggestedAction `json:"suggestedAction,omitempty"`
}
