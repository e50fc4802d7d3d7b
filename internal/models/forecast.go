package models

import (
	"time"

	"github.com/google/uuid"
)

// Forecast period granularities
const (
	PeriodDaily  = "daily"
	PeriodWeekly = "weekly"
)

// DemandForecast is one predicted-demand data point for a (product, warehouse)
// pair. Rows are append-only: a new forecast run inserts new rows rather than
// mutating history, so predictions can later be scored against actuals. The
// only permitted update is recording ActualDemand.
type DemandForecast struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID    string    `gorm:"type:varchar(255);not null;index" json:"tenantId"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index:idx_forecast_pair" json:"productId"`
	WarehouseID uuid.UUID `gorm:"type:uuid;not null;index:idx_forecast_pair" json:"warehouseId"`

	ForecastDate    time.Time `gorm:"type:date;not null;index" json:"forecastDate"`
	Period          string    `gorm:"type:varchar(20);not null;default:'daily'" json:"period"`
	PredictedDemand float64   `gorm:"not null" json:"predictedDemand"`
	Confidence      float64   `gorm:"not null" json:"confidence"`

	// Generating parameters, kept for reproducibility and audit.
	Algorithm    string `gorm:"type:varchar(100);not null" json:"algorithm"`
	ModelVersion string `gorm:"type:varchar(50);not null" json:"modelVersion"`

	ActualDemand *float64 `json:"actualDemand,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName returns the table name for DemandForecast
func (DemandForecast) TableName() string {
	return "demand_forecasts"
}
