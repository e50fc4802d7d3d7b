package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pedro17pedroo/SGST-sub000/internal/models"
)

// ForecastRepository handles database operations for demand forecasts.
// Forecast rows are append-only; the only update path is RecordActualDemand.
type ForecastRepository struct {
	db *gorm.DB
}

// NewForecastRepository creates a new ForecastRepository
func NewForecastRepository(db *gorm.DB) *ForecastRepository {
	return &ForecastRepository{db: db}
}

// CreateForecasts inserts a batch of generated forecasts
func (r *ForecastRepository) CreateForecasts(ctx context.Context, forecasts []models.DemandForecast) error {
	if len(forecasts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&forecasts).Error
}

// ListForecastWindow retrieves the most recent forecast per day for a pair,
// starting at from and spanning the given number of days. When multiple runs
// cover the same day the newest row wins.
func (r *ForecastRepository) ListForecastWindow(ctx context.Context, tenantID string, productID, warehouseID uuid.UUID, from time.Time, days int) ([]models.DemandForecast, error) {
	var forecasts []models.DemandForecast
	until := from.AddDate(0, 0, days)
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND warehouse_id = ?", tenantID, productID, warehouseID).
		Where("forecast_date >= ? AND forecast_date < ?", from, until).
		Order("forecast_date ASC, created_at DESC").
		Find(&forecasts).Error
	if err != nil {
		return nil, err
	}

	// Keep only the newest row per forecast date.
	latest := make([]models.DemandForecast, 0, days)
	seen := make(map[string]bool, days)
	for _, f := range forecasts {
		key := f.ForecastDate.Format("2006-01-02")
		if seen[key] {
			continue
		}
		seen[key] = true
		latest = append(latest, f)
	}
	return latest, nil
}

// RecordActualDemand scores a past forecast against observed demand. Predicted
// values stay immutable.
func (r *ForecastRepository) RecordActualDemand(ctx context.Context, id uuid.UUID, actual float64) error {
	result := r.db.WithContext(ctx).
		Model(&models.DemandForecast{}).
		Where("id = ?", id).
		Update("actual_demand", actual)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
