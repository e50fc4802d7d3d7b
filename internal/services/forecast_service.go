package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pedro17pedroo/SGST-sub000/internal/models"
	"github.com/pedro17pedroo/SGST-sub000/internal/repository"
)

var ErrInvalidHorizon = errors.New("forecast horizon must be positive")

const (
	forecastAlgorithm    = "baseline_seasonal_trend"
	forecastModelVersion = "v1"

	// Days of movement history fed into the model.
	historyWindowDays = 90

	// Bounded noise applied per forecast day, +/-10%.
	noiseAmplitude = 0.10

	confidenceFloor = 0.25
	confidenceCap   = 0.95
)

// ForecastService generates demand forecasts for (product, warehouse) pairs.
// The model is deliberately simple: a historical baseline adjusted by
// day-of-week seasonality, a linear trend, and bounded noise. All generated
// rows are persisted append-only so predictions can be scored later.
type ForecastService struct {
	repo      repository.ForecastRepositoryInterface
	stockRepo repository.StockRepositoryInterface
	logger    *logrus.Entry

	// Baseline used when a pair has no movement history at all; forecasting
	// must stay defined so downstream risk evaluation never fails.
	defaultBaseline float64

	rng *rand.Rand
}

// NewForecastService creates a new ForecastService
func NewForecastService(repo repository.ForecastRepositoryInterface, stockRepo repository.StockRepositoryInterface, defaultBaseline float64, logger *logrus.Logger) *ForecastService {
	if logger == nil {
		logger = logrus.New()
	}
	return &ForecastService{
		repo:            repo,
		stockRepo:       stockRepo,
		logger:          logger.WithField("component", "forecast-service"),
		defaultBaseline: defaultBaseline,
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Generate produces one forecast per day over the horizon, persists the batch
// and returns it. With no movement history it falls back to the default
// baseline instead of failing.
func (s *ForecastService) Generate(ctx context.Context, tenantID string, productID, warehouseID uuid.UUID, horizonDays int) ([]models.DemandForecast, error) {
	if horizonDays <= 0 {
		return nil, ErrInvalidHorizon
	}

	since := time.Now().AddDate(0, 0, -historyWindowDays)
	history, err := s.stockRepo.GetDailyDemand(ctx, tenantID, productID, warehouseID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load demand history: %w", err)
	}

	baseline := s.defaultBaseline
	if len(history) > 0 {
		baseline = meanDemand(history)
	}
	trend := trendPerDay(history)
	seasonality := seasonalityFactors(history)

	today := time.Now().Truncate(24 * time.Hour)
	forecasts := make([]models.DemandForecast, 0, horizonDays)
	for i := 0; i < horizonDays; i++ {
		date := today.AddDate(0, 0, i+1)

		predicted := (baseline + trend*float64(i)) * seasonality[int(date.Weekday())]
		predicted *= 1 + (s.rng.Float64()*2-1)*noiseAmplitude
		if predicted < 0 {
			predicted = 0
		}

		forecasts = append(forecasts, models.DemandForecast{
			TenantID:        tenantID,
			ProductID:       productID,
			WarehouseID:     warehouseID,
			ForecastDate:    date,
			Period:          models.PeriodDaily,
			PredictedDemand: round2(predicted),
			Confidence:      confidence(len(history), i),
			Algorithm:       forecastAlgorithm,
			ModelVersion:    forecastModelVersion,
		})
	}

	if err := s.repo.CreateForecasts(ctx, forecasts); err != nil {
		return nil, fmt.Errorf("failed to persist forecasts: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"tenantId":    tenantID,
		"productId":   productID,
		"warehouseId": warehouseID,
		"horizonDays": horizonDays,
		"historyDays": len(history),
	}).Info("Demand forecast generated")

	return forecasts, nil
}

// Window returns the latest persisted forecast per day for the next `days`
// days, generating and persisting a fresh run when coverage is incomplete.
func (s *ForecastService) Window(ctx context.Context, tenantID string, productID, warehouseID uuid.UUID, days int) ([]models.DemandForecast, error) {
	if days <= 0 {
		return nil, ErrInvalidHorizon
	}
	from := time.Now().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	window, err := s.repo.ListForecastWindow(ctx, tenantID, productID, warehouseID, from, days)
	if err != nil {
		return nil, err
	}
	if len(window) >= days {
		return window[:days], nil
	}
	return s.Generate(ctx, tenantID, productID, warehouseID, days)
}

// RecordActual scores a past forecast against observed demand.
func (s *ForecastService) RecordActual(ctx context.Context, id uuid.UUID, actual float64) error {
	if actual < 0 {
		return fmt.Errorf("actual demand must be non-negative")
	}
	return s.repo.RecordActualDemand(ctx, id, actual)
}

// --- Model helpers ---

func meanDemand(history []models.DailyDemand) float64 {
	total := 0.0
	for _, d := range history {
		total += d.Quantity
	}
	return total / float64(len(history))
}

// trendPerDay compares the most recent 7-point average against the earliest
// 7-point average, normalized by window length. Windows shorter than 14
// points carry no usable trend signal.
func trendPerDay(history []models.DailyDemand) float64 {
	if len(history) < 14 {
		return 0
	}
	early := 0.0
	for _, d := range history[:7] {
		early += d.Quantity
	}
	recent := 0.0
	for _, d := range history[len(history)-7:] {
		recent += d.Quantity
	}
	return (recent/7 - early/7) / float64(len(history))
}

// seasonalityFactors derives a multiplier per weekday from the history: the
// day-of-week average relative to the overall average. Buckets without data
// stay at 1.
func seasonalityFactors(history []models.DailyDemand) [7]float64 {
	factors := [7]float64{1, 1, 1, 1, 1, 1, 1}
	if len(history) == 0 {
		return factors
	}

	overall := meanDemand(history)
	if overall == 0 {
		return factors
	}

	var sums, counts [7]float64
	for _, d := range history {
		dow := int(d.Day.Weekday())
		sums[dow] += d.Quantity
		counts[dow]++
	}
	for dow := 0; dow < 7; dow++ {
		if counts[dow] > 0 {
			factors[dow] = (sums[dow] / counts[dow]) / overall
		}
	}
	return factors
}

// confidence decreases with horizon distance and increases with the amount of
// history available, clamped to [confidenceFloor, confidenceCap].
func confidence(historyLen, dayIndex int) float64 {
	dataFactor := math.Min(1, float64(historyLen)/30.0)
	c := confidenceCap*dataFactor - 0.015*float64(dayIndex)
	if c < confidenceFloor {
		return confidenceFloor
	}
	if c > confidenceCap {
		return confidenceCap
	}
	return c
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
