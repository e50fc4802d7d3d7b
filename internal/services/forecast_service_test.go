package services

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pedro17pedroo/SGST-sub000/internal/models"
)

func newTestForecastService(repo *MockForecastRepository, stockRepo *MockStockRepository) *ForecastService {
	return &ForecastService{
		repo:            repo,
		stockRepo:       stockRepo,
		logger:          logrus.New().WithField("component", "forecast-service"),
		defaultBaseline: 10,
		rng:             rand.New(rand.NewSource(42)),
	}
}

// constantHistory builds `days` days of constant daily demand ending yesterday.
func constantHistory(days int, quantity float64) []models.DailyDemand {
	history := make([]models.DailyDemand, 0, days)
	start := time.Now().AddDate(0, 0, -days)
	for i := 0; i < days; i++ {
		history = append(history, models.DailyDemand{
			Day:      start.AddDate(0, 0, i),
			Quantity: quantity,
		})
	}
	return history
}

func TestGenerate_OneForecastPerDay(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant-123"
	productID := uuid.New()
	warehouseID := uuid.New()

	mockForecasts := new(MockForecastRepository)
	mockStock := new(MockStockRepository)
	service := newTestForecastService(mockForecasts, mockStock)

	mockStock.On("GetDailyDemand", ctx, tenantID, productID, warehouseID, mock.AnythingOfType("time.Time")).
		Return(constantHistory(30, 10), nil)
	mockForecasts.On("CreateForecasts", ctx, mock.AnythingOfType("[]models.DemandForecast")).
		Return(nil)

	forecasts, err := service.Generate(ctx, tenantID, productID, warehouseID, 7)

	assert.NoError(t, err)
	assert.Len(t, forecasts, 7)
	for i, f := range forecasts {
		assert.Equal(t, models.PeriodDaily, f.Period)
		assert.Equal(t, forecastAlgorithm, f.Algorithm)
		assert.GreaterOrEqual(t, f.PredictedDemand, 0.0)
		// Constant history carries no trend or seasonality signal, so each
		// prediction is the baseline plus at most the noise amplitude.
		assert.InDelta(t, 10.0, f.PredictedDemand, 10.0*noiseAmplitude+0.01)
		if i > 0 {
			assert.Equal(t, 24*time.Hour, f.ForecastDate.Sub(forecasts[i-1].ForecastDate))
		}
	}
	mockForecasts.AssertExpectations(t)
	mockStock.AssertExpectations(t)
}

func TestGenerate_DefaultBaselineWithoutHistory(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()
	warehouseID := uuid.New()

	mockForecasts := new(MockForecastRepository)
	mockStock := new(MockStockRepository)
	service := newTestForecastService(mockForecasts, mockStock)

	mockStock.On("GetDailyDemand", ctx, "tenant-123", productID, warehouseID, mock.AnythingOfType("time.Time")).
		Return([]models.DailyDemand{}, nil)
	mockForecasts.On("CreateForecasts", ctx, mock.AnythingOfType("[]models.DemandForecast")).
		Return(nil)

	forecasts, err := service.Generate(ctx, "tenant-123", productID, warehouseID, 5)

	assert.NoError(t, err)
	assert.Len(t, forecasts, 5)
	for _, f := range forecasts {
		assert.InDelta(t, 10.0, f.PredictedDemand, 10.0*noiseAmplitude+0.01)
		assert.Equal(t, confidenceFloor, f.Confidence)
	}
	mockForecasts.AssertExpectations(t)
}

func TestGenerate_InvalidHorizon(t *testing.T) {
	mockForecasts := new(MockForecastRepository)
	mockStock := new(MockStockRepository)
	service := newTestForecastService(mockForecasts, mockStock)

	forecasts, err := service.Generate(context.Background(), "tenant-123", uuid.New(), uuid.New(), 0)

	assert.ErrorIs(t, err, ErrInvalidHorizon)
	assert.Nil(t, forecasts)
	mockStock.AssertNotCalled(t, "GetDailyDemand", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerate_NeverNegative(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()
	warehouseID := uuid.New()

	mockForecasts := new(MockForecastRepository)
	mockStock := new(MockStockRepository)
	service := newTestForecastService(mockForecasts, mockStock)

	// Steeply falling history pushes the linear trend well below zero.
	history := make([]models.DailyDemand, 0, 60)
	start := time.Now().AddDate(0, 0, -60)
	for i := 0; i < 60; i++ {
		history = append(history, models.DailyDemand{
			Day:      start.AddDate(0, 0, i),
			Quantity: float64(60 - i),
		})
	}

	mockStock.On("GetDailyDemand", ctx, "tenant-123", productID, warehouseID, mock.AnythingOfType("time.Time")).
		Return(history, nil)
	mockForecasts.On("CreateForecasts", ctx, mock.AnythingOfType("[]models.DemandForecast")).
		Return(nil)

	forecasts, err := service.Generate(ctx, "tenant-123", productID, warehouseID, 30)

	assert.NoError(t, err)
	for _, f := range forecasts {
		assert.GreaterOrEqual(t, f.PredictedDemand, 0.0)
	}
}

func TestGenerate_ConfidenceDecreasesWithHorizon(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()
	warehouseID := uuid.New()

	mockForecasts := new(MockForecastRepository)
	mockStock := new(MockStockRepository)
	service := newTestForecastService(mockForecasts, mockStock)

	mockStock.On("GetDailyDemand", ctx, "tenant-123", productID, warehouseID, mock.AnythingOfType("time.Time")).
		Return(constantHistory(90, 12), nil)
	mockForecasts.On("CreateForecasts", ctx, mock.AnythingOfType("[]models.DemandForecast")).
		Return(nil)

	forecasts, err := service.Generate(ctx, "tenant-123", productID, warehouseID, 14)

	assert.NoError(t, err)
	for i := 1; i < len(forecasts); i++ {
		assert.LessOrEqual(t, forecasts[i].Confidence, forecasts[i-1].Confidence)
	}
	for _, f := range forecasts {
		assert.GreaterOrEqual(t, f.Confidence, confidenceFloor)
		assert.LessOrEqual(t, f.Confidence, confidenceCap)
	}
}

func TestWindow_RegeneratesWhenCoverageIncomplete(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()
	warehouseID := uuid.New()

	mockForecasts := new(MockForecastRepository)
	mockStock := new(MockStockRepository)
	service := newTestForecastService(mockForecasts, mockStock)

	// Only 3 of the 7 requested days are persisted, so a fresh run is needed.
	partial := []models.DemandForecast{{}, {}, {}}
	mockForecasts.On("ListForecastWindow", ctx, "tenant-123", productID, warehouseID, mock.AnythingOfType("time.Time"), 7).
		Return(partial, nil)
	mockStock.On("GetDailyDemand", ctx, "tenant-123", productID, warehouseID, mock.AnythingOfType("time.Time")).
		Return(constantHistory(30, 5), nil)
	mockForecasts.On("CreateForecasts", ctx, mock.AnythingOfType("[]models.DemandForecast")).
		Return(nil)

	window, err := service.Window(ctx, "tenant-123", productID, warehouseID, 7)

	assert.NoError(t, err)
	assert.Len(t, window, 7)
	mockForecasts.AssertExpectations(t)
	mockStock.AssertExpectations(t)
}
