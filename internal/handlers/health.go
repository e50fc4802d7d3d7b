package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pedro17pedroo/SGST-sub000/internal/repository"
)

// HealthHandler reports service liveness and readiness
type HealthHandler struct {
	db    *gorm.DB
	stock *repository.StockRepository
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *gorm.DB, stock *repository.StockRepository) *HealthHandler {
	return &HealthHandler{db: db, stock: stock}
}

// HealthCheck handles health check requests
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "replenishment-service",
	})
}

// ReadinessCheck pings the service's dependencies. The database is required;
// Redis only degrades reads, so its state is reported without failing the
// check.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ctx := c.Request.Context()
	checks := gin.H{}
	status := http.StatusOK

	if err := h.pingDatabase(ctx); err != nil {
		checks["database"] = "unavailable"
		status = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	if h.stock == nil || h.stock.RedisHealth(ctx) != nil {
		checks["redis"] = "unavailable"
	} else {
		checks["redis"] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not ready"
	}
	c.JSON(status, gin.H{
		"status":  state,
		"service": "replenishment-service",
		"checks":  checks,
	})
}

func (h *HealthHandler) pingDatabase(ctx context.Context) error {
	if h.db == nil {
		return fmt.Errorf("database not configured")
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
