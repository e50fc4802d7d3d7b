package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pedro17pedroo/SGST-sub000/internal/repository"
)

func TestHealthCheck_ReportsHealthy(t *testing.T) {
	router := setupTestRouter()
	handler := NewHealthHandler(nil, nil)
	router.GET("/health", handler.HealthCheck)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "replenishment-service")
}

func TestReadinessCheck_UnavailableDependenciesReturn503(t *testing.T) {
	router := setupTestRouter()
	handler := NewHealthHandler(nil, repository.NewStockRepository(nil, nil))
	router.GET("/ready", handler.ReadinessCheck)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ready", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "not ready", response["status"])

	checks := response["checks"].(map[string]interface{})
	assert.Equal(t, "unavailable", checks["database"])
	assert.Equal(t, "unavailable", checks["redis"])
}
