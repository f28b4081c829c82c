package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthChecker_Healthy(t *testing.T) {
	checker := NewHealthChecker()
	checker.UpdateDecision(1.0850)

	recorder := httptest.NewRecorder()
	checker.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)

	var status HealthStatus
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, 1.0850, status.LastPrice)
	assert.False(t, status.LastDecision.IsZero())
}

func TestHealthChecker_UnhealthyAfterErrors(t *testing.T) {
	checker := NewHealthChecker()
	checker.AddError("advisory context-search unavailable")

	recorder := httptest.NewRecorder()
	checker.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)

	var status HealthStatus
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&status))
	assert.Equal(t, "unhealthy", status.Status)
	assert.Len(t, status.Errors, 1)
}

func TestHealthChecker_ErrorsCappedAndCleared(t *testing.T) {
	checker := NewHealthChecker()
	for i := 0; i < 15; i++ {
		checker.AddError("error")
	}
	assert.Len(t, checker.errors, 10)

	checker.ClearErrors()
	assert.Empty(t, checker.errors)
}

func TestMetricsHandler_ServesRegisteredMetrics(t *testing.T) {
	RecordDecision("EURUSD", "BUY", 0.85)
	RecordRiskLevel("EURUSD", "WARNING")
	RecordOrchestration("PROCEED", 12.5)

	recorder := httptest.NewRecorder()
	NewMetricsHandler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	body := recorder.Body.String()
	assert.Contains(t, body, "trade_core_decisions_total")
	assert.Contains(t, body, "trade_core_risk_level")
	assert.Contains(t, body, "trade_core_orchestration_duration_ms")
}
