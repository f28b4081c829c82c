package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

var startTime = time.Now()

// HealthChecker tracks the liveness of the decision flow
type HealthChecker struct {
	mu           sync.RWMutex
	lastDecision time.Time
	lastPrice    float64
	errors       []string
}

// HealthStatus is the JSON payload of the health endpoint
type HealthStatus struct {
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
	LastDecision time.Time `json:"last_decision"`
	LastPrice    float64   `json:"last_price"`
	Uptime       string    `json:"uptime"`
	Errors       []string  `json:"errors,omitempty"`
}

// NewHealthChecker creates a new health checker
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		errors: make([]string, 0),
	}
}

// ServeHTTP serves the health endpoint
func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	if len(h.errors) > 0 {
		status = "unhealthy"
		w.WriteHeader(http.StatusInternalServerError)
	}

	health := HealthStatus{
		Status:       status,
		Timestamp:    time.Now(),
		LastDecision: h.lastDecision,
		LastPrice:    h.lastPrice,
		Uptime:       time.Since(startTime).String(),
		Errors:       h.errors,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// UpdateDecision records the latest decision time and price
func (h *HealthChecker) UpdateDecision(price float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastDecision = time.Now()
	h.lastPrice = price
}

// AddError records an error for the health report
func (h *HealthChecker) AddError(err string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, err)
	if len(h.errors) > 10 {
		h.errors = h.errors[1:]
	}
}

// ClearErrors resets the recorded errors
func (h *HealthChecker) ClearErrors() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = h.errors[:0]
}
