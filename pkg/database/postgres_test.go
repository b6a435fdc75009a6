package database

import (
	"testing"
	"time"
)

func TestHealthStatusZeroValue(t *testing.T) {
	status := &HealthStatus{Timestamp: time.Now()}

	if status.Healthy {
		t.Error("new status should not be healthy before a successful ping")
	}
	if status.Error != "" {
		t.Errorf("expected empty error, got %q", status.Error)
	}
}
