package component

import "time"

// HealthStatus is a point-in-time health report from one component.
type HealthStatus struct {
	Healthy    bool          `json:"healthy"`
	LastCheck  time.Time     `json:"last_check"`
	ErrorCount int           `json:"error_count"`
	LastError  string        `json:"last_error,omitempty"`
	Uptime     time.Duration `json:"uptime"`
}

// HealthReporter is implemented by components that expose health status.
type HealthReporter interface {
	Health() HealthStatus
}
