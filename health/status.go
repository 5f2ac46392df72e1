// Package health tracks per-component health and aggregates it into a
// single engine-level status served by the metrics endpoint.
package health

import (
	"fmt"
	"regexp"
	"time"

	"github.com/c360/cogstream/component"
)

// Error message sanitization patterns. Health output is served over HTTP,
// so connection strings and addresses never leave the process verbatim.
var (
	urlRegex        = regexp.MustCompile(`(?:https?|nats|wss?)://[^\s]+`)
	ipAddrRegex     = regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)
	portRegex       = regexp.MustCompile(`:\d{2,5}\b`)
	credentialRegex = regexp.MustCompile(`(?i)(password|token|key|secret|credential)[^a-zA-Z]*[:=][^,\s}]+`)
)

// Status represents the health state of a component or of the engine.
type Status struct {
	Component   string    `json:"component"`
	Healthy     bool      `json:"healthy"`
	Status      string    `json:"status"` // "healthy", "unhealthy", "degraded"
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	SubStatuses []Status  `json:"sub_statuses,omitempty"`
}

// IsHealthy returns true if the status is healthy
func (s Status) IsHealthy() bool { return s.Status == "healthy" }

// IsDegraded returns true if the status is degraded
func (s Status) IsDegraded() bool { return s.Status == "degraded" }

// IsUnhealthy returns true if the status is unhealthy
func (s Status) IsUnhealthy() bool { return s.Status == "unhealthy" }

// NewHealthy creates a new healthy status
func NewHealthy(componentName, message string) Status {
	return Status{
		Component: componentName,
		Healthy:   true,
		Status:    "healthy",
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewUnhealthy creates a new unhealthy status
func NewUnhealthy(componentName, message string) Status {
	return Status{
		Component: componentName,
		Healthy:   false,
		Status:    "unhealthy",
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewDegraded creates a new degraded status
func NewDegraded(componentName, message string) Status {
	return Status{
		Component: componentName,
		Healthy:   false,
		Status:    "degraded",
		Message:   message,
		Timestamp: time.Now(),
	}
}

// FromComponentHealth converts a component's self-reported health into a
// Status, sanitizing any error detail.
func FromComponentHealth(componentName string, h component.HealthStatus) Status {
	message := sanitizeErrorMessage(h.LastError)
	if h.Healthy {
		if message == "" {
			message = fmt.Sprintf("up %s", h.Uptime.Round(time.Second))
		}
		return NewHealthy(componentName, message)
	}
	if h.ErrorCount > 0 && message == "" {
		message = fmt.Sprintf("%d errors", h.ErrorCount)
	}
	return NewUnhealthy(componentName, message)
}

// Aggregate combines sub-statuses into one:
//   - all healthy → healthy
//   - any unhealthy → unhealthy
//   - otherwise any degraded → degraded
func Aggregate(componentName string, subStatuses []Status) Status {
	if len(subStatuses) == 0 {
		return NewHealthy(componentName, "no sub-components to aggregate")
	}

	hasUnhealthy := false
	hasDegraded := false
	for _, sub := range subStatuses {
		if sub.IsUnhealthy() {
			hasUnhealthy = true
		} else if sub.IsDegraded() {
			hasDegraded = true
		}
	}

	var status Status
	switch {
	case hasUnhealthy:
		status = NewUnhealthy(componentName, "one or more components unhealthy")
	case hasDegraded:
		status = NewDegraded(componentName, "one or more components degraded")
	default:
		status = NewHealthy(componentName, "all components healthy")
	}
	status.SubStatuses = subStatuses
	return status
}

// sanitizeErrorMessage strips addresses and credentials from error
// strings before they are exposed over HTTP.
func sanitizeErrorMessage(err string) string {
	if err == "" {
		return ""
	}
	sanitized := urlRegex.ReplaceAllString(err, "[URL]")
	sanitized = ipAddrRegex.ReplaceAllString(sanitized, "[IP]")
	sanitized = portRegex.ReplaceAllString(sanitized, "[PORT]")
	sanitized = credentialRegex.ReplaceAllString(sanitized, "[REDACTED]")
	return sanitized
}
