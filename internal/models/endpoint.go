package models

import (
	"time"

	"gorm.io/gorm"
)

// MonitoredEndpoint is a recurring HTTP health check target.
type MonitoredEndpoint struct {
	gorm.Model
	Name   string `json:"name"`
	URL    string `json:"url" gorm:"not null"`
	Method string `json:"method" gorm:"default:GET"`

	// ExpectedStatuses is the set of status codes counted as healthy.
	// Empty means 200 only.
	ExpectedStatuses []int `json:"expected_statuses" gorm:"serializer:json"`

	// CheckInterval is in seconds; the monitor clamps it to one minute.
	CheckInterval int  `json:"check_interval" gorm:"default:300"`
	IsActive      bool `json:"is_active" gorm:"default:true"`

	// ConsecutiveFailures resets to 0 on any in-range success and
	// increments by 1 on failure. Alerting fires on the crossing to the
	// failure threshold, not on every failure past it.
	ConsecutiveFailures int        `json:"consecutive_failures" gorm:"default:0"`
	LastStatus          int        `json:"last_status"`
	LastResponseTime    int64      `json:"last_response_time"` // milliseconds
	LastSuccessAt       *time.Time `json:"last_success_at"`
	LastFailureAt       *time.Time `json:"last_failure_at"`
}

// StatusExpected reports whether a response code counts as healthy.
func (e *MonitoredEndpoint) StatusExpected(code int) bool {
	if len(e.ExpectedStatuses) == 0 {
		return code == 200
	}
	for _, want := range e.ExpectedStatuses {
		if code == want {
			return true
		}
	}
	return false
}

// EndpointCheck is one recorded health check.
type EndpointCheck struct {
	gorm.Model
	EndpointID   uint      `json:"endpoint_id" gorm:"index"`
	StatusCode   int       `json:"status_code"`
	ResponseTime int64     `json:"response_time"` // milliseconds
	Success      bool      `json:"success"`
	Error        string    `json:"error,omitempty"`
	CheckedAt    time.Time `json:"checked_at"`
}
