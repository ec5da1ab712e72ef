package models

// ServiceStatus is the canonical lifecycle state every backend status is mapped into.
type ServiceStatus string

const (
	StatusRunning     ServiceStatus = "running"
	StatusStopped     ServiceStatus = "stopped"
	StatusStopping    ServiceStatus = "stopping"
	StatusFailed      ServiceStatus = "failed"
	StatusUnavailable ServiceStatus = "unavailable"
	StatusUnknown     ServiceStatus = "unknown"
)

// AllStatuses lists the canonical states in display order.
var AllStatuses = []ServiceStatus{
	StatusRunning,
	StatusStopping,
	StatusStopped,
	StatusFailed,
	StatusUnavailable,
	StatusUnknown,
}

func (s ServiceStatus) String() string {
	return string(s)
}

// IsRunning reports whether the status is the running state.
func (s ServiceStatus) IsRunning() bool {
	return s == StatusRunning
}

// ParseServiceStatus converts a string back into a canonical status.
// Anything outside the enumeration yields StatusUnknown.
func ParseServiceStatus(s string) ServiceStatus {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st
		}
	}
	return StatusUnknown
}
