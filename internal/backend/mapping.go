package backend

import (
	"signalbox/internal/models"
)

// UnitState is the raw view of a systemd unit, Err set when the query itself failed.
type UnitState struct {
	Err         error
	LoadState   string
	ActiveState string
	SubState    string
}

// ContainerState is the raw view of a container, Err set when the lookup failed.
type ContainerState struct {
	Err    error
	Status string
}

// ProcessState is the raw view of a supervised child.
type ProcessState struct {
	HasHandle bool
	Alive     bool
}

// MapUnitState converts a unit's load/active state into the canonical status.
func MapUnitState(s UnitState) models.ServiceStatus {
	if s.Err != nil || s.LoadState == "not-found" {
		return models.StatusUnavailable
	}
	switch s.ActiveState {
	case "active", "reloading":
		return models.StatusRunning
	case "deactivating":
		return models.StatusStopping
	case "inactive":
		return models.StatusStopped
	case "failed":
		return models.StatusFailed
	default:
		return models.StatusUnknown
	}
}

// MapContainerState converts the engine's State.Status string into the canonical status.
func MapContainerState(s ContainerState) models.ServiceStatus {
	if s.Err != nil {
		return models.StatusUnavailable
	}
	switch s.Status {
	case "running":
		return models.StatusRunning
	case "dead":
		return models.StatusFailed
	case "":
		return models.StatusUnknown
	default:
		return models.StatusStopped
	}
}

// MapProcessState reports running only for a present handle whose process is alive.
func MapProcessState(s ProcessState) models.ServiceStatus {
	if s.HasHandle && s.Alive {
		return models.StatusRunning
	}
	return models.StatusStopped
}
