package services

import (
	"context"
	"errors"

	"signalbox/internal/logger"
	"signalbox/internal/models"
)

var ErrMonitorDisabled = errors.New("external monitor disabled")

// MonitorClient answers which capture is using a receiver index, "" when none.
type MonitorClient interface {
	LookupByIndex(ctx context.Context, index int) (string, error)
}

/**
 * MonitorEnricher merges external usage text into the inventory
 * @property {string} serviceID - Registry id of the monitor service (e.g. kismet)
 * @property {string} label - Prefix of the annotation, e.g. "Kismet"
 * @property {MonitorClient} client - nil when credentials are missing
 */
type MonitorEnricher struct {
	registry  *ServiceManager
	serviceID string
	label     string
	client    MonitorClient
}

func NewMonitorEnricher(registry *ServiceManager, serviceID, label string, client MonitorClient) *MonitorEnricher {
	return &MonitorEnricher{
		registry:  registry,
		serviceID: serviceID,
		label:     label,
		client:    client,
	}
}

// Enabled reports whether a monitor service and a client are configured.
func (m *MonitorEnricher) Enabled() bool {
	return m.client != nil && m.serviceID != ""
}

/**
 * Annotate devices the monitor reports as in use
 * @param {context.Context} ctx - Bounds the status and lookup calls
 * @param {[]models.SdrDevice} devices - Inventory, modified in place
 * @returns {error} Returns ErrMonitorDisabled when not configured
 * @description
 * - Nothing happens unless the monitor service itself is running
 * - A failed or empty lookup leaves the existing annotation
 */
func (m *MonitorEnricher) Enrich(ctx context.Context, devices []models.SdrDevice) error {
	if !m.Enabled() {
		return ErrMonitorDisabled
	}
	if m.registry.GetStatus(ctx, m.serviceID) != models.StatusRunning {
		return nil
	}
	for i := range devices {
		if devices[i].Index == models.IndexNotAvailable {
			continue
		}
		usage, err := m.client.LookupByIndex(ctx, devices[i].Index)
		if err != nil {
			logger.Debugf("monitor lookup for index %d failed: %v", devices[i].Index, err)
			continue
		}
		if usage == "" {
			continue
		}
		if m.label != "" {
			usage = m.label + ": " + usage
		}
		devices[i].Status = usage
	}
	return nil
}
