package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"signalbox/internal/config"
	"signalbox/internal/logger"
	"signalbox/internal/models"
)

var (
	ErrDeviceNotFound = errors.New("sdr device not found")
	ErrSdrNotRequired = errors.New("service does not use an sdr")
)

// DeviceLister produces a fresh device inventory, usb.Enumerator in production.
type DeviceLister interface {
	List() ([]models.SdrDevice, error)
}

/**
 * SdrManager is the SDR resource allocator
 * @property {*ServiceManager} registry - Holds the persistent service->serial assignment
 * @property {DeviceLister} lister - Source of fresh inventories
 * @property {*MonitorEnricher} enricher - Optional external usage annotations
 * @property {*StateStore} store - Optional persistence of assignments
 * @description
 * - The device list is rebuilt on every Inventory call, ownership is restored from the registry
 * - Assignment does not reject a device already owned by another running service,
 *   the last assignment wins and the annotation pass makes the conflict visible
 */
type SdrManager struct {
	registry *ServiceManager
	lister   DeviceLister
	enricher *MonitorEnricher
	store    *StateStore
	devices  []models.SdrDevice
	scanned  bool
	mutex    sync.Mutex
}

func NewSdrManager(registry *ServiceManager, lister DeviceLister, enricher *MonitorEnricher, store *StateStore) *SdrManager {
	return &SdrManager{
		registry: registry,
		lister:   lister,
		enricher: enricher,
		store:    store,
	}
}

/**
 * Take a fresh inventory and annotate it
 * @param {context.Context} ctx - Bounds the status and monitor queries
 * @returns {[]models.SdrDevice} Returns the annotated devices
 * @returns {error} Returns the enumeration error, the previous snapshot is kept then
 * @description
 * - Ownership pass: a running SDR service stamps its description on its device
 * - Enrichment pass: monitor usage text then overrides the ownership text
 */
func (sm *SdrManager) Inventory(ctx context.Context) ([]models.SdrDevice, error) {
	devices, err := sm.lister.List()
	if err != nil {
		return nil, fmt.Errorf("sdr inventory: %w", err)
	}
	sm.annotateOwners(ctx, devices)
	if enricher := sm.currentEnricher(); enricher != nil && enricher.Enabled() {
		enricher.Enrich(ctx, devices)
	}

	sm.mutex.Lock()
	sm.devices = devices
	sm.scanned = true
	sm.mutex.Unlock()

	recordDevices(len(devices))
	return copyDevices(devices), nil
}

func (sm *SdrManager) currentEnricher() *MonitorEnricher {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	return sm.enricher
}

/**
 * Apply reloaded SDR settings
 * @param {[]config.KnownID} known - New dongle table, passed on when the lister supports it
 * @param {*MonitorEnricher} enricher - Enricher built from the new monitor and credentials settings
 */
func (sm *SdrManager) Reconfigure(known []config.KnownID, enricher *MonitorEnricher) {
	if l, ok := sm.lister.(interface{ SetKnown([]config.KnownID) }); ok {
		l.SetKnown(known)
	}
	sm.mutex.Lock()
	sm.enricher = enricher
	sm.mutex.Unlock()
}

func (sm *SdrManager) annotateOwners(ctx context.Context, devices []models.SdrDevice) {
	for _, si := range sm.registry.GetInstances() {
		if !si.Spec.RequireSdr {
			continue
		}
		serial := si.SdrSerial()
		if serial == "" {
			continue
		}
		if sm.registry.GetStatus(ctx, si.ID) != models.StatusRunning {
			continue
		}
		if i := findBySerial(devices, serial); i >= 0 {
			devices[i].Status = si.Spec.Description
		}
	}
}

// Devices returns the last inventory snapshot including assignment stamps.
func (sm *SdrManager) Devices() []models.SdrDevice {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	return copyDevices(sm.devices)
}

// IndexResolver resolves serials with a fresh scan, for injecting <sdr_index> at start time.
func IndexResolver(lister DeviceLister) func(serial string) int {
	return func(serial string) int {
		devices, err := lister.List()
		if err != nil {
			logger.Warnf("sdr index lookup for %s failed: %v", serial, err)
			return models.IndexNotAvailable
		}
		if i := findBySerial(devices, serial); i >= 0 {
			return devices[i].Index
		}
		return models.IndexNotAvailable
	}
}

/**
 * Assign a device to a service, or unassign with an empty serial
 * @param {context.Context} ctx - Unused by the assignment itself, kept for the first scan
 * @param {string} serviceID - Service declaring require_sdr
 * @param {string} serial - Device serial from the inventory, "" to unassign
 * @returns {error} Returns ErrServiceNotFound, ErrSdrNotRequired or ErrDeviceNotFound
 * @description
 * - Works on the last snapshot, scanning first when there is none
 * - The device keeps the service description as annotation until the next inventory
 * - Assignments are saved to the state store, a save failure is only logged
 */
func (sm *SdrManager) Assign(ctx context.Context, serviceID, serial string) error {
	si, err := sm.registry.GetInstance(serviceID)
	if err != nil {
		return err
	}
	if !si.Spec.RequireSdr {
		return fmt.Errorf("%w: %s", ErrSdrNotRequired, serviceID)
	}

	sm.mutex.Lock()
	if !sm.scanned {
		devices, err := sm.lister.List()
		if err != nil {
			sm.mutex.Unlock()
			return fmt.Errorf("sdr inventory: %w", err)
		}
		sm.devices = devices
		sm.scanned = true
	}

	desc := si.Spec.Description
	if serial == "" {
		clearAnnotation(sm.devices, desc)
		si.setSdrSerial("")
		sm.mutex.Unlock()
		logger.Infof("SDR unassigned from '%s'", serviceID)
		sm.persist()
		return nil
	}

	i := findBySerial(sm.devices, serial)
	if i < 0 {
		sm.mutex.Unlock()
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, serial)
	}
	clearAnnotation(sm.devices, desc)
	si.setSdrSerial(serial)
	sm.devices[i].Status = desc
	sm.mutex.Unlock()

	logger.Infof("SDR %s assigned to '%s'", serial, serviceID)
	sm.persist()
	return nil
}

func (sm *SdrManager) persist() {
	if sm.store == nil {
		return
	}
	if err := sm.store.Save(sm.registry.Assignments()); err != nil {
		logger.Warnf("Failed to save sdr assignments: %v", err)
	}
}

func findBySerial(devices []models.SdrDevice, serial string) int {
	if serial == "" {
		return -1
	}
	for i := range devices {
		if devices[i].Serial == serial {
			return i
		}
	}
	return -1
}

func clearAnnotation(devices []models.SdrDevice, desc string) {
	for i := range devices {
		if devices[i].Status == desc {
			devices[i].Status = ""
		}
	}
}

func copyDevices(devices []models.SdrDevice) []models.SdrDevice {
	out := make([]models.SdrDevice, len(devices))
	copy(out, devices)
	return out
}
