package usb

import (
	"sync"

	"signalbox/internal/config"
	"signalbox/internal/models"
)

type idPair struct {
	vendor  uint16
	product uint16
}

/**
 * Enumerator turns a bus scan into the SDR inventory
 * @property {Bus} bus - Source of raw devices
 * @property {map} known - Known dongle table keyed by vendor/product
 * @property {map} rtl - Table entries flagged rtl, counted for receiver indexes on top of the librtlsdr table
 */
type Enumerator struct {
	bus   Bus
	known map[idPair]string
	rtl   map[idPair]struct{}
	mutex sync.RWMutex
}

func NewEnumerator(bus Bus, known []config.KnownID) *Enumerator {
	e := &Enumerator{bus: bus}
	e.SetKnown(known)
	return e
}

// SetKnown replaces the dongle table, used on config reload.
func (e *Enumerator) SetKnown(known []config.KnownID) {
	table := make(map[idPair]string, len(known))
	rtl := make(map[idPair]struct{})
	for _, k := range known {
		table[idPair{k.Vendor, k.Product}] = k.Name
		if k.Rtl {
			rtl[idPair{k.Vendor, k.Product}] = struct{}{}
		}
	}
	e.mutex.Lock()
	e.known, e.rtl = table, rtl
	e.mutex.Unlock()
}

// IsKnown reports whether the id pair is in the dongle table.
func (e *Enumerator) IsKnown(vid, pid uint16) bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	_, ok := e.known[idPair{vid, pid}]
	return ok
}

// IsRtl reports whether librtlsdr would open the device and so count it in its indexes.
func (e *Enumerator) IsRtl(vid, pid uint16) bool {
	if _, ok := rtlsdrIDs[idPair{vid, pid}]; ok {
		return true
	}
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	_, ok := e.rtl[idPair{vid, pid}]
	return ok
}

func (e *Enumerator) friendly(vid, pid uint16) string {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	return e.known[idPair{vid, pid}]
}

/**
 * Take a fresh inventory of attached SDR dongles
 * @returns {[]models.SdrDevice} Returns known dongles with strings and receiver index
 * @returns {error} Returns error when the bus could not be enumerated
 * @description
 * - Devices outside the known table are dropped even if the bus returned them
 * - Receiver indexes count rtl-sdr devices only, listed or not, so they match what librtlsdr opens
 * - Status annotations start empty
 */
func (e *Enumerator) List() ([]models.SdrDevice, error) {
	raw, err := e.bus.Scan(func(vid, pid uint16) bool {
		return e.IsKnown(vid, pid) || e.IsRtl(vid, pid)
	})
	if err != nil {
		return nil, err
	}
	rtl := make([]RawDevice, 0, len(raw))
	for _, r := range raw {
		if e.IsRtl(r.VendorID, r.ProductID) {
			rtl = append(rtl, r)
		}
	}

	devices := make([]models.SdrDevice, 0, len(raw))
	for _, r := range raw {
		if !e.IsKnown(r.VendorID, r.ProductID) {
			continue
		}
		index := models.IndexNotAvailable
		if e.IsRtl(r.VendorID, r.ProductID) {
			index = IndexBySerial(rtl, r.Serial)
		}
		devices = append(devices, models.SdrDevice{
			VendorID:     r.VendorID,
			ProductID:    r.ProductID,
			Friendly:     e.friendly(r.VendorID, r.ProductID),
			Manufacturer: r.Manufacturer,
			Product:      r.Product,
			Serial:       r.Serial,
			Bus:          r.Bus,
			Address:      r.Address,
			Index:        index,
		})
	}
	return devices, nil
}

// IndexBySerial resolves the receiver index the way librtlsdr looks up a serial:
// position among rtl-sdr devices in bus order, first serial match wins.
func IndexBySerial(devices []RawDevice, serial string) int {
	if serial == "" {
		return models.IndexNotAvailable
	}
	for i, d := range devices {
		if d.Serial == serial {
			return i
		}
	}
	return models.IndexNotAvailable
}
