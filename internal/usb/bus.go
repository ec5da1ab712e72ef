package usb

// RawDevice is one USB device as read from the bus, before any SDR interpretation.
// String descriptors that could not be read are empty.
type RawDevice struct {
	VendorID     uint16
	ProductID    uint16
	Bus          int
	Address      int
	Manufacturer string
	Product      string
	Serial       string
}

/**
 * Bus enumerates attached USB devices
 * @description
 * - Scan always walks the whole bus, there is no cached device list
 * - match is consulted with the id pair before any descriptor is read
 * - Devices are returned in bus enumeration order
 */
type Bus interface {
	Scan(match func(vid, pid uint16) bool) ([]RawDevice, error)
}
