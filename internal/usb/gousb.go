package usb

import (
	"fmt"

	"github.com/google/gousb"

	"signalbox/internal/logger"
)

// LibusbBus reads the host's USB tree through libusb.
type LibusbBus struct {
	newContext func() *gousb.Context
}

func NewLibusbBus() *LibusbBus {
	return &LibusbBus{newContext: gousb.NewContext}
}

// openContext turns the panic gousb raises when libusb_init fails (no usbfs,
// no permission) into an error.
func (b *LibusbBus) openContext() (ctx *gousb.Context, err error) {
	defer func() {
		if r := recover(); r != nil {
			ctx, err = nil, fmt.Errorf("usb: libusb init: %v", r)
		}
	}()
	return b.newContext(), nil
}

/**
 * Scan the bus through libusb
 * @param {func(uint16, uint16) bool} match - Id filter
 * @returns {[]RawDevice} Returns matched devices in enumeration order
 * @returns {error} Returns error when libusb can't be initialised or enumeration failed with nothing found
 * @description
 * - Devices that match but can't be opened (permissions) are still listed, without strings
 * - Each descriptor read failure degrades that string to ""
 */
func (b *LibusbBus) Scan(match func(vid, pid uint16) bool) ([]RawDevice, error) {
	ctx, err := b.openContext()
	if err != nil {
		return nil, err
	}
	defer ctx.Close()

	var found []RawDevice
	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if !match(uint16(desc.Vendor), uint16(desc.Product)) {
			return false
		}
		found = append(found, RawDevice{
			VendorID:  uint16(desc.Vendor),
			ProductID: uint16(desc.Product),
			Bus:       desc.Bus,
			Address:   desc.Address,
		})
		return true
	})
	defer func() {
		for _, d := range devs {
			d.Close()
		}
	}()
	if err != nil {
		if len(found) == 0 && len(devs) == 0 {
			return nil, err
		}
		logger.Warnf("usb: some devices could not be opened: %v", err)
	}

	for _, dev := range devs {
		for i := range found {
			if found[i].Bus != dev.Desc.Bus || found[i].Address != dev.Desc.Address {
				continue
			}
			found[i].Manufacturer = readString(dev.Manufacturer)
			found[i].Product = readString(dev.Product)
			found[i].Serial = readString(dev.SerialNumber)
		}
	}
	return found, nil
}

func readString(read func() (string, error)) string {
	s, err := read()
	if err != nil {
		logger.Debugf("usb: descriptor read failed: %v", err)
		return ""
	}
	return s
}
