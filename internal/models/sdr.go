package models

import "fmt"

// IndexNotAvailable marks a device whose receiver index could not be resolved.
const IndexNotAvailable = -1

// SdrDevice is one attached receiver as seen by the latest USB scan.
type SdrDevice struct {
	VendorID     uint16 `json:"vendorId"`
	ProductID    uint16 `json:"productId"`
	Friendly     string `json:"friendly"`
	Manufacturer string `json:"manufacturer"`
	Product      string `json:"product"`
	Serial       string `json:"serial"`
	Bus          int    `json:"bus"`
	Address      int    `json:"address"`
	Index        int    `json:"index"`
	Status       string `json:"status"`
}

// Key identifies the device within one inventory. Devices without a serial
// are told apart by their bus position.
func (d *SdrDevice) Key() string {
	if d.Serial != "" {
		return d.Serial
	}
	return fmt.Sprintf("bus%03d-addr%03d", d.Bus, d.Address)
}

// IndexLabel renders the receiver index, "na" when unresolved.
func (d *SdrDevice) IndexLabel() string {
	if d.Index == IndexNotAvailable {
		return "na"
	}
	return fmt.Sprintf("%d", d.Index)
}

// VidPid renders the USB id pair as 0xVVVV:0xPPPP.
func (d *SdrDevice) VidPid() string {
	return fmt.Sprintf("0x%04x:0x%04x", d.VendorID, d.ProductID)
}
