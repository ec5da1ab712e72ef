package usb

import (
	"testing"

	"github.com/google/gousb"
	"github.com/stretchr/testify/assert"

	"signalbox/internal/config"
)

func TestLibusbInitFailureIsAnError(t *testing.T) {
	bus := &LibusbBus{newContext: func() *gousb.Context {
		panic("libusb: not found [code -5]")
	}}

	devices, err := bus.Scan(func(vid, pid uint16) bool { return true })
	assert.ErrorContains(t, err, "libusb init")
	assert.Nil(t, devices)

	_, err = NewEnumerator(bus, config.DefaultKnownIDs).List()
	assert.ErrorContains(t, err, "libusb init")
}
