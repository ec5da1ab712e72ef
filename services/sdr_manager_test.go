package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalbox/internal/models"
)

func findDevice(t *testing.T, devices []models.SdrDevice, serial string) models.SdrDevice {
	t.Helper()
	for _, d := range devices {
		if d.Serial == serial {
			return d
		}
	}
	t.Fatalf("device %q not in inventory", serial)
	return models.SdrDevice{}
}

func TestInventoryAnnotatesRunningOwner(t *testing.T) {
	// A: cli, requires a device, assigned 00000001, running. B: systemd, stopped. No enricher.
	f := newFakeFactory()
	f.initial["rtl433"] = models.StatusRunning
	f.initial["kismet"] = models.StatusStopped
	sm, err := newTestRegistry(f)
	require.NoError(t, err)

	lister := &fakeLister{devices: testDevices()[:1]}
	devices, err := NewSdrManager(sm, lister, nil, nil).Inventory(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "00000001", devices[0].Serial)
	assert.Equal(t, "rtl_433 sensor decoder", devices[0].Status)
}

func TestInventorySkipsStoppedOwner(t *testing.T) {
	sm, err := newTestRegistry(newFakeFactory())
	require.NoError(t, err)

	devices, err := NewSdrManager(sm, &fakeLister{devices: testDevices()}, nil, nil).Inventory(context.Background())
	require.NoError(t, err)
	for _, d := range devices {
		assert.Empty(t, d.Status)
	}
}

func TestInventoryIgnoresMissingDevice(t *testing.T) {
	f := newFakeFactory()
	f.initial["rtl433"] = models.StatusRunning
	sm, err := newTestRegistry(f)
	require.NoError(t, err)
	require.NoError(t, sm.SetSdrSerial("rtl433", "unplugged"))

	devices, err := NewSdrManager(sm, &fakeLister{devices: testDevices()}, nil, nil).Inventory(context.Background())
	require.NoError(t, err)
	for _, d := range devices {
		assert.Empty(t, d.Status)
	}
}

func TestInventoryError(t *testing.T) {
	sm, err := newTestRegistry(newFakeFactory())
	require.NoError(t, err)

	_, err = NewSdrManager(sm, &fakeLister{err: errBoom}, nil, nil).Inventory(context.Background())
	assert.ErrorIs(t, err, errBoom)
}

func TestAssignThenUnassign(t *testing.T) {
	f := newFakeFactory()
	f.initial["kismet"] = models.StatusRunning
	sm, err := newTestRegistry(f)
	require.NoError(t, err)
	alloc := NewSdrManager(sm, &fakeLister{devices: testDevices()}, nil, nil)
	ctx := context.Background()

	require.NoError(t, alloc.Assign(ctx, "kismet", "1234"))
	assert.Equal(t, "Kismet wireless monitor", findDevice(t, alloc.Devices(), "1234").Status)

	devices, err := alloc.Inventory(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Kismet wireless monitor", findDevice(t, devices, "1234").Status)

	require.NoError(t, alloc.Assign(ctx, "kismet", ""))
	assert.Empty(t, findDevice(t, alloc.Devices(), "1234").Status)
	si, _ := sm.GetInstance("kismet")
	assert.Empty(t, si.SdrSerial())

	devices, err = alloc.Inventory(ctx)
	require.NoError(t, err)
	assert.Empty(t, findDevice(t, devices, "1234").Status)
}

func TestAssignScansWhenNoSnapshot(t *testing.T) {
	sm, err := newTestRegistry(newFakeFactory())
	require.NoError(t, err)
	lister := &fakeLister{devices: testDevices()}
	alloc := NewSdrManager(sm, lister, nil, nil)

	require.NoError(t, alloc.Assign(context.Background(), "kismet", "1234"))
	assert.Equal(t, 1, lister.calls)
	require.NoError(t, alloc.Assign(context.Background(), "kismet", "00000001"))
	assert.Equal(t, 1, lister.calls)

	// moving to another device clears the previous stamp
	assert.Empty(t, findDevice(t, alloc.Devices(), "1234").Status)
	assert.Equal(t, "Kismet wireless monitor", findDevice(t, alloc.Devices(), "00000001").Status)
}

func TestAssignErrors(t *testing.T) {
	sm, err := newTestRegistry(newFakeFactory())
	require.NoError(t, err)
	alloc := NewSdrManager(sm, &fakeLister{devices: testDevices()}, nil, nil)
	ctx := context.Background()

	assert.ErrorIs(t, alloc.Assign(ctx, "kismet", "nope"), ErrDeviceNotFound)
	assert.ErrorIs(t, alloc.Assign(ctx, "missing", "1234"), ErrServiceNotFound)
	assert.ErrorIs(t, alloc.Assign(ctx, "openwebrx", "1234"), ErrSdrNotRequired)

	si, _ := sm.GetInstance("kismet")
	assert.Empty(t, si.SdrSerial())
}

// Assignment does not check whether another running service already owns the
// device. Both services end up holding the serial; the last one wins the stamp.
func TestAssignLastAssignmentWins(t *testing.T) {
	f := newFakeFactory()
	f.initial["rtl433"] = models.StatusRunning
	f.initial["kismet"] = models.StatusRunning
	sm, err := newTestRegistry(f)
	require.NoError(t, err)
	alloc := NewSdrManager(sm, &fakeLister{devices: testDevices()}, nil, nil)
	ctx := context.Background()

	require.NoError(t, alloc.Assign(ctx, "rtl433", "1234"))
	require.NoError(t, alloc.Assign(ctx, "kismet", "1234"))

	rtl, _ := sm.GetInstance("rtl433")
	kis, _ := sm.GetInstance("kismet")
	assert.Equal(t, "1234", rtl.SdrSerial())
	assert.Equal(t, "1234", kis.SdrSerial())
	assert.Equal(t, "Kismet wireless monitor", findDevice(t, alloc.Devices(), "1234").Status)
}

func TestAssignPersists(t *testing.T) {
	store := NewStateStore(filepath.Join(t.TempDir(), "state", "state.json"))
	sm, err := newTestRegistry(newFakeFactory())
	require.NoError(t, err)
	alloc := NewSdrManager(sm, &fakeLister{devices: testDevices()}, nil, store)

	require.NoError(t, alloc.Assign(context.Background(), "kismet", "1234"))
	require.NoError(t, alloc.Assign(context.Background(), "rtl433", ""))

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"kismet": "1234", "rtl433": ""}, saved)
}

func TestIndexResolver(t *testing.T) {
	resolve := IndexResolver(&fakeLister{devices: testDevices()})
	assert.Equal(t, 1, resolve("1234"))
	assert.Equal(t, models.IndexNotAvailable, resolve("zzz"))
	assert.Equal(t, models.IndexNotAvailable, IndexResolver(&fakeLister{err: errBoom})("1234"))
}
