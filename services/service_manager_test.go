package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalbox/internal/backend"
	"signalbox/internal/config"
	"signalbox/internal/models"
	"signalbox/internal/proc"
)

func TestNewServiceManagerBindsEveryService(t *testing.T) {
	f := newFakeFactory()
	sm, err := newTestRegistry(f)
	require.NoError(t, err)

	instances := sm.GetInstances()
	require.Len(t, instances, 3)
	assert.Equal(t, []string{"kismet", "openwebrx", "rtl433"}, []string{instances[0].ID, instances[1].ID, instances[2].ID})
	for _, si := range instances {
		require.NotNil(t, si.Backend())
		assert.Equal(t, models.StatusUnknown, si.Status())
	}
	assert.Equal(t, backend.KindDocker, instances[1].Kind)
}

func TestNewServiceManagerRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	svc := cfg.Services["kismet"]
	svc.Description = ""
	cfg.Services["kismet"] = svc

	_, err := NewServiceManager(cfg, RegistryOptions{Factory: newFakeFactory()})
	var cfgErr *config.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "kismet", cfgErr.Service)
	assert.Equal(t, "description", cfgErr.Field)
}

func TestActionsRefreshStatus(t *testing.T) {
	f := newFakeFactory()
	sm, err := newTestRegistry(f)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, sm.StartService(ctx, "openwebrx"))
	si, _ := sm.GetInstance("openwebrx")
	assert.Equal(t, models.StatusRunning, si.Status())

	require.NoError(t, sm.StopService(ctx, "openwebrx"))
	assert.Equal(t, models.StatusStopped, si.Status())

	require.NoError(t, sm.RestartService(ctx, "openwebrx"))
	assert.Equal(t, models.StatusRunning, sm.GetStatus(ctx, "openwebrx"))
	assert.Equal(t, []string{"start", "stop", "restart"}, f.backends["openwebrx"].Calls())
}

func TestActionErrorsPropagate(t *testing.T) {
	f := newFakeFactory()
	sm, err := newTestRegistry(f)
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, sm.StartService(ctx, "nope"), ErrServiceNotFound)

	require.NoError(t, sm.StartService(ctx, "rtl433"))
	assert.ErrorIs(t, sm.StartService(ctx, "rtl433"), proc.ErrAlreadyRunning)

	f.backends["kismet"].startErr = backend.ErrBackendUnreachable
	assert.ErrorIs(t, sm.StartService(ctx, "kismet"), backend.ErrBackendUnreachable)
}

func TestGetStatusOfUnknownServiceIsUnknown(t *testing.T) {
	sm, err := newTestRegistry(newFakeFactory())
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnknown, sm.GetStatus(context.Background(), "missing"))
}

func TestRefreshAll(t *testing.T) {
	f := newFakeFactory()
	f.initial["kismet"] = models.StatusRunning
	f.initial["openwebrx"] = models.StatusUnavailable
	sm, err := newTestRegistry(f)
	require.NoError(t, err)

	got := sm.RefreshAll(context.Background())
	assert.Equal(t, map[string]models.ServiceStatus{
		"kismet":    models.StatusRunning,
		"openwebrx": models.StatusUnavailable,
		"rtl433":    models.StatusStopped,
	}, got)
}

func TestPlaceholdersInjectAssignedSdr(t *testing.T) {
	f := newFakeFactory()
	sm, err := newTestRegistry(f, func(o *RegistryOptions) {
		o.IndexOf = IndexResolver(&fakeLister{devices: testDevices()})
	})
	require.NoError(t, err)

	params := f.params["rtl433"]()
	assert.Equal(t, "433.92", params["freq"])
	assert.Equal(t, "00000001", params["sdr_serial"])
	assert.Equal(t, "0", params["sdr_index"])

	require.NoError(t, sm.SetSdrSerial("rtl433", "1234"))
	params = f.params["rtl433"]()
	assert.Equal(t, "1234", params["sdr_serial"])
	assert.Equal(t, "1", params["sdr_index"])

	// explicit params win over injected values
	require.NoError(t, sm.SetParam("rtl433", "sdr_index", "7"))
	assert.Equal(t, "7", f.params["rtl433"]()["sdr_index"])

	// unresolvable serial leaves <sdr_index> alone
	require.NoError(t, sm.SetSdrSerial("kismet", "gone"))
	params = f.params["kismet"]()
	assert.Equal(t, "gone", params["sdr_serial"])
	_, ok := params["sdr_index"]
	assert.False(t, ok)
}

func TestSetParam(t *testing.T) {
	f := newFakeFactory()
	sm, err := newTestRegistry(f)
	require.NoError(t, err)

	require.NoError(t, sm.SetParam("rtl433", "freq", "315.0"))
	si, _ := sm.GetInstance("rtl433")
	assert.Equal(t, "315.0", si.Params()["freq"])
	assert.Equal(t, "315.0", f.params["rtl433"]()["freq"])

	assert.ErrorIs(t, sm.SetParam("kismet", "freq", "1"), ErrParamNotSupported)
	assert.ErrorIs(t, sm.SetParam("rtl433", "<freq>", "1"), ErrInvalidParamName)
	assert.ErrorIs(t, sm.SetParam("missing", "freq", "1"), ErrServiceNotFound)
}

func TestSavedAssignmentsOverrideDefault(t *testing.T) {
	sm, err := newTestRegistry(newFakeFactory(), func(o *RegistryOptions) {
		o.Assignments = map[string]string{"rtl433": "", "kismet": "1234", "openwebrx": "ignored"}
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"kismet": "1234", "rtl433": ""}, sm.Assignments())
	si, _ := sm.GetInstance("openwebrx")
	assert.Empty(t, si.SdrSerial())
}

func TestGetDetail(t *testing.T) {
	f := newFakeFactory()
	f.initial["rtl433"] = models.StatusRunning
	sm, err := newTestRegistry(f)
	require.NoError(t, err)

	d, err := sm.GetDetail(context.Background(), "rtl433")
	require.NoError(t, err)
	assert.Equal(t, "cli", d.Kind)
	assert.Equal(t, models.StatusRunning, d.Status)
	assert.Equal(t, "00000001", d.SelectedSdr)
	assert.Equal(t, "433.92", d.Params["freq"])
	assert.Equal(t, "cli", d.Backend["fake"])

	d, err = sm.GetDetail(context.Background(), "openwebrx")
	require.NoError(t, err)
	assert.Nil(t, d.Params)
	assert.Equal(t, "http://localhost:8073", d.Link)

	_, err = sm.GetDetail(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestReloadStopsChildrenAndKeepsAssignments(t *testing.T) {
	f := newFakeFactory()
	sm, err := newTestRegistry(f)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, sm.StartService(ctx, "rtl433"))
	require.NoError(t, sm.SetSdrSerial("rtl433", "1234"))
	old := f.backends["rtl433"]

	cfg := testConfig()
	delete(cfg.Services, "openwebrx")
	require.NoError(t, sm.Reload(ctx, cfg))

	assert.Contains(t, old.Calls(), "stop")
	assert.Len(t, sm.GetInstances(), 2)
	_, err = sm.GetInstance("openwebrx")
	assert.ErrorIs(t, err, ErrServiceNotFound)

	si, _ := sm.GetInstance("rtl433")
	assert.Equal(t, "1234", si.SdrSerial())
	assert.NotSame(t, old, f.backends["rtl433"])
}

func TestReloadRejectsInvalidConfig(t *testing.T) {
	sm, err := newTestRegistry(newFakeFactory())
	require.NoError(t, err)

	err = sm.Reload(context.Background(), &config.AppConfig{})
	assert.ErrorIs(t, err, config.ErrNoServices)
	assert.Len(t, sm.GetInstances(), 3)
}

func TestCloseStopsChildren(t *testing.T) {
	f := newFakeFactory()
	sm, err := newTestRegistry(f)
	require.NoError(t, err)
	require.NoError(t, sm.StartService(context.Background(), "rtl433"))

	sm.Close(context.Background())
	assert.Equal(t, models.StatusStopped, f.backends["rtl433"].Status(context.Background()))
	assert.True(t, f.closed)
}
